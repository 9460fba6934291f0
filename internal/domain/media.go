package domain

import "strings"

// AllowedUploadType reports whether a declared media type may be uploaded.
// Only images and PDFs are accepted.
func AllowedUploadType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || contentType == "application/pdf"
}
