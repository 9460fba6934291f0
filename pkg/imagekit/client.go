package imagekit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultUploadBaseURL = "https://upload.imagekit.io/api/v1"

// ClientConfig holds the ImageKit account credentials and HTTP settings.
type ClientConfig struct {
	PublicKey     string
	PrivateKey    string
	URLEndpoint   string
	UploadBaseURL string
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// ClientOption configures the client
type ClientOption func(*ClientConfig)

func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		UploadBaseURL: defaultUploadBaseURL,
		Timeout:       60 * time.Second,
	}
}

func WithKeys(publicKey, privateKey string) ClientOption {
	return func(c *ClientConfig) {
		c.PublicKey = publicKey
		c.PrivateKey = privateKey
	}
}

func WithURLEndpoint(endpoint string) ClientOption {
	return func(c *ClientConfig) {
		c.URLEndpoint = endpoint
	}
}

func WithUploadBaseURL(baseURL string) ClientOption {
	return func(c *ClientConfig) {
		c.UploadBaseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *ClientConfig) {
		c.HTTPClient = httpClient
	}
}

// Client is a minimal ImageKit media API client covering file uploads and
// client-side upload authentication.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new ImageKit client with the given options
func NewClient(options ...ClientOption) *Client {
	config := DefaultConfig()

	for _, option := range options {
		option(config)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// Error is returned for non-2xx responses from the ImageKit API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("imagekit: %s (status %d)", e.Message, e.StatusCode)
}

// UploadRequest describes a single file upload. Folder is the target folder
// path on the media service; FileName must already be unique, uniqueness on
// the service side is disabled.
type UploadRequest struct {
	FileName string
	Folder   string
	Content  io.Reader
}

// UploadResponse is the subset of the upload API response this service uses.
type UploadResponse struct {
	FileID       string `json:"fileId"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	FilePath     string `json:"filePath"`
	Size         int64  `json:"size"`
	FileType     string `json:"fileType"`
}

// Upload streams a file to the ImageKit upload API and returns the stored
// file's metadata. The call blocks until the service responds; there is no
// retry.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(form, req)
		pw.CloseWithError(err)
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.UploadBaseURL+"/files/upload", pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}

	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.SetBasicAuth(c.config.PrivateKey, "")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call upload API: %w", err)
	}

	var result UploadResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process upload response: %w", err)
	}

	return &result, nil
}

func writeUploadForm(form *multipart.Writer, req UploadRequest) error {
	part, err := form.CreateFormFile("file", req.FileName)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}

	if _, err := io.Copy(part, req.Content); err != nil {
		return fmt.Errorf("failed to write file content: %w", err)
	}

	fields := map[string]string{
		"fileName":          req.FileName,
		"folder":            req.Folder,
		"useUniqueFileName": "false",
	}

	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}

	return form.Close()
}

// handleResponse processes the HTTP response and unmarshals JSON if successful
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errorResponse struct {
			Message string `json:"message"`
		}

		if json.Unmarshal(body, &errorResponse) == nil && errorResponse.Message != "" {
			return &Error{
				StatusCode: resp.StatusCode,
				Message:    errorResponse.Message,
			}
		}

		return &Error{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
