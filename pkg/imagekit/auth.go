package imagekit

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/rs/xid"
)

// AuthParams are the credentials a browser needs to upload a file to
// ImageKit directly. The signature scheme is the one the upload widget
// expects: hex(HMAC-SHA1(token + expire, privateKey)).
type AuthParams struct {
	Token     string `json:"token"`
	Expire    int64  `json:"expire"`
	Signature string `json:"signature"`
}

// UploadAuthParams returns fresh client-side upload credentials valid for
// the given duration.
func (c *Client) UploadAuthParams(validFor time.Duration) AuthParams {
	token := xid.New().String()
	expire := time.Now().Add(validFor).Unix()

	return AuthParams{
		Token:     token,
		Expire:    expire,
		Signature: signToken(token, expire, c.config.PrivateKey),
	}
}

func signToken(token string, expire int64, privateKey string) string {
	mac := hmac.New(sha1.New, []byte(privateKey))
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
