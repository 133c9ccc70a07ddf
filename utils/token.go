package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateLinkToken sinh token không đoán được cho survey link
// (32 byte ngẫu nhiên -> 43 ký tự base64 URL-safe, không padding).
func GenerateLinkToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
