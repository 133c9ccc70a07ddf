package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignWebhookBody ký HMAC-SHA256 trên raw body bằng webhook secret của
// doanh nghiệp, trả về chuỗi hex. Bên nhận tính lại cùng công thức để verify.
func SignWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
