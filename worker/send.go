package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/vnkhanh/csat-server/utils"
)

// SendWebhook ký và POST payload tới webhook_url, trả về status code và
// body đã cắt ngắn. Dùng chung cho dispatcher và endpoint "gửi thử".
//
// Header gửi kèm:
//   - X-Webhook-Signature: hex HMAC-SHA256 của raw body với webhook_secret
//   - X-Webhook-Timestamp: unix seconds lúc gửi (chống replay phía nhận)
func SendWebhook(ctx context.Context, client *http.Client, url, secret string, payload WebhookPayload) (int, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", utils.SignWebhookBody(secret, body))
	req.Header.Set("X-Webhook-Timestamp", strconv.FormatInt(time.Now().Unix(), 10))

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyLogSize+1))
	return resp.StatusCode, TruncateBody(respBody), nil
}
