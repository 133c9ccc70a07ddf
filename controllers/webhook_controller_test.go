package controllers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/csat-server/models"
	"github.com/vnkhanh/csat-server/utils"
)

func apiReq(t *testing.T, r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

// registerAndLogin trả về JWT của một user mới
func registerAndLogin(t *testing.T, r http.Handler) string {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-jwt-secret")

	w := apiReq(t, r, http.MethodPost, "/api/auth/register", "",
		`{"ten":"Toàn","email":"toan@example.com","mat_khau":"matkhau123"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = apiReq(t, r, http.MethodPost, "/api/auth/login", "",
		`{"email":"toan@example.com","mat_khau":"matkhau123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestWebhookConfigAndTestSend(t *testing.T) {
	db := openTestDB(t)
	r := newTestRouter()
	token := registerAndLogin(t, r)

	// tạo doanh nghiệp qua API, api_key chỉ trả một lần
	w := apiReq(t, r, http.MethodPost, "/api/businesses", token, `{"ten":"ACME"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		APIKey      string `json:"api_key"`
		DoanhNghiep struct {
			ID uint `json:"id"`
		} `json:"doanh_nghiep"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.APIKey)
	dnID := created.DoanhNghiep.ID

	// receiver giả lập phía doanh nghiệp, verify chữ ký
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotSig = req.Header.Get("X-Webhook-Signature")
		gotBody, _ = io.ReadAll(req.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	secret := "whsec_live_abcdef123456"
	w = apiReq(t, r, http.MethodPut, fmt.Sprintf("/api/businesses/%d/webhook", dnID), token,
		fmt.Sprintf(`{"webhook_url":%q,"webhook_secret":%q}`, srv.URL, secret))
	require.Equal(t, http.StatusOK, w.Code)

	// gửi thử đồng bộ, không đụng hàng đợi
	w = apiReq(t, r, http.MethodPost, fmt.Sprintf("/api/businesses/%d/webhook/test", dnID), token,
		`{"subject_id":"thu-nghiem","score":10}`)
	require.Equal(t, http.StatusOK, w.Code)
	var testResp struct {
		OK         bool `json:"ok"`
		StatusCode int  `json:"status_code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &testResp))
	assert.True(t, testResp.OK)
	assert.Equal(t, http.StatusOK, testResp.StatusCode)
	assert.Equal(t, utils.SignWebhookBody(secret, gotBody), gotSig)

	var jobCount int64
	db.Model(&models.WebhookJob{}).Count(&jobCount)
	assert.EqualValues(t, 0, jobCount, "gửi thử không được tạo job trong hàng đợi")
}

func TestListDeliveries(t *testing.T) {
	db := openTestDB(t)
	r := newTestRouter()
	token := registerAndLogin(t, r)

	w := apiReq(t, r, http.MethodPost, "/api/businesses", token, `{"ten":"ACME"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		DoanhNghiep struct {
			ID uint `json:"id"`
		} `json:"doanh_nghiep"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	code := 200
	body := "ok"
	require.NoError(t, db.Create(&models.WebhookLog{
		DoanhNghiepID: created.DoanhNghiep.ID,
		Attempt:       1,
		StatusCode:    &code,
		ResponseBody:  &body,
	}).Error)

	w = apiReq(t, r, http.MethodGet, fmt.Sprintf("/api/businesses/%d/deliveries", created.DoanhNghiep.ID), token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Deliveries []models.WebhookLog `json:"deliveries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Deliveries, 1)
	assert.Equal(t, 1, resp.Deliveries[0].Attempt)

	// không có JWT thì không xem được
	w = apiReq(t, r, http.MethodGet, fmt.Sprintf("/api/businesses/%d/deliveries", created.DoanhNghiep.ID), "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
