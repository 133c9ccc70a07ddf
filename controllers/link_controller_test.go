package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/csat-server/models"
)

func postMint(t *testing.T, r http.Handler, surveyID uint, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/api/surveys/"+strconv.Itoa(int(surveyID))+"/links", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", apiKey)
	r.ServeHTTP(w, req)
	return w
}

func TestMintLinks(t *testing.T) {
	db := openTestDB(t)
	r := newTestRouter()

	dn, ks := seedSurvey(t, db, models.RedirectNone, nil)

	w := postMint(t, r, ks.ID, dn.APIKey, `{"subject_id":"cust-1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Links     map[string]string `json:"links"`
		ExpiresAt time.Time         `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// đủ 11 link, mỗi điểm một URL dạng {origin}/r/{token}
	require.Len(t, resp.Links, 11)
	for diem := 0; diem <= 10; diem++ {
		u, ok := resp.Links[strconv.Itoa(diem)]
		require.True(t, ok, "thiếu link cho điểm %d", diem)
		assert.Contains(t, u, "/r/")
	}

	// default_ttl_days = 30
	assert.InDelta(t, time.Now().AddDate(0, 0, 30).Unix(), resp.ExpiresAt.Unix(), 60)

	// 11 dòng trong DB, chung expires_at
	var links []models.SurveyLink
	require.NoError(t, db.Where("khao_sat_id = ? AND subject_id = ?", ks.ID, "cust-1").Find(&links).Error)
	require.Len(t, links, 11)
	for _, l := range links {
		assert.Equal(t, links[0].ExpiresAt.Unix(), l.ExpiresAt.Unix(), "cả bộ link phải chung một expires_at")
	}
}

func TestMintLinksTTLOverride(t *testing.T) {
	db := openTestDB(t)
	r := newTestRouter()

	dn, ks := seedSurvey(t, db, models.RedirectNone, nil)

	w := postMint(t, r, ks.ID, dn.APIKey, `{"subject_id":"cust-2","ttl_days":7}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ExpiresAt time.Time `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, time.Now().AddDate(0, 0, 7).Unix(), resp.ExpiresAt.Unix(), 60)

	// ttl không dương -> 400
	w = postMint(t, r, ks.ID, dn.APIKey, `{"subject_id":"cust-2","ttl_days":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMintLinksRemintIndependent(t *testing.T) {
	db := openTestDB(t)
	r := newTestRouter()

	dn, ks := seedSurvey(t, db, models.RedirectNone, nil)

	require.Equal(t, http.StatusCreated, postMint(t, r, ks.ID, dn.APIKey, `{"subject_id":"cust-3"}`).Code)
	require.Equal(t, http.StatusCreated, postMint(t, r, ks.ID, dn.APIKey, `{"subject_id":"cust-3"}`).Code)

	// mint lại tạo bộ mới độc lập, 22 dòng — chống double-count là việc của phan_hoi
	var count int64
	db.Model(&models.SurveyLink{}).Where("khao_sat_id = ? AND subject_id = ?", ks.ID, "cust-3").Count(&count)
	assert.EqualValues(t, 22, count)
}

func TestMintLinksAuth(t *testing.T) {
	db := openTestDB(t)
	r := newTestRouter()

	_, ks := seedSurvey(t, db, models.RedirectNone, nil)

	// API key sai -> 401
	w := postMint(t, r, ks.ID, "sai-key", `{"subject_id":"cust-4"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// khảo sát không tồn tại -> 404
	dn2 := models.DoanhNghiep{Ten: "Khác", APIKey: "11111111-2222-3333-4444-555555555555"}
	require.NoError(t, db.Create(&dn2).Error)
	w = postMint(t, r, 99999, dn2.APIKey, `{"subject_id":"cust-4"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// API key của doanh nghiệp khác -> 403
	w = postMint(t, r, ks.ID, dn2.APIKey, `{"subject_id":"cust-4"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// thiếu subject_id -> 400
	var dn models.DoanhNghiep
	require.NoError(t, db.First(&dn, ks.DoanhNghiepID).Error)
	w = postMint(t, r, ks.ID, dn.APIKey, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
