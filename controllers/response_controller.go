package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/csat-server/config"
	"github.com/vnkhanh/csat-server/models"
	"github.com/vnkhanh/csat-server/worker"
)

// Ba trạng thái hiển thị của trang capture:
//   - fresh: lần bấm đầu tiên, vừa ghi nhận điểm
//   - recent_duplicate: đã có phản hồi, còn trong cửa sổ 180s -> cho nhập bình luận
//   - stale_duplicate: đã có phản hồi, quá cửa sổ -> chỉ báo "đã ghi nhận"
const (
	StateFresh           = "fresh"
	StateRecentDuplicate = "recent_duplicate"
	StateStaleDuplicate  = "stale_duplicate"
)

// resolveLink tra token, trả 400/404 tại chỗ nếu không hợp lệ.
// Trả về nil khi đã abort.
func resolveLink(c *gin.Context) *models.SurveyLink {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Thiếu token"})
		return nil
	}

	var link models.SurveyLink
	err := config.DB.Preload("KhaoSat").Where("token = ?", token).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Link không tồn tại hoặc đã hết hạn"})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Đã xảy ra lỗi, vui lòng thử lại sau"})
		return nil
	}
	// link quá hạn đối xử y như không tồn tại
	if link.HetHan(time.Now()) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Link không tồn tại hoặc đã hết hạn"})
		return nil
	}
	return &link
}

// GET /r/:token
func CaptureResponse(c *gin.Context) {
	link := resolveLink(c)
	if link == nil {
		return
	}
	ks := link.KhaoSat

	// Đã có phản hồi của subject này chưa? (tính trên cả 11 link, không
	// riêng link vừa bấm)
	existing, err := findPhanHoi(ks.ID, link.SubjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Đã xảy ra lỗi, vui lòng thử lại sau"})
		return
	}

	if existing == nil {
		won, err := recordFirstResponse(link)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Đã xảy ra lỗi, vui lòng thử lại sau"})
			return
		}
		if won {
			// pre_comment: redirect ngay, phản hồi vẫn đã ghi và webhook vẫn đã xếp hàng
			if ks.RedirectKhi == models.RedirectPreComment && ks.RedirectURL != nil && *ks.RedirectURL != "" {
				c.Redirect(http.StatusSeeOther, *ks.RedirectURL)
				return
			}
			c.JSON(http.StatusOK, gin.H{"state": StateFresh, "diem": link.Diem})
			return
		}
		// Thua race với một request song song: đọc lại rồi xử lý như duplicate
		existing, err = findPhanHoi(ks.ID, link.SubjectID)
		if err != nil || existing == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Đã xảy ra lỗi, vui lòng thử lại sau"})
			return
		}
	}

	// Luôn báo điểm ĐÃ ghi nhận ban đầu, kể cả khi người dùng bấm link điểm khác
	diem := existing.SurveyLink.Diem
	if time.Since(existing.NgayGui) < worker.GracePeriod {
		c.JSON(http.StatusOK, gin.H{"state": StateRecentDuplicate, "diem": diem})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": StateStaleDuplicate, "diem": diem})
}

// POST /r/:token/comment (form field "comment")
func AttachComment(c *gin.Context) {
	link := resolveLink(c)
	if link == nil {
		return
	}
	ks := link.KhaoSat

	binhLuan := strings.TrimSpace(c.PostForm("comment"))
	if binhLuan == "" {
		// bình luận rỗng: không ghi gì hết
		c.Redirect(http.StatusSeeOther, "/r/"+link.Token)
		return
	}

	var ngayGui time.Time
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		ph, err := findPhanHoiTx(tx, ks.ID, link.SubjectID)
		if err != nil {
			return err
		}
		if ph == nil {
			// Edge case: bình luận đến trước khi có capture nào -> tạo luôn
			// phản hồi và xếp hàng webhook với điểm của link vừa dùng.
			ph = &models.PhanHoi{
				SurveyLinkID: link.ID,
				KhaoSatID:    ks.ID,
				SubjectID:    link.SubjectID,
				NgayGui:      time.Now(),
				BinhLuan:     &binhLuan,
			}
			res := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "khao_sat_id"},
					{Name: "subject_id"},
				},
				DoNothing: true,
			}).Create(ph)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// thua race với một capture song song: cập nhật dòng thắng
				ph, err = findPhanHoiTx(tx, ks.ID, link.SubjectID)
				if err != nil {
					return err
				}
				if ph == nil {
					return gorm.ErrRecordNotFound
				}
				if err := tx.Model(&models.PhanHoi{}).Where("id = ?", ph.ID).
					Update("binh_luan", binhLuan).Error; err != nil {
					return err
				}
			} else if err := worker.Schedule(tx, ks, link.SubjectID, link.Diem, worker.GracePeriod); err != nil {
				return err
			}
		} else if err := tx.Model(&models.PhanHoi{}).Where("id = ?", ph.ID).
			Update("binh_luan", binhLuan).Error; err != nil {
			return err
		}

		// Đẩy bình luận vào job pending (nếu đã delivered/failed thì thôi,
		// webhook đã đi không kèm bình luận muộn)
		if err := worker.UpdateComment(tx, ks.DoanhNghiepID, ks.ID, link.SubjectID, binhLuan); err != nil {
			return err
		}

		ngayGui = ph.NgayGui
		if time.Since(ngayGui) < worker.GracePeriod {
			// còn trong cửa sổ: dời giờ gửi ra now + 180s
			if err := worker.RefreshTimer(tx, ks.DoanhNghiepID, ks.ID, link.SubjectID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Đã xảy ra lỗi, vui lòng thử lại sau"})
		return
	}

	if ks.RedirectKhi == models.RedirectPostComment && ks.RedirectURL != nil && *ks.RedirectURL != "" {
		c.Redirect(http.StatusSeeOther, *ks.RedirectURL)
		return
	}
	c.Redirect(http.StatusSeeOther, "/r/"+link.Token+"?state=commented:true")
}

// recordFirstResponse ghi phản hồi đầu tiên bằng insert-if-absent nguyên tử
// trên unique (khao_sat_id, subject_id). Hai click song song trên hai link
// điểm khác nhau của cùng subject chỉ có thể có đúng một người thắng;
// người thua nhận won=false và đi đường duplicate. Xếp hàng webhook nằm
// cùng transaction với insert nên không bao giờ có phản hồi mà thiếu job.
func recordFirstResponse(link *models.SurveyLink) (won bool, err error) {
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		ph := models.PhanHoi{
			SurveyLinkID: link.ID,
			KhaoSatID:    link.KhaoSatID,
			SubjectID:    link.SubjectID,
			NgayGui:      time.Now(),
		}
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "khao_sat_id"},
				{Name: "subject_id"},
			},
			DoNothing: true,
		}).Create(&ph)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // thua race
		}
		won = true
		return worker.Schedule(tx, link.KhaoSat, link.SubjectID, link.Diem, worker.GracePeriod)
	})
	return won, err
}

func findPhanHoi(khaoSatID uint, subjectID string) (*models.PhanHoi, error) {
	return findPhanHoiTx(config.DB, khaoSatID, subjectID)
}

func findPhanHoiTx(tx *gorm.DB, khaoSatID uint, subjectID string) (*models.PhanHoi, error) {
	var ph models.PhanHoi
	err := tx.Preload("SurveyLink").
		Where("khao_sat_id = ? AND subject_id = ?", khaoSatID, subjectID).
		First(&ph).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ph, nil
}
