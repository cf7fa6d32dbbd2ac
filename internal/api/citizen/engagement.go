package citizen

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/swachhta-hub/internal/apperr"
	"github.com/aimd54/swachhta-hub/internal/models"
	"github.com/aimd54/swachhta-hub/internal/storage"
)

// multipartMemory is how much of a multipart body is kept in memory; the rest spills to temp files.
const multipartMemory = 8 << 20

type identifyRequest struct {
	Query string `json:"query"`
}

type completeChallengeRequest struct {
	ChallengeID uint `json:"challenge_id" binding:"required"`
}

// itemView is the public shape of a catalog item.
type itemView struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	DisposalTip string `json:"disposal_tip"`
	Warning     string `json:"warning,omitempty"`
	Points      int    `json:"points"`
}

func newItemView(item *models.WasteItem) itemView {
	return itemView{
		Name:        item.Name,
		Category:    item.Category,
		DisposalTip: item.DisposalTip,
		Warning:     item.Warning,
		Points:      item.PointsValue,
	}
}

// IdentifyWaste looks up a waste item and awards its points.
// POST /api/waste/identify.
func (h *Handler) IdentifyWaste(c *gin.Context) {
	var req identifyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user := currentUser(c)
	item, out, err := h.Progression.IdentifyWaste(c.Request.Context(), user.ID, req.Query)
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"item":          newItemView(item),
		"points_earned": out.PointsEarned,
		"total_points":  out.User.Points,
	})
}

// ListWasteItems returns the waste catalog.
// GET /api/waste/items.
func (h *Handler) ListWasteItems(c *gin.Context) {
	items, err := h.Catalog.ListWaste(c.Request.Context())
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	views := make([]itemView, 0, len(items))
	for i := range items {
		views = append(views, newItemView(&items[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"items":   views,
	})
}

// ListChallenges returns active challenges with the user's completion flags.
// GET /api/challenges.
func (h *Handler) ListChallenges(c *gin.Context) {
	challenges, err := h.Progression.ListChallenges(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"challenges": challenges,
	})
}

// CompleteChallenge records a challenge completion.
// POST /api/challenges/complete.
func (h *Handler) CompleteChallenge(c *gin.Context) {
	var req completeChallengeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	out, err := h.Progression.CompleteChallenge(c.Request.Context(), currentUser(c).ID, req.ChallengeID)
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"points_earned": out.PointsEarned,
		"total_points":  out.User.Points,
		"new_badges":    badgeNames(out.NewBadges),
	})
}

// ListBadges returns every badge with the user's earned flag.
// GET /api/badges.
func (h *Handler) ListBadges(c *gin.Context) {
	entries, err := h.Badges.GetBadgeCatalog(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.errorResponse(c, apperr.Internal(err, "failed to load badges"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"badges":  entries,
	})
}

// SubmitReport stores a geo-tagged cleanliness report with an optional image.
// POST /api/reports (multipart/form-data).
func (h *Handler) SubmitReport(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorResponse(c, apperr.Validation("File too large"))
			return
		}
		h.errorResponse(c, apperr.Validation("Invalid form data"))
		return
	}

	lat, err := formFloat(c, "latitude")
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	lon, err := formFloat(c, "longitude")
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	report := &models.CleanlinessReport{
		Latitude:    lat,
		Longitude:   lon,
		Category:    strings.TrimSpace(c.PostForm("category")),
		Description: strings.TrimSpace(c.PostForm("description")),
	}

	stored := ""
	if fh, err := c.FormFile("image"); err == nil {
		stored, err = h.Uploads.Save(fh)
		if err != nil {
			h.errorResponse(c, err)
			return
		}
		report.ImagePath = storage.URL(stored)
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		h.errorResponse(c, apperr.Validation("Invalid image upload"))
		return
	}

	out, err := h.Progression.SubmitReport(c.Request.Context(), currentUser(c).ID, report)
	if err != nil {
		if stored != "" {
			h.Uploads.Remove(stored)
		}
		h.errorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"report_id":     report.ID,
		"image_url":     report.ImagePath,
		"points_earned": out.PointsEarned,
	})
}

// GetCertificate issues the user's certificate once they have enough points.
// GET /api/certificate.
func (h *Handler) GetCertificate(c *gin.Context) {
	cert, err := h.Certificates.Issue(currentUser(c))
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"certificate": cert,
	})
}

func formFloat(c *gin.Context, field string) (float64, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return 0, apperr.Validation("%s is required", field)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperr.Validation("%s must be a number", field)
	}
	return v, nil
}

func badgeNames(list []models.Badge) []string {
	names := make([]string, 0, len(list))
	for _, b := range list {
		names = append(names, b.Name)
	}
	return names
}
