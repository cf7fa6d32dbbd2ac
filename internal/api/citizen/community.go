package citizen

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/swachhta-hub/internal/service/catalog"
	"github.com/aimd54/swachhta-hub/internal/service/leaderboard"
)

// CityLeaderboard returns the top cities by cleanliness score.
// GET /api/leaderboard/cities.
func (h *Handler) CityLeaderboard(c *gin.Context) {
	entries, err := h.Leaderboard.CityLeaderboard(c.Request.Context())
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"leaderboard": entries,
	})
}

// UserLeaderboard returns the top users by points.
// GET /api/leaderboard/users.
func (h *Handler) UserLeaderboard(c *gin.Context) {
	entries, err := h.Leaderboard.UserLeaderboard(c.Request.Context())
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"leaderboard": entries,
	})
}

// Heatmap returns weighted city points for the cleanliness map.
// GET /api/heatmap.
func (h *Handler) Heatmap(c *gin.Context) {
	points, err := h.Leaderboard.Heatmap(c.Request.Context())
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"heatmap_data": points,
	})
}

type activityView struct {
	ID          uint      `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	CreatedAt   time.Time `json:"created_at"`
}

// Activities returns the user's latest activity entries.
// GET /api/activities.
func (h *Handler) Activities(c *gin.Context) {
	entries, err := h.Leaderboard.RecentActivities(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	views := make([]activityView, 0, len(entries))
	for _, e := range entries {
		views = append(views, activityView{
			ID:          e.ID,
			Type:        e.ActivityType,
			Description: e.Description,
			Points:      e.Points,
			CreatedAt:   e.CreatedAt.UTC(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"activities": views,
	})
}

type profileView struct {
	userView
	CreatedAt time.Time             `json:"created_at"`
	Stats     leaderboard.UserStats `json:"stats"`
}

// Profile returns the user with their contribution counts.
// GET /api/profile.
func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.Leaderboard.GetProfile(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": profileView{
			userView:  newUserView(profile.User),
			CreatedAt: profile.User.CreatedAt.UTC(),
			Stats:     profile.Stats,
		},
	})
}

type addWasteRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
	Tip      string `json:"tip" binding:"required"`
	Warning  string `json:"warning"`
	Points   *int   `json:"points" binding:"omitempty,gte=0"`
}

// AddWasteItem adds an item to the waste catalog. Admin only.
// POST /api/waste/add.
func (h *Handler) AddWasteItem(c *gin.Context) {
	var req addWasteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.Catalog.AddWaste(c.Request.Context(), catalog.WasteInput{
		Name:     req.Name,
		Category: req.Category,
		Tip:      req.Tip,
		Warning:  req.Warning,
		Points:   req.Points,
	})
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"item":    newItemView(item),
	})
}

type updateCityRequest struct {
	Name    string `json:"name" binding:"required"`
	Score   *int   `json:"score" binding:"required,gte=0,lte=100"`
	Users   int    `json:"users" binding:"gte=0"`
	Reports int    `json:"reports" binding:"gte=0"`
}

// UpdateCity replaces a city's cleanliness aggregates. Admin only.
// POST /api/cities/update.
func (h *Handler) UpdateCity(c *gin.Context) {
	var req updateCityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	city, err := h.Catalog.UpdateCity(c.Request.Context(), catalog.CityInput{
		Name:    req.Name,
		Score:   *req.Score,
		Users:   req.Users,
		Reports: req.Reports,
	})
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"city":    city,
	})
}
