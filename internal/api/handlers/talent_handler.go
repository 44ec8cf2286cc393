package handlers

import (
	"net/http"
	"strconv"

	"github.com/cofoundry-tw/cofoundry-backend/internal/api/middleware"
	"github.com/cofoundry-tw/cofoundry-backend/internal/models"
	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/cofoundry-tw/cofoundry-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Talent Directory Handler
// ============================================

type TalentHandler struct {
	userService service.UserService
}

// List serves the public talent directory.
// GET /api/talents?keyword=&skills=a&skills=b&workModes=&locationPreferences=&page=&pageSize=
func (h *TalentHandler) List(c *gin.Context) {
	filters := repository.TalentFilters{
		Keyword:             c.Query("keyword"),
		Skills:              c.QueryArray("skills"),
		WorkModes:           c.QueryArray("workModes"),
		LocationPreferences: c.QueryArray("locationPreferences"),
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	users, total, err := h.userService.ListTalents(c.Request.Context(), filters, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch talents"})
		return
	}

	talents := make([]models.UserResponse, len(users))
	for i, u := range users {
		talents[i] = toTalentResponse(u)
	}

	c.JSON(http.StatusOK, models.TalentListResponse{
		Talents:  talents,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Get serves a single talent profile. Private profiles return 403 rather
// than 404 so the frontend can tell the two cases apart.
func (h *TalentHandler) Get(c *gin.Context) {
	id := c.Param("id")
	viewerID := middleware.GetUserID(c)

	user, err := h.userService.GetTalent(c.Request.Context(), id, viewerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTalentResponse(user))
}
