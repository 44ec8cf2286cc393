package handlers

import (
	"net/http"

	"github.com/cofoundry-tw/cofoundry-backend/internal/api/middleware"
	"github.com/cofoundry-tw/cofoundry-backend/internal/models"
	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/cofoundry-tw/cofoundry-backend/internal/service"
	"github.com/cofoundry-tw/cofoundry-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

// ============================================
// User Handler
// ============================================

type UserHandler struct {
	userService service.UserService
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) UpdateCurrentUser(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := service.ProfileUpdate{
		Name:                  req.Name,
		ContactInfo:           req.ContactInfo,
		Skills:                req.Skills,
		ExperienceDescription: req.ExperienceDescription,
		PartnerDescription:    req.PartnerDescription,
		SpecificLocation:      req.SpecificLocation,
		IsPublic:              req.IsPublic,
	}
	if req.WorkMode != nil {
		mode := repository.WorkMode(*req.WorkMode)
		update.WorkMode = &mode
	}
	if req.LocationPreference != nil {
		pref := repository.LocationPreference(*req.LocationPreference)
		update.LocationPreference = &pref
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}
	if fileHeader.Size > storage.MaxAvatarSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}
	defer file.Close()

	url, err := h.userService.UploadAvatar(c.Request.Context(), userID, fileHeader.Filename, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatarUrl": url})
}

func (h *UserHandler) RemoveAvatar(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.userService.RemoveAvatar(c.Request.Context(), userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Avatar removed"})
}
