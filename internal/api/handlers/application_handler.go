package handlers

import (
	"net/http"

	"github.com/cofoundry-tw/cofoundry-backend/internal/api/middleware"
	"github.com/cofoundry-tw/cofoundry-backend/internal/models"
	"github.com/cofoundry-tw/cofoundry-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Application Handler
// ============================================

type ApplicationHandler struct {
	membershipService service.MembershipService
}

// Create submits an application to join a project.
// POST /api/applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.membershipService.Apply(c.Request.Context(), req.ProjectID, userID, req.Message)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toApplicationResponse(app))
}

// ListSent returns the caller's own applications.
// GET /api/applications/sent
func (h *ApplicationHandler) ListSent(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	apps, err := h.membershipService.ListSentApplications(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	response := make([]models.ApplicationResponse, len(apps))
	for i, a := range apps {
		response[i] = toApplicationResponse(a)
	}

	c.JSON(http.StatusOK, response)
}

// ListReceived returns applications to the caller's projects.
// GET /api/applications/received
func (h *ApplicationHandler) ListReceived(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	apps, err := h.membershipService.ListReceivedApplications(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	response := make([]models.ApplicationResponse, len(apps))
	for i, a := range apps {
		response[i] = toApplicationResponse(a)
	}

	c.JSON(http.StatusOK, response)
}

// Accept approves an application and adds the applicant to the team.
// POST /api/applications/:id/accept
func (h *ApplicationHandler) Accept(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.membershipService.AcceptApplication(c.Request.Context(), c.Param("id"), userID, req.Message); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application accepted"})
}

// Reject declines an application with a reason.
// POST /api/applications/:id/reject
func (h *ApplicationHandler) Reject(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.membershipService.RejectApplication(c.Request.Context(), c.Param("id"), userID, req.Reason); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application rejected"})
}

// Withdraw removes the caller's own pending application.
// DELETE /api/applications/:id
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.membershipService.WithdrawApplication(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application withdrawn"})
}
