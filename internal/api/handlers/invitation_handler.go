package handlers

import (
	"net/http"

	"github.com/cofoundry-tw/cofoundry-backend/internal/api/middleware"
	"github.com/cofoundry-tw/cofoundry-backend/internal/models"
	"github.com/cofoundry-tw/cofoundry-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Invitation Handler
// ============================================

type InvitationHandler struct {
	membershipService service.MembershipService
}

// Create invites a user to join one of the caller's projects.
// POST /api/invitations
func (h *InvitationHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.membershipService.Invite(c.Request.Context(), req.ProjectID, userID, req.InviteeID, req.Message)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toInvitationResponse(inv))
}

// ListSent returns invitations the caller issued.
// GET /api/invitations/sent
func (h *InvitationHandler) ListSent(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	invs, err := h.membershipService.ListSentInvitations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invitations"})
		return
	}

	response := make([]models.InvitationResponse, len(invs))
	for i, inv := range invs {
		response[i] = toInvitationResponse(inv)
	}

	c.JSON(http.StatusOK, response)
}

// ListReceived returns invitations addressed to the caller.
// GET /api/invitations/received
func (h *InvitationHandler) ListReceived(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	invs, err := h.membershipService.ListReceivedInvitations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invitations"})
		return
	}

	response := make([]models.InvitationResponse, len(invs))
	for i, inv := range invs {
		response[i] = toInvitationResponse(inv)
	}

	c.JSON(http.StatusOK, response)
}

// Accept joins the caller to the inviting project.
// POST /api/invitations/:id/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.membershipService.AcceptInvitation(c.Request.Context(), c.Param("id"), userID, req.Message); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted"})
}

// Reject declines an invitation with a reason.
// POST /api/invitations/:id/reject
func (h *InvitationHandler) Reject(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.membershipService.RejectInvitation(c.Request.Context(), c.Param("id"), userID, req.Reason); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation rejected"})
}

// Cancel removes a pending invitation the caller issued.
// DELETE /api/invitations/:id
func (h *InvitationHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.membershipService.CancelInvitation(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation cancelled"})
}
