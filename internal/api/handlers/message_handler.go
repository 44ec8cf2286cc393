package handlers

import (
	"net/http"
	"strconv"

	"github.com/cofoundry-tw/cofoundry-backend/internal/api/middleware"
	"github.com/cofoundry-tw/cofoundry-backend/internal/models"
	"github.com/cofoundry-tw/cofoundry-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Message Handler
// ============================================

type MessageHandler struct {
	messageService service.MessageService
}

// StartConversation opens (or returns) the conversation with another user.
// POST /api/conversations
func (h *MessageHandler) StartConversation(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.messageService.StartConversation(c.Request.Context(), userID, req.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toConversationResponse(conv))
}

// ListConversations returns the caller's conversations, newest activity first.
// GET /api/conversations
func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	convs, err := h.messageService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}

	response := make([]models.ConversationResponse, len(convs))
	for i, conv := range convs {
		response[i] = toConversationResponse(conv)
	}

	c.JSON(http.StatusOK, response)
}

// Send posts a message into a conversation.
// POST /api/conversations/:id/messages
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageService.SendMessage(c.Request.Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

// ListMessages pages through a conversation's history, newest first.
// GET /api/conversations/:id/messages?page=&pageSize=
func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	msgs, err := h.messageService.ListMessages(c.Request.Context(), c.Param("id"), userID, page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.MessageResponse, len(msgs))
	for i, m := range msgs {
		response[i] = toMessageResponse(m)
	}

	c.JSON(http.StatusOK, response)
}

// MarkRead marks the peer's messages in a conversation as read.
// POST /api/conversations/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation marked read"})
}

// UnreadCount returns how many messages are waiting for the caller.
// GET /api/conversations/unread
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	count, err := h.messageService.CountUnread(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count unread messages"})
		return
	}

	c.JSON(http.StatusOK, models.UnreadCountResponse{Unread: count})
}
