package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"groupchat/api/internal/middleware"
	"groupchat/api/internal/models"
)

type messageResponse struct {
	ChatID     string    `json:"chatId"`
	ChatRoomID string    `json:"chatRoomId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Message    string    `json:"message"`
	CreatedOn  time.Time `json:"createdOn"`
}

func toMessageResponse(message models.ChatMessage) messageResponse {
	return messageResponse{
		ChatID:     message.ID,
		ChatRoomID: message.RoomID,
		SenderID:   message.SenderID,
		SenderName: message.SenderName,
		Message:    message.Body,
		CreatedOn:  message.CreatedAt,
	}
}

// GetGroupChat serves one page of a room's history, oldest first within
// the page. A non-numeric skip counts as 0.
func (h HandlerSet) GetGroupChat(c *gin.Context) {
	roomID := c.Query("chatRoomId")

	skip := 0
	if v, err := strconv.Atoi(c.Query("skip")); err == nil {
		skip = v
	}

	messages, err := h.chat.RoomHistory(c.Request.Context(), roomID, skip)
	if err != nil {
		respondErr(c, err)
		return
	}

	resp := make([]messageResponse, 0, len(messages))
	for _, message := range messages {
		resp = append(resp, toMessageResponse(message))
	}
	respondOK(c, "all group chats listed", resp)
}

type sendMessageRequest struct {
	ChatRoomID string `json:"chatRoomId" binding:"required"`
	Message    string `json:"message" binding:"required"`
}

func (h HandlerSet) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}

	message, err := h.chat.Append(c.Request.Context(), req.ChatRoomID, middleware.UserID(c), req.Message)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "message sent", toMessageResponse(message))
}
