package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"groupchat/api/internal/models"
)

type roomMemberResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedOn time.Time `json:"joinedOn"`
}

type roomResponse struct {
	RoomID    string               `json:"roomId"`
	RoomName  string               `json:"roomName"`
	Creator   string               `json:"creator"`
	Admin     roomMemberResponse   `json:"admin"`
	Members   []roomMemberResponse `json:"members"`
	Status    string               `json:"status"`
	CreatedOn time.Time            `json:"createdOn"`
}

func toRoomResponse(room models.ChatRoom) roomResponse {
	members := make([]roomMemberResponse, 0, len(room.Members))
	for _, member := range room.Members {
		members = append(members, roomMemberResponse{
			ID:       member.UserID,
			Name:     member.Name,
			JoinedOn: member.JoinedAt,
		})
	}
	return roomResponse{
		RoomID:    room.ID,
		RoomName:  room.Name,
		Creator:   room.CreatorID,
		Admin:     roomMemberResponse{ID: room.AdminID, Name: room.AdminName},
		Members:   members,
		Status:    string(room.Status),
		CreatedOn: room.CreatedAt,
	}
}

type createRoomRequest struct {
	UserEmail string `json:"userEmail" binding:"required,email"`
	RoomName  string `json:"roomName" binding:"required"`
}

func (h HandlerSet) CreateChatRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), req.UserEmail, req.RoomName)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "chat room created", toRoomResponse(room))
}

type joinRoomRequest struct {
	UserEmail  string `json:"userEmail" binding:"required,email"`
	ChatRoomID string `json:"chatRoomId" binding:"required"`
}

func (h HandlerSet) JoinChatRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}

	room, err := h.rooms.JoinRoom(c.Request.Context(), req.UserEmail, req.ChatRoomID)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "chat room joined", toRoomResponse(room))
}

type editRoomRequest struct {
	RoomName string `json:"roomName" binding:"required"`
}

func (h HandlerSet) EditChatRoom(c *gin.Context) {
	roomID := c.Param("chatRoomId")

	var req editRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}

	if err := h.rooms.EditRoom(c.Request.Context(), roomID, req.RoomName); err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "chat room edited", nil)
}

type sendInviteRequest struct {
	ChatRoomID string `json:"chatRoomId" binding:"required"`
	UserEmail  string `json:"userEmail" binding:"required,email"`
}

func (h HandlerSet) SendInvite(c *gin.Context) {
	var req sendInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}

	if err := h.rooms.SendInvite(c.Request.Context(), req.ChatRoomID, req.UserEmail); err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "mail sent successfully", nil)
}

func (h HandlerSet) GetChatRooms(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}

	resp := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, toRoomResponse(room))
	}
	respondOK(c, "chat rooms found", resp)
}

func (h HandlerSet) GetChatRoom(c *gin.Context) {
	room, err := h.rooms.GetRoom(c.Request.Context(), c.Param("chatRoomId"))
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "chat room found", toRoomResponse(room))
}

func (h HandlerSet) CloseChatRoom(c *gin.Context) {
	if err := h.rooms.CloseRoom(c.Request.Context(), c.Param("chatRoomId")); err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "chat room closed", nil)
}

type deleteRoomRequest struct {
	ChatRoomID string `json:"chatRoomId" binding:"required"`
}

func (h HandlerSet) DeleteChatRoom(c *gin.Context) {
	var req deleteRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}

	if err := h.rooms.DeleteRoom(c.Request.Context(), req.ChatRoomID); err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "chat room deleted", nil)
}
