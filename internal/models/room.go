package models

import "time"

type RoomStatus string

const (
	RoomStatusOpen   RoomStatus = "open"
	RoomStatusClosed RoomStatus = "closed"
)

type RoomMember struct {
	UserID   string
	Name     string
	JoinedAt time.Time
}

type ChatRoom struct {
	ID        string
	Name      string
	CreatorID string
	AdminID   string
	AdminName string
	Status    RoomStatus
	Members   []RoomMember
	CreatedAt time.Time
}
