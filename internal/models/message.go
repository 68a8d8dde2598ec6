package models

import "time"

// ChatMessage is append-only: no update or delete exists anywhere in the
// system. Seq is a store-assigned monotonic counter that breaks ties
// between messages sharing a creation timestamp, so ordering within a
// room is total.
type ChatMessage struct {
	ID         string
	RoomID     string
	SenderID   string
	SenderName string
	Body       string
	Seq        int64
	CreatedAt  time.Time
}
