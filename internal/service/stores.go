package service

import (
	"context"
	"time"

	"groupchat/api/internal/models"
)

// Store contracts consumed by the services. The pgx-backed types in
// internal/repository satisfy them; tests use in-memory fakes. All calls
// are plain async I/O boundaries: no store holds a lock across another
// store's call.

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, firstName, lastName, mobileNumber string) error
	UpdatePasswordHash(ctx context.Context, id string, hash []byte) error
	SetActive(ctx context.Context, id string, active bool) error
	SetAvatarURL(ctx context.Context, id string, avatarURL string) error
	ListGroups(ctx context.Context, userID string) ([]string, error)
}

type TokenStore interface {
	Create(ctx context.Context, token models.AuthToken) error
	Revoke(ctx context.Context, id string, expiresAt time.Time) error
	RevokeAllForUser(ctx context.Context, userID string) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

type RoomStore interface {
	Create(ctx context.Context, room models.ChatRoom) error
	GetByID(ctx context.Context, id string) (models.ChatRoom, error)
	List(ctx context.Context) ([]models.ChatRoom, error)
	AddMember(ctx context.Context, roomID string, member models.RoomMember) error
	IsMember(ctx context.Context, roomID string, userID string) (bool, error)
	UpdateName(ctx context.Context, id string, name string) error
	SetStatus(ctx context.Context, id string, status models.RoomStatus) error
	Delete(ctx context.Context, id string) error
}

type MessageStore interface {
	Append(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error)
	ListByRoom(ctx context.Context, roomID string, offset, limit int) ([]models.ChatMessage, error)
}
