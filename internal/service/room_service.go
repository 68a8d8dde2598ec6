package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"groupchat/api/internal/apperr"
	"groupchat/api/internal/config"
	"groupchat/api/internal/ids"
	"groupchat/api/internal/mail"
	"groupchat/api/internal/models"
	"groupchat/api/internal/repository"
)

// RoomService manages chat room lifecycle and membership. It is a
// collaborator of the core: retrieval and sessions never depend on it.
type RoomService struct {
	rooms  RoomStore
	users  UserStore
	mailer mail.Mailer
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewRoomService(rooms RoomStore, users UserStore, mailer mail.Mailer, cfg *config.AppConfig, log zerolog.Logger) *RoomService {
	return &RoomService{
		rooms:  rooms,
		users:  users,
		mailer: mailer,
		cfg:    cfg,
		log:    log,
	}
}

func (s *RoomService) CreateRoom(ctx context.Context, creatorEmail, roomName string) (models.ChatRoom, error) {
	if creatorEmail == "" || roomName == "" {
		return models.ChatRoom{}, apperr.E(apperr.KindValidation, "parameters missing")
	}

	creator, err := s.userByEmail(ctx, creatorEmail)
	if err != nil {
		return models.ChatRoom{}, err
	}

	room := models.ChatRoom{
		ID:        ids.New(),
		Name:      roomName,
		CreatorID: creator.ID,
		AdminID:   creator.ID,
		AdminName: creator.FullName(),
		Status:    models.RoomStatusOpen,
		Members: []models.RoomMember{
			{UserID: creator.ID, Name: creator.FullName()},
		},
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return models.ChatRoom{}, apperr.Wrap(apperr.KindStoreUnavailable, "failed to create chat room", err)
	}

	return s.getRoom(ctx, room.ID)
}

func (s *RoomService) JoinRoom(ctx context.Context, userEmail, roomID string) (models.ChatRoom, error) {
	if userEmail == "" || roomID == "" {
		return models.ChatRoom{}, apperr.E(apperr.KindValidation, "parameters missing")
	}

	user, err := s.userByEmail(ctx, userEmail)
	if err != nil {
		return models.ChatRoom{}, err
	}

	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return models.ChatRoom{}, err
	}
	if room.Status == models.RoomStatusClosed {
		return models.ChatRoom{}, apperr.E(apperr.KindValidation, "chat room is closed")
	}

	if err := s.rooms.AddMember(ctx, roomID, models.RoomMember{
		UserID: user.ID,
		Name:   user.FullName(),
	}); err != nil {
		return models.ChatRoom{}, apperr.Wrap(apperr.KindStoreUnavailable, "failed to join chat room", err)
	}

	return s.getRoom(ctx, roomID)
}

func (s *RoomService) EditRoom(ctx context.Context, roomID, name string) error {
	if roomID == "" || name == "" {
		return apperr.E(apperr.KindValidation, "parameters missing")
	}

	if err := s.rooms.UpdateName(ctx, roomID, name); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return apperr.Wrap(apperr.KindNotFound, "no chat room found", err)
		}
		return apperr.Wrap(apperr.KindStoreUnavailable, "failed to edit chat room", err)
	}
	return nil
}

// SendInvite mails a join link for the room. Delivery is fire-and-forget.
func (s *RoomService) SendInvite(ctx context.Context, roomID, userEmail string) error {
	if roomID == "" || userEmail == "" {
		return apperr.E(apperr.KindValidation, "parameters missing")
	}

	user, err := s.userByEmail(ctx, userEmail)
	if err != nil {
		return err
	}

	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Status == models.RoomStatusClosed {
		return apperr.E(apperr.KindValidation, "chat room is closed")
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		body := "Hi " + user.FullName() + ",\n\n" +
			"You have been invited to join the chat room \"" + room.Name + "\".\n" +
			"Room ID: " + room.ID
		if err := s.mailer.Send(sendCtx, user.Email, "Chat room invitation", body); err != nil {
			s.log.Error().Err(err).Str("room_id", room.ID).Str("user_id", user.ID).Msg("invite mail send failed")
		}
	}()

	return nil
}

func (s *RoomService) ListRooms(ctx context.Context) ([]models.ChatRoom, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, "failed to list chat rooms", err)
	}
	if len(rooms) == 0 {
		return nil, apperr.E(apperr.KindNotFound, "no chat rooms found")
	}
	return rooms, nil
}

func (s *RoomService) GetRoom(ctx context.Context, roomID string) (models.ChatRoom, error) {
	if roomID == "" {
		return models.ChatRoom{}, apperr.E(apperr.KindValidation, "parameters missing")
	}
	return s.getRoom(ctx, roomID)
}

func (s *RoomService) CloseRoom(ctx context.Context, roomID string) error {
	if roomID == "" {
		return apperr.E(apperr.KindValidation, "parameters missing")
	}

	if err := s.rooms.SetStatus(ctx, roomID, models.RoomStatusClosed); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return apperr.Wrap(apperr.KindNotFound, "no chat room found", err)
		}
		return apperr.Wrap(apperr.KindStoreUnavailable, "failed to close chat room", err)
	}
	return nil
}

func (s *RoomService) DeleteRoom(ctx context.Context, roomID string) error {
	if roomID == "" {
		return apperr.E(apperr.KindValidation, "parameters missing")
	}

	if err := s.rooms.Delete(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return apperr.Wrap(apperr.KindNotFound, "no chat room found", err)
		}
		return apperr.Wrap(apperr.KindStoreUnavailable, "failed to delete chat room", err)
	}
	return nil
}

func (s *RoomService) userByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, apperr.Wrap(apperr.KindNotFound, "no user found with this email", err)
		}
		return models.User{}, apperr.Wrap(apperr.KindStoreUnavailable, "user lookup failed", err)
	}
	return user, nil
}

func (s *RoomService) getRoom(ctx context.Context, roomID string) (models.ChatRoom, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return models.ChatRoom{}, apperr.Wrap(apperr.KindNotFound, "no chat room found", err)
		}
		return models.ChatRoom{}, apperr.Wrap(apperr.KindStoreUnavailable, "chat room lookup failed", err)
	}
	return room, nil
}
