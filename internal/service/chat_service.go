package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"groupchat/api/internal/apperr"
	"groupchat/api/internal/ids"
	"groupchat/api/internal/models"
	"groupchat/api/internal/repository"
)

// HistoryPageSize is fixed server-side so a client cannot request
// unbounded pages.
const HistoryPageSize = 10

// ChatService is the chat retrieval engine plus the append path feeding
// it. Retrieval is read-only.
type ChatService struct {
	messages MessageStore
	rooms    RoomStore
	users    UserStore
	log      zerolog.Logger
}

func NewChatService(messages MessageStore, rooms RoomStore, users UserStore, log zerolog.Logger) *ChatService {
	return &ChatService{
		messages: messages,
		rooms:    rooms,
		users:    users,
		log:      log,
	}
}

// RoomHistory returns one page of the room's messages in ascending
// chronological order. The store pages newest-first so skip always
// counts back from the most recent message, then the page is reversed
// into reading order. There is no stable cursor: a message inserted
// between two page fetches may straddle adjacent pages or be skipped.
//
// An empty page is not-found whether the room has no messages or skip
// ran past the end of the history.
func (s *ChatService) RoomHistory(ctx context.Context, roomID string, skip int) ([]models.ChatMessage, error) {
	if roomID == "" {
		return nil, apperr.E(apperr.KindValidation, "parameters missing")
	}
	if skip < 0 {
		skip = 0
	}

	page, err := s.messages.ListByRoom(ctx, roomID, skip, HistoryPageSize)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, "failed to load chat history", err)
	}
	if len(page) == 0 {
		return nil, apperr.E(apperr.KindNotFound, "no chat found")
	}

	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page, nil
}

// Append stores a message in an open room on behalf of a member. The
// store assigns the sequence number and timestamp that decide ordering.
func (s *ChatService) Append(ctx context.Context, roomID, senderID, body string) (models.ChatMessage, error) {
	if roomID == "" || senderID == "" || body == "" {
		return models.ChatMessage{}, apperr.E(apperr.KindValidation, "parameters missing")
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return models.ChatMessage{}, apperr.Wrap(apperr.KindNotFound, "no chat room found", err)
		}
		return models.ChatMessage{}, apperr.Wrap(apperr.KindStoreUnavailable, "failed to send message", err)
	}
	if room.Status == models.RoomStatusClosed {
		return models.ChatMessage{}, apperr.E(apperr.KindValidation, "chat room is closed")
	}

	member, err := s.rooms.IsMember(ctx, roomID, senderID)
	if err != nil {
		return models.ChatMessage{}, apperr.Wrap(apperr.KindStoreUnavailable, "failed to send message", err)
	}
	if !member {
		return models.ChatMessage{}, apperr.E(apperr.KindValidation, "sender is not a member of this room")
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.ChatMessage{}, apperr.Wrap(apperr.KindNotFound, "no user found", err)
		}
		return models.ChatMessage{}, apperr.Wrap(apperr.KindStoreUnavailable, "failed to send message", err)
	}

	message, err := s.messages.Append(ctx, models.ChatMessage{
		ID:         ids.New(),
		RoomID:     roomID,
		SenderID:   sender.ID,
		SenderName: sender.FullName(),
		Body:       body,
	})
	if err != nil {
		return models.ChatMessage{}, apperr.Wrap(apperr.KindStoreUnavailable, "failed to send message", err)
	}
	return message, nil
}
