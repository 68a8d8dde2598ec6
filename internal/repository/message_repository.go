package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"groupchat/api/internal/models"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Append stores a message. The store assigns seq (a monotonic counter)
// and the creation timestamp, so ordering within a room is decided here
// and nowhere else.
func (r *MessageRepository) Append(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	const query = `
		INSERT INTO chat_messages (id, room_id, sender_id, sender_name, body, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING seq, created_at
	`

	row := r.pool.QueryRow(ctx, query,
		message.ID,
		message.RoomID,
		message.SenderID,
		message.SenderName,
		message.Body,
	)
	if err := row.Scan(&message.Seq, &message.CreatedAt); err != nil {
		return models.ChatMessage{}, err
	}
	return message, nil
}

// ListByRoom returns a page of the room's messages newest first, ordered
// by (created_at, seq) descending. The caller reverses the page for
// chronological output.
func (r *MessageRepository) ListByRoom(ctx context.Context, roomID string, offset, limit int) ([]models.ChatMessage, error) {
	const query = `
		SELECT id, room_id, sender_id, sender_name, body, seq, created_at
		FROM chat_messages
		WHERE room_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, roomID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var message models.ChatMessage
		if err := rows.Scan(
			&message.ID,
			&message.RoomID,
			&message.SenderID,
			&message.SenderName,
			&message.Body,
			&message.Seq,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}
