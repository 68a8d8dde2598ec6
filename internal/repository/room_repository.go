package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"groupchat/api/internal/models"
)

var ErrRoomNotFound = errors.New("room not found")

type RoomRepository struct {
	pool *pgxpool.Pool
}

func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// Create stores the room and its creator's membership in one transaction.
func (r *RoomRepository) Create(ctx context.Context, room models.ChatRoom) error {
	const roomQuery = `
		INSERT INTO chat_rooms (id, name, creator_id, admin_id, admin_name, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	const memberQuery = `
		INSERT INTO chat_room_members (room_id, user_id, display_name, joined_at)
		VALUES ($1, $2, $3, NOW())
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, roomQuery,
		room.ID,
		room.Name,
		room.CreatorID,
		room.AdminID,
		room.AdminName,
		room.Status,
	); err != nil {
		return err
	}

	for _, member := range room.Members {
		if _, err := tx.Exec(ctx, memberQuery, room.ID, member.UserID, member.Name); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *RoomRepository) GetByID(ctx context.Context, id string) (models.ChatRoom, error) {
	const query = `
		SELECT id, name, creator_id, admin_id, admin_name, status, created_at
		FROM chat_rooms WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	var room models.ChatRoom
	if err := row.Scan(
		&room.ID,
		&room.Name,
		&room.CreatorID,
		&room.AdminID,
		&room.AdminName,
		&room.Status,
		&room.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChatRoom{}, ErrRoomNotFound
		}
		return models.ChatRoom{}, err
	}

	members, err := r.listMembers(ctx, id)
	if err != nil {
		return models.ChatRoom{}, err
	}
	room.Members = members
	return room, nil
}

func (r *RoomRepository) List(ctx context.Context) ([]models.ChatRoom, error) {
	const query = `
		SELECT id, name, creator_id, admin_id, admin_name, status, created_at
		FROM chat_rooms
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.ChatRoom
	for rows.Next() {
		var room models.ChatRoom
		if err := rows.Scan(
			&room.ID,
			&room.Name,
			&room.CreatorID,
			&room.AdminID,
			&room.AdminName,
			&room.Status,
			&room.CreatedAt,
		); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rooms {
		members, err := r.listMembers(ctx, rooms[i].ID)
		if err != nil {
			return nil, err
		}
		rooms[i].Members = members
	}
	return rooms, nil
}

// AddMember is idempotent: joining a room twice leaves one membership row.
// The user's group list is derived from this table, so membership needs
// exactly one write and no cross-entity transaction.
func (r *RoomRepository) AddMember(ctx context.Context, roomID string, member models.RoomMember) error {
	const query = `
		INSERT INTO chat_room_members (room_id, user_id, display_name, joined_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (room_id, user_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, roomID, member.UserID, member.Name)
	return err
}

func (r *RoomRepository) IsMember(ctx context.Context, roomID string, userID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM chat_room_members WHERE room_id = $1 AND user_id = $2
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, roomID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *RoomRepository) UpdateName(ctx context.Context, id string, name string) error {
	const query = `UPDATE chat_rooms SET name = $2 WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, name)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (r *RoomRepository) SetStatus(ctx context.Context, id string, status models.RoomStatus) error {
	const query = `UPDATE chat_rooms SET status = $2 WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Delete removes the room, its membership rows and its messages in one
// transaction. Rooms are only ever removed by this explicit operation.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chat_messages WHERE room_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM chat_room_members WHERE room_id = $1`, id); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM chat_rooms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRoomNotFound
	}

	return tx.Commit(ctx)
}

func (r *RoomRepository) listMembers(ctx context.Context, roomID string) ([]models.RoomMember, error) {
	const query = `
		SELECT user_id, display_name, joined_at
		FROM chat_room_members
		WHERE room_id = $1
		ORDER BY joined_at
	`

	rows, err := r.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.RoomMember
	for rows.Next() {
		var member models.RoomMember
		if err := rows.Scan(&member.UserID, &member.Name, &member.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}
