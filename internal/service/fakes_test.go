package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"groupchat/api/internal/models"
	"groupchat/api/internal/repository"
)

// In-memory stands-ins for the pgx-backed repositories. They reuse the
// repository sentinel errors so the services' error translation is
// exercised exactly as in production.

type fakeUserStore struct {
	mu     sync.Mutex
	users  map[string]models.User
	groups map[string][]string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:  make(map[string]models.User),
		groups: make(map[string][]string),
	}
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) List(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id string, firstName, lastName, mobileNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if firstName != "" {
		u.FirstName = firstName
	}
	if lastName != "" {
		u.LastName = lastName
	}
	if mobileNumber != "" {
		u.MobileNumber = mobileNumber
	}
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) UpdatePasswordHash(_ context.Context, id string, hash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) SetActive(_ context.Context, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Active = active
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) SetAvatarURL(_ context.Context, id string, avatarURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.AvatarURL = &avatarURL
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) ListGroups(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groups[userID], nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]models.AuthToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]models.AuthToken)}
}

func (f *fakeTokenStore) Create(_ context.Context, token models.AuthToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeTokenStore) Revoke(_ context.Context, id string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[id]; ok && t.RevokedAt == nil {
		now := time.Now()
		t.RevokedAt = &now
		f.tokens[id] = t
	}
	return nil
}

func (f *fakeTokenStore) RevokeAllForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for id, t := range f.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
			f.tokens[id] = t
		}
	}
	return nil
}

func (f *fakeTokenStore) IsRevoked(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[id]
	if !ok {
		return true, nil
	}
	return t.RevokedAt != nil, nil
}

type fakeRoomStore struct {
	mu    sync.Mutex
	rooms map[string]models.ChatRoom
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{rooms: make(map[string]models.ChatRoom)}
}

func (f *fakeRoomStore) Create(_ context.Context, room models.ChatRoom) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room.CreatedAt = time.Now()
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeRoomStore) GetByID(_ context.Context, id string) (models.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rooms[id]; ok {
		return r, nil
	}
	return models.ChatRoom{}, repository.ErrRoomNotFound
}

func (f *fakeRoomStore) List(_ context.Context) ([]models.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rooms := make([]models.ChatRoom, 0, len(f.rooms))
	for _, r := range f.rooms {
		rooms = append(rooms, r)
	}
	return rooms, nil
}

func (f *fakeRoomStore) AddMember(_ context.Context, roomID string, member models.RoomMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomID]
	if !ok {
		return repository.ErrRoomNotFound
	}
	for _, m := range r.Members {
		if m.UserID == member.UserID {
			return nil
		}
	}
	member.JoinedAt = time.Now()
	r.Members = append(r.Members, member)
	f.rooms[roomID] = r
	return nil
}

func (f *fakeRoomStore) IsMember(_ context.Context, roomID string, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomID]
	if !ok {
		return false, nil
	}
	for _, m := range r.Members {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoomStore) UpdateName(_ context.Context, id string, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[id]
	if !ok {
		return repository.ErrRoomNotFound
	}
	r.Name = name
	f.rooms[id] = r
	return nil
}

func (f *fakeRoomStore) SetStatus(_ context.Context, id string, status models.RoomStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[id]
	if !ok {
		return repository.ErrRoomNotFound
	}
	r.Status = status
	f.rooms[id] = r
	return nil
}

func (f *fakeRoomStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[id]; !ok {
		return repository.ErrRoomNotFound
	}
	delete(f.rooms, id)
	return nil
}

type fakeMessageStore struct {
	mu        sync.Mutex
	messages  []models.ChatMessage
	nextSeq   int64
	listCalls int
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{nextSeq: 1}
}

func (f *fakeMessageStore) Append(_ context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	message.Seq = f.nextSeq
	f.nextSeq++
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	f.messages = append(f.messages, message)
	return message, nil
}

// ListByRoom mirrors the SQL page query: newest first by
// (created_at, seq), then OFFSET/LIMIT.
func (f *fakeMessageStore) ListByRoom(_ context.Context, roomID string, offset, limit int) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	var all []models.ChatMessage
	for _, m := range f.messages {
		if m.RoomID == roomID {
			all = append(all, m)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].Seq > all[j].Seq
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
