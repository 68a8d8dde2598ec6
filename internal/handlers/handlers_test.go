package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"groupchat/api/internal/config"
	"groupchat/api/internal/mail"
	"groupchat/api/internal/models"
	"groupchat/api/internal/repository"
	"groupchat/api/internal/service"
)

// Minimal in-memory stores backing the services under test. They reuse
// the repository sentinels so error translation matches production.

type memUsers struct{ users map[string]models.User }

func (m *memUsers) Create(_ context.Context, u models.User) error {
	for _, e := range m.users {
		if e.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return models.User{}, repository.ErrUserNotFound
}

func (m *memUsers) List(_ context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id, _, _, _ string) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	return nil
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, id string, hash []byte) error {
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

func (m *memUsers) SetActive(_ context.Context, id string, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Active = active
	m.users[id] = u
	return nil
}

func (m *memUsers) SetAvatarURL(_ context.Context, id string, url string) error {
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.AvatarURL = &url
	m.users[id] = u
	return nil
}

func (m *memUsers) ListGroups(_ context.Context, _ string) ([]string, error) { return nil, nil }

type memTokens struct{ tokens map[string]models.AuthToken }

func (m *memTokens) Create(_ context.Context, t models.AuthToken) error {
	m.tokens[t.ID] = t
	return nil
}

func (m *memTokens) Revoke(_ context.Context, id string, _ time.Time) error {
	if t, ok := m.tokens[id]; ok && t.RevokedAt == nil {
		now := time.Now()
		t.RevokedAt = &now
		m.tokens[id] = t
	}
	return nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID string) error {
	now := time.Now()
	for id, t := range m.tokens {
		if t.UserID == userID {
			t.RevokedAt = &now
			m.tokens[id] = t
		}
	}
	return nil
}

func (m *memTokens) IsRevoked(_ context.Context, id string) (bool, error) {
	t, ok := m.tokens[id]
	if !ok {
		return true, nil
	}
	return t.RevokedAt != nil, nil
}

type memRooms struct{ rooms map[string]models.ChatRoom }

func (m *memRooms) Create(_ context.Context, r models.ChatRoom) error {
	m.rooms[r.ID] = r
	return nil
}

func (m *memRooms) GetByID(_ context.Context, id string) (models.ChatRoom, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return models.ChatRoom{}, repository.ErrRoomNotFound
}

func (m *memRooms) List(_ context.Context) ([]models.ChatRoom, error) {
	out := make([]models.ChatRoom, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out, nil
}

func (m *memRooms) AddMember(_ context.Context, roomID string, member models.RoomMember) error {
	r, ok := m.rooms[roomID]
	if !ok {
		return repository.ErrRoomNotFound
	}
	r.Members = append(r.Members, member)
	m.rooms[roomID] = r
	return nil
}

func (m *memRooms) IsMember(_ context.Context, roomID, userID string) (bool, error) {
	r, ok := m.rooms[roomID]
	if !ok {
		return false, nil
	}
	for _, mem := range r.Members {
		if mem.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRooms) UpdateName(_ context.Context, id, name string) error {
	r, ok := m.rooms[id]
	if !ok {
		return repository.ErrRoomNotFound
	}
	r.Name = name
	m.rooms[id] = r
	return nil
}

func (m *memRooms) SetStatus(_ context.Context, id string, status models.RoomStatus) error {
	r, ok := m.rooms[id]
	if !ok {
		return repository.ErrRoomNotFound
	}
	r.Status = status
	m.rooms[id] = r
	return nil
}

func (m *memRooms) Delete(_ context.Context, id string) error {
	if _, ok := m.rooms[id]; !ok {
		return repository.ErrRoomNotFound
	}
	delete(m.rooms, id)
	return nil
}

type memMessages struct {
	messages []models.ChatMessage
	nextSeq  int64
}

func (m *memMessages) Append(_ context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	m.nextSeq++
	msg.Seq = m.nextSeq
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memMessages) ListByRoom(_ context.Context, roomID string, offset, limit int) ([]models.ChatMessage, error) {
	var all []models.ChatMessage
	// newest first; the fixture appends in chronological order
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].RoomID == roomID {
			all = append(all, m.messages[i])
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type fixture struct {
	engine   *gin.Engine
	users    *memUsers
	rooms    *memRooms
	messages *memMessages
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			JWTSecret:     "test-secret",
			TokenTTL:      24 * time.Hour,
			ResetTokenTTL: 30 * time.Minute,
		},
	}

	users := &memUsers{users: make(map[string]models.User)}
	tokens := &memTokens{tokens: make(map[string]models.AuthToken)}
	rooms := &memRooms{rooms: make(map[string]models.ChatRoom)}
	messages := &memMessages{}

	logger := zerolog.Nop()
	auth := service.NewAuthService(users, tokens, nil, mail.Noop{}, cfg, logger)
	chat := service.NewChatService(messages, rooms, users, logger)
	roomsSvc := service.NewRoomService(rooms, users, mail.Noop{}, cfg, logger)

	h := HandlerSet{
		log:   logger,
		cfg:   cfg,
		auth:  auth,
		chat:  chat,
		rooms: roomsSvc,
		users: users,
	}

	engine := gin.New()
	h.Register(engine.Group("/api"))

	return &fixture{
		engine:   engine,
		users:    users,
		rooms:    rooms,
		messages: messages,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func (f *fixture) seedRoomWithMessages(roomID string, n int) {
	f.rooms.rooms[roomID] = models.ChatRoom{ID: roomID, Name: "R", Status: models.RoomStatusOpen}
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		_, _ = f.messages.Append(context.Background(), models.ChatMessage{
			ID:        fmt.Sprintf("msg-%d", i),
			RoomID:    roomID,
			SenderID:  "user-1",
			Body:      fmt.Sprintf("m%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
}

func TestGetGroupChatMissingRoomID(t *testing.T) {
	f := newFixture()

	rec, env := f.do(t, http.MethodGet, "/api/v1/chat/getGroupChat", nil, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if !env.Error || env.Status != http.StatusForbidden {
		t.Errorf("envelope = %+v, want error with status 403", env)
	}
}

func TestGetGroupChatPagination(t *testing.T) {
	f := newFixture()
	f.seedRoomWithMessages("R1", 3)

	rec, env := f.do(t, http.MethodGet, "/api/v1/chat/getGroupChat?chatRoomId=R1&skip=0", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	items, ok := env.Data.([]any)
	if !ok || len(items) != 3 {
		t.Fatalf("data = %v, want 3 messages", env.Data)
	}
	first := items[0].(map[string]any)
	last := items[2].(map[string]any)
	if first["message"] != "m1" || last["message"] != "m3" {
		t.Errorf("page order = %v..%v, want m1..m3 ascending", first["message"], last["message"])
	}

	rec, env = f.do(t, http.MethodGet, "/api/v1/chat/getGroupChat?chatRoomId=R1&skip=3", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !env.Error || env.Data != nil {
		t.Errorf("envelope = %+v, want error with null data", env)
	}
}

func TestGetGroupChatNonNumericSkip(t *testing.T) {
	f := newFixture()
	f.seedRoomWithMessages("R1", 2)

	rec, env := f.do(t, http.MethodGet, "/api/v1/chat/getGroupChat?chatRoomId=R1&skip=abc", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if items, ok := env.Data.([]any); !ok || len(items) != 2 {
		t.Errorf("data = %v, want 2 messages", env.Data)
	}
}

func TestSignupLoginScenario(t *testing.T) {
	f := newFixture()

	rec, env := f.do(t, http.MethodPost, "/api/v1/users/signup", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "a@x.com",
		"password":  "secret1",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d (%s)", rec.Code, rec.Body.String())
	}
	signedUp := env.Data.(map[string]any)
	userID := signedUp["userId"].(string)

	rec, env = f.do(t, http.MethodPost, "/api/v1/users/login", map[string]string{
		"email":    "a@x.com",
		"password": "secret2",
	}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong-password login status = %d, want 400", rec.Code)
	}
	if env.Message != "wrong password" {
		t.Errorf("message = %q, want %q", env.Message, "wrong password")
	}

	rec, env = f.do(t, http.MethodPost, "/api/v1/users/login", map[string]string{
		"email":    "a@x.com",
		"password": "secret1",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d (%s)", rec.Code, rec.Body.String())
	}
	data := env.Data.(map[string]any)
	token, _ := data["authToken"].(string)
	if token == "" {
		t.Fatal("login returned no authToken")
	}
	details := data["userDetails"].(map[string]any)
	if details["userId"] != userID {
		t.Errorf("userDetails.userId = %v, want %v", details["userId"], userID)
	}

	// the token opens protected routes
	rec, _ = f.do(t, http.MethodGet, "/api/v1/users/view/all", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("protected route status = %d, want 200", rec.Code)
	}

	// without it they are refused
	rec, _ = f.do(t, http.MethodGet, "/api/v1/users/view/all", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	f := newFixture()

	rec, env := f.do(t, http.MethodPost, "/api/v1/users/logout", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", rec.Code)
	}
	if env.Error {
		t.Errorf("envelope = %+v, want success", env)
	}

	rec, _ = f.do(t, http.MethodPost, "/api/v1/users/logout", nil, "garbage-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat logout status = %d, want 200", rec.Code)
	}
}

func TestSendMessageRequiresAuth(t *testing.T) {
	f := newFixture()
	f.seedRoomWithMessages("R1", 0)

	rec, _ := f.do(t, http.MethodPost, "/api/v1/chat/send", map[string]string{
		"chatRoomId": "R1",
		"message":    "hello",
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
