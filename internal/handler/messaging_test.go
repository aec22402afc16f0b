package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/repository"
	"github.com/tucarrito/marketplace/internal/service"
)

// In-memory stand-ins for the relational messaging tables.

type stubConversationStore struct {
	rows map[string]repository.ConversationRecord
}

func (s *stubConversationStore) FindByPair(_ context.Context, p1, p2 string) (repository.ConversationRecord, error) {
	for _, rec := range s.rows {
		if rec.Participant1ID == p1 && rec.Participant2ID == p2 {
			return rec, nil
		}
	}
	return repository.ConversationRecord{}, repository.ErrNotFound
}

func (s *stubConversationStore) GetByID(_ context.Context, id string) (repository.ConversationRecord, error) {
	rec, ok := s.rows[id]
	if !ok {
		return repository.ConversationRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (s *stubConversationStore) Insert(_ context.Context, rec repository.ConversationRecord) error {
	s.rows[rec.ID] = rec
	return nil
}

func (s *stubConversationStore) ListByUser(_ context.Context, userID string) ([]repository.ConversationRecord, error) {
	out := make([]repository.ConversationRecord, 0)
	for _, rec := range s.rows {
		if rec.Participant1ID == userID || rec.Participant2ID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *stubConversationStore) TouchLastMessage(_ context.Context, id string, at time.Time) error {
	rec, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	rec.LastMessageAt = at
	s.rows[id] = rec
	return nil
}

func (s *stubConversationStore) Probe(_ context.Context) (bool, error) { return true, nil }

type stubMessageStore struct {
	rows []repository.MessageRecord
}

func (s *stubMessageStore) Insert(_ context.Context, rec repository.MessageRecord) error {
	s.rows = append(s.rows, rec)
	return nil
}

func (s *stubMessageStore) ListByConversation(_ context.Context, convID string) ([]repository.MessageRecord, error) {
	out := make([]repository.MessageRecord, 0)
	for _, rec := range s.rows {
		if rec.ConversationID == convID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *stubMessageStore) LatestContent(ctx context.Context, convID string) (string, error) {
	msgs, _ := s.ListByConversation(ctx, convID)
	if len(msgs) == 0 {
		return "", nil
	}
	return msgs[len(msgs)-1].Content, nil
}

func (s *stubMessageStore) CountUnread(_ context.Context, convID, userID string) (int, error) {
	n := 0
	for _, rec := range s.rows {
		if rec.ConversationID == convID && rec.SenderID != userID && !rec.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *stubMessageStore) CountUnreadIn(ctx context.Context, convIDs []string, userID string) (int, error) {
	total := 0
	for _, id := range convIDs {
		n, _ := s.CountUnread(ctx, id, userID)
		total += n
	}
	return total, nil
}

func (s *stubMessageStore) MarkRead(_ context.Context, ids []string, at time.Time) error {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	for i := range s.rows {
		if want[s.rows[i].ID] && !s.rows[i].IsRead {
			s.rows[i].IsRead = true
			ts := at
			s.rows[i].ReadAt = &ts
		}
	}
	return nil
}

// newStreamServer wires a MessagingHandler with one seeded
// conversation ("conv-1", alice/bob, one message from bob) behind an
// echo server that authenticates every request as alice.
func newStreamServer(t *testing.T) *echo.Echo {
	t.Helper()
	store := repository.NewStore(repository.NewMemoryKV())
	users := repository.NewUserRepo(store)
	vehicles := repository.NewVehicleRepo(store)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, model.User{ID: "alice", Email: "alice@test.com", FullName: "Alice Álvarez"}))
	require.NoError(t, users.Create(ctx, model.User{ID: "bob", Email: "bob@test.com", FullName: "Bob Buitrago"}))

	now := time.Now().UTC()
	convs := &stubConversationStore{rows: map[string]repository.ConversationRecord{
		"conv-1": {ID: "conv-1", Participant1ID: "alice", Participant2ID: "bob", LastMessageAt: now, CreatedAt: now},
	}}
	msgs := &stubMessageStore{rows: []repository.MessageRecord{
		{ID: "msg-1", ConversationID: "conv-1", SenderID: "bob", Content: "Hola, ¿sigue disponible?", SentAt: now},
	}}

	h := NewMessagingHandler(
		service.NewMessaging(convs, msgs, users, vehicles),
		10*time.Millisecond, 10*time.Millisecond,
	)

	e := echo.New()
	asAlice := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", "alice")
			return next(c)
		}
	}
	e.GET("/v1/messaging/stream", h.Stream, asAlice)
	return e
}

// streamUntil serves one stream request, cancels it after the
// given duration and returns the recorded response.
func streamUntil(t *testing.T, e *echo.Echo, target string, d time.Duration) *httptest.ResponseRecorder {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		e.ServeHTTP(rec, req)
		close(done)
	}()

	time.Sleep(d)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop on client disconnect")
	}
	return rec
}

func TestStreamPushesConversationList(t *testing.T) {
	e := newStreamServer(t)
	rec := streamUntil(t, e, "/v1/messaging/stream", 50*time.Millisecond)

	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "data: "), "expected an SSE data frame, got %q", body)
	assert.Contains(t, body, `"conv-1"`)
	assert.Contains(t, body, "Bob Buitrago")
}

func TestStreamPushesOpenConversationMessages(t *testing.T) {
	e := newStreamServer(t)
	rec := streamUntil(t, e, "/v1/messaging/stream?conversationId=conv-1", 50*time.Millisecond)

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "data: "), "expected an SSE data frame, got %q", body)
	assert.Contains(t, body, "Hola, ¿sigue disponible?")
	assert.Contains(t, body, `"msg-1"`)
}
