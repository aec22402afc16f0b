package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/repository"
)

// In-memory stand-ins for the relational messaging tables.

type fakeConversationStore struct {
	rows   map[string]repository.ConversationRecord
	broken bool
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{rows: map[string]repository.ConversationRecord{}}
}

func (f *fakeConversationStore) FindByPair(_ context.Context, p1, p2 string) (repository.ConversationRecord, error) {
	for _, rec := range f.rows {
		if rec.Participant1ID == p1 && rec.Participant2ID == p2 {
			return rec, nil
		}
	}
	return repository.ConversationRecord{}, repository.ErrNotFound
}

func (f *fakeConversationStore) GetByID(_ context.Context, id string) (repository.ConversationRecord, error) {
	rec, ok := f.rows[id]
	if !ok {
		return repository.ConversationRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (f *fakeConversationStore) Insert(_ context.Context, rec repository.ConversationRecord) error {
	f.rows[rec.ID] = rec
	return nil
}

func (f *fakeConversationStore) ListByUser(_ context.Context, userID string) ([]repository.ConversationRecord, error) {
	out := make([]repository.ConversationRecord, 0)
	for _, rec := range f.rows {
		if rec.Participant1ID == userID || rec.Participant2ID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	return out, nil
}

func (f *fakeConversationStore) TouchLastMessage(_ context.Context, id string, at time.Time) error {
	rec, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	rec.LastMessageAt = at
	f.rows[id] = rec
	return nil
}

func (f *fakeConversationStore) Probe(_ context.Context) (bool, error) {
	return !f.broken, nil
}

type fakeMessageStore struct {
	rows []repository.MessageRecord
}

func (f *fakeMessageStore) Insert(_ context.Context, rec repository.MessageRecord) error {
	f.rows = append(f.rows, rec)
	return nil
}

func (f *fakeMessageStore) ListByConversation(_ context.Context, convID string) ([]repository.MessageRecord, error) {
	out := make([]repository.MessageRecord, 0)
	for _, rec := range f.rows {
		if rec.ConversationID == convID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out, nil
}

func (f *fakeMessageStore) LatestContent(ctx context.Context, convID string) (string, error) {
	msgs, _ := f.ListByConversation(ctx, convID)
	if len(msgs) == 0 {
		return "", nil
	}
	return msgs[len(msgs)-1].Content, nil
}

func (f *fakeMessageStore) CountUnread(_ context.Context, convID, userID string) (int, error) {
	n := 0
	for _, rec := range f.rows {
		if rec.ConversationID == convID && rec.SenderID != userID && !rec.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeMessageStore) CountUnreadIn(ctx context.Context, convIDs []string, userID string) (int, error) {
	total := 0
	for _, id := range convIDs {
		n, _ := f.CountUnread(ctx, id, userID)
		total += n
	}
	return total, nil
}

func (f *fakeMessageStore) MarkRead(_ context.Context, ids []string, at time.Time) error {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	for i := range f.rows {
		if want[f.rows[i].ID] && !f.rows[i].IsRead {
			f.rows[i].IsRead = true
			ts := at
			f.rows[i].ReadAt = &ts
		}
	}
	return nil
}

type messagingFixture struct {
	svc   *Messaging
	convs *fakeConversationStore
	msgs  *fakeMessageStore
}

func newMessagingFixture(t *testing.T) *messagingFixture {
	t.Helper()
	store := newTestStore()
	users := repository.NewUserRepo(store)
	vehicles := repository.NewVehicleRepo(store)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, model.User{ID: "alice", Email: "alice@test.com", FullName: "Alice Álvarez"}))
	require.NoError(t, users.Create(ctx, model.User{ID: "bob", Email: "bob@test.com", FullName: "Bob Buitrago"}))
	require.NoError(t, vehicles.Create(ctx, model.Vehicle{ID: "veh-1", Brand: "Kia", Model: "Picanto", Year: 2020, Price: 42000000}))

	convs := newFakeConversationStore()
	msgs := &fakeMessageStore{}
	return &messagingFixture{
		svc:   NewMessaging(convs, msgs, users, vehicles),
		convs: convs,
		msgs:  msgs,
	}
}

func TestConversationPairIsCanonical(t *testing.T) {
	fx := newMessagingFixture(t)
	ctx := context.Background()

	c1, err := fx.svc.GetOrCreateConversation(ctx, "alice", "bob", "veh-1")
	require.NoError(t, err)
	c2, err := fx.svc.GetOrCreateConversation(ctx, "bob", "alice", "")
	require.NoError(t, err)

	assert.Equal(t, c1.ID, c2.ID)
	assert.Len(t, fx.convs.rows, 1)
	assert.Equal(t, "alice", c1.Participant1ID)
	assert.Equal(t, "bob", c1.Participant2ID)
	require.NotNil(t, c1.VehicleInfo)
	assert.Equal(t, "Kia", c1.VehicleInfo.Brand)
}

func TestConversationRequiresKnownUsers(t *testing.T) {
	fx := newMessagingFixture(t)
	_, err := fx.svc.GetOrCreateConversation(context.Background(), "alice", "ghost", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSendTrimsAndRefusesEmpty(t *testing.T) {
	fx := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := fx.svc.GetOrCreateConversation(ctx, "alice", "bob", "")
	require.NoError(t, err)

	_, err = fx.svc.Send(ctx, conv.ID, "alice", "   \n\t ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	msg, err := fx.svc.Send(ctx, conv.ID, "alice", "  Hola, ¿sigue disponible?  ")
	require.NoError(t, err)
	assert.Equal(t, "Hola, ¿sigue disponible?", msg.Content)
	assert.Equal(t, "Alice Álvarez", msg.SenderName)
	assert.False(t, msg.IsRead)

	_, err = fx.svc.Send(ctx, "missing", "alice", "hola")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestSendBumpsConversationActivity(t *testing.T) {
	fx := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := fx.svc.GetOrCreateConversation(ctx, "alice", "bob", "")
	require.NoError(t, err)
	before := fx.convs.rows[conv.ID].LastMessageAt

	time.Sleep(5 * time.Millisecond)
	_, err = fx.svc.Send(ctx, conv.ID, "alice", "hola")
	require.NoError(t, err)

	assert.True(t, fx.convs.rows[conv.ID].LastMessageAt.After(before))
}

func TestUnreadCountsAndReadFlip(t *testing.T) {
	fx := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := fx.svc.GetOrCreateConversation(ctx, "alice", "bob", "")
	require.NoError(t, err)

	for _, text := range []string{"uno", "dos", "tres"} {
		_, err = fx.svc.Send(ctx, conv.ID, "alice", text)
		require.NoError(t, err)
	}

	// sender sees no unread, recipient sees three
	n, err := fx.svc.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	n, err = fx.svc.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	convs, err := fx.svc.UserConversations(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 3, convs[0].UnreadCount)
	assert.Equal(t, "tres", convs[0].LastMessagePreview)

	// fetching the conversation as the recipient flips them to read
	msgs, err := fx.svc.ConversationMessages(ctx, conv.ID, "bob")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for _, m := range msgs {
		assert.True(t, m.IsRead)
		assert.NotNil(t, m.ReadAt)
	}

	n, err = fx.svc.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// the flip is one-way: the sender fetching does not unread them
	firstRead := fx.msgs.rows[0].ReadAt
	_, err = fx.svc.ConversationMessages(ctx, conv.ID, "alice")
	require.NoError(t, err)
	assert.True(t, fx.msgs.rows[0].IsRead)
	assert.Equal(t, firstRead, fx.msgs.rows[0].ReadAt)
}

func TestSenderFetchDoesNotMarkOwnMessages(t *testing.T) {
	fx := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := fx.svc.GetOrCreateConversation(ctx, "alice", "bob", "")
	require.NoError(t, err)
	_, err = fx.svc.Send(ctx, conv.ID, "alice", "hola")
	require.NoError(t, err)

	_, err = fx.svc.ConversationMessages(ctx, conv.ID, "alice")
	require.NoError(t, err)

	n, err := fx.svc.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPreviewIsTruncated(t *testing.T) {
	fx := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := fx.svc.GetOrCreateConversation(ctx, "alice", "bob", "")
	require.NoError(t, err)
	long := strings.Repeat("ñ", 80)
	_, err = fx.svc.Send(ctx, conv.ID, "alice", long)
	require.NoError(t, err)

	convs, err := fx.svc.UserConversations(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, strings.Repeat("ñ", 50), convs[0].LastMessagePreview)
}

func TestHealthyReflectsProbe(t *testing.T) {
	fx := newMessagingFixture(t)
	ok, err := fx.svc.Healthy(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	fx.convs.broken = true
	ok, err = fx.svc.Healthy(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
