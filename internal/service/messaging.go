package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/repository"
)

// ConversationStore is the conversations-table access the messaging
// manager needs. *repository.ConversationRepo implements it; tests
// substitute an in-memory fake.
type ConversationStore interface {
	FindByPair(ctx context.Context, participant1, participant2 string) (repository.ConversationRecord, error)
	GetByID(ctx context.Context, id string) (repository.ConversationRecord, error)
	Insert(ctx context.Context, rec repository.ConversationRecord) error
	ListByUser(ctx context.Context, userID string) ([]repository.ConversationRecord, error)
	TouchLastMessage(ctx context.Context, id string, at time.Time) error
	Probe(ctx context.Context) (bool, error)
}

// MessageStore is the messages-table access the messaging manager
// needs. *repository.MessageRepo implements it.
type MessageStore interface {
	Insert(ctx context.Context, rec repository.MessageRecord) error
	ListByConversation(ctx context.Context, conversationID string) ([]repository.MessageRecord, error)
	LatestContent(ctx context.Context, conversationID string) (string, error)
	CountUnread(ctx context.Context, conversationID, userID string) (int, error)
	CountUnreadIn(ctx context.Context, conversationIDs []string, userID string) (int, error)
	MarkRead(ctx context.Context, ids []string, at time.Time) error
}

// Messaging manages buyer/seller conversations stored in the remote
// relational store. Participant names and vehicle snapshots are
// hydrated from the local store on read.
type Messaging struct {
	convs    ConversationStore
	msgs     MessageStore
	users    *repository.UserRepo
	vehicles *repository.VehicleRepo
}

// NewMessaging returns a Messaging manager.
func NewMessaging(convs ConversationStore, msgs MessageStore, users *repository.UserRepo, vehicles *repository.VehicleRepo) *Messaging {
	return &Messaging{convs: convs, msgs: msgs, users: users, vehicles: vehicles}
}

// Healthy reports whether the messaging tables are reachable.
func (s *Messaging) Healthy(ctx context.Context) (bool, error) {
	return s.convs.Probe(ctx)
}

// GetOrCreateConversation returns the single conversation for an
// unordered user pair, creating it on first contact. The pair is
// canonicalized by id order, so (a,b) and (b,a) resolve to the same
// row. An optional vehicle id attaches listing context.
func (s *Messaging) GetOrCreateConversation(ctx context.Context, userA, userB, vehicleID string) (model.Conversation, error) {
	for _, id := range []string{userA, userB} {
		if _, err := s.users.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.Conversation{}, ErrUserNotFound
			}
			return model.Conversation{}, err
		}
	}
	p1, p2 := userA, userB
	if p2 < p1 {
		p1, p2 = p2, p1
	}
	rec, err := s.convs.FindByPair(ctx, p1, p2)
	if errors.Is(err, repository.ErrNotFound) {
		now := time.Now().UTC()
		rec = repository.ConversationRecord{
			ID:             uuid.NewString(),
			Participant1ID: p1,
			Participant2ID: p2,
			LastMessageAt:  now,
			CreatedAt:      now,
		}
		if vehicleID != "" {
			rec.VehicleID = &vehicleID
		}
		if err := s.convs.Insert(ctx, rec); err != nil {
			return model.Conversation{}, err
		}
	} else if err != nil {
		return model.Conversation{}, err
	}
	return s.hydrate(ctx, rec, userA)
}

// Send appends a message to a conversation and bumps its activity
// timestamp. Content is trimmed; empty messages are refused.
func (s *Messaging) Send(ctx context.Context, conversationID, senderID, content string) (model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Message{}, ErrEmptyMessage
	}
	if _, err := s.convs.GetByID(ctx, conversationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Message{}, ErrConversationNotFound
		}
		return model.Message{}, err
	}
	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Message{}, ErrUserNotFound
		}
		return model.Message{}, err
	}
	now := time.Now().UTC()
	rec := repository.MessageRecord{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		SentAt:         now,
		IsRead:         false,
	}
	if err := s.msgs.Insert(ctx, rec); err != nil {
		return model.Message{}, err
	}
	if err := s.convs.TouchLastMessage(ctx, conversationID, now); err != nil {
		return model.Message{}, err
	}
	return model.Message{
		ID:             rec.ID,
		ConversationID: rec.ConversationID,
		SenderID:       rec.SenderID,
		SenderName:     sender.FullName,
		Content:        rec.Content,
		SentAt:         rec.SentAt,
	}, nil
}

// ConversationMessages returns a conversation's messages in
// chronological order for one participant, flipping the other
// sender's unread messages to read as a side effect. The flip is
// one-way; already-read messages keep their original read timestamp.
func (s *Messaging) ConversationMessages(ctx context.Context, conversationID, userID string) ([]model.Message, error) {
	if _, err := s.convs.GetByID(ctx, conversationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	recs, err := s.msgs.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var toMark []string
	for _, rec := range recs {
		if rec.SenderID != userID && !rec.IsRead {
			toMark = append(toMark, rec.ID)
		}
	}
	if len(toMark) > 0 {
		if err := s.msgs.MarkRead(ctx, toMark, now); err != nil {
			return nil, err
		}
	}

	names := map[string]string{}
	out := make([]model.Message, 0, len(recs))
	for _, rec := range recs {
		m := model.Message{
			ID:             rec.ID,
			ConversationID: rec.ConversationID,
			SenderID:       rec.SenderID,
			SenderName:     s.displayName(ctx, names, rec.SenderID),
			Content:        rec.Content,
			SentAt:         rec.SentAt,
			IsRead:         rec.IsRead,
			ReadAt:         rec.ReadAt,
		}
		if !m.IsRead && rec.SenderID != userID {
			m.IsRead = true
			at := now
			m.ReadAt = &at
		}
		out = append(out, m)
	}
	return out, nil
}

// UserConversations returns the user's conversations, most recent
// activity first, hydrated with names, vehicle snapshots, previews
// and per-conversation unread counts.
func (s *Messaging) UserConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	recs, err := s.convs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Conversation, 0, len(recs))
	for _, rec := range recs {
		c, err := s.hydrate(ctx, rec, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// UnreadCount returns the user's total unread messages across all
// conversations, for the navigation badge.
func (s *Messaging) UnreadCount(ctx context.Context, userID string) (int, error) {
	recs, err := s.convs.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ID)
	}
	return s.msgs.CountUnreadIn(ctx, ids, userID)
}

const previewLen = 50

func (s *Messaging) hydrate(ctx context.Context, rec repository.ConversationRecord, forUser string) (model.Conversation, error) {
	names := map[string]string{}
	c := model.Conversation{
		ID:               rec.ID,
		Participant1ID:   rec.Participant1ID,
		Participant1Name: s.displayName(ctx, names, rec.Participant1ID),
		Participant2ID:   rec.Participant2ID,
		Participant2Name: s.displayName(ctx, names, rec.Participant2ID),
		LastMessageAt:    rec.LastMessageAt,
		CreatedAt:        rec.CreatedAt,
	}
	if rec.VehicleID != nil {
		c.VehicleID = *rec.VehicleID
		if v, err := s.vehicles.GetByID(ctx, *rec.VehicleID); err == nil {
			c.VehicleInfo = &model.ConversationCar{
				Brand: v.Brand,
				Model: v.Model,
				Year:  v.Year,
				Price: v.Price,
			}
		}
	}
	preview, err := s.msgs.LatestContent(ctx, rec.ID)
	if err != nil {
		return model.Conversation{}, err
	}
	if r := []rune(preview); len(r) > previewLen {
		preview = string(r[:previewLen])
	}
	c.LastMessagePreview = preview
	unread, err := s.msgs.CountUnread(ctx, rec.ID, forUser)
	if err != nil {
		return model.Conversation{}, err
	}
	c.UnreadCount = unread
	return c, nil
}

// displayName resolves a user's name with a per-call cache. Deleted
// accounts show a placeholder instead of failing the whole query.
func (s *Messaging) displayName(ctx context.Context, cache map[string]string, userID string) string {
	if name, ok := cache[userID]; ok {
		return name
	}
	name := "Usuario"
	if u, err := s.users.GetByID(ctx, userID); err == nil {
		name = u.FullName
	}
	cache[userID] = name
	return name
}
