package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// MessageRecord mirrors the `messages` table in the remote
// relational store.
type MessageRecord struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	SentAt         time.Time
	IsRead         bool
	ReadAt         *time.Time
}

// MessageRepo provides data access to the messages table. Messages
// are append-only; the only mutation is the one-way read flip.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo returns a MessageRepo bound to the given database.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

const messageCols = "id, conversation_id, sender_id, content, sent_at, is_read, read_at"

func scanMessage(row interface{ Scan(...any) error }) (MessageRecord, error) {
	var rec MessageRecord
	var readAt sql.NullTime
	err := row.Scan(&rec.ID, &rec.ConversationID, &rec.SenderID, &rec.Content, &rec.SentAt, &rec.IsRead, &readAt)
	if err != nil {
		return MessageRecord{}, err
	}
	if readAt.Valid {
		t := readAt.Time
		rec.ReadAt = &t
	}
	return rec, nil
}

// Insert appends a message row.
func (r *MessageRepo) Insert(ctx context.Context, rec MessageRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (id, conversation_id, sender_id, content, sent_at, is_read) VALUES (?,?,?,?,?,?)",
		rec.ID, rec.ConversationID, rec.SenderID, rec.Content, rec.SentAt, rec.IsRead)
	return err
}

// ListByConversation returns all messages of a conversation in
// chronological order.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]MessageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+messageCols+" FROM messages WHERE conversation_id=? ORDER BY sent_at ASC, id ASC",
		conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MessageRecord, 0)
	for rows.Next() {
		rec, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LatestContent returns the content of the most recent message in
// the conversation, or "" when the conversation is empty.
func (r *MessageRepo) LatestContent(ctx context.Context, conversationID string) (string, error) {
	var content string
	err := r.db.QueryRowContext(ctx,
		"SELECT content FROM messages WHERE conversation_id=? ORDER BY sent_at DESC, id DESC LIMIT 1",
		conversationID).Scan(&content)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return content, err
}

// CountUnread counts unread messages in one conversation that were
// not sent by the given user.
func (r *MessageRepo) CountUnread(ctx context.Context, conversationID, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE conversation_id=? AND sender_id<>? AND is_read=0",
		conversationID, userID).Scan(&n)
	return n, err
}

// CountUnreadIn counts unread messages across several conversations
// that were not sent by the given user.
func (r *MessageRepo) CountUnreadIn(ctx context.Context, conversationIDs []string, userID string) (int, error) {
	if len(conversationIDs) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(conversationIDs)), ",")
	args := make([]any, 0, len(conversationIDs)+1)
	for _, id := range conversationIDs {
		args = append(args, id)
	}
	args = append(args, userID)
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE conversation_id IN ("+placeholders+") AND sender_id<>? AND is_read=0",
		args...).Scan(&n)
	return n, err
}

// MarkRead flips the given messages to read with the provided
// timestamp. Already-read rows are left untouched so the flip stays
// monotonic.
func (r *MessageRepo) MarkRead(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, at)
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE messages SET is_read=1, read_at=? WHERE id IN ("+placeholders+") AND is_read=0",
		args...)
	return err
}
