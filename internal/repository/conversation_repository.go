package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// ConversationRecord mirrors the `conversations` table in the remote
// relational store. Participant ids are stored in sorted order so
// that one row exists per unordered pair. Business logic should use
// model.Conversation, which adds hydrated names and snapshots.
type ConversationRecord struct {
	ID             string
	Participant1ID string
	Participant2ID string
	VehicleID      *string
	LastMessageAt  time.Time
	CreatedAt      time.Time
}

// ConversationRepo provides data access to the conversations table.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo returns a ConversationRepo bound to the given
// database.
func NewConversationRepo(db *sql.DB) *ConversationRepo { return &ConversationRepo{db: db} }

const conversationCols = "id, participant_1_id, participant_2_id, vehicle_id, last_message_at, created_at"

func scanConversation(row interface{ Scan(...any) error }) (ConversationRecord, error) {
	var rec ConversationRecord
	var vehicleID sql.NullString
	err := row.Scan(&rec.ID, &rec.Participant1ID, &rec.Participant2ID, &vehicleID, &rec.LastMessageAt, &rec.CreatedAt)
	if err != nil {
		return ConversationRecord{}, err
	}
	if vehicleID.Valid {
		v := vehicleID.String
		rec.VehicleID = &v
	}
	return rec, nil
}

// FindByPair looks up the conversation for an already-sorted
// participant pair. ErrNotFound when no row exists.
func (r *ConversationRepo) FindByPair(ctx context.Context, participant1, participant2 string) (ConversationRecord, error) {
	rec, err := scanConversation(r.db.QueryRowContext(ctx,
		"SELECT "+conversationCols+" FROM conversations WHERE participant_1_id=? AND participant_2_id=? LIMIT 1",
		participant1, participant2))
	if err == sql.ErrNoRows {
		return ConversationRecord{}, ErrNotFound
	}
	return rec, err
}

// GetByID fetches a conversation by id, ErrNotFound when absent.
func (r *ConversationRepo) GetByID(ctx context.Context, id string) (ConversationRecord, error) {
	rec, err := scanConversation(r.db.QueryRowContext(ctx,
		"SELECT "+conversationCols+" FROM conversations WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return ConversationRecord{}, ErrNotFound
	}
	return rec, err
}

// Insert creates a new conversation row.
func (r *ConversationRepo) Insert(ctx context.Context, rec ConversationRecord) error {
	var vehicleID any
	if rec.VehicleID != nil {
		vehicleID = *rec.VehicleID
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO conversations (id, participant_1_id, participant_2_id, vehicle_id, last_message_at, created_at) VALUES (?,?,?,?,?,?)",
		rec.ID, rec.Participant1ID, rec.Participant2ID, vehicleID, rec.LastMessageAt, rec.CreatedAt)
	return err
}

// ListByUser returns every conversation the user participates in,
// most recent activity first.
func (r *ConversationRepo) ListByUser(ctx context.Context, userID string) ([]ConversationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+conversationCols+" FROM conversations WHERE participant_1_id=? OR participant_2_id=? ORDER BY last_message_at DESC",
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ConversationRecord, 0)
	for rows.Next() {
		rec, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// TouchLastMessage bumps last_message_at after a send.
func (r *ConversationRepo) TouchLastMessage(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, "UPDATE conversations SET last_message_at=? WHERE id=?", at, id)
	return err
}

// Probe reports whether the messaging tables exist and are
// reachable. A missing table reads as (false, nil) so callers can
// surface a setup error instead of an empty state; any other failure
// is a connectivity fault.
func (r *ConversationRepo) Probe(ctx context.Context) (bool, error) {
	for _, table := range []string{"conversations", "messages"} {
		var n int64
		err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
		if err != nil {
			if isMissingTable(err) {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}

// MySQL error 1146: table doesn't exist.
func isMissingTable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1146") || strings.Contains(msg, "doesn't exist")
}
