package model

import "time"

// Conversation pairs two users, canonicalized so that
// Participant1ID < Participant2ID; for a given unordered pair at most
// one conversation exists. Conversations and messages live in the
// remote relational store, not in the local persistent store.
// Participant names, the vehicle snapshot, the preview and the unread
// count are hydrated from local reference data when queried.
//
// Fields:
//  ID                 - conversations.id
//  Participant1ID     - conversations.participant_1_id (smaller id)
//  Participant2ID     - conversations.participant_2_id (larger id)
//  Participant1Name / Participant2Name - hydrated display names.
//  VehicleID          - conversations.vehicle_id (optional)
//  VehicleInfo        - hydrated vehicle snapshot, if any.
//  LastMessageAt      - conversations.last_message_at
//  LastMessagePreview - first 50 chars of the latest message.
//  UnreadCount        - unread messages from the other participant,
//                       computed for the querying user only.
//  CreatedAt          - conversations.created_at
type Conversation struct {
	ID                 string            `json:"id"`
	Participant1ID     string            `json:"participant1Id"`
	Participant1Name   string            `json:"participant1Name"`
	Participant2ID     string            `json:"participant2Id"`
	Participant2Name   string            `json:"participant2Name"`
	VehicleID          string            `json:"vehicleId,omitempty"`
	VehicleInfo        *ConversationCar  `json:"vehicleInfo,omitempty"`
	LastMessageAt      time.Time         `json:"lastMessageAt"`
	LastMessagePreview string            `json:"lastMessagePreview,omitempty"`
	UnreadCount        int               `json:"unreadCount"`
	CreatedAt          time.Time         `json:"createdAt"`
}

// ConversationCar is the vehicle snapshot attached to a conversation.
type ConversationCar struct {
	Brand string  `json:"brand"`
	Model string  `json:"model"`
	Year  int     `json:"year"`
	Price float64 `json:"price"`
}

// Message is a single chat message. Messages are append-only; the
// read flag flips unread -> read when the recipient fetches the
// conversation and never reverts.
//
// Fields:
//  ID             - messages.id
//  ConversationID - messages.conversation_id
//  SenderID       - messages.sender_id
//  SenderName     - hydrated display name.
//  Content        - trimmed, non-empty text.
//  SentAt         - messages.sent_at
//  IsRead         - messages.is_read
//  ReadAt         - messages.read_at (nullable)
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	SenderID       string     `json:"senderId"`
	SenderName     string     `json:"senderName"`
	Content        string     `json:"content"`
	SentAt         time.Time  `json:"sentAt"`
	IsRead         bool       `json:"isRead"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
}
