package chat

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxMessageLength caps a single chat message in characters.
const MaxMessageLength = 4000

// MaxEmojiLength caps a reaction in characters.
const MaxEmojiLength = 16

// Domain errors
var (
	ErrEmptySenderID   = errors.New("sender ID is required")
	ErrNoRecipient     = errors.New("receiverID or groupID is required")
	ErrTwoRecipients   = errors.New("Message cannot target both a user and a group")
	ErrEmptyMessage    = errors.New("Message cannot be empty")
	ErrMessageTooLong  = errors.New("Message cannot exceed 4000 characters")
	ErrSelfMessage     = errors.New("Cannot send a message to yourself")
	ErrEmptyEmoji      = errors.New("Emoji is required")
	ErrEmojiTooLong    = errors.New("Emoji is too long")
	ErrMessageNotFound = errors.New("Message not found")
	ErrReceiverMissing = errors.New("Receiver not found or inactive")
)

// Message is one chat message, either direct (ReceiverID) or to a group (GroupID).
type Message struct {
	ID         string    `json:"chatID"`
	SenderID   string    `json:"senderID"`
	ReceiverID string    `json:"receiverID,omitempty"`
	GroupID    string    `json:"groupID,omitempty"`
	Body       string    `json:"message"`
	SentAt     time.Time `json:"sentAt"`
}

// Validate checks if the Message has valid data and trims its body.
// PRE: Message struct is populated
// POST: Returns nil if valid, error otherwise
func (m *Message) Validate() error {
	if m.SenderID == "" {
		return ErrEmptySenderID
	}
	if m.ReceiverID == "" && m.GroupID == "" {
		return ErrNoRecipient
	}
	if m.ReceiverID != "" && m.GroupID != "" {
		return ErrTwoRecipients
	}
	if m.ReceiverID == m.SenderID {
		return ErrSelfMessage
	}
	m.Body = strings.TrimSpace(m.Body)
	if m.Body == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(m.Body) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if m.SentAt.IsZero() {
		return errors.New("sent_at must be set")
	}
	return nil
}

// IsDirect reports whether the message was sent to a single user.
func (m *Message) IsDirect() bool {
	return m.ReceiverID != ""
}

// Involves reports whether uid sent or directly received the message.
// Group membership is checked by the caller.
func (m *Message) Involves(uid string) bool {
	return m.SenderID == uid || m.ReceiverID == uid
}

// Reaction is one user's emoji on one message.
type Reaction struct {
	ChatID    string    `json:"chatID"`
	UserID    string    `json:"uid"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks if the Reaction has valid data.
func (r *Reaction) Validate() error {
	r.Emoji = strings.TrimSpace(r.Emoji)
	if r.Emoji == "" {
		return ErrEmptyEmoji
	}
	if utf8.RuneCountInString(r.Emoji) > MaxEmojiLength {
		return ErrEmojiTooLong
	}
	return nil
}

// HistoryEntry is a message as shown in a conversation view.
type HistoryEntry struct {
	Message
	SenderName string     `json:"senderName"`
	Seen       bool       `json:"seen"`
	Reactions  []Reaction `json:"reactions"`
}

// Conversation summarises the latest direct message exchanged with one partner.
type Conversation struct {
	PartnerID     string    `json:"otherUserID"`
	PartnerName   string    `json:"otherUserName"`
	PartnerRole   string    `json:"otherUserRole"`
	LastChatID    string    `json:"chatID"`
	LastMessage   string    `json:"lastMessage"`
	LastSenderID  string    `json:"lastSenderID"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   int       `json:"unreadCount"`
}
