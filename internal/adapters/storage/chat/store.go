package chat

import (
	"context"
	"time"

	domain "clubhub/internal/domain/chat"
)

// MessageStore persists chat messages, reactions and read receipts.
type MessageStore interface {
	SaveMessage(ctx context.Context, m domain.Message) error
	GetMessage(ctx context.Context, chatID string) (domain.Message, error)
	ListConversations(ctx context.Context, uid string) ([]domain.Conversation, error)
	DirectHistory(ctx context.Context, uid, otherID string, limit int) ([]domain.HistoryEntry, error)
	GroupHistory(ctx context.Context, groupID string, limit int) ([]domain.HistoryEntry, error)
	UpsertReaction(ctx context.Context, r domain.Reaction) error
	MarkSeen(ctx context.Context, chatID, uid string, at time.Time) error
}

// GroupStore persists chat groups and their members.
type GroupStore interface {
	CreateGroup(ctx context.Context, g domain.Group, memberIDs []string) error
	GetGroup(ctx context.Context, id string) (domain.Group, error)
	ListGroupsForUser(ctx context.Context, uid string) ([]domain.Membership, error)
	ListMembers(ctx context.Context, groupID string) ([]domain.Member, error)
	GetMember(ctx context.Context, groupID, uid string) (domain.Member, error)
	AddMember(ctx context.Context, m domain.Member) error
	RemoveMember(ctx context.Context, groupID, uid string) error
	CountAdmins(ctx context.Context, groupID string) (int, error)
	SoftDeleteGroup(ctx context.Context, groupID string) error
	MemberIDs(ctx context.Context, groupID string) ([]string, error)
}

var (
	_ MessageStore = (*SQLiteStore)(nil)
	_ GroupStore   = (*SQLiteStore)(nil)
)
