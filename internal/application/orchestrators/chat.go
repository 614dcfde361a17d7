package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"clubhub/internal/domain/account"
	"clubhub/internal/domain/chat"
)

var (
	ErrMissingGroupID = errors.New("groupID is required")
	ErrMissingChatID  = errors.New("chatID is required")
)

// MessagePublisher pushes a stored message to connected clients.
type MessagePublisher interface {
	PublishMessage(recipients []string, m chat.Message)
}

// GroupMembership reads group state needed for access checks.
type GroupMembership interface {
	GetGroup(ctx context.Context, id string) (chat.Group, error)
	GetMember(ctx context.Context, groupID, uid string) (chat.Member, error)
}

// GroupMembershipWithIDs adds member fan-out to GroupMembership.
type GroupMembershipWithIDs interface {
	GroupMembership
	MemberIDs(ctx context.Context, groupID string) ([]string, error)
}

// activeUser returns the user if it exists and is Active, else notFound.
func activeUser(ctx context.Context, accounts AccountLookup, uid string, notFound error) (account.Account, error) {
	u, err := accounts.GetByID(ctx, uid)
	if errors.Is(err, account.ErrNotFound) {
		return account.Account{}, notFound
	}
	if err != nil {
		return account.Account{}, err
	}
	if !u.IsActive() {
		return account.Account{}, notFound
	}
	return u, nil
}

// requireGroupAdmin returns chat.ErrNotGroupAdmin unless uid administers a live group.
func requireGroupAdmin(ctx context.Context, groups GroupMembership, groupID, uid string) error {
	if _, err := groups.GetGroup(ctx, groupID); err != nil {
		return err
	}
	m, err := groups.GetMember(ctx, groupID, uid)
	if errors.Is(err, chat.ErrNotGroupMember) {
		return chat.ErrNotGroupAdmin
	}
	if err != nil {
		return err
	}
	if !m.IsAdmin() {
		return chat.ErrNotGroupAdmin
	}
	return nil
}

// MessageStoreForSend defines the store interface needed by SendMessage.
type MessageStoreForSend interface {
	SaveMessage(ctx context.Context, m chat.Message) error
}

// SendMessageInput carries input for the send-message orchestrator.
type SendMessageInput struct {
	SenderID   string
	ReceiverID string
	GroupID    string
	Body       string
}

// SendMessageDeps holds dependencies for SendMessage.
type SendMessageDeps struct {
	MessageStore MessageStoreForSend
	AccountStore AccountLookup
	GroupStore   GroupMembershipWithIDs
	Publisher    MessagePublisher
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSendMessage stores a direct or group message and pushes it to online recipients.
// PRE: SenderID is the authenticated caller
// POST: Message persisted; receiver is Active or sender is a group member
func ExecuteSendMessage(ctx context.Context, input SendMessageInput, deps SendMessageDeps) (chat.Message, error) {
	m := chat.Message{
		ID:         deps.GenerateID(),
		SenderID:   input.SenderID,
		ReceiverID: strings.TrimSpace(input.ReceiverID),
		GroupID:    strings.TrimSpace(input.GroupID),
		Body:       input.Body,
		SentAt:     deps.Now(),
	}
	if err := m.Validate(); err != nil {
		return chat.Message{}, err
	}

	var recipients []string
	if m.IsDirect() {
		if _, err := activeUser(ctx, deps.AccountStore, m.ReceiverID, chat.ErrReceiverMissing); err != nil {
			return chat.Message{}, err
		}
		recipients = []string{m.SenderID, m.ReceiverID}
	} else {
		if _, err := deps.GroupStore.GetGroup(ctx, m.GroupID); err != nil {
			return chat.Message{}, err
		}
		if _, err := deps.GroupStore.GetMember(ctx, m.GroupID, m.SenderID); err != nil {
			return chat.Message{}, err
		}
		ids, err := deps.GroupStore.MemberIDs(ctx, m.GroupID)
		if err != nil {
			return chat.Message{}, err
		}
		recipients = ids
	}

	if err := deps.MessageStore.SaveMessage(ctx, m); err != nil {
		return chat.Message{}, err
	}
	if deps.Publisher != nil {
		deps.Publisher.PublishMessage(recipients, m)
	}
	slog.Debug("chat_event", "event", "message_sent", "chat_id", m.ID, "direct", m.IsDirect())
	return m, nil
}

// GroupStoreForCreate defines the store interface needed by CreateGroup.
type GroupStoreForCreate interface {
	CreateGroup(ctx context.Context, g chat.Group, memberIDs []string) error
}

// CreateGroupInput carries input for the create-group orchestrator.
type CreateGroupInput struct {
	CreatorID   string
	Name        string
	Description string
	AvatarURL   string
	MemberIDs   []string
}

// CreateGroupDeps holds dependencies for CreateGroup.
type CreateGroupDeps struct {
	GroupStore   GroupStoreForCreate
	AccountStore AccountLookup
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateGroup creates a group with the creator as admin.
// POST: Group, creator membership and initial memberships are written atomically
func ExecuteCreateGroup(ctx context.Context, input CreateGroupInput, deps CreateGroupDeps) (chat.Group, error) {
	g := chat.Group{
		ID:          deps.GenerateID(),
		Name:        input.Name,
		Description: strings.TrimSpace(input.Description),
		AvatarURL:   strings.TrimSpace(input.AvatarURL),
		CreatedBy:   input.CreatorID,
		CreatedAt:   deps.Now(),
	}
	if err := g.Validate(); err != nil {
		return chat.Group{}, err
	}
	members := make([]string, 0, len(input.MemberIDs))
	for _, id := range input.MemberIDs {
		id = strings.TrimSpace(id)
		if id == "" || id == input.CreatorID {
			continue
		}
		if _, err := activeUser(ctx, deps.AccountStore, id, chat.ErrUserNotFound); err != nil {
			return chat.Group{}, err
		}
		members = append(members, id)
	}
	if err := deps.GroupStore.CreateGroup(ctx, g, members); err != nil {
		return chat.Group{}, err
	}
	slog.Info("chat_event", "event", "group_created", "group_id", g.ID, "by", g.CreatedBy, "members", len(members)+1)
	return g, nil
}

// GroupStoreForMembers defines the store interface needed by member management.
type GroupStoreForMembers interface {
	GroupMembership
	AddMember(ctx context.Context, m chat.Member) error
	RemoveMember(ctx context.Context, groupID, uid string) error
	CountAdmins(ctx context.Context, groupID string) (int, error)
	SoftDeleteGroup(ctx context.Context, groupID string) error
}

// GroupMemberInput names a group, the acting user and the affected user.
type GroupMemberInput struct {
	ActorID string
	GroupID string
	UserID  string
}

// GroupMemberDeps holds dependencies for member management.
type GroupMemberDeps struct {
	GroupStore   GroupStoreForMembers
	AccountStore AccountLookup
	Now          func() time.Time
}

// ExecuteAddGroupMember adds an active user to a group.
// PRE: ActorID is a group admin
// POST: UserID is a member with role member
func ExecuteAddGroupMember(ctx context.Context, input GroupMemberInput, deps GroupMemberDeps) error {
	if input.GroupID == "" {
		return ErrMissingGroupID
	}
	if input.UserID == "" {
		return ErrMissingUserID
	}
	if err := requireGroupAdmin(ctx, deps.GroupStore, input.GroupID, input.ActorID); err != nil {
		return err
	}
	if _, err := activeUser(ctx, deps.AccountStore, input.UserID, chat.ErrUserNotFound); err != nil {
		return err
	}
	return deps.GroupStore.AddMember(ctx, chat.Member{
		GroupID:  input.GroupID,
		UserID:   input.UserID,
		Role:     chat.MemberRoleMember,
		JoinedAt: deps.Now(),
	})
}

// ExecuteRemoveGroupMember removes a member. Members may remove themselves.
// PRE: ActorID is a group admin or UserID
// INVARIANT: A group keeps at least one admin
func ExecuteRemoveGroupMember(ctx context.Context, input GroupMemberInput, deps GroupMemberDeps) error {
	if input.GroupID == "" {
		return ErrMissingGroupID
	}
	if input.UserID == "" {
		return ErrMissingUserID
	}
	if input.ActorID != input.UserID {
		if err := requireGroupAdmin(ctx, deps.GroupStore, input.GroupID, input.ActorID); err != nil {
			return err
		}
	} else if _, err := deps.GroupStore.GetGroup(ctx, input.GroupID); err != nil {
		return err
	}

	target, err := deps.GroupStore.GetMember(ctx, input.GroupID, input.UserID)
	if errors.Is(err, chat.ErrNotGroupMember) {
		return chat.ErrNotMember
	}
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		n, err := deps.GroupStore.CountAdmins(ctx, input.GroupID)
		if err != nil {
			return err
		}
		if n <= 1 {
			return chat.ErrLastAdmin
		}
	}
	return deps.GroupStore.RemoveMember(ctx, input.GroupID, input.UserID)
}

// ExecuteDeleteGroup hides a group from every member.
// PRE: ActorID is a group admin
func ExecuteDeleteGroup(ctx context.Context, input GroupMemberInput, deps GroupMemberDeps) error {
	if input.GroupID == "" {
		return ErrMissingGroupID
	}
	if err := requireGroupAdmin(ctx, deps.GroupStore, input.GroupID, input.ActorID); err != nil {
		return err
	}
	if err := deps.GroupStore.SoftDeleteGroup(ctx, input.GroupID); err != nil {
		return err
	}
	slog.Info("chat_event", "event", "group_deleted", "group_id", input.GroupID, "by", input.ActorID)
	return nil
}

// MessageStoreForReceipts defines the store interface needed by reactions and read receipts.
type MessageStoreForReceipts interface {
	GetMessage(ctx context.Context, chatID string) (chat.Message, error)
	UpsertReaction(ctx context.Context, r chat.Reaction) error
	MarkSeen(ctx context.Context, chatID, uid string, at time.Time) error
}

// MessageReceiptInput names a message and the acting user.
type MessageReceiptInput struct {
	UserID string
	ChatID string
	Emoji  string
}

// MessageReceiptDeps holds dependencies for reactions and read receipts.
type MessageReceiptDeps struct {
	MessageStore MessageStoreForReceipts
	GroupStore   GroupMembership
	Now          func() time.Time
}

// visibleMessage loads chatID and hides it from users outside the conversation.
func visibleMessage(ctx context.Context, input MessageReceiptInput, deps MessageReceiptDeps) (chat.Message, error) {
	if input.ChatID == "" {
		return chat.Message{}, ErrMissingChatID
	}
	m, err := deps.MessageStore.GetMessage(ctx, input.ChatID)
	if err != nil {
		return chat.Message{}, err
	}
	if m.IsDirect() {
		if !m.Involves(input.UserID) {
			return chat.Message{}, chat.ErrMessageNotFound
		}
		return m, nil
	}
	if _, err := deps.GroupStore.GetMember(ctx, m.GroupID, input.UserID); err != nil {
		if errors.Is(err, chat.ErrNotGroupMember) {
			return chat.Message{}, chat.ErrMessageNotFound
		}
		return chat.Message{}, err
	}
	return m, nil
}

// ExecuteAddReaction attaches an emoji to a message the user can see.
// POST: One row per (chat, user, emoji); repeats refresh createdAt
func ExecuteAddReaction(ctx context.Context, input MessageReceiptInput, deps MessageReceiptDeps) (chat.Reaction, error) {
	r := chat.Reaction{ChatID: input.ChatID, UserID: input.UserID, Emoji: input.Emoji, CreatedAt: deps.Now()}
	if err := r.Validate(); err != nil {
		return chat.Reaction{}, err
	}
	if _, err := visibleMessage(ctx, input, deps); err != nil {
		return chat.Reaction{}, err
	}
	if err := deps.MessageStore.UpsertReaction(ctx, r); err != nil {
		return chat.Reaction{}, err
	}
	return r, nil
}

// ExecuteMarkSeen records that the user has read a message.
func ExecuteMarkSeen(ctx context.Context, input MessageReceiptInput, deps MessageReceiptDeps) error {
	if _, err := visibleMessage(ctx, input, deps); err != nil {
		return err
	}
	return deps.MessageStore.MarkSeen(ctx, input.ChatID, input.UserID, deps.Now())
}
