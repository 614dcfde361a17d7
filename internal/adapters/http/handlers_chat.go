package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"clubhub/internal/adapters/http/middleware"
	"clubhub/internal/application/orchestrators"
	"clubhub/internal/domain/account"
	"clubhub/internal/domain/chat"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 500
	userSearchLimit     = 20
)

var errMissingOtherUser = errors.New("otherUserID is required")

type sendMessageRequest struct {
	ReceiverID string `json:"receiverID"`
	GroupID    string `json:"groupID"`
	Message    string `json:"message"`
}

type createGroupRequest struct {
	GroupName   string   `json:"groupName" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=500"`
	AvatarURL   string   `json:"avatarUrl" validate:"omitempty,http_url"`
	MemberIDs   []string `json:"memberIDs" validate:"max=200"`
}

type groupMemberRequest struct {
	GroupID string `json:"groupID"`
	UserID  string `json:"userID"`
}

type messageReceiptRequest struct {
	ChatID string `json:"chatID"`
	Emoji  string `json:"emoji"`
}

var groupOverrides = map[string]error{
	"groupName.required": chat.ErrEmptyGroupName,
	"groupName.max":      chat.ErrGroupNameTooLong,
	"avatarUrl.http_url": chat.ErrInvalidAvatarURL,
}

// handleChat handles GET/POST/DELETE for /api/chat?action=...
// PRE: Caller is authenticated
// POST: Dispatches on method and action; unknown actions are 400
func handleChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	action := r.URL.Query().Get("action")

	switch r.Method {
	case http.MethodGet:
		switch action {
		case "direct-chats":
			getDirectChats(w, r, sess)
		case "chat-history":
			getChatHistory(w, r, sess)
		case "group-history":
			getGroupHistory(w, r, sess)
		case "user-groups":
			getUserGroups(w, r, sess)
		case "group-members":
			getGroupMembers(w, r, sess)
		case "search-users":
			getSearchUsers(w, r, sess)
		default:
			invalidAction(w)
		}
	case http.MethodPost:
		switch action {
		case "send-message":
			postSendMessage(w, r, sess)
		case "create-group":
			postCreateGroup(w, r, sess)
		case "add-member":
			postGroupMember(w, r, sess, orchestrators.ExecuteAddGroupMember, "Member added successfully")
		case "remove-member":
			postGroupMember(w, r, sess, orchestrators.ExecuteRemoveGroupMember, "Member removed successfully")
		case "add-reaction":
			postAddReaction(w, r, sess)
		case "mark-seen":
			postMarkSeen(w, r, sess)
		default:
			invalidAction(w)
		}
	case http.MethodDelete:
		if action != "delete-group" {
			invalidAction(w)
			return
		}
		deleteGroup(w, r, sess)
	default:
		methodNotAllowed(w)
	}
}

// historyLimit reads ?limit, clamped to maxHistoryLimit.
func historyLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return defaultHistoryLimit
	}
	return min(n, maxHistoryLimit)
}

// requireMembership returns chat.ErrNotGroupMember unless uid belongs to a live group.
func requireMembership(r *http.Request, groupID, uid string) error {
	if groupID == "" {
		return orchestrators.ErrMissingGroupID
	}
	if _, err := stores.GroupStore.GetGroup(r.Context(), groupID); err != nil {
		return err
	}
	_, err := stores.GroupStore.GetMember(r.Context(), groupID, uid)
	return err
}

func writeHistory(w http.ResponseWriter, entries []chat.HistoryEntry) {
	if entries == nil {
		entries = []chat.HistoryEntry{}
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"messages": entries, "count": len(entries)})
}

func getDirectChats(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	convs, err := stores.MessageStore.ListConversations(r.Context(), sess.AccountID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if convs == nil {
		convs = []chat.Conversation{}
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"chats": convs, "count": len(convs)})
}

func getChatHistory(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	other := strings.TrimSpace(r.URL.Query().Get("otherUserID"))
	if other == "" {
		writeError(w, http.StatusBadRequest, errMissingOtherUser.Error())
		return
	}
	entries, err := stores.MessageStore.DirectHistory(r.Context(), sess.AccountID, other, historyLimit(r))
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeHistory(w, entries)
}

func getGroupHistory(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	groupID := r.URL.Query().Get("groupID")
	if err := requireMembership(r, groupID, sess.AccountID); err != nil {
		respondError(w, r, err)
		return
	}
	entries, err := stores.MessageStore.GroupHistory(r.Context(), groupID, historyLimit(r))
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeHistory(w, entries)
}

func getUserGroups(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	groups, err := stores.GroupStore.ListGroupsForUser(r.Context(), sess.AccountID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if groups == nil {
		groups = []chat.Membership{}
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"groups": groups, "count": len(groups)})
}

func getGroupMembers(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	groupID := r.URL.Query().Get("groupID")
	if err := requireMembership(r, groupID, sess.AccountID); err != nil {
		respondError(w, r, err)
		return
	}
	members, err := stores.GroupStore.ListMembers(r.Context(), groupID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if members == nil {
		members = []chat.Member{}
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"members": members, "count": len(members)})
}

// getSearchUsers finds active users to start a conversation with. The caller is excluded.
func getSearchUsers(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeSuccess(w, http.StatusOK, "", map[string]any{"users": []account.Account{}, "count": 0})
		return
	}
	found, err := stores.AccountStore.Search(r.Context(), q, userSearchLimit+1)
	if err != nil {
		internalError(w, r, err)
		return
	}
	users := make([]account.Account, 0, len(found))
	for _, u := range found {
		if u.ID != sess.AccountID && len(users) < userSearchLimit {
			users = append(users, u)
		}
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"users": users, "count": len(users)})
}

func postSendMessage(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req sendMessageRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	m, err := orchestrators.ExecuteSendMessage(r.Context(), orchestrators.SendMessageInput{
		SenderID:   sess.AccountID,
		ReceiverID: req.ReceiverID,
		GroupID:    req.GroupID,
		Body:       req.Message,
	}, orchestrators.SendMessageDeps{
		MessageStore: stores.MessageStore,
		AccountStore: stores.AccountStore,
		GroupStore:   stores.GroupStore,
		Publisher:    hub,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Message sent", map[string]any{"chatID": m.ID, "chat": m})
}

func postCreateGroup(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req createGroupRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	req.GroupName = strings.TrimSpace(req.GroupName)
	if err := validateRequest(req, groupOverrides); err != nil {
		respondError(w, r, err)
		return
	}
	g, err := orchestrators.ExecuteCreateGroup(r.Context(), orchestrators.CreateGroupInput{
		CreatorID:   sess.AccountID,
		Name:        req.GroupName,
		Description: req.Description,
		AvatarURL:   req.AvatarURL,
		MemberIDs:   req.MemberIDs,
	}, orchestrators.CreateGroupDeps{
		GroupStore:   stores.GroupStore,
		AccountStore: stores.AccountStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Group created successfully", map[string]any{"groupID": g.ID, "group": g})
}

func groupMemberDeps() orchestrators.GroupMemberDeps {
	return orchestrators.GroupMemberDeps{
		GroupStore:   stores.GroupStore,
		AccountStore: stores.AccountStore,
		Now:          timeNow,
	}
}

// groupMemberFunc is the shape shared by the member management orchestrators.
type groupMemberFunc func(context.Context, orchestrators.GroupMemberInput, orchestrators.GroupMemberDeps) error

func postGroupMember(w http.ResponseWriter, r *http.Request, sess middleware.Session, exec groupMemberFunc, message string) {
	var req groupMemberRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	input := orchestrators.GroupMemberInput{
		ActorID: sess.AccountID,
		GroupID: strings.TrimSpace(req.GroupID),
		UserID:  strings.TrimSpace(req.UserID),
	}
	if err := exec(r.Context(), input, groupMemberDeps()); err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, message, map[string]any{"groupID": input.GroupID, "userID": input.UserID})
}

func deleteGroup(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	input := orchestrators.GroupMemberInput{
		ActorID: sess.AccountID,
		GroupID: r.URL.Query().Get("groupID"),
	}
	if err := orchestrators.ExecuteDeleteGroup(r.Context(), input, groupMemberDeps()); err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Group deleted successfully", nil)
}

func receiptInput(r *http.Request, sess middleware.Session) (orchestrators.MessageReceiptInput, error) {
	var req messageReceiptRequest
	if err := strictDecode(r, &req); err != nil {
		return orchestrators.MessageReceiptInput{}, err
	}
	return orchestrators.MessageReceiptInput{
		UserID: sess.AccountID,
		ChatID: strings.TrimSpace(req.ChatID),
		Emoji:  req.Emoji,
	}, nil
}

func receiptDeps() orchestrators.MessageReceiptDeps {
	return orchestrators.MessageReceiptDeps{
		MessageStore: stores.MessageStore,
		GroupStore:   stores.GroupStore,
		Now:          timeNow,
	}
}

func postAddReaction(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	input, err := receiptInput(r, sess)
	if err != nil {
		respondError(w, r, err)
		return
	}
	reaction, err := orchestrators.ExecuteAddReaction(r.Context(), input, receiptDeps())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Reaction added", map[string]any{"reaction": reaction})
}

func postMarkSeen(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	input, err := receiptInput(r, sess)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := orchestrators.ExecuteMarkSeen(r.Context(), input, receiptDeps()); err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Message marked as seen", map[string]any{"chatID": input.ChatID})
}
