package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"clubhub/internal/adapters/storage"
	domain "clubhub/internal/domain/chat"
)

// SQLiteStore implements MessageStore and GroupStore using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new chat store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// SaveMessage inserts a direct or group message.
// PRE: m has been validated
func (s *SQLiteStore) SaveMessage(ctx context.Context, m domain.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chats (chatID, senderID, receiverID, groupID, message, sentAt) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.SenderID, storage.NullString(m.ReceiverID), storage.NullString(m.GroupID), m.Body, storage.FormatTime(m.SentAt))
	return err
}

// GetMessage retrieves one message.
// POST: Returns domain.ErrMessageNotFound when no row matches
func (s *SQLiteStore) GetMessage(ctx context.Context, chatID string) (domain.Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT chatID, senderID, receiverID, groupID, message, sentAt FROM chats WHERE chatID = ?`, chatID)
	var m domain.Message
	var receiver, group sql.NullString
	var sentAt string
	err := row.Scan(&m.ID, &m.SenderID, &receiver, &group, &m.Body, &sentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Message{}, domain.ErrMessageNotFound
	}
	if err != nil {
		return domain.Message{}, err
	}
	m.ReceiverID, m.GroupID = receiver.String, group.String
	m.SentAt, _ = storage.ParseTime(sentAt)
	return m, nil
}

const conversationsQuery = `
WITH direct AS (
	SELECT chatID, senderID, message, sentAt,
		CASE WHEN senderID = ? THEN receiverID ELSE senderID END AS partnerID
	FROM chats
	WHERE groupID IS NULL AND (senderID = ? OR receiverID = ?)
), ranked AS (
	SELECT *, ROW_NUMBER() OVER (PARTITION BY partnerID ORDER BY sentAt DESC, chatID DESC) AS rn
	FROM direct
)
SELECT r.partnerID, u.fullName, u.role, r.chatID, r.message, r.senderID, r.sentAt,
	(SELECT COUNT(*) FROM chats c
	 WHERE c.groupID IS NULL AND c.senderID = r.partnerID AND c.receiverID = ?
	   AND NOT EXISTS (SELECT 1 FROM seenMessages sm WHERE sm.chatID = c.chatID AND sm.uid = ?))
FROM ranked r
JOIN users u ON u.uid = r.partnerID
WHERE r.rn = 1
ORDER BY r.sentAt DESC`

// ListConversations returns the latest direct message per partner of uid, newest first.
// POST: UnreadCount counts partner messages uid has not marked seen
func (s *SQLiteStore) ListConversations(ctx context.Context, uid string) ([]domain.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, conversationsQuery, uid, uid, uid, uid, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		var sentAt string
		if err := rows.Scan(&c.PartnerID, &c.PartnerName, &c.PartnerRole, &c.LastChatID,
			&c.LastMessage, &c.LastSenderID, &sentAt, &c.UnreadCount); err != nil {
			return nil, err
		}
		c.LastMessageAt, _ = storage.ParseTime(sentAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

func historyQuery() sq.SelectBuilder {
	return storage.Builder.
		Select("c.chatID", "c.senderID", "c.receiverID", "c.groupID", "c.message", "c.sentAt",
			"COALESCE(u.fullName, '')",
			"EXISTS (SELECT 1 FROM seenMessages sm WHERE sm.chatID = c.chatID AND sm.uid <> c.senderID)").
		From("chats c").
		LeftJoin("users u ON u.uid = c.senderID")
}

// DirectHistory returns up to limit messages between uid and otherID in ascending order.
func (s *SQLiteStore) DirectHistory(ctx context.Context, uid, otherID string, limit int) ([]domain.HistoryEntry, error) {
	q := historyQuery().Where(sq.Or{
		sq.Eq{"c.senderID": uid, "c.receiverID": otherID},
		sq.Eq{"c.senderID": otherID, "c.receiverID": uid},
	})
	return s.history(ctx, q, limit)
}

// GroupHistory returns up to limit messages of a group in ascending order.
// PRE: caller membership has been checked
func (s *SQLiteStore) GroupHistory(ctx context.Context, groupID string, limit int) ([]domain.HistoryEntry, error) {
	return s.history(ctx, historyQuery().Where(sq.Eq{"c.groupID": groupID}), limit)
}

// history takes the newest limit rows and returns them oldest first with reactions attached.
func (s *SQLiteStore) history(ctx context.Context, q sq.SelectBuilder, limit int) ([]domain.HistoryEntry, error) {
	query, args, err := q.OrderBy("c.sentAt DESC", "c.chatID DESC").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var h domain.HistoryEntry
		var receiver, group sql.NullString
		var sentAt string
		if err := rows.Scan(&h.ID, &h.SenderID, &receiver, &group, &h.Body, &sentAt, &h.SenderName, &h.Seen); err != nil {
			return nil, err
		}
		h.ReceiverID, h.GroupID = receiver.String, group.String
		h.SentAt, _ = storage.ParseTime(sentAt)
		h.Reactions = []domain.Reaction{}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if err := s.attachReactions(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) attachReactions(ctx context.Context, entries []domain.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	index := make(map[string]int, len(entries))
	ids := make([]string, len(entries))
	for i, e := range entries {
		index[e.ID] = i
		ids[i] = e.ID
	}
	query, args, err := storage.Builder.
		Select("chatID", "uid", "emoji", "createdAt").
		From("reactions").
		Where(sq.Eq{"chatID": ids}).
		OrderBy("createdAt").
		ToSql()
	if err != nil {
		return err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var r domain.Reaction
		var createdAt string
		if err := rows.Scan(&r.ChatID, &r.UserID, &r.Emoji, &createdAt); err != nil {
			return err
		}
		r.CreatedAt, _ = storage.ParseTime(createdAt)
		i := index[r.ChatID]
		entries[i].Reactions = append(entries[i].Reactions, r)
	}
	return rows.Err()
}

// UpsertReaction stores a reaction; repeating the same emoji refreshes its timestamp.
func (s *SQLiteStore) UpsertReaction(ctx context.Context, r domain.Reaction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reactions (chatID, uid, emoji, createdAt) VALUES (?, ?, ?, ?)
		 ON CONFLICT(chatID, uid, emoji) DO UPDATE SET createdAt = excluded.createdAt`,
		r.ChatID, r.UserID, r.Emoji, storage.FormatTime(r.CreatedAt))
	return err
}

// MarkSeen records that uid has read chatID.
func (s *SQLiteStore) MarkSeen(ctx context.Context, chatID, uid string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO seenMessages (chatID, uid, seenAt) VALUES (?, ?, ?)
		 ON CONFLICT(chatID, uid) DO UPDATE SET seenAt = excluded.seenAt`,
		chatID, uid, storage.FormatTime(at))
	return err
}

// CreateGroup inserts a group with its creator as admin and memberIDs as members.
// PRE: g has been validated; memberIDs reference active users
// POST: Group and all memberships exist, or none do
func (s *SQLiteStore) CreateGroup(ctx context.Context, g domain.Group, memberIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	at := storage.FormatTime(g.CreatedAt)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chatGroups (groupID, groupName, description, avatarUrl, createdBy, createdAt) VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Description, g.AvatarURL, g.CreatedBy, at); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	ins := storage.Builder.Insert("groupMembers").Columns("groupID", "uid", "role", "joinedAt").
		Values(g.ID, g.CreatedBy, domain.MemberRoleAdmin, at)
	seen := map[string]bool{g.CreatedBy: true}
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ins = ins.Values(g.ID, id, domain.MemberRoleMember, at)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert members: %w", err)
	}
	return tx.Commit()
}

// GetGroup retrieves a group that has not been deleted.
// POST: Returns domain.ErrGroupNotFound otherwise
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (domain.Group, error) {
	var g domain.Group
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT groupID, groupName, description, avatarUrl, createdBy, createdAt FROM chatGroups WHERE groupID = ? AND isDeleted = 0`, id).
		Scan(&g.ID, &g.Name, &g.Description, &g.AvatarURL, &g.CreatedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Group{}, domain.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, err
	}
	g.CreatedAt, _ = storage.ParseTime(createdAt)
	return g, nil
}

// ListGroupsForUser returns live groups uid belongs to, by name.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, uid string) ([]domain.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.groupID, g.groupName, g.description, g.avatarUrl, g.createdBy, g.createdAt, m.role,
			(SELECT COUNT(*) FROM groupMembers x WHERE x.groupID = g.groupID)
		 FROM chatGroups g
		 JOIN groupMembers m ON m.groupID = g.groupID
		 WHERE m.uid = ? AND g.isDeleted = 0
		 ORDER BY g.groupName`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Membership
	for rows.Next() {
		var m domain.Membership
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.AvatarURL, &m.CreatedBy, &createdAt,
			&m.MemberRole, &m.MemberCount); err != nil {
			return nil, err
		}
		m.CreatedAt, _ = storage.ParseTime(createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

const memberColumns = `m.groupID, m.uid, COALESCE(u.fullName, ''), COALESCE(u.role, ''), m.role, m.joinedAt
	FROM groupMembers m LEFT JOIN users u ON u.uid = m.uid`

// ListMembers returns a group's members, admins first.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+memberColumns+" WHERE m.groupID = ? ORDER BY m.role = 'admin' DESC, u.fullName", groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMember returns uid's membership of groupID.
// POST: Returns domain.ErrNotGroupMember when absent
func (s *SQLiteStore) GetMember(ctx context.Context, groupID, uid string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" WHERE m.groupID = ? AND m.uid = ?", groupID, uid)
	m, err := scanMember(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, domain.ErrNotGroupMember
	}
	return m, err
}

// AddMember inserts a membership.
// POST: Returns domain.ErrAlreadyMember on conflict
func (s *SQLiteStore) AddMember(ctx context.Context, m domain.Member) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO groupMembers (groupID, uid, role, joinedAt) VALUES (?, ?, ?, ?)`,
		m.GroupID, m.UserID, m.Role, storage.FormatTime(m.JoinedAt))
	if storage.IsUniqueViolation(err) {
		return domain.ErrAlreadyMember
	}
	return err
}

// RemoveMember deletes a membership.
// POST: Returns domain.ErrNotMember when absent
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, uid string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM groupMembers WHERE groupID = ? AND uid = ?`, groupID, uid)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotMember
	}
	return nil
}

// CountAdmins returns how many admins a group has.
func (s *SQLiteStore) CountAdmins(ctx context.Context, groupID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM groupMembers WHERE groupID = ? AND role = ?`, groupID, domain.MemberRoleAdmin).Scan(&n)
	return n, err
}

// SoftDeleteGroup hides a group; its messages are kept.
// POST: Returns domain.ErrGroupNotFound when no live group matched
func (s *SQLiteStore) SoftDeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE chatGroups SET isDeleted = 1 WHERE groupID = ? AND isDeleted = 0`, groupID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

// MemberIDs returns the uids of a group's members.
func (s *SQLiteStore) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT uid FROM groupMembers WHERE groupID = ?`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanMember(scan func(dest ...any) error) (domain.Member, error) {
	var m domain.Member
	var joinedAt string
	if err := scan(&m.GroupID, &m.UserID, &m.FullName, &m.UserRole, &m.Role, &joinedAt); err != nil {
		return domain.Member{}, err
	}
	m.JoinedAt, _ = storage.ParseTime(joinedAt)
	return m, nil
}
