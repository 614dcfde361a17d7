package orchestrators

import (
	"context"
	"strings"
	"time"

	"clubhub/internal/adapters/email"
	"clubhub/internal/domain/account"
	"clubhub/internal/domain/attendance"
	"clubhub/internal/domain/audit"
	"clubhub/internal/domain/chat"
	"clubhub/internal/domain/drill"
	"clubhub/internal/domain/profile"
	"clubhub/internal/domain/schedule"
	"clubhub/internal/domain/session"
	"clubhub/internal/domain/team"
)

func init() {
	account.SetBcryptCost(4)
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

func seqID() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + string(rune('a'+n-1))
	}
}

// mockAccounts implements the account store interfaces for testing.
type mockAccounts struct {
	accounts map[string]account.Account
}

func newMockAccounts(accts ...account.Account) *mockAccounts {
	m := &mockAccounts{accounts: map[string]account.Account{}}
	for _, a := range accts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *mockAccounts) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return a, nil
}

func (m *mockAccounts) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (m *mockAccounts) Create(_ context.Context, a account.Account) error {
	if _, err := m.GetByEmail(context.Background(), a.Email); err == nil {
		return account.ErrEmailTaken
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccounts) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	a := m.accounts[id]
	a.LastLogin = &at
	m.accounts[id] = a
	return nil
}

func (m *mockAccounts) UpdatePassword(_ context.Context, id, hash string) error {
	a, ok := m.accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	a.PasswordHash = hash
	m.accounts[id] = a
	return nil
}

func (m *mockAccounts) UpdateStatus(_ context.Context, id, status string) error {
	a, ok := m.accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	a.Status = status
	m.accounts[id] = a
	return nil
}

func (m *mockAccounts) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

func (m *mockAccounts) Delete(_ context.Context, id string) error {
	if _, ok := m.accounts[id]; !ok {
		return account.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func user(id, role, status string) account.Account {
	a := account.Account{ID: id, FullName: "User " + id, Email: id + "@club.test", Role: role, Status: status}
	_ = a.SetPassword("secret123")
	return a
}

// mockSessions implements the session store interfaces for testing.
type mockSessions struct {
	sessions map[string]session.Session
}

func newMockSessions(ss ...session.Session) *mockSessions {
	m := &mockSessions{sessions: map[string]session.Session{}}
	for _, s := range ss {
		m.sessions[s.ID] = s
	}
	return m
}

func (m *mockSessions) Create(_ context.Context, s session.Session) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessions) Get(_ context.Context, id string) (session.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	return s, nil
}

func (m *mockSessions) Deactivate(_ context.Context, id string) error {
	s := m.sessions[id]
	if !s.IsActive {
		return session.ErrAlreadyEnded
	}
	s.IsActive = false
	m.sessions[id] = s
	return nil
}

func (m *mockSessions) DeactivateAllForUser(_ context.Context, uid, except string) (int, error) {
	n := 0
	for id, s := range m.sessions {
		if s.AccountID == uid && s.IsActive && id != except {
			s.IsActive = false
			m.sessions[id] = s
			n++
		}
	}
	return n, nil
}

func (m *mockSessions) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	n := 0
	for id, s := range m.sessions {
		if !s.IsActive || !now.Before(s.ExpiresAt) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *mockSessions) active(uid string) int {
	n := 0
	for _, s := range m.sessions {
		if s.AccountID == uid && s.IsActive {
			n++
		}
	}
	return n
}

// mockAudit implements ActionRecorder for testing.
type mockAudit struct {
	actions []audit.Action
}

func (m *mockAudit) Save(_ context.Context, a audit.Action) error {
	m.actions = append(m.actions, a)
	return nil
}

// mockMailer implements email.Sender for testing.
type mockMailer struct {
	sent []email.Message
}

func (m *mockMailer) Send(_ context.Context, msg email.Message) (email.Receipt, error) {
	m.sent = append(m.sent, msg)
	return email.Receipt{ID: "r1", SentAt: fixedTime}, nil
}

// mockSchedules implements the schedule store interfaces for testing.
type mockSchedules struct {
	schedules      map[string]schedule.Listing
	withAttendance map[string]bool
}

func newMockSchedules(ss ...schedule.Schedule) *mockSchedules {
	m := &mockSchedules{schedules: map[string]schedule.Listing{}, withAttendance: map[string]bool{}}
	for _, s := range ss {
		m.schedules[s.ID] = schedule.Listing{Schedule: s}
	}
	return m
}

func (m *mockSchedules) Get(_ context.Context, id string) (schedule.Listing, error) {
	l, ok := m.schedules[id]
	if !ok {
		return schedule.Listing{}, schedule.ErrNotFound
	}
	return l, nil
}

func (m *mockSchedules) Create(_ context.Context, s schedule.Schedule) error {
	m.schedules[s.ID] = schedule.Listing{Schedule: s}
	return nil
}

func (m *mockSchedules) Update(_ context.Context, s schedule.Schedule) error {
	if _, ok := m.schedules[s.ID]; !ok {
		return schedule.ErrNotFound
	}
	m.schedules[s.ID] = schedule.Listing{Schedule: s}
	return nil
}

func (m *mockSchedules) Delete(_ context.Context, id string) error {
	delete(m.schedules, id)
	return nil
}

func (m *mockSchedules) Approve(_ context.Context, id, approverID string, at time.Time) error {
	l := m.schedules[id]
	if l.ApprovedBy != "" {
		return schedule.ErrAlreadyApproved
	}
	l.ApprovedBy, l.ApprovedAt = approverID, &at
	m.schedules[id] = l
	return nil
}

func (m *mockSchedules) HasAttendance(_ context.Context, id string) (bool, error) {
	return m.withAttendance[id], nil
}

// mockTeams implements the team store interfaces for testing.
type mockTeams struct {
	teams map[string]team.Team
}

func (m *mockTeams) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.teams[id]
	return ok, nil
}

func (m *mockTeams) Save(_ context.Context, t team.Team) error {
	if m.teams == nil {
		m.teams = map[string]team.Team{}
	}
	m.teams[t.ID] = t
	return nil
}

// mockAttendance implements the attendance store interfaces for testing.
type mockAttendance struct {
	records map[string]attendance.Attendance
}

func newMockAttendance(rs ...attendance.Attendance) *mockAttendance {
	m := &mockAttendance{records: map[string]attendance.Attendance{}}
	for _, r := range rs {
		m.records[r.ID] = r
	}
	return m
}

func (m *mockAttendance) Create(_ context.Context, a attendance.Attendance) error {
	for _, r := range m.records {
		if r.PlayerID == a.PlayerID && r.ScheduleID == a.ScheduleID {
			return attendance.ErrDuplicate
		}
	}
	m.records[a.ID] = a
	return nil
}

func (m *mockAttendance) Get(_ context.Context, id string) (attendance.Attendance, error) {
	a, ok := m.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	return a, nil
}

func (m *mockAttendance) Update(_ context.Context, id string, p attendance.Patch, at time.Time) error {
	a, ok := m.records[id]
	if !ok {
		return attendance.ErrNotFound
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	if p.AttendanceDate != nil {
		a.AttendanceDate = *p.AttendanceDate
	}
	a.UpdatedAt = at
	m.records[id] = a
	return nil
}

func (m *mockAttendance) Approve(_ context.Context, id, approverID string, at time.Time) error {
	a, ok := m.records[id]
	if !ok {
		return attendance.ErrNotFound
	}
	if a.ApprovedBy != "" {
		return attendance.ErrAlreadyApproved
	}
	a.ApprovedBy, a.ApprovedAt = approverID, &at
	m.records[id] = a
	return nil
}

// mockChat implements the chat message and group store interfaces for testing.
type mockChat struct {
	messages  map[string]chat.Message
	groups    map[string]chat.Group
	members   map[string]map[string]chat.Member
	reactions []chat.Reaction
	seen      map[string]bool
	created   map[string][]string
}

func newMockChat() *mockChat {
	return &mockChat{
		messages: map[string]chat.Message{},
		groups:   map[string]chat.Group{},
		members:  map[string]map[string]chat.Member{},
		seen:     map[string]bool{},
		created:  map[string][]string{},
	}
}

func (m *mockChat) addGroup(id string, admins []string, members []string) {
	m.groups[id] = chat.Group{ID: id, Name: "Group " + id}
	m.members[id] = map[string]chat.Member{}
	for _, a := range admins {
		m.members[id][a] = chat.Member{GroupID: id, UserID: a, Role: chat.MemberRoleAdmin}
	}
	for _, u := range members {
		m.members[id][u] = chat.Member{GroupID: id, UserID: u, Role: chat.MemberRoleMember}
	}
}

func (m *mockChat) SaveMessage(_ context.Context, msg chat.Message) error {
	m.messages[msg.ID] = msg
	return nil
}

func (m *mockChat) GetMessage(_ context.Context, id string) (chat.Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return chat.Message{}, chat.ErrMessageNotFound
	}
	return msg, nil
}

func (m *mockChat) UpsertReaction(_ context.Context, r chat.Reaction) error {
	for i, x := range m.reactions {
		if x.ChatID == r.ChatID && x.UserID == r.UserID && x.Emoji == r.Emoji {
			m.reactions[i] = r
			return nil
		}
	}
	m.reactions = append(m.reactions, r)
	return nil
}

func (m *mockChat) MarkSeen(_ context.Context, chatID, uid string, _ time.Time) error {
	m.seen[chatID+"/"+uid] = true
	return nil
}

func (m *mockChat) CreateGroup(_ context.Context, g chat.Group, memberIDs []string) error {
	m.addGroup(g.ID, []string{g.CreatedBy}, memberIDs)
	m.groups[g.ID] = g
	m.created[g.ID] = memberIDs
	return nil
}

func (m *mockChat) GetGroup(_ context.Context, id string) (chat.Group, error) {
	g, ok := m.groups[id]
	if !ok || g.IsDeleted {
		return chat.Group{}, chat.ErrGroupNotFound
	}
	return g, nil
}

func (m *mockChat) GetMember(_ context.Context, groupID, uid string) (chat.Member, error) {
	mem, ok := m.members[groupID][uid]
	if !ok {
		return chat.Member{}, chat.ErrNotGroupMember
	}
	return mem, nil
}

func (m *mockChat) MemberIDs(_ context.Context, groupID string) ([]string, error) {
	var ids []string
	for id := range m.members[groupID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockChat) AddMember(_ context.Context, mem chat.Member) error {
	if _, ok := m.members[mem.GroupID][mem.UserID]; ok {
		return chat.ErrAlreadyMember
	}
	m.members[mem.GroupID][mem.UserID] = mem
	return nil
}

func (m *mockChat) RemoveMember(_ context.Context, groupID, uid string) error {
	if _, ok := m.members[groupID][uid]; !ok {
		return chat.ErrNotMember
	}
	delete(m.members[groupID], uid)
	return nil
}

func (m *mockChat) CountAdmins(_ context.Context, groupID string) (int, error) {
	n := 0
	for _, mem := range m.members[groupID] {
		if mem.IsAdmin() {
			n++
		}
	}
	return n, nil
}

func (m *mockChat) SoftDeleteGroup(_ context.Context, groupID string) error {
	g := m.groups[groupID]
	g.IsDeleted = true
	m.groups[groupID] = g
	return nil
}

// mockPublisher implements MessagePublisher for testing.
type mockPublisher struct {
	recipients []string
	published  []chat.Message
}

func (m *mockPublisher) PublishMessage(recipients []string, msg chat.Message) {
	m.recipients = recipients
	m.published = append(m.published, msg)
}

// mockDrills implements the drill store interfaces for testing.
type mockDrills struct {
	drills map[string]drill.Drill
}

func (m *mockDrills) Get(_ context.Context, id string) (drill.Drill, error) {
	d, ok := m.drills[id]
	if !ok {
		return drill.Drill{}, drill.ErrNotFound
	}
	return d, nil
}

func (m *mockDrills) Create(_ context.Context, d drill.Drill) error {
	m.drills[d.ID] = d
	return nil
}

func (m *mockDrills) Update(_ context.Context, d drill.Drill) error {
	m.drills[d.ID] = d
	return nil
}

func (m *mockDrills) Delete(_ context.Context, id string) error {
	if _, ok := m.drills[id]; !ok {
		return drill.ErrNotFound
	}
	delete(m.drills, id)
	return nil
}

// mockProfiles implements ProfileStoreForUpdate for testing.
type mockProfiles struct {
	profiles map[string]profile.Profile
	lastUser map[string]any
}

func (m *mockProfiles) Get(_ context.Context, uid string) (profile.Profile, error) {
	p, ok := m.profiles[uid]
	if !ok {
		return profile.Profile{}, account.ErrNotFound
	}
	return p, nil
}

func (m *mockProfiles) Update(_ context.Context, uid, _ string, user, details map[string]any) error {
	p := m.profiles[uid]
	m.lastUser = user
	if v, ok := user["email"].(string); ok {
		p.Email = v
	}
	if v, ok := user["phoneNumber"].(string); ok {
		p.PhoneNumber = v
	}
	if v, ok := user["status"].(string); ok {
		p.Status = v
	}
	if v, ok := user["pass"].(string); ok {
		p.PasswordHash = v
	}
	if p.Details == nil {
		p.Details = map[string]any{}
	}
	for k, v := range details {
		p.Details[k] = v
	}
	m.profiles[uid] = p
	return nil
}
