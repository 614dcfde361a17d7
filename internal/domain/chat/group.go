package chat

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Member roles inside a group.
const (
	MemberRoleMember = "member"
	MemberRoleAdmin  = "admin"
)

// MaxGroupNameLength caps group names.
const MaxGroupNameLength = 100

// Group errors
var (
	ErrEmptyGroupName   = errors.New("Group name is required")
	ErrGroupNameTooLong = errors.New("Group name cannot exceed 100 characters")
	ErrInvalidAvatarURL = errors.New("avatarUrl must be an http(s) URL")
	ErrGroupNotFound    = errors.New("Group not found")
	ErrNotGroupMember   = errors.New("You are not a member of this group")
	ErrNotGroupAdmin    = errors.New("Only group admins can do this")
	ErrAlreadyMember    = errors.New("User is already a member of this group")
	ErrNotMember        = errors.New("User is not a member of this group")
	ErrLastAdmin        = errors.New("Cannot remove the last group admin")
	ErrUserNotFound     = errors.New("User not found or inactive")
)

// Group is a named chat room.
type Group struct {
	ID          string    `json:"groupID"`
	Name        string    `json:"groupName"`
	Description string    `json:"description"`
	AvatarURL   string    `json:"avatarUrl"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	IsDeleted   bool      `json:"-"`
}

// Validate checks if the Group has valid data.
// PRE: Group struct is populated
// POST: Returns nil if valid, error otherwise
func (g *Group) Validate() error {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return ErrEmptyGroupName
	}
	if len(g.Name) > MaxGroupNameLength {
		return ErrGroupNameTooLong
	}
	if g.AvatarURL != "" {
		u, err := url.Parse(g.AvatarURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidAvatarURL
		}
	}
	return nil
}

// Member is a user's membership in a group.
type Member struct {
	GroupID  string    `json:"groupID"`
	UserID   string    `json:"uid"`
	FullName string    `json:"fullName,omitempty"`
	UserRole string    `json:"role,omitempty"`
	Role     string    `json:"memberRole"`
	JoinedAt time.Time `json:"joinedAt"`
}

// IsAdmin reports whether the member administers the group.
func (m Member) IsAdmin() bool {
	return m.Role == MemberRoleAdmin
}

// Membership is a group as listed for one of its members.
type Membership struct {
	Group
	MemberRole  string `json:"memberRole"`
	MemberCount int    `json:"memberCount"`
}
