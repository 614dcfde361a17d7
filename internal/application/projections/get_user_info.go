package projections

import (
	"clubhub/internal/domain/account"
)

// UserInfo describes the authenticated caller.
type UserInfo struct {
	UserID        string   `json:"user_id"`
	Role          string   `json:"role"`
	RoleLevel     int      `json:"role_level"`
	Authenticated bool     `json:"authenticated"`
	Permissions   []string `json:"permissions"`
}

// QueryGetUserInfo returns the caller's role and permission list.
// PRE: uid and role come from an authenticated session
// POST: Permissions is a copy of the role's grants, never nil
func QueryGetUserInfo(uid, role string) UserInfo {
	perms := account.Permissions(role)
	if perms == nil {
		perms = []string{}
	}
	return UserInfo{
		UserID:        uid,
		Role:          role,
		RoleLevel:     account.Level(role),
		Authenticated: true,
		Permissions:   perms,
	}
}
