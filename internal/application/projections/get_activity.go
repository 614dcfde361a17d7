package projections

import (
	"context"
	"time"

	auditStore "clubhub/internal/adapters/storage/audit"
	"clubhub/internal/domain/audit"
)

// activityLimit caps the number of admin actions shown on the activity view.
const activityLimit = 50

// SessionSummary is a session row without its secret token.
type SessionSummary struct {
	ID        string    `json:"sessionID"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsActive  bool      `json:"isActive"`
	Current   bool      `json:"current"`
}

// Activity is the caller's recent privileged actions and sign-ins.
type Activity struct {
	Actions  []audit.Action   `json:"actions"`
	Sessions []SessionSummary `json:"sessions"`
}

// GetActivityQuery names the caller and the session making the request.
type GetActivityQuery struct {
	AccountID string
	SessionID string
}

// GetActivityDeps holds dependencies for GetActivity.
type GetActivityDeps struct {
	ActionStore  ActionStore
	SessionStore SessionStore
}

// QueryGetActivity lists actions performed by or on the caller and their sessions.
// POST: Session IDs other than the current one are truncated
func QueryGetActivity(ctx context.Context, q GetActivityQuery, deps GetActivityDeps) (Activity, error) {
	byActor, err := deps.ActionStore.List(ctx, auditStore.Filter{ActorID: q.AccountID}, activityLimit)
	if err != nil {
		return Activity{}, err
	}
	onTarget, err := deps.ActionStore.List(ctx, auditStore.Filter{TargetID: q.AccountID}, activityLimit)
	if err != nil {
		return Activity{}, err
	}
	actions := mergeActions(byActor, onTarget, activityLimit)

	sessions, err := deps.SessionStore.ListForUser(ctx, q.AccountID)
	if err != nil {
		return Activity{}, err
	}
	summaries := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		id := s.ID
		current := s.ID == q.SessionID
		if !current && len(id) > 8 {
			id = id[:8]
		}
		summaries = append(summaries, SessionSummary{
			ID:        id,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
			IsActive:  s.IsActive,
			Current:   current,
		})
	}
	return Activity{Actions: actions, Sessions: summaries}, nil
}

// mergeActions combines two newest-first lists without duplicates, newest first.
func mergeActions(a, b []audit.Action, limit int) []audit.Action {
	out := make([]audit.Action, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	i, j := 0, 0
	for len(out) < limit && (i < len(a) || j < len(b)) {
		var next audit.Action
		if j >= len(b) || (i < len(a) && !a[i].CreatedAt.Before(b[j].CreatedAt)) {
			next = a[i]
			i++
		} else {
			next = b[j]
			j++
		}
		if seen[next.ID] {
			continue
		}
		seen[next.ID] = true
		out = append(out, next)
	}
	return out
}
