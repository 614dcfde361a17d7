package web

import (
	"net/http"
	"time"

	auditStore "clubhub/internal/adapters/storage/audit"
	"clubhub/internal/application/listutil"
	"clubhub/internal/domain/audit"
)

// handleHealthz reports liveness and that the database answers.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if _, err := stores.AccountStore.Count(r.Context()); err != nil {
		internalError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "ok", nil)
}

// handleAdminActions lists the admin action log (GET /api/admin/actions)
// PRE: Caller is an admin
// POST: Newest first, optionally filtered by actorID/targetID and paged by page/per_page
func handleAdminActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	filter := auditStore.Filter{
		ActorID:  q.Get("actorID"),
		TargetID: q.Get("targetID"),
	}

	limit := listutil.ParseLimit(q, "limit", 100, 1000)
	actions, err := stores.AuditStore.List(r.Context(), filter, limit)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if actions == nil {
		actions = []audit.Action{}
	}
	page, info := listutil.Paginate(actions, listutil.ParsePageParams(q))
	writeSuccess(w, http.StatusOK, "", map[string]any{"actions": page, "count": len(page), "page": info})
}

// handleAdminPerf serves request and query timings (GET /api/admin/perf?minutes=15)
// PRE: Caller is an admin
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if perfCollector == nil {
		writeError(w, http.StatusServiceUnavailable, "Performance collection is disabled")
		return
	}
	minutes := listutil.ParseLimit(r.URL.Query(), "minutes", 15, 24*60)
	snap := perfCollector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), 10)
	writeSuccess(w, http.StatusOK, "", map[string]any{"perf": snap, "windowMinutes": minutes})
}
