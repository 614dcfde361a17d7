package web

import (
	"net/http"

	"clubhub/internal/adapters/http/middleware"
	"clubhub/internal/application/orchestrators"
	"clubhub/internal/application/projections"
	"clubhub/internal/domain/drill"
)

type drillRequest struct {
	DrillID     string `json:"drillID"`
	DrillName   string `json:"drillName" validate:"required,max=100"`
	DrillType   string `json:"drillType"`
	Difficulty  string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Description string `json:"drillDescription" validate:"max=10000"`
	VideoLink   string `json:"video_link" validate:"omitempty,http_url"`
	Notes       string `json:"notes"`
}

var drillOverrides = map[string]error{
	"drillName.required":   drill.ErrEmptyName,
	"drillName.max":        drill.ErrNameTooLong,
	"difficulty.oneof":     drill.ErrInvalidDifficulty,
	"drillDescription.max": drill.ErrDescriptionLong,
	"video_link.http_url":  drill.ErrInvalidVideoLink,
}

// handleDrills handles GET/POST/PUT/DELETE for /api/drills
// PRE: Caller is authenticated; writes need trainingManagement
// POST: GET lists every drill, or one with ?id
func handleDrills(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		getDrills(w, r)
	case http.MethodPost:
		saveDrill(w, r, sess, false)
	case http.MethodPut:
		saveDrill(w, r, sess, true)
	case http.MethodDelete:
		deleteDrill(w, r, sess)
	default:
		methodNotAllowed(w)
	}
}

func getDrills(w http.ResponseWriter, r *http.Request) {
	deps := projections.GetDrillsDeps{DrillStore: stores.DrillStore}
	if id := r.URL.Query().Get("id"); id != "" {
		d, err := projections.QueryGetDrill(r.Context(), id, deps)
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{"drill": d})
		return
	}
	drills, err := projections.QueryGetDrills(r.Context(), deps)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"drills": drills, "count": len(drills)})
}

// saveDrill creates on POST and replaces on PUT; PUT needs drillID.
func saveDrill(w http.ResponseWriter, r *http.Request, sess middleware.Session, replace bool) {
	var req drillRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if replace && req.DrillID == "" {
		writeError(w, http.StatusBadRequest, "drillID is required")
		return
	}
	if !replace {
		req.DrillID = ""
	}
	if err := validateRequest(req, drillOverrides); err != nil {
		respondError(w, r, err)
		return
	}
	d, err := orchestrators.ExecuteSaveDrill(r.Context(), orchestrators.SaveDrillInput{
		ActorID:   sess.AccountID,
		ActorRole: sess.Role,
		Drill: drill.Drill{
			ID:          req.DrillID,
			Name:        req.DrillName,
			Type:        req.DrillType,
			Difficulty:  req.Difficulty,
			Description: req.Description,
			VideoLink:   req.VideoLink,
			Notes:       req.Notes,
		},
	}, orchestrators.SaveDrillDeps{
		DrillStore: stores.DrillStore,
		GenerateID: generateID,
		Now:        timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	status, message := http.StatusCreated, "Drill created successfully"
	if replace {
		status, message = http.StatusOK, "Drill updated successfully"
	}
	writeSuccess(w, status, message, map[string]any{"drillID": d.ID, "drill": projections.RenderDrill(d)})
}

func deleteDrill(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	err := orchestrators.ExecuteDeleteDrill(r.Context(), orchestrators.DeleteDrillInput{
		ActorID:   sess.AccountID,
		ActorRole: sess.Role,
		DrillID:   r.URL.Query().Get("id"),
	}, orchestrators.DeleteDrillDeps{
		DrillStore: stores.DrillStore,
		AuditStore: stores.AuditStore,
		Now:        timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Drill deleted successfully", nil)
}
