package projections

import (
	"bytes"
	"context"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"clubhub/internal/domain/drill"
)

// mdRenderer escapes raw HTML in drill text (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// DrillView is a drill with its markdown fields rendered for display.
type DrillView struct {
	drill.Drill
	DescriptionHTML string `json:"descriptionHtml"`
	NotesHTML       string `json:"notesHtml"`
}

// GetDrillsDeps holds dependencies for the drill projections.
type GetDrillsDeps struct {
	DrillStore DrillStore
}

// renderMarkdown converts md to HTML, falling back to the raw text on error.
func renderMarkdown(md string) string {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return md
	}
	return buf.String()
}

func newDrillView(d drill.Drill) DrillView {
	return DrillView{
		Drill:           d,
		DescriptionHTML: renderMarkdown(d.Description),
		NotesHTML:       renderMarkdown(d.Notes),
	}
}

// QueryGetDrills lists every drill ordered by name.
// POST: Markdown fields are rendered; never returns nil
func QueryGetDrills(ctx context.Context, deps GetDrillsDeps) ([]DrillView, error) {
	drills, err := deps.DrillStore.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]DrillView, 0, len(drills))
	for _, d := range drills {
		views = append(views, newDrillView(d))
	}
	return views, nil
}

// QueryGetDrill returns one drill by ID.
// POST: Returns drill.ErrNotFound when missing
func QueryGetDrill(ctx context.Context, id string, deps GetDrillsDeps) (DrillView, error) {
	d, err := deps.DrillStore.Get(ctx, id)
	if err != nil {
		return DrillView{}, err
	}
	return newDrillView(d), nil
}

// RenderDrill renders a drill that was just saved.
func RenderDrill(d drill.Drill) DrillView {
	return newDrillView(d)
}
