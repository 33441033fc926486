package modal

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/log"

	"github.com/whirl-wm/whirl/internal/capture"
	"github.com/whirl-wm/whirl/internal/config"
	"github.com/whirl-wm/whirl/internal/stage"
	"github.com/whirl-wm/whirl/internal/theme"
	"github.com/whirl-wm/whirl/internal/wm"
)

// badgeLetters are the keys that toggle membership of the correspondingly
// badged window.
const badgeLetters = "asdfghjklqwertyuiopzxcvbnm"

// EditMode is a gallery of all live windows with toggleable membership
// badges for one project. Pressing a badge letter toggles that window.
type EditMode struct {
	deps      *Deps
	projectID string
	windows   []wm.WindowInfo
	gen       uint64
}

// NewEditMode edits membership of the given project.
func NewEditMode(projectID string) *EditMode {
	return &EditMode{projectID: projectID}
}

// Name implements Node.
func (e *EditMode) Name() string { return "edit_mode" }

// Sticky implements Node: membership editing outlives the accelerator.
func (e *EditMode) Sticky() bool { return true }

// Activate implements Node.
func (e *EditMode) Activate(d *Deps) {
	e.deps = d
	live, err := d.Directory.ListWindows(wm.ListOptions{})
	if err != nil {
		log.Warn("window query failed", "err", err)
	}
	e.windows = wm.FilterBySize(live, config.MinWindowSize)
	if len(e.windows) > config.MaxPanels {
		e.windows = e.windows[:config.MaxPanels]
	}
	d.Projects.Validate(live)
	d.Stage.Show(e.windows, stage.LayoutGrid, 0, true)
	for _, p := range d.Stage.Panels() {
		if cached := d.Captures.Request(p.Window.ID, e.gen); cached != nil {
			d.Stage.SetImage(p.Window.ID, cached)
		}
	}
}

// Suspend implements Node.
func (e *EditMode) Suspend() {}

// Deactivate implements Node.
func (e *EditMode) Deactivate() {
	if err := e.deps.Projects.Save(); err != nil {
		log.Warn("could not persist projects", "err", err)
	}
}

// ApplyCapture implements CaptureConsumer.
func (e *EditMode) ApplyCapture(res capture.Result) {
	if res.Generation != e.gen || res.Err != nil {
		return
	}
	e.deps.Stage.SetImage(res.WindowID, res.Image)
}

// HandleEvent implements Node.
func (e *EditMode) HandleEvent(ev Event) Response {
	if ev.Kind != KeyDown {
		return Response{Result: Handled}
	}

	// Badge letters toggle directly, matching the on-screen labels.
	if len(ev.Key) == 1 {
		if idx := strings.IndexByte(badgeLetters, ev.Key[0]); idx >= 0 && idx < len(e.windows) {
			e.toggle(e.windows[idx].ID)
			return Response{Result: Handled}
		}
	}

	action, ok := e.deps.Keys.Lookup("edit_mode", ev.Key)
	if !ok {
		return Response{Result: Unhandled}
	}
	switch action {
	case "toggle_all":
		for _, w := range e.windows {
			e.toggle(w.ID)
		}
	case "done", "confirm", "cancel":
		return Response{Result: Dismiss}
	default:
		return Response{Result: Unhandled}
	}
	return Response{Result: Handled}
}

func (e *EditMode) toggle(id wm.WindowID) {
	p, ok := e.deps.Projects.Get(e.projectID)
	if !ok {
		// The project vanished underneath us; nothing to edit.
		return
	}
	p.Toggle(id)
}

// Overlay implements Node: badge strip matching the gallery order.
func (e *EditMode) Overlay(width, _ int) string {
	p, ok := e.deps.Projects.Get(e.projectID)
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(theme.Title().Render(fmt.Sprintf("Edit %q", p.Name)))
	b.WriteString("\n")
	var badges []string
	for i, w := range e.windows {
		if i >= len(badgeLetters) {
			break
		}
		letter := string(badgeLetters[i])
		badges = append(badges, theme.Badge(p.Has(w.ID)).Render(letter))
	}
	b.WriteString(strings.Join(badges, " "))
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(b.String())
}
