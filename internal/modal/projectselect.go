package modal

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/log"

	"github.com/whirl-wm/whirl/internal/capture"
	"github.com/whirl-wm/whirl/internal/project"
	"github.com/whirl-wm/whirl/internal/stage"
	"github.com/whirl-wm/whirl/internal/theme"
	"github.com/whirl-wm/whirl/internal/wm"
)

type editKind int

const (
	editNone editKind = iota
	editNaming
	editRenaming
	editFiltering
)

// ProjectSelector browses, edits, and applies named window groups. Creating
// a project drops straight into the inline rename sub-state.
type ProjectSelector struct {
	deps *Deps

	index  int
	filter string
	edit   editKind
	buffer string

	gen uint64
}

// NewProjectSelector returns a fresh selector.
func NewProjectSelector() *ProjectSelector {
	return &ProjectSelector{}
}

// Name implements Node.
func (s *ProjectSelector) Name() string { return "projects" }

// Sticky implements Node: a bare modifier release while browsing projects is
// ignored rather than treated as a confirm.
func (s *ProjectSelector) Sticky() bool { return true }

// Activate implements Node.
func (s *ProjectSelector) Activate(d *Deps) {
	s.deps = d
	s.revalidate()
	s.showSelection(true)
}

// Suspend implements Node.
func (s *ProjectSelector) Suspend() {}

// Deactivate implements Node.
func (s *ProjectSelector) Deactivate() {
	if err := s.deps.Projects.Save(); err != nil {
		log.Warn("could not persist projects", "err", err)
	}
}

func (s *ProjectSelector) revalidate() {
	live, err := s.deps.Directory.ListWindows(wm.ListOptions{})
	if err != nil {
		log.Warn("window query failed", "err", err)
		return
	}
	s.deps.Projects.Validate(live)
}

// visible returns the filtered project list.
func (s *ProjectSelector) visible() []*project.Project {
	return s.deps.Projects.Filter(s.filter)
}

// selected returns the project under the cursor.
func (s *ProjectSelector) selected() (*project.Project, bool) {
	projects := s.visible()
	if len(projects) == 0 {
		return nil, false
	}
	if s.index < 0 || s.index >= len(projects) {
		s.index = 0
	}
	return projects[s.index], true
}

// memberWindows resolves a project's member ids against the live window set.
func (s *ProjectSelector) memberWindows(p *project.Project) []wm.WindowInfo {
	live, err := s.deps.Directory.ListWindows(wm.ListOptions{})
	if err != nil {
		return nil
	}
	byID := make(map[wm.WindowID]wm.WindowInfo, len(live))
	for _, w := range live {
		byID[w.ID] = w
	}
	var out []wm.WindowInfo
	for _, id := range p.Windows {
		if w, ok := byID[id]; ok {
			out = append(out, w)
		}
	}
	return out
}

// showSelection stages the selected project's member windows.
func (s *ProjectSelector) showSelection(animated bool) {
	p, ok := s.selected()
	if !ok {
		s.deps.Stage.Show(nil, stage.LayoutGrid, 0, false)
		return
	}
	s.deps.Stage.Show(s.memberWindows(p), stage.LayoutGrid, 0, animated)
	for _, panel := range s.deps.Stage.Panels() {
		if cached := s.deps.Captures.Request(panel.Window.ID, s.gen); cached != nil {
			s.deps.Stage.SetImage(panel.Window.ID, cached)
		}
	}
}

// ApplyCapture implements CaptureConsumer.
func (s *ProjectSelector) ApplyCapture(res capture.Result) {
	if res.Generation != s.gen || res.Err != nil {
		return
	}
	s.deps.Stage.SetImage(res.WindowID, res.Image)
}

// HandleEvent implements Node.
func (s *ProjectSelector) HandleEvent(ev Event) Response {
	if ev.Kind != KeyDown {
		return Response{Result: Handled}
	}
	if s.edit != editNone {
		return s.handleEditKey(ev.Key)
	}

	action, ok := s.deps.Keys.Lookup("projects", ev.Key)
	if !ok {
		return Response{Result: Unhandled}
	}
	switch action {
	case "next_app":
		s.move(1)
	case "prev_app":
		s.move(-1)
	case "new_project":
		p := s.deps.Projects.Create("")
		s.filter = ""
		s.selectProject(p.ID)
		// Naming flows straight into the inline edit sub-state.
		s.edit = editNaming
		s.buffer = ""
	case "rename_project":
		if p, ok := s.selected(); ok && !p.System {
			s.edit = editRenaming
			s.buffer = p.Name
		}
	case "clone_project":
		if p, ok := s.selected(); ok {
			if dup, err := s.deps.Projects.Clone(p.ID); err == nil {
				s.selectProject(dup.ID)
				s.showSelection(false)
			}
		}
	case "delete_project":
		if p, ok := s.selected(); ok {
			if err := s.deps.Projects.Delete(p.ID); err != nil {
				s.deps.Notify(err.Error())
			} else if s.index >= len(s.visible()) && s.index > 0 {
				s.index--
			}
			s.showSelection(false)
		}
	case "move_up":
		if p, ok := s.selected(); ok {
			s.deps.Projects.Move(p.ID, -1)
			s.selectProject(p.ID)
		}
	case "move_down":
		if p, ok := s.selected(); ok {
			s.deps.Projects.Move(p.ID, 1)
			s.selectProject(p.ID)
		}
	case "edit_members":
		if p, ok := s.selected(); ok && !p.System {
			return Response{Result: Push, Child: NewEditMode(p.ID)}
		}
	case "filter":
		s.edit = editFiltering
		s.buffer = s.filter
	case "confirm":
		return s.confirm()
	case "cancel":
		if s.filter != "" {
			s.filter = ""
			s.index = 0
			s.showSelection(false)
			return Response{Result: Handled}
		}
		return Response{Result: Dismiss}
	case "toggle_projects":
		return Response{Result: Dismiss}
	default:
		return Response{Result: Unhandled}
	}
	return Response{Result: Handled}
}

func (s *ProjectSelector) handleEditKey(key string) Response {
	switch key {
	case "enter":
		s.commitEdit()
	case "esc":
		s.edit = editNone
		s.buffer = ""
	case "backspace":
		if len(s.buffer) > 0 {
			s.buffer = s.buffer[:len(s.buffer)-1]
			if s.edit == editFiltering {
				s.filter = s.buffer
				s.index = 0
			}
		}
	case "space":
		s.appendEdit(" ")
	default:
		if len(key) == 1 && key[0] >= 32 && key[0] <= 126 {
			s.appendEdit(key)
		}
	}
	return Response{Result: Handled}
}

func (s *ProjectSelector) appendEdit(text string) {
	s.buffer += text
	if s.edit == editFiltering {
		s.filter = s.buffer
		s.index = 0
	}
}

func (s *ProjectSelector) commitEdit() {
	switch s.edit {
	case editNaming, editRenaming:
		if p, ok := s.selected(); ok {
			if err := s.deps.Projects.Rename(p.ID, s.buffer); err != nil {
				s.deps.Notify(err.Error())
			}
		}
	case editFiltering:
		s.filter = s.buffer
		s.index = 0
		s.showSelection(false)
	}
	s.edit = editNone
	s.buffer = ""
}

func (s *ProjectSelector) move(delta int) {
	projects := s.visible()
	if len(projects) == 0 {
		return
	}
	n := len(projects)
	s.index = ((s.index+delta)%n + n) % n
	s.gen++
	s.showSelection(false)
	s.preview()
}

func (s *ProjectSelector) selectProject(id string) {
	for i, p := range s.visible() {
		if p.ID == id {
			s.index = i
			return
		}
	}
	s.index = 0
}

// preview hides non-member processes and raises member windows for the
// selected project. The system project previews as-is: everything stays up.
func (s *ProjectSelector) preview() {
	p, ok := s.selected()
	if !ok || p.System {
		return
	}
	s.applyProject(p)
}

func (s *ProjectSelector) applyProject(p *project.Project) {
	live, err := s.deps.Directory.ListWindows(wm.ListOptions{})
	if err != nil {
		return
	}
	memberPIDs := make(map[int]bool)
	byID := make(map[wm.WindowID]wm.WindowInfo, len(live))
	for _, w := range live {
		byID[w.ID] = w
	}
	for _, id := range p.Windows {
		if w, ok := byID[id]; ok {
			memberPIDs[w.PID] = true
		}
	}
	seen := make(map[int]bool)
	for _, w := range live {
		if w.PID == s.deps.OwnPID || seen[w.PID] || memberPIDs[w.PID] {
			continue
		}
		seen[w.PID] = true
		if err := s.deps.Actions.Hide(w.PID); err != nil {
			log.Debug("hide failed", "pid", w.PID, "err", err)
		}
	}
	for _, id := range p.Windows {
		if _, ok := byID[id]; !ok {
			continue
		}
		if err := s.deps.Actions.Raise(id); err != nil {
			log.Debug("raise failed", "window", id, "err", err)
		}
	}
}

// confirm applies the selected project and dismisses without restoring. The
// system project instead restores the pre-activation snapshot.
func (s *ProjectSelector) confirm() Response {
	p, ok := s.selected()
	if !ok {
		return Response{Result: Dismiss}
	}
	if p.System {
		s.deps.Restore()
	} else {
		s.applyProject(p)
	}
	s.deps.Stage.FlyOutAll(nil)
	return Response{Result: Confirm}
}

// Overlay implements Node: the project list with the edit line when active.
func (s *ProjectSelector) Overlay(width, _ int) string {
	var b strings.Builder
	b.WriteString(theme.Title().Render("Projects"))
	if s.filter != "" && s.edit != editFiltering {
		b.WriteString(theme.Dim().Render(fmt.Sprintf("  (filter: %s)", s.filter)))
	}
	b.WriteString("\n")
	for i, p := range s.visible() {
		label := fmt.Sprintf("%s (%d)", p.Name, len(p.Windows))
		if p.System {
			label = p.Name
		}
		line := "  " + label
		if i == s.index {
			if s.edit == editNaming || s.edit == editRenaming {
				line = "> " + s.buffer + "_"
			}
			b.WriteString(theme.Selected().Render(line))
		} else {
			b.WriteString(theme.Dim().Render(line))
		}
		b.WriteString("\n")
	}
	if s.edit == editFiltering {
		b.WriteString(theme.Notice().Render("/" + s.buffer + "_"))
	}
	return lipgloss.NewStyle().Width(width).Render(b.String())
}
