package modal

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/log"

	"github.com/whirl-wm/whirl/internal/theme"
	"github.com/whirl-wm/whirl/internal/wm"
)

// GridHud is a select-a-cell-range overlay: the user sweeps out a rectangle
// of grid cells and applies it to the window that was frontmost when the
// modal session began.
type GridHud struct {
	deps *Deps

	rows, cols, gap int

	cursorRow, cursorCol int
	anchorRow, anchorCol int
	anchored             bool
}

// NewGridHud returns a fresh grid HUD.
func NewGridHud() *GridHud {
	return &GridHud{}
}

// Name implements Node.
func (g *GridHud) Name() string { return "grid_hud" }

// Sticky implements Node: the sweep is a multi-key interaction, a bare
// modifier release must not cut it short.
func (g *GridHud) Sticky() bool { return true }

// Activate implements Node.
func (g *GridHud) Activate(d *Deps) {
	g.deps = d
	g.rows = d.Config.Behavior.GridRows
	g.cols = d.Config.Behavior.GridCols
	g.gap = d.Config.Behavior.GridGap
	if g.rows < 1 {
		g.rows = 1
	}
	if g.cols < 1 {
		g.cols = 1
	}
	// The stage has no panels to show here; the grid is the surface.
	d.Stage.Teardown()
}

// Suspend implements Node.
func (g *GridHud) Suspend() {}

// Deactivate implements Node.
func (g *GridHud) Deactivate() {}

// HandleEvent implements Node.
func (g *GridHud) HandleEvent(ev Event) Response {
	if ev.Kind != KeyDown {
		return Response{Result: Handled}
	}

	// Arrow keys move the sweep cursor regardless of the registry: the
	// grid is a spatial interaction.
	switch ev.Key {
	case "up":
		g.moveCursor(-1, 0)
		return Response{Result: Handled}
	case "down":
		g.moveCursor(1, 0)
		return Response{Result: Handled}
	case "left":
		g.moveCursor(0, -1)
		return Response{Result: Handled}
	case "right":
		g.moveCursor(0, 1)
		return Response{Result: Handled}
	}

	action, ok := g.deps.Keys.Lookup("grid_hud", ev.Key)
	if !ok {
		return Response{Result: Unhandled}
	}
	switch action {
	case "anchor":
		g.anchorRow, g.anchorCol = g.cursorRow, g.cursorCol
		g.anchored = true
	case "apply", "confirm":
		g.apply()
		return Response{Result: Confirm}
	case "cancel":
		if g.anchored {
			g.anchored = false
			return Response{Result: Handled}
		}
		return Response{Result: Dismiss}
	default:
		return Response{Result: Unhandled}
	}
	return Response{Result: Handled}
}

func (g *GridHud) moveCursor(dr, dc int) {
	g.cursorRow = clamp(g.cursorRow+dr, 0, g.rows-1)
	g.cursorCol = clamp(g.cursorCol+dc, 0, g.cols-1)
	if !g.anchored {
		g.anchorRow, g.anchorCol = g.cursorRow, g.cursorCol
	}
}

// selection returns the swept cell range, inclusive.
func (g *GridHud) selection() (r0, c0, r1, c1 int) {
	r0, r1 = g.anchorRow, g.cursorRow
	if r0 > r1 {
		r0, r1 = r1, r0
	}
	c0, c1 = g.anchorCol, g.cursorCol
	if c0 > c1 {
		c0, c1 = c1, c0
	}
	return
}

// CellRangeRect maps an inclusive cell range to a screen rectangle within
// usable, honoring the configured inter-cell gap: the rectangle spans the
// selected cells plus the gaps between them, never the outer margin.
func CellRangeRect(usable wm.Rect, rows, cols, gap, r0, c0, r1, c1 int) wm.Rect {
	cellW := (usable.Width - (cols+1)*gap) / cols
	cellH := (usable.Height - (rows+1)*gap) / rows

	x := usable.X + gap + c0*(cellW+gap)
	y := usable.Y + gap + r0*(cellH+gap)
	w := (c1-c0+1)*cellW + (c1-c0)*gap
	h := (r1-r0+1)*cellH + (r1-r0)*gap

	return wm.Rect{X: x, Y: y, Width: w, Height: h}
}

// apply maps the selection to a target rectangle and moves the captured
// window there. Best effort: a vanished target is a silent no-op.
func (g *GridHud) apply() {
	if !g.deps.HasTarget {
		g.deps.Notify("No target window")
		return
	}
	r0, c0, r1, c1 := g.selection()
	rect := CellRangeRect(g.deps.Directory.UsableArea(), g.rows, g.cols, g.gap, r0, c0, r1, c1)
	if err := g.deps.Actions.MoveResize(g.deps.Target, rect); err != nil {
		log.Debug("move-resize failed", "window", g.deps.Target, "err", err)
	}
	if err := g.deps.Actions.Raise(g.deps.Target); err != nil {
		log.Debug("raise failed", "window", g.deps.Target, "err", err)
	}
}

// Overlay implements Node: the cell grid with the swept range highlighted.
func (g *GridHud) Overlay(width, height int) string {
	r0, c0, r1, c1 := g.selection()
	var b strings.Builder
	b.WriteString(theme.Title().Render("Grid"))
	b.WriteString("\n")
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			inRange := r >= r0 && r <= r1 && c >= c0 && c <= c1
			cell := "·"
			switch {
			case r == g.cursorRow && c == g.cursorCol:
				b.WriteString(theme.Selected().Render("█"))
			case inRange:
				b.WriteString(theme.Notice().Render("▓"))
			default:
				b.WriteString(theme.Dim().Render(cell))
			}
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(b.String())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
