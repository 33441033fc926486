package app

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/whirl-wm/whirl/internal/stage"
	"github.com/whirl-wm/whirl/internal/theme"
	"github.com/whirl-wm/whirl/internal/wm"
)

// View implements tea.Model.
func (h *HUD) View() tea.View {
	var view tea.View
	view.SetContent(lipgloss.Sprint(h.canvas().Render()))
	view.AltScreen = true
	return view
}

func (h *HUD) canvas() *lipgloss.Canvas {
	if h.width <= 0 || h.height <= 0 {
		return lipgloss.NewCanvas(0, 0)
	}
	canvas := lipgloss.NewCanvas(h.width, h.height)

	var layers []*lipgloss.Layer

	if !h.controller.Active() {
		layers = append(layers, h.idleLayer())
	} else {
		layers = append(layers, h.panelLayers()...)
		if top := h.controller.Top(); top != nil {
			if overlay := top.Overlay(h.width, h.height); overlay != "" {
				overlayY := h.height - lipgloss.Height(overlay) - 1
				if overlayY < 0 {
					overlayY = 0
				}
				layers = append(layers, lipgloss.NewLayer(overlay).
					X(0).Y(overlayY).Z(1000).ID("overlay"))
			}
		}
	}

	if h.notification != "" {
		notice := theme.Notice().Render(h.notification)
		x := h.width - lipgloss.Width(notice) - 2
		if x < 0 {
			x = 0
		}
		layers = append(layers, lipgloss.NewLayer(notice).
			X(x).Y(0).Z(2000).ID("notification"))
	}

	canvas.Compose(lipgloss.NewCompositor(layers...))
	return canvas
}

func (h *HUD) idleLayer() *lipgloss.Layer {
	body := theme.Title().Render("whirl") + "\n\n" +
		theme.Dim().Render("tab  switch apps\n`    switch windows\np    projects\ng    grid\nq    quit")
	content := lipgloss.NewStyle().
		Width(h.width).Height(h.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(body)
	return lipgloss.NewLayer(content).X(0).Y(0).Z(0).ID("idle")
}

// panelLayers renders the stage panels back to front. The stage's draw order
// already encodes front/back classification and ZKey sorting.
func (h *HUD) panelLayers() []*lipgloss.Layer {
	st := h.controller.Deps().Stage
	panels := st.Panels()
	usable := h.controller.Deps().Directory.UsableArea()

	layers := make([]*lipgloss.Layer, 0, len(panels))
	for z, idx := range st.Order() {
		if idx < 0 || idx >= len(panels) {
			continue
		}
		p := panels[idx]
		pose := p.Pose()
		if pose.Opacity <= 0.01 {
			continue
		}
		cell := h.toCells(usable, pose.Frame)
		if cell.Width < 4 || cell.Height < 3 {
			continue
		}
		content := h.renderPanel(p, pose, cell.Width, cell.Height)
		layers = append(layers, lipgloss.NewLayer(content).
			X(cell.X).Y(cell.Y).Z(z+1).
			ID(fmt.Sprintf("panel-%d", p.Window.ID)))
	}
	return layers
}

// toCells maps a pixel-space frame inside the usable area onto the terminal
// cell grid.
func (h *HUD) toCells(usable wm.Rect, frame stage.RectF) wm.Rect {
	if usable.Width <= 0 || usable.Height <= 0 {
		return wm.Rect{}
	}
	sx := float64(h.width) / float64(usable.Width)
	sy := float64(h.height) / float64(usable.Height)
	return wm.Rect{
		X:      int(math.Round((frame.X - float64(usable.X)) * sx)),
		Y:      int(math.Round((frame.Y - float64(usable.Y)) * sy)),
		Width:  int(math.Round(frame.Width * sx)),
		Height: int(math.Round(frame.Height * sy)),
	}
}

func (h *HUD) renderPanel(p *stage.Panel, pose stage.Pose, cols, rows int) string {
	// The border consumes one cell on each side.
	innerW, innerH := cols-2, rows-2
	label := p.Window.AppName
	if label == "" {
		label = p.Window.Title
	}
	if len([]rune(label)) > innerW {
		label = truncate(label, innerW)
	}

	bodyRows := innerH
	if h.showLabels() && bodyRows > 1 {
		bodyRows--
	}

	var body string
	if p.Image != nil {
		body = halfBlocks(p.Image, innerW, bodyRows, pose.Opacity)
	} else {
		body = lipgloss.NewStyle().
			Width(innerW).Height(bodyRows).
			Align(lipgloss.Center, lipgloss.Center).
			Render(theme.Dim().Render("..."))
	}
	if h.showLabels() && innerH > 1 {
		labelLine := lipgloss.NewStyle().Width(innerW).Align(lipgloss.Center)
		if pose.Front {
			body += "\n" + labelLine.Render(theme.Selected().Render(label))
		} else {
			body += "\n" + labelLine.Render(theme.Dim().Render(label))
		}
	}

	return theme.PanelBorder(pose.Front).Width(innerW).Render(body)
}

func (h *HUD) showLabels() bool {
	return h.controller.Deps().Config.Appearance.ShowLabels
}

// halfBlocks renders an image into a cols x rows cell block, two vertical
// pixels per cell with the upper-half-block glyph. Opacity darkens toward
// the terminal background.
func halfBlocks(src *image.RGBA, cols, rows int, opacity float64) string {
	if cols < 1 || rows < 1 {
		return ""
	}
	scaled := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	if opacity > 1 {
		opacity = 1
	}
	var b strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			fg := dimmed(scaled.RGBAAt(x, y*2), opacity)
			bg := dimmed(scaled.RGBAAt(x, y*2+1), opacity)
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(fg)).
				Background(lipgloss.Color(bg)).
				Render("▀"))
		}
		if y < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func dimmed(c color.RGBA, opacity float64) string {
	r := uint8(float64(c.R) * opacity)
	g := uint8(float64(c.G) * opacity)
	bl := uint8(float64(c.B) * opacity)
	return fmt.Sprintf("#%02x%02x%02x", r, g, bl)
}

func truncate(s string, width int) string {
	if width <= 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
