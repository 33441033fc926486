package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/whirl-wm/whirl/internal/wm"
)

// Directory reads window state over EWMH.
type Directory struct {
	conn *Conn
}

var _ wm.Directory = (*Directory)(nil)

// NewDirectory wraps an X connection.
func NewDirectory(conn *Conn) *Directory {
	return &Directory{conn: conn}
}

// ListWindows implements wm.Directory. _NET_CLIENT_LIST_STACKING is
// bottom-to-top; results are reversed so index 0 is the frontmost window.
func (d *Directory) ListWindows(opts wm.ListOptions) ([]wm.WindowInfo, error) {
	xu := d.conn.XUtil
	clients, err := ewmh.ClientListStackingGet(xu)
	if err != nil {
		// Some window managers only maintain _NET_CLIENT_LIST.
		clients, err = ewmh.ClientListGet(xu)
		if err != nil {
			return nil, fmt.Errorf("x11: client list query failed: %w", err)
		}
	}

	var want map[int]bool
	if len(opts.PIDs) > 0 {
		want = make(map[int]bool, len(opts.PIDs))
		for _, pid := range opts.PIDs {
			want[pid] = true
		}
	}

	out := make([]wm.WindowInfo, 0, len(clients))
	for i := len(clients) - 1; i >= 0; i-- {
		id := clients[i]
		if !d.isNormalWindow(id) {
			continue
		}
		info := wm.WindowInfo{
			ID:       wm.WindowID(id),
			Stacking: len(out),
			OnScreen: !d.isHidden(id),
			Title:    d.windowTitle(id),
		}
		if pid, err := ewmh.WmPidGet(xu, id); err == nil {
			info.PID = int(pid)
		}
		if want != nil && !want[info.PID] {
			continue
		}
		if opts.OnScreenOnly && !info.OnScreen {
			continue
		}
		frame, ok := d.windowFrame(id)
		if !ok {
			continue
		}
		info.Frame = frame
		info.AppName = d.appName(id, info.PID)
		out = append(out, info)
	}
	return out, nil
}

// FrontmostWindow implements wm.Directory.
func (d *Directory) FrontmostWindow() (wm.WindowInfo, bool) {
	active, err := ewmh.ActiveWindowGet(d.conn.XUtil)
	if err != nil || active == 0 {
		return wm.WindowInfo{}, false
	}
	windows, err := d.ListWindows(wm.ListOptions{OnScreenOnly: true})
	if err != nil {
		return wm.WindowInfo{}, false
	}
	for _, w := range windows {
		if w.ID == wm.WindowID(active) {
			return w, true
		}
	}
	return wm.WindowInfo{}, false
}

// UsableArea implements wm.Directory: the work area of the current desktop,
// falling back to the full root geometry.
func (d *Directory) UsableArea() wm.Rect {
	xu := d.conn.XUtil
	full := wm.Rect{
		Width:  int(xu.Screen().WidthInPixels),
		Height: int(xu.Screen().HeightInPixels),
	}
	areas, err := ewmh.WorkareaGet(xu)
	if err != nil || len(areas) == 0 {
		return full
	}
	idx := 0
	if current, err := ewmh.CurrentDesktopGet(xu); err == nil && int(current) < len(areas) {
		idx = int(current)
	}
	wa := areas[idx]
	if wa.Width == 0 || wa.Height == 0 {
		return full
	}
	return wm.Rect{X: int(wa.X), Y: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)}
}

func (d *Directory) isNormalWindow(id xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(d.conn.XUtil, id)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

func (d *Directory) isHidden(id xproto.Window) bool {
	states, err := ewmh.WmStateGet(d.conn.XUtil, id)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

func (d *Directory) windowFrame(id xproto.Window) (wm.Rect, bool) {
	xc := d.conn.XUtil.Conn()
	geom, err := xproto.GetGeometry(xc, xproto.Drawable(id)).Reply()
	if err != nil {
		return wm.Rect{}, false
	}
	// Window coordinates are parent-relative; translate to root space.
	translate, err := xproto.TranslateCoordinates(xc, id, d.conn.Root, 0, 0).Reply()
	if err != nil {
		return wm.Rect{}, false
	}
	return wm.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, true
}

func (d *Directory) windowTitle(id xproto.Window) string {
	if title, err := ewmh.WmNameGet(d.conn.XUtil, id); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(d.conn.XUtil, id); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// appName prefers the WM_CLASS class name and falls back to the process
// executable name.
func (d *Directory) appName(id xproto.Window, pid int) string {
	if wmClass, err := icccm.WmClassGet(d.conn.XUtil, id); err == nil {
		if name := strings.TrimSpace(wmClass.Class); name != "" {
			return name
		}
	}
	if pid > 0 {
		if proc, err := process.NewProcess(int32(pid)); err == nil {
			if name, err := proc.Name(); err == nil {
				return name
			}
		}
	}
	return ""
}
