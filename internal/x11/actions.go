package x11

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/charmbracelet/log"

	"github.com/whirl-wm/whirl/internal/wm"
)

// Actions drives window state over EWMH. Several requests must be built by
// hand because the corresponding xgbutil helpers panic on uint/int type
// assertions with current window managers.
type Actions struct {
	conn *Conn
	dir  *Directory
}

var _ wm.Actions = (*Actions)(nil)

// NewActions wraps an X connection. dir resolves pid -> window lookups.
func NewActions(conn *Conn, dir *Directory) *Actions {
	return &Actions{conn: conn, dir: dir}
}

// Raise implements wm.Actions: activate and raise via _NET_ACTIVE_WINDOW.
func (a *Actions) Raise(id wm.WindowID) error {
	return a.sendClientMessage(xproto.Window(id), "_NET_ACTIVE_WINDOW",
		[]uint32{sourcePager, 0, 0, 0, 0})
}

// Activate implements wm.Actions: raises the windows of a process, back to
// front so the most recent one ends up on top.
func (a *Actions) Activate(pid int, opts wm.ActivateOptions) error {
	windows, err := a.dir.ListWindows(wm.ListOptions{PIDs: []int{pid}})
	if err != nil {
		return err
	}
	if len(windows) == 0 {
		return fmt.Errorf("x11: no windows for pid %d", pid)
	}
	if !opts.AllWindows {
		windows = windows[:1]
	}
	var firstErr error
	for i := len(windows) - 1; i >= 0; i-- {
		if err := a.Raise(windows[i].ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Hide implements wm.Actions: iconifies every window of the process.
func (a *Actions) Hide(pid int) error {
	windows, err := a.dir.ListWindows(wm.ListOptions{PIDs: []int{pid}})
	if err != nil {
		return err
	}
	const iconicState = 3
	var firstErr error
	for _, w := range windows {
		err := a.sendClientMessage(xproto.Window(w.ID), "WM_CHANGE_STATE",
			[]uint32{iconicState, 0, 0, 0, 0})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Terminate implements wm.Actions: requests graceful close of every window
// of the process via WM_DELETE_WINDOW.
func (a *Actions) Terminate(pid int) error {
	windows, err := a.dir.ListWindows(wm.ListOptions{PIDs: []int{pid}})
	if err != nil {
		return err
	}
	xc := a.conn.XUtil.Conn()
	deleteAtom, err := a.internAtom("WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	protocolsAtom, err := a.internAtom("WM_PROTOCOLS")
	if err != nil {
		return err
	}
	var firstErr error
	for _, w := range windows {
		ev := xproto.ClientMessageEvent{
			Format: 32,
			Window: xproto.Window(w.ID),
			Type:   protocolsAtom,
			Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteAtom), 0, 0, 0, 0}),
		}
		err := xproto.SendEventChecked(xc, false, xproto.Window(w.ID),
			xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// MoveResize implements wm.Actions. A maximized window ignores move-resize
// requests, so the maximized states are removed first.
func (a *Actions) MoveResize(id wm.WindowID, frame wm.Rect) error {
	xid := xproto.Window(id)
	a.unmaximize(xid)

	err := ewmh.MoveresizeWindow(a.conn.XUtil, xid, frame.X, frame.Y, frame.Width, frame.Height)
	if err != nil {
		// Fallback to direct manipulation for non-EWMH window managers.
		xwindow.New(a.conn.XUtil, xid).MoveResize(frame.X, frame.Y, frame.Width, frame.Height)
	}
	return nil
}

// Launch implements wm.Actions: starts the named application detached.
func (a *Actions) Launch(appName string) error {
	name := strings.ToLower(strings.TrimSpace(appName))
	if name == "" {
		return fmt.Errorf("x11: empty application name")
	}
	cmd := exec.Command(name)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("x11: launch %q failed: %w", name, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug("launched process exited", "app", name, "err", err)
		}
	}()
	return nil
}

func (a *Actions) unmaximize(id xproto.Window) {
	states, err := ewmh.WmStateGet(a.conn.XUtil, id)
	if err != nil {
		return
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			if err := ewmh.WmStateReq(a.conn.XUtil, id, ewmh.StateRemove, state); err != nil {
				log.Debug("unmaximize failed", "window", id, "state", state, "err", err)
			}
		}
	}
}

// sourcePager marks requests as direct user actions per EWMH.
const sourcePager = 2

func (a *Actions) internAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(a.conn.XUtil.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("x11: intern %s failed: %w", name, err)
	}
	return reply.Atom, nil
}

func (a *Actions) sendClientMessage(window xproto.Window, atomName string, data []uint32) error {
	atom, err := a.internAtom(atomName)
	if err != nil {
		return err
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: window,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}
	return xproto.SendEventChecked(
		a.conn.XUtil.Conn(),
		false,
		a.conn.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
