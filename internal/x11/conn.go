// Package x11 adapts an EWMH-compliant X11 window manager to the wm
// directory and actions interfaces, and provides the window capture source.
package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Conn manages the X11 connection and core X resources.
type Conn struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConn establishes a connection to the X server.
func NewConn() (*Conn, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11: connect failed: %w", err)
	}
	// Required for keyboard grabs.
	keybind.Initialize(xu)
	return &Conn{XUtil: xu, Root: xu.RootWin()}, nil
}

// Close disconnects from the X server.
func (c *Conn) Close() {
	c.XUtil.Conn().Close()
}
