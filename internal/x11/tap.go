package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgbutil/keybind"

	"github.com/whirl-wm/whirl/internal/modal"
)

// KeyboardTap grabs the keyboard while modal mode is engaged so every key
// reaches the HUD instead of the focused application. The server revokes
// grabs on its own in some situations, matching the auto-disable behavior
// the controller defends against.
type KeyboardTap struct {
	conn *Conn

	mu      sync.Mutex
	grabbed bool
}

var _ modal.InputTap = (*KeyboardTap)(nil)

// NewKeyboardTap wraps an X connection.
func NewKeyboardTap(conn *Conn) *KeyboardTap {
	return &KeyboardTap{conn: conn}
}

// Enable implements modal.InputTap.
func (t *KeyboardTap) Enable() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.grabbed {
		return nil
	}
	if err := keybind.GrabKeyboard(t.conn.XUtil, t.conn.Root); err != nil {
		return fmt.Errorf("x11: keyboard grab failed: %w", err)
	}
	t.grabbed = true
	return nil
}

// Disable implements modal.InputTap.
func (t *KeyboardTap) Disable() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.grabbed {
		return nil
	}
	keybind.UngrabKeyboard(t.conn.XUtil)
	t.grabbed = false
	return nil
}

// Enabled implements modal.InputTap.
func (t *KeyboardTap) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.grabbed
}
