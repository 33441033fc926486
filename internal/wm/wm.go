// Package wm defines the window model and the query/action boundary to the
// host window system. Implementations live elsewhere (internal/x11); this
// package is pure and fully testable.
package wm

// WindowID identifies a window for the lifetime of the host session.
type WindowID uint32

// Rect is a screen rectangle in pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// AspectRatio returns width/height, or 1 for degenerate rectangles.
func (r Rect) AspectRatio() float64 {
	if r.Height <= 0 || r.Width <= 0 {
		return 1
	}
	return float64(r.Width) / float64(r.Height)
}

// WindowInfo is an immutable snapshot of one window. Directories produce
// fresh values on every query; consumers filter and reorder, never mutate.
type WindowInfo struct {
	ID       WindowID
	PID      int
	Frame    Rect
	Stacking int  // position in the stacking order, 0 = frontmost
	OnScreen bool // false for hidden/minimized windows
	Title    string
	AppName  string
}

// ListOptions narrows a Directory query.
type ListOptions struct {
	OnScreenOnly bool
	// PIDs, when non-nil, restricts results to the given processes.
	PIDs []int
}

// Directory supplies window snapshots. When OnScreenOnly is set the result
// is ordered front to back; otherwise ordering is unspecified.
type Directory interface {
	ListWindows(opts ListOptions) ([]WindowInfo, error)
	// FrontmostWindow returns the currently focused window, if any.
	FrontmostWindow() (WindowInfo, bool)
	// UsableArea is the screen rectangle excluding reserved regions.
	UsableArea() Rect
}

// ActivateOptions controls Actions.Activate.
type ActivateOptions struct {
	AllWindows   bool
	IgnoreOthers bool
}

// Actions raises and activates windows. All methods are best effort; errors
// are logged by implementations and never fail the modal flow.
type Actions interface {
	Raise(id WindowID) error
	Activate(pid int, opts ActivateOptions) error
	Hide(pid int) error
	Terminate(pid int) error
	// MoveResize applies a target frame to a window.
	MoveResize(id WindowID, frame Rect) error
	// Launch starts the application owning no windows; best effort.
	Launch(appName string) error
}
