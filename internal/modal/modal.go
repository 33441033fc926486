// Package modal implements the pushdown state machine behind the HUD: a
// stack of interchangeable selector nodes, global event classification, and
// the activation/restore lifecycle.
package modal

import (
	"github.com/charmbracelet/log"

	"github.com/whirl-wm/whirl/internal/capture"
	"github.com/whirl-wm/whirl/internal/config"
	"github.com/whirl-wm/whirl/internal/project"
	"github.com/whirl-wm/whirl/internal/stage"
	"github.com/whirl-wm/whirl/internal/wm"
)

// Result classifies a node's reaction to an event.
type Result int

const (
	// Handled consumes the event.
	Handled Result = iota
	// Unhandled forwards the event to the rest of the system.
	Unhandled
	// Dismiss pops one level; with one level left it deactivates the
	// controller and restores the pre-activation layout.
	Dismiss
	// Confirm pops the whole stack without restoring the layout: a
	// successful selection.
	Confirm
	// Push installs Response.Child above the current node.
	Push
)

// Response is a node's reaction to one event.
type Response struct {
	Result Result
	Child  Node
}

// EventKind distinguishes intercepted input events.
type EventKind int

const (
	// KeyDown is a key press, carrying the normalized key string.
	KeyDown EventKind = iota
	// ModifierRelease is a bare release of the accelerator modifier. While
	// any non-sticky node is active it is an implicit confirm.
	ModifierRelease
)

// Event is one intercepted global input event.
type Event struct {
	Kind EventKind
	Key  string
}

// Node is one interactive mode in the modal stack. A node owns whatever
// stage state it needs; at most one node receives input at a time.
type Node interface {
	// Name identifies the node's keybinding mode.
	Name() string
	// Activate is called when the node is pushed, and again each time it
	// becomes topmost after a child pops.
	Activate(d *Deps)
	// Suspend is called when a child is pushed above the node.
	Suspend()
	// Deactivate is called exactly once when the node is popped.
	Deactivate()
	// HandleEvent reacts to an event routed from the controller.
	HandleEvent(ev Event) Response
	// Sticky nodes ignore bare modifier release.
	Sticky() bool
	// Overlay renders the node's interactive surface for the given HUD
	// size in cells.
	Overlay(width, height int) string
}

// CaptureConsumer is implemented by nodes that issue capture requests; the
// controller routes completed captures to every node in the stack.
type CaptureConsumer interface {
	ApplyCapture(res capture.Result)
}

// InputTap abstracts the host's global event interception. Hosts may
// auto-disable a tap (e.g. on timeout); the controller defensively re-arms
// it on the next callback.
type InputTap interface {
	Enable() error
	Disable() error
	Enabled() bool
}

// Deps bundles every collaborator a node needs. Passing it explicitly (no
// package globals) keeps nodes testable in isolation.
type Deps struct {
	Directory wm.Directory
	Actions   wm.Actions
	Captures  *capture.Pipeline
	Stage     *stage.Stage
	Projects  *project.Store
	Keys      *config.KeybindRegistry
	Config    *config.UserConfig
	OwnPID    int
	// Notify shows a transient HUD message.
	Notify func(msg string)
	// Restore replays the pre-activation snapshot. Installed by the
	// controller before the first node activates.
	Restore func()
	// RaiseAll raises every window of a process, debounced so rapid
	// re-selection coalesces into a single raise. Installed by the
	// controller.
	RaiseAll func(pid int)
	// Target is the window that was frontmost at activation time; the
	// grid HUD applies its selection to it. Set by the controller.
	Target    wm.WindowID
	HasTarget bool
}

// RestoreSnapshot captures the layout at activation time so cancel can put
// the desktop back.
type RestoreSnapshot struct {
	VisiblePIDs []int
	Frontmost   wm.WindowID
	HasFront    bool
}

// Controller owns the node stack and the modal lifecycle.
type Controller struct {
	deps     *Deps
	tap      InputTap
	stack    []Node
	active   bool
	snapshot RestoreSnapshot
	raise    *Debouncer
}

// NewController wires a controller. tap may be nil for hosts (such as the
// terminal HUD) whose input is intercepted by construction.
func NewController(deps *Deps, tap InputTap) *Controller {
	c := &Controller{
		deps:  deps,
		tap:   tap,
		raise: NewDebouncer(config.RaiseDebounce),
	}
	deps.Restore = c.restoreSnapshot
	deps.RaiseAll = c.ScheduleRaiseAll
	return c
}

// Deps exposes the shared collaborators, primarily for the host render loop.
func (c *Controller) Deps() *Deps { return c.deps }

// Active reports whether modal mode is engaged.
func (c *Controller) Active() bool { return c.active }

// Top returns the active node, nil when the stack is empty.
func (c *Controller) Top() Node {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1]
}

// Depth returns the stack depth.
func (c *Controller) Depth() int { return len(c.stack) }

// Activate transitions inactive -> active: captures the restore snapshot,
// arms event interception, and pushes the initial node. Activating twice is
// a no-op.
func (c *Controller) Activate(initial Node) {
	if c.active {
		return
	}
	c.active = true
	c.captureSnapshot()
	if c.tap != nil {
		if err := c.tap.Enable(); err != nil {
			log.Warn("could not arm input tap", "err", err)
		}
	}
	c.push(initial)
}

// Deactivate pops every node, optionally restores the snapshot, and removes
// interception.
func (c *Controller) Deactivate(restoreLayout bool) {
	if !c.active {
		return
	}
	for len(c.stack) > 0 {
		c.pop()
	}
	c.active = false
	c.raise.Cancel()
	if restoreLayout {
		c.restoreSnapshot()
	}
	if c.tap != nil {
		if err := c.tap.Disable(); err != nil {
			log.Warn("could not disarm input tap", "err", err)
		}
	}
}

// HandleEvent routes one intercepted event. Returns true when the event was
// consumed; false means the host should forward it to the rest of the
// system. Deactivation is always reachable here regardless of pending async
// work.
func (c *Controller) HandleEvent(ev Event) bool {
	// Hosts can silently disable a tap; re-arm before anything else.
	if c.tap != nil && !c.tap.Enabled() {
		if err := c.tap.Enable(); err != nil {
			log.Warn("could not re-arm input tap", "err", err)
		}
	}

	top := c.Top()
	if top == nil {
		return false
	}

	if ev.Kind == ModifierRelease {
		if top.Sticky() {
			return true
		}
		// Implicit confirm.
		ev = Event{Kind: KeyDown, Key: "enter"}
	}

	resp := top.HandleEvent(ev)
	switch resp.Result {
	case Handled:
		return true
	case Unhandled:
		return false
	case Dismiss:
		if len(c.stack) > 1 {
			c.pop()
			c.Top().Activate(c.deps)
			return true
		}
		c.Deactivate(c.deps.Config.Behavior.RestoreLayoutOnCancel)
		return true
	case Confirm:
		c.Deactivate(false)
		return true
	case Push:
		if resp.Child != nil {
			top.Suspend()
			c.push(resp.Child)
		}
		return true
	}
	return true
}

// DeliverCapture routes a completed capture to every node in the stack; each
// node applies it only if its generation still matches.
func (c *Controller) DeliverCapture(res capture.Result) {
	for _, n := range c.stack {
		if consumer, ok := n.(CaptureConsumer); ok {
			consumer.ApplyCapture(res)
		}
	}
}

// ScheduleRaiseAll coalesces rapid re-selection into a single raise-all
// action; a newer selection cancels pending work unconditionally.
func (c *Controller) ScheduleRaiseAll(pid int) {
	actions := c.deps.Actions
	c.raise.Schedule(func() {
		if err := actions.Activate(pid, wm.ActivateOptions{AllWindows: true}); err != nil {
			log.Debug("raise-all failed", "pid", pid, "err", err)
		}
	})
}

func (c *Controller) push(n Node) {
	c.stack = append(c.stack, n)
	n.Activate(c.deps)
}

func (c *Controller) pop() {
	if len(c.stack) == 0 {
		return
	}
	n := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	n.Deactivate()
}

func (c *Controller) captureSnapshot() {
	c.snapshot = RestoreSnapshot{}
	onScreen, err := c.deps.Directory.ListWindows(wm.ListOptions{OnScreenOnly: true})
	if err != nil {
		log.Warn("could not snapshot visible windows", "err", err)
		return
	}
	seen := make(map[int]bool)
	for _, w := range onScreen {
		if w.PID == c.deps.OwnPID || seen[w.PID] {
			continue
		}
		seen[w.PID] = true
		c.snapshot.VisiblePIDs = append(c.snapshot.VisiblePIDs, w.PID)
	}
	if front, ok := c.deps.Directory.FrontmostWindow(); ok {
		c.snapshot.Frontmost = front.ID
		c.snapshot.HasFront = true
	}
	c.deps.Target = c.snapshot.Frontmost
	c.deps.HasTarget = c.snapshot.HasFront
}

// restoreSnapshot replays the pre-activation layout best effort: re-activate
// the processes that were visible, then put the frontmost window back on
// top.
func (c *Controller) restoreSnapshot() {
	for _, pid := range c.snapshot.VisiblePIDs {
		if err := c.deps.Actions.Activate(pid, wm.ActivateOptions{AllWindows: true}); err != nil {
			log.Debug("restore activate failed", "pid", pid, "err", err)
		}
	}
	if c.snapshot.HasFront {
		if err := c.deps.Actions.Raise(c.snapshot.Frontmost); err != nil {
			log.Debug("restore raise failed", "window", c.snapshot.Frontmost, "err", err)
		}
	}
}
