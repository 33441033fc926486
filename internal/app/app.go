// Package app hosts the modal engine inside a bubbletea program: it drives
// stage animation from tick messages, routes key input to the controller,
// and feeds completed captures back on the UI goroutine.
package app

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/whirl-wm/whirl/internal/capture"
	"github.com/whirl-wm/whirl/internal/config"
	"github.com/whirl-wm/whirl/internal/modal"
	"github.com/whirl-wm/whirl/internal/stage"
	"github.com/whirl-wm/whirl/internal/theme"
)

// TickerMsg is a periodic tick driving animation.
type TickerMsg time.Time

// CaptureMsg carries one completed window capture.
type CaptureMsg capture.Result

// ConfigReloadedMsg signals an on-disk configuration change.
type ConfigReloadedMsg struct{}

// TickCmd ticks at the animation frame rate.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second/config.NormalFPS, func(t time.Time) tea.Msg {
		return TickerMsg(t)
	})
}

// IdleTickCmd ticks slowly while nothing animates.
func IdleTickCmd() tea.Cmd {
	return tea.Tick(time.Second/config.IdleFPS, func(t time.Time) tea.Msg {
		return TickerMsg(t)
	})
}

// ListenForCaptures forwards one pipeline result as a message. The command
// re-arms itself from Update, so the channel is drained for the lifetime of
// the program.
func ListenForCaptures(p *capture.Pipeline) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-p.Results()
		if !ok {
			return nil
		}
		return CaptureMsg(res)
	}
}

// HUD is the bubbletea model around the modal controller.
type HUD struct {
	controller *modal.Controller
	ticks      *stage.ManualSource
	initial    modal.Node
	oneShot    bool

	width  int
	height int

	notification string
	notifyUntil  time.Time
}

// New builds the HUD. initial, when non-nil, is activated on startup; with
// oneShot set the program quits as soon as the controller deactivates.
func New(ctl *modal.Controller, ticks *stage.ManualSource, initial modal.Node, oneShot bool) *HUD {
	h := &HUD{
		controller: ctl,
		ticks:      ticks,
		initial:    initial,
		oneShot:    oneShot,
	}
	ctl.Deps().Notify = h.notify
	return h
}

func (h *HUD) notify(msg string) {
	h.notification = msg
	h.notifyUntil = time.Now().Add(config.NotificationDuration)
}

// Init implements tea.Model.
func (h *HUD) Init() tea.Cmd {
	if h.initial != nil {
		h.controller.Activate(h.initial)
	}
	return tea.Batch(TickCmd(), ListenForCaptures(h.controller.Deps().Captures))
}

// Update implements tea.Model.
func (h *HUD) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickerMsg:
		now := time.Time(msg)
		h.ticks.Pump(now)
		if h.notification != "" && now.After(h.notifyUntil) {
			h.notification = ""
		}
		if h.ticks.Active() || h.controller.Deps().Stage.Animating() {
			return h, TickCmd()
		}
		return h, IdleTickCmd()

	case tea.KeyPressMsg:
		return h.handleKey(msg.String())

	case tea.KeyReleaseMsg:
		switch msg.String() {
		case "alt", "ctrl", "shift", "super":
			return h.routeEvent(modal.Event{Kind: modal.ModifierRelease})
		}
		return h, nil

	case CaptureMsg:
		h.controller.DeliverCapture(capture.Result(msg))
		return h, ListenForCaptures(h.controller.Deps().Captures)

	case ConfigReloadedMsg:
		return h, h.reloadConfig()

	case settleMsg:
		h.ticks.Pump(time.Now())
		if h.controller.Deps().Stage.Animating() {
			return h, h.quitWhenSettled()
		}
		return h, tea.Quit

	case tea.WindowSizeMsg:
		h.width = msg.Width
		h.height = msg.Height
		return h, nil
	}
	return h, nil
}

func (h *HUD) handleKey(key string) (tea.Model, tea.Cmd) {
	if !h.controller.Active() {
		switch key {
		case "tab":
			h.controller.Activate(modal.NewAppSelector(modal.AppsOnly, 1))
		case "`":
			h.controller.Activate(modal.NewAppSelector(modal.WindowsOnly, 0))
		case "p":
			h.controller.Activate(modal.NewProjectSelector())
		case "g":
			h.controller.Activate(modal.NewGridHud())
		case "q", "ctrl+c":
			return h, tea.Quit
		}
		return h, TickCmd()
	}
	return h.routeEvent(modal.Event{Kind: modal.KeyDown, Key: key})
}

func (h *HUD) routeEvent(ev modal.Event) (tea.Model, tea.Cmd) {
	h.controller.HandleEvent(ev)
	if h.oneShot && !h.controller.Active() {
		if !h.controller.Deps().Stage.Animating() {
			return h, tea.Quit
		}
		// Let the fly-out finish before quitting.
		return h, h.quitWhenSettled()
	}
	return h, TickCmd()
}

// quitWhenSettled schedules a settle poll one frame out. The tick callback
// runs on a command goroutine, so it stays side-effect free; Update owns the
// pump and the quit decision when the settleMsg arrives.
func (h *HUD) quitWhenSettled() tea.Cmd {
	return tea.Tick(time.Second/config.NormalFPS, func(time.Time) tea.Msg {
		return settleMsg{}
	})
}

type settleMsg struct{}

func (h *HUD) reloadConfig() tea.Cmd {
	cfg, err := config.LoadUserConfig()
	if err != nil {
		log.Warn("config reload failed", "err", err)
		h.notify("Config reload failed")
		return nil
	}
	deps := h.controller.Deps()
	*deps.Config = *cfg
	*deps.Keys = *config.NewKeybindRegistry(cfg)
	theme.Initialize(cfg.Appearance.Theme)
	h.notify("Config reloaded")
	return nil
}
