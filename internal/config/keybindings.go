package config

// KeybindRegistry resolves key presses to action names per mode. It is built
// once from a UserConfig and replaced wholesale on config reload.
type KeybindRegistry struct {
	// mode -> key -> action
	byMode map[string]map[string]string
	// mode -> action -> keys (for help output)
	byAction map[string]map[string][]string
}

// ActionDescriptions maps action names to help text.
var ActionDescriptions = map[string]string{
	"next_app":        "Select next application",
	"prev_app":        "Select previous application",
	"next_window":     "Select next window of the app",
	"prev_window":     "Select previous window of the app",
	"toggle_projects": "Open the project selector",
	"grid_hud":        "Open the grid HUD",
	"cancel":          "Dismiss the current mode",
	"confirm":         "Confirm the current selection",
	"expand_windows":  "Expand the selected app into its windows",
	"collapse":        "Collapse back to application view",
	"cycle_layout":    "Cycle row/grid/ring/carousel",
	"hide_app":        "Hide the selected application",
	"quit_app":        "Quit the selected application",
	"new_project":     "Create a project",
	"rename_project":  "Rename the selected project",
	"clone_project":   "Clone the selected project",
	"delete_project":  "Delete the selected project",
	"move_up":         "Move project up",
	"move_down":       "Move project down",
	"edit_members":    "Edit project membership",
	"filter":          "Filter projects",
	"anchor":          "Anchor the grid selection",
	"apply":           "Apply the grid selection",
	"toggle_all":      "Toggle all windows",
	"done":            "Finish editing",
}

// NewKeybindRegistry builds a registry from cfg. Later keys win on conflict
// within a mode.
func NewKeybindRegistry(cfg *UserConfig) *KeybindRegistry {
	r := &KeybindRegistry{
		byMode:   make(map[string]map[string]string),
		byAction: make(map[string]map[string][]string),
	}
	r.addMode("global", cfg.Keybindings.Global)
	r.addMode("selector", cfg.Keybindings.Selector)
	r.addMode("projects", cfg.Keybindings.Projects)
	r.addMode("grid_hud", cfg.Keybindings.GridHud)
	r.addMode("edit_mode", cfg.Keybindings.EditMode)
	return r
}

func (r *KeybindRegistry) addMode(mode string, bindings map[string][]string) {
	keys := make(map[string]string)
	actions := make(map[string][]string)
	for action, keyList := range bindings {
		for _, k := range keyList {
			keys[k] = action
		}
		actions[action] = keyList
	}
	r.byMode[mode] = keys
	r.byAction[mode] = actions
}

// Lookup resolves a key in the given mode, falling back to the global mode.
// Returns the action name and whether a binding exists.
func (r *KeybindRegistry) Lookup(mode, key string) (string, bool) {
	if keys, ok := r.byMode[mode]; ok {
		if action, ok := keys[key]; ok {
			return action, true
		}
	}
	if mode != "global" {
		if action, ok := r.byMode["global"][key]; ok {
			return action, true
		}
	}
	return "", false
}

// GetKeys returns the keys bound to action in mode, nil when unbound.
func (r *KeybindRegistry) GetKeys(mode, action string) []string {
	if actions, ok := r.byAction[mode]; ok {
		return actions[action]
	}
	return nil
}

// Modes returns the known mode names in a stable order.
func (r *KeybindRegistry) Modes() []string {
	return []string{"global", "selector", "projects", "grid_hud", "edit_mode"}
}

// Bindings returns the action -> keys map for a mode. The returned map is
// shared; callers must not mutate it.
func (r *KeybindRegistry) Bindings(mode string) map[string][]string {
	return r.byAction[mode]
}
