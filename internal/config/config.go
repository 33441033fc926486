package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// UserConfig is the on-disk configuration. Missing sections fall back to
// defaults, so a partial file is always valid.
type UserConfig struct {
	Appearance  AppearanceConfig  `toml:"appearance"`
	Behavior    BehaviorConfig    `toml:"behavior"`
	Keybindings KeybindingsConfig `toml:"keybindings"`
}

// AppearanceConfig controls HUD visuals.
type AppearanceConfig struct {
	Theme         string `toml:"theme"`
	DefaultLayout string `toml:"default_layout"` // row, grid, ring, carousel
	ShowLabels    bool   `toml:"show_labels"`
}

// BehaviorConfig controls interaction behavior.
type BehaviorConfig struct {
	RestoreLayoutOnCancel bool `toml:"restore_layout_on_cancel"`
	RaiseAllOnSelect      bool `toml:"raise_all_on_select"`
	GridRows              int  `toml:"grid_rows"`
	GridCols              int  `toml:"grid_cols"`
	GridGap               int  `toml:"grid_gap"`
}

// KeybindingsConfig maps action names to key lists, one map per mode so
// a key can mean different things in different selector nodes.
type KeybindingsConfig struct {
	Global   map[string][]string `toml:"global"`
	Selector map[string][]string `toml:"selector"`
	Projects map[string][]string `toml:"projects"`
	GridHud  map[string][]string `toml:"grid_hud"`
	EditMode map[string][]string `toml:"edit_mode"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *UserConfig {
	return &UserConfig{
		Appearance: AppearanceConfig{
			Theme:         "",
			DefaultLayout: "carousel",
			ShowLabels:    true,
		},
		Behavior: BehaviorConfig{
			RestoreLayoutOnCancel: true,
			RaiseAllOnSelect:      true,
			GridRows:              6,
			GridCols:              8,
			GridGap:               8,
		},
		Keybindings: KeybindingsConfig{
			Global: map[string][]string{
				"next_app":        {"tab", "right"},
				"prev_app":        {"shift+tab", "left"},
				"next_window":     {"`", "down"},
				"prev_window":     {"~", "up"},
				"toggle_projects": {"p"},
				"grid_hud":        {"g"},
				"cancel":          {"esc"},
				"confirm":         {"enter"},
			},
			Selector: map[string][]string{
				"expand_windows": {"down", "space"},
				"collapse":       {"up"},
				"cycle_layout":   {"l"},
				"hide_app":       {"h"},
				"quit_app":       {"q"},
			},
			Projects: map[string][]string{
				"new_project":    {"n"},
				"rename_project": {"r"},
				"clone_project":  {"c"},
				"delete_project": {"d"},
				"move_up":        {"shift+up", "K"},
				"move_down":      {"shift+down", "J"},
				"edit_members":   {"e"},
				"filter":         {"/"},
			},
			GridHud: map[string][]string{
				"anchor": {"space"},
				"apply":  {"enter"},
			},
			EditMode: map[string][]string{
				"toggle_all": {"A", "*"},
				"done":       {"enter", "esc"},
			},
		},
	}
}

// GetConfigPath returns the path of the user configuration file.
func GetConfigPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join("whirl", "whirl.toml"))
	if err != nil {
		return "", fmt.Errorf("could not resolve config path: %w", err)
	}
	return path, nil
}

// LoadUserConfig reads the user configuration, creating a default file on
// first run. Unknown keys are ignored; missing sections keep defaults.
func LoadUserConfig() (*UserConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		if writeErr := WriteConfig(path, cfg); writeErr != nil {
			// Still usable in-memory even if the file could not be written.
			return cfg, nil
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	return cfg, nil
}

// WriteConfig marshals cfg to TOML at path.
func WriteConfig(path string, cfg *UserConfig) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not marshal config: %w", err)
	}
	header := "# whirl configuration\n# Keybindings are arrays of keys; multiple keys can map to one action.\n\n"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	return nil
}
