package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/whirl-wm/whirl/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if cfg.Appearance.DefaultLayout == "" {
		t.Error("Expected a default layout to be set")
	}

	if cfg.Behavior.GridRows < 1 || cfg.Behavior.GridCols < 1 {
		t.Errorf("Expected positive grid dimensions, got %dx%d",
			cfg.Behavior.GridRows, cfg.Behavior.GridCols)
	}
}

func TestDefaultKeybindings(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg.Keybindings.Global == nil {
		t.Fatal("Global keybindings are nil")
	}

	requiredActions := []string{
		"next_app",
		"prev_app",
		"confirm",
		"cancel",
	}

	for _, action := range requiredActions {
		keys, ok := cfg.Keybindings.Global[action]
		if !ok {
			t.Errorf("Expected %s keybinding to exist", action)
			continue
		}
		if len(keys) == 0 {
			t.Errorf("Expected %s to have at least one key bound", action)
		}
	}
}

func TestKeybindRegistryLookup(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	tests := []struct {
		mode   string
		key    string
		action string
		found  bool
	}{
		{"global", "tab", "next_app", true},
		{"selector", "tab", "next_app", true}, // global fallback
		{"selector", "l", "cycle_layout", true},
		{"projects", "n", "new_project", true},
		{"grid_hud", "enter", "apply", true},
		{"edit_mode", "enter", "done", true}, // mode binding shadows global confirm
		{"selector", "ctrl+zz", "", false},
	}

	for _, tt := range tests {
		action, ok := registry.Lookup(tt.mode, tt.key)
		if ok != tt.found {
			t.Errorf("Lookup(%s, %s) found = %v, want %v", tt.mode, tt.key, ok, tt.found)
			continue
		}
		if ok && action != tt.action {
			t.Errorf("Lookup(%s, %s) = %q, want %q", tt.mode, tt.key, action, tt.action)
		}
	}
}

func TestKeybindRegistryGetKeys(t *testing.T) {
	registry := config.NewKeybindRegistry(config.DefaultConfig())

	keys := registry.GetKeys("global", "next_app")
	if len(keys) == 0 {
		t.Error("Expected next_app to have keys")
	}
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whirl.toml")

	cfg := config.DefaultConfig()
	cfg.Appearance.DefaultLayout = "ring"
	cfg.Behavior.GridRows = 4

	if err := config.WriteConfig(path, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading config back: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("config file is empty")
	}
}
