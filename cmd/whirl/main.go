// Package main implements whirl, a modal window switcher for X11 rendered
// as a terminal HUD. Hold the switcher open to cycle applications and
// windows on an animated stage, group windows into projects, or snap the
// active window onto a screen grid.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/whirl-wm/whirl/internal/app"
	"github.com/whirl-wm/whirl/internal/capture"
	"github.com/whirl-wm/whirl/internal/config"
	"github.com/whirl-wm/whirl/internal/modal"
	"github.com/whirl-wm/whirl/internal/project"
	"github.com/whirl-wm/whirl/internal/stage"
	"github.com/whirl-wm/whirl/internal/theme"
	"github.com/whirl-wm/whirl/internal/x11"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var debugMode bool

func main() {
	var stay bool
	var startMode string

	rootCmd := &cobra.Command{
		Use:   "whirl",
		Short: "Modal window switcher for X11",
		Long: `whirl - a modal window switcher rendered as a terminal HUD

Cycle applications and their windows on an animated stage, group windows
into named projects, and snap the active window onto a screen grid.`,
		Example: `  # Open the switcher
  whirl

  # Open directly on the windows of the frontmost app
  whirl --mode windows

  # Keep running after a selection
  whirl --stay

  # Edit configuration
  whirl config edit

  # List all keybindings
  whirl keybinds list`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHUD(startMode, stay)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&stay, "stay", false, "Keep the HUD running after a selection")
	rootCmd.Flags().StringVar(&startMode, "mode", "apps",
		"Initial mode: apps, windows, projects or grid")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage whirl configuration",
	}
	configCmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print configuration file path",
			RunE: func(cmd *cobra.Command, args []string) error {
				return printConfigPath()
			},
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Edit configuration in $EDITOR",
			RunE: func(cmd *cobra.Command, args []string) error {
				return editConfigFile()
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Reset configuration to defaults",
			RunE: func(cmd *cobra.Command, args []string) error {
				return resetConfig()
			},
		},
	)

	keybindsCmd := &cobra.Command{
		Use:     "keybinds",
		Aliases: []string{"keys", "kb"},
		Short:   "View keybinding configuration",
	}
	keybindsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all keybindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listKeybindings()
		},
	})

	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage window projects",
	}
	projectsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listProjects()
		},
	})

	rootCmd.AddCommand(configCmd, keybindsCmd, projectsCmd)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s", version, commit, date)),
	); err != nil {
		os.Exit(1)
	}
}

func runHUD(startMode string, stay bool) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("whirl needs a terminal to render the HUD")
	}
	if debugMode {
		log.SetLevel(log.DebugLevel)
	}

	userConfig, err := config.LoadUserConfig()
	if err != nil {
		log.Warn("could not load config, using defaults", "err", err)
		userConfig = config.DefaultConfig()
	}
	theme.Initialize(userConfig.Appearance.Theme)

	conn, err := x11.NewConn()
	if err != nil {
		return err
	}
	defer conn.Close()

	directory := x11.NewDirectory(conn)
	actions := x11.NewActions(conn, directory)
	pipeline := capture.NewPipeline(x11.NewCaptureSource(conn))
	defer pipeline.Close()

	projects, err := project.Load()
	if err != nil {
		log.Warn("could not load projects", "err", err)
		projects = project.NewStore()
	}

	ticks := &stage.ManualSource{}
	deps := &modal.Deps{
		Directory: directory,
		Actions:   actions,
		Captures:  pipeline,
		Stage:     stage.New(directory.UsableArea(), ticks),
		Projects:  projects,
		Keys:      config.NewKeybindRegistry(userConfig),
		Config:    userConfig,
		OwnPID:    os.Getpid(),
	}
	controller := modal.NewController(deps, x11.NewKeyboardTap(conn))

	initial, err := initialNode(startMode)
	if err != nil {
		return err
	}

	hud := app.New(controller, ticks, initial, !stay)
	p := tea.NewProgram(hud, tea.WithFPS(config.NormalFPS))

	stopWatch, err := config.Watch(func(*config.UserConfig) {
		p.Send(app.ConfigReloadedMsg{})
	})
	if err != nil {
		log.Warn("config watch unavailable", "err", err)
	} else {
		defer stopWatch()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func initialNode(mode string) (modal.Node, error) {
	switch mode {
	case "apps":
		return modal.NewAppSelector(modal.AppsOnly, 1), nil
	case "windows":
		return modal.NewAppSelector(modal.WindowsOnly, 0), nil
	case "projects":
		return modal.NewProjectSelector(), nil
	case "grid":
		return modal.NewGridHud(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown mode %q (want apps, windows, projects, grid or none)", mode)
	}
}

func printConfigPath() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}
	fmt.Println(path)
	return nil
}

func editConfigFile() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if _, err := config.LoadUserConfig(); err != nil {
			return fmt.Errorf("could not create config file: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"vim", "vi", "nano", "emacs"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found, set $EDITOR")
	}

	cmd := exec.Command(editor, configPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func resetConfig() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("This will overwrite your configuration at:\n  %s\n\n", configPath)
		fmt.Printf("Reset to defaults? (yes/no): ")
		var response string
		fmt.Scanln(&response)
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "yes" && response != "y" {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	if err := config.WriteConfig(configPath, config.DefaultConfig()); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	fmt.Printf("Configuration reset to defaults: %s\n", configPath)
	return nil
}

func listKeybindings() error {
	userConfig, err := config.LoadUserConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	registry := config.NewKeybindRegistry(userConfig)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))

	for _, mode := range registry.Modes() {
		bindings := registry.Bindings(mode)
		if len(bindings) == 0 {
			continue
		}

		actions := make([]string, 0, len(bindings))
		for action := range bindings {
			actions = append(actions, action)
		}
		sort.Strings(actions)

		var rows [][]string
		for _, action := range actions {
			desc := config.ActionDescriptions[action]
			if desc == "" {
				desc = action
			}
			rows = append(rows, []string{strings.Join(bindings[action], ", "), desc})
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
			Headers("Keys", "Action").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == -1 {
					return headerStyle
				}
				return cellStyle
			})

		fmt.Println(titleStyle.Render(strings.ReplaceAll(mode, "_", " ")))
		fmt.Println(t.Render())
		fmt.Println()
	}
	return nil
}

func listProjects() error {
	store, err := project.Load()
	if err != nil {
		return fmt.Errorf("error loading projects: %w", err)
	}

	var rows [][]string
	for _, p := range store.Projects() {
		kind := "user"
		if p.System {
			kind = "system"
		}
		rows = append(rows, []string{p.Name, fmt.Sprintf("%d", len(p.Windows)), kind})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("Project", "Windows", "Type").
		Rows(rows...)
	fmt.Println(t.Render())
	return nil
}
