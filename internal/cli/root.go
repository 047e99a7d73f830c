package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gridsens/gridsens/internal/config"
	"github.com/gridsens/gridsens/internal/displayers"
	"github.com/gridsens/gridsens/internal/errors"
	"github.com/gridsens/gridsens/internal/layout"
	"github.com/gridsens/gridsens/internal/logger"
	"github.com/gridsens/gridsens/internal/plugin"
	"github.com/gridsens/gridsens/internal/sources"
	"github.com/gridsens/gridsens/internal/tui"
	"github.com/gridsens/gridsens/internal/workspace"
)

// Global flags, shared by every subcommand.
var (
	configFlag  string
	profileFlag string
	verboseFlag bool
	noColorFlag bool
)

// rootCmd opens the dashboard when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "gridsens",
	Short: "Compose a dashboard of live system metrics in your terminal",
	Long: `gridsens is a terminal dashboard of freely arrangeable panels.

Each panel pairs a polled data source (CPU load, memory, clock, ...) with
a visual displayer (gauge, sparkline, text, ...). Drag panels around the
grid with the mouse, resize them by their borders, and the layout persists
automatically to a named profile.

Examples:
  gridsens                   # open the default profile
  gridsens --profile work    # open a named profile
  gridsens profiles          # list saved profiles
  gridsens check work        # validate a profile without opening it`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			os.Setenv(logger.DebugEnv, "1")
		}
		if noColorFlag {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "settings file (default ~/.config/gridsens/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "layout profile to open")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSettings resolves and validates the settings file for a command.
func loadSettings() (*config.Settings, error) {
	settings, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return nil, err
	}
	if settings.UI.Color == "never" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return settings, nil
}

// buildRegistry registers every built-in type. A failure here is a
// programming error (duplicate type key) and aborts startup.
func buildRegistry() (*plugin.Registry, error) {
	reg := plugin.NewRegistry()
	if err := sources.RegisterAll(reg); err != nil {
		return nil, err
	}
	if err := displayers.RegisterAll(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// dashboardCommand assembles a workspace and hands the terminal to the
// TUI until the user quits.
func dashboardCommand() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrSettings,
			"gridsens needs an interactive terminal",
			"Run it from a TTY; use 'gridsens check' in scripts")
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	reg, err := buildRegistry()
	if err != nil {
		return err
	}

	log := logger.Default()
	ws := workspace.New(settings, reg, log)
	defer ws.Close()

	profile := profileFlag
	if profile == "" {
		profile = settings.Profiles.Default
	}
	if err := ws.OpenProfile(profile); err != nil {
		if !errors.IsCode(err, errors.ErrCorruptLayout) {
			return err
		}
		// A corrupt profile is not fatal: start empty, tell the user
		// once, and leave the broken file alone until they save over it.
		fmt.Fprintf(os.Stderr, "warning: profile %q could not be parsed, starting with an empty layout\n", profile)
		log.Warn("profile %s corrupt: %v", profile, err)
		if err := ws.Restore(layout.NewDocument(settings.Grid.Columns, settings.Grid.Rows)); err != nil {
			return err
		}
		ws.BindProfile(profile)
	}

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	}
	if settings.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(tui.NewModel(ws, log), opts...)
	_, err = p.Run()
	return err
}
