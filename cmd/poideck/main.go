// Package main provides the CLI entrypoint for poideck.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/poideck/internal/config"
	"github.com/verte-zerg/poideck/internal/export"
	"github.com/verte-zerg/poideck/internal/stats"
	"github.com/verte-zerg/poideck/internal/statsui"
	"github.com/verte-zerg/poideck/internal/store"
)

const statsDays = 14

var (
	rootDB    string
	rootRules string
	rootPanel string
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "poideck [export.osm]",
		Short: "Field survey POI tagger",
		Long: "Without arguments poideck runs the live survey loop.\n" +
			"With one argument it exports every recorded POI as OSM XML to that path.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runRootCmd,
	}

	rootCmd.PersistentFlags().StringVar(&rootDB, "db", "", "database path (default from config)")
	rootCmd.Flags().StringVar(&rootRules, "rules", "", "export rule file (default from config)")
	rootCmd.Flags().StringVar(&rootPanel, "panel", "", "panel backend: streamdeck or terminal")

	rootCmd.AddCommand(newCleanCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runRootCmd(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	switch rootPanel {
	case "":
	case config.PanelStreamDeck, config.PanelTerminal:
		settings.PanelType = rootPanel
	default:
		return fmt.Errorf("--panel must be %s or %s", config.PanelStreamDeck, config.PanelTerminal)
	}
	if len(args) == 1 {
		return runExport(cmd, settings, args[0])
	}
	return runLive(settings)
}

func loadSettings() (config.Settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	settings, err := config.Resolve(fileCfg)
	if err != nil {
		return config.Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	if rootDB != "" {
		settings.DBPath = rootDB
	}
	if rootRules != "" {
		settings.RulesPath = rootRules
	}
	return settings, nil
}

func openStore(path string) (*store.Store, func(), error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	return st, closeFn, nil
}

func runExport(cmd *cobra.Command, settings config.Settings, path string) error {
	rules, err := export.LoadRules(settings.RulesPath)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(settings.DBPath)
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := export.WriteFile(context.Background(), st, rules, path)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Exported %d POIs to %s\n", n, path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean <file.osm>",
		Short: "Drop unreviewed exported nodes from an OSM file",
		Long: "Writes <file.osm>.clean.osm without the nodes that still carry the\n" +
			"fixme tag added at export time.",
		Args: cobra.ExactArgs(1),
		RunE: runCleanCmd,
	}
}

func runCleanCmd(cmd *cobra.Command, args []string) error {
	out, removed, err := export.CleanFile(args[0])
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed %d unreviewed nodes, wrote %s\n", removed, out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print recorded POI totals",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(settings.DBPath)
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := stats.BuildReport(context.Background(), st, statsDays)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	report = report.WithConfigured(settings.Categories)

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report); err != nil {
		return err
	}
	if err := stats.RenderDailyBars(out, report.Daily); err != nil {
		return err
	}
	return stats.RenderCategoryTable(out, report.Categories)
}

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse recorded POIs interactively",
		Args:  cobra.NoArgs,
		RunE:  runBrowseCmd,
	}
}

func runBrowseCmd(_ *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(settings.DBPath)
	if err != nil {
		return err
	}
	defer closeStore()

	model := statsui.NewModel(st, settings.Categories)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# poideck configuration
# Uncomment a value to enable it. CLI flags override config values.

[store]
# path = %q

[source]
# type = "gpsd"               # gpsd or nmea
# gpsd-addr = "127.0.0.1:2947"
# nmea-port = "/dev/ttyUSB0"
# nmea-baud = 9600

[panel]
# type = "streamdeck"         # streamdeck or terminal
# vendor-id = 0x0fd9
# product-id = 0x006d
# brightness = 80
# icon-dir = %q
# poll-ms = 10
# log-file = %q
# categories = ["bench", "stop", "taxi"]

[status]
# interface = "en0"           # IPv4 shown while there is no fix

[export]
# rules = %q
`,
		config.DefaultDBPath(),
		config.DefaultIconDir(),
		config.DefaultLogPath(),
		config.DefaultRulesPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
