// Package main provides the CLI entrypoint for badhabbit.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Inflinity/badhabbits/internal/catalog"
	"github.com/Inflinity/badhabbits/internal/config"
	"github.com/Inflinity/badhabbits/internal/generator"
	"github.com/Inflinity/badhabbits/internal/logging"
	"github.com/Inflinity/badhabbits/internal/model"
	"github.com/Inflinity/badhabbits/internal/session"
	"github.com/Inflinity/badhabbits/internal/store"
	"github.com/Inflinity/badhabbits/internal/tui"
)

const (
	defaultPollMs   = 1000
	defaultLogLevel = "info"
)

var (
	flagDB         string
	flagConfig     string
	flagCatalog    string
	flagStandalone bool
	flagPollMs     int
	flagSeed       int64
	flagLogLevel   string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "badhabbit",
		Short:         "Turn wasted minutes into tiny challenges",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runTUICmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagDB, "db", config.DefaultDBPath(), "path to the SQLite database")
	flags.StringVar(&flagConfig, "config", config.DefaultConfigPath(), "path to the TOML config file")
	flags.StringVar(&flagCatalog, "catalog", "", "YAML catalog overlay")
	flags.BoolVar(&flagStandalone, "standalone", false, "skip the install screen")
	flags.IntVar(&flagPollMs, "poll-ms", defaultPollMs, "countdown polling interval in milliseconds")
	flags.Int64Var(&flagSeed, "seed", 0, "seed for task selection (0 = random)")
	flags.StringVar(&flagLogLevel, "log-level", defaultLogLevel, "log level (debug|info|warn|error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	for _, cmd := range newActionCmds() {
		rootCmd.AddCommand(cmd)
	}
	return rootCmd
}

// loadSettings layers defaults, the config file, the environment and flags.
// An explicitly set flag always wins.
func loadSettings(cmd *cobra.Command) (model.Config, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	applyStringConfig(cmd, "config", &flagConfig, optString(env.ConfigPath))

	fileCfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &flagDB, fileCfg.App.DBPath)
	applyStringConfig(cmd, "catalog", &flagCatalog, fileCfg.App.Catalog)
	applyBoolConfig(cmd, "standalone", &flagStandalone, fileCfg.App.Standalone)
	applyIntConfig(cmd, "poll-ms", &flagPollMs, fileCfg.Timer.PollMs)
	applyStringConfig(cmd, "log-level", &flagLogLevel, fileCfg.Log.Level)

	applyStringConfig(cmd, "db", &flagDB, optString(env.DBPath))
	applyStringConfig(cmd, "catalog", &flagCatalog, optString(env.Catalog))
	applyBoolConfig(cmd, "standalone", &flagStandalone, env.Standalone)
	applyIntConfig(cmd, "poll-ms", &flagPollMs, env.PollMs)
	applyInt64Config(cmd, "seed", &flagSeed, env.Seed)
	applyStringConfig(cmd, "log-level", &flagLogLevel, optString(env.LogLevel))

	cfg := model.Config{
		DBPath:       flagDB,
		CatalogPath:  flagCatalog,
		Standalone:   flagStandalone,
		PollInterval: time.Duration(flagPollMs) * time.Millisecond,
		Seed:         flagSeed,
		LogLevel:     flagLogLevel,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if strings.TrimSpace(cfg.DBPath) == "" {
		return fmt.Errorf("--db must not be empty")
	}
	if cfg.PollInterval < 50*time.Millisecond {
		return fmt.Errorf("--poll-ms must be >= 50")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	return nil
}

// app bundles what every command needs once settings are resolved.
type app struct {
	cfg     model.Config
	catalog catalog.Catalog
	store   *store.Store
	ctrl    *session.Controller
	log     zerolog.Logger
}

func openApp(cfg model.Config, log zerolog.Logger) (*app, error) {
	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	gen := generator.New()
	if cfg.Seed != 0 {
		gen = generator.NewSeeded(cfg.Seed)
	}
	reducer := session.Reducer{Catalog: cat, Rand: gen, Standalone: cfg.Standalone}
	ctrl := session.NewController(reducer, st, session.SystemClock{}, log)
	ctrl.Boot(context.Background())
	return &app{cfg: cfg, catalog: cat, store: st, ctrl: ctrl, log: log}, nil
}

func (a *app) Close() {
	if cerr := a.store.Close(); cerr != nil {
		a.log.Error().Err(cerr).Msg("failed to close db")
	}
}

func runTUICmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)
	log, logFile, err := logging.File(config.DefaultLogPath(), level)
	if err != nil {
		logErrf("logging disabled: %v\n", err)
	} else {
		defer func() {
			if cerr := logFile.Close(); cerr != nil {
				// Best-effort close of the log file.
				_ = cerr
			}
		}()
	}

	a, err := openApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	m := tui.NewModel(a.ctrl, a.catalog, cfg.PollInterval, log)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
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

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	applyStringConfig(cmd, "config", &flagConfig, optString(env.ConfigPath))
	path := flagConfig
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
	ed := exec.Command(parts[0], append(parts[1:], path)...)
	ed.Stdin = os.Stdin
	ed.Stdout = os.Stdout
	ed.Stderr = os.Stderr
	if err := ed.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# badhabbit configuration
# Uncomment a value to enable it. Environment variables (BADHABBIT_*) override
# this file and CLI flags override both.

[app]
# db = %q
# standalone = false       # Skip the install screen
# catalog = ""             # Path to a YAML catalog overlay

[timer]
# poll-ms = %d            # Countdown polling interval

[log]
# level = %q            # debug, info, warn or error
`,
		config.DefaultDBPath(),
		defaultPollMs,
		defaultLogLevel,
	)
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
