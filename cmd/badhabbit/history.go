package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Inflinity/badhabbits/internal/historyui"
	"github.com/Inflinity/badhabbits/internal/logging"
	"github.com/Inflinity/badhabbits/internal/model"
	"github.com/Inflinity/badhabbits/internal/stats"
	"github.com/Inflinity/badhabbits/internal/store"
)

const defaultCurveWindow = 5

var (
	historySince       string
	historyKinds       []string
	historyLast        int
	historyCurveWindow int
	historyPlain       bool
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show what you did with your time",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&historyKinds, "kind", nil, "event kinds to include (repeatable)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N events")
	cmd.Flags().IntVar(&historyCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func historyFilter() (model.HistoryFilter, error) {
	var since *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return model.HistoryFilter{}, fmt.Errorf("invalid --since value: %w", err)
		}
		since = &parsed
	}
	kinds := make([]model.EventKind, 0, len(historyKinds))
	for _, raw := range historyKinds {
		parsed, err := historyui.ParseKinds(raw)
		if err != nil {
			return model.HistoryFilter{}, fmt.Errorf("invalid --kind value: %w", err)
		}
		kinds = append(kinds, parsed...)
	}
	if historyLast < 0 {
		return model.HistoryFilter{}, fmt.Errorf("--last must be >= 0")
	}
	if historyCurveWindow < 1 {
		return model.HistoryFilter{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.HistoryFilter{
		Since:       since,
		Kinds:       kinds,
		Last:        historyLast,
		CurveWindow: historyCurveWindow,
	}, nil
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	filter, err := historyFilter()
	if err != nil {
		return err
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)
	log := logging.Console(cmd.ErrOrStderr(), level)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	out := cmd.OutOrStdout()
	interactive := !historyPlain
	if f, ok := out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		interactive = false
	}
	if !interactive {
		report, err := stats.BuildReport(context.Background(), st, filter)
		if err != nil {
			return err
		}
		return report.Render(out, time.Now(), 0)
	}

	program := tea.NewProgram(historyui.NewModel(st, filter, time.Now), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}
