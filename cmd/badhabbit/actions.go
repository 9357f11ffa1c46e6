package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Inflinity/badhabbits/internal/logging"
	"github.com/Inflinity/badhabbits/internal/model"
	"github.com/Inflinity/badhabbits/internal/session"
)

var resetYes bool

func newActionCmds() []*cobra.Command {
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all progress and start over",
		Args:  cobra.NoArgs,
		RunE:  headless(runReset),
	}
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset")

	return []*cobra.Command{
		{Use: "status", Short: "Show points, pet and the running task", Args: cobra.NoArgs, RunE: headless(runStatus)},
		{Use: "moods", Short: "List moods and their tasks", Args: cobra.NoArgs, RunE: headless(runMoods)},
		{Use: "start <mood>", Short: "Draw a task for a mood and start its timer", Args: cobra.ExactArgs(1), RunE: headless(runStart)},
		{Use: "resume", Short: "Show the running task", Args: cobra.NoArgs, RunE: headless(runResume)},
		{Use: "done", Short: "Complete the running task", Args: cobra.NoArgs, RunE: headless(runDone)},
		{Use: "tick", Short: "Check the countdown once and expire the task if due", Args: cobra.NoArgs, RunE: headless(runTick)},
		{Use: "redeem <category>", Short: "Spend points on a reward", Args: cobra.ExactArgs(1), RunE: headless(runRedeem)},
		{Use: "feed [item]", Short: "Buy an upgrade for the Schweinehund (default: next)", Args: cobra.MaximumNArgs(1), RunE: headless(runFeed)},
		{Use: "confess <category>", Short: "Confess giving in to a vice", Args: cobra.ExactArgs(1), RunE: headless(runConfess)},
		{Use: "send <recipient> <amount>", Short: "Send points to a 6-digit user id", Args: cobra.ExactArgs(2), RunE: headless(runSend)},
		resetCmd,
	}
}

type headlessFunc func(a *app, out io.Writer, args []string) error

// headless resolves settings, opens the store and boots a controller that
// logs to stderr, then hands off to fn.
func headless(fn headlessFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		level, _ := logging.ParseLevel(cfg.LogLevel)
		a, err := openApp(cfg, logging.Console(cmd.ErrOrStderr(), level))
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(a, cmd.OutOrStdout(), args)
	}
}

func printf(out io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(out, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func unchanged(out io.Writer, reason string) error {
	return printf(out, "nothing changed: %s\n", reason)
}

func (a *app) dispatch(action session.Action) (session.Snapshot, bool) {
	return a.ctrl.Dispatch(context.Background(), action)
}

func runStatus(a *app, out io.Writer, _ []string) error {
	s := a.ctrl.Snapshot().State
	items := "none"
	if len(s.Pet.Items) > 0 {
		items = strings.Join(s.Pet.Items, ", ")
	}
	task := "none"
	if cd, ok := session.CountdownFor(s.CurrentTask, a.ctrl.Now()); ok {
		task = fmt.Sprintf("%s (%s left)", cd.Task.Title, session.FormatClock(cd.Remaining))
	}
	rewards := "none"
	if len(s.RewardBalances) > 0 {
		ids := make([]string, 0, len(s.RewardBalances))
		for id := range s.RewardBalances {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = fmt.Sprintf("%s x%d", id, s.RewardBalances[id])
		}
		rewards = strings.Join(parts, ", ")
	}
	return printf(out, "ID:        %s\nPoints:    %d\nLevel:     %d (%s)\nCompleted: %d\nTask:      %s\nRewards:   %s\n",
		s.UserID, s.Points, s.Pet.Level, items, s.CompletedTasks, task, rewards)
}

func runMoods(a *app, out io.Writer, _ []string) error {
	for _, mood := range a.catalog.Moods {
		if err := printf(out, "%s\t%s\n", mood.ID, mood.Name); err != nil {
			return err
		}
		for _, task := range a.catalog.TasksFor(mood.ID) {
			if err := printf(out, "  %-4s %3d min  %s\n", task.ID, task.Duration, task.Title); err != nil {
				return err
			}
		}
	}
	return nil
}

// finishOnboarding walks past the install and welcome screens so headless
// commands can act on a fresh record.
func (a *app) finishOnboarding() {
	if a.ctrl.Snapshot().Screen == model.ScreenInstall {
		a.dispatch(session.InstallContinue())
	}
	if a.ctrl.Snapshot().Screen == model.ScreenWelcome {
		a.dispatch(session.OnboardingComplete())
	}
}

func runStart(a *app, out io.Writer, args []string) error {
	if _, ok := a.catalog.Mood(args[0]); !ok {
		return unchanged(out, fmt.Sprintf("unknown mood %q (see: badhabbit moods)", args[0]))
	}
	a.finishOnboarding()
	snap, ok := a.dispatch(session.SelectMood(args[0]))
	if !ok {
		return unchanged(out, fmt.Sprintf("unknown mood %q (see: badhabbit moods)", args[0]))
	}
	return printCountdown(a, out, snap, "Started")
}

func runResume(a *app, out io.Writer, _ []string) error {
	snap, ok := a.dispatch(session.Resume())
	if !ok {
		return unchanged(out, "no task running")
	}
	return printCountdown(a, out, snap, "Running")
}

func printCountdown(a *app, out io.Writer, snap session.Snapshot, label string) error {
	cd, ok := session.CountdownFor(snap.State.CurrentTask, a.ctrl.Now())
	if !ok {
		return unchanged(out, "no task running")
	}
	return printf(out, "%s: %s (%s left)\n", label, cd.Task.Title, session.FormatClock(cd.Remaining))
}

func runDone(a *app, out io.Writer, _ []string) error {
	snap, ok := a.dispatch(session.CompleteTask())
	if !ok {
		return unchanged(out, "no task running")
	}
	return printf(out, "Done! +1 point (points: %d)\n", snap.State.Points)
}

func runTick(a *app, out io.Writer, _ []string) error {
	cd, fired := a.ctrl.Poll(context.Background())
	if fired {
		return printf(out, "Time's up: %s (points: %d)\n", cd.Task.Title, a.ctrl.Snapshot().State.Points)
	}
	if cd.Task.ID == "" {
		return unchanged(out, "no task running")
	}
	return printf(out, "%s left: %s\n", session.FormatClock(cd.Remaining), cd.Task.Title)
}

func runRedeem(a *app, out io.Writer, args []string) error {
	reward, ok := a.catalog.Reward(args[0])
	if !ok {
		return unchanged(out, fmt.Sprintf("unknown reward %q", args[0]))
	}
	snap, ok := a.dispatch(session.RedeemSelf(reward.ID))
	if !ok {
		return unchanged(out, fmt.Sprintf("%s costs %d, you have %d", reward.Name, reward.Cost, snap.State.Points))
	}
	return printf(out, "Enjoy: %s %s (points: %d)\n", reward.Icon, reward.Name, snap.State.Points)
}

func runFeed(a *app, out io.Writer, args []string) error {
	state := a.ctrl.Snapshot().State
	var item model.UpgradeItem
	if len(args) == 0 {
		next, ok := a.catalog.NextItem(state.Pet)
		if !ok {
			return unchanged(out, "your Schweinehund has everything")
		}
		item = next
	} else {
		found, ok := a.catalog.Item(args[0])
		if !ok {
			return unchanged(out, fmt.Sprintf("unknown item %q", args[0]))
		}
		item = found
	}
	snap, ok := a.dispatch(session.RedeemPet(item.ID))
	switch {
	case ok:
		return printf(out, "Your Schweinehund got %s and is now level %d (points: %d)\n", item.Name, snap.State.Pet.Level, snap.State.Points)
	case state.Pet.Owns(item.ID):
		return unchanged(out, fmt.Sprintf("already owns %s", item.Name))
	default:
		return unchanged(out, fmt.Sprintf("%s costs %d, you have %d", item.Name, item.Cost, state.Points))
	}
}

func runConfess(a *app, out io.Writer, args []string) error {
	vice, ok := a.catalog.Reward(args[0])
	if !ok {
		return unchanged(out, fmt.Sprintf("unknown category %q", args[0]))
	}
	a.finishOnboarding()
	snap, _ := a.dispatch(session.Confess(vice.ID))
	return printf(out, "Confessed %s %s (points: %d)\n", vice.Icon, vice.Name, snap.State.Points)
}

func runSend(a *app, out io.Writer, args []string) error {
	amount, err := strconv.Atoi(args[1])
	if err != nil {
		return unchanged(out, "amount must be a number")
	}
	recipient := args[0]
	snap, ok := a.dispatch(session.SendPoints(recipient, amount))
	switch {
	case ok:
		return printf(out, "Sent %d to %s (points: %d)\n", amount, recipient, snap.State.Points)
	case !session.ValidRecipient(recipient):
		return unchanged(out, "recipient must be exactly 6 digits")
	case amount < 1:
		return unchanged(out, "amount must be at least 1")
	default:
		return unchanged(out, fmt.Sprintf("you have %d points", snap.State.Points))
	}
}

func runReset(a *app, out io.Writer, _ []string) error {
	if !resetYes {
		return fmt.Errorf("refusing to reset without --yes")
	}
	snap, _ := a.dispatch(session.Reset())
	return printf(out, "Progress reset. New ID: %s\n", snap.State.UserID)
}
