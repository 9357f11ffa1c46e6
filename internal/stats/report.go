package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Inflinity/badhabbits/internal/model"
)

const defaultRecent = 10

// EventLister reads the history log.
type EventLister interface {
	ListEvents(ctx context.Context, filter model.HistoryFilter) ([]model.Event, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Events   []model.Event
	Summary  Summary
	Window   int
	Confess  []RefCount
	Rewards  []RefCount
	Upgrades []RefCount
}

// BuildReport loads events matching filter and summarizes them.
func BuildReport(ctx context.Context, st EventLister, filter model.HistoryFilter) (Report, error) {
	events, err := st.ListEvents(ctx, filter)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list events: %w", err)
	}
	window := filter.CurveWindow
	if window <= 0 {
		window = 5
	}
	return Report{
		Events:   events,
		Summary:  Summarize(events),
		Window:   window,
		Confess:  TopRefs(events, model.EventConfessed, 3),
		Rewards:  TopRefs(events, model.EventRewardRedeemed, 3),
		Upgrades: TopRefs(events, model.EventPetUpgraded, 3),
	}, nil
}

// Recent returns the last n events.
func (r Report) Recent(n int) []model.Event {
	if n <= 0 || len(r.Events) <= n {
		return r.Events
	}
	return r.Events[len(r.Events)-n:]
}

// Render writes the plain-text report.
func (r Report) Render(w io.Writer, now time.Time, width int) error {
	if err := RenderSummary(w, r.Summary, now); err != nil {
		return err
	}
	if len(r.Events) == 0 {
		return nil
	}
	if err := RenderCurve(w, r.Summary.Points, r.Window, width); err != nil {
		return err
	}
	if err := renderTop(w, "Top confessions", r.Confess); err != nil {
		return err
	}
	if err := renderTop(w, "Top rewards", r.Rewards); err != nil {
		return err
	}
	return RenderEvents(w, r.Recent(defaultRecent), now)
}

func renderTop(w io.Writer, title string, refs []RefCount) error {
	if len(refs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	rows := make([][]string, 0, len(refs))
	for _, rc := range refs {
		rows = append(rows, []string{rc.Ref, fmt.Sprintf("%d", rc.Count)})
	}
	for _, line := range formatTable(nil, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
