// Package stats summarizes the history log and renders text reports.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Inflinity/badhabbits/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a slice of events.
type Summary struct {
	Counts       map[model.EventKind]int
	PointsEarned int
	PointsSpent  int
	PointsLost   int
	// Points is the balance after each event, oldest first.
	Points       []float64
	LastActivity time.Time
}

// Started reports how many tasks were handed out.
func (s Summary) Started() int { return s.Counts[model.EventTaskStarted] }

// CompletionRate is completed / (completed + expired); 0 when nothing finished.
func (s Summary) CompletionRate() float64 {
	done := s.Counts[model.EventTaskCompleted]
	finished := done + s.Counts[model.EventTaskExpired]
	if finished == 0 {
		return 0
	}
	return float64(done) / float64(finished)
}

// Summarize folds events (oldest first) into a Summary.
func Summarize(events []model.Event) Summary {
	sum := Summary{Counts: make(map[model.EventKind]int)}
	for _, ev := range events {
		sum.Counts[ev.Kind]++
		switch ev.Kind {
		case model.EventTaskCompleted:
			sum.PointsEarned += ev.Delta
		case model.EventRewardRedeemed, model.EventPetUpgraded, model.EventPointsSent:
			sum.PointsSpent -= ev.Delta
		case model.EventTaskExpired, model.EventConfessed:
			sum.PointsLost -= ev.Delta
		}
		sum.Points = append(sum.Points, float64(ev.PointsAfter))
		if ev.At.After(sum.LastActivity) {
			sum.LastActivity = ev.At
		}
	}
	return sum
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// LastActivityLabel formats t relative to now, or "never".
func LastActivityLabel(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// RenderSummary prints the totals block.
func RenderSummary(w io.Writer, sum Summary, now time.Time) error {
	if len(sum.Points) == 0 {
		_, err := fmt.Fprintln(w, "No history yet.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Tasks started: %d", sum.Started()),
		fmt.Sprintf("Completed: %d", sum.Counts[model.EventTaskCompleted]),
		fmt.Sprintf("Expired: %d", sum.Counts[model.EventTaskExpired]),
		fmt.Sprintf("Completion rate: %.0f%%", sum.CompletionRate()*100),
		fmt.Sprintf("Points earned: %d  spent: %d  lost: %d", sum.PointsEarned, sum.PointsSpent, sum.PointsLost),
		fmt.Sprintf("Last activity: %s", LastActivityLabel(sum.LastActivity, now)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurve prints the points balance and its moving average as sparklines
// fitted to width columns (0 means the terminal width).
func RenderCurve(w io.Writer, points []float64, window, width int) error {
	if len(points) == 0 {
		return nil
	}
	if width <= 0 {
		width = ChartWidthFor(terminalWidth())
	}
	raw := Resample(points, width)
	avg := Resample(MovingAverage(points, window), width)
	lines := []string{
		"Points",
		fmt.Sprintf("balance %s", Sparkline(raw)),
		fmt.Sprintf("avg(%d)  %s", window, Sparkline(avg)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderEvents prints the most recent events as a table, newest last.
func RenderEvents(w io.Writer, events []model.Event, now time.Time) error {
	if len(events) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Recent"); err != nil {
		return err
	}
	headers := []string{"When", "Event", "Ref", "Delta", "Points"}
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, EventRow(ev, now))
	}
	rightAlign := map[int]bool{3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// EventRow renders one event as table cells.
func EventRow(ev model.Event, now time.Time) []string {
	return []string{
		humanize.RelTime(ev.At, now, "ago", "from now"),
		KindLabel(ev.Kind),
		ev.Ref,
		fmt.Sprintf("%+d", ev.Delta),
		fmt.Sprintf("%d", ev.PointsAfter),
	}
}

// KindLabel is the display name of an event kind.
func KindLabel(kind model.EventKind) string {
	switch kind {
	case model.EventTaskStarted:
		return "started"
	case model.EventTaskCompleted:
		return "completed"
	case model.EventTaskExpired:
		return "expired"
	case model.EventRewardRedeemed:
		return "reward"
	case model.EventPetUpgraded:
		return "fed pet"
	case model.EventConfessed:
		return "confessed"
	case model.EventPointsSent:
		return "sent"
	case model.EventReset:
		return "reset"
	default:
		return string(kind)
	}
}
