package historyui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Inflinity/badhabbits/internal/model"
)

type fakeLister struct {
	events []model.Event
	err    error
	last   model.HistoryFilter
}

func (f *fakeLister) ListEvents(_ context.Context, filter model.HistoryFilter) ([]model.Event, error) {
	f.last = filter
	return f.events, f.err
}

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func sized(m *Model) *Model {
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestOverviewShowsTotals(t *testing.T) {
	lister := &fakeLister{events: []model.Event{
		{At: t0, Kind: model.EventTaskStarted, Ref: "bed-1"},
		{At: t0.Add(time.Minute), Kind: model.EventTaskCompleted, Delta: 1, PointsAfter: 1, Ref: "bed-1"},
	}}
	m := sized(NewModel(lister, model.HistoryFilter{}, func() time.Time { return t0.Add(time.Hour) }))
	view := m.View()
	for _, want := range []string{"Overview", "Completed", "100%", "59 minutes ago", "balance"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	if lister.last.CurveWindow != 5 {
		t.Fatalf("expected default window 5, got %d", lister.last.CurveWindow)
	}
}

func TestListErrorIsShown(t *testing.T) {
	lister := &fakeLister{err: errors.New("db locked")}
	m := sized(NewModel(lister, model.HistoryFilter{}, nil))
	if !strings.Contains(m.View(), "db locked") {
		t.Fatalf("expected error in footer:\n%s", m.View())
	}
}

func TestWindowKeysRefresh(t *testing.T) {
	lister := &fakeLister{}
	m := sized(NewModel(lister, model.HistoryFilter{CurveWindow: 3}, nil))
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'='}})
	if lister.last.CurveWindow != 5 {
		t.Fatalf("expected window 5, got %d", lister.last.CurveWindow)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'='}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	if lister.last.CurveWindow != 5 {
		t.Fatalf("expected window 5 after -, got %d", lister.last.CurveWindow)
	}
}

func TestParseFilter(t *testing.T) {
	f, err := parseFilter([fieldCount]string{"2026-02-01", "confessed, task_expired", "10", ""})
	if err != nil {
		t.Fatalf("parseFilter: %v", err)
	}
	if f.Since == nil || f.Since.Format("2006-01-02") != "2026-02-01" {
		t.Fatalf("since not parsed: %v", f.Since)
	}
	if len(f.Kinds) != 2 || f.Kinds[1] != model.EventTaskExpired {
		t.Fatalf("kinds not parsed: %v", f.Kinds)
	}
	if f.Last != 10 || f.CurveWindow != 5 {
		t.Fatalf("unexpected filter %+v", f)
	}

	bad := [][fieldCount]string{
		{"yesterday", "", "", ""},
		{"", "snacking", "", ""},
		{"", "", "-1", ""},
		{"", "", "", "0"},
	}
	for _, in := range bad {
		if _, err := parseFilter(in); err == nil {
			t.Fatalf("expected error for %v", in)
		}
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct{ in, next, prev int }{
		{1, 3, 1},
		{5, 10, 3},
		{7, 10, 5},
		{50, 50, 20},
	}
	for _, c := range cases {
		if got := nextCurveWindow(c.in); got != c.next {
			t.Fatalf("next(%d) = %d, want %d", c.in, got, c.next)
		}
		if got := prevCurveWindow(c.in); got != c.prev {
			t.Fatalf("prev(%d) = %d, want %d", c.in, got, c.prev)
		}
	}
}

func TestFilterFormRoundTrip(t *testing.T) {
	lister := &fakeLister{}
	since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local)
	filter := model.HistoryFilter{Since: &since, Kinds: []model.EventKind{model.EventConfessed}, Last: 4, CurveWindow: 10}
	m := sized(NewModel(lister, filter, nil))

	if !strings.Contains(m.View(), "since=2026-02-01  kinds=confessed  last=4  window=10") {
		t.Fatalf("expected filter summary:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if got := m.inputValues(); got != filterValues(filter) {
		t.Fatalf("form not loaded from filter: %q", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.filterIndex != fieldWindow {
		t.Fatalf("shift+tab should wrap to the last field, got %d", m.filterIndex)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode || lister.last.CurveWindow != 10 || lister.last.Last != 4 {
		t.Fatalf("expected filter applied, got %+v", lister.last)
	}
}
