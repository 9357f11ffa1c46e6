package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Inflinity/badhabbits/internal/model"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleEvents() []model.Event {
	at := func(m int) time.Time { return t0.Add(time.Duration(m) * time.Minute) }
	return []model.Event{
		{At: at(0), Kind: model.EventTaskStarted, PointsAfter: 0, Ref: "couch-1"},
		{At: at(5), Kind: model.EventTaskCompleted, Delta: 1, PointsAfter: 1, Ref: "couch-1"},
		{At: at(6), Kind: model.EventTaskStarted, PointsAfter: 1, Ref: "bed-2"},
		{At: at(9), Kind: model.EventTaskCompleted, Delta: 1, PointsAfter: 2, Ref: "bed-2"},
		{At: at(10), Kind: model.EventTaskStarted, PointsAfter: 2, Ref: "social-3"},
		{At: at(40), Kind: model.EventTaskExpired, Delta: -1, PointsAfter: 1, Ref: "social-3"},
		{At: at(41), Kind: model.EventPointsSent, Delta: -1, PointsAfter: 0, Ref: "123456"},
		{At: at(42), Kind: model.EventConfessed, Delta: 0, PointsAfter: 0, Ref: "pizza"},
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(sampleEvents())
	if sum.Started() != 3 {
		t.Fatalf("started = %d", sum.Started())
	}
	if got := sum.CompletionRate(); got < 0.666 || got > 0.667 {
		t.Fatalf("completion rate = %f", got)
	}
	if sum.PointsEarned != 2 || sum.PointsSpent != 1 || sum.PointsLost != 1 {
		t.Fatalf("unexpected totals: %+v", sum)
	}
	want := []float64{0, 1, 1, 2, 2, 1, 0, 0}
	if len(sum.Points) != len(want) {
		t.Fatalf("points len = %d", len(sum.Points))
	}
	for i := range want {
		if sum.Points[i] != want[i] {
			t.Fatalf("points[%d] = %v, want %v", i, sum.Points[i], want[i])
		}
	}
	if !sum.LastActivity.Equal(t0.Add(42 * time.Minute)) {
		t.Fatalf("last activity = %v", sum.LastActivity)
	}
}

func TestCompletionRateEmpty(t *testing.T) {
	if got := Summarize(nil).CompletionRate(); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4}, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("avg[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{2, 2, 2}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
}

func TestResample(t *testing.T) {
	got := Resample([]float64{1, 3, 5, 7}, 2)
	if len(got) != 2 || got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected resample %v", got)
	}
	if got := Resample([]float64{1, 2}, 10); len(got) != 2 {
		t.Fatalf("short series should not stretch: %v", got)
	}
}

func TestLastActivityLabel(t *testing.T) {
	if got := LastActivityLabel(time.Time{}, t0); got != "never" {
		t.Fatalf("got %q", got)
	}
	if got := LastActivityLabel(t0, t0.Add(3*time.Hour)); got != "3 hours ago" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, Summarize(nil), t0); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No history yet." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRenderCurveFitsWidth(t *testing.T) {
	points := make([]float64, 100)
	for i := range points {
		points[i] = float64(i % 7)
	}
	var buf bytes.Buffer
	if err := RenderCurve(&buf, points, 3, 20); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[1], "balance ") || len(lines[1]) != len("balance ")+20 {
		t.Fatalf("unexpected balance line %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "avg(3)  ") {
		t.Fatalf("unexpected avg line %q", lines[2])
	}
}
