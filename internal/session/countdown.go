package session

import (
	"fmt"
	"time"

	"github.com/Inflinity/badhabbits/internal/model"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Remaining is max(0, startedAt + duration - now).
func Remaining(startedAt time.Time, duration time.Duration, now time.Time) time.Duration {
	left := startedAt.Add(duration).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Progress is the elapsed fraction of duration, clamped to [0, 1].
func Progress(startedAt time.Time, duration time.Duration, now time.Time) float64 {
	if duration <= 0 {
		return 1
	}
	elapsed := duration - Remaining(startedAt, duration, now)
	if elapsed < 0 {
		return 0
	}
	return float64(elapsed) / float64(duration)
}

// FormatClock renders d as m:ss, truncating partial seconds.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Countdown is the derived timer view of an active task.
type Countdown struct {
	Task      model.Task
	StartedAt time.Time
	Remaining time.Duration
	Progress  float64
}

// Expired reports whether the timer reached zero.
func (c Countdown) Expired() bool {
	return c.Remaining == 0
}

// CountdownFor derives the countdown of an active task at now.
func CountdownFor(at *model.ActiveTask, now time.Time) (Countdown, bool) {
	if at == nil {
		return Countdown{}, false
	}
	d := at.Task.DurationTime()
	return Countdown{
		Task:      at.Task,
		StartedAt: at.StartedAt,
		Remaining: Remaining(at.StartedAt, d, now),
		Progress:  Progress(at.StartedAt, d, now),
	}, true
}

// ExpiryGuard lets the expiry transition fire once per task start.
type ExpiryGuard struct {
	fired   bool
	firedAt time.Time
}

// Check returns true the first time a task started at startedAt is seen with
// no time remaining.
func (g *ExpiryGuard) Check(startedAt time.Time, remaining time.Duration) bool {
	if remaining > 0 {
		return false
	}
	if g.fired && g.firedAt.Equal(startedAt) {
		return false
	}
	g.fired = true
	g.firedAt = startedAt
	return true
}

// Reset forgets previous firings.
func (g *ExpiryGuard) Reset() {
	g.fired = false
	g.firedAt = time.Time{}
}
