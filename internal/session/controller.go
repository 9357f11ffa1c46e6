package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Inflinity/badhabbits/internal/model"
	"github.com/Inflinity/badhabbits/internal/record"
)

// Persister is the storage the controller writes through to.
type Persister interface {
	LoadState(ctx context.Context, dec record.Decoder) (model.State, bool, error)
	SaveState(ctx context.Context, state model.State) error
	ClearState(ctx context.Context) error
	InstallSeen(ctx context.Context) (bool, error)
	SetInstallSeen(ctx context.Context) error
	AppendEvents(ctx context.Context, events []model.Event) error
}

// Controller owns the live snapshot and persists after every reduction.
// Persistence failures are logged and never surfaced.
type Controller struct {
	reducer Reducer
	store   Persister
	clock   Clock
	log     zerolog.Logger

	snap  Snapshot
	guard ExpiryGuard
}

// NewController wires a reducer to its storage.
func NewController(r Reducer, st Persister, clock Clock, log zerolog.Logger) *Controller {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Controller{
		reducer: r,
		store:   st,
		clock:   clock,
		log:     log,
	}
}

// Decoder returns the record decoder matching the reducer's catalog.
func (c *Controller) Decoder() record.Decoder {
	return record.Decoder{
		NewID:     c.reducer.Rand.UserID,
		ItemLevel: c.reducer.Catalog.ItemLevel,
	}
}

// Boot loads the saved record (or creates one) and picks the first screen.
func (c *Controller) Boot(ctx context.Context) Snapshot {
	state, ok, err := c.store.LoadState(ctx, c.Decoder())
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to load state; starting fresh")
		ok = false
	}
	if !ok {
		state = NewState(c.reducer.Rand)
	}
	c.save(ctx, state)

	seen, err := c.store.InstallSeen(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to read install flag")
		seen = false
	}
	c.snap = Snapshot{State: state, Screen: InitialScreen(state, seen, c.reducer.Standalone)}
	c.guard.Reset()
	c.log.Debug().
		Str("user", state.UserID).
		Str("screen", string(c.snap.Screen)).
		Bool("restored", ok).
		Msg("session booted")
	return c.Snapshot()
}

// Snapshot returns a copy of the current position.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{State: c.snap.State.Clone(), Screen: c.snap.Screen}
}

// Now reads the controller's clock.
func (c *Controller) Now() time.Time {
	return c.clock.Now()
}

// Dispatch reduces a against the current snapshot and persists the result.
// It reports whether the action had any effect.
func (c *Controller) Dispatch(ctx context.Context, a Action) (Snapshot, bool) {
	next, fx := c.reducer.Reduce(c.snap, a, c.clock.Now())
	if !fx.Applied {
		c.log.Debug().Str("action", string(a.Kind)).Str("screen", string(c.snap.Screen)).Msg("action ignored")
		return c.Snapshot(), false
	}
	c.snap = next

	if fx.ClearStorage {
		if err := c.store.ClearState(ctx); err != nil {
			c.log.Error().Err(err).Msg("failed to clear state")
		}
		c.guard.Reset()
	}
	c.save(ctx, next.State)
	if fx.MarkInstallSeen {
		if err := c.store.SetInstallSeen(ctx); err != nil {
			c.log.Error().Err(err).Msg("failed to record install flag")
		}
	}
	if len(fx.Events) > 0 {
		if err := c.store.AppendEvents(ctx, fx.Events); err != nil {
			c.log.Error().Err(err).Msg("failed to append history")
		}
	}
	c.log.Debug().
		Str("action", string(a.Kind)).
		Str("screen", string(next.Screen)).
		Int("points", next.State.Points).
		Msg("action applied")
	return c.Snapshot(), true
}

// Poll derives the countdown of the current task. When the timer first
// reaches zero the expiry transition is dispatched; later polls for the same
// task never fire it again.
func (c *Controller) Poll(ctx context.Context) (Countdown, bool) {
	cd, ok := CountdownFor(c.snap.State.CurrentTask, c.clock.Now())
	if !ok {
		return Countdown{}, false
	}
	if !c.guard.Check(cd.StartedAt, cd.Remaining) {
		return cd, false
	}
	_, fired := c.Dispatch(ctx, ExpireTask(cd.StartedAt))
	return cd, fired
}

func (c *Controller) save(ctx context.Context, state model.State) {
	if err := c.store.SaveState(ctx, state); err != nil {
		c.log.Error().Err(err).Msg("failed to save state")
	}
}
