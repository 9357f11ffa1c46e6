package session

import (
	"time"

	"github.com/Inflinity/badhabbits/internal/catalog"
	"github.com/Inflinity/badhabbits/internal/model"
)

// Randomness picks tasks and mints user ids.
type Randomness interface {
	PickTask(tasks []model.Task) (model.Task, bool)
	UserID() string
}

// Snapshot is the state machine position: the record plus the screen.
type Snapshot struct {
	State  model.State
	Screen model.Screen
}

// Effects describes what a reduction asks the controller to do.
type Effects struct {
	// Applied is false when the action was rejected and nothing changed.
	Applied         bool
	Events          []model.Event
	MarkInstallSeen bool
	ClearStorage    bool
}

// Reducer computes transitions. It never mutates its input snapshot.
type Reducer struct {
	Catalog    catalog.Catalog
	Rand       Randomness
	Standalone bool
}

// NewState returns a fresh record with a new user id and no progress.
func NewState(ids Randomness) model.State {
	return model.State{
		UserID:         ids.UserID(),
		RewardBalances: map[string]int{},
		Pet:            model.PetState{Level: 1, Items: []string{}},
	}
}

// InitialScreen chooses the first screen for a loaded record.
func InitialScreen(state model.State, installSeen, standalone bool) model.Screen {
	if !installSeen && !standalone {
		return model.ScreenInstall
	}
	return postInstallScreen(state)
}

func postInstallScreen(state model.State) model.Screen {
	switch {
	case !state.OnboardingComplete:
		return model.ScreenWelcome
	case state.CurrentTask != nil:
		return model.ScreenActive
	default:
		return model.ScreenMood
	}
}

var navigable = map[model.Screen]bool{
	model.ScreenMood:         true,
	model.ScreenRedeem:       true,
	model.ScreenSchweinehund: true,
	model.ScreenConfess:      true,
	model.ScreenSendPoints:   true,
	model.ScreenSettings:     true,
}

func onboarding(screen model.Screen) bool {
	return screen == model.ScreenInstall || screen == model.ScreenWelcome
}

// Reduce applies a to snap at time now. Rejected actions return snap
// unchanged with Applied false.
func (r Reducer) Reduce(snap Snapshot, a Action, now time.Time) (Snapshot, Effects) {
	next := Snapshot{State: snap.State.Clone(), Screen: snap.Screen}
	s := &next.State
	fx := Effects{Applied: true}

	switch a.Kind {
	case ActInstallContinue:
		if snap.Screen != model.ScreenInstall {
			return snap, Effects{}
		}
		fx.MarkInstallSeen = true
		next.Screen = postInstallScreen(*s)

	case ActOnboardingComplete:
		if snap.Screen == model.ScreenInstall {
			return snap, Effects{}
		}
		s.OnboardingComplete = true
		next.Screen = model.ScreenMood

	case ActSelectMood:
		if onboarding(snap.Screen) {
			return snap, Effects{}
		}
		task, ok := r.Rand.PickTask(r.Catalog.TasksFor(a.MoodID))
		if !ok {
			return snap, Effects{}
		}
		task.MoodIDs = append([]string(nil), task.MoodIDs...)
		mood := a.MoodID
		s.SelectedMood = &mood
		s.CurrentTask = &model.ActiveTask{Task: task, StartedAt: stamp(now)}
		next.Screen = model.ScreenActive
		fx.Events = append(fx.Events, event(now, model.EventTaskStarted, 0, s.Points, task.ID))

	case ActResume:
		if s.CurrentTask == nil {
			return snap, Effects{}
		}
		next.Screen = model.ScreenActive

	case ActCompleteTask:
		if s.CurrentTask == nil {
			return snap, Effects{}
		}
		taskID := s.CurrentTask.Task.ID
		s.Points++
		s.CompletedTasks++
		s.CurrentTask = nil
		next.Screen = model.ScreenMood
		fx.Events = append(fx.Events, event(now, model.EventTaskCompleted, 1, s.Points, taskID))

	case ActExpireTask:
		at := s.CurrentTask
		if at == nil {
			return snap, Effects{}
		}
		if !a.StartedAt.IsZero() && !a.StartedAt.Equal(at.StartedAt) {
			return snap, Effects{}
		}
		if Remaining(at.StartedAt, at.Task.DurationTime(), now) > 0 {
			return snap, Effects{}
		}
		taskID := at.Task.ID
		before := s.Points
		s.Points = debit(s.Points, 1)
		s.CurrentTask = nil
		next.Screen = model.ScreenMood
		fx.Events = append(fx.Events, event(now, model.EventTaskExpired, s.Points-before, s.Points, taskID))

	case ActRedeemSelf:
		category, ok := r.Catalog.Reward(a.CategoryID)
		if !ok || s.Points < category.Cost {
			return snap, Effects{}
		}
		s.Points -= category.Cost
		if s.RewardBalances == nil {
			s.RewardBalances = map[string]int{}
		}
		s.RewardBalances[category.ID]++
		fx.Events = append(fx.Events, event(now, model.EventRewardRedeemed, -category.Cost, s.Points, category.ID))

	case ActRedeemPet:
		item, ok := r.Catalog.Item(a.ItemID)
		if !ok || s.Pet.Owns(item.ID) || s.Points < item.Cost {
			return snap, Effects{}
		}
		s.Points -= item.Cost
		s.Pet.Level = max(s.Pet.Level, item.Level)
		s.Pet.Items = append(s.Pet.Items, item.ID)
		s.Pet.TotalPointsSpent += item.Cost
		fx.Events = append(fx.Events, event(now, model.EventPetUpgraded, -item.Cost, s.Points, item.ID))

	case ActConfess:
		if onboarding(snap.Screen) {
			return snap, Effects{}
		}
		before := s.Points
		s.Points = debit(s.Points, 1)
		next.Screen = model.ScreenMood
		fx.Events = append(fx.Events, event(now, model.EventConfessed, s.Points-before, s.Points, a.CategoryID))

	case ActSendPoints:
		if !ValidRecipient(a.RecipientID) || a.Amount < 1 || a.Amount > s.Points {
			return snap, Effects{}
		}
		// Local-only: the amount leaves this account and goes nowhere.
		s.Points -= a.Amount
		next.Screen = model.ScreenMood
		fx.Events = append(fx.Events, event(now, model.EventPointsSent, -a.Amount, s.Points, a.RecipientID))

	case ActNavigate:
		if onboarding(snap.Screen) || !navigable[a.Target] || a.Target == snap.Screen {
			return snap, Effects{}
		}
		next.Screen = a.Target

	case ActBack:
		if onboarding(snap.Screen) || snap.Screen == model.ScreenMood {
			return snap, Effects{}
		}
		next.Screen = model.ScreenMood

	case ActReset:
		next.State = NewState(r.Rand)
		next.Screen = model.ScreenWelcome
		fx.ClearStorage = true
		fx.Events = append(fx.Events, event(now, model.EventReset, -snap.State.Points, 0, snap.State.UserID))

	default:
		return snap, Effects{}
	}
	return next, fx
}

// ValidRecipient reports whether id is exactly six ASCII digits.
func ValidRecipient(id string) bool {
	if len(id) != 6 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

func debit(points, amount int) int {
	if points-amount < 0 {
		return 0
	}
	return points - amount
}

// stamp drops the monotonic reading and sub-millisecond precision so the
// start time survives a save/load cycle unchanged.
func stamp(now time.Time) time.Time {
	return time.UnixMilli(now.UnixMilli())
}

func event(now time.Time, kind model.EventKind, delta, pointsAfter int, ref string) model.Event {
	return model.Event{
		At:          now,
		Kind:        kind,
		Delta:       delta,
		PointsAfter: pointsAfter,
		Ref:         ref,
	}
}
