// Package model defines shared data structures.
package model

import "time"

// Screen identifies a view of the session state machine.
type Screen string

// Screens, in rough flow order.
const (
	ScreenInstall      Screen = "install"
	ScreenWelcome      Screen = "welcome"
	ScreenMood         Screen = "mood"
	ScreenActive       Screen = "active"
	ScreenRedeem       Screen = "redeem"
	ScreenSchweinehund Screen = "schweinehund"
	ScreenConfess      Screen = "confess"
	ScreenSendPoints   Screen = "sendpoints"
	ScreenSettings     Screen = "settings"
)

// Config defines runtime settings.
type Config struct {
	DBPath       string
	CatalogPath  string
	Standalone   bool
	PollInterval time.Duration
	Seed         int64
	LogLevel     string
}

// HistoryFilter defines filters for history queries.
type HistoryFilter struct {
	Since       *time.Time
	Kinds       []EventKind
	Last        int
	CurveWindow int
}

// Mood is the situational context a task is drawn for.
type Mood struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Task is a short challenge with a countdown in minutes.
type Task struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Duration int      `yaml:"duration"`
	MoodIDs  []string `yaml:"moods"`
}

// DurationTime returns the task duration as a time.Duration.
func (t Task) DurationTime() time.Duration {
	return time.Duration(t.Duration) * time.Minute
}

// RewardCategory is an indulgence points can be redeemed for.
type RewardCategory struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
	Cost int    `yaml:"cost"`
}

// UpgradeItem is a Schweinehund upgrade.
type UpgradeItem struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Cost  int    `yaml:"cost"`
	Level int    `yaml:"level"`
}

// ActiveTask is the task currently running.
type ActiveTask struct {
	Task        Task
	StartedAt   time.Time
	CompletedAt *time.Time
}

// PetState tracks Schweinehund upgrade progress.
type PetState struct {
	Level            int
	Items            []string
	TotalPointsSpent int
}

// Owns reports whether the pet already has the item.
func (p PetState) Owns(itemID string) bool {
	for _, id := range p.Items {
		if id == itemID {
			return true
		}
	}
	return false
}

// State is the persisted user progress record.
type State struct {
	UserID             string
	OnboardingComplete bool
	Points             int
	RewardBalances     map[string]int
	CurrentTask        *ActiveTask
	CompletedTasks     int
	Pet                PetState
	SelectedMood       *string
}

// Clone returns a deep copy so reductions never alias the previous state.
func (s State) Clone() State {
	out := s
	if s.RewardBalances != nil {
		out.RewardBalances = make(map[string]int, len(s.RewardBalances))
		for k, v := range s.RewardBalances {
			out.RewardBalances[k] = v
		}
	}
	if s.CurrentTask != nil {
		task := *s.CurrentTask
		task.Task.MoodIDs = append([]string(nil), s.CurrentTask.Task.MoodIDs...)
		if s.CurrentTask.CompletedAt != nil {
			completedAt := *s.CurrentTask.CompletedAt
			task.CompletedAt = &completedAt
		}
		out.CurrentTask = &task
	}
	if s.Pet.Items != nil {
		out.Pet.Items = append([]string{}, s.Pet.Items...)
	}
	if s.SelectedMood != nil {
		mood := *s.SelectedMood
		out.SelectedMood = &mood
	}
	return out
}

// EventKind names a recorded outcome.
type EventKind string

// Event kinds written to the history log.
const (
	EventTaskStarted    EventKind = "task_started"
	EventTaskCompleted  EventKind = "task_completed"
	EventTaskExpired    EventKind = "task_expired"
	EventRewardRedeemed EventKind = "reward_redeemed"
	EventPetUpgraded    EventKind = "pet_upgraded"
	EventConfessed      EventKind = "confessed"
	EventPointsSent     EventKind = "points_sent"
	EventReset          EventKind = "reset"
)

// Event is one entry of the history log.
type Event struct {
	ID          string
	At          time.Time
	Kind        EventKind
	Delta       int
	PointsAfter int
	Ref         string
}
