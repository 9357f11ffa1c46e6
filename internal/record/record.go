// Package record encodes the persisted state and migrates older records.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Inflinity/badhabbits/internal/model"
)

// CurrentVersion is the schema version Encode writes.
const CurrentVersion = 2

// ErrFutureSchema is returned for records written by a newer build.
var ErrFutureSchema = errors.New("record schema is newer than supported")

type wireState struct {
	SchemaVersion      int             `json:"schemaVersion"`
	UserID             string          `json:"userId"`
	OnboardingComplete bool            `json:"onboardingComplete"`
	Points             int             `json:"points"`
	RewardBalances     map[string]int  `json:"rewardBalances"`
	CurrentTask        *wireActiveTask `json:"currentTask"`
	CompletedTasks     int             `json:"completedTasks"`
	Schweinehund       wirePet         `json:"schweinehund"`
	SelectedMood       *string         `json:"selectedMood"`
}

type wireTask struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Duration int      `json:"duration"`
	MoodIDs  []string `json:"moodIds"`
}

type wireActiveTask struct {
	Task        wireTask `json:"task"`
	StartedAt   int64    `json:"startedAt"`
	CompletedAt *int64   `json:"completedAt,omitempty"`
}

type wirePet struct {
	Level            int      `json:"level"`
	Items            []string `json:"items"`
	TotalPointsSpent int      `json:"totalPointsSpent"`
}

// Encode serializes a state at the current schema version.
func Encode(s model.State) ([]byte, error) {
	w := wireState{
		SchemaVersion:      CurrentVersion,
		UserID:             s.UserID,
		OnboardingComplete: s.OnboardingComplete,
		Points:             s.Points,
		RewardBalances:     s.RewardBalances,
		CompletedTasks:     s.CompletedTasks,
		Schweinehund: wirePet{
			Level:            s.Pet.Level,
			Items:            s.Pet.Items,
			TotalPointsSpent: s.Pet.TotalPointsSpent,
		},
		SelectedMood: s.SelectedMood,
	}
	if at := s.CurrentTask; at != nil {
		w.CurrentTask = &wireActiveTask{
			Task: wireTask{
				ID:       at.Task.ID,
				Title:    at.Task.Title,
				Duration: at.Task.Duration,
				MoodIDs:  at.Task.MoodIDs,
			},
			StartedAt: at.StartedAt.UnixMilli(),
		}
		if at.CompletedAt != nil {
			ms := at.CompletedAt.UnixMilli()
			w.CurrentTask.CompletedAt = &ms
		}
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return b, nil
}

// Decoder decodes records, migrating older schema versions.
type Decoder struct {
	// NewID backfills a missing user id.
	NewID func() string
	// ItemLevel resolves the level granted by an owned pet item.
	ItemLevel func(itemID string) (int, bool)
}

// Decode parses a record of any supported version.
func (d Decoder) Decode(raw []byte) (model.State, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.State{}, fmt.Errorf("decode record: %w", err)
	}
	if doc == nil {
		return model.State{}, fmt.Errorf("decode record: not an object")
	}
	version, err := schemaVersion(doc)
	if err != nil {
		return model.State{}, err
	}
	if version > CurrentVersion {
		return model.State{}, fmt.Errorf("%w: version %d", ErrFutureSchema, version)
	}
	for v := version; v < CurrentVersion; v++ {
		migrations[v](d, doc)
		doc["schemaVersion"] = v + 1
	}

	migrated, err := json.Marshal(doc)
	if err != nil {
		return model.State{}, fmt.Errorf("re-encode record: %w", err)
	}
	var w wireState
	if err := json.Unmarshal(migrated, &w); err != nil {
		return model.State{}, fmt.Errorf("decode record: %w", err)
	}
	return fromWire(w), nil
}

func schemaVersion(doc map[string]any) (int, error) {
	raw, ok := doc["schemaVersion"]
	if !ok || raw == nil {
		return 0, nil
	}
	f, ok := raw.(float64)
	if !ok || f < 0 || f != float64(int(f)) {
		return 0, fmt.Errorf("decode record: invalid schemaVersion %v", raw)
	}
	return int(f), nil
}

func fromWire(w wireState) model.State {
	s := model.State{
		UserID:             w.UserID,
		OnboardingComplete: w.OnboardingComplete,
		Points:             w.Points,
		RewardBalances:     w.RewardBalances,
		CompletedTasks:     w.CompletedTasks,
		Pet: model.PetState{
			Level:            w.Schweinehund.Level,
			Items:            w.Schweinehund.Items,
			TotalPointsSpent: w.Schweinehund.TotalPointsSpent,
		},
		SelectedMood: w.SelectedMood,
	}
	if at := w.CurrentTask; at != nil {
		s.CurrentTask = &model.ActiveTask{
			Task: model.Task{
				ID:       at.Task.ID,
				Title:    at.Task.Title,
				Duration: at.Task.Duration,
				MoodIDs:  at.Task.MoodIDs,
			},
			StartedAt: time.UnixMilli(at.StartedAt),
		}
		if at.CompletedAt != nil {
			completed := time.UnixMilli(*at.CompletedAt)
			s.CurrentTask.CompletedAt = &completed
		}
	}
	return s
}
