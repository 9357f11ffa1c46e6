package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Inflinity/badhabbits/internal/model"
)

// Overlay is the YAML shape of a catalog file. Entries with an id already
// present in the base catalog replace it; new ids are appended.
type Overlay struct {
	Moods   []model.Mood           `yaml:"moods"`
	Tasks   []model.Task           `yaml:"tasks"`
	Rewards []model.RewardCategory `yaml:"rewards"`
	Items   []model.UpgradeItem    `yaml:"items"`
}

// LoadFile reads an overlay from path and merges it onto the built-in catalog.
// An empty path returns the built-in catalog.
func LoadFile(path string) (Catalog, error) {
	base := Default()
	if strings.TrimSpace(path) == "" {
		return base, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog: %w", err)
	}
	var ov Overlay
	if err := yaml.Unmarshal(b, &ov); err != nil {
		return Catalog{}, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := ov.Validate(); err != nil {
		return Catalog{}, err
	}
	return base.Merge(ov), nil
}

// Validate rejects entries the session could not use.
func (ov Overlay) Validate() error {
	for _, m := range ov.Moods {
		if m.ID == "" {
			return fmt.Errorf("mood with empty id")
		}
	}
	for _, t := range ov.Tasks {
		if t.ID == "" {
			return fmt.Errorf("task with empty id")
		}
		if t.Duration <= 0 {
			return fmt.Errorf("task %q: duration must be > 0", t.ID)
		}
		if len(t.MoodIDs) == 0 {
			return fmt.Errorf("task %q: at least one mood is required", t.ID)
		}
	}
	for _, r := range ov.Rewards {
		if r.ID == "" {
			return fmt.Errorf("reward with empty id")
		}
		if r.Cost <= 0 {
			return fmt.Errorf("reward %q: cost must be > 0", r.ID)
		}
	}
	for _, it := range ov.Items {
		if it.ID == "" {
			return fmt.Errorf("item with empty id")
		}
		if it.Cost <= 0 {
			return fmt.Errorf("item %q: cost must be > 0", it.ID)
		}
		if it.Level < 2 {
			return fmt.Errorf("item %q: level must be >= 2", it.ID)
		}
	}
	return nil
}

// Merge returns a copy of c with the overlay applied.
func (c Catalog) Merge(ov Overlay) Catalog {
	out := Catalog{
		Moods:   append([]model.Mood(nil), c.Moods...),
		Rewards: append([]model.RewardCategory(nil), c.Rewards...),
		Items:   append([]model.UpgradeItem(nil), c.Items...),
		Tasks:   make(map[string][]model.Task, len(c.Tasks)),
	}
	for mood, tasks := range c.Tasks {
		out.Tasks[mood] = append([]model.Task(nil), tasks...)
	}

	for _, m := range ov.Moods {
		if i := indexOf(out.Moods, func(x model.Mood) bool { return x.ID == m.ID }); i >= 0 {
			out.Moods[i] = m
		} else {
			out.Moods = append(out.Moods, m)
		}
	}
	for _, r := range ov.Rewards {
		if i := indexOf(out.Rewards, func(x model.RewardCategory) bool { return x.ID == r.ID }); i >= 0 {
			out.Rewards[i] = r
		} else {
			out.Rewards = append(out.Rewards, r)
		}
	}
	for _, it := range ov.Items {
		if i := indexOf(out.Items, func(x model.UpgradeItem) bool { return x.ID == it.ID }); i >= 0 {
			out.Items[i] = it
		} else {
			out.Items = append(out.Items, it)
		}
	}
	for _, t := range ov.Tasks {
		// A replaced task leaves the moods it no longer lists.
		for mood, list := range out.Tasks {
			if i := indexOf(list, func(x model.Task) bool { return x.ID == t.ID }); i >= 0 && !hasMood(t, mood) {
				out.Tasks[mood] = append(list[:i:i], list[i+1:]...)
			}
		}
		for _, mood := range t.MoodIDs {
			list := out.Tasks[mood]
			if i := indexOf(list, func(x model.Task) bool { return x.ID == t.ID }); i >= 0 {
				list[i] = t
			} else {
				list = append(list, t)
			}
			out.Tasks[mood] = list
		}
	}
	return out
}

func hasMood(t model.Task, mood string) bool {
	return indexOf(t.MoodIDs, func(id string) bool { return id == mood }) >= 0
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}
