// Package catalog holds the moods, tasks, rewards and pet upgrades.
package catalog

import (
	"github.com/Inflinity/badhabbits/internal/model"
)

// Catalog is the fixed content the session draws from.
type Catalog struct {
	Moods   []model.Mood
	Tasks   map[string][]model.Task
	Rewards []model.RewardCategory
	Items   []model.UpgradeItem
}

// Default returns the built-in catalog.
func Default() Catalog {
	return Catalog{
		Moods: []model.Mood{
			{ID: "commute", Name: "Commuting"},
			{ID: "couch", Name: "Couch Potato"},
			{ID: "social", Name: "With Friends"},
			{ID: "bed", Name: "In Bed"},
		},
		// Ordered by badness.
		Rewards: []model.RewardCategory{
			{ID: "pizza", Name: "Fastfood", Icon: "🍕", Cost: 1},
			{ID: "sugar", Name: "Sugar", Icon: "🥤", Cost: 1},
			{ID: "drink", Name: "Drink", Icon: "🍺", Cost: 2},
			{ID: "shopping", Name: "Shopping", Icon: "🛒", Cost: 3},
			{ID: "social", Name: "Social Media", Icon: "📱", Cost: 2},
			{ID: "gaming", Name: "Gaming", Icon: "🎮", Cost: 2},
		},
		Items: []model.UpgradeItem{
			{ID: "sneakers", Name: "Sneakers", Cost: 5, Level: 2},
			{ID: "sunglasses", Name: "Sunglasses", Cost: 8, Level: 3},
			{ID: "phone", Name: "Phone", Cost: 10, Level: 4},
			{ID: "chain", Name: "Gold Chain", Cost: 15, Level: 5},
			{ID: "car", Name: "Sports Car", Cost: 25, Level: 6},
			{ID: "champagne", Name: "Champagne", Cost: 30, Level: 7},
			{ID: "yacht", Name: "Yacht", Cost: 50, Level: 8},
		},
		Tasks: map[string][]model.Task{
			"commute": {
				task("c1", "Memorize a short poem", 15, "commute"),
				task("c2", "Listen to a podcast episode mindfully", 20, "commute"),
				task("c3", "Practice deep breathing for 5 minutes", 10, "commute"),
				task("c4", "Count 100 things of one color outside", 10, "commute"),
				task("c5", "Plan your top 3 priorities for today", 10, "commute"),
			},
			"couch": {
				task("h1", "Go for a 20 minute walk without phone", 30, "couch"),
				task("h2", "Do 20 push-ups", 15, "couch"),
				task("h3", "Stretch for 10 minutes", 15, "couch"),
				task("h4", "Clean one room for 15 minutes", 20, "couch"),
				task("h5", "Call a friend or family member", 20, "couch"),
			},
			"social": {
				task("s1", "Have a real conversation - no phones!", 30, "social"),
				task("s2", "Teach someone something you know", 20, "social"),
				task("s3", "Play a board game or cards", 30, "social"),
				task("s4", "Go for a walk together", 30, "social"),
				task("s5", "Cook something together", 45, "social"),
			},
			"bed": {
				task("b1", "Read a book for 20 minutes", 25, "bed"),
				task("b2", "Write in a journal for 10 minutes", 15, "bed"),
				task("b3", "Do a body scan meditation", 15, "bed"),
				task("b4", "Plan tomorrow in writing", 10, "bed"),
				task("b5", "Listen to calming music - no screen", 15, "bed"),
			},
		},
	}
}

func task(id, title string, minutes int, moods ...string) model.Task {
	return model.Task{ID: id, Title: title, Duration: minutes, MoodIDs: moods}
}

// TasksFor returns the tasks drawn for a mood. Unknown moods have none.
func (c Catalog) TasksFor(moodID string) []model.Task {
	return c.Tasks[moodID]
}

// Mood looks up a mood by id.
func (c Catalog) Mood(id string) (model.Mood, bool) {
	for _, m := range c.Moods {
		if m.ID == id {
			return m, true
		}
	}
	return model.Mood{}, false
}

// Reward looks up a reward category by id.
func (c Catalog) Reward(id string) (model.RewardCategory, bool) {
	for _, r := range c.Rewards {
		if r.ID == id {
			return r, true
		}
	}
	return model.RewardCategory{}, false
}

// Item looks up a pet upgrade by id.
func (c Catalog) Item(id string) (model.UpgradeItem, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return model.UpgradeItem{}, false
}

// ItemLevel returns the level an owned item grants.
func (c Catalog) ItemLevel(id string) (int, bool) {
	it, ok := c.Item(id)
	if !ok {
		return 0, false
	}
	return it.Level, true
}

// NextItem returns the first upgrade the pet does not own yet.
func (c Catalog) NextItem(pet model.PetState) (model.UpgradeItem, bool) {
	for _, it := range c.Items {
		if !pet.Owns(it.ID) {
			return it, true
		}
	}
	return model.UpgradeItem{}, false
}
