// Package generator provides the session's randomness.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Inflinity/badhabbits/internal/model"
)

// Generator picks tasks and user ids.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// PickTask selects a task uniformly. It reports false for an empty list.
func (g *Generator) PickTask(tasks []model.Task) (model.Task, bool) {
	if len(tasks) == 0 {
		return model.Task{}, false
	}
	return tasks[g.rnd.Intn(len(tasks))], true
}

// UserID returns a random 6-digit id in [100000, 999999].
func (g *Generator) UserID() string {
	return fmt.Sprintf("%d", 100000+g.rnd.Intn(900000))
}
