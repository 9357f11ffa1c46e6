package stats

import (
	"sort"

	"github.com/Inflinity/badhabbits/internal/model"
)

// RefCount is how often a reference (reward, item, vice) appeared.
type RefCount struct {
	Ref   string
	Count int
}

// TopRefs returns the n most frequent refs among events of the given kind.
// Ties are broken alphabetically.
func TopRefs(events []model.Event, kind model.EventKind, n int) []RefCount {
	if n <= 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, ev := range events {
		if ev.Kind == kind && ev.Ref != "" {
			counts[ev.Ref]++
		}
	}
	items := make([]RefCount, 0, len(counts))
	for ref, c := range counts {
		items = append(items, RefCount{Ref: ref, Count: c})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Ref < items[j].Ref
		}
		return items[i].Count > items[j].Count
	})
	if n < len(items) {
		items = items[:n]
	}
	return items
}
