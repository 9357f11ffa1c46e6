package record

// migrations[v] upgrades a document from version v to v+1 in place.
var migrations = []func(Decoder, map[string]any){
	migrateV0,
	migrateV1,
}

// migrateV0 covers records written before the version field existed.
func migrateV0(d Decoder, doc map[string]any) {
	if id, _ := doc["userId"].(string); id == "" {
		if legacy, _ := doc["oderId"].(string); legacy != "" {
			doc["userId"] = legacy
		} else if d.NewID != nil {
			doc["userId"] = d.NewID()
		}
	}
	delete(doc, "oderId")

	if _, ok := doc["schweinehund"].(map[string]any); !ok {
		doc["schweinehund"] = map[string]any{
			"level":            1,
			"items":            []any{},
			"totalPointsSpent": 0,
		}
	}
	if _, ok := doc["rewardBalances"].(map[string]any); !ok {
		doc["rewardBalances"] = map[string]any{}
	}

	delete(doc, "streak")
	delete(doc, "lastActiveDate")
}

// migrateV1 derives the pet level from owned items and drops duplicates.
func migrateV1(d Decoder, doc map[string]any) {
	pet, _ := doc["schweinehund"].(map[string]any)
	if pet == nil {
		pet = map[string]any{}
		doc["schweinehund"] = pet
	}

	rawItems, _ := pet["items"].([]any)
	seen := make(map[string]struct{}, len(rawItems))
	items := make([]any, 0, len(rawItems))
	level := 1
	for _, raw := range rawItems {
		id, ok := raw.(string)
		if !ok || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		items = append(items, id)
		if d.ItemLevel != nil {
			if l, ok := d.ItemLevel(id); ok && l > level {
				level = l
			}
		}
	}
	if d.ItemLevel == nil {
		if stored, ok := pet["level"].(float64); ok && int(stored) > level {
			level = int(stored)
		}
	}
	pet["items"] = items
	pet["level"] = level
	if _, ok := pet["totalPointsSpent"].(float64); !ok {
		pet["totalPointsSpent"] = 0
	}

	if points, ok := doc["points"].(float64); !ok || points < 0 {
		doc["points"] = 0
	}
}
