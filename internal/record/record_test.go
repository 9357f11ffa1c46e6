package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Inflinity/badhabbits/internal/catalog"
	"github.com/Inflinity/badhabbits/internal/model"
)

func testDecoder() Decoder {
	cat := catalog.Default()
	return Decoder{
		NewID:     func() string { return "123456" },
		ItemLevel: cat.ItemLevel,
	}
}

func TestRoundTrip(t *testing.T) {
	mood := "couch"
	completed := time.UnixMilli(1_700_000_100_000)
	states := []model.State{
		{
			UserID: "654321",
			Pet:    model.PetState{Level: 1, Items: []string{}},
		},
		{
			UserID:             "372424",
			OnboardingComplete: true,
			Points:             7,
			RewardBalances:     map[string]int{"pizza": 3, "drink": 1},
			CurrentTask: &model.ActiveTask{
				Task:        model.Task{ID: "h2", Title: "Do 20 push-ups", Duration: 15, MoodIDs: []string{"couch"}},
				StartedAt:   time.UnixMilli(1_700_000_000_000),
				CompletedAt: &completed,
			},
			CompletedTasks: 12,
			Pet:            model.PetState{Level: 3, Items: []string{"sneakers", "sunglasses"}, TotalPointsSpent: 13},
			SelectedMood:   &mood,
		},
	}
	for _, s := range states {
		raw, err := Encode(s)
		require.NoError(t, err)
		got, err := testDecoder().Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestDecodeLegacyRecord(t *testing.T) {
	raw := []byte(`{
		"oderId": "372424",
		"onboardingComplete": true,
		"points": 4,
		"currentTask": null,
		"completedTasks": 9,
		"streak": 3,
		"lastActiveDate": "2024-01-01",
		"selectedMood": "bed"
	}`)
	got, err := testDecoder().Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "372424", got.UserID)
	assert.Equal(t, 4, got.Points)
	assert.Equal(t, 9, got.CompletedTasks)
	assert.Equal(t, model.PetState{Level: 1, Items: []string{}}, got.Pet)
	assert.Equal(t, map[string]int{}, got.RewardBalances)
	require.NotNil(t, got.SelectedMood)
	assert.Equal(t, "bed", *got.SelectedMood)
}

func TestDecodeBackfillsMissingID(t *testing.T) {
	got, err := testDecoder().Decode([]byte(`{"points": 1}`))
	require.NoError(t, err)
	assert.Equal(t, "123456", got.UserID)
}

func TestDecodeV1NormalizesPet(t *testing.T) {
	raw := []byte(`{
		"schemaVersion": 1,
		"userId": "111111",
		"points": -3,
		"rewardBalances": {},
		"schweinehund": {"level": 9, "items": ["phone", "sneakers", "phone"], "totalPointsSpent": 15}
	}`)
	got, err := testDecoder().Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Points)
	assert.Equal(t, []string{"phone", "sneakers"}, got.Pet.Items)
	assert.Equal(t, 4, got.Pet.Level)
	assert.Equal(t, 15, got.Pet.TotalPointsSpent)
}

func TestDecodeFutureSchema(t *testing.T) {
	_, err := testDecoder().Decode([]byte(`{"schemaVersion": 99}`))
	assert.ErrorIs(t, err, ErrFutureSchema)
}

func TestDecodeGarbage(t *testing.T) {
	for _, raw := range []string{"", "not json", "null", "[]", `{"schemaVersion": "two"}`} {
		_, err := testDecoder().Decode([]byte(raw))
		assert.Error(t, err, "input %q", raw)
	}
}
