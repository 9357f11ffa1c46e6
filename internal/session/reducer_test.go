package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Inflinity/badhabbits/internal/catalog"
	"github.com/Inflinity/badhabbits/internal/generator"
	"github.com/Inflinity/badhabbits/internal/model"
)

var t0 = time.UnixMilli(1_700_000_000_000)

func testReducer() Reducer {
	return Reducer{Catalog: catalog.Default(), Rand: generator.NewSeeded(1)}
}

func moodSnapshot(points int) Snapshot {
	return Snapshot{
		State: model.State{
			UserID:             "372424",
			OnboardingComplete: true,
			Points:             points,
			RewardBalances:     map[string]int{},
			Pet:                model.PetState{Level: 1, Items: []string{}},
		},
		Screen: model.ScreenMood,
	}
}

func TestSelectMoodPicksTaskForMood(t *testing.T) {
	r := testReducer()
	for i := 0; i < 50; i++ {
		next, fx := r.Reduce(moodSnapshot(0), SelectMood("bed"), t0)
		require.True(t, fx.Applied)
		require.NotNil(t, next.State.CurrentTask)
		assert.Contains(t, next.State.CurrentTask.Task.MoodIDs, "bed")
		assert.Equal(t, t0, next.State.CurrentTask.StartedAt)
		assert.Equal(t, model.ScreenActive, next.Screen)
		require.NotNil(t, next.State.SelectedMood)
		assert.Equal(t, "bed", *next.State.SelectedMood)
	}
}

func TestSelectUnknownMoodIsIgnored(t *testing.T) {
	snap := moodSnapshot(2)
	next, fx := testReducer().Reduce(snap, SelectMood("nowhere"), t0)
	assert.False(t, fx.Applied)
	assert.Equal(t, snap, next)
}

func TestCompleteTask(t *testing.T) {
	r := testReducer()
	active, _ := r.Reduce(moodSnapshot(3), SelectMood("couch"), t0)

	done, fx := r.Reduce(active, CompleteTask(), t0.Add(time.Hour))
	require.True(t, fx.Applied)
	assert.Equal(t, 4, done.State.Points)
	assert.Equal(t, 1, done.State.CompletedTasks)
	assert.Nil(t, done.State.CurrentTask)
	assert.Equal(t, model.ScreenMood, done.Screen)
	require.Len(t, fx.Events, 1)
	assert.Equal(t, model.EventTaskCompleted, fx.Events[0].Kind)

	_, fx = r.Reduce(done, CompleteTask(), t0)
	assert.False(t, fx.Applied)
}

func TestExpireTask(t *testing.T) {
	r := testReducer()
	active, _ := r.Reduce(moodSnapshot(0), SelectMood("commute"), t0)
	d := active.State.CurrentTask.Task.DurationTime()

	_, fx := r.Reduce(active, ExpireTask(t0), t0.Add(d-time.Millisecond))
	assert.False(t, fx.Applied, "expiry before the deadline is rejected")

	_, fx = r.Reduce(active, ExpireTask(t0.Add(time.Second)), t0.Add(d))
	assert.False(t, fx.Applied, "expiry for another start time is rejected")

	expired, fx := r.Reduce(active, ExpireTask(t0), t0.Add(d))
	require.True(t, fx.Applied)
	assert.Equal(t, 0, expired.State.Points, "points stay clamped at zero")
	assert.Nil(t, expired.State.CurrentTask)
	assert.Equal(t, model.ScreenMood, expired.Screen)
}

func TestRedeemSelf(t *testing.T) {
	r := testReducer()
	snap := moodSnapshot(3)
	snap.Screen = model.ScreenRedeem

	next, fx := r.Reduce(snap, RedeemSelf("shopping"), t0)
	require.True(t, fx.Applied)
	assert.Equal(t, 0, next.State.Points)
	assert.Equal(t, 1, next.State.RewardBalances["shopping"])
	assert.Equal(t, model.ScreenRedeem, next.Screen)
	assert.Empty(t, snap.State.RewardBalances, "input snapshot is not mutated")

	_, fx = r.Reduce(next, RedeemSelf("pizza"), t0)
	assert.False(t, fx.Applied, "insufficient points")
	_, fx = r.Reduce(snap, RedeemSelf("caviar"), t0)
	assert.False(t, fx.Applied, "unknown category")
}

func TestRedeemPetRejectsOwnedItem(t *testing.T) {
	r := testReducer()
	snap := moodSnapshot(20)

	next, fx := r.Reduce(snap, RedeemPet("sunglasses"), t0)
	require.True(t, fx.Applied)
	assert.Equal(t, 12, next.State.Points)
	assert.Equal(t, 3, next.State.Pet.Level)
	assert.Equal(t, []string{"sunglasses"}, next.State.Pet.Items)
	assert.Equal(t, 8, next.State.Pet.TotalPointsSpent)

	again, fx := r.Reduce(next, RedeemPet("sunglasses"), t0)
	assert.False(t, fx.Applied)
	assert.Equal(t, next, again)

	_, fx = r.Reduce(next, RedeemPet("yacht"), t0)
	assert.False(t, fx.Applied, "insufficient points")
}

func TestRedeemPetOutOfOrderKeepsHighestLevel(t *testing.T) {
	r := testReducer()
	snap := moodSnapshot(60)

	rich, fx := r.Reduce(snap, RedeemPet("yacht"), t0)
	require.True(t, fx.Applied)
	assert.Equal(t, 8, rich.State.Pet.Level)

	next, fx := r.Reduce(rich, RedeemPet("sneakers"), t0)
	require.True(t, fx.Applied)
	assert.Equal(t, 8, next.State.Pet.Level)
	assert.Equal(t, []string{"yacht", "sneakers"}, next.State.Pet.Items)
	assert.Equal(t, 55, next.State.Pet.TotalPointsSpent)
	assert.Equal(t, 5, next.State.Points)
}

func TestOnboardingScreensRejectMoodAndConfess(t *testing.T) {
	r := testReducer()
	for _, screen := range []model.Screen{model.ScreenInstall, model.ScreenWelcome} {
		snap := moodSnapshot(3)
		snap.Screen = screen

		next, fx := r.Reduce(snap, SelectMood("couch"), t0)
		assert.False(t, fx.Applied, "select mood on %s", screen)
		assert.Equal(t, snap, next)

		next, fx = r.Reduce(snap, Confess("pizza"), t0)
		assert.False(t, fx.Applied, "confess on %s", screen)
		assert.Equal(t, 3, next.State.Points)
		assert.Equal(t, screen, next.Screen)
	}
}

func TestConfessClampsAtZero(t *testing.T) {
	r := testReducer()
	snap := moodSnapshot(0)
	snap.Screen = model.ScreenConfess
	next, fx := r.Reduce(snap, Confess("pizza"), t0)
	require.True(t, fx.Applied)
	assert.Equal(t, 0, next.State.Points)
	assert.Equal(t, model.ScreenMood, next.Screen)

	snap.State.Points = 2
	next, _ = r.Reduce(snap, Confess("gaming"), t0)
	assert.Equal(t, 1, next.State.Points)
}

func TestSendPointsValidation(t *testing.T) {
	r := testReducer()
	snap := moodSnapshot(5)
	snap.Screen = model.ScreenSendPoints

	for _, a := range []Action{
		SendPoints("12345", 1),
		SendPoints("1234567", 1),
		SendPoints("12a456", 1),
		SendPoints("123456", 0),
		SendPoints("123456", 6),
		SendPoints("123456", -1),
	} {
		next, fx := r.Reduce(snap, a, t0)
		assert.False(t, fx.Applied, "%+v", a)
		assert.Equal(t, snap, next)
	}

	next, fx := r.Reduce(snap, SendPoints("123456", 5), t0)
	require.True(t, fx.Applied)
	assert.Equal(t, 0, next.State.Points)
	assert.Equal(t, model.ScreenMood, next.Screen)
}

func TestPointsNeverNegative(t *testing.T) {
	r := testReducer()
	actions := []Action{
		Confess("pizza"), RedeemSelf("pizza"), RedeemPet("sneakers"),
		SendPoints("123456", 1), SelectMood("couch"), CompleteTask(),
		SelectMood("bed"), Confess("drink"), Confess("drink"),
	}
	for start := 0; start < 4; start++ {
		snap := moodSnapshot(start)
		for _, a := range actions {
			snap, _ = r.Reduce(snap, a, t0)
			assert.GreaterOrEqual(t, snap.State.Points, 0)
		}
	}
}

func TestNavigation(t *testing.T) {
	r := testReducer()
	snap := moodSnapshot(0)

	next, fx := r.Reduce(snap, Navigate(model.ScreenSettings), t0)
	require.True(t, fx.Applied)
	assert.Equal(t, model.ScreenSettings, next.Screen)

	back, fx := r.Reduce(next, Back(), t0)
	require.True(t, fx.Applied)
	assert.Equal(t, model.ScreenMood, back.Screen)

	_, fx = r.Reduce(snap, Navigate(model.ScreenActive), t0)
	assert.False(t, fx.Applied, "active is entered through mood or resume")

	welcome := snap
	welcome.Screen = model.ScreenWelcome
	_, fx = r.Reduce(welcome, Navigate(model.ScreenRedeem), t0)
	assert.False(t, fx.Applied)
}

func TestLeavingActiveKeepsTaskResumable(t *testing.T) {
	r := testReducer()
	active, _ := r.Reduce(moodSnapshot(0), SelectMood("social"), t0)

	away, fx := r.Reduce(active, Back(), t0)
	require.True(t, fx.Applied)
	assert.Equal(t, model.ScreenMood, away.Screen)
	require.NotNil(t, away.State.CurrentTask)

	resumed, fx := r.Reduce(away, Resume(), t0)
	require.True(t, fx.Applied)
	assert.Equal(t, model.ScreenActive, resumed.Screen)
}

func TestInstallAndOnboarding(t *testing.T) {
	r := testReducer()
	snap := Snapshot{State: NewState(r.Rand), Screen: model.ScreenInstall}

	_, fx := r.Reduce(snap, OnboardingComplete(), t0)
	assert.False(t, fx.Applied)

	welcome, fx := r.Reduce(snap, InstallContinue(), t0)
	require.True(t, fx.Applied)
	assert.True(t, fx.MarkInstallSeen)
	assert.Equal(t, model.ScreenWelcome, welcome.Screen)

	mood, fx := r.Reduce(welcome, OnboardingComplete(), t0)
	require.True(t, fx.Applied)
	assert.True(t, mood.State.OnboardingComplete)
	assert.Equal(t, model.ScreenMood, mood.Screen)
}

func TestReset(t *testing.T) {
	r := testReducer()
	snap := moodSnapshot(40)
	snap, _ = r.Reduce(snap, RedeemPet("sneakers"), t0)
	snap, _ = r.Reduce(snap, SelectMood("couch"), t0)

	next, fx := r.Reduce(snap, Reset(), t0)
	require.True(t, fx.Applied)
	assert.True(t, fx.ClearStorage)
	assert.Equal(t, 0, next.State.Points)
	assert.Equal(t, 1, next.State.Pet.Level)
	assert.Empty(t, next.State.Pet.Items)
	assert.Nil(t, next.State.CurrentTask)
	assert.False(t, next.State.OnboardingComplete)
	assert.Len(t, next.State.UserID, 6)
	assert.NotEqual(t, snap.State.UserID, next.State.UserID)
	assert.Equal(t, model.ScreenWelcome, next.Screen)

	r.Standalone = true
	next, _ = r.Reduce(snap, Reset(), t0)
	assert.Equal(t, model.ScreenWelcome, next.Screen)
}

func TestInitialScreen(t *testing.T) {
	fresh := model.State{}
	onboarded := model.State{OnboardingComplete: true}
	busy := model.State{OnboardingComplete: true, CurrentTask: &model.ActiveTask{}}

	assert.Equal(t, model.ScreenInstall, InitialScreen(onboarded, false, false))
	assert.Equal(t, model.ScreenWelcome, InitialScreen(fresh, true, false))
	assert.Equal(t, model.ScreenWelcome, InitialScreen(fresh, false, true))
	assert.Equal(t, model.ScreenMood, InitialScreen(onboarded, true, false))
	assert.Equal(t, model.ScreenActive, InitialScreen(busy, true, false))
}
