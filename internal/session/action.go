// Package session implements the screen state machine and its persistence.
package session

import (
	"time"

	"github.com/Inflinity/badhabbits/internal/model"
)

// ActionKind names a user intent or timer event.
type ActionKind string

// Action kinds accepted by the reducer.
const (
	ActInstallContinue    ActionKind = "install_continue"
	ActOnboardingComplete ActionKind = "onboarding_complete"
	ActSelectMood         ActionKind = "select_mood"
	ActResume             ActionKind = "resume"
	ActCompleteTask       ActionKind = "complete_task"
	ActExpireTask         ActionKind = "expire_task"
	ActRedeemSelf         ActionKind = "redeem_self"
	ActRedeemPet          ActionKind = "redeem_pet"
	ActConfess            ActionKind = "confess"
	ActSendPoints         ActionKind = "send_points"
	ActNavigate           ActionKind = "navigate"
	ActBack               ActionKind = "back"
	ActReset              ActionKind = "reset"
)

// Action is a named intent with its optional parameters.
type Action struct {
	Kind        ActionKind
	MoodID      string
	CategoryID  string
	ItemID      string
	RecipientID string
	Amount      int
	Target      model.Screen
	// StartedAt pins an expiry to the task it was computed for.
	StartedAt time.Time
}

func InstallContinue() Action    { return Action{Kind: ActInstallContinue} }
func OnboardingComplete() Action { return Action{Kind: ActOnboardingComplete} }
func SelectMood(id string) Action {
	return Action{Kind: ActSelectMood, MoodID: id}
}
func Resume() Action       { return Action{Kind: ActResume} }
func CompleteTask() Action { return Action{Kind: ActCompleteTask} }
func ExpireTask(startedAt time.Time) Action {
	return Action{Kind: ActExpireTask, StartedAt: startedAt}
}
func RedeemSelf(categoryID string) Action {
	return Action{Kind: ActRedeemSelf, CategoryID: categoryID}
}
func RedeemPet(itemID string) Action {
	return Action{Kind: ActRedeemPet, ItemID: itemID}
}
func Confess(categoryID string) Action {
	return Action{Kind: ActConfess, CategoryID: categoryID}
}
func SendPoints(recipientID string, amount int) Action {
	return Action{Kind: ActSendPoints, RecipientID: recipientID, Amount: amount}
}
func Navigate(target model.Screen) Action {
	return Action{Kind: ActNavigate, Target: target}
}
func Back() Action  { return Action{Kind: ActBack} }
func Reset() Action { return Action{Kind: ActReset} }
