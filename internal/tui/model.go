// Package tui provides the Bubble Tea BadHabits interface.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/Inflinity/badhabbits/internal/catalog"
	"github.com/Inflinity/badhabbits/internal/model"
	"github.com/Inflinity/badhabbits/internal/session"
)

const defaultPollInterval = time.Second

// Controller is the part of session.Controller the UI drives.
type Controller interface {
	Snapshot() session.Snapshot
	Dispatch(ctx context.Context, a session.Action) (session.Snapshot, bool)
	Poll(ctx context.Context) (session.Countdown, bool)
	Now() time.Time
}

type tickMsg struct {
	id int
	at time.Time
}

// Model implements the Bubble Tea UI over a session controller.
type Model struct {
	ctrl    Controller
	catalog catalog.Catalog
	poll    time.Duration
	log     zerolog.Logger

	snap   session.Snapshot
	cursor int
	notice string

	width  int
	height int

	ticking bool
	tickID  int

	welcomePage int
	welcome     viewport.Model
	rewards     table.Model
	resetArmed  bool

	sendInputs []textinput.Model
	sendIndex  int
}

// NewModel constructs the UI. The controller must already be booted.
func NewModel(ctrl Controller, cat catalog.Catalog, poll time.Duration, log zerolog.Logger) *Model {
	if poll <= 0 {
		poll = defaultPollInterval
	}
	m := &Model{
		ctrl:    ctrl,
		catalog: cat,
		poll:    poll,
		log:     log,
		snap:    ctrl.Snapshot(),
		welcome: viewport.New(0, 0),
	}
	m.welcome.SetContent(welcomeText)
	m.rewards = buildRewardTable()
	m.sendInputs = []textinput.Model{
		newInput("Recipient ID: ", "6 digits", 6),
		newInput("Amount: ", "points", 6),
	}
	m.refreshRewards()
	return m
}

func newInput(prompt, placeholder string, limit int) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.syncScreen(m.snap.Screen)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.welcome.Width = min(m.contentWidth(), 72)
		m.welcome.Height = max(m.height-8, 3)
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if !m.ticking || msg.id != m.tickID {
		return nil
	}
	prev := m.snap.Screen
	_, fired := m.ctrl.Poll(context.Background())
	m.snap = m.ctrl.Snapshot()
	if fired {
		m.notice = "Time's up. The Schweinehund wins this one (-1 point)."
	}
	if m.snap.Screen != model.ScreenActive {
		m.ticking = false
		return m.syncScreen(prev)
	}
	return m.scheduleTick()
}

func (m *Model) scheduleTick() tea.Cmd {
	id := m.tickID
	return tea.Tick(m.poll, func(t time.Time) tea.Msg {
		return tickMsg{id: id, at: t}
	})
}

// syncScreen starts or stops screen-bound machinery after the screen moved
// away from prev.
func (m *Model) syncScreen(prev model.Screen) tea.Cmd {
	screen := m.snap.Screen
	if screen != prev {
		m.cursor = 0
		m.resetArmed = false
		m.log.Debug().Str("from", string(prev)).Str("to", string(screen)).Msg("screen changed")
	}
	var cmds []tea.Cmd
	switch screen {
	case model.ScreenActive:
		if !m.ticking {
			m.ticking = true
			m.tickID++
			cmds = append(cmds, m.scheduleTick())
		}
	case model.ScreenSendPoints:
		if screen != prev {
			for i := range m.sendInputs {
				m.sendInputs[i].SetValue("")
			}
			cmds = append(cmds, m.focusSend(0))
		}
	case model.ScreenRedeem:
		m.refreshRewards()
		m.rewards.Focus()
	case model.ScreenWelcome:
		if screen != prev {
			m.welcomePage = 0
			m.welcome.GotoTop()
		}
	}
	if screen != model.ScreenActive {
		m.ticking = false
	}
	if screen != model.ScreenRedeem {
		m.rewards.Blur()
	}
	return tea.Batch(cmds...)
}

// dispatch applies a to the controller and reports whether it took effect.
func (m *Model) dispatch(a session.Action) (bool, tea.Cmd) {
	prev := m.snap.Screen
	snap, ok := m.ctrl.Dispatch(context.Background(), a)
	m.snap = snap
	return ok, m.syncScreen(prev)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if m.snap.Screen != model.ScreenSendPoints {
		m.notice = ""
		if key == "q" {
			return tea.Quit
		}
	}
	switch m.snap.Screen {
	case model.ScreenInstall:
		return m.keyInstall(key)
	case model.ScreenWelcome:
		return m.keyWelcome(msg)
	case model.ScreenMood:
		return m.keyMood(key)
	case model.ScreenActive:
		return m.keyActive(key)
	case model.ScreenRedeem:
		return m.keyRedeem(msg)
	case model.ScreenSchweinehund:
		return m.keyPet(key)
	case model.ScreenConfess:
		return m.keyConfess(key)
	case model.ScreenSendPoints:
		return m.keySend(msg)
	case model.ScreenSettings:
		return m.keySettings(key)
	}
	return nil
}

func (m *Model) keyInstall(key string) tea.Cmd {
	switch key {
	case "enter", "s":
		_, cmd := m.dispatch(session.InstallContinue())
		return cmd
	}
	return nil
}

func (m *Model) keyWelcome(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", " ":
		if m.welcomePage == 0 {
			m.welcomePage = 1
			return nil
		}
		_, cmd := m.dispatch(session.OnboardingComplete())
		return cmd
	case "backspace", "left":
		m.welcomePage = 0
		return nil
	}
	var cmd tea.Cmd
	m.welcome, cmd = m.welcome.Update(msg)
	return cmd
}

var moodNav = map[string]model.Screen{
	"b": model.ScreenRedeem,
	"p": model.ScreenSchweinehund,
	"c": model.ScreenConfess,
	"s": model.ScreenSendPoints,
	"o": model.ScreenSettings,
}

func (m *Model) keyMood(key string) tea.Cmd {
	if target, ok := moodNav[key]; ok {
		_, cmd := m.dispatch(session.Navigate(target))
		return cmd
	}
	moods := m.catalog.Moods
	switch key {
	case "up", "k":
		m.moveCursor(-1, len(moods))
	case "down", "j":
		m.moveCursor(1, len(moods))
	case "enter":
		if m.cursor < len(moods) {
			_, cmd := m.dispatch(session.SelectMood(moods[m.cursor].ID))
			return cmd
		}
	case "r":
		ok, cmd := m.dispatch(session.Resume())
		if !ok {
			m.notice = "No task running. Pick a mood."
		}
		return cmd
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(moods) {
			_, cmd := m.dispatch(session.SelectMood(moods[n-1].ID))
			return cmd
		}
	}
	return nil
}

func (m *Model) keyActive(key string) tea.Cmd {
	switch key {
	case "enter", "d":
		ok, cmd := m.dispatch(session.CompleteTask())
		if ok {
			m.notice = "Done! +1 point."
		}
		return cmd
	case "esc":
		_, cmd := m.dispatch(session.Back())
		return cmd
	}
	return nil
}

func (m *Model) keyRedeem(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		_, cmd := m.dispatch(session.Back())
		return cmd
	case "enter":
		idx := m.rewards.Cursor()
		if idx < 0 || idx >= len(m.catalog.Rewards) {
			return nil
		}
		reward := m.catalog.Rewards[idx]
		ok, cmd := m.dispatch(session.RedeemSelf(reward.ID))
		if ok {
			m.notice = fmt.Sprintf("Enjoy your %s %s.", reward.Icon, reward.Name)
		} else {
			m.notice = fmt.Sprintf("Not enough points for %s (costs %d).", reward.Name, reward.Cost)
		}
		m.refreshRewards()
		return cmd
	}
	var cmd tea.Cmd
	m.rewards, cmd = m.rewards.Update(msg)
	return cmd
}

func (m *Model) keyPet(key string) tea.Cmd {
	items := m.catalog.Items
	switch key {
	case "esc":
		_, cmd := m.dispatch(session.Back())
		return cmd
	case "up", "k":
		m.moveCursor(-1, len(items))
	case "down", "j":
		m.moveCursor(1, len(items))
	case "enter":
		if m.cursor < len(items) {
			return m.feed(items[m.cursor])
		}
	case "f":
		next, ok := m.catalog.NextItem(m.snap.State.Pet)
		if !ok {
			m.notice = "Your Schweinehund has everything."
			return nil
		}
		return m.feed(next)
	}
	return nil
}

func (m *Model) feed(item model.UpgradeItem) tea.Cmd {
	ok, cmd := m.dispatch(session.RedeemPet(item.ID))
	switch {
	case ok:
		m.notice = fmt.Sprintf("Your Schweinehund got %s and is now level %d.", item.Name, m.snap.State.Pet.Level)
	case m.snap.State.Pet.Owns(item.ID):
		m.notice = fmt.Sprintf("Already owns %s.", item.Name)
	default:
		m.notice = fmt.Sprintf("Not enough points for %s (costs %d).", item.Name, item.Cost)
	}
	return cmd
}

func (m *Model) keyConfess(key string) tea.Cmd {
	vices := m.catalog.Rewards
	switch key {
	case "esc":
		_, cmd := m.dispatch(session.Back())
		return cmd
	case "up", "k":
		m.moveCursor(-1, len(vices))
	case "down", "j":
		m.moveCursor(1, len(vices))
	case "enter":
		if m.cursor < len(vices) {
			ok, cmd := m.dispatch(session.Confess(vices[m.cursor].ID))
			if ok {
				m.notice = "Honesty noted. -1 point."
			}
			return cmd
		}
	}
	return nil
}

func (m *Model) keySend(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.notice = ""
		_, cmd := m.dispatch(session.Back())
		return cmd
	case "tab", "down":
		return m.focusSend(m.sendIndex + 1)
	case "shift+tab", "up":
		return m.focusSend(m.sendIndex - 1)
	case "enter":
		return m.submitSend()
	}
	var cmd tea.Cmd
	m.sendInputs[m.sendIndex], cmd = m.sendInputs[m.sendIndex].Update(msg)
	return cmd
}

func (m *Model) focusSend(idx int) tea.Cmd {
	count := len(m.sendInputs)
	m.sendIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.sendInputs {
		if i == m.sendIndex {
			cmd = m.sendInputs[i].Focus()
		} else {
			m.sendInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) submitSend() tea.Cmd {
	recipient := strings.TrimSpace(m.sendInputs[0].Value())
	amount, err := strconv.Atoi(strings.TrimSpace(m.sendInputs[1].Value()))
	switch {
	case !session.ValidRecipient(recipient):
		m.notice = "Recipient ID must be exactly 6 digits."
		return m.focusSend(0)
	case err != nil || amount < 1:
		m.notice = "Amount must be a positive number."
		return m.focusSend(1)
	case amount > m.snap.State.Points:
		m.notice = fmt.Sprintf("Not enough points (you have %d).", m.snap.State.Points)
		return m.focusSend(1)
	}
	ok, cmd := m.dispatch(session.SendPoints(recipient, amount))
	if ok {
		m.notice = fmt.Sprintf("Sent %d to %s.", amount, recipient)
	}
	return cmd
}

func (m *Model) keySettings(key string) tea.Cmd {
	if m.resetArmed {
		m.resetArmed = false
		if key == "y" {
			_, cmd := m.dispatch(session.Reset())
			m.notice = "Progress reset."
			return cmd
		}
		m.notice = "Reset cancelled."
		return nil
	}
	switch key {
	case "esc":
		_, cmd := m.dispatch(session.Back())
		return cmd
	case "r":
		m.resetArmed = true
	}
	return nil
}

func (m *Model) moveCursor(delta, count int) {
	if count == 0 {
		return
	}
	m.cursor = (m.cursor + delta + count) % count
}

func (m *Model) refreshRewards() {
	rows := make([]table.Row, 0, len(m.catalog.Rewards))
	for _, r := range m.catalog.Rewards {
		rows = append(rows, table.Row{
			r.Icon,
			r.Name,
			strconv.Itoa(r.Cost),
			strconv.Itoa(m.snap.State.RewardBalances[r.ID]),
		})
	}
	m.rewards.SetRows(rows)
	m.rewards.SetHeight(len(rows) + 1)
}
