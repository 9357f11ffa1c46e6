package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Inflinity/badhabbits/internal/model"
	"github.com/Inflinity/badhabbits/internal/session"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	clockStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	boxStyle      = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

const progressWidth = 30

const welcomeText = `BadHabits turns the minutes you would waste into tiny challenges.

Pick the situation you are in, get a short task, and beat the clock.
Every finished task earns a point. Let the timer run out and your
inner Schweinehund takes one back.

Spend points on guilt-free rewards, or feed them to your
Schweinehund to level it up. Slipped? Confess it and move on.`

func buildRewardTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "", Width: 3},
			{Title: "Reward", Width: 14},
			{Title: "Cost", Width: 5},
			{Title: "Redeemed", Width: 9},
		}),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#C89A3A")).
		Background(lipgloss.NoColor{})
	t.SetStyles(styles)
	return t
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderScreen()
	if m.notice != "" {
		content += "\n\n" + warnStyle.Render(m.notice)
	}
	footer := footerStyle.Render(m.renderFooter())
	if m.width == 0 || m.height < 3 {
		return content + "\n\n" + footer
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(int(float64(m.width)*0.70), 20)
}

func (m *Model) renderScreen() string {
	switch m.snap.Screen {
	case model.ScreenInstall:
		return m.viewInstall()
	case model.ScreenWelcome:
		return m.viewWelcome()
	case model.ScreenMood:
		return m.viewMood()
	case model.ScreenActive:
		return m.viewActive()
	case model.ScreenRedeem:
		return m.viewRedeem()
	case model.ScreenSchweinehund:
		return m.viewPet()
	case model.ScreenConfess:
		return m.viewConfess()
	case model.ScreenSendPoints:
		return m.viewSend()
	case model.ScreenSettings:
		return m.viewSettings()
	}
	return ""
}

func (m *Model) statusLine() string {
	s := m.snap.State
	return fmt.Sprintf("Points %d · Level %d · Done %d", s.Points, s.Pet.Level, s.CompletedTasks)
}

func (m *Model) viewInstall() string {
	lines := []string{
		titleStyle.Render("Install BadHabits"),
		"",
		textStyle.Render("Add BadHabits to your home screen for the full experience."),
		mutedStyle.Render("Nothing to install in a terminal, so this is just a hello."),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) viewWelcome() string {
	if m.welcomePage == 0 {
		body := m.welcome.View()
		if m.welcome.Height == 0 {
			body = welcomeText
		}
		return titleStyle.Render("Welcome to BadHabits") + "\n\n" + textStyle.Render(body)
	}
	lines := []string{
		titleStyle.Render("Ready?"),
		"",
		textStyle.Render("Your Schweinehund is level 1 and already judging you."),
		textStyle.Render("Press enter to start."),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewMood() string {
	lines := []string{
		titleStyle.Render("Where are you right now?"),
		mutedStyle.Render(m.statusLine()),
		"",
	}
	for i, mood := range m.catalog.Moods {
		lines = append(lines, m.listItem(i, fmt.Sprintf("%d. %s", i+1, mood.Name)))
	}
	if at := m.snap.State.CurrentTask; at != nil {
		lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("Running: %s (r to resume)", at.Task.Title)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewActive() string {
	cd, ok := session.CountdownFor(m.snap.State.CurrentTask, m.ctrl.Now())
	if !ok {
		return mutedStyle.Render("No task running.")
	}
	width := min(m.contentWidth(), 60)
	lines := []string{titleStyle.Render("Your challenge"), ""}
	for _, line := range wrapText(cd.Task.Title, width) {
		lines = append(lines, textStyle.Render(line))
	}
	lines = append(lines,
		"",
		clockStyle.Render(session.FormatClock(cd.Remaining)),
		mutedStyle.Render(progressBar(cd.Progress, progressWidth)),
	)
	return strings.Join(lines, "\n")
}

func (m *Model) viewRedeem() string {
	lines := []string{
		titleStyle.Render("Treat yourself"),
		mutedStyle.Render(m.statusLine()),
		"",
		m.rewards.View(),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewPet() string {
	pet := m.snap.State.Pet
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Schweinehund · level %d", pet.Level)),
		mutedStyle.Render(fmt.Sprintf("Points %d · spent on upgrades %d", m.snap.State.Points, pet.TotalPointsSpent)),
		"",
	}
	for i, item := range m.catalog.Items {
		mark := fmt.Sprintf("%3d pts", item.Cost)
		if pet.Owns(item.ID) {
			mark = "  owned"
		}
		lines = append(lines, m.listItem(i, fmt.Sprintf("%-12s %s  lvl %d", item.Name, mark, item.Level)))
	}
	lines = append(lines, "")
	if next, ok := m.catalog.NextItem(pet); ok {
		lines = append(lines, textStyle.Render(fmt.Sprintf("Next: %s for %d points (f to feed)", next.Name, next.Cost)))
	} else {
		lines = append(lines, textStyle.Render("Fully upgraded."))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewConfess() string {
	lines := []string{
		titleStyle.Render("What did you give in to?"),
		mutedStyle.Render("Confessing costs 1 point."),
		"",
	}
	for i, vice := range m.catalog.Rewards {
		lines = append(lines, m.listItem(i, fmt.Sprintf("%s %s", vice.Icon, vice.Name)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewSend() string {
	lines := []string{
		titleStyle.Render("Send points"),
		mutedStyle.Render(m.statusLine()),
		"",
	}
	for _, input := range m.sendInputs {
		lines = append(lines, input.View())
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewSettings() string {
	s := m.snap.State
	lines := []string{
		titleStyle.Render("Settings"),
		"",
		textStyle.Render(fmt.Sprintf("Your ID:          %s", s.UserID)),
		textStyle.Render(fmt.Sprintf("Completed tasks:  %d", s.CompletedTasks)),
		textStyle.Render(fmt.Sprintf("Points:           %d", s.Points)),
		textStyle.Render(fmt.Sprintf("Schweinehund:     level %d", s.Pet.Level)),
		"",
	}
	if m.resetArmed {
		lines = append(lines, warnStyle.Render("This erases all progress. Press y to confirm, any other key to cancel."))
	} else {
		lines = append(lines, mutedStyle.Render("Press r to reset progress."))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) listItem(i int, label string) string {
	if i == m.cursor {
		return selectedStyle.Render("> " + label)
	}
	return textStyle.Render("  " + label)
}

func (m *Model) renderFooter() string {
	switch m.snap.Screen {
	case model.ScreenInstall:
		return "enter: continue  s: skip  q: quit"
	case model.ScreenWelcome:
		if m.welcomePage == 0 {
			return "enter: next  up/down: scroll  q: quit"
		}
		return "enter: start  backspace: back  q: quit"
	case model.ScreenMood:
		return "up/down: choose  enter: go  r: resume  b: rewards  p: pet  c: confess  s: send  o: settings  q: quit"
	case model.ScreenActive:
		return "enter: done  esc: back (timer keeps running)  q: quit"
	case model.ScreenRedeem:
		return "up/down: choose  enter: redeem  esc: back"
	case model.ScreenSchweinehund:
		return "up/down: choose  enter: buy  f: feed next  esc: back"
	case model.ScreenConfess:
		return "up/down: choose  enter: confess  esc: back"
	case model.ScreenSendPoints:
		return "tab: next field  enter: send  esc: back"
	case model.ScreenSettings:
		return "r: reset  esc: back  q: quit"
	}
	return ""
}
