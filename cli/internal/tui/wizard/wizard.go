// ABOUTME: Lottery setup wizard as a bubbletea model
// ABOUTME: Uses huh forms with a step indicator to collect the keyword and winner count

package wizard

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/live-lottery/cli/internal/tui/icons"
	"github.com/markalston/live-lottery/cli/internal/tui/styles"
)

// MaxWinners caps the winner count accepted by the form
const MaxWinners = 999

// Setup is the result of the wizard
type Setup struct {
	Keyword     string
	WinnerCount int
}

// WizardCompleteMsg is sent when the wizard finishes successfully
type WizardCompleteMsg struct {
	Setup Setup
}

// WizardCancelledMsg is sent when the wizard is cancelled
type WizardCancelledMsg struct{}

// Wizard manages the lottery setup flow as a bubbletea model
type Wizard struct {
	form        *huh.Form
	step        int
	width       int
	suggestions []string

	// Form field values (strings for huh)
	keyword     string
	winnerCount string
}

var stepNames = []string{"Keyword", "Winners"}

// createTheme returns a huh theme matching the app palette
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	gray := lipgloss.Color("#9CA3AF")
	grayLight := lipgloss.Color("#E5E7EB")
	red := lipgloss.Color("#F87171")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(styles.Primary).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(grayLight)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(styles.Primary)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(styles.Primary)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

// New creates a wizard prefilled with the current setup.
// suggestions are offered while typing the keyword.
func New(current Setup, suggestions []string) *Wizard {
	if current.WinnerCount < 1 {
		current.WinnerCount = 1
	}
	w := &Wizard{
		step:        1,
		keyword:     current.Keyword,
		winnerCount: strconv.Itoa(current.WinnerCount),
		suggestions: suggestions,
	}
	w.form = w.createStep1Form()
	return w
}

func (w *Wizard) createStep1Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Keyword").
				Description("Only chat messages containing this text count. Leave empty to accept every message.").
				Placeholder("e.g., lucky").
				CharLimit(32).
				Suggestions(w.suggestions).
				Value(&w.keyword),
		).Title("Step 1: Keyword").
			Description("What should viewers send to enter?"),
	).WithTheme(createTheme())
}

func (w *Wizard) createStep2Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Number of winners").
				Description("Type a number and press Enter to finish").
				Placeholder("e.g., 3").
				CharLimit(3).
				Value(&w.winnerCount).
				Validate(validateWinnerCount),
		).Title("Step 2: Winners").
			Description("Fewer winners are drawn if not enough viewers take part"),
	).WithTheme(createTheme())
}

// Init implements tea.Model
func (w *Wizard) Init() tea.Cmd {
	return w.form.Init()
}

// Update implements tea.Model
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return w, func() tea.Msg { return WizardCancelledMsg{} }
		}
	}

	form, cmd := w.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.form = f
	}

	if w.form.State == huh.StateCompleted {
		return w.advanceStep()
	}

	return w, cmd
}

func (w *Wizard) advanceStep() (tea.Model, tea.Cmd) {
	switch w.step {
	case 1:
		w.keyword = strings.TrimSpace(w.keyword)
		w.step = 2
		w.form = w.createStep2Form()
		return w, w.form.Init()

	case 2:
		setup := w.Setup()
		return w, func() tea.Msg {
			return WizardCompleteMsg{Setup: setup}
		}
	}

	return w, nil
}

// Setup returns the values collected so far
func (w *Wizard) Setup() Setup {
	n, err := strconv.Atoi(strings.TrimSpace(w.winnerCount))
	if err != nil || n < 1 {
		n = 1
	}
	return Setup{Keyword: strings.TrimSpace(w.keyword), WinnerCount: n}
}

// SetWidth sets the wizard width for proper rendering
func (w *Wizard) SetWidth(width int) {
	w.width = width
}

// View implements tea.Model
func (w *Wizard) View() string {
	var sb strings.Builder

	sb.WriteString(w.renderProgress())
	sb.WriteString("\n\n")
	sb.WriteString(w.form.View())

	return sb.String()
}

// renderProgress renders the step indicator
func (w *Wizard) renderProgress() string {
	var steps []string
	for i, name := range stepNames {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		switch {
		case stepNum < w.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case stepNum == w.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}

	title := lipgloss.NewStyle().Foreground(styles.Primary).Render("Lottery setup")
	return title + "  " + strings.Join(steps, "    ")
}

func validateWinnerCount(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	if v > MaxWinners {
		return fmt.Errorf("must be at most %d", MaxWinners)
	}
	return nil
}
