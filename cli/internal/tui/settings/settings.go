// ABOUTME: Settings screen for watched live rooms and the background image
// ABOUTME: Emits edit requests as messages; the root model performs the backend calls

package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateList state = iota
	stateAddRoom
	stateBackground
)

// AddRoomMsg requests adding a room to the watched list
type AddRoomMsg struct {
	RoomID int64
}

// RemoveRoomMsg requests removing a room from the watched list
type RemoveRoomMsg struct {
	RoomID int64
}

// SetBackgroundMsg requests storing a new background image reference
type SetBackgroundMsg struct {
	Image string
}

// RefreshMsg requests reloading rooms and background from the backend
type RefreshMsg struct{}

// LogoutMsg requests ending the login session
type LogoutMsg struct{}

// CancelledMsg is sent when the user leaves the settings screen
type CancelledMsg struct{}

// Settings is the settings editing component
type Settings struct {
	rooms      []int64
	background string
	cursor     int
	state      state
	textInput  textinput.Model
	err        string
	width      int
	height     int
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dividerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// New creates a settings screen showing the given rooms and background
func New(rooms []int64, background string) *Settings {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 60

	s := &Settings{
		background: background,
		state:      stateList,
		textInput:  ti,
	}
	s.SetRooms(rooms)
	return s
}

// SetRooms replaces the displayed room list, keeping the cursor in range
func (s *Settings) SetRooms(rooms []int64) {
	s.rooms = make([]int64, len(rooms))
	copy(s.rooms, rooms)
	if s.cursor >= s.itemCount() {
		s.cursor = s.itemCount() - 1
	}
}

// SetBackground replaces the displayed background image reference
func (s *Settings) SetBackground(image string) {
	s.background = image
}

// SetError sets an error message to display
func (s *Settings) SetError(msg string) {
	s.err = msg
}

// Editing reports whether a text input has focus
func (s *Settings) Editing() bool {
	return s.state != stateList
}

// Init implements tea.Model
func (s *Settings) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s *Settings) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, nil

	case tea.KeyMsg:
		s.err = ""

		switch s.state {
		case stateList:
			return s.updateList(msg)
		case stateAddRoom:
			return s.updateAddRoom(msg)
		case stateBackground:
			return s.updateBackground(msg)
		}
	}

	return s, nil
}

// itemCount is the rooms plus the "Add room" and "Background image" entries
func (s *Settings) itemCount() int {
	return len(s.rooms) + 2
}

func (s *Settings) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < s.itemCount()-1 {
			s.cursor++
		}
	case "d", "x", "delete", "backspace":
		if s.cursor < len(s.rooms) {
			id := s.rooms[s.cursor]
			return s, func() tea.Msg { return RemoveRoomMsg{RoomID: id} }
		}
	case "enter":
		return s.selectItem()
	case "r":
		return s, func() tea.Msg { return RefreshMsg{} }
	case "L":
		return s, func() tea.Msg { return LogoutMsg{} }
	case "esc", "b":
		return s, func() tea.Msg { return CancelledMsg{} }
	}

	return s, nil
}

func (s *Settings) selectItem() (tea.Model, tea.Cmd) {
	switch {
	case s.cursor < len(s.rooms):
		return s, nil
	case s.cursor == len(s.rooms):
		s.state = stateAddRoom
		s.textInput.Placeholder = "live room id, e.g. 21452505"
		s.textInput.SetValue("")
	default:
		s.state = stateBackground
		s.textInput.Placeholder = "image URL or path"
		s.textInput.SetValue(s.background)
	}
	s.textInput.Focus()
	return s, textinput.Blink
}

func (s *Settings) leaveInput() {
	s.state = stateList
	s.textInput.Blur()
	s.textInput.SetValue("")
}

func (s *Settings) updateAddRoom(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.leaveInput()
		return s, nil
	case "enter":
		id, err := ParseRoomID(s.textInput.Value())
		if err != nil {
			s.err = err.Error()
			return s, nil
		}
		s.leaveInput()
		return s, func() tea.Msg { return AddRoomMsg{RoomID: id} }
	}

	var cmd tea.Cmd
	s.textInput, cmd = s.textInput.Update(msg)
	return s, cmd
}

func (s *Settings) updateBackground(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.leaveInput()
		return s, nil
	case "enter":
		image := strings.TrimSpace(s.textInput.Value())
		s.leaveInput()
		return s, func() tea.Msg { return SetBackgroundMsg{Image: image} }
	}

	var cmd tea.Cmd
	s.textInput, cmd = s.textInput.Update(msg)
	return s, cmd
}

// ParseRoomID validates a user-entered live room id
func ParseRoomID(input string) (int64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("please enter a room id")
	}
	id, err := strconv.ParseInt(input, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("room id must be a positive number")
	}
	return id, nil
}

// View implements tea.Model
func (s *Settings) View() string {
	switch s.state {
	case stateAddRoom:
		return s.viewInput("Add live room")
	case stateBackground:
		return s.viewInput("Background image")
	default:
		return s.viewList()
	}
}

func (s *Settings) item(idx int, label string) string {
	if idx == s.cursor {
		return "> " + selectedStyle.Render(label) + "\n"
	}
	return "  " + normalStyle.Render(label) + "\n"
}

func (s *Settings) viewList() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("Watched rooms:"))
	b.WriteString("\n")
	if len(s.rooms) == 0 {
		b.WriteString(helpStyle.Render("  none yet"))
		b.WriteString("\n")
	}
	for i, id := range s.rooms {
		b.WriteString(s.item(i, strconv.FormatInt(id, 10)))
	}
	b.WriteString("\n")

	dividerWidth := min(40, s.width-4)
	if dividerWidth < 1 {
		dividerWidth = 40
	}
	b.WriteString(dividerStyle.Render(strings.Repeat("─", dividerWidth)))
	b.WriteString("\n")

	b.WriteString(s.item(len(s.rooms), "Add room..."))

	bg := s.background
	if bg == "" {
		bg = "default"
	}
	if s.width > 30 && len(bg) > s.width-30 {
		bg = "..." + bg[len(bg)-(s.width-33):]
	}
	b.WriteString(s.item(len(s.rooms)+1, "Background image: "+bg))

	if s.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + s.err))
	}

	return b.String()
}

func (s *Settings) viewInput(title string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(s.textInput.View())

	if s.err != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Error: " + s.err))
	}

	return b.String()
}
