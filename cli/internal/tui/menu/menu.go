// ABOUTME: Login method selection menu shown before authentication
// ABOUTME: Lets the user choose between scanning a QR code and pasting a cookie

package menu

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// Method represents the selected login method
type Method int

const (
	MethodQRCode Method = iota
	MethodCookie
)

// MethodSelectedMsg is sent once the user picks a method
type MethodSelectedMsg struct {
	Method Method
}

// Menu represents the login method selection menu
type Menu struct {
	form     *huh.Form
	selected Method
}

type option struct {
	label string
	value Method
}

var options = []option{
	{label: "Scan QR code with the mobile app", value: MethodQRCode},
	{label: "Paste a browser cookie", value: MethodCookie},
}

// New creates a new login method menu with the QR code preselected
func New() *Menu {
	m := &Menu{selected: MethodQRCode}
	m.form = m.buildForm()
	return m
}

func (m *Menu) buildForm() *huh.Form {
	var opts []huh.Option[Method]
	for _, opt := range options {
		opts = append(opts, huh.NewOption(opt.label, opt.value))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Method]().
				Title("How do you want to log in?").
				Options(opts...).
				Value(&m.selected),
		),
	).WithTheme(huh.ThemeBase()).WithShowHelp(false)
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model. The form is rebuilt after each selection so the
// menu can be shown again without recreating it.
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		selected := m.selected
		m.form = m.buildForm()
		return m, tea.Batch(m.form.Init(), func() tea.Msg {
			return MethodSelectedMsg{Method: selected}
		})
	}

	return m, cmd
}

// Selected returns the currently highlighted method
func (m *Menu) Selected() Method {
	return m.selected
}

// View implements tea.Model
func (m *Menu) View() string {
	return m.form.View()
}

// String returns the string representation of a Method
func (lm Method) String() string {
	switch lm {
	case MethodQRCode:
		return "qrcode"
	case MethodCookie:
		return "cookie"
	default:
		return "unknown"
	}
}
