// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Owns the session and toast channel, routes messages to the auth and lottery controllers

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/markalston/live-lottery/cli/internal/tui/auth"
	"github.com/markalston/live-lottery/cli/internal/tui/dashboard"
	"github.com/markalston/live-lottery/cli/internal/tui/debuglog"
	"github.com/markalston/live-lottery/cli/internal/tui/icons"
	"github.com/markalston/live-lottery/cli/internal/tui/lottery"
	"github.com/markalston/live-lottery/cli/internal/tui/menu"
	"github.com/markalston/live-lottery/cli/internal/tui/notify"
	"github.com/markalston/live-lottery/cli/internal/tui/recentkeywords"
	"github.com/markalston/live-lottery/cli/internal/tui/results"
	"github.com/markalston/live-lottery/cli/internal/tui/schedule"
	"github.com/markalston/live-lottery/cli/internal/tui/session"
	"github.com/markalston/live-lottery/cli/internal/tui/settings"
	"github.com/markalston/live-lottery/cli/internal/tui/styles"
	"github.com/markalston/live-lottery/cli/internal/tui/wizard"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenLottery
	ScreenSettings
	ScreenWizard
)

type loginMode int

const (
	loginMenu loginMode = iota
	loginQR
	loginCookie
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
)

const settingsTimeout = 10 * time.Second

// Backend is every API call the TUI makes
type Backend interface {
	auth.Backend
	lottery.Backend
	WatchedRooms(ctx context.Context) ([]int64, error)
	AddWatchedRoom(ctx context.Context, roomID int64) error
	RemoveWatchedRoom(ctx context.Context, roomID int64) error
	BackgroundImage(ctx context.Context) (string, error)
	SetBackgroundImage(ctx context.Context, image string) error
}

type roomsLoadedMsg struct {
	rooms []int64
	err   error
}

type backgroundLoadedMsg struct {
	image string
	err   error
}

// roomsChangedMsg reports the result of an add or remove
type roomsChangedMsg struct {
	action string
	err    error
}

type backgroundSavedMsg struct {
	image string
	err   error
}

// App is the root model for the TUI
type App struct {
	backend Backend
	sched   *schedule.Scheduler
	session *session.Session
	toasts  *notify.Channel
	auth    *auth.Controller
	lottery *lottery.Controller
	recent  *recentkeywords.RecentKeywords

	screen    Screen
	loginMode loginMode
	width     int
	height    int

	// Child models
	menu           *menu.Menu
	cookieInput    textinput.Model
	spinner        spinner.Model
	settingsScreen *settings.Settings
	wizardScreen   *wizard.Wizard
	dashboard      *dashboard.Dashboard
	resultsView    *results.Results
}

// New creates a new TUI application. Recent keywords are stored under
// configDir; an empty configDir keeps them in memory only.
func New(backend Backend, configDir string) *App {
	return newApp(backend, configDir, schedule.New())
}

func newApp(backend Backend, configDir string, sched *schedule.Scheduler) *App {
	ti := textinput.New()
	ti.Placeholder = "SESSDATA=...; bili_jct=..."
	ti.CharLimit = 4096
	ti.Width = 60
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	a := &App{
		backend:     backend,
		sched:       sched,
		session:     session.New(),
		toasts:      notify.New(sched),
		auth:        auth.New(backend, sched),
		screen:      ScreenLogin,
		loginMode:   loginMenu,
		menu:        menu.New(),
		cookieInput: ti,
		spinner:     sp,
		dashboard:   dashboard.New(0, 0),
	}
	if configDir != "" {
		a.recent = recentkeywords.New(configDir)
	}
	return a
}

// Init implements tea.Model. A login persisted by the backend is resumed
// without user input.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.menu.Init(), a.spinner.Tick, a.auth.Resume())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The toast channel and controllers ignore messages that are not theirs,
	// so every message is offered to each of them first.
	cmds := []tea.Cmd{a.toasts.Update(msg), a.auth.Update(msg)}
	if a.lottery != nil {
		cmds = append(cmds, a.lottery.Update(msg))
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetSize(a.dashboardWidth(), a.contentHeight())
		if a.resultsView != nil {
			a.resultsView.SetWidth(a.sideWidth())
		}
		if a.settingsScreen != nil {
			a.settingsScreen.Update(msg)
		}
		if a.wizardScreen != nil {
			a.wizardScreen.SetWidth(msg.Width)
		}

	case tea.KeyMsg:
		cmds = append(cmds, a.handleKey(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case auth.AuthenticatedMsg:
		cmds = append(cmds, a.handleAuthenticated(msg))

	case menu.MethodSelectedMsg:
		cmds = append(cmds, a.handleMethodSelected(msg))

	case wizard.WizardCompleteMsg:
		a.applySetup(msg.Setup)
		a.wizardScreen = nil
		a.screen = ScreenLottery

	case wizard.WizardCancelledMsg:
		a.wizardScreen = nil
		a.screen = ScreenLottery

	case settings.AddRoomMsg:
		cmds = append(cmds, a.addRoom(msg.RoomID))

	case settings.RemoveRoomMsg:
		cmds = append(cmds, a.removeRoom(msg.RoomID))

	case settings.SetBackgroundMsg:
		cmds = append(cmds, a.saveBackground(msg.Image))

	case settings.RefreshMsg:
		cmds = append(cmds, a.loadSettings())

	case settings.LogoutMsg:
		cmds = append(cmds, a.logout())

	case settings.CancelledMsg:
		a.settingsScreen = nil
		a.screen = ScreenLottery

	case roomsLoadedMsg:
		cmds = append(cmds, a.handleRoomsLoaded(msg))

	case backgroundLoadedMsg:
		a.handleBackgroundLoaded(msg)

	case roomsChangedMsg:
		cmds = append(cmds, a.handleRoomsChanged(msg))

	case backgroundSavedMsg:
		cmds = append(cmds, a.handleBackgroundSaved(msg))

	default:
		// huh forms and text inputs need their internal messages
		switch {
		case a.screen == ScreenWizard && a.wizardScreen != nil:
			cmds = append(cmds, a.updateWizard(msg))
		case a.screen == ScreenLogin && a.loginMode == loginMenu:
			cmds = append(cmds, a.updateMenu(msg))
		case a.screen == ScreenLogin && a.loginMode == loginCookie:
			var cmd tea.Cmd
			a.cookieInput, cmd = a.cookieInput.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	a.syncViews()
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return a.quit()
	}

	switch a.screen {
	case ScreenLogin:
		return a.updateLogin(msg)
	case ScreenLottery:
		return a.updateLottery(msg)
	case ScreenSettings:
		return a.updateSettings(msg)
	case ScreenWizard:
		return a.updateWizard(msg)
	}
	return nil
}

// quit stops both controllers so nothing in flight outlives the program
func (a *App) quit() tea.Cmd {
	a.auth.Stop()
	if a.lottery != nil {
		a.lottery.Stop()
	}
	return tea.Quit
}

func (a *App) updateLogin(msg tea.KeyMsg) tea.Cmd {
	switch a.loginMode {
	case loginMenu:
		if msg.String() == "q" {
			return a.quit()
		}
		return a.updateMenu(msg)

	case loginQR:
		switch msg.String() {
		case "q":
			return a.quit()
		case "esc", "b":
			a.auth.Stop()
			a.loginMode = loginMenu
		case "r":
			return a.auth.RequestQRLogin()
		}

	case loginCookie:
		switch msg.String() {
		case "esc":
			a.auth.Stop()
			a.cookieInput.Blur()
			a.loginMode = loginMenu
			return nil
		case "enter":
			return a.auth.SubmitCookieLogin(a.cookieInput.Value())
		}
		var cmd tea.Cmd
		a.cookieInput, cmd = a.cookieInput.Update(msg)
		return cmd
	}
	return nil
}

func (a *App) updateMenu(msg tea.Msg) tea.Cmd {
	model, cmd := a.menu.Update(msg)
	a.menu = model.(*menu.Menu)
	return cmd
}

func (a *App) handleMethodSelected(msg menu.MethodSelectedMsg) tea.Cmd {
	switch msg.Method {
	case menu.MethodQRCode:
		a.loginMode = loginQR
		return a.auth.RequestQRLogin()
	case menu.MethodCookie:
		a.loginMode = loginCookie
		a.cookieInput.SetValue("")
		return a.cookieInput.Focus()
	}
	return nil
}

func (a *App) handleAuthenticated(msg auth.AuthenticatedMsg) tea.Cmd {
	account := msg.Account
	a.session.SetAccount(&account)
	debuglog.Info("logged in", "uid", account.ID, "name", account.Name)

	a.cookieInput.SetValue("")
	a.cookieInput.Blur()
	a.loginMode = loginMenu
	a.screen = ScreenLottery

	var initCmd tea.Cmd
	if a.lottery == nil {
		a.lottery = lottery.New(a.backend, a.session, a.sched)
		initCmd = a.lottery.Init()
	}
	return tea.Batch(initCmd, a.loadSettings())
}

// logout tears down the lottery run and session before asking the backend
// to forget the login
func (a *App) logout() tea.Cmd {
	if a.lottery != nil {
		a.lottery.Stop()
		a.lottery = nil
	}
	a.session.Clear()
	a.settingsScreen = nil
	a.wizardScreen = nil
	a.resultsView = nil
	a.dashboard = dashboard.New(a.dashboardWidth(), a.contentHeight())
	a.screen = ScreenLogin
	a.loginMode = loginMenu
	return a.auth.Logout()
}

func (a *App) updateLottery(msg tea.KeyMsg) tea.Cmd {
	if a.lottery == nil {
		return nil
	}

	switch msg.String() {
	case "q":
		return a.quit()
	case " ", "enter":
		return a.lottery.Toggle()
	case "n":
		a.lottery.Reset()
	case "+", "=":
		a.lottery.SetWinnerCount(a.lottery.WinnerCount() + 1)
	case "-":
		a.lottery.SetWinnerCount(a.lottery.WinnerCount() - 1)
	case "w":
		if a.canEditSetup() {
			return a.openWizard()
		}
	case "s":
		return a.openSettings()
	case "d":
		return a.toasts.Dismiss()
	}
	return nil
}

// canEditSetup reports whether the keyword and winner count may be changed
func (a *App) canEditSetup() bool {
	switch a.lottery.State() {
	case lottery.Idle, lottery.Drawn:
		return !a.lottery.Drawing()
	}
	return false
}

func (a *App) openWizard() tea.Cmd {
	var suggestions []string
	if a.recent != nil {
		suggestions = a.recent.List()
	}
	current := wizard.Setup{Keyword: a.lottery.Keyword(), WinnerCount: a.lottery.WinnerCount()}
	a.wizardScreen = wizard.New(current, suggestions)
	a.wizardScreen.SetWidth(a.width)
	a.screen = ScreenWizard
	return a.wizardScreen.Init()
}

func (a *App) updateWizard(msg tea.Msg) tea.Cmd {
	if a.wizardScreen == nil {
		return nil
	}
	model, cmd := a.wizardScreen.Update(msg)
	a.wizardScreen = model.(*wizard.Wizard)
	return cmd
}

func (a *App) applySetup(setup wizard.Setup) {
	if a.lottery == nil {
		return
	}
	a.lottery.SetKeyword(setup.Keyword)
	a.lottery.SetWinnerCount(setup.WinnerCount)
	if a.recent != nil {
		if err := a.recent.Add(setup.Keyword); err != nil {
			debuglog.Error("save recent keyword", err)
		}
	}
}

func (a *App) openSettings() tea.Cmd {
	a.settingsScreen = settings.New(a.session.WatchedRooms(), a.session.BackgroundImage())
	a.settingsScreen.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	a.screen = ScreenSettings
	return a.loadSettings()
}

func (a *App) updateSettings(msg tea.KeyMsg) tea.Cmd {
	if a.settingsScreen == nil {
		return nil
	}
	if msg.String() == "q" && !a.settingsScreen.Editing() {
		return a.quit()
	}
	model, cmd := a.settingsScreen.Update(msg)
	a.settingsScreen = model.(*settings.Settings)
	return cmd
}

// loadSettings refreshes the watched rooms and background image from the backend
func (a *App) loadSettings() tea.Cmd {
	backend := a.backend
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), settingsTimeout)
			defer cancel()
			rooms, err := backend.WatchedRooms(ctx)
			return roomsLoadedMsg{rooms: rooms, err: err}
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), settingsTimeout)
			defer cancel()
			image, err := backend.BackgroundImage(ctx)
			return backgroundLoadedMsg{image: image, err: err}
		},
	)
}

func (a *App) loggedIn() bool {
	return a.session.Account() != nil
}

func (a *App) handleRoomsLoaded(msg roomsLoadedMsg) tea.Cmd {
	if !a.loggedIn() {
		return nil
	}
	if msg.err != nil {
		debuglog.Error("load watched rooms", msg.err)
		if a.settingsScreen != nil {
			a.settingsScreen.SetError(msg.err.Error())
		}
		return notify.Emit("Failed to load rooms: " + msg.err.Error())
	}
	a.session.SetWatchedRooms(msg.rooms)
	if a.settingsScreen != nil {
		a.settingsScreen.SetRooms(msg.rooms)
	}
	return nil
}

func (a *App) handleBackgroundLoaded(msg backgroundLoadedMsg) {
	if !a.loggedIn() {
		return
	}
	if msg.err != nil {
		debuglog.Error("load background image", msg.err)
		return
	}
	a.session.SetBackgroundImage(msg.image)
	if a.settingsScreen != nil {
		a.settingsScreen.SetBackground(msg.image)
	}
}

func (a *App) addRoom(roomID int64) tea.Cmd {
	backend := a.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), settingsTimeout)
		defer cancel()
		return roomsChangedMsg{action: "add", err: backend.AddWatchedRoom(ctx, roomID)}
	}
}

func (a *App) removeRoom(roomID int64) tea.Cmd {
	backend := a.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), settingsTimeout)
		defer cancel()
		return roomsChangedMsg{action: "remove", err: backend.RemoveWatchedRoom(ctx, roomID)}
	}
}

// handleRoomsChanged re-reads the room list after an edit so the session
// always mirrors the backend's ordering
func (a *App) handleRoomsChanged(msg roomsChangedMsg) tea.Cmd {
	if !a.loggedIn() {
		return nil
	}
	if msg.err != nil {
		if a.settingsScreen != nil {
			a.settingsScreen.SetError(msg.err.Error())
		}
		return notify.Emit(fmt.Sprintf("Failed to %s room: %s", msg.action, msg.err))
	}

	text := "Room added"
	if msg.action == "remove" {
		text = "Room removed"
	}
	return tea.Batch(notify.Emit(text), a.loadSettings())
}

func (a *App) saveBackground(image string) tea.Cmd {
	backend := a.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), settingsTimeout)
		defer cancel()
		return backgroundSavedMsg{image: image, err: backend.SetBackgroundImage(ctx, image)}
	}
}

func (a *App) handleBackgroundSaved(msg backgroundSavedMsg) tea.Cmd {
	if !a.loggedIn() {
		return nil
	}
	if msg.err != nil {
		if a.settingsScreen != nil {
			a.settingsScreen.SetError(msg.err.Error())
		}
		return notify.Emit("Failed to save background: " + msg.err.Error())
	}
	a.session.SetBackgroundImage(msg.image)
	if a.settingsScreen != nil {
		a.settingsScreen.SetBackground(msg.image)
	}
	return notify.Emit("Background image updated")
}

// syncViews copies controller state into the dashboard and results panes
func (a *App) syncViews() {
	if a.lottery == nil {
		return
	}

	a.dashboard.Update(dashboard.Snapshot{
		Phase:        a.lottery.State().String(),
		Keyword:      a.lottery.Keyword(),
		WinnerCount:  a.lottery.WinnerCount(),
		Participants: a.lottery.ParticipantCount(),
		Rooms:        a.session.WatchedRooms(),
		Elapsed:      a.lottery.Elapsed(),
		Drawing:      a.lottery.Drawing(),
	})

	if a.lottery.State() != lottery.Drawn {
		a.resultsView = nil
		return
	}
	if a.resultsView == nil {
		a.resultsView = results.New(a.lottery.Winners(), a.lottery.WinnerCount(), a.sideWidth())
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLottery:
		content = a.viewLottery()
	case ScreenSettings:
		content = a.viewSettings()
	case ScreenWizard:
		content = a.viewWizard()
	default:
		content = a.viewLogin()
	}

	return a.wrapWithFrame(content)
}

func (a *App) viewLogin() string {
	var b strings.Builder

	switch a.loginMode {
	case loginQR:
		b.WriteString(styles.Title.Render(icons.QRCode.String() + " QR code login"))
		b.WriteString("\n\n")
		b.WriteString(a.viewQR())

	case loginCookie:
		b.WriteString(styles.Title.Render(icons.Cookie.String() + " Cookie login"))
		b.WriteString("\n\n")
		b.WriteString(styles.Subtitle.Render("Paste the cookie from a logged-in browser session"))
		b.WriteString("\n\n")
		b.WriteString(a.cookieInput.View())
		if a.auth.Busy() {
			b.WriteString("\n\n" + a.spinner.View() + " Logging in...")
		}

	default:
		b.WriteString(styles.Title.Render(icons.User.String() + " Log in"))
		b.WriteString("\n\n")
		if a.auth.Busy() {
			b.WriteString(a.spinner.View() + " Checking saved login...\n\n")
		}
		b.WriteString(a.menu.View())
	}

	if err := a.auth.Err(); err != nil && a.auth.State() == auth.Failed {
		b.WriteString("\n\n")
		b.WriteString(styles.StatusCritical.Render("Error: " + err.Error()))
	}

	return b.String()
}

func (a *App) viewQR() string {
	switch a.auth.State() {
	case auth.Verifying:
		return a.spinner.View() + " Verifying login..."
	case auth.Failed:
		return styles.Subtitle.Render("Press r to get a new QR code")
	case auth.QrPending:
		image := a.auth.QRImage()
		if image == "" {
			// The image could not be rendered; the URL still works in a browser
			image = a.auth.QRURL()
		}
		return image + "\n" + styles.Subtitle.Render("Scan with the mobile app, then confirm the login there")
	}

	if a.auth.Busy() {
		return a.spinner.View() + " Fetching QR code..."
	}
	return styles.Subtitle.Render("Press r to get a QR code")
}

// viewLottery renders the dashboard with the results or actions pane
func (a *App) viewLottery() string {
	leftPane := styles.ActivePanel.Width(a.dashboardWidth()).Render(a.dashboard.View())

	var rightPane string
	if a.resultsView != nil {
		rightPane = styles.ActivePanel.Width(a.sideWidth()).Render(a.resultsView.View())
	} else {
		rightPane = styles.Panel.Width(a.sideWidth()).Render(a.viewActions())
	}

	if a.width < minTerminalWidth {
		return lipgloss.JoinVertical(lipgloss.Left, leftPane, rightPane)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

func (a *App) viewActions() string {
	toggle := "Start collecting"
	switch a.lottery.State() {
	case lottery.Connecting:
		toggle = a.spinner.View() + " Connecting..."
	case lottery.Collecting:
		toggle = "Stop and draw"
		if a.lottery.Drawing() {
			toggle = a.spinner.View() + " Drawing..."
		}
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(icons.Settings.String() + " Actions"))
	b.WriteString("\n\n")
	b.WriteString(icons.Live.String() + " " + toggle + "\n")
	b.WriteString(icons.Keyword.String() + " Set keyword and winners\n")
	b.WriteString(icons.Room.String() + " Rooms and settings\n")
	b.WriteString(icons.Quit.String() + " Quit application\n")
	return b.String()
}

func (a *App) viewSettings() string {
	if a.settingsScreen == nil {
		return ""
	}
	return styles.ActivePanel.Width(a.width - panelPadding).Render(a.settingsScreen.View())
}

func (a *App) viewWizard() string {
	if a.wizardScreen != nil {
		return a.wizardScreen.View()
	}
	return ""
}

// dashboardWidth calculates the width for the dashboard pane
func (a *App) dashboardWidth() int {
	if a.width < minTerminalWidth {
		return a.width - panelPadding
	}
	return (a.width - panelPadding) / 2
}

// sideWidth calculates the width for the results or actions pane
func (a *App) sideWidth() int {
	if a.width < minTerminalWidth {
		return a.width - panelPadding
	}
	return a.width - a.dashboardWidth() - 4
}

// contentHeight calculates the height available for dashboard content
func (a *App) contentHeight() int {
	// Header, content newline, panel border+padding (4), toast line, footer
	return a.height - 8
}

// frameWidth guards against zero/small width before WindowSizeMsg is received
func (a *App) frameWidth() int {
	if a.width < minTerminalWidth {
		return minTerminalWidth
	}
	return a.width
}

// renderHeader creates the header bar with app branding and the logged-in account
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftRendered := fmt.Sprintf(" %s %s", icons.App.String(), titleStyle.Render("Live Lottery"))

	rightRendered := ""
	if account := a.session.Account(); account != nil {
		rightRendered = contextStyle.Render(icons.User.String()+" "+account.Name) + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftRendered) - lipgloss.Width(rightRendered) // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	header := "╭─" + leftRendered + strings.Repeat("─", fillWidth) + rightRendered + "─╮"
	return borderStyle.Render(header)
}

// shortcuts returns the keyboard shortcuts for the current screen
func (a *App) shortcuts() []string {
	switch a.screen {
	case ScreenLottery:
		toggle := "Space Start"
		if a.lottery != nil && a.lottery.State() == lottery.Collecting {
			toggle = "Space Draw"
		}
		keys := []string{toggle, "w Setup", "+/- Winners", "s Settings", "q Quit"}
		if a.resultsView != nil {
			keys = append([]string{"n New"}, keys...)
		}
		return keys
	case ScreenSettings:
		return []string{"↑↓ Navigate", "Enter Edit", "d Remove", "r Refresh", "L Logout", "b Back"}
	case ScreenWizard:
		return []string{"Enter Confirm", "Esc Cancel"}
	}

	switch a.loginMode {
	case loginQR:
		return []string{"r New code", "b Back", "q Quit"}
	case loginCookie:
		return []string{"Enter Login", "Esc Back"}
	}
	return []string{"↑↓ Navigate", "Enter Select", "q Quit"}
}

// renderFooter creates the footer with keyboard shortcuts and the participant count
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	shortcuts := a.shortcuts()
	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ")
	leftPlainText := " " + strings.Join(shortcuts, "  ")

	rightText := ""
	rightPlainText := ""
	if a.screen == ScreenLottery && a.lottery != nil && a.lottery.State() == lottery.Collecting {
		status := humanize.Comma(int64(a.lottery.ParticipantCount())) + " participants"
		rightText = statusStyle.Render(status) + " "
		rightPlainText = status + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftPlainText) - lipgloss.Width(rightPlainText) // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

// renderToast renders the notification line, blank when nothing is shown
func (a *App) renderToast() string {
	text := a.toasts.Text()
	if text == "" {
		return ""
	}
	if a.toasts.Visible() {
		return styles.Toast.Render(icons.Info.String() + " " + text)
	}
	return styles.ToastFading.Render(text)
}

// wrapWithFrame wraps content with header, toast line and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderToast())
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI. Debug logs go to configDir/debug.log.
func Run(backend Backend, configDir string, level slog.Level) error {
	if err := debuglog.Init(configDir, level); err != nil {
		return fmt.Errorf("initializing debug log: %w", err)
	}
	defer debuglog.Close()

	p := tea.NewProgram(
		New(backend, configDir),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
