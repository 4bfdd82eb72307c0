// ABOUTME: Auth session controller driving QR and cookie login against the backend
// ABOUTME: Owns the QR poll loop, the confirmation guard and the login state machine

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/live-lottery/cli/internal/client"
	"github.com/markalston/live-lottery/cli/internal/tui/debuglog"
	"github.com/markalston/live-lottery/cli/internal/tui/notify"
	"github.com/markalston/live-lottery/cli/internal/tui/schedule"
	qrcode "github.com/skip2/go-qrcode"
)

// State is the login state of the session
type State int

const (
	Idle State = iota
	QrPending
	Verifying
	Authenticated
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case QrPending:
		return "qr-pending"
	case Verifying:
		return "verifying"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Inner QR status codes reported by the platform
const (
	CodeQRExpired = 86038
	CodeQRScanned = 86090
)

// PollInterval is the delay between QR status checks
const PollInterval = 2 * time.Second

const (
	issueTimeout   = 10 * time.Second
	pollTimeout    = 5 * time.Second
	confirmTimeout = 15 * time.Second
	cookieTimeout  = 15 * time.Second
	requestTimeout = 10 * time.Second
)

// UnknownAccount is the identity used when account info cannot be fetched
var UnknownAccount = client.Account{ID: 0, Name: "Unknown"}

// Backend is the slice of the API client the controller calls
type Backend interface {
	IsLoggedIn(ctx context.Context) (bool, error)
	CookieLogin(ctx context.Context, cookie string) (string, error)
	IssueQRCode(ctx context.Context) (*client.QRCode, error)
	CheckQRStatus(ctx context.Context, key string) (*client.QRStatus, error)
	ConfirmQRLogin(ctx context.Context, loginURL string) (string, error)
	AccountInfo(ctx context.Context) (*client.Account, error)
	Logout(ctx context.Context) error
}

// AuthenticatedMsg is published once login completes
type AuthenticatedMsg struct {
	Account client.Account
}

// LoggedOutMsg is published once the logout request has finished
type LoggedOutMsg struct {
	Err error
}

type resumeMsg struct {
	gen      uint64
	loggedIn bool
	err      error
}

type qrIssuedMsg struct {
	gen uint64
	qr  *client.QRCode
	err error
}

type qrStatusMsg struct {
	gen    uint64
	key    string
	status *client.QRStatus
	err    error
}

type confirmedMsg struct {
	gen     uint64
	key     string
	message string
	err     error
}

type cookieLoginMsg struct {
	gen     uint64
	message string
	err     error
}

type accountMsg struct {
	gen     uint64
	account *client.Account
	err     error
}

// confirmation tracks which QR key, if any, has a confirm call in flight
type confirmation struct {
	key      string
	inFlight bool
}

func (c *confirmation) begin(key string) bool {
	if c.inFlight && c.key == key {
		return false
	}
	c.key = key
	c.inFlight = true
	return true
}

func (c *confirmation) covers(key string) bool {
	return c.inFlight && c.key == key
}

func (c *confirmation) finish(key string) bool {
	if !c.covers(key) {
		return false
	}
	c.inFlight = false
	return true
}

func (c *confirmation) reset() {
	*c = confirmation{}
}

// Controller is the auth session state machine. It runs on the bubbletea
// event loop: every operation returns a command and results come back
// through Update.
type Controller struct {
	backend Backend
	sched   *schedule.Scheduler

	state   State
	qrKey   string
	qrURL   string
	qrImage string
	account *client.Account
	err     error

	poll    *schedule.Task
	confirm confirmation
	// busy is set while an issuance, cookie login or account fetch is in flight
	busy bool
	// gen is bumped whenever in-flight results must be discarded
	gen uint64
}

// New creates an idle controller
func New(backend Backend, sched *schedule.Scheduler) *Controller {
	return &Controller{backend: backend, sched: sched}
}

// State returns the current login state
func (c *Controller) State() State { return c.state }

// QRKey returns the key of the pending QR code
func (c *Controller) QRKey() string { return c.qrKey }

// QRURL returns the URL encoded in the pending QR code
func (c *Controller) QRURL() string { return c.qrURL }

// QRImage returns the pending QR code rendered for a terminal
func (c *Controller) QRImage() string { return c.qrImage }

// Busy reports whether a login request is in flight
func (c *Controller) Busy() bool { return c.busy || c.state == Verifying }

// Err returns the last failure, wrapped around one of the package sentinels
func (c *Controller) Err() error { return c.err }

// Polling reports whether the QR poll loop is live
func (c *Controller) Polling() bool {
	return c.poll != nil && !c.poll.Canceled()
}

// Account returns a copy of the logged-in identity, or nil
func (c *Controller) Account() *client.Account {
	if c.account == nil {
		return nil
	}
	a := *c.account
	return &a
}

func (c *Controller) canStartLogin() bool {
	return (c.state == Idle || c.state == Failed) && !c.busy
}

// Resume asks the backend whether a persisted login is still valid and,
// if so, completes login without user input.
func (c *Controller) Resume() tea.Cmd {
	if !c.canStartLogin() {
		return nil
	}
	c.busy = true
	c.gen++
	gen := c.gen
	backend := c.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		loggedIn, err := backend.IsLoggedIn(ctx)
		return resumeMsg{gen: gen, loggedIn: loggedIn, err: err}
	}
}

// RequestQRLogin issues a new QR code. It is a no-op unless the
// session is Idle or Failed with no other login request in flight.
func (c *Controller) RequestQRLogin() tea.Cmd {
	if !c.canStartLogin() {
		return nil
	}
	c.busy = true
	c.err = nil
	c.gen++
	gen := c.gen
	backend := c.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), issueTimeout)
		defer cancel()
		qr, err := backend.IssueQRCode(ctx)
		return qrIssuedMsg{gen: gen, qr: qr, err: err}
	}
}

// SubmitCookieLogin logs in with a browser cookie string
func (c *Controller) SubmitCookieLogin(cookie string) tea.Cmd {
	if !c.canStartLogin() {
		return nil
	}
	cookie = strings.TrimSpace(cookie)
	if cookie == "" {
		c.err = ErrEmptyCookie
		return notify.Emit("Please enter a cookie")
	}

	c.busy = true
	c.err = nil
	c.gen++
	gen := c.gen
	backend := c.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cookieTimeout)
		defer cancel()
		message, err := backend.CookieLogin(ctx, cookie)
		return cookieLoginMsg{gen: gen, message: message, err: err}
	}
}

// Logout clears the session from any state and tells the backend to
// forget the login. The local state is Idle even if that call fails.
func (c *Controller) Logout() tea.Cmd {
	c.reset()
	c.account = nil
	c.state = Idle
	c.err = nil

	backend := c.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return LoggedOutMsg{Err: backend.Logout(ctx)}
	}
}

// Stop tears the controller down: the poll loop is cancelled and
// results still in flight are discarded when they arrive.
func (c *Controller) Stop() {
	c.reset()
	if c.state == QrPending || c.state == Verifying {
		c.state = Idle
	}
}

// reset cancels the poll loop and invalidates every in-flight request
func (c *Controller) reset() {
	c.poll.Cancel()
	c.poll = nil
	c.confirm.reset()
	c.busy = false
	c.gen++
	c.clearQR()
}

func (c *Controller) clearQR() {
	c.qrKey = ""
	c.qrURL = ""
	c.qrImage = ""
}

// Update handles the controller's own messages and ignores everything else
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case schedule.FireMsg:
		return c.handleTick(msg)
	case resumeMsg:
		return c.handleResume(msg)
	case qrIssuedMsg:
		return c.handleIssued(msg)
	case qrStatusMsg:
		return c.handleStatus(msg)
	case confirmedMsg:
		return c.handleConfirmed(msg)
	case cookieLoginMsg:
		return c.handleCookieLogin(msg)
	case accountMsg:
		return c.handleAccount(msg)
	case LoggedOutMsg:
		if msg.Err != nil {
			return notify.Emit("Logout failed: " + msg.Err.Error())
		}
		return notify.Emit("Logged out")
	}
	return nil
}

func (c *Controller) handleResume(msg resumeMsg) tea.Cmd {
	if msg.gen != c.gen {
		return nil
	}
	if msg.err != nil || !msg.loggedIn {
		debuglog.Error("resume login check", msg.err)
		c.busy = false
		return nil
	}
	return c.fetchAccount()
}

func (c *Controller) handleIssued(msg qrIssuedMsg) tea.Cmd {
	if msg.gen != c.gen {
		return nil
	}
	c.busy = false

	if msg.err != nil {
		return c.issueFailed(msg.err)
	}

	image, err := renderQR(msg.qr.URL)
	if err != nil {
		return c.issueFailed(err)
	}

	c.state = QrPending
	c.qrKey = msg.qr.Key
	c.qrURL = msg.qr.URL
	c.qrImage = image
	c.confirm.reset()
	c.poll = c.sched.Every("qr-status", PollInterval)

	return tea.Batch(
		c.poll.Next(),
		notify.Emit("Please scan the QR code with the mobile app"),
	)
}

func (c *Controller) issueFailed(err error) tea.Cmd {
	c.state = Idle
	c.err = fmt.Errorf("%w: %w", ErrQRIssuanceFailed, err)
	return notify.Emit("Failed to get QR code: " + err.Error())
}

func (c *Controller) handleTick(msg schedule.FireMsg) tea.Cmd {
	if !c.poll.Owns(msg) || c.state != QrPending {
		return nil
	}

	next := c.poll.Next()
	key := c.qrKey
	if c.confirm.covers(key) {
		return next
	}

	gen := c.gen
	backend := c.backend
	return tea.Batch(next, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
		defer cancel()
		status, err := backend.CheckQRStatus(ctx, key)
		return qrStatusMsg{gen: gen, key: key, status: status, err: err}
	})
}

func (c *Controller) handleStatus(msg qrStatusMsg) tea.Cmd {
	if msg.gen != c.gen || msg.key != c.qrKey || c.state != QrPending {
		return nil
	}
	if msg.err != nil {
		debuglog.Warn("qr status check failed", "error", msg.err)
		return nil
	}

	status := msg.status
	switch {
	case status.Code == 0 && status.Inner.Code == 0:
		if !c.confirm.begin(msg.key) {
			return nil
		}
		c.poll.Cancel()
		c.state = Verifying
		return tea.Batch(
			notify.Emit("Verifying login..."),
			c.confirmLogin(msg.key, status.Inner.URL),
		)
	case status.Inner.Code == CodeQRExpired:
		c.poll.Cancel()
		c.state = Failed
		c.err = ErrQRExpired
		c.clearQR()
		return notify.Emit("QR code expired, please get it again")
	case status.Inner.Code == CodeQRScanned:
		return notify.Emit("Scanned, please confirm on mobile")
	}
	return nil
}

func (c *Controller) confirmLogin(key, loginURL string) tea.Cmd {
	gen := c.gen
	backend := c.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), confirmTimeout)
		defer cancel()
		message, err := backend.ConfirmQRLogin(ctx, loginURL)
		return confirmedMsg{gen: gen, key: key, message: message, err: err}
	}
}

func (c *Controller) handleConfirmed(msg confirmedMsg) tea.Cmd {
	if msg.gen != c.gen || !c.confirm.finish(msg.key) {
		return nil
	}

	if msg.err != nil {
		c.state = Failed
		c.err = fmt.Errorf("%w: %w", ErrQRConfirmationFailed, msg.err)
		c.clearQR()
		return notify.Emit("Login failed: " + msg.err.Error())
	}

	return tea.Batch(c.announce(msg.message), c.fetchAccount())
}

func (c *Controller) handleCookieLogin(msg cookieLoginMsg) tea.Cmd {
	if msg.gen != c.gen {
		return nil
	}

	if msg.err != nil {
		c.busy = false
		c.state = Idle
		c.err = fmt.Errorf("%w: %w", ErrCookieLoginFailed, msg.err)
		return notify.Emit("Login failed: " + msg.err.Error())
	}

	return tea.Batch(c.announce(msg.message), c.fetchAccount())
}

func (c *Controller) announce(message string) tea.Cmd {
	if message == "" {
		return nil
	}
	return notify.Emit(message)
}

func (c *Controller) fetchAccount() tea.Cmd {
	c.busy = true
	gen := c.gen
	backend := c.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		account, err := backend.AccountInfo(ctx)
		return accountMsg{gen: gen, account: account, err: err}
	}
}

func (c *Controller) handleAccount(msg accountMsg) tea.Cmd {
	if msg.gen != c.gen {
		return nil
	}
	c.busy = false
	c.clearQR()

	account := msg.account
	if msg.err != nil || account == nil {
		debuglog.Error("account info unavailable", msg.err)
		c.err = fmt.Errorf("%w: %v", ErrAccountInfoUnavailable, msg.err)
		placeholder := UnknownAccount
		account = &placeholder
	} else {
		c.err = nil
	}

	c.account = account
	c.state = Authenticated

	published := *account
	return func() tea.Msg {
		return AuthenticatedMsg{Account: published}
	}
}

func renderQR(url string) (string, error) {
	code, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to render QR code: %w", err)
	}
	return code.ToSmallString(false), nil
}
