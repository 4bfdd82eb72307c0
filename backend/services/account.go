// ABOUTME: Account session for the single platform login this backend holds
// ABOUTME: Cookie and QR logins, auto-login from settings, cached account info, logout

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/markalston/live-lottery/backend/cache"
	"github.com/markalston/live-lottery/backend/models"
)

// ErrEmptyCookie is returned for a blank cookie login
var ErrEmptyCookie = errors.New("cookie is empty")

// loginCookieNames are the cookies a confirmed QR login URL must carry
var loginCookieNames = []string{"DedeUserID", "DedeUserID__ckMd5", "SESSDATA", "bili_jct"}

// AccountService holds the login cookie and the account it belongs to
type AccountService struct {
	passport *PassportClient
	store    *SettingsStore
	cache    *cache.Cache[*models.Account]
	group    singleflight.Group

	mu        sync.RWMutex
	cookie    string
	accountID int64
	onLogout  []func()
}

func NewAccountService(passport *PassportClient, store *SettingsStore, c *cache.Cache[*models.Account]) *AccountService {
	return &AccountService{
		passport: passport,
		store:    store,
		cache:    c,
	}
}

// OnLogout registers fn to run after every logout
func (a *AccountService) OnLogout(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onLogout = append(a.onLogout, fn)
}

// AutoLogin restores the session from the stored cookie. A cookie the
// platform rejects is cleared; transport failures leave it for the next start.
func (a *AccountService) AutoLogin(ctx context.Context) {
	cookie := a.store.Cookie()
	if cookie == "" {
		return
	}

	account, err := a.passport.Nav(ctx, cookie)
	if errors.Is(err, ErrNotLoggedIn) {
		slog.Warn("Stored cookie is no longer valid, clearing it")
		if err := a.store.SetCookie(""); err != nil {
			slog.Error("Failed to clear stored cookie", "error", err)
		}
		return
	}
	if err != nil {
		slog.Warn("Auto-login failed, staying logged out", "error", err)
		return
	}

	a.setSession(cookie, account)
	slog.Info("Restored login", "uid", account.ID)
}

// CookieLogin validates a browser cookie and stores it on success.
func (a *AccountService) CookieLogin(ctx context.Context, cookie string) (*models.Account, error) {
	cookie = strings.TrimSpace(cookie)
	if cookie == "" {
		return nil, ErrEmptyCookie
	}
	return a.login(ctx, cookie)
}

// ConfirmQRLogin turns a confirmed QR login URL into a stored cookie.
func (a *AccountService) ConfirmQRLogin(ctx context.Context, loginURL string) (*models.Account, error) {
	u, err := ValidateLoginURL(loginURL)
	if err != nil {
		return nil, err
	}
	cookie, err := cookieFromLoginURL(u)
	if err != nil {
		return nil, err
	}
	return a.login(ctx, cookie)
}

func (a *AccountService) login(ctx context.Context, cookie string) (*models.Account, error) {
	account, err := a.passport.Nav(ctx, cookie)
	if err != nil {
		return nil, fmt.Errorf("validating cookie: %w", err)
	}
	if err := a.store.SetCookie(cookie); err != nil {
		return nil, err
	}
	a.setSession(cookie, account)
	slog.Info("Logged in", "uid", account.ID)
	return account, nil
}

func (a *AccountService) setSession(cookie string, account *models.Account) {
	a.mu.Lock()
	a.cookie = cookie
	a.accountID = account.ID
	a.mu.Unlock()
	a.cache.Set(accountKey(account.ID), account)
}

// IsLoggedIn reports whether a validated cookie is held
func (a *AccountService) IsLoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cookie != "" && a.accountID > 0
}

// Cookie returns the session cookie, or "" when logged out
func (a *AccountService) Cookie() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cookie
}

// Account returns the logged-in account, from cache when fresh.
// Concurrent misses share one platform request.
func (a *AccountService) Account(ctx context.Context) (*models.Account, error) {
	a.mu.RLock()
	cookie, id := a.cookie, a.accountID
	a.mu.RUnlock()
	if cookie == "" || id <= 0 {
		return nil, ErrNotLoggedIn
	}

	key := accountKey(id)
	if account, ok := a.cache.Get(key); ok {
		return account, nil
	}

	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		account, err := a.passport.Nav(ctx, cookie)
		if err != nil {
			return nil, err
		}
		a.cache.Set(key, account)
		return account, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Account), nil
}

// Logout forgets the session and the stored cookie. Logout hooks run even
// when clearing the stored cookie fails.
func (a *AccountService) Logout() error {
	a.mu.Lock()
	a.cookie = ""
	a.accountID = 0
	hooks := append([]func(){}, a.onLogout...)
	a.mu.Unlock()

	a.cache.Purge()
	for _, fn := range hooks {
		fn()
	}
	return a.store.SetCookie("")
}

func accountKey(id int64) string {
	return "account:" + strconv.FormatInt(id, 10)
}

// cookieFromLoginURL builds a cookie header from the login cookies in the URL query.
func cookieFromLoginURL(u *url.URL) (string, error) {
	query := u.Query()
	parts := make([]string, 0, len(loginCookieNames))
	for _, name := range loginCookieNames {
		if value := query.Get(name); value != "" {
			parts = append(parts, name+"="+value)
		}
	}
	if len(parts) < len(loginCookieNames) {
		return "", invalidf("login URL carries %d of %d required cookies", len(parts), len(loginCookieNames))
	}
	return strings.Join(parts, "; "), nil
}

// cookieValue returns the named value from a cookie header
func cookieValue(cookie, name string) string {
	for _, part := range strings.Split(cookie, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && k == name {
			return v
		}
	}
	return ""
}
