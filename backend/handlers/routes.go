// ABOUTME: Declarative route table and mux assembly for the API
// ABOUTME: Applies logging, CORS, rate limiting and the login gate per route

package handlers

import (
	"net/http"
	"time"

	"github.com/markalston/live-lottery/backend/config"
	"github.com/markalston/live-lottery/backend/middleware"
)

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc

	// RequiresLogin rejects the request with 401 while logged out.
	RequiresLogin bool
	// AuthLimited counts the request against the stricter login rate limit.
	AuthLimited bool
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},
		{Method: http.MethodGet, Path: "/api/v1/openapi.yaml", Handler: h.OpenAPISpec},

		// Auth
		{Method: http.MethodPost, Path: "/api/v1/auth/cookie", Handler: h.CookieLogin, AuthLimited: true},
		{Method: http.MethodGet, Path: "/api/v1/auth/status", Handler: h.AuthStatus},
		{Method: http.MethodGet, Path: "/api/v1/auth/account", Handler: h.Account, RequiresLogin: true},
		{Method: http.MethodPost, Path: "/api/v1/auth/qrcode", Handler: h.IssueQRCode, AuthLimited: true},
		{Method: http.MethodGet, Path: "/api/v1/auth/qrcode/status", Handler: h.QRCodeStatus},
		{Method: http.MethodPost, Path: "/api/v1/auth/qrcode/confirm", Handler: h.ConfirmQRLogin, AuthLimited: true},
		{Method: http.MethodPost, Path: "/api/v1/auth/logout", Handler: h.Logout},

		// Settings
		{Method: http.MethodGet, Path: "/api/v1/rooms", Handler: h.ListRooms},
		{Method: http.MethodPost, Path: "/api/v1/rooms", Handler: h.AddRoom},
		{Method: http.MethodDelete, Path: "/api/v1/rooms/{id}", Handler: h.RemoveRoom},
		{Method: http.MethodGet, Path: "/api/v1/settings/background", Handler: h.GetBackground},
		{Method: http.MethodPut, Path: "/api/v1/settings/background", Handler: h.SetBackground},

		// Live
		{Method: http.MethodPost, Path: "/api/v1/live/connect", Handler: h.ConnectLive, RequiresLogin: true},
		{Method: http.MethodPost, Path: "/api/v1/live/collection/start", Handler: h.StartCollection, RequiresLogin: true},
		{Method: http.MethodPost, Path: "/api/v1/live/collection/stop", Handler: h.StopCollection, RequiresLogin: true},
		{Method: http.MethodGet, Path: "/api/v1/live/collection", Handler: h.CollectionStatus, RequiresLogin: true},
		{Method: http.MethodGet, Path: "/api/v1/live/participants/count", Handler: h.ParticipantCount, RequiresLogin: true},
		{Method: http.MethodPost, Path: "/api/v1/live/draw", Handler: h.Draw, RequiresLogin: true},
	}
}

// NewMux registers every route behind its middleware chain.
func NewMux(h *Handler, cfg *config.Config) *http.ServeMux {
	var authLimiter, defaultLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		authLimiter = middleware.NewRateLimiter(cfg.RateLimitAuth, time.Minute)
		defaultLimiter = middleware.NewRateLimiter(cfg.RateLimitDefault, time.Minute)
	}
	cors := middleware.CORS(cfg.CORSAllowedOrigins)

	mux := http.NewServeMux()
	for _, route := range h.Routes() {
		limiter := defaultLimiter
		if route.AuthLimited {
			limiter = authLimiter
		}
		chain := []middleware.Middleware{
			middleware.LogRequest,
			cors,
			middleware.RateLimit(limiter, middleware.ClientIP),
		}
		if route.RequiresLogin {
			chain = append(chain, middleware.RequireLogin(h.accounts.IsLoggedIn))
		}
		mux.HandleFunc(route.Method+" "+route.Path, middleware.Chain(route.Handler, chain...))
	}

	// Preflight requests never match a method pattern; CORS answers them here.
	mux.HandleFunc("OPTIONS /api/v1/", middleware.Chain(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, "Not found", http.StatusNotFound)
	}, cors))

	return mux
}
