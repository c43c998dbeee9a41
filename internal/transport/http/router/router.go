// Package router assembles the HTTP surface: JSON API, websocket endpoint and
// cookie-gated pages.
package router

import (
	"net/http"
	"net/netip"
	"net/url"

	"github.com/vedran77/pokehire/internal/auth"
	"github.com/vedran77/pokehire/internal/config"
	"github.com/vedran77/pokehire/internal/logging"
	"github.com/vedran77/pokehire/internal/service"
	"github.com/vedran77/pokehire/internal/transport/http/handlers"
	"github.com/vedran77/pokehire/internal/transport/http/middleware"
	"github.com/vedran77/pokehire/internal/transport/ws"
)

type Deps struct {
	Config   *config.Config
	Log      logging.Logger
	Verifier auth.SessionVerifier

	Auth      *service.AuthService
	Profiles  *service.ProfileService
	Contracts *service.ContractService
	Teams     *service.TeamService

	Hub *ws.Hub
	// Limiter throttles login attempts; nil disables it.
	Limiter middleware.Limiter
	// TrustedProxies may set X-Forwarded-For for rate limiting.
	TrustedProxies []netip.Prefix
}

func New(d Deps) http.Handler {
	cfg := d.Config

	authHandler := handlers.NewAuthHandler(d.Auth, handlers.SessionCookie{
		Name:   cfg.CookieName,
		Secure: cfg.CookieSecure,
		TTL:    cfg.TokenTTL,
	}, d.Log)
	contractHandler := handlers.NewContractHandler(d.Contracts, d.Log)
	userHandler := handlers.NewUserHandler(d.Profiles, d.Log)
	teamHandler := handlers.NewTeamHandler(d.Teams, d.Log)

	requireAuth := middleware.Auth(d.Verifier)
	loginLimit := func(h http.Handler) http.Handler { return h }
	if d.Limiter != nil {
		loginLimit = middleware.RateLimit(d.Limiter, "login", cfg.LoginRateLimit, cfg.LoginRateWindow, d.TrustedProxies, d.Log)
	}

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.Handle("POST /api/auth/login", loginLimit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/users/contractors", userHandler.ListContractors)

	// Protected - Account
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandler.Me)))

	// Protected - Contracts
	mux.Handle("POST /api/contracts/create", requireAuth(http.HandlerFunc(contractHandler.Create)))
	mux.Handle("GET /api/contracts/user", requireAuth(http.HandlerFunc(contractHandler.ListForUser)))
	mux.Handle("POST /api/contracts/accept", requireAuth(http.HandlerFunc(contractHandler.Accept)))
	mux.Handle("POST /api/contracts/reject", requireAuth(http.HandlerFunc(contractHandler.Reject)))
	mux.Handle("POST /api/contracts/complete", requireAuth(http.HandlerFunc(contractHandler.Complete)))

	// Protected - Teams
	mux.Handle("GET /api/teams/get", requireAuth(http.HandlerFunc(teamHandler.Get)))
	mux.Handle("POST /api/teams/save", requireAuth(http.HandlerFunc(teamHandler.Save)))

	// WebSocket
	if d.Hub != nil {
		mux.Handle("GET /ws", ws.ServeWS(d.Hub, d.Verifier, originHosts(cfg.CORSAllowedOrigins)))
	}

	// Pages
	mux.Handle("GET /", http.FileServer(http.Dir(cfg.WebDir)))

	gate := middleware.Gate(middleware.GateConfig{
		CookieName:        cfg.CookieName,
		ProtectedPrefixes: cfg.ProtectedPrefixes,
		LoginPath:         cfg.LoginPath,
	}, d.Verifier)

	return middleware.Logging(d.Log)(middleware.CORS(cfg.CORSAllowedOrigins)(gate(mux)))
}

// originHosts turns CORS origins into the host patterns the websocket
// handshake checks.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			hosts = append(hosts, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}
