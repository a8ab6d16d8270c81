package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mwilkes/arcadia/internal/handler"
	"github.com/mwilkes/arcadia/internal/middleware"
	"github.com/mwilkes/arcadia/internal/store"
	"github.com/mwilkes/arcadia/internal/view"
	ws "github.com/mwilkes/arcadia/internal/websocket"
)

// Config carries the server's tunables from the environment.
type Config struct {
	CSRFSecret string
}

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	gameH        *handler.GameHandler
	leaderboardH *handler.LeaderboardHandler
	rewardH      *handler.RewardHandler
	sessionStore *store.SessionStore
	userStore    *store.UserStore
	csrf         *middleware.CSRF
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	renderer := view.New(logger.With("component", "view"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	walletStore := store.NewWalletStore(db)
	gameStore := store.NewGameStore(db)
	leaderboardStore := store.NewLeaderboardStore(db)
	rewardStore := store.NewRewardStore(db)
	activityStore := store.NewActivityStore(db)

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, activityStore, renderer, logger.With("component", "auth")),
		gameH:        handler.NewGameHandler(gameStore, userStore, activityStore, hub, renderer, logger.With("component", "game")),
		leaderboardH: handler.NewLeaderboardHandler(leaderboardStore, gameStore, renderer, logger.With("component", "leaderboard")),
		rewardH:      handler.NewRewardHandler(rewardStore, walletStore, hub, renderer, logger.With("component", "reward")),
		sessionStore: sessionStore,
		userStore:    userStore,
		csrf:         middleware.NewCSRF(cfg.CSRFSecret),
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /login", s.authH.LoginPage)
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, behind auth and the CSRF guard
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(s.csrf.Protect(protectedMux)))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)

	mux.HandleFunc("GET /", s.gameH.Dashboard)
	mux.HandleFunc("POST /games/{slug}/play", s.gameH.Play)

	mux.HandleFunc("GET /leaderboard", s.leaderboardH.Leaderboard)

	mux.HandleFunc("GET /rewards", s.rewardH.Catalog)
	mux.HandleFunc("GET /rewards/redeem", s.rewardH.RedeemForm)
	mux.HandleFunc("POST /rewards/redeem", s.rateLimitedHandler(s.rewardH.Redeem))
	mux.HandleFunc("GET /rewards/history", s.rewardH.History)

	mux.HandleFunc("GET /ws", ws.Handle(s.hub, s.logger.With("component", "websocket")))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
