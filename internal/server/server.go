package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"reelbase/internal/app"
	"reelbase/internal/ratelimit"
	"reelbase/internal/util"
	"reelbase/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                      *app.App
	RedisAddr                string
	RedisPassword            string
	SignupRateLimitPerMinute int
	LoginRateLimitPerMinute  int
}

// Server exposes the HTTP endpoints for the catalog backend.
type Server struct {
	app           *app.App
	mux           *http.ServeMux
	signupLimiter *ratelimit.FixedWindowLimiter
	loginLimiter  *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured. Rate limiting on the
// auth endpoints requires redis; with no redis address the limiters are
// disabled.
func New(cfg Config) (*Server, error) {
	s := &Server{
		app: cfg.App,
		mux: http.NewServeMux(),
	}
	if cfg.RedisAddr != "" {
		signupLimit := cfg.SignupRateLimitPerMinute
		if signupLimit <= 0 {
			signupLimit = 5
		}
		loginLimit := cfg.LoginRateLimitPerMinute
		if loginLimit <= 0 {
			loginLimit = 10
		}
		newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
			prefix := "reelbase:ratelimit:" + name
			limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, time.Minute)
			if err != nil {
				return nil, fmt.Errorf("init %s limiter: %w", name, err)
			}
			return limiter, nil
		}
		var err error
		if s.signupLimiter, err = newLimiter("signup", signupLimit); err != nil {
			return nil, err
		}
		if s.loginLimiter, err = newLimiter("login", loginLimit); err != nil {
			return nil, err
		}
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler wrapped in the middleware chain.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	// movies. The double /movies/movies prefix on update mirrors the mount
	// layout the API clients already depend on.
	s.mux.HandleFunc("GET /movies/fetch/{title}", s.handleFetchMovie)
	s.mux.HandleFunc("GET /movies/search", s.handleSearchMovies)
	s.mux.HandleFunc("GET /movies", s.handleListMovies)
	s.mux.HandleFunc("GET /movies/filter", s.handleFilterMovies)
	s.mux.HandleFunc("GET /movies/popular", s.handlePopularMovies)
	s.mux.HandleFunc("GET /movies/category/{category}", s.handleMoviesByCategory)
	s.mux.HandleFunc("GET /movies/{id}", s.handleGetMovie)
	s.mux.Handle("PUT /movies/movies/{id}", s.adminOnly(s.handleUpdateMovie))
	s.mux.HandleFunc("DELETE /movies/{id}", s.handleDeleteMovie)

	// reviews
	s.mux.Handle("POST /reviews/reviews/{movieId}", s.authenticated(s.handleAddReview))
	s.mux.HandleFunc("GET /reviews/reviews/{movieId}", s.handleListReviews)
	s.mux.Handle("PUT /reviews/reviews/{movieId}/{reviewId}", s.authenticated(s.handleEditReview))
	s.mux.Handle("DELETE /reviews/reviews/{movieId}/{reviewId}", s.authenticated(s.handleDeleteReview))
	s.mux.HandleFunc("GET /reviews/movies/ratings/{movieId}", s.handleAverageRating)

	// users
	s.mux.HandleFunc("POST /users/auth/signup", s.handleSignup)
	s.mux.HandleFunc("POST /users/auth/login", s.handleLogin)
	s.mux.Handle("POST /users/auth/logout", s.authenticated(s.handleLogout))
	s.mux.Handle("GET /users/user/profile", s.authenticated(s.handleGetProfile))
	s.mux.Handle("PUT /users/user/profile", s.authenticated(s.handleUpdateProfile))
	s.mux.Handle("GET /users/test-auth", s.authenticated(s.handleTestAuth))
	s.mux.Handle("DELETE /users/admin/delete-user/{uid}", s.adminOnly(s.handleDeleteUser))
	s.mux.Handle("DELETE /users/auth/user/delete", s.authenticated(s.handleDeleteSelf))
	s.mux.HandleFunc("POST /users/auth/forgot-password", s.handleForgotPassword)
	s.mux.HandleFunc("POST /users/auth/reset-password", s.handleResetPassword)
	s.mux.Handle("PUT /users/auth/change-password", s.authenticated(s.handleChangePassword))
	s.mux.Handle("GET /users/admin/users", s.adminOnly(s.handleListUsers))
	s.mux.Handle("POST /users/assign-admin", s.authenticated(s.handleAssignAdmin))
	s.mux.Handle("POST /users/admin/assign-role", s.adminOnly(s.handleAssignRole))

	// watchlist
	s.mux.Handle("POST /watchlist/watchlist/{uid}", s.authenticated(s.handleWatchlistAdd))
	s.mux.Handle("GET /watchlist/watchlist/{uid}", s.authenticated(s.handleWatchlistGet))
	s.mux.Handle("DELETE /watchlist/watchlist/{uid}", s.authenticated(s.handleWatchlistRemove))

	// ml service passthrough
	s.mux.HandleFunc("GET /mlservices/recommendations/{userId}", s.handleRecommendations)
	s.mux.HandleFunc("POST /mlservices/recommendations/train", s.handleTrain)
	s.mux.HandleFunc("POST /mlservices/preferences/{userId}", s.handleSavePreferences)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Message: "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			s.audit(r, "api.authorize", "fail")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) adminOnly(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			s.audit(r, "api.admin.authorize", "fail", "reason", "missing_or_invalid_token")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !user.Admin() {
			s.audit(r, "api.admin.authorize", "fail", "user_id", user.ID, "reason", "forbidden")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		s.audit(r, "api.admin.authorize", "success", "user_id", user.ID)
		next(w, r, user)
	})
}

// authorize resolves the bearer token to a stored user. Admin status comes
// from the persisted claims, not the token payload.
func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	return s.app.UserFromToken(token)
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

// allowRate checks the limiter and writes the 429 itself when denied. A nil
// limiter allows everything.
func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	if limiter == nil {
		return true
	}
	key := r.URL.Path + "|" + util.ClientIP(r)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		slog.Warn("missing bearer prefix", "path", r.URL.Path)
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		slog.Warn("empty bearer token", "path", r.URL.Path)
		return "", false
	}
	return token, true
}
