package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"kopilka/internal/cache"
	"kopilka/internal/core"
	"kopilka/internal/ledger"
	"kopilka/internal/log"
)

// AdviceGenerator produces a short human-readable spending analysis for
// a period snapshot. Implementations may be unavailable (no API key);
// the server degrades the advice endpoint rather than failing startup.
type AdviceGenerator interface {
	Generate(ctx context.Context, stats core.PeriodStats, period core.Period) (string, error)
}

type Server struct {
	http.Server
	ledger      *ledger.Manager
	advisor     AdviceGenerator
	rateLimiter *rateLimiter

	// Derived-state caches, cleared wholesale on every mutation.
	statsCache    *cache.LRUCache[core.PeriodStats]
	monthCache    *cache.LRUCache[core.Stats]
	forecastCache *cache.LRUCache[core.Forecast]
	cacheManager  *cache.Manager

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run http.Server.
func NewServer(addr string, lg *ledger.Manager, advisor AdviceGenerator) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:        lg,
		advisor:       advisor,
		rateLimiter:   newRateLimiter(),
		statsCache:    cache.NewLRUCache[core.PeriodStats](16, time.Minute),
		monthCache:    cache.NewLRUCache[core.Stats](100, 5*time.Minute),
		forecastCache: cache.NewLRUCache[core.Forecast](32, time.Minute),
		cacheManager:  cache.NewManager(),
		startedAt:     time.Now(),
	}

	s.cacheManager.Register(s.statsCache)
	s.cacheManager.Register(s.monthCache)
	s.cacheManager.Register(s.forecastCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Every request carries a component logger in its context;
	// handlers retrieve it with log.FromContext.
	httpLogger := log.New(log.Config{Component: log.ComponentHTTP})
	s.Server.Handler = log.Middleware(httpLogger)(mux)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/transactions", s.withRequestContext(s.handleTransactions))
	mux.HandleFunc("/api/transactions/", s.withRequestContext(s.handleTransactionByID))
	mux.HandleFunc("/api/balances", s.withRequestContext(s.handleBalances))
	mux.HandleFunc("/api/stats", s.withRequestContext(s.handleStats))
	mux.HandleFunc("/api/forecast", s.withRequestContext(s.handleForecast))
	mux.HandleFunc("/api/goal", s.withRequestContext(s.handleGoal))
	mux.HandleFunc("/api/categories", s.withRequestContext(s.handleCategories))
	mux.HandleFunc("/api/advice", s.withRequestContext(s.handleAdvice))

	return s
}

// invalidateDerived drops every cached derived result. Any mutation can
// shift any window, so per-key invalidation buys nothing here.
func (s *Server) invalidateDerived() {
	s.statsCache.Clear()
	s.monthCache.Clear()
	s.forecastCache.Clear()
}

// withRequestContext adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withRequestContext(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)
		reqLog := log.FromContext(ctx)

		reqLog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		// Apply rate limiting to mutating requests
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			reqLog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		reqLog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.ledger == nil {
		checks["ledger"] = "failed: not wired"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["ledger"] = "ok"
	}

	if s.advisor == nil {
		checks["advice"] = "disabled"
	} else {
		checks["advice"] = "ok"
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
