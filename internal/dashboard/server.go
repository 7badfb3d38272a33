package dashboard

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/ops-dashboard/internal/config"
	"github.com/sells-group/ops-dashboard/internal/loader"
)

//go:embed static
var staticFS embed.FS

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsboard_http_requests_total",
		Help: "HTTP requests served, by route and status class.",
	}, []string{"route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "opsboard_http_request_duration_seconds",
		Help:    "HTTP request latency, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// Server serves the dashboard page and its JSON API.
type Server struct {
	loader *loader.Loader
	win    config.WindowConfig
	cfg    config.ServerConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewServer wires a Server over a memoized loader.
func NewServer(l *loader.Loader, cfg config.ServerConfig, win config.WindowConfig) *Server {
	return &Server{
		loader:   l,
		win:      win,
		cfg:      cfg,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.throttle)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/api/v1/snapshot", s.handleSnapshot)
	r.Get("/api/v1/weekly", s.handleWeekly)

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/*", http.FileServer(http.FS(static)))

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	b, err := s.loader.Load(r.Context())
	if err != nil {
		zap.L().Error("snapshot load failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "load failed"})
		return
	}
	writeJSON(w, http.StatusOK, Build(b, s.win))
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	b, err := s.loader.Load(r.Context())
	if err != nil {
		zap.L().Error("weekly load failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "load failed"})
		return
	}
	snap := Build(b, s.win)
	writeJSON(w, http.StatusOK, map[string]any{
		"weekly_otd":   snap.WeeklyOTD,
		"review_trend": snap.ReviewTrend,
		"baselines":    snap.Baselines,
	})
}

// requestID tags every request with a UUID for log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Debug("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// throttle applies a per-client token bucket.
func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RateLimitRPS > 0 && !s.limiter(clientKey(r)).Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(s.cfg.RateLimitRPS), s.cfg.RateBurst)
		s.limiters[key] = l
	}
	return l
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// observe records request count and latency.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		requestsTotal.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
