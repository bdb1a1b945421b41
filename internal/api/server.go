// Package api serves rankings over HTTP: stateless JSON endpoints for
// ranking and proximity, plus loopback-only debug pages for the most
// recent ranking.
package api

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"tailscale.com/tsweb"

	"github.com/banshee-data/model-ranker/internal/httputil"
	"github.com/banshee-data/model-ranker/internal/monitoring"
	"github.com/banshee-data/model-ranker/internal/ranker"
	"github.com/banshee-data/model-ranker/internal/report"
	"github.com/banshee-data/model-ranker/internal/topsis"
	"github.com/banshee-data/model-ranker/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	now   func() time.Time
	newID func() string
	html  report.HTMLOptions

	// limiter throttles /api/ requests; nil means unlimited.
	limiter *rate.Limiter

	mu   sync.Mutex
	last *report.Report
}

func NewServer() *Server {
	return &Server{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// SetRateLimit caps /api/ requests at perSecond with the given burst.
// A non-positive perSecond removes the limit.
func (s *Server) SetRateLimit(perSecond float64, burst int) {
	if perSecond <= 0 {
		s.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// LastReport returns the most recent ranking served, or nil.
func (s *Server) LastReport() *report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Server) setLast(r *report.Report) {
	s.mu.Lock()
	s.last = r
	s.mu.Unlock()
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// rateLimit rejects requests with 429 once the limiter is exhausted.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			httputil.WriteJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/rank", s.rateLimit(http.HandlerFunc(s.rankHandler)))
	mux.Handle("/api/proximity", s.rateLimit(http.HandlerFunc(s.proximityHandler)))
	mux.HandleFunc("/api/version", s.versionHandler)
	return mux
}

// AttachAdminRoutes mounts the debug pages under /debug/. tsweb restricts
// them to loopback and tailnet callers.
func (s *Server) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.HandleFunc("chart", "chart of the most recent ranking", func(w http.ResponseWriter, r *http.Request) {
		last := s.LastReport()
		if last == nil {
			http.Error(w, "No ranking has been served yet", http.StatusNotFound)
			return
		}
		var buf bytes.Buffer
		if err := report.RenderHTML(&buf, s.html, last); err != nil {
			http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	})

	debug.HandleFunc("last", "most recent ranking as JSON", func(w http.ResponseWriter, r *http.Request) {
		last := s.LastReport()
		if last == nil {
			httputil.WriteJSONError(w, http.StatusNotFound, "no ranking has been served yet")
			return
		}
		httputil.WriteJSONOK(w, last)
	})
}

func (s *Server) rankHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req RankRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	ds, err := req.dataset()
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	rep, err := ranker.RankDataset(ds, req.Weights, req.Benefit, report.Meta{
		RunID:       s.newID(),
		GeneratedAt: s.now(),
	})
	if err != nil {
		httputil.WriteRankingError(w, err)
		return
	}
	s.setLast(rep)
	monitoring.Debugf("run %s: ranked %d alternatives", rep.RunID, len(rep.Rows))
	httputil.WriteJSONOK(w, rep)
}

func (s *Server) proximityHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req RankRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	ds, err := req.dataset()
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	prox, err := topsis.Proximity(ds.Matrix, req.Weights, req.Benefit)
	if err != nil {
		httputil.WriteRankingError(w, err)
		return
	}
	resp := ProximityResponse{Criteria: ds.Criteria, Rows: make([]ProximityRow, len(prox))}
	for i, p := range prox {
		resp.Rows[i] = ProximityRow{Name: ds.Models[i], Proximity: p}
	}
	httputil.WriteJSONOK(w, resp)
}

func (s *Server) versionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, VersionInfo{
		Version:   version.Version,
		GitSHA:    version.GitSHA,
		BuildTime: version.BuildTime,
	})
}

// Handler returns the API and debug routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := s.ServeMux()
	s.AttachAdminRoutes(mux)
	return LoggingMiddleware(mux)
}

// ListenAndServe serves Handler on addr until the server fails.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("Serving rankings on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}
