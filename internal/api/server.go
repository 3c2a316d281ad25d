package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kanonhq/kanon/internal/log"
	"github.com/kanonhq/kanon/internal/wizard"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds reading request headers (Slowloris guard).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Simulation streams run one upstream completion per strategy variation,
	// so this is sized for the full stream, not a single JSON response.
	WriteTimeout = 15 * time.Minute

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 120 * time.Second
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger      log.Logger
	WizardStore wizard.Store     // Required
	Searcher    Searcher         // Required (seed searcher in demo mode)
	Synthesizer Synthesizer      // Optional: nil disables strategy generation
	Runner      SimulationRunner // Optional: nil disables simulations
	Memo        MemoGenerator    // Optional: nil exports summary only
	Pool        *pgxpool.Pool    // Optional: nil reports demo mode in /ready
	CORSOrigins []string         // Allowed origins for CORS
	IsDev       bool             // Enables HTTP session cookies (no Secure flag)
	TrustProxy  bool             // Trust X-Real-IP/X-Forwarded-For headers
	RateRPS     float64          // Rate limiter refill per IP (0 = default 10/s)
	RateBurst   int              // Rate limiter burst size per IP (0 = default 60)
}

// Server is the wizard's JSON API HTTP server.
type Server struct {
	mux    *http.ServeMux
	hub    *Hub
	logger log.Logger
}

// NewServer creates the API server with all routes configured. The hub's
// delivery goroutine is started by Run.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.WizardStore == nil {
		return nil, errors.New("wizard store is required")
	}
	if cfg.Searcher == nil {
		return nil, errors.New("searcher is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	hub := NewHub(logger)

	rh := &researchHandler{searcher: cfg.Searcher, logger: logger}
	sh := &strategyHandler{synth: cfg.Synthesizer, store: cfg.WizardStore, logger: logger}
	wh := &wizardHandler{store: cfg.WizardStore, logger: logger}
	simh := &simulationHandler{runner: cfg.Runner, store: cfg.WizardStore, hub: hub, logger: logger}
	eh := &exportHandler{memo: cfg.Memo, store: cfg.WizardStore, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/similar-cases", rh.similarCases)
	mux.HandleFunc("POST /api/upload-case", rh.uploadCase)
	mux.HandleFunc("POST /api/generate-strategies", sh.generateStrategies)
	mux.HandleFunc("GET /api/twins", twins)
	mux.HandleFunc("GET /api/wizard/{key}", wh.getSlot)
	mux.HandleFunc("PUT /api/wizard/{key}", wh.putSlot)
	mux.HandleFunc("POST /api/run-simulations", simh.runSimulations)
	mux.HandleFunc("POST /api/export", eh.export)
	mux.HandleFunc("GET /ws", hub.serveWS)

	rps := cfg.RateRPS
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(rps, burst)

	// Middleware stack, outermost first:
	//   Recovery → Logging → CORS → RateLimit → Session → Routes
	// CORS must be before RateLimit so preflight OPTIONS gets proper headers.
	var handler http.Handler = mux
	handler = sessionMiddleware(cfg.IsDev)(handler)
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes sit outside the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool))
	topMux.Handle("/", handler)

	return &Server{mux: topMux, hub: hub, logger: logger}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Hub returns the WebSocket progress hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run starts the HTTP server on addr and blocks until ctx is canceled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	hubCtx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
