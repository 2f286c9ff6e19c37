package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mikey/phishdash/internal/core"
	"github.com/mikey/phishdash/internal/utils"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	shutdownTimeout = 5 * time.Second
	statusTimeout   = 2 * time.Second
)

// Server implements the browser dashboard
type Server struct {
	controller *core.ScanController
	agent      core.AgentClient
	text       *utils.TextProcessor
	logger     *zap.Logger
	listenAddr string
	refresh    time.Duration

	tmpl       *template.Template
	httpServer *http.Server
	listener   net.Listener

	// baseCtx bounds the scans started from the page; cancelled on Stop
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	cards    []*core.ResultCard
	cardsGen uint64
}

// NewServer creates a new dashboard server
func NewServer(
	controller *core.ScanController,
	agent core.AgentClient,
	text *utils.TextProcessor,
	logger *zap.Logger,
	listenAddr string,
	refresh time.Duration,
) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		controller: controller,
		agent:      agent,
		text:       text,
		logger:     logger,
		listenAddr: listenAddr,
		refresh:    refresh,
		tmpl:       tmpl,
		baseCtx:    ctx,
		cancel:     cancel,
		cards:      []*core.ResultCard{},
	}, nil
}

// Handler returns the dashboard routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /scan", s.handleScan)
	mux.HandleFunc("POST /cards/{index}/toggle", s.handleToggle)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Start starts the dashboard server
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Dashboard starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the address the server listens on, or nil before Start
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop aborts running scans and shuts the server down
func (s *Server) Stop() error {
	s.cancel()
	s.controller.Close()

	var err error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	}

	s.wg.Wait()
	s.logger.Info("Dashboard stopped")
	return err
}

// syncCards rebuilds the card set when the controller replaced its result
// list and returns the current cards with their generation. A snapshot older
// than the cards never rebuilds them.
func (s *Server) syncCards(snap core.Snapshot) ([]*core.ResultCard, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Generation > s.cardsGen {
		s.cards = core.NewResultCards(snap.Emails, s.logger)
		s.cardsGen = snap.Generation
	}
	return s.cards, s.cardsGen
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.controller.Snapshot()
	cards, gen := s.syncCards(snap)

	view := newPageView(snap, cards, gen, s.text, s.refresh)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.tmpl.ExecuteTemplate(w, "dashboard.html", view); err != nil {
		s.logger.Error("Failed to render dashboard", zap.Error(err))
	}
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if s.controller.Loading() {
		s.logger.Info("Scan requested while another is running")
	}

	done := s.controller.ScanInboxAsync(s.baseCtx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-done
	}()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid card index", http.StatusBadRequest)
		return
	}
	gen, err := strconv.ParseUint(r.URL.Query().Get("gen"), 10, 64)
	if err != nil {
		http.Error(w, "invalid generation", http.StatusBadRequest)
		return
	}

	cards, current := s.syncCards(s.controller.Snapshot())

	switch {
	case gen != current:
		s.logger.Debug("Ignoring toggle for a replaced result list",
			zap.Uint64("generation", gen),
			zap.Uint64("current", current))
	case index < 0 || index >= len(cards):
		s.logger.Debug("Ignoring toggle for unknown card", zap.Int("index", index))
	default:
		cards[index].Toggle()
	}

	http.Redirect(w, r, fmt.Sprintf("/#card-%d", index), http.StatusSeeOther)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Snapshot(), s.logger)
}

type healthResponse struct {
	Status     string            `json:"status"`
	Agent      *core.AgentStatus `json:"agent,omitempty"`
	AgentError string            `json:"agent_error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), statusTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	status, err := s.agent.Status(ctx)
	if err != nil {
		s.logger.Debug("Agent status unavailable", zap.Error(err))
		resp.AgentError = "unreachable"
	} else {
		resp.Agent = status
	}

	writeJSON(w, http.StatusOK, resp, s.logger)
}

func writeJSON(w http.ResponseWriter, code int, v any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
