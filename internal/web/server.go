package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/royen99/cryptobot-monitor/internal/domain"
	"github.com/royen99/cryptobot-monitor/internal/usecase"
)

// Server exposes the reconciled dashboard state to the local rendering
// layer: a read-only view endpoint plus the manual-command and symbol
// pass-throughs.
type Server struct {
	router  *http.ServeMux
	server  *http.Server
	monitor *usecase.Monitor
	logger  *zap.Logger
}

func NewServer(port int, monitor *usecase.Monitor, logger *zap.Logger) *Server {
	s := &Server{
		router:  http.NewServeMux(),
		monitor: monitor,
		logger:  logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.HandleFunc("GET /api/view", s.handleView)
	s.router.HandleFunc("POST /api/manual_commands", s.handleCommand)
	s.router.HandleFunc("POST /api/symbol", s.handleSelectSymbol)
}

func (s *Server) Start() error {
	s.logger.Info("Starting view server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	view := s.monitor.View()
	s.writeJSON(w, map[string]any{
		"ok":    true,
		"alive": view.Alive,
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.monitor.View())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd domain.ManualCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "invalid command payload", http.StatusBadRequest)
		return
	}

	if err := s.monitor.Command(r.Context(), cmd); err != nil {
		// The backend's detail text is the user-visible error.
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, map[string]any{"ok": true})
}

func (s *Server) handleSelectSymbol(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid symbol payload", http.StatusBadRequest)
		return
	}

	if err := s.monitor.SelectSymbol(r.Context(), req.Symbol); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, map[string]any{"ok": true, "symbol": req.Symbol})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}
