// Package sweepserver exposes a running sweep over HTTP and
// WebSocket: leaderboard queries, progress snapshots, and a live
// progress feed, plus the Prometheus metrics endpoint.
package sweepserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/trendlab-go/trendlab/internal/sweep"
	"go.uber.org/zap"
)

// Server serves one sweep's state.
type Server struct {
	logger     *zap.Logger
	httpServer *http.Server
	hub        *Hub
	board      *sweep.Leaderboard
}

// New builds a server over board, exporting metrics from reg.
func New(logger *zap.Logger, addr string, board *sweep.Leaderboard, reg *prometheus.Registry) *Server {
	s := &Server{
		logger: logger,
		hub:    NewHub(logger),
		board:  board,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.hub.handleUpgrade)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}).Handler(router)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start begins serving and the hub's broadcast loop. Non-blocking.
func (s *Server) Start() {
	go s.hub.run()
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("sweep server failed", zap.Error(err))
		}
	}()
	s.logger.Info("sweep server listening", zap.String("addr", s.httpServer.Addr))
}

// Shutdown drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.stop()
	return s.httpServer.Shutdown(ctx)
}

// PublishProgress is wired as the orchestrator's Progress callback.
func (s *Server) PublishProgress(done, total int, e sweep.Entry) {
	s.hub.broadcastJSON(progressEvent{
		Type:         "progress",
		Done:         done,
		Total:        total,
		FullHash:     string(e.FullHash),
		Score:        e.Score,
		LevelReached: e.LevelReached,
		Promoted:     e.Promoted,
		Timestamp:    time.Now().UnixMilli(),
	})
}

type progressEvent struct {
	Type         string  `json:"type"`
	Done         int     `json:"done"`
	Total        int     `json:"total"`
	FullHash     string  `json:"full_hash"`
	Score        float64 `json:"score"`
	LevelReached string  `json:"level_reached"`
	Promoted     bool    `json:"promoted"`
	Timestamp    int64   `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"candidates": s.board.Len(),
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("bad limit %q", raw)})
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, s.board.Top(n))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
