// Package httpapi exposes the dialogue controller over HTTP: a small REST
// surface for wake/stop/state plus a websocket feed of session events.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/atharv-dange/vaani/internal/config"
	"github.com/atharv-dange/vaani/internal/dialog"
	"github.com/atharv-dange/vaani/internal/history"
	"github.com/atharv-dange/vaani/internal/observability"
	"github.com/atharv-dange/vaani/internal/protocol"
)

// Controller is the part of the dialogue controller the HTTP surface drives.
type Controller interface {
	Wake()
	RequestStop()
	Snapshot() dialog.Snapshot
	Subscribe() (<-chan any, func())
}

type Server struct {
	cfg      config.Config
	ctrl     Controller
	store    history.Store
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

func New(cfg config.Config, ctrl Controller, store history.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		ctrl:    ctrl,
		store:   store,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin, so another website cannot drive the user's
				// assistant if vaani is ever exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/assistant/wake", s.handleWake)
	r.Post("/v1/assistant/stop", s.handleStop)
	r.Get("/v1/assistant/state", s.handleState)
	r.Get("/v1/assistant/history/{sessionID}", s.handleHistory)
	r.Get("/v1/assistant/ws", s.handleWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ready",
		"history": s.storeMode(),
	})
}

// handleWake injects an external wake trigger, the same path a hardware
// wake-word detector uses.
func (s *Server) handleWake(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Wake()
	respondJSON(w, http.StatusAccepted, map[string]any{"status": "accepted"})
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	snap := s.ctrl.Snapshot()
	if snap.State == dialog.StateIdle {
		respondError(w, http.StatusConflict, "no_session", "no session is live")
		return
	}
	s.ctrl.RequestStop()
	respondJSON(w, http.StatusAccepted, map[string]any{"status": "accepted"})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}
	limit := 20
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be in 1..200")
			return
		}
		limit = n
	}

	turns, err := s.store.RecentForSession(r.Context(), sessionID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "history_unavailable", err.Error())
		return
	}
	if turns == nil {
		turns = []history.Turn{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"turns":      turns,
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()
	defer s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	feed, unsub := s.ctrl.Subscribe()
	defer unsub()

	// Keep websocket writes single-threaded: the read loop queues its error
	// replies here instead of writing the connection itself.
	outbound := make(chan any, 16)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		write := func(msg any) bool {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				cancel()
				return false
			}
			return true
		}
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-feed:
				if !ok {
					return
				}
				if !write(msg) {
					return
				}
			case msg := <-outbound:
				if !write(msg) {
					return
				}
			}
		}
	}()

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			errEvent := protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				Code:      "invalid_client_message",
				Source:    "gateway",
				Retryable: false,
				Detail:    err.Error(),
			}
			select {
			case outbound <- errEvent:
			default:
				// Drop rather than stall the read loop.
			}
			continue
		}
		if msg, ok := parsed.(protocol.ClientControl); ok {
			switch msg.Action {
			case "wake":
				s.ctrl.Wake()
			case "stop":
				s.ctrl.RequestStop()
			}
		}
	}

	cancel()
	<-writerDone
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func (s *Server) storeMode() string {
	if s.store == nil {
		return "disabled"
	}
	if _, ok := s.store.(*history.InMemoryStore); ok {
		return "in-memory"
	}
	return "postgres"
}
