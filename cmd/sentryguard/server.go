package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sentrybot/guard/internal/config"
	"github.com/sentrybot/guard/internal/llmproxy"
	"github.com/sentrybot/guard/internal/orchestrator"
	"github.com/sentrybot/guard/pkg/models"
)

func newRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// apiServer exposes spec.md §6's "chat turn" and "clear session"
// operations over HTTP, plus the approve/deny callbacks a front-end
// invokes after rendering C1's approval prompt.
type apiServer struct {
	http *http.Server
	mux  *http.ServeMux
}

func newAPIServer(orch *orchestrator.Orchestrator, reg *prometheus.Registry, settings config.Settings) *apiServer {
	mux := http.NewServeMux()
	turn := orchestrator.NewLLMTurn(llmproxy.NoopClient{}, 6)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		handleChatTurn(w, r, orch, turn)
	})
	mux.HandleFunc("/api/clear", func(w http.ResponseWriter, r *http.Request) {
		handleClearSession(w, r, orch)
	})
	mux.HandleFunc("/api/approvals/approve", func(w http.ResponseWriter, r *http.Request) {
		handleApprovalDecision(w, r, orch, true)
	})
	mux.HandleFunc("/api/approvals/deny", func(w http.ResponseWriter, r *http.Request) {
		handleApprovalDecision(w, r, orch, false)
	})

	return &apiServer{
		http: &http.Server{Handler: mux},
		mux:  mux,
	}
}

func (s *apiServer) ListenAndServe(addr string) error {
	s.http.Addr = addr
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *apiServer) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type chatRequest struct {
	UserID   int64  `json:"user_id"`
	ChatID   int64  `json:"chat_id"`
	Message  string `json:"message"`
	Username string `json:"username"`
	Source   string `json:"source"`
	ChatType string `json:"chat_type"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func handleChatTurn(w http.ResponseWriter, r *http.Request, orch *orchestrator.Orchestrator, turn orchestrator.TurnFunc) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := orch.HandleChatTurn(r.Context(), models.ChatTurnRequest{
		UserID:    req.UserID,
		ChatID:    req.ChatID,
		Message:   req.Message,
		Username:  req.Username,
		Source:    req.Source,
		ChatType:  req.ChatType,
		SessionID: sessionIDFor(req.UserID),
	}, turn)

	switch {
	case errors.Is(err, orchestrator.ErrInjectionDetected):
		writeJSON(w, http.StatusOK, chatResponse{Response: resp.Response})
	case errors.Is(err, orchestrator.ErrCapacityExceeded):
		http.Error(w, "server busy, try again shortly", http.StatusTooManyRequests)
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, chatResponse{Response: resp.Response})
	}
}

type clearRequest struct {
	UserID int64 `json:"user_id"`
}

func handleClearSession(w http.ResponseWriter, r *http.Request, orch *orchestrator.Orchestrator) {
	var req clearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	orch.ClearSession(sessionIDFor(req.UserID))
	w.WriteHeader(http.StatusNoContent)
}

type approvalRequest struct {
	CommandID string `json:"command_id"`
}

func handleApprovalDecision(w http.ResponseWriter, r *http.Request, orch *orchestrator.Orchestrator, approve bool) {
	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if approve {
		result, ok := orch.ApproveCommand(r.Context(), req.CommandID)
		if !ok {
			http.Error(w, "approval not found or expired", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	if !orch.DenyCommand(r.Context(), req.CommandID) {
		http.Error(w, "approval not found or expired", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sessionIDFor(userID int64) string {
	return "user-" + strconv.FormatInt(userID, 10)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
