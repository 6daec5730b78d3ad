package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady checks the backing services the API cannot run without.
// The gateway is reported but does not fail readiness; passes degrade
// to errors per channel when it is down.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := map[string]string{}
	ready := true

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		ready = false
	} else {
		checks["database"] = "ok"
	}

	if err := s.taskQueue.Ping(ctx); err != nil {
		checks["queue"] = err.Error()
		ready = false
	} else {
		checks["queue"] = "ok"
	}

	if s.gateway != nil {
		if err := s.gateway.Ping(ctx); err != nil {
			checks["gateway"] = err.Error()
		} else {
			checks["gateway"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"ready":  ready,
		"checks": checks,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

type loginRequest struct {
	Secret string `json:"secret"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// handleLogin exchanges the operator secret for a bearer token
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.authService.Login(r.Context(), req.Secret)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// Channel endpoints

type createChannelRequest struct {
	Name  string `json:"name"`
	Ref   string `json:"ref"`
	Token string `json:"token"`
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.channelService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list channels")
		return
	}

	writeJSON(w, http.StatusOK, channels)
}

func (s *Server) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	var req createChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	creds := domain.ChannelCredentials{Token: req.Token}
	channel, err := s.channelService.Create(r.Context(), req.Name, req.Ref, creds)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "name and ref are required")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create channel")
		return
	}

	writeJSON(w, http.StatusCreated, channel)
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing channel id")
		return
	}

	channel, err := s.channelService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "channel not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get channel")
		return
	}

	writeJSON(w, http.StatusOK, channel)
}

func (s *Server) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing channel id")
		return
	}

	if err := s.channelService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "channel not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete channel")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleEnableChannel(w http.ResponseWriter, r *http.Request) {
	s.setChannelEnabled(w, r, true)
}

func (s *Server) handleDisableChannel(w http.ResponseWriter, r *http.Request) {
	s.setChannelEnabled(w, r, false)
}

func (s *Server) setChannelEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing channel id")
		return
	}

	channel, err := s.channelService.SetEnabled(r.Context(), id, enabled)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "channel not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update channel")
		return
	}

	writeJSON(w, http.StatusOK, channel)
}

// Reconciliation endpoints

// triggerAcceptedResponse is returned when a pass has been enqueued
type triggerAcceptedResponse struct {
	Status string `json:"status"`
	TaskID string `json:"task_id"`
}

func (s *Server) handleTriggerChannel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing channel id")
		return
	}

	taskID, err := s.reconcileService.TriggerChannel(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "channel not found")
		case errors.Is(err, domain.ErrChannelDisabled):
			writeError(w, http.StatusConflict, "channel is disabled")
		default:
			writeError(w, http.StatusInternalServerError, "failed to trigger reconciliation")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, triggerAcceptedResponse{
		Status: "accepted",
		TaskID: taskID,
	})
}

func (s *Server) handleTriggerAll(w http.ResponseWriter, r *http.Request) {
	taskID, err := s.reconcileService.TriggerAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to trigger reconciliation")
		return
	}

	writeJSON(w, http.StatusAccepted, triggerAcceptedResponse{
		Status: "accepted",
		TaskID: taskID,
	})
}

func (s *Server) handleGetRunState(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing channel id")
		return
	}

	state, err := s.reconcileService.GetRunState(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get run state")
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleListRunStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.reconcileService.ListRunStates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list run states")
		return
	}

	writeJSON(w, http.StatusOK, states)
}

// Queue endpoints

func (s *Server) handleQueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.taskQueue.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get queue stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing task id")
		return
	}

	task, err := s.taskQueue.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
