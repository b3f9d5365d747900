// Package restapi hosts the Rule REST surface: the CRUD API over the
// Agent's chaos/mock/routing rule collections and request log, the
// external collaborator contract the core pipeline depends on but does
// not implement itself.
package restapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/relaywarp/relaywarp/internal/domain/model"
	"github.com/relaywarp/relaywarp/internal/domain/port"
	"github.com/relaywarp/relaywarp/internal/rules"
)

// Handler wires the Rule REST surface onto a ServeMux.
type Handler struct {
	mock    *rules.MockStore
	chaos   *rules.ChaosStore
	routing *rules.RoutingStore
	reqLog  *rules.RequestLog
	logger  port.Logger
}

// New builds a Handler over the given rule stores and request log.
func New(mock *rules.MockStore, chaos *rules.ChaosStore, routing *rules.RoutingStore, reqLog *rules.RequestLog, logger port.Logger) *Handler {
	return &Handler{mock: mock, chaos: chaos, routing: routing, reqLog: reqLog, logger: logger}
}

// Mount registers every route on mux.
func (h *Handler) Mount(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	mux.HandleFunc("GET /rules/mock", h.handleMockList)
	mux.HandleFunc("POST /rules/mock", h.handleMockCreate)
	mux.HandleFunc("PUT /rules/mock/{id}", h.handleMockUpdate)
	mux.HandleFunc("DELETE /rules/mock/{id}", h.handleMockDelete)

	mux.HandleFunc("GET /rules/chaos", h.handleChaosList)
	mux.HandleFunc("POST /rules/chaos", h.handleChaosCreate)
	mux.HandleFunc("PUT /rules/chaos/{id}", h.handleChaosUpdate)
	mux.HandleFunc("DELETE /rules/chaos/{id}", h.handleChaosDelete)
	mux.HandleFunc("POST /rules/chaos/{id}/toggle", h.handleChaosToggle)

	mux.HandleFunc("GET /rules/routing", h.handleRoutingList)
	mux.HandleFunc("POST /rules/routing", h.handleRoutingCreate)
	mux.HandleFunc("PUT /rules/routing/{id}", h.handleRoutingUpdate)
	mux.HandleFunc("DELETE /rules/routing/{id}", h.handleRoutingDelete)

	mux.HandleFunc("GET /logs", h.handleLogsList)
	mux.HandleFunc("DELETE /logs", h.handleLogsClear)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- mock rules ---

func (h *Handler) handleMockList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.mock.List())
}

func (h *Handler) handleMockCreate(w http.ResponseWriter, r *http.Request) {
	var rule model.MockRule
	if !decodeJSON(w, r, &rule) {
		return
	}
	writeJSON(w, http.StatusCreated, h.mock.Add(rule))
}

func (h *Handler) handleMockUpdate(w http.ResponseWriter, r *http.Request) {
	var rule model.MockRule
	if !decodeJSON(w, r, &rule) {
		return
	}
	rule.ID = r.PathValue("id")
	updated, ok := h.mock.Update(rule)
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleMockDelete(w http.ResponseWriter, r *http.Request) {
	if !h.mock.Delete(r.PathValue("id")) {
		writeNotFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- chaos rules ---

func (h *Handler) handleChaosList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.chaos.List())
}

func (h *Handler) handleChaosCreate(w http.ResponseWriter, r *http.Request) {
	var rule model.ChaosRule
	if !decodeJSON(w, r, &rule) {
		return
	}
	writeJSON(w, http.StatusCreated, h.chaos.Add(rule))
}

func (h *Handler) handleChaosUpdate(w http.ResponseWriter, r *http.Request) {
	var rule model.ChaosRule
	if !decodeJSON(w, r, &rule) {
		return
	}
	rule.ID = r.PathValue("id")
	updated, ok := h.chaos.Update(rule)
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleChaosDelete(w http.ResponseWriter, r *http.Request) {
	if !h.chaos.Delete(r.PathValue("id")) {
		writeNotFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleChaosToggle(w http.ResponseWriter, r *http.Request) {
	updated, ok := h.chaos.Toggle(r.PathValue("id"))
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// --- routing rules ---

func (h *Handler) handleRoutingList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.routing.ListByPriority())
}

func (h *Handler) handleRoutingCreate(w http.ResponseWriter, r *http.Request) {
	var rule model.RoutingRule
	if !decodeJSON(w, r, &rule) {
		return
	}
	writeJSON(w, http.StatusCreated, h.routing.Add(rule))
}

func (h *Handler) handleRoutingUpdate(w http.ResponseWriter, r *http.Request) {
	var rule model.RoutingRule
	if !decodeJSON(w, r, &rule) {
		return
	}
	rule.ID = r.PathValue("id")
	updated, ok := h.routing.Update(rule)
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleRoutingDelete(w http.ResponseWriter, r *http.Request) {
	if !h.routing.Delete(r.PathValue("id")) {
		writeNotFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- request log ---

func (h *Handler) handleLogsList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, h.reqLog.List(limit))
}

func (h *Handler) handleLogsClear(w http.ResponseWriter, _ *http.Request) {
	h.reqLog.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}
