// Package handlers contains the HTTP handlers wrapping the vending machine
// core. They are thin: decode, delegate, encode.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/happyloop/vendbot/internal/api/middleware"
	"github.com/happyloop/vendbot/internal/vending"
	"github.com/rs/zerolog"
)

// VendingHandler serves the conversational endpoint.
type VendingHandler struct {
	machine *vending.Machine
	log     zerolog.Logger
}

// NewVendingHandler creates a new vending handler.
func NewVendingHandler(machine *vending.Machine, log zerolog.Logger) *VendingHandler {
	return &VendingHandler{machine: machine, log: log}
}

// Chat handles POST /api/v1/chat. The machine itself never errors outward;
// the only HTTP-level failures are malformed requests.
func (h *VendingHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply := h.machine.Handle(r.Context(), req.Message)
	middleware.WriteJSON(w, http.StatusOK, reply)
}
