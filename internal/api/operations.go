package api

import (
	"encoding/json"
	"net/http"

	"github.com/Humanoidear/PR2-Frontend-Backend/internal/coordinator"
)

// entranceRequest is the request body for POST /operations/entrance.
type entranceRequest struct {
	ProductID string `json:"product_id"`
}

// entranceResponse is the response body for a started entrance. The
// location field name matches the ledger column operators already know.
type entranceResponse struct {
	Location  int    `json:"location"`
	Quantity  int    `json:"cantidad"`
	Site      string `json:"almacen"`
	Simulated bool   `json:"simulation"`
}

// handleStartEntrance starts an entrance operation for a product.
func (s *Server) handleStartEntrance(w http.ResponseWriter, r *http.Request) {
	var req entranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.coord.StartEntrance(r.Context(), req.ProductID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entranceResponse{
		Location:  result.Position,
		Quantity:  result.Quantity,
		Site:      result.Site,
		Simulated: result.Simulated,
	})
}

// exitRequest is the request body for POST /operations/exit.
type exitRequest struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// handleStartExit starts a retrieval operation for a stored product.
func (s *Server) handleStartExit(w http.ResponseWriter, r *http.Request) {
	var req exitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.coord.StartExit(r.Context(), coordinator.OperationKind(req.Kind), req.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleEmergencyReset clears the emergency stop flag.
func (s *Server) handleEmergencyReset(w http.ResponseWriter, _ *http.Request) {
	s.coord.ResetEmergency()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

// statusResponse is the response body for GET /status.
type statusResponse struct {
	SystemState coordinator.SystemState `json:"system_state"`
	Connected   bool                    `json:"connected"`
}

// handleStatus returns the live system state and device bus connectivity.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		SystemState: s.coord.Status(),
		Connected:   s.gateway != nil && s.gateway.IsConnected(),
	})
}
