package handlers

import (
	"meeting-point-service/internal/api/dto"
	"meeting-point-service/internal/fairness"
	"net/http"
)

type PolicyHandler struct {
	Policies *fairness.Registry
}

func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.PoliciesResponse{
		Default:  h.Policies.DefaultName(),
		Policies: h.Policies.Policies(),
	})
}
