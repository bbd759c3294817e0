package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labresults-api/internal/application/login"
	"github.com/labresults-api/internal/pkg/validate"
)

// VerifyHandler handles login-code verification.
type VerifyHandler struct {
	svc login.Service
}

func NewVerifyHandler(svc login.Service) *VerifyHandler {
	return &VerifyHandler{svc: svc}
}

type verifyRequest struct {
	Code string `json:"code" validate:"required"`
}

func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	user, err := h.svc.VerifyCode(r.Context(), req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyEnvelope{Success: true, User: user})
}
