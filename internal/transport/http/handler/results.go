package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/labresults-api/internal/application/results"
	"github.com/labresults-api/internal/domain"
	"github.com/labresults-api/internal/pkg/validate"
	"github.com/labresults-api/internal/transport/http/middleware"
)

// ResultsHandler serves analysis-record lookups and report attachments.
type ResultsHandler struct {
	svc results.Service
}

func NewResultsHandler(svc results.Service) *ResultsHandler {
	return &ResultsHandler{svc: svc}
}

// Lookup is the trusted-caller variant: the phone comes straight from the
// request body.
func (h *ResultsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var q domain.ResultsQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "patientPhone is required")
		return
	}
	records, err := h.svc.Lookup(r.Context(), q)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Me is the bearer-phone variant: the phone was established at code
// verification and travels in the Authorization header. An optional exact
// date filter comes from the query string.
func (h *ResultsHandler) Me(w http.ResponseWriter, r *http.Request) {
	phone, ok := middleware.PhoneFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	records, err := h.svc.Lookup(r.Context(), domain.ResultsQuery{
		PatientPhone: phone,
		Date:         r.URL.Query().Get("date"),
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Attachment streams a raw report object belonging to the caller.
func (h *ResultsHandler) Attachment(w http.ResponseWriter, r *http.Request) {
	phone, ok := middleware.PhoneFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	key := chi.URLParam(r, "*")
	body, contentType, err := h.svc.Attachment(r.Context(), phone, key)
	if err != nil {
		httpError(w, err)
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}
