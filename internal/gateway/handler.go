package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	gatherly "gatherly-go"
	"gatherly-go/internal/journal"
	"gatherly-go/internal/logger"
	"gatherly-go/internal/utils"
	"gatherly-go/registration"
)

// Handler exposes the registration flow over HTTP.
type Handler struct {
	Service *Service
	Logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Failed to encode response: %v", err))
	}
}

// statusForError maps the SDK and form error taxonomy onto HTTP statuses.
// ConfirmError wraps the confirm call's underlying error, so it must be
// checked before APIError or a platform-rejected confirmation would surface
// the platform's status instead of the unconfirmed-payment one.
func statusForError(err error) int {
	var confirmErr *registration.ConfirmError
	if errors.As(err, &confirmErr) {
		// Money moved but the registration is unconfirmed; the journal has
		// the order for reconciliation.
		return http.StatusBadGateway
	}
	var apiErr *gatherly.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var validationErr *registration.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ListEvents proxies GET /api/v1/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Service.ListEvents(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		h.writeJSON(w, statusForError(err), utils.ErrorResponse("Could not list events", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("events", events))
}

// GetForm serves the form-rendering payload for an event.
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	h.Logger.Info("API", fmt.Sprintf("GetForm: eventId=%s", eventID))

	form, err := h.Service.Form(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetForm: %v", err))
		h.writeJSON(w, statusForError(err), utils.ErrorResponse("Could not load form", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("form", form))
}

// Quote computes a price breakdown for a tier/promo selection.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	breakdown, err := h.Service.Quote(r.Context(), eventID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Quote: %v", err))
		h.writeJSON(w, statusForError(err), utils.ErrorResponse("Could not compute quote", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("quote", breakdown))
}

// SubmitRegistration drives one registration attempt end to end.
func (h *Handler) SubmitRegistration(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	h.Logger.Info("API", fmt.Sprintf("SubmitRegistration: eventId=%s", eventID))

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	result, err := h.Service.Submit(r.Context(), eventID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SubmitRegistration: %v", err))
		h.writeJSON(w, statusForError(err), utils.ErrorResponse("Registration failed", err.Error()))
		return
	}

	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("registration completed", result))
}

// GetTicket renders the QR confirmation for a completed attempt.
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	attemptID := chi.URLParam(r, "attemptId")

	png, err := h.Service.Ticket(r.Context(), attemptID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetTicket: %v", err))
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Ticket unavailable", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetTicket: failed to write response: %v", err))
	}
}

// ListAttempts serves the admin journal listing. Defaults to orphaned
// entries, the ones awaiting out-of-band reconciliation.
func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	status := journal.AttemptStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = journal.StatusOrphaned
	}

	attempts, err := h.Service.Attempts(r.Context(), status)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAttempts: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not list attempts", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("attempts", attempts))
}
