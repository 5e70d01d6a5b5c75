package registration_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventdesk/internal/errs"
	"eventdesk/internal/logger"
	"eventdesk/internal/models"
	registration "eventdesk/internal/registration/service"
	"eventdesk/internal/utils"
)

type Handler struct {
	Service *registration.Service
	Logger  *logger.Logger
}

func NewHandler(service *registration.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// Dashboard is the bootstrap endpoint the operator UI hits on load. It
// lists events and kicks off the expired-event sweep in the background;
// sweep failures are swallowed and retried on the next load.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	go func() {
		ended := h.Service.ReconcileExpiredEvents()
		if ended > 0 {
			h.Logger.Info("RECONCILE", fmt.Sprintf("dashboard load sweep ended %d event(s)", ended))
		}
	}()

	events, err := h.Service.ListEvents()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Dashboard: failed to list events: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("could not load events", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("events loaded", events))
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	h.Logger.Info("API", fmt.Sprintf("Submit: eventID=%s", eventID))

	var req registration.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	reg, err := h.Service.Submit(eventID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Submit: %v", err))
		writeJSON(w, statusFor(err), utils.ErrorResponse("registration failed", err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("registration created", reg))
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "registrationID")
	h.Logger.Info("API", fmt.Sprintf("SetStatus: registrationID=%s", id))

	var req struct {
		Status models.RegistrationStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	if err := h.Service.SetStatus(id, req.Status); err != nil {
		h.Logger.Error("API", fmt.Sprintf("SetStatus: %v", err))
		writeJSON(w, statusFor(err), utils.ErrorResponse("status update failed", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("status updated", nil))
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "registrationID")
	h.Logger.Info("API", fmt.Sprintf("Edit: registrationID=%s", id))

	var edit models.RegistrationEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	reg, err := h.Service.Edit(id, edit)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Edit: %v", err))
		writeJSON(w, statusFor(err), utils.ErrorResponse("edit failed", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("registration updated", reg))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "registrationID")
	h.Logger.Info("API", fmt.Sprintf("Delete: registrationID=%s", id))

	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Delete: %v", err))
		writeJSON(w, statusFor(err), utils.ErrorResponse("delete failed", err.Error()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	regs, err := h.Service.ListByEvent(eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListByEvent: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("could not load registrations", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("registrations loaded", regs))
}

// statusFor maps the error taxonomy to HTTP status codes. Anything
// unrecognized is a 500.
func statusFor(err error) int {
	var validation *errs.ValidationError
	var conflict *errs.ConflictError
	var transient *errs.TransientIOError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &transient):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
