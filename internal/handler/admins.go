// Package handler shapes AdminService outcomes into the wire contract. It
// owns no business logic: the id ladder, JSON envelopes, and the error
// taxonomy mapping live here, everything else is delegated.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kubhq/admind/internal/mailer"
	"github.com/kubhq/admind/internal/model"
	"github.com/kubhq/admind/internal/service"
	"github.com/kubhq/admind/internal/store"
	"github.com/kubhq/admind/internal/validate"
)

// AdminHandler serves the /admins resource.
type AdminHandler struct {
	svc    *service.AdminService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(svc *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

// Create handles POST /admins.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p model.AdminPayload
	if err := readJSON(r, &p); err != nil {
		writeDetail(w, http.StatusBadRequest, "request body must be a valid JSON object")
		return
	}

	admin, err := h.svc.Create(r.Context(), &p)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

// List handles GET /admins. The response is a bare JSON array.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.svc.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if admins == nil {
		admins = []model.Admin{}
	}
	writeJSON(w, http.StatusOK, admins)
}

// Get handles GET /admins/{adminID}.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := adminID(w, r)
	if !ok {
		return
	}
	admin, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

// Update handles PUT /admins/{adminID}.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := adminID(w, r)
	if !ok {
		return
	}
	var p model.AdminPayload
	if err := readJSON(r, &p); err != nil {
		writeDetail(w, http.StatusBadRequest, "request body must be a valid JSON object")
		return
	}

	admin, err := h.svc.Update(r.Context(), id, &p)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

// Delete handles DELETE /admins/{adminID}.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := adminID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResendInvite handles POST /admins/{adminID}/resend.
func (h *AdminHandler) ResendInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := adminID(w, r)
	if !ok {
		return
	}
	admin, err := h.svc.ResendInvite(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

// writeServiceError maps domain errors onto the wire taxonomy. Precedence is
// already settled by the time an error reaches here: the guard ran first,
// structural checks before the service call, so only semantic, conflict,
// not-found, and dispatch outcomes remain.
func (h *AdminHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var violations validate.Violations
	switch {
	case errors.As(err, &violations):
		writeDetail(w, http.StatusUnprocessableEntity, violations.Error())
	case errors.Is(err, store.ErrEmailTaken):
		writeDetail(w, http.StatusConflict, "User exists")
	case errors.Is(err, store.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Admin not found")
	case errors.Is(err, mailer.ErrUnavailable):
		writeDetail(w, http.StatusServiceUnavailable, "Invite delivery is temporarily unavailable")
	default:
		h.logger.Error("unhandled service error",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}
