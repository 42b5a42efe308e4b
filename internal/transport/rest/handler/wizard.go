package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rtiassist/internal/model"
	"rtiassist/internal/service"
	"rtiassist/internal/transport/rest/middleware"
	"rtiassist/internal/web"

	"go.uber.org/zap"
)

// WizardHandler serves the three wizard screens
type WizardHandler struct {
	wizard   *service.WizardService
	renderer *web.Renderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewWizardHandler creates a new wizard handler
func NewWizardHandler(wizard *service.WizardService, renderer *web.Renderer, logger *zap.Logger) *WizardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WizardHandler{
		wizard:   wizard,
		renderer: renderer,
		logger:   logger,
		now:      time.Now,
	}
}

// Show handles GET /
func (h *WizardHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetSessionID(r.Context())
	sess, err := h.wizard.Load(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.Render(w, sess, h.wizard.Busy(id), h.now()); err != nil {
		h.logger.Error("render wizard", zap.String("session", id), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Complaint handles POST /wizard/complaint
func (h *WizardHandler) Complaint(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	_, err := h.wizard.SubmitComplaint(detach(r), middleware.GetSessionID(r.Context()), r.PostFormValue("complaint"))
	h.finish(w, r, err)
}

// Officer handles POST /wizard/officer
func (h *WizardHandler) Officer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	index, err := strconv.Atoi(r.PostFormValue("pio_index"))
	if err != nil {
		http.Error(w, "invalid officer selection", http.StatusBadRequest)
		return
	}
	_, err = h.wizard.SelectOfficer(r.Context(), middleware.GetSessionID(r.Context()), index,
		r.PostFormValue("user_name"), r.PostFormValue("user_address"))
	h.finish(w, r, err)
}

// Letter handles POST /wizard/letter
func (h *WizardHandler) Letter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	in := service.DetailsInput{
		UserName:    r.PostFormValue("user_name"),
		UserAddress: r.PostFormValue("user_address"),
	}
	if raw := strings.TrimSpace(r.PostFormValue("pio_index")); raw != "" {
		index, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid officer selection", http.StatusBadRequest)
			return
		}
		in.PIOIndex = &index
	}

	_, err := h.wizard.SubmitDetails(detach(r), middleware.GetSessionID(r.Context()), in)
	h.finish(w, r, err)
}

// Back handles POST /wizard/back
func (h *WizardHandler) Back(w http.ResponseWriter, r *http.Request) {
	_, err := h.wizard.BackToHome(r.Context(), middleware.GetSessionID(r.Context()))
	h.finish(w, r, err)
}

// Download handles GET /wizard/download
func (h *WizardHandler) Download(w http.ResponseWriter, r *http.Request) {
	letter, err := h.wizard.Letter(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+service.DownloadFilename(h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(letter))
}

// finish redirects back to the wizard page after a state change
func (h *WizardHandler) finish(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *WizardHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidTransition):
		// stale page, show the current step
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, service.ErrRequestInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrInvalidSelection):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNoLetter):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("wizard request failed",
			zap.String("path", r.URL.Path),
			zap.String("session", middleware.GetSessionID(r.Context())),
			zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// detach keeps request values but not cancellation; a backend result must reach the
// session even when the tab is closed.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
