package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"rtiassist/internal/model"
	"rtiassist/internal/service"

	"go.uber.org/zap"
)

const msgLetterBodyFailed = "Failed to generate letter body"

// maxLetterBodyBytes caps the JSON request body of the letter body endpoint
const maxLetterBodyBytes = 1 << 20

// LetterBodyHandler handles the stateless letter body endpoint
type LetterBodyHandler struct {
	letterSvc *service.LetterBodyService
	logger    *zap.Logger
}

// NewLetterBodyHandler creates a new letter body handler
func NewLetterBodyHandler(letterSvc *service.LetterBodyService, logger *zap.Logger) *LetterBodyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LetterBodyHandler{letterSvc: letterSvc, logger: logger}
}

// Generate handles POST /v1/letters
func (h *LetterBodyHandler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLetterBodyBytes)

	var input model.LetterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "invalid request body: "+err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "invalid request body: "+err.Error())
		return
	}

	body, err := h.generate(r, input)
	if err != nil {
		h.logger.Warn("letter body generation failed", zap.Error(err))
		msg := err.Error()
		if msg == "" {
			msg = msgLetterBodyFailed
		}
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeJSON(w, http.StatusOK, model.LetterBodyResponse{Body: body})
}

func (h *LetterBodyHandler) generate(r *http.Request, input model.LetterInput) (body string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s: %v", msgLetterBodyFailed, p)
		}
	}()
	return h.letterSvc.Generate(r.Context(), input)
}
