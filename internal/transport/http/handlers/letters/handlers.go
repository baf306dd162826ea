package letterhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hrdocs/internal/domain/audit"
	"hrdocs/internal/domain/letters"
	"hrdocs/internal/platform/email"
	"hrdocs/internal/transport/http/api"
	"hrdocs/internal/transport/http/middleware"
	"hrdocs/internal/transport/http/shared"
)

type Service interface {
	Generate(ctx context.Context, req letters.Request) (letters.Letter, error)
	History(ctx context.Context, employeeID string) ([]letters.Letter, error)
	Letter(ctx context.Context, id string) (letters.Letter, error)
	PDF(ctx context.Context, id string) ([]byte, letters.Letter, error)
	Send(ctx context.Context, req letters.SendRequest) (letters.SendResult, error)
}

type Handler struct {
	Service Service
	Audit   audit.Recorder
	// GenerateLimit wraps the generation route only.
	GenerateLimit []func(http.Handler) http.Handler
}

func NewHandler(service Service, recorder audit.Recorder, generateLimit ...func(http.Handler) http.Handler) *Handler {
	return &Handler{Service: service, Audit: recorder, GenerateLimit: generateLimit}
}

// RegisterRoutes expects r to be scoped to /letters.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(h.GenerateLimit...).Post("/generate", h.handleGenerate)
	r.Get("/{letterID}", h.handleGet)
	r.Get("/{letterID}/pdf", h.handlePDF)
}

type generateResponse struct {
	letters.Letter
	FilePath *string `json:"filePath"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload letters.Request
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("employeeId", payload.EmployeeID, "is required")
	validator.Required("letterType", payload.LetterType, "is required")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	letter, err := h.Service.Generate(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err, "letter_generate_failed", "failed to generate letter")
		return
	}
	audit.Write(r.Context(), h.Audit, audit.ActionLetterGenerate, audit.EntityLetter, letter.ID, middleware.ClientIP(r), map[string]string{
		"employeeId": payload.EmployeeID,
		"letterType": payload.LetterType,
	})
	api.Success(w, generateResponse{Letter: letter}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.History(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeServiceError(w, r, err, "letter_history_failed", "failed to list letters")
		return
	}
	if items == nil {
		items = []letters.Letter{}
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	letter, err := h.Service.Letter(r.Context(), chi.URLParam(r, "letterID"))
	if err != nil {
		writeServiceError(w, r, err, "letter_fetch_failed", "failed to fetch letter")
		return
	}
	api.Success(w, letter, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	data, letter, err := h.Service.PDF(r.Context(), chi.URLParam(r, "letterID"))
	if err != nil {
		writeServiceError(w, r, err, "letter_pdf_failed", "failed to render letter")
		return
	}
	name := letter.EmployeeCode
	if name == "" {
		name = letter.ID
	}
	api.Attachment(w, "application/pdf", letters.AttachmentName(letters.ParseType(letter.LetterType), name), data)
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var payload letters.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("employeeId", payload.EmployeeID, "is required")
	if strings.TrimSpace(payload.LetterContent) == "" && strings.TrimSpace(payload.LetterID) == "" && strings.TrimSpace(payload.PDFBase64) == "" {
		validator.Add("letterContent", "letterContent, letterId or pdfBase64 is required")
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	result, err := h.Service.Send(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err, "email_send_failed", "failed to send email")
		return
	}
	audit.Write(r.Context(), h.Audit, audit.ActionEmailSend, audit.EntityEmployee, payload.EmployeeID, middleware.ClientIP(r), map[string]string{
		"letterId":   payload.LetterID,
		"letterType": payload.LetterType,
		"subject":    payload.Subject,
	})
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, letters.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, letters.ErrLetterNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "letter not found", requestID)
	case errors.Is(err, letters.ErrLetterTypeRequired),
		errors.Is(err, letters.ErrInvalidAttachment),
		errors.Is(err, letters.ErrMissingRecipient):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
	case errors.Is(err, email.ErrDisabled):
		api.Fail(w, http.StatusServiceUnavailable, "email_disabled", "email delivery is not configured", requestID)
	default:
		log.Error().Err(err).Str("requestId", requestID).Msg(message)
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
