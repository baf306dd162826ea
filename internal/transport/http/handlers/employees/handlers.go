package employeehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hrdocs/internal/domain/audit"
	"hrdocs/internal/domain/employees"
	"hrdocs/internal/domain/importer"
	"hrdocs/internal/platform/spreadsheet"
	"hrdocs/internal/requestctx"
	"hrdocs/internal/transport/http/api"
	"hrdocs/internal/transport/http/middleware"
	"hrdocs/internal/transport/http/shared"
)

const (
	importEndpoint   = "employees.import"
	defaultPageLimit = 50
	maxPageLimit     = 200
)

type Service interface {
	Get(ctx context.Context, id string) (employees.Employee, error)
	List(ctx context.Context, limit, offset int) ([]employees.Employee, int, error)
	Create(ctx context.Context, in employees.CreateInput) (employees.Employee, error)
	Update(ctx context.Context, id string, in employees.UpdateInput) (employees.Employee, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status string) (employees.Employee, error)
	Import(ctx context.Context, filename string, r io.Reader) (importer.Result, error)
}

// IdempotencyStore replays a stored import response for a repeated
// Idempotency-Key.
type IdempotencyStore interface {
	Check(ctx context.Context, subject, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, subject, endpoint, key, requestHash string, response json.RawMessage) error
}

type Handler struct {
	Service        Service
	Idempotency    IdempotencyStore
	Audit          audit.Recorder
	MaxUploadBytes int64
}

func NewHandler(service Service, idem IdempotencyStore, recorder audit.Recorder, maxUploadBytes int64) *Handler {
	return &Handler{Service: service, Idempotency: idem, Audit: recorder, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes expects r to be scoped to /employees.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Post("/import", h.handleImport)
	r.Get("/import/template", h.handleTemplate)
	r.Get("/{employeeID}", h.handleGet)
	r.Put("/{employeeID}", h.handleUpdate)
	r.Delete("/{employeeID}", h.handleDelete)
	r.Patch("/{employeeID}/status", h.handleStatus)
}

type employeeRequest struct {
	Code           *string  `json:"empId"`
	Name           *string  `json:"name"`
	Email          *string  `json:"email"`
	Designation    *string  `json:"designation"`
	Department     *string  `json:"department"`
	JoiningDate    *string  `json:"joiningDate"`
	Location       *string  `json:"location"`
	EmploymentType *string  `json:"employmentType"`
	AnnualCost     *float64 `json:"annualCost"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type importResponse struct {
	Status   string   `json:"status"`
	Imported int      `json:"importedCount"`
	Errors   []string `json:"errors"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, defaultPageLimit, maxPageLimit)
	items, total, err := h.Service.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, page.Page(items, total), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	validator.Required("name", deref(payload.Name), "is required")
	validator.Required("email", deref(payload.Email), "is required")
	validator.Email("email", deref(payload.Email))
	joining := validateOptionalDate(validator, "joiningDate", payload.JoiningDate)
	if payload.AnnualCost != nil {
		validator.NonNegative("annualCost", *payload.AnnualCost)
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	in := employees.CreateInput{
		Code:           deref(payload.Code),
		Name:           deref(payload.Name),
		Email:          deref(payload.Email),
		Designation:    deref(payload.Designation),
		Department:     deref(payload.Department),
		Location:       deref(payload.Location),
		EmploymentType: deref(payload.EmploymentType),
	}
	if joining != nil {
		in.JoiningDate = *joining
	}
	if payload.AnnualCost != nil {
		in.AnnualCost = *payload.AnnualCost
	}

	emp, err := h.Service.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err, "employee_create_failed", "failed to create employee")
		return
	}
	audit.Write(r.Context(), h.Audit, audit.ActionEmployeeCreate, audit.EntityEmployee, emp.ID, middleware.ClientIP(r), map[string]string{"empId": emp.Code, "email": emp.Email})
	api.Created(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeServiceError(w, r, err, "employee_fetch_failed", "failed to fetch employee")
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	if payload.Name != nil {
		validator.Required("name", *payload.Name, "must not be empty")
	}
	if payload.Email != nil {
		validator.Required("email", *payload.Email, "must not be empty")
		validator.Email("email", *payload.Email)
	}
	joining := validateOptionalDate(validator, "joiningDate", payload.JoiningDate)
	if payload.AnnualCost != nil {
		validator.NonNegative("annualCost", *payload.AnnualCost)
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	emp, err := h.Service.Update(r.Context(), chi.URLParam(r, "employeeID"), employees.UpdateInput{
		Name:           payload.Name,
		Email:          payload.Email,
		Designation:    payload.Designation,
		Department:     payload.Department,
		JoiningDate:    joining,
		Location:       payload.Location,
		EmploymentType: payload.EmploymentType,
		AnnualCost:     payload.AnnualCost,
	})
	if err != nil {
		writeServiceError(w, r, err, "employee_update_failed", "failed to update employee")
		return
	}
	audit.Write(r.Context(), h.Audit, audit.ActionEmployeeUpdate, audit.EntityEmployee, emp.ID, middleware.ClientIP(r), payload)
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if err := h.Service.Delete(r.Context(), employeeID); err != nil {
		writeServiceError(w, r, err, "employee_delete_failed", "failed to delete employee")
		return
	}
	audit.Write(r.Context(), h.Audit, audit.ActionEmployeeDelete, audit.EntityEmployee, employeeID, middleware.ClientIP(r), nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	var payload statusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	allowed := make([]string, 0, len(employees.Statuses))
	for _, s := range employees.Statuses {
		allowed = append(allowed, string(s))
	}
	validator := shared.NewValidator()
	validator.Required("status", payload.Status, "is required")
	validator.Enum("status", payload.Status, allowed, "must be one of "+strings.Join(allowed, ", "))
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	emp, err := h.Service.SetStatus(r.Context(), chi.URLParam(r, "employeeID"), payload.Status)
	if err != nil {
		writeServiceError(w, r, err, "employee_status_failed", "failed to update status")
		return
	}
	audit.Write(r.Context(), h.Audit, audit.ActionEmployeeStatus, audit.EntityEmployee, emp.ID, middleware.ClientIP(r), map[string]string{"status": string(emp.Status)})
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "upload_too_large", "uploaded file is too large", requestID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_upload", "multipart field \"file\" is required", requestID)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_upload", "failed to read uploaded file", requestID)
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	subject := requestctx.GetSubject(r.Context())
	hash := middleware.RequestHash(append([]byte(header.Filename+"\x00"), data...))
	if key != "" && h.Idempotency != nil {
		stored, ok, err := h.Idempotency.Check(r.Context(), subject, importEndpoint, key, hash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), requestID)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("requestId", requestID).Msg("idempotency lookup failed")
			api.Fail(w, http.StatusInternalServerError, "idempotency_failed", "failed to check idempotency key", requestID)
			return
		}
		if ok {
			w.Header().Set("Idempotent-Replay", "true")
			api.Success(w, stored, requestID)
			return
		}
	}

	started := time.Now()
	res, err := h.Service.Import(r.Context(), header.Filename, bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, importer.ErrUnsupportedFormat) {
			api.Fail(w, http.StatusBadRequest, "unsupported_format", err.Error(), requestID)
			return
		}
		log.Error().Err(err).Str("requestId", requestID).Str("file", header.Filename).Msg("employee import failed")
		api.Fail(w, http.StatusBadRequest, "import_failed", "could not read spreadsheet", requestID)
		return
	}

	resp := importResponse{Status: "success", Imported: res.Imported, Errors: res.Messages()}
	if key != "" && h.Idempotency != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := h.Idempotency.Save(r.Context(), subject, importEndpoint, key, hash, raw); err != nil {
				log.Warn().Err(err).Str("requestId", requestID).Msg("idempotency save failed")
			}
		}
	}
	audit.Write(r.Context(), h.Audit, audit.ActionEmployeeImport, audit.EntityImport, header.Filename, middleware.ClientIP(r), resp)
	log.Info().
		Str("requestId", requestID).
		Int("imported", res.Imported).
		Int("errors", len(res.Errors)).
		Dur("elapsed", time.Since(started)).
		Msg("employee import")
	api.Success(w, resp, requestID)
}

func (h *Handler) handleTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := spreadsheet.Template()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_failed", "failed to build template", middleware.GetRequestID(r.Context()))
		return
	}
	api.Attachment(w, spreadsheet.ContentTypeXLSX, spreadsheet.TemplateName, data)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, employees.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, employees.ErrEmailExists):
		api.Fail(w, http.StatusConflict, "email_exists", "an employee with this email already exists", requestID)
	case errors.Is(err, employees.ErrCodeExists):
		api.Fail(w, http.StatusConflict, "code_exists", "an employee with this code already exists", requestID)
	case errors.Is(err, employees.ErrEmailRequired),
		errors.Is(err, employees.ErrNameRequired),
		errors.Is(err, employees.ErrInvalidCost),
		errors.Is(err, employees.ErrInvalidStatus):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
	default:
		log.Error().Err(err).Str("requestId", requestID).Msg(message)
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

func validateOptionalDate(v *shared.Validator, field string, raw *string) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	parsed, ok := v.Date(field, *raw)
	if !ok {
		return nil
	}
	return &parsed
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
