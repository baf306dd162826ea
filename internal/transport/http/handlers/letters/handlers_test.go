package letterhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdocs/internal/domain/audit"
	"hrdocs/internal/domain/letters"
	"hrdocs/internal/platform/email"
)

type fakeService struct {
	letter  letters.Letter
	request letters.Request
	sent    letters.SendRequest
	err     error
}

func (f *fakeService) Generate(_ context.Context, req letters.Request) (letters.Letter, error) {
	f.request = req
	return f.letter, f.err
}

func (f *fakeService) History(context.Context, string) ([]letters.Letter, error) {
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func (f *fakeService) Letter(context.Context, string) (letters.Letter, error) {
	return f.letter, f.err
}

func (f *fakeService) PDF(context.Context, string) ([]byte, letters.Letter, error) {
	return []byte("%PDF-1.3"), f.letter, f.err
}

func (f *fakeService) Send(_ context.Context, req letters.SendRequest) (letters.SendResult, error) {
	f.sent = req
	if f.err != nil {
		return letters.SendResult{}, f.err
	}
	return letters.SendResult{Status: "success", Message: "Email sent successfully"}, nil
}

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/letters", h.RegisterRoutes)
	r.Get("/employees/{employeeID}/letters", h.HandleHistory)
	r.Post("/email/send", h.HandleSend)
	return r
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGenerateReturnsContent(t *testing.T) {
	svc := &fakeService{letter: letters.Letter{ID: "l1", Content: "Dear Asha", LetterType: "offer"}}
	rec := do(newRouter(NewHandler(svc, nil)), http.MethodPost, "/letters/generate", `{"employeeId":"e1","letterType":"Offer Letter","companyName":"Acme"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Dear Asha", body.Data["content"])
	assert.Contains(t, body.Data, "filePath")
	assert.Nil(t, body.Data["filePath"])
	assert.Equal(t, "Acme", svc.request.CompanyName)
}

func TestGenerateValidatesPayload(t *testing.T) {
	rec := do(newRouter(NewHandler(&fakeService{}, nil)), http.MethodPost, "/letters/generate", `{"employeeId":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "letterType")
}

func TestGenerateMapsMissingEmployee(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("%w: e1", letters.ErrEmployeeNotFound)}
	rec := do(newRouter(NewHandler(svc, nil)), http.MethodPost, "/letters/generate", `{"employeeId":"e1","letterType":"offer"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateHidesStoreFailure(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("append letter history: connection reset")}
	rec := do(newRouter(NewHandler(svc, nil)), http.MethodPost, "/letters/generate", `{"employeeId":"e1","letterType":"offer"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestHistoryReturnsEmptyList(t *testing.T) {
	rec := do(newRouter(NewHandler(&fakeService{}, nil)), http.MethodGet, "/employees/e1/letters", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestPDFDownload(t *testing.T) {
	svc := &fakeService{letter: letters.Letter{ID: "l1", EmployeeCode: "EMP007", LetterType: "Offer Letter"}}
	rec := do(newRouter(NewHandler(svc, nil)), http.MethodGet, "/letters/l1/pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Offer_Letter_EMP007.pdf")
}

func TestLetterNotFound(t *testing.T) {
	rec := do(newRouter(NewHandler(&fakeService{err: letters.ErrLetterNotFound}, nil)), http.MethodGet, "/letters/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendRequiresContent(t *testing.T) {
	rec := do(newRouter(NewHandler(&fakeService{}, nil)), http.MethodPost, "/email/send", `{"employeeId":"e1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendPassesRequest(t *testing.T) {
	svc := &fakeService{}
	rec := do(newRouter(NewHandler(svc, nil)), http.MethodPost, "/email/send", `{"employeeId":"e1","letterContent":"Dear Asha","subject":"Welcome"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email sent successfully")
	assert.Equal(t, "Welcome", svc.sent.Subject)
}

func TestSendMapsDisabledMailer(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("send email: %w", email.ErrDisabled)}
	rec := do(newRouter(NewHandler(svc, nil)), http.MethodPost, "/email/send", `{"employeeId":"e1","letterContent":"x"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSendMapsBadAttachment(t *testing.T) {
	svc := &fakeService{err: letters.ErrInvalidAttachment}
	rec := do(newRouter(NewHandler(svc, nil)), http.MethodPost, "/email/send", `{"employeeId":"e1","pdfBase64":"***"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMapsForeignLetterToNotFound(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("%w: l1 for employee e2", letters.ErrLetterNotFound)}
	rec := do(newRouter(NewHandler(svc, nil)), http.MethodPost, "/email/send", `{"employeeId":"e2","letterId":"l1"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateLimitAppliesOnlyToGeneration(t *testing.T) {
	blocked := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	router := newRouter(NewHandler(&fakeService{letter: letters.Letter{ID: "l1"}}, nil, blocked))

	rec := do(router, http.MethodPost, "/letters/generate", `{"employeeId":"e1","letterType":"offer"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = do(router, http.MethodGet, "/letters/l1", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

type memoryAudit struct {
	events []audit.Event
}

func (m *memoryAudit) Record(_ context.Context, evt audit.Event) error {
	m.events = append(m.events, evt)
	return nil
}

func TestSendWritesAuditEvent(t *testing.T) {
	rec := &memoryAudit{}
	router := newRouter(NewHandler(&fakeService{}, rec))
	resp := do(router, http.MethodPost, "/email/send", `{"employeeId":"e1","letterId":"l1","letterType":"offer"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	require.Len(t, rec.events, 1)
	assert.Equal(t, audit.ActionEmailSend, rec.events[0].Action)
	assert.Equal(t, "e1", rec.events[0].EntityID)
	assert.Contains(t, string(rec.events[0].Detail), `"letterId":"l1"`)
}
