package audithandler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"hrdocs/internal/domain/audit"
)

type fakeAudit struct {
	filter audit.Filter
	limit  int
	events []audit.Event
	err    error
}

func (f *fakeAudit) Count(context.Context, audit.Filter) (int, error) {
	return len(f.events), nil
}

func (f *fakeAudit) List(_ context.Context, filter audit.Filter, limit, _ int) ([]audit.Event, error) {
	f.filter = filter
	f.limit = limit
	return f.events, f.err
}

func newRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func TestListEventsAppliesFilters(t *testing.T) {
	svc := &fakeAudit{events: []audit.Event{{ID: "1", Action: audit.ActionEmailSend}}}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events?action=email.send&entityId=e1&limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.filter.Action != audit.ActionEmailSend || svc.filter.EntityID != "e1" || svc.limit != 5 {
		t.Fatalf("unexpected filter %+v limit %d", svc.filter, svc.limit)
	}
	if rec.Header().Get("X-Total-Count") != "1" {
		t.Fatalf("expected total header, got %q", rec.Header().Get("X-Total-Count"))
	}
}

func TestListEventsFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeAudit{err: errors.New("db down")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestExportEventsWritesCSV(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := &fakeAudit{events: []audit.Event{{ID: "1", Actor: "hr@example.com", Action: audit.ActionEmployeeDelete, EntityType: audit.EntityEmployee, EntityID: "e1", CreatedAt: at}}}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events/export", nil))

	if rec.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", rec.Body.String())
	}
	if lines[1] != "1,hr@example.com,employee.delete,employee,e1,,,2024-03-01T10:00:00Z" {
		t.Fatalf("unexpected row %q", lines[1])
	}
}
