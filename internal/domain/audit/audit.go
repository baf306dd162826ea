package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"hrdocs/internal/requestctx"
)

const (
	ActionEmployeeCreate = "employee.create"
	ActionEmployeeUpdate = "employee.update"
	ActionEmployeeDelete = "employee.delete"
	ActionEmployeeStatus = "employee.status"
	ActionEmployeeImport = "employee.import"
	ActionLetterGenerate = "letter.generate"
	ActionEmailSend      = "email.send"

	EntityEmployee = "employee"
	EntityLetter   = "letter"
	EntityImport   = "import"
)

type Event struct {
	ID         string          `json:"id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Detail     json.RawMessage `json:"detail,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
}

// Recorder persists events.
type Recorder interface {
	Record(ctx context.Context, evt Event) error
}

// NewEvent stamps an event with the operator and request id carried by ctx.
func NewEvent(ctx context.Context, action, entityType, entityID, ip string, detail any) (Event, error) {
	evt := Event{
		Actor:      requestctx.GetSubject(ctx),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestctx.GetRequestID(ctx),
		IP:         ip,
	}
	if evt.Actor == "" {
		evt.Actor = "anonymous"
	}
	if detail != nil {
		payload, err := json.Marshal(detail)
		if err != nil {
			return Event{}, err
		}
		evt.Detail = payload
	}
	return evt, nil
}

// Write records an event and only logs a failure; the action it describes
// has already happened.
func Write(ctx context.Context, rec Recorder, action, entityType, entityID, ip string, detail any) {
	if rec == nil {
		return
	}
	evt, err := NewEvent(ctx, action, entityType, entityID, ip, detail)
	if err == nil {
		err = rec.Record(ctx, evt)
	}
	if err != nil {
		log.Warn().Err(err).Str("action", action).Str("entityId", entityID).Str("requestId", requestctx.GetRequestID(ctx)).Msg("audit write failed")
	}
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, evt Event) error {
	if s == nil || s.DB == nil {
		return nil
	}
	var detail []byte
	if len(evt.Detail) > 0 {
		detail = evt.Detail
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor, action, entity_type, entity_id, detail_json, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, evt.Actor, evt.Action, evt.EntityType, evt.EntityID, detail, evt.RequestID, evt.IP)
	return err
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, error) {
	query, args := buildBaseQuery("SELECT id, actor, action, entity_type, entity_id, request_id, ip, created_at, detail_json", filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var evt Event
		var detail []byte
		if err := rows.Scan(&evt.ID, &evt.Actor, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &detail); err != nil {
			return nil, err
		}
		if len(detail) > 0 {
			evt.Detail = detail
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE 1=1"
	var args []any
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		query += fmt.Sprintf(" AND entity_id = $%d", len(args))
	}
	return query, args
}
