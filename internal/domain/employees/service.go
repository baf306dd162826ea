package employees

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hrdocs/internal/domain/compensation"
	"hrdocs/internal/domain/importer"
	"hrdocs/internal/domain/letters"
	"hrdocs/internal/platform/spreadsheet"
)

type Service struct {
	store    Repository
	calc     *compensation.Calculator
	log      zerolog.Logger
	observer importer.Observer
	now      func() time.Time
}

func NewService(store Repository, calc *compensation.Calculator, log zerolog.Logger) *Service {
	return &Service{store: store, calc: calc, log: log, now: time.Now}
}

// WithObserver reports import row outcomes to o.
func (s *Service) WithObserver(o importer.Observer) *Service {
	s.observer = o
	return s
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	return s.store.Get(ctx, id)
}

// List returns a page of employees, newest first, and the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Employee, int, error) {
	items, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Employee, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return Employee{}, ErrEmailRequired
	}
	if strings.TrimSpace(in.Name) == "" {
		return Employee{}, ErrNameRequired
	}
	if err := compensation.Validate(in.AnnualCost); err != nil {
		return Employee{}, ErrInvalidCost
	}
	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return Employee{}, err
	}
	if exists {
		return Employee{}, ErrEmailExists
	}

	code := strings.TrimSpace(in.Code)
	if code == "" {
		seq, err := s.Sequence(ctx)
		if err != nil {
			return Employee{}, err
		}
		code = importer.FormatCode(seq.Next())
	}
	joining := in.JoiningDate
	if joining.IsZero() {
		joining = today(s.now())
	}

	return s.store.Create(ctx, Employee{
		ID:             uuid.NewString(),
		Code:           code,
		Name:           strings.TrimSpace(in.Name),
		Email:          email,
		Designation:    orDefault(in.Designation, importer.DefaultDesignation),
		Department:     orDefault(in.Department, importer.DefaultDepartment),
		JoiningDate:    joining,
		Location:       orDefault(in.Location, importer.DefaultLocation),
		EmploymentType: orDefault(in.EmploymentType, importer.DefaultEmploymentType),
		Status:         StatusPending,
		Compensation:   s.calc.Decompose(in.AnnualCost),
	})
}

// Update merges the set fields into the stored employee. A new annual cost
// recomputes the whole breakdown.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Employee, error) {
	emp, err := s.store.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return Employee{}, ErrEmailRequired
		}
		if email != emp.Email {
			exists, err := s.store.EmailExists(ctx, email)
			if err != nil {
				return Employee{}, err
			}
			if exists {
				return Employee{}, ErrEmailExists
			}
			emp.Email = email
		}
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Employee{}, ErrNameRequired
		}
		emp.Name = strings.TrimSpace(*in.Name)
	}
	mergeText(&emp.Designation, in.Designation)
	mergeText(&emp.Department, in.Department)
	mergeText(&emp.Location, in.Location)
	mergeText(&emp.EmploymentType, in.EmploymentType)
	if in.JoiningDate != nil && !in.JoiningDate.IsZero() {
		emp.JoiningDate = *in.JoiningDate
	}
	if in.AnnualCost != nil {
		if err := compensation.Validate(*in.AnnualCost); err != nil {
			return Employee{}, ErrInvalidCost
		}
		emp.Compensation = s.calc.Decompose(*in.AnnualCost)
	}

	return s.store.Update(ctx, emp)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) SetStatus(ctx context.Context, id string, raw string) (Employee, error) {
	status, ok := ParseStatus(raw)
	if !ok {
		return Employee{}, ErrInvalidStatus
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return Employee{}, err
	}
	return s.store.Get(ctx, id)
}

// Sequence returns a code counter seeded past both the store size and the
// highest existing EMPnnn code, so deletions never cause a reused code.
func (s *Service) Sequence(ctx context.Context) (*importer.Counter, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	highest, err := s.store.MaxCodeOrdinal(ctx)
	if err != nil {
		return nil, err
	}
	return importer.NewCounter(max(count, highest)), nil
}

// Import parses an uploaded workbook and reconciles it row by row.
func (s *Service) Import(ctx context.Context, filename string, r io.Reader) (importer.Result, error) {
	sheet, err := spreadsheet.Parse(filename, r)
	if err != nil {
		return importer.Result{}, err
	}
	seq, err := s.Sequence(ctx)
	if err != nil {
		return importer.Result{}, err
	}

	rc := importer.NewReconciler(s.calc, s.store, importSink{s}, s.log)
	rc.Observer = s.observer
	rc.Now = s.now
	res := rc.ImportLines(ctx, sheet.Headers, sheet.Rows, sheet.Lines, seq)
	s.log.Info().Str("file", filename).Int("rows", len(sheet.Rows)).Int("imported", res.Imported).Int("errors", len(res.Errors)).Msg("bulk import finished")
	return res, nil
}

type importSink struct {
	s *Service
}

func (k importSink) CreateCandidate(ctx context.Context, c importer.Candidate) (string, error) {
	emp, err := k.s.store.Create(ctx, Employee{
		ID:             uuid.NewString(),
		Code:           c.Code,
		Name:           c.Name,
		Email:          c.Email,
		Designation:    c.Designation,
		Department:     c.Department,
		JoiningDate:    c.JoiningDate,
		Location:       c.Location,
		EmploymentType: c.EmploymentType,
		Status:         StatusPending,
		Compensation:   c.Compensation,
	})
	if errors.Is(err, ErrEmailExists) {
		return "", fmt.Errorf("%w: %s", importer.ErrDuplicateEmail, c.Email)
	}
	if err != nil {
		return "", err
	}
	return emp.ID, nil
}

// Recipient exposes an employee to letter generation.
func (s *Service) Recipient(ctx context.Context, id string) (letters.Recipient, error) {
	emp, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return letters.Recipient{}, fmt.Errorf("%w: %s", letters.ErrEmployeeNotFound, id)
	}
	if err != nil {
		return letters.Recipient{}, err
	}
	return letters.Recipient{
		ID:             emp.ID,
		Code:           emp.Code,
		Name:           emp.Name,
		Email:          emp.Email,
		Designation:    emp.Designation,
		Department:     emp.Department,
		EmploymentType: emp.EmploymentType,
		JoiningDate:    emp.JoiningDate,
		Compensation:   emp.Compensation,
	}, nil
}

func (s *Service) MarkOfferSent(ctx context.Context, id string) error {
	return s.store.UpdateStatus(ctx, id, StatusOfferSent)
}

func mergeText(dst *string, src *string) {
	if src == nil {
		return
	}
	if v := strings.TrimSpace(*src); v != "" {
		*dst = v
	}
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

func today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
