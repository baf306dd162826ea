package importer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hrdocs/internal/domain/compensation"
)

const (
	DefaultName           = "Unknown"
	DefaultDesignation    = "TBD"
	DefaultDepartment     = "General"
	DefaultLocation       = "Remote"
	DefaultEmploymentType = "Full-time"

	// headerOffset turns a 0-based data index into the sheet row a user sees.
	headerOffset = 2
)

// Candidate is a reconciled row ready to persist.
type Candidate struct {
	Code           string
	Name           string
	Email          string
	Designation    string
	Department     string
	JoiningDate    time.Time
	Location       string
	EmploymentType string
	Compensation   compensation.Breakdown
}

type EmailIndex interface {
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Sink persists one candidate and its compensation as a single unit.
type Sink interface {
	CreateCandidate(ctx context.Context, c Candidate) (string, error)
}

type Observer interface {
	ObserveImportRow(outcome string)
}

const (
	OutcomeImported  = "imported"
	OutcomeSkipped   = "skipped"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

type Result struct {
	Imported int        `json:"importedCount"`
	Errors   []RowError `json:"details"`
}

func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.String())
	}
	return out
}

type Reconciler struct {
	Aliases  AliasTable
	Calc     *compensation.Calculator
	Emails   EmailIndex
	Sink     Sink
	Observer Observer
	Log      zerolog.Logger
	Now      func() time.Time
}

func NewReconciler(calc *compensation.Calculator, emails EmailIndex, sink Sink, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		Aliases: DefaultAliases,
		Calc:    calc,
		Emails:  emails,
		Sink:    sink,
		Log:     log,
		Now:     time.Now,
	}
}

// Import reconciles rows one at a time. Every row ends up either imported or
// in Errors; a failing row never affects its neighbours.
func (rc *Reconciler) Import(ctx context.Context, headers []string, rows []Row, seq *Counter) Result {
	return rc.ImportLines(ctx, headers, rows, nil, seq)
}

// ImportLines is Import with the sheet row number of every row, for sources
// that dropped blank rows. A nil lines numbers rows from their index.
func (rc *Reconciler) ImportLines(ctx context.Context, headers []string, rows []Row, lines []int, seq *Counter) Result {
	columns := Resolve(headers, rc.Aliases)
	var res Result
	for i, row := range rows {
		rowNum := i + headerOffset
		if i < len(lines) {
			rowNum = lines[i]
		}
		outcome, rowErr := rc.importRow(ctx, columns, row, rowNum, seq)
		if rowErr != nil {
			res.Errors = append(res.Errors, *rowErr)
		} else {
			res.Imported++
		}
		if rc.Observer != nil {
			rc.Observer.ObserveImportRow(outcome)
		}
	}
	return res
}

func (rc *Reconciler) importRow(ctx context.Context, columns Resolution, row Row, rowNum int, seq *Counter) (string, *RowError) {
	email := strings.ToLower(columns.Lookup(row, FieldEmail).String())
	if email == "" {
		return OutcomeSkipped, &RowError{Row: rowNum, Reason: ReasonEmailMissing}
	}

	exists, err := rc.Emails.EmailExists(ctx, email)
	if err != nil {
		rc.Log.Info().Err(err).Int("row", rowNum).Msg("import email lookup failed")
		return OutcomeFailed, &RowError{Row: rowNum, Reason: err.Error()}
	}
	if exists {
		return OutcomeDuplicate, ptr(duplicateError(rowNum, email))
	}

	cost := 0.0
	if v, ok := columns.Lookup(row, FieldAnnualCost).Float(); ok {
		cost = v
	}
	if err := compensation.Validate(cost); err != nil {
		if errors.Is(err, compensation.ErrNegativeCost) {
			return OutcomeSkipped, &RowError{Row: rowNum, Reason: ReasonNegativeCost}
		}
		cost = 0
	}

	joining, ok := ParseDate(columns.Lookup(row, FieldJoiningDate))
	if !ok {
		joining = truncateDay(rc.Now())
	}

	candidate := Candidate{
		Name:           textOr(columns.Lookup(row, FieldName), DefaultName),
		Email:          email,
		Designation:    textOr(columns.Lookup(row, FieldDesignation), DefaultDesignation),
		Department:     textOr(columns.Lookup(row, FieldDepartment), DefaultDepartment),
		JoiningDate:    joining,
		Location:       textOr(columns.Lookup(row, FieldLocation), DefaultLocation),
		EmploymentType: textOr(columns.Lookup(row, FieldEmploymentType), DefaultEmploymentType),
		Compensation:   rc.Calc.Decompose(cost),
	}

	explicitCode := columns.Lookup(row, FieldEmployeeCode).String()
	if explicitCode != "" {
		candidate.Code = explicitCode
	} else {
		candidate.Code = FormatCode(seq.Next())
	}

	if _, err := rc.Sink.CreateCandidate(ctx, candidate); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return OutcomeDuplicate, ptr(duplicateError(rowNum, email))
		}
		rc.Log.Info().Err(err).Int("row", rowNum).Str("email", email).Msg("import row failed")
		return OutcomeFailed, &RowError{Row: rowNum, Reason: err.Error()}
	}
	if explicitCode != "" {
		// Keep the sequence in step with the store size and ahead of any
		// explicit EMPnnn code, so later synthesized codes cannot collide.
		seq.Next()
		if n, ok := CodeOrdinal(explicitCode); ok {
			seq.AtLeast(n)
		}
	}
	return OutcomeImported, nil
}

func textOr(cell Cell, fallback string) string {
	if value := cell.String(); value != "" {
		return value
	}
	return fallback
}

func ptr[T any](v T) *T {
	return &v
}
