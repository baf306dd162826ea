package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrdocs/internal/domain/compensation"
	"hrdocs/internal/domain/importer"
	"hrdocs/internal/domain/letters"
)

// Repository is the record store the service needs.
type Repository interface {
	Get(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context, limit, offset int) ([]Employee, error)
	Count(ctx context.Context) (int, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	MaxCodeOrdinal(ctx context.Context) (int, error)
	Create(ctx context.Context, emp Employee) (Employee, error)
	Update(ctx context.Context, emp Employee) (Employee, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const selectEmployee = `
    SELECT e.id::text, e.code, e.name, e.email, e.designation, e.department, e.joining_date,
           e.location, e.employment_type, e.status, e.created_at, e.updated_at,
           COALESCE(c.annual_cost, 0), COALESCE(c.basic, 0), COALESCE(c.hra, 0),
           COALESCE(c.special_allowance, 0), COALESCE(c.provident_fund, 0),
           COALESCE(c.professional_tax, 0), COALESCE(c.deductions, 0), COALESCE(c.net_salary, 0)
    FROM employees e
    LEFT JOIN compensations c ON c.employee_id = e.id
`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	var status string
	c := &emp.Compensation
	err := row.Scan(
		&emp.ID, &emp.Code, &emp.Name, &emp.Email, &emp.Designation, &emp.Department, &emp.JoiningDate,
		&emp.Location, &emp.EmploymentType, &status, &emp.CreatedAt, &emp.UpdatedAt,
		&c.AnnualCost, &c.Basic, &c.HRA, &c.SpecialAllowance, &c.ProvidentFund,
		&c.ProfessionalTax, &c.Deductions, &c.NetSalary,
	)
	emp.Status = Status(status)
	return emp, err
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	if !validID(id) {
		return Employee{}, ErrNotFound
	}
	emp, err := scanEmployee(s.DB.QueryRow(ctx, selectEmployee+" WHERE e.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, selectEmployee+" ORDER BY e.created_at DESC, e.code LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Employee, 0, limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees").Scan(&n)
	return n, err
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE email = $1", strings.ToLower(email)).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// MaxCodeOrdinal is the highest N among codes shaped EMPnnn, or 0.
func (s *Store) MaxCodeOrdinal(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(MAX(CAST(substring(code FROM '^`+importer.CodePrefix+`([0-9]+)$') AS INTEGER)), 0)
    FROM employees
  `).Scan(&n)
	return n, err
}

// Create inserts the employee and its compensation in one transaction.
func (s *Store) Create(ctx context.Context, emp Employee) (Employee, error) {
	err := pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
      INSERT INTO employees (id, code, name, email, designation, department, joining_date, location, employment_type, status)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
      RETURNING created_at, updated_at
    `, emp.ID, emp.Code, emp.Name, emp.Email, emp.Designation, emp.Department, emp.JoiningDate,
			emp.Location, emp.EmploymentType, string(emp.Status)).Scan(&emp.CreatedAt, &emp.UpdatedAt); err != nil {
			return err
		}
		return replaceCompensation(ctx, tx, emp.ID, emp.Compensation)
	})
	if err != nil {
		return Employee{}, mapUniqueViolation(err)
	}
	return emp, nil
}

// Update overwrites the editable fields and the compensation.
func (s *Store) Update(ctx context.Context, emp Employee) (Employee, error) {
	err := pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
      UPDATE employees
      SET name = $2, email = $3, designation = $4, department = $5, joining_date = $6,
          location = $7, employment_type = $8, updated_at = now()
      WHERE id = $1
      RETURNING updated_at
    `, emp.ID, emp.Name, emp.Email, emp.Designation, emp.Department, emp.JoiningDate,
			emp.Location, emp.EmploymentType).Scan(&emp.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return replaceCompensation(ctx, tx, emp.ID, emp.Compensation)
	})
	if err != nil {
		return Employee{}, mapUniqueViolation(err)
	}
	return emp, nil
}

func replaceCompensation(ctx context.Context, tx pgx.Tx, employeeID string, c compensation.Breakdown) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO compensations (employee_id, annual_cost, basic, hra, special_allowance, provident_fund, professional_tax, deductions, net_salary)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    ON CONFLICT (employee_id) DO UPDATE SET
      annual_cost = EXCLUDED.annual_cost, basic = EXCLUDED.basic, hra = EXCLUDED.hra,
      special_allowance = EXCLUDED.special_allowance, provident_fund = EXCLUDED.provident_fund,
      professional_tax = EXCLUDED.professional_tax, deductions = EXCLUDED.deductions,
      net_salary = EXCLUDED.net_salary, updated_at = now()
  `, employeeID, c.AnnualCost, c.Basic, c.HRA, c.SpecialAllowance, c.ProvidentFund, c.ProfessionalTax, c.Deductions, c.NetSalary)
	return err
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := s.DB.Exec(ctx, "UPDATE employees SET status = $2, updated_at = now() WHERE id = $1", id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the employee with its compensation and letter history.
func (s *Store) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM generated_letters WHERE employee_id = $1", id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM compensations WHERE employee_id = $1", id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, "DELETE FROM employees WHERE id = $1", id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) InsertLetter(ctx context.Context, l letters.Letter) (letters.Letter, error) {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO generated_letters (id, employee_id, employee_code, letter_type, content, generated_on)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, l.ID, l.EmployeeID, l.EmployeeCode, l.LetterType, l.Content, l.GeneratedOn)
	if err != nil {
		return letters.Letter{}, fmt.Errorf("save letter history: %w", err)
	}
	return l, nil
}

const selectLetter = `
    SELECT id::text, employee_id::text, employee_code, letter_type, content, generated_on
    FROM generated_letters
`

func scanLetter(row pgx.Row) (letters.Letter, error) {
	var l letters.Letter
	err := row.Scan(&l.ID, &l.EmployeeID, &l.EmployeeCode, &l.LetterType, &l.Content, &l.GeneratedOn)
	return l, err
}

func (s *Store) ListLetters(ctx context.Context, employeeID string) ([]letters.Letter, error) {
	if !validID(employeeID) {
		return []letters.Letter{}, nil
	}
	rows, err := s.DB.Query(ctx, selectLetter+" WHERE employee_id = $1 ORDER BY generated_on DESC", employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []letters.Letter{}
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) GetLetter(ctx context.Context, id string) (letters.Letter, error) {
	if !validID(id) {
		return letters.Letter{}, letters.ErrLetterNotFound
	}
	l, err := scanLetter(s.DB.QueryRow(ctx, selectLetter+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return letters.Letter{}, letters.ErrLetterNotFound
	}
	return l, err
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return ErrEmailExists
	case strings.Contains(pgErr.ConstraintName, "code"):
		return ErrCodeExists
	default:
		return err
	}
}
