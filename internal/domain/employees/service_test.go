package employees

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdocs/internal/domain/compensation"
	"hrdocs/internal/domain/importer"
	"hrdocs/internal/domain/letters"
)

type memoryRepo struct {
	mu   sync.Mutex
	byID map[string]Employee
	seq  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: map[string]Employee{}}
}

func (m *memoryRepo) Get(_ context.Context, id string) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	emp, ok := m.byID[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return emp, nil
}

func (m *memoryRepo) List(_ context.Context, limit, offset int) ([]Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]Employee, 0, len(m.byID))
	for _, e := range m.byID {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	if offset >= len(all) {
		return []Employee{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (m *memoryRepo) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID), nil
}

func (m *memoryRepo) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.byID {
		if e.Email == strings.ToLower(email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) MaxCodeOrdinal(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	highest := 0
	for _, e := range m.byID {
		if n, ok := importer.CodeOrdinal(e.Code); ok && n > highest {
			highest = n
		}
	}
	return highest, nil
}

func (m *memoryRepo) Create(_ context.Context, emp Employee) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.byID {
		if e.Email == emp.Email {
			return Employee{}, ErrEmailExists
		}
		if e.Code == emp.Code {
			return Employee{}, ErrCodeExists
		}
	}
	m.seq++
	emp.CreatedAt = time.Unix(int64(m.seq), 0).UTC()
	emp.UpdatedAt = emp.CreatedAt
	m.byID[emp.ID] = emp
	return emp, nil
}

func (m *memoryRepo) Update(_ context.Context, emp Employee) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[emp.ID]; !ok {
		return Employee{}, ErrNotFound
	}
	m.byID[emp.ID] = emp
	return emp, nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	emp, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	emp.Status = status
	m.byID[id] = emp
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryRepo) byEmail(email string) Employee {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.byID {
		if e.Email == email {
			return e
		}
	}
	return Employee{}
}

type outcomeCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *outcomeCounter) ObserveImportRow(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[outcome]++
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	svc := NewService(repo, compensation.NewCalculator(compensation.DefaultPolicy()), zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC) }
	return svc, repo
}

func TestCreateAppliesDefaultsAndDecomposes(t *testing.T) {
	svc, _ := newTestService()

	emp, err := svc.Create(context.Background(), CreateInput{Name: " Asha Rao ", Email: "Asha@Example.com", AnnualCost: 1200000})

	require.NoError(t, err)
	assert.Equal(t, "EMP001", emp.Code)
	assert.Equal(t, "asha@example.com", emp.Email)
	assert.Equal(t, "Asha Rao", emp.Name)
	assert.Equal(t, importer.DefaultDesignation, emp.Designation)
	assert.Equal(t, importer.DefaultLocation, emp.Location)
	assert.Equal(t, StatusPending, emp.Status)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), emp.JoiningDate)
	assert.Equal(t, 600000.0, emp.Compensation.Basic)
	assert.Equal(t, 1200000.0, emp.Compensation.NetSalary)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Name: "B", Email: "A@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)
	_, err = svc.Create(ctx, CreateInput{Name: "C"})
	assert.ErrorIs(t, err, ErrEmailRequired)
	_, err = svc.Create(ctx, CreateInput{Email: "c@example.com"})
	assert.ErrorIs(t, err, ErrNameRequired)
	_, err = svc.Create(ctx, CreateInput{Name: "D", Email: "d@example.com", AnnualCost: -5})
	assert.ErrorIs(t, err, ErrInvalidCost)
}

func TestSequenceSkipsPastDeletedCodes(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	first, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "B", Email: "b@example.com"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, first.ID))

	third, err := svc.Create(ctx, CreateInput{Name: "C", Email: "c@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "EMP003", third.Code)
}

func TestUpdateMergesAndRecomputes(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	emp, err := svc.Create(ctx, CreateInput{Name: "Asha", Email: "asha@example.com", Department: "Ops", AnnualCost: 600000})
	require.NoError(t, err)

	cost := 1200000.0
	blank := "  "
	designation := "Lead"
	updated, err := svc.Update(ctx, emp.ID, UpdateInput{AnnualCost: &cost, Department: &blank, Designation: &designation})

	require.NoError(t, err)
	assert.Equal(t, "Ops", updated.Department)
	assert.Equal(t, "Lead", updated.Designation)
	assert.Equal(t, 228000.0, updated.Compensation.SpecialAllowance)

	negative := -1.0
	_, err = svc.Update(ctx, emp.ID, UpdateInput{AnnualCost: &negative})
	assert.ErrorIs(t, err, ErrInvalidCost)

	_, err = svc.Update(ctx, "missing", UpdateInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, CreateInput{Name: "B", Email: "b@example.com"})
	require.NoError(t, err)

	taken := "A@example.com"
	_, err = svc.Update(ctx, b.ID, UpdateInput{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailExists)

	same := "B@EXAMPLE.com"
	_, err = svc.Update(ctx, b.ID, UpdateInput{Email: &same})
	assert.NoError(t, err)
}

func TestSetStatus(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	emp, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, emp.ID, "offer accepted")
	require.NoError(t, err)
	assert.Equal(t, StatusOfferAccepted, updated.Status)

	_, err = svc.SetStatus(ctx, emp.ID, "Promoted")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestImportCSV(t *testing.T) {
	svc, repo := newTestService()
	counter := &outcomeCounter{}
	svc.WithObserver(counter)
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInput{Name: "Existing", Email: "old@example.com"})
	require.NoError(t, err)

	sheet := "Email Address,Full Name,Dept,DOJ,Annual CTC\n" +
		"new@example.com,New Hire,Platform,2026-04-01,\"5,00,000\"\n" +
		",Nobody,Ops,,\n" +
		"OLD@example.com,Again,Ops,,\n"

	res, err := svc.Import(ctx, "hires.csv", strings.NewReader(sheet))

	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, []string{"Row 3: Email missing", "Skipped old@example.com: Exists"}, res.Messages())
	hire := repo.byEmail("new@example.com")
	assert.Equal(t, "EMP002", hire.Code)
	assert.Equal(t, "Platform", hire.Department)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), hire.JoiningDate)
	assert.Equal(t, 500000.0, hire.Compensation.AnnualCost)
	assert.Equal(t, map[string]int{"imported": 1, "skipped": 1, "duplicate": 1}, counter.counts)

	again, err := svc.Import(ctx, "hires.csv", strings.NewReader(sheet))
	require.NoError(t, err)
	assert.Zero(t, again.Imported)
	count, _ := repo.Count(ctx)
	assert.Equal(t, 2, count)
}

// staleIndex answers every existence check with "no", as a concurrent writer
// would leave it between the check and the insert.
type staleIndex struct {
	*memoryRepo
}

func (staleIndex) EmailExists(context.Context, string) (bool, error) {
	return false, nil
}

func TestImportInsertRaceReportsDuplicate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(staleIndex{repo}, compensation.NewCalculator(compensation.DefaultPolicy()), zerolog.Nop())
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInput{Name: "Existing", Email: "taken@example.com"})
	require.NoError(t, err)

	res, err := svc.Import(ctx, "hires.csv", strings.NewReader("Email\ntaken@example.com\n"))

	require.NoError(t, err)
	assert.Zero(t, res.Imported)
	assert.Equal(t, []string{"Skipped taken@example.com: Exists"}, res.Messages())
}

func TestImportReportsSheetRowsAfterBlankLines(t *testing.T) {
	svc, _ := newTestService()
	sheet := "Email,Name\n" +
		"a@example.com,Asha\n" +
		",\n" +
		"\n" +
		",Nobody\n"

	res, err := svc.Import(context.Background(), "hires.csv", strings.NewReader(sheet))

	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, []string{"Row 5: Email missing"}, res.Messages())
}

func TestImportRejectsUnknownFormat(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Import(context.Background(), "hires.txt", strings.NewReader(""))

	assert.ErrorIs(t, err, importer.ErrUnsupportedFormat)
}

func TestRecipientAndOfferSent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	emp, err := svc.Create(ctx, CreateInput{Name: "Asha", Email: "asha@example.com", Designation: "Engineer", AnnualCost: 500000})
	require.NoError(t, err)

	r, err := svc.Recipient(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Engineer", r.Designation)
	assert.Equal(t, 500000.0, r.Compensation.AnnualCost)

	_, err = svc.Recipient(ctx, "nope")
	assert.ErrorIs(t, err, letters.ErrEmployeeNotFound)

	require.NoError(t, svc.MarkOfferSent(ctx, emp.ID))
	got, err := svc.Get(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOfferSent, got.Status)
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(" joined ")
	assert.True(t, ok)
	assert.Equal(t, StatusJoined, s)

	_, ok = ParseStatus("fired")
	assert.False(t, ok)
}
