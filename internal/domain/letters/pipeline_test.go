package letters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(gen Generator, store *memoryStore) (*Pipeline, *sourceCounter) {
	p := NewPipeline(MustEngine(), gen, store, 20*time.Millisecond, zerolog.Nop())
	p.Now = func() time.Time { return time.Date(2026, 1, 19, 10, 0, 0, 0, time.UTC) }
	counter := &sourceCounter{}
	p.Observer = counter
	return p, counter
}

func TestGenerateReturnsGeneratorTextVerbatim(t *testing.T) {
	store := &memoryStore{}
	gen := &stubGenerator{text: "  Dear Asha, welcome aboard.\n"}
	p, counter := newTestPipeline(gen, store)

	letter, err := p.Generate(context.Background(), sampleContext(500000), "Offer Letter")

	require.NoError(t, err)
	assert.Equal(t, "  Dear Asha, welcome aboard.\n", letter.Content)
	assert.Equal(t, 1, counter.counts[SourceGenerator])
	require.Len(t, store.letters, 1)
	assert.Equal(t, "emp-1", store.letters[0].EmployeeID)
	assert.Equal(t, "EMP001", store.letters[0].EmployeeCode)
	assert.Equal(t, "Offer Letter", store.letters[0].LetterType)
	assert.NotEmpty(t, store.letters[0].ID)
	assert.Contains(t, gen.last, "Name: Asha Rao")
}

func TestGenerateFallsBackOnTimeout(t *testing.T) {
	store := &memoryStore{}
	p, counter := newTestPipeline(&stubGenerator{block: true}, store)
	dctx := sampleContext(500000)

	letter, err := p.Generate(context.Background(), dctx, "Offer Letter")

	require.NoError(t, err)
	want, err := MustEngine().Render("Offer Letter", dctx)
	require.NoError(t, err)
	assert.Equal(t, want, letter.Content)
	assert.Equal(t, 1, counter.counts[SourceTemplate])
}

func TestGenerateFallsBackOnErrorsAndBlankText(t *testing.T) {
	dctx := sampleContext(0)
	want, err := MustEngine().Render("relieving", dctx)
	require.NoError(t, err)

	for name, gen := range map[string]Generator{
		"transport error": &stubGenerator{err: errors.New("connection refused")},
		"blank text":      &stubGenerator{text: "   "},
		"disabled":        DisabledGenerator{},
	} {
		t.Run(name, func(t *testing.T) {
			p, _ := newTestPipeline(gen, &memoryStore{})
			letter, err := p.Generate(context.Background(), dctx, "relieving")
			require.NoError(t, err)
			assert.Equal(t, want, letter.Content)
		})
	}
}

func TestGenerateHistoryFailureIsFatal(t *testing.T) {
	boom := errors.New("disk full")
	store := &memoryStore{failNext: boom}
	p, _ := newTestPipeline(&stubGenerator{text: "hello"}, store)

	_, err := p.Generate(context.Background(), sampleContext(0), "offer")

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.letters)
}
