package letters

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultTimeout = 5 * time.Second

const (
	SourceGenerator = "generator"
	SourceTemplate  = "template"
)

// Generator is a best-effort remote text generator.
type Generator interface {
	Infer(ctx context.Context, prompt string) (string, error)
}

// DisabledGenerator never produces text, so every letter comes from the
// built-in templates.
type DisabledGenerator struct{}

func (DisabledGenerator) Infer(context.Context, string) (string, error) {
	return "", ErrGeneratorDisabled
}

type HistoryWriter interface {
	InsertLetter(ctx context.Context, l Letter) (Letter, error)
}

type Observer interface {
	ObserveLetter(letterType, source string)
}

type Pipeline struct {
	Engine    *Engine
	Generator Generator
	History   HistoryWriter
	Observer  Observer
	Timeout   time.Duration
	Log       zerolog.Logger
	Now       func() time.Time
}

func NewPipeline(engine *Engine, gen Generator, history HistoryWriter, timeout time.Duration, log zerolog.Logger) *Pipeline {
	if gen == nil {
		gen = DisabledGenerator{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Pipeline{
		Engine:    engine,
		Generator: gen,
		History:   history,
		Timeout:   timeout,
		Log:       log,
		Now:       time.Now,
	}
}

// Generate produces a letter and appends it to the history. Generator
// failures fall back to the templates and are only visible in the log; a
// failed history write is returned.
func (p *Pipeline) Generate(ctx context.Context, dctx DocumentContext, letterType string) (Letter, error) {
	kind := ParseType(letterType)

	content, source := p.infer(ctx, kind, letterType, dctx)
	if source == SourceTemplate {
		rendered, err := p.Engine.RenderType(kind, letterType, dctx)
		if err != nil {
			return Letter{}, err
		}
		content = rendered
	}
	if p.Observer != nil {
		p.Observer.ObserveLetter(kind.String(), source)
	}

	letter := Letter{
		ID:           uuid.NewString(),
		EmployeeID:   dctx.EmployeeID,
		EmployeeCode: dctx.EmployeeCode,
		LetterType:   letterType,
		Content:      content,
		GeneratedOn:  p.Now().UTC(),
	}
	return p.History.InsertLetter(ctx, letter)
}

func (p *Pipeline) infer(ctx context.Context, kind Type, letterType string, dctx DocumentContext) (string, string) {
	callCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	text, err := p.Generator.Infer(callCtx, BuildPrompt(letterType, dctx))
	if errors.Is(err, ErrGeneratorDisabled) {
		return "", SourceTemplate
	}
	if err != nil {
		p.Log.Warn().Err(err).Str("letterType", kind.String()).Str("employeeId", dctx.EmployeeID).Msg("generator unavailable, using template")
		return "", SourceTemplate
	}
	if strings.TrimSpace(text) == "" {
		p.Log.Warn().Str("letterType", kind.String()).Str("employeeId", dctx.EmployeeID).Msg("generator returned empty text, using template")
		return "", SourceTemplate
	}
	return text, SourceGenerator
}
