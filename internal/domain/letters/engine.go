package letters

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Engine renders the built-in letter templates. It holds no per-call state
// and is safe for concurrent use.
type Engine struct {
	tmpl *template.Template
}

func NewEngine() (*Engine, error) {
	tmpl, err := template.New("letters").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse letter templates: %w", err)
	}
	return &Engine{tmpl: tmpl}, nil
}

// MustEngine is NewEngine for package-level wiring where the embedded
// templates are known to parse.
func MustEngine() *Engine {
	e, err := NewEngine()
	if err != nil {
		panic(err)
	}
	return e
}

type section struct {
	Number int
	Title  string
	Body   string
}

type offerView struct {
	DocumentContext
	Subject  string
	Sections []section
}

type genericView struct {
	DocumentContext
	LetterType string
}

// Render resolves letterType and renders the matching template.
func (e *Engine) Render(letterType string, dctx DocumentContext) (string, error) {
	return e.RenderType(ParseType(letterType), letterType, dctx)
}

// RenderType renders an already resolved type. raw is the caller's spelling,
// echoed only by the generic template.
func (e *Engine) RenderType(t Type, raw string, dctx DocumentContext) (string, error) {
	switch t {
	case Offer:
		return e.offer(dctx)
	case Experience, Relieving, Appraisal:
		return e.execute(t.String(), dctx)
	default:
		return e.execute("generic", genericView{DocumentContext: dctx, LetterType: raw})
	}
}

func (e *Engine) offer(dctx DocumentContext) (string, error) {
	view := offerView{DocumentContext: dctx, Subject: "Offer of Employment"}

	add := func(title, name string) error {
		body, err := e.execute(name, dctx)
		if err != nil {
			return err
		}
		view.Sections = append(view.Sections, section{Number: len(view.Sections) + 1, Title: title, Body: body})
		return nil
	}

	// A zero cost is an unpaid engagement: no remuneration section at all.
	if dctx.AnnualCost != 0 {
		if err := add("REMUNERATION", "offer_remuneration"); err != nil {
			return "", err
		}
	}
	if err := add("DATE OF JOINING", "offer_joining"); err != nil {
		return "", err
	}

	var err error
	switch engagementOf(dctx.EmploymentType) {
	case engagementIntern:
		view.Subject = "Offer of Internship"
		err = add("INTERNSHIP", "offer_internship")
	case engagementContract:
		view.Subject = "Offer of Contract Engagement"
		err = add("CONTRACT TERM", "offer_contract")
	default:
		err = add("PROBATION PERIOD", "offer_probation")
	}
	if err != nil {
		return "", err
	}
	if err := add("TERMS & CONDITIONS", "offer_terms"); err != nil {
		return "", err
	}

	return e.execute("offer", view)
}

func (e *Engine) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s letter: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
