package letters

import "strings"

// Type is the closed set of letter kinds the engine can render.
type Type int

const (
	Generic Type = iota
	Offer
	Experience
	Relieving
	Appraisal
)

// match order decides ambiguous inputs such as "offer and experience".
var matchOrder = []struct {
	keyword string
	kind    Type
}{
	{"offer", Offer},
	{"experience", Experience},
	{"relieving", Relieving},
	{"appraisal", Appraisal},
}

// ParseType resolves free-form input ("Offer Letter", "offer-letter") by
// case-insensitive substring match. Anything unmatched is Generic.
func ParseType(raw string) Type {
	lower := strings.ToLower(raw)
	for _, m := range matchOrder {
		if strings.Contains(lower, m.keyword) {
			return m.kind
		}
	}
	return Generic
}

func (t Type) String() string {
	switch t {
	case Offer:
		return "offer"
	case Experience:
		return "experience"
	case Relieving:
		return "relieving"
	case Appraisal:
		return "appraisal"
	default:
		return "generic"
	}
}

// Label is the human-facing name used in attachment file names and PDF titles.
func (t Type) Label() string {
	switch t {
	case Offer:
		return "Offer"
	case Experience:
		return "Experience"
	case Relieving:
		return "Relieving"
	case Appraisal:
		return "Appraisal"
	default:
		return "HR"
	}
}
