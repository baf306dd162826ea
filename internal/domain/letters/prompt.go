package letters

import (
	"fmt"
	"strings"
)

const (
	standardLength = "Keep it concise (max 300 words)."
	shortLength    = "Keep it short and simple (max 150 words), suitable for an early-career candidate."
	unpaidNote     = "This is an unpaid engagement: do not mention salary, CTC or any compensation."
)

// BuildPrompt turns a context into the instruction sent to the remote
// generator.
func BuildPrompt(letterType string, dctx DocumentContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Act as a professional HR Manager. Write a %s letter for:\n", letterType)
	fmt.Fprintf(&b, "Company: %s\n", dctx.CompanyName)
	fmt.Fprintf(&b, "Name: %s\n", dctx.Name)
	fmt.Fprintf(&b, "Role: %s\n", dctx.Role)
	fmt.Fprintf(&b, "Department: %s\n", dctx.Department)
	fmt.Fprintf(&b, "Joining Date: %s\n", dctx.JoiningDate)
	if dctx.AnnualCost != 0 {
		fmt.Fprintf(&b, "Salary: %s\n", dctx.CTC)
	}
	b.WriteString("\nTone: Professional and Welcoming.\n")
	if dctx.AnnualCost == 0 {
		b.WriteString(unpaidNote + "\n")
	}
	if isEarlyCareer(dctx.Role) {
		b.WriteString(shortLength)
	} else {
		b.WriteString(standardLength)
	}
	return b.String()
}

func isEarlyCareer(role string) bool {
	lower := strings.ToLower(role)
	return strings.Contains(lower, "intern") || strings.Contains(lower, "trainee")
}
