package letters

import (
	"strings"
	"time"
)

// DocumentContext is everything a letter may interpolate. Amount fields are
// display strings already formatted by the caller; AnnualCost is the raw
// figure used only for branching.
type DocumentContext struct {
	EmployeeID     string
	EmployeeCode   string
	Name           string
	Role           string
	Department     string
	JoiningDate    string
	EmploymentType string
	Today          string

	CompanyName    string
	CompanyAddress string
	CompanyContact string

	AnnualCost    float64
	CTC           string
	Basic         string
	HRA           string
	Allowance     string
	ProvidentFund string
	Deductions    string
}

type Letter struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeCode string    `json:"employeeCode"`
	LetterType   string    `json:"letterType"`
	Content      string    `json:"content"`
	GeneratedOn  time.Time `json:"generatedOn"`
}

type engagement int

const (
	engagementPermanent engagement = iota
	engagementIntern
	engagementContract
)

func engagementOf(employmentType string) engagement {
	lower := strings.ToLower(employmentType)
	switch {
	case strings.Contains(lower, "intern"), strings.Contains(lower, "trainee"):
		return engagementIntern
	case strings.Contains(lower, "contract"):
		return engagementContract
	default:
		return engagementPermanent
	}
}
