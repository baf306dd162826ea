package employees

import (
	"strings"
	"time"

	"hrdocs/internal/domain/compensation"
)

type Status string

const (
	StatusPending       Status = "Pending"
	StatusOfferSent     Status = "Offer Sent"
	StatusOfferAccepted Status = "Offer Accepted"
	StatusJoined        Status = "Joined"
	StatusRelieved      Status = "Relieved"
)

var Statuses = []Status{StatusPending, StatusOfferSent, StatusOfferAccepted, StatusJoined, StatusRelieved}

// ParseStatus matches case-insensitively and ignores surrounding space.
func ParseStatus(raw string) (Status, bool) {
	for _, s := range Statuses {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, true
		}
	}
	return "", false
}

type Employee struct {
	ID             string                 `json:"id"`
	Code           string                 `json:"empId"`
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	Designation    string                 `json:"designation"`
	Department     string                 `json:"department"`
	JoiningDate    time.Time              `json:"joiningDate"`
	Location       string                 `json:"location"`
	EmploymentType string                 `json:"employmentType"`
	Status         Status                 `json:"status"`
	Compensation   compensation.Breakdown `json:"compensation"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

type CreateInput struct {
	Code           string
	Name           string
	Email          string
	Designation    string
	Department     string
	JoiningDate    time.Time
	Location       string
	EmploymentType string
	AnnualCost     float64
}

// UpdateInput carries only the fields to change.
type UpdateInput struct {
	Name           *string
	Email          *string
	Designation    *string
	Department     *string
	JoiningDate    *time.Time
	Location       *string
	EmploymentType *string
	AnnualCost     *float64
}
