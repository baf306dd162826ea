package compensation

// Breakdown is the annual salary structure derived from a single cost-to-company
// figure. NetSalary carries the original CTC for display, not a net-of-deductions amount.
type Breakdown struct {
	AnnualCost       float64 `json:"annualCost"`
	Basic            float64 `json:"basicSalary"`
	HRA              float64 `json:"hra"`
	SpecialAllowance float64 `json:"specialAllowance"`
	ProvidentFund    float64 `json:"providentFund"`
	ProfessionalTax  float64 `json:"professionalTax"`
	Deductions       float64 `json:"deductions"`
	NetSalary        float64 `json:"netSalary"`
}

// Unpaid reports whether the breakdown describes an unpaid engagement.
func (b Breakdown) Unpaid() bool {
	return b.AnnualCost == 0
}
