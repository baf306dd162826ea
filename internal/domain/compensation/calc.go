package compensation

import (
	"math"

	"github.com/shopspring/decimal"
)

// Policy holds the payroll shares. HRAShare and PFShare apply to basic, not to the cost.
type Policy struct {
	BasicShare      float64
	HRAShare        float64
	PFShare         float64
	ProfessionalTax float64
}

func DefaultPolicy() Policy {
	return Policy{
		BasicShare:      DefaultBasicShare,
		HRAShare:        DefaultHRAShare,
		PFShare:         DefaultPFShare,
		ProfessionalTax: DefaultProfTaxYear,
	}
}

type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) *Calculator {
	if policy.BasicShare <= 0 {
		policy.BasicShare = DefaultBasicShare
	}
	if policy.HRAShare < 0 {
		policy.HRAShare = DefaultHRAShare
	}
	if policy.PFShare < 0 {
		policy.PFShare = DefaultPFShare
	}
	if policy.ProfessionalTax < 0 {
		policy.ProfessionalTax = DefaultProfTaxYear
	}
	return &Calculator{policy: policy}
}

func (c *Calculator) Policy() Policy {
	return c.policy
}

// Validate rejects inputs Decompose is not defined for.
func Validate(annualCost float64) error {
	if math.IsNaN(annualCost) || math.IsInf(annualCost, 0) {
		return ErrNotFinite
	}
	if annualCost < 0 {
		return ErrNegativeCost
	}
	return nil
}

// Decompose splits annualCost into basic, HRA, PF and a balancing special
// allowance. The caller must have checked the input with Validate.
func (c *Calculator) Decompose(annualCost float64) Breakdown {
	if annualCost == 0 {
		return Breakdown{}
	}
	p := c.policy

	basic := annualCost * p.BasicShare
	hra := basic * p.HRAShare
	pf := basic * p.PFShare
	special := annualCost - (basic + hra + pf)

	if special < 0 {
		// With the default shares the divisor is 1.62, a fixed payroll
		// approximation rather than a derived formula.
		special = 0
		basic = annualCost / c.lowCostDivisor()
		hra = basic * p.HRAShare
		pf = basic * p.PFShare
	}

	return Breakdown{
		AnnualCost:       round2(annualCost),
		Basic:            round2(basic),
		HRA:              round2(hra),
		SpecialAllowance: round2(special),
		ProvidentFund:    round2(pf),
		ProfessionalTax:  round2(p.ProfessionalTax),
		Deductions:       round2(pf + p.ProfessionalTax),
		NetSalary:        annualCost,
	}
}

func (c *Calculator) lowCostDivisor() float64 {
	return 1 + c.policy.HRAShare + c.policy.PFShare
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
