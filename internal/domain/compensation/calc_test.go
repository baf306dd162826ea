package compensation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func componentSum(b Breakdown) float64 {
	return b.Basic + b.HRA + b.SpecialAllowance + b.ProvidentFund
}

func TestDecomposeStandardCost(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())

	b := calc.Decompose(1200000)

	assert.Equal(t, 600000.0, b.Basic)
	assert.Equal(t, 300000.0, b.HRA)
	assert.Equal(t, 72000.0, b.ProvidentFund)
	assert.Equal(t, 228000.0, b.SpecialAllowance)
	assert.Equal(t, 2400.0, b.ProfessionalTax)
	assert.Equal(t, 74400.0, b.Deductions)
	assert.Equal(t, 1200000.0, b.NetSalary)
	assert.InDelta(t, 1200000, componentSum(b), 0.01)
}

func TestDecomposeZeroCost(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())

	b := calc.Decompose(0)

	assert.Equal(t, Breakdown{}, b)
	assert.True(t, b.Unpaid())
}

func TestDecomposeLowCostWithDefaultShares(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())

	b := calc.Decompose(120000)

	// Default shares use 81% of the cost, so the balancing allowance stays positive.
	assert.Equal(t, 60000.0, b.Basic)
	assert.Equal(t, 22800.0, b.SpecialAllowance)
	assert.InDelta(t, 120000, componentSum(b), 0.01)
}

func TestDecomposeRescalesWhenSharesOverrunCost(t *testing.T) {
	policy := DefaultPolicy()
	policy.BasicShare = 0.7
	calc := NewCalculator(policy)

	b := calc.Decompose(120000)

	assert.Equal(t, 0.0, b.SpecialAllowance)
	assert.Equal(t, 74074.07, b.Basic)
	assert.Equal(t, 37037.04, b.HRA)
	assert.Equal(t, 8888.89, b.ProvidentFund)
	assert.InDelta(t, 120000, componentSum(b), 0.02)
}

func TestDecomposeRescaleDivisorMatchesDefaults(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())
	assert.InDelta(t, 1.62, calc.lowCostDivisor(), 1e-9)
}

func TestDecomposeInvariantAcrossRange(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())
	for _, cost := range []float64{0, 0.01, 1, 999.99, 2400, 50000, 120000, 333333.33, 1e6, 98765432.1} {
		b := calc.Decompose(cost)
		require.GreaterOrEqual(t, b.SpecialAllowance, 0.0, "cost %v", cost)
		require.InDelta(t, cost, componentSum(b), 0.03, "cost %v", cost)
		require.Equal(t, cost, b.NetSalary)
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(0))
	require.NoError(t, Validate(500000))
	require.ErrorIs(t, Validate(-1), ErrNegativeCost)
	require.ErrorIs(t, Validate(math.NaN()), ErrNotFinite)
	require.ErrorIs(t, Validate(math.Inf(1)), ErrNotFinite)
}

func TestNewCalculatorFillsInvalidPolicy(t *testing.T) {
	calc := NewCalculator(Policy{BasicShare: 0, HRAShare: -1, PFShare: -1, ProfessionalTax: -5})
	assert.Equal(t, DefaultPolicy(), calc.Policy())
}
