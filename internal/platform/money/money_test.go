package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "INR 0.00", Format("INR", 0))
	assert.Equal(t, "INR 999.50", Format("INR", 999.5))
	assert.Equal(t, "INR 1,234,567.89", Format("inr", 1234567.891))
	assert.Equal(t, "INR 500,000.00", Format("", 500000))
	assert.Equal(t, "USD 12.35", Format("USD", 12.345))
}
