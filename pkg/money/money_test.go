package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "Rs 3,000", Format(decimal.NewFromInt(3000)))
	assert.Equal(t, "Rs 0", Format(decimal.Zero))
	assert.Equal(t, "Rs 1,234.50", Format(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "Rs 20,000", Format(decimal.RequireFromString("20000.001")))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "17%", Percent(17))
}
