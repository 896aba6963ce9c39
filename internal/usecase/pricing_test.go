package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		lines    []PriceLine
		discount string
		total    string
		final    string
	}{
		{"two units", []PriceLine{{ProductID: 1, Quantity: 2, UnitPrice: d("10.00")}}, "0", "20.00", "20.00"},
		{"several lines with discount", []PriceLine{
			{ProductID: 1, Quantity: 3, UnitPrice: d("19.90")},
			{ProductID: 2, Quantity: 1, UnitPrice: d("5.05")},
		}, "4.75", "64.75", "60.00"},
		{"discount above total", []PriceLine{{ProductID: 1, Quantity: 1, UnitPrice: d("10.00")}}, "15.00", "10.00", "-5.00"},
		{"no lines", nil, "0", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.lines, d(tt.discount))
			assert.True(t, got.Total.Equal(d(tt.total)), "total %s", got.Total)
			assert.True(t, got.FinalValue.Equal(d(tt.final)), "final %s", got.FinalValue)
			assert.Len(t, got.Subtotals, len(tt.lines))
		})
	}
}

func TestComputeTotalsSubtotals(t *testing.T) {
	got := ComputeTotals([]PriceLine{
		{ProductID: 1, Quantity: 2, UnitPrice: d("1.25")},
		{ProductID: 2, Quantity: 4, UnitPrice: d("0.10")},
	}, decimal.Zero)
	assert.True(t, got.Subtotals[0].Equal(d("2.50")))
	assert.True(t, got.Subtotals[1].Equal(d("0.40")))
	assert.True(t, got.Total.Equal(got.Subtotals[0].Add(got.Subtotals[1])))
}
