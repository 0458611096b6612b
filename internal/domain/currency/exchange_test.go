package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func halfUSD(t *testing.T) *Calculator {
	t.Helper()
	tbl, err := NewTable([]Currency{{Name: "USD", ToBase: decimal.RequireFromString("0.5")}})
	require.NoError(t, err)
	return NewCalculator(tbl)
}

func TestConvert_KnownRate(t *testing.T) {
	calc := halfUSD(t)

	got := calc.Convert(Amount(decimal.NewFromInt(10)), "USD")
	assert.Equal(t, "5", got.String())
}

func TestConvert_PreservesFraction(t *testing.T) {
	calc := halfUSD(t)

	got := calc.Convert(Amount(decimal.RequireFromString("10.50")), "USD")
	assert.True(t, got.Equal(decimal.RequireFromString("5.25")), got.String())
}

func TestConvert_ZeroCases(t *testing.T) {
	calc := halfUSD(t)

	cases := []struct {
		name   string
		amount decimal.NullDecimal
		code   string
	}{
		{"nil amount", decimal.NullDecimal{}, "USD"},
		{"zero amount", Amount(decimal.Zero), "USD"},
		{"unknown code", Amount(decimal.NewFromInt(10)), "CAD"},
		{"empty code", Amount(decimal.NewFromInt(10)), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, calc.Convert(tc.amount, tc.code).IsZero())
		})
	}
}

func TestConvert_EmptyTable(t *testing.T) {
	for _, calc := range []*Calculator{NewCalculator(EmptyTable()), NewCalculator(nil)} {
		assert.True(t, calc.Convert(Amount(decimal.NewFromInt(10)), "USD").IsZero())
	}
}

func TestConvertKnown_ReportsUnknownRate(t *testing.T) {
	calc := halfUSD(t)

	_, known := calc.ConvertKnown(Amount(decimal.NewFromInt(3)), "XYZ")
	assert.False(t, known)

	_, known = calc.ConvertKnown(decimal.NullDecimal{}, "XYZ")
	assert.True(t, known, "absent amounts are not unknown-currency events")
}

func TestCurrencyDefault(t *testing.T) {
	assert.Equal(t, "USD", CurrencyDefault("NULL"))
	assert.Equal(t, "CAD", CurrencyDefault("CAD"))
	assert.Equal(t, "", CurrencyDefault(""))
	assert.Equal(t, "null", CurrencyDefault("null"))
}

func TestCalculator_CustomNullCurrency(t *testing.T) {
	calc := NewCalculator(EmptyTable(), WithNullCurrency("NONE", "EUR"))
	assert.Equal(t, "EUR", calc.CurrencyDefault("NONE"))
	assert.Equal(t, "NULL", calc.CurrencyDefault("NULL"))
}

//Personal.AI order the ending
