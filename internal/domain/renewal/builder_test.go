package renewal

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newCalculator(t *testing.T, rows ...currency.Currency) *currency.Calculator {
	t.Helper()
	tbl, err := currency.NewTable(rows)
	require.NoError(t, err)
	return currency.NewCalculator(tbl)
}

func fee(price any, code string) map[string]any {
	return map[string]any{"price": price, "currency": code}
}

var testMatter = Matter{UCID: "US-12345-A1", ApplicationCountry: "US", SerialNumber: "12/345,678"}

func TestBuildRenewals_FullRecord(t *testing.T) {
	calc := newCalculator(t,
		currency.Currency{Name: "USD", ToBase: dec("1")},
		currency.Currency{Name: "EUR", ToBase: dec("1.1")},
	)
	b := NewBuilder(calc, nil)

	rec := map[string]any{
		"next_renewal_date":        "2030-05-01",
		"renewal_sequence":         3,
		"next_renewal_description": 3.5,
		"grace_period_end_date":    "2030-11-01",
		"next_renewal_fee":         fee(100, "USD"),
		"next_agent_fee":           fee("20.50", "EUR"),
		"next_grace_period_fee":    fee(40.25, "USD"),
		"next_claim_fee":           fee(json.Number("10"), "EUR"),
		"country":                  "GB",
	}

	out := b.BuildRenewals(nil, []map[string]any{rec}, testMatter)
	require.Len(t, out, 1)
	r := out[0]

	assert.Equal(t, "US", r.Country, "country comes from the matter")
	assert.Equal(t, testMatter.SerialNumber, r.SerialNo)
	assert.Equal(t, testMatter.UCID, r.UCID)
	assert.Equal(t, "3.5", r.Description)
	assert.Equal(t, "3", r.Sequence)
	assert.Equal(t, "2030-05-01", r.DueDate)
	assert.Equal(t, "2030-11-01", r.GraceDate)
	assert.Equal(t, InstructionUndecided, r.CurrentInstruction)
	assert.Equal(t, ConfidenceUnset, r.Confidence)

	p := r.Price
	require.NotNil(t, p)
	assert.Equal(t, "USD", p.Due.Currency)
	assert.True(t, p.Agent.Price.Decimal.Equal(dec("20.50")))
	assert.True(t, p.CalculatedDuePrice.Equal(dec("100")))
	assert.True(t, p.CalculatedAgentPrice.Equal(dec("22.55")), p.CalculatedAgentPrice.String())
	assert.True(t, p.CalculatedGracePrice.Equal(dec("40.25")))
	assert.True(t, p.CalculatedClaimPrice.Equal(dec("11")))
}

func TestBuildRenewals_LimitedFees(t *testing.T) {
	calc := newCalculator(t, currency.Currency{Name: "USD", ToBase: dec("1")})
	b := NewBuilder(calc, nil)

	rec := map[string]any{
		"next_renewal_date": "2030-05-01",
		"next_renewal_fee":  fee(250, "USD"),
	}

	out := b.BuildRenewals(nil, []map[string]any{rec}, testMatter)
	require.Len(t, out, 1)

	p := out[0].Price
	assert.True(t, p.CalculatedDuePrice.Equal(dec("250")))
	assert.True(t, p.CalculatedAgentPrice.IsZero())
	assert.True(t, p.CalculatedGracePrice.IsZero())
	assert.True(t, p.CalculatedClaimPrice.IsZero())
	assert.False(t, p.Agent.Price.Valid)
	assert.Empty(t, out[0].Description)
}

func TestBuildRenewals_AppendsToAccumulatorInOrder(t *testing.T) {
	b := NewBuilder(newCalculator(t), nil)
	existing := &Renewal{UCID: "EXISTING"}

	recs := []map[string]any{
		{"next_renewal_date": "2030-01-01"},
		{"next_renewal_date": "2031-01-01"},
	}
	out := b.BuildRenewals([]*Renewal{existing}, recs, testMatter)

	require.Len(t, out, 3)
	assert.Same(t, existing, out[0])
	assert.Equal(t, "2030-01-01", out[1].DueDate)
	assert.Equal(t, "2031-01-01", out[2].DueDate)
}

func TestBuildRenewals_NullCurrencyUsesDefault(t *testing.T) {
	calc := newCalculator(t, currency.Currency{Name: "USD", ToBase: dec("2")})
	b := NewBuilder(calc, nil)

	out := b.BuildRenewals(nil, []map[string]any{{"next_renewal_fee": fee(5, "NULL")}}, testMatter)

	assert.Equal(t, "USD", out[0].Price.Due.Currency)
	assert.True(t, out[0].Price.CalculatedDuePrice.Equal(dec("10")))
}

func TestBuildRenewals_UnknownCurrencyIsZeroAndReported(t *testing.T) {
	var unknown []string
	b := NewBuilder(newCalculator(t), nil, WithUnknownCurrencyHook(func(code string) {
		unknown = append(unknown, code)
	}))

	out := b.BuildRenewals(nil, []map[string]any{{
		"next_renewal_fee": fee(5, "XTS"),
		"next_claim_fee":   fee(nil, "XTS"),
		"next_agent_fee":   "not a map",
	}}, testMatter)

	assert.True(t, out[0].Price.Total().IsZero())
	assert.Equal(t, []string{"XTS"}, unknown)
}

func TestBuildRenewals_CustomInstructionSetInitial(t *testing.T) {
	set, err := NewInstructionSet([]string{"pending", "pay"}, "pay")
	require.NoError(t, err)

	out := NewBuilder(nil, set).BuildRenewals(nil, []map[string]any{{}}, testMatter)
	assert.Equal(t, Instruction("pending"), out[0].CurrentInstruction)
}

func TestBuildRenewals_DecodedJSONPayload(t *testing.T) {
	payload := `[
		"Disclaimer: fees are estimates.",
		{"next_renewal_date":"2030-01-01","next_renewal_fee":{"price":10.50,"currency":"USD"}},
		{"debug":"x","debug_code":1}
	]`
	jd := json.NewDecoder(strings.NewReader(payload))
	jd.UseNumber()
	var raw []any
	require.NoError(t, jd.Decode(&raw))

	calc := newCalculator(t, currency.Currency{Name: "USD", ToBase: dec("0.5")})
	out := NewBuilder(calc, nil).BuildRenewals(nil, RemoveGarbage(raw), testMatter)

	require.Len(t, out, 1)
	assert.Equal(t, "5.25", out[0].Price.CalculatedDuePrice.String())
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in    any
		valid bool
		want  string
	}{
		{nil, false, "0"},
		{"", false, "0"},
		{"abc", false, "0"},
		{"12.30", true, "12.3"},
		{json.Number("7"), true, "7"},
		{int64(9), true, "9"},
		{3, true, "3"},
		{1.25, true, "1.25"},
		{true, false, "0"},
	}
	for _, tc := range cases {
		got := parseAmount(tc.in)
		assert.Equal(t, tc.valid, got.Valid, "%v", tc.in)
		if tc.valid {
			assert.Equal(t, tc.want, got.Decimal.String(), "%v", tc.in)
		}
	}
}

//Personal.AI order the ending
