package renewal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
)

func priceIn(code string, due, grace, claim, agent int64) *RenewalPrice {
	f := func(v int64) Fee { return Fee{Price: currency.Amount(decimal.NewFromInt(v)), Currency: code} }
	return &RenewalPrice{Due: f(due), Grace: f(grace), Claim: f(claim), Agent: f(agent)}
}

func assertCalculated(t *testing.T, p *RenewalPrice, due, grace, claim, agent int64) {
	t.Helper()
	assert.True(t, p.CalculatedDuePrice.Equal(decimal.NewFromInt(due)), "due=%s", p.CalculatedDuePrice)
	assert.True(t, p.CalculatedGracePrice.Equal(decimal.NewFromInt(grace)), "grace=%s", p.CalculatedGracePrice)
	assert.True(t, p.CalculatedClaimPrice.Equal(decimal.NewFromInt(claim)), "claim=%s", p.CalculatedClaimPrice)
	assert.True(t, p.CalculatedAgentPrice.Equal(decimal.NewFromInt(agent)), "agent=%s", p.CalculatedAgentPrice)
}

func TestPriceUpdater_USDAtParity(t *testing.T) {
	u := NewPriceUpdater(newCalculator(t, currency.Currency{Name: "USD", ToBase: dec("1")}))
	p := priceIn("USD", 1, 3, 5, 7)

	assert.True(t, u.Update(p))
	assertCalculated(t, p, 1, 3, 5, 7)
}

func TestPriceUpdater_JPY(t *testing.T) {
	u := NewPriceUpdater(newCalculator(t, currency.Currency{Name: "JPY", ToBase: dec("1000")}))
	p := priceIn("JPY", 2, 4, 6, 8)

	u.Update(p)
	assertCalculated(t, p, 2000, 4000, 6000, 8000)
}

func TestPriceUpdater_MixedCurrenciesAreIndependent(t *testing.T) {
	u := NewPriceUpdater(newCalculator(t,
		currency.Currency{Name: "USD", ToBase: dec("1")},
		currency.Currency{Name: "JPY", ToBase: dec("1000")},
	))
	p := priceIn("USD", 1, 1, 1, 1)
	p.Claim.Currency = "JPY"
	p.Agent.Currency = "GBP"

	u.Update(p)
	assertCalculated(t, p, 1, 1, 1000, 0)
}

func TestPriceUpdater_Idempotent(t *testing.T) {
	u := NewPriceUpdater(newCalculator(t, currency.Currency{Name: "JPY", ToBase: dec("1000")}))
	p := priceIn("JPY", 2, 4, 6, 8)

	assert.True(t, u.Update(p))
	first := *p
	assert.False(t, u.Update(p))
	assert.Equal(t, first, *p)
}

func TestPriceUpdater_MissingRawFeeClearsCalculated(t *testing.T) {
	u := NewPriceUpdater(newCalculator(t, currency.Currency{Name: "USD", ToBase: dec("1")}))
	p := &RenewalPrice{CalculatedDuePrice: dec("99")}

	assert.True(t, u.Update(p))
	assert.True(t, p.Total().IsZero())
}

func TestPriceUpdater_Nil(t *testing.T) {
	assert.False(t, NewPriceUpdater(nil).Update(nil))
}

//Personal.AI order the ending
