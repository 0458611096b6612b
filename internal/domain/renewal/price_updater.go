package renewal

import (
	"github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
)

// PriceUpdater recomputes the calculated fields of stored prices against a
// currency snapshot.
type PriceUpdater struct {
	calc *currency.Calculator
}

// NewPriceUpdater returns a PriceUpdater bound to calc.
func NewPriceUpdater(calc *currency.Calculator) *PriceUpdater {
	if calc == nil {
		calc = currency.NewCalculator(nil)
	}
	return &PriceUpdater{calc: calc}
}

// Update recomputes each calculated field from its own raw fee and currency
// and reports whether any value changed.  Persisting the result is the
// caller's job.
func (u *PriceUpdater) Update(p *RenewalPrice) bool {
	if p == nil {
		return false
	}
	changed := false
	for _, kind := range FeeKinds {
		fee := p.Fee(kind)
		next := u.calc.Convert(fee.Price, u.calc.CurrencyDefault(fee.Currency))
		if !next.Equal(p.Calculated(kind)) {
			changed = true
		}
		p.SetCalculated(kind, next)
	}
	return changed
}

//Personal.AI order the ending
