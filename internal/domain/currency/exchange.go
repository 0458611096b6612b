package currency

import (
	"github.com/shopspring/decimal"
)

const (
	// NullSentinel is what the matter provider sends when no currency is given.
	NullSentinel = "NULL"
	// DefaultCode replaces NullSentinel.
	DefaultCode = "USD"
)

// CurrencyDefault normalises the provider's "no currency" sentinel.  Every
// other code, including the empty string, is returned unchanged.
func CurrencyDefault(code string) string {
	if code == NullSentinel {
		return DefaultCode
	}
	return code
}

// Calculator converts fee amounts into the base currency against one Table.
type Calculator struct {
	table       *Table
	sentinel    string
	replacement string
}

// CalculatorOption customises a Calculator.
type CalculatorOption func(*Calculator)

// WithNullCurrency overrides the sentinel and its replacement code.
func WithNullCurrency(sentinel, replacement string) CalculatorOption {
	return func(c *Calculator) {
		if sentinel != "" {
			c.sentinel = sentinel
		}
		if replacement != "" {
			c.replacement = replacement
		}
	}
}

// NewCalculator returns a Calculator bound to table.  A nil table behaves like
// an empty one.
func NewCalculator(table *Table, opts ...CalculatorOption) *Calculator {
	if table == nil {
		table = EmptyTable()
	}
	c := &Calculator{table: table, sentinel: NullSentinel, replacement: DefaultCode}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns the snapshot the calculator reads.
func (c *Calculator) Table() *Table { return c.table }

// CurrencyDefault applies the calculator's sentinel mapping.
func (c *Calculator) CurrencyDefault(code string) string {
	if code == c.sentinel {
		return c.replacement
	}
	return code
}

// Convert returns amount * rate(code).  It returns zero when the amount is
// absent or zero, or when code has no rate.  The multiplication is exact.
func (c *Calculator) Convert(amount decimal.NullDecimal, code string) decimal.Decimal {
	out, _ := c.ConvertKnown(amount, code)
	return out
}

// ConvertKnown is Convert that also reports whether a rate was found for a
// non-zero amount.  Callers use the flag for unknown-currency accounting.
func (c *Calculator) ConvertKnown(amount decimal.NullDecimal, code string) (decimal.Decimal, bool) {
	if !amount.Valid || amount.Decimal.IsZero() {
		return decimal.Zero, true
	}
	rate, ok := c.table.Rate(code)
	if !ok {
		return decimal.Zero, false
	}
	return amount.Decimal.Mul(rate), true
}

// Amount wraps a decimal as a present NullDecimal.
func Amount(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

//Personal.AI order the ending
