package renewal

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
)

// Provider payload keys.
const (
	keyDescription = "next_renewal_description"
	keyDueDate     = "next_renewal_date"
	keyGraceDate   = "grace_period_end_date"
	keySequence    = "renewal_sequence"
	keyFeePrice    = "price"
	keyFeeCurrency = "currency"
	keyRenewalFee  = "next_renewal_fee"
	keyAgentFee    = "next_agent_fee"
	keyGracePeriod = "next_grace_period_fee"
	keyClaimFee    = "next_claim_fee"
)

// feeKeys maps provider fee categories onto RenewalPrice fields.
var feeKeys = []struct {
	key  string
	kind FeeKind
}{
	{keyRenewalFee, FeeDue},
	{keyAgentFee, FeeAgent},
	{keyGracePeriod, FeeGrace},
	{keyClaimFee, FeeClaim},
}

// Builder turns sanitized provider records into Renewal entities priced
// against one currency snapshot.
type Builder struct {
	calc         *currency.Calculator
	instructions *InstructionSet
	onUnknown    func(code string)
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

// WithUnknownCurrencyHook is called once per non-zero fee whose currency has
// no rate.
func WithUnknownCurrencyHook(fn func(code string)) BuilderOption {
	return func(b *Builder) { b.onUnknown = fn }
}

// NewBuilder returns a Builder.  A nil set falls back to the default set.
func NewBuilder(calc *currency.Calculator, set *InstructionSet, opts ...BuilderOption) *Builder {
	if set == nil {
		set = DefaultInstructionSet()
	}
	if calc == nil {
		calc = currency.NewCalculator(nil)
	}
	b := &Builder{calc: calc, instructions: set}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildRenewals appends one Renewal per record to acc, in record order, and
// returns the extended slice.  Case identity comes from matter.  Missing fee
// categories leave their fields at zero; building never fails.
func (b *Builder) BuildRenewals(acc []*Renewal, records []map[string]any, matter Matter) []*Renewal {
	for _, rec := range records {
		acc = append(acc, b.build(rec, matter))
	}
	return acc
}

func (b *Builder) build(rec map[string]any, matter Matter) *Renewal {
	r := &Renewal{
		Country:            matter.ApplicationCountry,
		SerialNo:           matter.SerialNumber,
		UCID:               matter.UCID,
		Description:        stringify(rec[keyDescription]),
		Sequence:           stringify(rec[keySequence]),
		DueDate:            stringify(rec[keyDueDate]),
		GraceDate:          stringify(rec[keyGraceDate]),
		CurrentInstruction: b.instructions.Initial(),
		Price:              &RenewalPrice{},
	}

	for _, fk := range feeKeys {
		raw, ok := rec[fk.key].(map[string]any)
		if !ok {
			continue
		}
		fee := Fee{
			Price:    parseAmount(raw[keyFeePrice]),
			Currency: b.calc.CurrencyDefault(stringify(raw[keyFeeCurrency])),
		}
		r.Price.SetFee(fk.kind, fee)

		converted, known := b.calc.ConvertKnown(fee.Price, fee.Currency)
		if !known && b.onUnknown != nil {
			b.onUnknown(fee.Currency)
		}
		r.Price.SetCalculated(fk.kind, converted)
	}
	return r
}

// stringify renders a provider scalar.  nil becomes the empty string.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return decimal.NewFromFloat(t).String()
	default:
		return fmt.Sprint(t)
	}
}

// parseAmount reads a provider price.  Anything that is not a number is
// treated as absent.
func parseAmount(v any) decimal.NullDecimal {
	var (
		d   decimal.Decimal
		err error
	)
	switch t := v.(type) {
	case nil:
		return decimal.NullDecimal{}
	case decimal.Decimal:
		d = t
	case json.Number:
		d, err = decimal.NewFromString(t.String())
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return decimal.NullDecimal{}
		}
		d, err = decimal.NewFromString(s)
	case float64:
		d = decimal.NewFromFloat(t)
	case float32:
		d = decimal.NewFromFloat32(t)
	case int:
		d = decimal.NewFromInt(int64(t))
	case int64:
		d = decimal.NewFromInt(t)
	default:
		return decimal.NullDecimal{}
	}
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

//Personal.AI order the ending
