package renewal

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Instruction is the user's chosen disposition for a renewal.  The accepted
// values are fixed by an InstructionSet.
type Instruction string

const (
	InstructionUndecided Instruction = "undecided"
	InstructionPay       Instruction = "pay"
	InstructionAbandon   Instruction = "abandon"
)

// Confidence qualifies an instruction.  The zero value means unset.
type Confidence string

const (
	ConfidenceUnset Confidence = ""
	ConfidenceLow   Confidence = "low"
	ConfidenceHigh  Confidence = "high"
)

// ParseConfidence accepts "low", "high" and the empty string (unset).
func ParseConfidence(value string) (Confidence, error) {
	switch c := Confidence(value); c {
	case ConfidenceUnset, ConfidenceLow, ConfidenceHigh:
		return c, nil
	}
	return ConfidenceUnset, InvalidConfidence(value)
}

// ValidateConfidence fails with InvalidConfidenceDetected for any value
// outside {low, high, unset}.
func ValidateConfidence(value string) error {
	_, err := ParseConfidence(value)
	return err
}

// ValidateFutureDate fails with NoFutureDate unless date is strictly after now.
func ValidateFutureDate(date, now time.Time) error {
	if !date.After(now) {
		return NoFutureDate(date.Format(time.RFC3339))
	}
	return nil
}

// InstructionSet is the closed enumeration of instruction values.  The first
// member is the initial state of newly built renewals.
type InstructionSet struct {
	members []Instruction
	index   map[Instruction]struct{}
	pay     Instruction
}

// NewInstructionSet builds a set from configured values.  pay must be one of
// them.
func NewInstructionSet(values []string, pay string) (*InstructionSet, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("renewal: instruction set must not be empty")
	}
	s := &InstructionSet{index: make(map[Instruction]struct{}, len(values)), pay: Instruction(pay)}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("renewal: instruction set contains an empty value")
		}
		ins := Instruction(v)
		if _, dup := s.index[ins]; dup {
			return nil, fmt.Errorf("renewal: instruction %q listed twice", v)
		}
		s.index[ins] = struct{}{}
		s.members = append(s.members, ins)
	}
	if _, ok := s.index[s.pay]; !ok {
		return nil, fmt.Errorf("renewal: pay instruction %q is not a member of the set", pay)
	}
	return s, nil
}

// DefaultInstructionSet is {undecided, pay, abandon} with pay counting toward
// totals.
func DefaultInstructionSet() *InstructionSet {
	s, _ := NewInstructionSet([]string{string(InstructionUndecided), string(InstructionPay), string(InstructionAbandon)}, string(InstructionPay))
	return s
}

// Members returns the instructions in configured order.
func (s *InstructionSet) Members() []Instruction {
	out := make([]Instruction, len(s.members))
	copy(out, s.members)
	return out
}

// Initial is the instruction a newly built renewal starts with.
func (s *InstructionSet) Initial() Instruction { return s.members[0] }

// Pay is the instruction whose renewals count toward pay totals.
func (s *InstructionSet) Pay() Instruction { return s.pay }

// Contains is the membership check.
func (s *InstructionSet) Contains(value string) bool {
	_, ok := s.index[Instruction(value)]
	return ok
}

// ValidateInstruction fails with InvalidInstructionDetected when value is not
// a member.
func (s *InstructionSet) ValidateInstruction(value string) error {
	if !s.Contains(value) {
		return InvalidInstruction(value)
	}
	return nil
}

// ValidateInstructions checks every update that carries an instruction.
// Updates without one are valid.
func (s *InstructionSet) ValidateInstructions(updates []InstructionUpdate) error {
	for _, u := range updates {
		if u.CurrentInstruction == nil {
			continue
		}
		if err := s.ValidateInstruction(*u.CurrentInstruction); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUpdates runs every check an update batch must pass before any
// record is touched: each record needs an id, and its instruction and
// confidence, when present, must be valid.  The first failure is returned.
func (s *InstructionSet) ValidateUpdates(updates []InstructionUpdate) error {
	for _, u := range updates {
		if u.ID == nil {
			return NoIDsFound()
		}
		if u.CurrentInstruction != nil {
			if err := s.ValidateInstruction(*u.CurrentInstruction); err != nil {
				return err
			}
		}
		if u.Confidence != nil {
			if err := ValidateConfidence(*u.Confidence); err != nil {
				return err
			}
		}
	}
	return nil
}

// PayTotal sums the fee totals of renewals whose instruction is Pay.  Other
// renewals contribute zero.
func (s *InstructionSet) PayTotal(renewals []*Renewal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range renewals {
		if r == nil || r.CurrentInstruction != s.pay {
			continue
		}
		total = total.Add(r.FeeTotal())
	}
	return total
}

// InstructionUpdate is one element of an instruction batch.  Nil fields are
// absent and leave the renewal unchanged.
type InstructionUpdate struct {
	ID                 *int64  `json:"id"`
	CurrentInstruction *string `json:"current_instruction,omitempty"`
	Confidence         *string `json:"confidence,omitempty"`
}

// IDs returns the ids carried by updates, in order, skipping records without
// one.
func IDs(updates []InstructionUpdate) []int64 {
	ids := make([]int64, 0, len(updates))
	for _, u := range updates {
		if u.ID != nil {
			ids = append(ids, *u.ID)
		}
	}
	return ids
}

// Apply writes the update's present fields onto r.  The update must already
// have passed ValidateUpdates.
func (u InstructionUpdate) Apply(r *Renewal) {
	if u.CurrentInstruction != nil {
		r.CurrentInstruction = Instruction(*u.CurrentInstruction)
	}
	if u.Confidence != nil {
		r.Confidence = Confidence(*u.Confidence)
	}
}

//Personal.AI order the ending
