package renewal

import (
	"fmt"

	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// Sentinels for errors.Is.  AppError compares by code, so any error built by
// the constructors below matches its sentinel.
var (
	ErrInvalidInstructionDetected  = errors.New(errors.ErrCodeInvalidInstruction, "invalid instruction detected")
	ErrInvalidConfidenceDetected   = errors.New(errors.ErrCodeInvalidConfidence, "invalid confidence detected")
	ErrNoFutureDate                = errors.New(errors.ErrCodeNoFutureDate, "date is not in the future")
	ErrNoIDsFound                  = errors.New(errors.ErrCodeNoIDsFound, "no renewal ids found in instructions")
	ErrNoRenewalsFound             = errors.New(errors.ErrCodeNoRenewalsFound, "no renewals found for ids")
	ErrNoPortfolioAccessForRenewal = errors.New(errors.ErrCodeNoPortfolioAccess, "no portfolio access for renewal")
)

// InvalidInstruction reports value as outside the instruction set.
func InvalidInstruction(value string) error {
	return ErrInvalidInstructionDetected.WithDetail(fmt.Sprintf("instruction %q", value))
}

// InvalidConfidence reports value as outside {low, high}.
func InvalidConfidence(value string) error {
	return ErrInvalidConfidenceDetected.WithDetail(fmt.Sprintf("confidence %q", value))
}

// NoFutureDate reports that date is not strictly after now.
func NoFutureDate(date string) error {
	return ErrNoFutureDate.WithDetail(date)
}

// NoIDsFound reports an instruction batch without usable ids.
func NoIDsFound() error {
	return ErrNoIDsFound.WithDetail("")
}

// NoRenewalsFound reports that none of ids resolved.
func NoRenewalsFound(ids []int64) error {
	return ErrNoRenewalsFound.WithDetail(fmt.Sprintf("ids=%v", ids))
}

// NoPortfolioAccess reports that user may not act on renewalID.
func NoPortfolioAccess(renewalID, portfolioID int64) error {
	return ErrNoPortfolioAccessForRenewal.WithDetail(fmt.Sprintf("renewal=%d portfolio=%d", renewalID, portfolioID))
}

//Personal.AI order the ending
