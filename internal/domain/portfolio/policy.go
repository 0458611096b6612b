package portfolio

import (
	"context"
)

// AccessPolicy decides whether a user may act on a portfolio.
type AccessPolicy interface {
	CanAccessPortfolio(ctx context.Context, userID string, portfolioID int64) (bool, error)
}

// MembershipPolicy grants access to users listed as portfolio members.
type MembershipPolicy struct {
	repo Repository
}

// NewMembershipPolicy returns a membership-backed AccessPolicy.
func NewMembershipPolicy(repo Repository) *MembershipPolicy {
	return &MembershipPolicy{repo: repo}
}

func (p *MembershipPolicy) CanAccessPortfolio(ctx context.Context, userID string, portfolioID int64) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return p.repo.HasMember(ctx, userID, portfolioID)
}

// PolicyFunc adapts a function to AccessPolicy.
type PolicyFunc func(ctx context.Context, userID string, portfolioID int64) (bool, error)

func (f PolicyFunc) CanAccessPortfolio(ctx context.Context, userID string, portfolioID int64) (bool, error) {
	return f(ctx, userID, portfolioID)
}

// AllowAll grants every request.  renewalctl runs with it since operators act
// outside any portfolio membership.
var AllowAll AccessPolicy = PolicyFunc(func(context.Context, string, int64) (bool, error) {
	return true, nil
})

//Personal.AI order the ending
