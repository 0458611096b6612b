package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// RenewalsClient covers the /renewals and /matters endpoints.
type RenewalsClient struct {
	client *Client
}

// UpdateInstructions applies a batch of instruction changes.  The server
// applies the batch all-or-nothing and returns the updated renewals.
func (r *RenewalsClient) UpdateInstructions(ctx context.Context, updates []InstructionUpdate) ([]Renewal, error) {
	if len(updates) == 0 {
		return nil, errors.InvalidParam("at least one instruction update is required")
	}
	body := struct {
		Instructions []InstructionUpdate `json:"instructions"`
	}{Instructions: updates}

	var out RenewalList
	if err := r.client.patch(ctx, "/renewals/instructions", body, &out); err != nil {
		return nil, err
	}
	return out.Renewals, nil
}

// BhipPrice resolves the surcharge of one renewal.
func (r *RenewalsClient) BhipPrice(ctx context.Context, renewalID int64) (*BhipResolution, error) {
	if renewalID <= 0 {
		return nil, errors.InvalidParam("renewal id must be positive")
	}
	var out BhipResolution
	if err := r.client.get(ctx, fmt.Sprintf("/renewals/%d/bhip-price", renewalID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ingest builds renewals for one matter from a provider payload.
func (r *RenewalsClient) Ingest(ctx context.Context, req IngestRequest) ([]Renewal, error) {
	if req.PortfolioID <= 0 {
		return nil, errors.InvalidParam("portfolio id must be positive")
	}
	var out RenewalList
	if err := r.client.post(ctx, "/matters/renewals", req, &out); err != nil {
		return nil, err
	}
	return out.Renewals, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Portfolios
// ─────────────────────────────────────────────────────────────────────────────

// PortfoliosClient covers the /portfolios endpoints.
type PortfoliosClient struct {
	client *Client
}

// ListOptions narrows a renewal listing.  Zero values fall back to the
// server defaults.
type ListOptions struct {
	Instruction string
	Limit       int
	Offset      int
}

// PayTotal sums what the portfolio owes for renewals instructed to pay.
func (p *PortfoliosClient) PayTotal(ctx context.Context, portfolioID int64) (*PayTotal, error) {
	if portfolioID <= 0 {
		return nil, errors.InvalidParam("portfolio id must be positive")
	}
	var out PayTotal
	if err := p.client.get(ctx, fmt.Sprintf("/portfolios/%d/pay-total", portfolioID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRenewals returns one page of the portfolio's renewals.
func (p *PortfoliosClient) ListRenewals(ctx context.Context, portfolioID int64, opts *ListOptions) ([]Renewal, error) {
	if portfolioID <= 0 {
		return nil, errors.InvalidParam("portfolio id must be positive")
	}
	path := fmt.Sprintf("/portfolios/%d/renewals", portfolioID)
	if q := opts.query(); len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out RenewalList
	if err := p.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Renewals, nil
}

func (o *ListOptions) query() url.Values {
	q := url.Values{}
	if o == nil {
		return q
	}
	if o.Instruction != "" {
		q.Set("instruction", o.Instruction)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}

// ─────────────────────────────────────────────────────────────────────────────
// Currencies
// ─────────────────────────────────────────────────────────────────────────────

// CurrenciesClient covers the /currencies endpoints.
type CurrenciesClient struct {
	client *Client
}

// List returns the current rate table.
func (c *CurrenciesClient) List(ctx context.Context) (*CurrencyTable, error) {
	var out CurrencyTable
	if err := c.client.get(ctx, "/currencies", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Import replaces the whole rate table with rates.
func (c *CurrenciesClient) Import(ctx context.Context, rates []Rate) (*CurrencyTable, error) {
	if len(rates) == 0 {
		return nil, errors.InvalidParam("at least one rate is required")
	}
	body := struct {
		Rates []Rate `json:"rates"`
	}{Rates: rates}

	var out CurrencyTable
	if err := c.client.post(ctx, "/currencies", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
