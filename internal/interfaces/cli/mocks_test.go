package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	appCurrency "github.com/turtacn/KeyIP-Renewals/internal/application/currency"
	appRenewal "github.com/turtacn/KeyIP-Renewals/internal/application/renewal"
	"github.com/turtacn/KeyIP-Renewals/internal/config"
	domainCurrency "github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
	domainPortfolio "github.com/turtacn/KeyIP-Renewals/internal/domain/portfolio"
	domainRenewal "github.com/turtacn/KeyIP-Renewals/internal/domain/renewal"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
)

type mockRenewalService struct {
	mock.Mock
}

func (m *mockRenewalService) IngestMatterRenewals(ctx context.Context, req appRenewal.IngestRequest) ([]*domainRenewal.Renewal, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainRenewal.Renewal), args.Error(1)
}

func (m *mockRenewalService) ApplyInstructions(ctx context.Context, userID string, updates []domainRenewal.InstructionUpdate) ([]*domainRenewal.Renewal, error) {
	args := m.Called(ctx, userID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainRenewal.Renewal), args.Error(1)
}

func (m *mockRenewalService) GetPortfolioPayTotal(ctx context.Context, userID string, portfolioID int64) (*appRenewal.PayTotal, error) {
	args := m.Called(ctx, userID, portfolioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appRenewal.PayTotal), args.Error(1)
}

func (m *mockRenewalService) GetRenewalBhipPrice(ctx context.Context, userID string, renewalID int64) (*domainPortfolio.Resolution, error) {
	args := m.Called(ctx, userID, renewalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainPortfolio.Resolution), args.Error(1)
}

func (m *mockRenewalService) RefreshPrices(ctx context.Context) (*appRenewal.RefreshResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appRenewal.RefreshResult), args.Error(1)
}

type mockCurrencyService struct {
	mock.Mock
}

func (m *mockCurrencyService) List(ctx context.Context) (*domainCurrency.Table, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainCurrency.Table), args.Error(1)
}

func (m *mockCurrencyService) ImportRates(ctx context.Context, inputs []appCurrency.RateInput) (*domainCurrency.Table, error) {
	args := m.Called(ctx, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainCurrency.Table), args.Error(1)
}

type mockMigrator struct {
	mock.Mock
}

func (m *mockMigrator) Up() error { return m.Called().Error(0) }

func (m *mockMigrator) Down(steps int) error { return m.Called(steps).Error(0) }

func (m *mockMigrator) Force(version int) error { return m.Called(version).Error(0) }

func (m *mockMigrator) Status() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

// runCLI executes renewalctl with deps and returns stdout.
func runCLI(t *testing.T, deps *CommandDependencies, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(func(context.Context, *config.Config, logging.Logger) (*CommandDependencies, func(), error) {
		return deps, nil, nil
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

//Personal.AI order the ending
