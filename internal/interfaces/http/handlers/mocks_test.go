package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appCurrency "github.com/turtacn/KeyIP-Renewals/internal/application/currency"
	appRenewal "github.com/turtacn/KeyIP-Renewals/internal/application/renewal"
	domainCurrency "github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
	domainPortfolio "github.com/turtacn/KeyIP-Renewals/internal/domain/portfolio"
	domainRenewal "github.com/turtacn/KeyIP-Renewals/internal/domain/renewal"
	"github.com/turtacn/KeyIP-Renewals/internal/interfaces/http/middleware"
	"github.com/turtacn/KeyIP-Renewals/internal/testutil"
)

type mockRenewalService struct {
	mock.Mock
}

func (m *mockRenewalService) Instructions() *domainRenewal.InstructionSet {
	return domainRenewal.DefaultInstructionSet()
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

func (m *mockRenewalService) GetRenewalBhipPrice(ctx context.Context, userID string, renewalID int64) (*domainPortfolio.Resolution, error) {
	args := m.Called(ctx, userID, renewalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainPortfolio.Resolution), args.Error(1)
}

func (m *mockRenewalService) GetPortfolioPayTotal(ctx context.Context, userID string, portfolioID int64) (*appRenewal.PayTotal, error) {
	args := m.Called(ctx, userID, portfolioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appRenewal.PayTotal), args.Error(1)
}

func (m *mockRenewalService) ListPortfolioRenewals(ctx context.Context, userID string, portfolioID int64, opts ...domainRenewal.QueryOption) ([]*domainRenewal.Renewal, error) {
	args := m.Called(ctx, userID, portfolioID, domainRenewal.ApplyQueryOptions(opts...))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainRenewal.Renewal), args.Error(1)
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

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

const testUser = "alice"

// newTestRouter mounts register under /api/v1 behind header-based auth.
func newTestRouter(register func(rg *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1", middleware.NewAuthMiddleware(nil, false, nil, testutil.NewMockLogger()).Authenticate())
	register(api)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, testUser)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doRaw sends a request with no caller identity.
func doRaw(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

//Personal.AI order the ending
