package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appCurrency "github.com/turtacn/KeyIP-Renewals/internal/application/currency"
	domainCurrency "github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
)

// CurrencyService is the part of the currency application service the API
// calls.
type CurrencyService interface {
	List(ctx context.Context) (*domainCurrency.Table, error)
	ImportRates(ctx context.Context, inputs []appCurrency.RateInput) (*domainCurrency.Table, error)
}

// CurrencyHandler serves the exchange-rate table.
type CurrencyHandler struct {
	svc    CurrencyService
	logger logging.Logger
}

// NewCurrencyHandler creates a CurrencyHandler.
func NewCurrencyHandler(svc CurrencyService, logger logging.Logger) *CurrencyHandler {
	return &CurrencyHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler under rg.
func (h *CurrencyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/currencies", h.List)
	rg.POST("/currencies", h.Import)
}

// ImportRatesRequest is the POST body.  It replaces the whole table.
type ImportRatesRequest struct {
	Rates []appCurrency.RateInput `json:"rates"`
}

// CurrencyTableResponse is one snapshot.
type CurrencyTableResponse struct {
	Currencies []domainCurrency.Currency `json:"currencies"`
	Count      int                       `json:"count"`
	LoadedAt   time.Time                 `json:"loaded_at"`
}

func tableResponse(t *domainCurrency.Table) CurrencyTableResponse {
	rows := t.Currencies()
	if rows == nil {
		rows = []domainCurrency.Currency{}
	}
	return CurrencyTableResponse{Currencies: rows, Count: len(rows), LoadedAt: t.LoadedAt()}
}

// List handles GET /currencies.
func (h *CurrencyHandler) List(c *gin.Context) {
	t, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tableResponse(t))
}

// Import handles POST /currencies.
func (h *CurrencyHandler) Import(c *gin.Context) {
	var req ImportRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed rate import", err.Error())
		return
	}
	t, err := h.svc.ImportRates(c.Request.Context(), req.Rates)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tableResponse(t))
}

//Personal.AI order the ending
