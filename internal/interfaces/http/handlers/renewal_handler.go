package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	appRenewal "github.com/turtacn/KeyIP-Renewals/internal/application/renewal"
	domainPortfolio "github.com/turtacn/KeyIP-Renewals/internal/domain/portfolio"
	domainRenewal "github.com/turtacn/KeyIP-Renewals/internal/domain/renewal"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/internal/interfaces/http/middleware"
)

// RenewalService is the part of the renewal application service the API
// calls.  *appRenewal.Service satisfies it.
type RenewalService interface {
	Instructions() *domainRenewal.InstructionSet
	IngestMatterRenewals(ctx context.Context, req appRenewal.IngestRequest) ([]*domainRenewal.Renewal, error)
	ApplyInstructions(ctx context.Context, userID string, updates []domainRenewal.InstructionUpdate) ([]*domainRenewal.Renewal, error)
	GetRenewalBhipPrice(ctx context.Context, userID string, renewalID int64) (*domainPortfolio.Resolution, error)
	GetPortfolioPayTotal(ctx context.Context, userID string, portfolioID int64) (*appRenewal.PayTotal, error)
	ListPortfolioRenewals(ctx context.Context, userID string, portfolioID int64, opts ...domainRenewal.QueryOption) ([]*domainRenewal.Renewal, error)
}

// RenewalHandler serves the renewal and matter endpoints.
type RenewalHandler struct {
	svc    RenewalService
	logger logging.Logger
}

// NewRenewalHandler creates a RenewalHandler.
func NewRenewalHandler(svc RenewalService, logger logging.Logger) *RenewalHandler {
	return &RenewalHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler under rg.
func (h *RenewalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/renewals/instructions", h.UpdateInstructions)
	rg.GET("/renewals/:id/bhip-price", h.GetBhipPrice)
	rg.POST("/matters/renewals", h.IngestMatterRenewals)
}

// UpdateInstructionsRequest is the PATCH body.
type UpdateInstructionsRequest struct {
	Instructions []domainRenewal.InstructionUpdate `json:"instructions"`
}

// RenewalsResponse wraps a renewal list.
type RenewalsResponse struct {
	Renewals []*domainRenewal.Renewal `json:"renewals"`
	Count    int                      `json:"count"`
}

func renewalsResponse(rs []*domainRenewal.Renewal) RenewalsResponse {
	if rs == nil {
		rs = []*domainRenewal.Renewal{}
	}
	return RenewalsResponse{Renewals: rs, Count: len(rs)}
}

// UpdateInstructions handles PATCH /renewals/instructions.  The batch is
// applied all-or-nothing.
func (h *RenewalHandler) UpdateInstructions(c *gin.Context) {
	var req UpdateInstructionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed instruction batch", err.Error())
		return
	}
	updated, err := h.svc.ApplyInstructions(c.Request.Context(), middleware.UserID(c), req.Instructions)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, renewalsResponse(updated))
}

// GetBhipPrice handles GET /renewals/:id/bhip-price.
func (h *RenewalHandler) GetBhipPrice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.GetRenewalBhipPrice(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"renewal_id": id, "tier": res.Tier, "amount": res.Amount, "record": res.Record})
}

// IngestMatterRenewals handles POST /matters/renewals.
func (h *RenewalHandler) IngestMatterRenewals(c *gin.Context) {
	var req appRenewal.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed renewal payload", err.Error())
		return
	}
	req.UserID = middleware.UserID(c)
	req.Source = "api"

	built, err := h.svc.IngestMatterRenewals(c.Request.Context(), req)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, renewalsResponse(built))
}

//Personal.AI order the ending
