package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainRenewal "github.com/turtacn/KeyIP-Renewals/internal/domain/renewal"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/internal/interfaces/http/middleware"
)

// PortfolioHandler serves portfolio-scoped reads.
type PortfolioHandler struct {
	svc    RenewalService
	logger logging.Logger
}

// NewPortfolioHandler creates a PortfolioHandler.
func NewPortfolioHandler(svc RenewalService, logger logging.Logger) *PortfolioHandler {
	return &PortfolioHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler under rg.
func (h *PortfolioHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pg := rg.Group("/portfolios/:id")
	pg.GET("/pay-total", h.GetPayTotal)
	pg.GET("/renewals", h.ListRenewals)
}

// GetPayTotal handles GET /portfolios/:id/pay-total.
func (h *PortfolioHandler) GetPayTotal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	total, err := h.svc.GetPortfolioPayTotal(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, total)
}

// ListRenewals handles GET /portfolios/:id/renewals.  Accepts
// ?instruction=, ?limit= and ?offset=.
func (h *PortfolioHandler) ListRenewals(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, offset := pagination(c)
	opts := []domainRenewal.QueryOption{domainRenewal.WithPagination(offset, limit)}
	if ins := c.Query("instruction"); ins != "" {
		if err := h.svc.Instructions().ValidateInstruction(ins); err != nil {
			writeAppError(c, h.logger, err)
			return
		}
		opts = append(opts, domainRenewal.WithInstruction(domainRenewal.Instruction(ins)))
	}

	rs, err := h.svc.ListPortfolioRenewals(c.Request.Context(), middleware.UserID(c), id, opts...)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, renewalsResponse(rs))
}

//Personal.AI order the ending
