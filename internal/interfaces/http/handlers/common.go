// Package handlers holds the gin handlers of the renewal API.  Handlers only
// translate between HTTP and the application services; every rule lives in
// the services.
package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/internal/interfaces/http/middleware"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeAppError maps err onto its code's status.  Server-side failures are
// logged and masked.
func writeAppError(c *gin.Context, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{RequestID: middleware.RequestIDFrom(c)}
	if ae := rootAppError(err, code); ae != nil && status < http.StatusInternalServerError {
		resp.Code = string(ae.Code)
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	} else {
		if code == errors.CodeUnknown {
			code = errors.ErrCodeInternal
		}
		logger.Error("request failed",
			logging.String("request_id", resp.RequestID),
			logging.String("path", c.Request.URL.Path),
			logging.Err(err))
		resp.Code = string(code)
		resp.Message = errors.DefaultMessageForCode(code)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// rootAppError returns the innermost AppError carrying code.
func rootAppError(err error, code errors.ErrorCode) *errors.AppError {
	var found *errors.AppError
	for err != nil {
		var ae *errors.AppError
		if !stderrors.As(err, &ae) {
			break
		}
		if ae.Code == code {
			found = ae
		}
		err = ae.Unwrap()
	}
	return found
}

func badRequest(c *gin.Context, msg, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Code:      string(errors.ErrCodeBadRequest),
		Message:   msg,
		Detail:    detail,
		RequestID: middleware.RequestIDFrom(c),
	})
}

// pathID parses a positive int64 path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name, raw)
		return 0, false
	}
	return id, true
}

// pagination reads limit and offset, clamping limit to maxPageSize.
func pagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

//Personal.AI order the ending
