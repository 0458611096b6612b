package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_014"
	ErrCodeRateLimited        ErrorCode = "COMMON_015"
)

// Aliases kept short for call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeUnauthorized = ErrCodeUnauthorized
	CodeForbidden    = ErrCodeForbidden
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Renewal Module Error Codes
const (
	ErrCodeInvalidInstruction      ErrorCode = "REN_001"
	ErrCodeInvalidConfidence       ErrorCode = "REN_002"
	ErrCodeNoFutureDate            ErrorCode = "REN_003"
	ErrCodeNoIDsFound              ErrorCode = "REN_004"
	ErrCodeNoRenewalsFound         ErrorCode = "REN_005"
	ErrCodeNoPortfolioAccess       ErrorCode = "REN_006"
	ErrCodeRenewalNotFound         ErrorCode = "REN_007"
	ErrCodeRenewalPayloadMalformed ErrorCode = "REN_008"
)

// Portfolio Module Error Codes
const (
	ErrCodePortfolioNotFound ErrorCode = "PRT_001"
	ErrCodeClientNotFound    ErrorCode = "PRT_002"
)

// Currency Module Error Codes
const (
	ErrCodeCurrencyCodeInvalid ErrorCode = "CUR_001"
	ErrCodeCurrencyRateInvalid ErrorCode = "CUR_002"
	ErrCodeCurrencyDuplicate   ErrorCode = "CUR_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,
	ErrCodeRateLimited:        http.StatusTooManyRequests,

	ErrCodeInvalidInstruction:      http.StatusUnprocessableEntity,
	ErrCodeInvalidConfidence:       http.StatusUnprocessableEntity,
	ErrCodeNoFutureDate:            http.StatusUnprocessableEntity,
	ErrCodeNoIDsFound:              http.StatusBadRequest,
	ErrCodeNoRenewalsFound:         http.StatusNotFound,
	ErrCodeNoPortfolioAccess:       http.StatusForbidden,
	ErrCodeRenewalNotFound:         http.StatusNotFound,
	ErrCodeRenewalPayloadMalformed: http.StatusBadRequest,

	ErrCodePortfolioNotFound: http.StatusNotFound,
	ErrCodeClientNotFound:    http.StatusNotFound,

	ErrCodeCurrencyCodeInvalid: http.StatusBadRequest,
	ErrCodeCurrencyRateInvalid: http.StatusBadRequest,
	ErrCodeCurrencyDuplicate:   http.StatusConflict,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeMessageQueueError:  "message queue error",
	ErrCodeRateLimited:        "rate limit exceeded",

	ErrCodeInvalidInstruction:      "invalid instruction detected",
	ErrCodeInvalidConfidence:       "invalid confidence detected",
	ErrCodeNoFutureDate:            "date is not in the future",
	ErrCodeNoIDsFound:              "no renewal ids found in instructions",
	ErrCodeNoRenewalsFound:         "no renewals found for ids",
	ErrCodeNoPortfolioAccess:       "no portfolio access for renewal",
	ErrCodeRenewalNotFound:         "renewal not found",
	ErrCodeRenewalPayloadMalformed: "malformed renewal payload",

	ErrCodePortfolioNotFound: "portfolio not found",
	ErrCodeClientNotFound:    "client not found",

	ErrCodeCurrencyCodeInvalid: "invalid currency code",
	ErrCodeCurrencyRateInvalid: "invalid currency rate",
	ErrCodeCurrencyDuplicate:   "duplicate currency",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
