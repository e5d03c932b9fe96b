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
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_015"
)

// Short aliases used at call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeUnauthorized = ErrCodeUnauthorized
	CodeForbidden    = ErrCodeForbidden
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")

	CodeTenderNotFound  = ErrCodeTenderNotFound
	CodeCompanyNotFound = ErrCodeCompanyNotFound
	CodeDatabaseError   = ErrCodeDatabaseError
	CodeCacheError      = ErrCodeCacheError
)

// Tender Module Error Codes
const (
	ErrCodeTenderNotFound      ErrorCode = "TND_001"
	ErrCodeTenderAlreadyExists ErrorCode = "TND_002"
	ErrCodeTenderFilterInvalid ErrorCode = "TND_003"
	ErrCodeTenderImportFailed  ErrorCode = "TND_004"
	ErrCodeAwardImportFailed   ErrorCode = "TND_005"
)

// Prediction Module Error Codes
const (
	ErrCodePredictionFailed       ErrorCode = "PRD_001"
	ErrCodePredictionInputInvalid ErrorCode = "PRD_002"
	ErrCodeBulkLimitExceeded      ErrorCode = "PRD_003"
	ErrCodeBulkRequestInvalid     ErrorCode = "PRD_004"
)

// Company Module Error Codes
const (
	ErrCodeCompanyNotFound      ErrorCode = "CMP_001"
	ErrCodeCompanyProfileFailed ErrorCode = "CMP_002"
)

// AI Annotator Error Codes
const (
	ErrCodeAIModelNotAvailable ErrorCode = "AI_001"
	ErrCodeAIInferenceFailed   ErrorCode = "AI_002"
	ErrCodeAIResponseInvalid   ErrorCode = "AI_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeTenderNotFound:      http.StatusNotFound,
	ErrCodeTenderAlreadyExists: http.StatusConflict,
	ErrCodeTenderFilterInvalid: http.StatusBadRequest,
	ErrCodeTenderImportFailed:  http.StatusInternalServerError,
	ErrCodeAwardImportFailed:   http.StatusInternalServerError,

	ErrCodePredictionFailed:       http.StatusInternalServerError,
	ErrCodePredictionInputInvalid: http.StatusBadRequest,
	ErrCodeBulkLimitExceeded:      http.StatusBadRequest,
	ErrCodeBulkRequestInvalid:     http.StatusBadRequest,

	ErrCodeCompanyNotFound:      http.StatusNotFound,
	ErrCodeCompanyProfileFailed: http.StatusInternalServerError,

	ErrCodeAIModelNotAvailable: http.StatusServiceUnavailable,
	ErrCodeAIInferenceFailed:   http.StatusInternalServerError,
	ErrCodeAIResponseInvalid:   http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeTenderNotFound:      "tender not found",
	ErrCodeTenderAlreadyExists: "tender already exists",
	ErrCodeTenderFilterInvalid: "invalid tender filter",
	ErrCodeTenderImportFailed:  "failed to import tenders",
	ErrCodeAwardImportFailed:   "failed to import award records",

	ErrCodePredictionFailed:       "prediction failed",
	ErrCodePredictionInputInvalid: "invalid prediction input",
	ErrCodeBulkLimitExceeded:      "bulk candidate limit exceeded",
	ErrCodeBulkRequestInvalid:     "invalid bulk prediction request",

	ErrCodeCompanyNotFound:      "company not found",
	ErrCodeCompanyProfileFailed: "failed to build company profile",

	ErrCodeAIModelNotAvailable: "AI model not available",
	ErrCodeAIInferenceFailed:   "AI inference failed",
	ErrCodeAIResponseInvalid:   "invalid AI model response",
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

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
