// Package errors provides error handling and HTTP status code mapping.
package errors

import (
	"errors"
	"net/http"

	"github.com/remiblancher/capikey/internal/api/dto"
	"github.com/remiblancher/capikey/pkg/rsakey"
)

// Error codes for API responses.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnsupportedBlobType = "UNSUPPORTED_BLOB_TYPE"
	CodeTruncatedData       = "TRUNCATED_DATA"
	CodeInvalidKeySize      = "INVALID_KEY_SIZE"
	CodeInvalidXML          = "INVALID_XML"
	CodeIncompleteKey       = "INCOMPLETE_KEY"
	CodeFieldTooLong        = "FIELD_TOO_LONG"
	CodeNotPrivate          = "KEY_NOT_PRIVATE"
	CodeAuditFailed         = "AUDIT_FAILED"
	CodeInternal            = "INTERNAL_ERROR"
)

// ErrAudit marks a failure to record an audit event.
var ErrAudit = errors.New("audit failure")

// MapError maps an internal error to an HTTP status code and APIError.
func MapError(err error) (int, *dto.APIError) {
	if err == nil {
		return http.StatusOK, nil
	}

	var status int
	var code string
	switch {
	case errors.Is(err, rsakey.ErrInvalidXML):
		status, code = http.StatusBadRequest, CodeInvalidXML
	case errors.Is(err, rsakey.ErrTruncatedData):
		status, code = http.StatusBadRequest, CodeTruncatedData
	case errors.Is(err, rsakey.ErrUnsupportedBlobType):
		status, code = http.StatusUnprocessableEntity, CodeUnsupportedBlobType
	case errors.Is(err, rsakey.ErrInvalidKeySize):
		status, code = http.StatusUnprocessableEntity, CodeInvalidKeySize
	case errors.Is(err, rsakey.ErrIncompleteKey):
		status, code = http.StatusUnprocessableEntity, CodeIncompleteKey
	case errors.Is(err, rsakey.ErrFieldTooLong):
		status, code = http.StatusUnprocessableEntity, CodeFieldTooLong
	case errors.Is(err, rsakey.ErrNotPrivate):
		status, code = http.StatusConflict, CodeNotPrivate
	case errors.Is(err, ErrAudit):
		return http.StatusInternalServerError, &dto.APIError{
			Code:    CodeAuditFailed,
			Message: "Operation refused: audit log unavailable",
		}
	default:
		return http.StatusInternalServerError, &dto.APIError{
			Code:    CodeInternal,
			Message: "An internal error occurred",
		}
	}

	apiErr := &dto.APIError{Code: code, Message: err.Error()}
	var keyErr *rsakey.KeyError
	if errors.As(err, &keyErr) {
		apiErr.Details = map[string]string{"operation": keyErr.Op}
		if keyErr.Field != "" {
			apiErr.Details["field"] = keyErr.Field
		}
	}
	return status, apiErr
}

// NewBadRequest creates a bad request error.
func NewBadRequest(message string) *dto.APIError {
	return &dto.APIError{
		Code:    CodeInvalidRequest,
		Message: message,
	}
}
