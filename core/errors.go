package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ReceiverErrorBadInput           = "RECEIVER_BAD_INPUT"
	ReceiverErrorNotFound           = "RECEIVER_NOT_FOUND"
	ReceiverErrorNotConfigured      = "RECEIVER_NOT_CONFIGURED"
	ReceiverErrorVerificationFailed = "RECEIVER_VERIFICATION_FAILED"
	ReceiverErrorConflict           = "RECEIVER_CONFLICT"
	ReceiverErrorOperationFailed    = "RECEIVER_OPERATION_FAILED"
	ReceiverErrorInternal           = "RECEIVER_INTERNAL_ERROR"
)

func receiverErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureReceiverErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "receiver") && strings.Contains(msg, "not registered"):
		return newReceiverError(err.Error(), goerrors.CategoryNotFound, ReceiverErrorNotFound)
	case strings.Contains(msg, "not configured"):
		return newReceiverError(err.Error(), goerrors.CategoryBadInput, ReceiverErrorNotConfigured)
	case strings.Contains(msg, "signature"), strings.Contains(msg, "code mismatch"):
		return newReceiverError(err.Error(), goerrors.CategoryAuth, ReceiverErrorVerificationFailed)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return newReceiverError(err.Error(), goerrors.CategoryBadInput, ReceiverErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureReceiverErrorEnvelope(mapped)
}

func newReceiverError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureReceiverErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureReceiverErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = receiverHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultReceiverTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultReceiverTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ReceiverErrorBadInput
	case goerrors.CategoryNotFound:
		return ReceiverErrorNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ReceiverErrorVerificationFailed
	case goerrors.CategoryConflict:
		return ReceiverErrorConflict
	case goerrors.CategoryOperation:
		return ReceiverErrorOperationFailed
	default:
		return ReceiverErrorInternal
	}
}

func receiverHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// DefaultErrorMapper normalizes any error into the receiver error envelope.
func DefaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return receiverErrorMapper(err)
}
