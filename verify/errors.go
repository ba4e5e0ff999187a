package verify

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-receivers/core"
)

func verifyBadInput(message string, cause error) error {
	if cause != nil {
		return goerrors.Wrap(cause, goerrors.CategoryBadInput, "verify: "+message).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ReceiverErrorBadInput)
	}
	return goerrors.New("verify: "+message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ReceiverErrorBadInput)
}

func verifyInternal(message string, cause error) error {
	if cause != nil {
		return goerrors.Wrap(cause, goerrors.CategoryInternal, "verify: "+message).
			WithCode(http.StatusInternalServerError).
			WithTextCode(core.ReceiverErrorInternal)
	}
	return goerrors.New("verify: "+message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ReceiverErrorInternal)
}
