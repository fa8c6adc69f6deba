package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ServiceErrorBadInput           = "OUTPLAY_BAD_INPUT"
	ServiceErrorCredentialInvalid  = "OUTPLAY_CREDENTIAL_INVALID"
	ServiceErrorAPIFailure         = "OUTPLAY_API_FAILURE"
	ServiceErrorWebhookSubscribe   = "OUTPLAY_WEBHOOK_SUBSCRIBE_FAILED"
	ServiceErrorWebhookUnsubscribe = "OUTPLAY_WEBHOOK_UNSUBSCRIBE_FAILED"
	ServiceErrorStateStore         = "OUTPLAY_STATE_STORE_FAILED"
	ServiceErrorInternal           = "OUTPLAY_INTERNAL_ERROR"
)

// MapError guarantees every error leaving the module carries a category,
// an HTTP code, and an OUTPLAY_* text code.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "client id") || strings.Contains(msg, "client secret"):
		return newServiceError(err.Error(), goerrors.CategoryAuth, ServiceErrorCredentialInvalid)
	case strings.Contains(msg, "subscribe"):
		return newServiceError(err.Error(), goerrors.CategoryExternal, ServiceErrorWebhookSubscribe)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newServiceError(err.Error(), goerrors.CategoryBadInput, ServiceErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped)
}

func newServiceError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureServiceErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureServiceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = serviceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultServiceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultServiceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ServiceErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ServiceErrorCredentialInvalid
	case goerrors.CategoryExternal:
		return ServiceErrorAPIFailure
	default:
		return ServiceErrorInternal
	}
}

func serviceHTTPStatus(category goerrors.Category) int {
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
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
