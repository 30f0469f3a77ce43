// Package serviceerr defines the error taxonomy shared across the service.
//
// Errors are identified by a Code. The RFC6749 codes are kept verbatim so
// provider-originated errors can be surfaced to the frontend unchanged; the
// custom codes cover the session and storage failure modes of this service.
package serviceerr

import (
	"fmt"
	"net/http"
)

type Code string

// RFC6749 authorization and token error codes.
const (
	CodeInvalidRequest          Code = "invalid_request"
	CodeUnauthorizedClient      Code = "unauthorized_client"
	CodeAccessDenied            Code = "access_denied"
	CodeUnsupportedResponseType Code = "unsupported_response_type"
	CodeInvalidScope            Code = "invalid_scope"
	CodeServerError             Code = "server_error"
	CodeTemporarilyUnavailable  Code = "temporarily_unavailable"
	CodeInvalidClient           Code = "invalid_client"
	CodeInvalidGrant            Code = "invalid_grant"
	CodeUnsupportedGrantType    Code = "unsupported_grant_type"
)

// Service-specific error codes.
const (
	CodeUnknown               Code = "unknown"
	CodeConflict              Code = "conflict"
	CodeNotFound              Code = "not_found"
	CodeNotAuthenticated      Code = "not_authenticated"
	CodeInvalidOrExpiredState Code = "invalid_or_expired_state"
	CodeMissingAuthCode       Code = "missing_authorization_code"
	CodeAuthExchangeFailed    Code = "auth_exchange_failed"
	CodeAuthRefreshFailed     Code = "auth_refresh_failed"
	CodeProfileFetchFailed    Code = "profile_fetch_failed"
	CodeSessionPersistFailed  Code = "session_persist_failed"
)

type Error struct {
	Err         Code
	Description string
}

func (e *Error) Error() string {
	if e.Description == "" {
		return string(e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Err, e.Description)
}

// HTTPStatus maps the error code onto the status returned by the HTTP layer.
func (e *Error) HTTPStatus() int {
	switch e.Err {
	case CodeInvalidRequest, CodeUnsupportedResponseType, CodeInvalidScope,
		CodeInvalidClient, CodeInvalidGrant, CodeUnsupportedGrantType,
		CodeMissingAuthCode:
		return http.StatusBadRequest
	case CodeUnauthorizedClient, CodeNotAuthenticated, CodeAuthRefreshFailed:
		return http.StatusUnauthorized
	case CodeAccessDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeInvalidOrExpiredState:
		return http.StatusGone
	case CodeAuthExchangeFailed, CodeProfileFetchFailed:
		return http.StatusBadGateway
	case CodeTemporarilyUnavailable:
		return http.StatusServiceUnavailable
	case CodeServerError, CodeUnknown, CodeSessionPersistFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// RFC6749 predefined errors, surfaced without a description.
var (
	ErrInvalidRequest          = &Error{Err: CodeInvalidRequest}
	ErrUnauthorizedClient      = &Error{Err: CodeUnauthorizedClient}
	ErrAccessDenied            = &Error{Err: CodeAccessDenied}
	ErrUnsupportedResponseType = &Error{Err: CodeUnsupportedResponseType}
	ErrInvalidScope            = &Error{Err: CodeInvalidScope}
	ErrServerError             = &Error{Err: CodeServerError}
	ErrTemporarilyUnavailable  = &Error{Err: CodeTemporarilyUnavailable}
	ErrInvalidClient           = &Error{Err: CodeInvalidClient}
	ErrInvalidGrant            = &Error{Err: CodeInvalidGrant}
	ErrUnsupportedGrantType    = &Error{Err: CodeUnsupportedGrantType}
)

// Service predefined errors.
var (
	ErrUnknown               = &Error{Err: CodeUnknown, Description: "unknown error"}
	ErrConflict              = &Error{Err: CodeConflict, Description: "already exists"}
	ErrNotFound              = &Error{Err: CodeNotFound, Description: "not found"}
	ErrNotAuthenticated      = &Error{Err: CodeNotAuthenticated, Description: "not authenticated"}
	ErrInvalidOrExpiredState = &Error{Err: CodeInvalidOrExpiredState, Description: "state is unknown, consumed, or expired"}
	ErrMissingAuthCode       = &Error{Err: CodeMissingAuthCode, Description: "callback carried no authorization code"}
	ErrSessionPersist        = &Error{Err: CodeSessionPersistFailed, Description: "session was not persisted"}
)
