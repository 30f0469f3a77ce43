package spotify

import "fmt"

// providerError preserves the provider's status code and raw body for
// diagnostics. It is never surfaced to end users verbatim.
type providerError struct {
	StatusCode int
	Body       string
}

func (e providerError) message(op string) string {
	return fmt.Sprintf("%s failed with status %d: %s", op, e.StatusCode, e.Body)
}

type ExchangeError struct{ providerError }

func (e *ExchangeError) Error() string { return e.message("code exchange") }

type RefreshError struct{ providerError }

func (e *RefreshError) Error() string { return e.message("token refresh") }

type ProfileError struct{ providerError }

func (e *ProfileError) Error() string { return e.message("profile fetch") }

// APIError covers the remaining resource calls (search, albums, playback).
type APIError struct {
	providerError
	Endpoint string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}
