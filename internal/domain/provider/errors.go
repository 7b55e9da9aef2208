package provider

import (
	"errors"
	"fmt"
)

// Kind classifies provider and reconciliation failures into the categories
// the presentation layer can act on.
type Kind string

const (
	KindInvalidCredential Kind = "invalid_credential"
	KindRateLimited       Kind = "rate_limited"
	KindUnknownSymbol     Kind = "unknown_symbol"
	KindNoQuoteData       Kind = "no_quote_data"
	KindNoHistoricalData  Kind = "no_historical_data"
	KindMalformedResponse Kind = "malformed_response"

	// Whole-request failures raised by the engine, not by an adapter.
	KindInsufficientData Kind = "insufficient_data"
	KindNoCredentials    Kind = "no_credentials_configured"
)

// Error is a typed provider or reconciliation error. Provider is empty for
// engine-level failures.
type Error struct {
	Provider string
	Kind     Kind
	Message  string
	Err      error
}

func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Provider != "" {
		prefix = e.Provider + ": " + prefix
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a typed error for a provider failure.
func NewError(providerName string, kind Kind, message string) *Error {
	return &Error{Provider: providerName, Kind: kind, Message: message}
}

// WrapError creates a typed error wrapping an underlying cause.
func WrapError(providerName string, kind Kind, message string, err error) *Error {
	return &Error{Provider: providerName, Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err, or "" when err is not a typed Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
