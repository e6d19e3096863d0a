// Package apperror defines the user-facing error taxonomy and the
// classification of provider failures into it.
package apperror

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind identifies a class of user-facing failure.
type Kind string

const (
	// KindClientInput marks a malformed or incomplete client request.
	KindClientInput Kind = "client_input"
	// KindNotFound marks a missing or not-owned resource.
	KindNotFound Kind = "not_found"
	// KindNoCredential means neither a personal nor an operator API key is usable.
	KindNoCredential Kind = "no_credential"
	// KindInvalidCredential means the provider rejected the API key.
	KindInvalidCredential Kind = "invalid_credential"
	// KindInvalidCredentialFormat means the resolved key fails the format check.
	KindInvalidCredentialFormat Kind = "invalid_credential_format"
	KindRateLimited             Kind = "rate_limited"
	KindQuotaExceeded           Kind = "quota_exceeded"
	KindProviderUnreachable     Kind = "provider_unreachable"
	KindInvalidTTSRequest       Kind = "invalid_tts_request"
	// KindGenerationFailed is the catch-all for unclassified provider errors.
	KindGenerationFailed Kind = "generation_failed"
)

// Error carries a taxonomy kind plus the short message, longer details and
// optional suggested action shown to the user. KeyInfo, when set, is included
// in the response body so the client can explain which credential was in play.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Action  string
	KeyInfo any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, message, details string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

// WithAction attaches a suggested next step.
func (e *Error) WithAction(action string) *Error {
	e.Action = action
	return e
}

// WithKeyInfo attaches a serializable credential summary.
func (e *Error) WithKeyInfo(info any) *Error {
	e.KeyInfo = info
	return e
}

// KindOf extracts the taxonomy kind from err, or empty when err is not an
// *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// ProviderError is the neutral failure shape returned by provider clients.
// StatusCode is the HTTP status reported by the provider, zero when the call
// never reached it.
type ProviderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ClassifyGeneration maps a generation-provider failure onto the taxonomy.
// Classification happens once, here, at the orchestrator boundary.
func ClassifyGeneration(err error) *Error {
	if classified := classifyCommon(err); classified != nil {
		return classified
	}
	return &Error{
		Kind:    KindGenerationFailed,
		Message: "Error generating content",
		Details: "Error occurred while generating content with AI",
		Err:     err,
	}
}

// ClassifySpeech maps a synthesis-provider failure onto the taxonomy. It adds
// the speech-only kinds on top of the shared rules.
func ClassifySpeech(err error) *Error {
	if classified := classifyCommon(err); classified != nil {
		return classified
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) && providerErr.StatusCode == 400 {
		return &Error{
			Kind:    KindInvalidTTSRequest,
			Message: "Invalid request to OpenAI API",
			Details: providerErr.Message,
			Action:  "Check your TTS settings",
			Err:     err,
		}
	}

	return &Error{
		Kind:    KindGenerationFailed,
		Message: "Error generating speech",
		Details: "Internal server error occurred while generating speech",
		Err:     err,
	}
}

func classifyCommon(err error) *Error {
	if err == nil {
		return nil
	}

	if isUnreachable(err) {
		return &Error{
			Kind:    KindProviderUnreachable,
			Message: "Cannot connect to OpenAI API",
			Details: "Network connectivity issue",
			Action:  "Check your internet connection",
			Err:     err,
		}
	}

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		return nil
	}

	switch {
	case providerErr.StatusCode == 401:
		return &Error{
			Kind:    KindInvalidCredential,
			Message: "Invalid OpenAI API key",
			Details: "API key may be expired, invalid, or have insufficient permissions",
			Action:  "Check your API key in Settings",
			Err:     err,
		}
	case providerErr.StatusCode == 429:
		return &Error{
			Kind:    KindRateLimited,
			Message: "OpenAI API rate limit exceeded",
			Details: "Too many requests to OpenAI API",
			Action:  "Please try again later",
			Err:     err,
		}
	case providerErr.StatusCode == 402 || strings.Contains(providerErr.Message, "quota"):
		return &Error{
			Kind:    KindQuotaExceeded,
			Message: "OpenAI API quota exceeded",
			Details: "Insufficient credits or billing issue",
			Action:  "Please check your OpenAI billing",
			Err:     err,
		}
	}
	return nil
}

func isUnreachable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout")
}

// NoCredential builds the canonical "no usable API key" error.
func NoCredential(keyInfo any) *Error {
	return &Error{
		Kind:    KindNoCredential,
		Message: "No OpenAI API key available",
		Details: "Please configure an API key in Settings",
		KeyInfo: keyInfo,
	}
}
