package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline failure so the boundary layer can pick a status
// code and a user message.
type Kind string

// Failure kinds surfaced to callers.
const (
	KindInvalidURL              Kind = "invalid_url"
	KindNetworkError            Kind = "network_error"
	KindFetchFailed             Kind = "fetch_failed"
	KindSubmissionFailed        Kind = "submission_failed"
	KindCrawlFailed             Kind = "crawl_failed"
	KindCrawlEmpty              Kind = "crawl_empty"
	KindCrawlTimeout            Kind = "crawl_timeout"
	KindInsufficientCredits     Kind = "insufficient_credits"
	KindRateLimited             Kind = "rate_limited"
	KindContextTooLong          Kind = "context_too_long"
	KindBadRequest              Kind = "bad_request"
	KindSynthesisEmptyOrInvalid Kind = "synthesis_empty_or_invalid"
	KindSynthesisFailed         Kind = "synthesis_failed"
	KindUnexpected              Kind = "unexpected"
)

// Sentinels for errors.Is comparisons; matching is by Kind only.
var (
	ErrInvalidURL              = &Error{Kind: KindInvalidURL}
	ErrNetworkError            = &Error{Kind: KindNetworkError}
	ErrFetchFailed             = &Error{Kind: KindFetchFailed}
	ErrSubmissionFailed        = &Error{Kind: KindSubmissionFailed}
	ErrCrawlFailed             = &Error{Kind: KindCrawlFailed}
	ErrCrawlEmpty              = &Error{Kind: KindCrawlEmpty}
	ErrCrawlTimeout            = &Error{Kind: KindCrawlTimeout}
	ErrInsufficientCredits     = &Error{Kind: KindInsufficientCredits}
	ErrRateLimited             = &Error{Kind: KindRateLimited}
	ErrContextTooLong          = &Error{Kind: KindContextTooLong}
	ErrBadRequest              = &Error{Kind: KindBadRequest}
	ErrSynthesisEmptyOrInvalid = &Error{Kind: KindSynthesisEmptyOrInvalid}
	ErrSynthesisFailed         = &Error{Kind: KindSynthesisFailed}
	ErrUnexpected              = &Error{Kind: KindUnexpected}
)

// Credit exhaustion call-to-action returned with KindInsufficientCredits.
const (
	CreditsMessage = "Unable to crawl website due to insufficient credits."
	CreditsAction  = "Please upgrade your plan at https://firecrawl.dev/pricing or try reducing the request limit."
	CreditsLink    = "https://firecrawl.dev/pricing"
)

// Error is the classified failure returned by every pipeline component.
type Error struct {
	Kind    Kind
	Message string
	// StatusCode and StatusText describe the upstream HTTP response for KindFetchFailed.
	StatusCode int
	StatusText string
	// Action and Link are populated for KindInsufficientCredits.
	Action string
	Link   string
	Err    error
}

// Error implements error.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds a classified error.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// FetchFailed reports a non-success HTTP status from the direct fetch path.
func FetchFailed(status int, statusText string) *Error {
	return &Error{
		Kind:       KindFetchFailed,
		Message:    fmt.Sprintf("Failed to fetch URL: %s", statusText),
		StatusCode: status,
		StatusText: statusText,
	}
}

// InsufficientCredits wraps a crawl service quota failure with its call-to-action.
func InsufficientCredits(cause error) *Error {
	return &Error{
		Kind:    KindInsufficientCredits,
		Message: CreditsMessage,
		Action:  CreditsAction,
		Link:    CreditsLink,
		Err:     cause,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnexpected.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnexpected
}

// AsError returns the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsInsufficientCredits reports whether err looks like a crawl quota failure:
// an HTTP 402 anywhere in the chain or an "insufficient credits" message.
func IsInsufficientCredits(err error) bool {
	if err == nil {
		return false
	}
	if StatusOf(err) == 402 {
		return true
	}
	return ContainsCreditsMarker(err.Error())
}

// ContainsCreditsMarker reports whether msg mentions insufficient credits.
func ContainsCreditsMarker(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "insufficient credits")
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return 0
}

// CodeOf returns the upstream error code carried by err, or "".
func CodeOf(err error) string {
	var ec ErrorCoder
	if errors.As(err, &ec) {
		return ec.ErrorCode()
	}
	return ""
}
