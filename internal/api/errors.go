package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/JakeFAU/site-report/internal/pipeline"
)

const unexpectedMessage = "An unexpected error occurred"

// creditsResponse is the body of a 402 answer.
type creditsResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action"`
	Link    string `json:"link"`
}

// statusFor maps a failure kind to its HTTP status.
func statusFor(kind pipeline.Kind) int {
	switch kind {
	case pipeline.KindInvalidURL:
		return http.StatusBadRequest
	case pipeline.KindInsufficientCredits:
		return http.StatusPaymentRequired
	case pipeline.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse builds the status and JSON body for err.
func errorResponse(err error) (int, any) {
	pe, ok := pipeline.AsError(err)
	if !ok {
		return http.StatusInternalServerError, map[string]string{"error": unexpectedMessage}
	}
	status := statusFor(pe.Kind)
	if pe.Kind == pipeline.KindInsufficientCredits {
		return status, creditsResponse{
			Error:   "Insufficient credits",
			Message: valueOr(pe.Message, pipeline.CreditsMessage),
			Action:  valueOr(pe.Action, pipeline.CreditsAction),
			Link:    valueOr(pe.Link, pipeline.CreditsLink),
		}
	}
	msg := pe.Message
	if msg == "" {
		msg = unexpectedMessage
	}
	return status, map[string]string{"error": msg}
}

// badExtractRequestMessage explains a rejected /extract payload.
func badExtractRequestMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return "URL is required"
	}
	return "invalid JSON"
}

// badReportRequestMessage explains a rejected /report payload.
func badReportRequestMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid JSON"
	}
	switch verrs[0].Field() {
	case "URL":
		return "Please enter a URL"
	case "Mode":
		return "mode must be one of: crawl, direct"
	case "Instructions":
		return "instructions are too long"
	default:
		return "invalid request"
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
