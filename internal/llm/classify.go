package llm

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cloo-solutions/docqa/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// rateLimitMarkers are matched against provider codes and types, and against
// the text of errors that carry no HTTP status.
var rateLimitMarkers = []string{
	"rate limit",
	"rate_limit",
	"ratelimit",
	"too many requests",
	"status code: 429",
	"status 429",
}

// Classify sorts a chat completion failure into rate-limited or fatal.
// Errors with an HTTP status are decided by the status and the provider's
// code and type; the message text is only consulted for untyped errors.
// Timeouts and transport errors are fatal.
func Classify(err error) domain.FailureClass {
	if err == nil {
		return domain.FailureNone
	}
	if domain.IsCode(err, domain.ErrCodeRateLimited) {
		return domain.FailureRateLimited
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return domain.FailureRateLimited
		}
		if code, ok := apiErr.Code.(string); ok && hasRateLimitMarker(code) {
			return domain.FailureRateLimited
		}
		if hasRateLimitMarker(apiErr.Type) {
			return domain.FailureRateLimited
		}
		return domain.FailureFatal
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return domain.FailureRateLimited
		}
		return domain.FailureFatal
	}

	if hasRateLimitMarker(err.Error()) {
		return domain.FailureRateLimited
	}
	return domain.FailureFatal
}

func hasRateLimitMarker(s string) bool {
	s = strings.ToLower(s)
	for _, marker := range rateLimitMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
