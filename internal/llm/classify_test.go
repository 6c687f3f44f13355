package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/cloo-solutions/docqa/internal/domain"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.FailureClass
	}{
		{"nil", nil, domain.FailureNone},
		{"api error 429", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"}, domain.FailureRateLimited},
		{"api error code", &openai.APIError{HTTPStatusCode: http.StatusBadRequest, Code: "rate_limit_exceeded"}, domain.FailureRateLimited},
		{"api error 401", &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "invalid api key"}, domain.FailureFatal},
		{"api error 500", &openai.APIError{HTTPStatusCode: http.StatusInternalServerError, Message: "boom"}, domain.FailureFatal},
		{"request error 429", &openai.RequestError{HTTPStatusCode: http.StatusTooManyRequests, Err: errors.New("quota")}, domain.FailureRateLimited},
		{"wrapped api error", fmt.Errorf("call: %w", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}), domain.FailureRateLimited},
		{"message marker", errors.New("Rate limit reached for requests"), domain.FailureRateLimited},
		{"too many requests", errors.New("429 Too Many Requests"), domain.FailureRateLimited},
		{"domain sentinel", domain.ErrRateLimited, domain.FailureRateLimited},
		{"api error 500 with 429 in request id", &openai.APIError{HTTPStatusCode: http.StatusInternalServerError, Message: "internal server error (request req_84291a)"}, domain.FailureFatal},
		{"api error 401 with 429 in key suffix", &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "Invalid API Key gsk_...4290"}, domain.FailureFatal},
		{"api error 503 mentioning rate limit", &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable, Message: "upstream rate limiter unavailable"}, domain.FailureFatal},
		{"request error 502 with 429 in body", &openai.RequestError{HTTPStatusCode: http.StatusBadGateway, Err: errors.New("bad gateway trace 4291")}, domain.FailureFatal},
		{"untyped status text", errors.New("error, status code: 429, status: Too Many Requests"), domain.FailureRateLimited},
		{"untyped bare digits", errors.New("upstream failed, trace id 84291"), domain.FailureFatal},
		{"timeout", context.DeadlineExceeded, domain.FailureFatal},
		{"transport", errors.New("dial tcp: connection refused"), domain.FailureFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
