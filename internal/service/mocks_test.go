package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockCompleter is a mock implementation of Completer
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req domain.TaskRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// requests returns the requests the mock received, in call order.
func (m *MockCompleter) requests() []domain.TaskRequest {
	var out []domain.TaskRequest
	for _, call := range m.Calls {
		out = append(out, call.Arguments.Get(1).(domain.TaskRequest))
	}
	return out
}

// recordingSleeper records requested waits without sleeping.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func rateLimitErr() error {
	return domain.NewDomainErrorWithCause(domain.ErrCodeRateLimited, "rate limit reached", errors.New("429 Too Many Requests"))
}

// completerFunc adapts a function to Completer.
type completerFunc func(ctx context.Context, req domain.TaskRequest) (string, error)

func (f completerFunc) Complete(ctx context.Context, req domain.TaskRequest) (string, error) {
	return f(ctx, req)
}
