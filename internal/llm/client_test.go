package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/cloo-solutions/docqa/internal/domain"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChatAPI is a mock for the chat completions API
type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateChatCompletion(ctx context.Context, req ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func answerRequest() domain.TaskRequest {
	return domain.TaskRequest{
		Kind:              domain.TaskKindAnswer,
		SystemInstruction: "You are an assistant that answers questions based on document content.",
		UserContent:       "Here is the content of the document: abc\n\nUser's question: why?",
	}
}

func TestClient_Complete_Success(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewClientWithAPI(mockAPI, Config{Model: "llama3-70b-8192", MaxOutputTokens: 256})

	ctx := context.Background()
	req := answerRequest()
	mockAPI.On("CreateChatCompletion", ctx, ChatRequest{
		SystemInstruction: req.SystemInstruction,
		UserContent:       req.UserContent,
		Model:             "llama3-70b-8192",
		MaxOutputTokens:   256,
	}).Return("because", nil)

	text, err := client.Complete(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "because", text)
	mockAPI.AssertExpectations(t)
}

func TestClient_Complete_DefaultModel(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewClientWithAPI(mockAPI, Config{})

	mockAPI.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(r ChatRequest) bool {
		return r.Model == DefaultModel
	})).Return("ok", nil)

	_, err := client.Complete(context.Background(), answerRequest())

	require.NoError(t, err)
	mockAPI.AssertExpectations(t)
}

func TestClient_Complete_EmptyContent(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewClientWithAPI(mockAPI, Config{})

	text, err := client.Complete(context.Background(), domain.TaskRequest{})

	assert.Empty(t, text)
	assert.Equal(t, ErrEmptyContent, err)
	mockAPI.AssertNotCalled(t, "CreateChatCompletion", mock.Anything, mock.Anything)
}

func TestClient_Complete_RateLimited(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewClientWithAPI(mockAPI, Config{})

	apiErr := errors.New("error, status code: 429, message: Rate limit reached for model")
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).Return("", apiErr)

	_, err := client.Complete(context.Background(), answerRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.ErrorIs(t, err, apiErr)
	assert.Equal(t, domain.FailureRateLimited, Classify(err))
}

func TestClient_Complete_FatalError(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewClientWithAPI(mockAPI, Config{})

	apiErr := errors.New("invalid api key")
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).Return("", apiErr)

	_, err := client.Complete(context.Background(), answerRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFatalRemote)
	assert.NotErrorIs(t, err, domain.ErrRateLimited)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestNewClient_NoAPIKey(t *testing.T) {
	client, err := NewClient(Config{APIKey: "  "})

	assert.Nil(t, client)
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
	assert.NotErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewClient_WithAPIKey(t *testing.T) {
	client, err := NewClient(Config{APIKey: "gsk-test"})

	require.NoError(t, err)
	assert.NotNil(t, client.api)
	assert.Equal(t, DefaultModel, client.model)
}

func TestClient_Complete_AuthErrorMentioning429IsFatal(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewClientWithAPI(mockAPI, Config{})

	apiErr := &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "Invalid API Key gsk_...4290"}
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).Return("", apiErr)

	_, err := client.Complete(context.Background(), answerRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFatalRemote)
	assert.NotErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, domain.FailureFatal, Classify(err))
}
