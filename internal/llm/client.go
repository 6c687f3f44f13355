package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/cloo-solutions/docqa/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the chat model used when none is configured
	DefaultModel = "llama3-8b-8192"
)

var (
	// ErrEmptyContent is returned when the request has no user content
	ErrEmptyContent = errors.New("user content cannot be empty")
	// ErrNoChoices is returned when the endpoint answers without any choice
	ErrNoChoices = errors.New("chat completion returned no choices")
	// ErrNoAPIKey is returned when no API key is configured
	ErrNoAPIKey = domain.ErrMissingAPIKey
)

// ChatRequest is the endpoint contract: one system instruction, one user message.
type ChatRequest struct {
	SystemInstruction string
	UserContent       string
	Model             string
	MaxOutputTokens   int
}

// ChatAPI defines the interface for chat completions
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req ChatRequest) (string, error)
}

type OpenAIAdapter struct {
	client *openai.Client
}

func NewOpenAIAdapter(apiKey, baseURL string) *OpenAIAdapter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = baseURL
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(cfg),
	}
}

// CreateChatCompletion calls the chat completions endpoint
func (a *OpenAIAdapter) CreateChatCompletion(ctx context.Context, req ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserContent,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: req.MaxOutputTokens,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxOutputTokens int
}

// Client wraps a ChatAPI and translates its failures into domain errors
type Client struct {
	api             ChatAPI
	model           string
	maxOutputTokens int
}

// NewClient creates a client for the configured endpoint. It fails with
// ErrNoAPIKey when no key is set.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	return NewClientWithAPI(NewOpenAIAdapter(cfg.APIKey, cfg.BaseURL), cfg), nil
}

// NewClientWithAPI creates a client over an arbitrary ChatAPI.
func NewClientWithAPI(api ChatAPI, cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:             api,
		model:           model,
		maxOutputTokens: cfg.MaxOutputTokens,
	}
}

// Complete sends one task request. Rate-limit failures come back wrapped in
// domain.ErrRateLimited, every other failure in domain.ErrFatalRemote.
func (c *Client) Complete(ctx context.Context, req domain.TaskRequest) (string, error) {
	if req.UserContent == "" {
		return "", ErrEmptyContent
	}

	text, err := c.api.CreateChatCompletion(ctx, ChatRequest{
		SystemInstruction: req.SystemInstruction,
		UserContent:       req.UserContent,
		Model:             c.model,
		MaxOutputTokens:   c.maxOutputTokens,
	})
	if err == nil {
		return text, nil
	}

	switch Classify(err) {
	case domain.FailureRateLimited:
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeRateLimited, domain.ErrRateLimited.Message, err)
	default:
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeRemote, domain.ErrFatalRemote.Message, err)
	}
}
