package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_server_ai_requests_total",
			Help: "Total number of requests to the AI API.",
		},
		[]string{"model", "role", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adventure_server_ai_request_duration_seconds",
			Help:    "Histogram of AI API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model", "role"},
	)
	aiTotalTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adventure_server_ai_total_tokens",
			Help:    "Histogram of total token counts (prompt + completion).",
			Buckets: prometheus.LinearBuckets(250, 250, 20),
		},
		[]string{"model", "role"},
	)
)

// UsageInfo reports token consumption for one completion.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is the raw text-completion surface shared by the intent resolver
// and the narrator. The role label keys per-caller metrics.
type Client interface {
	GenerateText(ctx context.Context, role, systemPrompt, userInput string) (string, UsageInfo, error)
}

// Config selects and parameterizes the backing AI provider.
type Config struct {
	Type    string
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewClient builds a provider-specific client from configuration.
func NewClient(cfg Config, logger *zap.Logger) (Client, error) {
	switch strings.ToLower(cfg.Type) {
	case "openai":
		openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			openaiConfig.BaseURL = cfg.BaseURL
		}
		openaiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
		logger.Info("Using OpenAI-compatible AI client",
			zap.String("baseURL", openaiConfig.BaseURL),
			zap.String("model", cfg.Model),
			zap.Duration("timeout", cfg.Timeout),
		)
		return &openAIClient{
			client: openaigo.NewClientWithConfig(openaiConfig),
			model:  cfg.Model,
			logger: logger.Named("OpenAIClient"),
		}, nil
	case "ollama":
		return newOllamaClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown AI client type: %q", cfg.Type)
	}
}

type openAIClient struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

func (c *openAIClient) GenerateText(ctx context.Context, role, systemPrompt, userInput string) (string, UsageInfo, error) {
	usage := UsageInfo{}
	if strings.TrimSpace(systemPrompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "role": role, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("empty system prompt for role %s", role)
	}

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if userInput != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleUser,
			Content: userInput,
		})
	}

	startTime := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("AI request failed",
			zap.String("role", role),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "role": role, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "role": role, "status": "error_empty_response"}).Inc()
		return "", usage, fmt.Errorf("openai completion: empty response")
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "role": role, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model, "role": role}).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		usage = UsageInfo{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
		aiTotalTokens.With(prometheus.Labels{"model": c.model, "role": role}).Observe(float64(usage.TotalTokens))
	}

	c.logger.Debug("AI request completed",
		zap.String("role", role),
		zap.Duration("duration", duration),
		zap.Int("totalTokens", usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, usage, nil
}

type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func newOllamaClient(cfg Config, logger *zap.Logger) (Client, error) {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/v1")
	baseURL = strings.TrimSuffix(baseURL, "/")
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama base URL %q: %w", baseURL, err)
	}

	client := api.NewClient(parsedURL, &http.Client{Timeout: cfg.Timeout})
	logger.Info("Using Ollama AI client",
		zap.String("baseURL", baseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout),
	)
	return &ollamaClient{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("OllamaClient"),
	}, nil
}

func (c *ollamaClient) GenerateText(ctx context.Context, role, systemPrompt, userInput string) (string, UsageInfo, error) {
	usage := UsageInfo{}
	if strings.TrimSpace(systemPrompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "role": role, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("empty system prompt for role %s", role)
	}

	messages := []api.Message{
		{Role: "system", Content: systemPrompt},
	}
	if userInput != "" {
		messages = append(messages, api.Message{Role: "user", Content: userInput})
	}

	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	var resp api.ChatResponse
	err := c.client.Chat(requestCtx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("AI request failed",
			zap.String("role", role),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "role": role, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("ollama chat: %w", err)
	}
	if resp.Message.Content == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "role": role, "status": "error_empty_response"}).Inc()
		return "", usage, fmt.Errorf("ollama chat: empty response")
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "role": role, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model, "role": role}).Observe(duration.Seconds())

	usage = UsageInfo{
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
		TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
	}
	if usage.TotalTokens > 0 {
		aiTotalTokens.With(prometheus.Labels{"model": c.model, "role": role}).Observe(float64(usage.TotalTokens))
	}
	return resp.Message.Content, usage, nil
}
