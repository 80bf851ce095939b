package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/arcanalab/tarot-api/internal/config"
	"github.com/arcanalab/tarot-api/internal/interpretation"
	"github.com/arcanalab/tarot-api/internal/platform/logger"
)

// Client implements interpretation.Interpreter against the DeepSeek
// chat-completions API. It is stateless across calls; the only side effect
// of Interpret is the single outbound HTTP request.
type Client struct {
	cfg    config.LLMConfig
	api    *openai.Client
	logger *slog.Logger
}

// Ensure Client implements the Interpreter interface.
var _ interpretation.Interpreter = (*Client)(nil)

// NewClient creates a DeepSeek-backed interpreter. A missing API key is not
// an error here: the client is still constructed and Interpret fails fast
// with ErrNotConfigured, so the rest of the application can boot without a
// credential (useful for local development and tests).
func NewClient(cfg config.LLMConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	apiConfig.BaseURL = cfg.BaseURL
	apiConfig.HTTPClient = &http.Client{
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}

	return &Client{
		cfg:    cfg,
		api:    openai.NewClientWithConfig(apiConfig),
		logger: log.With(slog.String("component", "interpretation_client")),
	}
}

// Interpret implements interpretation.Interpreter.
func (c *Client) Interpret(
	ctx context.Context,
	req interpretation.Request,
) (*interpretation.Outcome, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if c.cfg.APIKey == "" {
		log.Warn("interpretation requested but no API key is configured")
		return nil, interpretation.ErrNotConfigured
	}

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(req)},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		classified := classifyError(err)
		log.Error("interpretation call failed",
			slog.String("error", err.Error()),
			slog.String("classified", classified.Error()))
		return nil, classified
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		log.Error("interpretation call returned no content",
			slog.Int("choices", len(resp.Choices)))
		return nil, interpretation.ErrEmptyResponse
	}

	result, conforming := parseReadingResult(resp.Choices[0].Message.Content)
	if !conforming {
		log.Warn("upstream reply did not conform to the JSON contract, wrapped raw text")
	}

	return &interpretation.Outcome{Result: result, Conforming: conforming}, nil
}

// classifyError maps transport and API errors onto the interpretation
// error taxonomy.
func classifyError(err error) error {
	// Non-2xx responses surface as API or request errors with a status code.
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &interpretation.UpstreamStatusError{StatusCode: apiErr.HTTPStatusCode}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &interpretation.UpstreamStatusError{StatusCode: reqErr.HTTPStatusCode}
	}

	// Deadline and socket timeouts.
	if errors.Is(err, context.DeadlineExceeded) {
		return interpretation.ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return interpretation.ErrTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return interpretation.ErrTimeout
		}
		return interpretation.ErrTransport
	}

	// A 200 with a body the SDK could not decode.
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return interpretation.ErrResponseParse
	}

	return interpretation.ErrTransport
}
