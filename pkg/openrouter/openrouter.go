package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config is the OpenRouter-compatible chat-completions endpoint configuration.
// Models is the ranked failover list, best first.
type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey      string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Models      []string      `envconfig:"MODELS" split_words:"true" default:"google/gemini-2.5-flash,google/gemini-2.5-pro,google/gemini-2.0-flash-001,google/gemma-3-27b-it"`
	Temperature float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL     string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName    string        `envconfig:"SITE_NAME" split_words:"true"`
}

// Client is a thin wrapper over the OpenAI SDK pointed at an
// OpenRouter-compatible endpoint. One client serves every ranked model.
type Client struct {
	sdk         openaisdk.Client
	temperature float64
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openrouter: api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	// OpenRouter attribution headers
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}

	return &Client{
		sdk:         openaisdk.NewClient(opts...),
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends prompt to model and returns the raw completion text.
func (c *Client) Complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		Temperature: openaisdk.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openrouter: model %s: %w", model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter: model %s returned no choices", model)
	}
	return resp.Choices[0].Message.Content, nil
}

// IsQuota reports whether err is a quota/rate exhaustion signal (HTTP 429 or
// an upstream RESOURCE_EXHAUSTED message).
func IsQuota(err error) bool {
	var apierr *openaisdk.Error
	if errors.As(err, &apierr) && apierr.StatusCode == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "quota")
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
