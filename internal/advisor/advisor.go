// Package advisor is a thin client for an OpenAI-compatible chat
// endpoint. It turns the current vitals and alerts into a short
// prompt and returns the model's reply verbatim.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"healthmon/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrDisabled indicates no API key is configured.
var ErrDisabled = errors.New("advisor is disabled: no API key configured")

const (
	defaultBaseURL = "https://api.deepseek.com/v1"
	defaultModel   = "deepseek-chat"

	maxTokens   = 300
	temperature = 0.7
)

// Client calls the chat completion API.
type Client struct {
	httpClient *resty.Client
	apiKey     string
	model      string
	logger     *zap.Logger
}

// NewClient creates an advisor client. Empty baseURL and model fall
// back to the DeepSeek defaults; an empty apiKey leaves the client
// disabled.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(apiKey)

	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Advise asks the model for guidance on the current state and returns
// its reply.
func (c *Client) Advise(ctx context.Context, reading models.Reading, alerts []models.Alert) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a health monitoring assistant. Give brief, practical guidance based on the vital signs provided. Always advise consulting a medical professional for concerning readings.",
			},
			{
				Role:    "user",
				Content: buildPrompt(reading, alerts),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var parsed chatResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&parsed).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("advisor request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("advisor returned status %d", resp.StatusCode())
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("advisor response contained no choices")
	}

	c.logger.Debug("Advisor replied", zap.String("model", c.model))
	return parsed.Choices[0].Message.Content, nil
}

func buildPrompt(reading models.Reading, alerts []models.Alert) string {
	var b strings.Builder
	b.WriteString("Current vital signs:\n")

	for _, vital := range models.AllVitals {
		value, ok := reading.Value(vital)
		if !ok {
			continue
		}
		b.WriteString("- ")
		b.WriteString(vital.DisplayName())
		b.WriteString(": ")
		b.WriteString(strconv.FormatFloat(value, 'f', -1, 64))
		if unit := vital.Unit(); unit != "" {
			b.WriteString(" ")
			b.WriteString(unit)
		}
		b.WriteString("\n")
	}

	if len(alerts) > 0 {
		b.WriteString("\nActive alerts:\n")
		for _, alert := range alerts {
			b.WriteString("- [")
			b.WriteString(string(alert.Severity))
			b.WriteString("] ")
			b.WriteString(alert.Message)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nPlease assess these readings and suggest next steps.")
	return b.String()
}
