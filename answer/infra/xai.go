// Package infra contém o cliente HTTP do provedor de chat-completion
// (API compatível com OpenAI, usada com x.ai).
package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultEndpoint    = "https://api.x.ai/v1/chat/completions"
	DefaultModel       = "grok-3"
	DefaultTemperature = 0.8
)

var (
	ErrMissingAPIKey   = errors.New("xai: api key not configured")
	ErrEmptyCompletion = errors.New("xai: empty completion")
)

// UpstreamStatusError é uma resposta não-2xx do provedor.
type UpstreamStatusError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamStatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("xai: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("xai: unexpected status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
}

type Option func(*Client)

func WithEndpoint(url string) Option {
	return func(c *Client) {
		if url = strings.TrimSpace(url); url != "" {
			c.endpoint = url
		}
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func WithTemperature(t float64) Option {
	return func(c *Client) {
		if t >= 0 {
			c.temperature = t
		}
	}
}

// WithHTTPClient troca o http.Client. O timeout da chamada vem do ctx; o
// cliente padrão não define Timeout próprio.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:    DefaultEndpoint,
		apiKey:      strings.TrimSpace(apiKey),
		model:       DefaultModel,
		temperature: DefaultTemperature,
		httpClient:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete faz uma única chamada, sem retentativas, e devolve o texto da
// primeira escolha.
func (c *Client) Complete(ctx context.Context, system, question string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: question},
		},
		Temperature: c.temperature,
		Stream:      false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("xai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("xai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("xai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var er errorResponse
		msg := ""
		if json.Unmarshal(raw, &er) == nil {
			msg = er.Error.Message
		}
		return "", &UpstreamStatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("xai: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
