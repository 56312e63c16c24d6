package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Degraded-mode replies. The first is used when no provider key is
// configured at all, the second when every provider in the chain failed.
const (
	msgNoKey = "I'm in basic mode. I can see your tasks but my AI connection is quiet. " +
		"Add an API key in the backend for full chat!"
	msgUnreachable = "I'm having trouble connecting to your AI provider. Check your API key or internet!"
)

// Options configures a Client.
type Options struct {
	// APIKey enables the keyed OpenAI-compatible provider. Empty = degraded mode.
	APIKey  string
	BaseURL string
	Model   string
	// FreeURL is the anonymous plain-text completion endpoint tried after
	// (or instead of) the keyed provider.
	FreeURL string

	KeyedTimeout time.Duration
	FreeTimeout  time.Duration

	Logger *zap.Logger
}

// provider is one candidate completion backend. It returns the reply text
// or an error; errors never escape the Client.
type provider func(ctx context.Context, system, user string) (string, error)

// Client calls an external completion provider through an ordered fallback
// chain: keyed provider first (when configured), then the free endpoint,
// then a constant degraded-mode message. Complete always returns a
// non-empty string and never an error.
type Client struct {
	providers []provider
	keyed     bool
	logger    *zap.Logger
}

// NewClient builds the fallback chain from opts.
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{keyed: opts.APIKey != "", logger: logger}

	if c.keyed {
		kc := &keyedProvider{
			apiKey:  opts.APIKey,
			baseURL: strings.TrimRight(opts.BaseURL, "/"),
			model:   opts.Model,
			client:  &http.Client{Timeout: opts.KeyedTimeout},
		}
		c.providers = append(c.providers, kc.complete)
	}
	if opts.FreeURL != "" {
		fc := &freeProvider{
			url:    opts.FreeURL,
			client: &http.Client{Timeout: opts.FreeTimeout},
		}
		c.providers = append(c.providers, fc.complete)
	}
	return c
}

// Complete tries each provider in order and returns the first reply.
// When the chain is exhausted it returns the degraded-mode message.
func (c *Client) Complete(ctx context.Context, system, user string) string {
	for _, p := range c.providers {
		reply, err := p(ctx, system, user)
		if err != nil {
			c.logger.Warn("ai provider failed", zap.Error(err))
			continue
		}
		if reply != "" {
			return reply
		}
	}
	if !c.keyed {
		return msgNoKey
	}
	return msgUnreachable
}

// keyedProvider talks to an OpenAI-compatible chat completions API.
type keyedProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *keyedProvider) complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("keyed provider: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("keyed provider status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("keyed provider returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// freeProvider talks to an anonymous plain-text completion endpoint. It has
// a different request shape: one combined prompt, no JSON.
type freeProvider struct {
	url    string
	client *http.Client
}

func (p *freeProvider) complete(ctx context.Context, system, user string) (string, error) {
	combined := "### System: " + system + "\n\n### User: " + user

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, strings.NewReader(combined))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("free provider: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("free provider status %d", resp.StatusCode)
	}
	reply := strings.TrimSpace(string(respBody))
	if reply == "" {
		return "", fmt.Errorf("free provider returned empty body")
	}
	return reply, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
