// Package llm builds the OpenAI-compatible client used by the gateway.
package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/mindcare-go/internal/config"
)

// Client is the part of openai.Client the gateway needs; tests substitute a stub.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var _ Client = (*openai.Client)(nil)

// NewClient creates a client for cfg.BaseURL authenticated with cfg.APIKey.
// An empty base URL keeps the library default.
func NewClient(cfg config.LLMConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}
