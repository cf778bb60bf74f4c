// Package gateway turns a user utterance into a bot message through an
// OpenAI-compatible chat-completion endpoint.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/mindcare-go/internal/config"
	"github.com/comigor/mindcare-go/internal/conversation"
	"github.com/comigor/mindcare-go/internal/llm"
	"github.com/comigor/mindcare-go/internal/logger"
)

// Fallback texts shown in place of a reply.
const (
	TransportFallback     = "Sorry, there was an error processing your request."
	EmptyResponseFallback = "Something went wrong. Please try again."
)

// ErrEmptyResponse reports a response without a usable completion.
var ErrEmptyResponse = errors.New("chat completion returned no usable choice")

// TransportError reports a request that could not be completed.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "chat completion request failed: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// Gateway calls the chat-completion endpoint with a fixed system prompt.
type Gateway struct {
	client llm.Client
	cfg    config.LLMConfig
}

// New creates a gateway. cfg supplies the model, temperature and system prompt.
func New(client llm.Client, cfg config.LLMConfig) *Gateway {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = config.DefaultSystemPrompt
	}
	return &Gateway{client: client, cfg: cfg}
}

// Respond sends text and returns the first choice as a bot message.
// Failures are either a *TransportError or wrap ErrEmptyResponse.
func (g *Gateway) Respond(ctx context.Context, text string) (conversation.Message, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.cfg.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		if isMalformed(err) {
			return conversation.Message{}, fmt.Errorf("%w: %v", ErrEmptyResponse, err)
		}
		return conversation.Message{}, &TransportError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return conversation.Message{}, ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return conversation.Message{}, fmt.Errorf("%w: first choice is blank", ErrEmptyResponse)
	}
	return conversation.BotMessage(content), nil
}

// Reply always yields a bot message: the completion, or the fallback for the
// failure. The failure is returned alongside for logging.
func (g *Gateway) Reply(ctx context.Context, text string) (conversation.Message, error) {
	msg, err := g.Respond(ctx, text)
	if err != nil {
		logger.FromContext(ctx).Warn("chat completion failed", "error", err)
		return Fallback(err), err
	}
	return msg, nil
}

// Fallback maps a Respond failure to the apology shown to the user.
func Fallback(err error) conversation.Message {
	if errors.Is(err, ErrEmptyResponse) {
		return conversation.BotMessage(EmptyResponseFallback)
	}
	return conversation.BotMessage(TransportFallback)
}

// isMalformed reports whether a 2xx body arrived but could not be decoded.
// Non-2xx statuses surface as *openai.APIError or *openai.RequestError, even
// when their body is HTML or empty, and count as transport failures.
func isMalformed(err error) bool {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var urlErr *url.Error
	if errors.As(err, &apiErr) || errors.As(err, &reqErr) || errors.As(err, &urlErr) {
		return false
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
