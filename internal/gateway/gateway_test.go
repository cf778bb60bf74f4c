package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/comigor/mindcare-go/internal/config"
	"github.com/comigor/mindcare-go/internal/conversation"
	"github.com/comigor/mindcare-go/internal/llm"
)

type mockLLM struct {
	resp openai.ChatCompletionResponse
	err  error
	reqs []openai.ChatCompletionRequest
}

func (m *mockLLM) CreateChatCompletion(_ context.Context, r openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.reqs = append(m.reqs, r)
	return m.resp, m.err
}

func choice(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}}}
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{Model: "test-model", Temperature: 0.7, SystemPrompt: "be kind"}
}

func TestRespond_FirstChoiceTrimmed(t *testing.T) {
	m := &mockLLM{resp: openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Content: "  Try box breathing.\n"}},
		{Message: openai.ChatCompletionMessage{Content: "ignored"}},
	}}}
	g := New(m, testConfig())

	msg, err := g.Respond(context.Background(), "I'm feeling anxious")
	require.NoError(t, err)
	require.Equal(t, "Try box breathing.", msg.Text)
	require.Equal(t, conversation.SenderBot, msg.Sender)
	require.NotEmpty(t, msg.ID)

	require.Len(t, m.reqs, 1)
	req := m.reqs[0]
	require.Equal(t, "test-model", req.Model)
	require.InDelta(t, 0.7, req.Temperature, 0.0001)
	require.Equal(t, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "be kind"},
		{Role: openai.ChatMessageRoleUser, Content: "I'm feeling anxious"},
	}, req.Messages)
}

func TestNew_DefaultsSystemPrompt(t *testing.T) {
	m := &mockLLM{resp: choice("ok")}
	g := New(m, config.LLMConfig{Model: "x"})

	_, err := g.Respond(context.Background(), "hi")
	require.NoError(t, err)
	require.Equal(t, config.DefaultSystemPrompt, m.reqs[0].Messages[0].Content)
}

func TestRespond_Failures(t *testing.T) {
	cases := []struct {
		name      string
		mock      *mockLLM
		transport bool
		fallback  string
	}{
		{"no choices", &mockLLM{resp: openai.ChatCompletionResponse{}}, false, EmptyResponseFallback},
		{"blank content", &mockLLM{resp: choice("   ")}, false, EmptyResponseFallback},
		{"decode error", &mockLLM{err: &json.SyntaxError{}}, false, EmptyResponseFallback},
		{"transport", &mockLLM{err: context.DeadlineExceeded}, true, TransportFallback},
		{"api status", &mockLLM{err: &openai.APIError{HTTPStatusCode: http.StatusBadGateway, Message: "bad gateway"}}, true, TransportFallback},
		{"non-2xx with undecodable body", &mockLLM{err: &openai.RequestError{HTTPStatusCode: http.StatusInternalServerError, Err: io.EOF}}, true, TransportFallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := New(tc.mock, testConfig())

			_, err := g.Respond(context.Background(), "hello")
			require.Error(t, err)

			var te *TransportError
			require.Equal(t, tc.transport, errors.As(err, &te))
			require.Equal(t, !tc.transport, errors.Is(err, ErrEmptyResponse))

			msg, replyErr := g.Reply(context.Background(), "hello")
			require.Error(t, replyErr)
			require.Equal(t, tc.fallback, msg.Text)
			require.Equal(t, conversation.SenderBot, msg.Sender)
		})
	}
}

func TestTransportError_Unwraps(t *testing.T) {
	err := &TransportError{Err: context.Canceled}
	require.ErrorIs(t, err, context.Canceled)
	require.Contains(t, err.Error(), "context canceled")
}

func TestReply_Success(t *testing.T) {
	g := New(&mockLLM{resp: choice("Namaste")}, testConfig())

	msg, err := g.Reply(context.Background(), "hi")
	require.NoError(t, err)
	require.Equal(t, "Namaste", msg.Text)
}

// TestGateway_OverHTTP runs the gateway against a fake OpenAI-compatible endpoint.
func TestGateway_OverHTTP(t *testing.T) {
	var body openai.ChatCompletionRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":" Sleep hygiene helps. "}}]}`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.BaseURL = srv.URL
	cfg.APIKey = "k"
	g := New(llm.NewClient(cfg), cfg)

	msg, err := g.Reply(context.Background(), "I need help with sleep")
	require.NoError(t, err)
	require.Equal(t, "Sleep hygiene helps.", msg.Text)
	require.Equal(t, "Bearer k", auth)
	require.Equal(t, "test-model", body.Model)
	require.Len(t, body.Messages, 2)
	require.Equal(t, "I need help with sleep", body.Messages[1].Content)
}

func TestGateway_OverHTTP_Failures(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		fallback string
	}{
		{"no choices", http.StatusOK, `{"choices":[]}`, EmptyResponseFallback},
		{"malformed body", http.StatusOK, `not json`, EmptyResponseFallback},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, TransportFallback},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, TransportFallback},
		{"bad gateway html", http.StatusBadGateway, `<html><body>502 Bad Gateway</body></html>`, TransportFallback},
		{"server error empty body", http.StatusInternalServerError, ``, TransportFallback},
		{"unavailable truncated json", http.StatusServiceUnavailable, `{"error":`, TransportFallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			cfg := testConfig()
			cfg.BaseURL = srv.URL
			g := New(llm.NewClient(cfg), cfg)

			msg, err := g.Reply(context.Background(), "hello")
			require.Error(t, err)
			require.Equal(t, tc.fallback, msg.Text)

			var te *TransportError
			require.Equal(t, tc.fallback == TransportFallback, errors.As(err, &te))
			require.Equal(t, tc.fallback == EmptyResponseFallback, errors.Is(err, ErrEmptyResponse))
		})
	}
}

func TestGateway_UnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := testConfig()
	cfg.BaseURL = url
	g := New(llm.NewClient(cfg), cfg)

	msg, err := g.Reply(context.Background(), "hello")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, TransportFallback, msg.Text)
}
