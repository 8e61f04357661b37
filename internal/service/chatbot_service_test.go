package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"genai-chatbot-be/internal/dto"
	"genai-chatbot-be/internal/entity"
	"genai-chatbot-be/internal/pkg/logger"
	"genai-chatbot-be/pkg/extractor"
	"genai-chatbot-be/pkg/llm"
	"genai-chatbot-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu      sync.Mutex
	prompts []string
	options []*llm.Options
	err     error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Completion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	p.options = append(p.options, llm.NewOptions(opts...))
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Completion{
		Text:     fmt.Sprintf("answer %d", len(p.prompts)),
		Model:    "fake-model",
		Metadata: map[string]interface{}{"finish_reason": "STOP"},
	}, nil
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

func (p *fakeProvider) lastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prompts[len(p.prompts)-1]
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

type testEnv struct {
	svc       IChatbotService
	store     store.ContextStore
	provider  *fakeProvider
	publisher *fakePublisher
	tempDir   string
}

func newTestEnv(t *testing.T, s store.ContextStore) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     s,
		provider:  &fakeProvider{},
		publisher: &fakePublisher{},
		tempDir:   t.TempDir(),
	}
	env.svc = NewChatbotService(s, env.provider, extractor.NewExtractor(0), env.publisher, logger.NewNopLogger(), env.tempDir)
	return env
}

func (e *testEnv) assertTempDirEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(e.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func newRequest(prompt, sessionId string) *dto.GenerateRequest {
	return &dto.GenerateRequest{
		Prompt:      prompt,
		SessionId:   sessionId,
		Temperature: 0.7,
		TopP:        0.9,
		TopK:        40,
	}
}

func withFile(req *dto.GenerateRequest, name, content string) *dto.GenerateRequest {
	req.File = &dto.UploadedFile{Filename: name, Content: bytes.NewBufferString(content)}
	return req
}

func TestGenerate_UploadThenReuseContext(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, store.NewMemoryStore(0))

	// Turn 1: upload, no session id
	res, err := env.svc.Generate(ctx, withFile(newRequest("Summarize this", ""), "notes.txt", "Alpha Beta Gamma"))
	require.NoError(t, err)

	_, err = uuid.Parse(res.SessionId)
	require.NoError(t, err)
	assert.Equal(t, "answer 1", res.Response)
	assert.True(t, res.Persisted)
	assert.True(t, res.DocumentContextUsed)
	assert.Equal(t, "STOP", res.Metadata["finish_reason"])
	assert.Contains(t, env.provider.lastPrompt(), "Context: Alpha Beta Gamma")
	env.assertTempDirEmpty(t)

	turns, err := env.store.GetTurns(ctx, res.SessionId)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	require.NotNil(t, turns[0].DocumentContext)
	assert.Equal(t, "Alpha Beta Gamma", *turns[0].DocumentContext)
	assert.Equal(t, "Summarize this", turns[0].UserMessage)

	// Turn 2: same session, no file
	res2, err := env.svc.Generate(ctx, newRequest("What comes next?", res.SessionId))
	require.NoError(t, err)
	assert.Equal(t, res.SessionId, res2.SessionId)
	assert.True(t, res2.DocumentContextUsed)

	prompt := env.provider.lastPrompt()
	assert.Contains(t, prompt, "Context: Alpha Beta Gamma")
	assert.Contains(t, prompt, "User: Summarize this\nAssistant: answer 1\n")
	assert.Contains(t, prompt, "User Question: \"What comes next?\"")

	turns, err = env.store.GetTurns(ctx, res.SessionId)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Nil(t, turns[1].DocumentContext)

	latest, err := env.store.GetLatestDocumentContext(ctx, res.SessionId)
	require.NoError(t, err)
	assert.Equal(t, "Alpha Beta Gamma", *latest)
}

func TestGenerate_NewerUploadSupersedes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, store.NewMemoryStore(0))

	_, err := env.svc.Generate(ctx, withFile(newRequest("first", "s1"), "a.txt", "Document A"))
	require.NoError(t, err)
	_, err = env.svc.Generate(ctx, withFile(newRequest("second", "s1"), "b.md", "Document B"))
	require.NoError(t, err)
	_, err = env.svc.Generate(ctx, newRequest("third", "s1"))
	require.NoError(t, err)

	prompt := env.provider.lastPrompt()
	assert.Contains(t, prompt, "Context: Document B")
	assert.NotContains(t, prompt, "Context: Document A")
	env.assertTempDirEmpty(t)
}

func TestGenerate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.GenerateRequest)
	}{
		{"empty prompt", func(r *dto.GenerateRequest) { r.Prompt = "" }},
		{"blank prompt", func(r *dto.GenerateRequest) { r.Prompt = "   " }},
		{"temperature too high", func(r *dto.GenerateRequest) { r.Temperature = 1.5 }},
		{"negative top_p", func(r *dto.GenerateRequest) { r.TopP = -0.1 }},
		{"top_k zero", func(r *dto.GenerateRequest) { r.TopK = 0 }},
		{"top_k too high", func(r *dto.GenerateRequest) { r.TopK = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, store.NewMemoryStore(0))
			req := withFile(newRequest("hello", ""), "notes.txt", "content")
			tt.mutate(req)

			res, err := env.svc.Generate(context.Background(), req)
			assert.Nil(t, res)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			assert.NotEmpty(t, validationErr.Message)
			assert.Equal(t, 0, env.provider.calls())
			env.assertTempDirEmpty(t)
		})
	}
}

func TestGenerate_BoundaryParametersAccepted(t *testing.T) {
	env := newTestEnv(t, store.NewMemoryStore(0))
	req := newRequest("hello", "")
	req.Temperature, req.TopP, req.TopK = 0, 1, 100

	_, err := env.svc.Generate(context.Background(), req)
	require.NoError(t, err)

	opts := env.provider.options[0]
	assert.Equal(t, 0.0, *opts.Temperature)
	assert.Equal(t, 1.0, *opts.TopP)
	assert.Equal(t, 100, *opts.TopK)
}

func TestGenerate_GatewayFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, store.NewMemoryStore(0))
	env.provider.err = fmt.Errorf("%w: no candidates", llm.ErrMalformedResponse)

	res, err := env.svc.Generate(ctx, withFile(newRequest("hello", "s1"), "notes.txt", "content"))
	assert.Nil(t, res)

	var gatewayErr *GatewayError
	require.True(t, errors.As(err, &gatewayErr))
	assert.Equal(t, "fake", gatewayErr.Provider)
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
	assert.NotContains(t, err.Error(), "no candidates")

	turns, err := env.store.GetTurns(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, turns)
	assert.Empty(t, env.publisher.payloads)
	env.assertTempDirEmpty(t)
}

func TestGenerate_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, store.NewNullStore())

	res, err := env.svc.Generate(ctx, newRequest("hello", "s1"))
	require.NoError(t, err)
	assert.Equal(t, "s1", res.SessionId)
	assert.False(t, res.Persisted)
	assert.Equal(t, "answer 1", res.Response)
	assert.Empty(t, env.publisher.payloads)

	history := env.svc.GetHistory(ctx, "s1")
	assert.NotNil(t, history)
	assert.Empty(t, history)

	sessions := env.svc.ListSessions(ctx)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestGenerate_HistoryWindow(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore(0)
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		_, err := s.AppendTurn(ctx, &entity.ChatTurn{
			SessionId:   "s1",
			UserMessage: fmt.Sprintf("old question %d", i),
			BotResponse: fmt.Sprintf("old answer %d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	env := newTestEnv(t, s)

	_, err := env.svc.Generate(ctx, newRequest("latest", "s1"))
	require.NoError(t, err)

	prompt := env.provider.lastPrompt()
	assert.NotContains(t, prompt, "old question 0")
	assert.NotContains(t, prompt, "old question 1")
	for i := 2; i < 7; i++ {
		assert.Contains(t, prompt, fmt.Sprintf("old question %d", i))
	}
	assert.Less(t, strings.Index(prompt, "old question 2"), strings.Index(prompt, "old question 6"))
}

func TestGenerate_ExtractionFailureUsesPlaceholder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, store.NewMemoryStore(0))

	res, err := env.svc.Generate(ctx, withFile(newRequest("read this", ""), "blob.bin", "\x00\xff\xfe"))
	require.NoError(t, err)
	assert.True(t, res.DocumentContextUsed)
	assert.Contains(t, env.provider.lastPrompt(), "Context: Could not extract text from this file: ")

	turns, err := env.store.GetTurns(ctx, res.SessionId)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.True(t, strings.HasPrefix(*turns[0].DocumentContext, "Could not extract text from this file: "))
	env.assertTempDirEmpty(t)
}

func TestGenerate_MalformedPDFDoesNotPanic(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, store.NewMemoryStore(0))

	trailingNewlines := "%PDF-1.4\n" + strings.Repeat("\n", 200)
	req := withFile(newRequest("read this", ""), "x.pdf", trailingNewlines)

	var res *dto.GenerateResponse
	var err error
	require.NotPanics(t, func() {
		res, err = env.svc.Generate(ctx, req)
	})
	require.NoError(t, err)
	assert.True(t, res.Persisted)
	assert.Contains(t, env.provider.lastPrompt(), "Context: Could not extract text from this file: ")
	env.assertTempDirEmpty(t)
}

func TestGenerate_NoContextWithoutDocument(t *testing.T) {
	env := newTestEnv(t, store.NewMemoryStore(0))

	res, err := env.svc.Generate(context.Background(), newRequest("plain question", "fresh-session"))
	require.NoError(t, err)
	assert.False(t, res.DocumentContextUsed)
	assert.NotContains(t, env.provider.lastPrompt(), "Context:")
}

func TestGenerate_PublishesTelemetryWithoutPrompt(t *testing.T) {
	env := newTestEnv(t, store.NewMemoryStore(0))

	res, err := env.svc.Generate(context.Background(), newRequest("very secret question", ""))
	require.NoError(t, err)

	require.Len(t, env.publisher.payloads, 1)
	payload := string(env.publisher.payloads[0])
	assert.Contains(t, payload, res.SessionId)
	assert.Contains(t, payload, `"provider":"fake"`)
	assert.NotContains(t, payload, "very secret question")
}

func TestGetHistoryAndListSessions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, store.NewMemoryStore(0))

	_, err := env.svc.Generate(ctx, withFile(newRequest("one", "b-session"), "n.txt", "doc"))
	require.NoError(t, err)
	_, err = env.svc.Generate(ctx, newRequest("two", "b-session"))
	require.NoError(t, err)
	_, err = env.svc.Generate(ctx, newRequest("three", "a-session"))
	require.NoError(t, err)

	history := env.svc.GetHistory(ctx, "b-session")
	require.Len(t, history, 2)
	assert.Equal(t, "one", history[0].UserMessage)
	assert.Equal(t, "answer 1", history[0].BotResponse)
	assert.Equal(t, "doc", *history[0].DocumentContext)
	assert.Equal(t, "two", history[1].UserMessage)
	assert.Nil(t, history[1].DocumentContext)

	assert.Equal(t, []string{"a-session", "b-session"}, env.svc.ListSessions(ctx))

	health := env.svc.Health()
	assert.Equal(t, "memory", health.Store)
	assert.Equal(t, "fake", health.Provider)
}
