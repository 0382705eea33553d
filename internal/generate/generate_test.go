package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/smart-research-assistant/internal/metrics"
	"github.com/ayush/smart-research-assistant/internal/models"
)

var testPayload = models.PromptPayload{
	Question: "components of DBMS",
	LiveText: "DBMS Basics (blog.x.com):\n...",
	System:   "system prompt",
	User:     "user prompt",
}

type stubBackend struct {
	text  string
	err   error
	delay time.Duration
	calls int
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Complete(ctx context.Context, _ models.PromptPayload) (string, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{})
	assert.Error(t, err)
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}

func TestOpenAI_Complete(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"## Key Takeaways\n- done"}}]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), testPayload)
	require.NoError(t, err)
	assert.Equal(t, "## Key Takeaways\n- done", text)

	assert.Equal(t, DefaultOpenAIModel, got.Model)
	assert.Equal(t, float32(DefaultTemperature), got.Temperature)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "system prompt", got.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Equal(t, "user prompt", got.Messages[1].Content)
	assert.Equal(t, "openai:gpt-4o-mini", c.Name())
}

func TestOpenAI_Complete_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantErr    string
	}{
		{name: "api error", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down","type":"rate_limit"}}`, wantStatus: http.StatusTooManyRequests, wantErr: "slow down"},
		{name: "plain upstream failure", status: http.StatusBadGateway, body: `bad gateway`, wantStatus: http.StatusBadGateway},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: "no choices"},
		{name: "invalid json", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = c.Complete(context.Background(), testPayload)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "openai chat completion")
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			if tt.wantStatus != 0 {
				assert.Equal(t, tt.wantStatus, upstreamStatus(err))
			}
		})
	}
}

func upstreamStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func TestGemini_Complete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/"+DefaultGeminiModel+":generateContent"), r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"## Key Takeaways\n- from gemini"}]}}]}`))
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), GeminiConfig{APIKey: "g-key", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "gemini:"+DefaultGeminiModel, g.Name())

	text, err := g.Complete(context.Background(), testPayload)
	require.NoError(t, err)
	assert.Equal(t, "## Key Takeaways\n- from gemini", text)

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "user prompt")
	assert.Contains(t, string(raw), "system prompt")
	assert.Contains(t, body, "generationConfig")
}

func TestGemini_Complete_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"backend down","status":"INTERNAL"}}`))
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), GeminiConfig{APIKey: "g-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = g.Complete(context.Background(), testPayload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini generate")
}

func TestFallbackReport(t *testing.T) {
	text := FallbackReport("components of DBMS", "", "DBMS Basics (blog.x.com):\n...")

	assert.Contains(t, text, FallbackLabel)
	assert.Contains(t, text, "## Key Takeaways\n- ")
	assert.Contains(t, text, "Live feed updates (ingested)")
	assert.NotContains(t, text, "Uploaded files combined")
	assert.NotContains(t, text, "ources")
	assert.Equal(t, text, FallbackReport("components of DBMS", "", "DBMS Basics (blog.x.com):\n..."))

	general := FallbackReport("q", "  ", "")
	assert.Contains(t, general, "General knowledge (no evidence provided)")
}

func TestFallbackReport_QuestionLast(t *testing.T) {
	text := FallbackReport("renewable energy\nsources", "", "")
	assert.True(t, strings.HasSuffix(text, "## Research Question\nrenewable energy sources\n"))
	assert.Equal(t, len(text)-len("sources\n"), strings.Index(text, "sources"))
}

func TestResilient_MockMode(t *testing.T) {
	before := testutil.ToFloat64(metrics.GenerationFallbacks.WithLabelValues("mock"))

	res := NewResilient(nil, 0, nil).Generate(context.Background(), testPayload)

	assert.True(t, res.Fallback)
	assert.NoError(t, res.Err)
	assert.Equal(t, MockBackendName, res.Backend)
	assert.Equal(t, FallbackReport(testPayload.Question, testPayload.FileText, testPayload.LiveText), res.Text)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.GenerationFallbacks.WithLabelValues("mock")))
}

func TestResilient_Success(t *testing.T) {
	b := &stubBackend{text: "real report"}

	res := NewResilient(b, time.Second, nil).Generate(context.Background(), testPayload)

	assert.Equal(t, Result{Text: "real report", Backend: "stub"}, res)
	assert.Equal(t, 1, b.calls)
}

func TestResilient_FallsBack(t *testing.T) {
	tests := []struct {
		name    string
		backend *stubBackend
		timeout time.Duration
		wantErr error
	}{
		{name: "backend error", backend: &stubBackend{err: errors.New("boom")}},
		{name: "empty answer", backend: &stubBackend{text: "  \n"}, wantErr: ErrEmptyReport},
		{name: "timeout", backend: &stubBackend{text: "late", delay: time.Second}, timeout: 10 * time.Millisecond, wantErr: context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewResilient(tt.backend, tt.timeout, nil).Generate(context.Background(), testPayload)

			assert.True(t, res.Fallback)
			require.Error(t, res.Err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, res.Err, tt.wantErr)
			}
			assert.Equal(t, "stub", res.Backend)
			assert.Contains(t, res.Text, FallbackLabel)
		})
	}
}
