package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neura-ai/neura/config"
	"github.com/neura-ai/neura/core"
	"github.com/neura-ai/neura/env"
	"github.com/neura-ai/neura/env/api"
	"github.com/neura-ai/neura/llm/mock"
	"github.com/neura-ai/neura/memory"
	mockembed "github.com/neura-ai/neura/memory/embedder/mock"
	"github.com/neura-ai/neura/memory/store/chromem"
	"github.com/neura-ai/neura/tools"
)

type okTool struct{}

func (okTool) Name() string                { return "search" }
func (okTool) Description() string         { return "test tool" }
func (okTool) InputSchema() map[string]any { return tools.ObjectSchema(nil) }
func (okTool) Execute(ctx context.Context, input json.RawMessage) (*core.ToolResult, error) {
	return core.OKResult("found it"), nil
}

func newTestServer(t *testing.T, responses ...string) (*api.Server, *env.Runtime) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LLM.Model = "test-model"
	cfg.LLM.MaxTokens = 500
	cfg.Runner.MaxSteps = 5

	store, err := chromem.New("api_test")
	require.NoError(t, err)
	manager, err := memory.NewVectorManager(store, mockembed.New(0), &memory.Config{DefaultK: 5, MinSimilarity: -1})
	require.NoError(t, err)

	registry := tools.NewRegistry()
	registry.Register(okTool{})

	runtime, err := env.NewRuntime(cfg,
		env.WithProvider(mock.New(responses...)),
		env.WithRegistry(registry),
		env.WithMemory(manager),
	)
	require.NoError(t, err)
	t.Cleanup(func() { runtime.Close() })

	return api.NewServer(runtime, nil), runtime
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_ExecuteTask(t *testing.T) {
	srv, _ := newTestServer(t,
		`{"steps":[{"id":"step_1","description":"look","tool":"search"}]}`,
		`{"tool":"search","parameters":{}}`,
	)

	body := strings.NewReader(`{"task":"what is Go"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/tasks", body))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result env.TaskResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "what is Go", result.Task)
	require.NotNil(t, result.Plan)
	assert.Contains(t, result.StepResults, "step_1")
}

func TestServer_TaskValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := map[string]string{
		"empty body":          `{}`,
		"invalid json":        `{`,
		"negative max_steps":  `{"task":"x","max_steps":-1}`,
		"negative max_tokens": `{"task":"x","max_tokens":-1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec,
				httptest.NewRequest(http.MethodPost, "/v1/tasks", strings.NewReader(body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}

	// Zero is "use the configured default", so only negatives are rejected.
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/v1/tasks", strings.NewReader(`{"task":"x","max_steps":-1}`)))
	assert.Contains(t, rec.Body.String(), "must not be negative")
}

func TestServer_MemorySearchAndClear(t *testing.T) {
	srv, runtime := newTestServer(t)

	_, err := runtime.Memory().Add(context.Background(), "remembered fact", nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/memory/search?q=fact&k=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var searchResp struct {
		Records []*memory.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &searchResp))
	require.Len(t, searchResp.Records, 1)
	assert.Equal(t, "remembered fact", searchResp.Records[0].Content)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/memory", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	stats, err := runtime.Memory().Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
}

func TestServer_MemorySearchValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/memory/search", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/memory/search?q=x&k=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
