package web_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neura-ai/neura/config"
	"github.com/neura-ai/neura/core"
	"github.com/neura-ai/neura/env"
	"github.com/neura-ai/neura/env/web"
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

func dialTestHandler(t *testing.T, responses ...string) *websocket.Conn {
	t.Helper()

	cfg := &config.Config{}
	cfg.LLM.Model = "test-model"
	cfg.LLM.MaxTokens = 500
	cfg.Runner.MaxSteps = 5

	store, err := chromem.New("web_test")
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

	srv := httptest.NewServer(web.NewHandler(runtime, nil))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) web.Frame {
	t.Helper()
	var frame web.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestHandler_StreamsTaskFrames(t *testing.T) {
	conn := dialTestHandler(t,
		`{"steps":[{"id":"step_1","description":"look","tool":"search"}]}`,
		`{"tool":"search","parameters":{}}`,
	)

	require.NoError(t, conn.WriteJSON(web.TaskFrame{Task: "what is Go"}))

	frame := readFrame(t, conn)
	assert.Equal(t, web.FramePlan, frame.Type)

	frame = readFrame(t, conn)
	assert.Equal(t, web.FrameStep, frame.Type)

	frame = readFrame(t, conn)
	require.Equal(t, web.FrameDone, frame.Type)
	done, ok := frame.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, done["succeeded"])
}

func TestHandler_RejectsEmptyTask(t *testing.T) {
	conn := dialTestHandler(t)

	require.NoError(t, conn.WriteJSON(web.TaskFrame{}))

	frame := readFrame(t, conn)
	assert.Equal(t, web.FrameError, frame.Type)
	assert.Equal(t, "task is required", frame.Data)
}

func TestHandler_ReportsExecutionError(t *testing.T) {
	conn := dialTestHandler(t, "not a plan at all")

	require.NoError(t, conn.WriteJSON(web.TaskFrame{Task: "doomed"}))

	frame := readFrame(t, conn)
	require.Equal(t, web.FrameError, frame.Type)
	assert.Contains(t, frame.Data, "no JSON object")
}
