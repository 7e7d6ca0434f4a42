// Package web streams task execution over WebSocket. A client sends a
// task frame and receives progress frames (plan, step, done, error) as
// the run proceeds.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/neura-ai/neura/core"
	"github.com/neura-ai/neura/env"
)

const writeTimeout = 10 * time.Second

// Frame types sent to clients.
const (
	FramePlan  = "plan"
	FrameStep  = "step"
	FrameDone  = "done"
	FrameError = "error"
)

// Frame is a single progress message.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// TaskFrame is the client request starting a run.
type TaskFrame struct {
	Task        string   `json:"task"`
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxSteps    int      `json:"max_steps,omitempty"`
}

// Handler upgrades connections and runs tasks for them.
type Handler struct {
	runtime  *env.Runtime
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates the WebSocket handler.
func NewHandler(runtime *env.Runtime, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		runtime: runtime,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// ServeHTTP handles one WebSocket session: read a task frame, stream
// the run, close.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var task TaskFrame
	if err := conn.ReadJSON(&task); err != nil {
		h.send(conn, Frame{Type: FrameError, Data: "invalid task frame"})
		return
	}
	if task.Task == "" {
		h.send(conn, Frame{Type: FrameError, Data: "task is required"})
		return
	}

	h.logger.Info("websocket task started", "task", task.Task)

	// Progress callbacks run on the executing goroutine, so frames go
	// out the moment the plan is accepted and each step finishes.
	result, err := h.runtime.ExecuteTask(r.Context(), task.Task, &env.RunOptions{
		Model:       task.Model,
		Temperature: task.Temperature,
		MaxSteps:    task.MaxSteps,
		OnPlan: func(plan *core.Plan) {
			h.send(conn, Frame{Type: FramePlan, Data: plan})
		},
		OnStep: func(step *core.StepResult) {
			h.send(conn, Frame{Type: FrameStep, Data: step})
		},
	})
	if err != nil {
		h.send(conn, Frame{Type: FrameError, Data: err.Error()})
		return
	}

	h.send(conn, Frame{Type: FrameDone, Data: doneData(result)})
}

func doneData(result *env.TaskResult) map[string]any {
	data := map[string]any{"succeeded": result.Succeeded()}
	if result.MemoryStats != nil {
		data["memory_stats"] = result.MemoryStats
	}
	if last := lastAssistant(result.Messages); last != "" {
		data["summary"] = last
	}
	return data
}

func lastAssistant(messages []core.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == core.RoleAssistant {
			return messages[i].Content
		}
	}
	return ""
}

func (h *Handler) send(conn *websocket.Conn, frame Frame) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(frame); err != nil {
		h.logger.Error("websocket write failed", "error", err)
	}
}
