// Package tools provides the tool registry and the built-in tools the
// agents can call during plan execution.
package tools

import (
	"fmt"
	"sort"
	"sync"

	"github.com/neura-ai/neura/core"
)

// Registry holds the tools available to agents. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]core.Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]core.Tool)}
}

// NewDefaultRegistry creates a registry with the built-in tools.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewWebSearch(nil))
	r.Register(NewWebScraper(nil))
	return r
}

// Register adds a tool to the registry, replacing any tool with the
// same name.
func (r *Registry) Register(tool core.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (core.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tools sorted by name.
func (r *Registry) List() []core.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]core.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// Names returns the registered tool names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns a plain-text listing of tools and their descriptions,
// suitable for inclusion in an agent prompt.
func (r *Registry) Describe() string {
	var out string
	for _, tool := range r.List() {
		out += fmt.Sprintf("- %s: %s\n", tool.Name(), tool.Description())
	}
	return out
}
