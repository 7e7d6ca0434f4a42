package tools_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neura-ai/neura/tools"
)

const searchPage = `<!DOCTYPE html>
<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F">Go Documentation</a>
  <a class="result__snippet" href="#">Official documentation for the Go programming language.</a>
</div>
<div class="result">
  <a class="result__a" href="https://go.dev/blog/">The Go Blog</a>
  <a class="result__snippet" href="#">News and articles from the Go team.</a>
</div>
<div class="result">
  <a class="result__a" href="https://pkg.go.dev/">pkg.go.dev</a>
  <a class="result__snippet" href="#">Package discovery site.</a>
</div>
</body></html>`

func TestWebSearch_Execute(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		gotQuery = r.FormValue("q")
		w.Write([]byte(searchPage))
	}))
	defer srv.Close()

	ws := tools.NewWebSearch(&tools.SearchConfig{Endpoint: srv.URL, MaxResults: 2})
	result, err := ws.Execute(context.Background(), json.RawMessage(`{"query":"golang docs"}`))
	require.NoError(t, err)
	require.True(t, result.Success, result.Error)

	assert.Equal(t, "golang docs", gotQuery)

	out, ok := result.Data.(string)
	require.True(t, ok)
	assert.Contains(t, out, "Title: Go Documentation")
	assert.Contains(t, out, "Link: https://go.dev/doc/") // redirect link unwrapped
	assert.Contains(t, out, "Snippet: Official documentation for the Go programming language.")
	assert.Contains(t, out, "Title: The Go Blog")
	assert.NotContains(t, out, "pkg.go.dev") // capped at MaxResults
}

func TestWebSearch_MaxResultsParameter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchPage))
	}))
	defer srv.Close()

	ws := tools.NewWebSearch(&tools.SearchConfig{Endpoint: srv.URL, MaxResults: 2})

	schema := ws.InputSchema()
	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "integer", props["max_results"].(map[string]interface{})["type"])

	result, err := ws.Execute(context.Background(), json.RawMessage(`{"query":"golang","max_results":1}`))
	require.NoError(t, err)
	require.True(t, result.Success, result.Error)
	out := result.Data.(string)
	assert.Contains(t, out, "Go Documentation")
	assert.NotContains(t, out, "The Go Blog")

	// Requests above the configured cap are clamped to it.
	result, err = ws.Execute(context.Background(), json.RawMessage(`{"query":"golang","max_results":10}`))
	require.NoError(t, err)
	require.True(t, result.Success, result.Error)
	out = result.Data.(string)
	assert.Contains(t, out, "The Go Blog")
	assert.NotContains(t, out, "pkg.go.dev")
}

func TestWebSearch_EmptyQuery(t *testing.T) {
	ws := tools.NewWebSearch(nil)

	result, err := ws.Execute(context.Background(), json.RawMessage(`{"query":"  "}`))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "query is required")
}

func TestWebSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="no-results">Nothing</div></body></html>`))
	}))
	defer srv.Close()

	ws := tools.NewWebSearch(&tools.SearchConfig{Endpoint: srv.URL})
	result, err := ws.Execute(context.Background(), json.RawMessage(`{"query":"x"}`))
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "No results found.", result.Data)
}

func TestWebSearch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	defer srv.Close()

	ws := tools.NewWebSearch(&tools.SearchConfig{Endpoint: srv.URL})
	result, err := ws.Execute(context.Background(), json.RawMessage(`{"query":"x"}`))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "search failed")
}
