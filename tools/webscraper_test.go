package tools_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/neura-ai/neura/tools"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Concurrency in Go</title>
  <meta name="description" content="Goroutines and channels explained.">
  <style>body { color: red }</style>
</head>
<body>
  <h1>Concurrency in Go</h1>
  <h2>Goroutines</h2>
  <p>A goroutine is a lightweight thread.</p>
  <h2>Channels</h2>
  <p>Channels connect goroutines.</p>
  <a href="/spec">Language spec</a>
  <a href="https://go.dev/tour">Take the tour</a>
  <script>console.log("ignored")</script>
</body>
</html>`

func parseFixture(t *testing.T) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(samplePage))
	require.NoError(t, err)
	return doc
}

func TestParsePage_Structure(t *testing.T) {
	content := tools.ParsePage(parseFixture(t), nil)

	assert.Equal(t, "Concurrency in Go", content.Title)
	assert.Equal(t, "Goroutines and channels explained.", content.Description)

	require.Len(t, content.Headings, 3)
	assert.Equal(t, tools.Heading{Level: 1, Text: "Concurrency in Go"}, content.Headings[0])
	assert.Equal(t, tools.Heading{Level: 2, Text: "Goroutines"}, content.Headings[1])

	require.Len(t, content.Links, 2)
	assert.Equal(t, tools.Link{Text: "Language spec", Href: "/spec"}, content.Links[0])
	assert.Equal(t, tools.Link{Text: "Take the tour", Href: "https://go.dev/tour"}, content.Links[1])

	assert.Nil(t, content.Selected)
}

func TestParsePage_Selectors(t *testing.T) {
	content := tools.ParsePage(parseFixture(t), []string{"p", "em"})

	require.Contains(t, content.Selected, "p")
	assert.Equal(t, []string{
		"A goroutine is a lightweight thread.",
		"Channels connect goroutines.",
	}, content.Selected["p"])
	assert.Empty(t, content.Selected["em"])
}

func TestWebScraper_Execute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	scraper := tools.NewWebScraper(nil)
	input, _ := json.Marshal(map[string]any{"url": srv.URL, "selectors": []string{"p"}})

	result, err := scraper.Execute(context.Background(), input)
	require.NoError(t, err)
	require.True(t, result.Success, result.Error)

	content, ok := result.Data.(*tools.PageContent)
	require.True(t, ok)
	assert.Equal(t, "Concurrency in Go", content.Title)
	assert.Equal(t, srv.URL, content.Metadata["url"])
	assert.NotEmpty(t, content.Metadata["fetched_at"])
	assert.Len(t, content.Selected["p"], 2)
}

func TestWebScraper_RejectsBadURL(t *testing.T) {
	scraper := tools.NewWebScraper(nil)

	result, err := scraper.Execute(context.Background(), json.RawMessage(`{"url":"ftp://example.com"}`))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "http:// or https://")
}

func TestWebScraper_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	scraper := tools.NewWebScraper(nil)
	input, _ := json.Marshal(map[string]any{"url": srv.URL})

	result, err := scraper.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unexpected status 404")
}
