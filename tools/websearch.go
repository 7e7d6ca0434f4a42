package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/neura-ai/neura/core"
)

const (
	searchEndpoint   = "https://html.duckduckgo.com/html/"
	defaultMaxHits   = 5
	searchTimeout    = 15 * time.Second
	defaultUserAgent = "neura/1.0 (+https://github.com/neura-ai/neura)"
)

// SearchConfig configures the web_search tool.
type SearchConfig struct {
	// Endpoint overrides the DuckDuckGo HTML endpoint, mainly for tests.
	Endpoint string

	// MaxResults caps the number of results returned (default 5).
	MaxResults int

	// UserAgent sent with search requests.
	UserAgent string

	// Client overrides the HTTP client.
	Client *http.Client
}

// WebSearch queries the DuckDuckGo HTML endpoint and formats the top
// results for the executing agent.
type WebSearch struct {
	endpoint   string
	maxResults int
	userAgent  string
	client     *http.Client
}

// NewWebSearch creates the web_search tool. A nil config uses defaults.
func NewWebSearch(cfg *SearchConfig) *WebSearch {
	if cfg == nil {
		cfg = &SearchConfig{}
	}
	ws := &WebSearch{
		endpoint:   cfg.Endpoint,
		maxResults: cfg.MaxResults,
		userAgent:  cfg.UserAgent,
		client:     cfg.Client,
	}
	if ws.endpoint == "" {
		ws.endpoint = searchEndpoint
	}
	if ws.maxResults <= 0 {
		ws.maxResults = defaultMaxHits
	}
	if ws.userAgent == "" {
		ws.userAgent = defaultUserAgent
	}
	if ws.client == nil {
		ws.client = &http.Client{Timeout: searchTimeout}
	}
	return ws
}

// Name returns the tool identifier.
func (w *WebSearch) Name() string { return "web_search" }

// Description explains the tool to the LLM.
func (w *WebSearch) Description() string {
	return "Search the web for current information. Returns the top results with title, link and snippet."
}

// InputSchema returns the JSON Schema for the tool input.
func (w *WebSearch) InputSchema() map[string]any {
	return ObjectSchema(map[string]interface{}{
		"query":       StringProperty("The search query"),
		"max_results": IntegerProperty(fmt.Sprintf("Number of results to return (1-%d)", w.maxResults)),
	}, "query")
}

// SearchResult is a single search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Execute runs the search and returns formatted results.
func (w *WebSearch) Execute(ctx context.Context, input json.RawMessage) (*core.ToolResult, error) {
	var params struct {
		Query      string `json:"query"`
		MaxResults int    `json:"max_results"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return core.ErrResult("invalid input: %v", err), nil
	}
	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return core.ErrResult("query is required"), nil
	}

	// The configured maximum is a hard cap on what the LLM may ask for.
	limit := w.maxResults
	if params.MaxResults > 0 && params.MaxResults < limit {
		limit = params.MaxResults
	}

	log.Printf("[TOOLS] web_search: %s", params.Query)

	results, err := w.search(ctx, params.Query, limit)
	if err != nil {
		return core.ErrResult("search failed: %v", err), nil
	}
	if len(results) == 0 {
		return core.OKResult("No results found."), nil
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Title: %s\nLink: %s\nSnippet: %s", r.Title, r.Link, r.Snippet)
	}
	return core.OKResult(b.String()), nil
}

func (w *WebSearch) search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, 4<<20)
	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return parseSearchResults(doc, limit), nil
}

// parseSearchResults walks the DuckDuckGo HTML result page. Result links
// carry class "result__a", snippets "result__snippet".
func parseSearchResults(doc *html.Node, max int) []SearchResult {
	var results []SearchResult
	var current *SearchResult

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= max && current == nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			class := attrValue(n, "class")
			switch {
			case strings.Contains(class, "result__a"):
				if current != nil {
					results = append(results, *current)
				}
				if len(results) >= max {
					current = nil
					return
				}
				current = &SearchResult{
					Title: strings.TrimSpace(textContent(n)),
					Link:  resolveResultLink(attrValue(n, "href")),
				}
				return
			case strings.Contains(class, "result__snippet"):
				if current != nil {
					current.Snippet = strings.TrimSpace(textContent(n))
					results = append(results, *current)
					current = nil
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if current != nil && len(results) < max {
		results = append(results, *current)
	}
	return results
}

// resolveResultLink unwraps DuckDuckGo redirect links of the form
// //duckduckgo.com/l/?uddg=<encoded-url>.
func resolveResultLink(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
