package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/neura-ai/neura/core"
)

const (
	scrapeTimeout    = 30 * time.Second
	maxRedirects     = 5
	maxBodyBytes     = 4 << 20
	maxLinks         = 50
	maxElementLength = 2000
)

// ScraperConfig configures the web_scraper tool.
type ScraperConfig struct {
	// Timeout bounds the whole fetch (default 30s).
	Timeout time.Duration

	// UserAgent sent with requests.
	UserAgent string
}

// WebScraper fetches a page and extracts its structure: title, meta
// description, headings and links, plus any requested tag selectors.
type WebScraper struct {
	client    *http.Client
	userAgent string
}

// NewWebScraper creates the web_scraper tool. A nil config uses defaults.
func NewWebScraper(cfg *ScraperConfig) *WebScraper {
	if cfg == nil {
		cfg = &ScraperConfig{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = scrapeTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &WebScraper{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

// Name returns the tool identifier.
func (w *WebScraper) Name() string { return "web_scraper" }

// Description explains the tool to the LLM.
func (w *WebScraper) Description() string {
	return "Fetch a web page and extract its title, meta description, headings and links. " +
		"Pass selectors (tag names like \"p\" or \"table\") to extract specific elements."
}

// InputSchema returns the JSON Schema for the tool input.
func (w *WebScraper) InputSchema() map[string]any {
	return ObjectSchema(map[string]interface{}{
		"url":       StringProperty("The URL to fetch (http or https)"),
		"selectors": ArrayProperty("Optional tag names to extract, e.g. [\"p\", \"li\"]", StringProperty("")),
	}, "url")
}

// Heading is a document heading with its level.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link is an anchor extracted from the page.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// PageContent is the structured scrape result.
type PageContent struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Headings    []Heading           `json:"headings"`
	Links       []Link              `json:"links"`
	Selected    map[string][]string `json:"selected,omitempty"`
	Metadata    map[string]string   `json:"metadata"`
}

// Execute fetches and parses the page.
func (w *WebScraper) Execute(ctx context.Context, input json.RawMessage) (*core.ToolResult, error) {
	var params struct {
		URL       string   `json:"url"`
		Selectors []string `json:"selectors"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return core.ErrResult("invalid input: %v", err), nil
	}
	params.URL = strings.TrimSpace(params.URL)
	if params.URL == "" {
		return core.ErrResult("url is required"), nil
	}
	if !strings.HasPrefix(params.URL, "http://") && !strings.HasPrefix(params.URL, "https://") {
		return core.ErrResult("url must start with http:// or https://"), nil
	}

	log.Printf("[TOOLS] web_scraper: %s", params.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, params.URL, nil)
	if err != nil {
		return core.ErrResult("build request: %v", err), nil
	}
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := w.client.Do(req)
	if err != nil {
		return core.ErrResult("fetch failed: %v", err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.ErrResult("unexpected status %d", resp.StatusCode), nil
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return core.ErrResult("parse html: %v", err), nil
	}

	content := ParsePage(doc, params.Selectors)
	content.Metadata = map[string]string{
		"url":        params.URL,
		"fetched_at": time.Now().UTC().Format(time.RFC3339),
	}
	return core.OKResult(content), nil
}

// ParsePage extracts the page structure from a parsed document. Selectors
// are plain tag names; matching elements are returned as trimmed text.
func ParsePage(doc *html.Node, selectors []string) *PageContent {
	content := &PageContent{}
	wanted := make(map[string]bool, len(selectors))
	for _, s := range selectors {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			wanted[s] = true
		}
	}
	if len(wanted) > 0 {
		content.Selected = make(map[string][]string, len(wanted))
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if content.Title == "" {
					content.Title = strings.TrimSpace(textContent(n))
				}
			case "meta":
				if strings.EqualFold(attrValue(n, "name"), "description") {
					content.Description = strings.TrimSpace(attrValue(n, "content"))
				}
			case "h1", "h2", "h3", "h4", "h5", "h6":
				text := strings.TrimSpace(textContent(n))
				if text != "" {
					content.Headings = append(content.Headings, Heading{
						Level: int(n.Data[1] - '0'),
						Text:  text,
					})
				}
			case "a":
				if href := attrValue(n, "href"); href != "" && len(content.Links) < maxLinks {
					content.Links = append(content.Links, Link{
						Text: strings.TrimSpace(textContent(n)),
						Href: href,
					})
				}
			case "script", "style":
				return
			}

			if wanted[n.Data] {
				text := strings.TrimSpace(textContent(n))
				if text != "" {
					if len(text) > maxElementLength {
						text = text[:maxElementLength]
					}
					content.Selected[n.Data] = append(content.Selected[n.Data], text)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return content
}
