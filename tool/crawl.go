package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// CrawlConfig configures a CrawlStrategy.
type CrawlConfig struct {
	// Endpoint is an optional crawl/extract service. When set, pages are
	// fetched through it with a POST {url, prompt} request; when empty,
	// the target URL is fetched directly.
	Endpoint string

	// UserAgent identifies the crawler on direct fetches.
	// Default: "mapops-crawler/1.0"
	UserAgent string

	// TTL overrides the cached-result TTL.
	// Default: 12 hours
	TTL time.Duration

	// HTTPClient is the client for upstream calls.
	// Default: http.DefaultClient
	HTTPClient *http.Client
}

// Page is the readable reduction of a crawled HTML document.
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// CrawlStrategy fetches a web page and reduces HTML to readable text.
type CrawlStrategy struct {
	config CrawlConfig
}

var _ Strategy = (*CrawlStrategy)(nil)

// NewCrawlStrategy creates a crawl strategy.
func NewCrawlStrategy(config CrawlConfig) *CrawlStrategy {
	if config.UserAgent == "" {
		config.UserAgent = "mapops-crawler/1.0"
	}
	if config.TTL <= 0 {
		config.TTL = 12 * time.Hour
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	return &CrawlStrategy{config: config}
}

// ID implements Strategy.
func (c *CrawlStrategy) ID() string { return "crawl" }

// CacheTTL implements Strategy.
func (c *CrawlStrategy) CacheTTL() time.Duration { return c.config.TTL }

// Execute fetches the target page. The URL comes from Params["url"];
// HTML responses are reduced to title and text, JSON passes through.
func (c *CrawlStrategy) Execute(ctx context.Context, req Request) (Result, error) {
	target, _ := req.Params["url"].(string)
	if strings.TrimSpace(target) == "" {
		return Result{}, &ConfigError{Strategy: c.ID(), Setting: "url", Reason: "no target URL in request params"}
	}

	resp, err := c.fetch(ctx, target, req.Query)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &UpstreamError{Strategy: c.ID(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, &UpstreamError{Strategy: c.ID(), Cause: err}
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") || looksLikeHTML(body) {
		page, err := reducePage(target, bytes.NewReader(body))
		if err != nil {
			return Result{}, &UpstreamError{Strategy: c.ID(), Cause: err}
		}
		data, err := json.Marshal(page)
		if err != nil {
			return Result{}, err
		}
		return Result{Success: true, Data: data, Timestamp: time.Now().UTC()}, nil
	}

	return Result{Success: true, Data: rawPayload(body), Timestamp: time.Now().UTC()}, nil
}

func (c *CrawlStrategy) fetch(ctx context.Context, target, prompt string) (*http.Response, error) {
	var httpReq *http.Request
	var err error

	if c.config.Endpoint != "" {
		payload, merr := json.Marshal(map[string]string{"url": target, "prompt": prompt})
		if merr != nil {
			return nil, merr
		}
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
		if httpReq != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if httpReq != nil {
			httpReq.Header.Set("User-Agent", c.config.UserAgent)
		}
	}
	if err != nil {
		return nil, &UpstreamError{Strategy: c.ID(), Cause: err}
	}

	resp, err := c.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, &UpstreamError{Strategy: c.ID(), Cause: err}
	}
	return resp, nil
}

func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(string(body[:min(len(body), 512)]))
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}

// reducePage extracts the title and visible text from an HTML document,
// dropping script, style, and navigation chrome.
func reducePage(target string, r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, err
	}

	doc.Find("script, style, noscript, nav, header, footer").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	var parts []string
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		parts = append(parts, sel.Text())
	})
	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")

	return Page{URL: target, Title: title, Text: text}, nil
}
