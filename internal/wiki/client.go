// File: internal/wiki/client.go

// Package wiki locates and fetches review documents from a
// Confluence-compatible wiki.
package wiki

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
	"github.com/xkilldash9x/postmortem-cli/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// pageIDPattern extracts the numeric page id from a wiki page URL.
var pageIDPattern = regexp.MustCompile(`/pages/(\d+)`)

// Client is a minimal Confluence-compatible REST client.
type Client struct {
	cfg        config.WikiConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a wiki Client from configuration.
func NewClient(cfg config.WikiConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger.Named("Wiki"),
	}
}

// Ping verifies connectivity and that the configured space exists.
func (c *Client) Ping(ctx context.Context) error {
	var space struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	}
	path := "/wiki/rest/api/space/" + url.PathEscape(c.cfg.SpaceKey)
	if err := c.get(ctx, path, nil, &space); err != nil {
		return fmt.Errorf("wiki ping failed: %w", err)
	}
	c.logger.Info("Wiki connection verified.", zap.String("space", space.Name))
	return nil
}

// -- Wire types --

type searchResponse struct {
	Results []pageResult `json:"results"`
	Size    int          `json:"size"`
}

type pageResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Links struct {
		WebUI string `json:"webui"`
	} `json:"_links"`
}

type pageContent struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Version struct {
		Number int `json:"number"`
	} `json:"version"`
	Body struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Links struct {
		WebUI string `json:"webui"`
	} `json:"_links"`
}

// FindDocument searches the space for the review document of a ticket. The
// title convention "RCA <ticket>" is tried first, then a full-text search.
// Returns the page URL, or empty when no document exists.
func (c *Client) FindDocument(ctx context.Context, ticketKey string) (string, error) {
	queries := []string{
		fmt.Sprintf(`space = "%s" AND title ~ "RCA %s"`, c.cfg.SpaceKey, ticketKey),
		fmt.Sprintf(`space = "%s" AND type = page AND text ~ "%s"`, c.cfg.SpaceKey, ticketKey),
	}

	for _, cql := range queries {
		params := url.Values{}
		params.Set("cql", cql)
		params.Set("limit", "5")

		var resp searchResponse
		if err := c.get(ctx, "/wiki/rest/api/content/search", params, &resp); err != nil {
			return "", fmt.Errorf("document search for %s: %w", ticketKey, err)
		}
		for _, page := range resp.Results {
			// Full-text search can surface unrelated pages; require the
			// ticket key in the title.
			if !strings.Contains(page.Title, ticketKey) {
				continue
			}
			return c.pageURL(page.ID, page.Links.WebUI), nil
		}
	}

	c.logger.Debug("No review document found.", zap.String("ticket", ticketKey))
	return "", nil
}

// FetchDocument retrieves and cleans a page identified by its URL.
func (c *Client) FetchDocument(ctx context.Context, ref string) (schemas.DocumentContent, error) {
	id, err := pageID(ref)
	if err != nil {
		return schemas.DocumentContent{}, err
	}

	params := url.Values{}
	params.Set("expand", "body.storage,version")

	var page pageContent
	if err := c.get(ctx, "/wiki/rest/api/content/"+id, params, &page); err != nil {
		return schemas.DocumentContent{}, fmt.Errorf("fetching page %s: %w", id, err)
	}

	markup := page.Body.Storage.Value
	return schemas.DocumentContent{
		RawMarkup: markup,
		Text:      Clean(markup),
		Title:     page.Title,
		Version:   page.Version.Number,
		SourceRef: c.pageURL(page.ID, page.Links.WebUI),
	}, nil
}

// pageID extracts the numeric page id from a page URL. Bare numeric refs are
// accepted as-is.
func pageID(ref string) (string, error) {
	if m := pageIDPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	trimmed := strings.TrimSpace(ref)
	if trimmed != "" && strings.IndexFunc(trimmed, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
		return trimmed, nil
	}
	return "", fmt.Errorf("no page id in document ref %q", ref)
}

// pageURL builds a browser-facing page URL, preferring the webui link the
// API handed back.
func (c *Client) pageURL(id, webui string) string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	if webui != "" {
		return base + "/wiki" + webui
	}
	return fmt.Sprintf("%s/wiki/pages/%s", base, id)
}

// get performs a rate-limited authenticated GET and decodes the JSON body
// into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}
