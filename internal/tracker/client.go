// File: internal/tracker/client.go

// Package tracker pulls incident tickets from a Jira-compatible issue
// tracker over its REST search API.
package tracker

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

// automationAuthor is the display name of the bot account that posts the
// review-document link as a ticket comment.
const automationAuthor = "Automation for Jira"

// wikiLinkPattern matches candidate document URLs inside comment bodies.
var wikiLinkPattern = regexp.MustCompile(`https?://[^\s\]|"'>]+`)

// Client is a minimal Jira-compatible REST client. All outbound calls go
// through a shared rate limiter; be a good net citizen.
type Client struct {
	cfg        config.TrackerConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a tracker Client from configuration.
func NewClient(cfg config.TrackerConfig, logger *zap.Logger) *Client {
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
		logger:     logger.Named("Tracker"),
	}
}

// Ping verifies connectivity and credentials against the tracker.
func (c *Client) Ping(ctx context.Context) error {
	var me struct {
		DisplayName string `json:"displayName"`
	}
	if err := c.get(ctx, "/rest/api/2/myself", nil, &me); err != nil {
		return fmt.Errorf("tracker ping failed: %w", err)
	}
	c.logger.Info("Tracker connection verified.", zap.String("account", me.DisplayName))
	return nil
}

// -- Wire types --

type searchResponse struct {
	StartAt    int        `json:"startAt"`
	MaxResults int        `json:"maxResults"`
	Total      int        `json:"total"`
	Issues     []rawIssue `json:"issues"`
}

type rawIssue struct {
	Key    string                 `json:"key"`
	Fields map[string]interface{} `json:"fields"`
}

type commentResponse struct {
	Comments []struct {
		Author struct {
			DisplayName string `json:"displayName"`
		} `json:"author"`
		Body string `json:"body"`
	} `json:"comments"`
}

// SearchIncidents pages through every incident ticket in the configured
// project, newest first, and resolves each ticket's review-document link.
func (c *Client) SearchIncidents(ctx context.Context) ([]schemas.Incident, error) {
	jql := fmt.Sprintf("project = %s AND issuetype = Incident ORDER BY created DESC", c.cfg.Project)
	fields := strings.Join([]string{
		"summary", "description", "created", "status",
		c.cfg.UrgencyFieldID, c.cfg.TeamsFieldID,
	}, ",")

	var incidents []schemas.Incident
	startAt := 0
	for {
		params := url.Values{}
		params.Set("jql", jql)
		params.Set("fields", fields)
		params.Set("startAt", fmt.Sprint(startAt))
		params.Set("maxResults", fmt.Sprint(c.cfg.PageSize))

		var page searchResponse
		if err := c.get(ctx, "/rest/api/2/search", params, &page); err != nil {
			return nil, fmt.Errorf("incident search failed at offset %d: %w", startAt, err)
		}

		for _, issue := range page.Issues {
			inc := c.parseIssue(issue)
			if ref, err := c.documentLink(ctx, issue.Key); err != nil {
				c.logger.Warn("Could not resolve document link from comments.",
					zap.String("ticket", issue.Key), zap.Error(err))
			} else {
				inc.DocumentRef = ref
			}
			incidents = append(incidents, inc)
		}

		startAt += len(page.Issues)
		if startAt >= page.Total || len(page.Issues) == 0 {
			break
		}
	}

	c.logger.Info("Incident search complete.",
		zap.String("project", c.cfg.Project), zap.Int("count", len(incidents)))
	return incidents, nil
}

// parseIssue flattens a raw issue into the Incident schema. Missing or
// malformed fields degrade to empty values; the ticket key always survives.
func (c *Client) parseIssue(issue rawIssue) schemas.Incident {
	inc := schemas.Incident{
		TicketKey:   issue.Key,
		Summary:     stringField(issue.Fields, "summary"),
		Description: stringField(issue.Fields, "description"),
		Created:     stringField(issue.Fields, "created"),
		Urgency:     schemas.ParsePriority(nestedValue(issue.Fields, c.cfg.UrgencyFieldID)),
	}

	if status, ok := issue.Fields["status"].(map[string]interface{}); ok {
		inc.Status, _ = status["name"].(string)
	}

	// Teams arrive as a multi-select of {value} objects.
	if raw, ok := issue.Fields[c.cfg.TeamsFieldID].([]interface{}); ok {
		var teams []string
		for _, item := range raw {
			if entry, ok := item.(map[string]interface{}); ok {
				if v, ok := entry["value"].(string); ok && v != "" {
					teams = append(teams, v)
				}
			}
		}
		inc.TeamsEngaged = strings.Join(teams, ", ")
	}

	return inc
}

// documentLink scans the ticket's comments for the automation-posted review
// document URL. Returns empty when no comment carries one.
func (c *Client) documentLink(ctx context.Context, ticketKey string) (string, error) {
	var resp commentResponse
	path := fmt.Sprintf("/rest/api/2/issue/%s/comment", ticketKey)
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return "", err
	}

	for _, comment := range resp.Comments {
		if comment.Author.DisplayName != automationAuthor {
			continue
		}
		for _, link := range wikiLinkPattern.FindAllString(comment.Body, -1) {
			if strings.Contains(link, "/wiki/") || strings.Contains(link, "confluence") {
				return strings.TrimRight(link, ".,;)"), nil
			}
		}
	}
	return "", nil
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

// -- Field helpers --

func stringField(fields map[string]interface{}, key string) string {
	v, _ := fields[key].(string)
	return v
}

// nestedValue reads the "value" member of a single-select custom field.
func nestedValue(fields map[string]interface{}, key string) string {
	if entry, ok := fields[key].(map[string]interface{}); ok {
		if v, ok := entry["value"].(string); ok {
			return v
		}
	}
	return ""
}
