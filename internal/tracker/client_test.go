// File: internal/tracker/client_test.go
package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
	"github.com/xkilldash9x/postmortem-cli/internal/config"
)

func testConfig(baseURL string) config.TrackerConfig {
	return config.TrackerConfig{
		BaseURL:        baseURL,
		Email:          "oncall@example.com",
		APIToken:       "secret-token",
		Project:        "INC",
		UrgencyFieldID: "customfield_10001",
		TeamsFieldID:   "customfield_10002",
		PageSize:       1,
		Timeout:        5 * time.Second,
		RateLimit:      0, // unlimited in tests
	}
}

func issuePayload(key, urgency string) string {
	return fmt.Sprintf(`{
		"key": %q,
		"fields": {
			"summary": "Checkout failed",
			"description": "Errors during checkout.",
			"created": "2024-03-01T14:02:00.000-0800",
			"status": {"name": "Done"},
			"customfield_10001": {"value": %q},
			"customfield_10002": [{"value": "Payments"}, {"value": "Platform"}]
		}
	}`, key, urgency)
}

func TestSearchIncidentsPaginates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "requests must carry basic auth")
		require.Equal(t, "oncall@example.com", user)
		require.Equal(t, "secret-token", pass)

		switch r.URL.Path {
		case "/rest/api/2/search":
			q := r.URL.Query()
			assert.Contains(t, q.Get("jql"), "project = INC")
			switch q.Get("startAt") {
			case "0":
				fmt.Fprintf(w, `{"startAt":0,"maxResults":1,"total":2,"issues":[%s]}`, issuePayload("INC-1", "P1"))
			case "1":
				fmt.Fprintf(w, `{"startAt":1,"maxResults":1,"total":2,"issues":[%s]}`, issuePayload("INC-2", "Unscheduled"))
			default:
				t.Errorf("unexpected startAt %q", q.Get("startAt"))
			}
		case "/rest/api/2/issue/INC-1/comment":
			fmt.Fprint(w, `{"comments":[
				{"author":{"displayName":"Alice"},"body":"Looking into it."},
				{"author":{"displayName":"Automation for Jira"},"body":"RCA created: https://example.atlassian.net/wiki/spaces/OPS/pages/12345/RCA+INC-1"}
			]}`)
		case "/rest/api/2/issue/INC-2/comment":
			fmt.Fprint(w, `{"comments":[]}`)
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	incidents, err := client.SearchIncidents(context.Background())
	require.NoError(t, err)
	require.Len(t, incidents, 2)

	first := incidents[0]
	assert.Equal(t, "INC-1", first.TicketKey)
	assert.Equal(t, "Checkout failed", first.Summary)
	assert.Equal(t, schemas.PriorityP1, first.Urgency)
	assert.Equal(t, "Done", first.Status)
	assert.Equal(t, "Payments, Platform", first.TeamsEngaged)
	assert.Equal(t, "https://example.atlassian.net/wiki/spaces/OPS/pages/12345/RCA+INC-1", first.DocumentRef)

	second := incidents[1]
	assert.Equal(t, "INC-2", second.TicketKey)
	assert.Equal(t, schemas.PriorityNotSet, second.Urgency, "unknown urgency normalizes to Not Set")
	assert.Empty(t, second.DocumentRef, "no automation comment means no document link")
}

func TestSearchIncidentsServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	_, err := client.SearchIncidents(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestPing(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/rest/api/2/myself", r.URL.Path)
			fmt.Fprint(w, `{"displayName":"On Call"}`)
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), zap.NewNop())
		assert.NoError(t, client.Ping(context.Background()))
	})

	t.Run("bad credentials", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), zap.NewNop())
		assert.Error(t, client.Ping(context.Background()))
	})
}

func TestDocumentLinkIgnoresNonWikiURLs(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"comments":[
			{"author":{"displayName":"Automation for Jira"},"body":"Dashboard: https://grafana.example.com/d/abc"}
		]}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	ref, err := client.documentLink(context.Background(), "INC-9")
	require.NoError(t, err)
	assert.Empty(t, ref)
}
