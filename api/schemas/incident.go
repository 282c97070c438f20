// File: api/schemas/incident.go
package schemas

import "time"

// Priority is the incident urgency label carried by the tracker.
type Priority string

const (
	PriorityP1     Priority = "P1"
	PriorityP2     Priority = "P2"
	PriorityP3     Priority = "P3"
	PriorityP4     Priority = "P4"
	PriorityNotSet Priority = "Not Set"
)

// ParsePriority normalizes a raw tracker urgency value. Anything that is not
// one of the four recognized levels maps to PriorityNotSet.
func ParsePriority(raw string) Priority {
	switch raw {
	case "P1", "P2", "P3", "P4":
		return Priority(raw)
	default:
		return PriorityNotSet
	}
}

// Incident is one ticket pulled from the issue tracker. The ticket key is the
// immutable identity; every other field is enrichment input for the analyzers.
type Incident struct {
	TicketKey    string   `json:"ticket_key"`
	Summary      string   `json:"summary"`
	Description  string   `json:"description"`
	Created      string   `json:"created"` // ISO-8601 as delivered by the tracker, may be empty
	Status       string   `json:"status"`
	Urgency      Priority `json:"urgency"`
	TeamsEngaged string   `json:"teams_engaged"`
	DocumentRef  string   `json:"document_ref,omitempty"` // wiki URL, empty when no review doc is linked
}

// CreatedTime parses the Created field, returning the zero time when the
// tracker supplied no usable timestamp.
func (i Incident) CreatedTime() time.Time {
	if i.Created == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.000-0700",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, i.Created); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DocumentContent is a resolved review page: raw markup plus the cleaned
// plain text every analyzer consumes. Read-only once built.
type DocumentContent struct {
	RawMarkup string `json:"raw_markup"`
	Text      string `json:"text"`
	Title     string `json:"title"`
	Version   int    `json:"version"`
	SourceRef string `json:"source_ref"`
}
