// Package events publishes build results for downstream consumers.
package events

import (
	"context"
	"time"
)

// Event types, appended to the configured subject.
const (
	TypeBuildCompleted = "build.completed"
	TypeBuildFailed    = "build.failed"
	TypeLinkBroken     = "link.broken"
)

// StaleAnchor is a navigation entry without a scroll target.
type StaleAnchor struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// BuildEvent summarizes one build.
type BuildEvent struct {
	Type         string        `json:"type"`
	BuildID      string        `json:"build_id"`
	Timestamp    time.Time     `json:"timestamp"`
	DurationMS   int64         `json:"duration_ms"`
	Documents    int           `json:"documents"`
	NavEntries   int           `json:"nav_entries"`
	StaleAnchors []StaleAnchor `json:"stale_anchors,omitempty"`
	Output       string        `json:"output,omitempty"`
	SetHash      string        `json:"set_hash,omitempty"`
	Commit       string        `json:"commit,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// LinkEvent reports one suspicious link found while building.
type LinkEvent struct {
	Type       string    `json:"type"`
	BuildID    string    `json:"build_id"`
	Timestamp  time.Time `json:"timestamp"`
	DocumentID string    `json:"document_id"`
	SourcePath string    `json:"source_path"`
	Href       string    `json:"href"`
	Rewritten  string    `json:"rewritten"`
	Reason     string    `json:"reason"`
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishBuild(ctx context.Context, ev BuildEvent) error
	PublishLink(ctx context.Context, ev LinkEvent) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) PublishBuild(context.Context, BuildEvent) error { return nil }
func (Noop) PublishLink(context.Context, LinkEvent) error   { return nil }
func (Noop) Close() error                                   { return nil }
