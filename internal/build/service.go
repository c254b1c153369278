// Package build provides the canonical build pipeline for the API reference page.
// All execution paths (CLI, preview, scheduled refresh) route through BuildService.
package build

import (
	"context"
	"html/template"
	"time"

	"git.home.luguber.info/inful/apiref/internal/config"
	"git.home.luguber.info/inful/apiref/internal/docmodel"
	"git.home.luguber.info/inful/apiref/internal/linkverify"
)

// BuildService is the canonical interface for producing the reference page.
type BuildService interface {
	// Run executes a complete build: sync → discover → load → query → render → write.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// Trigger names what started a build. It is attached to logs and events.
type Trigger string

const (
	TriggerCLI      Trigger = "cli"
	TriggerWatch    Trigger = "watch"
	TriggerSchedule Trigger = "schedule"
)

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	// Config is the loaded configuration for this build.
	Config *config.Config

	Trigger Trigger

	// Options provides optional build behavior modifiers.
	Options BuildOptions
}

// BuildOptions provides optional configuration for build behavior.
type BuildOptions struct {
	// DryRun renders the page without writing the output file.
	DryRun bool

	// SkipIfUnchanged skips rendering when the document set and the
	// render-affecting configuration match the last successful build.
	SkipIfUnchanged bool

	// SkipSync uses the existing clone instead of fetching. Watch-triggered
	// rebuilds set it; the clone is what is being watched.
	SkipSync bool

	// LiveReload is injected into the page by the preview server.
	LiveReload template.JS
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	BuildID string
	Status  BuildStatus

	// OutputPath is the written page (empty on dry runs and failures).
	OutputPath string

	// Page holds the rendered page bytes.
	Page []byte

	Discovered   int // files found by discovery
	FilesSkipped int // files that failed to parse
	Documents    int // documents selected by the query and rendered
	NavEntries   int
	CacheHits    int // sections served from the section cache

	// Stale lists navigation entries without a scroll target on the page.
	Stale []docmodel.HeadingEntry

	// Findings lists suspicious links after rewriting.
	Findings []linkverify.Finding

	// Warnings are non-fatal conditions worth surfacing.
	Warnings []error

	SetHash    string
	ConfigHash string
	Commit     string

	Duration  time.Duration
	StartTime time.Time
	EndTime   time.Time

	// Skipped indicates the build was skipped due to no changes.
	Skipped    bool
	SkipReason string
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates the build completed successfully.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusFailed indicates the build encountered an error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusSkipped indicates the build was skipped (no changes).
	BuildStatusSkipped BuildStatus = "skipped"

	// BuildStatusCancelled indicates the build was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusFailed ||
		s == BuildStatusSkipped || s == BuildStatusCancelled
}

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusSkipped
}
