package build

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/apiref/internal/build/validation"
	"git.home.luguber.info/inful/apiref/internal/cache"
	"git.home.luguber.info/inful/apiref/internal/config"
	"git.home.luguber.info/inful/apiref/internal/docmodel"
	"git.home.luguber.info/inful/apiref/internal/docs"
	derrors "git.home.luguber.info/inful/apiref/internal/docs/errors"
	"git.home.luguber.info/inful/apiref/internal/events"
	dberrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/git"
	"git.home.luguber.info/inful/apiref/internal/links"
	"git.home.luguber.info/inful/apiref/internal/linkverify"
	"git.home.luguber.info/inful/apiref/internal/logfields"
	"git.home.luguber.info/inful/apiref/internal/metrics"
	"git.home.luguber.info/inful/apiref/internal/observability"
	"git.home.luguber.info/inful/apiref/internal/page"
)

// Cache is the persistence the service uses between builds. *cache.SQLiteCache
// satisfies it.
type Cache interface {
	docmodel.OutlineCache
	Prune(ctx context.Context, keep []string) (int, error)
	RecordBuild(ctx context.Context, rec cache.BuildRecord) error
	LastBuild(ctx context.Context, status string) (*cache.BuildRecord, error)
}

// Syncer keeps a local clone of the source repository. *git.Client satisfies it.
type Syncer interface {
	Sync(ctx context.Context, repo config.RepositoryConfig) (*git.SyncResult, error)
	RepoDir(url string) string
}

// Collection is the loaded and queried document set of one build.
type Collection struct {
	Root     string // directory documents were discovered in
	Commit   string // source commit when the source is a repository
	Files    []docs.DocFile
	Store    *docs.Store
	Stats    docs.LoadStats
	Selected []*docmodel.Document
}

// DefaultBuildService is the standard implementation of BuildService.
// It orchestrates the full pipeline: sync → discover → load → query → render → audit → write.
type DefaultBuildService struct {
	syncerFactory    func(workspaceDir string) Syncer
	recorder         metrics.Recorder
	publisher        events.Publisher
	cache            Cache
	skipEvaluator    *validation.SkipEvaluator
	sectionCacheSize int

	mu          sync.Mutex
	renderer    *page.Renderer
	rendererKey string
	last        *validation.PreviousBuild
}

// NewBuildService creates a new DefaultBuildService with default collaborators.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		syncerFactory: func(workspaceDir string) Syncer {
			return git.NewClient(workspaceDir)
		},
		recorder:      metrics.NoopRecorder{},
		publisher:     events.Noop{},
		skipEvaluator: validation.NewSkipEvaluator(),
	}
}

// WithSyncerFactory allows injecting a custom git syncer (for testing).
func (s *DefaultBuildService) WithSyncerFactory(factory func(workspaceDir string) Syncer) *DefaultBuildService {
	s.syncerFactory = factory
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(recorder metrics.Recorder) *DefaultBuildService {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	s.recorder = recorder
	return s
}

// WithPublisher sets the event publisher.
func (s *DefaultBuildService) WithPublisher(publisher events.Publisher) *DefaultBuildService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	s.publisher = publisher
	return s
}

// WithCache enables the parse cache and build history.
func (s *DefaultBuildService) WithCache(c Cache) *DefaultBuildService {
	s.cache = c
	return s
}

// WithSectionCacheSize bounds the rendered-section cache kept across builds.
func (s *DefaultBuildService) WithSectionCacheSize(n int) *DefaultBuildService {
	s.sectionCacheSize = n
	return s
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := time.Now()
	result := &BuildResult{BuildID: uuid.NewString(), StartTime: startTime}

	ctx = observability.WithBuildID(ctx, result.BuildID)
	if req.Trigger != "" {
		ctx = observability.WithTrigger(ctx, string(req.Trigger))
	}

	if req.Config == nil {
		return s.fail(ctx, result, dberrors.ConfigError("configuration is required").Build())
	}
	cfg := req.Config
	result.ConfigHash = ConfigHash(cfg, req.Options.LiveReload)

	observability.InfoContext(ctx, "Starting build", slog.Bool("dry_run", req.Options.DryRun))

	col, err := s.Collect(ctx, cfg, req.Options)
	if err != nil {
		return s.fail(ctx, result, err)
	}
	result.Commit = col.Commit
	result.Discovered = len(col.Files)
	result.FilesSkipped = col.Stats.Skipped
	result.Documents = len(col.Selected)
	result.SetHash = docs.SetHash(col.Selected)
	if col.Commit != "" {
		ctx = observability.WithCommit(ctx, col.Commit)
	}
	if len(col.Files) == 0 {
		result.Warnings = append(result.Warnings, derrors.ErrNoDocsFound)
	}

	if req.Options.SkipIfUnchanged && !req.Options.DryRun {
		if skipped := s.trySkip(ctx, cfg, result); skipped {
			return result, nil
		}
	}

	// Stage: render
	var (
		buf    bytes.Buffer
		report *page.Report
		rw     *links.Rewriter
	)
	err = s.stage(ctx, "render", func(ctx context.Context) error {
		var renderer *page.Renderer
		var rerr error
		renderer, rw, rerr = s.rendererFor(cfg)
		if rerr != nil {
			return rerr
		}
		observability.InfoContext(ctx, "Rendering page", logfields.Count(len(col.Selected)))
		report, rerr = renderer.Render(&buf, col.Selected, pageOptions(cfg, req.Options.LiveReload))
		return rerr
	})
	if err != nil {
		return s.fail(ctx, result, joinStage(ErrRender, err))
	}
	result.Page = buf.Bytes()
	result.NavEntries = len(report.Nav)
	result.Stale = report.Stale
	result.CacheHits = report.CacheHits

	// Stage: audit
	_ = s.stage(ctx, "audit", func(ctx context.Context) error {
		result.Findings = linkverify.NewAuditor(rw).Audit(col.Selected, report.Anchors)
		for _, f := range result.Findings {
			observability.WarnContext(ctx, "Suspicious link",
				logfields.DocumentID(f.DocumentID),
				logfields.Path(f.Path),
				logfields.Href(f.Href),
				slog.String("rewritten", f.Rewritten),
				slog.String("reason", string(f.Reason)))
		}
		return nil
	})

	// Stage: write
	if !req.Options.DryRun {
		err = s.stage(ctx, "write", func(ctx context.Context) error {
			if werr := writeAtomic(cfg.Output.File, result.Page); werr != nil {
				return werr
			}
			observability.InfoContext(ctx, "Page written", logfields.Output(cfg.Output.File), slog.Int("bytes", len(result.Page)))
			return nil
		})
		if err != nil {
			return s.fail(ctx, result, joinStage(ErrWrite, err))
		}
		result.OutputPath = cfg.Output.File
	}

	s.succeed(ctx, result, req.Options.DryRun)
	return result, nil
}

// Collect runs the source stages (sync, discover, load, query) and returns
// the selected documents. The toc and show commands use it directly.
func (s *DefaultBuildService) Collect(ctx context.Context, cfg *config.Config, opts BuildOptions) (*Collection, error) {
	col := &Collection{}

	// Stage: sync
	err := s.stage(ctx, "sync", func(ctx context.Context) error {
		root, commit, serr := s.sourceRoot(ctx, cfg, opts.SkipSync)
		col.Root, col.Commit = root, commit
		return serr
	})
	if err != nil {
		return nil, joinStage(ErrSync, err)
	}

	// Stage: discover
	err = s.stage(ctx, "discover", func(ctx context.Context) error {
		files, derr := docs.NewDiscovery(col.Root, cfg.Source.Extensions).Discover()
		if derr != nil {
			return classifyDiscoveryError(derr, col.Root)
		}
		col.Files = files
		if len(files) == 0 {
			observability.WarnContext(ctx, "No documentation files found", logfields.Path(col.Root))
		}
		return nil
	})
	if err != nil {
		return nil, joinStage(ErrDiscovery, err)
	}

	// Stage: load
	err = s.stage(ctx, "load", func(ctx context.Context) error {
		lopts := docmodel.Options{MaxDepth: cfg.TOC.MaxDepth}
		if s.cache != nil {
			lopts.Cache = s.cache
		}
		col.Store, col.Stats = docs.Load(col.Files, col.Root, lopts)
		if col.Stats.Skipped > 0 {
			observability.WarnContext(ctx, "Some documents could not be loaded",
				slog.Int("loaded", col.Stats.Loaded),
				slog.Int("skipped", col.Stats.Skipped))
		}
		if s.cache != nil {
			s.pruneCache(ctx, col.Files)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stage: query
	err = s.stage(ctx, "query", func(ctx context.Context) error {
		col.Selected = col.Store.Query(cfg.Query.IDs)
		if len(cfg.Query.IDs) > 0 && len(col.Selected) == 0 {
			observability.WarnContext(ctx, "Query matched no documents", slog.Int("ids", len(cfg.Query.IDs)))
		}
		observability.DebugContext(ctx, "Documents selected", logfields.Count(len(col.Selected)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return col, nil
}

// sourceRoot returns the directory documents are discovered in, syncing the
// repository first when one is configured.
func (s *DefaultBuildService) sourceRoot(ctx context.Context, cfg *config.Config, skipSync bool) (string, string, error) {
	repo := cfg.Source.Repository
	if repo == nil || repo.URL == "" {
		return cfg.Source.Dir, "", nil
	}

	syncer := s.syncerFactory(repo.WorkspaceDir)
	if skipSync {
		clone := syncer.RepoDir(repo.URL)
		if _, err := os.Stat(filepath.Join(clone, ".git")); err == nil {
			observability.DebugContext(ctx, "Using existing clone", logfields.Path(clone))
			return filepath.Join(clone, cfg.Source.Dir), "", nil
		}
	}

	start := time.Now()
	res, err := syncer.Sync(ctx, *repo)
	s.recorder.ObserveSync(time.Since(start), err == nil)
	if err != nil {
		return "", "", err
	}
	observability.InfoContext(ctx, "Source repository synced",
		logfields.URL(repo.URL),
		logfields.Commit(res.ShortCommit()),
		slog.Bool("changed", res.Changed))
	return filepath.Join(res.Path, cfg.Source.Dir), res.Commit, nil
}

func (s *DefaultBuildService) pruneCache(ctx context.Context, files []docs.DocFile) {
	keep := make([]string, 0, len(files))
	for _, f := range files {
		keep = append(keep, f.RelativePath)
	}
	pruned, err := s.cache.Prune(ctx, keep)
	if err != nil {
		observability.WarnContext(ctx, "Failed to prune parse cache", logfields.Error(err))
		return
	}
	if pruned > 0 {
		observability.DebugContext(ctx, "Pruned parse cache", logfields.Count(pruned))
	}
}

// rendererFor returns the shared renderer for cfg's link settings. The
// renderer, and with it the section cache, survives across builds as long
// as those settings are unchanged.
func (s *DefaultBuildService) rendererFor(cfg *config.Config) (*page.Renderer, *links.Rewriter, error) {
	rw := links.NewRewriter(cfg.Links.BasePath, links.Resolution(cfg.Links.Resolution))
	key := cfg.Links.BasePath + "\x00" + string(cfg.Links.Resolution)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.renderer != nil && s.rendererKey == key {
		return s.renderer, rw, nil
	}
	r, err := page.NewRenderer(rw, s.sectionCacheSize)
	if err != nil {
		return nil, nil, err
	}
	s.renderer, s.rendererKey = r, key
	return r, rw, nil
}

func pageOptions(cfg *config.Config, liveReload template.JS) page.Options {
	return page.Options{
		Title:      cfg.Page.Title,
		PageName:   cfg.Page.PageName,
		ContentID:  cfg.Page.ContentID,
		Theme:      page.Theme(cfg.Theme),
		LiveReload: liveReload,
	}
}

// stage runs fn as a named pipeline stage, recording its duration and result.
func (s *DefaultBuildService) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		s.recorder.IncStageResult(name, metrics.ResultCanceled)
		return err
	}
	start := time.Now()
	err := fn(observability.WithStage(ctx, name))
	s.recorder.ObserveStageDuration(name, time.Since(start))
	switch {
	case err == nil:
		s.recorder.IncStageResult(name, metrics.ResultSuccess)
	case isCancellation(err):
		s.recorder.IncStageResult(name, metrics.ResultCanceled)
	default:
		s.recorder.IncStageResult(name, metrics.ResultFatal)
	}
	return err
}

func (s *DefaultBuildService) trySkip(ctx context.Context, cfg *config.Config, result *BuildResult) bool {
	vctx := validation.Context{
		OutputFile: cfg.Output.File,
		SetHash:    result.SetHash,
		ConfigHash: result.ConfigHash,
		Previous:   s.previousBuild(ctx),
	}
	if res := s.skipEvaluator.Evaluate(ctx, vctx); !res.Passed {
		observability.DebugContext(ctx, "Build not skippable", slog.String("reason", res.Reason))
		return false
	}
	// #nosec G304 -- output path comes from configuration.
	pageBytes, err := os.ReadFile(cfg.Output.File)
	if err != nil {
		return false
	}

	result.Status = BuildStatusSkipped
	result.Skipped = true
	result.SkipReason = "no_changes"
	result.Page = pageBytes
	result.OutputPath = cfg.Output.File
	result.Documents = vctx.Previous.Documents
	result.NavEntries = vctx.Previous.NavEntries
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	s.recorder.IncBuildOutcome(metrics.BuildOutcomeSkipped)
	s.recorder.ObserveBuildDuration(result.Duration)
	observability.InfoContext(ctx, "Skipping build (unchanged)",
		slog.String("previous_build", vctx.Previous.BuildID),
		logfields.Output(cfg.Output.File))
	return true
}

func (s *DefaultBuildService) previousBuild(ctx context.Context) *validation.PreviousBuild {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last != nil {
		return last
	}
	if s.cache == nil {
		return nil
	}
	rec, err := s.cache.LastBuild(ctx, string(BuildStatusSuccess))
	if err != nil {
		observability.WarnContext(ctx, "Failed to read build history", logfields.Error(err))
		return nil
	}
	if rec == nil {
		return nil
	}
	return &validation.PreviousBuild{
		BuildID:    rec.BuildID,
		SetHash:    rec.SetHash,
		ConfigHash: rec.ConfigHash,
		Documents:  rec.Documents,
		NavEntries: rec.NavEntries,
	}
}

func (s *DefaultBuildService) succeed(ctx context.Context, result *BuildResult, dryRun bool) {
	result.Status = BuildStatusSuccess
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	s.recorder.SetDocuments(result.Documents)
	s.recorder.SetNavEntries(result.NavEntries)
	s.recorder.SetStaleAnchors(len(result.Stale))
	s.recorder.AddSectionCacheHits(result.CacheHits)
	s.recorder.ObserveBuildDuration(result.Duration)
	if len(result.Stale) > 0 || len(result.Findings) > 0 || len(result.Warnings) > 0 {
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeWarning)
	} else {
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
	}

	observability.InfoContext(ctx, "Build completed",
		slog.Int("documents", result.Documents),
		slog.Int("nav_entries", result.NavEntries),
		slog.Int("stale_anchors", len(result.Stale)),
		slog.Int("findings", len(result.Findings)),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))

	if dryRun {
		return
	}
	s.mu.Lock()
	s.last = &validation.PreviousBuild{
		BuildID:    result.BuildID,
		SetHash:    result.SetHash,
		ConfigHash: result.ConfigHash,
		Documents:  result.Documents,
		NavEntries: result.NavEntries,
	}
	s.mu.Unlock()

	s.recordHistory(ctx, result, nil)
	s.publishBuild(ctx, result, nil)
	s.publishLinks(ctx, result)
}

func (s *DefaultBuildService) fail(ctx context.Context, result *BuildResult, err error) (*BuildResult, error) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	if isCancellation(err) {
		result.Status = BuildStatusCancelled
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
		observability.WarnContext(ctx, "Build cancelled")
	} else {
		result.Status = BuildStatusFailed
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		observability.ErrorContext(ctx, "Build failed", logfields.Error(err))
	}
	s.recorder.ObserveBuildDuration(result.Duration)

	// History and events outlive a cancelled build context.
	ctx = context.WithoutCancel(ctx)
	s.recordHistory(ctx, result, err)
	s.publishBuild(ctx, result, err)
	return result, err
}

func (s *DefaultBuildService) recordHistory(ctx context.Context, result *BuildResult, buildErr error) {
	if s.cache == nil {
		return
	}
	rec := cache.BuildRecord{
		BuildID:      result.BuildID,
		StartedAt:    result.StartTime,
		Duration:     result.Duration,
		Status:       string(result.Status),
		Documents:    result.Documents,
		NavEntries:   result.NavEntries,
		StaleAnchors: len(result.Stale),
		SetHash:      result.SetHash,
		ConfigHash:   result.ConfigHash,
	}
	if buildErr != nil {
		rec.Error = buildErr.Error()
	}
	if err := s.cache.RecordBuild(ctx, rec); err != nil {
		observability.WarnContext(ctx, "Failed to record build history", logfields.Error(err))
	}
}

func (s *DefaultBuildService) publishBuild(ctx context.Context, result *BuildResult, buildErr error) {
	ev := events.BuildEvent{
		Type:       events.TypeBuildCompleted,
		BuildID:    result.BuildID,
		Timestamp:  result.EndTime,
		DurationMS: result.Duration.Milliseconds(),
		Documents:  result.Documents,
		NavEntries: result.NavEntries,
		Output:     result.OutputPath,
		SetHash:    result.SetHash,
		Commit:     result.Commit,
	}
	for _, e := range result.Stale {
		ev.StaleAnchors = append(ev.StaleAnchors, events.StaleAnchor{ID: e.ID, Title: e.Title})
	}
	if buildErr != nil {
		ev.Type = events.TypeBuildFailed
		ev.Error = buildErr.Error()
	}
	if err := s.publisher.PublishBuild(ctx, ev); err != nil {
		observability.WarnContext(ctx, "Failed to publish build event", logfields.Error(err))
	}
}

func (s *DefaultBuildService) publishLinks(ctx context.Context, result *BuildResult) {
	for _, f := range result.Findings {
		ev := events.LinkEvent{
			Type:       events.TypeLinkBroken,
			BuildID:    result.BuildID,
			Timestamp:  result.EndTime,
			DocumentID: f.DocumentID,
			SourcePath: f.Path,
			Href:       f.Href,
			Rewritten:  f.Rewritten,
			Reason:     string(f.Reason),
		}
		if err := s.publisher.PublishLink(ctx, ev); err != nil {
			observability.WarnContext(ctx, "Failed to publish link event", logfields.Error(err))
			return
		}
	}
}

func classifyDiscoveryError(err error, root string) error {
	if stderrors.Is(err, derrors.ErrDocsPathNotFound) {
		return dberrors.WrapError(err, dberrors.CategoryNotFound, "source directory not found").
			UserAction().
			WithContext("path", root).
			Build()
	}
	return dberrors.WrapError(err, dberrors.CategoryFileSystem, "discovery failed").
		WithContext("path", root).
		Build()
}

// joinStage ties a stage sentinel to err without hiding err's classification
// or a context cancellation.
func joinStage(sentinel, err error) error {
	return fmt.Errorf("%w: %w", sentinel, err)
}

func isCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
