package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/apiref/internal/build"
	"git.home.luguber.info/inful/apiref/internal/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output    string `short:"o" help:"Override output.file"`
	DryRun    bool   `name:"dry-run" help:"Render without writing the output file"`
	SkipSync  bool   `name:"skip-sync" help:"Use the existing repository clone without fetching"`
	IfChanged bool   `name:"if-changed" help:"Skip the build when documents and settings are unchanged since the last build"`

	out io.Writer
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.File = b.Output
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return b.run(ctx, cfg)
}

func (b *BuildCmd) run(ctx context.Context, cfg *config.Config) error {
	deps, err := newRuntimeDeps(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	result, err := deps.service.Run(ctx, build.BuildRequest{
		Config:  cfg,
		Trigger: build.TriggerCLI,
		Options: build.BuildOptions{
			DryRun:          b.DryRun,
			SkipIfUnchanged: b.IfChanged,
			SkipSync:        b.SkipSync,
		},
	})
	if err != nil {
		return err
	}
	printBuildSummary(b.writer(), result)
	return nil
}

func (b *BuildCmd) writer() io.Writer {
	if b.out != nil {
		return b.out
	}
	return os.Stdout
}

func printBuildSummary(w io.Writer, r *build.BuildResult) {
	switch {
	case r.Skipped:
		_, _ = fmt.Fprintf(w, "Unchanged since last build (%s), kept %s\n", r.SkipReason, r.OutputPath)
		return
	case r.OutputPath == "":
		_, _ = fmt.Fprintf(w, "Rendered %d documents, %d navigation entries (dry run, %d bytes)\n",
			r.Documents, r.NavEntries, len(r.Page))
	default:
		_, _ = fmt.Fprintf(w, "Rendered %d documents, %d navigation entries to %s in %s\n",
			r.Documents, r.NavEntries, r.OutputPath, r.Duration.Round(time.Millisecond))
	}
	if r.FilesSkipped > 0 {
		_, _ = fmt.Fprintf(w, "Skipped %d unreadable documents\n", r.FilesSkipped)
	}
	for _, e := range r.Stale {
		_, _ = fmt.Fprintf(w, "warning: navigation entry %q (#%s) has no matching heading\n", e.Title, e.ID)
	}
	for _, f := range r.Findings {
		_, _ = fmt.Fprintf(w, "warning: %s: link %q resolves to %s (%s)\n", f.Path, f.Href, f.Rewritten, f.Reason)
	}
}
