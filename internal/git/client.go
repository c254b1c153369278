package git

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/apiref/internal/config"
	"git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/logfields"
	"git.home.luguber.info/inful/apiref/internal/retry"
	"git.home.luguber.info/inful/apiref/internal/slug"
)

const originRemote = "origin"

// SyncResult describes the state of the local clone after Sync.
type SyncResult struct {
	Path    string // Worktree root
	Branch  string
	Commit  string // Full HEAD hash
	Changed bool   // HEAD moved (always true on first clone)
}

// ShortCommit returns the first 8 characters of the commit hash.
func (r *SyncResult) ShortCommit() string {
	if len(r.Commit) > 8 {
		return r.Commit[:8]
	}
	return r.Commit
}

// Client handles Git operations inside a workspace directory.
type Client struct {
	workspaceDir string
	policy       retry.Policy
}

// NewClient creates a new Git client with the specified workspace directory.
func NewClient(workspaceDir string) *Client {
	return &Client{workspaceDir: workspaceDir, policy: retry.DefaultPolicy()}
}

// WithPolicy returns a copy of c using p for transient failures.
func (c *Client) WithPolicy(p retry.Policy) *Client {
	cp := *c
	cp.policy = p
	return &cp
}

// RepoDir returns the clone directory for a repository URL.
func (c *Client) RepoDir(url string) string {
	name := strings.TrimSuffix(path.Base(strings.TrimRight(filepath.ToSlash(url), "/")), ".git")
	name = slug.Make(name)
	if name == "" {
		name = "repository"
	}
	return filepath.Join(c.workspaceDir, name)
}

// Sync clones repo into the workspace, or updates an existing clone to the
// remote branch head.
func (c *Client) Sync(ctx context.Context, repo config.RepositoryConfig) (*SyncResult, error) {
	if err := os.MkdirAll(c.workspaceDir, 0o750); err != nil {
		return nil, errors.FileSystemError("failed to create workspace directory").
			WithCause(err).
			WithContext("path", c.workspaceDir).
			Build()
	}

	p := c.policy
	if repo.MaxRetries > 0 {
		p = retry.NewPolicy(p.Mode, p.Initial, p.Max, repo.MaxRetries)
	}

	repoPath := c.RepoDir(repo.URL)
	var result *SyncResult
	op := "clone"
	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil {
		op = "update"
	}

	err := retry.Do(ctx, p, func() error {
		var err error
		if op == "update" {
			result, err = c.update(ctx, repoPath, repo)
		} else {
			result, err = c.clone(ctx, repoPath, repo)
		}
		return ClassifyGitError(err, op, repo.URL)
	}, isPermanent, func(attempt int, err error) {
		slog.Warn("Retrying git operation", slog.String("operation", op), logfields.URL(repo.URL), slog.Int("attempt", attempt), logfields.Error(err))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) clone(ctx context.Context, repoPath string, repo config.RepositoryConfig) (*SyncResult, error) {
	slog.Debug("Cloning repository", logfields.URL(repo.URL), logfields.Branch(repo.Branch), logfields.Path(repoPath))

	if err := os.RemoveAll(repoPath); err != nil {
		return nil, fmt.Errorf("remove stale clone: %w", err)
	}

	opts := &git.CloneOptions{
		URL:        repo.URL,
		RemoteName: originRemote,
		Auth:       authFor(repo.Auth),
		Depth:      repo.Depth,
		Tags:       git.NoTags,
	}
	if repo.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(repo.Branch)
		opts.SingleBranch = true
	}

	repository, err := git.PlainCloneContext(ctx, repoPath, false, opts)
	if err != nil {
		_ = os.RemoveAll(repoPath)
		return nil, err
	}

	head, err := repository.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	res := &SyncResult{Path: repoPath, Branch: head.Name().Short(), Commit: head.Hash().String(), Changed: true}
	slog.Info("Repository cloned successfully",
		logfields.URL(repo.URL),
		logfields.Branch(res.Branch),
		logfields.Commit(res.ShortCommit()),
		logfields.Path(repoPath))
	return res, nil
}

func (c *Client) update(ctx context.Context, repoPath string, repo config.RepositoryConfig) (*SyncResult, error) {
	repository, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	head, err := repository.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	branch := repo.Branch
	if branch == "" {
		branch = head.Name().Short()
	}

	refSpec := ggitcfg.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, originRemote, branch))
	err = repository.FetchContext(ctx, &git.FetchOptions{
		RemoteName: originRemote,
		RefSpecs:   []ggitcfg.RefSpec{refSpec},
		Auth:       authFor(repo.Auth),
		Depth:      repo.Depth,
		Tags:       git.NoTags,
		Force:      true,
	})
	if err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	remoteRef, err := repository.Reference(plumbing.NewRemoteReferenceName(originRemote, branch), true)
	if err != nil {
		return nil, fmt.Errorf("resolve remote branch %s: %w", branch, err)
	}

	res := &SyncResult{Path: repoPath, Branch: branch, Commit: remoteRef.Hash().String()}
	if remoteRef.Hash() == head.Hash() {
		slog.Info("Repository already up to date", logfields.URL(repo.URL), logfields.Commit(res.ShortCommit()))
		return res, nil
	}

	wt, err := repository.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
		return nil, fmt.Errorf("reset to %s: %w", res.ShortCommit(), err)
	}

	res.Changed = true
	slog.Info("Repository updated successfully",
		logfields.URL(repo.URL),
		logfields.Branch(branch),
		logfields.Commit(res.ShortCommit()))
	return res, nil
}
