// Package source keeps a local checkout of the character data repository
// up to date.
package source

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/framedoc/internal/config"
	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
	"git.home.luguber.info/inful/framedoc/internal/logfields"
	"git.home.luguber.info/inful/framedoc/internal/metrics"
)

// Result describes the outcome of a sync.
type Result struct {
	Path    string
	Commit  string
	Cloned  bool
	Changed bool
}

// ShortCommit returns the first eight characters of the commit hash.
func (r Result) ShortCommit() string {
	if len(r.Commit) > 8 {
		return r.Commit[:8]
	}
	return r.Commit
}

// Syncer clones or fast-forwards a repository into a directory.
type Syncer struct {
	repo     config.RepositoryConfig
	dir      string
	logger   *slog.Logger
	recorder metrics.Recorder
}

// New creates a Syncer checking repo out into dir.
func New(repo config.RepositoryConfig, dir string, logger *slog.Logger, recorder metrics.Recorder) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Syncer{repo: repo, dir: dir, logger: logger, recorder: recorder}
}

// Sync updates an existing checkout or clones it if it does not exist.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	start := time.Now()
	var (
		res Result
		err error
	)
	if _, statErr := os.Stat(filepath.Join(s.dir, ".git")); statErr == nil {
		res, err = s.update(ctx)
	} else {
		res, err = s.clone(ctx)
	}
	s.recorder.ObserveSyncDuration(s.repo.URL, time.Since(start), err == nil)
	return res, err
}

func (s *Syncer) clone(ctx context.Context) (Result, error) {
	s.logger.Debug("Cloning repository", logfields.URL(s.repo.URL), slog.String("branch", s.repo.Branch), logfields.Path(s.dir))

	if err := os.RemoveAll(s.dir); err != nil {
		return Result{}, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to remove existing directory").
			WithContext("path", s.dir).Build()
	}

	opts := &git.CloneOptions{URL: s.repo.URL, Tags: git.NoTags}
	if s.repo.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.repo.Branch)
		opts.SingleBranch = true
	}
	auth, err := Auth(s.repo.Auth)
	if err != nil {
		return Result{}, err
	}
	opts.Auth = auth

	repository, err := git.PlainCloneContext(ctx, s.dir, false, opts)
	if err != nil {
		return Result{}, ferrors.WrapError(err, ferrors.CategoryGit, "failed to clone repository").
			WithContext("url", s.repo.URL).Retryable().Build()
	}

	res := Result{Path: s.dir, Cloned: true, Changed: true}
	if head, err := repository.Head(); err == nil {
		res.Commit = head.Hash().String()
	}
	s.logger.Info("Repository cloned", logfields.Repository(s.repo.URL), slog.String("commit", res.ShortCommit()), logfields.Path(s.dir))
	return res, nil
}

// update fetches origin and fast-forwards the configured branch. A local
// branch that diverged from the remote is an error.
func (s *Syncer) update(ctx context.Context) (Result, error) {
	repository, err := git.PlainOpen(s.dir)
	if err != nil {
		return Result{}, ferrors.WrapError(err, ferrors.CategoryGit, "failed to open repository").WithContext("path", s.dir).Build()
	}
	wt, err := repository.Worktree()
	if err != nil {
		return Result{}, ferrors.WrapError(err, ferrors.CategoryGit, "failed to get worktree").Build()
	}

	auth, err := Auth(s.repo.Auth)
	if err != nil {
		return Result{}, err
	}
	fetchOpts := &git.FetchOptions{
		RemoteName: "origin",
		Tags:       git.NoTags,
		RefSpecs:   []ggitcfg.RefSpec{"+refs/heads/*:refs/remotes/origin/*"},
		Auth:       auth,
	}
	if err := repository.FetchContext(ctx, fetchOpts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return Result{}, ferrors.WrapError(err, ferrors.CategoryGit, "failed to fetch repository").
			WithContext("url", s.repo.URL).Retryable().Build()
	}

	branch := s.repo.Branch
	if branch == "" {
		branch = config.DefaultBranch
		if head, err := repository.Head(); err == nil && head.Name().IsBranch() {
			branch = head.Name().Short()
		}
	}

	remoteRef, err := repository.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return Result{}, ferrors.WrapError(err, ferrors.CategoryGit, "remote branch not found").
			WithContext("branch", branch).Build()
	}
	localName := plumbing.NewBranchReferenceName(branch)
	localRef, lerr := repository.Reference(localName, true)
	checkout := &git.CheckoutOptions{Branch: localName, Force: true}
	if lerr != nil {
		checkout.Create = true
		checkout.Hash = remoteRef.Hash()
	}
	if err := wt.Checkout(checkout); err != nil {
		return Result{}, ferrors.WrapError(err, ferrors.CategoryGit, "failed to checkout branch").
			WithContext("branch", branch).Build()
	}
	if lerr != nil {
		localRef, _ = repository.Reference(localName, true)
	}

	res := Result{Path: s.dir, Commit: remoteRef.Hash().String()}
	if localRef.Hash() == remoteRef.Hash() {
		s.logger.Info("Repository already up to date", logfields.Repository(s.repo.URL), slog.String("branch", branch), slog.String("commit", res.ShortCommit()))
		return res, nil
	}

	ok, err := isAncestor(repository, localRef.Hash(), remoteRef.Hash())
	if err != nil {
		s.logger.Warn("Ancestor check failed", logfields.Error(err))
	}
	if !ok {
		return Result{}, ferrors.GitError("local branch diverged from remote").
			WithRetry(ferrors.RetryUserAction).
			WithContext("branch", branch).WithContext("path", s.dir).Build()
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
		return Result{}, ferrors.WrapError(err, ferrors.CategoryGit, "fast-forward reset failed").Build()
	}

	res.Changed = true
	s.logger.Info("Fast-forwarded repository", logfields.Repository(s.repo.URL), slog.String("branch", branch),
		slog.String("from", localRef.Hash().String()[:8]), slog.String("to", res.ShortCommit()))
	return res, nil
}

// isAncestor walks the parents of b looking for a.
func isAncestor(repo *git.Repository, a, b plumbing.Hash) (bool, error) {
	if a == b {
		return true, nil
	}
	seen := map[plumbing.Hash]struct{}{}
	queue := []plumbing.Hash{b}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h == a {
			return true, nil
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		commit, err := repo.CommitObject(h)
		if err != nil {
			return false, err
		}
		queue = append(queue, commit.ParentHashes...)
	}
	return false, nil
}
