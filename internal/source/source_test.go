package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/framedoc/internal/config"
	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
	"git.home.luguber.info/inful/framedoc/internal/logging"
)

func commitFile(t *testing.T, repo *git.Repository, root, name, content string) plumbing.Hash {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o600))
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash
}

// seedRemote creates a bare remote with one pushed commit and returns the
// bare path together with the seeding work repository.
func seedRemote(t *testing.T) (string, *git.Repository, string) {
	t.Helper()
	tmp := t.TempDir()
	barePath := filepath.Join(tmp, "remote.git")
	_, err := git.PlainInit(barePath, true)
	require.NoError(t, err)

	workPath := filepath.Join(tmp, "seed")
	work, err := git.PlainInit(workPath, false)
	require.NoError(t, err)
	_, err = work.CreateRemote(&ggitcfg.RemoteConfig{Name: "origin", URLs: []string{barePath}})
	require.NoError(t, err)

	commitFile(t, work, workPath, "sol.toml", "[Character]\nName = \"Sol\"\n")
	require.NoError(t, work.Push(&git.PushOptions{RemoteName: "origin"}))
	return barePath, work, workPath
}

func TestSyncClonesThenFastForwards(t *testing.T) {
	barePath, work, workPath := seedRemote(t)
	dest := filepath.Join(t.TempDir(), "data")
	s := New(config.RepositoryConfig{URL: barePath, Branch: "master"}, dest, logging.Discard(), nil)

	res, err := s.Sync(t.Context())
	require.NoError(t, err)
	assert.True(t, res.Cloned)
	assert.True(t, res.Changed)
	assert.Len(t, res.Commit, 40)
	assert.Len(t, res.ShortCommit(), 8)
	assert.FileExists(t, filepath.Join(dest, "sol.toml"))

	res, err = s.Sync(t.Context())
	require.NoError(t, err)
	assert.False(t, res.Cloned)
	assert.False(t, res.Changed)

	next := commitFile(t, work, workPath, "ky.toml", "[Character]\nName = \"Ky\"\n")
	require.NoError(t, work.Push(&git.PushOptions{RemoteName: "origin"}))

	res, err = s.Sync(t.Context())
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, next.String(), res.Commit)
	assert.FileExists(t, filepath.Join(dest, "ky.toml"))
}

func TestSyncRejectsDivergedBranch(t *testing.T) {
	barePath, work, workPath := seedRemote(t)
	dest := filepath.Join(t.TempDir(), "data")
	s := New(config.RepositoryConfig{URL: barePath, Branch: "master"}, dest, logging.Discard(), nil)

	_, err := s.Sync(t.Context())
	require.NoError(t, err)

	local, err := git.PlainOpen(dest)
	require.NoError(t, err)
	commitFile(t, local, dest, "local.toml", "x")

	commitFile(t, work, workPath, "remote.toml", "y")
	require.NoError(t, work.Push(&git.PushOptions{RemoteName: "origin"}))

	_, err = s.Sync(t.Context())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryGit))
	assert.Contains(t, err.Error(), "diverged")
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.False(t, ce.CanRetry(), "diverged history needs manual repair")
}

func TestSyncCloneFailure(t *testing.T) {
	s := New(config.RepositoryConfig{URL: filepath.Join(t.TempDir(), "missing.git")}, filepath.Join(t.TempDir(), "data"), logging.Discard(), nil)
	_, err := s.Sync(t.Context())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryGit))
}

func TestAuth(t *testing.T) {
	auth, err := Auth(nil)
	require.NoError(t, err)
	assert.Nil(t, auth)

	auth, err = Auth(&config.AuthConfig{Type: config.AuthToken, Token: "abc"})
	require.NoError(t, err)
	assert.Equal(t, &http.BasicAuth{Username: "token", Password: "abc"}, auth)

	auth, err = Auth(&config.AuthConfig{Type: config.AuthBasic, Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, &http.BasicAuth{Username: "u", Password: "p"}, auth)

	_, err = Auth(&config.AuthConfig{Type: config.AuthBasic, Username: "u"})
	require.Error(t, err)

	_, err = Auth(&config.AuthConfig{Type: config.AuthSSH, KeyPath: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}
