package workspace

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"staged/internal/config"
	"staged/internal/git"
	"staged/internal/review"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gitRepo(t *testing.T) string {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	run := func(args ...string) {
		full := append([]string{"-C", dir, "-c", "user.name=test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}, args...)
		out, err := exec.Command("git", full...).CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a\nb\nc\n"), 0o644))
	run("add", "-A")
	run("commit", "-q", "-m", "first")
	return dir
}

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Server.Port = 7411
	cfg.Diff.Algorithm = "udiff"
	cfg.Diff.CacheSize = 4
	cfg.LogLevel = "info"
	cfg.Database.Path = filepath.Join(t.TempDir(), "db")
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestWorkspace(t *testing.T) {
	dir := gitRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a\nB\nc\n"), 0o644))

	ws, err := Open(context.Background(), dir, testConfig(t), nil)
	require.NoError(t, err)
	defer ws.Close()

	fd, err := ws.Diffs.Get(context.Background(), "HEAD", git.WorkingTree, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, git.StatusModified, fd.Status)
	assert.Equal(t, 1, fd.Stats.Additions)
	assert.Equal(t, "@@ -2 +2 @@\n-b\n+B\n", fd.Format())

	reviews, err := ws.Reviews()
	require.NoError(t, err)
	same, err := ws.Reviews()
	require.NoError(t, err)
	assert.Same(t, reviews, same)

	_, err = reviews.MarkReviewed(review.DiffID{Base: "HEAD", Head: git.WorkingTree}, "a.txt")
	require.NoError(t, err)

	require.NoError(t, ws.Close())
	require.NoError(t, ws.Close())
}

func TestWorkspace_UsesConfiguredRepo(t *testing.T) {
	dir := gitRepo(t)
	cfg := testConfig(t)
	cfg.Repo = dir

	ws, err := Open(context.Background(), "", cfg, nil)
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(ws.Repo.Root())
	assert.Equal(t, want, got)
}

func TestWorkspace_BadAlgorithm(t *testing.T) {
	dir := gitRepo(t)
	cfg := testConfig(t)
	cfg.Diff.Algorithm = "patience"

	_, err := Open(context.Background(), dir, cfg, nil)
	assert.Error(t, err)
}
