package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	t   *testing.T
	dir string
}

func newTestRepo(t *testing.T) *testRepo {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	tr := &testRepo{t: t, dir: t.TempDir()}
	tr.git("init", "-q", "-b", "main")
	return tr
}

func (tr *testRepo) git(args ...string) string {
	tr.t.Helper()
	full := append([]string{"-C", tr.dir, "-c", "user.name=test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}, args...)
	out, err := exec.Command("git", full...).CombinedOutput()
	require.NoError(tr.t, err, string(out))
	return string(out)
}

func (tr *testRepo) write(path, content string) {
	tr.t.Helper()
	full := filepath.Join(tr.dir, path)
	require.NoError(tr.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(tr.t, os.WriteFile(full, []byte(content), 0o644))
}

func (tr *testRepo) commit(msg string) {
	tr.git("add", "-A")
	tr.git("commit", "-q", "-m", msg)
}

func (tr *testRepo) open() *Repo {
	repo, err := Open(context.Background(), tr.dir, nil)
	require.NoError(tr.t, err)
	return repo
}

func TestOpen(t *testing.T) {
	tr := newTestRepo(t)
	tr.write("sub/a.txt", "a\n")

	repo, err := Open(context.Background(), filepath.Join(tr.dir, "sub"), nil)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(tr.dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(repo.Root())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	t.Setenv(RepoEnv, tr.dir)
	_, err = Open(context.Background(), "", nil)
	assert.NoError(t, err)
}

func TestOpen_NotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_CEILING_DIRECTORIES", os.TempDir())

	_, err := Open(context.Background(), t.TempDir(), nil)
	assert.True(t, errors.Is(err, ErrNotARepo), "got %v", err)
}

func TestContent(t *testing.T) {
	tr := newTestRepo(t)
	tr.write("a.txt", "one\ntwo\n")
	tr.commit("first")
	tr.write("a.txt", "one\nTWO\n")
	tr.write("new.txt", "fresh\n")

	repo := tr.open()
	ctx := context.Background()

	tests := []struct {
		name   string
		ref    string
		path   string
		want   string
		exists bool
	}{
		{"committed", "HEAD", "a.txt", "one\ntwo\n", true},
		{"working tree", WorkingTree, "a.txt", "one\nTWO\n", true},
		{"untracked", WorkingTree, "new.txt", "fresh\n", true},
		{"missing at ref", "HEAD", "new.txt", "", false},
		{"missing ref", "no-such-branch", "a.txt", "", false},
		{"missing on disk", WorkingTree, "gone.txt", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ok, err := repo.Content(ctx, tt.ref, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.exists, ok)
			if tt.exists {
				assert.Equal(t, tt.want, string(data))
			}
		})
	}
}

func TestRefs(t *testing.T) {
	tr := newTestRepo(t)
	tr.write("a.txt", "a\n")
	tr.commit("first")
	tr.git("tag", "v1")
	tr.git("checkout", "-q", "-b", "feature")
	tr.write("b.txt", "b\n")
	tr.commit("second")

	repo := tr.open()
	ctx := context.Background()

	refs, err := repo.ListRefs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main", "feature", "v1"}, refs)

	mainSHA, err := repo.ResolveRef(ctx, "main")
	require.NoError(t, err)
	assert.Len(t, mainSHA, 40)

	base, err := repo.MergeBase(ctx, "main", "feature")
	require.NoError(t, err)
	assert.Equal(t, mainSHA, base)

	wt, err := repo.ResolveRef(ctx, WorkingTree)
	require.NoError(t, err)
	assert.Equal(t, WorkingTree, wt)

	_, err = repo.ResolveRef(ctx, "nope")
	var cmdErr *CommandError
	assert.ErrorAs(t, err, &cmdErr)
}

func TestChangedFiles(t *testing.T) {
	tr := newTestRepo(t)
	tr.write("keep.txt", "k\n")
	tr.write("mod.go", "package a\n")
	tr.write("del.txt", "d\n")
	tr.commit("first")

	tr.write("mod.go", "package b\n")
	require.NoError(t, os.Remove(filepath.Join(tr.dir, "del.txt")))
	tr.write("src/new.go", "package c\n")

	repo := tr.open()
	ctx := context.Background()

	files, err := repo.ChangedFiles(ctx, "HEAD", WorkingTree)
	require.NoError(t, err)
	assert.Equal(t, []ChangedFile{
		{Path: "del.txt", Status: StatusDeleted},
		{Path: "mod.go", Status: StatusModified},
		{Path: "src/new.go", Status: StatusAdded},
	}, files)

	files, err = repo.ChangedFiles(ctx, "HEAD", WorkingTree, "**/*.go")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	tr.commit("second")
	files, err = repo.ChangedFiles(ctx, "HEAD~1", "HEAD", "src/**")
	require.NoError(t, err)
	assert.Equal(t, []ChangedFile{{Path: "src/new.go", Status: StatusAdded}}, files)

	_, err = repo.ChangedFiles(ctx, "HEAD", WorkingTree, "[")
	assert.Error(t, err)
}

func TestParseNameStatus(t *testing.T) {
	out := []byte("M\x00a.go\x00A\x00b.go\x00D\x00c.go\x00T\x00d\x00")
	assert.Equal(t, []ChangedFile{
		{Path: "a.go", Status: StatusModified},
		{Path: "b.go", Status: StatusAdded},
		{Path: "c.go", Status: StatusDeleted},
		{Path: "d", Status: StatusModified},
	}, parseNameStatus(out))
	assert.Empty(t, parseNameStatus(nil))
}

func (tr *testRepo) staged() string {
	return strings.TrimSpace(tr.git("diff", "--cached", "--name-status"))
}

func TestStaging(t *testing.T) {
	tr := newTestRepo(t)
	tr.write("a.txt", "a\n")
	tr.write("gone.txt", "g\n")
	tr.commit("first")

	repo := tr.open()
	ctx := context.Background()

	t.Run("StageAndUnstage", func(t *testing.T) {
		dirty, err := repo.HasUncommittedChanges(ctx)
		require.NoError(t, err)
		assert.False(t, dirty)

		tr.write("a.txt", "A\n")
		dirty, err = repo.HasUncommittedChanges(ctx)
		require.NoError(t, err)
		assert.True(t, dirty)

		require.NoError(t, repo.Stage(ctx, "a.txt"))
		assert.Equal(t, "M\ta.txt", tr.staged())

		require.NoError(t, repo.Unstage(ctx, "a.txt"))
		assert.Empty(t, tr.staged())

		data, err := os.ReadFile(filepath.Join(tr.dir, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "A\n", string(data))
	})

	t.Run("StageDeletion", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(tr.dir, "gone.txt")))
		require.NoError(t, repo.Stage(ctx, "gone.txt"))
		assert.Equal(t, "D\tgone.txt", tr.staged())
		require.NoError(t, repo.Unstage(ctx, "gone.txt"))
	})

	t.Run("DiscardTracked", func(t *testing.T) {
		tr.write("a.txt", "changed\n")
		require.NoError(t, repo.Stage(ctx, "a.txt"))
		require.NoError(t, repo.Discard(ctx, "a.txt"))

		assert.Empty(t, tr.staged())
		data, err := os.ReadFile(filepath.Join(tr.dir, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "a\n", string(data))

		require.NoError(t, repo.Discard(ctx, "gone.txt"))
		_, err = os.Stat(filepath.Join(tr.dir, "gone.txt"))
		assert.NoError(t, err)
	})

	t.Run("DiscardNewFile", func(t *testing.T) {
		tr.write("new.txt", "n\n")
		require.NoError(t, repo.Stage(ctx, "new.txt"))
		require.NoError(t, repo.Discard(ctx, "new.txt"))

		assert.Empty(t, tr.staged())
		_, err := os.Stat(filepath.Join(tr.dir, "new.txt"))
		assert.True(t, errors.Is(err, os.ErrNotExist))

		require.NoError(t, repo.Discard(ctx, "a.txt"))
		dirty, err := repo.HasUncommittedChanges(ctx)
		require.NoError(t, err)
		assert.False(t, dirty)
	})

	t.Run("InvalidPath", func(t *testing.T) {
		for _, p := range []string{"", "/etc/passwd", "../x", "a/../../x"} {
			assert.ErrorIs(t, repo.Stage(ctx, p), ErrInvalidPath, p)
			assert.ErrorIs(t, repo.Discard(ctx, p), ErrInvalidPath, p)
		}
	})
}

func TestUnstage_BeforeFirstCommit(t *testing.T) {
	tr := newTestRepo(t)
	tr.write("a.txt", "a\n")

	repo := tr.open()
	ctx := context.Background()

	require.NoError(t, repo.Stage(ctx, "a.txt"))
	assert.Equal(t, "A\ta.txt", tr.staged())
	require.NoError(t, repo.Unstage(ctx, "a.txt"))
	assert.Empty(t, tr.staged())
}
