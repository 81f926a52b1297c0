package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if _, err := worktree.Add(filepath.ToSlash(rel)); err != nil {
			return err
		}
		return nil
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Syntaxlab",
			Email: "labs@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func seedTree(t *testing.T, root string) {
	t.Helper()
	for _, rel := range []string{
		"main.go",
		"pkg/util/util.go",
		"pkg/util/util_test.go",
		"testdata/fixture.go",
		"_scratch/old.go",
		"README.md",
	} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(rel)), "package x")
	}
}

func TestGoFilesWalksWithoutRepository(t *testing.T) {
	root := t.TempDir()
	seedTree(t, root)
	files, err := GoFiles(root, Selection{})
	if err != nil {
		t.Fatalf("GoFiles: %v", err)
	}
	want := "main.go,pkg/util/util.go,pkg/util/util_test.go"
	if got := strings.Join(files, ","); got != want {
		t.Fatalf("GoFiles = %q, want %q", got, want)
	}
	rev, err := Revision(root)
	if err != nil || rev != "" {
		t.Fatalf("Revision outside a repository = %q, %v", rev, err)
	}
}

func TestGoFilesUsesGitIndex(t *testing.T) {
	root := t.TempDir()
	seedTree(t, root)
	hash := initGitRepo(t, root)
	writeFile(t, filepath.Join(root, "untracked.go"), "package x")

	files, err := GoFiles(root, Selection{Exclude: []string{"*_test.go"}})
	if err != nil {
		t.Fatalf("GoFiles: %v", err)
	}
	want := "main.go,pkg/util/util.go"
	if got := strings.Join(files, ","); got != want {
		t.Fatalf("GoFiles = %q, want %q", got, want)
	}

	sub, err := GoFiles(filepath.Join(root, "pkg"), Selection{Include: []string{"util/*.go"}})
	if err != nil {
		t.Fatalf("GoFiles(sub): %v", err)
	}
	if got := strings.Join(sub, ","); got != "util/util.go,util/util_test.go" {
		t.Fatalf("GoFiles(sub) = %q", got)
	}

	rev, err := Revision(root)
	if err != nil {
		t.Fatalf("Revision: %v", err)
	}
	if rev != hash[:7] {
		t.Fatalf("Revision = %q, want %q", rev, hash[:7])
	}
}

func TestGoFilesSkipsDeletedTrackedFiles(t *testing.T) {
	root := t.TempDir()
	seedTree(t, root)
	initGitRepo(t, root)
	if err := os.Remove(filepath.Join(root, "main.go")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	files, err := GoFiles(root, Selection{})
	if err != nil {
		t.Fatalf("GoFiles: %v", err)
	}
	for _, f := range files {
		if f == "main.go" {
			t.Fatalf("deleted file listed: %v", files)
		}
	}
}
