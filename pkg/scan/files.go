package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Selection filters discovered files by slash-separated glob patterns. A
// pattern matches either the path relative to the root or the base name.
type Selection struct {
	Include []string
	Exclude []string
}

func (s Selection) keep(rel string) bool {
	if len(s.Include) > 0 && !matchAny(s.Include, rel) {
		return false
	}
	return !matchAny(s.Exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	base := path.Base(rel)
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// GoFiles lists the Go sources under root, relative to it. Inside a git
// repository only files in the index are listed; otherwise the tree is
// walked. Directories named testdata or vendor, or starting with "." or "_",
// are skipped either way.
func GoFiles(root string, sel Selection) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("scan: resolve %s: %w", root, err)
	}
	files, err := trackedFiles(absRoot)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		files, err = walkFiles(absRoot)
	}
	if err != nil {
		return nil, err
	}
	out := files[:0]
	for _, rel := range files {
		if strings.HasSuffix(rel, ".go") && !skippedPath(rel) && sel.keep(rel) {
			out = append(out, rel)
		}
	}
	sort.Strings(out)
	return out, nil
}

func trackedFiles(absRoot string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(absRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("scan: worktree: %w", err)
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("scan: read index: %w", err)
	}
	top := worktree.Filesystem.Root()
	files := make([]string, 0, len(idx.Entries))
	for _, entry := range idx.Entries {
		abs := filepath.Join(top, filepath.FromSlash(entry.Name))
		rel, err := filepath.Rel(absRoot, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		files = append(files, filepath.ToSlash(rel))
	}
	return files, nil
}

func walkFiles(absRoot string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == absRoot {
			return nil
		}
		if d.IsDir() {
			if skippedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan: walk %s: %w", absRoot, err)
	}
	return files, nil
}

func skippedDir(name string) bool {
	return name == "testdata" || name == "vendor" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func skippedPath(rel string) bool {
	dirs := strings.Split(rel, "/")
	for _, dir := range dirs[:len(dirs)-1] {
		if skippedDir(dir) {
			return true
		}
	}
	return false
}

// Revision returns the short hash of HEAD for the repository holding root,
// or "" when root is not in a repository or nothing is committed yet.
func Revision(root string) (string, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return head.Hash().String()[:7], nil
}
