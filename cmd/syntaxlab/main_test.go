package main

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"syntaxlab/labs-go/pkg/driver"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

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
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
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

func captureCLI(t *testing.T, args []string) (int, string, string) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("stdout pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("stderr pipe: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	// Drain concurrently so large outputs cannot fill the pipe buffers.
	outCh := make(chan []byte)
	errCh := make(chan []byte)
	go func() {
		data, _ := io.ReadAll(rOut)
		outCh <- data
	}()
	go func() {
		data, _ := io.ReadAll(rErr)
		errCh <- data
	}()

	code := run(args)

	if err := wOut.Close(); err != nil {
		t.Fatalf("stdout close: %v", err)
	}
	if err := wErr.Close(); err != nil {
		t.Fatalf("stderr close: %v", err)
	}

	os.Stdout = stdout
	os.Stderr = stderr

	outBytes := <-outCh
	errBytes := <-errCh
	_ = rOut.Close()
	_ = rErr.Close()

	return code, string(outBytes), string(errBytes)
}

// isolate moves into an empty directory so no manifest is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestVersionAndUsage(t *testing.T) {
	isolate(t)
	code, stdout, _ := captureCLI(t, []string{"--version"})
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("version: code %d stdout %q", code, stdout)
	}
	code, _, stderr := captureCLI(t, nil)
	if code != 1 || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("no args: code %d stderr %q", code, stderr)
	}
	code, _, stderr = captureCLI(t, []string{"bogus"})
	if code != 1 || !strings.Contains(stderr, `unknown command "bogus"`) {
		t.Fatalf("unknown command: code %d stderr %q", code, stderr)
	}
	code, _, stderr = captureCLI(t, []string{"--color=sometimes", "list"})
	if code != 1 || !strings.Contains(stderr, "--color must be") {
		t.Fatalf("bad colour: code %d stderr %q", code, stderr)
	}
}

func TestListLessons(t *testing.T) {
	isolate(t)
	code, stdout, stderr := captureCLI(t, []string{"list"})
	if code != 0 {
		t.Fatalf("list exited %d: %s", code, stderr)
	}
	for _, want := range []string{"lab01/variables", "lab02/formatting", "lab02/invalid-reference", "(fails-check)", "(panics)"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("list output missing %q:\n%s", want, stdout)
		}
	}
}

func TestRunLesson(t *testing.T) {
	isolate(t)
	code, stdout, stderr := captureCLI(t, []string{"run", "lab02/freezing"})
	if code != 0 {
		t.Fatalf("run exited %d: %s", code, stderr)
	}
	want := "_mutable_integer = 7\n_mutable_integer = 7\n_mutable_integer = 3\n"
	if stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}
}

func TestRunSeveralLessonsPrintsHeaders(t *testing.T) {
	isolate(t)
	code, stdout, stderr := captureCLI(t, []string{"run", "lab02/freezing", "lab02/block-expressions"})
	if code != 0 {
		t.Fatalf("run exited %d: %s", code, stderr)
	}
	first := strings.Index(stdout, "== lab02/freezing ==")
	second := strings.Index(stdout, "== lab02/block-expressions ==")
	if first < 0 || second < first || !strings.Contains(stdout, "z is ()") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
}

func TestRunExitCodes(t *testing.T) {
	isolate(t)

	code, stdout, stderr := captureCLI(t, []string{"run", "lab02/invalid-reference"})
	if code != 1 || stdout != "" || !strings.Contains(stderr, "invalid reference to positional argument 2") {
		t.Fatalf("check failure: code %d stdout %q stderr %q", code, stdout, stderr)
	}

	code, stdout, stderr = captureCLI(t, []string{"run", "lab01/out-of-bounds"})
	if code != exitPanicked {
		t.Fatalf("panic: code %d stderr %q", code, stderr)
	}
	if stdout != "arr[0] is 1\nlen is 5\n" || !strings.Contains(stderr, "index out of bounds: the len is 5 but the index is 5") {
		t.Fatalf("panic output: stdout %q stderr %q", stdout, stderr)
	}

	code, _, stderr = captureCLI(t, []string{"run", "lab99/missing", "lab01/out-of-bounds"})
	if code != 1 || !strings.Contains(stderr, `unknown lesson "lab99/missing"`) {
		t.Fatalf("unknown lesson: code %d stderr %q", code, stderr)
	}

	code, _, stderr = captureCLI(t, []string{"run"})
	if code != 1 || !strings.Contains(stderr, "--all") {
		t.Fatalf("missing names: code %d stderr %q", code, stderr)
	}
}

func TestRunAllReportsFirstFailure(t *testing.T) {
	isolate(t)
	code, stdout, _ := captureCLI(t, []string{"run", "--all"})
	// lab01/out-of-bounds sorts before lab02/invalid-reference.
	if code != exitPanicked {
		t.Fatalf("run --all exited %d", code)
	}
	if !strings.Contains(stdout, "== lab02/formatting ==") || !strings.Contains(stdout, "Base 16 (hexadecimal):   10F2C") {
		t.Fatalf("run --all did not continue past failures:\n%s", stdout)
	}
}

func TestVerboseLogsToStderr(t *testing.T) {
	isolate(t)
	code, stdout, stderr := captureCLI(t, []string{"--verbose", "run", "lab02/block-expressions"})
	if code != 0 {
		t.Fatalf("run exited %d: %s", code, stderr)
	}
	if !strings.Contains(stderr, "run finished") || strings.Contains(stdout, "run finished") {
		t.Fatalf("expected debug log on stderr only:\nstdout %q\nstderr %q", stdout, stderr)
	}
}

func TestVerifyAllLessons(t *testing.T) {
	isolate(t)
	code, stdout, stderr := captureCLI(t, []string{"verify"})
	if code != 0 {
		t.Fatalf("verify exited %d:\n%s\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "PASS lab01/out-of-bounds") || !strings.Contains(stdout, "8 passed, 0 failed") {
		t.Fatalf("unexpected verify output:\n%s", stdout)
	}
}

func TestVerifyUsesManifestSelection(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, driver.ManifestName), `
name: selection
lessons:
  - lab02/freezing
  - lab02/invalid-reference
output:
  color: never
`)
	sub := filepath.Join(dir, "nested", "deeper")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Chdir(sub)

	code, stdout, stderr := captureCLI(t, []string{"verify"})
	if code != 0 {
		t.Fatalf("verify exited %d:\n%s\n%s", code, stdout, stderr)
	}
	want := "PASS lab02/freezing\nPASS lab02/invalid-reference\n2 passed, 0 failed\n"
	if stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}
}

func TestManifestErrors(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, driver.ManifestName), `
name: broken
colour: never
`)
	code, _, stderr := captureCLI(t, []string{"list"})
	if code != 1 || !strings.Contains(stderr, "failed to load manifest") {
		t.Fatalf("unknown field: code %d stderr %q", code, stderr)
	}

	other := filepath.Join(dir, "other.yml")
	writeFile(t, other, `
name: other
lessons:
  - lab99/missing
`)
	code, _, stderr = captureCLI(t, []string{"--manifest", other, "verify"})
	if code != 1 || !strings.Contains(stderr, `unknown lesson "lab99/missing"`) {
		t.Fatalf("unknown lesson: code %d stderr %q", code, stderr)
	}
}

func TestRenderCommand(t *testing.T) {
	isolate(t)
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"render", "{:>5}|", "42"}, "   42|\n"},
		{[]string{"render", "{name} is {age:#x}", `name="Bob"`, "age=255"}, "Bob is 0xff\n"},
		{[]string{"render", "{:08.3}", "-3.14159"}, "-003.142\n"},
		{[]string{"render", "{:?}", "'a'"}, "'a'\n"},
	}
	for _, tc := range cases {
		code, stdout, stderr := captureCLI(t, tc.args)
		if code != 0 || stdout != tc.want {
			t.Fatalf("%v: code %d stdout %q stderr %q, want %q", tc.args, code, stdout, stderr, tc.want)
		}
	}

	code, stdout, stderr := captureCLI(t, []string{"render", "{} {}", "1"})
	if code != 1 || stdout != "" || !strings.Contains(stderr, "2 positional arguments in format string") {
		t.Fatalf("bad render: code %d stdout %q stderr %q", code, stdout, stderr)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "go.mod"), "module demo")
	writeFile(t, filepath.Join(dir, "main.go"), `
package demo

import "syntaxlab/labs-go/pkg/format"

func Demo() {
	format.Println("{0} {2}", 1, 2)
}
`)
	writeFile(t, filepath.Join(dir, "clean.go"), `
package demo

import "syntaxlab/labs-go/pkg/format"

func Clean() {
	format.Println("{} {}", 1, 2)
}
`)
	initGitRepo(t, dir)
	// Untracked files are not checked inside a repository.
	writeFile(t, filepath.Join(dir, "scratch.go"), `
package demo

import "syntaxlab/labs-go/pkg/format"

func Scratch() {
	format.Println("{}")
}
`)

	code, stdout, stderr := captureCLI(t, []string{"check"})
	if code != 1 {
		t.Fatalf("check exited %d: %s", code, stderr)
	}
	want := "main.go:6:17: invalid reference to positional argument 2 (there are 2 arguments)\n" +
		"main.go:6:17: argument 1 never used\n"
	if stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}
	if !strings.Contains(stderr, "2 problem(s) in 2 file(s)") {
		t.Fatalf("stderr = %q", stderr)
	}

	code, stdout, stderr = captureCLI(t, []string{"check", "clean.go"})
	if code != 0 || stdout != "" || !strings.Contains(stderr, "no problems in 1 file(s)") {
		t.Fatalf("clean check: code %d stdout %q stderr %q", code, stdout, stderr)
	}

	code, _, stderr = captureCLI(t, []string{"check", "scratch.go"})
	if code != 1 || !strings.Contains(stderr, "1 problem(s)") {
		t.Fatalf("explicit file: code %d stderr %q", code, stderr)
	}
}

func TestCheckHonoursManifestExclude(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, driver.ManifestName), `
name: excluded
check:
  exclude:
    - main.go
`)
	writeFile(t, filepath.Join(dir, "main.go"), `
package demo

import "syntaxlab/labs-go/pkg/format"

func Demo() {
	format.Println("{0} {2}", 1, 2)
}
`)
	code, stdout, stderr := captureCLI(t, []string{"check"})
	if code != 0 || stdout != "" || !strings.Contains(stderr, "no problems in 0 file(s)") {
		t.Fatalf("check: code %d stdout %q stderr %q", code, stdout, stderr)
	}
}

func TestPlaygroundNeedsTerminal(t *testing.T) {
	isolate(t)
	code, _, stderr := captureCLI(t, []string{"playground"})
	if code != 1 || !strings.Contains(stderr, "interactive terminal") {
		t.Fatalf("playground: code %d stderr %q", code, stderr)
	}
}

func newTestPlayground() *playgroundModel {
	return newPlaygroundModel(newPalette(io.Discard, driver.ColorNever), zap.NewNop())
}

func submit(t *testing.T, m *playgroundModel, line string) {
	t.Helper()
	m.input.SetValue(line)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter on %q produced no command", line)
	}
	m.Update(cmd())
}

func TestPlaygroundRendersLines(t *testing.T) {
	m := newTestPlayground()
	submit(t, m, `"{:>6}|{:<4}|", "ab", 7`)
	submit(t, m, `{name}, name="Ferris"`)
	submit(t, m, `"{} {}", 1`)

	if len(m.history) != 3 {
		t.Fatalf("history has %d entries", len(m.history))
	}
	if m.history[0].err != nil || m.history[0].result != "    ab|7   |" {
		t.Fatalf("first entry = %#v", m.history[0])
	}
	if m.history[1].err != nil || m.history[1].result != "Ferris" {
		t.Fatalf("second entry = %#v", m.history[1])
	}
	if m.history[2].err == nil {
		t.Fatalf("expected an error for a missing argument")
	}
	if m.input.Value() != "" {
		t.Fatalf("input not cleared: %q", m.input.Value())
	}

	view := m.View()
	for _, want := range []string{"syntaxlab playground", `> {name}, name="Ferris"`, "    ab|7   |", "error: "} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestPlaygroundHistoryAndQuit(t *testing.T) {
	m := newTestPlayground()
	submit(t, m, `"{}", 1`)
	submit(t, m, `"{}", 2`)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.input.Value(); got != `"{}", 2` {
		t.Fatalf("first recall = %q", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.input.Value(); got != `"{}", 1` {
		t.Fatalf("second recall = %q", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.input.Value(); got != "" {
		t.Fatalf("recall past newest = %q", got)
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("empty line should not render")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("esc produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("esc did not quit")
	}
	if m.View() != "" {
		t.Fatalf("view after quit = %q", m.View())
	}
}

func TestPlaygroundHistoryIsBounded(t *testing.T) {
	m := newTestPlayground()
	for i := 0; i < maxHistory+5; i++ {
		submit(t, m, `"x"`)
	}
	if len(m.history) != maxHistory {
		t.Fatalf("history has %d entries, want %d", len(m.history), maxHistory)
	}
}
