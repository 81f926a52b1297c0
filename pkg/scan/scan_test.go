package scan

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newScanner(t *testing.T) *Scanner {
	t.Helper()
	s, err := NewScanner()
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

const badSource = `package demo

import (
	"os"

	"syntaxlab/labs-go/pkg/format"
)

func main() {
	format.Println("{0}, this is {1}.", "Alice", "Bob")
	format.Println("{0}, this is {2}.", "Alice", "Bob")
	_, _ = format.Sprint("{} {}", 1)
	_ = format.Fprintln(os.Stdout, "{number:>width$}", format.Named("number", 1))
	_ = format.Println("{subject} {verb}", format.Named("subject", "fox"), format.Named("verb", "jumps"))
	_ = format.Println("unused", 1)
}
`

func TestScanSourceReportsBadTemplates(t *testing.T) {
	diags, err := newScanner(t).ScanSource("demo.go", []byte(badSource))
	if err != nil {
		t.Fatalf("ScanSource: %v", err)
	}
	var got []string
	for _, d := range diags {
		got = append(got, d.String())
	}
	want := []string{
		"demo.go:11:17: invalid reference to positional argument 2 (there are 2 arguments)",
		"demo.go:11:17: argument 1 never used",
		"demo.go:12:23: 2 positional arguments in format string, but there is 1 argument",
		"demo.go:13:33: there is no argument named `width`",
		"demo.go:15:21: argument 0 never used",
	}
	if len(got) != len(want) {
		t.Fatalf("diagnostics = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("diagnostic %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScanSourceFollowsAlias(t *testing.T) {
	src := `package demo

import fmtx "syntaxlab/labs-go/pkg/format"

func f(xs ...any) {
	fmtx.Println("{}")
	fmtx.Println("{} {}", xs...)
	fmtx.Println(template(), 1)
	fmtx.Println("{a} {}", fmtx.Named("a", 1), 2)
}

func template() string { return "{}" }
`
	diags, err := newScanner(t).ScanSource("alias.go", []byte(src))
	if err != nil {
		t.Fatalf("ScanSource: %v", err)
	}
	if len(diags) != 2 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
	if !strings.Contains(diags[0].Message, "1 positional argument in format string, but no arguments were given") {
		t.Fatalf("unexpected first diagnostic %v", diags[0])
	}
	if !strings.Contains(diags[1].Message, "positional arguments cannot follow named arguments") {
		t.Fatalf("unexpected second diagnostic %v", diags[1])
	}
}

func TestScanSourceIgnoresOtherPackages(t *testing.T) {
	src := `package demo

import "fmt"

func main() { fmt.Println("{0}") }
`
	diags, err := newScanner(t).ScanSource("other.go", []byte(src))
	if err != nil || len(diags) != 0 {
		t.Fatalf("expected nothing, got %v, %v", diags, err)
	}
}

func TestScanSortsAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.go"), badSource)
	writeFile(t, filepath.Join(root, "a.go"), `package demo

import "syntaxlab/labs-go/pkg/format"

func g() { format.Println("{missing}") }
`)
	diags, err := newScanner(t).Scan(context.Background(), root, []string{"b.go", "a.go"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(diags) != 6 || diags[0].File != "a.go" || diags[1].File != "b.go" {
		t.Fatalf("unexpected diagnostics %v", diags)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newScanner(t).Scan(ctx, root, []string{"a.go"}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}
