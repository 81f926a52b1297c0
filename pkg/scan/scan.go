// Package scan finds calls into the format package in Go source files and
// checks their constant templates against the arguments passed, so that a
// bad placeholder is reported before the program ever runs.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	"go.uber.org/zap"

	"syntaxlab/labs-go/pkg/format"
)

// FormatImportPath is the import path whose calls are checked.
const FormatImportPath = "syntaxlab/labs-go/pkg/format"

// templateArg maps each checked function to the position of its template.
var templateArg = map[string]int{
	"Sprint":   0,
	"Println":  0,
	"Fprintln": 1,
}

// Diagnostic is one problem found in a source file.
type Diagnostic struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Message)
}

// Scanner wraps a tree-sitter parser configured for Go.
type Scanner struct {
	parser     *sitter.Parser
	importPath string
	log        *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithImportPath checks calls into a package other than FormatImportPath.
func WithImportPath(path string) Option {
	return func(s *Scanner) {
		s.importPath = path
	}
}

// WithLogger sets the logger used for per-file events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) {
		s.log = l
	}
}

// NewScanner constructs a scanner with the Go grammar loaded.
func NewScanner(opts ...Option) (*Scanner, error) {
	lang := sitter.NewLanguage(tree_sitter_go.Language())
	if lang == nil {
		return nil, fmt.Errorf("scan: go language not available")
	}
	p := sitter.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		p.Close()
		return nil, fmt.Errorf("scan: %w", err)
	}
	s := &Scanner{parser: p, importPath: FormatImportPath, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases parser resources.
func (s *Scanner) Close() {
	if s == nil || s.parser == nil {
		return
	}
	s.parser.Close()
}

// Scan checks every file, given relative to root. Diagnostics are sorted by
// file and position.
func (s *Scanner) Scan(ctx context.Context, root string, files []string) ([]Diagnostic, error) {
	var out []Diagnostic
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return nil, fmt.Errorf("scan: read %s: %w", rel, err)
		}
		diags, err := s.ScanSource(rel, src)
		if err != nil {
			return nil, err
		}
		s.log.Debug("scanned file", zap.String("file", rel), zap.Int("diagnostics", len(diags)))
		out = append(out, diags...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out, nil
}

// ScanSource checks one Go source file. Files that do not import the format
// package yield nothing.
func (s *Scanner) ScanSource(name string, source []byte) ([]Diagnostic, error) {
	if s == nil || s.parser == nil {
		return nil, fmt.Errorf("scan: nil scanner")
	}
	tree := s.parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("scan: parse %s failed", name)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.Kind() != "source_file" {
		return nil, fmt.Errorf("scan: %s: unexpected root node", name)
	}

	f := &fileScan{name: name, source: source}
	f.pkgName = f.importName(root, s.importPath)
	if f.pkgName == "" {
		return nil, nil
	}
	walkNodes(root, func(node *sitter.Node) {
		if node.Kind() == "call_expression" {
			f.checkCall(node)
		}
	})
	return f.diags, nil
}

type fileScan struct {
	name    string
	source  []byte
	pkgName string
	diags   []Diagnostic
}

func (f *fileScan) text(node *sitter.Node) string {
	return string(f.source[node.StartByte():node.EndByte()])
}

func (f *fileScan) report(node *sitter.Node, msg string) {
	start := node.StartPosition()
	f.diags = append(f.diags, Diagnostic{
		File:    f.name,
		Line:    int(start.Row) + 1,
		Column:  int(start.Column) + 1,
		Message: msg,
	})
}

// importName returns the local name bound to importPath, or "" when the file
// does not import it. Dot and blank imports are not followed.
func (f *fileScan) importName(root *sitter.Node, importPath string) string {
	name := ""
	walkNodes(root, func(node *sitter.Node) {
		if name != "" || node.Kind() != "import_spec" {
			return
		}
		pathNode := node.ChildByFieldName("path")
		if pathNode == nil {
			return
		}
		path, err := strconv.Unquote(f.text(pathNode))
		if err != nil || path != importPath {
			return
		}
		if alias := node.ChildByFieldName("name"); alias != nil {
			if alias.Kind() == "package_identifier" {
				name = f.text(alias)
			}
			return
		}
		name = filepath.Base(path)
	})
	return name
}

// selector returns the function name when node is pkg.Name for the format
// package.
func (f *fileScan) selector(node *sitter.Node) string {
	if node == nil || node.Kind() != "selector_expression" {
		return ""
	}
	operand := node.ChildByFieldName("operand")
	field := node.ChildByFieldName("field")
	if operand == nil || field == nil || operand.Kind() != "identifier" || f.text(operand) != f.pkgName {
		return ""
	}
	return f.text(field)
}

func (f *fileScan) checkCall(call *sitter.Node) {
	fn := f.selector(call.ChildByFieldName("function"))
	pos, ok := templateArg[fn]
	if !ok {
		return
	}
	args := arguments(call.ChildByFieldName("arguments"))
	if len(args) <= pos {
		return
	}
	template, ok := f.stringLiteral(args[pos])
	if !ok {
		return
	}

	var sig format.Signature
	for _, arg := range args[pos+1:] {
		if arg.Kind() == "variadic_argument" {
			return
		}
		if named, ok := f.namedArg(arg); ok {
			for _, existing := range sig.Named {
				if existing == named {
					f.report(arg, fmt.Sprintf("duplicate argument named `%s`", named))
				}
			}
			sig.Named = append(sig.Named, named)
			continue
		}
		if len(sig.Named) > 0 {
			f.report(arg, format.ErrArgumentOrder.Error())
		}
		sig.Positional++
	}

	if err := format.Check(template, sig); err != nil {
		for _, msg := range splitErrors(err) {
			f.report(args[pos], msg)
		}
	}
}

// namedArg recognises pkg.Named("name", value) with a constant name.
func (f *fileScan) namedArg(node *sitter.Node) (string, bool) {
	if node.Kind() != "call_expression" || f.selector(node.ChildByFieldName("function")) != "Named" {
		return "", false
	}
	args := arguments(node.ChildByFieldName("arguments"))
	if len(args) == 0 {
		return "", false
	}
	return f.stringLiteral(args[0])
}

func (f *fileScan) stringLiteral(node *sitter.Node) (string, bool) {
	switch node.Kind() {
	case "interpreted_string_literal", "raw_string_literal":
		s, err := strconv.Unquote(f.text(node))
		return s, err == nil
	default:
		return "", false
	}
}

func arguments(list *sitter.Node) []*sitter.Node {
	if list == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, list.NamedChildCount())
	for i := uint(0); i < list.NamedChildCount(); i++ {
		child := list.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func walkNodes(root *sitter.Node, visit func(node *sitter.Node)) {
	if root == nil {
		return
	}
	visit(root)
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		walkNodes(child, visit)
	}
}

// splitErrors flattens a joined error into its messages.
func splitErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, splitErrors(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
