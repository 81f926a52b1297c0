// Package lessons holds the lesson programs and the output each one is
// expected to print.
package lessons

import (
	"sort"

	"syntaxlab/labs-go/pkg/ast"
)

// Outcome is how a lesson is expected to end.
type Outcome int

const (
	// Succeeds prints Expected and finishes.
	Succeeds Outcome = iota
	// FailsCheck is rejected before running and prints nothing.
	FailsCheck
	// Panics prints Expected and then aborts with a runtime error.
	Panics
)

func (o Outcome) String() string {
	switch o {
	case FailsCheck:
		return "fails-check"
	case Panics:
		return "panics"
	default:
		return "succeeds"
	}
}

// Lesson is one runnable program.
type Lesson struct {
	Name     string
	Title    string
	Program  func() *ast.Program
	Expected string
	Outcome  Outcome
	// ErrorContains is a fragment of the error message for failing lessons.
	ErrorContains string
}

var registry = map[string]Lesson{}

func register(l Lesson) {
	if _, dup := registry[l.Name]; dup {
		panic("lessons: duplicate lesson " + l.Name)
	}
	registry[l.Name] = l
}

// Lookup finds a lesson by name.
func Lookup(name string) (Lesson, bool) {
	l, ok := registry[name]
	return l, ok
}

// Names returns every lesson name in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every lesson sorted by name.
func All() []Lesson {
	names := Names()
	out := make([]Lesson, 0, len(names))
	for _, name := range names {
		out = append(out, registry[name])
	}
	return out
}
