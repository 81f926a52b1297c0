package runtime

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUndefined       = errors.New("undefined variable")
	ErrImmutableAssign = errors.New("cannot assign twice to immutable variable")
)

// Binding is one name introduced by a let or const.
type Binding struct {
	Name    string
	Value   Value
	Mutable bool
}

// Environment provides lexical scoping for lesson values. Each environment is
// one frame; bindings are kept in declaration order so that a shadowed binding
// stays alive in its frame after a newer binding of the same name hides it.
type Environment struct {
	bindings []*Binding
	parent   *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent: parent}
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Push opens a child scope.
func (e *Environment) Push() *Environment {
	return NewEnvironment(e)
}

// Pop closes this scope and returns the enclosing one. Bindings introduced
// here become unreachable; outer bindings are untouched.
func (e *Environment) Pop() *Environment {
	e.bindings = nil
	return e.parent
}

// Depth counts frames from the global scope (global is 0).
func (e *Environment) Depth() int {
	depth := 0
	for cur := e.parent; cur != nil; cur = cur.parent {
		depth++
	}
	return depth
}

// Define introduces a binding in the current frame, shadowing any visible
// binding of the same name.
func (e *Environment) Define(name string, value Value, mutable bool) {
	e.bindings = append(e.bindings, &Binding{Name: name, Value: value, Mutable: mutable})
}

// Assign updates the binding that name currently resolves to.
func (e *Environment) Assign(name string, value Value) error {
	b := e.resolve(name)
	if b == nil {
		return fmt.Errorf("%w '%s'", ErrUndefined, name)
	}
	if !b.Mutable {
		return fmt.Errorf("%w `%s`", ErrImmutableAssign, name)
	}
	b.Value = value
	return nil
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	if b := e.resolve(name); b != nil {
		return b.Value, nil
	}
	return nil, fmt.Errorf("%w '%s'", ErrUndefined, name)
}

// Lookup is Get without the error, for callers that only probe.
func (e *Environment) Lookup(name string) (Value, bool) {
	if b := e.resolve(name); b != nil {
		return b.Value, true
	}
	return nil, false
}

// IsMutable reports whether the visible binding for name accepts assignment.
func (e *Environment) IsMutable(name string) bool {
	b := e.resolve(name)
	return b != nil && b.Mutable
}

func (e *Environment) resolve(name string) *Binding {
	for cur := e; cur != nil; cur = cur.parent {
		for i := len(cur.bindings) - 1; i >= 0; i-- {
			if cur.bindings[i].Name == name {
				return cur.bindings[i]
			}
		}
	}
	return nil
}

// Len counts bindings in this frame, shadowed ones included.
func (e *Environment) Len() int {
	return len(e.bindings)
}

// Snapshot returns the visible bindings of this frame.
func (e *Environment) Snapshot() map[string]Value {
	out := make(map[string]Value, len(e.bindings))
	for _, b := range e.bindings {
		out[b.Name] = b.Value
	}
	return out
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	seen := make(map[string]struct{}, len(e.bindings))
	keys := make([]string, 0, len(e.bindings))
	for _, b := range e.bindings {
		if _, ok := seen[b.Name]; ok {
			continue
		}
		seen[b.Name] = struct{}{}
		keys = append(keys, b.Name)
	}
	sort.Strings(keys)
	return keys
}
