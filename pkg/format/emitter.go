package format

import (
	"errors"
	"fmt"
	"io"
	"os"

	"syntaxlab/labs-go/pkg/runtime"
)

var (
	ErrDuplicateArgument = errors.New("duplicate argument")
	ErrArgumentOrder     = errors.New("positional arguments cannot follow named arguments")
)

// NamedArg carries a Go value under a name through the variadic helpers.
type NamedArg struct {
	Name  string
	Value any
}

// Named marks value as the argument for {name} placeholders.
func Named(name string, value any) NamedArg {
	return NamedArg{Name: name, Value: value}
}

// Collect converts Go values into Args. NamedArg entries become named
// arguments; everything else is positional and must come first.
func Collect(values ...any) (Args, error) {
	var args Args
	seen := make(map[string]struct{})
	for i, raw := range values {
		if n, ok := raw.(NamedArg); ok {
			if _, dup := seen[n.Name]; dup {
				return Args{}, fmt.Errorf("%w named `%s`", ErrDuplicateArgument, n.Name)
			}
			seen[n.Name] = struct{}{}
			v, err := runtime.FromGo(n.Value)
			if err != nil {
				return Args{}, fmt.Errorf("argument `%s`: %w", n.Name, err)
			}
			args.Named = append(args.Named, Arg{Name: n.Name, Value: v})
			continue
		}
		if len(args.Named) > 0 {
			return Args{}, ErrArgumentOrder
		}
		v, err := runtime.FromGo(raw)
		if err != nil {
			return Args{}, fmt.Errorf("argument %d: %w", i, err)
		}
		args.Positional = append(args.Positional, v)
	}
	return args, nil
}

// Emitter writes rendered lines to one writer. Parsed templates are cached.
// An Emitter is not safe for concurrent use.
type Emitter struct {
	w         io.Writer
	scope     Resolver
	templates map[string]*Template
}

// NewEmitter returns an emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w, templates: make(map[string]*Template)}
}

// WithScope returns an emitter sharing the cache that captures unknown
// names from scope.
func (e *Emitter) WithScope(scope Resolver) *Emitter {
	return &Emitter{w: e.w, scope: scope, templates: e.templates}
}

// Template parses source, reusing an earlier parse when possible.
func (e *Emitter) Template(source string) (*Template, error) {
	if tpl, ok := e.templates[source]; ok {
		return tpl, nil
	}
	tpl, err := Parse(source)
	if err != nil {
		return nil, err
	}
	e.templates[source] = tpl
	return tpl, nil
}

// Println renders template with Go values and writes it plus a newline.
func (e *Emitter) Println(template string, values ...any) error {
	args, err := Collect(values...)
	if err != nil {
		return err
	}
	return e.Emit(template, args, true)
}

// Print is Println without the trailing newline.
func (e *Emitter) Print(template string, values ...any) error {
	args, err := Collect(values...)
	if err != nil {
		return err
	}
	return e.Emit(template, args, false)
}

// Emit renders with converted args. Nothing is written unless the whole
// line rendered.
func (e *Emitter) Emit(template string, args Args, newline bool) error {
	tpl, err := e.Template(template)
	if err != nil {
		return err
	}
	if args.Scope == nil {
		args.Scope = e.scope
	}
	line, err := tpl.Render(args)
	if err != nil {
		return err
	}
	if newline {
		line += "\n"
	}
	_, err = io.WriteString(e.w, line)
	return err
}

// Sprint renders template with Go values.
func Sprint(template string, values ...any) (string, error) {
	tpl, err := Parse(template)
	if err != nil {
		return "", err
	}
	args, err := Collect(values...)
	if err != nil {
		return "", err
	}
	return tpl.Render(args)
}

// Fprintln renders template and writes it to w as one line.
func Fprintln(w io.Writer, template string, values ...any) error {
	return NewEmitter(w).Println(template, values...)
}

// Println writes one rendered line to standard output.
func Println(template string, values ...any) error {
	return Fprintln(os.Stdout, template, values...)
}
