package format

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidReference = errors.New("invalid format reference")
	ErrUnusedArgument   = errors.New("argument never used")
)

// ReferenceError describes one placeholder or argument that does not line up.
type ReferenceError struct {
	Offset int
	Msg    string
	err    error
}

func (e *ReferenceError) Error() string { return e.Msg }

func (e *ReferenceError) Unwrap() error { return e.err }

// Signature is the shape of an argument list, known before any value is.
type Signature struct {
	Positional int
	Named      []string
	// Captures reports whether an otherwise unknown name can be taken from
	// the surrounding scope. Nil disables capture.
	Captures func(name string) bool
}

// Check parses template and validates it against sig.
func Check(template string, sig Signature) error {
	tpl, err := Parse(template)
	if err != nil {
		return err
	}
	return tpl.Check(sig)
}

// Check validates every reference in t against sig. All problems are
// reported, joined.
func (t *Template) Check(sig Signature) error {
	_, err := t.resolve(sig)
	return err
}

// slot records the argument positions one placeholder reads.
type slot struct {
	arg       int
	width     int
	precision int
}

type plan struct {
	slots    []slot
	captured []string
}

func (t *Template) resolve(sig Signature) (*plan, error) {
	r := &resolver{
		sig:      sig,
		explicit: sig.Positional + len(sig.Named),
		used:     make([]bool, sig.Positional+len(sig.Named)),
		captures: make(map[string]int),
	}
	out := &plan{}
	for _, ph := range t.Placeholders() {
		s := slot{arg: -1, width: -1, precision: -1}
		if ph.Spec.Precision.Kind == CountNext {
			s.precision = r.next(ph)
		}
		switch ph.Arg.Kind {
		case ArgNext:
			s.arg = r.next(ph)
		case ArgIndex:
			s.arg = r.index(ph, ph.Arg.Index)
		case ArgName:
			s.arg = r.name(ph, ph.Arg.Name)
		}
		s.width = r.count(ph, ph.Spec.Width)
		if ph.Spec.Precision.Kind != CountNext {
			s.precision = r.count(ph, ph.Spec.Precision)
		}
		out.slots = append(out.slots, s)
	}
	for i, used := range r.used {
		if used {
			continue
		}
		if i < sig.Positional {
			r.fail(&ReferenceError{Offset: -1, Msg: fmt.Sprintf("argument %d never used", i), err: ErrUnusedArgument})
		} else {
			r.fail(&ReferenceError{Offset: -1, Msg: fmt.Sprintf("named argument `%s` never used", sig.Named[i-sig.Positional]), err: ErrUnusedArgument})
		}
	}
	out.captured = r.captured
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	return out, nil
}

type resolver struct {
	sig      Signature
	explicit int
	cursor   int
	used     []bool
	captures map[string]int
	captured []string
	errs     []error
}

func (r *resolver) fail(err error) {
	r.errs = append(r.errs, err)
}

func (r *resolver) next(ph *Placeholder) int {
	idx := r.cursor
	r.cursor++
	if idx >= r.explicit {
		r.fail(&ReferenceError{
			Offset: ph.Offset,
			Msg:    fmt.Sprintf("%d positional %s in format string, but %s", r.cursor, plural(r.cursor, "argument"), describeCount(r.explicit)),
			err:    ErrInvalidReference,
		})
		return -1
	}
	r.used[idx] = true
	return idx
}

func (r *resolver) index(ph *Placeholder, idx int) int {
	if idx >= r.explicit {
		r.fail(&ReferenceError{
			Offset: ph.Offset,
			Msg:    fmt.Sprintf("invalid reference to positional argument %d (%s)", idx, describeCount(r.explicit)),
			err:    ErrInvalidReference,
		})
		return -1
	}
	r.used[idx] = true
	return idx
}

func (r *resolver) name(ph *Placeholder, name string) int {
	for i, candidate := range r.sig.Named {
		if candidate == name {
			idx := r.sig.Positional + i
			r.used[idx] = true
			return idx
		}
	}
	if idx, ok := r.captures[name]; ok {
		return idx
	}
	if r.sig.Captures != nil && r.sig.Captures(name) {
		idx := r.explicit + len(r.captured)
		r.captures[name] = idx
		r.captured = append(r.captured, name)
		return idx
	}
	r.fail(&ReferenceError{
		Offset: ph.Offset,
		Msg:    fmt.Sprintf("there is no argument named `%s`", name),
		err:    ErrInvalidReference,
	})
	return -1
}

func (r *resolver) count(ph *Placeholder, c Count) int {
	switch c.Kind {
	case CountIndex:
		return r.index(ph, c.Value)
	case CountName:
		return r.name(ph, c.Name)
	default:
		return -1
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}

func describeCount(n int) string {
	switch n {
	case 0:
		return "no arguments were given"
	case 1:
		return "there is 1 argument"
	default:
		return fmt.Sprintf("there are %d arguments", n)
	}
}
