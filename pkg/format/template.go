// Package format implements the placeholder-based console emitter used by the
// lessons: templates such as "{0}, meet {1}" or "{n:0>width$}" are parsed
// once, validated against the supplied arguments, and only then rendered.
package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrSyntax marks a malformed template.
var ErrSyntax = errors.New("invalid format string")

// MaxCount is the largest width or precision a template may request.
const MaxCount = 65535

// SyntaxError reports where a template stopped making sense.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s at offset %d", ErrSyntax, e.Msg, e.Offset)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// ArgKind says how a placeholder selects its argument.
type ArgKind int

const (
	ArgNext ArgKind = iota
	ArgIndex
	ArgName
)

// ArgRef selects one argument.
type ArgRef struct {
	Kind  ArgKind
	Index int
	Name  string
}

func (r ArgRef) String() string {
	switch r.Kind {
	case ArgIndex:
		return strconv.Itoa(r.Index)
	case ArgName:
		return r.Name
	default:
		return ""
	}
}

// CountKind says where a width or precision comes from.
type CountKind int

const (
	CountNone CountKind = iota
	CountLiteral
	CountIndex
	CountName
	// CountNext takes the precision from the next positional argument (".*").
	CountNext
)

type Count struct {
	Kind  CountKind
	Value int
	Name  string
}

type Align int

const (
	AlignUnknown Align = iota
	AlignLeft
	AlignRight
	AlignCenter
)

// Spec is everything after the colon of a placeholder.
type Spec struct {
	Fill      rune
	Align     Align
	Plus      bool
	Alternate bool
	ZeroPad   bool
	Width     Count
	Precision Count
	Verb      string
}

// Placeholder is one {...} slot.
type Placeholder struct {
	Arg    ArgRef
	Spec   Spec
	Offset int
}

// Piece is either literal text or a placeholder.
type Piece struct {
	Literal     string
	Placeholder *Placeholder
}

// Template is a parsed format string.
type Template struct {
	Source string
	Pieces []Piece
}

// Placeholders returns the placeholders in template order.
func (t *Template) Placeholders() []*Placeholder {
	out := make([]*Placeholder, 0, len(t.Pieces))
	for _, p := range t.Pieces {
		if p.Placeholder != nil {
			out = append(out, p.Placeholder)
		}
	}
	return out
}

// Parse turns a template into pieces. Braces are escaped by doubling.
func Parse(source string) (*Template, error) {
	p := &templateParser{src: source}
	return p.parse()
}

// MustParse is Parse for templates known at compile time.
func MustParse(source string) *Template {
	t, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return t
}

type templateParser struct {
	src string
	pos int
}

func (p *templateParser) parse() (*Template, error) {
	tpl := &Template{Source: p.src}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			tpl.Pieces = append(tpl.Pieces, Piece{Literal: lit.String()})
			lit.Reset()
		}
	}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '{':
			if p.peekAt(1) == '{' {
				lit.WriteByte('{')
				p.pos += 2
				continue
			}
			flush()
			ph, err := p.parsePlaceholder()
			if err != nil {
				return nil, err
			}
			tpl.Pieces = append(tpl.Pieces, Piece{Placeholder: ph})
		case '}':
			if p.peekAt(1) == '}' {
				lit.WriteByte('}')
				p.pos += 2
				continue
			}
			return nil, p.errorf("unmatched `}` found")
		default:
			lit.WriteByte(c)
			p.pos++
		}
	}
	flush()
	return tpl, nil
}

func (p *templateParser) parsePlaceholder() (*Placeholder, error) {
	start := p.pos
	p.pos++ // '{'
	ph := &Placeholder{Offset: start}

	switch {
	case p.pos < len(p.src) && isDigit(p.src[p.pos]):
		n, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		ph.Arg = ArgRef{Kind: ArgIndex, Index: n}
	case p.pos < len(p.src) && isIdentStart(p.src[p.pos]):
		ph.Arg = ArgRef{Kind: ArgName, Name: p.parseIdent()}
	}

	if p.pos >= len(p.src) {
		return nil, &SyntaxError{Offset: start, Msg: "expected `}` but string was terminated"}
	}
	switch p.src[p.pos] {
	case '}':
		p.pos++
		return ph, nil
	case ':':
		p.pos++
	default:
		return nil, p.errorf("expected `}`, found `%c`", p.src[p.pos])
	}

	spec, err := p.parseSpec()
	if err != nil {
		return nil, err
	}
	ph.Spec = spec
	if p.pos >= len(p.src) || p.src[p.pos] != '}' {
		return nil, &SyntaxError{Offset: start, Msg: "expected `}` but string was terminated"}
	}
	p.pos++
	return ph, nil
}

func (p *templateParser) parseSpec() (Spec, error) {
	var spec Spec

	// [[fill]align]
	if r, size := utf8.DecodeRuneInString(p.src[p.pos:]); size > 0 {
		if next := p.peekAt(size); isAlign(next) && r != '}' {
			spec.Fill = r
			spec.Align = alignOf(next)
			p.pos += size + 1
		} else if isAlign(byte(r)) && r < utf8.RuneSelf {
			spec.Align = alignOf(byte(r))
			p.pos++
		}
	}

	// [sign]
	switch p.peekAt(0) {
	case '+':
		spec.Plus = true
		p.pos++
	case '-':
		p.pos++
	}
	if p.peekAt(0) == '#' {
		spec.Alternate = true
		p.pos++
	}
	if p.peekAt(0) == '0' && p.peekAt(1) != '$' {
		spec.ZeroPad = true
		p.pos++
	}

	width, err := p.parseCount(false)
	if err != nil {
		return spec, err
	}
	spec.Width = width

	if p.peekAt(0) == '.' {
		p.pos++
		prec, err := p.parseCount(true)
		if err != nil {
			return spec, err
		}
		if prec.Kind == CountNone {
			return spec, p.errorf("expected precision after `.`")
		}
		spec.Precision = prec
	}

	verbStart := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '}' {
		p.pos++
	}
	spec.Verb = p.src[verbStart:p.pos]
	switch spec.Verb {
	case "", "?", "x?", "X?", "b", "o", "x", "X", "e", "E":
	default:
		return spec, &SyntaxError{Offset: verbStart, Msg: fmt.Sprintf("unknown format trait `%s`", spec.Verb)}
	}
	return spec, nil
}

// parseCount reads N, N$, name$ or (for precisions) *. A bare identifier is
// left alone since it is the verb.
func (p *templateParser) parseCount(allowStar bool) (Count, error) {
	if p.pos >= len(p.src) {
		return Count{}, nil
	}
	c := p.src[p.pos]
	switch {
	case allowStar && c == '*':
		p.pos++
		return Count{Kind: CountNext}, nil
	case isDigit(c):
		start := p.pos
		n, err := p.parseInt()
		if err != nil {
			return Count{}, err
		}
		if p.peekAt(0) == '$' {
			p.pos++
			return Count{Kind: CountIndex, Value: n}, nil
		}
		if n > MaxCount {
			return Count{}, &SyntaxError{Offset: start, Msg: fmt.Sprintf("width or precision %d exceeds %d", n, MaxCount)}
		}
		return Count{Kind: CountLiteral, Value: n}, nil
	case isIdentStart(c):
		save := p.pos
		name := p.parseIdent()
		if p.peekAt(0) == '$' {
			p.pos++
			return Count{Kind: CountName, Name: name}, nil
		}
		p.pos = save
	}
	return Count{}, nil
}

func (p *templateParser) parseInt() (int, error) {
	start := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, &SyntaxError{Offset: start, Msg: "integer out of range"}
	}
	return n, nil
}

func (p *templateParser) parseIdent() string {
	start := p.pos
	for p.pos < len(p.src) && isIdentContinue(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *templateParser) peekAt(offset int) byte {
	if p.pos+offset < len(p.src) {
		return p.src[p.pos+offset]
	}
	return 0
}

func (p *templateParser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c)) && c < utf8.RuneSelf
}

func isIdentContinue(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isAlign(c byte) bool { return c == '<' || c == '>' || c == '^' }

func alignOf(c byte) Align {
	switch c {
	case '<':
		return AlignLeft
	case '>':
		return AlignRight
	default:
		return AlignCenter
	}
}
