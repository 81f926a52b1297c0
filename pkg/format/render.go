package format

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"syntaxlab/labs-go/pkg/runtime"
)

var (
	ErrNotFormattable = errors.New("value does not support this format")
	ErrInvalidCount   = errors.New("width and precision must be usize")
)

// Resolver supplies values for names that are not passed explicitly.
// *runtime.Environment satisfies it.
type Resolver interface {
	Lookup(name string) (runtime.Value, bool)
}

// Arg is one named argument.
type Arg struct {
	Name  string
	Value runtime.Value
}

// Args is a fully converted argument list.
type Args struct {
	Positional []runtime.Value
	Named      []Arg
	Scope      Resolver
}

// Signature describes the argument shape for static checking.
func (a Args) Signature() Signature {
	sig := Signature{Positional: len(a.Positional)}
	for _, n := range a.Named {
		sig.Named = append(sig.Named, n.Name)
	}
	if a.Scope != nil {
		scope := a.Scope
		sig.Captures = func(name string) bool {
			_, ok := scope.Lookup(name)
			return ok
		}
	}
	return sig
}

// Render validates every reference against args and then renders. On any
// error the returned string is empty.
func (t *Template) Render(args Args) (string, error) {
	pl, err := t.resolve(args.Signature())
	if err != nil {
		return "", err
	}
	values := make([]runtime.Value, 0, len(args.Positional)+len(args.Named)+len(pl.captured))
	values = append(values, args.Positional...)
	for _, n := range args.Named {
		values = append(values, n.Value)
	}
	for _, name := range pl.captured {
		v, _ := args.Scope.Lookup(name)
		values = append(values, v)
	}

	var b strings.Builder
	slotIdx := 0
	for _, piece := range t.Pieces {
		if piece.Placeholder == nil {
			b.WriteString(piece.Literal)
			continue
		}
		ph := piece.Placeholder
		s := pl.slots[slotIdx]
		slotIdx++

		spec := ph.Spec
		width, err := countValue(spec.Width, s.width, values, ph)
		if err != nil {
			return "", err
		}
		precision, err := countValue(spec.Precision, s.precision, values, ph)
		if err != nil {
			return "", err
		}
		out, err := formatOne(values[s.arg], spec, width, precision)
		if err != nil {
			return "", fmt.Errorf("placeholder at offset %d: %w", ph.Offset, err)
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

// countValue returns -1 when no count was given.
func countValue(c Count, idx int, values []runtime.Value, ph *Placeholder) (int, error) {
	switch c.Kind {
	case CountNone:
		return -1, nil
	case CountLiteral:
		return c.Value, nil
	}
	v := values[idx]
	iv, ok := v.(runtime.IntegerValue)
	if !ok || iv.TypeSuffix != runtime.IntegerUsize {
		return 0, &ReferenceError{
			Offset: ph.Offset,
			Msg:    fmt.Sprintf("expected usize for width or precision, found %s", runtime.TypeName(v)),
			err:    ErrInvalidCount,
		}
	}
	n, ok := runtime.ToInt(iv)
	if !ok || n > MaxCount {
		return 0, &ReferenceError{
			Offset: ph.Offset,
			Msg:    fmt.Sprintf("width or precision %s exceeds %d", iv.Val, MaxCount),
			err:    ErrInvalidCount,
		}
	}
	return n, nil
}

func formatOne(v runtime.Value, spec Spec, width, precision int) (string, error) {
	body, numeric, err := formatBody(v, spec, precision)
	if err != nil {
		return "", err
	}
	return pad(body, spec, width, numeric), nil
}

// formatBody renders the value without padding. numeric reports whether the
// default alignment is right and the zero flag applies.
func formatBody(v runtime.Value, spec Spec, precision int) (string, bool, error) {
	switch spec.Verb {
	case "b", "o", "x", "X":
		iv, ok := v.(runtime.IntegerValue)
		if !ok {
			return "", false, fmt.Errorf("%w: `%s` cannot be formatted with `%s`", ErrNotFormattable, runtime.TypeName(v), spec.Verb)
		}
		return formatRadix(iv, spec), true, nil
	case "x?", "X?":
		if iv, ok := v.(runtime.IntegerValue); ok {
			return formatRadix(iv, spec), true, nil
		}
	case "e", "E":
		s, err := formatExp(v, spec, precision)
		return s, err == nil, err
	}

	debug := spec.Verb == "?" || spec.Verb == "x?" || spec.Verb == "X?"
	switch val := v.(type) {
	case runtime.IntegerValue:
		s := val.Val.String()
		if spec.Plus && val.Val.Sign() >= 0 {
			s = "+" + s
		}
		return s, true, nil
	case runtime.FloatValue:
		s := formatFloat(val, precision, debug)
		if spec.Plus && !strings.HasPrefix(s, "-") {
			s = "+" + s
		}
		return s, true, nil
	case runtime.BoolValue:
		return strconv.FormatBool(val.Val), false, nil
	case runtime.CharValue:
		if debug {
			return quoteDebug(string(val.Val), '\''), false, nil
		}
		return truncate(string(val.Val), precision), false, nil
	case runtime.StringValue:
		if debug {
			return quoteDebug(val.Val, '"'), false, nil
		}
		return truncate(val.Val, precision), false, nil
	case runtime.UnitValue:
		if !debug {
			return "", false, notDisplay(v)
		}
		return "()", false, nil
	case *runtime.TupleValue, *runtime.ArrayValue:
		if !debug {
			return "", false, notDisplay(v)
		}
		return debugCompound(v, spec, 0), false, nil
	default:
		return "", false, notDisplay(v)
	}
}

func notDisplay(v runtime.Value) error {
	return fmt.Errorf("%w: `%s` doesn't implement Display, use `{:?}`", ErrNotFormattable, runtime.TypeName(v))
}

// formatRadix renders an integer in base 2, 8 or 16. Negative values are
// shown as the two's complement of their declared width.
func formatRadix(iv runtime.IntegerValue, spec Spec) string {
	base, prefix := 16, "0x"
	switch spec.Verb {
	case "b":
		base, prefix = 2, "0b"
	case "o":
		base, prefix = 8, "0o"
	}
	n := iv.Val
	if n.Sign() < 0 {
		bits := iv.TypeSuffix.Bits()
		if bits == 0 {
			bits = 128
		}
		n = new(big.Int).Add(n, new(big.Int).Lsh(big.NewInt(1), uint(bits)))
	}
	s := n.Text(base)
	if strings.HasPrefix(spec.Verb, "X") {
		s = strings.ToUpper(s)
	}
	if spec.Alternate {
		s = prefix + s
	}
	if spec.Plus {
		s = "+" + s
	}
	return s
}

// formatFloat prints the shortest decimal that round-trips. Display never
// uses exponent form. Debug output keeps a fractional part and switches to
// exponent form for magnitudes below 1e-4 or from 1e16 up.
func formatFloat(fv runtime.FloatValue, precision int, debug bool) string {
	bits := 64
	if fv.TypeSuffix == runtime.FloatF32 {
		bits = 32
	}
	switch {
	case math.IsNaN(fv.Val):
		return "NaN"
	case math.IsInf(fv.Val, 1):
		return "inf"
	case math.IsInf(fv.Val, -1):
		return "-inf"
	}
	if precision >= 0 {
		return strconv.FormatFloat(fv.Val, 'f', precision, bits)
	}
	if abs := math.Abs(fv.Val); debug && (abs != 0 && abs < 1e-4 || abs >= 1e16) {
		s := strconv.FormatFloat(fv.Val, 'e', -1, bits)
		mantissa, exp, _ := strings.Cut(s, "e")
		expN, _ := strconv.Atoi(exp)
		return mantissa + "e" + strconv.Itoa(expN)
	}
	s := strconv.FormatFloat(fv.Val, 'f', -1, bits)
	if debug && !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatExp(v runtime.Value, spec Spec, precision int) (string, error) {
	var f float64
	bits := 64
	switch val := v.(type) {
	case runtime.FloatValue:
		f = val.Val
		if val.TypeSuffix == runtime.FloatF32 {
			bits = 32
		}
	case runtime.IntegerValue:
		f, _ = new(big.Float).SetInt(val.Val).Float64()
	default:
		return "", fmt.Errorf("%w: `%s` cannot be formatted with `%s`", ErrNotFormattable, runtime.TypeName(v), spec.Verb)
	}
	s := strconv.FormatFloat(f, 'e', precision, bits)
	mantissa, exp, _ := strings.Cut(s, "e")
	expN, _ := strconv.Atoi(exp)
	s = mantissa + "e" + strconv.Itoa(expN)
	if spec.Verb == "E" {
		s = strings.ToUpper(s)
	}
	if spec.Plus && f >= 0 {
		s = "+" + s
	}
	return s, nil
}

func truncate(s string, precision int) string {
	if precision < 0 || utf8.RuneCountInString(s) <= precision {
		return s
	}
	runes := []rune(s)
	return string(runes[:precision])
}

func quoteDebug(s string, quote rune) string {
	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		case quote:
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u{%x}`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}

// debugCompound renders tuples and arrays for {:?} and its variants.
// Elements inherit the verb and the sign and alternate flags.
func debugCompound(v runtime.Value, spec Spec, depth int) string {
	var open, end string
	var elems []runtime.Value
	switch val := v.(type) {
	case *runtime.TupleValue:
		open, end, elems = "(", ")", val.Elements
	case *runtime.ArrayValue:
		open, end, elems = "[", "]", val.Elements
	default:
		s, _, err := formatBody(v, Spec{Verb: spec.Verb, Alternate: spec.Alternate, Plus: spec.Plus}, -1)
		if err != nil {
			return fmt.Sprintf("<%s>", runtime.TypeName(v))
		}
		return s
	}
	parts := make([]string, 0, len(elems))
	for _, el := range elems {
		parts = append(parts, debugCompound(el, spec, depth+1))
	}
	if !spec.Alternate || len(parts) == 0 {
		if open == "(" && len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return open + strings.Join(parts, ", ") + end
	}
	indent := strings.Repeat("    ", depth+1)
	var b strings.Builder
	b.WriteString(open)
	b.WriteByte('\n')
	for _, p := range parts {
		b.WriteString(indent)
		b.WriteString(p)
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat("    ", depth))
	b.WriteString(end)
	return b.String()
}

// pad applies width, fill and alignment. Width counts characters.
func pad(body string, spec Spec, width int, numeric bool) string {
	n := utf8.RuneCountInString(body)
	if width <= n {
		return body
	}
	missing := width - n
	if spec.ZeroPad && numeric {
		sign := ""
		if strings.HasPrefix(body, "-") || strings.HasPrefix(body, "+") {
			sign, body = body[:1], body[1:]
		}
		prefix := ""
		if spec.Alternate && len(body) > 2 && body[0] == '0' && strings.ContainsRune("box", rune(body[1])) {
			prefix, body = body[:2], body[2:]
		}
		return sign + prefix + strings.Repeat("0", missing) + body
	}

	fill := spec.Fill
	if fill == 0 {
		fill = ' '
	}
	align := spec.Align
	if align == AlignUnknown {
		align = AlignLeft
		if numeric {
			align = AlignRight
		}
	}
	var left, right int
	switch align {
	case AlignLeft:
		right = missing
	case AlignRight:
		left = missing
	case AlignCenter:
		left = missing / 2
		right = missing - left
	}
	fillStr := string(fill)
	return strings.Repeat(fillStr, left) + body + strings.Repeat(fillStr, right)
}
