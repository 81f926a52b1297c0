package format

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"syntaxlab/labs-go/pkg/runtime"
)

var ErrBadLiteral = errors.New("invalid literal")

var integerSuffixes = []runtime.IntegerType{
	runtime.IntegerI128, runtime.IntegerU128,
	runtime.IntegerIsize, runtime.IntegerUsize,
	runtime.IntegerI16, runtime.IntegerI32, runtime.IntegerI64,
	runtime.IntegerU16, runtime.IntegerU32, runtime.IntegerU64,
	runtime.IntegerI8, runtime.IntegerU8,
}

// ParseLiteral reads a literal as typed on a command line: 42, 42u8, -7i64,
// 0xff, 1.5, 3.0f32, true, 'z', "text". Unsuffixed integers are i32 and
// unsuffixed floats f64. Anything else is taken as a bare string.
func ParseLiteral(src string) (runtime.Value, error) {
	s := strings.TrimSpace(src)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrBadLiteral)
	}
	switch {
	case s == "true" || s == "false":
		return runtime.BoolValue{Val: s == "true"}, nil
	case s == "()":
		return runtime.UnitValue{}, nil
	case strings.HasPrefix(s, `"`):
		str, err := strconv.Unquote(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrBadLiteral, s)
		}
		return runtime.StringValue{Val: str}, nil
	case strings.HasPrefix(s, "'"):
		r, _, tail, err := strconv.UnquoteChar(strings.TrimSuffix(s[1:], "'"), '\'')
		if err != nil || tail != "" || !strings.HasSuffix(s, "'") || len(s) < 3 {
			return nil, fmt.Errorf("%w: %s", ErrBadLiteral, s)
		}
		return runtime.CharValue{Val: r}, nil
	}
	if v, ok, err := parseNumber(s); err != nil || ok {
		return v, err
	}
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: not UTF-8", ErrBadLiteral)
	}
	return runtime.StringValue{Val: s}, nil
}

// parseNumber reports ok=false for text that is not a number. Digits that
// do not fit their type are an error rather than a string.
func parseNumber(s string) (runtime.Value, bool, error) {
	body := strings.ReplaceAll(s, "_", "")
	for _, suffix := range []runtime.FloatType{runtime.FloatF32, runtime.FloatF64} {
		if strings.HasSuffix(body, string(suffix)) {
			f, err := strconv.ParseFloat(strings.TrimSuffix(body, string(suffix)), 64)
			if err != nil {
				return nil, false, nil
			}
			if suffix == runtime.FloatF32 {
				f = float64(float32(f))
			}
			return runtime.FloatValue{Val: f, TypeSuffix: suffix}, true, nil
		}
	}
	typ := runtime.IntegerI32
	for _, suffix := range integerSuffixes {
		if strings.HasSuffix(body, string(suffix)) {
			typ = suffix
			body = strings.TrimSuffix(body, string(suffix))
			break
		}
	}
	if n, ok := new(big.Int).SetString(body, 0); ok {
		if !typ.Fits(n) {
			return nil, false, fmt.Errorf("%w: literal out of range for `%s`", ErrBadLiteral, typ)
		}
		return runtime.IntegerValue{Val: n, TypeSuffix: typ}, true, nil
	}
	if typ != runtime.IntegerI32 || strings.HasPrefix(body, "0x") {
		return nil, false, nil
	}
	if f, err := strconv.ParseFloat(body, 64); err == nil && strings.ContainsAny(body, ".eE") {
		return runtime.FloatValue{Val: f, TypeSuffix: runtime.FloatF64}, true, nil
	}
	return nil, false, nil
}

// ParseArgument reads "value" or "name=value".
func ParseArgument(src string) (string, runtime.Value, error) {
	s := strings.TrimSpace(src)
	if eq := strings.IndexByte(s, '='); eq > 0 && isIdentifier(s[:eq]) {
		v, err := ParseLiteral(s[eq+1:])
		return s[:eq], v, err
	}
	v, err := ParseLiteral(s)
	return "", v, err
}

// ParseArgs turns command-line style arguments into Args.
func ParseArgs(items []string) (Args, error) {
	var args Args
	seen := make(map[string]struct{})
	for _, item := range items {
		name, v, err := ParseArgument(item)
		if err != nil {
			return Args{}, err
		}
		if name == "" {
			if len(args.Named) > 0 {
				return Args{}, ErrArgumentOrder
			}
			args.Positional = append(args.Positional, v)
			continue
		}
		if _, dup := seen[name]; dup {
			return Args{}, fmt.Errorf("%w named `%s`", ErrDuplicateArgument, name)
		}
		seen[name] = struct{}{}
		args.Named = append(args.Named, Arg{Name: name, Value: v})
	}
	return args, nil
}

// SplitArguments splits a comma-separated line, ignoring commas inside
// quotes. The first field is usually the template.
func SplitArguments(line string) ([]string, error) {
	var (
		out   []string
		cur   strings.Builder
		quote rune
		esc   bool
	)
	for _, r := range line {
		switch {
		case esc:
			esc = false
		case quote != 0 && r == '\\':
			esc = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
		case quote == 0 && r == ',':
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote", ErrBadLiteral)
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" || len(out) > 0 {
		out = append(out, rest)
	}
	return out, nil
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentContinue(s[i]) {
			return false
		}
	}
	return true
}
