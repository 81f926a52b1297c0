package runtime

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
)

var (
	ErrOverflow       = errors.New("arithmetic overflow")
	ErrDivideByZero   = errors.New("attempt to calculate the remainder with a divisor of zero")
	ErrTypeMismatch   = errors.New("mismatched types")
	ErrUnsupportedArg = errors.New("unsupported value")
)

// TypeName reports the static type name carried by the value's tag.
func TypeName(v Value) string {
	switch val := v.(type) {
	case StringValue:
		return "&str"
	case BoolValue:
		return "bool"
	case CharValue:
		return "char"
	case UnitValue:
		return "()"
	case IntegerValue:
		return string(val.TypeSuffix)
	case FloatValue:
		return string(val.TypeSuffix)
	case *TupleValue:
		parts := make([]string, 0, len(val.Elements))
		for _, el := range val.Elements {
			parts = append(parts, TypeName(el))
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *ArrayValue:
		elem := val.ElementType
		if elem == "" && len(val.Elements) > 0 {
			elem = TypeName(val.Elements[0])
		}
		return fmt.Sprintf("[%s; %d]", elem, len(val.Elements))
	case NativeFunctionValue:
		return "fn"
	case nil:
		return "<nil>"
	default:
		return v.Kind().String()
	}
}

// NewArray builds an array value, taking its element type from the first
// element. All elements must share that type.
func NewArray(elements []Value) (*ArrayValue, error) {
	arr := &ArrayValue{Elements: elements}
	if len(elements) == 0 {
		return arr, nil
	}
	arr.ElementType = TypeName(elements[0])
	for i, el := range elements[1:] {
		if name := TypeName(el); name != arr.ElementType {
			return nil, fmt.Errorf("%w: array element %d is %s, expected %s", ErrTypeMismatch, i+1, name, arr.ElementType)
		}
	}
	return arr, nil
}

// FromGo converts a Go value into a tagged runtime value. Untyped Go ints
// follow the default integer rule and become i32 when they fit.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case string:
		return StringValue{Val: val}, nil
	case bool:
		return BoolValue{Val: val}, nil
	case int:
		if val >= math.MinInt32 && val <= math.MaxInt32 {
			return NewInteger(int64(val), IntegerI32), nil
		}
		return NewInteger(int64(val), IntegerI64), nil
	case int8:
		return NewInteger(int64(val), IntegerI8), nil
	case int16:
		return NewInteger(int64(val), IntegerI16), nil
	case int32:
		return NewInteger(int64(val), IntegerI32), nil
	case int64:
		return NewInteger(val, IntegerI64), nil
	case uint:
		return IntegerValue{Val: new(big.Int).SetUint64(uint64(val)), TypeSuffix: IntegerUsize}, nil
	case uint8:
		return NewInteger(int64(val), IntegerU8), nil
	case uint16:
		return NewInteger(int64(val), IntegerU16), nil
	case uint32:
		return NewInteger(int64(val), IntegerU32), nil
	case uint64:
		return IntegerValue{Val: new(big.Int).SetUint64(val), TypeSuffix: IntegerU64}, nil
	case *big.Int:
		if val == nil {
			return nil, fmt.Errorf("%w: nil *big.Int", ErrUnsupportedArg)
		}
		typ := IntegerI128
		if !typ.Fits(val) {
			typ = IntegerU128
		}
		if !typ.Fits(val) {
			return nil, fmt.Errorf("%w: %s does not fit in 128 bits", ErrOverflow, val)
		}
		return IntegerValue{Val: new(big.Int).Set(val), TypeSuffix: typ}, nil
	case float32:
		return FloatValue{Val: float64(val), TypeSuffix: FloatF32}, nil
	case float64:
		return FloatValue{Val: val, TypeSuffix: FloatF64}, nil
	case []any:
		elements := make([]Value, 0, len(val))
		for _, item := range val {
			el, err := FromGo(item)
			if err != nil {
				return nil, err
			}
			elements = append(elements, el)
		}
		return NewArray(elements)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedArg, v)
	}
}

// ToInt extracts a non-negative machine int, as used by widths and indices.
func ToInt(v Value) (int, bool) {
	iv, ok := v.(IntegerValue)
	if !ok || iv.Val == nil || iv.Val.Sign() < 0 || !iv.Val.IsInt64() {
		return 0, false
	}
	n := iv.Val.Int64()
	if n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

//-----------------------------------------------------------------------------
// Arithmetic
//-----------------------------------------------------------------------------

// Arithmetic applies a binary operator (+ - * %) to two values of the same type.
func Arithmetic(op string, left, right Value) (Value, error) {
	switch l := left.(type) {
	case IntegerValue:
		r, ok := right.(IntegerValue)
		if !ok || r.TypeSuffix != l.TypeSuffix {
			return nil, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, TypeName(left), op, TypeName(right))
		}
		return integerArithmetic(op, l, r)
	case FloatValue:
		r, ok := right.(FloatValue)
		if !ok || r.TypeSuffix != l.TypeSuffix {
			return nil, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, TypeName(left), op, TypeName(right))
		}
		return floatArithmetic(op, l, r)
	default:
		return nil, fmt.Errorf("%w: cannot apply %s to %s", ErrTypeMismatch, op, TypeName(left))
	}
}

func integerArithmetic(op string, l, r IntegerValue) (Value, error) {
	out := new(big.Int)
	var verb string
	switch op {
	case "+":
		out.Add(l.Val, r.Val)
		verb = "add"
	case "-":
		out.Sub(l.Val, r.Val)
		verb = "subtract"
	case "*":
		out.Mul(l.Val, r.Val)
		verb = "multiply"
	case "%":
		if r.Val.Sign() == 0 {
			return nil, ErrDivideByZero
		}
		// Truncated remainder: the sign follows the dividend.
		out.Rem(l.Val, r.Val)
		verb = "calculate the remainder"
	default:
		return nil, fmt.Errorf("unsupported operator %q", op)
	}
	if !l.TypeSuffix.Fits(out) {
		return nil, fmt.Errorf("%w: attempt to %s with overflow", ErrOverflow, verb)
	}
	return IntegerValue{Val: out, TypeSuffix: l.TypeSuffix}, nil
}

func floatArithmetic(op string, l, r FloatValue) (Value, error) {
	var out float64
	switch op {
	case "+":
		out = l.Val + r.Val
	case "-":
		out = l.Val - r.Val
	case "*":
		out = l.Val * r.Val
	case "%":
		out = math.Mod(l.Val, r.Val)
	default:
		return nil, fmt.Errorf("unsupported operator %q", op)
	}
	if l.TypeSuffix == FloatF32 {
		out = float64(float32(out))
	}
	return FloatValue{Val: out, TypeSuffix: l.TypeSuffix}, nil
}
