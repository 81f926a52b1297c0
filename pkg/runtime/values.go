package runtime

import (
	"fmt"
	"io"
	"math/big"
	"strings"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindChar
	KindUnit
	KindInteger
	KindFloat
	KindTuple
	KindArray
	KindNativeFunction
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindUnit:
		return "unit"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	case KindNativeFunction:
		return "native_function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

// CharValue holds a single Unicode scalar value.
type CharValue struct {
	Val rune
}

func (v CharValue) Kind() Kind { return KindChar }

// UnitValue is the empty tuple, produced by statements and discarded blocks.
type UnitValue struct{}

func (UnitValue) Kind() Kind { return KindUnit }

// IntegerType names a fixed-width integer.
type IntegerType string

const (
	IntegerI8    IntegerType = "i8"
	IntegerI16   IntegerType = "i16"
	IntegerI32   IntegerType = "i32"
	IntegerI64   IntegerType = "i64"
	IntegerI128  IntegerType = "i128"
	IntegerIsize IntegerType = "isize"
	IntegerU8    IntegerType = "u8"
	IntegerU16   IntegerType = "u16"
	IntegerU32   IntegerType = "u32"
	IntegerU64   IntegerType = "u64"
	IntegerU128  IntegerType = "u128"
	IntegerUsize IntegerType = "usize"
)

// Bits reports the storage width. Pointer-sized types are 64-bit.
func (t IntegerType) Bits() int {
	switch t {
	case IntegerI8, IntegerU8:
		return 8
	case IntegerI16, IntegerU16:
		return 16
	case IntegerI32, IntegerU32:
		return 32
	case IntegerI64, IntegerU64, IntegerIsize, IntegerUsize:
		return 64
	case IntegerI128, IntegerU128:
		return 128
	default:
		return 0
	}
}

// Signed reports whether the type admits negative values.
func (t IntegerType) Signed() bool {
	return strings.HasPrefix(string(t), "i")
}

// Valid reports whether t is one of the known integer types.
func (t IntegerType) Valid() bool {
	return t.Bits() != 0
}

// Range returns the inclusive bounds representable by t.
func (t IntegerType) Range() (min, max *big.Int) {
	bits := uint(t.Bits())
	if t.Signed() {
		max = new(big.Int).Lsh(big.NewInt(1), bits-1)
		min = new(big.Int).Neg(max)
		max.Sub(max, big.NewInt(1))
		return min, max
	}
	max = new(big.Int).Lsh(big.NewInt(1), bits)
	max.Sub(max, big.NewInt(1))
	return big.NewInt(0), max
}

// Fits reports whether v is representable by t.
func (t IntegerType) Fits(v *big.Int) bool {
	if v == nil || !t.Valid() {
		return false
	}
	min, max := t.Range()
	return v.Cmp(min) >= 0 && v.Cmp(max) <= 0
}

type IntegerValue struct {
	Val        *big.Int
	TypeSuffix IntegerType
}

func (v IntegerValue) Kind() Kind { return KindInteger }

// NewInteger builds an integer value from an int64.
func NewInteger(v int64, typ IntegerType) IntegerValue {
	return IntegerValue{Val: big.NewInt(v), TypeSuffix: typ}
}

// FloatType names a floating point width.
type FloatType string

const (
	FloatF32 FloatType = "f32"
	FloatF64 FloatType = "f64"
)

type FloatValue struct {
	Val        float64
	TypeSuffix FloatType
}

func (v FloatValue) Kind() Kind { return KindFloat }

//-----------------------------------------------------------------------------
// Compound values
//-----------------------------------------------------------------------------

// TupleValue is a fixed-size heterogeneous sequence.
type TupleValue struct {
	Elements []Value
}

func (v *TupleValue) Kind() Kind { return KindTuple }

// Field returns the element at position i.
func (v *TupleValue) Field(i int) (Value, error) {
	if i < 0 || i >= len(v.Elements) {
		return nil, &IndexError{Len: len(v.Elements), Index: i, Tuple: true}
	}
	return v.Elements[i], nil
}

// ArrayValue is a fixed-length homogeneous sequence.
type ArrayValue struct {
	Elements    []Value
	ElementType string
}

func (v *ArrayValue) Kind() Kind { return KindArray }

// Index returns the element at position i.
func (v *ArrayValue) Index(i int) (Value, error) {
	if i < 0 || i >= len(v.Elements) {
		return nil, &IndexError{Len: len(v.Elements), Index: i}
	}
	return v.Elements[i], nil
}

// IndexError reports an access past the end of a tuple or array.
type IndexError struct {
	Len   int
	Index int
	Tuple bool
}

func (e *IndexError) Error() string {
	if e.Tuple {
		return fmt.Sprintf("no field `%d` on tuple of length %d", e.Index, e.Len)
	}
	return fmt.Sprintf("index out of bounds: the len is %d but the index is %d", e.Len, e.Index)
}

//-----------------------------------------------------------------------------
// Functions
//-----------------------------------------------------------------------------

// NativeCallContext gives native functions access to the caller's scope and
// the program's output.
type NativeCallContext struct {
	Env *Environment
	Out io.Writer
}

type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  func(ctx *NativeCallContext, args []Value) (Value, error)
}

func (v NativeFunctionValue) Kind() Kind { return KindNativeFunction }
