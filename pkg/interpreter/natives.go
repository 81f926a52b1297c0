package interpreter

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"syntaxlab/labs-go/pkg/format"
	"syntaxlab/labs-go/pkg/runtime"
)

func builtinNatives() map[string]runtime.NativeFunctionValue {
	natives := []runtime.NativeFunctionValue{
		{Name: "type_of", Arity: 1, Impl: nativeTypeOf},
		{Name: "print_array", Arity: 1, Impl: nativePrintArray},
		{Name: "len", Arity: 1, Impl: nativeLen},
	}
	out := make(map[string]runtime.NativeFunctionValue, len(natives))
	for _, fn := range natives {
		out[fn.Name] = fn
	}
	return out
}

// nativeTypeOf returns the static type name of its argument as a &str.
func nativeTypeOf(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	return runtime.StringValue{Val: runtime.TypeName(args[0])}, nil
}

// nativePrintArray writes each element followed by a tab, then a newline.
func nativePrintArray(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	arr, ok := args[0].(*runtime.ArrayValue)
	if !ok {
		return nil, fmt.Errorf("%w: print_array expects an array, found `%s`", runtime.ErrTypeMismatch, runtime.TypeName(args[0]))
	}
	var b strings.Builder
	for _, el := range arr.Elements {
		cell, err := format.Sprint("{}\t", el)
		if err != nil {
			return nil, err
		}
		b.WriteString(cell)
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(ctx.Out, b.String()); err != nil {
		return nil, err
	}
	return runtime.UnitValue{}, nil
}

// nativeLen returns the byte length of a string or the element count of an
// array, as usize.
func nativeLen(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	var n int
	switch v := args[0].(type) {
	case runtime.StringValue:
		n = len(v.Val)
	case *runtime.ArrayValue:
		n = len(v.Elements)
	default:
		return nil, fmt.Errorf("%w: no method named `len` found for `%s`", runtime.ErrTypeMismatch, runtime.TypeName(args[0]))
	}
	return runtime.IntegerValue{Val: big.NewInt(int64(n)), TypeSuffix: runtime.IntegerUsize}, nil
}
