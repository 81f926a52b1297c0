package interpreter

import (
	"fmt"
	"unicode/utf8"

	"syntaxlab/labs-go/pkg/ast"
	"syntaxlab/labs-go/pkg/runtime"
)

// evaluateExpression evaluates expr. hint names the type the context expects,
// or is empty; untyped literals take it when it applies.
func (x *execution) evaluateExpression(node ast.Expression, env *runtime.Environment, hint string) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.CharLiteral:
		r, size := utf8.DecodeRuneInString(n.Value)
		if size == 0 || size != len(n.Value) {
			return nil, fmt.Errorf("invalid char literal %q", n.Value)
		}
		return runtime.CharValue{Val: r}, nil
	case *ast.IntegerLiteral:
		return evaluateIntegerLiteral(n, hint)
	case *ast.FloatLiteral:
		return evaluateFloatLiteral(n, hint)
	case *ast.Identifier:
		return env.Get(n.Name)
	case *ast.ArrayLiteral:
		return x.evaluateArrayLiteral(n, env, hint)
	case *ast.TupleLiteral:
		return x.evaluateTupleLiteral(n, env, hint)
	case *ast.BinaryExpression:
		return x.evaluateBinaryExpression(n, env, hint)
	case *ast.BlockExpression:
		return x.evaluateBlock(n, env, hint)
	case *ast.IndexExpression:
		return x.evaluateIndexExpression(n, env)
	case *ast.TupleFieldExpression:
		return x.evaluateTupleFieldExpression(n, env)
	case *ast.FunctionCall:
		return x.evaluateFunctionCall(n, env)
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", n.NodeType())
	}
}

func evaluateIntegerLiteral(n *ast.IntegerLiteral, hint string) (runtime.Value, error) {
	typ := runtime.IntegerI32
	switch {
	case n.IntegerType != nil:
		typ = runtime.IntegerType(*n.IntegerType)
	case runtime.IntegerType(hint).Valid():
		typ = runtime.IntegerType(hint)
	case hint == string(runtime.FloatF32) || hint == string(runtime.FloatF64):
		return nil, fmt.Errorf("%w: expected `%s`, found integer", runtime.ErrTypeMismatch, hint)
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("invalid suffix `%s` for number literal", typ)
	}
	if !typ.Fits(n.Value) {
		return nil, fmt.Errorf("%w: literal %s out of range for `%s`", runtime.ErrOverflow, n.Value, typ)
	}
	return runtime.IntegerValue{Val: n.Value, TypeSuffix: typ}, nil
}

func evaluateFloatLiteral(n *ast.FloatLiteral, hint string) (runtime.Value, error) {
	typ := runtime.FloatF64
	switch {
	case n.FloatType != nil:
		typ = runtime.FloatType(*n.FloatType)
	case hint == string(runtime.FloatF32):
		typ = runtime.FloatF32
	case runtime.IntegerType(hint).Valid():
		return nil, fmt.Errorf("%w: expected `%s`, found floating-point number", runtime.ErrTypeMismatch, hint)
	}
	val := n.Value
	if typ == runtime.FloatF32 {
		val = float64(float32(val))
	}
	return runtime.FloatValue{Val: val, TypeSuffix: typ}, nil
}

func (x *execution) evaluateArrayLiteral(n *ast.ArrayLiteral, env *runtime.Environment, hint string) (runtime.Value, error) {
	hints := elementHints(hint, len(n.Elements))
	if len(hints) > 0 && hints[0] == "" {
		if typed := firstTypedLiteral(n.Elements); typed != "" {
			for i := range hints {
				hints[i] = typed
			}
		}
	}
	elements := make([]runtime.Value, 0, len(n.Elements))
	for idx, el := range n.Elements {
		elHint := hints[idx]
		if elHint == "" && idx > 0 {
			elHint = runtime.TypeName(elements[0])
		}
		val, err := x.evaluateExpression(el, env, elHint)
		if err != nil {
			return nil, err
		}
		elements = append(elements, val)
	}
	arr, err := runtime.NewArray(elements)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 && len(hints) == 0 {
		arr.ElementType = arrayElementHint(hint)
	}
	return arr, nil
}

func arrayElementHint(hint string) string {
	return elementHints(hint, 1)[0]
}

// firstTypedLiteral finds a suffixed literal that fixes the element type of
// an otherwise untyped array.
func firstTypedLiteral(elements []ast.Expression) string {
	for _, el := range elements {
		switch lit := el.(type) {
		case *ast.IntegerLiteral:
			if lit.IntegerType != nil {
				return string(*lit.IntegerType)
			}
		case *ast.FloatLiteral:
			if lit.FloatType != nil {
				return string(*lit.FloatType)
			}
		}
	}
	return ""
}

func (x *execution) evaluateTupleLiteral(n *ast.TupleLiteral, env *runtime.Environment, hint string) (runtime.Value, error) {
	if len(n.Elements) == 0 {
		return runtime.UnitValue{}, nil
	}
	hints := elementHints(hint, len(n.Elements))
	elements := make([]runtime.Value, 0, len(n.Elements))
	for idx, el := range n.Elements {
		val, err := x.evaluateExpression(el, env, hints[idx])
		if err != nil {
			return nil, err
		}
		elements = append(elements, val)
	}
	return &runtime.TupleValue{Elements: elements}, nil
}

func (x *execution) evaluateBinaryExpression(n *ast.BinaryExpression, env *runtime.Environment, hint string) (runtime.Value, error) {
	var left, right runtime.Value
	var err error
	if isUntypedLiteral(n.Left) && !isUntypedLiteral(n.Right) {
		if right, err = x.evaluateExpression(n.Right, env, hint); err != nil {
			return nil, err
		}
		if left, err = x.evaluateExpression(n.Left, env, runtime.TypeName(right)); err != nil {
			return nil, err
		}
	} else {
		if left, err = x.evaluateExpression(n.Left, env, hint); err != nil {
			return nil, err
		}
		if right, err = x.evaluateExpression(n.Right, env, runtime.TypeName(left)); err != nil {
			return nil, err
		}
	}
	return runtime.Arithmetic(n.Operator, left, right)
}

func isUntypedLiteral(expr ast.Expression) bool {
	switch lit := expr.(type) {
	case *ast.IntegerLiteral:
		return lit.IntegerType == nil
	case *ast.FloatLiteral:
		return lit.FloatType == nil
	default:
		return false
	}
}

// evaluateBlock runs body in a child scope. The block's value is its result
// expression, or () when there is none.
func (x *execution) evaluateBlock(block *ast.BlockExpression, env *runtime.Environment, hint string) (runtime.Value, error) {
	scope := env.Push()
	defer scope.Pop()
	for _, stmt := range block.Body {
		if err := x.ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := x.evaluateStatement(stmt, scope); err != nil {
			return nil, err
		}
	}
	if block.Result == nil {
		return runtime.UnitValue{}, nil
	}
	return x.evaluateExpression(block.Result, scope, hint)
}

func (x *execution) evaluateIndexExpression(n *ast.IndexExpression, env *runtime.Environment) (runtime.Value, error) {
	obj, err := x.evaluateExpression(n.Object, env, "")
	if err != nil {
		return nil, err
	}
	arr, ok := obj.(*runtime.ArrayValue)
	if !ok {
		return nil, fmt.Errorf("%w: cannot index into a value of type `%s`", runtime.ErrTypeMismatch, runtime.TypeName(obj))
	}
	idxVal, err := x.evaluateExpression(n.Index, env, string(runtime.IntegerUsize))
	if err != nil {
		return nil, err
	}
	iv, ok := idxVal.(runtime.IntegerValue)
	if !ok || iv.TypeSuffix != runtime.IntegerUsize {
		return nil, fmt.Errorf("%w: the type `%s` cannot be indexed by `%s`", runtime.ErrTypeMismatch, runtime.TypeName(obj), runtime.TypeName(idxVal))
	}
	if !iv.Val.IsInt64() || iv.Val.Int64() > int64(len(arr.Elements)) {
		return nil, &runtime.IndexError{Len: len(arr.Elements), Index: clampIndex(iv)}
	}
	return arr.Index(int(iv.Val.Int64()))
}

func clampIndex(iv runtime.IntegerValue) int {
	if iv.Val.IsInt64() && iv.Val.Int64() <= int64(^uint(0)>>1) {
		return int(iv.Val.Int64())
	}
	return int(^uint(0) >> 1)
}

func (x *execution) evaluateTupleFieldExpression(n *ast.TupleFieldExpression, env *runtime.Environment) (runtime.Value, error) {
	obj, err := x.evaluateExpression(n.Object, env, "")
	if err != nil {
		return nil, err
	}
	tup, ok := obj.(*runtime.TupleValue)
	if !ok {
		return nil, fmt.Errorf("%w: no field `%d` on type `%s`", runtime.ErrTypeMismatch, n.Field, runtime.TypeName(obj))
	}
	return tup.Field(n.Field)
}

func (x *execution) evaluateFunctionCall(n *ast.FunctionCall, env *runtime.Environment) (runtime.Value, error) {
	fn, ok := x.interp.natives[n.Callee.Name]
	if !ok {
		return nil, fmt.Errorf("cannot find function `%s` in this scope", n.Callee.Name)
	}
	if fn.Arity >= 0 && len(n.Arguments) != fn.Arity {
		return nil, fmt.Errorf("function `%s` takes %d argument(s) but %d were supplied", fn.Name, fn.Arity, len(n.Arguments))
	}
	args := make([]runtime.Value, 0, len(n.Arguments))
	for _, arg := range n.Arguments {
		val, err := x.evaluateExpression(arg, env, "")
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return fn.Impl(&runtime.NativeCallContext{Env: env, Out: x.out}, args)
}
