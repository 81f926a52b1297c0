package interpreter

import (
	"fmt"
	"strings"

	"syntaxlab/labs-go/pkg/ast"
	"syntaxlab/labs-go/pkg/checker"
	"syntaxlab/labs-go/pkg/format"
	"syntaxlab/labs-go/pkg/runtime"
)

func (x *execution) evaluateStatement(node ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case ast.Expression:
		if _, err := x.evaluateExpression(n, env, ""); err != nil {
			return nil, err
		}
		return runtime.UnitValue{}, nil
	case *ast.LetStatement:
		return x.evaluateLetStatement(n, env)
	case *ast.ConstStatement:
		return x.evaluateConstStatement(n, env)
	case *ast.AssignmentStatement:
		return x.evaluateAssignmentStatement(n, env)
	case *ast.PrintStatement:
		return x.evaluatePrintStatement(n, env)
	default:
		return nil, fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

func (x *execution) evaluateLetStatement(n *ast.LetStatement, env *runtime.Environment) (runtime.Value, error) {
	val, err := x.evaluateExpression(n.Value, env, n.TypeAnnotation)
	if err != nil {
		return nil, err
	}
	if err := expectType(val, n.TypeAnnotation); err != nil {
		return nil, err
	}
	if err := bindPattern(n.Pattern, val, n.Mutable, env); err != nil {
		return nil, err
	}
	return runtime.UnitValue{}, nil
}

func (x *execution) evaluateConstStatement(n *ast.ConstStatement, env *runtime.Environment) (runtime.Value, error) {
	val, err := x.evaluateExpression(n.Value, env, n.TypeAnnotation)
	if err != nil {
		return nil, err
	}
	if err := expectType(val, n.TypeAnnotation); err != nil {
		return nil, err
	}
	env.Define(n.Name.Name, val, false)
	return runtime.UnitValue{}, nil
}

func (x *execution) evaluateAssignmentStatement(n *ast.AssignmentStatement, env *runtime.Environment) (runtime.Value, error) {
	current, err := env.Get(n.Target.Name)
	if err != nil {
		return nil, err
	}
	typ := runtime.TypeName(current)
	val, err := x.evaluateExpression(n.Value, env, typ)
	if err != nil {
		return nil, err
	}
	if err := expectType(val, typ); err != nil {
		return nil, err
	}
	if err := env.Assign(n.Target.Name, val); err != nil {
		return nil, err
	}
	return runtime.UnitValue{}, nil
}

func (x *execution) evaluatePrintStatement(n *ast.PrintStatement, env *runtime.Environment) (runtime.Value, error) {
	args := format.Args{Scope: env}
	for _, arg := range n.Arguments {
		val, err := x.evaluateExpression(arg.Value, env, "")
		if err != nil {
			return nil, err
		}
		if arg.Name == "" {
			args.Positional = append(args.Positional, val)
			continue
		}
		args.Named = append(args.Named, format.Arg{Name: arg.Name, Value: val})
	}
	if err := x.emitter.Emit(n.Template, args, n.Newline); err != nil {
		return nil, err
	}
	return runtime.UnitValue{}, nil
}

func bindPattern(pattern ast.Pattern, val runtime.Value, mutable bool, env *runtime.Environment) error {
	switch p := pattern.(type) {
	case *ast.Identifier:
		env.Define(p.Name, val, mutable)
		return nil
	case *ast.TuplePattern:
		tup, ok := val.(*runtime.TupleValue)
		if !ok {
			return fmt.Errorf("%w: expected tuple, found %s", runtime.ErrTypeMismatch, runtime.TypeName(val))
		}
		if len(tup.Elements) != len(p.Elements) {
			return fmt.Errorf("%w: expected a tuple with %d elements, found one with %d elements", runtime.ErrTypeMismatch, len(p.Elements), len(tup.Elements))
		}
		for idx, el := range p.Elements {
			if err := bindPattern(el, tup.Elements[idx], mutable, env); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported pattern type: %s", pattern.NodeType())
	}
}

// expectType compares a value against an annotation such as "f32",
// "[i32; 5]" or "(i32, f64, u8)". An empty annotation accepts anything.
func expectType(val runtime.Value, annotation string) error {
	if annotation == "" {
		return nil
	}
	got := runtime.TypeName(val)
	if normalizeType(got) != normalizeType(annotation) {
		return fmt.Errorf("%w: expected `%s`, found `%s`", runtime.ErrTypeMismatch, annotation, got)
	}
	return nil
}

func normalizeType(name string) string {
	return strings.Join(strings.Fields(name), "")
}

// elementHints splits a compound annotation into per-element hints.
func elementHints(annotation string, count int) []string {
	hints := make([]string, count)
	if elem := checker.ArrayElementAnnotation(annotation); elem != "" {
		for i := range hints {
			hints[i] = elem
		}
		return hints
	}
	if parts := checker.TupleAnnotations(annotation); len(parts) == count {
		copy(hints, parts)
	}
	return hints
}
