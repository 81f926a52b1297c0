// Package checker validates lesson programs before they run: names must be
// bound, immutable bindings must not be reassigned, and every print must
// reference arguments that exist.
package checker

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"syntaxlab/labs-go/pkg/ast"
	"syntaxlab/labs-go/pkg/format"
	"syntaxlab/labs-go/pkg/runtime"
)

// Diagnostic represents a problem found before execution.
type Diagnostic struct {
	Message string
	Node    ast.Node
}

// Natives lists the built-in functions and their arity.
var Natives = map[string]int{
	"type_of":     1,
	"print_array": 1,
	"len":         1,
}

type shapeKind int

const (
	shapeUnknown shapeKind = iota
	shapeArray
	shapeTuple
)

type symbol struct {
	name    string
	mutable bool
	isConst bool
	shape   shapeKind
	length  int
	// typ is the binding's type name when it is known statically.
	typ string
}

type scope struct {
	symbols []symbol
	parent  *scope
}

func (s *scope) define(sym symbol) {
	s.symbols = append(s.symbols, sym)
}

func (s *scope) lookup(name string) (symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		for i := len(cur.symbols) - 1; i >= 0; i-- {
			if cur.symbols[i].name == name {
				return cur.symbols[i], true
			}
		}
	}
	return symbol{}, false
}

// Checker walks a program over a scope stack that mirrors the runtime one.
type Checker struct {
	functions map[string]int
	scope     *scope
	diags     []Diagnostic
}

// New returns a checker that knows the built-in natives.
func New() *Checker {
	return NewWithFunctions(Natives)
}

// NewWithFunctions returns a checker for programs that may call exactly the
// given functions, keyed by name with their arity.
func NewWithFunctions(functions map[string]int) *Checker {
	return &Checker{functions: functions}
}

// CheckProgram returns every diagnostic in program. It never executes code.
func (c *Checker) CheckProgram(program *ast.Program) ([]Diagnostic, error) {
	if program == nil {
		return nil, fmt.Errorf("checker: program is nil")
	}
	c.scope = &scope{}
	c.diags = nil
	for _, stmt := range program.Body {
		c.checkStatement(stmt)
	}
	return c.diags, nil
}

// Check is a convenience wrapper around New().CheckProgram.
func Check(program *ast.Program) ([]Diagnostic, error) {
	return New().CheckProgram(program)
}

func (c *Checker) report(node ast.Node, msg string, args ...any) {
	c.diags = append(c.diags, Diagnostic{Message: fmt.Sprintf(msg, args...), Node: node})
}

func (c *Checker) push() {
	c.scope = &scope{parent: c.scope}
}

func (c *Checker) pop() {
	c.scope = c.scope.parent
}

func (c *Checker) checkStatement(stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.LetStatement:
		c.checkExpression(n.Value, n.TypeAnnotation)
		c.bindPattern(n, n.Pattern, n.Value, n.TypeAnnotation, n.Mutable)
	case *ast.ConstStatement:
		c.checkExpression(n.Value, n.TypeAnnotation)
		sym := shapeOf(c.scope, n.Value, n.TypeAnnotation)
		sym.name = n.Name.Name
		sym.isConst = true
		sym.typ = bindingType(c.scope, n.Value, n.TypeAnnotation)
		c.scope.define(sym)
	case *ast.AssignmentStatement:
		sym, ok := c.scope.lookup(n.Target.Name)
		hint := unknownType
		if ok && sym.typ != "" {
			hint = sym.typ
		}
		c.checkExpression(n.Value, hint)
		switch {
		case !ok:
			c.report(n, "cannot find value `%s` in this scope", n.Target.Name)
		case sym.isConst:
			c.report(n, "invalid left-hand side of assignment: `%s` is a constant", n.Target.Name)
		case !sym.mutable:
			c.report(n, "cannot assign twice to immutable variable `%s`", n.Target.Name)
		}
	case *ast.PrintStatement:
		c.checkPrint(n)
	case ast.Expression:
		c.checkExpression(n, "")
	default:
		c.report(stmt, "unsupported statement %s", stmt.NodeType())
	}
}

func (c *Checker) bindPattern(let *ast.LetStatement, pattern ast.Pattern, value ast.Expression, annotation string, mutable bool) {
	switch p := pattern.(type) {
	case *ast.Identifier:
		sym := shapeOf(c.scope, value, annotation)
		sym.name = p.Name
		sym.mutable = mutable
		sym.typ = bindingType(c.scope, value, annotation)
		c.scope.define(sym)
	case *ast.TuplePattern:
		if value != nil {
			src := shapeOf(c.scope, value, annotation)
			if src.shape == shapeArray {
				c.report(let, "mismatched types: expected tuple, found array")
			} else if src.shape == shapeTuple && src.length != len(p.Elements) {
				c.report(let, "mismatched types: expected a tuple with %d elements, found one with %d elements", len(p.Elements), src.length)
			}
		}
		var elements []ast.Expression
		if tup, ok := value.(*ast.TupleLiteral); ok && len(tup.Elements) == len(p.Elements) {
			elements = tup.Elements
		}
		annotations := splitTupleAnnotation(annotation)
		for i, el := range p.Elements {
			var sub ast.Expression
			if elements != nil {
				sub = elements[i]
			}
			subAnnotation := ""
			if i < len(annotations) {
				subAnnotation = annotations[i]
			}
			c.bindPattern(let, el, sub, subAnnotation, mutable)
		}
	default:
		c.report(let, "unsupported pattern %s", pattern.NodeType())
	}
}

func (c *Checker) checkPrint(n *ast.PrintStatement) {
	sig := format.Signature{
		Captures: func(name string) bool {
			_, ok := c.scope.lookup(name)
			return ok
		},
	}
	for _, arg := range n.Arguments {
		c.checkExpression(arg.Value, "")
		if arg.Name == "" {
			if len(sig.Named) > 0 {
				c.report(n, "positional arguments cannot follow named arguments")
			}
			sig.Positional++
			continue
		}
		for _, existing := range sig.Named {
			if existing == arg.Name {
				c.report(n, "duplicate argument named `%s`", arg.Name)
			}
		}
		sig.Named = append(sig.Named, arg.Name)
	}
	if err := format.Check(n.Template, sig); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			c.report(n, "%s", line)
		}
	}
}

// unknownType marks a context whose type cannot be derived statically.
// Untyped literals in such a context are not range-checked.
const unknownType = "?"

// checkExpression checks expr in a context expecting hint. An empty hint
// means no expectation, so untyped integers default to i32.
func (c *Checker) checkExpression(expr ast.Expression, hint string) {
	switch n := expr.(type) {
	case nil:
	case *ast.Identifier:
		if _, ok := c.scope.lookup(n.Name); !ok {
			c.report(n, "cannot find value `%s` in this scope", n.Name)
		}
	case *ast.StringLiteral, *ast.BooleanLiteral, *ast.FloatLiteral:
	case *ast.IntegerLiteral:
		c.checkIntegerLiteral(n, hint)
	case *ast.CharLiteral:
		if len([]rune(n.Value)) != 1 {
			c.report(n, "character literal may only contain one codepoint")
		}
	case *ast.ArrayLiteral:
		hints := elementHints(hint, len(n.Elements))
		if len(hints) > 0 && hints[0] == "" {
			if typed := firstTypedLiteral(n.Elements); typed != "" {
				for i := range hints {
					hints[i] = typed
				}
			}
		}
		for i, el := range n.Elements {
			elHint := hints[i]
			if elHint == "" && i > 0 {
				elHint = staticType(c.scope, n.Elements[0], hints[0])
			}
			c.checkExpression(el, elHint)
		}
	case *ast.TupleLiteral:
		hints := elementHints(hint, len(n.Elements))
		for i, el := range n.Elements {
			c.checkExpression(el, hints[i])
		}
	case *ast.BinaryExpression:
		switch n.Operator {
		case "+", "-", "*", "%":
		default:
			c.report(n, "unsupported operator `%s`", n.Operator)
		}
		if isUntypedLiteral(n.Left) && !isUntypedLiteral(n.Right) {
			c.checkExpression(n.Right, hint)
			c.checkExpression(n.Left, staticType(c.scope, n.Right, hint))
		} else {
			c.checkExpression(n.Left, hint)
			c.checkExpression(n.Right, staticType(c.scope, n.Left, hint))
		}
	case *ast.FunctionCall:
		arity, ok := c.functions[n.Callee.Name]
		if !ok {
			c.report(n, "cannot find function `%s` in this scope", n.Callee.Name)
		} else if arity != len(n.Arguments) {
			c.report(n, "function `%s` takes %d argument(s) but %d were supplied", n.Callee.Name, arity, len(n.Arguments))
		}
		for _, arg := range n.Arguments {
			c.checkExpression(arg, "")
		}
	case *ast.BlockExpression:
		c.push()
		for _, stmt := range n.Body {
			c.checkStatement(stmt)
		}
		c.checkExpression(n.Result, hint)
		c.pop()
	case *ast.IndexExpression:
		c.checkExpression(n.Object, "")
		c.checkExpression(n.Index, string(runtime.IntegerUsize))
		sym := shapeOf(c.scope, n.Object, "")
		if sym.shape == shapeTuple {
			c.report(n, "cannot index into a value of type tuple")
			return
		}
		if lit, ok := n.Index.(*ast.IntegerLiteral); ok && sym.shape == shapeArray {
			if lit.Value.Sign() < 0 || lit.Value.Cmp(bigLen(sym.length)) >= 0 {
				c.report(n, "this operation will panic at runtime: index out of bounds: the len is %d but the index is %s", sym.length, lit.Value)
			}
		}
	case *ast.TupleFieldExpression:
		c.checkExpression(n.Object, "")
		sym := shapeOf(c.scope, n.Object, "")
		if sym.shape == shapeArray || (sym.shape == shapeTuple && (n.Field < 0 || n.Field >= sym.length)) {
			c.report(n, "no field `%d` on %s", n.Field, describeShape(sym))
		}
	default:
		c.report(expr, "unsupported expression %s", expr.NodeType())
	}
}

func (c *Checker) checkIntegerLiteral(n *ast.IntegerLiteral, hint string) {
	var typ runtime.IntegerType
	switch {
	case n.IntegerType != nil:
		typ = runtimeIntegerType(*n.IntegerType)
		if !typ.Valid() {
			c.report(n, "invalid suffix `%s` for number literal", *n.IntegerType)
			return
		}
	case hint == "":
		typ = runtime.IntegerI32
	case runtime.IntegerType(hint).Valid():
		typ = runtime.IntegerType(hint)
	default:
		return
	}
	if !typ.Fits(n.Value) {
		c.report(n, "literal out of range for `%s`", typ)
	}
}

func runtimeIntegerType(t ast.IntegerType) runtime.IntegerType {
	return runtime.IntegerType(t)
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

// elementHints splits a compound hint into per-element hints. An unknown
// hint stays unknown for every element.
func elementHints(hint string, count int) []string {
	hints := make([]string, count)
	if hint == unknownType {
		for i := range hints {
			hints[i] = unknownType
		}
		return hints
	}
	if elem := ArrayElementAnnotation(hint); elem != "" {
		for i := range hints {
			hints[i] = elem
		}
		return hints
	}
	if parts := splitTupleAnnotation(hint); len(parts) == count {
		copy(hints, parts)
	}
	return hints
}

// staticType returns the scalar type expr evaluates to in a context
// expecting hint, or unknownType when that depends on runtime values.
func staticType(s *scope, expr ast.Expression, hint string) string {
	switch n := expr.(type) {
	case *ast.IntegerLiteral:
		switch {
		case n.IntegerType != nil:
			return string(*n.IntegerType)
		case hint == "":
			return string(runtime.IntegerI32)
		case runtime.IntegerType(hint).Valid():
			return hint
		}
	case *ast.FloatLiteral:
		switch {
		case n.FloatType != nil:
			return string(*n.FloatType)
		case hint == "" || hint == string(runtime.FloatF64):
			return string(runtime.FloatF64)
		case hint == string(runtime.FloatF32):
			return hint
		}
	case *ast.StringLiteral:
		return "&str"
	case *ast.BooleanLiteral:
		return "bool"
	case *ast.CharLiteral:
		return "char"
	case *ast.Identifier:
		if sym, ok := s.lookup(n.Name); ok && sym.typ != "" {
			return sym.typ
		}
	case *ast.BinaryExpression:
		if isUntypedLiteral(n.Left) && !isUntypedLiteral(n.Right) {
			return staticType(s, n.Right, hint)
		}
		return staticType(s, n.Left, hint)
	}
	return unknownType
}

// bindingType is the type recorded for a binding, or "" when unknown.
func bindingType(s *scope, value ast.Expression, annotation string) string {
	if annotation != "" {
		return annotation
	}
	if value == nil {
		return ""
	}
	if typ := staticType(s, value, ""); typ != unknownType {
		return typ
	}
	return ""
}

func bigLen(n int) *big.Int {
	return big.NewInt(int64(n))
}

// shapeOf derives what is statically known about an expression's length.
func shapeOf(s *scope, expr ast.Expression, annotation string) symbol {
	switch n := expr.(type) {
	case *ast.ArrayLiteral:
		return symbol{shape: shapeArray, length: len(n.Elements)}
	case *ast.TupleLiteral:
		return symbol{shape: shapeTuple, length: len(n.Elements)}
	case *ast.Identifier:
		if sym, ok := s.lookup(n.Name); ok {
			return symbol{shape: sym.shape, length: sym.length}
		}
	}
	if length, ok := arrayAnnotationLength(annotation); ok {
		return symbol{shape: shapeArray, length: length}
	}
	if parts := splitTupleAnnotation(annotation); parts != nil {
		return symbol{shape: shapeTuple, length: len(parts)}
	}
	return symbol{}
}

func describeShape(sym symbol) string {
	switch sym.shape {
	case shapeArray:
		return fmt.Sprintf("array of length %d", sym.length)
	case shapeTuple:
		return fmt.Sprintf("tuple of length %d", sym.length)
	default:
		return "value"
	}
}

// arrayAnnotationLength reads N from "[T; N]".
func arrayAnnotationLength(annotation string) (int, bool) {
	if !strings.HasPrefix(annotation, "[") || !strings.HasSuffix(annotation, "]") {
		return 0, false
	}
	_, count, ok := strings.Cut(annotation[1:len(annotation)-1], ";")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ArrayElementAnnotation reads T from "[T; N]".
func ArrayElementAnnotation(annotation string) string {
	if !strings.HasPrefix(annotation, "[") {
		return ""
	}
	elem, _, ok := strings.Cut(annotation[1:], ";")
	if !ok {
		return ""
	}
	return strings.TrimSpace(elem)
}

// splitTupleAnnotation splits "(i32, f64, u8)" into its element types.
func splitTupleAnnotation(annotation string) []string {
	if !strings.HasPrefix(annotation, "(") || !strings.HasSuffix(annotation, ")") || annotation == "()" {
		return nil
	}
	inner := annotation[1 : len(annotation)-1]
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range inner {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(inner[start:]); last != "" {
		parts = append(parts, last)
	}
	return parts
}

// TupleAnnotations is splitTupleAnnotation for callers outside the package.
func TupleAnnotations(annotation string) []string {
	return splitTupleAnnotation(annotation)
}
