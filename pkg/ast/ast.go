package ast

import "math/big"

type NodeType string

const (
	NodeProgram              NodeType = "Program"
	NodeIdentifier           NodeType = "Identifier"
	NodeStringLiteral        NodeType = "StringLiteral"
	NodeIntegerLiteral       NodeType = "IntegerLiteral"
	NodeFloatLiteral         NodeType = "FloatLiteral"
	NodeBooleanLiteral       NodeType = "BooleanLiteral"
	NodeCharLiteral          NodeType = "CharLiteral"
	NodeArrayLiteral         NodeType = "ArrayLiteral"
	NodeTupleLiteral         NodeType = "TupleLiteral"
	NodeTuplePattern         NodeType = "TuplePattern"
	NodeBinaryExpression     NodeType = "BinaryExpression"
	NodeFunctionCall         NodeType = "FunctionCall"
	NodeBlockExpression      NodeType = "BlockExpression"
	NodeIndexExpression      NodeType = "IndexExpression"
	NodeTupleFieldExpression NodeType = "TupleFieldExpression"
	NodeLetStatement         NodeType = "LetStatement"
	NodeConstStatement       NodeType = "ConstStatement"
	NodeAssignmentStatement  NodeType = "AssignmentStatement"
	NodePrintStatement       NodeType = "PrintStatement"
	NodeFormatArgument       NodeType = "FormatArgument"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Pattern interface {
	Node
	patternNode()
}

type patternMarker struct{}

func (patternMarker) patternNode() {}

// Program is one lesson: a body run top to bottom in a fresh global scope.
type Program struct {
	nodeImpl

	Name string      `json:"name"`
	Body []Statement `json:"body"`
}

func NewProgram(name string, body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Name: name, Body: body}
}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker
	patternMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type IntegerType string

const (
	IntegerTypeI8    IntegerType = "i8"
	IntegerTypeI16   IntegerType = "i16"
	IntegerTypeI32   IntegerType = "i32"
	IntegerTypeI64   IntegerType = "i64"
	IntegerTypeI128  IntegerType = "i128"
	IntegerTypeIsize IntegerType = "isize"
	IntegerTypeU8    IntegerType = "u8"
	IntegerTypeU16   IntegerType = "u16"
	IntegerTypeU32   IntegerType = "u32"
	IntegerTypeU64   IntegerType = "u64"
	IntegerTypeU128  IntegerType = "u128"
	IntegerTypeUsize IntegerType = "usize"
)

type FloatType string

const (
	FloatTypeF32 FloatType = "f32"
	FloatTypeF64 FloatType = "f64"
)

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

// IntegerLiteral with a nil IntegerType takes its type from context.
type IntegerLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value       *big.Int     `json:"value"`
	IntegerType *IntegerType `json:"integerType,omitempty"`
}

func NewIntegerLiteral(value *big.Int, integerType *IntegerType) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value, IntegerType: integerType}
}

type FloatLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value     float64    `json:"value"`
	FloatType *FloatType `json:"floatType,omitempty"`
}

func NewFloatLiteral(value float64, floatType *FloatType) *FloatLiteral {
	return &FloatLiteral{nodeImpl: newNodeImpl(NodeFloatLiteral), Value: value, FloatType: floatType}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type CharLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value string `json:"value"`
}

func NewCharLiteral(value string) *CharLiteral {
	return &CharLiteral{nodeImpl: newNodeImpl(NodeCharLiteral), Value: value}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

type TupleLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Elements []Expression `json:"elements"`
}

func NewTupleLiteral(elements []Expression) *TupleLiteral {
	return &TupleLiteral{nodeImpl: newNodeImpl(NodeTupleLiteral), Elements: elements}
}

// Patterns

type TuplePattern struct {
	nodeImpl
	patternMarker

	Elements []Pattern `json:"elements"`
}

func NewTuplePattern(elements []Pattern) *TuplePattern {
	return &TuplePattern{nodeImpl: newNodeImpl(NodeTuplePattern), Elements: elements}
}

// Expressions

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type FunctionCall struct {
	nodeImpl
	expressionMarker
	statementMarker

	Callee    *Identifier  `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewFunctionCall(callee *Identifier, args []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Callee: callee, Arguments: args}
}

// BlockExpression opens a scope. Its value is Result, or () when Result is
// nil: every statement in Body has its value discarded.
type BlockExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Body   []Statement `json:"body"`
	Result Expression  `json:"result,omitempty"`
}

func NewBlockExpression(body []Statement, result Expression) *BlockExpression {
	return &BlockExpression{nodeImpl: newNodeImpl(NodeBlockExpression), Body: body, Result: result}
}

type IndexExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
}

func NewIndexExpression(object, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index}
}

type TupleFieldExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Object Expression `json:"object"`
	Field  int        `json:"field"`
}

func NewTupleFieldExpression(object Expression, field int) *TupleFieldExpression {
	return &TupleFieldExpression{nodeImpl: newNodeImpl(NodeTupleFieldExpression), Object: object, Field: field}
}

// Statements

// LetStatement binds Pattern in the current scope. TypeAnnotation, when
// set, fixes the type of untyped literals ("f32", "[i32; 5]", "(i32, f64, u8)").
type LetStatement struct {
	nodeImpl
	statementMarker

	Pattern        Pattern    `json:"pattern"`
	Mutable        bool       `json:"mutable"`
	TypeAnnotation string     `json:"typeAnnotation,omitempty"`
	Value          Expression `json:"value"`
}

func NewLetStatement(pattern Pattern, mutable bool, typeAnnotation string, value Expression) *LetStatement {
	return &LetStatement{nodeImpl: newNodeImpl(NodeLetStatement), Pattern: pattern, Mutable: mutable, TypeAnnotation: typeAnnotation, Value: value}
}

type ConstStatement struct {
	nodeImpl
	statementMarker

	Name           *Identifier `json:"name"`
	TypeAnnotation string      `json:"typeAnnotation"`
	Value          Expression  `json:"value"`
}

func NewConstStatement(name *Identifier, typeAnnotation string, value Expression) *ConstStatement {
	return &ConstStatement{nodeImpl: newNodeImpl(NodeConstStatement), Name: name, TypeAnnotation: typeAnnotation, Value: value}
}

type AssignmentStatement struct {
	nodeImpl
	statementMarker

	Target *Identifier `json:"target"`
	Value  Expression  `json:"value"`
}

func NewAssignmentStatement(target *Identifier, value Expression) *AssignmentStatement {
	return &AssignmentStatement{nodeImpl: newNodeImpl(NodeAssignmentStatement), Target: target, Value: value}
}

// FormatArgument is one argument to a print; Name is empty for positional ones.
type FormatArgument struct {
	nodeImpl

	Name  string     `json:"name,omitempty"`
	Value Expression `json:"value"`
}

func NewFormatArgument(name string, value Expression) *FormatArgument {
	return &FormatArgument{nodeImpl: newNodeImpl(NodeFormatArgument), Name: name, Value: value}
}

type PrintStatement struct {
	nodeImpl
	statementMarker

	Template  string            `json:"template"`
	Arguments []*FormatArgument `json:"arguments"`
	Newline   bool              `json:"newline"`
}

func NewPrintStatement(template string, args []*FormatArgument, newline bool) *PrintStatement {
	return &PrintStatement{nodeImpl: newNodeImpl(NodePrintStatement), Template: template, Arguments: args, Newline: newline}
}
