package ast

import "math/big"

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(big.NewInt(value), nil)
}

func IntTyped(value int64, integerType IntegerType) *IntegerLiteral {
	return NewIntegerLiteral(big.NewInt(value), &integerType)
}

func IntBig(value *big.Int, integerType IntegerType) *IntegerLiteral {
	return NewIntegerLiteral(new(big.Int).Set(value), &integerType)
}

func Flt(value float64) *FloatLiteral {
	return NewFloatLiteral(value, nil)
}

func FltTyped(value float64, floatType FloatType) *FloatLiteral {
	return NewFloatLiteral(value, &floatType)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Chr(value string) *CharLiteral {
	return NewCharLiteral(value)
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

func Tup(elements ...Expression) *TupleLiteral {
	return NewTupleLiteral(elements)
}

// Expression helpers.

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Call(name string, args ...Expression) *FunctionCall {
	return NewFunctionCall(ID(name), args)
}

func Index(object, index Expression) *IndexExpression {
	return NewIndexExpression(object, index)
}

func Field(object Expression, field int) *TupleFieldExpression {
	return NewTupleFieldExpression(object, field)
}

// Block builds a block whose value is result (nil for unit).
func Block(result Expression, body ...Statement) *BlockExpression {
	return NewBlockExpression(body, result)
}

// Statement helpers.

func Let(name string, value Expression) *LetStatement {
	return NewLetStatement(ID(name), false, "", value)
}

func LetMut(name string, value Expression) *LetStatement {
	return NewLetStatement(ID(name), true, "", value)
}

func LetTyped(name, typeAnnotation string, value Expression) *LetStatement {
	return NewLetStatement(ID(name), false, typeAnnotation, value)
}

func LetTuple(names []string, value Expression) *LetStatement {
	elements := make([]Pattern, 0, len(names))
	for _, name := range names {
		elements = append(elements, ID(name))
	}
	return NewLetStatement(NewTuplePattern(elements), false, "", value)
}

func Const(name, typeAnnotation string, value Expression) *ConstStatement {
	return NewConstStatement(ID(name), typeAnnotation, value)
}

func Assign(name string, value Expression) *AssignmentStatement {
	return NewAssignmentStatement(ID(name), value)
}

func Arg(value Expression) *FormatArgument {
	return NewFormatArgument("", value)
}

func NamedArg(name string, value Expression) *FormatArgument {
	return NewFormatArgument(name, value)
}

func Println(template string, args ...*FormatArgument) *PrintStatement {
	return NewPrintStatement(template, args, true)
}

func Print(template string, args ...*FormatArgument) *PrintStatement {
	return NewPrintStatement(template, args, false)
}

func Prog(name string, body ...Statement) *Program {
	return NewProgram(name, body)
}
