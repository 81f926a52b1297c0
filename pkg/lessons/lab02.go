package lessons

import "syntaxlab/labs-go/pkg/ast"

func init() {
	register(Lesson{
		Name:    "lab02/formatting",
		Title:   "Positional and named arguments, radix, width, fill and alignment",
		Program: formattingProgram,
		Expected: "31 days\n" +
			"Alice, this is Bob. Bob, this is Alice.\n" +
			"the quick brown fox - jumps over, the lazy dog\n" +
			"Base 10:                 69420\n" +
			"Base 2 (binary):         10000111100101100\n" +
			"Base 8 (octal):          207454\n" +
			"Base 16 (hexadecimal):   10f2c\n" +
			"Base 16 (hexadecimal):   10F2C\n" +
			"  123\n" +
			"123  \n" +
			"10000\n" +
			"00001\n" +
			"000123\n" +
			"    1\n",
	})
	register(Lesson{
		Name:    "lab02/format-flags",
		Title:   "Signs, precision, prefixes, centring and debug output",
		Program: formatFlagsProgram,
		Expected: "   mid   |\n" +
			"+5\n" +
			"3.14\n" +
			"   2.500|\n" +
			"0xff 0b101\n" +
			"0x000000ff\n" +
			"ff\n" +
			"1.2345e3\n" +
			"1.000\n" +
			"   7\n" +
			"\"quoted\" 'c'\n" +
			"(1, 2.0, 'x')\n" +
			"(\n    1,\n    \"two\",\n)\n" +
			"{escaped} 1\n",
	})
	register(Lesson{
		Name:    "lab02/freezing",
		Title:   "Shadowing a mutable binding with an immutable one freezes it in that scope",
		Program: freezingProgram,
		Expected: "_mutable_integer = 7\n" +
			"_mutable_integer = 7\n" +
			"_mutable_integer = 3\n",
	})
	register(Lesson{
		Name:    "lab02/block-expressions",
		Title:   "A block's value is its final expression, or () after a semicolon",
		Program: blockExpressionsProgram,
		Expected: "x is 5\n" +
			"y is 155\n" +
			"z is ()\n",
	})
	register(Lesson{
		Name:          "lab02/invalid-reference",
		Title:         "A placeholder without a matching argument is rejected before anything prints",
		Program:       invalidReferenceProgram,
		Expected:      "",
		Outcome:       FailsCheck,
		ErrorContains: "invalid reference to positional argument 2 (there are 2 arguments)",
	})
}

func formattingProgram() *ast.Program {
	return ast.Prog("lab02/formatting",
		ast.Println("{} days", ast.Arg(ast.Int(31))),
		ast.Println("{0}, this is {1}. {1}, this is {0}.", ast.Arg(ast.Str("Alice")), ast.Arg(ast.Str("Bob"))),
		ast.Println("{subject} - {verb}, {object}",
			ast.NamedArg("object", ast.Str("the lazy dog")),
			ast.NamedArg("subject", ast.Str("the quick brown fox")),
			ast.NamedArg("verb", ast.Str("jumps over")),
		),

		ast.Println("Base 10:                 {}", ast.Arg(ast.Int(69420))),
		ast.Println("Base 2 (binary):         {:b}", ast.Arg(ast.Int(69420))),
		ast.Println("Base 8 (octal):          {:o}", ast.Arg(ast.Int(69420))),
		ast.Println("Base 16 (hexadecimal):   {:x}", ast.Arg(ast.Int(69420))),
		ast.Println("Base 16 (hexadecimal):   {:X}", ast.Arg(ast.Int(69420))),

		ast.Println("{number:>5}", ast.NamedArg("number", ast.Int(123))),
		ast.Println("{number:<5}", ast.NamedArg("number", ast.Int(123))),
		ast.Println("{number:0<5}", ast.NamedArg("number", ast.Int(1))),
		ast.Println("{number:0>5}", ast.NamedArg("number", ast.Int(1))),
		ast.Println("{number:0>width$}",
			ast.NamedArg("number", ast.Int(123)),
			ast.NamedArg("width", ast.IntTyped(6, ast.IntegerTypeUsize)),
		),

		ast.LetTyped("number", "f64", ast.Flt(1.0)),
		ast.LetTyped("width", "usize", ast.Int(5)),
		ast.Println("{number:>width$}"),
	)
}

func formatFlagsProgram() *ast.Program {
	return ast.Prog("lab02/format-flags",
		ast.Println("{:^9}|", ast.Arg(ast.Str("mid"))),
		ast.Println("{:+}", ast.Arg(ast.Int(5))),
		ast.Println("{:.2}", ast.Arg(ast.Flt(3.14159))),
		ast.Println("{:8.3}|", ast.Arg(ast.Flt(2.5))),
		ast.Println("{:#x} {:#b}", ast.Arg(ast.Int(255)), ast.Arg(ast.Int(5))),
		ast.Println("{:#010x}", ast.Arg(ast.Int(255))),
		ast.Println("{:x}", ast.Arg(ast.IntTyped(-1, ast.IntegerTypeI8))),
		ast.Println("{:e}", ast.Arg(ast.Flt(1234.5))),
		ast.Println("{:.*}", ast.Arg(ast.IntTyped(3, ast.IntegerTypeUsize)), ast.Arg(ast.Flt(1.0))),
		ast.Println("{:>1$}", ast.Arg(ast.Int(7)), ast.Arg(ast.IntTyped(4, ast.IntegerTypeUsize))),
		ast.Println("{:?} {:?}", ast.Arg(ast.Str("quoted")), ast.Arg(ast.Chr("c"))),
		ast.Let("mixed", ast.Tup(ast.Int(1), ast.Flt(2.0), ast.Chr("x"))),
		ast.Println("{mixed:?}"),
		ast.Println("{:#?}", ast.Arg(ast.Tup(ast.Int(1), ast.Str("two")))),
		ast.Println("{{escaped}} {}", ast.Arg(ast.Int(1))),
	)
}

func freezingProgram() *ast.Program {
	return ast.Prog("lab02/freezing",
		ast.LetMut("_mutable_integer", ast.IntTyped(7, ast.IntegerTypeI32)),
		ast.Println("_mutable_integer = {}", ast.Arg(ast.ID("_mutable_integer"))),
		ast.Block(nil,
			ast.Let("_mutable_integer", ast.ID("_mutable_integer")),
			ast.Println("_mutable_integer = {}", ast.Arg(ast.ID("_mutable_integer"))),
		),
		ast.Assign("_mutable_integer", ast.Int(3)),
		ast.Println("_mutable_integer = {}", ast.Arg(ast.ID("_mutable_integer"))),
	)
}

func blockExpressionsProgram() *ast.Program {
	return ast.Prog("lab02/block-expressions",
		ast.Let("x", ast.IntTyped(5, ast.IntegerTypeU32)),
		ast.Let("y", ast.Block(
			ast.Bin("+", ast.Bin("+", ast.ID("x_cube"), ast.ID("x_squared")), ast.ID("x")),
			ast.Let("x_squared", ast.Bin("*", ast.ID("x"), ast.ID("x"))),
			ast.Let("x_cube", ast.Bin("*", ast.ID("x_squared"), ast.ID("x"))),
		)),
		ast.Let("z", ast.Block(nil,
			ast.Bin("*", ast.Int(2), ast.ID("x")),
		)),
		ast.Println("x is {:?}", ast.Arg(ast.ID("x"))),
		ast.Println("y is {:?}", ast.Arg(ast.ID("y"))),
		ast.Println("z is {:?}", ast.Arg(ast.ID("z"))),
	)
}

func invalidReferenceProgram() *ast.Program {
	return ast.Prog("lab02/invalid-reference",
		ast.Println("this line is never printed"),
		ast.Println("{0}, this is {1}. {1}, this is {2}.", ast.Arg(ast.Str("Alice")), ast.Arg(ast.Str("Bob"))),
	)
}
