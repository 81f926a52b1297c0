package lessons

import "syntaxlab/labs-go/pkg/ast"

func init() {
	register(Lesson{
		Name:    "lab01/variables",
		Title:   "Immutable and mutable bindings, constants, shadowing and block scope",
		Program: variablesProgram,
		Expected: `The value of x is: 5
The value of y is: 6
The value of y is: 100
PI = 3.14
The value of z is: 100
The value of z is: 99
The value of z is: 888
The value of z is: 99
Value is: 7
`,
	})
	register(Lesson{
		Name:    "lab01/data-types",
		Title:   "Scalar types, tuples and arrays",
		Program: dataTypesProgram,
		Expected: "x is 2 with data-type is f64\n" +
			"y is 3 with data-type is f32\n" +
			"sum is 15 with data-type is i32\n" +
			"difference is 91.2 with data-type is f64\n" +
			"product is 120 with data-type is i32\n" +
			"remainder is 3 with data-type is i32\n" +
			"t is true with data-type is bool\n" +
			"f is false with data-type is bool\n" +
			"c is z with data-type is char\n" +
			"z is Z with data-type is char\n" +
			"heart_eyed_cat is \U0001F640 with data-type is char\n" +
			"k is 500 with data-type is i32\n" +
			"m is 6.4 with data-type is f64\n" +
			"l is 1 with data-type is u8\n" +
			"First item of tuple at index(0) 500\n" +
			"Second item of tuple at index(1) 6.4\n" +
			"Third item of tuple at index(2) 1\n" +
			"1\t2\t3\t4\t5\t\n" +
			"first is 1 with data-type is i32\n" +
			"second is 2 with data-type is i32\n",
	})
	register(Lesson{
		Name:          "lab01/out-of-bounds",
		Title:         "Indexing past the end of an array stops the program",
		Program:       outOfBoundsProgram,
		Expected:      "arr[0] is 1\nlen is 5\n",
		Outcome:       Panics,
		ErrorContains: "index out of bounds: the len is 5 but the index is 5",
	})
}

func variablesProgram() *ast.Program {
	return ast.Prog("lab01/variables",
		ast.Let("x", ast.Int(5)),
		ast.Println("The value of x is: {x}"),

		ast.LetMut("y", ast.Int(6)),
		ast.Println("The value of y is: {y}"),
		ast.Assign("y", ast.Int(100)),
		ast.Println("The value of y is: {y}"),

		ast.Const("PI", "f32", ast.Flt(3.14)),
		ast.Println("PI = {PI}"),

		ast.Let("z", ast.Int(100)),
		ast.Println("The value of z is: {z}"),
		ast.Let("z", ast.Int(99)),
		ast.Println("The value of z is: {z}"),
		ast.Block(nil,
			ast.Let("z", ast.Int(888)),
			ast.Println("The value of z is: {z}"),
		),
		ast.Println("The value of z is: {z}"),

		ast.Let("value", ast.Str("abc def")),
		ast.Let("value", ast.Call("len", ast.ID("value"))),
		ast.Println("Value is: {value}"),
	)
}

func typed(name string) *ast.FormatArgument {
	return ast.Arg(ast.Call("type_of", ast.ID(name)))
}

func dataTypesProgram() *ast.Program {
	return ast.Prog("lab01/data-types",
		ast.Let("x", ast.Flt(2.0)),
		ast.Println("x is {x} with data-type is {}", typed("x")),
		ast.LetTyped("y", "f32", ast.Flt(3.0)),
		ast.Println("y is {y} with data-type is {}", typed("y")),

		ast.Let("sum", ast.Bin("+", ast.Int(5), ast.Int(10))),
		ast.Println("sum is {sum} with data-type is {}", typed("sum")),
		ast.Let("difference", ast.Bin("-", ast.Flt(95.5), ast.Flt(4.3))),
		ast.Println("difference is {difference} with data-type is {}", typed("difference")),
		ast.Let("product", ast.Bin("*", ast.Int(4), ast.Int(30))),
		ast.Println("product is {product} with data-type is {}", typed("product")),
		ast.Let("remainder", ast.Bin("%", ast.Int(43), ast.Int(5))),
		ast.Println("remainder is {remainder} with data-type is {}", typed("remainder")),

		ast.Let("t", ast.Bool(true)),
		ast.Println("t is {t} with data-type is {}", typed("t")),
		ast.LetTyped("f", "bool", ast.Bool(false)),
		ast.Println("f is {f} with data-type is {}", typed("f")),

		ast.Let("c", ast.Chr("z")),
		ast.Println("c is {c} with data-type is {}", typed("c")),
		ast.LetTyped("z", "char", ast.Chr("Z")),
		ast.Println("z is {z} with data-type is {}", typed("z")),
		ast.Let("heart_eyed_cat", ast.Chr("\U0001F640")),
		ast.Println("heart_eyed_cat is {heart_eyed_cat} with data-type is {}", typed("heart_eyed_cat")),

		ast.LetTyped("tup", "(i32, f64, u8)", ast.Tup(ast.Int(500), ast.Flt(6.4), ast.Int(1))),
		ast.LetTuple([]string{"k", "m", "l"}, ast.ID("tup")),
		ast.Println("k is {k} with data-type is {}", typed("k")),
		ast.Println("m is {m} with data-type is {}", typed("m")),
		ast.Println("l is {l} with data-type is {}", typed("l")),
		ast.Println("First item of tuple at index(0) {}", ast.Arg(ast.Field(ast.ID("tup"), 0))),
		ast.Println("Second item of tuple at index(1) {}", ast.Arg(ast.Field(ast.ID("tup"), 1))),
		ast.Println("Third item of tuple at index(2) {}", ast.Arg(ast.Field(ast.ID("tup"), 2))),

		ast.Let("ar", ast.Arr(ast.Int(1), ast.Int(2), ast.Int(3), ast.Int(4), ast.Int(5))),
		ast.Call("print_array", ast.ID("ar")),
		ast.Let("_num", ast.Arr(ast.Str("one"), ast.Str("two"), ast.Str("three"), ast.Str("four"), ast.Str("five"))),

		ast.LetTyped("arr", "[i32; 5]", ast.Arr(ast.Int(1), ast.Int(2), ast.Int(3), ast.Int(4), ast.Int(5))),
		ast.Let("first", ast.Index(ast.ID("arr"), ast.Int(0))),
		ast.Println("first is {first} with data-type is {}", typed("first")),
		ast.Let("second", ast.Index(ast.ID("arr"), ast.Int(1))),
		ast.Println("second is {second} with data-type is {}", typed("second")),
	)
}

func outOfBoundsProgram() *ast.Program {
	return ast.Prog("lab01/out-of-bounds",
		ast.Let("arr", ast.Arr(ast.Int(1), ast.Int(2), ast.Int(3), ast.Int(4), ast.Int(5))),
		ast.Println("arr[0] is {}", ast.Arg(ast.Index(ast.ID("arr"), ast.Int(0)))),
		ast.Let("index", ast.Call("len", ast.ID("arr"))),
		ast.Println("len is {index}"),
		ast.Println("arr[{index}] is {}", ast.Arg(ast.Index(ast.ID("arr"), ast.ID("index")))),
		ast.Println("unreachable"),
	)
}
