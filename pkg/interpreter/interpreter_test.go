package interpreter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"syntaxlab/labs-go/pkg/ast"
	"syntaxlab/labs-go/pkg/runtime"
)

func runProgram(t *testing.T, program *ast.Program, opts ...Option) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := New(opts...).Run(context.Background(), program, &out)
	return out.String(), err
}

func mustRun(t *testing.T, program *ast.Program) string {
	t.Helper()
	out, err := runProgram(t, program)
	if err != nil {
		t.Fatalf("Run(%s): %v", program.Name, err)
	}
	return out
}

func TestRunShadowingAndBlocks(t *testing.T) {
	out := mustRun(t, ast.Prog("shadow",
		ast.Let("z", ast.Int(99)),
		ast.Block(nil,
			ast.Let("z", ast.Int(888)),
			ast.Println("inner {z}"),
		),
		ast.Println("outer {z}"),
		ast.Let("value", ast.Str("abc def")),
		ast.Let("value", ast.Call("len", ast.ID("value"))),
		ast.Println("{value} {}", ast.Arg(ast.Call("type_of", ast.ID("value")))),
	))
	want := "inner 888\nouter 99\n7 usize\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRunBlockValues(t *testing.T) {
	out := mustRun(t, ast.Prog("blocks",
		ast.Let("x", ast.IntTyped(5, ast.IntegerTypeU32)),
		ast.Let("y", ast.Block(
			ast.Bin("+", ast.Bin("+", ast.ID("cube"), ast.ID("sq")), ast.ID("x")),
			ast.Let("sq", ast.Bin("*", ast.ID("x"), ast.ID("x"))),
			ast.Let("cube", ast.Bin("*", ast.ID("sq"), ast.ID("x"))),
		)),
		ast.Let("z", ast.Block(nil, ast.Bin("*", ast.Int(2), ast.ID("x")))),
		ast.Println("{:?} {:?} {:?} {}", ast.Arg(ast.ID("x")), ast.Arg(ast.ID("y")), ast.Arg(ast.ID("z")), ast.Arg(ast.Call("type_of", ast.ID("y")))),
	))
	if out != "5 155 () u32\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestRunTypeAnnotations(t *testing.T) {
	out := mustRun(t, ast.Prog("types",
		ast.LetTyped("y", "f32", ast.Flt(3.0)),
		ast.Const("PI", "f32", ast.Flt(3.14)),
		ast.LetTyped("tup", "(i32, f64, u8)", ast.Tup(ast.Int(500), ast.Flt(6.4), ast.Int(1))),
		ast.LetTuple([]string{"k", "m", "l"}, ast.ID("tup")),
		ast.LetTyped("arr", "[i32; 3]", ast.Arr(ast.Int(1), ast.Int(2), ast.Int(3))),
		ast.Println("{y} {PI} {} {} {}", ast.Arg(ast.Call("type_of", ast.ID("k"))), ast.Arg(ast.Call("type_of", ast.ID("m"))), ast.Arg(ast.Call("type_of", ast.ID("l")))),
		ast.Println("{} {}", ast.Arg(ast.Field(ast.ID("tup"), 2)), ast.Arg(ast.Call("type_of", ast.ID("arr")))),
	))
	want := "3 3.14 i32 f64 u8\n1 [i32; 3]\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}

	_, err := runProgram(t, ast.Prog("mismatch", ast.LetTyped("n", "u8", ast.Flt(1.5))))
	if !errors.Is(err, runtime.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestRunPrintArray(t *testing.T) {
	out := mustRun(t, ast.Prog("arrays",
		ast.Let("ar", ast.Arr(ast.Int(1), ast.Int(2), ast.Int(3))),
		ast.Call("print_array", ast.ID("ar")),
		ast.Print("no newline"),
	))
	if out != "1\t2\t3\t\nno newline" {
		t.Fatalf("output = %q", out)
	}
}

func TestRunCheckErrorWritesNothing(t *testing.T) {
	out, err := runProgram(t, ast.Prog("bad",
		ast.Println("first line"),
		ast.Println("{0} {1}", ast.Arg(ast.Str("only"))),
	))
	var checkErr *CheckError
	if !errors.As(err, &checkErr) {
		t.Fatalf("expected CheckError, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
	if len(checkErr.Diagnostics) != 1 || !strings.Contains(checkErr.Error(), "positional argument 1") {
		t.Fatalf("unexpected diagnostics: %v", checkErr)
	}
}

func TestRunRuntimeErrorKeepsEarlierOutput(t *testing.T) {
	out, err := runProgram(t, ast.Prog("oob",
		ast.Let("arr", ast.Arr(ast.Int(1), ast.Int(2))),
		ast.Println("before"),
		ast.LetTyped("i", "usize", ast.Bin("+", ast.Int(1), ast.Int(1))),
		ast.Println("{}", ast.Arg(ast.Index(ast.ID("arr"), ast.ID("i")))),
		ast.Println("after"),
	))
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	var idxErr *runtime.IndexError
	if !errors.As(err, &idxErr) || idxErr.Len != 2 || idxErr.Index != 2 {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if !strings.Contains(err.Error(), "panicked: index out of bounds: the len is 2 but the index is 2") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if out != "before\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestRunOverflowIsRuntimeError(t *testing.T) {
	_, err := runProgram(t, ast.Prog("overflow",
		ast.Let("a", ast.IntTyped(200, ast.IntegerTypeU8)),
		ast.Let("b", ast.Bin("+", ast.ID("a"), ast.ID("a"))),
	))
	if !errors.Is(err, runtime.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestRunImmutableAssignmentWithoutCheck(t *testing.T) {
	_, err := runProgram(t, ast.Prog("frozen",
		ast.LetMut("n", ast.Int(7)),
		ast.Block(nil,
			ast.Let("n", ast.ID("n")),
			ast.Assign("n", ast.Int(50)),
		),
	), WithoutCheck())
	if !errors.Is(err, runtime.ErrImmutableAssign) {
		t.Fatalf("expected ErrImmutableAssign, got %v", err)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := New().Run(ctx, ast.Prog("cancelled", ast.Println("never")), &out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestWithNativeAndLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	shout := runtime.NativeFunctionValue{
		Name:  "shout",
		Arity: 1,
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			s, _ := args[0].(runtime.StringValue)
			return runtime.StringValue{Val: strings.ToUpper(s.Val)}, nil
		},
	}
	out, err := runProgram(t, ast.Prog("custom",
		ast.Println("{}", ast.Arg(ast.Call("shout", ast.Str("hi")))),
	), WithNative(shout), WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "HI\n" {
		t.Fatalf("output = %q", out)
	}
	if logs.FilterMessage("run finished").Len() != 1 {
		t.Fatalf("expected a run finished log entry, got %v", logs.All())
	}
}

func TestRunRejectsOutOfRangeLiteralBeforeOutput(t *testing.T) {
	out, err := runProgram(t, ast.Prog("overflow",
		ast.Println("first line"),
		ast.Let("x", ast.Int(3000000000)),
		ast.Println("{x}"),
	))
	var checkErr *CheckError
	if !errors.As(err, &checkErr) {
		t.Fatalf("expected CheckError, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
	if !strings.Contains(checkErr.Error(), "literal out of range for `i32`") {
		t.Fatalf("unexpected diagnostics: %v", checkErr)
	}
}
