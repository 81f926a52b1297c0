// Package interpreter runs lesson programs: it checks a program, then
// evaluates it statement by statement over a stack of scope frames, writing
// every print through the format emitter.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"syntaxlab/labs-go/pkg/ast"
	"syntaxlab/labs-go/pkg/checker"
	"syntaxlab/labs-go/pkg/format"
	"syntaxlab/labs-go/pkg/runtime"
)

// Interpreter evaluates programs. One interpreter may run many programs in
// sequence; each run gets a fresh global scope.
type Interpreter struct {
	natives   map[string]runtime.NativeFunctionValue
	skipCheck bool
	log       *zap.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger routes run events to l instead of the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(i *Interpreter) {
		i.log = l
	}
}

// WithoutCheck skips the static pass. Errors it would have caught surface at
// runtime instead.
func WithoutCheck() Option {
	return func(i *Interpreter) {
		i.skipCheck = true
	}
}

// WithNative registers an extra native function.
func WithNative(fn runtime.NativeFunctionValue) Option {
	return func(i *Interpreter) {
		i.natives[fn.Name] = fn
	}
}

// New returns an interpreter with the built-in natives registered.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{natives: builtinNatives()}
	for _, opt := range opts {
		opt(i)
	}
	if i.log == nil {
		i.log = Logger()
	}
	return i
}

// Check runs the static pass alone.
func (i *Interpreter) Check(program *ast.Program) error {
	functions := make(map[string]int, len(i.natives))
	for name, fn := range i.natives {
		functions[name] = fn.Arity
	}
	diags, err := checker.NewWithFunctions(functions).CheckProgram(program)
	if err != nil {
		return err
	}
	if len(diags) > 0 {
		return &CheckError{Program: program.Name, Diagnostics: diags}
	}
	return nil
}

// Run checks program and then evaluates it, writing output to w. A program
// that fails the check writes nothing.
func (i *Interpreter) Run(ctx context.Context, program *ast.Program, w io.Writer) error {
	if program == nil {
		return fmt.Errorf("interpreter: program is nil")
	}
	log := i.log.With(zap.String("program", program.Name))
	if !i.skipCheck {
		if err := i.Check(program); err != nil {
			log.Debug("check failed", zap.Error(err))
			return err
		}
	}
	state := &execution{
		interp:  i,
		ctx:     ctx,
		out:     w,
		emitter: format.NewEmitter(w),
	}
	global := runtime.NewEnvironment(nil)
	for idx, stmt := range program.Body {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := state.evaluateStatement(stmt, global); err != nil {
			log.Debug("run aborted", zap.Int("statement", idx), zap.Error(err))
			var rt *RuntimeError
			if errors.As(err, &rt) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return &RuntimeError{Program: program.Name, Err: err}
		}
	}
	log.Debug("run finished", zap.Int("statements", len(program.Body)))
	return nil
}

// execution holds the state of one Run.
type execution struct {
	interp  *Interpreter
	ctx     context.Context
	out     io.Writer
	emitter *format.Emitter
}
