package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"syntaxlab/labs-go/pkg/interpreter"
	"syntaxlab/labs-go/pkg/lessons"
)

func runList(sess *session, args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "list takes no arguments")
		return 1
	}
	for _, lesson := range lessons.All() {
		line := fmt.Sprintf("%-26s %s", lesson.Name, lesson.Title)
		if lesson.Outcome != lessons.Succeeds {
			line += " " + sess.palette.muted.Render("("+lesson.Outcome.String()+")")
		}
		fmt.Fprintln(os.Stdout, line)
	}
	return 0
}

func runLessons(sess *session, args []string) int {
	names, err := lessonArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interp := interpreter.New()
	code := 0
	for i, name := range names {
		lesson, ok := lessons.Lookup(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown lesson %q (see `syntaxlab list`)\n", name)
			code = firstFailure(code, 1)
			continue
		}
		if len(names) > 1 {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			fmt.Fprintln(os.Stdout, sess.palette.title.Render("== "+lesson.Name+" =="))
		}
		err := interp.Run(ctx, lesson.Program(), os.Stdout)
		if err == nil {
			continue
		}
		fmt.Fprintln(os.Stderr, sess.palette.err.Render("error: "+err.Error()))
		code = firstFailure(code, exitCode(err))
		if ctx.Err() != nil {
			break
		}
	}
	return code
}

func lessonArgs(args []string) ([]string, error) {
	if len(args) == 1 && args[0] == "--all" {
		return lessons.Names(), nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("run expects lesson names or --all")
	}
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("unknown run flag %q", arg)
		}
	}
	return args, nil
}

func exitCode(err error) int {
	var rt *interpreter.RuntimeError
	if errors.As(err, &rt) {
		return exitPanicked
	}
	return 1
}

func firstFailure(current, next int) int {
	if current != 0 {
		return current
	}
	return next
}

func runVerify(sess *session, args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "verify takes no arguments; list lessons in the manifest instead")
		return 1
	}
	names, err := sess.manifest.SelectLessons(lessons.Names())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interp := interpreter.New()
	passed, failed := 0, 0
	for _, name := range names {
		lesson, _ := lessons.Lookup(name)
		var out bytes.Buffer
		runErr := interp.Run(ctx, lesson.Program(), &out)
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, ctx.Err())
			return 1
		}
		if problem := verifyLesson(lesson, out.String(), runErr); problem != "" {
			failed++
			sess.log.Info("lesson failed", zap.String("lesson", name), zap.String("problem", problem))
			fmt.Fprintf(os.Stdout, "%s %s: %s\n", sess.palette.fail.Render("FAIL"), name, problem)
			continue
		}
		passed++
		fmt.Fprintf(os.Stdout, "%s %s\n", sess.palette.pass.Render("PASS"), name)
	}
	fmt.Fprintf(os.Stdout, "%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

// verifyLesson describes how a run differs from what the lesson expects, or
// returns "" when it matches.
func verifyLesson(lesson lessons.Lesson, got string, err error) string {
	var checkErr *interpreter.CheckError
	var rtErr *interpreter.RuntimeError
	switch lesson.Outcome {
	case lessons.Succeeds:
		if err != nil {
			return "unexpected error: " + err.Error()
		}
	case lessons.FailsCheck:
		if !errors.As(err, &checkErr) {
			return fmt.Sprintf("expected a check error, got %v", err)
		}
	case lessons.Panics:
		if !errors.As(err, &rtErr) {
			return fmt.Sprintf("expected a runtime panic, got %v", err)
		}
	}
	if lesson.ErrorContains != "" && (err == nil || !strings.Contains(err.Error(), lesson.ErrorContains)) {
		return fmt.Sprintf("error %v does not mention %q", err, lesson.ErrorContains)
	}
	if got != lesson.Expected {
		return fmt.Sprintf("output differs\n--- got ---\n%s--- want ---\n%s", got, lesson.Expected)
	}
	return ""
}
