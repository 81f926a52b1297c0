package interpreter

import (
	"fmt"
	"strings"

	"syntaxlab/labs-go/pkg/checker"
)

// CheckError is returned when a program is rejected before it runs. No
// output has been written.
type CheckError struct {
	Program     string
	Diagnostics []checker.Diagnostic
}

func (e *CheckError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d error(s) before execution", e.Program, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		b.WriteString("\n  error: ")
		b.WriteString(d.Message)
	}
	return b.String()
}

// RuntimeError aborts a program at the point of failure. Lines written
// before the failure stay written.
type RuntimeError struct {
	Program string
	Err     error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: panicked: %v", e.Program, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }
