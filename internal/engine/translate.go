package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// defaultScriptName labels evaluated snippets inside the guest when the
// caller supplies no filename. Matches the guest engine's own convention.
const defaultScriptName = "<eval>"

// evaluatedScriptLabel replaces guest-internal frame labels in backtraces
// surfaced to callers.
const evaluatedScriptLabel = "(evaluated script)"

// translateGuestError maps a failure raised by the guest runtime into the
// bridge taxonomy. Errors that did not come from the guest pass through
// unmodified.
func translateGuestError(err error) error {
	if err == nil {
		return nil
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return newError(ScriptTerminated, "JavaScript execution was terminated")
	}

	var overflow *goja.StackOverflowError
	if errors.As(err, &overflow) {
		return newError(RuntimeError, "%s", strings.TrimSpace(overflow.Error()))
	}

	var syntax *goja.CompilerSyntaxError
	if errors.As(err, &syntax) {
		return newError(ParseError, "%s", firstLine(syntax.Error()))
	}

	var exc *goja.Exception
	if errors.As(err, &exc) {
		msg := firstLine(exc.Error())
		kind := RuntimeError
		if strings.HasPrefix(msg, "SyntaxError") {
			kind = ParseError
		}
		return &Error{Kind: kind, Message: msg, Backtrace: backtraceOf(exc)}
	}

	return err
}

// backtraceOf renders the guest stack with internal source labels rewritten
// to the evaluated-script label.
func backtraceOf(exc *goja.Exception) []string {
	stack := exc.Stack()
	trace := make([]string, 0, len(stack))
	for i := range stack {
		frame := &stack[i]
		src := frame.SrcName()
		if src == defaultScriptName {
			src = evaluatedScriptLabel
		}
		pos := frame.Position()
		trace = append(trace, fmt.Sprintf("at %s (%s:%d:%d)", frame.FuncName(), src, pos.Line, pos.Column))
	}
	return trace
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
