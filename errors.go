// errors.go: structured diagnostics and caret-snippet rendering.
//
// Every failure mode the engine can surface (spec §7) gets its own exported
// type so a host can `errors.As` for the kind it cares about. LexError and
// ParseError carry a 1-based Line/Col; Snippet renders a Python-style
// caret-annotated excerpt of the offending source, the way the teacher's
// WrapErrorWithSource does.
//
// Call sites that need to attach extra context without losing the underlying
// structured type wrap with github.com/pkg/errors, whose Wrap/Cause pair
// plays well with errors.As because it preserves the wrapped error chain.
package lumen

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// LexError reports malformed input at the token level: an unterminated
// string/char/comment, or a character the lexer does not recognize.
type LexError struct {
	Line, Col int
	Msg       string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEX ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ParseError reports a malformed token stream: an unexpected token, a
// missing closing delimiter, or an expression shape that cannot be used as
// an lvalue.
type ParseError struct {
	Line, Col int
	Msg       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// UnboundNameError reports an identifier that is neither bound in scope nor
// resolvable as a registry function name.
type UnboundNameError struct {
	Name string
}

func (e *UnboundNameError) Error() string { return fmt.Sprintf("unbound name: %s", e.Name) }

// FunctionNotFoundError reports a call whose argument-type signature has no
// matching registry overload.
type FunctionNotFoundError struct {
	Name string
	Args []TypeID
}

func (e *FunctionNotFoundError) Error() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = string(a)
	}
	return fmt.Sprintf("no function %q for argument types (%s)", e.Name, strings.Join(parts, ", "))
}

// TypeMismatchError reports an Unwrap of a dynamic value whose type identity
// does not match what the caller expected, or a non-boolean condition in an
// `if`/`while`.
type TypeMismatchError struct {
	Wanted, Got TypeID
	Msg         string
}

func (e *TypeMismatchError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("type mismatch: wanted %s, got %s (%s)", e.Wanted, e.Got, e.Msg)
	}
	return fmt.Sprintf("type mismatch: wanted %s, got %s", e.Wanted, e.Got)
}

// IndexOutOfBoundsError reports an array index outside [0, len).
type IndexOutOfBoundsError struct {
	Index, Len int64
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("index %d out of bounds for array of length %d", e.Index, e.Len)
}

// ArithmeticError reports a division or modulo by zero surfaced by a
// primitive callable. Integer overflow wraps and is not reported.
type ArithmeticError struct {
	Msg string
}

func (e *ArithmeticError) Error() string { return "arithmetic error: " + e.Msg }

// ModuleError reports a failure to load, parse, or resolve an `import`,
// including import cycles.
type ModuleError struct {
	Path string
	Msg  string
}

func (e *ModuleError) Error() string { return fmt.Sprintf("module error for %q: %s", e.Path, e.Msg) }

// ControlFlowLeakError reports a `break`/`return` reaching the top of an
// evaluation without a matching enclosing construct.
type ControlFlowLeakError struct {
	Kind string // "break" or "return"
}

func (e *ControlFlowLeakError) Error() string {
	return fmt.Sprintf("%s outside of a matching loop/function", e.Kind)
}

// wrapf attaches call-site context to err without discarding its structured
// type; errors.As(werr, &target) still matches through the wrap.
func wrapf(err error, format string, args ...any) error {
	return pkgerrors.Wrap(err, fmt.Sprintf(format, args...))
}

// Snippet renders a caret-annotated excerpt of src at the given 1-based
// line/col, e.g.:
//
//	PARSE ERROR at 3:12: unexpected token ')'
//
//	   2 | let x = (1 + 2
//	   3 |            )
//	     |            ^
//	   4 | end
func Snippet(header string, line, col int, src string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", header)
	if line-2 >= 0 && line-2 < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	if line-1 >= 0 && line-1 < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
		caretCol := col
		if caretCol < 1 {
			caretCol = 1
		}
		b.WriteString("     | " + strings.Repeat(" ", caretCol-1) + "^\n")
	}
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

// sourceAnnotatedError pairs a rendered caret snippet (its Error() text) with
// the original structured error it was rendered from, so a caller further up
// the stack can still `errors.As` for *LexError/*ParseError without losing
// the human-readable snippet.
type sourceAnnotatedError struct {
	snippet string
	cause   error
}

func (e *sourceAnnotatedError) Error() string { return e.snippet }
func (e *sourceAnnotatedError) Unwrap() error { return e.cause }

// WrapWithSource renders err as a caret-annotated snippet against src when
// err is a *LexError or *ParseError; any other error kind is returned
// unchanged. The original error remains reachable via errors.As/errors.Unwrap.
func WrapWithSource(err error, src string) error {
	var lex *LexError
	if pkgerrors.As(err, &lex) {
		snippet := Snippet(fmt.Sprintf("LEXICAL ERROR: %s", lex.Msg), lex.Line, lex.Col, src)
		return &sourceAnnotatedError{snippet: snippet, cause: err}
	}
	var parse *ParseError
	if pkgerrors.As(err, &parse) {
		snippet := Snippet(fmt.Sprintf("PARSE ERROR: %s", parse.Msg), parse.Line, parse.Col, src)
		return &sourceAnnotatedError{snippet: snippet, cause: err}
	}
	return err
}
