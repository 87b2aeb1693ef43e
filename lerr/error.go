// Package lerr defines the unified error taxonomy shared by the compiler,
// the parser, and the fiber/VM runtime.
//
// Errors are represented as a single concrete type rather than per-stage
// error types so that a runtime Error can also be carried as a first-class
// value (see value.Val's Error variant) and compared for equality in tests.
package lerr

import "fmt"

// Kind discriminates the taxonomy described in the project's error-handling
// design: textual-surface failures, compile-time failures, and runtime
// failures all share one closed set of kinds.
type Kind int

const (
	// FailedToLex means the source text contains an illegal character or an
	// unterminated string literal.
	FailedToLex Kind = iota
	// FailedToParse means the token stream doesn't form a valid Form (e.g.
	// mismatched parens, empty input).
	FailedToParse
	// EmptyExpression means the compiler was asked to compile an empty list.
	EmptyExpression
	// InvalidExpression means the compiler was given a Form of a kind it has
	// no lowering for.
	InvalidExpression
	// UnexpectedOperator means a list's head names a special form but its
	// usage doesn't match that form's grammar.
	UnexpectedOperator
	// InvalidFormToExpr means a Val variant has no serializable Form
	// counterpart (Lambda, NativeFn, Bytecode, Error, Extern).
	InvalidFormToExpr
	// UndefinedSymbol means a GetSym or SetSym referenced a symbol with no
	// binding reachable from the current environment.
	UndefinedSymbol
	// UnexpectedArguments means a native function received the wrong shape
	// or type of arguments.
	UnexpectedArguments
	// InvalidArgumentsToFunctionCall means a Lambda call's argument count
	// didn't match its parameter count.
	InvalidArgumentsToFunctionCall
	// InvalidOperation means CallFunc's callee wasn't a Lambda or NativeFn.
	InvalidOperation
	// UnexpectedStack means an instruction found the operand stack in a
	// shape that well-formed compiler output should never produce.
	UnexpectedStack
	// NoMoreBytecode means a call frame's instruction pointer ran past the
	// end of its bytecode without the dispatch loop's implicit-return step
	// having popped the frame first — a compiler bug.
	NoMoreBytecode
	// AlreadyRunning means resume or resume_from_yield was called on a
	// fiber that is already Running (typically: a native tried to
	// re-enter its own fiber).
	AlreadyRunning
	// AlreadyCompleted means resume or resume_from_yield was called on a
	// fiber whose status is already Done.
	AlreadyCompleted
)

var kindNames = map[Kind]string{
	FailedToLex:                     "FailedToLex",
	FailedToParse:                   "FailedToParse",
	EmptyExpression:                 "EmptyExpression",
	InvalidExpression:               "InvalidExpression",
	UnexpectedOperator:              "UnexpectedOperator",
	InvalidFormToExpr:               "InvalidFormToExpr",
	UndefinedSymbol:                 "UndefinedSymbol",
	UnexpectedArguments:             "UnexpectedArguments",
	InvalidArgumentsToFunctionCall:  "InvalidArgumentsToFunctionCall",
	InvalidOperation:                "InvalidOperation",
	UnexpectedStack:                 "UnexpectedStack",
	NoMoreBytecode:                  "NoMoreBytecode",
	AlreadyRunning:                  "AlreadyRunning",
	AlreadyCompleted:                "AlreadyCompleted",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UnknownKind"
}

// Frame is one entry of a captured call stack, recorded when an Error is
// raised so the host can print context about where execution was.
type Frame struct {
	// Name describes the kind of frame that was executing: "<root>" for the
	// outermost frame, "<peval>" for a peval fiber's outermost frame, and
	// "<lambda>" for any lambda call frame.
	Name string
	// IP is the instruction pointer within that frame at the time of error.
	IP int
}

// Error is the single error type produced by lexing, parsing, compiling,
// and running. Detail carries kind-specific free text (e.g. the offending
// symbol name); Stack is populated by the fiber on unwind and is nil for
// compile-time errors.
type Error struct {
	Kind   Kind
	Detail string
	Stack  []Frame
}

// New constructs an Error with no detail.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Newf constructs an Error with a formatted detail string.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s - %s", msg, e.Detail)
	}
	if len(e.Stack) == 0 {
		return msg
	}
	out := msg + "\n\nStack trace:"
	for i := len(e.Stack) - 1; i >= 0; i-- {
		f := e.Stack[i]
		out += fmt.Sprintf("\n  at %s [ip=%d]", f.Name, f.IP)
	}
	return out
}

// Equal reports value equality on Kind and Detail, ignoring the stack
// trace — tests match errors by what went wrong, not by where.
func (e *Error) Equal(other *Error) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Kind == other.Kind && e.Detail == other.Detail
}

// WithStack returns a copy of e with the given stack trace attached.
func (e *Error) WithStack(stack []Frame) *Error {
	cp := *e
	cp.Stack = stack
	return &cp
}
