// Package fiber implements the stack-machine VM that drives a single
// cooperatively scheduled fiber: call frames, the operand stack, native
// function dispatch, and the yield/resume suspension protocol.
//
// There is no teacher equivalent for the yield/resume half of this
// package — kristofer/smog's pkg/vm.VM runs a bytecode program to
// completion in one Run() call and has no suspension point. The call-frame
// stack, dispatch-loop, and error-unwind shape are grounded on
// pkg/vm/vm.go and pkg/vm/errors.go; the Status/FiberState machinery and
// the yield/resume contract are synthesized directly from spec.md
// §3.6-§3.8 and §4.4-§4.6, cross-checked against original_source's
// lemma/src/fiber.rs (v1, no yield) and lemma/src/v2/fiber.rs (adds a
// Status enum with New/Running/Yielded/Completed, which this package's
// Status mirrors almost exactly).
package fiber

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/kristofer/lemma/compiler"
	"github.com/kristofer/lemma/config"
	"github.com/kristofer/lemma/env"
	"github.com/kristofer/lemma/lerr"
	"github.com/kristofer/lemma/parser"
	"github.com/kristofer/lemma/value"
)

// Status is the lifecycle stage of a Fiber, per spec.md §3.8.
type Status int

const (
	StatusNew Status = iota
	StatusRunning
	StatusYielded
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "New"
	case StatusRunning:
		return "Running"
	case StatusYielded:
		return "Yielded"
	case StatusDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// StateKind discriminates FiberState's two variants.
type StateKind int

const (
	StateDone StateKind = iota
	StateYield
)

// FiberState is what Resume/ResumeFromYield return on success: either the
// fiber ran to completion with a value, or it suspended with one. A Go
// error return (rather than a variant of this struct) carries the
// Err(Result<Val>) half of spec.md's FiberState::Done(Result<Val>): a
// failed run returns a *lerr.Error and leaves the fiber in StatusDone.
type FiberState[E, L any] struct {
	Kind  StateKind
	Value value.Val[E, L]
}

// IsDone reports whether the fiber ran to completion.
func (s FiberState[E, L]) IsDone() bool { return s.Kind == StateDone }

// IsYield reports whether the fiber suspended awaiting a resume value.
func (s FiberState[E, L]) IsYield() bool { return s.Kind == StateYield }

// callFrame is the per-invocation record: instruction pointer, the
// function's bytecode, and the environment active while running it.
// Grounded on kristofer/smog's StackFrame (pkg/vm/errors.go) generalized
// with an env pointer instead of a class/self pair.
type callFrame[E, L any] struct {
	ip   int
	code []value.Inst[E, L]
	env  *value.Environment[E, L]
	name string
}

func (cf *callFrame[E, L]) isDone() bool { return cf.ip == len(cf.code) }

// tailPosition reports whether cf.ip sits at the true end of the frame's
// code, treating any run of OpJumpFwd instructions that lead straight to
// the end as equivalent to already being there. compileIf's else-branch
// is followed by exactly such a jump (to skip over the then-branch), so
// without this a self-recursive call in an else-branch would never be
// recognized as a tail call even though it behaves identically to one
// placed in the then-branch.
func (cf *callFrame[E, L]) tailPosition() bool {
	ip := cf.ip
	for ip < len(cf.code) && cf.code[ip].Op == value.OpJumpFwd {
		target := ip + 1 + cf.code[ip].Operand
		if target <= ip {
			break
		}
		ip = target
	}
	return ip == len(cf.code)
}

// Fiber is a single, cooperatively scheduled thread of execution: its own
// operand stack, call-frame stack, globals, and host-supplied locals.
type Fiber[E, L any] struct {
	ID uuid.UUID

	cframes []*callFrame[E, L]
	stack   []value.Val[E, L]
	global  *value.Environment[E, L]
	locals  L

	status    Status
	result    value.Val[E, L]
	resultErr error

	limits *config.Limits
	log    *slog.Logger
	trace  bool
}

// Option configures a Fiber at construction time.
type Option[E, L any] func(*Fiber[E, L])

// WithLimits overrides the default call-depth/operand-stack ceilings.
func WithLimits[E, L any](l *config.Limits) Option[E, L] {
	return func(f *Fiber[E, L]) { f.limits = l }
}

// WithLogger overrides the fiber's diagnostic logger (default slog.Default()).
func WithLogger[E, L any](log *slog.Logger) Option[E, L] {
	return func(f *Fiber[E, L]) { f.log = log }
}

// FiberFromBytecode constructs a fiber that executes code from a fresh
// root call frame over a new global environment, per spec.md §6.1.
func FiberFromBytecode[E, L any](code []value.Inst[E, L], locals L, opts ...Option[E, L]) *Fiber[E, L] {
	global := env.New[value.Val[E, L]]()
	f := &Fiber[E, L]{
		ID:      uuid.New(),
		cframes: []*callFrame[E, L]{{ip: 0, code: code, env: global, name: "<root>"}},
		global:  global,
		locals:  locals,
		status:  StatusNew,
		limits:  config.Defaults(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FiberFromExpr parses src (one or more top-level forms) and compiles it
// into a fresh fiber, per spec.md §6.1. Multiple top-level forms are
// stitched together with an implicit begin, the same as compiler's
// compileBegin: every intermediate result is discarded except the last.
func FiberFromExpr[E, L any](src string, locals L, opts ...Option[E, L]) (*Fiber[E, L], error) {
	forms, err := parser.ParseAll(src)
	if err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return nil, value.EmptyExpressionError()
	}
	var code []value.Inst[E, L]
	for i, form := range forms {
		c, err := compiler.Compile[E, L](form)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			code = append(code, value.PopTop[E, L]())
		}
		code = append(code, c...)
	}
	return FiberFromBytecode[E, L](code, locals, opts...), nil
}

// Bind installs a native function into the fiber's global environment,
// per spec.md §3.4's bind convenience.
func (f *Fiber[E, L]) Bind(n value.NativeFn[E, L]) *Fiber[E, L] {
	f.global.Define(string(n.Symbol), value.Native[E, L](&n))
	return f
}

// Locals returns a pointer to the fiber's host-supplied per-fiber state.
func (f *Fiber[E, L]) Locals() *L { return &f.locals }

// Status reports the fiber's current lifecycle stage.
func (f *Fiber[E, L]) Status() Status { return f.status }

// SetTrace toggles opcode-level debug logging, grounded on kristofer/smog's
// optional *Debugger field on VM (pkg/vm/debugger.go), trimmed down to a
// plain trace switch since there is no object model left to inspect.
func (f *Fiber[E, L]) SetTrace(on bool) { f.trace = on }

func (f *Fiber[E, L]) topFrame() *callFrame[E, L] { return f.cframes[len(f.cframes)-1] }
func (f *Fiber[E, L]) topEnv() *value.Environment[E, L] { return f.topFrame().env }

func (f *Fiber[E, L]) push(v value.Val[E, L]) error {
	if f.limits != nil && f.limits.MaxOperandStack > 0 && len(f.stack) >= f.limits.MaxOperandStack {
		return lerr.Newf(lerr.UnexpectedStack, "operand stack exceeded limit of %d", f.limits.MaxOperandStack)
	}
	f.stack = append(f.stack, v)
	return nil
}

func (f *Fiber[E, L]) pop() (value.Val[E, L], error) {
	if len(f.stack) == 0 {
		return value.Val[E, L]{}, lerr.Newf(lerr.UnexpectedStack, "attempting to pop empty stack")
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v, nil
}

func (f *Fiber[E, L]) peek() (value.Val[E, L], error) {
	if len(f.stack) == 0 {
		return value.Val[E, L]{}, lerr.Newf(lerr.UnexpectedStack, "expected stack to be nonempty")
	}
	return f.stack[len(f.stack)-1], nil
}

// fiberView is the restricted value.View a native function sees: locals
// read/write, environment read, but no direct stack manipulation, per
// spec.md §4.5/§6.2.
type fiberView[E, L any] struct {
	f *Fiber[E, L]
}

func (v fiberView[E, L]) Locals() *L                        { return &v.f.locals }
func (v fiberView[E, L]) Env() *value.Environment[E, L]     { return v.f.topEnv() }
func (v fiberView[E, L]) Global() *value.Environment[E, L]  { return v.f.global }
