package fiber

import (
	"errors"

	"github.com/kristofer/lemma/env"
	"github.com/kristofer/lemma/lerr"
	"github.com/kristofer/lemma/value"
)

// Resume starts or continues the fiber. On a fresh fiber this is
// equivalent to ResumeFromYield(Nil), per spec.md §4.6 — there is no
// pending resume slot to fill yet, so the supplied Nil is discarded.
func (f *Fiber[E, L]) Resume() (FiberState[E, L], error) {
	return f.enter(value.Nil[E, L]())
}

// ResumeFromYield continues a suspended fiber, substituting r for the
// value the fiber is awaiting at its suspension point (either a Yield
// instruction or a native function that returned NativeFnVal.Yield).
func (f *Fiber[E, L]) ResumeFromYield(r value.Val[E, L]) (FiberState[E, L], error) {
	return f.enter(r)
}

func (f *Fiber[E, L]) enter(resumeVal value.Val[E, L]) (FiberState[E, L], error) {
	switch f.status {
	case StatusRunning:
		return FiberState[E, L]{}, lerr.New(lerr.AlreadyRunning)
	case StatusDone:
		return FiberState[E, L]{}, lerr.New(lerr.AlreadyCompleted)
	case StatusYielded:
		if len(f.stack) == 0 {
			return FiberState[E, L]{}, lerr.Newf(lerr.UnexpectedStack, "no pending resume slot")
		}
		f.stack[len(f.stack)-1] = resumeVal
	case StatusNew:
		// No resume slot exists yet; resumeVal is discarded per spec.md §4.6.
	}
	f.status = StatusRunning
	return f.run()
}

// run drives the dispatch loop until the fiber completes or suspends,
// per spec.md §4.4's numbered steps.
func (f *Fiber[E, L]) run() (FiberState[E, L], error) {
	for {
		if len(f.cframes) == 1 && f.topFrame().isDone() {
			v, err := f.pop()
			if err != nil {
				return f.fail(lerr.Newf(lerr.UnexpectedStack, "stack should contain result for terminated fiber"))
			}
			if len(f.stack) != 0 {
				f.log.Warn("fiber terminated with nonempty operand stack", "fiber", f.ID, "remaining", len(f.stack))
			}
			f.status = StatusDone
			f.result = v
			return FiberState[E, L]{Kind: StateDone, Value: v}, nil
		}

		cf := f.topFrame()
		if cf.ip >= len(cf.code) {
			return f.fail(lerr.New(lerr.NoMoreBytecode))
		}
		inst := cf.code[cf.ip]
		cf.ip++

		if f.trace {
			f.log.Debug("step",
				"fiber", f.ID,
				"frame", len(f.cframes)-1,
				"ip", cf.ip-1,
				"op", inst.Op.String(),
				"stack_depth", len(f.stack),
			)
		}

		suspended, yieldVal, err := f.dispatch(inst)
		if err != nil {
			return f.fail(err)
		}

		// Implicit returns: pop every completed frame above the root.
		for len(f.cframes) > 1 && f.topFrame().isDone() {
			f.cframes = f.cframes[:len(f.cframes)-1]
		}

		if suspended {
			f.status = StatusYielded
			return FiberState[E, L]{Kind: StateYield, Value: yieldVal}, nil
		}
	}
}

func (f *Fiber[E, L]) fail(err error) (FiberState[E, L], error) {
	le := asLerr(err)
	frames := make([]lerr.Frame, len(f.cframes))
	for i, cf := range f.cframes {
		frames[i] = lerr.Frame{Name: cf.name, IP: cf.ip}
	}
	le = le.WithStack(frames)
	f.status = StatusDone
	f.resultErr = le
	return FiberState[E, L]{}, le
}

func asLerr(err error) *lerr.Error {
	var le *lerr.Error
	if errors.As(err, &le) {
		return le
	}
	return lerr.Newf(lerr.UnexpectedStack, "%s", err.Error())
}

// dispatch executes a single instruction. It reports whether the fiber
// suspended (and the value it yielded, if so).
func (f *Fiber[E, L]) dispatch(inst value.Inst[E, L]) (suspended bool, yieldVal value.Val[E, L], err error) {
	cf := f.topFrame()
	switch inst.Op {
	case value.OpPushConst:
		if err := f.push(inst.Const); err != nil {
			return false, value.Val[E, L]{}, err
		}

	case value.OpDefSym:
		v, err := f.peek()
		if err != nil {
			return false, value.Val[E, L]{}, err
		}
		cf.env.Define(string(inst.Sym), v)

	case value.OpSetSym:
		v, err := f.peek()
		if err != nil {
			return false, value.Val[E, L]{}, err
		}
		if !cf.env.Set(string(inst.Sym), v) {
			return false, value.Val[E, L]{}, lerr.Newf(lerr.UndefinedSymbol, "%s", inst.Sym)
		}

	case value.OpGetSym:
		v, ok := cf.env.Get(string(inst.Sym))
		if !ok {
			return false, value.Val[E, L]{}, lerr.Newf(lerr.UndefinedSymbol, "%s", inst.Sym)
		}
		if err := f.push(v); err != nil {
			return false, value.Val[E, L]{}, err
		}

	case value.OpMakeFunc:
		codeVal, err := f.pop()
		if err != nil {
			return false, value.Val[E, L]{}, err
		}
		code, ok := codeVal.AsBytecode()
		if !ok {
			return false, value.Val[E, L]{}, lerr.Newf(lerr.UnexpectedStack, "missing function bytecode")
		}
		paramsVal, err := f.pop()
		if err != nil {
			return false, value.Val[E, L]{}, err
		}
		paramList, ok := paramsVal.AsList()
		if !ok {
			return false, value.Val[E, L]{}, lerr.Newf(lerr.UnexpectedStack, "missing parameter list")
		}
		params := make([]value.SymbolID, len(paramList))
		for i, p := range paramList {
			sym, ok := p.AsSymbol()
			if !ok {
				return false, value.Val[E, L]{}, lerr.Newf(lerr.UnexpectedStack, "unexpected parameter list")
			}
			params[i] = sym
		}
		if err := f.push(value.LambdaVal[E, L](&value.Lambda[E, L]{Params: params, Code: code, Env: cf.env})); err != nil {
			return false, value.Val[E, L]{}, err
		}

	case value.OpCallFunc:
		return f.callFunc(inst.Operand)

	case value.OpPopTop:
		if _, err := f.pop(); err != nil {
			return false, value.Val[E, L]{}, err
		}

	case value.OpJumpFwd:
		cf.ip += inst.Operand

	case value.OpPopJumpFwdIfTrue:
		v, err := f.pop()
		if err != nil {
			return false, value.Val[E, L]{}, err
		}
		if v.Truthy() {
			cf.ip += inst.Operand
		}

	case value.OpJumpBack:
		cf.ip -= inst.Operand

	case value.OpYield:
		v, err := f.pop()
		if err != nil {
			return false, value.Val[E, L]{}, err
		}
		if err := f.push(value.Nil[E, L]()); err != nil { // reserved resume slot
			return false, value.Val[E, L]{}, err
		}
		return true, v, nil

	default:
		return false, value.Val[E, L]{}, lerr.Newf(lerr.UnexpectedStack, "unknown opcode %s", inst.Op)
	}
	return false, value.Val[E, L]{}, nil
}

// callFunc implements §4.5's call dispatch: pop arity args (restoring
// left-to-right order) then the callee, and invoke it.
func (f *Fiber[E, L]) callFunc(arity int) (suspended bool, yieldVal value.Val[E, L], err error) {
	if len(f.stack) < arity+1 {
		return false, value.Val[E, L]{}, lerr.Newf(lerr.UnexpectedStack, "missing expected %d args", arity)
	}
	args := make([]value.Val[E, L], arity)
	for i := arity - 1; i >= 0; i-- {
		v, err := f.pop()
		if err != nil {
			return false, value.Val[E, L]{}, err
		}
		args[i] = v
	}
	callee, err := f.pop()
	if err != nil {
		return false, value.Val[E, L]{}, err
	}

	switch callee.Kind() {
	case value.KindNativeFn:
		n, _ := callee.AsNativeFn()
		result, err := n.Func(fiberView[E, L]{f}, args)
		if err != nil {
			return false, value.Val[E, L]{}, err
		}
		if result.IsYield() {
			if err := f.push(value.Nil[E, L]()); err != nil { // reserved resume slot
				return false, value.Val[E, L]{}, err
			}
			return true, result.Value(), nil
		}
		if err := f.push(result.Value()); err != nil {
			return false, value.Val[E, L]{}, err
		}
		return false, value.Val[E, L]{}, nil

	case value.KindLambda:
		lam, _ := callee.AsLambda()
		if len(lam.Params) != len(args) {
			return false, value.Val[E, L]{}, lerr.Newf(lerr.InvalidArgumentsToFunctionCall,
				"expected %d arguments, got %d", len(lam.Params), len(args))
		}
		child := env.Extend(lam.Env)
		for i, p := range lam.Params {
			child.Define(string(p), args[i])
		}

		cf := f.topFrame()
		if cf.tailPosition() {
			// Tail call: CallFunc was the last instruction of the current
			// frame (ignoring any trailing unconditional jump straight to
			// the end, which compileIf emits after an else-branch — that
			// jump has no effect other than landing exactly where falling
			// off the end would), so reusing it in place keeps the call
			// stack at O(1) depth for self-recursive fibers such as
			// spec.md §8's yielding-counter scenario, per §9's
			// recommended option (i).
			cf.ip = 0
			cf.code = lam.Code
			cf.env = child
			return false, value.Val[E, L]{}, nil
		}

		if f.limits != nil && f.limits.MaxCallDepth > 0 && len(f.cframes) >= f.limits.MaxCallDepth {
			return false, value.Val[E, L]{}, lerr.Newf(lerr.UnexpectedStack, "call depth exceeded limit of %d", f.limits.MaxCallDepth)
		}
		f.cframes = append(f.cframes, &callFrame[E, L]{ip: 0, code: lam.Code, env: child, name: "<lambda>"})
		return false, value.Val[E, L]{}, nil

	default:
		return false, value.Val[E, L]{}, lerr.Newf(lerr.InvalidOperation, "%s is not callable", callee.String())
	}
}
