package main

import (
	"fmt"

	"github.com/kristofer/lemma/fiber"
	"github.com/kristofer/lemma/lerr"
	"github.com/kristofer/lemma/value"
)

// extern is the demo binary's Extern payload type. The fiber/VM core is
// yield-capable for any E, but this smoke-test binary has no host command
// protocol of its own (no process/mailbox runtime per spec.md's
// Non-goals) — a bare `(yield v)` just prints v and re-prompts, so E is
// left empty.
type extern struct{}

// locals carries no per-fiber host state for this demo; natives that need
// fiber-local storage (spec.md's L parameter) would read/write it through
// value.View.Locals() instead.
type locals struct{}

type val = value.Val[extern, locals]

// bindDemoNatives installs the handful of illustrative natives SPEC_FULL.md
// §1 lists: arithmetic, print, and peval. This is deliberately not a
// real standard library — kristofer/smog ships no interpreter-level
// prelude either; its pkg/vm primitives are built into the dispatch loop,
// not bound as data the way these are.
func bindDemoNatives(f *fiber.Fiber[extern, locals]) {
	f.Bind(arithNative("+", func(acc, x int32) int32 { return acc + x }, 0))
	f.Bind(arithNative("*", func(acc, x int32) int32 { return acc * x }, 1))
	f.Bind(subNative())
	f.Bind(printNative())
	f.Bind(fiber.Peval[extern, locals]())
}

func arithNative(sym string, fold func(acc, x int32) int32, identity int32) value.NativeFn[extern, locals] {
	return value.NativeFn[extern, locals]{
		Symbol: value.SymbolID(sym),
		Func: func(_ value.View[extern, locals], args []val) (value.NativeFnVal[extern, locals], error) {
			acc := identity
			for _, a := range args {
				i, ok := a.AsInt()
				if !ok {
					return value.NativeFnVal[extern, locals]{}, lerr.Newf(lerr.UnexpectedArguments, "%s expects integer arguments", sym)
				}
				acc = fold(acc, i)
			}
			return value.Return(value.Int[extern, locals](acc)), nil
		},
	}
}

// subNative implements `-` with Lisp's usual asymmetry: unary negates,
// n-ary subtracts the rest from the first.
func subNative() value.NativeFn[extern, locals] {
	return value.NativeFn[extern, locals]{
		Symbol: "-",
		Func: func(_ value.View[extern, locals], args []val) (value.NativeFnVal[extern, locals], error) {
			if len(args) == 0 {
				return value.NativeFnVal[extern, locals]{}, lerr.Newf(lerr.UnexpectedArguments, "- expects at least one argument")
			}
			first, ok := args[0].AsInt()
			if !ok {
				return value.NativeFnVal[extern, locals]{}, lerr.Newf(lerr.UnexpectedArguments, "- expects integer arguments")
			}
			if len(args) == 1 {
				return value.Return(value.Int[extern, locals](-first)), nil
			}
			acc := first
			for _, a := range args[1:] {
				i, ok := a.AsInt()
				if !ok {
					return value.NativeFnVal[extern, locals]{}, lerr.Newf(lerr.UnexpectedArguments, "- expects integer arguments")
				}
				acc -= i
			}
			return value.Return(value.Int[extern, locals](acc)), nil
		},
	}
}

// printNative writes its argument's read-syntax to stdout, the only
// visible I/O the demo binds directly rather than routing through yield.
func printNative() value.NativeFn[extern, locals] {
	return value.NativeFn[extern, locals]{
		Symbol: "print",
		Func: func(_ value.View[extern, locals], args []val) (value.NativeFnVal[extern, locals], error) {
			for _, a := range args {
				fmt.Println(a.String())
			}
			return value.Return(value.Nil[extern, locals]()), nil
		},
	}
}
