package fiber

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/kristofer/lemma/compiler"
	"github.com/kristofer/lemma/config"
	"github.com/kristofer/lemma/lerr"
	"github.com/kristofer/lemma/value"
)

// Peval returns the `peval` ("protected eval") built-in described in
// spec.md §4.7: it compiles its single argument and runs it in a nested
// fiber sharing the calling frame's environment, converting a runtime
// error into a first-class value.Error rather than aborting the caller.
//
// Grounded on original_source/lemma/src/builtin.rs's peval_fn, which
// calls the nested fiber's resume() exactly once and maps its outcome
// directly — Done becomes Return, Yield becomes this native's own Yield,
// and Err becomes Return(Val::Error). That source flags this as a "hack"
// that only works because nothing reintroduces the nested fiber after a
// yield: a yielded nested fiber is simply dropped, so a host resume after
// that point supplies its value directly as peval's return rather than
// continuing the nested computation. This module carries the same
// one-level-passthrough limitation (spec.md §4.7, §9): it has no
// non-local-return construct today, so the limitation is latent rather
// than observable, but any future addition of one must revisit this.
func Peval[E, L any]() value.NativeFn[E, L] {
	return value.NativeFn[E, L]{
		Symbol: "peval",
		Func: func(view value.View[E, L], args []value.Val[E, L]) (value.NativeFnVal[E, L], error) {
			if len(args) != 1 {
				return value.NativeFnVal[E, L]{}, lerr.Newf(lerr.UnexpectedArguments,
					"peval expects exactly one argument, got %d", len(args))
			}
			form, err := value.ToForm[E, L](args[0])
			if err != nil {
				return value.NativeFnVal[E, L]{}, err
			}
			code, err := compiler.Compile[E, L](form)
			if err != nil {
				return value.NativeFnVal[E, L]{}, err
			}

			nested := newNestedFiber(code, view)
			state, rerr := nested.Resume()
			if rerr != nil {
				return value.Return(value.ErrorVal[E, L](asLerr(rerr))), nil
			}
			if state.IsYield() {
				return value.Yield(state.Value), nil
			}
			return value.Return(state.Value), nil
		},
	}
}

// newNestedFiber builds the fiber peval runs its argument in: it shares
// the parent's current lexical environment and global environment (so
// peval'd code sees the same bindings the calling frame does) and copies
// the parent's locals by value, matching the host-supplied L's ordinary
// Go value-copy semantics. It also inherits the parent's resource limits,
// logger, and trace setting — peval is a sandbox for the error a nested
// computation might raise, not an escape hatch from the host's configured
// MaxCallDepth/MaxOperandStack ceiling.
func newNestedFiber[E, L any](code []value.Inst[E, L], view value.View[E, L]) *Fiber[E, L] {
	locals := *view.Locals()
	nested := &Fiber[E, L]{
		ID:      uuid.New(),
		cframes: []*callFrame[E, L]{{ip: 0, code: code, env: view.Env(), name: "<peval>"}},
		global:  view.Global(),
		locals:  locals,
		status:  StatusNew,
		limits:  config.Defaults(),
		log:     slog.Default(),
	}
	if fv, ok := view.(fiberView[E, L]); ok {
		nested.limits = fv.f.limits
		nested.log = fv.f.log
		nested.trace = fv.f.trace
	}
	return nested
}
