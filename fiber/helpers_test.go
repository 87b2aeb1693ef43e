package fiber

import (
	"github.com/kristofer/lemma/lerr"
	"github.com/kristofer/lemma/value"
)

// testExtern is the host-typed payload used by this package's tests to
// exercise Val's Extern arm: a tagged command a REPL-like host would
// yield across the VM boundary, per spec.md §8's "REPL simulation"
// scenario. Args lets SendConn carry the evaluated result back out.
type testExtern struct {
	Kind string
	Args []value.Val[testExtern, testLocals]
}

func (e testExtern) String() string { return e.Kind }

// testLocals is the per-fiber host state type used by these tests; none
// of the scenarios need any, so it's empty.
type testLocals struct{}

func v(i int32) value.Val[testExtern, testLocals] { return value.Int[testExtern, testLocals](i) }

// plusNative generalizes the baseline `+` to N integer operands
// (DESIGN.md's recorded deliberate generalization of spec.md §9's
// two-argument-only baseline).
func plusNative() value.NativeFn[testExtern, testLocals] {
	return value.NativeFn[testExtern, testLocals]{
		Symbol: "+",
		Func: func(_ value.View[testExtern, testLocals], args []value.Val[testExtern, testLocals]) (value.NativeFnVal[testExtern, testLocals], error) {
			var sum int32
			for _, a := range args {
				i, ok := a.AsInt()
				if !ok {
					return value.NativeFnVal[testExtern, testLocals]{}, lerr.Newf(lerr.UnexpectedArguments, "+ expects integer arguments")
				}
				sum += i
			}
			return value.Return(v(sum)), nil
		},
	}
}

// recvConnNative yields a RecvConn command and returns whatever value the
// host resumes with, standing in for the excluded I/O-dispatcher's
// recv_req (spec.md §1's "Deliberately out of scope").
func recvConnNative() value.NativeFn[testExtern, testLocals] {
	return value.NativeFn[testExtern, testLocals]{
		Symbol: "recv_conn",
		Func: func(_ value.View[testExtern, testLocals], _ []value.Val[testExtern, testLocals]) (value.NativeFnVal[testExtern, testLocals], error) {
			return value.Yield(value.Extern[testExtern, testLocals](testExtern{Kind: "RecvConn"})), nil
		},
	}
}

// sendConnNative yields a SendConn command carrying its argument, the
// counterpart to recvConnNative.
func sendConnNative() value.NativeFn[testExtern, testLocals] {
	return value.NativeFn[testExtern, testLocals]{
		Symbol: "send_conn",
		Func: func(_ value.View[testExtern, testLocals], args []value.Val[testExtern, testLocals]) (value.NativeFnVal[testExtern, testLocals], error) {
			return value.Yield(value.Extern[testExtern, testLocals](testExtern{Kind: "SendConn", Args: args})), nil
		},
	}
}

func newTestFiber(src string) (*Fiber[testExtern, testLocals], error) {
	f, err := FiberFromExpr[testExtern, testLocals](src, testLocals{})
	if err != nil {
		return nil, err
	}
	f.Bind(plusNative())
	f.Bind(Peval[testExtern, testLocals]())
	f.Bind(recvConnNative())
	f.Bind(sendConnNative())
	return f, nil
}
