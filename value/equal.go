package value

import (
	"reflect"

	"golang.org/x/exp/slices"
)

// Equal implements the value equality described in spec.md §3.1: Lambda
// equality compares params and code by value and the captured environment
// by pointer identity (not structural equality) — two lambdas created in
// the same Env are equal only if they also agree on params/code, and two
// structurally identical lambdas created in different Envs are unequal.
func (v Val[E, L]) Equal(other Val[E, L]) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindString:
		return v.str == other.str
	case KindSymbol:
		return v.sym == other.sym
	case KindKeyword:
		return v.kw == other.kw
	case KindList:
		return slices.EqualFunc(v.list, other.list, func(a, b Val[E, L]) bool { return a.Equal(b) })
	case KindLambda:
		return lambdaEqual(v.lambda, other.lambda)
	case KindNativeFn:
		return v.native != nil && other.native != nil && v.native.Symbol == other.native.Symbol
	case KindBytecode:
		return slices.EqualFunc(v.code, other.code, instEqual[E, L])
	case KindError:
		return v.err.Equal(other.err)
	case KindExtern:
		return reflect.DeepEqual(v.extern, other.extern)
	default:
		return false
	}
}

func lambdaEqual[E, L any](a, b *Lambda[E, L]) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Env != b.Env {
		return false
	}
	if !slices.Equal(a.Params, b.Params) {
		return false
	}
	return slices.EqualFunc(a.Code, b.Code, instEqual[E, L])
}

func instEqual[E, L any](a, b Inst[E, L]) bool {
	return a.Op == b.Op && a.Sym == b.Sym && a.Operand == b.Operand && a.Const.Equal(b.Const)
}
