package value

import (
	"testing"

	"github.com/kristofer/lemma/env"
)

func newTestEnv() *Environment[noExtern, noLocals] {
	return env.New[Val[noExtern, noLocals]]()
}

func TestLambdaEqualityComparesEnvByIdentity(t *testing.T) {
	e1 := newTestEnv()
	e2 := newTestEnv()

	params := []SymbolID{"x"}
	code := []Inst[noExtern, noLocals]{GetSym[noExtern, noLocals]("x")}

	l1 := LambdaVal[noExtern, noLocals](&Lambda[noExtern, noLocals]{Params: params, Code: code, Env: e1})
	l1Again := LambdaVal[noExtern, noLocals](&Lambda[noExtern, noLocals]{Params: params, Code: code, Env: e1})
	l2 := LambdaVal[noExtern, noLocals](&Lambda[noExtern, noLocals]{Params: params, Code: code, Env: e2})

	if !l1.Equal(l1Again) {
		t.Fatalf("lambdas with identical params/code over the same env should be equal")
	}
	if l1.Equal(l2) {
		t.Fatalf("structurally identical lambdas over different envs should not be equal")
	}
}

func TestListEquality(t *testing.T) {
	a := List[noExtern, noLocals]([]Val[noExtern, noLocals]{Int[noExtern, noLocals](1), Int[noExtern, noLocals](2)})
	b := List[noExtern, noLocals]([]Val[noExtern, noLocals]{Int[noExtern, noLocals](1), Int[noExtern, noLocals](2)})
	c := List[noExtern, noLocals]([]Val[noExtern, noLocals]{Int[noExtern, noLocals](1), Int[noExtern, noLocals](3)})
	if !a.Equal(b) {
		t.Fatalf("structurally identical lists should be equal")
	}
	if a.Equal(c) {
		t.Fatalf("structurally different lists should not be equal")
	}
}
