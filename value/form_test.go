package value

import "testing"

type noExtern struct{}
type noLocals struct{}

func TestFormValRoundTrip(t *testing.T) {
	cases := []Form{
		FormOfNil(),
		FormOfBool(true),
		FormOfBool(false),
		FormOfInt(42),
		FormOfInt(-7),
		FormOfString("hello"),
		FormOfSymbol("x"),
		FormOfKeyword("tag"),
		FormOfList([]Form{FormOfSymbol("+"), FormOfInt(1), FormOfInt(2)}),
		FormOfList(nil),
	}
	for _, f := range cases {
		val := ToVal[noExtern, noLocals](f)
		back, err := ToForm[noExtern, noLocals](val)
		if err != nil {
			t.Fatalf("ToForm(%v): unexpected error: %v", f, err)
		}
		if !f.Equal(back) {
			t.Fatalf("round trip mismatch: %v != %v", f, back)
		}
	}
}

func TestToFormRejectsNonSerializableVariants(t *testing.T) {
	nonSerializable := []Val[noExtern, noLocals]{
		LambdaVal[noExtern, noLocals](&Lambda[noExtern, noLocals]{}),
		Native[noExtern, noLocals](&NativeFn[noExtern, noLocals]{Symbol: "x"}),
		BytecodeVal[noExtern, noLocals](nil),
		ErrorVal[noExtern, noLocals](nil),
		Extern[noExtern, noLocals](noExtern{}),
	}
	for _, v := range nonSerializable {
		if _, err := ToForm[noExtern, noLocals](v); err == nil {
			t.Fatalf("ToForm(%v kind): expected InvalidFormToExpr error, got nil", v.Kind())
		}
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    Val[noExtern, noLocals]
		want bool
	}{
		{Nil[noExtern, noLocals](), false},
		{Bool[noExtern, noLocals](false), false},
		{Bool[noExtern, noLocals](true), true},
		{Int[noExtern, noLocals](0), true},
		{String[noExtern, noLocals](""), true},
		{List[noExtern, noLocals](nil), true},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Fatalf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}
