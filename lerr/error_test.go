package lerr

import "testing"

func TestEqualIgnoresStack(t *testing.T) {
	a := Newf(UndefinedSymbol, "x")
	b := a.WithStack([]Frame{{Name: "<root>", IP: 3}})
	if !a.Equal(b) {
		t.Fatalf("errors differing only in stack trace should be equal")
	}
}

func TestEqualComparesKindAndDetail(t *testing.T) {
	a := Newf(UndefinedSymbol, "x")
	b := Newf(UndefinedSymbol, "y")
	c := Newf(InvalidOperation, "x")
	if a.Equal(b) {
		t.Fatalf("errors with different detail should not be equal")
	}
	if a.Equal(c) {
		t.Fatalf("errors with different kind should not be equal")
	}
}

func TestErrorStringIncludesStackTrace(t *testing.T) {
	e := New(NoMoreBytecode).WithStack([]Frame{{Name: "<root>", IP: 1}})
	s := e.Error()
	if s == "" {
		t.Fatalf("Error() should not be empty")
	}
}
