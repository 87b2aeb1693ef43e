// Package value defines the runtime value representation shared by the
// compiler and the fiber/VM, along with the bytecode instruction set.
//
// Val and Inst are kept in the same package rather than split into
// "value" and "bytecode" packages (as the teacher splits its Smalltalk
// object representation from its opcode set) because they are mutually
// referential here: Val's Bytecode variant and Lambda.Code both embed
// []Inst, and Inst's PushConst operand embeds a Val. Go forbids import
// cycles across packages, so the two live together; see DESIGN.md.
package value

import (
	"github.com/kristofer/lemma/env"
	"github.com/kristofer/lemma/lerr"
)

// Kind discriminates the closed set of Val variants described in the data
// model. Pattern matching on Kind (a type switch in Go would require an
// interface-per-variant; a tag is the idiomatic substitute for a closed
// Rust-style enum) is the preferred discriminator throughout this module.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindString
	KindSymbol
	KindKeyword
	KindList
	KindLambda
	KindNativeFn
	KindBytecode
	KindError
	KindExtern
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindKeyword:
		return "keyword"
	case KindList:
		return "list"
	case KindLambda:
		return "lambda"
	case KindNativeFn:
		return "nativefn"
	case KindBytecode:
		return "bytecode"
	case KindError:
		return "error"
	case KindExtern:
		return "extern"
	default:
		return "unknown"
	}
}

// Val is the tagged union of every value the VM can manipulate. E is the
// host-supplied extern payload type (spec.md's E); L is the host-supplied
// per-fiber locals type (spec.md's L). L only ever surfaces in the
// function type embedded in a NativeFn — no other variant depends on it,
// but both type parameters are threaded everywhere so a Lambda, a
// NativeFn, and a Fiber sharing the same host types can be mixed freely
// without extra conversions.
type Val[E any, L any] struct {
	kind Kind

	b    bool
	i    int32
	str  string
	sym  SymbolID
	kw   KeywordID
	list []Val[E, L]

	lambda *Lambda[E, L]
	native *NativeFn[E, L]
	code   []Inst[E, L]
	err    *lerr.Error
	extern E
}

// Nil is the canonical absence-of-value.
func Nil[E, L any]() Val[E, L] { return Val[E, L]{kind: KindNil} }

// Bool wraps a boolean.
func Bool[E, L any](b bool) Val[E, L] { return Val[E, L]{kind: KindBool, b: b} }

// Int wraps a 32-bit signed integer, the VM's numeric contract.
func Int[E, L any](i int32) Val[E, L] { return Val[E, L]{kind: KindInt, i: i} }

// String wraps a text value.
func String[E, L any](s string) Val[E, L] { return Val[E, L]{kind: KindString, str: s} }

// Symbol wraps a variable-name identifier.
func Symbol[E, L any](s SymbolID) Val[E, L] { return Val[E, L]{kind: KindSymbol, sym: s} }

// Keyword wraps a self-evaluating tagged identifier.
func Keyword[E, L any](k KeywordID) Val[E, L] { return Val[E, L]{kind: KindKeyword, kw: k} }

// List wraps an ordered sequence of Val, the universal compound form.
func List[E, L any](items []Val[E, L]) Val[E, L] {
	return Val[E, L]{kind: KindList, list: items}
}

// LambdaVal wraps a closure.
func LambdaVal[E, L any](lam *Lambda[E, L]) Val[E, L] {
	return Val[E, L]{kind: KindLambda, lambda: lam}
}

// Native wraps a host-provided native function as a Val.
func Native[E, L any](n *NativeFn[E, L]) Val[E, L] {
	return Val[E, L]{kind: KindNativeFn, native: n}
}

// BytecodeVal wraps first-class compiled code, used by MakeFunc.
func BytecodeVal[E, L any](code []Inst[E, L]) Val[E, L] {
	return Val[E, L]{kind: KindBytecode, code: code}
}

// ErrorVal wraps an error as a first-class value (for peval).
func ErrorVal[E, L any](err *lerr.Error) Val[E, L] {
	return Val[E, L]{kind: KindError, err: err}
}

// Extern wraps an opaque host-typed payload.
func Extern[E, L any](e E) Val[E, L] { return Val[E, L]{kind: KindExtern, extern: e} }

// Kind reports which variant v holds.
func (v Val[E, L]) Kind() Kind { return v.kind }

// AsBool returns the wrapped bool and whether v is a Bool.
func (v Val[E, L]) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the wrapped int32 and whether v is an Int.
func (v Val[E, L]) AsInt() (int32, bool) { return v.i, v.kind == KindInt }

// AsString returns the wrapped string and whether v is a String.
func (v Val[E, L]) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsSymbol returns the wrapped SymbolID and whether v is a Symbol.
func (v Val[E, L]) AsSymbol() (SymbolID, bool) { return v.sym, v.kind == KindSymbol }

// AsKeyword returns the wrapped KeywordID and whether v is a Keyword.
func (v Val[E, L]) AsKeyword() (KeywordID, bool) { return v.kw, v.kind == KindKeyword }

// AsList returns the wrapped slice and whether v is a List.
func (v Val[E, L]) AsList() ([]Val[E, L], bool) { return v.list, v.kind == KindList }

// AsLambda returns the wrapped Lambda and whether v is a Lambda.
func (v Val[E, L]) AsLambda() (*Lambda[E, L], bool) { return v.lambda, v.kind == KindLambda }

// AsNativeFn returns the wrapped NativeFn and whether v is a NativeFn.
func (v Val[E, L]) AsNativeFn() (*NativeFn[E, L], bool) { return v.native, v.kind == KindNativeFn }

// AsBytecode returns the wrapped instructions and whether v is Bytecode.
func (v Val[E, L]) AsBytecode() ([]Inst[E, L], bool) { return v.code, v.kind == KindBytecode }

// AsError returns the wrapped error and whether v is an Error.
func (v Val[E, L]) AsError() (*lerr.Error, bool) { return v.err, v.kind == KindError }

// AsExtern returns the wrapped extern payload and whether v is Extern.
func (v Val[E, L]) AsExtern() (E, bool) { return v.extern, v.kind == KindExtern }

// Truthy implements the VM's truthiness rule: Nil and Bool(false) are
// false, everything else is true.
func (v Val[E, L]) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.b
	default:
		return true
	}
}

// Environment is the lexical environment type specialized to this
// package's Val, aliasing the generic container in package env (see that
// package's doc comment for why Env is generic rather than importing
// value directly).
type Environment[E, L any] = env.Env[Val[E, L]]

// Lambda is a function object that closes over the environment it was
// created in.
type Lambda[E, L any] struct {
	Params []SymbolID
	Code   []Inst[E, L]
	Env    *Environment[E, L]
}

// NativeFn is a host-provided callable presenting the same call interface
// as a Lambda, with the additional power to suspend the fiber.
type NativeFn[E, L any] struct {
	Symbol SymbolID
	Func   func(View[E, L], []Val[E, L]) (NativeFnVal[E, L], error)
}

// NativeFnVal is the result of invoking a NativeFn: either a plain return
// value or a request to suspend the fiber with a value, exactly mirroring
// the Yield instruction's suspension semantics.
type NativeFnVal[E, L any] struct {
	yield bool
	val   Val[E, L]
}

// Return wraps a native function's ordinary return value.
func Return[E, L any](v Val[E, L]) NativeFnVal[E, L] { return NativeFnVal[E, L]{val: v} }

// Yield wraps a value a native function uses to suspend the fiber.
func Yield[E, L any](v Val[E, L]) NativeFnVal[E, L] { return NativeFnVal[E, L]{yield: true, val: v} }

// IsYield reports whether this result requests suspension.
func (n NativeFnVal[E, L]) IsYield() bool { return n.yield }

// Value returns the wrapped value regardless of variant.
func (n NativeFnVal[E, L]) Value() Val[E, L] { return n.val }

// View is the restricted view of a fiber passed to native functions: read
// and write access to locals, read access to the current lexical
// environment and the global environment, but no direct operand-stack
// manipulation. The fiber package's unexported fiberView type implements
// this interface.
type View[E, L any] interface {
	Locals() *L
	Env() *Environment[E, L]
	Global() *Environment[E, L]
}
