package value

import "github.com/kristofer/lemma/lerr"

// FormKind discriminates the serializable subset of Val that Form
// represents.
type FormKind int

const (
	FormNil FormKind = iota
	FormBool
	FormInt
	FormString
	FormSymbol
	FormKeyword
	FormList
)

// Form is the parse-layer value: a serializable subset of Val omitting
// Lambda, NativeFn, Bytecode, Error, and Extern. It's what the lexer and
// parser produce, and what quote (and peval's yielded-input protocol)
// pass around as plain data.
type Form struct {
	kind FormKind

	b    bool
	i    int32
	str  string
	sym  SymbolID
	kw   KeywordID
	list []Form
}

func FormOfNil() Form                      { return Form{kind: FormNil} }
func FormOfBool(b bool) Form                { return Form{kind: FormBool, b: b} }
func FormOfInt(i int32) Form                { return Form{kind: FormInt, i: i} }
func FormOfString(s string) Form            { return Form{kind: FormString, str: s} }
func FormOfSymbol(s SymbolID) Form          { return Form{kind: FormSymbol, sym: s} }
func FormOfKeyword(k KeywordID) Form        { return Form{kind: FormKeyword, kw: k} }
func FormOfList(items []Form) Form          { return Form{kind: FormList, list: items} }

func (f Form) Kind() FormKind             { return f.kind }
func (f Form) AsBool() (bool, bool)       { return f.b, f.kind == FormBool }
func (f Form) AsInt() (int32, bool)       { return f.i, f.kind == FormInt }
func (f Form) AsString() (string, bool)   { return f.str, f.kind == FormString }
func (f Form) AsSymbol() (SymbolID, bool) { return f.sym, f.kind == FormSymbol }
func (f Form) AsKeyword() (KeywordID, bool) {
	return f.kw, f.kind == FormKeyword
}
func (f Form) AsList() ([]Form, bool) { return f.list, f.kind == FormList }

// Equal compares two Forms structurally.
func (f Form) Equal(other Form) bool {
	if f.kind != other.kind {
		return false
	}
	switch f.kind {
	case FormNil:
		return true
	case FormBool:
		return f.b == other.b
	case FormInt:
		return f.i == other.i
	case FormString:
		return f.str == other.str
	case FormSymbol:
		return f.sym == other.sym
	case FormKeyword:
		return f.kw == other.kw
	case FormList:
		if len(f.list) != len(other.list) {
			return false
		}
		for i := range f.list {
			if !f.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ToVal performs the total, lossless conversion from Form to Val (spec.md
// §3.2): every Form variant has a direct Val counterpart.
func ToVal[E, L any](f Form) Val[E, L] {
	switch f.kind {
	case FormNil:
		return Nil[E, L]()
	case FormBool:
		return Bool[E, L](f.b)
	case FormInt:
		return Int[E, L](f.i)
	case FormString:
		return String[E, L](f.str)
	case FormSymbol:
		return Symbol[E, L](f.sym)
	case FormKeyword:
		return Keyword[E, L](f.kw)
	case FormList:
		items := make([]Val[E, L], len(f.list))
		for i, item := range f.list {
			items[i] = ToVal[E, L](item)
		}
		return List[E, L](items)
	default:
		return Nil[E, L]()
	}
}

// ToForm performs the partial conversion from Val to Form, failing with
// InvalidFormToExpr for any variant Form can't represent (spec.md §3.2).
func ToForm[E, L any](v Val[E, L]) (Form, error) {
	switch v.kind {
	case KindNil:
		return FormOfNil(), nil
	case KindBool:
		b, _ := v.AsBool()
		return FormOfBool(b), nil
	case KindInt:
		i, _ := v.AsInt()
		return FormOfInt(i), nil
	case KindString:
		s, _ := v.AsString()
		return FormOfString(s), nil
	case KindSymbol:
		s, _ := v.AsSymbol()
		return FormOfSymbol(s), nil
	case KindKeyword:
		k, _ := v.AsKeyword()
		return FormOfKeyword(k), nil
	case KindList:
		list, _ := v.AsList()
		items := make([]Form, len(list))
		for i, item := range list {
			form, err := ToForm[E, L](item)
			if err != nil {
				return Form{}, err
			}
			items[i] = form
		}
		return FormOfList(items), nil
	case KindLambda:
		return Form{}, lerr.Newf(lerr.InvalidFormToExpr, "lambdas are not exprs")
	case KindNativeFn:
		return Form{}, lerr.Newf(lerr.InvalidFormToExpr, "nativefns are not exprs")
	case KindBytecode:
		return Form{}, lerr.Newf(lerr.InvalidFormToExpr, "bytecode is not exprs")
	case KindError:
		return Form{}, lerr.Newf(lerr.InvalidFormToExpr, "errors are not exprs")
	case KindExtern:
		return Form{}, lerr.Newf(lerr.InvalidFormToExpr, "extern values are not exprs")
	default:
		return Form{}, lerr.Newf(lerr.InvalidFormToExpr, "unknown value kind")
	}
}
