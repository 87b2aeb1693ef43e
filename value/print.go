package value

import (
	"fmt"
	"strings"
)

// String renders v in the read syntax, matching the original
// implementation's Display impl: quoted lists print as 'x, strings print
// quoted, keywords print with a leading colon.
func (v Val[E, L]) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindSymbol:
		return string(v.sym)
	case KindKeyword:
		return v.kw.String()
	case KindList:
		if quoted, form, ok := asQuote(v.list); ok {
			_ = quoted
			return "'" + form.String()
		}
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	case KindLambda:
		parts := make([]string, len(v.lambda.Params))
		for i, p := range v.lambda.Params {
			parts[i] = string(p)
		}
		return "<lambda (" + strings.Join(parts, " ") + ")>"
	case KindNativeFn:
		return "<nativefn " + string(v.native.Symbol) + ">"
	case KindBytecode:
		return "<bytecode>"
	case KindError:
		return "<error " + v.err.Error() + ">"
	case KindExtern:
		if s, ok := any(v.extern).(fmt.Stringer); ok {
			return "<extern " + s.String() + ">"
		}
		return fmt.Sprintf("<extern %v>", v.extern)
	default:
		return "<unknown>"
	}
}

func asQuote[E, L any](list []Val[E, L]) (Val[E, L], Val[E, L], bool) {
	if len(list) != 2 {
		return Val[E, L]{}, Val[E, L]{}, false
	}
	if sym, ok := list[0].AsSymbol(); !ok || sym != "quote" {
		return Val[E, L]{}, Val[E, L]{}, false
	}
	return list[0], list[1], true
}

// String renders f the same way its Val counterpart would.
func (f Form) String() string {
	switch f.kind {
	case FormNil:
		return "nil"
	case FormBool:
		if f.b {
			return "true"
		}
		return "false"
	case FormInt:
		return fmt.Sprintf("%d", f.i)
	case FormString:
		return fmt.Sprintf("%q", f.str)
	case FormSymbol:
		return string(f.sym)
	case FormKeyword:
		return f.kw.String()
	case FormList:
		if len(f.list) == 2 {
			if sym, ok := f.list[0].AsSymbol(); ok && sym == "quote" {
				return "'" + f.list[1].String()
			}
		}
		parts := make([]string, len(f.list))
		for i, item := range f.list {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return "<unknown>"
	}
}
