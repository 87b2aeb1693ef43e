// Package compiler lowers value.Form source into linear
// value.Inst bytecode, resolving the special forms and closures of
// lemma's surface syntax. Its shape — an emit-into-a-growing-slice
// compiler with backpatched jump targets — follows the teacher's
// pkg/compiler.Compiler, generalized from Smalltalk message sends to
// s-expression special forms.
package compiler

import (
	"github.com/kristofer/lemma/lerr"
	"github.com/kristofer/lemma/value"
)

// Compiler accumulates bytecode for a single top-level compilation.
type Compiler[E, L any] struct {
	code []value.Inst[E, L]
}

// New creates an empty Compiler.
func New[E, L any]() *Compiler[E, L] {
	return &Compiler[E, L]{}
}

// Compile lowers a single Form into bytecode whose execution leaves
// exactly one result on the operand stack, per spec.md §4.2.
func Compile[E, L any](f value.Form) ([]value.Inst[E, L], error) {
	c := New[E, L]()
	if err := c.compileForm(f); err != nil {
		return nil, err
	}
	return c.code, nil
}

func (c *Compiler[E, L]) emit(inst value.Inst[E, L]) int {
	c.code = append(c.code, inst)
	return len(c.code) - 1
}

// patchOffset rewrites the Operand of a previously emitted jump
// instruction once its target is known.
func (c *Compiler[E, L]) patchOffset(at int, offset int) {
	c.code[at].Operand = offset
}

func (c *Compiler[E, L]) here() int {
	return len(c.code)
}

func (c *Compiler[E, L]) compileForm(f value.Form) error {
	switch f.Kind() {
	case value.FormNil:
		c.emit(value.PushConst[E, L](value.ToVal[E, L](f)))
		return nil
	case value.FormBool, value.FormInt, value.FormString, value.FormKeyword:
		c.emit(value.PushConst[E, L](value.ToVal[E, L](f)))
		return nil
	case value.FormSymbol:
		sym, _ := f.AsSymbol()
		c.emit(value.GetSym[E, L](sym))
		return nil
	case value.FormList:
		return c.compileList(f)
	default:
		return lerr.Newf(lerr.InvalidExpression, "unknown form kind")
	}
}

func (c *Compiler[E, L]) compileList(f value.Form) error {
	items, _ := f.AsList()
	if len(items) == 0 {
		return lerr.New(lerr.EmptyExpression)
	}
	if head, ok := items[0].AsSymbol(); ok {
		switch head {
		case "quote":
			return c.compileQuote(items)
		case "def":
			return c.compileDef(items)
		case "set":
			return c.compileSet(items)
		case "begin":
			return c.compileBegin(items[1:])
		case "if":
			return c.compileIf(items)
		case "lambda":
			return c.compileLambda(items)
		case "defn":
			return c.compileDefn(items)
		case "loop":
			return c.compileLoop(items)
		case "yield":
			return c.compileYield(items)
		}
	}
	return c.compileCall(items)
}

func (c *Compiler[E, L]) compileQuote(items []value.Form) error {
	if len(items) != 2 {
		return lerr.Newf(lerr.UnexpectedOperator, "quote takes exactly one argument")
	}
	v := value.ToVal[E, L](items[1])
	c.emit(value.PushConst[E, L](v))
	return nil
}

func (c *Compiler[E, L]) compileDef(items []value.Form) error {
	if len(items) != 3 {
		return lerr.Newf(lerr.UnexpectedOperator, "def takes exactly two arguments")
	}
	sym, ok := items[1].AsSymbol()
	if !ok {
		return lerr.Newf(lerr.UnexpectedOperator, "def requires a symbol target")
	}
	if err := c.compileForm(items[2]); err != nil {
		return err
	}
	c.emit(value.DefSym[E, L](sym))
	return nil
}

func (c *Compiler[E, L]) compileSet(items []value.Form) error {
	if len(items) != 3 {
		return lerr.Newf(lerr.UnexpectedOperator, "set takes exactly two arguments")
	}
	sym, ok := items[1].AsSymbol()
	if !ok {
		return lerr.Newf(lerr.UnexpectedOperator, "set requires a symbol target")
	}
	if err := c.compileForm(items[2]); err != nil {
		return err
	}
	c.emit(value.SetSym[E, L](sym))
	return nil
}

func (c *Compiler[E, L]) compileBegin(body []value.Form) error {
	if len(body) == 0 {
		c.emit(value.PushConst[E, L](value.Nil[E, L]()))
		return nil
	}
	if err := c.compileForm(body[0]); err != nil {
		return err
	}
	for _, e := range body[1:] {
		c.emit(value.PopTop[E, L]())
		if err := c.compileForm(e); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler[E, L]) compileIf(items []value.Form) error {
	if len(items) < 3 || len(items) > 4 {
		return lerr.Newf(lerr.UnexpectedOperator, "if takes a condition, a then-branch, and an optional else-branch")
	}
	if err := c.compileForm(items[1]); err != nil {
		return err
	}
	jumpToThen := c.emit(value.PopJumpFwdIfTrue[E, L](0))
	if len(items) == 4 {
		if err := c.compileForm(items[3]); err != nil {
			return err
		}
	} else {
		c.emit(value.PushConst[E, L](value.Nil[E, L]()))
	}
	jumpToEnd := c.emit(value.JumpFwd[E, L](0))
	c.patchOffset(jumpToThen, c.here()-(jumpToThen+1))
	if err := c.compileForm(items[2]); err != nil {
		return err
	}
	c.patchOffset(jumpToEnd, c.here()-(jumpToEnd+1))
	return nil
}

func (c *Compiler[E, L]) compileLambda(items []value.Form) error {
	if len(items) < 2 {
		return lerr.Newf(lerr.UnexpectedOperator, "lambda requires a parameter list")
	}
	params, ok := items[1].AsList()
	if !ok {
		return lerr.Newf(lerr.UnexpectedOperator, "lambda parameter list must be a list")
	}
	var paramVals []value.Val[E, L]
	for _, p := range params {
		sym, ok := p.AsSymbol()
		if !ok {
			return lerr.Newf(lerr.UnexpectedOperator, "lambda parameters must be symbols")
		}
		paramVals = append(paramVals, value.Symbol[E, L](sym))
	}
	inner := New[E, L]()
	if err := inner.compileBegin(items[2:]); err != nil {
		return err
	}
	c.emit(value.PushConst[E, L](value.List[E, L](paramVals)))
	c.emit(value.PushConst[E, L](value.BytecodeVal[E, L](inner.code)))
	c.emit(value.MakeFunc[E, L]())
	return nil
}

func (c *Compiler[E, L]) compileDefn(items []value.Form) error {
	if len(items) < 3 {
		return lerr.Newf(lerr.UnexpectedOperator, "defn requires a name and a parameter list")
	}
	name, ok := items[1].AsSymbol()
	if !ok {
		return lerr.Newf(lerr.UnexpectedOperator, "defn requires a symbol name")
	}
	lambdaItems := append([]value.Form{value.FormOfSymbol("lambda")}, items[2:]...)
	if err := c.compileLambda(lambdaItems); err != nil {
		return err
	}
	c.emit(value.DefSym[E, L](name))
	return nil
}

// compileLoop compiles body as an implicit begin that re-executes
// indefinitely via a backward jump, per spec.md §4.2: the loop
// terminates only by yield suspending the fiber or by an error
// propagating out of it.
func (c *Compiler[E, L]) compileLoop(items []value.Form) error {
	start := c.here()
	if err := c.compileBegin(items[1:]); err != nil {
		return err
	}
	c.emit(value.PopTop[E, L]())
	backAt := c.here()
	c.emit(value.JumpBack[E, L](backAt + 1 - start))
	return nil
}

func (c *Compiler[E, L]) compileYield(items []value.Form) error {
	if len(items) != 2 {
		return lerr.Newf(lerr.UnexpectedOperator, "yield takes exactly one argument")
	}
	if err := c.compileForm(items[1]); err != nil {
		return err
	}
	c.emit(value.YieldInst[E, L]())
	return nil
}

func (c *Compiler[E, L]) compileCall(items []value.Form) error {
	if err := c.compileForm(items[0]); err != nil {
		return err
	}
	for _, arg := range items[1:] {
		if err := c.compileForm(arg); err != nil {
			return err
		}
	}
	c.emit(value.CallFunc[E, L](len(items) - 1))
	return nil
}
