package value

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/kristofer/lemma/lerr"
)

// Disassemble renders a bytecode sequence as human-readable mnemonics,
// one instruction per line as "index  OPCODE operand"; jump operands are
// followed by the index they land on.
func Disassemble[E, L any](code []Inst[E, L]) string {
	var b strings.Builder
	for i, inst := range code {
		fmt.Fprintf(&b, "%4d  %-20s", i, inst.Op.String())
		switch inst.Op {
		case OpPushConst:
			fmt.Fprintf(&b, " %s", inst.Const.String())
		case OpDefSym, OpSetSym, OpGetSym:
			fmt.Fprintf(&b, " %s", inst.Sym)
		case OpCallFunc:
			fmt.Fprintf(&b, " %d", inst.Operand)
		case OpJumpFwd, OpPopJumpFwdIfTrue:
			fmt.Fprintf(&b, " +%d -> %d", inst.Operand, i+1+inst.Operand)
		case OpJumpBack:
			fmt.Fprintf(&b, " -%d -> %d", inst.Operand, i+1-inst.Operand)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Binary container format for compiled bytecode ("lemma bytecode", .lb
// files), grounded on the teacher's pkg/bytecode/format.go: a magic
// number, a version, and an instruction stream. There is no separate
// constant pool; each PushConst instruction carries its constant inline.
// Only the portable Val kinds (everything except Lambda, NativeFn, Error,
// and Extern, which have no stable byte representation) can round-trip
// through this format; encoding any other kind fails rather than silently
// losing data.
const (
	magicLemb  uint32 = 0x4c454d42 // "LEMB"
	formatVers uint32 = 1
)

const (
	tagNil byte = iota
	tagBool
	tagInt
	tagString
	tagSymbol
	tagKeyword
	tagList
	tagBytecode
)

// EncodeBytecode writes code to w in the binary .lb format.
func EncodeBytecode[E, L any](w io.Writer, code []Inst[E, L]) error {
	if err := binary.Write(w, binary.BigEndian, magicLemb); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, formatVers); err != nil {
		return err
	}
	return encodeInsts(w, code)
}

func encodeInsts[E, L any](w io.Writer, code []Inst[E, L]) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(code))); err != nil {
		return err
	}
	for _, inst := range code {
		if err := binary.Write(w, binary.BigEndian, byte(inst.Op)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, int32(inst.Operand)); err != nil {
			return err
		}
		if err := writeString(w, string(inst.Sym)); err != nil {
			return err
		}
		if inst.Op == OpPushConst {
			if err := encodeVal(w, inst.Const); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func encodeVal[E, L any](w io.Writer, v Val[E, L]) error {
	switch v.kind {
	case KindNil:
		return binary.Write(w, binary.BigEndian, tagNil)
	case KindBool:
		if err := binary.Write(w, binary.BigEndian, tagBool); err != nil {
			return err
		}
		b, _ := v.AsBool()
		var bb byte
		if b {
			bb = 1
		}
		return binary.Write(w, binary.BigEndian, bb)
	case KindInt:
		if err := binary.Write(w, binary.BigEndian, tagInt); err != nil {
			return err
		}
		i, _ := v.AsInt()
		return binary.Write(w, binary.BigEndian, i)
	case KindString:
		if err := binary.Write(w, binary.BigEndian, tagString); err != nil {
			return err
		}
		s, _ := v.AsString()
		return writeString(w, s)
	case KindSymbol:
		if err := binary.Write(w, binary.BigEndian, tagSymbol); err != nil {
			return err
		}
		s, _ := v.AsSymbol()
		return writeString(w, string(s))
	case KindKeyword:
		if err := binary.Write(w, binary.BigEndian, tagKeyword); err != nil {
			return err
		}
		k, _ := v.AsKeyword()
		return writeString(w, string(k))
	case KindList:
		if err := binary.Write(w, binary.BigEndian, tagList); err != nil {
			return err
		}
		list, _ := v.AsList()
		if err := binary.Write(w, binary.BigEndian, uint32(len(list))); err != nil {
			return err
		}
		for _, item := range list {
			if err := encodeVal(w, item); err != nil {
				return err
			}
		}
		return nil
	case KindBytecode:
		if err := binary.Write(w, binary.BigEndian, tagBytecode); err != nil {
			return err
		}
		code, _ := v.AsBytecode()
		return encodeInsts(w, code)
	default:
		return lerr.Newf(lerr.InvalidFormToExpr, "cannot encode %s constant to bytecode format", v.kind)
	}
}

// DecodeBytecode reads a .lb file produced by EncodeBytecode.
func DecodeBytecode[E, L any](r io.Reader) ([]Inst[E, L], error) {
	var magic, vers uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, err
	}
	if magic != magicLemb {
		return nil, fmt.Errorf("not a lemma bytecode file (bad magic %#x)", magic)
	}
	if err := binary.Read(r, binary.BigEndian, &vers); err != nil {
		return nil, err
	}
	if vers != formatVers {
		return nil, fmt.Errorf("unsupported bytecode format version %d", vers)
	}
	return decodeInsts[E, L](r)
}

func decodeInsts[E, L any](r io.Reader) ([]Inst[E, L], error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	code := make([]Inst[E, L], n)
	for i := range code {
		var op byte
		if err := binary.Read(r, binary.BigEndian, &op); err != nil {
			return nil, err
		}
		var operand int32
		if err := binary.Read(r, binary.BigEndian, &operand); err != nil {
			return nil, err
		}
		sym, err := readString(r)
		if err != nil {
			return nil, err
		}
		inst := Inst[E, L]{Op: Opcode(op), Operand: int(operand), Sym: SymbolID(sym)}
		if inst.Op == OpPushConst {
			v, err := decodeVal[E, L](r)
			if err != nil {
				return nil, err
			}
			inst.Const = v
		}
		code[i] = inst
	}
	return code, nil
}

func decodeVal[E, L any](r io.Reader) (Val[E, L], error) {
	var tag byte
	if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
		return Val[E, L]{}, err
	}
	switch tag {
	case tagNil:
		return Nil[E, L](), nil
	case tagBool:
		var b byte
		if err := binary.Read(r, binary.BigEndian, &b); err != nil {
			return Val[E, L]{}, err
		}
		return Bool[E, L](b != 0), nil
	case tagInt:
		var i int32
		if err := binary.Read(r, binary.BigEndian, &i); err != nil {
			return Val[E, L]{}, err
		}
		return Int[E, L](i), nil
	case tagString:
		s, err := readString(r)
		if err != nil {
			return Val[E, L]{}, err
		}
		return String[E, L](s), nil
	case tagSymbol:
		s, err := readString(r)
		if err != nil {
			return Val[E, L]{}, err
		}
		return Symbol[E, L](SymbolID(s)), nil
	case tagKeyword:
		s, err := readString(r)
		if err != nil {
			return Val[E, L]{}, err
		}
		return Keyword[E, L](KeywordID(s)), nil
	case tagList:
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return Val[E, L]{}, err
		}
		items := make([]Val[E, L], n)
		for i := range items {
			v, err := decodeVal[E, L](r)
			if err != nil {
				return Val[E, L]{}, err
			}
			items[i] = v
		}
		return List[E, L](items), nil
	case tagBytecode:
		code, err := decodeInsts[E, L](r)
		if err != nil {
			return Val[E, L]{}, err
		}
		return BytecodeVal[E, L](code), nil
	default:
		return Val[E, L]{}, fmt.Errorf("unknown constant tag %d", tag)
	}
}
