package main

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/wippyai/ffi-binder/abi"
	"github.com/wippyai/ffi-binder/errors"
	"github.com/wippyai/ffi-binder/layout"
)

// Signature grammar:
//
//	signature := "(" [ type { "," type } ] ")" [ "->" type ]
//	type      := primitive | "struct" "{" members "}" | "union" "{" members "}"
//	           | "[" count "x" type "]" | "x" bits
//
// Primitives accept both the short spellings (i8 i16 i32 i64 f32 f64 ptr)
// and the C names (char short int long float double pointer).
var primitives = map[string]*layout.Value{
	"i8":      layout.CChar,
	"i16":     layout.CShort,
	"i32":     layout.CInt,
	"i64":     layout.CLong,
	"f32":     layout.CFloat,
	"f64":     layout.CDouble,
	"ptr":     layout.CPointer,
	"char":    layout.CChar,
	"short":   layout.CShort,
	"int":     layout.CInt,
	"long":    layout.CLong,
	"float":   layout.CFloat,
	"double":  layout.CDouble,
	"pointer": layout.CPointer,
}

// ParseSignature parses a textual function signature into the native
// descriptor and the managed carrier signature derived from it.
func ParseSignature(s string) (layout.Func, abi.Signature, error) {
	p := &sigParser{toks: tokenize(s)}

	fd, err := p.parseFunc()
	if err != nil {
		return layout.Func{}, abi.Signature{}, err
	}
	if p.pos != len(p.toks) {
		return layout.Func{}, abi.Signature{}, p.errorf("trailing input %q", p.toks[p.pos])
	}

	sig, err := signatureFor(fd)
	if err != nil {
		return layout.Func{}, abi.Signature{}, err
	}
	return fd, sig, nil
}

func tokenize(s string) []string {
	var toks []string
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case unicode.IsSpace(rune(c)):
			i++
		case strings.ContainsRune("(){}[],", rune(c)):
			toks = append(toks, string(c))
			i++
		case c == '-' && i+1 < len(s) && s[i+1] == '>':
			toks = append(toks, "->")
			i += 2
		default:
			j := i
			for j < len(s) && !unicode.IsSpace(rune(s[j])) && !strings.ContainsRune("(){}[],-", rune(s[j])) {
				j++
			}
			if j == i {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		}
	}
	return toks
}

type sigParser struct {
	toks []string
	pos  int
}

func (p *sigParser) errorf(format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Detail(format, args...).
		Build()
}

func (p *sigParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *sigParser) next() string {
	t := p.peek()
	if t != "" {
		p.pos++
	}
	return t
}

func (p *sigParser) expect(tok string) error {
	if got := p.next(); got != tok {
		if got == "" {
			return p.errorf("unexpected end of signature, want %q", tok)
		}
		return p.errorf("unexpected %q, want %q", got, tok)
	}
	return nil
}

func (p *sigParser) parseFunc() (layout.Func, error) {
	if err := p.expect("("); err != nil {
		return layout.Func{}, err
	}

	var args []layout.Layout
	for p.peek() != ")" {
		if len(args) > 0 {
			if err := p.expect(","); err != nil {
				return layout.Func{}, err
			}
		}
		arg, err := p.parseType()
		if err != nil {
			return layout.Func{}, err
		}
		args = append(args, arg)
	}
	p.next() // ")"

	if p.peek() != "->" {
		return layout.FuncVoid(args...), nil
	}
	p.next()
	ret, err := p.parseType()
	if err != nil {
		return layout.Func{}, err
	}
	return layout.FuncOf(ret, args...), nil
}

func (p *sigParser) parseType() (layout.Layout, error) {
	switch tok := p.next(); {
	case tok == "":
		return nil, p.errorf("unexpected end of signature, want a type")
	case tok == "struct":
		return p.parseGroup(layout.StructOf)
	case tok == "union":
		return p.parseGroup(layout.UnionOf)
	case tok == "[":
		return p.parseSequence()
	case primitives[tok] != nil:
		return primitives[tok], nil
	case len(tok) > 1 && tok[0] == 'x':
		bits, err := strconv.ParseUint(tok[1:], 10, 32)
		if err != nil || bits == 0 {
			return nil, p.errorf("bad padding width %q", tok)
		}
		return layout.Padding(bits), nil
	default:
		return nil, p.errorf("unknown type %q", tok)
	}
}

func (p *sigParser) parseGroup(of func(...layout.Layout) *layout.Group) (layout.Layout, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var members []layout.Layout
	for p.peek() != "}" {
		if len(members) > 0 {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
		m, err := p.parseType()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	p.next() // "}"
	if len(members) == 0 {
		return nil, p.errorf("empty aggregate")
	}
	return of(members...), nil
}

func (p *sigParser) parseSequence() (layout.Layout, error) {
	countTok := p.next()
	count, err := strconv.ParseUint(countTok, 10, 32)
	if err != nil || count == 0 {
		return nil, p.errorf("bad element count %q", countTok)
	}
	if err := p.expect("x"); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	return layout.SequenceOf(count, elem), nil
}

// signatureFor derives the managed carrier for each layout position.
func signatureFor(fd layout.Func) (abi.Signature, error) {
	var sig abi.Signature
	for _, arg := range fd.Arguments() {
		c, err := carrierFor(arg)
		if err != nil {
			return abi.Signature{}, err
		}
		sig.Params = append(sig.Params, c)
	}
	if ret, ok := fd.Return(); ok {
		c, err := carrierFor(ret)
		if err != nil {
			return abi.Signature{}, err
		}
		sig.Ret = c
	}
	return sig, nil
}

func carrierFor(l layout.Layout) (abi.Carrier, error) {
	switch l := l.(type) {
	case *layout.Value:
		class, ok := l.Class()
		if !ok {
			return 0, errors.MissingABIClass(l.String())
		}
		switch class {
		case layout.ClassPointer:
			return abi.CarrierPointer, nil
		case layout.ClassVector:
			if l.BitSize() == 32 {
				return abi.CarrierFloat32, nil
			}
			return abi.CarrierFloat64, nil
		default:
			return abi.CarrierForSize(l.ByteSize())
		}
	case *layout.Group:
		return abi.CarrierSegment, nil
	case *layout.Sequence:
		return abi.CarrierForSize(l.ByteSize())
	default:
		return 0, errors.UnsupportedLayout(errors.PhaseParse, l.String())
	}
}
