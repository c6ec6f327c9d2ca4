package parser

import (
	"strings"

	"github.com/jsonata-lang/jsonata/compiler/errors"
)

// Param is one parameter spec of a function type signature: a set of
// allowed type letters plus modifiers.
type Param struct {
	// Types holds the allowed type letters: b (bool), n (number),
	// s (string), l (null), a (array), o (object), f (function),
	// j (any JSON value), x (any value)
	Types string

	// Optional marks a `?` parameter that may be omitted
	Optional bool

	// OneOrMore marks a `+` parameter that consumes remaining arguments
	OneOrMore bool

	// ContextDefault marks a `-` parameter that takes the evaluation
	// context when the argument is missing
	ContextDefault bool
}

// Allows reports whether the parameter admits the given type letter
func (p Param) Allows(letter byte) bool {
	return strings.IndexByte(p.Types, letter) >= 0 ||
		strings.IndexByte(p.Types, 'x') >= 0 ||
		(strings.IndexByte(p.Types, 'j') >= 0 && letter != 'f')
}

// Signature is a parsed function type signature
type Signature struct {
	Params []Param
	Return string // declared return type letters; not enforced at runtime
}

const typeLetters = "bnslaofjx"

// ParseSignature parses a signature string of the form `<params[:return]>`.
// The position is the character index of the `<` in the expression source,
// used for error reporting.
func ParseSignature(text string, position int) (*Signature, *errors.Error) {
	if len(text) < 2 || text[0] != '<' || text[len(text)-1] != '>' {
		return nil, errors.New(errors.ErrSyntax, position, text)
	}
	inner := text[1 : len(text)-1]

	sig := &Signature{}
	i := 0
	for i < len(inner) {
		c := inner[i]

		switch {
		case c == ':':
			// Remainder names the return type
			sig.Return = inner[i+1:]
			return sig, nil

		case strings.IndexByte(typeLetters, c) >= 0:
			sig.Params = append(sig.Params, Param{Types: string(c)})
			i++

		case c == '(':
			// Choice group: union of type letters
			end := strings.IndexByte(inner[i:], ')')
			if end < 0 {
				return nil, errors.New(errors.ErrSyntax, position, text)
			}
			union := inner[i+1 : i+end]
			for j := 0; j < len(union); j++ {
				if strings.IndexByte(typeLetters, union[j]) < 0 {
					return nil, errors.New(errors.ErrSyntax, position, text)
				}
			}
			sig.Params = append(sig.Params, Param{Types: union})
			i += end + 1

		case c == '?' || c == '+' || c == '-':
			if len(sig.Params) == 0 {
				return nil, errors.New(errors.ErrSyntax, position, text)
			}
			last := &sig.Params[len(sig.Params)-1]
			switch c {
			case '?':
				last.Optional = true
			case '+':
				last.OneOrMore = true
			case '-':
				last.ContextDefault = true
			}
			i++

		default:
			return nil, errors.New(errors.ErrSyntax, position, text)
		}
	}

	return sig, nil
}
