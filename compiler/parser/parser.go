package parser

// This parser implements the 'Top down operator precedence' algorithm
// developed by Vaughan R Pratt. Each token kind has a left binding power,
// a null denotation (how it parses at the start of an expression) and a
// left denotation (how it extends an expression to its left).
//
// The lexer is pulled one token at a time, and the mode flag passed on
// each pull tells it whether the next token sits in prefix or infix
// position; that is what disambiguates a regex literal from the divide
// operator.

import (
	"github.com/jsonata-lang/jsonata/compiler/errors"
	"github.com/jsonata-lang/jsonata/compiler/lexer"
)

// Parser transforms an expression source string into an AST
type Parser struct {
	lexer *lexer.Lexer
	token lexer.Token
}

// Parse parses a JSONata expression and returns the post-processed AST
func Parse(source string) (*Node, *errors.Error) {
	p := &Parser{lexer: lexer.New(source)}
	if err := p.advance(false); err != nil {
		return nil, err
	}

	node, err := p.expression(0)
	if err != nil {
		return nil, err
	}

	if p.token.Type != lexer.TOKEN_EOF {
		return nil, errors.New(errors.ErrSyntax, p.token.Start, p.token.Lexeme)
	}

	return processAST(node)
}

// bindingPower returns the left binding power of a token type
func bindingPower(t lexer.TokenType) int {
	switch t {
	case lexer.TOKEN_LBRACKET, lexer.TOKEN_LPAREN, lexer.TOKEN_AT, lexer.TOKEN_HASH:
		return 80
	case lexer.TOKEN_DOT:
		return 75
	case lexer.TOKEN_LBRACE:
		return 70
	case lexer.TOKEN_STAR, lexer.TOKEN_SLASH, lexer.TOKEN_PERCENT:
		return 60
	case lexer.TOKEN_PLUS, lexer.TOKEN_MINUS, lexer.TOKEN_AMPERSAND:
		return 50
	case lexer.TOKEN_EQUAL, lexer.TOKEN_NOT_EQUAL,
		lexer.TOKEN_LESS, lexer.TOKEN_LESS_EQUAL,
		lexer.TOKEN_GREATER, lexer.TOKEN_GREATER_EQUAL,
		lexer.TOKEN_CARET, lexer.TOKEN_IN, lexer.TOKEN_APPLY:
		return 40
	case lexer.TOKEN_AND:
		return 30
	case lexer.TOKEN_OR:
		return 25
	case lexer.TOKEN_QUESTION, lexer.TOKEN_RANGE:
		return 20
	case lexer.TOKEN_BIND:
		return 10
	default:
		return 0
	}
}

// advance pulls the next token from the lexer. The infix flag describes
// the position the next token will occupy.
func (p *Parser) advance(infix bool) *errors.Error {
	token, err := p.lexer.Next(infix)
	if err != nil {
		return err
	}
	p.token = token
	return nil
}

// expect consumes the current token, which must be of the expected type
func (p *Parser) expect(expected lexer.TokenType, infix bool) *errors.Error {
	if p.token.Type == lexer.TOKEN_EOF {
		return errors.New(errors.ErrExpectedTokenBeforeEnd, p.token.Start, expected.String())
	}
	if p.token.Type != expected {
		return errors.New(errors.ErrUnexpectedToken, p.token.Start, expected.String(), p.token.Lexeme)
	}
	return p.advance(infix)
}

// expression is the Pratt driver
func (p *Parser) expression(rbp int) (*Node, *errors.Error) {
	t := p.token
	if err := p.advance(true); err != nil {
		return nil, err
	}
	left, err := p.nud(t)
	if err != nil {
		return nil, err
	}

	for rbp < bindingPower(p.token.Type) {
		t = p.token
		if err := p.advance(false); err != nil {
			return nil, err
		}
		left, err = p.led(t, left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// nud parses a token appearing at the start of an expression
func (p *Parser) nud(t lexer.Token) (*Node, *errors.Error) {
	switch t.Type {
	case lexer.TOKEN_NUMBER:
		node := newNode(KindNumber, t.Start)
		node.Number = t.Literal.(float64)
		return node, nil

	case lexer.TOKEN_STRING:
		node := newNode(KindString, t.Start)
		node.Str = t.Literal.(string)
		return node, nil

	case lexer.TOKEN_NAME:
		node := newNode(KindName, t.Start)
		node.Str = t.StringValue()
		return node, nil

	case lexer.TOKEN_VAR:
		node := newNode(KindVar, t.Start)
		node.Str = t.StringValue()
		return node, nil

	case lexer.TOKEN_REGEX:
		node := newNode(KindRegex, t.Start)
		node.Regex = t.Literal.(*lexer.RegexLiteral)
		return node, nil

	case lexer.TOKEN_TRUE, lexer.TOKEN_FALSE:
		node := newNode(KindBool, t.Start)
		node.Bool = t.Type == lexer.TOKEN_TRUE
		return node, nil

	case lexer.TOKEN_NULL:
		return newNode(KindNull, t.Start), nil

	case lexer.TOKEN_MINUS:
		expr, err := p.expression(70)
		if err != nil {
			return nil, err
		}
		if expr.Kind == KindNumber {
			expr.Number = -expr.Number
			return expr, nil
		}
		node := newNode(KindNegate, t.Start)
		node.Expr = expr
		return node, nil

	case lexer.TOKEN_STAR:
		return newNode(KindWildcard, t.Start), nil

	case lexer.TOKEN_DESCENDENT:
		return newNode(KindDescendent, t.Start), nil

	case lexer.TOKEN_PERCENT:
		return newNode(KindParent, t.Start), nil

	case lexer.TOKEN_LPAREN:
		return p.parseBlock(t)

	case lexer.TOKEN_LBRACKET:
		return p.parseArray(t)

	case lexer.TOKEN_LBRACE:
		pairs, err := p.parseObjectRest()
		if err != nil {
			return nil, err
		}
		node := newNode(KindObject, t.Start)
		node.Pairs = pairs
		return node, nil

	case lexer.TOKEN_FUNCTION:
		return p.parseLambda(t)

	case lexer.TOKEN_PIPE:
		return p.parseTransform(t)

	case lexer.TOKEN_QUESTION:
		return newNode(KindPartialArg, t.Start), nil

	case lexer.TOKEN_EOF:
		return nil, errors.New(errors.ErrSyntax, t.Start, "(end)")

	default:
		return nil, errors.New(errors.ErrInvalidUnary, t.Start, t.Lexeme)
	}
}

// parseBlock parses a parenthesized block: expressions separated by `;`
func (p *Parser) parseBlock(t lexer.Token) (*Node, *errors.Error) {
	var exprs []*Node
	for p.token.Type != lexer.TOKEN_RPAREN {
		if p.token.Type == lexer.TOKEN_EOF {
			return nil, errors.New(errors.ErrExpectedTokenBeforeEnd, p.token.Start, ")")
		}
		expr, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
		if p.token.Type != lexer.TOKEN_SEMICOLON {
			break
		}
		if err := p.advance(false); err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.TOKEN_RPAREN, true); err != nil {
		return nil, err
	}

	node := newNode(KindBlock, t.Start)
	node.Exprs = exprs
	return node, nil
}

// parseArray parses an array constructor
func (p *Parser) parseArray(t lexer.Token) (*Node, *errors.Error) {
	var items []*Node
	for p.token.Type != lexer.TOKEN_RBRACKET {
		if p.token.Type == lexer.TOKEN_EOF {
			return nil, errors.New(errors.ErrExpectedTokenBeforeEnd, p.token.Start, "]")
		}
		item, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.token.Type != lexer.TOKEN_COMMA {
			break
		}
		if err := p.advance(false); err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.TOKEN_RBRACKET, true); err != nil {
		return nil, err
	}

	node := newNode(KindArray, t.Start)
	node.Exprs = items
	return node, nil
}

// parseObjectRest parses key/value pairs after an opening `{`
func (p *Parser) parseObjectRest() ([]Pair, *errors.Error) {
	var pairs []Pair
	for p.token.Type != lexer.TOKEN_RBRACE {
		if p.token.Type == lexer.TOKEN_EOF {
			return nil, errors.New(errors.ErrExpectedTokenBeforeEnd, p.token.Start, "}")
		}
		key, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TOKEN_COLON, false); err != nil {
			return nil, err
		}
		value, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
		if p.token.Type != lexer.TOKEN_COMMA {
			break
		}
		if err := p.advance(false); err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.TOKEN_RBRACE, true); err != nil {
		return nil, err
	}
	return pairs, nil
}

// parseLambda parses a function definition
func (p *Parser) parseLambda(t lexer.Token) (*Node, *errors.Error) {
	if err := p.expect(lexer.TOKEN_LPAREN, false); err != nil {
		return nil, err
	}

	var params []*Node
	for p.token.Type != lexer.TOKEN_RPAREN {
		if p.token.Type != lexer.TOKEN_VAR {
			return nil, errors.New(errors.ErrInvalidFunctionParam, p.token.Start, p.token.Lexeme)
		}
		param := newNode(KindVar, p.token.Start)
		param.Str = p.token.StringValue()
		params = append(params, param)
		if err := p.advance(true); err != nil {
			return nil, err
		}
		if p.token.Type != lexer.TOKEN_COMMA {
			break
		}
		if err := p.advance(false); err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.TOKEN_RPAREN, true); err != nil {
		return nil, err
	}

	var signature *Signature
	if p.token.Type == lexer.TOKEN_LESS {
		sigText, err := p.lexer.ScanSignatureRemainder()
		if err != nil {
			return nil, err
		}
		signature, err = ParseSignature("<"+sigText, p.token.Start)
		if err != nil {
			return nil, err
		}
		if err := p.advance(false); err != nil {
			return nil, err
		}
	}

	if err := p.expect(lexer.TOKEN_LBRACE, false); err != nil {
		return nil, err
	}
	body, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TOKEN_RBRACE, true); err != nil {
		return nil, err
	}

	node := newNode(KindLambda, t.Start)
	node.Params = params
	node.Body = body
	node.Signature = signature
	return node, nil
}

// parseTransform parses a transform expression |pattern|update[,delete]|
func (p *Parser) parseTransform(t lexer.Token) (*Node, *errors.Error) {
	pattern, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TOKEN_PIPE, false); err != nil {
		return nil, err
	}
	update, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	var deleteExpr *Node
	if p.token.Type == lexer.TOKEN_COMMA {
		if err := p.advance(false); err != nil {
			return nil, err
		}
		deleteExpr, err = p.expression(0)
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.TOKEN_PIPE, true); err != nil {
		return nil, err
	}

	node := newNode(KindTransform, t.Start)
	node.Pattern = pattern
	node.Update = update
	node.Delete = deleteExpr
	return node, nil
}

// binaryOps maps infix token types to their operator and binding power
var binaryOps = map[lexer.TokenType]struct {
	op BinaryOp
	bp int
}{
	lexer.TOKEN_DOT:           {OpMap, 75},
	lexer.TOKEN_PLUS:          {OpAdd, 50},
	lexer.TOKEN_MINUS:         {OpSubtract, 50},
	lexer.TOKEN_STAR:          {OpMultiply, 60},
	lexer.TOKEN_SLASH:         {OpDivide, 60},
	lexer.TOKEN_PERCENT:       {OpModulus, 60},
	lexer.TOKEN_EQUAL:         {OpEqual, 40},
	lexer.TOKEN_NOT_EQUAL:     {OpNotEqual, 40},
	lexer.TOKEN_LESS:          {OpLessThan, 40},
	lexer.TOKEN_LESS_EQUAL:    {OpLessThanEqual, 40},
	lexer.TOKEN_GREATER:       {OpGreaterThan, 40},
	lexer.TOKEN_GREATER_EQUAL: {OpGreaterThanEqual, 40},
	lexer.TOKEN_AMPERSAND:     {OpConcat, 50},
	lexer.TOKEN_AND:           {OpAnd, 30},
	lexer.TOKEN_OR:            {OpOr, 25},
	lexer.TOKEN_IN:            {OpIn, 40},
	lexer.TOKEN_RANGE:         {OpRange, 20},
	lexer.TOKEN_APPLY:         {OpApply, 40},
}

// led parses a token appearing in infix position, extending left
func (p *Parser) led(t lexer.Token, left *Node) (*Node, *errors.Error) {
	if entry, ok := binaryOps[t.Type]; ok {
		rhs, err := p.expression(entry.bp)
		if err != nil {
			return nil, err
		}
		node := newNode(KindBinary, t.Start)
		node.Op = entry.op
		node.LHS = left
		node.RHS = rhs
		return node, nil
	}

	switch t.Type {
	case lexer.TOKEN_BIND:
		if left.Kind != KindVar {
			return nil, errors.New(errors.ErrExpectedVarLeft, t.Start)
		}
		rhs, err := p.expression(9) // right associative
		if err != nil {
			return nil, err
		}
		node := newNode(KindBinary, t.Start)
		node.Op = OpBind
		node.LHS = left
		node.RHS = rhs
		return node, nil

	case lexer.TOKEN_LPAREN:
		return p.parseCall(t, left)

	case lexer.TOKEN_LBRACKET:
		if p.token.Type == lexer.TOKEN_RBRACKET {
			// a[] keeps the result an array even when singleton
			left.KeepArray = true
			if err := p.advance(true); err != nil {
				return nil, err
			}
			return left, nil
		}
		expr, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TOKEN_RBRACKET, true); err != nil {
			return nil, err
		}
		node := newNode(KindBinary, t.Start)
		node.Op = OpPredicate
		node.LHS = left
		node.RHS = expr
		return node, nil

	case lexer.TOKEN_CARET:
		return p.parseSort(t, left)

	case lexer.TOKEN_LBRACE:
		pairs, err := p.parseObjectRest()
		if err != nil {
			return nil, err
		}
		node := newNode(KindGroupByExpr, t.Start)
		node.LHS = left
		node.Pairs = pairs
		return node, nil

	case lexer.TOKEN_AT:
		rhs, err := p.expression(80)
		if err != nil {
			return nil, err
		}
		if rhs.Kind != KindVar {
			return nil, errors.New(errors.ErrExpectedVarRight, t.Start, "@")
		}
		node := newNode(KindBinary, t.Start)
		node.Op = OpContextBind
		node.LHS = left
		node.RHS = rhs
		return node, nil

	case lexer.TOKEN_HASH:
		rhs, err := p.expression(80)
		if err != nil {
			return nil, err
		}
		if rhs.Kind != KindVar {
			return nil, errors.New(errors.ErrExpectedVarRight, t.Start, "#")
		}
		node := newNode(KindBinary, t.Start)
		node.Op = OpPositionalBind
		node.LHS = left
		node.RHS = rhs
		return node, nil

	case lexer.TOKEN_QUESTION:
		then, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		node := newNode(KindTernary, t.Start)
		node.Cond = left
		node.Then = then
		if p.token.Type == lexer.TOKEN_COLON {
			if err := p.advance(false); err != nil {
				return nil, err
			}
			node.Else, err = p.expression(0)
			if err != nil {
				return nil, err
			}
		}
		return node, nil

	default:
		return nil, errors.New(errors.ErrUnknownOperator, t.Start, t.Lexeme)
	}
}

// parseCall parses a function invocation, tracking `?` partial-application
// holes among the arguments
func (p *Parser) parseCall(t lexer.Token, left *Node) (*Node, *errors.Error) {
	node := newNode(KindFunction, t.Start)
	node.Proc = left

	for p.token.Type != lexer.TOKEN_RPAREN {
		if p.token.Type == lexer.TOKEN_EOF {
			return nil, errors.New(errors.ErrExpectedTokenBeforeEnd, p.token.Start, ")")
		}
		arg, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		if arg.Kind == KindPartialArg {
			node.IsPartial = true
		}
		node.Args = append(node.Args, arg)
		if p.token.Type != lexer.TOKEN_COMMA {
			break
		}
		if err := p.advance(false); err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.TOKEN_RPAREN, true); err != nil {
		return nil, err
	}

	return node, nil
}

// parseSort parses an order-by clause ^(term, ...) where each term may be
// prefixed with `<` (ascending, the default) or `>` (descending)
func (p *Parser) parseSort(t lexer.Token, left *Node) (*Node, *errors.Error) {
	if err := p.expect(lexer.TOKEN_LPAREN, false); err != nil {
		return nil, err
	}

	var terms []SortTerm
	for {
		descending := false
		switch p.token.Type {
		case lexer.TOKEN_LESS:
			if err := p.advance(false); err != nil {
				return nil, err
			}
		case lexer.TOKEN_GREATER:
			descending = true
			if err := p.advance(false); err != nil {
				return nil, err
			}
		}
		expr, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		terms = append(terms, SortTerm{Expr: expr, Descending: descending})
		if p.token.Type != lexer.TOKEN_COMMA {
			break
		}
		if err := p.advance(false); err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.TOKEN_RPAREN, true); err != nil {
		return nil, err
	}

	node := newNode(KindOrderBy, t.Start)
	node.LHS = left
	node.SortTerms = terms
	return node, nil
}
