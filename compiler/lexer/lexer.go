package lexer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jsonata-lang/jsonata/compiler/errors"
)

// Lexer tokenizes a JSONata expression. Unlike a conventional scanner it
// is pulled one token at a time by the parser, because tokenization is
// mode-dependent: in prefix position a `/` starts a regex literal, in
// infix position it is the divide operator.
type Lexer struct {
	source  []rune // Source expression as runes for Unicode support
	start   int    // Start position of current token
	current int    // Current position in source
}

// New creates a new Lexer for the given expression source
func New(source string) *Lexer {
	return &Lexer{
		source:  []rune(source),
		start:   0,
		current: 0,
	}
}

// Next scans and returns the next token. The infix flag is supplied by the
// parser on each call and selects between the divide operator and a regex
// literal when a `/` is encountered.
func (l *Lexer) Next(infix bool) (Token, *errors.Error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	l.start = l.current

	if l.isAtEnd() {
		return l.makeToken(TOKEN_EOF, nil), nil
	}

	if !infix && l.peek() == '/' {
		return l.scanRegex()
	}

	// Multi-character operators first
	switch {
	case l.matchSequence(".."):
		return l.makeToken(TOKEN_RANGE, nil), nil
	case l.matchSequence(":="):
		return l.makeToken(TOKEN_BIND, nil), nil
	case l.matchSequence("!="):
		return l.makeToken(TOKEN_NOT_EQUAL, nil), nil
	case l.matchSequence("<="):
		return l.makeToken(TOKEN_LESS_EQUAL, nil), nil
	case l.matchSequence(">="):
		return l.makeToken(TOKEN_GREATER_EQUAL, nil), nil
	case l.matchSequence("**"):
		return l.makeToken(TOKEN_DESCENDENT, nil), nil
	case l.matchSequence("~>"):
		return l.makeToken(TOKEN_APPLY, nil), nil
	}

	r := l.advance()

	switch r {
	case '.':
		return l.makeToken(TOKEN_DOT, nil), nil
	case '[':
		return l.makeToken(TOKEN_LBRACKET, nil), nil
	case ']':
		return l.makeToken(TOKEN_RBRACKET, nil), nil
	case '{':
		return l.makeToken(TOKEN_LBRACE, nil), nil
	case '}':
		return l.makeToken(TOKEN_RBRACE, nil), nil
	case '(':
		return l.makeToken(TOKEN_LPAREN, nil), nil
	case ')':
		return l.makeToken(TOKEN_RPAREN, nil), nil
	case ',':
		return l.makeToken(TOKEN_COMMA, nil), nil
	case ';':
		return l.makeToken(TOKEN_SEMICOLON, nil), nil
	case ':':
		return l.makeToken(TOKEN_COLON, nil), nil
	case '?':
		return l.makeToken(TOKEN_QUESTION, nil), nil
	case '+':
		return l.makeToken(TOKEN_PLUS, nil), nil
	case '-':
		return l.makeToken(TOKEN_MINUS, nil), nil
	case '*':
		return l.makeToken(TOKEN_STAR, nil), nil
	case '/':
		return l.makeToken(TOKEN_SLASH, nil), nil
	case '%':
		return l.makeToken(TOKEN_PERCENT, nil), nil
	case '|':
		return l.makeToken(TOKEN_PIPE, nil), nil
	case '=':
		return l.makeToken(TOKEN_EQUAL, nil), nil
	case '<':
		return l.makeToken(TOKEN_LESS, nil), nil
	case '>':
		return l.makeToken(TOKEN_GREATER, nil), nil
	case '^':
		return l.makeToken(TOKEN_CARET, nil), nil
	case '&':
		return l.makeToken(TOKEN_AMPERSAND, nil), nil
	case '!':
		return l.makeToken(TOKEN_BANG, nil), nil
	case '~':
		return l.makeToken(TOKEN_TILDE, nil), nil
	case '@':
		return l.makeToken(TOKEN_AT, nil), nil
	case '#':
		return l.makeToken(TOKEN_HASH, nil), nil
	case '"', '\'':
		return l.scanString(r)
	case '`':
		return l.scanQuotedName()
	case '$':
		return l.scanVariable()
	}

	if isDigit(r) {
		return l.scanNumber()
	}

	return l.scanName()
}

// ScanSignatureRemainder consumes raw characters up to and including the
// `>` that closes a function type signature. The opening `<` has already
// been consumed as a token by the parser; nested angle brackets are
// balanced. The returned text includes the closing `>`.
func (l *Lexer) ScanSignatureRemainder() (string, *errors.Error) {
	start := l.current
	depth := 1
	for {
		if l.isAtEnd() {
			return "", errors.New(errors.ErrSyntax, start, "(end)")
		}
		r := l.advance()
		if r == '<' {
			depth++
		} else if r == '>' {
			depth--
			if depth == 0 {
				break
			}
		}
	}
	return string(l.source[start:l.current]), nil
}

// skipWhitespaceAndComments consumes whitespace and /* ... */ comments.
// An unterminated comment fails with S0106.
func (l *Lexer) skipWhitespaceAndComments() *errors.Error {
	for !l.isAtEnd() {
		r := l.peek()
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\v':
			l.advance()
		case r == '/' && l.peekNext() == '*':
			commentStart := l.current
			l.advance()
			l.advance()
			for !l.matchSequence("*/") {
				if l.isAtEnd() {
					return errors.New(errors.ErrUnterminatedComment, commentStart)
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

// scanRegex scans a /pattern/flags literal. The opening slash has not been
// consumed yet. Slashes inside character classes do not terminate the
// pattern.
func (l *Lexer) scanRegex() (Token, *errors.Error) {
	l.advance() // consume opening /

	patternStart := l.current
	depth := 0
	for {
		if l.isAtEnd() {
			return Token{}, errors.New(errors.ErrUnterminatedRegex, l.start)
		}
		r := l.peek()
		if r == '\\' {
			l.advance()
			if !l.isAtEnd() {
				l.advance()
			}
			continue
		}
		if r == '[' {
			depth++
		} else if r == ']' && depth > 0 {
			depth--
		} else if r == '/' && depth == 0 {
			break
		}
		l.advance()
	}

	pattern := string(l.source[patternStart:l.current])
	l.advance() // consume closing /

	var flags strings.Builder
	for !l.isAtEnd() && (l.peek() == 'i' || l.peek() == 'm') {
		flags.WriteRune(l.advance())
	}

	if pattern == "" {
		return Token{}, errors.New(errors.ErrEmptyRegex, l.start)
	}

	goPattern := pattern
	if flags.Len() > 0 {
		goPattern = "(?" + flags.String() + ")" + pattern
	}
	re, err := regexp.Compile(goPattern)
	if err != nil {
		return Token{}, errors.New(errors.ErrInvalidRegex, l.start, err.Error())
	}

	return l.makeToken(TOKEN_REGEX, &RegexLiteral{
		Source: pattern,
		Flags:  flags.String(),
		Re:     re,
	}), nil
}

// scanString scans a string literal delimited by quote, handling the
// supported escape sequences.
func (l *Lexer) scanString(quote rune) (Token, *errors.Error) {
	var builder strings.Builder

	for {
		if l.isAtEnd() {
			return Token{}, errors.New(errors.ErrUnterminatedString, l.start)
		}

		r := l.advance()
		if r == quote {
			break
		}

		if r != '\\' {
			builder.WriteRune(r)
			continue
		}

		if l.isAtEnd() {
			return Token{}, errors.New(errors.ErrUnterminatedString, l.start)
		}

		escaped := l.advance()
		switch escaped {
		case '"':
			builder.WriteRune('"')
		case '\'':
			builder.WriteRune('\'')
		case '\\':
			builder.WriteRune('\\')
		case '/':
			builder.WriteRune('/')
		case 'b':
			builder.WriteRune('\b')
		case 'f':
			builder.WriteRune('\f')
		case 'n':
			builder.WriteRune('\n')
		case 'r':
			builder.WriteRune('\r')
		case 't':
			builder.WriteRune('\t')
		case 'u':
			code := 0
			for i := 0; i < 4; i++ {
				if l.isAtEnd() || !isHexDigit(l.peek()) {
					return Token{}, errors.New(errors.ErrInvalidUnicodeEscape, l.current)
				}
				code = code*16 + hexValue(l.advance())
			}
			builder.WriteRune(rune(code))
		default:
			return Token{}, errors.New(errors.ErrUnsupportedEscape, l.current-1, string(escaped))
		}
	}

	return l.makeToken(TOKEN_STRING, builder.String()), nil
}

// scanQuotedName scans a backtick-quoted property name
func (l *Lexer) scanQuotedName() (Token, *errors.Error) {
	nameStart := l.current
	for {
		if l.isAtEnd() {
			return Token{}, errors.New(errors.ErrUnterminatedQuotedName, l.start)
		}
		if l.advance() == '`' {
			break
		}
	}
	name := string(l.source[nameStart : l.current-1])
	return l.makeToken(TOKEN_NAME, name), nil
}

// scanVariable scans a $name variable reference. A bare `$` yields a
// variable with an empty name, which refers to the current context; `$$`
// yields the variable named `$`, bound to the evaluation root.
func (l *Lexer) scanVariable() (Token, *errors.Error) {
	if l.peek() == '$' {
		l.advance()
		return l.makeToken(TOKEN_VAR, "$"), nil
	}
	nameStart := l.current
	for !l.isAtEnd() && isNameRune(l.peek()) {
		l.advance()
	}
	return l.makeToken(TOKEN_VAR, string(l.source[nameStart:l.current])), nil
}

// scanNumber scans a number literal: decimal digits with an optional
// fraction and exponent.
func (l *Lexer) scanNumber() (Token, *errors.Error) {
	for isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		next := l.peekNext()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
			l.advance()
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}

	lexeme := string(l.source[l.start:l.current])
	value, err := strconv.ParseFloat(lexeme, 64)
	if err != nil || math.IsInf(value, 0) {
		return Token{}, errors.New(errors.ErrNumberOutOfRange, l.start, lexeme)
	}

	return l.makeToken(TOKEN_NUMBER, value), nil
}

// scanName scans a field name or keyword
func (l *Lexer) scanName() (Token, *errors.Error) {
	for !l.isAtEnd() && isNameRune(l.peek()) {
		l.advance()
	}

	lexeme := string(l.source[l.start:l.current])

	if tokenType, isKeyword := lookupKeyword(lexeme); isKeyword {
		return l.makeToken(tokenType, nil), nil
	}

	return l.makeToken(TOKEN_NAME, lexeme), nil
}

// Helper methods

// isAtEnd checks if we've reached the end of the source
func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

// advance consumes and returns the current character
func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	r := l.source[l.current]
	l.current++
	return r
}

// matchSequence consumes the given characters if they appear next
func (l *Lexer) matchSequence(seq string) bool {
	runes := []rune(seq)
	if l.current+len(runes) > len(l.source) {
		return false
	}
	for i, r := range runes {
		if l.source[l.current+i] != r {
			return false
		}
	}
	l.current += len(runes)
	return true
}

// peek returns the current character without consuming it
func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

// peekNext returns the next character without consuming it
func (l *Lexer) peekNext() rune {
	return l.peekAt(1)
}

// peekAt returns the character at the given lookahead offset
func (l *Lexer) peekAt(offset int) rune {
	if l.current+offset >= len(l.source) {
		return 0
	}
	return l.source[l.current+offset]
}

// makeToken builds a token spanning the current lexeme
func (l *Lexer) makeToken(tokenType TokenType, literal interface{}) Token {
	return Token{
		Type:    tokenType,
		Lexeme:  string(l.source[l.start:l.current]),
		Literal: literal,
		Start:   l.start,
		End:     l.current,
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	default:
		return int(r-'A') + 10
	}
}

// isNameRune reports whether a rune may appear in an unquoted name. Names
// run until whitespace or a character that starts an operator or literal.
func isNameRune(r rune) bool {
	switch r {
	case 0, ' ', '\t', '\r', '\n', '\v',
		'.', '[', ']', '{', '}', '(', ')', ',', ';', ':', '?',
		'+', '-', '*', '/', '%', '|', '=', '<', '>', '^', '&',
		'!', '~', '@', '#', '$', '"', '\'', '`', '\\':
		return false
	}
	return true
}
