package lexer

// keywords maps JSONata reserved words to their token types. Reserved
// words are only recognized as whole names; `android` stays a field name.
var keywords = map[string]TokenType{
	"and":      TOKEN_AND,
	"or":       TOKEN_OR,
	"in":       TOKEN_IN,
	"true":     TOKEN_TRUE,
	"false":    TOKEN_FALSE,
	"null":     TOKEN_NULL,
	"function": TOKEN_FUNCTION,
	"λ":        TOKEN_FUNCTION,
}

// lookupKeyword checks if an identifier is a keyword
func lookupKeyword(name string) (TokenType, bool) {
	tokenType, ok := keywords[name]
	return tokenType, ok
}
