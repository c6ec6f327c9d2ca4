package errors

// Error code constants organized by phase
// S01xx: tokenizer errors
// S02xx: parser errors
// S03xx: regex parser errors
// Txxxx: type errors at evaluation
// Dxxxx: dynamic errors from operators and built-ins
// Uxxxx: resource-limit errors

const (
	// Tokenizer errors (S01xx)
	ErrUnterminatedString  = "S0101"
	ErrNumberOutOfRange    = "S0102"
	ErrUnsupportedEscape   = "S0103"
	ErrInvalidUnicodeEscape = "S0104"
	ErrUnterminatedQuotedName = "S0105"
	ErrUnterminatedComment = "S0106"

	// Parser errors (S02xx)
	ErrSyntax                 = "S0201"
	ErrUnexpectedToken        = "S0202"
	ErrExpectedTokenBeforeEnd = "S0203"
	ErrUnknownOperator        = "S0204"
	ErrInvalidFunctionParam   = "S0208"
	ErrPredicateAfterGroup    = "S0209"
	ErrMultipleGroupBy        = "S0210"
	ErrInvalidUnary           = "S0211"
	ErrExpectedVarLeft        = "S0212"
	ErrInvalidStep            = "S0213"
	ErrExpectedVarRight       = "S0214"
	ErrBindingAfterPredicates = "S0215"
	ErrBindingAfterSort       = "S0216"

	// Regex errors (S03xx)
	ErrEmptyRegex        = "S0301"
	ErrUnterminatedRegex = "S0302"
	ErrInvalidRegex      = "S0303"

	// Type errors (Txxxx)
	ErrArgumentNotValid        = "T0410"
	ErrArgumentMustBeArrayOfType = "T0412"
	ErrNonStringKey            = "T1003"
	ErrInvokedNonFunctionSuggest = "T1005"
	ErrInvokedNonFunction      = "T1006"
	ErrLeftSideNotNumber       = "T2001"
	ErrRightSideNotNumber      = "T2002"
	ErrLeftSideNotInteger      = "T2003"
	ErrRightSideNotInteger     = "T2004"
	ErrRightSideNotFunction    = "T2006"
	ErrCompareTypeMismatch     = "T2007"
	ErrInvalidOrderBy          = "T2008"
	ErrBinaryOpMismatch        = "T2009"
	ErrBinaryOpTypes           = "T2010"
	ErrUpdateNotObject         = "T2011"
	ErrDeleteNotStrings        = "T2012"
	ErrBadClone                = "T2013"

	// Dynamic errors (Dxxxx)
	ErrNumberOfOutRange     = "D1001"
	ErrNegatingNonNumeric   = "D1002"
	ErrZeroLengthMatch      = "D1004"
	ErrMultipleKeys         = "D1009"
	ErrRangeOutOfBounds     = "D2014"
	ErrStringNotFinite      = "D3001"
	ErrEmptyPattern         = "D3010"
	ErrNegativeReplaceLimit = "D3011"
	ErrInvalidReplacement   = "D3012"
	ErrNegativeSplitLimit   = "D3020"
	ErrNonNumericCast       = "D3030"
	ErrReduceArity          = "D3050"
	ErrSqrtNegative         = "D3060"
	ErrPowUnrepresentable   = "D3061"
	ErrInvalidDefaultSort   = "D3070"
	ErrPictureNameModifier  = "D3133"
	ErrTooManyTzDigits      = "D3134"
	ErrPictureNoClosingBracket = "D3135"
	ErrUserError            = "D3137"
	ErrSingleMultipleMatches = "D3138"
	ErrSingleNoMatches      = "D3139"
	ErrAssertFailed         = "D3141"

	// Resource-limit errors (Uxxxx)
	ErrLimitExceeded = "U1001"
)

// Messages maps error codes to their message format strings. Verbs are
// filled from the args passed to New, in order.
var Messages = map[string]string{
	ErrUnterminatedString:     "String literal must be terminated by a matching quote",
	ErrNumberOutOfRange:       "Number out of range: %v",
	ErrUnsupportedEscape:      "Unsupported escape sequence: \\%v",
	ErrInvalidUnicodeEscape:   "The escape sequence \\u must be followed by 4 hex digits",
	ErrUnterminatedQuotedName: "Quoted property name must be terminated with a backquote (`)",
	ErrUnterminatedComment:    "Comment has no closing tag",

	ErrSyntax:                 "Syntax error `%v`",
	ErrUnexpectedToken:        "Expected `%v`, got `%v`",
	ErrExpectedTokenBeforeEnd: "Expected `%v` before end of expression",
	ErrUnknownOperator:        "Unknown operator: `%v`",
	ErrInvalidFunctionParam:   "Parameter `%v` of function definition must be a variable name (start with $)",
	ErrPredicateAfterGroup:    "A predicate cannot follow a grouping expression in a step",
	ErrMultipleGroupBy:        "Each step can only have one grouping expression",
	ErrInvalidUnary:           "The symbol `%v` cannot be used as a unary operator",
	ErrExpectedVarLeft:        "The left side of `:=` must be a variable name (start with $)",
	ErrInvalidStep:            "The literal value `%v` cannot be used as a step within a path expression",
	ErrExpectedVarRight:       "The right side of `%v` must be a variable name (start with $)",
	ErrBindingAfterPredicates: "A context variable binding must precede any predicates on a step",
	ErrBindingAfterSort:       "A context variable binding must precede the 'order-by' clause on a step",

	ErrEmptyRegex:        "Empty regular expressions are not allowed",
	ErrUnterminatedRegex: "No terminating / in regular expression",
	ErrInvalidRegex:      "%v",

	ErrArgumentNotValid:          "Argument %v of function %v does not match function signature",
	ErrArgumentMustBeArrayOfType: "Argument %v of function %v must be an array of %v",
	ErrNonStringKey:              "Key in object structure must evaluate to a string; got: %v",
	ErrInvokedNonFunctionSuggest: "Attempted to invoke a non-function. Did you mean $%v?",
	ErrInvokedNonFunction:        "Attempted to invoke a non-function",
	ErrLeftSideNotNumber:         "The left side of the `%v` operator must evaluate to a number",
	ErrRightSideNotNumber:        "The right side of the `%v` operator must evaluate to a number",
	ErrLeftSideNotInteger:        "The left side of the range operator (..) must evaluate to an integer",
	ErrRightSideNotInteger:       "The right side of the range operator (..) must evaluate to an integer",
	ErrRightSideNotFunction:      "The right side of the function application operator ~> must be a function",
	ErrCompareTypeMismatch:       "Type mismatch when comparing values %v and %v in order-by clause",
	ErrInvalidOrderBy:            "The expressions within an order-by clause must evaluate to numeric or string values",
	ErrBinaryOpMismatch:          "The values %v and %v either side of operator %v must be of the same data type",
	ErrBinaryOpTypes:             "The expressions either side of operator `%v` must evaluate to numeric or string values",
	ErrUpdateNotObject:           "The insert/update clause of the transform expression must evaluate to an object: %v",
	ErrDeleteNotStrings:          "The delete clause of the transform expression must evaluate to a string or array of strings: %v",
	ErrBadClone:                  "The transform expression clones the input object using the $clone() function.  This has been overridden in the current scope by a non-function.",

	ErrNumberOfOutRange:        "Number out of range: %v",
	ErrNegatingNonNumeric:      "Cannot negate a non-numeric value `%v`",
	ErrZeroLengthMatch:         "Regular expression matches zero length string",
	ErrMultipleKeys:            "Multiple key definitions evaluate to same key: %v",
	ErrRangeOutOfBounds:        "The size of the sequence allocated by the range operator (..) must not exceed 1e7.  Attempted to allocate %v",
	ErrStringNotFinite:         "Attempting to invoke string function on Infinity or NaN",
	ErrEmptyPattern:            "Second argument of replace function cannot be an empty string",
	ErrNegativeReplaceLimit:    "Fourth argument of replace function must evaluate to a positive number",
	ErrInvalidReplacement:      "Attempted to replace a matched string with a non-string value",
	ErrNegativeSplitLimit:      "Third argument of split function must evaluate to a positive number",
	ErrNonNumericCast:          "Unable to cast value to a number: %v",
	ErrReduceArity:             "The second argument of reduce function must be a function with at least two arguments",
	ErrSqrtNegative:            "The sqrt function cannot be applied to a negative number: %v",
	ErrPowUnrepresentable:      "The power function has resulted in a value that cannot be represented as a JSON number: base=%v, exponent=%v",
	ErrInvalidDefaultSort:      "The single argument form of the sort function can only be applied to an array of strings or an array of numbers.  Use the second argument to specify a comparison function",
	ErrPictureNameModifier:     "The 'name' modifier can only be applied to months and days in the date/time picture string, not %v",
	ErrTooManyTzDigits:         "The timezone integer format specifier cannot have more than four digits",
	ErrPictureNoClosingBracket: "No matching closing bracket ']' in date/time picture string",
	ErrUserError:               "%v",
	ErrSingleMultipleMatches:   "The $single() function expected exactly 1 matching result.  Instead it matched more.",
	ErrSingleNoMatches:         "The $single() function expected exactly 1 matching result.  Instead it matched 0.",
	ErrAssertFailed:            "%v",

	ErrLimitExceeded: "%v",
}

// Phase returns the phase name for an error code, derived from its prefix.
func Phase(code string) string {
	if len(code) == 0 {
		return "unknown"
	}
	switch code[0] {
	case 'S':
		return "static"
	case 'T':
		return "type"
	case 'D':
		return "dynamic"
	case 'U':
		return "limit"
	default:
		return "unknown"
	}
}
