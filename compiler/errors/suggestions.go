package errors

// builtinNames is the set of names the suggestion machinery knows about.
// Used when an invocation target turns out not to be a function: if the
// name is close to a built-in, T1005 carries the suggestion.
var builtinNames = []string{
	"abs", "append", "assert", "average", "base64decode", "base64encode",
	"boolean", "ceil", "clone", "contains", "count", "distinct", "each",
	"error", "exists", "filter", "floor", "fromMillis", "join", "keys",
	"length", "lookup", "lowercase", "map", "match", "max", "merge",
	"millis", "min", "not", "now", "number", "pad", "power", "random",
	"reduce", "replace", "reverse", "round", "sift", "single", "sort",
	"split", "spread", "sqrt", "string", "substring", "substringAfter",
	"substringBefore", "sum", "toMillis", "trim", "type", "uppercase",
	"zip",
}

// SuggestBuiltin returns the name of a built-in function that the given
// name most plausibly intended, or "" when nothing is close enough.
func SuggestBuiltin(name string) string {
	if name == "" {
		return ""
	}
	best := ""
	bestDist := len(name)/2 + 1
	for _, candidate := range builtinNames {
		d := editDistance(name, candidate)
		if d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best
}

// editDistance computes the Levenshtein distance between two strings.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
