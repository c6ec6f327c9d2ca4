package jsonata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonata-lang/jsonata/compiler/errors"
	"github.com/jsonata-lang/jsonata/runtime/value"
)

// run evaluates an expression against JSON input text and returns the
// result serialized as compact JSON.
func run(t *testing.T, expression, input string) string {
	t.Helper()
	expr, err := New(expression)
	require.NoError(t, err, "parse %q", expression)
	result, err := expr.Evaluate(input, nil)
	require.NoError(t, err, "evaluate %q", expression)
	return value.Serialize(result, false)
}

// runErr evaluates an expression expecting a coded error
func runErr(t *testing.T, expression, input string) *errors.Error {
	t.Helper()
	expr, err := New(expression)
	if err != nil {
		coded, ok := err.(*errors.Error)
		require.True(t, ok, "expected coded error, got %v", err)
		return coded
	}
	_, evalErr := expr.Evaluate(input, nil)
	require.Error(t, evalErr, "evaluate %q", expression)
	coded, ok := evalErr.(*errors.Error)
	require.True(t, ok, "expected coded error, got %v", evalErr)
	return coded
}

func TestSimplePath(t *testing.T) {
	assert.Equal(t, "42", run(t, "a.b.c", `{"a":{"b":{"c":42}}}`))
}

func TestPathOverSequenceWithPredicate(t *testing.T) {
	assert.Equal(t, "[2,3]", run(t, "x[$ > 1]", `[{"x":1},{"x":2},{"x":3}]`))
}

func TestSumOverMappedBlock(t *testing.T) {
	assert.Equal(t, "40", run(t, "$sum(items.(p*q))", `{"items":[{"p":10,"q":2},{"p":5,"q":4}]}`))
}

func TestReduceOverRange(t *testing.T) {
	assert.Equal(t, "15", run(t, "$reduce([1..5], function($a,$b){$a+$b})", `{}`))
}

func TestRecursiveFactorial(t *testing.T) {
	expr := "($fact := function($n){ $n <= 1 ? 1 : $n * $fact($n - 1) }; $fact(5))"
	assert.Equal(t, "120", run(t, expr, ""))
}

func TestGroupBy(t *testing.T) {
	input := `{"Phone":[{"type":"mobile","number":"1"},{"type":"home","number":"2"}]}`
	assert.Equal(t, `{"mobile":"1","home":"2"}`, run(t, "Phone{type: number}", input))
}

func TestLiterals(t *testing.T) {
	assert.Equal(t, "42", run(t, "42", ""))
	assert.Equal(t, "-3.5", run(t, "-3.5", ""))
	assert.Equal(t, `"hi"`, run(t, `"hi"`, ""))
	assert.Equal(t, "true", run(t, "true", ""))
	assert.Equal(t, "null", run(t, "null", ""))
	assert.Equal(t, `[1,2,3]`, run(t, "[1,2,3]", ""))
	assert.Equal(t, `{"a":1}`, run(t, `{"a":1}`, ""))
}

func TestArithmetic(t *testing.T) {
	assert.Equal(t, "7", run(t, "1 + 2 * 3", ""))
	assert.Equal(t, "2", run(t, "10 % 4", ""))
	assert.Equal(t, "2.5", run(t, "5 / 2", ""))
	assert.Equal(t, "-1", run(t, "-(3 - 2)", ""))
}

func TestArithmeticErrors(t *testing.T) {
	assert.Equal(t, errors.ErrLeftSideNotNumber, runErr(t, `"a" + 1`, "").Code)
	assert.Equal(t, errors.ErrRightSideNotNumber, runErr(t, `1 + "a"`, "").Code)
	assert.Equal(t, errors.ErrNumberOfOutRange, runErr(t, "1 / 0", "").Code)
	assert.Equal(t, errors.ErrNegatingNonNumeric, runErr(t, `-"x"`, "").Code)
}

func TestUndefinedPropagation(t *testing.T) {
	// missing fields propagate through arithmetic
	assert.Equal(t, "", run(t, "a + 1", "{}"))
	// paths applied to nothing stay nothing
	assert.Equal(t, "", run(t, "a.b.c.d", "{}"))
	// equality with undefined is undefined, not false
	assert.Equal(t, "", run(t, "a = 1", "{}"))
	assert.Equal(t, "", run(t, "a != 1", "{}"))
}

func TestComparisons(t *testing.T) {
	assert.Equal(t, "true", run(t, "1 < 2", ""))
	assert.Equal(t, "false", run(t, `"b" < "a"`, ""))
	assert.Equal(t, "true", run(t, "2 >= 2", ""))
	assert.Equal(t, errors.ErrBinaryOpMismatch, runErr(t, `1 < "a"`, "").Code)
	assert.Equal(t, errors.ErrBinaryOpTypes, runErr(t, "true < false", "").Code)
}

func TestEqualityIsStructural(t *testing.T) {
	assert.Equal(t, "true", run(t, "[1,2] = [1,2]", ""))
	assert.Equal(t, "true", run(t, `{"a":1} = {"a":1}`, ""))
	assert.Equal(t, "false", run(t, "[1,2] = [2,1]", ""))
}

func TestBooleanOperators(t *testing.T) {
	assert.Equal(t, "true", run(t, "true and 1", ""))
	assert.Equal(t, "false", run(t, "0 or \"\"", ""))
	// short-circuit: rhs not evaluated when lhs decides
	assert.Equal(t, "false", run(t, "false and $error(\"boom\")", ""))
	assert.Equal(t, "true", run(t, "true or $error(\"boom\")", ""))
}

func TestStringConcat(t *testing.T) {
	assert.Equal(t, `"ab"`, run(t, `"a" & "b"`, ""))
	assert.Equal(t, `"total: 42"`, run(t, `"total: " & 42`, ""))
	// undefined stringifies to empty
	assert.Equal(t, `"x"`, run(t, `"x" & nothing`, "{}"))
}

func TestInOperator(t *testing.T) {
	assert.Equal(t, "true", run(t, "2 in [1,2,3]", ""))
	assert.Equal(t, "false", run(t, "4 in [1,2,3]", ""))
	// scalar right side is wrapped
	assert.Equal(t, "true", run(t, `"a" in "a"`, ""))
}

func TestRangeOperator(t *testing.T) {
	assert.Equal(t, "[1,2,3]", run(t, "[1..3]", ""))
	assert.Equal(t, "[]", run(t, "[3..1]", ""))
	assert.Equal(t, errors.ErrLeftSideNotInteger, runErr(t, "[1.5..3]", "").Code)
	assert.Equal(t, errors.ErrRightSideNotInteger, runErr(t, "[1..3.5]", "").Code)
	assert.Equal(t, errors.ErrRangeOutOfBounds, runErr(t, "[1..100000000]", "").Code)
}

func TestTernaryAndBlocks(t *testing.T) {
	assert.Equal(t, `"yes"`, run(t, `1 < 2 ? "yes" : "no"`, ""))
	assert.Equal(t, "", run(t, `false ? "yes"`, ""))
	assert.Equal(t, "3", run(t, "($x := 1; $y := 2; $x + $y)", ""))
	// block scope does not leak into parent
	assert.Equal(t, "1", run(t, "($x := 1; ($x := 99; 0); $x)", ""))
}

func TestPredicateIndexing(t *testing.T) {
	input := `{"a":[10,20,30,40]}`
	assert.Equal(t, "10", run(t, "a[0]", input))
	assert.Equal(t, "40", run(t, "a[-1]", input))
	assert.Equal(t, "30", run(t, "a[-2]", input))
	assert.Equal(t, "[10,30]", run(t, "a[[0, 2]]", input))
	// out-of-range indexes wrap modulo the length
	assert.Equal(t, "20", run(t, "a[9]", input))
}

func TestKeepArray(t *testing.T) {
	input := `{"a":{"b":1}}`
	assert.Equal(t, "1", run(t, "a.b", input))
	assert.Equal(t, "[1]", run(t, "a.b[]", input))
	assert.Equal(t, "[1]", run(t, "a[].b", input))
}

func TestWildcardAndDescendent(t *testing.T) {
	input := `{"a":{"x":1,"y":2},"b":3}`
	assert.Equal(t, "[1,2]", run(t, "*", `{"a":1,"b":2}`))
	assert.Equal(t, "3", run(t, "**.b", input))
	assert.Equal(t, "[1,2]", run(t, "a.*", input))
}

func TestParent(t *testing.T) {
	input := `{"a":{"name":"top","b":{"c":1}}}`
	assert.Equal(t, `"top"`, run(t, "a.b.%.name", input))
}

func TestSortStep(t *testing.T) {
	input := `{"items":[{"p":3},{"p":1},{"p":2}]}`
	assert.Equal(t, "[1,2,3]", run(t, "items^(p).p", input))
	assert.Equal(t, "[3,2,1]", run(t, "items^(>p).p", input))
}

func TestSortIsStablePermutation(t *testing.T) {
	input := `{"items":[{"k":2,"v":"a"},{"k":1,"v":"b"},{"k":2,"v":"c"},{"k":1,"v":"d"}]}`
	// stable: equal keys keep their original order
	assert.Equal(t, `["b","d","a","c"]`, run(t, "items^(k).v", input))
}

func TestSortErrors(t *testing.T) {
	input := `{"items":[{"p":1},{"p":"x"}]}`
	assert.Equal(t, errors.ErrCompareTypeMismatch, runErr(t, "items^(p)", input).Code)
	input = `{"items":[{"p":{}},{"p":{}}]}`
	assert.Equal(t, errors.ErrInvalidOrderBy, runErr(t, "items^(p)", input).Code)
}

func TestContextBindAndPositionalBind(t *testing.T) {
	input := `{"library":{"books":[{"title":"A"},{"title":"B"}]}}`
	assert.Equal(t, `["A","B"]`, run(t, "library.books@$b.$b.title", input))
	assert.Equal(t, "[0,1]", run(t, "library.books#$i.$i", input))
}

func TestGroupByCollision(t *testing.T) {
	input := `{"items":[{"a":"k","b":"k"}]}`
	assert.Equal(t, errors.ErrMultipleKeys, runErr(t, "items{a: 1, b: 2}", input).Code)
}

func TestGroupByNonStringKey(t *testing.T) {
	assert.Equal(t, errors.ErrNonStringKey, runErr(t, "{1: 2}", "").Code)
}

func TestObjectConstructorOverSequence(t *testing.T) {
	input := `{"items":[{"n":"a","v":1},{"n":"b","v":2}]}`
	assert.Equal(t, `{"a":1,"b":2}`, run(t, "items{n: v}", input))
	// dot-object maps per item instead of grouping
	assert.Equal(t, `[{"x":1},{"x":2}]`, run(t, "items.{\"x\": v}", input))
}

func TestLambdasAndHigherOrder(t *testing.T) {
	assert.Equal(t, "[2,4,6]", run(t, "$map([1,2,3], function($x){$x*2})", ""))
	assert.Equal(t, "[2,4]", run(t, "$filter([1,2,3,4], function($x){$x % 2 = 0})", ""))
	assert.Equal(t, "6", run(t, "$reduce([1,2,3], function($a,$b){$a+$b})", ""))
	assert.Equal(t, "10", run(t, "$reduce([1,2,3], function($a,$b){$a+$b}, 4)", ""))
}

func TestLambdaSignatureValidation(t *testing.T) {
	assert.Equal(t, "4", run(t, "(function($x)<n:n>{$x*$x})(2)", ""))
	assert.Equal(t, errors.ErrArgumentNotValid, runErr(t, `(function($x)<n:n>{$x*$x})("two")`, "").Code)
}

func TestPartialApplication(t *testing.T) {
	expr := `($first5 := $substring(?, 0, 5); $first5("hello world"))`
	assert.Equal(t, `"hello"`, run(t, expr, ""))
}

func TestApplyOperator(t *testing.T) {
	assert.Equal(t, `"HELLO"`, run(t, `"hello" ~> $uppercase`, ""))
	assert.Equal(t, `"hel"`, run(t, `"hello" ~> $substring(0, 3)`, ""))
	assert.Equal(t, `"HE"`, run(t, `("hello" ~> $uppercase ~> $substring(0, 2))`, ""))
	// composing two functions yields a function
	assert.Equal(t, `"AB"`, run(t, `($f := $uppercase ~> $trim; $f("  ab  "))`, ""))
	assert.Equal(t, errors.ErrRightSideNotFunction, runErr(t, `1 ~> 2`, "").Code)
}

func TestTailCallTrampoline(t *testing.T) {
	expr := `($loop := function($n, $acc){ $n = 0 ? $acc : $loop($n - 1, $acc + 1) }; $loop(50000, 0))`
	e, err := New(expr)
	require.NoError(t, err)
	result, err := e.EvaluateTimeboxed("", 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, "50000", value.Serialize(result, false))
}

func TestStackOverflowLimit(t *testing.T) {
	// non-tail recursion exhausts the depth budget
	expr := `($f := function($n){ $n = 0 ? 0 : 1 + $f($n - 1) }; $f(100000))`
	e, err := New(expr)
	require.NoError(t, err)
	_, evalErr := e.EvaluateTimeboxed("", 100, 0)
	require.Error(t, evalErr)
	assert.Equal(t, errors.ErrLimitExceeded, evalErr.(*errors.Error).Code)
}

func TestTimeoutLimit(t *testing.T) {
	expr := `($loop := function($n){ $loop($n + 1) }; $loop(0))`
	e, err := New(expr)
	require.NoError(t, err)
	_, evalErr := e.EvaluateTimeboxed("", 0, 50*time.Millisecond)
	require.Error(t, evalErr)
	assert.Equal(t, errors.ErrLimitExceeded, evalErr.(*errors.Error).Code)
}

func TestInvokeNonFunction(t *testing.T) {
	assert.Equal(t, errors.ErrInvokedNonFunctionSuggest, runErr(t, `$sting("x")`, "").Code)
	assert.Equal(t, errors.ErrInvokedNonFunction, runErr(t, `$zzgblorp(1)`, "").Code)
}

func TestTransform(t *testing.T) {
	input := `{"Account":{"Order":[{"Product":{"Price":100}},{"Product":{"Price":200}}]}}`
	expr := `$ ~> |Account.Order.Product|{"Price": Price * 2}|`
	out := run(t, expr, input)
	assert.Contains(t, out, `"Price":200`)
	assert.Contains(t, out, `"Price":400`)

	// original input is untouched: transform works on a deep copy
	expr2 := `($orig := $; $copy := $orig ~> |a|{"b": 2}|; $orig.a.b)`
	assert.Equal(t, "1", run(t, expr2, `{"a":{"b":1}}`))
}

func TestTransformDelete(t *testing.T) {
	input := `{"a":{"b":1,"c":2}}`
	assert.Equal(t, `{"a":{"b":1}}`, run(t, `$ ~> |a|{}, ["c"]|`, input))
}

func TestTransformErrors(t *testing.T) {
	assert.Equal(t, errors.ErrUpdateNotObject, runErr(t, `$ ~> |a|123|`, `{"a":{}}`).Code)
	assert.Equal(t, errors.ErrDeleteNotStrings, runErr(t, `$ ~> |a|{}, [1]|`, `{"a":{}}`).Code)
	assert.Equal(t, errors.ErrBadClone, runErr(t, `($clone := 5; $ ~> |a|{}|)`, `{"a":{}}`).Code)
}

func TestStringBuiltins(t *testing.T) {
	assert.Equal(t, `"HELLO"`, run(t, `$uppercase("hello")`, ""))
	assert.Equal(t, `"hello"`, run(t, `$lowercase("HELLO")`, ""))
	assert.Equal(t, "5", run(t, `$length("hello")`, ""))
	assert.Equal(t, `"lo"`, run(t, `$substring("hello", 3)`, ""))
	assert.Equal(t, `"ell"`, run(t, `$substring("hello", 1, 3)`, ""))
	assert.Equal(t, `"llo"`, run(t, `$substring("hello", -3)`, ""))
	assert.Equal(t, `"a b"`, run(t, `$trim("  a   b  ")`, ""))
	assert.Equal(t, `"ab"`, run(t, `$substringBefore("ab/cd", "/")`, ""))
	assert.Equal(t, `"cd"`, run(t, `$substringAfter("ab/cd", "/")`, ""))
	assert.Equal(t, `"a-b-c"`, run(t, `$join(["a","b","c"], "-")`, ""))
	assert.Equal(t, `["a","b"]`, run(t, `$split("a,b", ",")`, ""))
	assert.Equal(t, "true", run(t, `$contains("hello", "ell")`, ""))
	assert.Equal(t, `"x.."`, run(t, `$pad("x", 3, ".")`, ""))
	assert.Equal(t, `"..x"`, run(t, `$pad("x", -3, ".")`, ""))
	assert.Equal(t, `"aGk="`, run(t, `$base64encode("hi")`, ""))
	assert.Equal(t, `"hi"`, run(t, `$base64decode("aGk=")`, ""))
}

func TestStringCoercion(t *testing.T) {
	assert.Equal(t, `"42"`, run(t, `$string(42)`, ""))
	assert.Equal(t, `"[1,2]"`, run(t, `$string([1,2])`, ""))
	// functions stringify to empty
	assert.Equal(t, `""`, run(t, `$string($sum)`, ""))
}

func TestRegexBuiltins(t *testing.T) {
	assert.Equal(t, "true", run(t, `$contains("hello", /l+/)`, ""))
	out := run(t, `$match("ab ab", /a(b)/)`, "")
	assert.Contains(t, out, `"match":"ab"`)
	assert.Contains(t, out, `"groups":["b"]`)
	assert.Equal(t, `"x-x"`, run(t, `$replace("a-a", /a/, "x")`, ""))
	assert.Equal(t, `"b|a"`, run(t, `$replace("a|b", /(\w)\|(\w)/, "$2|$1")`, ""))
	assert.Equal(t, `["a","b"]`, run(t, `$split("a1b", /[0-9]/)`, ""))
}

func TestReplaceErrors(t *testing.T) {
	assert.Equal(t, errors.ErrEmptyPattern, runErr(t, `$replace("abc", "", "x")`, "").Code)
	assert.Equal(t, errors.ErrNegativeReplaceLimit, runErr(t, `$replace("abc", "b", "x", -1)`, "").Code)
}

func TestNumericBuiltins(t *testing.T) {
	assert.Equal(t, "5", run(t, `$abs(-5)`, ""))
	assert.Equal(t, "3", run(t, `$floor(3.7)`, ""))
	assert.Equal(t, "4", run(t, `$ceil(3.2)`, ""))
	assert.Equal(t, "3", run(t, `$sqrt(9)`, ""))
	assert.Equal(t, "8", run(t, `$power(2, 3)`, ""))
	assert.Equal(t, "42", run(t, `$number("42")`, ""))
	assert.Equal(t, "6", run(t, `$sum([1,2,3])`, ""))
	assert.Equal(t, "2", run(t, `$average([1,2,3])`, ""))
	assert.Equal(t, "3", run(t, `$max([1,3,2])`, ""))
	assert.Equal(t, "1", run(t, `$min([1,3,2])`, ""))
	assert.Equal(t, "3", run(t, `$count([1,2,3])`, ""))
}

func TestRoundBankers(t *testing.T) {
	// ties go to the even neighbour
	assert.Equal(t, "2", run(t, `$round(2.5)`, ""))
	assert.Equal(t, "4", run(t, `$round(3.5)`, ""))
	assert.Equal(t, "-2", run(t, `$round(-2.5)`, ""))
	assert.Equal(t, "1.2", run(t, `$round(1.25, 1)`, ""))
	assert.Equal(t, "123.46", run(t, `$round(123.456, 2)`, ""))
	assert.Equal(t, "120", run(t, `$round(123.456, -1)`, ""))
}

func TestNumericErrors(t *testing.T) {
	assert.Equal(t, errors.ErrSqrtNegative, runErr(t, `$sqrt(-1)`, "").Code)
	assert.Equal(t, errors.ErrPowUnrepresentable, runErr(t, `$power(1e308, 2)`, "").Code)
	assert.Equal(t, errors.ErrNonNumericCast, runErr(t, `$number("abc")`, "").Code)
	assert.Equal(t, errors.ErrArgumentMustBeArrayOfType, runErr(t, `$sum([1,"a"])`, "").Code)
}

func TestArrayBuiltins(t *testing.T) {
	assert.Equal(t, "[3,2,1]", run(t, `$reverse([1,2,3])`, ""))
	assert.Equal(t, "[1,2,3]", run(t, `$distinct([1,2,2,3,1])`, ""))
	assert.Equal(t, "[1,2,3,4]", run(t, `$append([1,2],[3,4])`, ""))
	assert.Equal(t, "[1,2,3]", run(t, `$append(1, [2,3])`, ""))
	assert.Equal(t, "[[1,3],[2,4]]", run(t, `$zip([1,2],[3,4])`, ""))
	assert.Equal(t, "[1,2,3]", run(t, `$sort([3,1,2])`, ""))
	assert.Equal(t, "[3,2,1]", run(t, `$sort([1,3,2], function($a,$b){$a<$b})`, ""))
	assert.Equal(t, errors.ErrInvalidDefaultSort, runErr(t, `$sort([true,false])`, "").Code)
}

func TestReverseInvolution(t *testing.T) {
	assert.Equal(t, "[1,2,3,4]", run(t, `$reverse($reverse([1,2,3,4]))`, ""))
}

func TestDistinctIdempotent(t *testing.T) {
	assert.Equal(t,
		run(t, `$distinct([1,2,3])`, ""),
		run(t, `$distinct($append([1,2,3],[1,2,3]))`, ""))
}

func TestObjectBuiltins(t *testing.T) {
	input := `{"a":1,"b":2}`
	assert.Equal(t, `["a","b"]`, run(t, `$keys($)`, input))
	assert.Equal(t, "2", run(t, `$lookup($, "b")`, input))
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, run(t, `$merge([{"a":1},{"b":2},{"c":3}])`, ""))
	assert.Equal(t, `[{"a":1},{"b":2}]`, run(t, `$spread($)`, input))
	assert.Equal(t, `[2,4]`, run(t, `$each($, function($v,$k){$v*2})`, input))
	assert.Equal(t, `{"b":2}`, run(t, `$sift($, function($v){$v>1})`, input))
	assert.Equal(t, `"object"`, run(t, `$type($)`, input))
	assert.Equal(t, `"number"`, run(t, `$type(1)`, ""))
}

func TestBooleanBuiltins(t *testing.T) {
	assert.Equal(t, "false", run(t, `$boolean(0)`, ""))
	assert.Equal(t, "true", run(t, `$boolean("x")`, ""))
	assert.Equal(t, "true", run(t, `$not(0)`, ""))
	assert.Equal(t, "false", run(t, `$exists(nothing)`, "{}"))
	assert.Equal(t, "true", run(t, `$exists(a)`, `{"a":1}`))
}

func TestSingle(t *testing.T) {
	assert.Equal(t, "2", run(t, `$single([1,2,3], function($x){$x = 2})`, ""))
	assert.Equal(t, errors.ErrSingleNoMatches, runErr(t, `$single([1,2,3], function($x){$x = 9})`, "").Code)
	assert.Equal(t, errors.ErrSingleMultipleMatches, runErr(t, `$single([1,2,2], function($x){$x = 2})`, "").Code)
}

func TestErrorAndAssert(t *testing.T) {
	err := runErr(t, `$error("boom")`, "")
	assert.Equal(t, errors.ErrUserError, err.Code)
	assert.Contains(t, err.Message, "boom")

	err = runErr(t, `$assert(false, "nope")`, "")
	assert.Equal(t, errors.ErrAssertFailed, err.Code)
	assert.Equal(t, "", run(t, `$assert(true, "fine")`, ""))
}

func TestTimestampBuiltins(t *testing.T) {
	assert.Equal(t, `"1970-01-01T00:00:00.000Z"`, run(t, `$fromMillis(0)`, ""))
	assert.Equal(t, `"02/05/2017"`, run(t, `$fromMillis(1493735268000, "[D01]/[M01]/[Y0001]")`, ""))
	assert.Equal(t, "0", run(t, `$toMillis("1970-01-01T00:00:00.000Z")`, ""))
	// round trip
	assert.Equal(t, "1493735268000", run(t, `$toMillis($fromMillis(1493735268000))`, ""))
}

func TestNowAndMillis(t *testing.T) {
	e, err := New(`$millis()`)
	require.NoError(t, err)
	result, err := e.Evaluate("", nil)
	require.NoError(t, err)
	now := float64(time.Now().UnixMilli())
	assert.InDelta(t, now, result.AsNumber(), 10_000)

	assert.Regexp(t, `^"\d{4}-\d{2}-\d{2}T`, run(t, `$now()`, ""))
}

func TestVariableBindings(t *testing.T) {
	expr, err := New("$a + $b")
	require.NoError(t, err)
	result, err := expr.Evaluate("", map[string]interface{}{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, 3.0, result.AsNumber())
}

func TestAssignVar(t *testing.T) {
	expr, err := New("$x * 2")
	require.NoError(t, err)
	expr.AssignVar("x", expr.Arena().NewNumber(21))
	result, err := expr.Evaluate("", nil)
	require.NoError(t, err)
	assert.Equal(t, 42.0, result.AsNumber())
}

func TestRegisterFunction(t *testing.T) {
	expr, err := New("$twice(21)")
	require.NoError(t, err)
	expr.RegisterFunction("twice", 1, func(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
		return ctx.Arena.NewNumber(args[0].AsNumber() * 2), nil
	})
	result, err := expr.Evaluate("", nil)
	require.NoError(t, err)
	assert.Equal(t, 42.0, result.AsNumber())
}

func TestRegisteredFunctionAsHigherOrderArg(t *testing.T) {
	expr, err := New("$map([1,4,9], $root)")
	require.NoError(t, err)
	expr.RegisterFunction("root", 1, func(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
		n := args[0].AsNumber()
		out := 0.0
		for out*out < n {
			out++
		}
		return ctx.Arena.NewNumber(out), nil
	})
	result, err := expr.Evaluate("", nil)
	require.NoError(t, err)
	assert.Equal(t, "[1,2,3]", value.Serialize(result, false))
}

func TestDollarDollarIsRoot(t *testing.T) {
	input := `{"a":{"b":1}}`
	assert.Equal(t, "1", run(t, "a.$$.a.b", input))
}

func TestDeterministicEvaluation(t *testing.T) {
	input := `{"items":[3,1,2]}`
	first := run(t, "$sort(items)", input)
	second := run(t, "$sort(items)", input)
	assert.Equal(t, first, second)
}

func TestEvaluateTwiceIsStable(t *testing.T) {
	expr, err := New("a + 1")
	require.NoError(t, err)
	r1, err := expr.Evaluate(`{"a":1}`, nil)
	require.NoError(t, err)
	r2, err := expr.Evaluate(`{"a":1}`, nil)
	require.NoError(t, err)
	assert.True(t, value.Equals(r1, r2))
}

func TestParseErrorsSurface(t *testing.T) {
	_, err := New("a.")
	require.Error(t, err)
	_, err = New("(a")
	require.Error(t, err)
}
