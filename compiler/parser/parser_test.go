package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonata-lang/jsonata/compiler/errors"
)

func mustParse(t *testing.T, source string) *Node {
	t.Helper()
	node, err := Parse(source)
	require.Nil(t, err, "parse of %q failed: %v", source, err)
	return node
}

func parseError(t *testing.T, source string) *errors.Error {
	t.Helper()
	_, err := Parse(source)
	require.NotNil(t, err, "parse of %q unexpectedly succeeded", source)
	return err
}

func TestLiterals(t *testing.T) {
	node := mustParse(t, "42")
	assert.Equal(t, KindNumber, node.Kind)
	assert.Equal(t, 42.0, node.Number)

	node = mustParse(t, `"hello"`)
	assert.Equal(t, KindString, node.Kind)
	assert.Equal(t, "hello", node.Str)

	node = mustParse(t, "true")
	assert.Equal(t, KindBool, node.Kind)
	assert.True(t, node.Bool)

	node = mustParse(t, "null")
	assert.Equal(t, KindNull, node.Kind)

	node = mustParse(t, "-5")
	assert.Equal(t, KindNumber, node.Kind)
	assert.Equal(t, -5.0, node.Number)
}

func TestArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3)
	node := mustParse(t, "1 + 2 * 3")
	require.Equal(t, KindBinary, node.Kind)
	assert.Equal(t, OpAdd, node.Op)
	assert.Equal(t, KindNumber, node.LHS.Kind)
	require.Equal(t, KindBinary, node.RHS.Kind)
	assert.Equal(t, OpMultiply, node.RHS.Op)
}

func TestPathCollapsing(t *testing.T) {
	node := mustParse(t, "a.b.c")
	require.Equal(t, KindPath, node.Kind)
	require.Len(t, node.Exprs, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, KindName, node.Exprs[i].Kind)
		assert.Equal(t, name, node.Exprs[i].Str)
	}
}

func TestBareNameBecomesPath(t *testing.T) {
	node := mustParse(t, "Account")
	require.Equal(t, KindPath, node.Kind)
	require.Len(t, node.Exprs, 1)
	assert.Equal(t, "Account", node.Exprs[0].Str)
}

func TestPredicateAttachesToStep(t *testing.T) {
	node := mustParse(t, "a[x > 1].b")
	require.Equal(t, KindPath, node.Kind)
	require.Len(t, node.Exprs, 2)
	step := node.Exprs[0]
	require.Len(t, step.Predicates, 1)
	assert.Equal(t, KindFilter, step.Predicates[0].Kind)
}

func TestKeepArray(t *testing.T) {
	node := mustParse(t, "a[].b")
	require.Equal(t, KindPath, node.Kind)
	assert.True(t, node.Exprs[0].KeepArray)
	assert.True(t, node.KeepSingletonArray)
}

func TestWildcardAndDescendent(t *testing.T) {
	node := mustParse(t, "*.name")
	require.Equal(t, KindPath, node.Kind)
	assert.Equal(t, KindWildcard, node.Exprs[0].Kind)

	node = mustParse(t, "**.name")
	require.Equal(t, KindPath, node.Kind)
	assert.Equal(t, KindDescendent, node.Exprs[0].Kind)
}

func TestSortBecomesStep(t *testing.T) {
	node := mustParse(t, "a^(>price, name)")
	require.Equal(t, KindPath, node.Kind)
	require.Len(t, node.Exprs, 2)
	sort := node.Exprs[1]
	require.Equal(t, KindSort, sort.Kind)
	require.Len(t, sort.SortTerms, 2)
	assert.True(t, sort.SortTerms[0].Descending)
	assert.False(t, sort.SortTerms[1].Descending)
}

func TestGroupByAttaches(t *testing.T) {
	node := mustParse(t, "Phone{type: number}")
	require.Equal(t, KindPath, node.Kind)
	require.NotNil(t, node.GroupBy)
	require.Len(t, node.GroupBy.Pairs, 1)
}

func TestObjectConstructor(t *testing.T) {
	node := mustParse(t, `{"a": 1, "b": 2}`)
	require.Equal(t, KindObject, node.Kind)
	require.Len(t, node.Pairs, 2)
}

func TestArrayConstructorWithRange(t *testing.T) {
	node := mustParse(t, "[1..5]")
	require.Equal(t, KindArray, node.Kind)
	require.Len(t, node.Exprs, 1)
	rng := node.Exprs[0]
	require.Equal(t, KindBinary, rng.Kind)
	assert.Equal(t, OpRange, rng.Op)
}

func TestLambda(t *testing.T) {
	node := mustParse(t, "function($a, $b){ $a + $b }")
	require.Equal(t, KindLambda, node.Kind)
	require.Len(t, node.Params, 2)
	assert.Equal(t, "a", node.Params[0].Str)
	assert.Equal(t, "b", node.Params[1].Str)
	require.NotNil(t, node.Body)
	assert.Nil(t, node.Signature)
}

func TestLambdaSignature(t *testing.T) {
	node := mustParse(t, "function($x)<n:n>{ $x * $x }")
	require.Equal(t, KindLambda, node.Kind)
	require.NotNil(t, node.Signature)
	require.Len(t, node.Signature.Params, 1)
	assert.Equal(t, "n", node.Signature.Params[0].Types)
	assert.Equal(t, "n", node.Signature.Return)
}

func TestFunctionCall(t *testing.T) {
	node := mustParse(t, "$sum(items)")
	require.Equal(t, KindFunction, node.Kind)
	assert.Equal(t, KindVar, node.Proc.Kind)
	assert.Equal(t, "sum", node.Proc.Str)
	require.Len(t, node.Args, 1)
	assert.False(t, node.IsPartial)
}

func TestPartialApplication(t *testing.T) {
	node := mustParse(t, "$substring(?, 0, 5)")
	require.Equal(t, KindFunction, node.Kind)
	assert.True(t, node.IsPartial)
	assert.Equal(t, KindPartialArg, node.Args[0].Kind)
}

func TestTernary(t *testing.T) {
	node := mustParse(t, "a ? b : c")
	require.Equal(t, KindTernary, node.Kind)
	require.NotNil(t, node.Else)

	node = mustParse(t, "a ? b")
	require.Equal(t, KindTernary, node.Kind)
	assert.Nil(t, node.Else)
}

func TestBlock(t *testing.T) {
	node := mustParse(t, "($x := 1; $x + 1)")
	require.Equal(t, KindBlock, node.Kind)
	require.Len(t, node.Exprs, 2)
	assert.Equal(t, OpBind, node.Exprs[0].Op)
}

func TestTransform(t *testing.T) {
	node := mustParse(t, `|a.b|{"c": 1}, ["d"]|`)
	require.Equal(t, KindTransform, node.Kind)
	require.NotNil(t, node.Pattern)
	require.NotNil(t, node.Update)
	require.NotNil(t, node.Delete)
}

func TestApplyChain(t *testing.T) {
	node := mustParse(t, "a ~> $uppercase ~> $trim")
	require.Equal(t, KindBinary, node.Kind)
	assert.Equal(t, OpApply, node.Op)
	// left associative
	require.Equal(t, KindBinary, node.LHS.Kind)
	assert.Equal(t, OpApply, node.LHS.Op)
}

func TestContextAndPositionalBind(t *testing.T) {
	node := mustParse(t, "library.loans@$l.books#$i")
	require.Equal(t, KindPath, node.Kind)
	var focus, index *Node
	for _, step := range node.Exprs {
		if step.FocusVar != "" {
			focus = step
		}
		if step.IndexVar != "" {
			index = step
		}
	}
	require.NotNil(t, focus)
	assert.Equal(t, "l", focus.FocusVar)
	assert.True(t, focus.Tuple)
	require.NotNil(t, index)
	assert.Equal(t, "i", index.IndexVar)
}

func TestRegexLiteral(t *testing.T) {
	node := mustParse(t, "$match(a, /ab+/i)")
	require.Equal(t, KindFunction, node.Kind)
	re := node.Args[1]
	require.Equal(t, KindRegex, re.Kind)
	assert.Equal(t, "ab+", re.Regex.Source)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		source string
		code   string
	}{
		{"a.2", errors.ErrInvalidStep},
		{"a.true", errors.ErrInvalidStep},
		{"1 := 2", errors.ErrExpectedVarLeft},
		{"function(x){x}", errors.ErrInvalidFunctionParam},
		{"a@b", errors.ErrExpectedVarRight},
		{"a#b", errors.ErrExpectedVarRight},
		{"a{x: 1}{y: 2}", errors.ErrMultipleGroupBy},
		{"a[0]@$v", errors.ErrBindingAfterPredicates},
		{"a^(b)@$v", errors.ErrBindingAfterSort},
		{"a{x: 1}[0]", errors.ErrPredicateAfterGroup},
		{"(a", errors.ErrExpectedTokenBeforeEnd},
		{"[1, 2", errors.ErrExpectedTokenBeforeEnd},
		{"+1", errors.ErrInvalidUnary},
		{"a b", errors.ErrSyntax},
		{"", errors.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			err := parseError(t, tt.source)
			assert.Equal(t, tt.code, err.Code, "got %v", err)
		})
	}
}

func TestTailCallMarking(t *testing.T) {
	node := mustParse(t, "function($n){ $n <= 1 ? 1 : $loop($n - 1) }")
	require.Equal(t, KindLambda, node.Kind)
	body := node.Body
	require.Equal(t, KindTernary, body.Kind)
	require.Equal(t, KindFunction, body.Else.Kind)
	assert.True(t, body.Else.Thunk)
}
