package parser

import (
	"github.com/jsonata-lang/jsonata/compiler/lexer"
)

// NodeKind identifies the semantic kind of an AST node
type NodeKind int

const (
	// Literals
	KindNull NodeKind = iota
	KindBool
	KindNumber
	KindString
	KindRegex

	// Identifiers
	KindName
	KindVar
	KindWildcard
	KindDescendent
	KindParent

	// Unary
	KindNegate
	KindArray
	KindObject

	// Binary, function machinery, control
	KindBinary
	KindFunction
	KindPartialArg
	KindLambda
	KindTernary
	KindBlock
	KindTransform

	// Raw parse only; rewritten by the post-processor
	KindOrderBy
	KindGroupByExpr

	// Generated by the post-processor
	KindPath
	KindFilter
	KindSort
	KindIndexBind
)

// BinaryOp enumerates the binary operators
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulus
	OpEqual
	OpNotEqual
	OpLessThan
	OpGreaterThan
	OpLessThanEqual
	OpGreaterThanEqual
	OpConcat
	OpAnd
	OpOr
	OpIn
	OpMap
	OpRange
	OpContextBind
	OpPositionalBind
	OpPredicate
	OpApply
	OpBind
)

// String returns the source spelling of the operator
func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpModulus:
		return "%"
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpLessThan:
		return "<"
	case OpGreaterThan:
		return ">"
	case OpLessThanEqual:
		return "<="
	case OpGreaterThanEqual:
		return ">="
	case OpConcat:
		return "&"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpIn:
		return "in"
	case OpMap:
		return "."
	case OpRange:
		return ".."
	case OpContextBind:
		return "@"
	case OpPositionalBind:
		return "#"
	case OpPredicate:
		return "[]"
	case OpApply:
		return "~>"
	case OpBind:
		return ":="
	default:
		return "?"
	}
}

// Pair is a key/value expression pair in an object constructor
type Pair struct {
	Key   *Node
	Value *Node
}

// SortTerm is one term of an order-by clause
type SortTerm struct {
	Expr       *Node
	Descending bool
}

// GroupExpr is a group-by clause attached to an expression
type GroupExpr struct {
	Position int
	Pairs    []Pair
}

// Node is a JSONata AST node. Which fields are meaningful depends on Kind.
type Node struct {
	Kind     NodeKind
	Position int // Character index in the expression source

	// Literals and identifiers
	Bool   bool
	Number float64
	Str    string // string literal, field name or variable name
	Regex  *lexer.RegexLiteral

	// Binary expressions
	Op  BinaryOp
	LHS *Node
	RHS *Node

	// Single-expression carriers: negate, filter stages
	Expr *Node

	// Array constructor members, block expressions, path steps
	Exprs []*Node

	// Object constructor pairs
	Pairs []Pair

	// Order-by terms (KindOrderBy raw form, KindSort step form)
	SortTerms []SortTerm

	// Function invocation
	Proc      *Node
	Args      []*Node
	IsPartial bool
	Thunk     bool // marked by the post-processor for tail positions

	// Lambda definition
	Params    []*Node // variable nodes
	Body      *Node
	Signature *Signature

	// Ternary
	Cond *Node
	Then *Node
	Else *Node

	// Transform
	Pattern *Node
	Update  *Node
	Delete  *Node

	// Side-band attributes
	KeepArray          bool
	ConsArray          bool
	KeepSingletonArray bool
	GroupBy            *GroupExpr
	Predicates         []*Node
	Stages             []*Node

	// Step bindings within a path (tuple stream)
	FocusVar string
	IndexVar string
	Tuple    bool
}

// newNode creates a node of the given kind at the given source position
func newNode(kind NodeKind, position int) *Node {
	return &Node{Kind: kind, Position: position}
}

// IsLiteral reports whether the node is a literal value
func (n *Node) IsLiteral() bool {
	switch n.Kind {
	case KindNull, KindBool, KindNumber, KindString, KindRegex:
		return true
	}
	return false
}
