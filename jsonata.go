// Package jsonata implements the JSONata query and transformation
// language over JSON documents: an expression is parsed once into a
// syntax tree and can then be evaluated against input values.
package jsonata

import (
	"sync"
	"time"

	"github.com/jsonata-lang/jsonata/compiler/parser"
	"github.com/jsonata-lang/jsonata/runtime/eval"
	"github.com/jsonata-lang/jsonata/runtime/functions"
	"github.com/jsonata-lang/jsonata/runtime/value"
)

// chainSource is the composition template backing the `~>` operator when
// both sides are functions
const chainSource = "function($f, $g) { function($x){ $g($f($x)) } }"

var (
	chainOnce sync.Once
	chainAST  *parser.Node
)

func chainTemplate() *parser.Node {
	chainOnce.Do(func() {
		ast, err := parser.Parse(chainSource)
		if err != nil {
			panic("jsonata: invalid chain template: " + err.Error())
		}
		chainAST = ast
	})
	return chainAST
}

// Expr is a compiled JSONata expression. It owns the arena every
// evaluation result is allocated in; results remain valid for the
// lifetime of the Expr. An Expr is not safe for concurrent use.
type Expr struct {
	ast   *parser.Node
	arena *value.Arena
	frame *value.Frame
}

// New parses an expression string into an evaluable Expr
func New(expression string) (*Expr, error) {
	ast, err := parser.Parse(expression)
	if err != nil {
		return nil, err
	}
	return &Expr{
		ast:   ast,
		arena: value.NewArena(),
		frame: value.NewFrame(),
	}, nil
}

// AST exposes the post-processed syntax tree
func (e *Expr) AST() *parser.Node {
	return e.ast
}

// Arena exposes the expression's arena so callers can construct values
// for AssignVar and custom functions
func (e *Expr) Arena() *value.Arena {
	return e.arena
}

// AssignVar injects a variable binding visible to the expression
func (e *Expr) AssignVar(name string, v *value.Value) {
	e.frame.Bind(name, v)
}

// RegisterFunction installs a host function under the given name
func (e *Expr) RegisterFunction(name string, arity int, fn value.NativeFunc) {
	e.frame.Bind(name, e.arena.NewNative(name, arity, fn))
}

// Evaluate evaluates the expression. The input is JSON text (empty means
// no input); bindings are converted from Go values and bound before
// evaluation.
func (e *Expr) Evaluate(input string, bindings map[string]interface{}) (*value.Value, error) {
	for name, binding := range bindings {
		v, err := value.FromGo(e.arena, binding)
		if err != nil {
			return nil, err
		}
		e.AssignVar(name, v)
	}
	return e.EvaluateTimeboxed(input, 0, 0)
}

// EvaluateTimeboxed evaluates with resource limits: a maximum evaluator
// recursion depth and a wall-clock time budget. Zero disables a limit.
func (e *Expr) EvaluateTimeboxed(input string, maxDepth int, timeLimit time.Duration) (*value.Value, error) {
	in, err := e.parseInput(input)
	if err != nil {
		return nil, err
	}

	// a top-level array input gets wrapped so that it is treated as a
	// single value by the first path step
	if in.IsArray() {
		in = value.WrapInArray(e.arena, in, value.FlagWrapped)
	}

	e.frame.Bind("$", in)
	functions.Install(e.arena, e.frame)

	evaluator := eval.New(chainTemplate(), e.arena, maxDepth, timeLimit)
	return evaluator.Evaluate(e.ast, in, e.frame)
}

// parseInput materializes the input document. JSON is a syntactic subset
// of JSONata, so the input rides through the same parser and evaluator
// with no bindings in scope.
func (e *Expr) parseInput(input string) (*value.Value, error) {
	if input == "" {
		return value.Undefined(), nil
	}
	ast, err := parser.Parse(input)
	if err != nil {
		return nil, err
	}
	evaluator := eval.New(chainTemplate(), e.arena, 0, 0)
	return evaluator.Evaluate(ast, value.Undefined(), value.NewFrame())
}
