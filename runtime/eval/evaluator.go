// Package eval implements the tree-walking evaluator: it threads the
// evaluation context through the AST, applies the sequence rules, invokes
// functions and runs transforms.
package eval

import (
	"math"
	"time"

	"github.com/jsonata-lang/jsonata/compiler/errors"
	"github.com/jsonata-lang/jsonata/compiler/parser"
	"github.com/jsonata-lang/jsonata/runtime/value"
)

// rangeLimit caps the size of the sequence the range operator allocates
const rangeLimit = 1e7

// Evaluator walks a post-processed AST. A single evaluator drives one
// evaluation and owns its arena; it is not safe for concurrent use.
type Evaluator struct {
	arena     *value.Arena
	chain     *parser.Node // pre-parsed function composition template
	maxDepth  int
	timeLimit time.Duration
	started   time.Time
	depth     int
}

// New creates an evaluator. The chain node is the pre-parsed lambda
// template used to compose functions for `~>`; maxDepth and timeLimit are
// resource budgets, zero meaning unlimited.
func New(chain *parser.Node, arena *value.Arena, maxDepth int, timeLimit time.Duration) *Evaluator {
	return &Evaluator{
		arena:     arena,
		chain:     chain,
		maxDepth:  maxDepth,
		timeLimit: timeLimit,
		started:   time.Now(),
	}
}

// checkLimits enforces the recursion-depth and wall-clock budgets
func (e *Evaluator) checkLimits() *errors.Error {
	if e.maxDepth > 0 && e.depth > e.maxDepth {
		return errors.StackOverflow()
	}
	if e.timeLimit > 0 && time.Since(e.started) > e.timeLimit {
		return errors.Timeout()
	}
	return nil
}

// Evaluate evaluates a node against the given input and frame
func (e *Evaluator) Evaluate(node *parser.Node, input *value.Value, frame *value.Frame) (*value.Value, error) {
	e.depth++
	defer func() { e.depth-- }()
	if err := e.checkLimits(); err != nil {
		return nil, err
	}

	result, err := e.evaluateNode(node, input, frame)
	if err != nil {
		return nil, err
	}

	// Predicates attached to non-step expressions
	if node.Kind != parser.KindPath && node.Predicates != nil {
		for _, filter := range node.Predicates {
			result, err = e.evaluateFilter(filter.Expr, result, frame)
			if err != nil {
				return nil, err
			}
		}
	}

	// Group-by attached to non-path expressions; paths run their own
	if node.Kind != parser.KindPath && node.GroupBy != nil {
		result, err = e.evaluateGroupExpression(node.GroupBy.Pairs, result, frame, node.GroupBy.Position)
		if err != nil {
			return nil, err
		}
	}

	// Sequence finalization: flatten away empty and singleton sequences
	if result.IsArray() && result.HasFlags(value.FlagSequence) && !result.HasFlags(value.FlagTupleStream) {
		if node.KeepArray {
			result.AddFlags(value.FlagSingleton)
		}
		switch {
		case result.Len() == 0:
			result = value.Undefined()
		case result.Len() == 1 && !result.HasFlags(value.FlagSingleton):
			result = result.Member(0)
		}
	}

	return result, nil
}

func (e *Evaluator) evaluateNode(node *parser.Node, input *value.Value, frame *value.Frame) (*value.Value, error) {
	switch node.Kind {
	case parser.KindNull:
		return value.Null(), nil

	case parser.KindBool:
		return value.Bool(node.Bool), nil

	case parser.KindNumber:
		return e.arena.NewNumber(node.Number), nil

	case parser.KindString:
		return e.arena.NewString(node.Str), nil

	case parser.KindRegex:
		return e.arena.NewRegex(node.Regex), nil

	case parser.KindVar:
		return e.evaluateVariable(node, input, frame), nil

	case parser.KindName:
		return e.lookup(input, node.Str), nil

	case parser.KindWildcard:
		return e.evaluateWildcard(input), nil

	case parser.KindDescendent:
		return e.evaluateDescendents(input), nil

	case parser.KindParent:
		if parent, ok := frame.Lookup(parentBinding); ok {
			return parent, nil
		}
		return value.Undefined(), nil

	case parser.KindNegate:
		return e.evaluateNegate(node, input, frame)

	case parser.KindArray:
		return e.evaluateArrayConstructor(node, input, frame)

	case parser.KindObject:
		return e.evaluateGroupExpression(node.Pairs, input, frame, node.Position)

	case parser.KindBlock:
		return e.evaluateBlock(node, input, frame)

	case parser.KindTernary:
		cond, err := e.Evaluate(node.Cond, input, frame)
		if err != nil {
			return nil, err
		}
		if cond.IsTruthy() {
			return e.Evaluate(node.Then, input, frame)
		}
		if node.Else != nil {
			return e.Evaluate(node.Else, input, frame)
		}
		return value.Undefined(), nil

	case parser.KindLambda:
		params := make([]string, len(node.Params))
		for i, p := range node.Params {
			params[i] = p.Str
		}
		return e.arena.NewLambda(params, node.Body, input, frame, node.Signature), nil

	case parser.KindFunction:
		return e.evaluateFunctionNode(node, input, frame, nil)

	case parser.KindTransform:
		return e.arena.NewTransformer(node.Pattern, node.Update, node.Delete), nil

	case parser.KindPath:
		return e.evaluatePath(node, input, frame)

	case parser.KindBinary:
		return e.evaluateBinary(node, input, frame)

	case parser.KindPartialArg:
		return value.Undefined(), nil

	default:
		return nil, errors.New(errors.ErrSyntax, node.Position, "unexpected expression")
	}
}

// parentBinding is the frame name under which a step's enclosing context
// is made visible to the `%` operator
const parentBinding = "%"

func (e *Evaluator) evaluateVariable(node *parser.Node, input *value.Value, frame *value.Frame) *value.Value {
	if node.Str == "" {
		// Bare `$` refers to the current context, peeling the top-level
		// input wrapper
		if input.IsArray() && input.HasFlags(value.FlagWrapped) {
			return input.Member(0)
		}
		return input
	}
	if v, ok := frame.Lookup(node.Str); ok {
		return v
	}
	return value.Undefined()
}

// lookup resolves a field name against the input, mapping element-wise
// over arrays with one level of splicing
func (e *Evaluator) lookup(input *value.Value, key string) *value.Value {
	if input.IsArray() {
		result := e.arena.NewArray(value.FlagSequence)
		for _, member := range input.Members() {
			res := e.lookup(member, key)
			switch {
			case res.IsUndefined():
			case res.IsArray():
				for _, item := range res.Members() {
					result.Push(item)
				}
			default:
				result.Push(res)
			}
		}
		return result
	}
	if input.IsObject() {
		return input.Entry(key)
	}
	return value.Undefined()
}

// evaluateWildcard yields all values of the current object in insertion
// order, splicing nested arrays
func (e *Evaluator) evaluateWildcard(input *value.Value) *value.Value {
	result := e.arena.NewArray(value.FlagSequence)

	if input.IsArray() && input.HasFlags(value.FlagWrapped) && input.Len() > 0 {
		input = input.Member(0)
	}

	if input.IsObject() {
		for _, key := range input.Keys() {
			member := input.Entry(key)
			if member.IsArray() {
				for _, item := range member.Flatten(e.arena).Members() {
					result.Push(item)
				}
			} else {
				result.Push(member)
			}
		}
	}

	return result
}

// evaluateDescendents yields all descendant values in pre-order with
// arrays flattened through
func (e *Evaluator) evaluateDescendents(input *value.Value) *value.Value {
	result := e.arena.NewArray(value.FlagSequence)
	if !input.IsUndefined() {
		e.recurseDescendents(result, input)
	}
	return result
}

func (e *Evaluator) recurseDescendents(out *value.Value, v *value.Value) {
	if !v.IsArray() {
		out.Push(v)
	}
	if v.IsArray() {
		for _, member := range v.Members() {
			e.recurseDescendents(out, member)
		}
	} else if v.IsObject() {
		for _, key := range v.Keys() {
			e.recurseDescendents(out, v.Entry(key))
		}
	}
}

func (e *Evaluator) evaluateNegate(node *parser.Node, input *value.Value, frame *value.Frame) (*value.Value, error) {
	v, err := e.Evaluate(node.Expr, input, frame)
	if err != nil {
		return nil, err
	}
	if v.IsUndefined() {
		return value.Undefined(), nil
	}
	if !v.IsNumber() {
		return nil, errors.New(errors.ErrNegatingNonNumeric, node.Position, value.Serialize(v, false))
	}
	return e.arena.NewNumber(-v.AsNumber()), nil
}

func (e *Evaluator) evaluateArrayConstructor(node *parser.Node, input *value.Value, frame *value.Frame) (*value.Value, error) {
	var flags value.ArrayFlags
	if node.ConsArray {
		flags |= value.FlagCons
	}
	result := e.arena.NewArray(flags)

	for _, item := range node.Exprs {
		v, err := e.Evaluate(item, input, frame)
		if err != nil {
			return nil, err
		}
		if v.IsUndefined() {
			continue
		}
		if item.Kind == parser.KindArray {
			// nested array constructors stay nested
			result.Push(v)
		} else {
			appendValues(result, v)
		}
	}

	return result, nil
}

// appendValues appends v to out, splicing in array members one level deep
func appendValues(out *value.Value, v *value.Value) {
	if v.IsArray() {
		for _, member := range v.Members() {
			out.Push(member)
		}
		return
	}
	out.Push(v)
}

func (e *Evaluator) evaluateBlock(node *parser.Node, input *value.Value, frame *value.Frame) (*value.Value, error) {
	blockFrame := value.NewChildFrame(frame)
	result := value.Undefined()
	var err error
	for _, expr := range node.Exprs {
		result, err = e.Evaluate(expr, input, blockFrame)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (e *Evaluator) evaluateBinary(node *parser.Node, input *value.Value, frame *value.Frame) (*value.Value, error) {
	switch node.Op {
	case parser.OpBind:
		rhs, err := e.Evaluate(node.RHS, input, frame)
		if err != nil {
			return nil, err
		}
		frame.Bind(node.LHS.Str, rhs)
		return rhs, nil

	case parser.OpAnd, parser.OpOr:
		lhs, err := e.Evaluate(node.LHS, input, frame)
		if err != nil {
			return nil, err
		}
		// short-circuit on truthiness
		if node.Op == parser.OpAnd && !lhs.IsTruthy() {
			return value.Bool(false), nil
		}
		if node.Op == parser.OpOr && lhs.IsTruthy() {
			return value.Bool(true), nil
		}
		rhs, err := e.Evaluate(node.RHS, input, frame)
		if err != nil {
			return nil, err
		}
		return value.Bool(rhs.IsTruthy()), nil

	case parser.OpApply:
		return e.evaluateApply(node, input, frame)
	}

	lhs, err := e.Evaluate(node.LHS, input, frame)
	if err != nil {
		return nil, err
	}
	rhs, err := e.Evaluate(node.RHS, input, frame)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case parser.OpAdd, parser.OpSubtract, parser.OpMultiply, parser.OpDivide, parser.OpModulus:
		return e.evaluateNumericOp(node, lhs, rhs)

	case parser.OpEqual, parser.OpNotEqual:
		// undefined on either side yields undefined, not false
		if lhs.IsUndefined() || rhs.IsUndefined() {
			return value.Undefined(), nil
		}
		eq := value.Equals(lhs, rhs)
		if node.Op == parser.OpNotEqual {
			eq = !eq
		}
		return value.Bool(eq), nil

	case parser.OpLessThan, parser.OpLessThanEqual, parser.OpGreaterThan, parser.OpGreaterThanEqual:
		return e.evaluateComparison(node, lhs, rhs)

	case parser.OpConcat:
		left, ok := value.ToString(lhs, false)
		if !ok {
			return nil, errors.New(errors.ErrStringNotFinite, node.Position)
		}
		right, ok := value.ToString(rhs, false)
		if !ok {
			return nil, errors.New(errors.ErrStringNotFinite, node.Position)
		}
		return e.arena.NewString(left + right), nil

	case parser.OpIn:
		if lhs.IsUndefined() || rhs.IsUndefined() {
			return value.Bool(false), nil
		}
		container := value.WrapInArrayIfNeeded(e.arena, rhs, 0)
		for _, member := range container.Members() {
			if value.Equals(lhs, member) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil

	case parser.OpRange:
		return e.evaluateRange(node, lhs, rhs)
	}

	return nil, errors.New(errors.ErrUnknownOperator, node.Position, node.Op.String())
}

func (e *Evaluator) evaluateNumericOp(node *parser.Node, lhs, rhs *value.Value) (*value.Value, error) {
	if lhs.IsUndefined() || rhs.IsUndefined() {
		return value.Undefined(), nil
	}
	if !lhs.IsNumber() {
		return nil, errors.New(errors.ErrLeftSideNotNumber, node.Position, node.Op.String())
	}
	if !rhs.IsNumber() {
		return nil, errors.New(errors.ErrRightSideNotNumber, node.Position, node.Op.String())
	}

	a, b := lhs.AsNumber(), rhs.AsNumber()
	var result float64
	switch node.Op {
	case parser.OpAdd:
		result = a + b
	case parser.OpSubtract:
		result = a - b
	case parser.OpMultiply:
		result = a * b
	case parser.OpDivide:
		result = a / b
	case parser.OpModulus:
		result = math.Mod(a, b)
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return nil, errors.New(errors.ErrNumberOfOutRange, node.Position, result)
	}
	return e.arena.NewNumber(result), nil
}

func (e *Evaluator) evaluateComparison(node *parser.Node, lhs, rhs *value.Value) (*value.Value, error) {
	if lhs.IsUndefined() || rhs.IsUndefined() {
		return value.Undefined(), nil
	}

	isComparable := func(v *value.Value) bool { return v.IsNumber() || v.IsString() }
	if !isComparable(lhs) || !isComparable(rhs) {
		return nil, errors.New(errors.ErrBinaryOpTypes, node.Position, node.Op.String())
	}
	if lhs.Kind() != rhs.Kind() {
		return nil, errors.New(errors.ErrBinaryOpMismatch, node.Position,
			value.Serialize(lhs, false), value.Serialize(rhs, false), node.Op.String())
	}

	var less, equal bool
	if lhs.IsNumber() {
		less = lhs.AsNumber() < rhs.AsNumber()
		equal = lhs.AsNumber() == rhs.AsNumber()
	} else {
		less = lhs.AsString() < rhs.AsString()
		equal = lhs.AsString() == rhs.AsString()
	}

	var result bool
	switch node.Op {
	case parser.OpLessThan:
		result = less
	case parser.OpLessThanEqual:
		result = less || equal
	case parser.OpGreaterThan:
		result = !less && !equal
	case parser.OpGreaterThanEqual:
		result = !less
	}
	return value.Bool(result), nil
}

func (e *Evaluator) evaluateRange(node *parser.Node, lhs, rhs *value.Value) (*value.Value, error) {
	if lhs.IsUndefined() || rhs.IsUndefined() {
		return value.Undefined(), nil
	}
	if !lhs.IsInteger() {
		return nil, errors.New(errors.ErrLeftSideNotInteger, node.Position)
	}
	if !rhs.IsInteger() {
		return nil, errors.New(errors.ErrRightSideNotInteger, node.Position)
	}

	start := int64(lhs.AsNumber())
	end := int64(rhs.AsNumber())
	if start > end {
		return value.Undefined(), nil
	}
	size := end - start + 1
	if float64(size) > rangeLimit {
		return nil, errors.New(errors.ErrRangeOutOfBounds, node.Position, size)
	}

	return e.arena.NewRange(start, end), nil
}
