package eval

import (
	"math"

	"github.com/jsonata-lang/jsonata/compiler/errors"
	"github.com/jsonata-lang/jsonata/compiler/parser"
	"github.com/jsonata-lang/jsonata/runtime/value"
)

// tupleEnv is one element of a tuple stream: a context value together with
// the variable bindings accumulated by focus/index-bound steps, plus the
// parent context for `%`.
type tupleEnv struct {
	context  *value.Value
	bindings map[string]*value.Value
	parent   *value.Value
}

func (t *tupleEnv) frame(base *value.Frame) *value.Frame {
	f := value.NewChildFrame(base)
	for name, v := range t.bindings {
		f.Bind(name, v)
	}
	if t.parent != nil {
		f.Bind(parentBinding, t.parent)
	}
	return f
}

func cloneBindings(in map[string]*value.Value) map[string]*value.Value {
	out := make(map[string]*value.Value, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// evaluatePath drives a sequence of steps. Each step consumes the previous
// step's sequence and is applied element-wise; a step with focus or index
// bindings switches the evaluation into tuple-stream mode so positional
// bindings survive to later steps.
func (e *Evaluator) evaluatePath(node *parser.Node, input *value.Value, frame *value.Frame) (*value.Value, error) {
	var inputSeq *value.Value
	if input.IsArray() && node.Exprs[0].Kind != parser.KindVar {
		inputSeq = input
	} else {
		inputSeq = value.WrapInArray(e.arena, input, value.FlagSequence)
	}

	resultSeq := inputSeq
	var origins []*value.Value // parent of each member of resultSeq
	var tuples []*tupleEnv
	isTupleStream := false
	var err error

	for i, step := range node.Exprs {
		if step.Tuple {
			isTupleStream = true
		}

		switch {
		case i == 0 && step.ConsArray:
			// an array constructor opening a path is evaluated against
			// the whole input sequence, not element-wise
			resultSeq, err = e.Evaluate(step, resultSeq, frame)
			if err != nil {
				return nil, err
			}
			origins = nil

		case isTupleStream:
			if tuples == nil {
				tuples = make([]*tupleEnv, 0, resultSeq.Len())
				for j, member := range resultSeq.Members() {
					t := &tupleEnv{context: member, bindings: map[string]*value.Value{}}
					if origins != nil {
						t.parent = origins[j]
					}
					tuples = append(tuples, t)
				}
			}
			tuples, err = e.evaluateTupleStep(step, tuples, frame)
			if err != nil {
				return nil, err
			}

		default:
			resultSeq, origins, err = e.evaluateStep(step, resultSeq, origins, frame, i == len(node.Exprs)-1)
			if err != nil {
				return nil, err
			}
		}

		if isTupleStream {
			if len(tuples) == 0 {
				break
			}
		} else if resultSeq.IsUndefined() || resultSeq.Len() == 0 {
			break
		}
	}

	if isTupleStream {
		resultSeq = e.arena.NewArrayWithCapacity(len(tuples), value.FlagSequence)
		for _, t := range tuples {
			resultSeq.Push(t.context)
		}
	}

	if node.KeepSingletonArray {
		if resultSeq.IsArray() && resultSeq.HasFlags(value.FlagCons) && !resultSeq.HasFlags(value.FlagSequence) {
			resultSeq = value.WrapInArray(e.arena, resultSeq, value.FlagSequence)
		}
		if resultSeq.IsArray() {
			resultSeq.AddFlags(value.FlagSingleton)
		}
	}

	if node.GroupBy != nil {
		return e.evaluateGroupExpression(node.GroupBy.Pairs, resultSeq, frame, node.GroupBy.Position)
	}

	return resultSeq, nil
}

// evaluateStep applies one step element-wise over the input sequence and
// flattens the results. It returns the new sequence along with the parent
// context of each member, which backs the `%` operator in the next step.
func (e *Evaluator) evaluateStep(step *parser.Node, inputSeq *value.Value, origins []*value.Value, frame *value.Frame, lastStep bool) (*value.Value, []*value.Value, error) {
	if step.Kind == parser.KindSort {
		sorted, err := e.evaluateSortStep(step, inputSeq, frame)
		if err != nil {
			return nil, nil, err
		}
		for _, filter := range step.Predicates {
			sorted, err = e.evaluateFilter(filter.Expr, sorted, frame)
			if err != nil {
				return nil, nil, err
			}
		}
		for _, stage := range step.Stages {
			sorted, err = e.evaluateFilter(stage.Expr, sorted, frame)
			if err != nil {
				return nil, nil, err
			}
		}
		return sorted, nil, nil
	}

	raw := e.arena.NewArray(value.FlagSequence)
	var rawOrigins []*value.Value

	for j, item := range inputSeq.Members() {
		stepFrame := frame
		if origins != nil && origins[j] != nil {
			stepFrame = value.NewChildFrame(frame)
			stepFrame.Bind(parentBinding, origins[j])
		}

		res, err := e.Evaluate(step, item, stepFrame)
		if err != nil {
			return nil, nil, err
		}
		for _, stage := range step.Stages {
			if stage.Kind == parser.KindFilter {
				res, err = e.evaluateFilter(stage.Expr, res, stepFrame)
				if err != nil {
					return nil, nil, err
				}
			}
		}
		if !res.IsUndefined() {
			raw.Push(res)
			rawOrigins = append(rawOrigins, item)
		}
	}

	// Special case: a last step yielding a single non-sequence array is
	// delivered intact rather than flattened
	if lastStep && raw.Len() == 1 && raw.Member(0).IsArray() && !raw.Member(0).HasFlags(value.FlagSequence) {
		return raw.Member(0), nil, nil
	}

	result := e.arena.NewArray(value.FlagSequence)
	var resultOrigins []*value.Value
	for j, res := range raw.Members() {
		if !res.IsArray() || res.HasFlags(value.FlagCons) {
			result.Push(res)
			resultOrigins = append(resultOrigins, rawOrigins[j])
		} else {
			for _, member := range res.Members() {
				result.Push(member)
				resultOrigins = append(resultOrigins, rawOrigins[j])
			}
		}
	}

	return result, resultOrigins, nil
}

// evaluateTupleStep is the tuple-stream form of evaluateStep: every
// element carries its own bindings, and focus/index variables on the step
// extend them.
func (e *Evaluator) evaluateTupleStep(step *parser.Node, tuples []*tupleEnv, frame *value.Frame) ([]*tupleEnv, error) {
	if step.Kind == parser.KindSort {
		sorted, err := e.sortTuples(step, tuples, frame)
		if err != nil {
			return nil, err
		}
		for _, stage := range step.Stages {
			sorted, err = e.filterTuples(stage.Expr, sorted, frame)
			if err != nil {
				return nil, err
			}
		}
		return sorted, nil
	}

	var result []*tupleEnv
	for _, t := range tuples {
		stepFrame := t.frame(frame)
		res, err := e.Evaluate(step, t.context, stepFrame)
		if err != nil {
			return nil, err
		}
		if res.IsUndefined() {
			continue
		}

		members := []*value.Value{res}
		if res.IsArray() {
			members = res.Members()
		}
		for k, member := range members {
			next := &tupleEnv{bindings: cloneBindings(t.bindings), parent: t.context}
			if step.FocusVar != "" {
				next.bindings[step.FocusVar] = member
				// focus binding keeps the context on the input element
				next.context = t.context
				next.parent = t.parent
			} else {
				next.context = member
			}
			if step.IndexVar != "" {
				next.bindings[step.IndexVar] = e.arena.NewNumber(float64(k))
			}
			result = append(result, next)
		}
	}

	for _, stage := range step.Stages {
		var err error
		switch stage.Kind {
		case parser.KindFilter:
			result, err = e.filterTuples(stage.Expr, result, frame)
			if err != nil {
				return nil, err
			}
		case parser.KindIndexBind:
			for k, t := range result {
				t.bindings[stage.Str] = e.arena.NewNumber(float64(k))
			}
		}
	}

	return result, nil
}

// evaluateFilter applies a predicate to a sequence. A numeric predicate
// selects by index with negative wrap-around; anything else filters by
// truthiness.
func (e *Evaluator) evaluateFilter(pred *parser.Node, input *value.Value, frame *value.Frame) (*value.Value, error) {
	if input.IsUndefined() {
		return value.Undefined(), nil
	}

	items := value.WrapInArrayIfNeeded(e.arena, input, value.FlagSequence)
	result := e.arena.NewArray(value.FlagSequence)
	n := items.Len()

	for i, item := range items.Members() {
		res, err := e.Evaluate(pred, item, frame)
		if err != nil {
			return nil, err
		}

		if res.IsNumber() {
			if wrapIndex(res.AsNumber(), n) == i {
				result.Push(item)
			}
		} else if isArrayOfNumbers(res) {
			for _, k := range res.Members() {
				if wrapIndex(k.AsNumber(), n) == i {
					result.Push(item)
					break
				}
			}
		} else if res.IsTruthy() {
			result.Push(item)
		}
	}

	return result, nil
}

func (e *Evaluator) filterTuples(pred *parser.Node, tuples []*tupleEnv, frame *value.Frame) ([]*tupleEnv, error) {
	var result []*tupleEnv
	n := len(tuples)

	for i, t := range tuples {
		res, err := e.Evaluate(pred, t.context, t.frame(frame))
		if err != nil {
			return nil, err
		}

		if res.IsNumber() {
			if wrapIndex(res.AsNumber(), n) == i {
				result = append(result, t)
			}
		} else if isArrayOfNumbers(res) {
			for _, k := range res.Members() {
				if wrapIndex(k.AsNumber(), n) == i {
					result = append(result, t)
					break
				}
			}
		} else if res.IsTruthy() {
			result = append(result, t)
		}
	}

	return result, nil
}

// wrapIndex maps a predicate number onto a sequence index with negative
// wrap-around: i == ((k mod n) + n) mod n
func wrapIndex(k float64, n int) int {
	if n == 0 {
		return -1
	}
	idx := int(math.Floor(k))
	return ((idx % n) + n) % n
}

func isArrayOfNumbers(v *value.Value) bool {
	if !v.IsArray() || v.Len() == 0 {
		return false
	}
	for _, member := range v.Members() {
		if !member.IsNumber() {
			return false
		}
	}
	return true
}

// evaluateSortStep sorts a plain sequence by the step's terms
func (e *Evaluator) evaluateSortStep(step *parser.Node, inputSeq *value.Value, frame *value.Frame) (*value.Value, error) {
	items := inputSeq.Members()
	sorted, err := value.MergeSort(items, func(a, b *value.Value) (bool, error) {
		return e.sortSwap(step.SortTerms, step.Position,
			func(term parser.SortTerm) (*value.Value, error) { return e.Evaluate(term.Expr, a, frame) },
			func(term parser.SortTerm) (*value.Value, error) { return e.Evaluate(term.Expr, b, frame) })
	})
	if err != nil {
		return nil, err
	}

	result := e.arena.NewArrayWithCapacity(len(sorted), value.FlagSequence)
	for _, member := range sorted {
		result.Push(member)
	}
	return result, nil
}

func (e *Evaluator) sortTuples(step *parser.Node, tuples []*tupleEnv, frame *value.Frame) ([]*tupleEnv, error) {
	indices := make([]*value.Value, len(tuples))
	for i := range tuples {
		indices[i] = e.arena.NewNumber(float64(i))
	}
	sorted, err := value.MergeSort(indices, func(a, b *value.Value) (bool, error) {
		ta := tuples[int(a.AsNumber())]
		tb := tuples[int(b.AsNumber())]
		return e.sortSwap(step.SortTerms, step.Position,
			func(term parser.SortTerm) (*value.Value, error) {
				return e.Evaluate(term.Expr, ta.context, ta.frame(frame))
			},
			func(term parser.SortTerm) (*value.Value, error) {
				return e.Evaluate(term.Expr, tb.context, tb.frame(frame))
			})
	})
	if err != nil {
		return nil, err
	}

	result := make([]*tupleEnv, len(sorted))
	for i, idx := range sorted {
		result[i] = tuples[int(idx.AsNumber())]
	}
	return result, nil
}

// sortSwap reports whether a should come after b: the first differing term
// decides, with descending terms inverted.
func (e *Evaluator) sortSwap(terms []parser.SortTerm, position int,
	evalA, evalB func(parser.SortTerm) (*value.Value, error)) (bool, error) {

	comp := 0
	for _, term := range terms {
		if comp != 0 {
			break
		}
		aa, err := evalA(term)
		if err != nil {
			return false, err
		}
		bb, err := evalB(term)
		if err != nil {
			return false, err
		}

		// undefined sorts to the end regardless of direction
		if aa.IsUndefined() {
			if !bb.IsUndefined() {
				comp = 1
			}
			continue
		}
		if bb.IsUndefined() {
			comp = -1
			continue
		}

		scalar := func(v *value.Value) bool { return v.IsNumber() || v.IsString() }
		if !scalar(aa) || !scalar(bb) {
			return false, errors.New(errors.ErrInvalidOrderBy, position)
		}
		if aa.Kind() != bb.Kind() {
			return false, errors.New(errors.ErrCompareTypeMismatch, position,
				value.Serialize(aa, false), value.Serialize(bb, false))
		}

		switch {
		case value.Equals(aa, bb):
			continue
		case aa.IsNumber() && aa.AsNumber() < bb.AsNumber(),
			aa.IsString() && aa.AsString() < bb.AsString():
			comp = -1
		default:
			comp = 1
		}
		if term.Descending {
			comp = -comp
		}
	}

	return comp == 1, nil
}

// evaluateGroupExpression implements both the object constructor and the
// group-by stage: every input element is assigned to buckets by its key
// expressions, then each bucket's value expression runs over the grouped
// items.
func (e *Evaluator) evaluateGroupExpression(pairs []parser.Pair, input *value.Value, frame *value.Frame, position int) (*value.Value, error) {
	type group struct {
		pairIndex int
		items     *value.Value
	}

	var items []*value.Value
	switch {
	case input.IsArray():
		items = input.Members()
	case input.IsUndefined():
	default:
		items = []*value.Value{input}
	}
	if len(items) == 0 {
		// a literal object constructor still evaluates once
		items = []*value.Value{value.Undefined()}
	}

	var order []string
	groups := map[string]*group{}

	for _, item := range items {
		for i, pair := range pairs {
			key, err := e.Evaluate(pair.Key, item, frame)
			if err != nil {
				return nil, err
			}
			if key.IsUndefined() {
				continue
			}
			if !key.IsString() {
				return nil, errors.New(errors.ErrNonStringKey, position, value.Serialize(key, false))
			}

			name := key.AsString()
			if existing, ok := groups[name]; ok {
				if existing.pairIndex != i {
					return nil, errors.New(errors.ErrMultipleKeys, position, name)
				}
				appendValues(existing.items, item)
			} else {
				bucket := e.arena.NewArray(value.FlagSequence)
				appendValues(bucket, item)
				groups[name] = &group{pairIndex: i, items: bucket}
				order = append(order, name)
			}
		}
	}

	result := e.arena.NewObject()
	for _, name := range order {
		bucket := groups[name]
		context := bucket.items
		if context.Len() == 1 {
			context = context.Member(0)
		}
		v, err := e.Evaluate(pairs[bucket.pairIndex].Value, context, frame)
		if err != nil {
			return nil, err
		}
		if !v.IsUndefined() {
			result.Insert(name, v)
		}
	}

	return result, nil
}
