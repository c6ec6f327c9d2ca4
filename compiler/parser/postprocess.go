package parser

import (
	"github.com/jsonata-lang/jsonata/compiler/errors"
)

// processAST rewrites the raw parse tree into the canonical form the
// evaluator consumes: `.`-chains collapse into Path nodes, predicates and
// sorts attach to their steps as stages, groupings and step bindings move
// onto the nodes they modify.
func processAST(node *Node) (*Node, *errors.Error) {
	switch node.Kind {
	case KindName:
		result := newNode(KindPath, node.Position)
		result.Exprs = []*Node{node}
		if node.KeepArray {
			result.KeepSingletonArray = true
		}
		return result, nil

	case KindBinary:
		return processBinary(node)

	case KindOrderBy:
		return processOrderBy(node)

	case KindGroupByExpr:
		result, err := processAST(node.LHS)
		if err != nil {
			return nil, err
		}
		if result.GroupBy != nil {
			return nil, errors.New(errors.ErrMultipleGroupBy, node.Position)
		}
		pairs, err := processPairs(node.Pairs)
		if err != nil {
			return nil, err
		}
		result.GroupBy = &GroupExpr{Position: node.Position, Pairs: pairs}
		return result, nil

	case KindArray:
		for i, item := range node.Exprs {
			processed, err := processAST(item)
			if err != nil {
				return nil, err
			}
			node.Exprs[i] = processed
		}
		return node, nil

	case KindObject:
		pairs, err := processPairs(node.Pairs)
		if err != nil {
			return nil, err
		}
		node.Pairs = pairs
		return node, nil

	case KindNegate:
		expr, err := processAST(node.Expr)
		if err != nil {
			return nil, err
		}
		node.Expr = expr
		return node, nil

	case KindBlock:
		for i, expr := range node.Exprs {
			processed, err := processAST(expr)
			if err != nil {
				return nil, err
			}
			node.Exprs[i] = processed
		}
		return node, nil

	case KindTernary:
		var err *errors.Error
		if node.Cond, err = processAST(node.Cond); err != nil {
			return nil, err
		}
		if node.Then, err = processAST(node.Then); err != nil {
			return nil, err
		}
		if node.Else != nil {
			if node.Else, err = processAST(node.Else); err != nil {
				return nil, err
			}
		}
		return node, nil

	case KindTransform:
		var err *errors.Error
		if node.Pattern, err = processAST(node.Pattern); err != nil {
			return nil, err
		}
		if node.Update, err = processAST(node.Update); err != nil {
			return nil, err
		}
		if node.Delete != nil {
			if node.Delete, err = processAST(node.Delete); err != nil {
				return nil, err
			}
		}
		return node, nil

	case KindLambda:
		body, err := processAST(node.Body)
		if err != nil {
			return nil, err
		}
		markTailCalls(body)
		node.Body = body
		return node, nil

	case KindFunction:
		proc, err := processAST(node.Proc)
		if err != nil {
			return nil, err
		}
		node.Proc = proc
		for i, arg := range node.Args {
			processed, err := processAST(arg)
			if err != nil {
				return nil, err
			}
			node.Args[i] = processed
		}
		return node, nil

	default:
		return node, nil
	}
}

// processBinary rewrites binary nodes; map, predicate and binding
// operators dissolve into path structure, the rest keep their shape with
// processed operands.
func processBinary(node *Node) (*Node, *errors.Error) {
	switch node.Op {
	case OpMap:
		return processMap(node)

	case OpPredicate:
		result, err := processAST(node.LHS)
		if err != nil {
			return nil, err
		}
		step := result
		if result.Kind == KindPath {
			step = result.Exprs[len(result.Exprs)-1]
		}
		if step.GroupBy != nil || result.GroupBy != nil {
			return nil, errors.New(errors.ErrPredicateAfterGroup, node.Position)
		}
		pred, err := processAST(node.RHS)
		if err != nil {
			return nil, err
		}
		filter := newNode(KindFilter, node.Position)
		filter.Expr = pred
		if step.Stages != nil {
			step.Stages = append(step.Stages, filter)
		} else {
			step.Predicates = append(step.Predicates, filter)
		}
		return result, nil

	case OpContextBind:
		result, err := processAST(node.LHS)
		if err != nil {
			return nil, err
		}
		step := result
		if result.Kind == KindPath {
			step = result.Exprs[len(result.Exprs)-1]
		}
		if step.Stages != nil || step.Predicates != nil {
			return nil, errors.New(errors.ErrBindingAfterPredicates, node.Position)
		}
		if step.Kind == KindSort {
			return nil, errors.New(errors.ErrBindingAfterSort, node.Position)
		}
		step.FocusVar = node.RHS.Str
		step.Tuple = true
		return result, nil

	case OpPositionalBind:
		result, err := processAST(node.LHS)
		if err != nil {
			return nil, err
		}
		step := result
		if result.Kind == KindPath {
			step = result.Exprs[len(result.Exprs)-1]
		}
		if step.Stages == nil {
			step.IndexVar = node.RHS.Str
		} else {
			index := newNode(KindIndexBind, node.Position)
			index.Str = node.RHS.Str
			step.Stages = append(step.Stages, index)
		}
		step.Tuple = true
		return result, nil

	default:
		var err *errors.Error
		if node.LHS, err = processAST(node.LHS); err != nil {
			return nil, err
		}
		if node.RHS, err = processAST(node.RHS); err != nil {
			return nil, err
		}
		return node, nil
	}
}

// processMap collapses a `.` chain into a Path node with a flat step list
func processMap(node *Node) (*Node, *errors.Error) {
	lhs, err := processAST(node.LHS)
	if err != nil {
		return nil, err
	}
	result := pathify(lhs)

	rhs, err := processAST(node.RHS)
	if err != nil {
		return nil, err
	}
	if rhs.Kind == KindPath {
		result.Exprs = append(result.Exprs, rhs.Exprs...)
		if rhs.KeepSingletonArray {
			result.KeepSingletonArray = true
		}
	} else {
		// Predicates on a non-path step run as stages once the step is
		// part of a larger path
		if rhs.Predicates != nil {
			rhs.Stages = rhs.Predicates
			rhs.Predicates = nil
		}
		result.Exprs = append(result.Exprs, rhs)
	}

	for _, step := range result.Exprs {
		switch step.Kind {
		case KindNumber:
			return nil, errors.New(errors.ErrInvalidStep, step.Position, step.Number)
		case KindBool:
			return nil, errors.New(errors.ErrInvalidStep, step.Position, step.Bool)
		case KindNull:
			return nil, errors.New(errors.ErrInvalidStep, step.Position, "null")
		}
		if step.KeepArray {
			result.KeepSingletonArray = true
		}
	}

	first := result.Exprs[0]
	if first.Kind == KindArray {
		first.ConsArray = true
	}
	last := result.Exprs[len(result.Exprs)-1]
	if last.Kind == KindArray {
		last.ConsArray = true
	}

	return result, nil
}

// processOrderBy appends a sort step to the path produced by the LHS
func processOrderBy(node *Node) (*Node, *errors.Error) {
	lhs, err := processAST(node.LHS)
	if err != nil {
		return nil, err
	}
	result := pathify(lhs)

	terms := make([]SortTerm, len(node.SortTerms))
	for i, term := range node.SortTerms {
		expr, err := processAST(term.Expr)
		if err != nil {
			return nil, err
		}
		terms[i] = SortTerm{Expr: expr, Descending: term.Descending}
	}

	sort := newNode(KindSort, node.Position)
	sort.SortTerms = terms
	result.Exprs = append(result.Exprs, sort)
	return result, nil
}

func processPairs(pairs []Pair) ([]Pair, *errors.Error) {
	for i, pair := range pairs {
		key, err := processAST(pair.Key)
		if err != nil {
			return nil, err
		}
		value, err := processAST(pair.Value)
		if err != nil {
			return nil, err
		}
		pairs[i] = Pair{Key: key, Value: value}
	}
	return pairs, nil
}

// pathify wraps a node into a single-step path unless it already is one
func pathify(node *Node) *Node {
	if node.Kind == KindPath {
		return node
	}
	result := newNode(KindPath, node.Position)
	result.Exprs = []*Node{node}
	if node.KeepArray {
		result.KeepSingletonArray = true
	}
	return result
}

// markTailCalls flags function invocations in tail position of a lambda
// body so the evaluator can trampoline them instead of recursing.
func markTailCalls(node *Node) {
	switch node.Kind {
	case KindFunction:
		node.Thunk = true
	case KindTernary:
		markTailCalls(node.Then)
		if node.Else != nil {
			markTailCalls(node.Else)
		}
	case KindBlock:
		if len(node.Exprs) > 0 {
			markTailCalls(node.Exprs[len(node.Exprs)-1])
		}
	}
}
