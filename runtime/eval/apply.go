package eval

import (
	"github.com/jsonata-lang/jsonata/compiler/errors"
	"github.com/jsonata-lang/jsonata/compiler/parser"
	"github.com/jsonata-lang/jsonata/runtime/value"
)

// tailCall is the evaluator-private thunk produced when a lambda body ends
// in a call to another lambda; the trampoline in ApplyFunction drives it.
type tailCall struct {
	position int
	input    *value.Value
	proc     *value.Value
	args     []*value.Value
	frame    *value.Frame
}

// evaluateFunctionNode evaluates a function invocation node. When
// applyToContext is non-nil (the `~>` operator), it is prepended to the
// argument list.
func (e *Evaluator) evaluateFunctionNode(node *parser.Node, input *value.Value, frame *value.Frame, applyToContext *value.Value) (*value.Value, error) {
	proc, err := e.Evaluate(node.Proc, input, frame)
	if err != nil {
		return nil, err
	}

	if !proc.IsFunction() {
		return nil, invokeError(node)
	}

	if node.IsPartial {
		return e.partialApply(node, proc, input, frame)
	}

	args := make([]*value.Value, 0, len(node.Args)+1)
	if applyToContext != nil {
		args = append(args, applyToContext)
	}
	for _, argNode := range node.Args {
		arg, err := e.Evaluate(argNode, input, frame)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	return e.ApplyFunction(node.Position, input, proc, args, frame)
}

// invokeError builds the T1005/T1006 error for a non-function callee,
// suggesting a built-in when the name is close to one.
func invokeError(node *parser.Node) *errors.Error {
	name := calleeName(node.Proc)
	if name != "" {
		if suggestion := errors.SuggestBuiltin(name); suggestion != "" {
			return errors.New(errors.ErrInvokedNonFunctionSuggest, node.Position, suggestion)
		}
	}
	return errors.New(errors.ErrInvokedNonFunction, node.Position)
}

func calleeName(proc *parser.Node) string {
	switch proc.Kind {
	case parser.KindVar:
		return proc.Str
	case parser.KindPath:
		if len(proc.Exprs) == 1 && proc.Exprs[0].Kind == parser.KindName {
			return proc.Exprs[0].Str
		}
	}
	return ""
}

// partialApply builds a lambda closing over the evaluated non-hole
// arguments; its parameters are the `?` holes.
func (e *Evaluator) partialApply(node *parser.Node, proc *value.Value, input *value.Value, frame *value.Frame) (*value.Value, error) {
	fixed := make([]*value.Value, len(node.Args))
	holes := 0
	for i, argNode := range node.Args {
		if argNode.Kind == parser.KindPartialArg {
			fixed[i] = nil
			holes++
			continue
		}
		arg, err := e.Evaluate(argNode, input, frame)
		if err != nil {
			return nil, err
		}
		fixed[i] = arg
	}

	name := calleeName(node.Proc)
	if name == "" {
		name = "lambda"
	}

	return e.arena.NewNative(name, holes, func(ctx *value.FunctionContext, callArgs []*value.Value) (*value.Value, error) {
		merged := make([]*value.Value, len(fixed))
		next := 0
		for i, arg := range fixed {
			if arg == nil {
				if next < len(callArgs) {
					merged[i] = callArgs[next]
					next++
				} else {
					merged[i] = value.Undefined()
				}
			} else {
				merged[i] = arg
			}
		}
		return ctx.EvaluateFunction(proc, merged)
	}), nil
}

// ApplyFunction applies a function value to arguments, driving tail-call
// thunks to completion. It implements value.Caller so built-ins can invoke
// functions through the same channel.
func (e *Evaluator) ApplyFunction(position int, input *value.Value, proc *value.Value, args []*value.Value, frame *value.Frame) (*value.Value, error) {
	result, tail, err := e.applyInner(position, input, proc, args, frame)
	for err == nil && tail != nil {
		result, tail, err = e.applyInner(tail.position, tail.input, tail.proc, tail.args, tail.frame)
	}
	return result, err
}

func (e *Evaluator) applyInner(position int, input *value.Value, proc *value.Value, args []*value.Value, frame *value.Frame) (*value.Value, *tailCall, error) {
	if err := e.checkLimits(); err != nil {
		return nil, nil, err
	}

	switch proc.Kind() {
	case value.KindLambda:
		return e.applyLambda(position, proc, args)

	case value.KindNative:
		native := proc.AsNative()
		ctx := &value.FunctionContext{
			Name:      native.Name,
			Position:  position,
			Input:     input,
			Frame:     frame,
			Arena:     e.arena,
			Evaluator: e,
		}
		result, err := native.Fn(ctx, args)
		if err != nil {
			return nil, nil, err
		}
		return result, nil, nil

	case value.KindTransformer:
		arg := value.Undefined()
		if len(args) > 0 {
			arg = args[0]
		}
		result, err := e.applyTransformer(position, proc.AsTransformer(), arg, frame)
		if err != nil {
			return nil, nil, err
		}
		return result, nil, nil

	default:
		return nil, nil, errors.New(errors.ErrInvokedNonFunction, position)
	}
}

func (e *Evaluator) applyLambda(position int, proc *value.Value, args []*value.Value) (*value.Value, *tailCall, error) {
	lambda := proc.AsLambda()

	if lambda.Signature != nil {
		validated, err := validateArguments(e.arena, lambda.Signature, args, lambda.Input, position, "lambda")
		if err != nil {
			return nil, nil, err
		}
		args = validated
	}

	callFrame := value.NewChildFrame(lambda.Frame)
	for i, param := range lambda.Params {
		if i < len(args) {
			callFrame.Bind(param, args[i])
		} else {
			callFrame.Bind(param, value.Undefined())
		}
	}

	return e.evaluateTailBody(lambda.Body, lambda.Input, callFrame)
}

// evaluateTailBody evaluates a lambda body, turning a call in tail
// position whose callee is another lambda into a thunk instead of
// recursing.
func (e *Evaluator) evaluateTailBody(body *parser.Node, input *value.Value, frame *value.Frame) (*value.Value, *tailCall, error) {
	e.depth++
	defer func() { e.depth-- }()
	if err := e.checkLimits(); err != nil {
		return nil, nil, err
	}

	switch {
	case body.Kind == parser.KindFunction && body.Thunk && !body.IsPartial:
		proc, err := e.Evaluate(body.Proc, input, frame)
		if err != nil {
			return nil, nil, err
		}
		args := make([]*value.Value, 0, len(body.Args))
		for _, argNode := range body.Args {
			arg, err := e.Evaluate(argNode, input, frame)
			if err != nil {
				return nil, nil, err
			}
			args = append(args, arg)
		}
		if proc.Kind() == value.KindLambda {
			return nil, &tailCall{
				position: body.Position,
				input:    input,
				proc:     proc,
				args:     args,
				frame:    frame,
			}, nil
		}
		if !proc.IsFunction() {
			return nil, nil, invokeError(body)
		}
		result, err := e.ApplyFunction(body.Position, input, proc, args, frame)
		return result, nil, err

	case body.Kind == parser.KindTernary:
		cond, err := e.Evaluate(body.Cond, input, frame)
		if err != nil {
			return nil, nil, err
		}
		if cond.IsTruthy() {
			return e.evaluateTailBody(body.Then, input, frame)
		}
		if body.Else != nil {
			return e.evaluateTailBody(body.Else, input, frame)
		}
		return value.Undefined(), nil, nil

	case body.Kind == parser.KindBlock && len(body.Exprs) > 0:
		blockFrame := value.NewChildFrame(frame)
		for _, expr := range body.Exprs[:len(body.Exprs)-1] {
			if _, err := e.Evaluate(expr, input, blockFrame); err != nil {
				return nil, nil, err
			}
		}
		return e.evaluateTailBody(body.Exprs[len(body.Exprs)-1], input, blockFrame)

	default:
		result, err := e.Evaluate(body, input, frame)
		return result, nil, err
	}
}

// evaluateApply implements the `~>` operator
func (e *Evaluator) evaluateApply(node *parser.Node, input *value.Value, frame *value.Frame) (*value.Value, error) {
	lhs, err := e.Evaluate(node.LHS, input, frame)
	if err != nil {
		return nil, err
	}

	// rhs being an invocation gets the lhs prepended as first argument
	if node.RHS.Kind == parser.KindFunction {
		return e.evaluateFunctionNode(node.RHS, input, frame, lhs)
	}

	fn, err := e.Evaluate(node.RHS, input, frame)
	if err != nil {
		return nil, err
	}
	if !fn.IsFunction() {
		return nil, errors.New(errors.ErrRightSideNotFunction, node.Position)
	}

	if lhs.IsFunction() {
		// function composition via the chain template
		chainFn, err := e.Evaluate(e.chain, value.Undefined(), frame)
		if err != nil {
			return nil, err
		}
		return e.ApplyFunction(node.Position, input, chainFn, []*value.Value{lhs, fn}, frame)
	}

	return e.ApplyFunction(node.Position, input, fn, []*value.Value{lhs}, frame)
}

// applyTransformer deep-clones the argument via the `$clone` visible in
// the current frame, rewrites every value matched by the pattern, and
// returns the mutated clone.
func (e *Evaluator) applyTransformer(position int, transformer *value.Transformer, arg *value.Value, frame *value.Frame) (*value.Value, error) {
	if arg.IsUndefined() {
		return value.Undefined(), nil
	}

	cloneFn, ok := frame.Lookup("clone")
	if !ok || !cloneFn.IsFunction() {
		return nil, errors.New(errors.ErrBadClone, position)
	}
	copied, err := e.ApplyFunction(position, arg, cloneFn, []*value.Value{arg}, frame)
	if err != nil {
		return nil, err
	}

	matches, err := e.Evaluate(transformer.Pattern, copied, frame)
	if err != nil {
		return nil, err
	}
	if matches.IsUndefined() {
		return copied, nil
	}
	matched := value.WrapInArrayIfNeeded(e.arena, matches, 0)

	for _, match := range matched.Members() {
		if !match.IsObject() {
			continue
		}

		update, err := e.Evaluate(transformer.Update, match, frame)
		if err != nil {
			return nil, err
		}
		if !update.IsUndefined() {
			if !update.IsObject() {
				return nil, errors.New(errors.ErrUpdateNotObject, position, value.Serialize(update, false))
			}
			for _, key := range update.Keys() {
				match.Insert(key, update.Entry(key))
			}
		}

		if transformer.Delete != nil {
			del, err := e.Evaluate(transformer.Delete, match, frame)
			if err != nil {
				return nil, err
			}
			if !del.IsUndefined() {
				keys := value.WrapInArrayIfNeeded(e.arena, del, 0)
				for _, key := range keys.Members() {
					if !key.IsString() {
						return nil, errors.New(errors.ErrDeleteNotStrings, position, value.Serialize(del, false))
					}
					match.Remove(key.AsString())
				}
			}
		}
	}

	return copied, nil
}

// validateArguments checks arguments against a signature, applying the
// optional, one-or-more and context-default modifiers.
func validateArguments(arena *value.Arena, sig *parser.Signature, args []*value.Value, context *value.Value, position int, name string) ([]*value.Value, *errors.Error) {
	var out []*value.Value
	argIndex := 0

	for i, param := range sig.Params {
		if param.OneOrMore {
			if argIndex >= len(args) {
				return nil, errors.New(errors.ErrArgumentNotValid, position, i+1, name)
			}
			for ; argIndex < len(args); argIndex++ {
				if !matchesParam(param, args[argIndex]) {
					return nil, errors.New(errors.ErrArgumentNotValid, position, i+1, name)
				}
				out = append(out, args[argIndex])
			}
			continue
		}

		if argIndex >= len(args) {
			switch {
			case param.ContextDefault:
				out = append(out, context)
			case param.Optional:
			default:
				return nil, errors.New(errors.ErrArgumentNotValid, position, i+1, name)
			}
			continue
		}

		arg := args[argIndex]
		argIndex++

		if !matchesParam(param, arg) {
			return nil, errors.New(errors.ErrArgumentNotValid, position, i+1, name)
		}
		// a parameter that only accepts arrays wraps a bare value
		if param.Types == "a" && !arg.IsArray() && !arg.IsUndefined() {
			arg = value.WrapInArray(arena, arg, 0)
		}
		out = append(out, arg)
	}

	return out, nil
}

func matchesParam(param parser.Param, arg *value.Value) bool {
	if arg.IsUndefined() {
		return true
	}
	letter := typeLetter(arg)
	if param.Allows(letter) {
		return true
	}
	// a lone array spec admits a bare value by wrapping it
	return param.Types == "a"
}

func typeLetter(v *value.Value) byte {
	switch v.Kind() {
	case value.KindBool:
		return 'b'
	case value.KindNumber:
		return 'n'
	case value.KindString:
		return 's'
	case value.KindNull:
		return 'l'
	case value.KindArray, value.KindRange:
		return 'a'
	case value.KindObject:
		return 'o'
	case value.KindLambda, value.KindNative, value.KindTransformer, value.KindRegex:
		return 'f'
	}
	return 'x'
}
