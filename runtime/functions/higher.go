package functions

import (
	"github.com/jsonata-lang/jsonata/compiler/errors"
	"github.com/jsonata-lang/jsonata/runtime/value"
)

func fnBoolean(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	if a.IsUndefined() {
		return value.Undefined(), nil
	}
	return value.Bool(a.IsTruthy()), nil
}

func fnNot(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	a := arg(args, 0)
	if a.IsUndefined() {
		return value.Undefined(), nil
	}
	return value.Bool(!a.IsTruthy()), nil
}

func fnExists(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := minArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	return value.Bool(!args[0].IsUndefined()), nil
}

func fnType(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	var name string
	switch a.Kind() {
	case value.KindUndefined:
		return value.Undefined(), nil
	case value.KindNull:
		name = "null"
	case value.KindBool:
		name = "boolean"
	case value.KindNumber:
		name = "number"
	case value.KindString:
		name = "string"
	case value.KindArray, value.KindRange:
		name = "array"
	case value.KindObject:
		name = "object"
	default:
		name = "function"
	}
	return ctx.Arena.NewString(name), nil
}

func fnClone(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	if a.IsUndefined() {
		return value.Undefined(), nil
	}
	return a.DeepCopy(ctx.Arena), nil
}

func fnError(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	message := arg(args, 0)
	if err := assertArg(message.IsUndefined() || message.IsString(), ctx, 1); err != nil {
		return nil, err
	}
	text := "$error() function evaluated"
	if message.IsString() {
		text = message.AsString()
	}
	return nil, errors.New(errors.ErrUserError, ctx.Position, text)
}

func fnAssert(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	condition := arg(args, 0)
	message := arg(args, 1)
	if err := assertArg(condition.IsBool(), ctx, 1); err != nil {
		return nil, err
	}
	if !condition.AsBool() {
		text := "$assert() statement failed"
		if message.IsString() {
			text = message.AsString()
		}
		return nil, errors.New(errors.ErrAssertFailed, ctx.Position, text)
	}
	return value.Undefined(), nil
}

func fnMap(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	arr := arg(args, 0)
	fn := arg(args, 1)
	if arr.IsUndefined() {
		return value.Undefined(), nil
	}
	arr = value.WrapInArrayIfNeeded(ctx.Arena, arr, 0)
	if err := assertArg(fn.IsFunction(), ctx, 2); err != nil {
		return nil, err
	}

	result := ctx.Arena.NewArray(value.FlagSequence)
	for index, item := range arr.Members() {
		fnArgs := higherOrderArgs(ctx, fn, item, index, arr)
		mapped, err := ctx.EvaluateFunction(fn, fnArgs)
		if err != nil {
			return nil, err
		}
		if !mapped.IsUndefined() {
			result.Push(mapped)
		}
	}
	return result, nil
}

func fnFilter(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	arr := arg(args, 0)
	fn := arg(args, 1)
	if arr.IsUndefined() {
		return value.Undefined(), nil
	}
	arr = value.WrapInArrayIfNeeded(ctx.Arena, arr, 0)
	if err := assertArg(fn.IsFunction(), ctx, 2); err != nil {
		return nil, err
	}

	result := ctx.Arena.NewArray(value.FlagSequence)
	for index, item := range arr.Members() {
		fnArgs := higherOrderArgs(ctx, fn, item, index, arr)
		include, err := ctx.EvaluateFunction(fn, fnArgs)
		if err != nil {
			return nil, err
		}
		if include.IsTruthy() {
			result.Push(item)
		}
	}
	return result, nil
}

// higherOrderArgs builds the (item, index, array) argument list, trimmed
// to the callback's arity
func higherOrderArgs(ctx *value.FunctionContext, fn *value.Value, item *value.Value, index int, arr *value.Value) []*value.Value {
	fnArgs := []*value.Value{item}
	if fn.Arity() >= 2 {
		fnArgs = append(fnArgs, ctx.Arena.NewNumber(float64(index)))
	}
	if fn.Arity() >= 3 {
		fnArgs = append(fnArgs, arr)
	}
	return fnArgs
}

func fnReduce(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 3); err != nil {
		return nil, err
	}
	if err := minArgs(ctx, args, 2); err != nil {
		return nil, err
	}

	original := args[0]
	fn := args[1]
	var init *value.Value
	if len(args) > 2 {
		init = args[2]
	}

	if fn.IsFunction() && fn.Arity() < 2 {
		return nil, errors.New(errors.ErrReduceArity, ctx.Position)
	}

	if !original.IsArray() {
		if original.IsNumber() || original.IsString() {
			return original, nil
		}
		return value.Undefined(), nil
	}

	members := original.Members()
	if len(members) == 0 {
		if init != nil {
			return init, nil
		}
		return value.Undefined(), nil
	}

	if err := assertArg(fn.IsFunction(), ctx, 2); err != nil {
		return nil, err
	}

	accumulator := members[0]
	start := 1
	if init != nil {
		accumulator = init
		start = 0
	}

	for index, item := range members[start:] {
		next, err := ctx.EvaluateFunction(fn, []*value.Value{
			accumulator, item, ctx.Arena.NewNumber(float64(index)), original,
		})
		if err != nil {
			return nil, err
		}
		accumulator = next
	}
	return accumulator, nil
}

func fnSingle(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 2); err != nil {
		return nil, err
	}
	arr := arg(args, 0)
	if arr.IsUndefined() {
		return value.Undefined(), nil
	}

	fn := arg(args, 1)
	if fn.IsUndefined() {
		fn = ctx.Arena.NewNative("single_default", 1,
			func(*value.FunctionContext, []*value.Value) (*value.Value, error) {
				return value.Bool(true), nil
			})
	}
	if err := assertArg(fn.IsFunction(), ctx, 2); err != nil {
		return nil, err
	}

	items := value.WrapInArrayIfNeeded(ctx.Arena, arr, 0)

	var found *value.Value
	for index, item := range items.Members() {
		fnArgs := higherOrderArgs(ctx, fn, item, index, items)
		res, err := ctx.EvaluateFunction(fn, fnArgs)
		if err != nil {
			return nil, err
		}
		if res.IsTruthy() {
			if found != nil {
				return nil, errors.New(errors.ErrSingleMultipleMatches, ctx.Position)
			}
			found = item
		}
	}

	if found == nil {
		return nil, errors.New(errors.ErrSingleNoMatches, ctx.Position)
	}
	return found, nil
}
