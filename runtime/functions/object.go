package functions

import (
	"github.com/samber/lo"

	"github.com/jsonata-lang/jsonata/runtime/value"
)

func fnKeys(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	obj := contextArg(ctx, args)
	if obj.IsUndefined() {
		return value.Undefined(), nil
	}

	var keys []string
	switch {
	case obj.IsArray():
		// merge keys across an array of objects
		allObjects := true
		for _, member := range obj.Members() {
			if !member.IsObject() {
				allObjects = false
				break
			}
		}
		if allObjects {
			for _, member := range obj.Members() {
				keys = append(keys, member.Keys()...)
			}
			keys = lo.Uniq(keys)
		}
	case obj.IsObject():
		keys = obj.Keys()
	}

	result := ctx.Arena.NewArray(value.FlagSequence)
	for _, key := range keys {
		result.Push(ctx.Arena.NewString(key))
	}
	return result, nil
}

func fnLookup(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	input := arg(args, 0)
	key := arg(args, 1)
	if err := assertArg(key.IsString(), ctx, 2); err != nil {
		return nil, err
	}
	return lookupInternal(ctx, input, key.AsString()), nil
}

func lookupInternal(ctx *value.FunctionContext, input *value.Value, key string) *value.Value {
	switch {
	case input.IsArray():
		result := ctx.Arena.NewArray(value.FlagSequence)
		for _, member := range input.Members() {
			res := lookupInternal(ctx, member, key)
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
	case input.IsObject():
		return input.Entry(key)
	default:
		return value.Undefined()
	}
}

func fnMerge(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	objects := contextArg(ctx, args)
	if objects.IsUndefined() {
		return value.Undefined(), nil
	}
	if objects.IsObject() {
		objects = value.WrapInArray(ctx.Arena, objects, 0)
	}

	ok := objects.IsArray()
	if ok {
		for _, member := range objects.Members() {
			if !member.IsObject() {
				ok = false
				break
			}
		}
	}
	if err := assertArg(ok, ctx, 1); err != nil {
		return nil, err
	}

	result := ctx.Arena.NewObject()
	for _, obj := range objects.Members() {
		for _, key := range obj.Keys() {
			result.Insert(key, obj.Entry(key))
		}
	}
	return result, nil
}

func fnSpread(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)

	switch {
	case a.IsUndefined():
		return value.Undefined(), nil
	case a.IsObject():
		result := ctx.Arena.NewArray(value.FlagSequence)
		for _, key := range a.Keys() {
			single := ctx.Arena.NewObject()
			single.Insert(key, a.Entry(key))
			result.Push(single)
		}
		return result, nil
	case a.IsArray():
		result := ctx.Arena.NewArray(value.FlagSequence)
		for _, member := range a.Members() {
			spread, err := fnSpread(ctx, []*value.Value{member})
			if err != nil {
				return nil, err
			}
			if spread.IsArray() {
				for _, item := range spread.Members() {
					result.Push(item)
				}
			} else if !spread.IsUndefined() {
				result.Push(spread)
			}
		}
		return result, nil
	default:
		return a, nil
	}
}

func fnEach(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	var obj, fn *value.Value
	if len(args) == 1 {
		obj = contextArg(ctx, nil)
		fn = args[0]
	} else {
		obj = arg(args, 0)
		fn = arg(args, 1)
	}

	if obj.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(obj.IsObject(), ctx, 1); err != nil {
		return nil, err
	}
	if err := assertArg(fn.IsFunction(), ctx, 2); err != nil {
		return nil, err
	}

	result := ctx.Arena.NewArray(value.FlagSequence)
	for _, key := range obj.Keys() {
		mapped, err := ctx.EvaluateFunction(fn, []*value.Value{obj.Entry(key), ctx.Arena.NewString(key)})
		if err != nil {
			return nil, err
		}
		if !mapped.IsUndefined() {
			result.Push(mapped)
		}
	}
	return result, nil
}

// fnSift keeps the object entries for which the predicate holds
func fnSift(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	var obj, fn *value.Value
	if len(args) == 1 {
		obj = contextArg(ctx, nil)
		fn = args[0]
	} else {
		obj = arg(args, 0)
		fn = arg(args, 1)
	}

	if obj.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(obj.IsObject(), ctx, 1); err != nil {
		return nil, err
	}
	if err := assertArg(fn.IsFunction(), ctx, 2); err != nil {
		return nil, err
	}

	result := ctx.Arena.NewObject()
	for _, key := range obj.Keys() {
		entry := obj.Entry(key)
		fnArgs := []*value.Value{entry}
		if fn.Arity() >= 2 {
			fnArgs = append(fnArgs, ctx.Arena.NewString(key))
		}
		if fn.Arity() >= 3 {
			fnArgs = append(fnArgs, obj)
		}
		keep, err := ctx.EvaluateFunction(fn, fnArgs)
		if err != nil {
			return nil, err
		}
		if keep.IsTruthy() {
			result.Insert(key, entry)
		}
	}

	if result.EntryCount() == 0 {
		return value.Undefined(), nil
	}
	return result, nil
}
