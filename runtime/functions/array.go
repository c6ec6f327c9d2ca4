package functions

import (
	"github.com/jsonata-lang/jsonata/compiler/errors"
	"github.com/jsonata-lang/jsonata/runtime/value"
)

func fnCount(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	count := 0.0
	switch {
	case a.IsUndefined():
	case a.IsArray():
		count = float64(a.Len())
	default:
		count = 1
	}
	return ctx.Arena.NewNumber(count), nil
}

// fnAppend concatenates two values, wrapping scalars. Undefined on either
// side passes the other side through untouched.
func fnAppend(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	arg1 := arg(args, 0)
	arg2 := arg(args, 1)
	if arg1.IsUndefined() {
		return arg2, nil
	}
	if arg2.IsUndefined() {
		return arg1, nil
	}

	flags := value.FlagSequence
	if arg1.IsArray() {
		flags = arg1.Flags()
	}
	result := ctx.Arena.NewArrayWithCapacity(arg1.Len()+arg2.Len()+2, flags)

	for _, v := range []*value.Value{arg1, arg2} {
		if v.IsArray() {
			for _, member := range v.Members() {
				result.Push(member)
			}
		} else {
			result.Push(v)
		}
	}
	return result, nil
}

func fnReverse(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	if a.IsUndefined() {
		return value.Undefined(), nil
	}
	if !a.IsArray() {
		return value.WrapInArray(ctx.Arena, a, 0), nil
	}
	members := a.Members()
	result := ctx.Arena.NewArrayWithCapacity(len(members), 0)
	for i := len(members) - 1; i >= 0; i-- {
		result.Push(members[i])
	}
	return result, nil
}

func fnDistinct(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	if !a.IsArray() || a.Len() <= 1 {
		return a, nil
	}
	result := ctx.Arena.NewArrayWithCapacity(a.Len(), 0)
	seen := make(map[string]struct{})
	for _, member := range a.Members() {
		key := member.HashKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result.Push(member)
	}
	return result, nil
}

func fnZip(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if len(args) == 0 {
		return value.Undefined(), nil
	}

	length := -1
	for _, a := range args {
		if !a.IsArray() {
			length = 1
			break
		}
		if length < 0 || a.Len() < length {
			length = a.Len()
		}
	}

	result := ctx.Arena.NewArrayWithCapacity(length, 0)
	for i := 0; i < length; i++ {
		tuple := ctx.Arena.NewArrayWithCapacity(len(args), 0)
		for _, a := range args {
			if a.IsArray() {
				tuple.Push(a.Member(i))
			} else if i == 0 {
				tuple.Push(a)
			}
		}
		result.Push(tuple)
	}
	return result, nil
}

func fnSort(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 2); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	if a.IsUndefined() {
		return value.Undefined(), nil
	}
	if !a.IsArray() || a.Len() <= 1 {
		return value.WrapInArrayIfNeeded(ctx.Arena, a, 0), nil
	}

	var swap func(x, y *value.Value) (bool, error)
	if len(args) < 2 || args[1].IsUndefined() {
		swap = func(x, y *value.Value) (bool, error) {
			switch {
			case x.IsNumber() && y.IsNumber():
				return x.AsNumber() > y.AsNumber(), nil
			case x.IsString() && y.IsString():
				return x.AsString() > y.AsString(), nil
			default:
				return false, errors.New(errors.ErrInvalidDefaultSort, ctx.Position)
			}
		}
	} else {
		comparator := args[1]
		if err := assertArg(comparator.IsFunction(), ctx, 2); err != nil {
			return nil, err
		}
		swap = func(x, y *value.Value) (bool, error) {
			res, err := ctx.EvaluateFunction(comparator, []*value.Value{x, y})
			if err != nil {
				return false, err
			}
			return res.IsTruthy(), nil
		}
	}

	sorted, err := value.MergeSort(a.Members(), swap)
	if err != nil {
		return nil, err
	}
	result := ctx.Arena.NewArrayWithCapacity(len(sorted), a.Flags())
	for _, member := range sorted {
		result.Push(member)
	}
	return result, nil
}
