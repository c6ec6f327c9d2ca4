package functions

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/jsonata-lang/jsonata/compiler/errors"
	"github.com/jsonata-lang/jsonata/runtime/value"
)

func fnAbs(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	a := arg(args, 0)
	if a.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(a.IsNumber(), ctx, 1); err != nil {
		return nil, err
	}
	return ctx.Arena.NewNumber(math.Abs(a.AsNumber())), nil
}

func fnFloor(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	a := arg(args, 0)
	if a.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(a.IsNumber(), ctx, 1); err != nil {
		return nil, err
	}
	return ctx.Arena.NewNumber(math.Floor(a.AsNumber())), nil
}

func fnCeil(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	a := arg(args, 0)
	if a.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(a.IsNumber(), ctx, 1); err != nil {
		return nil, err
	}
	return ctx.Arena.NewNumber(math.Ceil(a.AsNumber())), nil
}

func fnSqrt(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	if a.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(a.IsNumber(), ctx, 1); err != nil {
		return nil, err
	}
	n := a.AsNumber()
	if n < 0 {
		return nil, errors.New(errors.ErrSqrtNegative, ctx.Position, value.FormatNumber(n))
	}
	return ctx.Arena.NewNumber(math.Sqrt(n)), nil
}

func fnPower(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 2); err != nil {
		return nil, err
	}
	base := arg(args, 0)
	exp := arg(args, 1)
	if base.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(base.IsNumber(), ctx, 1); err != nil {
		return nil, err
	}
	if err := assertArg(exp.IsNumber(), ctx, 2); err != nil {
		return nil, err
	}
	result := math.Pow(base.AsNumber(), exp.AsNumber())
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return nil, errors.New(errors.ErrPowUnrepresentable, ctx.Position,
			value.FormatNumber(base.AsNumber()), value.FormatNumber(exp.AsNumber()))
	}
	return ctx.Arena.NewNumber(result), nil
}

// fnRound rounds to the given number of decimal places using banker's
// (ties-to-even) rounding. The decimal shift goes through text to dodge
// binary floating point drift in the scaling itself.
func fnRound(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 2); err != nil {
		return nil, err
	}
	number := arg(args, 0)
	if number.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(number.IsNumber(), ctx, 1); err != nil {
		return nil, err
	}

	precision := 0
	if len(args) > 1 && !args[1].IsUndefined() {
		if err := assertArg(args[1].IsInteger(), ctx, 2); err != nil {
			return nil, err
		}
		precision = int(args[1].AsNumber())
	}

	shifted, err := shiftByPow10(number.AsNumber(), precision)
	if err != nil {
		return nil, err
	}
	rounded := math.RoundToEven(shifted)
	result, err := shiftByPow10(rounded, -precision)
	if err != nil {
		return nil, err
	}
	return ctx.Arena.NewNumber(result), nil
}

func shiftByPow10(n float64, pow int) (float64, error) {
	text := strconv.FormatFloat(n, 'g', -1, 64) + "e" + strconv.Itoa(pow)
	result, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, errors.New(errors.ErrUserError, -1, err.Error())
	}
	return result, nil
}

func fnNumber(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	switch a.Kind() {
	case value.KindUndefined:
		return value.Undefined(), nil
	case value.KindNumber:
		return a, nil
	case value.KindBool:
		if a.AsBool() {
			return ctx.Arena.NewNumber(1), nil
		}
		return ctx.Arena.NewNumber(0), nil
	case value.KindString:
		result, err := strconv.ParseFloat(a.AsString(), 64)
		if err != nil {
			return nil, errors.New(errors.ErrNonNumericCast, ctx.Position, a.AsString())
		}
		if math.IsNaN(result) || math.IsInf(result, 0) {
			return value.Undefined(), nil
		}
		return ctx.Arena.NewNumber(result), nil
	default:
		return nil, badArg(ctx, 1)
	}
}

func fnRandom(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 0); err != nil {
		return nil, err
	}
	return ctx.Arena.NewNumber(rand.Float64()), nil
}

func fnSum(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	if a.IsUndefined() {
		return value.Undefined(), nil
	}
	arr := value.WrapInArrayIfNeeded(ctx.Arena, a, 0)
	sum := 0.0
	for _, member := range arr.Members() {
		if err := arrayOfType(member.IsNumber(), ctx, 1, "number"); err != nil {
			return nil, err
		}
		sum += member.AsNumber()
	}
	return ctx.Arena.NewNumber(sum), nil
}

func fnAverage(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	if a.IsUndefined() || (a.IsArray() && a.Len() == 0) {
		return value.Undefined(), nil
	}
	arr := value.WrapInArrayIfNeeded(ctx.Arena, a, 0)
	sum := 0.0
	for _, member := range arr.Members() {
		if err := arrayOfType(member.IsNumber(), ctx, 1, "number"); err != nil {
			return nil, err
		}
		sum += member.AsNumber()
	}
	return ctx.Arena.NewNumber(sum / float64(arr.Len())), nil
}

func fnMax(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	if a.IsUndefined() || (a.IsArray() && a.Len() == 0) {
		return value.Undefined(), nil
	}
	arr := value.WrapInArrayIfNeeded(ctx.Arena, a, 0)
	max := math.Inf(-1)
	for _, member := range arr.Members() {
		if err := arrayOfType(member.IsNumber(), ctx, 1, "number"); err != nil {
			return nil, err
		}
		max = math.Max(max, member.AsNumber())
	}
	return ctx.Arena.NewNumber(max), nil
}

func fnMin(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	if a.IsUndefined() || (a.IsArray() && a.Len() == 0) {
		return value.Undefined(), nil
	}
	arr := value.WrapInArrayIfNeeded(ctx.Arena, a, 0)
	min := math.Inf(1)
	for _, member := range arr.Members() {
		if err := arrayOfType(member.IsNumber(), ctx, 1, "number"); err != nil {
			return nil, err
		}
		min = math.Min(min, member.AsNumber())
	}
	return ctx.Arena.NewNumber(min), nil
}
