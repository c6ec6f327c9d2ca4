// Package functions implements the built-in function library and the
// argument-validation protocol the evaluator imposes on host-installed
// functions.
package functions

import (
	"github.com/jsonata-lang/jsonata/compiler/errors"
	"github.com/jsonata-lang/jsonata/runtime/value"
)

// builtin describes one registered built-in
type builtin struct {
	name  string
	arity int
	fn    value.NativeFunc
}

var builtins = []builtin{
	{"abs", 1, fnAbs},
	{"append", 2, fnAppend},
	{"assert", 2, fnAssert},
	{"average", 1, fnAverage},
	{"base64decode", 1, fnBase64Decode},
	{"base64encode", 1, fnBase64Encode},
	{"boolean", 1, fnBoolean},
	{"ceil", 1, fnCeil},
	{"clone", 1, fnClone},
	{"contains", 2, fnContains},
	{"count", 1, fnCount},
	{"distinct", 1, fnDistinct},
	{"each", 2, fnEach},
	{"error", 1, fnError},
	{"exists", 1, fnExists},
	{"filter", 2, fnFilter},
	{"floor", 1, fnFloor},
	{"fromMillis", 3, fnFromMillis},
	{"join", 2, fnJoin},
	{"keys", 1, fnKeys},
	{"length", 1, fnLength},
	{"lookup", 2, fnLookup},
	{"lowercase", 1, fnLowercase},
	{"map", 2, fnMap},
	{"match", 3, fnMatch},
	{"max", 1, fnMax},
	{"merge", 1, fnMerge},
	{"millis", 0, fnMillis},
	{"min", 1, fnMin},
	{"not", 1, fnNot},
	{"now", 2, fnNow},
	{"number", 1, fnNumber},
	{"pad", 3, fnPad},
	{"power", 2, fnPower},
	{"random", 0, fnRandom},
	{"reduce", 3, fnReduce},
	{"replace", 4, fnReplace},
	{"reverse", 1, fnReverse},
	{"round", 2, fnRound},
	{"sift", 2, fnSift},
	{"single", 2, fnSingle},
	{"sort", 2, fnSort},
	{"split", 3, fnSplit},
	{"spread", 1, fnSpread},
	{"sqrt", 1, fnSqrt},
	{"string", 2, fnString},
	{"substring", 3, fnSubstring},
	{"substringAfter", 2, fnSubstringAfter},
	{"substringBefore", 2, fnSubstringBefore},
	{"sum", 1, fnSum},
	{"toMillis", 2, fnToMillis},
	{"trim", 1, fnTrim},
	{"type", 1, fnType},
	{"uppercase", 1, fnUppercase},
	{"zip", 2, fnZip},
}

// Install binds the built-in library into a frame
func Install(arena *value.Arena, frame *value.Frame) {
	for _, b := range builtins {
		frame.Bind(b.name, arena.NewNative(b.name, b.arity, b.fn))
	}
}

// Argument helpers, shared by every built-in

func arg(args []*value.Value, index int) *value.Value {
	if index < len(args) {
		return args[index]
	}
	return value.Undefined()
}

func badArg(ctx *value.FunctionContext, index int) error {
	return errors.New(errors.ErrArgumentNotValid, ctx.Position, index, ctx.Name)
}

func assertArg(cond bool, ctx *value.FunctionContext, index int) error {
	if !cond {
		return badArg(ctx, index)
	}
	return nil
}

func maxArgs(ctx *value.FunctionContext, args []*value.Value, max int) error {
	if len(args) > max {
		return errors.New(errors.ErrArgumentNotValid, ctx.Position, max, ctx.Name)
	}
	return nil
}

func minArgs(ctx *value.FunctionContext, args []*value.Value, min int) error {
	if len(args) < min {
		return errors.New(errors.ErrArgumentNotValid, ctx.Position, min, ctx.Name)
	}
	return nil
}

func arrayOfType(cond bool, ctx *value.FunctionContext, index int, t string) error {
	if !cond {
		return errors.New(errors.ErrArgumentMustBeArrayOfType, ctx.Position, index, ctx.Name, t)
	}
	return nil
}

// contextArg resolves the first argument, falling back to the evaluation
// context with the top-level input wrapper peeled. This is how the
// context-sensitive built-ins observe the value the path is focused on.
func contextArg(ctx *value.FunctionContext, args []*value.Value) *value.Value {
	if len(args) > 0 {
		return args[0]
	}
	input := ctx.Input
	if input.IsArray() && input.HasFlags(value.FlagWrapped) {
		return input.Member(0)
	}
	return input
}
