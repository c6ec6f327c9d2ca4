package functions

import (
	"time"

	"github.com/jsonata-lang/jsonata/compiler/errors"
	"github.com/jsonata-lang/jsonata/runtime/datetime"
	"github.com/jsonata-lang/jsonata/runtime/value"
)

func fnNow(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if len(args) > 2 {
		return ctx.Arena.NewString(""), nil
	}
	return formatTimestamp(ctx, time.Now().UTC(), args, 0)
}

func fnMillis(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 0); err != nil {
		return nil, err
	}
	return ctx.Arena.NewNumber(float64(time.Now().UnixMilli())), nil
}

func fnFromMillis(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 3); err != nil {
		return nil, err
	}
	millis := arg(args, 0)
	if millis.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(millis.IsNumber(), ctx, 1); err != nil {
		return nil, err
	}
	ts := time.UnixMilli(int64(millis.AsNumber())).UTC()
	return formatTimestamp(ctx, ts, args, 1)
}

// formatTimestamp renders ts according to the optional picture and
// timezone arguments starting at argOffset
func formatTimestamp(ctx *value.FunctionContext, ts time.Time, args []*value.Value, argOffset int) (*value.Value, error) {
	picture := ""
	if p := arg(args, argOffset); p.IsString() {
		picture = p.AsString()
	}
	timezone := ""
	if tz := arg(args, argOffset+1); tz.IsString() {
		timezone = tz.AsString()
	}

	if picture == "" && timezone == "" {
		return ctx.Arena.NewString(ts.Format("2006-01-02T15:04:05.000Z07:00")), nil
	}

	if err := datetime.CheckBalancedBrackets(picture); err != nil {
		return nil, err
	}

	if timezone != "" {
		loc, ok := datetime.ParseTimezoneOffset(timezone)
		if !ok {
			return ctx.Arena.NewString(""), nil
		}
		ts = ts.In(loc)
	}

	if picture == "" {
		return ctx.Arena.NewString(""), nil
	}

	formatted, err := datetime.FormatPicture(ts, picture)
	if err != nil {
		return nil, err
	}
	return ctx.Arena.NewString(formatted), nil
}

func fnToMillis(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 2); err != nil {
		return nil, err
	}
	timestamp := arg(args, 0)
	if timestamp.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(timestamp.IsString(), ctx, 1); err != nil {
		return nil, err
	}
	if timestamp.AsString() == "" {
		return value.Undefined(), nil
	}

	picture := ""
	if p := arg(args, 1); !p.IsUndefined() {
		if err := assertArg(p.IsString(), ctx, 2); err != nil {
			return nil, err
		}
		picture = p.AsString()
	}
	if picture != "" {
		if err := datetime.CheckBalancedBrackets(picture); err != nil {
			return nil, err
		}
	}

	millis, ok := datetime.ParsePicture(timestamp.AsString(), picture)
	if !ok {
		return value.Undefined(), nil
	}
	// protect integer precision through the double conversion
	if millis >= 0 {
		v, fits := ctx.Arena.NewNumberFromInt(uint64(millis))
		if !fits {
			return nil, errors.New(errors.ErrNumberOfOutRange, ctx.Position, millis)
		}
		return v, nil
	}
	return ctx.Arena.NewNumber(float64(millis)), nil
}
