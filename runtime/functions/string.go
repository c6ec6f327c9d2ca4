package functions

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/jsonata-lang/jsonata/compiler/errors"
	"github.com/jsonata-lang/jsonata/runtime/value"
)

func fnString(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 2); err != nil {
		return nil, err
	}
	input := contextArg(ctx, args)
	if input.IsUndefined() {
		return value.Undefined(), nil
	}

	pretty := arg(args, 1)
	if err := assertArg(pretty.IsUndefined() || pretty.IsBool(), ctx, 2); err != nil {
		return nil, err
	}

	if input.IsString() {
		return input, nil
	}
	out, ok := value.ToString(input, pretty.IsBool() && pretty.AsBool())
	if !ok {
		return nil, errors.New(errors.ErrStringNotFinite, ctx.Position)
	}
	return ctx.Arena.NewString(out), nil
}

func fnLength(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	if a.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(a.IsString(), ctx, 1); err != nil {
		return nil, err
	}
	return ctx.Arena.NewNumber(float64(len([]rune(a.AsString())))), nil
}

func fnLowercase(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	a := arg(args, 0)
	if !a.IsString() {
		return value.Undefined(), nil
	}
	return ctx.Arena.NewString(strings.ToLower(a.AsString())), nil
}

func fnUppercase(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	a := arg(args, 0)
	if !a.IsString() {
		return value.Undefined(), nil
	}
	return ctx.Arena.NewString(strings.ToUpper(a.AsString())), nil
}

// fnTrim collapses runs of whitespace to single spaces and trims the ends
func fnTrim(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	a := arg(args, 0)
	if !a.IsString() {
		return value.Undefined(), nil
	}
	return ctx.Arena.NewString(strings.Join(strings.Fields(a.AsString()), " ")), nil
}

func fnSubstring(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	str := arg(args, 0)
	start := arg(args, 1)
	length := arg(args, 2)

	if str.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(str.IsString(), ctx, 1); err != nil {
		return nil, err
	}
	if err := assertArg(start.IsNumber(), ctx, 2); err != nil {
		return nil, err
	}

	runes := []rune(str.AsString())
	n := len(runes)

	begin := int(start.AsNumber())
	if n+begin < 0 {
		begin = 0
	}
	if begin < 0 {
		begin = n + begin
	}
	if begin > n {
		begin = n
	}

	if length.IsUndefined() {
		return ctx.Arena.NewString(string(runes[begin:])), nil
	}
	if err := assertArg(length.IsNumber(), ctx, 3); err != nil {
		return nil, err
	}
	count := int(length.AsNumber())
	if count < 0 {
		return ctx.Arena.NewString(""), nil
	}
	end := begin + count
	if end > n {
		end = n
	}
	return ctx.Arena.NewString(string(runes[begin:end])), nil
}

func fnSubstringBefore(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	str := arg(args, 0)
	chars := arg(args, 1)
	if str.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(str.IsString(), ctx, 1); err != nil {
		return nil, err
	}
	if err := assertArg(chars.IsString(), ctx, 2); err != nil {
		return nil, err
	}
	s := str.AsString()
	if index := strings.Index(s, chars.AsString()); index >= 0 {
		return ctx.Arena.NewString(s[:index]), nil
	}
	return str, nil
}

func fnSubstringAfter(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	str := arg(args, 0)
	chars := arg(args, 1)
	if str.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(str.IsString(), ctx, 1); err != nil {
		return nil, err
	}
	if err := assertArg(chars.IsString(), ctx, 2); err != nil {
		return nil, err
	}
	s := str.AsString()
	if index := strings.Index(s, chars.AsString()); index >= 0 {
		return ctx.Arena.NewString(s[index+len(chars.AsString()):]), nil
	}
	return str, nil
}

func fnPad(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	str := arg(args, 0)
	width := arg(args, 1)
	padChar := arg(args, 2)

	if str.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(str.IsString(), ctx, 1); err != nil {
		return nil, err
	}
	if err := assertArg(width.IsNumber(), ctx, 2); err != nil {
		return nil, err
	}

	pad := " "
	if !padChar.IsUndefined() {
		if err := assertArg(padChar.IsString() && padChar.AsString() != "", ctx, 3); err != nil {
			return nil, err
		}
		pad = padChar.AsString()
	}

	runes := []rune(str.AsString())
	target := int(width.AsNumber())
	rightPad := target >= 0
	if target < 0 {
		target = -target
	}
	if len(runes) >= target {
		return str, nil
	}

	padRunes := []rune(pad)
	var padding []rune
	for len(padding) < target-len(runes) {
		padding = append(padding, padRunes...)
	}
	padding = padding[:target-len(runes)]

	if rightPad {
		return ctx.Arena.NewString(string(runes) + string(padding)), nil
	}
	return ctx.Arena.NewString(string(padding) + string(runes)), nil
}

// patternOf extracts the regex from a pattern argument, compiling string
// patterns literally
func patternOf(ctx *value.FunctionContext, v *value.Value, index int) (*regexp.Regexp, error) {
	if v.IsRegex() {
		return v.AsRegex().Re, nil
	}
	if v.IsString() {
		return regexp.Compile(regexp.QuoteMeta(v.AsString()))
	}
	return nil, badArg(ctx, index)
}

func fnContains(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	str := arg(args, 0)
	pattern := arg(args, 1)
	if str.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(str.IsString(), ctx, 1); err != nil {
		return nil, err
	}

	if pattern.IsString() {
		return value.Bool(strings.Contains(str.AsString(), pattern.AsString())), nil
	}
	re, err := patternOf(ctx, pattern, 2)
	if err != nil {
		return nil, err
	}
	return value.Bool(re.MatchString(str.AsString())), nil
}

func fnMatch(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 3); err != nil {
		return nil, err
	}
	str := arg(args, 0)
	pattern := arg(args, 1)
	limit := arg(args, 2)

	if str.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(str.IsString(), ctx, 1); err != nil {
		return nil, err
	}
	if err := assertArg(pattern.IsRegex(), ctx, 2); err != nil {
		return nil, err
	}

	max := -1
	if !limit.IsUndefined() {
		if err := assertArg(limit.IsNumber(), ctx, 3); err != nil {
			return nil, err
		}
		max = int(limit.AsNumber())
	}

	re := pattern.AsRegex().Re
	result := ctx.Arena.NewArray(value.FlagSequence)
	s := str.AsString()

	locations := re.FindAllStringSubmatchIndex(s, -1)
	for count, loc := range locations {
		if max >= 0 && count >= max {
			break
		}
		if loc[0] == loc[1] {
			return nil, errors.New(errors.ErrZeroLengthMatch, ctx.Position)
		}
		result.Push(matchObject(ctx.Arena, s, loc))
	}

	return result, nil
}

// matchObject builds the {match, index, groups} object for one regex match
func matchObject(arena *value.Arena, s string, loc []int) *value.Value {
	obj := arena.NewObject()
	obj.Insert("match", arena.NewString(s[loc[0]:loc[1]]))
	obj.Insert("index", arena.NewNumber(float64(len([]rune(s[:loc[0]])))))
	groups := arena.NewArray(0)
	for g := 1; g*2 < len(loc); g++ {
		if loc[g*2] < 0 {
			groups.Push(value.Undefined())
		} else {
			groups.Push(arena.NewString(s[loc[g*2] : loc[g*2+1]]))
		}
	}
	obj.Insert("groups", groups)
	return obj
}

func fnReplace(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	str := arg(args, 0)
	pattern := arg(args, 1)
	replacement := arg(args, 2)
	limit := arg(args, 3)

	if str.IsUndefined() {
		return value.Undefined(), nil
	}
	if pattern.IsString() && pattern.AsString() == "" {
		return nil, errors.New(errors.ErrEmptyPattern, ctx.Position)
	}
	if err := assertArg(str.IsString(), ctx, 1); err != nil {
		return nil, err
	}
	if err := assertArg(pattern.IsString() || pattern.IsRegex(), ctx, 2); err != nil {
		return nil, err
	}

	max := -1
	if !limit.IsUndefined() {
		if err := assertArg(limit.IsNumber(), ctx, 4); err != nil {
			return nil, err
		}
		if limit.AsNumber() < 0 {
			return nil, errors.New(errors.ErrNegativeReplaceLimit, ctx.Position)
		}
		max = int(limit.AsNumber())
	}

	// plain string pattern: literal replacement
	if pattern.IsString() {
		if err := assertArg(replacement.IsString(), ctx, 3); err != nil {
			return nil, err
		}
		s := str.AsString()
		var replaced string
		if max >= 0 {
			replaced = strings.Replace(s, pattern.AsString(), replacement.AsString(), max)
		} else {
			replaced = strings.ReplaceAll(s, pattern.AsString(), replacement.AsString())
		}
		return ctx.Arena.NewString(replaced), nil
	}

	if err := assertArg(replacement.IsString() || replacement.IsFunction(), ctx, 3); err != nil {
		return nil, err
	}

	re := pattern.AsRegex().Re
	s := str.AsString()
	var out strings.Builder
	last := 0
	count := 0

	for _, loc := range re.FindAllStringSubmatchIndex(s, -1) {
		if max >= 0 && count >= max {
			break
		}
		if loc[0] == loc[1] {
			return nil, errors.New(errors.ErrZeroLengthMatch, ctx.Position)
		}
		out.WriteString(s[last:loc[0]])

		if replacement.IsString() {
			out.WriteString(expandGroups(replacement.AsString(), s, loc))
		} else {
			res, err := ctx.EvaluateFunction(replacement, []*value.Value{matchObject(ctx.Arena, s, loc)})
			if err != nil {
				return nil, err
			}
			if !res.IsString() {
				return nil, errors.New(errors.ErrInvalidReplacement, ctx.Position)
			}
			out.WriteString(res.AsString())
		}

		last = loc[1]
		count++
	}
	out.WriteString(s[last:])
	return ctx.Arena.NewString(out.String()), nil
}

// expandGroups substitutes $N group references in a replacement string
func expandGroups(replacement, s string, loc []int) string {
	var out strings.Builder
	runes := []rune(replacement)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '$' && i+1 < len(runes) {
			if runes[i+1] == '$' {
				out.WriteByte('$')
				i++
				continue
			}
			j := i + 1
			num := 0
			for j < len(runes) && runes[j] >= '0' && runes[j] <= '9' {
				num = num*10 + int(runes[j]-'0')
				j++
			}
			if j > i+1 {
				if num*2+1 < len(loc) && loc[num*2] >= 0 {
					out.WriteString(s[loc[num*2]:loc[num*2+1]])
				}
				i = j - 1
				continue
			}
		}
		out.WriteRune(runes[i])
	}
	return out.String()
}

func fnSplit(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	str := arg(args, 0)
	separator := arg(args, 1)
	limit := arg(args, 2)

	if str.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(str.IsString(), ctx, 1); err != nil {
		return nil, err
	}
	if err := assertArg(separator.IsString() || separator.IsRegex(), ctx, 2); err != nil {
		return nil, err
	}

	max := -1
	if !limit.IsUndefined() {
		if err := assertArg(limit.IsNumber(), ctx, 3); err != nil {
			return nil, err
		}
		if limit.AsNumber() < 0 {
			return nil, errors.New(errors.ErrNegativeSplitLimit, ctx.Position)
		}
		max = int(limit.AsNumber())
	}

	var parts []string
	if separator.IsString() {
		parts = strings.Split(str.AsString(), separator.AsString())
	} else {
		parts = separator.AsRegex().Re.Split(str.AsString(), -1)
	}

	result := ctx.Arena.NewArrayWithCapacity(len(parts), 0)
	for i, part := range parts {
		if max >= 0 && result.Len() >= max {
			break
		}
		// empty leading/trailing fragments from boundary matches drop
		if part == "" && (i == 0 || i == len(parts)-1) {
			continue
		}
		result.Push(ctx.Arena.NewString(part))
	}
	return result, nil
}

func fnJoin(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 2); err != nil {
		return nil, err
	}
	strs := arg(args, 0)
	if strs.IsUndefined() {
		return value.Undefined(), nil
	}
	if strs.IsString() {
		return strs, nil
	}
	if err := arrayOfType(strs.IsArray(), ctx, 1, "string"); err != nil {
		return nil, err
	}

	separator := arg(args, 1)
	if err := assertArg(separator.IsUndefined() || separator.IsString(), ctx, 2); err != nil {
		return nil, err
	}
	sep := ""
	if separator.IsString() {
		sep = separator.AsString()
	}

	var parts []string
	for _, member := range strs.Members() {
		if err := arrayOfType(member.IsString(), ctx, 1, "string"); err != nil {
			return nil, err
		}
		parts = append(parts, member.AsString())
	}
	return ctx.Arena.NewString(strings.Join(parts, sep)), nil
}

func fnBase64Encode(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	if a.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(a.IsString(), ctx, 1); err != nil {
		return nil, err
	}
	return ctx.Arena.NewString(base64.StdEncoding.EncodeToString([]byte(a.AsString()))), nil
}

func fnBase64Decode(ctx *value.FunctionContext, args []*value.Value) (*value.Value, error) {
	if err := maxArgs(ctx, args, 1); err != nil {
		return nil, err
	}
	a := arg(args, 0)
	if a.IsUndefined() {
		return value.Undefined(), nil
	}
	if err := assertArg(a.IsString(), ctx, 1); err != nil {
		return nil, err
	}
	decoded, err := base64.StdEncoding.DecodeString(a.AsString())
	if err != nil {
		return nil, errors.New(errors.ErrUserError, ctx.Position, err.Error())
	}
	return ctx.Arena.NewString(string(decoded)), nil
}
