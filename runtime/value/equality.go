package value

import (
	"sort"
	"strconv"
	"strings"
)

// Equals is deep structural equality over the data variants. Array flags
// are ignored; ranges compare equal to arrays with the same members.
// Function values compare by identity token; regexes by source and flags.
func Equals(a, b *Value) bool {
	if a == b {
		return true
	}

	if a.IsArray() && b.IsArray() {
		if a.Len() != b.Len() {
			return false
		}
		if a.kind == KindRange && b.kind == KindRange {
			return a.rng.start == b.rng.start && a.rng.end == b.rng.end
		}
		am, bm := a.Members(), b.Members()
		for i := range am {
			if !Equals(am[i], bm[i]) {
				return false
			}
		}
		return true
	}

	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber:
		return a.number == b.number
	case KindString:
		return a.str == b.str
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, key := range a.Keys() {
			if !b.HasEntry(key) || !Equals(a.Entry(key), b.Entry(key)) {
				return false
			}
		}
		return true
	case KindRegex:
		return a.regex.Source == b.regex.Source && a.regex.Flags == b.regex.Flags
	case KindLambda, KindNative, KindTransformer:
		return a.FunctionToken() == b.FunctionToken()
	}
	return false
}

// HashKey produces a canonical string that agrees with Equals: equal
// values yield equal keys. Object keys are sorted so that insertion order
// does not leak into the hash.
func (v *Value) HashKey() string {
	var b strings.Builder
	v.writeHashKey(&b)
	return b.String()
}

func (v *Value) writeHashKey(b *strings.Builder) {
	switch v.kind {
	case KindUndefined:
		b.WriteString("u")
	case KindNull:
		b.WriteString("l")
	case KindBool:
		if v.boolean {
			b.WriteString("b:1")
		} else {
			b.WriteString("b:0")
		}
	case KindNumber:
		b.WriteString("n:")
		b.WriteString(strconv.FormatFloat(v.number, 'g', -1, 64))
	case KindString:
		b.WriteString("s:")
		b.WriteString(v.str)
	case KindArray, KindRange:
		b.WriteString("a:[")
		for i, member := range v.Members() {
			if i > 0 {
				b.WriteByte(',')
			}
			member.writeHashKey(b)
		}
		b.WriteByte(']')
	case KindObject:
		keys := append([]string(nil), v.Keys()...)
		sort.Strings(keys)
		b.WriteString("o:{")
		for i, key := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(key))
			b.WriteByte('=')
			v.Entry(key).writeHashKey(b)
		}
		b.WriteByte('}')
	case KindRegex:
		b.WriteString("r:/")
		b.WriteString(v.regex.Source)
		b.WriteByte('/')
		b.WriteString(v.regex.Flags)
	case KindLambda, KindNative, KindTransformer:
		b.WriteString("f:")
		b.WriteString(v.FunctionToken())
	}
}
