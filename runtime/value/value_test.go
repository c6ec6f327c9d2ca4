package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingletons(t *testing.T) {
	assert.Same(t, Undefined(), Undefined())
	assert.Same(t, Bool(true), Bool(true))
	assert.Same(t, Bool(false), Bool(false))
	assert.NotSame(t, Bool(true), Bool(false))
}

func TestObjectInsertionOrder(t *testing.T) {
	a := NewArena()
	obj := a.NewObject()
	obj.Insert("z", a.NewNumber(1))
	obj.Insert("a", a.NewNumber(2))
	obj.Insert("m", a.NewNumber(3))
	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())

	// overwriting keeps the original position
	obj.Insert("a", a.NewNumber(9))
	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())
	assert.Equal(t, 9.0, obj.Entry("a").AsNumber())

	obj.Remove("z")
	assert.Equal(t, []string{"a", "m"}, obj.Keys())
	assert.True(t, obj.Entry("z").IsUndefined())
}

func TestRange(t *testing.T) {
	a := NewArena()
	r := a.NewRange(3, 6)
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, 3.0, r.Member(0).AsNumber())
	assert.Equal(t, 6.0, r.Member(3).AsNumber())
	assert.True(t, r.Member(4).IsUndefined())
	assert.True(t, r.IsArray())

	empty := a.NewRange(5, 4)
	assert.Equal(t, 0, empty.Len())
	assert.False(t, empty.IsTruthy())
}

func TestTruthiness(t *testing.T) {
	a := NewArena()

	truthy := []*Value{
		Bool(true),
		a.NewNumber(1),
		a.NewString("x"),
		a.NewRegex(nil),
	}
	for _, v := range truthy {
		assert.True(t, v.IsTruthy())
	}

	falsy := []*Value{
		Undefined(),
		Null(),
		Bool(false),
		a.NewNumber(0),
		a.NewString(""),
		a.NewArray(0),
		a.NewObject(),
		a.NewNative("f", 0, nil),
	}
	for _, v := range falsy {
		assert.False(t, v.IsTruthy())
	}

	// single-element array unwraps and re-applies the rule
	one := a.NewArray(0)
	one.Push(a.NewNumber(0))
	assert.False(t, one.IsTruthy())

	// array of length >= 2 is truthy when any element is
	two := a.NewArray(0)
	two.Push(a.NewNumber(0))
	two.Push(a.NewNumber(5))
	assert.True(t, two.IsTruthy())

	obj := a.NewObject()
	obj.Insert("k", Null())
	assert.True(t, obj.IsTruthy())
}

func TestEquality(t *testing.T) {
	a := NewArena()

	// flags do not affect equality
	x := a.NewArray(FlagSequence | FlagSingleton)
	x.Push(a.NewNumber(1))
	y := a.NewArray(0)
	y.Push(a.NewNumber(1))
	assert.True(t, Equals(x, y))

	// range equals array with same members
	r := a.NewRange(1, 3)
	arr := a.NewArray(0)
	arr.Push(a.NewNumber(1))
	arr.Push(a.NewNumber(2))
	arr.Push(a.NewNumber(3))
	assert.True(t, Equals(r, arr))

	// objects are order-insensitive
	o1 := a.NewObject()
	o1.Insert("a", a.NewNumber(1))
	o1.Insert("b", a.NewNumber(2))
	o2 := a.NewObject()
	o2.Insert("b", a.NewNumber(2))
	o2.Insert("a", a.NewNumber(1))
	assert.True(t, Equals(o1, o2))

	// undefined equals undefined structurally (the = operator layers its
	// own propagation rule on top)
	assert.True(t, Equals(Undefined(), Undefined()))

	// functions compare by identity
	f1 := a.NewNative("f", 0, nil)
	f2 := a.NewNative("f", 0, nil)
	assert.True(t, Equals(f1, f2)) // natives hash by name
	l1 := a.NewLambda(nil, nil, Undefined(), NewFrame(), nil)
	l2 := a.NewLambda(nil, nil, Undefined(), NewFrame(), nil)
	assert.False(t, Equals(l1, l2))
	assert.True(t, Equals(l1, l1))
}

func TestHashKeyAgreesWithEquality(t *testing.T) {
	a := NewArena()
	o1 := a.NewObject()
	o1.Insert("a", a.NewNumber(1))
	o1.Insert("b", a.NewString("x"))
	o2 := a.NewObject()
	o2.Insert("b", a.NewString("x"))
	o2.Insert("a", a.NewNumber(1))
	assert.Equal(t, o1.HashKey(), o2.HashKey())

	n1 := a.NewNumber(1)
	s1 := a.NewString("1")
	assert.NotEqual(t, n1.HashKey(), s1.HashKey())
}

func TestFrameChain(t *testing.T) {
	a := NewArena()
	parent := NewFrame()
	parent.Bind("x", a.NewNumber(1))

	child := NewChildFrame(parent)
	v, ok := child.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, 1.0, v.AsNumber())

	// binding shadows without touching the parent
	child.Bind("x", a.NewNumber(2))
	v, _ = child.Lookup("x")
	assert.Equal(t, 2.0, v.AsNumber())
	v, _ = parent.Lookup("x")
	assert.Equal(t, 1.0, v.AsNumber())

	_, ok = child.Lookup("missing")
	assert.False(t, ok)
}

func TestFlatten(t *testing.T) {
	a := NewArena()
	inner := a.NewArray(0)
	inner.Push(a.NewNumber(2))
	inner.Push(a.NewNumber(3))
	outer := a.NewArray(0)
	outer.Push(a.NewNumber(1))
	outer.Push(inner)
	flat := outer.Flatten(a)
	require.Equal(t, 3, flat.Len())
	assert.Equal(t, 1.0, flat.Member(0).AsNumber())
	assert.Equal(t, 3.0, flat.Member(2).AsNumber())
}

func TestDeepCopyIsolation(t *testing.T) {
	a := NewArena()
	obj := a.NewObject()
	obj.Insert("k", a.NewNumber(1))
	arr := a.NewArray(0)
	arr.Push(obj)

	clone := arr.DeepCopy(a)
	clone.Member(0).Insert("k", a.NewNumber(2))

	assert.Equal(t, 1.0, obj.Entry("k").AsNumber())
	assert.Equal(t, 2.0, clone.Member(0).Entry("k").AsNumber())
}

func TestNumberFromInt(t *testing.T) {
	a := NewArena()
	v, ok := a.NewNumberFromInt(1 << 40)
	require.True(t, ok)
	assert.Equal(t, float64(1<<40), v.AsNumber())

	// 2^53 + 1 cannot survive the round trip
	_, ok = a.NewNumberFromInt(1<<53 + 1)
	assert.False(t, ok)
}

func TestFromGo(t *testing.T) {
	a := NewArena()
	v, err := FromGo(a, map[string]interface{}{
		"n":   3.5,
		"s":   "hi",
		"b":   true,
		"nul": nil,
		"arr": []interface{}{1.0, 2.0},
	})
	require.NoError(t, err)
	assert.Equal(t, 3.5, v.Entry("n").AsNumber())
	assert.Equal(t, "hi", v.Entry("s").AsString())
	assert.True(t, v.Entry("b").AsBool())
	assert.True(t, v.Entry("nul").IsNull())
	assert.Equal(t, 2, v.Entry("arr").Len())

	v, err = FromGo(a, 42)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v.AsNumber())

	_, err = FromGo(a, struct{}{})
	assert.Error(t, err)
}
