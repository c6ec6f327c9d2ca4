package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializeDump(t *testing.T) {
	a := NewArena()

	obj := a.NewObject()
	obj.Insert("name", a.NewString("bob"))
	obj.Insert("age", a.NewNumber(42))
	arr := a.NewArray(0)
	arr.Push(a.NewNumber(1))
	arr.Push(Null())
	arr.Push(Bool(true))
	obj.Insert("tags", arr)

	assert.Equal(t, `{"name":"bob","age":42,"tags":[1,null,true]}`, Serialize(obj, false))
}

func TestSerializePretty(t *testing.T) {
	a := NewArena()
	obj := a.NewObject()
	obj.Insert("a", a.NewNumber(1))

	expected := "{\n  \"a\": 1\n}"
	assert.Equal(t, expected, Serialize(obj, true))
}

func TestSerializeNumbers(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{42, "42"},
		{-7, "-7"},
		{3.14, "3.14"},
		{0.25, "0.25"},
		{1e100, "1e+100"},
	}
	a := NewArena()
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Serialize(a.NewNumber(tt.in), false))
	}
}

func TestSerializeEscapes(t *testing.T) {
	a := NewArena()
	assert.Equal(t, `"a\"b\\c\nd"`, Serialize(a.NewString("a\"b\\c\nd"), false))
	assert.Equal(t, `"\u0001"`, Serialize(a.NewString("\x01"), false))
}

func TestSerializeFunctionsAreHoles(t *testing.T) {
	a := NewArena()

	// top level: empty string
	fn := a.NewNative("f", 0, nil)
	assert.Equal(t, `""`, Serialize(fn, false))

	// object entries holding functions are omitted
	obj := a.NewObject()
	obj.Insert("f", fn)
	obj.Insert("x", a.NewNumber(1))
	assert.Equal(t, `{"x":1}`, Serialize(obj, false))
}

func TestSerializeUndefinedTopLevel(t *testing.T) {
	assert.Equal(t, "", Serialize(Undefined(), false))
}

func TestSerializeRange(t *testing.T) {
	a := NewArena()
	assert.Equal(t, "[1,2,3]", Serialize(a.NewRange(1, 3), false))
}
