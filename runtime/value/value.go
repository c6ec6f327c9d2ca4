package value

import (
	"math"

	"github.com/google/uuid"

	"github.com/jsonata-lang/jsonata/compiler/lexer"
	"github.com/jsonata-lang/jsonata/compiler/parser"
)

// Kind identifies a value's variant
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindRange
	KindLambda
	KindNative
	KindTransformer
	KindRegex
)

// ArrayFlags carry evaluator intent on array values. They are not part of
// user-visible data: two arrays with different flags but identical
// contents compare equal.
type ArrayFlags uint8

const (
	// FlagSequence marks an array produced by a path step, subject to
	// flattening and singleton-unwrap rules
	FlagSequence ArrayFlags = 1 << iota
	// FlagSingleton marks a sequence that stays an array even with a
	// single member, instead of unwrapping to that member (keep-array `[]`)
	FlagSingleton
	// FlagCons marks the result of array construction within a path
	FlagCons
	// FlagWrapped marks the top-level input wrapper, peeled by
	// context-sensitive built-ins
	FlagWrapped
	// FlagTupleStream exempts an array from sequence finalization. The
	// evaluator carries tuple streams as slices and does not set this flag
	FlagTupleStream
)

// Lambda is a user-defined function closure
type Lambda struct {
	Params    []string
	Body      *parser.Node
	Frame     *Frame
	Input     *Value
	Signature *parser.Signature
	Token     string // identity token for hashing
}

// NativeFunc is the host callback protocol for built-in and registered
// functions
type NativeFunc func(ctx *FunctionContext, args []*Value) (*Value, error)

// Native is a host-installed function
type Native struct {
	Name  string
	Arity int
	Fn    NativeFunc
	Token string
}

// Transformer is the function produced by the |pattern|update[,delete]|
// operator
type Transformer struct {
	Pattern *parser.Node
	Update  *parser.Node
	Delete  *parser.Node
	Token   string
}

// Value is the core tagged value for input, evaluation and output. All
// values live in a per-evaluation Arena; the shared singletons for
// undefined, true, false and null are the only exceptions.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	str     string

	items []*Value
	flags ArrayFlags

	obj *orderedMap
	rng *Range

	lambda      *Lambda
	native      *Native
	transformer *Transformer
	regex       *lexer.RegexLiteral
}

var (
	undefinedSingleton = Value{kind: KindUndefined}
	nullSingleton      = Value{kind: KindNull}
	trueSingleton      = Value{kind: KindBool, boolean: true}
	falseSingleton     = Value{kind: KindBool, boolean: false}
)

// Undefined returns the shared undefined singleton
func Undefined() *Value { return &undefinedSingleton }

// Null returns the shared null singleton
func Null() *Value { return &nullSingleton }

// Bool returns one of the shared boolean singletons
func Bool(b bool) *Value {
	if b {
		return &trueSingleton
	}
	return &falseSingleton
}

// Arena owns every value allocated during one evaluation. Values are
// allocated in slabs so that a run of allocations stays contiguous; the
// whole graph is released when the arena is garbage after the caller has
// extracted what it needs.
type Arena struct {
	slab []Value
}

const slabSize = 256

// NewArena creates a fresh evaluation arena
func NewArena() *Arena {
	return &Arena{slab: make([]Value, 0, slabSize)}
}

func (a *Arena) alloc() *Value {
	if len(a.slab) == cap(a.slab) {
		a.slab = make([]Value, 0, slabSize)
	}
	a.slab = a.slab[:len(a.slab)+1]
	return &a.slab[len(a.slab)-1]
}

// NewNumber allocates a number value
func (a *Arena) NewNumber(n float64) *Value {
	v := a.alloc()
	*v = Value{kind: KindNumber, number: n}
	return v
}

// NewNumberFromInt allocates a number value, failing when the integer is
// too large to survive the round trip through an IEEE-754 double.
func (a *Arena) NewNumberFromInt(n uint64) (*Value, bool) {
	f := float64(n)
	if uint64(f) != n {
		return nil, false
	}
	return a.NewNumber(f), true
}

// NewString allocates a string value
func (a *Arena) NewString(s string) *Value {
	v := a.alloc()
	*v = Value{kind: KindString, str: s}
	return v
}

// NewArray allocates an empty array with the given flags
func (a *Arena) NewArray(flags ArrayFlags) *Value {
	v := a.alloc()
	*v = Value{kind: KindArray, flags: flags}
	return v
}

// NewArrayWithCapacity allocates an empty array with capacity pre-reserved
func (a *Arena) NewArrayWithCapacity(capacity int, flags ArrayFlags) *Value {
	v := a.alloc()
	*v = Value{kind: KindArray, items: make([]*Value, 0, capacity), flags: flags}
	return v
}

// NewObject allocates an empty insertion-ordered object
func (a *Arena) NewObject() *Value {
	v := a.alloc()
	*v = Value{kind: KindObject, obj: newOrderedMap()}
	return v
}

// NewRange allocates a lazy inclusive integer range
func (a *Arena) NewRange(start, end int64) *Value {
	v := a.alloc()
	*v = Value{kind: KindRange, rng: &Range{arena: a, start: start, end: end}}
	return v
}

// NewLambda allocates a closure value
func (a *Arena) NewLambda(params []string, body *parser.Node, input *Value, frame *Frame, signature *parser.Signature) *Value {
	v := a.alloc()
	*v = Value{kind: KindLambda, lambda: &Lambda{
		Params:    params,
		Body:      body,
		Frame:     frame,
		Input:     input,
		Signature: signature,
		Token:     uuid.NewString(),
	}}
	return v
}

// NewNative allocates a host function value
func (a *Arena) NewNative(name string, arity int, fn NativeFunc) *Value {
	v := a.alloc()
	*v = Value{kind: KindNative, native: &Native{Name: name, Arity: arity, Fn: fn, Token: "native:" + name}}
	return v
}

// NewTransformer allocates a transform-operator function value
func (a *Arena) NewTransformer(pattern, update, deleteExpr *parser.Node) *Value {
	v := a.alloc()
	*v = Value{kind: KindTransformer, transformer: &Transformer{
		Pattern: pattern,
		Update:  update,
		Delete:  deleteExpr,
		Token:   uuid.NewString(),
	}}
	return v
}

// NewRegex allocates a regex value
func (a *Arena) NewRegex(re *lexer.RegexLiteral) *Value {
	v := a.alloc()
	*v = Value{kind: KindRegex, regex: re}
	return v
}

// Kind returns the value's variant tag
func (v *Value) Kind() Kind { return v.kind }

func (v *Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v *Value) IsNull() bool      { return v.kind == KindNull }
func (v *Value) IsBool() bool      { return v.kind == KindBool }
func (v *Value) IsNumber() bool    { return v.kind == KindNumber }
func (v *Value) IsString() bool    { return v.kind == KindString }
func (v *Value) IsObject() bool    { return v.kind == KindObject }
func (v *Value) IsRegex() bool     { return v.kind == KindRegex }

// IsArray reports whether the value behaves as an array; ranges do
func (v *Value) IsArray() bool {
	return v.kind == KindArray || v.kind == KindRange
}

// IsFunction reports whether the value is callable
func (v *Value) IsFunction() bool {
	switch v.kind {
	case KindLambda, KindNative, KindTransformer:
		return true
	}
	return false
}

// IsInteger reports whether the value is a number with no fractional part
func (v *Value) IsInteger() bool {
	if v.kind != KindNumber {
		return false
	}
	if math.IsNaN(v.number) || math.IsInf(v.number, 0) {
		return false
	}
	return v.number == math.Trunc(v.number)
}

// IsFinite reports whether the value is a finite number
func (v *Value) IsFinite() bool {
	return v.kind == KindNumber && !math.IsNaN(v.number) && !math.IsInf(v.number, 0)
}

// AsBool returns the boolean payload
func (v *Value) AsBool() bool { return v.boolean }

// AsNumber returns the number payload
func (v *Value) AsNumber() float64 { return v.number }

// AsString returns the string payload
func (v *Value) AsString() string { return v.str }

// AsLambda returns the closure payload
func (v *Value) AsLambda() *Lambda { return v.lambda }

// AsNative returns the host-function payload
func (v *Value) AsNative() *Native { return v.native }

// AsTransformer returns the transformer payload
func (v *Value) AsTransformer() *Transformer { return v.transformer }

// AsRegex returns the regex payload
func (v *Value) AsRegex() *lexer.RegexLiteral { return v.regex }

// Arity returns the number of parameters a function value accepts
func (v *Value) Arity() int {
	switch v.kind {
	case KindLambda:
		return len(v.lambda.Params)
	case KindNative:
		return v.native.Arity
	case KindTransformer:
		return 1
	}
	return 0
}

// FunctionToken returns the identity token used to hash function values
func (v *Value) FunctionToken() string {
	switch v.kind {
	case KindLambda:
		return v.lambda.Token
	case KindNative:
		return v.native.Token
	case KindTransformer:
		return v.transformer.Token
	}
	return ""
}

// Len returns the number of members of an array or range
func (v *Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindRange:
		return v.rng.Len()
	}
	return 0
}

// Member returns the array member at index, or Undefined out of bounds
func (v *Value) Member(index int) *Value {
	switch v.kind {
	case KindArray:
		if index < 0 || index >= len(v.items) {
			return Undefined()
		}
		return v.items[index]
	case KindRange:
		return v.rng.Nth(index)
	}
	return Undefined()
}

// Members returns the array members as a slice. Ranges materialize.
func (v *Value) Members() []*Value {
	switch v.kind {
	case KindArray:
		return v.items
	case KindRange:
		return v.rng.Materialize()
	}
	return nil
}

// Push appends a member to an array
func (v *Value) Push(member *Value) {
	v.items = append(v.items, member)
}

// Flags returns the array flags
func (v *Value) Flags() ArrayFlags {
	if v.kind == KindArray {
		return v.flags
	}
	return 0
}

// SetFlags replaces the array flags
func (v *Value) SetFlags(flags ArrayFlags) {
	v.flags = flags
}

// AddFlags sets additional array flags
func (v *Value) AddFlags(flags ArrayFlags) {
	v.flags |= flags
}

// HasFlags reports whether all the given flags are set
func (v *Value) HasFlags(flags ArrayFlags) bool {
	return v.kind == KindArray && v.flags&flags == flags
}

// Keys returns an object's keys in insertion order
func (v *Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	return v.obj.Keys()
}

// Entry returns the value for key, or Undefined when absent
func (v *Value) Entry(key string) *Value {
	if v.kind != KindObject {
		return Undefined()
	}
	if found, ok := v.obj.Get(key); ok {
		return found
	}
	return Undefined()
}

// HasEntry reports whether the object has the given key
func (v *Value) HasEntry(key string) bool {
	if v.kind != KindObject {
		return false
	}
	_, ok := v.obj.Get(key)
	return ok
}

// Insert sets the value for key, keeping first-insertion order
func (v *Value) Insert(key string, member *Value) {
	v.obj.Set(key, member)
}

// Remove deletes the entry for key
func (v *Value) Remove(key string) {
	if v.kind == KindObject {
		v.obj.Delete(key)
	}
}

// EntryCount returns the number of entries of an object
func (v *Value) EntryCount() int {
	if v.kind != KindObject {
		return 0
	}
	return v.obj.Len()
}

// IsTruthy applies the language's truthiness rule
func (v *Value) IsTruthy() bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBool:
		return v.boolean
	case KindNumber:
		return v.number != 0
	case KindString:
		return v.str != ""
	case KindObject:
		return v.obj.Len() > 0
	case KindRegex:
		return true
	case KindLambda, KindNative, KindTransformer:
		// all functions are deliberately falsy
		return false
	case KindRange:
		return v.rng.Len() > 0
	case KindArray:
		switch len(v.items) {
		case 0:
			return false
		case 1:
			return v.items[0].IsTruthy()
		default:
			for _, item := range v.items {
				if item.IsTruthy() {
					return true
				}
			}
			return false
		}
	}
	return false
}

// Flatten splices nested arrays into a single flat array
func (v *Value) Flatten(a *Arena) *Value {
	flat := a.NewArray(0)
	v.flattenInto(flat)
	return flat
}

func (v *Value) flattenInto(out *Value) {
	if v.IsArray() {
		for _, member := range v.Members() {
			member.flattenInto(out)
		}
		return
	}
	out.Push(v)
}

// WrapInArray wraps a value into a one-element array with the given flags
func WrapInArray(a *Arena, v *Value, flags ArrayFlags) *Value {
	wrapper := a.NewArrayWithCapacity(1, flags)
	wrapper.Push(v)
	return wrapper
}

// WrapInArrayIfNeeded leaves arrays alone and wraps everything else
func WrapInArrayIfNeeded(a *Arena, v *Value, flags ArrayFlags) *Value {
	if v.IsArray() {
		return v
	}
	return WrapInArray(a, v, flags)
}

// CloneArrayWithFlags makes a shallow array copy carrying different flags
func (v *Value) CloneArrayWithFlags(a *Arena, flags ArrayFlags) *Value {
	out := a.NewArrayWithCapacity(v.Len(), flags)
	out.items = append(out.items, v.Members()...)
	return out
}

// DeepCopy copies arrays and objects recursively so the copy can be
// mutated without aliasing the original. Scalars and functions are shared;
// they are immutable.
func (v *Value) DeepCopy(a *Arena) *Value {
	switch v.kind {
	case KindArray:
		out := a.NewArrayWithCapacity(len(v.items), v.flags)
		for _, member := range v.items {
			out.Push(member.DeepCopy(a))
		}
		return out
	case KindRange:
		out := a.NewArrayWithCapacity(v.Len(), 0)
		for _, member := range v.Members() {
			out.Push(member)
		}
		return out
	case KindObject:
		out := a.NewObject()
		for _, key := range v.Keys() {
			out.Insert(key, v.Entry(key).DeepCopy(a))
		}
		return out
	default:
		return v
	}
}
