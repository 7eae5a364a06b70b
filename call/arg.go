package call

import "reflect"

// Kind tags the representation of one argument slot. The enumeration is
// closed: a kind outside this set cannot be duplicated safely, and any
// Arg carrying one fails the whole dispatch (see UnsupportedArgError).
type Kind int

const (
	KindInvalid Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindSelector
	KindObject
	KindStruct
)

var kindNames = map[Kind]string{
	KindInvalid:  "invalid",
	KindInt8:     "int8",
	KindInt16:    "int16",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUint8:    "uint8",
	KindUint16:   "uint16",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindBool:     "bool",
	KindSelector: "selector",
	KindObject:   "object",
	KindStruct:   "struct",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// cloneable reports whether arguments of this kind can be duplicated.
func (k Kind) cloneable() bool {
	return k > KindInvalid && k <= KindStruct
}

// Arg is one argument of a Call: a kind tag plus the boxed value.
// Scalar, selector, and object kinds carry their value directly.
// A struct kind carries a pointer to the caller's live struct until
// the call is cloned, at which point each duplicate snapshots its own
// independent copy.
type Arg struct {
	kind     Kind
	value    any
	snapshot bool
}

func Int8(v int8) Arg { return Arg{kind: KindInt8, value: v} }

func Int16(v int16) Arg { return Arg{kind: KindInt16, value: v} }

func Int32(v int32) Arg { return Arg{kind: KindInt32, value: v} }

func Int64(v int64) Arg { return Arg{kind: KindInt64, value: v} }

func Uint8(v uint8) Arg { return Arg{kind: KindUint8, value: v} }

func Uint16(v uint16) Arg { return Arg{kind: KindUint16, value: v} }

func Uint32(v uint32) Arg { return Arg{kind: KindUint32, value: v} }

func Uint64(v uint64) Arg { return Arg{kind: KindUint64, value: v} }

func Float32(v float32) Arg { return Arg{kind: KindFloat32, value: v} }

func Float64(v float64) Arg { return Arg{kind: KindFloat64, value: v} }

func Bool(v bool) Arg { return Arg{kind: KindBool, value: v} }

// Selector boxes a method name argument.
func Selector(method string) Arg { return Arg{kind: KindSelector, value: method} }

// Object boxes any reference-typed argument. The value is copied as an
// opaque reference on duplication; keeping the referent alive is the
// caller's responsibility.
func Object(v any) Arg { return Arg{kind: KindObject, value: v} }

// StructOf boxes a by-value struct argument. The operand must be a
// non-nil pointer to a struct; the pointee is read and copied when the
// call is duplicated, so later mutation of the caller's struct does
// not leak into already-dispatched deliveries. Any other operand
// produces an invalid Arg, which fails the dispatch.
func StructOf(ptr any) Arg {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return Arg{kind: KindInvalid, value: ptr}
	}
	return Arg{kind: KindStruct, value: ptr}
}

// Unsupported returns an Arg that always fails duplication. Tests and
// adapters use it to model argument kinds outside the closed set.
func Unsupported(v any) Arg { return Arg{kind: KindInvalid, value: v} }

// Kind returns the argument's kind tag.
func (a Arg) Kind() Kind { return a.kind }

// Value returns the boxed argument value. For a struct argument that
// has not been snapshotted yet, the caller's live struct is read.
func (a Arg) Value() any {
	if a.kind == KindStruct && !a.snapshot {
		return reflect.ValueOf(a.value).Elem().Interface()
	}
	return a.value
}

func (a Arg) clone(method string, index int) (Arg, error) {
	switch a.kind {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64, KindBool, KindSelector:
		return a, nil
	case KindObject:
		// Opaque reference copy. Referent lifetime is the caller's concern.
		return a, nil
	case KindStruct:
		if a.snapshot {
			return a, nil
		}
		src := reflect.ValueOf(a.value).Elem()
		dst := reflect.New(src.Type())
		dst.Elem().Set(src)
		return Arg{kind: KindStruct, value: dst.Elem().Interface(), snapshot: true}, nil
	default:
		return Arg{}, &UnsupportedArgError{Method: method, Index: index, Kind: a.kind}
	}
}
