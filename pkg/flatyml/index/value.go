package index

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// Kind tags the type of a stored value.
type Kind int

const (
	// KindInt is a signed machine-word integer.
	KindInt Kind = iota + 1
	// KindString is a quoted string with the quotes stripped.
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IntSize is the recorded size of an integer value in bytes.
const IntSize = strconv.IntSize / 8

// Value is a tagged value stored in the index.
// Exactly one of Int or Str is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Int  int
	Str  string
}

// IntValue returns an integer Value.
func IntValue(n int) Value {
	return Value{Kind: KindInt, Int: n}
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Size returns the recorded size of the value in bytes.
// Strings count their terminating NUL.
func (v Value) Size() int {
	if v.Kind == KindInt {
		return IntSize
	}
	return len(v.Str) + 1
}

// Bytes returns the raw storage form of the value.
//
// Integers are encoded as a native-endian machine word; strings are the
// string bytes followed by a single NUL. len(Bytes()) == Size() always.
func (v Value) Bytes() []byte {
	if v.Kind == KindInt {
		buf := make([]byte, IntSize)
		if IntSize == 8 {
			binary.NativeEndian.PutUint64(buf, uint64(v.Int))
		} else {
			binary.NativeEndian.PutUint32(buf, uint32(v.Int))
		}
		return buf
	}
	buf := make([]byte, len(v.Str)+1)
	copy(buf, v.Str)
	return buf
}

// Any returns the value as an int or string.
func (v Value) Any() any {
	if v.Kind == KindInt {
		return v.Int
	}
	return v.Str
}

// String formats the value for display.
func (v Value) String() string {
	if v.Kind == KindInt {
		return strconv.Itoa(v.Int)
	}
	return strconv.Quote(v.Str)
}
