package session

import (
	"fmt"
	"strconv"
)

// Kind discriminates the forms a session value can take. The external
// process is loosely typed; callers only ever see the decoded form.
type Kind int

const (
	KindNil Kind = iota
	KindNumber
	KindString
	KindBool
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	}
	return fmt.Sprintf("kind %d", int(k))
}

// Value is a tagged union of the scalar and array forms the session
// exchanges. The zero Value is nil.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	arr  []float64
}

func Nil() Value              { return Value{} }
func Number(f float64) Value  { return Value{kind: KindNumber, num: f} }
func String(s string) Value   { return Value{kind: KindString, str: s} }
func Bool(b bool) Value       { return Value{kind: KindBool, b: b} }
func Array(a []float64) Value { return Value{kind: KindArray, arr: a} }

func (v Value) Kind() Kind { return v.kind }

// Number returns the numeric form, converting bools to 0/1.
// ok is false for strings, arrays, and nil.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Int returns the numeric form truncated to an int.
func (v Value) Int() (int, bool) {
	f, ok := v.Number()
	return int(f), ok
}

func (v Value) String() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) Array() ([]float64, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// Display renders the value for human output and exports. Arrays render as
// their length; exports carry arrays through the bundle, not the table.
func (v Value) Display() string {
	switch v.kind {
	case KindNil:
		return ""
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindArray:
		return fmt.Sprintf("[%d values]", len(v.arr))
	}
	return ""
}
