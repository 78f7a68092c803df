package gridsheet

import (
	"fmt"
	"strconv"
)

// ValueKind discriminates the semantic type of a CellValue.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindNumber
	KindText
	KindBool
	KindError
)

// String returns a human-readable name for the ValueKind.
func (k ValueKind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindNumber:
		return "Number"
	case KindText:
		return "Text"
	case KindBool:
		return "Bool"
	case KindError:
		return "Error"
	default:
		return "Unknown"
	}
}

// CellValue is a tagged value container. Data holds a float64, string or bool
// depending on Kind; for KindError it holds the error code string.
// Invariant: KindEmpty implies Data == nil.
type CellValue struct {
	Kind ValueKind
	Data any
}

// ErrCircular is the error code produced when a formula depends on itself,
// directly or transitively.
const ErrCircular = "#CIRC!"

// ErrEval is the error code produced when a formula fails to evaluate.
const ErrEval = "#ERROR!"

// EmptyValue returns the empty cell value.
func EmptyValue() CellValue {
	return CellValue{Kind: KindEmpty}
}

// NumberValue returns a numeric cell value.
func NumberValue(n float64) CellValue {
	return CellValue{Kind: KindNumber, Data: n}
}

// TextValue returns a text cell value.
func TextValue(s string) CellValue {
	return CellValue{Kind: KindText, Data: s}
}

// BoolValue returns a boolean cell value.
func BoolValue(b bool) CellValue {
	return CellValue{Kind: KindBool, Data: b}
}

// ErrorValue returns an error cell value carrying the given error code.
func ErrorValue(code string) CellValue {
	return CellValue{Kind: KindError, Data: code}
}

// ValueOf converts an arbitrary Go value into a CellValue.
func ValueOf(v any) CellValue {
	switch n := v.(type) {
	case nil:
		return EmptyValue()
	case CellValue:
		return n
	case bool:
		return BoolValue(n)
	case int:
		return NumberValue(float64(n))
	case int8:
		return NumberValue(float64(n))
	case int16:
		return NumberValue(float64(n))
	case int32:
		return NumberValue(float64(n))
	case int64:
		return NumberValue(float64(n))
	case uint:
		return NumberValue(float64(n))
	case uint8:
		return NumberValue(float64(n))
	case uint16:
		return NumberValue(float64(n))
	case uint32:
		return NumberValue(float64(n))
	case uint64:
		return NumberValue(float64(n))
	case float32:
		return NumberValue(float64(n))
	case float64:
		return NumberValue(n)
	case string:
		return TextValue(n)
	default:
		return TextValue(fmt.Sprintf("%v", n))
	}
}

// IsEmpty returns true for the empty value.
func (v CellValue) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// Number returns the numeric payload, or 0 if the value is not a number.
func (v CellValue) Number() float64 {
	if n, ok := v.Data.(float64); ok {
		return n
	}
	return 0
}

// Text returns the textual representation of the value. The second result is
// false when the value has no string representation (the empty value), which
// filters treat as "never matches".
func (v CellValue) Text() (string, bool) {
	switch v.Kind {
	case KindEmpty:
		return "", false
	case KindNumber:
		return strconv.FormatFloat(v.Number(), 'f', -1, 64), true
	case KindText:
		s, _ := v.Data.(string)
		return s, true
	case KindBool:
		if b, _ := v.Data.(bool); b {
			return "TRUE", true
		}
		return "FALSE", true
	case KindError:
		s, _ := v.Data.(string)
		return s, true
	default:
		return "", false
	}
}

// Format is the minimal cell formatting value object carried by the store and
// captured by undo restore data.
type Format struct {
	NumFmt    string
	Bold      bool
	FillColor string
}

// Cell is a read-only view of one cell position. GetCell returns a Cell for
// any position; unset positions yield an empty value with no formula or format.
type Cell struct {
	Ref     CellRef
	Value   CellValue
	Formula *CellFormula
	Format  *Format
}

// IsEmpty returns true if the cell has no value, formula or format.
func (c Cell) IsEmpty() bool {
	return c.Value.IsEmpty() && c.Formula == nil && c.Format == nil
}
