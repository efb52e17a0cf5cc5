package codec

import (
	"reflect"

	"github.com/dop251/goja"
)

// Kind is the closed variant set a raw guest value is classified into
// before any conversion proceeds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindDate
	KindSymbol
	KindCallable
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindDate:
		return "date"
	case KindSymbol:
		return "symbol"
	case KindCallable:
		return "callable"
	default:
		return "object"
	}
}

// Classify maps a raw guest value into the variant set. Undefined and null
// collapse into KindNull; any object that is not an Array, Date, or
// callable is KindObject.
func Classify(v goja.Value) Kind {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return KindNull
	}

	if _, ok := v.(*goja.Symbol); ok {
		return KindSymbol
	}

	if obj, ok := v.(*goja.Object); ok {
		if _, callable := goja.AssertFunction(obj); callable {
			return KindCallable
		}
		switch obj.ClassName() {
		case "Array":
			return KindArray
		case "Date":
			return KindDate
		default:
			return KindObject
		}
	}

	t := v.ExportType()
	if t == nil {
		return KindNull
	}
	switch t.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int64, reflect.Float64:
		return KindNumber
	case reflect.String:
		return KindString
	}
	return KindObject
}
