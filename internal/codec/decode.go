package codec

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dop251/goja"
)

// Decode converts a guest value to its host representation, recursively
// for compound values. The runtime is needed to reach guest accessors
// (Date epoch, Symbol description). Cyclic guest values exhaust the
// conversion depth budget and fail with ErrDepthExceeded.
func Decode(vm *goja.Runtime, v goja.Value) (interface{}, error) {
	return decode(vm, v, 0)
}

func decode(vm *goja.Runtime, v goja.Value, depth int) (interface{}, error) {
	if depth > maxConversionDepth {
		return nil, ErrDepthExceeded
	}

	switch Classify(v) {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.ToBoolean(), nil
	case KindNumber:
		// goja exports integral numbers as int64, everything else as float64.
		return v.Export(), nil
	case KindString:
		return v.String(), nil
	case KindCallable:
		return Function{}, nil
	case KindArray:
		return decodeArray(vm, v.(*goja.Object), depth)
	case KindDate:
		return decodeDate(vm, v.(*goja.Object))
	case KindSymbol:
		return decodeSymbol(vm, v.(*goja.Symbol)), nil
	default:
		return decodeObject(vm, v.(*goja.Object), depth)
	}
}

func decodeArray(vm *goja.Runtime, obj *goja.Object, depth int) (interface{}, error) {
	length := int(obj.Get("length").ToInteger())
	out := make([]interface{}, 0, length)

	for i := 0; i < length; i++ {
		el := obj.Get(strconv.Itoa(i))
		// Callable elements decay to nil inside arrays, unlike at top level.
		if Classify(el) == KindCallable {
			out = append(out, nil)
			continue
		}
		hv, err := decode(vm, el, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, hv)
	}
	return out, nil
}

func decodeDate(vm *goja.Runtime, obj *goja.Object) (interface{}, error) {
	getTime, ok := goja.AssertFunction(obj.Get("getTime"))
	if !ok {
		return nil, fmt.Errorf("guest Date value has no epoch accessor")
	}
	ms, err := getTime(obj)
	if err != nil {
		return nil, err
	}
	return time.UnixMilli(ms.ToInteger()), nil
}

func decodeSymbol(vm *goja.Runtime, sym *goja.Symbol) Symbol {
	desc := sym.ToObject(vm).Get("description")
	if desc == nil || goja.IsUndefined(desc) {
		return Symbol("undefined")
	}
	return Symbol(desc.String())
}

func decodeObject(vm *goja.Runtime, obj *goja.Object, depth int) (interface{}, error) {
	keys := obj.Keys()
	out := make(map[string]interface{}, len(keys))

	for _, k := range keys {
		mv := obj.Get(k)
		// Callable members are dropped entirely; the key does not survive.
		if Classify(mv) == KindCallable {
			continue
		}
		hv, err := decode(vm, mv, depth+1)
		if err != nil {
			return nil, err
		}
		out[k] = hv
	}
	return out, nil
}
