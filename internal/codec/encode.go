package codec

import (
	"errors"
	"time"

	"github.com/dop251/goja"
)

// Encoder converts host values into guest values for a single runtime,
// counting sentinel fallbacks so silent degradation stays observable.
type Encoder struct {
	vm        *goja.Runtime
	fallbacks int
}

// NewEncoder creates an encoder bound to the given runtime.
func NewEncoder(vm *goja.Runtime) *Encoder {
	return &Encoder{vm: vm}
}

// Fallbacks reports how many values this encoder replaced with the
// FailedConversion sentinel.
func (e *Encoder) Fallbacks() int { return e.fallbacks }

// Encode converts one host value to a guest value.
func (e *Encoder) Encode(v interface{}) (goja.Value, error) {
	return e.encode(v, 0)
}

// EncodeAll converts a host argument list to guest values.
func (e *Encoder) EncodeAll(args []interface{}) ([]goja.Value, error) {
	out := make([]goja.Value, 0, len(args))
	for _, a := range args {
		gv, err := e.encode(a, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, gv)
	}
	return out, nil
}

func (e *Encoder) encode(v interface{}, depth int) (goja.Value, error) {
	if depth > maxConversionDepth {
		return nil, ErrDepthExceeded
	}

	switch t := v.(type) {
	case nil:
		return goja.Null(), nil
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return e.vm.ToValue(t), nil
	case Symbol:
		// One-way: symbol identity is lost, only the description crosses.
		return e.vm.ToValue(string(t)), nil
	case time.Time:
		return e.encodeDate(t)
	case []interface{}:
		return e.encodeArray(t, depth)
	case map[string]interface{}:
		return e.encodeObject(t, depth)
	case map[interface{}]interface{}:
		return e.encodeAnyKeyObject(t, depth)
	default:
		// Best-effort degradation: no guest equivalent, substitute the
		// sentinel rather than failing the whole call.
		e.fallbacks++
		return e.vm.ToValue(FailedConversion), nil
	}
}

func (e *Encoder) encodeDate(t time.Time) (goja.Value, error) {
	ctor, ok := goja.AssertConstructor(e.vm.Get("Date"))
	if !ok {
		return nil, errors.New("guest Date constructor is unavailable")
	}
	obj, err := ctor(nil, e.vm.ToValue(t.UnixMilli()))
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (e *Encoder) encodeArray(items []interface{}, depth int) (goja.Value, error) {
	converted := make([]interface{}, 0, len(items))
	for _, item := range items {
		gv, err := e.encode(item, depth+1)
		if err != nil {
			return nil, err
		}
		converted = append(converted, gv)
	}
	return e.vm.NewArray(converted...), nil
}

func (e *Encoder) encodeObject(m map[string]interface{}, depth int) (goja.Value, error) {
	obj := e.vm.NewObject()
	for k, val := range m {
		gv, err := e.encode(val, depth+1)
		if err != nil {
			return nil, err
		}
		if err := obj.Set(k, gv); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (e *Encoder) encodeAnyKeyObject(m map[interface{}]interface{}, depth int) (goja.Value, error) {
	obj := e.vm.NewObject()
	for k, val := range m {
		gk, err := e.encode(k, depth+1)
		if err != nil {
			return nil, err
		}
		gv, err := e.encode(val, depth+1)
		if err != nil {
			return nil, err
		}
		if err := obj.Set(gk.String(), gv); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// Encode is a convenience wrapper for one-off conversions.
func Encode(vm *goja.Runtime, v interface{}) (goja.Value, error) {
	return NewEncoder(vm).Encode(v)
}
