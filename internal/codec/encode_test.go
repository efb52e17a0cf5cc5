package codec

import (
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePrimitives(t *testing.T) {
	vm := goja.New()
	enc := NewEncoder(vm)

	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"int", 42, int64(42)},
		{"int64", int64(-7), int64(-7)},
		{"uint32", uint32(9), int64(9)},
		{"float64", 2.5, 2.5},
		{"string", "hello", "hello"},
		{"symbol description", Symbol("token"), "token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gv, err := enc.Encode(tt.in)
			require.NoError(t, err)

			// Round back through the decoder to check the guest-side shape.
			got, err := Decode(vm, gv)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Zero(t, enc.Fallbacks())
}

func TestEncodeDate(t *testing.T) {
	vm := goja.New()

	in := time.UnixMilli(1700000000000)
	gv, err := Encode(vm, in)
	require.NoError(t, err)

	obj, ok := gv.(*goja.Object)
	require.True(t, ok)
	assert.Equal(t, "Date", obj.ClassName())

	got, err := Decode(vm, gv)
	require.NoError(t, err)
	assert.Equal(t, in.UnixMilli(), got.(time.Time).UnixMilli())
}

func TestEncodeCompound(t *testing.T) {
	vm := goja.New()

	in := map[string]interface{}{
		"items": []interface{}{int64(1), "two", true, nil},
		"inner": map[string]interface{}{"depth": int64(2)},
	}
	gv, err := Encode(vm, in)
	require.NoError(t, err)

	got, err := Decode(vm, gv)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestEncodeAnyKeyMap(t *testing.T) {
	vm := goja.New()

	gv, err := Encode(vm, map[interface{}]interface{}{1: "one", "two": int64(2)})
	require.NoError(t, err)

	got, err := Decode(vm, gv)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"1": "one", "two": int64(2)}, got)
}

func TestEncodeUnsupportedHostValue(t *testing.T) {
	vm := goja.New()
	enc := NewEncoder(vm)

	type opaque struct{ n int }

	gv, err := enc.Encode(opaque{n: 1})
	require.NoError(t, err)
	assert.Equal(t, FailedConversion, gv.String())
	assert.Equal(t, 1, enc.Fallbacks())

	// Nested unsupported values degrade too, and each one is counted.
	gv, err = enc.Encode([]interface{}{opaque{}, opaque{}})
	require.NoError(t, err)
	got, err := Decode(vm, gv)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{FailedConversion, FailedConversion}, got)
	assert.Equal(t, 3, enc.Fallbacks())
}

func TestEncodeDepthExceeded(t *testing.T) {
	vm := goja.New()

	deep := []interface{}{}
	for i := 0; i < maxConversionDepth+2; i++ {
		deep = []interface{}{deep}
	}

	_, err := Encode(vm, deep)
	assert.ErrorIs(t, err, ErrDepthExceeded)
}

func TestEncodeAll(t *testing.T) {
	vm := goja.New()
	enc := NewEncoder(vm)

	vals, err := enc.EncodeAll([]interface{}{1, "a", true})
	require.NoError(t, err)
	require.Len(t, vals, 3)
	assert.Equal(t, int64(1), vals[0].ToInteger())
	assert.Equal(t, "a", vals[1].String())
	assert.True(t, vals[2].ToBoolean())
}
