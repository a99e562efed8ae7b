package enum

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewAdapter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		a := NewAdapter()
		assert.Equal(t, DefaultUnknownName, a.UnknownName())
		assert.True(t, a.TypeCasting())
		assert.Same(t, defaultAdapter, DefaultAdapter())
	})

	t.Run("options", func(t *testing.T) {
		a := NewAdapter(WithUnknownName("MISSING"), WithoutTypeCasting())
		assert.Equal(t, "MISSING", a.UnknownName())
		assert.False(t, a.TypeCasting())
	})

	t.Run("empty unknown name keeps the default", func(t *testing.T) {
		a := NewAdapter(WithUnknownName(""))
		assert.Equal(t, DefaultUnknownName, a.UnknownName())
	})
}

func TestCoerce(t *testing.T) {
	t.Run("members and declared values", func(t *testing.T) {
		got, err := Coerce(nil, plainInts, plainIntA)
		require.NoError(t, err)
		assert.Equal(t, plainIntA, got)

		got, err = Coerce(nil, plainInts, plainIntA.Value())
		require.NoError(t, err)
		assert.Equal(t, plainIntA, got)

		got, err = Coerce(nil, plainInts, Adapt(plainIntB))
		require.NoError(t, err)
		assert.Equal(t, plainIntB, got)
	})

	t.Run("unknown value on plain enumeration", func(t *testing.T) {
		got, err := Coerce(nil, plainInts, 44)
		require.NoError(t, err)
		assert.Equal(t, DefaultUnknownName, got.Name())
		assert.Equal(t, plainInt(44), got.Value())
		assert.Same(t, plainInts, got.Enum())
	})

	t.Run("adapter unknown name", func(t *testing.T) {
		got, err := Coerce(NewAdapter(WithUnknownName("MISSING")), plainInts, 44)
		require.NoError(t, err)
		assert.Equal(t, "MISSING", got.Name())
	})

	t.Run("unknown name equal to a declared member", func(t *testing.T) {
		a := NewAdapter(WithUnknownName("B"))
		_, err := Coerce(a, plainInts, 44)
		require.Error(t, err)
		assert.True(t, IsNameConflict(err))
		assert.EqualError(t, err, "enum: unknown name B is a declared member of PlainInt")

		got, err := Coerce(a, plainInts, 2)
		require.NoError(t, err, "declared values still resolve")
		assert.Equal(t, plainIntB, got)
	})

	t.Run("fallback enumeration keeps its own name", func(t *testing.T) {
		got, err := Coerce(NewAdapter(WithUnknownName("OTHER")), intEnum, 44)
		require.NoError(t, err)
		assert.Equal(t, "MISSING", got.Name())
	})

	t.Run("adapter casts where the enumeration refuses", func(t *testing.T) {
		got, err := Coerce(nil, strictInts, "1")
		require.NoError(t, err)
		assert.Equal(t, strictIntA, got)

		got, err = Coerce(NewAdapter(WithUnknownName("MISSING")), strictInts, "5")
		require.NoError(t, err)
		assert.Equal(t, DefaultUnknownName, got.Name())
		assert.Equal(t, strictInt(5), got.Value())
	})
}

// Invalid raw inputs against plain enumerations declaring 1 and 2.
func TestCoerce_InvalidValues(t *testing.T) {
	type result struct {
		value any
		err   bool
	}
	inputs := []struct {
		name string
		raw  any
	}{
		{"int", 3},
		{"str_int", "3"},
		{"float", 3.0},
		{"str_float", "3.0"},
		{"str", "INVALID"},
	}
	expected := map[string]map[string]result{
		"PlainInt": {
			"int":       {value: plainInt(3)},
			"str_int":   {value: plainInt(3)},
			"float":     {value: plainInt(3)},
			"str_float": {err: true},
			"str":       {err: true},
		},
		"PlainStr": {
			"int":       {value: plainStr("3")},
			"str_int":   {value: plainStr("3")},
			"float":     {value: plainStr("3")},
			"str_float": {value: plainStr("3.0")},
			"str":       {value: plainStr("INVALID")},
		},
		"PlainFloat": {
			"int":       {value: plainFloat(3)},
			"str_int":   {value: plainFloat(3)},
			"float":     {value: plainFloat(3)},
			"str_float": {value: plainFloat(3)},
			"str":       {err: true},
		},
	}

	coercers := map[string]func(raw any) (string, any, error){
		"PlainInt": func(raw any) (string, any, error) {
			m, err := Coerce(nil, plainInts, raw)
			return m.Name(), m.Value(), err
		},
		"PlainStr": func(raw any) (string, any, error) {
			m, err := Coerce(nil, plainStrs, raw)
			return m.Name(), m.Value(), err
		},
		"PlainFloat": func(raw any) (string, any, error) {
			m, err := Coerce(nil, plainFloats, raw)
			return m.Name(), m.Value(), err
		},
	}

	for enumName, coerce := range coercers {
		for _, in := range inputs {
			t.Run(enumName+"/"+in.name, func(t *testing.T) {
				want := expected[enumName][in.name]
				name, value, err := coerce(in.raw)
				if want.err {
					require.Error(t, err)
					assert.True(t, IsCastError(err))
					return
				}
				require.NoError(t, err)
				assert.Equal(t, DefaultUnknownName, name)
				assert.Equal(t, want.value, value)
			})
		}
	}
}

func TestCoerce_TypeCasting(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		a := NewAdapter()
		for _, raw := range []any{1, "1", 1.0, int8(1), uint(1)} {
			got, err := Coerce(a, plainInts, raw)
			require.NoError(t, err)
			assert.Equal(t, plainIntA, got, "raw %#v", raw)
		}

		got, err := Coerce(a, plainInts, "22")
		require.NoError(t, err)
		assert.Equal(t, DefaultUnknownName, got.Name())
		assert.Equal(t, plainInt(22), got.Value())
	})

	t.Run("disabled", func(t *testing.T) {
		a := NewAdapter(WithoutTypeCasting())

		got, err := Coerce(a, plainInts, 1)
		require.NoError(t, err)
		assert.Equal(t, plainIntA, got)

		_, err = Coerce(a, plainInts, "1")
		assert.True(t, IsCastError(err))

		_, err = Coerce(a, plainInts, "invalid")
		assert.True(t, IsCastError(err))
	})

	t.Run("custom caster", func(t *testing.T) {
		// Accepts decimal notation for integer members.
		decimal := func(raw any) (any, error) {
			s, ok := raw.(string)
			if !ok {
				return raw, nil
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, err
			}
			return int(f), nil
		}
		a := NewAdapter(WithCaster(decimal))

		got, err := Coerce(a, plainInts, "1.0")
		require.NoError(t, err)
		assert.Equal(t, plainIntA, got)

		got, err = Coerce(a, plainInts, "22")
		require.NoError(t, err)
		assert.Equal(t, plainInt(22), got.Value())

		_, err = Coerce(a, plainInts, "nope")
		require.Error(t, err)
		assert.True(t, IsCastError(err))
		var numErr *strconv.NumError
		assert.True(t, errors.As(err, &numErr))
	})

	t.Run("caster returning the wrong type", func(t *testing.T) {
		a := NewAdapter(WithCaster(func(raw any) (any, error) { return "x", nil }))
		_, err := Coerce(a, plainInts, 7)
		require.NoError(t, err, "values of the backing kind skip the caster")

		_, err = Coerce(a, plainInts, "7")
		assert.True(t, IsCastError(err))
	})
}

func TestCoerceFunc(t *testing.T) {
	hook := CoerceFunc(NewAdapter(WithUnknownName("MISSING")), plainStrs)

	got, err := hook("1")
	require.NoError(t, err)
	assert.Equal(t, plainStrA, got)

	got, err = hook(44)
	require.NoError(t, err)
	assert.Equal(t, "MISSING", got.Name())
	assert.Equal(t, plainStr("44"), got.Value())
}

func TestCoerce_LogsSubstitution(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := NewAdapter(WithLogger(zap.New(core)), WithUnknownName("MISSING"))

	_, err := Coerce(a, plainInts, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, logs.Len(), "declared members are not logged")

	_, err = Coerce(a, plainInts, 44)
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())

	entry := logs.All()[0]
	assert.Equal(t, "substituted unknown enum value", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "PlainInt", fields["enum"])
	assert.Equal(t, "MISSING", fields["unknown_name"])
}
