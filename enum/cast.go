package enum

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

var (
	errLossy       = errors.New("value cannot be represented without loss")
	errUnsupported = errors.New("unsupported conversion")
)

type kindClass int

const (
	classOther kindClass = iota
	classInt
	classUint
	classFloat
	classString
	classBool
)

func classOf(k reflect.Kind) kindClass {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return classInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return classUint
	case reflect.Float32, reflect.Float64:
		return classFloat
	case reflect.String:
		return classString
	case reflect.Bool:
		return classBool
	}
	return classOther
}

// toBacking converts raw into T following s. The conversion never changes the
// meaning of the input: integral floats become ints, numeric strings become
// numbers, but 3.5 never becomes 3.
func toBacking[T comparable](s *settings, enumName string, raw any) (T, error) {
	var zero T
	if v, ok := raw.(T); ok {
		return v, nil
	}
	if raw == nil {
		return zero, &Error{Kind: KindCast, Enum: enumName, Raw: raw}
	}

	if v, ok := sameKind[T](raw); ok {
		return v, nil
	}

	if s.caster != nil {
		out, err := s.caster(raw)
		if err != nil {
			return zero, &Error{Kind: KindCast, Enum: enumName, Raw: raw, Err: err}
		}
		if v, ok := out.(T); ok {
			return v, nil
		}
		if v, ok := sameKind[T](out); ok {
			return v, nil
		}
		return zero, &Error{Kind: KindCast, Enum: enumName, Raw: raw,
			Err: fmt.Errorf("caster returned %T", out)}
	}

	if !s.casting {
		return zero, &Error{Kind: KindCast, Enum: enumName, Raw: raw}
	}

	v, err := castKind[T](raw)
	if err != nil {
		return zero, &Error{Kind: KindCast, Enum: enumName, Raw: raw, Err: err}
	}
	return v, nil
}

// sameKind converts between types sharing an underlying kind, e.g. int to a
// named int type. It refuses conversions that overflow the target.
func sameKind[T comparable](raw any) (T, bool) {
	var zero T
	tt := reflect.TypeFor[T]()
	rv := reflect.ValueOf(raw)
	if !rv.IsValid() {
		return zero, false
	}
	if _, isNumber := raw.(json.Number); isNumber || tt.Kind() == reflect.Interface {
		return zero, false
	}
	rc, tc := classOf(rv.Kind()), classOf(tt.Kind())
	if rc != tc || !rv.Type().ConvertibleTo(tt) {
		return zero, false
	}
	probe := reflect.New(tt).Elem()
	switch tc {
	case classInt:
		if probe.OverflowInt(rv.Int()) {
			return zero, false
		}
	case classUint:
		if probe.OverflowUint(rv.Uint()) {
			return zero, false
		}
	case classFloat:
		if probe.OverflowFloat(rv.Float()) {
			return zero, false
		}
	}
	v, ok := rv.Convert(tt).Interface().(T)
	return v, ok
}

func castKind[T comparable](raw any) (T, error) {
	var zero T
	tt := reflect.TypeFor[T]()
	out := reflect.New(tt).Elem()

	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	rv := reflect.ValueOf(raw)

	switch classOf(tt.Kind()) {
	case classString:
		s, err := formatScalar(raw, rv)
		if err != nil {
			return zero, err
		}
		out.SetString(s)

	case classInt:
		i, err := parseInt(raw, rv)
		if err != nil {
			return zero, err
		}
		if out.OverflowInt(i) {
			return zero, errLossy
		}
		out.SetInt(i)

	case classUint:
		i, err := parseInt(raw, rv)
		if err != nil {
			return zero, err
		}
		if i < 0 || out.OverflowUint(uint64(i)) {
			return zero, errLossy
		}
		out.SetUint(uint64(i))

	case classFloat:
		f, err := parseFloat(raw, rv)
		if err != nil {
			return zero, err
		}
		if out.OverflowFloat(f) {
			return zero, errLossy
		}
		out.SetFloat(f)

	case classBool:
		str, ok := raw.(string)
		if !ok && rv.Kind() == reflect.String {
			str, ok = rv.String(), true
		}
		if !ok {
			return zero, errUnsupported
		}
		b, err := strconv.ParseBool(strings.TrimSpace(str))
		if err != nil {
			return zero, err
		}
		out.SetBool(b)

	default:
		return zero, errUnsupported
	}

	v, _ := out.Interface().(T)
	return v, nil
}

func formatScalar(raw any, rv reflect.Value) (string, error) {
	if n, ok := raw.(json.Number); ok {
		return n.String(), nil
	}
	switch classOf(rv.Kind()) {
	case classString:
		return rv.String(), nil
	case classInt:
		return strconv.FormatInt(rv.Int(), 10), nil
	case classUint:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case classFloat:
		bits := 64
		if rv.Kind() == reflect.Float32 {
			bits = 32
		}
		return strconv.FormatFloat(rv.Float(), 'f', -1, bits), nil
	case classBool:
		return strconv.FormatBool(rv.Bool()), nil
	}
	return "", errUnsupported
}

func parseInt(raw any, rv reflect.Value) (int64, error) {
	if n, ok := raw.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return integral(f)
	}
	switch classOf(rv.Kind()) {
	case classString:
		return strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64)
	case classInt:
		return rv.Int(), nil
	case classUint:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, errLossy
		}
		return int64(u), nil
	case classFloat:
		return integral(rv.Float())
	}
	return 0, errUnsupported
}

func parseFloat(raw any, rv reflect.Value) (float64, error) {
	if n, ok := raw.(json.Number); ok {
		return n.Float64()
	}
	switch classOf(rv.Kind()) {
	case classString:
		return strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
	case classInt:
		return float64(rv.Int()), nil
	case classUint:
		return float64(rv.Uint()), nil
	case classFloat:
		return rv.Float(), nil
	}
	return 0, errUnsupported
}

func integral(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errLossy
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, errLossy
	}
	return int64(f), nil
}

// needsCast reports whether raw reaches T only through a conversion between
// kinds, which adapters with type casting disabled refuse.
func needsCast[T comparable](raw any) bool {
	if _, ok := raw.(T); ok || raw == nil {
		return false
	}
	_, ok := sameKind[T](raw)
	return !ok
}
