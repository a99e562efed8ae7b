package enum

import (
	"fmt"
	"reflect"

	"go.uber.org/zap/zapcore"
)

// Member is a value of an enumeration: either a declared member or a
// fallback member synthesized for a value no declared member matches.
// Members compare with ==; two fallback members of the same enumeration and
// name holding equal values are equal.
type Member[T comparable] struct {
	enum  *Enum[T]
	name  string
	value T
	known bool
}

// Name returns the member name, or the unknown-name for fallback members
func (m Member[T]) Name() string {
	return m.name
}

// Value returns the backing value. For fallback members it is the raw input.
func (m Member[T]) Value() T {
	return m.value
}

// RawValue returns the backing value as an interface value
func (m Member[T]) RawValue() any {
	return m.value
}

// Enum returns the enumeration the member belongs to, nil for the zero Member
func (m Member[T]) Enum() *Enum[T] {
	return m.enum
}

// IsKnown reports whether m is a declared member
func (m Member[T]) IsKnown() bool {
	return m.known
}

// IsUnknown reports whether m is a fallback member
func (m Member[T]) IsUnknown() bool {
	return m.enum != nil && !m.known
}

// IsZero reports whether m is the zero Member, e.g. an unset field
func (m Member[T]) IsZero() bool {
	return m.enum == nil
}

// Equal reports whether m and o are the same member
func (m Member[T]) Equal(o Member[T]) bool {
	return m == o
}

func (m Member[T]) String() string {
	if m.enum == nil {
		return "<nil>"
	}
	return m.enum.name + "." + m.name
}

// MarshalLogObject implements zapcore.ObjectMarshaler
func (m Member[T]) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if m.enum != nil {
		enc.AddString("enum", m.enum.name)
	}
	enc.AddString("name", m.name)
	enc.AddBool("unknown", m.IsUnknown())
	return enc.AddReflected("value", m.value)
}

func (m Member[T]) asMember() Member[T] {
	return m
}

func (m *Member[T]) renameUnknown(name string) {
	if m.IsUnknown() {
		m.name = name
	}
}

// checkUnknownName accepts a per-field unknown-name only for fallback
// enumerations: a plain Member fails to decode unknown values before any
// renaming could happen.
func (m *Member[T]) checkUnknownName(name string) error {
	e, err := enumFor[T]()
	if err != nil {
		return err
	}
	if !e.IsFallback() {
		return fmt.Errorf("%s is not a fallback enumeration, use enum.Adapted[%s]", e.name, reflect.TypeFor[T]())
	}
	return e.checkUnknownName(name)
}

// assign constructs the member for raw into m. With a nil adapter the
// enumeration's own rule applies, otherwise the adapter's.
func (m *Member[T]) assign(raw any, a *Adapter) error {
	e := m.enum
	if e == nil {
		var err error
		if e, err = enumFor[T](); err != nil {
			return err
		}
	}

	var (
		got Member[T]
		err error
	)
	if a == nil {
		got, err = e.OfAny(raw)
	} else {
		got, err = Coerce(a, e, raw)
	}
	if err != nil {
		return err
	}
	*m = got
	return nil
}

// Adapted is a field type that applies the fallback rule with
// DefaultUnknownName to any enumeration, fallback or not. Enumerations
// declared with Fallback keep their own unknown-name. AnnotateWith
// re-applies a configured Adapter after decoding.
//
//	type Message struct {
//		Type enum.Adapted[MessageType] `json:"type"`
//	}
//
// Compare the embedded Member rather than whole Adapted values: a decoded
// value remembers whether its input needed casting until AnnotateWith runs.
type Adapted[T comparable] struct {
	Member[T]
	castFrom reflect.Type
}

// Adapt wraps m.
func Adapt[T comparable](m Member[T]) Adapted[T] {
	return Adapted[T]{Member: m}
}

func (a *Adapted[T]) adapt(raw any) error {
	if err := a.Member.assign(raw, defaultAdapter); err != nil {
		return err
	}
	a.castFrom = nil
	if needsCast[T](raw) {
		a.castFrom = reflect.TypeOf(raw)
	}
	return nil
}

// readapt applies ad to a member decoded with the default adapter. The
// unknown-name and the casting switch are honored; a custom caster only
// takes effect through Coerce.
func (a *Adapted[T]) readapt(ad *Adapter) error {
	castFrom := a.castFrom
	a.castFrom = nil
	e := a.enum
	if e == nil || ad == defaultAdapter {
		return nil
	}

	if castFrom != nil && !ad.settings.casting && !(e.IsFallback() && e.settings.casting) {
		return &Error{Kind: KindCast, Enum: e.name, Raw: a.value,
			Err: fmt.Errorf("decoded from %s with type casting disabled", castFrom)}
	}
	if a.IsUnknown() && !e.IsFallback() && a.name != ad.settings.unknownName {
		if err := e.checkUnknownName(ad.settings.unknownName); err != nil {
			return err
		}
		a.Member = e.synthesize(a.value, ad.settings.unknownName, ad.settings.logger)
	}
	return nil
}

func (a *Adapted[T]) checkUnknownName(name string) error {
	e, err := enumFor[T]()
	if err != nil {
		return err
	}
	return e.checkUnknownName(name)
}
