// Package enum declares enumerated types whose construction from raw input
// degrades gracefully: a value that matches no declared member becomes a
// fallback member carrying the raw value under a fixed, configurable name.
//
// An enumeration is declared once, usually at package level:
//
//	type MessageType int
//
//	var (
//		MessageTypes = enum.New[MessageType]("MessageType", enum.WithUnknownName("MISSING"))
//		MessageText  = MessageTypes.Declare("TEXT", 0)
//		MessageImage = MessageTypes.Declare("IMAGE", 1)
//	)
//
//	m, _ := MessageTypes.Of(1)  // m == MessageImage
//	u, _ := MessageTypes.Of(44) // u.Name() == "MISSING", u.Value() == 44
//
// Enumerations declared without Fallback or WithUnknownName keep the strict
// behavior and fail on unknown values; Coerce, Adapted and the fbenum struct
// tag apply the fallback rule to them at decoding boundaries instead.
package enum

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Enum is a closed set of named members backed by unique values of type T.
// Members are declared during initialization; lookups are safe for
// concurrent use.
type Enum[T comparable] struct {
	name     string
	settings settings

	mu      sync.RWMutex
	members []Member[T]
	byValue map[T]int
	byName  map[string]int
}

// New creates an enumeration named name and registers it for type T, so that
// decoders can find it from a field's static type. Each enumeration needs its
// own Go type; registering T twice panics. The registry is keyed by T, so a
// process holds at most one Enum[any] (or Enum of any other shared type such
// as string); declare a named type per enumeration instead.
func New[T comparable](name string, opts ...Option) *Enum[T] {
	if name == "" {
		panic("enum: empty enumeration name")
	}
	e := &Enum[T]{
		name:     name,
		settings: newSettings(opts),
		byValue:  make(map[T]int),
		byName:   make(map[string]int),
	}
	if e.settings.unknownName == "" {
		panic(fmt.Sprintf("enum: %s: empty unknown name", name))
	}
	register(e)
	return e
}

// Declare adds a member and returns it. It panics on an empty or duplicate
// name, a duplicate value, or a name equal to the unknown-name.
func (e *Enum[T]) Declare(name string, value T) Member[T] {
	m, err := e.declare(name, value)
	if err != nil {
		panic(err)
	}
	return m
}

func (e *Enum[T]) declare(name string, value T) (Member[T], error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case name == "":
		return Member[T]{}, fmt.Errorf("enum: %s: empty member name", e.name)
	case name == e.settings.unknownName:
		return Member[T]{}, fmt.Errorf("enum: %s: member name %s is reserved for unknown values", e.name, name)
	}
	if _, dup := e.byName[name]; dup {
		return Member[T]{}, fmt.Errorf("enum: %s: duplicate member name %s", e.name, name)
	}
	if i, dup := e.byValue[value]; dup {
		return Member[T]{}, fmt.Errorf("enum: %s: %s reuses the value of %s", e.name, name, e.members[i].name)
	}

	m := Member[T]{enum: e, name: name, value: value, known: true}
	e.byValue[value] = len(e.members)
	e.byName[name] = len(e.members)
	e.members = append(e.members, m)
	return m, nil
}

// Name returns the enumeration name
func (e *Enum[T]) Name() string {
	return e.name
}

// UnknownName returns the name given to fallback members of this enumeration
func (e *Enum[T]) UnknownName() string {
	return e.settings.unknownName
}

// IsFallback reports whether Of substitutes fallback members for unknown values
func (e *Enum[T]) IsFallback() bool {
	return e.settings.fallback
}

// Type returns the backing Go type
func (e *Enum[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// Len returns the number of declared members
func (e *Enum[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.members)
}

// Members returns the declared members in declaration order
func (e *Enum[T]) Members() []Member[T] {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Member[T], len(e.members))
	copy(out, e.members)
	return out
}

// Names returns the declared member names in declaration order
func (e *Enum[T]) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.members))
	for i, m := range e.members {
		out[i] = m.name
	}
	return out
}

// Values returns the declared member values in declaration order
func (e *Enum[T]) Values() []T {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]T, len(e.members))
	for i, m := range e.members {
		out[i] = m.value
	}
	return out
}

// Lookup returns the declared member backed by v.
func (e *Enum[T]) Lookup(v T) (Member[T], bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i, ok := e.byValue[v]
	if !ok {
		return Member[T]{}, false
	}
	return e.members[i], true
}

// ByName returns the declared member called name.
func (e *Enum[T]) ByName(name string) (Member[T], bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i, ok := e.byName[name]
	if !ok {
		return Member[T]{}, false
	}
	return e.members[i], true
}

// Contains reports whether v backs a declared member
func (e *Enum[T]) Contains(v T) bool {
	_, ok := e.Lookup(v)
	return ok
}

// Of constructs the member for v. A declared member is returned as is.
// Otherwise a fallback enumeration returns a fresh fallback member named
// UnknownName() holding v, and a plain one fails with ErrNotMember.
func (e *Enum[T]) Of(v T) (Member[T], error) {
	if m, ok := e.Lookup(v); ok {
		return m, nil
	}
	if !e.settings.fallback {
		return Member[T]{}, &Error{Kind: KindNotMember, Enum: e.name, Raw: v}
	}
	return e.synthesize(v, e.settings.unknownName, e.settings.logger), nil
}

// MustOf is like Of but panics on error.
func (e *Enum[T]) MustOf(v T) Member[T] {
	m, err := e.Of(v)
	if err != nil {
		panic(err)
	}
	return m
}

// OfAny converts raw to T with the enumeration's casting settings and
// constructs the member like Of. Members of e are returned unchanged.
func (e *Enum[T]) OfAny(raw any) (Member[T], error) {
	if m, ok := e.memberOf(raw); ok {
		return m, nil
	}
	v, err := toBacking[T](&e.settings, e.name, raw)
	if err != nil {
		return Member[T]{}, err
	}
	return e.Of(v)
}

// Fallback returns a fallback member for v named UnknownName(), regardless
// of whether v is declared.
func (e *Enum[T]) Fallback(v T) Member[T] {
	return e.synthesize(v, e.settings.unknownName, e.settings.logger)
}

// KnownValue reports whether v, after a lossless conversion to T, backs a
// declared member.
func (e *Enum[T]) KnownValue(v any) bool {
	if m, ok := e.memberOf(v); ok {
		return m.known
	}
	t, ok := v.(T)
	if !ok {
		if t, ok = sameKind[T](v); !ok {
			return false
		}
	}
	return e.Contains(t)
}

// FieldTypes returns zero values of the field types that carry members of
// this enumeration, for registration with validation hooks.
func (e *Enum[T]) FieldTypes() []any {
	return []any{Member[T]{}, Adapted[T]{}}
}

func (e *Enum[T]) memberOf(raw any) (Member[T], bool) {
	h, ok := raw.(interface{ asMember() Member[T] })
	if !ok {
		return Member[T]{}, false
	}
	m := h.asMember()
	return m, m.enum == e
}

// checkUnknownName rejects an unknown-name that would make fallback members
// indistinguishable from a declared member.
func (e *Enum[T]) checkUnknownName(name string) error {
	if _, ok := e.ByName(name); ok {
		return &Error{Kind: KindConflict, Enum: e.name, Raw: name}
	}
	return nil
}

func (e *Enum[T]) synthesize(v T, name string, logger *zap.Logger) Member[T] {
	logger.Debug("substituted unknown enum value",
		zap.String("enum", e.name),
		zap.String("unknown_name", name),
		zap.Any("raw", v))
	return Member[T]{enum: e, name: name, value: v}
}

func (e *Enum[T]) String() string {
	return e.name
}
