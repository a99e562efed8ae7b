package enum

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Descriptor describes a declared enumeration independently of its backing
// type. *Enum[T] implements it.
type Descriptor interface {
	Name() string
	UnknownName() string
	IsFallback() bool
	Type() reflect.Type
	Names() []string
	KnownValue(v any) bool
	FieldTypes() []any
}

var registry = struct {
	sync.RWMutex
	byType map[reflect.Type]Descriptor
}{byType: make(map[reflect.Type]Descriptor)}

func register[T comparable](e *Enum[T]) {
	t := reflect.TypeFor[T]()

	registry.Lock()
	defer registry.Unlock()
	if prev, ok := registry.byType[t]; ok {
		panic(fmt.Sprintf("enum: %s: type %s already backs %s", e.name, t, prev.Name()))
	}
	registry.byType[t] = e
}

// For returns the enumeration registered for T.
func For[T comparable]() (*Enum[T], bool) {
	registry.RLock()
	defer registry.RUnlock()
	d, ok := registry.byType[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	e, ok := d.(*Enum[T])
	return e, ok
}

// DescriptorOf returns the enumeration backed by t.
func DescriptorOf(t reflect.Type) (Descriptor, bool) {
	registry.RLock()
	defer registry.RUnlock()
	d, ok := registry.byType[t]
	return d, ok
}

// Registered returns every declared enumeration ordered by name.
func Registered() []Descriptor {
	registry.RLock()
	out := make([]Descriptor, 0, len(registry.byType))
	for _, d := range registry.byType {
		out = append(out, d)
	}
	registry.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name() != out[j].Name() {
			return out[i].Name() < out[j].Name()
		}
		return out[i].Type().String() < out[j].Type().String()
	})
	return out
}

func enumFor[T comparable]() (*Enum[T], error) {
	e, ok := For[T]()
	if !ok {
		return nil, &Error{Kind: KindNotDeclared, Enum: reflect.TypeFor[T]().String()}
	}
	return e, nil
}
