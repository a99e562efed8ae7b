package enum

import (
	"reflect"
	"sync"
)

// UnknownNamer names the fallback members of an Annotated field.
type UnknownNamer interface {
	UnknownName() string
}

// Annotated is a field type that carries its adapter configuration in the
// type parameter N, so every decoder of the field applies it: JSON, text,
// YAML, TOML and SQL.
//
//	type Missing struct{}
//
//	func (Missing) UnknownName() string { return "MISSING" }
//
//	type Message struct {
//		Type enum.Annotated[MessageType, Missing] `json:"type"`
//	}
//
// N may also implement AdapterOptions() []Option to configure casting, e.g.
// WithoutTypeCasting or WithCaster. N is used through its zero value, so it
// should be a value type. Fallback enumerations keep their own unknown-name.
type Annotated[T comparable, N UnknownNamer] struct {
	Member[T]
}

// AnnotateMember wraps m.
func AnnotateMember[T comparable, N UnknownNamer](m Member[T]) Annotated[T, N] {
	return Annotated[T, N]{Member: m}
}

func (a *Annotated[T, N]) adapter() *Adapter {
	return adapterFor[N]()
}

func (a *Annotated[T, N]) checkUnknownName(name string) error {
	e, err := enumFor[T]()
	if err != nil {
		return err
	}
	return e.checkUnknownName(name)
}

var annotatedAdapters sync.Map

// adapterFor returns the adapter described by N, built once per type.
func adapterFor[N UnknownNamer]() *Adapter {
	t := reflect.TypeFor[N]()
	if a, ok := annotatedAdapters.Load(t); ok {
		return a.(*Adapter)
	}

	var n N
	var opts []Option
	if c, ok := any(n).(interface{ AdapterOptions() []Option }); ok {
		opts = append(opts, c.AdapterOptions()...)
	}
	if name := n.UnknownName(); name != "" {
		opts = append(opts, WithUnknownName(name))
	}
	a, _ := annotatedAdapters.LoadOrStore(t, NewAdapter(opts...))
	return a.(*Adapter)
}
