package enum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

var jsonNull = []byte("null")

// MarshalJSON writes the backing value, so fallback members round-trip
// their raw input. The zero Member encodes as null.
func (m Member[T]) MarshalJSON() ([]byte, error) {
	if m.enum == nil {
		return jsonNull, nil
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON implements json.Unmarshaler with the enumeration's own rule.
func (m *Member[T]) UnmarshalJSON(data []byte) error {
	raw, ok, err := jsonRaw[T](data)
	if err != nil || !ok {
		return err
	}
	return m.assign(raw, nil)
}

// UnmarshalJSON implements json.Unmarshaler with the fallback rule.
func (a *Adapted[T]) UnmarshalJSON(data []byte) error {
	raw, ok, err := jsonRaw[T](data)
	if err != nil || !ok {
		return err
	}
	return a.adapt(raw)
}

// UnmarshalJSON implements json.Unmarshaler with the adapter described by N.
func (a *Annotated[T, N]) UnmarshalJSON(data []byte) error {
	raw, ok, err := jsonRaw[T](data)
	if err != nil || !ok {
		return err
	}
	return a.Member.assign(raw, a.adapter())
}

// jsonRaw decodes data into T when it fits, else into a generic value with
// numbers kept as json.Number. ok is false for null.
func jsonRaw[T comparable](data []byte) (raw any, ok bool, err error) {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil, false, nil
	}
	if reflect.TypeFor[T]().Kind() != reflect.Interface {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, true, nil
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// MarshalText implements encoding.TextMarshaler
func (m Member[T]) MarshalText() ([]byte, error) {
	if m.enum == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(m.value)
	if rv.IsValid() {
		if s, err := formatScalar(m.value, rv); err == nil {
			return []byte(s), nil
		}
	}
	return []byte(fmt.Sprint(m.value)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Member[T]) UnmarshalText(text []byte) error {
	return m.assign(string(text), nil)
}

// UnmarshalText implements encoding.TextUnmarshaler with the fallback rule.
func (a *Adapted[T]) UnmarshalText(text []byte) error {
	return a.adapt(string(text))
}

// UnmarshalText implements encoding.TextUnmarshaler with the adapter described by N.
func (a *Annotated[T, N]) UnmarshalText(text []byte) error {
	return a.Member.assign(string(text), a.adapter())
}

// MarshalYAML implements yaml.Marshaler
func (m Member[T]) MarshalYAML() (any, error) {
	if m.enum == nil {
		return nil, nil
	}
	return m.value, nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (m *Member[T]) UnmarshalYAML(node *yaml.Node) error {
	raw, ok, err := yamlRaw(node)
	if err != nil || !ok {
		return err
	}
	return m.assign(raw, nil)
}

// UnmarshalYAML implements yaml.Unmarshaler with the fallback rule.
func (a *Adapted[T]) UnmarshalYAML(node *yaml.Node) error {
	raw, ok, err := yamlRaw(node)
	if err != nil || !ok {
		return err
	}
	return a.adapt(raw)
}

// UnmarshalYAML implements yaml.Unmarshaler with the adapter described by N.
func (a *Annotated[T, N]) UnmarshalYAML(node *yaml.Node) error {
	raw, ok, err := yamlRaw(node)
	if err != nil || !ok {
		return err
	}
	return a.Member.assign(raw, a.adapter())
}

func yamlRaw(node *yaml.Node) (raw any, ok bool, err error) {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return nil, false, nil
	}
	// Decoding straight into T would truncate 3.5 to 3 for int kinds.
	if err := node.Decode(&raw); err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// UnmarshalTOML implements toml.Unmarshaler
func (m *Member[T]) UnmarshalTOML(data any) error {
	return m.assign(data, nil)
}

// UnmarshalTOML implements toml.Unmarshaler with the fallback rule.
func (a *Adapted[T]) UnmarshalTOML(data any) error {
	return a.adapt(data)
}

// UnmarshalTOML implements toml.Unmarshaler with the adapter described by N.
func (a *Annotated[T, N]) UnmarshalTOML(data any) error {
	return a.Member.assign(data, a.adapter())
}

// Scan implements sql.Scanner. NULL resets m to the zero Member. Pass
// Value() as the query argument to write a member back.
func (m *Member[T]) Scan(src any) error {
	raw, ok := sqlRaw(src)
	if !ok {
		*m = Member[T]{}
		return nil
	}
	return m.assign(raw, nil)
}

// Scan implements sql.Scanner with the fallback rule.
func (a *Adapted[T]) Scan(src any) error {
	raw, ok := sqlRaw(src)
	if !ok {
		*a = Adapted[T]{}
		return nil
	}
	return a.adapt(raw)
}

// Scan implements sql.Scanner with the adapter described by N.
func (a *Annotated[T, N]) Scan(src any) error {
	raw, ok := sqlRaw(src)
	if !ok {
		*a = Annotated[T, N]{}
		return nil
	}
	return a.Member.assign(raw, a.adapter())
}

// sqlRaw reads []byte columns as text. ok is false for NULL.
func sqlRaw(src any) (any, bool) {
	switch v := src.(type) {
	case nil:
		return nil, false
	case []byte:
		return string(v), true
	}
	return src, true
}
