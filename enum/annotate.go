package enum

import (
	"fmt"
	"reflect"
	"strings"
)

// TagName is the struct tag read by Annotate.
//
//	type Message struct {
//		Type  enum.Adapted[MessageType]   `json:"type" fbenum:"unknown=MISSING"`
//		Kinds []enum.Adapted[MessageType] `json:"kinds" fbenum:"unknown=MISSING"`
//	}
//
// The tag applies to the field and to the elements of slice, array, map and
// pointer fields. `fbenum:"-"` leaves a field alone. Decoders never read the
// tag: json.Unmarshal and friends name fallback members DefaultUnknownName
// until Annotate runs. Use Annotated to carry the name in the field type.
//
// Only Adapted, Annotated and Members of fallback enumerations accept the
// tag. A plain Member fails to decode unknown values, so a tag on it is
// rejected, as is a name equal to a declared member name.
const TagName = "fbenum"

type unknownRenamer interface {
	renameUnknown(name string)
	checkUnknownName(name string) error
}

type readapter interface {
	readapt(a *Adapter) error
}

var renamerType = reflect.TypeFor[unknownRenamer]()

// Annotate walks the struct dst points to and renames fallback members in
// fields tagged with an unknown-name. Declared members are never touched.
func Annotate(dst any) error {
	return AnnotateWith(nil, dst)
}

// AnnotateWith is Annotate preceded by a pass that applies a to every
// Adapted field: fallback members of plain enumerations take a's
// unknown-name, and values that needed casting fail with ErrCast when a
// disables it. Tags still win over a's unknown-name. A nil adapter skips the
// pass.
func AnnotateWith(a *Adapter, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &Error{Kind: KindTarget, Raw: dst}
	}
	if err := CheckTags(dst); err != nil {
		return err
	}
	w := walker{seen: make(map[uintptr]bool), adapter: a}
	return w.walk(rv.Elem(), "")
}

// CheckTags validates the fbenum tags of dst's type without touching any
// value, so callers can reject a misplaced tag before decoding.
func CheckTags(dst any) error {
	t := reflect.TypeOf(dst)
	if t == nil {
		return &Error{Kind: KindTarget, Raw: dst}
	}
	return checkTags(t, make(map[reflect.Type]bool))
}

// ParseTag returns the unknown-name carried by a fbenum tag value.
func ParseTag(tag string) (name string, skip bool, err error) {
	tag = strings.TrimSpace(tag)
	if tag == "-" {
		return "", true, nil
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(key) != "unknown" || strings.TrimSpace(value) == "" {
			return "", false, &Error{Kind: KindBadTag, Raw: tag}
		}
		name = strings.TrimSpace(value)
	}
	return name, false, nil
}

func checkTags(t reflect.Type, seen map[reflect.Type]bool) error {
	t = elemType(t)
	if t.Kind() != reflect.Struct || seen[t] || reflect.PointerTo(t).Implements(renamerType) {
		return nil
	}
	seen[t] = true

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !walkable(f) {
			continue
		}
		tag := f.Tag.Get(TagName)
		name, skip, err := ParseTag(tag)
		if err != nil {
			return err
		}
		if skip {
			continue
		}
		if name != "" {
			if leaf := elemType(f.Type); reflect.PointerTo(leaf).Implements(renamerType) {
				r := reflect.New(leaf).Interface().(unknownRenamer)
				if err := r.checkUnknownName(name); err != nil {
					return badTag(tag, err)
				}
			}
		}
		if err := checkTags(f.Type, seen); err != nil {
			return err
		}
	}
	return nil
}

// elemType strips pointer, slice, array and map layers from t.
func elemType(t reflect.Type) reflect.Type {
	for {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
			t = t.Elem()
		default:
			return t
		}
	}
}

// walkable reports whether f is visited. Embedded unexported structs are,
// since decoders fill their promoted exported fields.
func walkable(f reflect.StructField) bool {
	if f.IsExported() {
		return true
	}
	if !f.Anonymous {
		return false
	}
	t := f.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func badTag(tag string, err error) error {
	return &Error{Kind: KindBadTag, Raw: tag, Err: err}
}

type walker struct {
	seen    map[uintptr]bool
	adapter *Adapter
}

func (w walker) walk(v reflect.Value, name string) error {
	if v.CanAddr() && v.Addr().CanInterface() {
		if r, ok := v.Addr().Interface().(unknownRenamer); ok {
			return w.visit(r, name)
		}
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		if w.seen[v.Pointer()] {
			return nil
		}
		w.seen[v.Pointer()] = true
		return w.walk(v.Elem(), name)

	case reflect.Interface:
		if v.IsNil() || !v.CanInterface() {
			return nil
		}
		// Values held by interfaces are not addressable; copy, walk, store back.
		elem := v.Elem()
		cp := reflect.New(elem.Type()).Elem()
		cp.Set(elem)
		if err := w.walk(cp, name); err != nil {
			return err
		}
		if v.CanSet() {
			v.Set(cp)
		}
		return nil

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !walkable(f) {
				continue
			}
			fieldName, skip, err := ParseTag(f.Tag.Get(TagName))
			if err != nil {
				return err
			}
			if skip {
				continue
			}
			if err := w.walk(v.Field(i), fieldName); err != nil {
				return err
			}
		}
		return nil

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := w.walk(v.Index(i), name); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if v.IsNil() || !v.CanInterface() {
			return nil
		}
		iter := v.MapRange()
		type entry struct{ key, value reflect.Value }
		var updated []entry
		for iter.Next() {
			cp := reflect.New(v.Type().Elem()).Elem()
			cp.Set(iter.Value())
			if err := w.walk(cp, name); err != nil {
				return err
			}
			updated = append(updated, entry{iter.Key(), cp})
		}
		for _, e := range updated {
			v.SetMapIndex(e.key, e.value)
		}
		return nil
	}
	return nil
}

func (w walker) visit(r unknownRenamer, name string) error {
	if w.adapter != nil {
		if ra, ok := r.(readapter); ok {
			if err := ra.readapt(w.adapter); err != nil {
				return err
			}
		}
	}
	if name == "" {
		return nil
	}
	// Values reached through interfaces escape CheckTags.
	if err := r.checkUnknownName(name); err != nil {
		return badTag(fmt.Sprintf("unknown=%s", name), err)
	}
	r.renameUnknown(name)
	return nil
}
