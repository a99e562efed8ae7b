package enum

// Adapter applies the fallback rule at a decoding boundary to enumerations
// that may not be fallback-aware themselves. It is immutable once built.
type Adapter struct {
	settings settings
}

var defaultAdapter = NewAdapter()

// NewAdapter builds an adapter. Without options it names fallback members
// DefaultUnknownName and casts raw inputs to the backing type.
func NewAdapter(opts ...Option) *Adapter {
	s := newSettings(opts)
	s.fallback = true
	if s.unknownName == "" {
		s.unknownName = DefaultUnknownName
	}
	return &Adapter{settings: s}
}

// DefaultAdapter returns the adapter used by Adapted fields.
func DefaultAdapter() *Adapter {
	return defaultAdapter
}

// UnknownName returns the name given to fallback members
func (a *Adapter) UnknownName() string {
	return a.settings.unknownName
}

// TypeCasting reports whether raw inputs are converted to the backing type
func (a *Adapter) TypeCasting() bool {
	return a.settings.casting
}

// Coerce turns raw into a member of e. Members of e are returned unchanged.
// A fallback enumeration first applies its own construction, so its
// unknown-name wins. Otherwise raw is converted with the adapter's casting
// settings and matched against the declared members; an unmatched value
// becomes a fallback member named a.UnknownName(). Inputs that cannot be
// converted to T still fail with ErrCast, and an unknown-name equal to a
// declared member name fails with ErrNameConflict. A nil adapter means
// DefaultAdapter().
func Coerce[T comparable](a *Adapter, e *Enum[T], raw any) (Member[T], error) {
	if a == nil {
		a = defaultAdapter
	}
	if m, ok := e.memberOf(raw); ok {
		return m, nil
	}
	if e.IsFallback() {
		if m, err := e.OfAny(raw); err == nil {
			return m, nil
		}
	}

	v, err := toBacking[T](&a.settings, e.name, raw)
	if err != nil {
		return Member[T]{}, err
	}
	if m, ok := e.Lookup(v); ok {
		return m, nil
	}
	if e.IsFallback() {
		return e.Of(v)
	}
	if err := e.checkUnknownName(a.settings.unknownName); err != nil {
		return Member[T]{}, err
	}
	return e.synthesize(v, a.settings.unknownName, a.settings.logger), nil
}

// CoerceFunc binds a and e into a coercion hook for decoders and validation
// pipelines.
func CoerceFunc[T comparable](a *Adapter, e *Enum[T]) func(raw any) (Member[T], error) {
	return func(raw any) (Member[T], error) {
		return Coerce(a, e, raw)
	}
}
