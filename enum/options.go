package enum

import "go.uber.org/zap"

// DefaultUnknownName is the name given to fallback members unless configured otherwise.
const DefaultUnknownName = "UNKNOWN"

// CastFunc converts a raw input before it is matched against declared
// members. The result must hold a value of the enumeration's backing type
// (or one convertible to it without loss).
type CastFunc func(raw any) (any, error)

// Option configures an Enum or an Adapter.
type Option func(*settings)

type settings struct {
	fallback    bool
	unknownName string
	casting     bool
	caster      CastFunc
	logger      *zap.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		unknownName: DefaultUnknownName,
		casting:     true,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Fallback makes an enumeration synthesize fallback members for unknown
// values instead of failing. The unknown-name stays DefaultUnknownName.
func Fallback() Option {
	return func(s *settings) {
		s.fallback = true
	}
}

// WithUnknownName sets the name of synthesized fallback members. On an
// enumeration it also turns fallback construction on.
func WithUnknownName(name string) Option {
	return func(s *settings) {
		s.fallback = true
		s.unknownName = name
	}
}

// WithoutTypeCasting disables conversion of raw inputs. Only values of the
// backing type, or of a type with the same underlying kind, are accepted.
func WithoutTypeCasting() Option {
	return func(s *settings) {
		s.casting = false
	}
}

// WithTypeCasting toggles conversion of raw inputs.
func WithTypeCasting(enabled bool) Option {
	return func(s *settings) {
		s.casting = enabled
	}
}

// WithCaster replaces the default kind-based conversion with fn.
func WithCaster(fn CastFunc) Option {
	return func(s *settings) {
		s.casting = true
		s.caster = fn
	}
}

// WithLogger sets the logger used to report substituted values at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}
