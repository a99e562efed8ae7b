package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/upb/fbenum/enum"
	"go.uber.org/zap"
)

// TagKnown is the validation tag that rejects fallback members.
const TagKnown = "enum_known"

// rawValuer is implemented by enum.Member, enum.Adapted and enum.Annotated.
type rawValuer interface {
	RawValue() any
	IsZero() bool
}

var rawValuerType = reflect.TypeFor[rawValuer]()

// Validator runs go-playground validation over structs whose fields carry
// enumeration members. Members are validated by their backing value, so
// `validate:"required,oneof=..."` works on them as on the raw type.
type Validator struct {
	validate *validator.Validate
	logger   *zap.Logger

	mu         sync.RWMutex
	registered map[reflect.Type]bool
	scanned    map[reflect.Type]bool
}

// New creates a Validator that knows every enumeration declared so far.
// Enumerations declared later need RegisterEnum before validating.
func New(logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation(TagKnown, validateKnown); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", TagKnown, err))
	}

	v := &Validator{
		validate:   validate,
		logger:     logger,
		registered: make(map[reflect.Type]bool),
		scanned:    make(map[reflect.Type]bool),
	}
	for _, d := range enum.Registered() {
		v.RegisterEnum(d)
	}
	return v
}

// RegisterEnum makes the validator see fields of d's member types as their
// backing value.
func (v *Validator) RegisterEnum(d enum.Descriptor) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.registered[d.Type()] {
		return
	}
	v.registered[d.Type()] = true
	v.validate.RegisterCustomTypeFunc(memberValue, d.FieldTypes()...)
	v.logger.Debug("registered enum for validation", zap.String("enum", d.Name()))
}

// registerFieldTypes registers the member field types reachable from t that
// no Descriptor lists, such as enum.Annotated instantiations.
func (v *Validator) registerFieldTypes(t reflect.Type) {
	if t == nil {
		return
	}
	v.mu.RLock()
	done := v.scanned[t]
	v.mu.RUnlock()
	if done {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.scanFieldTypes(t)
}

func (v *Validator) scanFieldTypes(t reflect.Type) {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Map {
		t = t.Elem()
	}
	if v.scanned[t] {
		return
	}
	v.scanned[t] = true

	if t.Kind() != reflect.Struct {
		return
	}
	if t.Implements(rawValuerType) {
		v.validate.RegisterCustomTypeFunc(memberValue, reflect.New(t).Elem().Interface())
		return
	}
	for i := 0; i < t.NumField(); i++ {
		v.scanFieldTypes(t.Field(i).Type)
	}
}

// Struct validates s and returns a *ValidationError on failure.
func (v *Validator) Struct(s any) error {
	v.registerFieldTypes(reflect.TypeOf(s))
	v.mu.RLock()
	defer v.mu.RUnlock()

	if err := v.validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			v.logger.Debug("validation failed", zap.Int("fields", len(validationErrors)))
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// Var validates a single value against tag.
func (v *Validator) Var(field any, tag string) error {
	v.registerFieldTypes(reflect.TypeOf(field))
	v.mu.RLock()
	defer v.mu.RUnlock()

	if err := v.validate.Var(field, tag); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// memberValue exposes the backing value of a member field. The zero member
// maps to nil so `required` rejects unset fields.
func memberValue(field reflect.Value) any {
	m, ok := field.Interface().(rawValuer)
	if !ok || m.IsZero() {
		return nil
	}
	return m.RawValue()
}

func validateKnown(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.IsValid() {
		return false
	}
	d, ok := enum.DescriptorOf(field.Type())
	if !ok {
		return false
	}
	return d.KnownValue(field.Interface())
}

// ValidationError wraps validation errors with structured details
type ValidationError struct {
	Message string
	Fields  map[string]string
	Err     error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements errors.Unwrap
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string)
	for _, err := range errs {
		field := err.Field()
		tag := err.Tag()

		switch tag {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
		case "uuid":
			fields[field] = fmt.Sprintf("%s must be a valid UUID", field)
		case "min":
			fields[field] = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			fields[field] = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "gte":
			fields[field] = fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
		case "lte":
			fields[field] = fmt.Sprintf("%s must be less than or equal to %s", field, err.Param())
		case "oneof":
			fields[field] = fmt.Sprintf("%s must be one of: %s", field, err.Param())
		case TagKnown:
			fields[field] = fmt.Sprintf("%s has unknown value %v", field, err.Value())
		default:
			fields[field] = fmt.Sprintf("%s validation failed on '%s' tag", field, tag)
		}
	}

	return &ValidationError{
		Message: "Validation failed",
		Fields:  fields,
		Err:     errs,
	}
}

// NewDecodeError reports input that could not be decoded. Enumeration errors
// are attributed to the field they came from when known.
func NewDecodeError(field string, err error) *ValidationError {
	fields := make(map[string]string)
	if field != "" {
		var enumErr *enum.Error
		if errors.As(err, &enumErr) {
			fields[field] = fmt.Sprintf("%s: %v", field, strings.TrimPrefix(enumErr.Error(), "enum: "))
		} else {
			fields[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return &ValidationError{
		Message: "Invalid request body",
		Fields:  fields,
		Err:     err,
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// GetValidationFields extracts field errors from a ValidationError
func GetValidationFields(err error) map[string]string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}
	return nil
}

// ValidateUUID validates that a string is a valid UUID
func ValidateUUID(s string) error {
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("invalid UUID format: %s", s)
	}
	return nil
}
