// Package binding decodes request payloads into structs whose fields carry
// enumeration members, then applies fbenum annotations and validation.
package binding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/upb/fbenum/enum"
	"github.com/upb/fbenum/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultMaxBodyBytes bounds payloads when Config.MaxBodyBytes is not set.
const DefaultMaxBodyBytes int64 = 1 << 20

// Format identifies a payload encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Config holds decoding limits and the adapter applied to enum.Adapted
// fields. A nil Adapter keeps enum.DefaultAdapter().
type Config struct {
	MaxBodyBytes          int64
	DisallowUnknownFields bool
	Adapter               *enum.Adapter
}

// Binder runs decode, annotate and validate over a payload.
type Binder struct {
	validator *validation.Validator
	config    Config
	logger    *zap.Logger
}

// New creates a Binder. A nil validator skips validation.
func New(v *validation.Validator, cfg Config, logger *zap.Logger) *Binder {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Binder{
		validator: v,
		config:    cfg,
		logger:    logger,
	}
}

// JSON binds a JSON payload
func (b *Binder) JSON(r io.Reader, dst any) error {
	return b.Decode(FormatJSON, r, dst)
}

// YAML binds a YAML payload
func (b *Binder) YAML(r io.Reader, dst any) error {
	return b.Decode(FormatYAML, r, dst)
}

// TOML binds a TOML payload
func (b *Binder) TOML(r io.Reader, dst any) error {
	return b.Decode(FormatTOML, r, dst)
}

// Decode reads r in the given format into dst, applies the configured
// adapter and fbenum tags to enumeration fields and validates the result.
// Input problems are reported as *validation.ValidationError; a misplaced or
// malformed fbenum tag is rejected before reading.
func (b *Binder) Decode(format Format, r io.Reader, dst any) error {
	if err := enum.CheckTags(dst); err != nil {
		return fmt.Errorf("binding: %w", err)
	}
	data, err := b.read(r)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		err = b.decodeJSON(data, dst)
	case FormatYAML:
		err = b.decodeYAML(data, dst)
	case FormatTOML:
		err = b.decodeTOML(data, dst)
	default:
		return fmt.Errorf("binding: unsupported format %q", format)
	}
	if err != nil {
		b.logger.Debug("failed to decode payload",
			zap.String("format", string(format)),
			zap.Error(err))
		return err
	}

	if err := enum.AnnotateWith(b.config.Adapter, dst); err != nil {
		if enum.IsCastError(err) {
			return validation.NewDecodeError("", err)
		}
		return fmt.Errorf("binding: %w", err)
	}

	if b.validator != nil {
		if err := b.validator.Struct(dst); err != nil {
			return err
		}
	}
	return nil
}

func (b *Binder) read(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, b.config.MaxBodyBytes+1))
	if err != nil {
		return nil, validation.NewDecodeError("", err)
	}
	if int64(len(data)) > b.config.MaxBodyBytes {
		return nil, &validation.ValidationError{
			Message: fmt.Sprintf("Request body exceeds %d bytes", b.config.MaxBodyBytes),
			Fields:  map[string]string{},
		}
	}
	return data, nil
}

func (b *Binder) decodeJSON(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if b.config.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return emptyBody()
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return validation.NewDecodeError(typeErr.Field, err)
		}
		return validation.NewDecodeError("", err)
	}
	if dec.More() {
		return validation.NewDecodeError("", errors.New("unexpected data after top-level value"))
	}
	return nil
}

func (b *Binder) decodeYAML(data []byte, dst any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(b.config.DisallowUnknownFields)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return emptyBody()
		}
		return validation.NewDecodeError("", err)
	}
	return nil
}

func (b *Binder) decodeTOML(data []byte, dst any) error {
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(dst)
	if err != nil {
		var parseErr toml.ParseError
		if errors.As(err, &parseErr) {
			return validation.NewDecodeError("", errors.New(parseErr.Message))
		}
		return validation.NewDecodeError("", err)
	}
	if undecoded := md.Undecoded(); b.config.DisallowUnknownFields && len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		fields := make(map[string]string, len(keys))
		for _, k := range keys {
			fields[k] = fmt.Sprintf("%s is not a known field", k)
		}
		return &validation.ValidationError{
			Message: "Invalid request body",
			Fields:  fields,
			Err:     fmt.Errorf("unknown keys: %s", strings.Join(keys, ", ")),
		}
	}
	return nil
}

func emptyBody() error {
	return &validation.ValidationError{
		Message: "Request body is empty",
		Fields:  map[string]string{},
		Err:     io.EOF,
	}
}

// FormatFromContentType maps a Content-Type header value to a Format.
func FormatFromContentType(contentType string) (Format, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return FormatJSON, true
	case mediaType == "application/yaml", mediaType == "application/x-yaml", mediaType == "text/yaml":
		return FormatYAML, true
	case mediaType == "application/toml":
		return FormatTOML, true
	}
	return "", false
}
