package plugin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gridsens/gridsens/internal/errors"
)

// OptionType is the declared type of a configuration option.
type OptionType string

const (
	OptionString OptionType = "string"
	OptionInt    OptionType = "int"
	OptionFloat  OptionType = "float"
	OptionBool   OptionType = "bool"
	OptionSelect OptionType = "select"
)

// Option declares one configurable knob of a source or displayer. Numeric
// bounds apply only when Min < Max; Choices applies only to select options.
type Option struct {
	Key     string
	Label   string
	Type    OptionType
	Default any
	Min     float64
	Max     float64
	Step    float64
	Choices []string
}

// Schema is the ordered list of options a source or displayer accepts.
type Schema []Option

// Find returns the option declared for key.
func (s Schema) Find(key string) (Option, bool) {
	for _, opt := range s {
		if opt.Key == key {
			return opt, true
		}
	}
	return Option{}, false
}

// Validate checks the provided options against the schema. Keys the schema
// does not declare are ignored, never an error: layouts written by newer
// builds must keep loading. Declared keys with values of the wrong type or
// outside their bounds fail with an option-value error.
func (s Schema) Validate(opts map[string]any) error {
	for key, raw := range opts {
		opt, ok := s.Find(key)
		if !ok {
			continue
		}
		if _, err := opt.normalize(raw); err != nil {
			return err
		}
	}
	return nil
}

// Merged resolves the effective option values: schema defaults overlaid with
// the provided values, normalized to their declared Go types (int, float64,
// bool, string). Undeclared keys are dropped. Call Validate first; Merged
// falls back to the default on values it cannot normalize.
func (s Schema) Merged(opts map[string]any) map[string]any {
	out := make(map[string]any, len(s))
	for _, opt := range s {
		out[opt.Key] = opt.Default
		raw, ok := opts[opt.Key]
		if !ok {
			continue
		}
		v, err := opt.normalize(raw)
		if err != nil {
			continue
		}
		out[opt.Key] = v
	}
	return out
}

// Normalized coerces the provided values to their declared Go types without
// filling in defaults: YAML hands back 80 where the schema says float, and a
// restored panel must compare equal to the one that was saved. Undeclared
// keys pass through untouched, as do values that fail to normalize; Validate
// reports those.
func (s Schema) Normalized(opts map[string]any) map[string]any {
	if len(opts) == 0 {
		return opts
	}
	out := make(map[string]any, len(opts))
	for key, raw := range opts {
		out[key] = raw
		opt, ok := s.Find(key)
		if !ok {
			continue
		}
		if v, err := opt.normalize(raw); err == nil {
			out[key] = v
		}
	}
	return out
}

// normalize coerces a raw option value (from YAML, a form, or code) to the
// option's declared type and checks its bounds.
func (o Option) normalize(raw any) (any, error) {
	switch o.Type {
	case OptionString:
		str, ok := raw.(string)
		if !ok {
			return nil, o.badValue(raw, "a string")
		}
		return str, nil

	case OptionSelect:
		str, ok := raw.(string)
		if !ok {
			return nil, o.badValue(raw, "a string")
		}
		for _, c := range o.Choices {
			if c == str {
				return str, nil
			}
		}
		return nil, errors.New(errors.ErrOptionValue,
			fmt.Sprintf("Option '%s' has no choice %q", o.Key, str),
			fmt.Sprintf("Pick one of: %s", strings.Join(o.Choices, ", ")))

	case OptionBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, o.badValue(raw, "true or false")
			}
			return b, nil
		}
		return nil, o.badValue(raw, "true or false")

	case OptionInt:
		n, ok := toFloat(raw)
		if !ok || n != math.Trunc(n) {
			return nil, o.badValue(raw, "a whole number")
		}
		if err := o.checkBounds(n); err != nil {
			return nil, err
		}
		return int(n), nil

	case OptionFloat:
		n, ok := toFloat(raw)
		if !ok {
			return nil, o.badValue(raw, "a number")
		}
		if err := o.checkBounds(n); err != nil {
			return nil, err
		}
		return n, nil
	}

	return nil, errors.New(errors.ErrInternal,
		fmt.Sprintf("Option '%s' has unknown type %q", o.Key, o.Type), "")
}

func (o Option) checkBounds(n float64) error {
	if o.Min >= o.Max {
		return nil
	}
	if n < o.Min || n > o.Max {
		return errors.New(errors.ErrOptionValue,
			fmt.Sprintf("Option '%s' must be between %g and %g, got %g", o.Key, o.Min, o.Max, n),
			"Adjust the option to a value inside its allowed range")
	}
	return nil
}

func (o Option) badValue(raw any, want string) error {
	return errors.New(errors.ErrOptionValue,
		fmt.Sprintf("Option '%s' must be %s, got %T", o.Key, want, raw),
		"Fix the option value in the panel settings")
}

// toFloat widens any numeric value YAML or a form can hand us. Strings are
// parsed so form inputs round-trip without a separate path.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// StringOpt reads a normalized string option, falling back to def.
func StringOpt(opts map[string]any, key, def string) string {
	if v, ok := opts[key].(string); ok {
		return v
	}
	return def
}

// IntOpt reads a normalized int option, falling back to def.
func IntOpt(opts map[string]any, key string, def int) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// FloatOpt reads a normalized float option, falling back to def.
func FloatOpt(opts map[string]any, key string, def float64) float64 {
	switch v := opts[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// BoolOpt reads a normalized bool option, falling back to def.
func BoolOpt(opts map[string]any, key string, def bool) bool {
	if v, ok := opts[key].(bool); ok {
		return v
	}
	return def
}
