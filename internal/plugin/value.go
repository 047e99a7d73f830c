package plugin

import (
	"fmt"
	"time"
)

// ValueKind discriminates the payload carried by a Value.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindScalar
	KindText
	KindSeries
	KindFields
)

// Field is one labeled row of a fields-shaped value.
type Field struct {
	Label string
	Value string
}

// Value is a single fetched sample. Exactly one payload is meaningful,
// selected by Kind; the zero Value has KindNone and renders as "no data".
type Value struct {
	Kind   ValueKind
	Scalar float64
	Text   string
	Series []float64
	Fields []Field
	Unit   string
	At     time.Time
}

// ScalarValue builds a scalar sample with a unit suffix ("%", "°C", "MHz").
func ScalarValue(v float64, unit string) Value {
	return Value{Kind: KindScalar, Scalar: v, Unit: unit, At: time.Now()}
}

// TextValue builds a text sample.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s, At: time.Now()}
}

// SeriesValue builds a series sample, oldest first.
func SeriesValue(samples []float64, unit string) Value {
	return Value{Kind: KindSeries, Series: samples, Unit: unit, At: time.Now()}
}

// FieldsValue builds a fields sample.
func FieldsValue(fields []Field) Value {
	return Value{Kind: KindFields, Fields: fields, At: time.Now()}
}

// IsZero reports whether the value carries no payload.
func (v Value) IsZero() bool {
	return v.Kind == KindNone
}

// Display formats the value for a single-line surface.
func (v Value) Display() string {
	switch v.Kind {
	case KindScalar:
		if v.Unit == "%" {
			return fmt.Sprintf("%.1f%%", v.Scalar)
		}
		if v.Unit != "" {
			return fmt.Sprintf("%.1f %s", v.Scalar, v.Unit)
		}
		return fmt.Sprintf("%.1f", v.Scalar)
	case KindText:
		return v.Text
	case KindSeries:
		if len(v.Series) == 0 {
			return "no samples"
		}
		last := v.Series[len(v.Series)-1]
		if v.Unit != "" {
			return fmt.Sprintf("%.1f %s", last, v.Unit)
		}
		return fmt.Sprintf("%.1f", last)
	case KindFields:
		return fmt.Sprintf("%d fields", len(v.Fields))
	default:
		return "no data"
	}
}
