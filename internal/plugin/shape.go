package plugin

// Shape describes the form of the data a source produces. Displayers declare
// which shapes they can render; a panel may only pair a source with a
// displayer whose accepted shapes include the source's shape.
type Shape string

const (
	// ShapePercent is a single value on a 0-100 scale.
	ShapePercent Shape = "percent"

	// ShapeTemperature is a single value in degrees Celsius.
	ShapeTemperature Shape = "temperature"

	// ShapeFrequency is a single value in MHz.
	ShapeFrequency Shape = "frequency"

	// ShapeText is a short free-form string.
	ShapeText Shape = "text"

	// ShapeSeries is a window of numeric samples, oldest first.
	ShapeSeries Shape = "series"

	// ShapeFields is a set of labeled name/value rows.
	ShapeFields Shape = "fields"
)

// Scalar reports whether the shape carries a single numeric value.
func (s Shape) Scalar() bool {
	switch s {
	case ShapePercent, ShapeTemperature, ShapeFrequency:
		return true
	}
	return false
}

// AllShapes lists every shape, in display order.
func AllShapes() []Shape {
	return []Shape{
		ShapePercent,
		ShapeTemperature,
		ShapeFrequency,
		ShapeText,
		ShapeSeries,
		ShapeFields,
	}
}
