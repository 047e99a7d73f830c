package plugin

import "context"

// Size is a rendering area in terminal cells.
type Size struct {
	W int
	H int
}

// Style carries the per-panel appearance settings a displayer may honor.
type Style struct {
	Title     string
	ShowTitle bool
	Accent    string // hex color; empty means the theme default
	Border    string // "rounded", "normal", "thick", or "none"
}

// Source produces values when polled. Fetch must respect ctx cancellation
// and may block up to the scheduler's fetch timeout; it is called from a
// worker goroutine, never the UI goroutine, and never concurrently with
// itself for the same instance.
type Source interface {
	// Fetch retrieves the current value. A transient error means the next
	// poll should retry; a permanent error stops polling until the panel's
	// source is reconfigured.
	Fetch(ctx context.Context) (Value, error)

	// Shape declares the form of every value this instance produces.
	Shape() Shape

	// Close releases anything the source holds. Called once, on the UI
	// goroutine, after its poll task has fully stopped.
	Close() error
}

// Displayer turns values into terminal output. All methods are called from
// the UI goroutine only.
type Displayer interface {
	// Push feeds the displayer's input slot with a fresh value. Stateful
	// displayers accumulate here (e.g. a graph appending to its history).
	Push(v Value)

	// Render draws the current state into an area of the given size using
	// the panel's latest value and style. It must not mutate accumulated
	// state, so redraws are free.
	Render(area Size, v Value, st Style) string

	// Reset clears accumulated state, used when the panel's source changes.
	Reset()

	// Close releases anything the displayer holds.
	Close() error
}
