// Package tui is the dashboard's terminal front end.
//
// The package is organized around a single Bubble Tea model that owns the
// event loop and delegates all layout decisions to other packages:
//
//   - Mouse events feed the interact.Controller state machine, which
//     previews and commits grid edits.
//   - Keyboard input is matched against a bubbles/key keymap.
//   - Poll results arrive through the scheduler's coalescing inbox and are
//     pumped into panels before each redraw.
//
// # Rendering
//
// The view is composited on a Canvas: the dotted grid background first,
// then every panel box in z-order, then gesture ghosts and the rubber-band
// box, and finally a one-line status bar. Panels draw themselves through
// their displayer's Render method; the tui only frames them.
//
// # Forms
//
// Adding or editing a panel opens a huh form as a sub-model. The form runs
// in two stages: pick a source and a compatible displayer, then fill in the
// option fields generated from the pair's schemas. While a form is open it
// captures all input; the dashboard keeps polling underneath.
package tui
