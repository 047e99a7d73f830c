// Package plugin defines the contracts between the dashboard and its data
// sources and displayers, and the registry that binds type names to
// factories. Registration is a closed table populated once at startup;
// after that the registry is read-only and safe for concurrent reads.
package plugin

import (
	"fmt"
	"sort"

	"github.com/gridsens/gridsens/internal/errors"
)

// SourceInfo describes a registered source type.
type SourceInfo struct {
	// Type is the stable key panels and layouts refer to ("cpu", "clock").
	Type string

	// Name is the human-readable label shown in pickers.
	Name string

	// Shape is the form of data every instance of this source produces.
	Shape Shape

	// Schema declares the source's configuration options.
	Schema Schema

	// New builds an instance from normalized options.
	New func(opts map[string]any) (Source, error)
}

// DisplayerInfo describes a registered displayer type.
type DisplayerInfo struct {
	Type    string
	Name    string
	Accepts []Shape
	Schema  Schema
	New     func(opts map[string]any) (Displayer, error)
}

// CanRender reports whether the displayer accepts the given shape.
func (d DisplayerInfo) CanRender(s Shape) bool {
	for _, a := range d.Accepts {
		if a == s {
			return true
		}
	}
	return false
}

// Registry is the closed table of source and displayer types. Register
// everything during startup, then treat it as immutable.
type Registry struct {
	sources    map[string]SourceInfo
	displayers map[string]DisplayerInfo
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources:    make(map[string]SourceInfo),
		displayers: make(map[string]DisplayerInfo),
	}
}

// RegisterSource adds a source type. Registering the same type key twice is
// a duplicate-type error, which callers treat as fatal at startup.
func (r *Registry) RegisterSource(info SourceInfo) error {
	if info.Type == "" || info.New == nil {
		return errors.New(errors.ErrInternal,
			"Source registration needs a type key and a factory", "")
	}
	if _, exists := r.sources[info.Type]; exists {
		return errors.New(errors.ErrDuplicateType,
			fmt.Sprintf("Source type '%s' is already registered", info.Type),
			"Every source type key must be registered exactly once")
	}
	r.sources[info.Type] = info
	return nil
}

// RegisterDisplayer adds a displayer type, with the same duplicate rules as
// RegisterSource. A displayer must accept at least one shape.
func (r *Registry) RegisterDisplayer(info DisplayerInfo) error {
	if info.Type == "" || info.New == nil {
		return errors.New(errors.ErrInternal,
			"Displayer registration needs a type key and a factory", "")
	}
	if len(info.Accepts) == 0 {
		return errors.New(errors.ErrInternal,
			fmt.Sprintf("Displayer type '%s' accepts no shapes", info.Type), "")
	}
	if _, exists := r.displayers[info.Type]; exists {
		return errors.New(errors.ErrDuplicateType,
			fmt.Sprintf("Displayer type '%s' is already registered", info.Type),
			"Every displayer type key must be registered exactly once")
	}
	r.displayers[info.Type] = info
	return nil
}

// Source looks up a source type.
func (r *Registry) Source(typ string) (SourceInfo, bool) {
	info, ok := r.sources[typ]
	return info, ok
}

// Displayer looks up a displayer type.
func (r *Registry) Displayer(typ string) (DisplayerInfo, bool) {
	info, ok := r.displayers[typ]
	return info, ok
}

// Sources returns all registered sources sorted by type key.
func (r *Registry) Sources() []SourceInfo {
	out := make([]SourceInfo, 0, len(r.sources))
	for _, info := range r.sources {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Displayers returns all registered displayers sorted by type key.
func (r *Registry) Displayers() []DisplayerInfo {
	out := make([]DisplayerInfo, 0, len(r.displayers))
	for _, info := range r.displayers {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// CompatibleDisplayers returns the displayers able to render the given
// source type's shape, sorted by type key.
func (r *Registry) CompatibleDisplayers(sourceType string) ([]DisplayerInfo, error) {
	src, ok := r.sources[sourceType]
	if !ok {
		return nil, r.unknownSource(sourceType)
	}
	var out []DisplayerInfo
	for _, info := range r.Displayers() {
		if info.CanRender(src.Shape) {
			out = append(out, info)
		}
	}
	return out, nil
}

// NewSource instantiates a source type with the given options. The options
// are validated against the schema and merged over its defaults before the
// factory runs.
func (r *Registry) NewSource(typ string, opts map[string]any) (Source, error) {
	info, ok := r.sources[typ]
	if !ok {
		return nil, r.unknownSource(typ)
	}
	if err := info.Schema.Validate(opts); err != nil {
		return nil, err
	}
	return info.New(info.Schema.Merged(opts))
}

// NewDisplayer instantiates a displayer type with the given options.
func (r *Registry) NewDisplayer(typ string, opts map[string]any) (Displayer, error) {
	info, ok := r.displayers[typ]
	if !ok {
		return nil, errors.New(errors.ErrUnknownType,
			fmt.Sprintf("No displayer registered as '%s'", typ),
			"Run 'gridsens check' to list registered types")
	}
	if err := info.Schema.Validate(opts); err != nil {
		return nil, err
	}
	return info.New(info.Schema.Merged(opts))
}

func (r *Registry) unknownSource(typ string) error {
	return errors.New(errors.ErrUnknownType,
		fmt.Sprintf("No source registered as '%s'", typ),
		"Run 'gridsens check' to list registered types")
}
