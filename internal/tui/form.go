package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/gridsens/gridsens/internal/errors"
	"github.com/gridsens/gridsens/internal/panel"
	"github.com/gridsens/gridsens/internal/plugin"
	"github.com/gridsens/gridsens/internal/workspace"
)

// formWidth keeps the overlay readable on wide terminals.
const formWidth = 48

// panelForm collects everything needed to create or reconfigure a panel.
// It runs in two stages: pick the source/displayer pair, then fill in the
// option fields generated from the pair's schemas. Stage two is built only
// after stage one completes, because the option set depends on the picks.
type panelForm struct {
	ws     *workspace.Workspace
	editID string

	stage int
	form  *huh.Form

	sourceType    string
	displayerType string
	title         string
	interval      string

	sourceText map[string]*string
	sourceBool map[string]*bool
	dispText   map[string]*string
	dispBool   map[string]*bool

	err error
}

// newPanelForm builds the stage-one form. An empty editID means "create";
// otherwise the form is prefilled from the panel and its source type is
// fixed (reconfiguring swaps options and displayers, never the source
// type itself).
func newPanelForm(ws *workspace.Workspace, editID string) (*panelForm, error) {
	f := &panelForm{
		ws:         ws,
		editID:     editID,
		sourceText: make(map[string]*string),
		sourceBool: make(map[string]*bool),
		dispText:   make(map[string]*string),
		dispBool:   make(map[string]*bool),
	}

	var fields []huh.Field
	if editID == "" {
		sources := ws.Plugins().Sources()
		if len(sources) == 0 {
			return nil, errors.New(errors.ErrInternal,
				"No source types registered", "")
		}
		opts := make([]huh.Option[string], 0, len(sources))
		for _, info := range sources {
			opts = append(opts, huh.NewOption(info.Name, info.Type))
		}
		f.sourceType = sources[0].Type
		fields = append(fields, huh.NewSelect[string]().
			Title("Source").
			Options(opts...).
			Value(&f.sourceType))
	} else {
		p, ok := ws.Panels().Get(editID)
		if !ok {
			return nil, errors.New(errors.ErrInternal,
				fmt.Sprintf("No panel %s to edit", editID), "")
		}
		f.sourceType = p.SourceType
		f.displayerType = p.DisplayerType
		f.title = p.Style.Title
		if p.Interval > 0 {
			f.interval = p.Interval.String()
		}
	}

	fields = append(fields,
		huh.NewSelect[string]().
			Title("Displayer").
			OptionsFunc(f.displayerOptions, &f.sourceType).
			Value(&f.displayerType),
		huh.NewInput().
			Title("Title").
			Placeholder("defaults to the source name").
			Value(&f.title),
		huh.NewInput().
			Title("Poll interval").
			Placeholder("blank for the default").
			Validate(validateInterval).
			Value(&f.interval),
	)

	f.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(formWidth)
	return f, nil
}

// displayerOptions lists the displayers compatible with the currently
// selected source. Recomputed by huh whenever the source pick changes.
func (f *panelForm) displayerOptions() []huh.Option[string] {
	compatible, err := f.ws.Plugins().CompatibleDisplayers(f.sourceType)
	if err != nil {
		return nil
	}
	opts := make([]huh.Option[string], 0, len(compatible))
	for _, info := range compatible {
		opts = append(opts, huh.NewOption(info.Name, info.Type))
	}
	return opts
}

func validateInterval(s string) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("not a duration (try 2s or 500ms)")
	}
	if d < 100*time.Millisecond {
		return fmt.Errorf("minimum interval is 100ms")
	}
	return nil
}

// Init starts the current stage's form.
func (f *panelForm) Init() tea.Cmd {
	return f.form.Init()
}

// View renders the current stage.
func (f *panelForm) View() string {
	return f.form.View()
}

// Err returns the submit outcome once the form reports done.
func (f *panelForm) Err() error { return f.err }

// Update advances the form. It reports done=true when the form is
// finished, aborted, or submitted; the caller then closes the overlay and
// surfaces Err.
func (f *panelForm) Update(msg tea.Msg) (bool, tea.Cmd) {
	model, cmd := f.form.Update(msg)
	if fm, ok := model.(*huh.Form); ok {
		f.form = fm
	}

	switch f.form.State {
	case huh.StateAborted:
		return true, cmd

	case huh.StateCompleted:
		if f.stage == 0 && f.buildOptionStage() {
			f.stage = 1
			return false, f.form.Init()
		}
		f.err = f.submit()
		return true, cmd
	}
	return false, cmd
}

// buildOptionStage generates the stage-two form from the schemas of the
// chosen source and displayer. Returns false when neither declares any
// options, in which case the caller submits straight away.
func (f *panelForm) buildOptionStage() bool {
	var fields []huh.Field

	if info, ok := f.ws.Plugins().Source(f.sourceType); ok {
		fields = append(fields, f.optionFields(info.Schema,
			f.currentSourceOpts(), f.sourceText, f.sourceBool)...)
	}
	if info, ok := f.ws.Plugins().Displayer(f.displayerType); ok {
		fields = append(fields, f.optionFields(info.Schema,
			f.currentDisplayerOpts(), f.dispText, f.dispBool)...)
	}
	if len(fields) == 0 {
		return false
	}

	f.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(formWidth)
	return true
}

func (f *panelForm) currentSourceOpts() map[string]any {
	if p, ok := f.ws.Panels().Get(f.editID); ok {
		return p.SourceOpts
	}
	return nil
}

func (f *panelForm) currentDisplayerOpts() map[string]any {
	if p, ok := f.ws.Panels().Get(f.editID); ok && p.DisplayerType == f.displayerType {
		return p.DisplayerOpts
	}
	return nil
}

// optionFields builds one huh field per schema option, prefilled with the
// panel's current value or the schema default. Collected values land in
// the text/bool maps for submit to normalize.
func (f *panelForm) optionFields(schema plugin.Schema, current map[string]any,
	text map[string]*string, bools map[string]*bool) []huh.Field {

	merged := schema.Merged(current)
	fields := make([]huh.Field, 0, len(schema))
	for _, opt := range schema {
		opt := opt
		switch opt.Type {
		case plugin.OptionBool:
			v := plugin.BoolOpt(merged, opt.Key, false)
			bools[opt.Key] = &v
			fields = append(fields, huh.NewConfirm().
				Title(opt.Label).
				Value(&v))

		case plugin.OptionSelect:
			v := plugin.StringOpt(merged, opt.Key, "")
			text[opt.Key] = &v
			fields = append(fields, huh.NewSelect[string]().
				Title(opt.Label).
				Options(huh.NewOptions(opt.Choices...)...).
				Value(&v))

		default:
			v := fmt.Sprintf("%v", merged[opt.Key])
			text[opt.Key] = &v
			fields = append(fields, huh.NewInput().
				Title(opt.Label).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					return plugin.Schema{opt}.Validate(map[string]any{opt.Key: s})
				}).
				Value(&v))
		}
	}
	return fields
}

// submit applies the collected values: a create for new panels, a
// reconfigure for edits. Option values typed as strings are normalized
// back to their declared types through the schema before they are stored,
// so saved layouts carry real numbers and booleans.
func (f *panelForm) submit() error {
	interval, _ := time.ParseDuration(f.interval)

	var sourceOpts, dispOpts map[string]any
	if info, ok := f.ws.Plugins().Source(f.sourceType); ok {
		sourceOpts = collectOpts(info.Schema, f.sourceText, f.sourceBool)
	}
	if info, ok := f.ws.Plugins().Displayer(f.displayerType); ok {
		dispOpts = collectOpts(info.Schema, f.dispText, f.dispBool)
	}

	if f.editID == "" {
		_, err := f.ws.CreatePanel(panel.Spec{
			SourceType:    f.sourceType,
			DisplayerType: f.displayerType,
			SourceOpts:    sourceOpts,
			DisplayerOpts: dispOpts,
			Interval:      interval,
			Style:         plugin.Style{Title: f.title, ShowTitle: true},
		})
		return err
	}

	p, ok := f.ws.Panels().Get(f.editID)
	if !ok {
		return nil // deleted while the form was open
	}
	style := p.Style
	style.Title = f.title
	return f.ws.UpdatePanel(f.editID, panel.Changes{
		SourceOpts:    sourceOpts,
		DisplayerType: f.displayerType,
		DisplayerOpts: dispOpts,
		Interval:      &interval,
		Style:         &style,
	})
}

// collectOpts turns the bound form values back into a typed option map.
// Blank inputs fall through to the schema default by omission.
func collectOpts(schema plugin.Schema, text map[string]*string, bools map[string]*bool) map[string]any {
	raw := make(map[string]any)
	for key, v := range text {
		if v != nil && *v != "" {
			raw[key] = *v
		}
	}
	for key, v := range bools {
		if v != nil {
			raw[key] = *v
		}
	}
	if len(raw) == 0 {
		return nil
	}

	merged := schema.Merged(raw)
	out := make(map[string]any, len(raw))
	for key := range raw {
		if v, ok := merged[key]; ok {
			out[key] = v
		}
	}
	return out
}
