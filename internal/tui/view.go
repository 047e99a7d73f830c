package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/gridsens/gridsens/internal/grid"
	"github.com/gridsens/gridsens/internal/panel"
	"github.com/gridsens/gridsens/internal/plugin"
	"github.com/gridsens/gridsens/internal/ui"
	"github.com/gridsens/gridsens/internal/util"
)

// render composes the full frame: background, panels in z-order, gesture
// ghosts, overlays, and the status bar.
func (m Model) render() string {
	if m.width <= 0 || m.height <= statusBarHeight {
		return "starting gridsens…"
	}

	canvas := NewCanvas(m.width, m.height-statusBarHeight)
	m.drawBackground(canvas)

	panels := m.ws.Panels()
	for _, p := range panels.All() {
		rect, ok := panels.RectOf(p.ID)
		if !ok {
			continue
		}
		x, y, w, h := m.geom.ScreenRect(rect)
		canvas.Draw(x, y, m.renderPanel(p, w, h))
	}

	m.drawPreview(canvas)

	if m.form != nil {
		m.drawCentered(canvas, formOverlayStyle.Render(m.form.View()))
	} else if m.help.ShowAll {
		m.drawCentered(canvas, helpOverlayStyle.Render(m.help.View(m.keys)))
	}

	return canvas.String() + "\n" + m.statusBar()
}

// drawBackground dots each grid cell origin so empty space still reads as
// a grid while dragging.
func (m Model) drawBackground(c *Canvas) {
	g := m.ws.Grid()
	cell := "·" + strings.Repeat(" ", m.geom.CellW-1)
	row := backgroundDotStyle.Render(strings.Repeat(cell, g.Columns()))
	for gy := 0; gy < g.Rows(); gy++ {
		c.FillRow(gy*m.geom.CellH, row)
	}
}

// renderPanel draws one panel box: border, optional title row, an error
// badge when the last fetch failed, and the displayer's body.
func (m Model) renderPanel(p *panel.Panel, w, h int) string {
	innerW, innerH := w-2, h-2
	if innerW < 1 || innerH < 1 {
		return ""
	}

	borderColor := ui.ColorBorder
	if m.ctrl.IsSelected(p.ID) {
		borderColor = ui.ColorAccent
		if p.Style.Accent != "" {
			borderColor = lipgloss.Color(p.Style.Accent)
		}
	}

	var rows []string
	bodyH := innerH
	if p.Style.ShowTitle && bodyH > 1 {
		rows = append(rows, panelTitleStyle.Render(ui.Fit(p.Title(), innerW)))
		bodyH--
	}
	if p.LastErr() != nil && bodyH > 1 {
		rows = append(rows, panelErrorStyle.Render(
			ui.Fit(ui.SymbolFail+" "+firstLine(p.LastErr().Error()), innerW)))
		bodyH--
	}
	rows = append(rows, p.Displayer().Render(
		plugin.Size{W: innerW, H: bodyH}, p.LastValue(), p.Style))

	frame := lipgloss.NewStyle().
		Border(borderFor(p.Style.Border)).
		BorderForeground(borderColor).
		Width(innerW).
		Height(innerH).
		MaxWidth(w).
		MaxHeight(h)
	return frame.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// drawPreview layers the gesture ghosts and the rubber-band box on top of
// the committed layout. The grid itself is untouched until release, so
// the panels stay drawn at their original spots underneath.
func (m Model) drawPreview(c *Canvas) {
	preview := m.ctrl.Preview()
	if !preview.Active {
		return
	}

	style := ghostValidStyle
	if !preview.Valid {
		style = ghostInvalidStyle
	}
	for _, r := range preview.Rects {
		m.drawGhost(c, r, style)
	}
	if preview.BoxActive {
		m.drawGhost(c, preview.Box, selectBoxStyle)
	}
}

func (m Model) drawGhost(c *Canvas, r grid.Rect, style lipgloss.Style) {
	x, y, w, h := m.geom.ScreenRect(r)
	if w < 2 || h < 2 {
		return
	}
	c.Draw(x, y, style.Width(w-2).Height(h-2).Render(""))
}

// drawCentered places an overlay block in the middle of the grid area.
func (m Model) drawCentered(c *Canvas, block string) {
	w := lipgloss.Width(block)
	h := lipgloss.Height(block)
	c.Draw((c.Width()-w)/2, (c.Height()-h)/2, block)
}

// statusBar renders the bottom chrome line: profile, counts, scheduler
// stats, and the most recent inline error.
func (m Model) statusBar() string {
	stats := m.ws.Scheduler().Stats()

	count := m.ws.Panels().Count()
	parts := []string{
		statusProfileStyle.Render(m.ws.Profile()),
		fmt.Sprintf("%d %s", count, util.Pluralize(count, "panel", "panels")),
	}
	if n := len(m.ctrl.Selection()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	parts = append(parts, fmt.Sprintf("⟳ %d  %s %d  skip %d",
		stats.Fetches, ui.SymbolFail, stats.Errors, stats.Skipped))
	if m.paused {
		parts = append(parts, statusPausedStyle.Render(ui.SymbolPaused+" paused"))
	} else if stats.InFlight > 0 {
		parts = append(parts, m.spin.View())
	}
	if m.statusErr != "" {
		parts = append(parts, statusErrorStyle.Render(firstLine(m.statusErr)))
	} else {
		parts = append(parts, m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	line := strings.Join(parts, "  │  ")
	if m.width > 3 {
		line = ansi.Truncate(line, m.width-2, "…")
	}
	return statusBarStyle.Width(m.width).Render(line)
}

// firstLine strips a structured error down to its headline for the
// one-line surfaces.
func firstLine(s string) string {
	s = strings.TrimPrefix(s, ui.SymbolFail+" ")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
