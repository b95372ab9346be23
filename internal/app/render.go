package app

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/kobzarvs/sciedit/internal/control"
	"github.com/kobzarvs/sciedit/internal/selection"
)

// gutterWidth is the line number column, the fold marker and a space.
func (a *App) gutterWidth() int {
	if !a.cfg.Editor.LineNumbers {
		return 2
	}
	return len(strconv.Itoa(max(a.ctl.LineCount(), 1))) + 3
}

func (a *App) resize() {
	if a.screen == nil {
		return
	}
	w, h := a.screen.Size()
	a.ctl.SetViewSize(max(h-1, 0), max(w-a.gutterWidth(), 0))
}

func (a *App) draw() {
	s := a.screen
	a.resize()
	for {
		a.ctl.BeginPaint()
		s.Clear()
		a.drawText()
		if !a.ctl.EndPaint() {
			break
		}
	}
	a.drawStatus()
	a.drawCallTip()
	a.drawAutoComplete()
	s.Show()
}

// screenPos returns where document position p is drawn, and false when it is
// scrolled or folded out of view.
func (a *App) screenPos(p selection.Position) (int, int, bool) {
	c := a.ctl
	line := c.LineFromPosition(p.Pos)
	cs := c.Contraction()
	if !cs.GetVisible(line) {
		return 0, 0, false
	}
	y := cs.DisplayFromDoc(line) - c.TopLine()
	start := c.LineStart(line)
	x := a.measure.Width(c.TextRange(start, p.Pos), 0) + p.Virtual - c.XOffset() + a.gutterWidth()
	w, h := a.screen.Size()
	if y < 0 || y >= h-1 || x < a.gutterWidth() || x >= w {
		return x, y, false
	}
	return x, y, true
}

func (a *App) drawText() {
	s := a.screen
	c := a.ctl
	doc := c.Document()
	cs := c.Contraction()
	w, h := s.Size()
	gutter := a.gutterWidth()
	ranges, _ := c.Selection()
	caretLine := c.LineFromPosition(c.CurrentPos())
	selected := func(pos int) bool {
		for _, r := range ranges {
			if pos >= r.Start().Pos && pos < r.End().Pos {
				return true
			}
		}
		return false
	}

	for y := 0; y < h-1; y++ {
		display := c.TopLine() + y
		if display >= cs.LinesDisplayed() {
			break
		}
		line := cs.DocFromDisplay(display)
		onCaret := line == caretLine

		if a.cfg.Editor.LineNumbers {
			drawString(s, 0, y, fmt.Sprintf("%*d ", gutter-3, line+1), a.colors.lineNumber)
		}
		marker := ' '
		if doc.IsHeader(line) {
			marker = '▾'
			if !cs.GetExpanded(line) {
				marker = '▸'
			}
		}
		s.SetContent(gutter-2, y, marker, nil, a.colors.foldMargin)
		s.SetContent(gutter-1, y, ' ', nil, a.colors.lineNumber)

		start := c.LineStart(line)
		text := c.TextRange(start, c.LineEnd(line))
		col := 0
		g := uniseg.NewGraphemes(text)
		for g.Next() {
			from, _ := g.Positions()
			pos := start + from
			cluster := g.Str()
			width := a.measure.Width(cluster, col)
			style := a.colors.textStyle(doc.StyleAt(pos), onCaret)
			if selected(pos) {
				style = a.colors.selection
			}
			x := gutter + col - c.XOffset()
			col += width
			if x < gutter || x+width > w {
				continue
			}
			if cluster == "\t" {
				for i := 0; i < width; i++ {
					s.SetContent(x+i, y, ' ', nil, style)
				}
				continue
			}
			runes := []rune(cluster)
			s.SetContent(x, y, runes[0], runes[1:], style)
		}
		if onCaret {
			for x := max(gutter+col-c.XOffset(), gutter); x < w; x++ {
				s.SetContent(x, y, ' ', nil, a.colors.textStyle(0, true))
			}
		}
	}

	main := c.MainSelection()
	s.HideCursor()
	for i, r := range ranges {
		x, y, ok := a.screenPos(r.Caret)
		if !ok {
			continue
		}
		if i == main {
			s.ShowCursor(x, y)
			continue
		}
		ch, comb, style, _ := s.GetContent(x, y)
		s.SetContent(x, y, ch, comb, style.Reverse(true))
	}
}

func (a *App) drawStatus() {
	s := a.screen
	c := a.ctl
	w, h := s.Size()
	if h < 1 {
		return
	}
	name := a.path
	if name == "" {
		name = "[scratch]"
	}
	if c.Modified() {
		name += " [+]"
	}
	caret := c.CurrentPos()
	line := c.LineFromPosition(caret)
	left := fmt.Sprintf(" %s  %d:%d", name, line+1, caret-c.LineStart(line)+1)
	if n := c.SelectionCount(); n > 1 {
		left += fmt.Sprintf("  %d selections", n)
	}
	if c.Overtype() {
		left += "  OVR"
	}
	if m := c.Mode(); m != control.ModeIdle {
		left += "  " + m.String()
	}
	right := a.message
	if a.lang != nil {
		right += "  " + a.lang.Name
	}
	right += " "
	for x := 0; x < w; x++ {
		s.SetContent(x, h-1, ' ', nil, a.colors.status)
	}
	drawString(s, 0, h-1, left, a.colors.status)
	drawString(s, max(w-uniseg.StringWidth(right), 0), h-1, right, a.colors.status)
}

// drawAutoComplete draws the list under the start of the word being
// completed, or above it when there is no room below.
func (a *App) drawAutoComplete() {
	ac := a.ctl.AutoComplete()
	rows, sel := ac.Window()
	if len(rows) == 0 {
		return
	}
	x, y, ok := a.screenPos(selection.At(ac.PosStart() - ac.StartLen()))
	if !ok {
		return
	}
	width := 0
	for _, r := range rows {
		width = max(width, uniseg.StringWidth(r))
	}
	width += 2
	_, h := a.screen.Size()
	top := y + 1
	if top+len(rows) > h-1 {
		top = y - len(rows)
	}
	for i, r := range rows {
		style := a.colors.autoComplete
		if i == sel {
			style = a.colors.autoSelected
		}
		fillString(a.screen, x, top+i, " "+r, width, style)
	}
}

// drawCallTip draws the tip above the caret line. Arrow characters become
// triangles.
func (a *App) drawCallTip() {
	ct := a.ctl.CallTip()
	if !ct.Active() {
		return
	}
	x, y, ok := a.screenPos(selection.At(ct.DrawAt()))
	if !ok {
		return
	}
	lines := ct.Lines()
	top := y - len(lines)
	if top < 0 {
		top = y + 1
	}
	hlStart, hlEnd := ct.Highlight()
	offset := 0
	for i, line := range lines {
		col := x
		for j, r := range line {
			style := a.colors.callTip
			if at := offset + j; at >= hlStart && at < hlEnd {
				style = a.colors.callTipHigh
			}
			switch r {
			case control.ArrowUp:
				r = '▲'
			case control.ArrowDown:
				r = '▼'
			}
			a.screen.SetContent(col, top+i, r, nil, style)
			col += max(uniseg.StringWidth(string(r)), 1)
		}
		offset += len(line) + 1
	}
}

func drawString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		s.SetContent(x, y, runes[0], runes[1:], style)
		x += max(g.Width(), 1)
	}
}

func fillString(s tcell.Screen, x, y int, text string, width int, style tcell.Style) {
	for i := 0; i < width; i++ {
		s.SetContent(x+i, y, ' ', nil, style)
	}
	drawString(s, x, y, text, style)
}
