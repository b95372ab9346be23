package editor

import "github.com/kobzarvs/sciedit/internal/selection"

// setRectangularRange rebuilds the ranges of a rectangular selection, one per
// line from the anchor line to the caret line. The caret line's range ends up
// as main.
func (e *Editor) setRectangularRange() {
	if !e.sel.IsRectangular() {
		return
	}
	rect := e.sel.Rectangular()
	xAnchor := e.xFromPosition(rect.Anchor)
	xCaret := e.xFromPosition(rect.Caret)
	if e.sel.Type == selection.Thin {
		xCaret = xAnchor
	}
	lineAnchor := e.lineOf(rect.Anchor.Pos)
	lineCaret := e.lineOf(rect.Caret.Pos)
	step := -1
	if lineCaret > lineAnchor {
		step = 1
	}
	for line := lineAnchor; line != lineCaret+step; line += step {
		rng := selection.Range{
			Caret:  e.positionFromLineX(line, xCaret, true),
			Anchor: e.positionFromLineX(line, xAnchor, true),
		}
		if !e.rectVirtualSpace {
			rng.ClearVirtualSpace()
		}
		if line == lineAnchor {
			e.sel.SetSelection(rng)
		} else {
			e.sel.AddSelectionWithoutTrim(rng)
		}
	}
}

// thinRectangularRange turns a rectangle whose text was replaced into a thin
// one-column rectangle at the carets.
func (e *Editor) thinRectangularRange() {
	if !e.sel.IsRectangular() {
		return
	}
	e.sel.Type = selection.Thin
	last := e.sel.Range(e.sel.Count() - 1)
	first := e.sel.Range(0)
	e.sel.SetRectangular(selection.Range{Caret: last.Caret, Anchor: first.Anchor})
	e.setRectangularRange()
}

// SetRectangularSelection selects the rectangle with corners anchor and caret.
func (e *Editor) SetRectangularSelection(anchor, caret selection.Position) {
	before, beforeType := e.sel.Ranges(), e.sel.Type
	defer e.flush(before, beforeType)
	e.sel.Clear()
	e.sel.Type = selection.Rectangle
	e.sel.SetRectangular(selection.Range{Caret: e.clampPosition(caret), Anchor: e.clampPosition(anchor)})
	e.setRectangularRange()
	e.doc.DropUndoSequence()
	e.EnsureCaretVisible()
}

// horizontalRectMove extends a rectangular selection sideways, starting one
// from the main range when the selection is not rectangular yet.
func (e *Editor) horizontalRectMove(cmd Command) {
	base := e.sel.RangeMain()
	if e.sel.IsRectangular() {
		base = e.sel.Rectangular()
	}
	e.sel.DropAdditionalRanges()
	p := base.Caret
	switch cmd {
	case CmdCharLeftRectExtend:
		switch {
		case e.inLineEnd(p.Pos) && p.Virtual > 0:
			p.Virtual--
		case !e.noWrapLineStart || e.column(p.Pos) > 0:
			p = selection.At(e.positionBefore(p.Pos))
		}
	case CmdCharRightRectExtend:
		if e.rectVirtualSpace && e.inLineEnd(p.Pos) {
			p.Virtual++
		} else {
			p = selection.At(e.positionAfter(p.Pos))
		}
	case CmdHomeRectExtend:
		p = selection.At(e.doc.LineStart(e.lineOf(p.Pos)))
	case CmdLineEndRectExtend:
		p = selection.At(e.doc.LineEnd(e.lineOf(p.Pos)))
	}
	dir := 1
	if p.Less(base.Caret) {
		dir = -1
	}
	p = e.movePositionSoVisible(p, dir)
	e.sel.Type = selection.Rectangle
	e.sel.SetRectangular(selection.Range{Caret: p, Anchor: base.Anchor})
	e.setRectangularRange()
	e.movedCaret()
	e.setLastXChosen()
}
