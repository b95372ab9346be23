package editor

import "github.com/kobzarvs/sciedit/internal/selection"

// Modifiers are the keys held during a mouse press.
type Modifiers int

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

type dragState struct {
	anchor    selection.Position
	tentative bool
}

// positionFromPoint maps a display line and text column to a document
// position.
func (e *Editor) positionFromPoint(displayLine, x int, allowVirtual bool) selection.Position {
	displayLine = min(max(displayLine, 0), max(e.cs.LinesDisplayed()-1, 0))
	return e.positionFromLineX(e.cs.DocFromDisplay(displayLine), max(x, 0), allowVirtual)
}

// ButtonDown starts a mouse selection at display line and column x. Alt
// starts a rectangle, Ctrl adds a range, Shift extends the main range.
func (e *Editor) ButtonDown(displayLine, x int, mods Modifiers) {
	if e.state == StatePainting {
		return
	}
	before, beforeType := e.sel.Ranges(), e.sel.Type
	defer e.flush(before, beforeType)
	rect := mods&ModAlt != 0
	p := e.positionFromPoint(displayLine, x, e.userVirtualSpace || rect && e.rectVirtualSpace)
	e.drag = dragState{}
	switch {
	case rect:
		anchor := p
		if mods&ModShift != 0 {
			anchor = e.sel.RangeMain().Anchor
		}
		e.sel.Clear()
		e.sel.Type = selection.Rectangle
		e.sel.SetRectangular(selection.Range{Caret: p, Anchor: anchor})
		e.setRectangularRange()
		e.state = StateRectangleDragging
	case mods&ModCtrl != 0 && mods&ModShift == 0:
		if e.sel.IsRectangular() {
			e.sel.Type = selection.Stream
		}
		e.sel.TentativeSelection(selection.Range{Caret: p, Anchor: p})
		e.drag.tentative = true
		e.state = StateDragSelecting
	case mods&ModShift != 0:
		if e.sel.IsRectangular() {
			e.sel.DropAdditionalRanges()
			e.sel.Type = selection.Stream
		}
		e.setCaret(p)
		e.state = StateDragSelecting
	default:
		e.setEmptySelectionAt(p)
		e.state = StateDragSelecting
	}
	e.drag.anchor = e.sel.RangeMain().Anchor
	if e.state == StateRectangleDragging {
		e.drag.anchor = e.sel.Rectangular().Anchor
	}
	e.movedCaret()
	e.setLastXChosen()
}

// ButtonMove extends the selection being dragged.
func (e *Editor) ButtonMove(displayLine, x int) {
	if e.state != StateDragSelecting && e.state != StateRectangleDragging {
		return
	}
	before, beforeType := e.sel.Ranges(), e.sel.Type
	defer e.flush(before, beforeType)
	switch e.state {
	case StateRectangleDragging:
		p := e.positionFromPoint(displayLine, x, e.rectVirtualSpace)
		e.sel.SetRectangular(selection.Range{Caret: p, Anchor: e.drag.anchor})
		e.setRectangularRange()
	case StateDragSelecting:
		p := e.positionFromPoint(displayLine, x, e.userVirtualSpace)
		if e.drag.tentative {
			e.sel.TentativeSelection(selection.Range{Caret: p, Anchor: e.drag.anchor})
		} else {
			e.setCaret(p)
		}
	}
	e.EnsureCaretVisible()
}

// ButtonUp ends the drag at display line and column x.
func (e *Editor) ButtonUp(displayLine, x int) {
	if e.state != StateDragSelecting && e.state != StateRectangleDragging {
		return
	}
	e.ButtonMove(displayLine, x)
	before, beforeType := e.sel.Ranges(), e.sel.Type
	defer e.flush(before, beforeType)
	if e.drag.tentative {
		e.sel.CommitTentative()
	}
	e.drag = dragState{}
	e.state = StateIdle
	e.setLastXChosen()
}
