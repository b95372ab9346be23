package editor

import (
	"strings"

	"github.com/kobzarvs/sciedit/internal/selection"
)

type moveMode int

const (
	moveCaret moveMode = iota
	moveExtend
	moveRect
)

func (e *Editor) clamp(pos int) int {
	return min(max(pos, 0), e.doc.Length())
}

func (e *Editor) clampPosition(p selection.Position) selection.Position {
	if p.Pos < 0 {
		return selection.At(0)
	}
	if p.Pos > e.doc.Length() {
		return selection.At(e.doc.Length())
	}
	if !e.inLineEnd(p.Pos) {
		p.Virtual = 0
	}
	return p
}

func (e *Editor) setLastXChosen() {
	e.lastXChosen = e.xFromPosition(e.sel.RangeMain().Caret)
}

// SetSel selects from anchor to caret in stream mode. A negative caret means
// the end of the document; a negative anchor collapses onto the caret.
func (e *Editor) SetSel(anchor, caret int) {
	if caret < 0 {
		caret = e.doc.Length()
	}
	if anchor < 0 {
		anchor = caret
	}
	e.sel.Clear()
	e.sel.SetSelection(selection.NewRange(e.clamp(caret), e.clamp(anchor)))
	e.doc.DropUndoSequence()
	e.setLastXChosen()
	e.EnsureCaretVisible()
}

// SetSelections replaces the selection with ranges. Main is clamped into
// range. Positions are clamped into the document.
func (e *Editor) SetSelections(ranges []selection.Range, main int, typ selection.Type) {
	if len(ranges) == 0 {
		e.setEmptySelection(0)
		return
	}
	e.sel.Clear()
	e.sel.Hold()
	for i, r := range ranges {
		r.Caret = e.clampPosition(r.Caret)
		r.Anchor = e.clampPosition(r.Anchor)
		if i == 0 {
			e.sel.SetSelection(r)
		} else {
			e.sel.AddSelectionWithoutTrim(r)
		}
	}
	e.sel.Type = typ
	if e.sel.IsRectangular() {
		last := e.sel.Range(e.sel.Count() - 1)
		e.sel.SetRectangular(selection.Range{Caret: last.Caret, Anchor: e.sel.Range(0).Anchor})
	}
	e.sel.SetMain(min(max(main, 0), e.sel.Count()-1))
	e.sel.Release()
	e.doc.DropUndoSequence()
}

func (e *Editor) setEmptySelection(pos int) {
	e.setEmptySelectionAt(selection.At(e.clamp(pos)))
}

func (e *Editor) setEmptySelectionAt(p selection.Position) {
	e.sel.Clear()
	e.sel.SetSelection(selection.Range{Caret: p, Anchor: p})
}

// setCaret moves the caret of the main range and keeps its anchor.
func (e *Editor) setCaret(p selection.Position) {
	p = e.clampPosition(p)
	if e.sel.IsRectangular() {
		rect := e.sel.Rectangular()
		e.sel.SetRectangular(selection.Range{Caret: p, Anchor: rect.Anchor})
		e.setRectangularRange()
		return
	}
	rng := e.sel.RangeMain()
	e.sel.SetRangeMain(selection.Range{Caret: p, Anchor: rng.Anchor})
}

func (e *Editor) GotoPos(pos int) {
	e.setEmptySelection(pos)
	e.doc.DropUndoSequence()
	e.setLastXChosen()
	e.EnsureCaretVisible()
}

// GotoLine puts the caret at the start of line, unfolding it if needed.
func (e *Editor) GotoLine(line int) {
	line = min(max(line, 0), e.doc.Lines()-1)
	e.EnsureLineVisible(line)
	e.GotoPos(e.doc.LineStart(line))
}

// movedCaret finishes every caret movement.
func (e *Editor) movedCaret() {
	e.doc.DropUndoSequence()
	e.EnsureCaretVisible()
}

func (e *Editor) movePositionTo(p selection.Position, mode moveMode) {
	p = e.clampPosition(p)
	if mode == moveExtend && e.sel.IsRectangular() {
		e.sel.DropAdditionalRanges()
		e.sel.Type = selection.Stream
	}
	if mode == moveRect && !e.sel.IsRectangular() {
		main := e.sel.RangeMain()
		e.sel.Clear()
		e.sel.SetSelection(main)
		e.sel.SetRectangular(main)
		e.sel.Type = selection.Rectangle
	}
	if mode != moveCaret || e.sel.MoveExtends {
		e.setCaret(p)
	} else {
		e.setEmptySelectionAt(p)
	}
	e.movedCaret()
}

// movePositionSoVisible steps out of folded lines in the direction of the
// move.
func (e *Editor) movePositionSoVisible(p selection.Position, dir int) selection.Position {
	p = e.clampPosition(p)
	line := e.lineOf(p.Pos)
	if e.cs.GetVisible(line) {
		return p
	}
	display := e.cs.DisplayFromDoc(line)
	if dir > 0 {
		return selection.At(e.doc.LineStart(e.cs.DocFromDisplay(display)))
	}
	return selection.At(e.doc.LineEnd(e.cs.DocFromDisplay(display - 1)))
}

// vcHome returns the first non-blank position of the line, or the line start
// when pos is already there.
func (e *Editor) vcHome(pos int) int {
	line := e.lineOf(pos)
	start := e.doc.LineStart(line)
	indent := e.lineIndentPosition(line)
	indent = min(indent, e.doc.LineEnd(line))
	if pos == indent {
		return start
	}
	return indent
}

func isExtend(cmd Command) bool {
	switch cmd {
	case CmdCharLeftExtend, CmdCharRightExtend, CmdWordLeftExtend, CmdWordRightExtend,
		CmdHomeExtend, CmdVCHomeExtend, CmdLineEndExtend:
		return true
	}
	return false
}

// withExtend maps a move to its extending variant.
func withExtend(cmd Command) Command {
	switch cmd {
	case CmdCharLeft:
		return CmdCharLeftExtend
	case CmdCharRight:
		return CmdCharRightExtend
	case CmdWordLeft:
		return CmdWordLeftExtend
	case CmdWordRight:
		return CmdWordRightExtend
	case CmdHome:
		return CmdHomeExtend
	case CmdVCHome:
		return CmdVCHomeExtend
	case CmdLineEnd:
		return CmdLineEndExtend
	}
	return cmd
}

func naturalDirection(cmd Command) int {
	switch cmd {
	case CmdCharLeft, CmdCharLeftExtend, CmdWordLeft, CmdWordLeftExtend,
		CmdHome, CmdHomeExtend, CmdVCHome, CmdVCHomeExtend:
		return -1
	}
	return 1
}

// horizontalMove applies a left/right style move to every range.
func (e *Editor) horizontalMove(cmd Command) {
	if e.sel.MoveExtends {
		cmd = withExtend(cmd)
	}
	if e.sel.IsRectangular() {
		// Leaving rectangle mode collapses to the edge of the rectangle.
		lim := e.sel.Limits()
		at := lim.Start
		if naturalDirection(cmd) > 0 {
			at = lim.End
		}
		switch cmd {
		case CmdHome:
			at = selection.At(e.doc.LineStart(e.lineOf(at.Pos)))
		case CmdVCHome:
			at = selection.At(e.vcHome(at.Pos))
		case CmdLineEnd:
			at = selection.At(e.doc.LineEnd(e.lineOf(at.Pos)))
		}
		e.sel.Type = selection.Stream
		e.sel.SetSelection(selection.Range{Caret: at, Anchor: at})
	} else {
		e.filterSelections()
		e.sel.Hold()
		for r := 0; r < e.sel.Count(); r++ {
			rng := e.sel.Range(r)
			now := rng.Caret
			p := e.stepCaret(cmd, now)
			dir := 1
			if p.Less(now) {
				dir = -1
			}
			p = e.movePositionSoVisible(p, dir)
			switch {
			case isExtend(cmd):
				rng.Caret = p
			case (cmd == CmdCharLeft || cmd == CmdCharRight) && !rng.Empty():
				at := rng.End()
				if cmd == CmdCharLeft {
					at = rng.Start()
				}
				rng = selection.Range{Caret: at, Anchor: at}
			default:
				rng = selection.Range{Caret: p, Anchor: p}
			}
			e.sel.SetRange(r, rng)
		}
		e.sel.Release()
	}
	e.sel.RemoveDuplicates()
	e.movedCaret()
	e.setLastXChosen()
}

// stepCaret returns where one move takes the caret.
func (e *Editor) stepCaret(cmd Command, p selection.Position) selection.Position {
	switch cmd {
	case CmdCharLeft, CmdCharLeftExtend:
		if p.Virtual > 0 {
			p.Virtual--
			return p
		}
		if e.noWrapLineStart && e.doc.LineStart(e.lineOf(p.Pos)) == p.Pos {
			return p
		}
		return selection.At(e.positionBefore(p.Pos))
	case CmdCharRight, CmdCharRightExtend:
		if e.userVirtualSpace && p.Pos == e.doc.LineEnd(e.lineOf(p.Pos)) {
			p.Virtual++
			return p
		}
		return selection.At(e.positionAfter(p.Pos))
	case CmdWordLeft, CmdWordLeftExtend:
		return selection.At(e.nextWordStart(p.Pos, -1))
	case CmdWordRight, CmdWordRightExtend:
		return selection.At(e.nextWordStart(p.Pos, 1))
	case CmdHome, CmdHomeExtend:
		return selection.At(e.doc.LineStart(e.lineOf(p.Pos)))
	case CmdVCHome, CmdVCHomeExtend:
		return selection.At(e.vcHome(p.Pos))
	case CmdLineEnd, CmdLineEndExtend:
		return selection.At(e.doc.LineEnd(e.lineOf(p.Pos)))
	}
	return p
}

// positionUpOrDown returns the position one display line above or below p.
// lastX is the column to aim for, or -1 to keep p's own column.
func (e *Editor) positionUpOrDown(p selection.Position, dir, lastX int, allowVirtual bool) selection.Position {
	line := e.lineOf(p.Pos)
	x := lastX
	if x < 0 {
		x = e.xFromPosition(p)
	}
	var display int
	if dir > 0 {
		display = e.cs.DisplayLastFromDoc(line) + 1
	} else {
		display = e.cs.DisplayFromDoc(line) - 1
	}
	display = min(max(display, 0), max(e.cs.LinesDisplayed()-1, 0))
	target := e.cs.DocFromDisplay(display)
	return e.positionFromLineX(target, x, allowVirtual)
}

func (e *Editor) cursorUpOrDown(dir int, mode moveMode) {
	if mode == moveCaret && e.sel.MoveExtends {
		mode = moveExtend
		if e.sel.IsRectangular() {
			mode = moveRect
		}
	}
	caretToUse := e.sel.RangeMain().Caret
	if e.sel.IsRectangular() {
		if mode == moveCaret {
			lim := e.sel.Limits()
			caretToUse = lim.Start
			if dir > 0 {
				caretToUse = lim.End
			}
		} else {
			caretToUse = e.sel.Rectangular().Caret
		}
	}
	if mode == moveRect {
		base := e.sel.RangeMain()
		if e.sel.IsRectangular() {
			base = e.sel.Rectangular()
		} else {
			e.sel.DropAdditionalRanges()
		}
		p := e.movePositionSoVisible(e.positionUpOrDown(caretToUse, dir, -1, e.rectVirtualSpace), dir)
		e.sel.Type = selection.Rectangle
		e.sel.SetRectangular(selection.Range{Caret: p, Anchor: base.Anchor})
		e.setRectangularRange()
		e.movedCaret()
		return
	}
	if !e.additionalSelectionTyping || e.sel.IsRectangular() {
		if e.sel.IsRectangular() {
			e.sel.SetSelection(selection.Range{Caret: caretToUse, Anchor: caretToUse})
		}
		e.sel.DropAdditionalRanges()
	}
	e.sel.Type = selection.Stream
	e.sel.Hold()
	for r := 0; r < e.sel.Count(); r++ {
		lastX := -1
		if r == e.sel.Main() {
			lastX = e.lastXChosen
		}
		rng := e.sel.Range(r)
		p := e.movePositionSoVisible(e.positionUpOrDown(rng.Caret, dir, lastX, e.userVirtualSpace), dir)
		if mode == moveExtend {
			rng.Caret = p
		} else {
			rng = selection.Range{Caret: p, Anchor: p}
		}
		e.sel.SetRange(r, rng)
	}
	e.sel.Release()
	e.sel.RemoveDuplicates()
	e.movedCaret()
}

// pageMove scrolls by a screen and moves the caret by the same amount,
// keeping its column.
func (e *Editor) pageMove(dir int, extend bool) {
	lines := max(e.linesOnScreen-1, 1)
	line := e.lineOf(e.sel.MainCaret())
	display := e.cs.DisplayFromDoc(line) + dir*lines
	display = min(max(display, 0), max(e.cs.LinesDisplayed()-1, 0))
	p := e.positionFromLineX(e.cs.DocFromDisplay(display), e.lastXChosen, e.userVirtualSpace)
	e.SetTopLine(e.topLine + dir*lines)
	mode := moveCaret
	if extend {
		mode = moveExtend
	}
	e.movePositionTo(p, mode)
}

// multipleSelectAddNext selects the word at the caret, or adds the next
// occurrence of the main range's text as a new main range. It returns 1 when
// the selection grew.
func (e *Editor) multipleSelectAddNext() int {
	main := e.sel.RangeMain()
	if main.Empty() {
		start, end := e.WordStart(main.Caret.Pos), e.WordEnd(main.Caret.Pos)
		if start == end {
			return 0
		}
		e.sel.SetRangeMain(selection.NewRange(end, start))
		return 1
	}
	needle := e.doc.TextRange(main.Start().Pos, main.End().Pos)
	text := e.doc.Text()
	from := main.End().Pos
	for range 2 {
		for at := from; at <= len(text); {
			i := strings.Index(text[at:], needle)
			if i < 0 {
				break
			}
			found := at + i
			if !e.isSelected(found, found+len(needle)) {
				e.sel.AddSelection(selection.NewRange(found+len(needle), found))
				e.EnsureCaretVisible()
				return 1
			}
			at = found + max(len(needle), 1)
		}
		from = 0
	}
	return 0
}

func (e *Editor) isSelected(start, end int) bool {
	for r := 0; r < e.sel.Count(); r++ {
		rng := e.sel.Range(r)
		if rng.Start().Pos == start && rng.End().Pos == end {
			return true
		}
	}
	return false
}
