package editor

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kobzarvs/sciedit/internal/selection"
)

// filterSelections drops every range but main unless typing goes to all of
// them.
func (e *Editor) filterSelections() {
	if !e.additionalSelectionTyping && e.sel.Count() > 1 {
		e.sel.DropAdditionalRanges()
	}
}

func reversed(idx []int) []int {
	for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx
}

func (e *Editor) addChar(ch rune) {
	if ch < 0 || !utf8.ValidRune(ch) {
		return
	}
	e.insertCharacter(string(ch))
}

// insertCharacter types s at every range, replacing selected text or, in
// overtype mode, the character under the caret.
func (e *Editor) insertCharacter(s string) {
	if s == "" {
		return
	}
	e.filterSelections()
	end := e.undoGroup(e.sel.Count() > 1 || !e.sel.Empty() || e.overtype)
	inserted := false
	e.sel.Hold()
	for _, r := range reversed(e.sel.Sorted()) {
		rng := e.sel.RangeAt(r)
		pos := rng.Start().Pos
		switch {
		case !rng.Empty() && rng.Length() > 0:
			e.del(pos, rng.Length())
			rng.ClearVirtualSpace()
		case !rng.Empty():
			// Only virtual space is selected.
			rng.MinimizeVirtualSpace()
		case e.overtype && pos < e.doc.Length() && !e.inLineEnd(pos):
			e.del(pos, e.positionAfter(pos)-pos)
			rng.ClearVirtualSpace()
		}
		pos = e.realizeVirtualSpace(pos, rng.Caret.Virtual)
		if n := e.insert(pos, s); n > 0 {
			*rng = selection.Caret(pos + n)
			inserted = true
		}
		rng.ClearVirtualSpace()
	}
	e.sel.Release()
	end()
	e.thinRectangularRange()
	e.EnsureCaretVisible()
	if !e.caretSticky {
		e.setLastXChosen()
	}
	if !inserted {
		return
	}
	for _, ch := range s {
		e.Emit(Notification{Kind: NotifyCharAdded, Ch: ch})
	}
}

// AddText inserts text at every caret as if typed, without CharAdded
// notifications for each character.
func (e *Editor) AddText(text string) {
	before, beforeType := e.sel.Ranges(), e.sel.Type
	defer e.flush(before, beforeType)
	defer e.undoGroup(true)()
	e.sel.Hold()
	for _, r := range reversed(e.sel.Sorted()) {
		rng := e.sel.RangeAt(r)
		pos := rng.Start().Pos
		if rng.Length() > 0 {
			e.del(pos, rng.Length())
		}
		pos = e.realizeVirtualSpace(pos, rng.Start().Virtual)
		*rng = selection.Caret(pos + e.insert(pos, text))
	}
	e.sel.Release()
	e.EnsureCaretVisible()
}

// InsertText inserts text at pos, or at the caret when pos is negative. The
// selection follows the usual shifting rules and collapses to the main caret.
func (e *Editor) InsertText(pos int, text string) {
	before, beforeType := e.sel.Ranges(), e.sel.Type
	defer e.flush(before, beforeType)
	if pos < 0 {
		pos = e.sel.MainCaret()
	}
	e.insert(e.clamp(pos), text)
	e.setEmptySelection(e.sel.MainCaret())
}

// ReplaceSel replaces the selected text with text and leaves the caret after
// it.
func (e *Editor) ReplaceSel(text string) {
	before, beforeType := e.sel.Ranges(), e.sel.Type
	defer e.flush(before, beforeType)
	defer e.undoGroup(true)()
	e.clearSelection(false)
	pos := e.sel.MainCaret()
	n := e.insert(pos, text)
	e.setEmptySelection(pos + n)
	e.setLastXChosen()
	e.EnsureCaretVisible()
}

// SetText replaces the whole document as one undoable step.
func (e *Editor) SetText(text string) {
	before, beforeType := e.sel.Ranges(), e.sel.Type
	defer e.flush(before, beforeType)
	end := e.undoGroup(true)
	e.del(0, e.doc.Length())
	e.insert(0, text)
	end()
	e.sel.Clear()
	e.SetTopLine(0)
}

func (e *Editor) clearAll() {
	end := e.undoGroup(true)
	if e.doc.Length() > 0 {
		e.del(0, e.doc.Length())
	}
	if !e.doc.IsReadOnly() {
		e.cs.Clear()
		e.doc.ClearAnnotations()
	}
	end()
	e.sel.Clear()
	e.SetTopLine(0)
	e.Emit(Notification{Kind: NotifyRedrawAll})
}

// clearSelection deletes the text of every range. Unless retain is set, a
// stream selection is reduced to its main range first.
func (e *Editor) clearSelection(retain bool) {
	if !e.sel.IsRectangular() && !retain {
		e.filterSelections()
	}
	defer e.undoGroup(true)()
	e.sel.Hold()
	for r := 0; r < e.sel.Count(); r++ {
		rng := e.sel.RangeAt(r)
		if rng.Empty() {
			continue
		}
		start := rng.Start()
		e.del(start.Pos, rng.Length())
		*rng = selection.Range{Caret: start, Anchor: start}
	}
	e.sel.Release()
	e.thinRectangularRange()
	e.sel.RemoveDuplicates()
}

// delCharBack deletes the character before each caret. At a line start it
// only joins lines when allowLineStart is set. Inside indentation it may
// unindent instead.
func (e *Editor) delCharBack(allowLineStart bool) {
	if !e.sel.IsRectangular() {
		e.filterSelections()
	} else {
		allowLineStart = false
	}
	outer := e.sel.Count() > 1 || !e.sel.Empty()
	end := e.undoGroup(outer)
	if !e.sel.Empty() {
		e.clearSelection(false)
		end()
		e.sel.RemoveDuplicates()
		return
	}
	e.sel.Hold()
	for r := 0; r < e.sel.Count(); r++ {
		rng := e.sel.RangeAt(r)
		caret := rng.Caret
		if caret.Virtual > 0 {
			rng.Caret.SetVirtual(caret.Virtual - 1)
			rng.Anchor.SetVirtual(rng.Caret.Virtual)
			continue
		}
		line := e.lineOf(caret.Pos)
		if !allowLineStart && e.doc.LineStart(line) == caret.Pos {
			continue
		}
		col := e.column(caret.Pos)
		if e.backspaceUnindents && col > 0 && col <= e.lineIndentation(line) {
			indent := e.lineIndentation(line)
			step := e.indentSize()
			change := indent % step
			if change == 0 {
				change = step
			}
			inner := e.undoGroup(!outer)
			pos := e.setLineIndentation(line, indent-change)
			inner()
			*e.sel.RangeAt(r) = selection.Caret(pos)
			continue
		}
		if caret.Pos > 0 {
			prev := e.positionBefore(caret.Pos)
			e.del(prev, caret.Pos-prev)
		}
	}
	e.sel.Release()
	end()
	e.thinRectangularRange()
	e.sel.RemoveDuplicates()
}

// clear deletes the character after each caret. With several ranges line ends
// are kept.
func (e *Editor) clear() {
	if !e.sel.Empty() {
		e.clearSelection(false)
		e.sel.RemoveDuplicates()
		return
	}
	single := e.sel.Count() == 1 && e.sel.RangeMain().Start().Virtual > 0
	defer e.undoGroup(e.sel.Count() > 1 || single)()
	e.sel.Hold()
	for r := 0; r < e.sel.Count(); r++ {
		rng := e.sel.RangeAt(r)
		if start := rng.Start(); start.Virtual > 0 {
			*rng = selection.Caret(e.realizeVirtualSpace(start.Pos, start.Virtual))
			rng = e.sel.RangeAt(r)
		}
		pos := rng.Caret.Pos
		if e.sel.Count() == 1 || !e.inLineEnd(pos) {
			if pos < e.doc.Length() {
				e.del(pos, e.positionAfter(pos)-pos)
			}
			e.sel.RangeAt(r).ClearVirtualSpace()
		}
	}
	e.sel.Release()
	e.sel.RemoveDuplicates()
}

// deleteTo removes the text between each caret and the position target picks
// for it. Leftwards deletions drop virtual space, rightwards ones realise it.
func (e *Editor) deleteTo(leftwards bool, target func(caret int) int) {
	if !e.additionalSelectionTyping {
		e.sel.DropAdditionalRanges()
	}
	defer e.undoGroup(e.sel.Count() > 1 || !leftwards)()
	e.sel.Hold()
	for r := 0; r < e.sel.Count(); r++ {
		rng := e.sel.RangeAt(r)
		caret := rng.Caret.Pos
		if !leftwards {
			caret = e.realizeVirtualSpace(caret, rng.Caret.Virtual)
		}
		to := target(caret)
		start, stop := min(caret, to), max(caret, to)
		if stop > start {
			e.del(start, stop-start)
		}
		*e.sel.RangeAt(r) = selection.Caret(start)
	}
	e.sel.Release()
	e.sel.RemoveDuplicates()
	e.EnsureCaretVisible()
	e.setLastXChosen()
}

func (e *Editor) newLine() {
	if e.sel.IsRectangular() || !e.additionalSelectionTyping {
		e.sel.DropAdditionalRanges()
		e.sel.Type = selection.Stream
	}
	end := e.undoGroup(!e.sel.Empty() || e.sel.Count() > 1)
	if !e.sel.Empty() {
		e.clearSelection(false)
	}
	eol := e.eolMode.EOL()
	inserted := 0
	e.sel.Hold()
	for r := 0; r < e.sel.Count(); r++ {
		rng := e.sel.RangeAt(r)
		rng.ClearVirtualSpace()
		pos := rng.Caret.Pos
		if n := e.insert(pos, eol); n > 0 {
			*e.sel.RangeAt(r) = selection.Caret(pos + n)
			inserted++
		}
	}
	e.sel.Release()
	end()
	for range inserted {
		for _, ch := range eol {
			e.Emit(Notification{Kind: NotifyCharAdded, Ch: ch})
		}
	}
	e.setLastXChosen()
	e.EnsureCaretVisible()
}

// indentSelection handles Tab and BackTab. Within one line it inserts or
// removes up to a tab stop; across lines it shifts every covered line.
func (e *Editor) indentSelection(forwards bool) {
	defer e.undoGroup(true)()
	e.sel.Hold()
	defer e.sel.Release()
	for r := 0; r < e.sel.Count(); r++ {
		rng := e.sel.Range(r)
		lineAnchor := e.lineOf(rng.Anchor.Pos)
		caret := rng.Caret.Pos
		lineCaret := e.lineOf(caret)
		if lineAnchor != lineCaret {
			e.indentLines(forwards, r, rng, lineAnchor, lineCaret)
			continue
		}
		if forwards {
			if n := rng.Length(); n > 0 {
				e.del(rng.Start().Pos, n)
			}
			caret = e.sel.Range(r).Caret.Pos
			if e.tabIndents && e.column(caret) <= e.column(e.lineIndentPosition(lineCaret)) {
				indent := e.lineIndentation(lineCaret)
				step := e.indentSize()
				*e.sel.RangeAt(r) = selection.Caret(e.setLineIndentation(lineCaret, indent+step-indent%step))
				continue
			}
			text := "\t"
			if !e.useTabs {
				n := e.tabWidth - e.column(caret)%e.tabWidth
				text = strings.Repeat(" ", max(n, 1))
			}
			*e.sel.RangeAt(r) = selection.Caret(caret + e.insert(caret, text))
			continue
		}
		if e.tabIndents && e.column(caret) <= e.lineIndentation(lineCaret) {
			indent := e.lineIndentation(lineCaret)
			*e.sel.RangeAt(r) = selection.Caret(e.setLineIndentation(lineCaret, indent-e.indentSize()))
			continue
		}
		col := max((e.column(caret)-1)/e.tabWidth*e.tabWidth, 0)
		pos := caret
		for pos > e.doc.LineStart(lineCaret) && e.column(pos) > col {
			pos = e.positionBefore(pos)
		}
		*e.sel.RangeAt(r) = selection.Caret(pos)
	}
}

// indentLines shifts the lines range r covers and reselects them whole.
func (e *Editor) indentLines(forwards bool, r int, rng selection.Range, lineAnchor, lineCaret int) {
	anchorOnLine := rng.Anchor.Pos - e.doc.LineStart(lineAnchor)
	caretOnLine := rng.Caret.Pos - e.doc.LineStart(lineCaret)
	top, bottom := min(lineAnchor, lineCaret), max(lineAnchor, lineCaret)
	if e.doc.LineStart(bottom) == rng.Anchor.Pos || e.doc.LineStart(bottom) == rng.Caret.Pos {
		// Nothing on the last line is selected.
		bottom--
	}
	e.shiftLines(forwards, bottom, top)
	var caret, anchor int
	if lineAnchor < lineCaret {
		anchor = e.doc.LineStart(lineAnchor)
		if caretOnLine == 0 {
			caret = e.doc.LineStart(lineCaret)
		} else {
			caret = e.doc.LineStart(lineCaret + 1)
		}
	} else {
		caret = e.doc.LineStart(lineCaret)
		if anchorOnLine == 0 {
			anchor = e.doc.LineStart(lineAnchor)
		} else {
			anchor = e.doc.LineStart(lineAnchor + 1)
		}
	}
	e.sel.SetRange(r, selection.NewRange(caret, anchor))
}

func (e *Editor) changeCase(upper bool) {
	caser := cases.Lower(language.Und)
	if upper {
		caser = cases.Upper(language.Und)
	}
	defer e.undoGroup(true)()
	e.sel.Hold()
	defer e.sel.Release()
	for r := 0; r < e.sel.Count(); r++ {
		current := e.sel.Range(r)
		noVS := current
		noVS.ClearVirtualSpace()
		n := noVS.Length()
		if n == 0 {
			continue
		}
		start := noVS.Start().Pos
		text := e.doc.TextRange(start, start+n)
		mapped := caser.String(text)
		if mapped == text {
			continue
		}
		first := 0
		for first < len(text) && first < len(mapped) && text[first] == mapped[first] {
			first++
		}
		lastText, lastMapped := len(text)-1, len(mapped)-1
		for lastText >= first && lastMapped >= first && text[lastText] == mapped[lastMapped] {
			lastText--
			lastMapped--
		}
		e.del(start+first, lastText-first+1)
		inserted := e.insert(start+first, mapped[first:lastMapped+1])
		// Reset to the original range adjusted for the change in length.
		diff := inserted - (lastText - first + 1)
		if diff != 0 {
			if current.Anchor.Greater(current.Caret) {
				current.Anchor.Add(diff)
			} else {
				current.Caret.Add(diff)
			}
		}
		e.sel.SetRange(r, current)
	}
}

func (e *Editor) cancel() {
	e.sel.MoveExtends = false
	if e.sel.Count() > 1 && !e.sel.IsRectangular() {
		e.sel.DropAdditionalRanges()
	}
}

func (e *Editor) undo() {
	if !e.doc.CanUndo() {
		return
	}
	pos, err := e.doc.Undo()
	e.noteError(err, "undo", pos)
	if pos >= 0 {
		e.setEmptySelection(pos)
	}
	e.EnsureCaretVisible()
}

func (e *Editor) redo() {
	if !e.doc.CanRedo() {
		return
	}
	pos, err := e.doc.Redo()
	e.noteError(err, "redo", pos)
	if pos >= 0 {
		e.setEmptySelection(pos)
	}
	e.EnsureCaretVisible()
}

// ConvertEOLs and the line commands follow.

func (e *Editor) convertEOLs(mode EOLMode) {
	end := e.undoGroup(true)
	for pos := 0; pos < e.doc.Length(); pos++ {
		switch e.doc.CharAt(pos) {
		case '\r':
			if e.doc.CharAt(pos+1) == '\n' {
				switch mode {
				case EOLCR:
					e.del(pos+1, 1)
				case EOLLF:
					e.del(pos, 1)
				default:
					pos++
				}
				continue
			}
			switch mode {
			case EOLCRLF:
				pos += e.insert(pos+1, "\n")
			case EOLLF:
				pos += e.insert(pos, "\n")
				e.del(pos, 1)
				pos--
			}
		case '\n':
			switch mode {
			case EOLCRLF:
				pos += e.insert(pos, "\r")
			case EOLCR:
				pos += e.insert(pos, "\r")
				e.del(pos, 1)
				pos--
			}
		}
	}
	end()
	e.SetSel(e.sel.MainAnchor(), e.sel.MainCaret())
}

func (e *Editor) lineDelete() {
	line := e.lineOf(e.sel.MainCaret())
	start := e.doc.LineStart(line)
	e.del(start, e.doc.LineStart(line+1)-start)
}

// mainLines returns the document span of the whole lines the main range
// touches, line ends included.
func (e *Editor) mainLines() (start, end int) {
	rng := e.sel.RangeMain()
	start = e.doc.LineStart(e.lineOf(rng.Start().Pos))
	end = e.doc.LineStart(e.lineOf(rng.End().Pos) + 1)
	return start, end
}

func (e *Editor) lineTranspose() {
	line := e.lineOf(e.sel.MainCaret())
	if line == 0 {
		return
	}
	defer e.undoGroup(true)()
	prevStart := e.doc.LineStart(line - 1)
	prev := e.doc.TextRange(prevStart, e.doc.LineEnd(line-1))
	curStart := e.doc.LineStart(line)
	cur := e.doc.TextRange(curStart, e.doc.LineEnd(line))
	e.del(curStart, len(cur))
	e.del(prevStart, len(prev))
	curStart -= len(prev)
	curStart += e.insert(prevStart, cur)
	e.insert(curStart, prev)
	e.movePositionTo(selection.At(curStart), moveCaret)
}

// duplicate copies each range, or each caret line when forLine is set or
// nothing is selected, and inserts the copy after the original.
func (e *Editor) duplicate(forLine bool) {
	if e.sel.Empty() {
		forLine = true
	}
	eol := ""
	if forLine {
		eol = e.eolMode.EOL()
	}
	defer e.undoGroup(true)()
	e.sel.Hold()
	for r := 0; r < e.sel.Count(); r++ {
		saved := e.sel.Range(r)
		start, end := saved.Start().Pos, saved.End().Pos
		if forLine {
			line := e.lineOf(saved.Caret.Pos)
			start, end = e.doc.LineStart(line), e.doc.LineEnd(line)
		}
		text := e.doc.TextRange(start, end)
		n := 0
		if forLine {
			n = e.insert(end, eol)
		}
		e.insert(end+n, text)
		e.sel.SetRange(r, saved)
	}
	e.sel.Release()
	if e.sel.IsRectangular() {
		last := e.sel.Range(0).End()
		for r := 1; r < e.sel.Count(); r++ {
			if end := e.sel.Range(r).End(); last.Less(end) {
				last = end
			}
		}
		if forLine {
			line := e.lineOf(last.Pos)
			last = selection.At(last.Pos + e.doc.LineStart(line+1) - e.doc.LineStart(line))
		}
		rect := e.sel.Rectangular()
		if rect.Anchor.Greater(rect.Caret) {
			rect.Anchor = last
		} else {
			rect.Caret = last
		}
		e.sel.SetRectangular(rect)
		e.setRectangularRange()
	}
}

// joinTarget is the span LinesJoin and LinesSplit work on: the lines of the
// main range, or the caret line and the next one when the range is on one
// line.
func (e *Editor) joinTarget(join bool) (start, end int) {
	rng := e.sel.RangeMain()
	lineStart, lineEnd := e.lineOf(rng.Start().Pos), e.lineOf(rng.End().Pos)
	if join && lineStart == lineEnd {
		lineEnd = min(lineEnd+1, e.doc.Lines()-1)
	}
	return e.doc.LineStart(lineStart), e.doc.LineEnd(lineEnd)
}

func (e *Editor) linesJoin() {
	start, end := e.joinTarget(true)
	defer e.undoGroup(true)()
	line := e.lineOf(start)
	for pos := e.doc.LineEnd(line); pos < end; pos = e.doc.LineEnd(line) {
		var prev byte
		if pos > 0 {
			prev = e.doc.CharAt(pos - 1)
		}
		width := e.positionAfter(pos) - pos
		end -= width
		e.del(pos, width)
		if prev != ' ' {
			end += e.insert(pos, " ")
		}
	}
	e.SetSel(start, end)
}

// linesSplit breaks each line of the main range so no piece is wider than
// width columns, preferring to break after spaces.
func (e *Editor) linesSplit(width int) {
	if width <= 0 {
		width = e.textWidth
	}
	if width <= 0 {
		return
	}
	start, end := e.joinTarget(false)
	eol := e.eolMode.EOL()
	defer e.undoGroup(true)()
	lineStart, lineEnd := e.lineOf(start), e.lineOf(end)
	for line := lineStart; line <= lineEnd; line++ {
		pos := e.doc.LineStart(line)
		breaks := e.wrapPoints(e.doc.TextRange(pos, e.doc.LineEnd(line)), width)
		for i := len(breaks) - 1; i >= 0; i-- {
			end += e.insert(pos+breaks[i], eol)
		}
		lineEnd += len(breaks)
		line += len(breaks)
	}
	e.SetSel(e.doc.LineStart(lineStart), end)
}

// wrapPoints returns the offsets in text where a new line should start so that
// each piece fits in width columns.
func (e *Editor) wrapPoints(text string, width int) []int {
	var points []int
	col, lineStart, lastBreak := 0, 0, -1
	prevSpace := false
	for _, c := range clusters(text) {
		space := c.text == " " || c.text == "\t"
		if !space && prevSpace && c.offset > lineStart {
			lastBreak = c.offset
		}
		w := e.measure.Width(c.text, col)
		if col+w > width && !space && c.offset > lineStart {
			at := c.offset
			if lastBreak > lineStart {
				at = lastBreak
			}
			points = append(points, at)
			lineStart = at
			col = e.measure.Width(text[at:c.offset], 0)
			lastBreak = -1
		}
		col += e.measure.Width(c.text, col)
		prevSpace = space
	}
	return points
}
