package editor

import "github.com/kobzarvs/sciedit/internal/cellbuffer"

type FoldAction int

const (
	FoldContract FoldAction = iota
	FoldExpand
	FoldToggle
)

func isHeader(level int) bool { return level&cellbuffer.LevelHeaderFlag != 0 }
func isWhitespace(level int) bool { return level&cellbuffer.LevelWhiteFlag != 0 }
func levelNumber(level int) int { return level & cellbuffer.LevelNumberMask }

func (e *Editor) foldsChanged() {
	e.pendingUpdate |= UpdateVScroll
	e.Emit(Notification{Kind: NotifyRedrawAll})
}

// needShown unfolds whatever hides the lines from pos to pos+length so that
// an edit there is visible.
func (e *Editor) needShown(pos, length int) {
	first, last := e.lineOf(pos), e.lineOf(pos+length)
	for line := first; line <= last; line++ {
		e.EnsureLineVisible(line)
	}
}

// foldChanged keeps the contraction consistent when the fold level of line
// changes from prev to now.
func (e *Editor) foldChanged(line, now, prev int) {
	switch {
	case isHeader(now):
		if !isHeader(prev) {
			e.cs.SetExpanded(line, true)
		}
	case isHeader(prev):
		prevLine := line - 1
		// Two blocks were joined and the first was contracted.
		if prevLine >= 0 && levelNumber(e.doc.Level(prevLine)) == levelNumber(now) && !e.cs.GetVisible(prevLine) {
			e.FoldLine(e.doc.FoldParent(prevLine), FoldExpand)
		}
		if !e.cs.GetExpanded(line) {
			// A contracted header lost its fold, so its lines must come back.
			e.cs.SetExpanded(line, true)
			e.foldExpand(line, FoldExpand, prev)
		}
	}
	if !isWhitespace(now) && levelNumber(prev) > levelNumber(now) && e.cs.HiddenLines() {
		parent := e.doc.FoldParent(line)
		if parent < 0 || e.cs.GetExpanded(parent) && e.cs.GetVisible(parent) {
			if e.cs.SetVisible(line, line, true) {
				e.foldsChanged()
			}
		}
	}
	if !isWhitespace(now) && levelNumber(prev) < levelNumber(now) && e.cs.HiddenLines() {
		parent := e.doc.FoldParent(line)
		if parent >= 0 && !e.cs.GetExpanded(parent) && e.cs.GetVisible(parent) {
			e.FoldLine(parent, FoldExpand)
		}
	}
}

// foldExpand sets the expansion of line and every header below it within the
// fold of the given level.
func (e *Editor) foldExpand(line int, action FoldAction, level int) {
	expanding := action == FoldExpand
	if action == FoldToggle {
		expanding = !e.cs.GetExpanded(line)
	}
	e.cs.SetExpanded(line, expanding)
	if expanding && !e.cs.HiddenLines() {
		return
	}
	last := e.doc.LastChild(line, levelNumber(level))
	e.cs.SetVisible(line+1, last, expanding)
	for l := line + 1; l <= last; l++ {
		if isHeader(e.doc.Level(l)) {
			e.cs.SetExpanded(l, expanding)
		}
	}
	e.foldsChanged()
}

// FoldLine contracts, expands or toggles the fold headed by line. Toggling a
// line that is not a header acts on its parent.
func (e *Editor) FoldLine(line int, action FoldAction) {
	if line < 0 || line >= e.doc.Lines() {
		return
	}
	if action == FoldToggle {
		if !isHeader(e.doc.Level(line)) {
			line = e.doc.FoldParent(line)
			if line < 0 {
				return
			}
		}
		action = FoldExpand
		if e.cs.GetExpanded(line) {
			action = FoldContract
		}
	}
	if action == FoldContract {
		last := e.doc.LastChild(line, -1)
		if last > line {
			e.cs.SetExpanded(line, false)
			e.cs.SetVisible(line+1, last, false)
			if caretLine := e.lineOf(e.sel.MainCaret()); caretLine > line && caretLine <= last {
				e.setEmptySelection(e.doc.LineStart(line))
				e.EnsureCaretVisible()
			}
		}
	} else {
		if !e.cs.GetVisible(line) {
			e.EnsureLineVisible(line)
			e.GotoPos(e.doc.LineStart(line))
		}
		e.cs.SetExpanded(line, true)
		e.expandLine(line)
	}
	e.foldsChanged()
}

// expandLine shows the lines under header line, leaving contracted child
// folds contracted. It returns the last line of the fold.
func (e *Editor) expandLine(line int) int {
	last := e.doc.LastChild(line, -1)
	start := line + 1
	for l := line + 1; l <= last; l++ {
		if !isHeader(e.doc.Level(l)) {
			continue
		}
		e.cs.SetVisible(start, l, true)
		if e.cs.GetExpanded(l) {
			l = e.expandLine(l)
		} else {
			l = e.doc.LastChild(l, -1)
		}
		start = l + 1
	}
	if start <= last {
		e.cs.SetVisible(start, last, true)
	}
	return last
}

// EnsureLineVisible expands every fold that hides line.
func (e *Editor) EnsureLineVisible(line int) {
	if line < 0 || line >= e.doc.Lines() || e.cs.GetVisible(line) {
		return
	}
	look := line
	for look > 0 && isWhitespace(e.doc.Level(look)) {
		look--
	}
	parent := e.doc.FoldParent(look)
	if parent < 0 {
		parent = e.doc.FoldParent(line)
	}
	if parent >= 0 {
		if parent != line {
			e.EnsureLineVisible(parent)
		}
		if !e.cs.GetExpanded(parent) {
			e.cs.SetExpanded(parent, true)
			e.expandLine(parent)
		}
	}
	e.foldsChanged()
}

// FoldAll contracts every top level fold or expands everything.
func (e *Editor) FoldAll(action FoldAction) {
	e.EnsureStyledTo(e.doc.Length())
	lines := e.doc.Lines()
	expanding := action == FoldExpand
	if action == FoldToggle {
		for l := 0; l < lines; l++ {
			if isHeader(e.doc.Level(l)) {
				expanding = !e.cs.GetExpanded(l)
				break
			}
		}
	}
	if expanding {
		e.cs.SetVisible(0, lines-1, true)
		for l := 0; l < lines; l++ {
			if isHeader(e.doc.Level(l)) {
				e.cs.SetExpanded(l, true)
			}
		}
	} else {
		for l := 0; l < lines; l++ {
			level := e.doc.Level(l)
			if isHeader(level) && levelNumber(level) == cellbuffer.LevelBase {
				e.cs.SetExpanded(l, false)
				if last := e.doc.LastChild(l, -1); last > l {
					e.cs.SetVisible(l+1, last, false)
				}
			}
		}
		line := e.lineOf(e.sel.MainCaret())
		for !e.cs.GetVisible(line) {
			parent := e.doc.FoldParent(line)
			if parent < 0 {
				break
			}
			line = parent
		}
		if line != e.lineOf(e.sel.MainCaret()) {
			e.setEmptySelection(e.doc.LineStart(line))
		}
	}
	e.foldsChanged()
}

// ContractedFolds lists the headers whose folds are contracted.
func (e *Editor) ContractedFolds() []int {
	var lines []int
	for l := e.cs.ContractedNext(0); l >= 0; l = e.cs.ContractedNext(l + 1) {
		lines = append(lines, l)
	}
	return lines
}
