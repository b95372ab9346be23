package cellbuffer

// EndStyled is the position up to which styling is known to be current.
func (cb *CellBuffer) EndStyled() int {
	return cb.endStyled
}

func (cb *CellBuffer) modifiedAt(pos int) {
	if cb.endStyled > pos {
		cb.endStyled = pos
	}
}

// StartStyling positions the styling cursor used by SetStyleFor and SetStyles.
func (cb *CellBuffer) StartStyling(pos int) {
	cb.endStyled = cb.clampPos(pos)
}

// SetStyleAt sets the style of the character at pos without moving the
// styling cursor. It reports whether the style changed.
func (cb *CellBuffer) SetStyleAt(pos int, style byte) bool {
	if cb.enteredStyling != 0 || pos < 0 || pos >= cb.Length() {
		return false
	}
	if cb.style.ValueAt(pos) == style {
		return false
	}
	cb.enteredStyling++
	defer func() { cb.enteredStyling-- }()
	cb.style.SetValueAt(pos, style)
	cb.notify(Event{Kind: StyleChanged, Position: pos, Length: 1})
	return true
}

// SetStyleFor styles the next length characters and advances the cursor. It
// reports whether any style changed.
func (cb *CellBuffer) SetStyleFor(length int, style byte) bool {
	if cb.enteredStyling != 0 {
		return false
	}
	cb.enteredStyling++
	defer func() { cb.enteredStyling-- }()

	if length > cb.Length()-cb.endStyled {
		length = cb.Length() - cb.endStyled
	}
	if length <= 0 {
		return false
	}
	prevEnd := cb.endStyled
	changed := false
	for i := 0; i < length; i++ {
		if cb.style.ValueAt(prevEnd+i) != style {
			cb.style.SetValueAt(prevEnd+i, style)
			changed = true
		}
	}
	cb.endStyled += length
	if changed {
		cb.notify(Event{Kind: StyleChanged, Position: prevEnd, Length: length})
	}
	return changed
}

// SetStyles styles len(styles) characters from the cursor. Only the span that
// actually changed is reported, and the result says whether there was one.
func (cb *CellBuffer) SetStyles(styles []byte) bool {
	if cb.enteredStyling != 0 {
		return false
	}
	cb.enteredStyling++
	defer func() { cb.enteredStyling-- }()

	length := len(styles)
	if length > cb.Length()-cb.endStyled {
		length = cb.Length() - cb.endStyled
	}
	first, last := -1, -1
	for i := 0; i < length; i++ {
		pos := cb.endStyled + i
		if cb.style.ValueAt(pos) != styles[i] {
			cb.style.SetValueAt(pos, styles[i])
			if first < 0 {
				first = pos
			}
			last = pos
		}
	}
	cb.endStyled += max(length, 0)
	if first >= 0 {
		cb.notify(Event{Kind: StyleChanged, Position: first, Length: last - first + 1})
	}
	return first >= 0
}

// ClearStyles resets every style byte to 0.
func (cb *CellBuffer) ClearStyles() {
	cb.StartStyling(0)
	cb.SetStyleFor(cb.Length(), 0)
	cb.endStyled = 0
}

func (cb *CellBuffer) Level(line int) int {
	return cb.levels.Level(line)
}

// SetLevel stores a fold level and returns the previous one.
func (cb *CellBuffer) SetLevel(line, level int) int {
	prev := cb.levels.SetLevel(line, level, cb.Lines())
	if prev != level && line >= 0 && line < cb.Lines() {
		cb.notify(Event{Kind: LevelChanged, Line: line, LevelNow: level, LevelPrev: prev})
	}
	return prev
}

func (cb *CellBuffer) ClearLevels() {
	cb.levels.ClearLevels()
}

func (cb *CellBuffer) LastChild(line, level int) int {
	return cb.levels.LastChild(line, level, cb.Lines())
}

func (cb *CellBuffer) FoldParent(line int) int {
	return cb.levels.FoldParent(line)
}

func (cb *CellBuffer) IsHeader(line int) bool {
	return cb.Level(line)&LevelHeaderFlag != 0
}

func (cb *CellBuffer) LineState(line int) int {
	return cb.lineStates.LineState(line)
}

func (cb *CellBuffer) SetLineState(line, state int) int {
	return cb.lineStates.SetLineState(line, state)
}

func (cb *CellBuffer) MaxLineState() int {
	return cb.lineStates.MaxLineState()
}

// AddMarker returns the handle of the new marker or -1.
func (cb *CellBuffer) AddMarker(line, number int) int {
	if line < 0 || line >= cb.Lines() {
		return -1
	}
	h := cb.markers.AddMark(line, number, cb.Lines())
	if h >= 0 {
		cb.notify(Event{Kind: MarkerChanged, Line: line})
	}
	return h
}

func (cb *CellBuffer) DeleteMarker(line, number int) {
	if cb.markers.DeleteMark(line, number, false) {
		cb.notify(Event{Kind: MarkerChanged, Line: line})
	}
}

func (cb *CellBuffer) DeleteMarkerFromHandle(handle int) {
	if line := cb.markers.DeleteMarkFromHandle(handle); line >= 0 {
		cb.notify(Event{Kind: MarkerChanged, Line: line})
	}
}

// DeleteAllMarkers removes marker number from every line; -1 removes all.
func (cb *CellBuffer) DeleteAllMarkers(number int) {
	someChanges := false
	for line := 0; line < cb.Lines(); line++ {
		if cb.markers.DeleteMark(line, number, true) {
			someChanges = true
		}
	}
	if someChanges {
		cb.notify(Event{Kind: MarkerChanged, Line: -1})
	}
}

func (cb *CellBuffer) MarkerValue(line int) uint32 {
	return cb.markers.MarkValue(line)
}

func (cb *CellBuffer) MarkerNext(line int, mask uint32) int {
	return cb.markers.MarkerNext(line, mask)
}

func (cb *CellBuffer) LineFromMarkerHandle(handle int) int {
	return cb.markers.LineFromHandle(handle)
}

func (cb *CellBuffer) AnnotationText(line int) string {
	return cb.annotations.Text(line)
}

func (cb *CellBuffer) SetAnnotationText(line int, text string) {
	if line < 0 || line >= cb.Lines() {
		return
	}
	cb.annotations.SetText(line, text)
	cb.notify(Event{Kind: AnnotationChanged, Line: line})
}

func (cb *CellBuffer) AnnotationStyle(line int) int {
	return cb.annotations.Style(line)
}

func (cb *CellBuffer) SetAnnotationStyle(line, style int) {
	if line < 0 || line >= cb.Lines() {
		return
	}
	cb.annotations.SetStyle(line, style)
	cb.notify(Event{Kind: AnnotationChanged, Line: line})
}

func (cb *CellBuffer) SetAnnotationStyles(line int, styles []byte) {
	if line < 0 || line >= cb.Lines() {
		return
	}
	cb.annotations.SetStyles(line, styles)
	cb.notify(Event{Kind: AnnotationChanged, Line: line})
}

func (cb *CellBuffer) AnnotationStyles(line int) []byte {
	return cb.annotations.Styles(line)
}

func (cb *CellBuffer) AnnotationLines(line int) int {
	return cb.annotations.Lines(line)
}

func (cb *CellBuffer) ClearAnnotations() {
	cb.annotations.ClearAll()
	cb.notify(Event{Kind: AnnotationChanged, Line: -1})
}

func (cb *CellBuffer) AddTabStop(line, x int) bool {
	return cb.tabStops.AddTabStop(line, x)
}

func (cb *CellBuffer) ClearTabStops(line int) bool {
	return cb.tabStops.ClearTabStops(line)
}

func (cb *CellBuffer) NextTabStop(line, x int) int {
	return cb.tabStops.NextTabStop(line, x)
}
