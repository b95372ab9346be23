package cellbuffer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/kobzarvs/sciedit/internal/gapbuffer"
	"github.com/kobzarvs/sciedit/internal/undo"
)

var (
	ErrReadOnly = errors.New("cellbuffer: document is read-only")
	// ErrReentrant is returned when a watcher tries to edit the buffer while
	// it is delivering a modification event.
	ErrReentrant = errors.New("cellbuffer: modification during notification")
)

// CellBuffer owns the text, one style byte per character, the line vector and
// the undo history. Every edit goes through InsertString or DeleteChars.
type CellBuffer struct {
	substance *gapbuffer.Buffer[byte]
	style     *gapbuffer.Buffer[byte]
	lv        *LineVector
	uh        *undo.History

	markers     *Markers
	levels      *Levels
	lineStates  *LineStates
	annotations *Annotations
	tabStops    *TabStops

	readOnly       bool
	collectingUndo bool
	watcher        Watcher

	// reserve grows every store for an insert before any byte moves.
	reserve func(text []byte) error

	enteredModification int
	enteredReadOnly     int
	enteredStyling      int
	endStyled           int
}

func New() *CellBuffer {
	cb := &CellBuffer{
		substance:      gapbuffer.New[byte](8),
		style:          gapbuffer.New[byte](8),
		lv:             NewLineVector(),
		uh:             undo.New(),
		markers:        NewMarkers(),
		levels:         NewLevels(),
		lineStates:     NewLineStates(),
		annotations:    NewAnnotations(),
		tabStops:       NewTabStops(),
		collectingUndo: true,
	}
	cb.reserve = cb.reserveInsert
	cb.lv.AddPerLine(cb.markers)
	cb.lv.AddPerLine(cb.levels)
	cb.lv.AddPerLine(cb.lineStates)
	cb.lv.AddPerLine(cb.annotations)
	cb.lv.AddPerLine(cb.tabStops)
	return cb
}

// Watch registers the single receiver of buffer events.
func (cb *CellBuffer) Watch(w Watcher) {
	cb.watcher = w
}

func (cb *CellBuffer) notify(ev Event) {
	if cb.watcher != nil {
		cb.watcher(ev)
	}
}

func (cb *CellBuffer) Length() int {
	return cb.substance.Length()
}

func (cb *CellBuffer) clampPos(pos int) int {
	if pos < 0 {
		return 0
	}
	if n := cb.Length(); pos > n {
		return n
	}
	return pos
}

// CharAt returns 0 for positions outside the document.
func (cb *CellBuffer) CharAt(pos int) byte {
	return cb.substance.ValueAt(pos)
}

func (cb *CellBuffer) StyleAt(pos int) byte {
	return cb.style.ValueAt(pos)
}

func (cb *CellBuffer) GetCharRange(dst []byte, pos, n int) int {
	return cb.substance.GetRange(dst, pos, n)
}

func (cb *CellBuffer) GetStyleRange(dst []byte, pos, n int) int {
	return cb.style.GetRange(dst, pos, n)
}

func (cb *CellBuffer) Text() string {
	return string(cb.substance.Slice(0, cb.Length()))
}

// TextRange returns the text in [start, end) after clamping.
func (cb *CellBuffer) TextRange(start, end int) string {
	start, end = cb.clampPos(start), cb.clampPos(end)
	if end < start {
		start, end = end, start
	}
	return string(cb.substance.Slice(start, end-start))
}

func (cb *CellBuffer) StyleRange(start, end int) []byte {
	start, end = cb.clampPos(start), cb.clampPos(end)
	if end <= start {
		return nil
	}
	return cb.style.Slice(start, end-start)
}

func (cb *CellBuffer) GapPosition() int {
	return cb.substance.GapPosition()
}

// Allocate reserves room for newSize characters.
func (cb *CellBuffer) Allocate(newSize int) error {
	if err := cb.substance.ReAllocate(newSize); err != nil {
		return err
	}
	return cb.style.ReAllocate(newSize)
}

func (cb *CellBuffer) Lines() int {
	return cb.lv.Lines()
}

func (cb *CellBuffer) LineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= cb.Lines() {
		return cb.Length()
	}
	return cb.lv.LineStart(line)
}

// LineEnd returns the position before the line end characters of line.
func (cb *CellBuffer) LineEnd(line int) int {
	if line >= cb.Lines()-1 {
		return cb.LineStart(line + 1)
	}
	pos := cb.LineStart(line + 1)
	pos--
	if pos > cb.LineStart(line) && cb.CharAt(pos) == '\n' && cb.CharAt(pos-1) == '\r' {
		pos--
	}
	return pos
}

func (cb *CellBuffer) LineFromPosition(pos int) int {
	return cb.lv.LineFromPosition(pos)
}

// LineLength includes the line end.
func (cb *CellBuffer) LineLength(line int) int {
	return cb.LineStart(line+1) - cb.LineStart(line)
}

func (cb *CellBuffer) LineText(line int) string {
	return cb.TextRange(cb.LineStart(line), cb.LineEnd(line))
}

func (cb *CellBuffer) IsLineEndChar(pos int) bool {
	ch := cb.CharAt(pos)
	return ch == '\r' || ch == '\n'
}

// IsCrLf reports whether pos is the CR of a CRLF pair.
func (cb *CellBuffer) IsCrLf(pos int) bool {
	return pos >= 0 && pos < cb.Length()-1 && cb.CharAt(pos) == '\r' && cb.CharAt(pos+1) == '\n'
}

func (cb *CellBuffer) IsReadOnly() bool {
	return cb.readOnly
}

func (cb *CellBuffer) SetReadOnly(set bool) {
	cb.readOnly = set
}

// checkReadOnly lets the watcher react to a rejected edit, for example by
// clearing the flag, and reports whether the buffer is still read-only.
func (cb *CellBuffer) checkReadOnly() bool {
	if cb.readOnly && cb.enteredReadOnly == 0 {
		cb.enteredReadOnly++
		defer func() { cb.enteredReadOnly-- }()
		cb.notify(Event{Kind: ModifyAttempt})
	}
	return cb.readOnly
}

func countLineEnds(s []byte) int {
	return bytes.Count(s, []byte{'\n'}) + bytes.Count(s, []byte{'\r'})
}

// InsertString inserts s at pos and returns the number of bytes inserted.
func (cb *CellBuffer) InsertString(pos int, s string) (int, error) {
	if len(s) == 0 {
		return 0, nil
	}
	if cb.checkReadOnly() {
		return 0, ErrReadOnly
	}
	if cb.enteredModification != 0 {
		return 0, ErrReentrant
	}
	pos = cb.clampPos(pos)
	text := []byte(s)
	cb.enteredModification++
	defer func() { cb.enteredModification-- }()

	if err := cb.reserve(text); err != nil {
		return 0, fmt.Errorf("insert %d bytes at %d: %w", len(text), pos, err)
	}
	cb.notify(Event{Kind: BeforeInsert, Flags: FlagUser, Position: pos, Length: len(text), Text: text})
	prevLines := cb.Lines()
	startSavePoint := cb.uh.IsSavePoint()
	startSequence := false
	if cb.collectingUndo {
		startSequence = cb.uh.AppendAction(undo.Insert, pos, text, true)
	}
	cb.basicInsertString(pos, text)
	if startSavePoint && cb.collectingUndo {
		cb.notify(Event{Kind: SavePointChanged, AtSavePoint: false})
	}
	cb.modifiedAt(pos)
	flags := FlagUser
	if startSequence {
		flags |= FlagStartAction
	}
	cb.notify(Event{Kind: Inserted, Flags: flags, Position: pos, Length: len(text), Text: text, LinesAdded: cb.Lines() - prevLines})
	return len(text), nil
}

// DeleteChars removes n bytes at pos and returns the number removed.
func (cb *CellBuffer) DeleteChars(pos, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	if cb.checkReadOnly() {
		return 0, ErrReadOnly
	}
	if cb.enteredModification != 0 {
		return 0, ErrReentrant
	}
	pos = cb.clampPos(pos)
	if pos+n > cb.Length() {
		n = cb.Length() - pos
	}
	if n <= 0 {
		return 0, nil
	}
	cb.enteredModification++
	defer func() { cb.enteredModification-- }()

	text := cb.substance.Slice(pos, n)
	cb.notify(Event{Kind: BeforeDelete, Flags: FlagUser, Position: pos, Length: n, Text: text})
	prevLines := cb.Lines()
	startSavePoint := cb.uh.IsSavePoint()
	startSequence := false
	if cb.collectingUndo {
		startSequence = cb.uh.AppendAction(undo.Remove, pos, text, true)
	}
	cb.basicDeleteChars(pos, n)
	if startSavePoint && cb.collectingUndo {
		cb.notify(Event{Kind: SavePointChanged, AtSavePoint: false})
	}
	cb.modifiedAt(pos)
	flags := FlagUser
	if startSequence {
		flags |= FlagStartAction
	}
	cb.notify(Event{Kind: Deleted, Flags: flags, Position: pos, Length: n, Text: text, LinesAdded: cb.Lines() - prevLines})
	return n, nil
}

// reserveInsert grows every store so that the insert cannot fail halfway.
func (cb *CellBuffer) reserveInsert(text []byte) error {
	if err := cb.substance.EnsureRoom(len(text)); err != nil {
		return err
	}
	if err := cb.style.EnsureRoom(len(text)); err != nil {
		return err
	}
	// One spare line for a split CRLF pair.
	return cb.lv.Reserve(countLineEnds(text) + 1)
}

func (cb *CellBuffer) basicInsertString(pos int, s []byte) {
	n := len(s)
	_ = cb.substance.InsertFromArray(pos, s, 0, n)
	_ = cb.style.InsertValue(pos, n, 0)

	lineInsert := cb.lv.LineFromPosition(pos) + 1
	atLineStart := cb.lv.LineStart(lineInsert-1) == pos
	cb.lv.InsertText(lineInsert-1, n)
	chPrev := cb.substance.ValueAt(pos - 1)
	chAfter := cb.substance.ValueAt(pos + n)
	if chPrev == '\r' && chAfter == '\n' {
		// Splitting a CRLF pair.
		cb.lv.InsertLine(lineInsert, pos, false)
		lineInsert++
	}
	ch := byte(' ')
	for i := 0; i < n; i++ {
		ch = s[i]
		switch ch {
		case '\r':
			cb.lv.InsertLine(lineInsert, pos+i+1, atLineStart)
			lineInsert++
		case '\n':
			if chPrev == '\r' {
				// The CR already ended this line; move the start past the LF.
				cb.lv.SetLineStart(lineInsert-1, pos+i+1)
			} else {
				cb.lv.InsertLine(lineInsert, pos+i+1, atLineStart)
				lineInsert++
			}
		}
		chPrev = ch
	}
	// An inserted trailing CR joins an LF already in the buffer.
	if chAfter == '\n' && ch == '\r' {
		cb.lv.RemoveLine(lineInsert - 1)
	}
}

func (cb *CellBuffer) basicDeleteChars(pos, n int) {
	if pos == 0 && n == cb.substance.Length() {
		cb.lv.Init()
	} else {
		lineRemove := cb.lv.LineFromPosition(pos) + 1
		cb.lv.InsertText(lineRemove-1, -n)
		chPrev := cb.substance.ValueAt(pos - 1)
		chBefore := chPrev
		chNext := cb.substance.ValueAt(pos)
		ignoreNL := false
		if chPrev == '\r' && chNext == '\n' {
			// Deleting the LF of a CRLF pair: the CR now ends the line.
			cb.lv.SetLineStart(lineRemove, pos)
			lineRemove++
			ignoreNL = true
		}
		ch := chNext
		for i := 0; i < n; i++ {
			chNext = cb.substance.ValueAt(pos + i + 1)
			switch ch {
			case '\r':
				if chNext != '\n' {
					cb.lv.RemoveLine(lineRemove)
				}
			case '\n':
				if ignoreNL {
					ignoreNL = false
				} else {
					cb.lv.RemoveLine(lineRemove)
				}
			}
			ch = chNext
		}
		// The deletion may leave a CR next to an LF, fusing them.
		chAfter := cb.substance.ValueAt(pos + n)
		if chBefore == '\r' && chAfter == '\n' {
			cb.lv.RemoveLine(lineRemove - 1)
			cb.lv.SetLineStart(lineRemove-1, pos+1)
		}
	}
	cb.substance.DeleteRange(pos, n)
	cb.style.DeleteRange(pos, n)
}

func (cb *CellBuffer) SetUndoCollection(collect bool) bool {
	cb.collectingUndo = collect
	cb.uh.DropUndoSequence()
	return collect
}

func (cb *CellBuffer) IsCollectingUndo() bool {
	return cb.collectingUndo
}

func (cb *CellBuffer) BeginUndoAction() {
	cb.uh.BeginUndoAction()
}

func (cb *CellBuffer) EndUndoAction() {
	cb.uh.EndUndoAction()
}

func (cb *CellBuffer) UndoDepth() int {
	return cb.uh.Depth()
}

// DropUndoSequence ends coalescing, for example after the caret moved.
func (cb *CellBuffer) DropUndoSequence() {
	cb.uh.DropUndoSequence()
}

// AddUndoAction records a host token that is undone and redone with the text.
func (cb *CellBuffer) AddUndoAction(token int, mayCoalesce bool) {
	if cb.collectingUndo {
		cb.uh.AppendAction(undo.Container, token, nil, mayCoalesce)
	}
}

func (cb *CellBuffer) DeleteUndoHistory() {
	cb.uh.DeleteUndoHistory()
}

func (cb *CellBuffer) SetSavePoint() {
	cb.uh.SetSavePoint()
	cb.notify(Event{Kind: SavePointChanged, AtSavePoint: true})
}

func (cb *CellBuffer) IsSavePoint() bool {
	return cb.uh.IsSavePoint()
}

func (cb *CellBuffer) TentativeStart() {
	cb.uh.TentativeStart()
}

func (cb *CellBuffer) TentativeCommit() {
	cb.uh.TentativeCommit()
}

func (cb *CellBuffer) TentativeActive() bool {
	return cb.uh.TentativeActive()
}

func (cb *CellBuffer) TentativeSteps() int {
	return cb.uh.TentativeSteps()
}

func (cb *CellBuffer) CanUndo() bool {
	return cb.uh.CanUndo()
}

func (cb *CellBuffer) CanRedo() bool {
	return cb.uh.CanRedo()
}

func (cb *CellBuffer) StartUndo() int {
	return cb.uh.StartUndo()
}

func (cb *CellBuffer) GetUndoStep() undo.Action {
	return cb.uh.GetUndoStep()
}

// PerformUndoStep applies the inverse of the current undo action without
// logging it. When the text cannot be re-inserted nothing changes and the
// action stays current.
func (cb *CellBuffer) PerformUndoStep() error {
	act := cb.uh.GetUndoStep()
	switch act.Type {
	case undo.Insert:
		cb.basicDeleteChars(act.Position, act.Len())
	case undo.Remove:
		if err := cb.reserve(act.Data); err != nil {
			return fmt.Errorf("undo %d bytes at %d: %w", act.Len(), act.Position, err)
		}
		cb.basicInsertString(act.Position, act.Data)
	}
	cb.uh.CompletedUndoStep()
	return nil
}

func (cb *CellBuffer) StartRedo() int {
	return cb.uh.StartRedo()
}

func (cb *CellBuffer) GetRedoStep() undo.Action {
	return cb.uh.GetRedoStep()
}

func (cb *CellBuffer) PerformRedoStep() error {
	act := cb.uh.GetRedoStep()
	switch act.Type {
	case undo.Insert:
		if err := cb.reserve(act.Data); err != nil {
			return fmt.Errorf("redo %d bytes at %d: %w", act.Len(), act.Position, err)
		}
		cb.basicInsertString(act.Position, act.Data)
	case undo.Remove:
		cb.basicDeleteChars(act.Position, act.Len())
	}
	cb.uh.CompletedRedoStep()
	return nil
}

// Undo replays the whole current undo step and returns the position where the
// caret should land, or -1 when nothing was undone. An allocation failure stops
// the replay at the action that could not be applied.
func (cb *CellBuffer) Undo() (int, error) {
	if cb.checkReadOnly() || cb.enteredModification != 0 || !cb.collectingUndo || !cb.CanUndo() {
		return -1, nil
	}
	cb.enteredModification++
	defer func() { cb.enteredModification-- }()
	startSavePoint := cb.IsSavePoint()
	return cb.replay(cb.uh.StartUndo(), FlagUndo, startSavePoint)
}

func (cb *CellBuffer) Redo() (int, error) {
	if cb.checkReadOnly() || cb.enteredModification != 0 || !cb.collectingUndo || !cb.CanRedo() {
		return -1, nil
	}
	cb.enteredModification++
	defer func() { cb.enteredModification-- }()
	startSavePoint := cb.IsSavePoint()
	return cb.replay(cb.uh.StartRedo(), FlagRedo, startSavePoint)
}

// TentativeUndo discards every action since TentativeStart without leaving
// them available for redo.
func (cb *CellBuffer) TentativeUndo() (int, error) {
	if !cb.TentativeActive() || cb.checkReadOnly() || cb.enteredModification != 0 {
		return -1, nil
	}
	cb.enteredModification++
	defer func() { cb.enteredModification-- }()
	startSavePoint := cb.IsSavePoint()
	newPos, err := cb.replay(cb.uh.TentativeSteps(), FlagUndo, startSavePoint)
	if err != nil {
		return newPos, err
	}
	cb.uh.TentativeCommit()
	return newPos, nil
}

func (cb *CellBuffer) replay(steps int, dir Flag, startSavePoint bool) (int, error) {
	newPos := -1
	var err error
	multiLine := false
	coalescedPos, coalescedLen := -1, 0
	prevRemovePos, prevRemoveLen := -1, 0
	for step := 0; step < steps; step++ {
		prevLines := cb.Lines()
		var act undo.Action
		if dir == FlagUndo {
			act = cb.uh.GetUndoStep()
		} else {
			act = cb.uh.GetRedoStep()
		}
		// Undoing a remove inserts, undoing an insert deletes; redo is direct.
		inserting := (act.Type == undo.Remove) == (dir == FlagUndo)
		switch {
		case act.Type == undo.Container:
			cb.notify(Event{Kind: ContainerAction, Flags: dir, Token: act.Position})
			if !act.MayCoalesce {
				coalescedPos, coalescedLen = -1, 0
				prevRemovePos, prevRemoveLen = -1, 0
			}
		case act.Type == undo.Start:
		case inserting:
			if err = cb.reserve(act.Data); err != nil {
				err = fmt.Errorf("replay %d bytes at %d: %w", act.Len(), act.Position, err)
				break
			}
			cb.notify(Event{Kind: BeforeInsert, Flags: dir, Position: act.Position, Length: act.Len(), Text: act.Data})
		default:
			cb.notify(Event{Kind: BeforeDelete, Flags: dir, Position: act.Position, Length: act.Len(), Text: act.Data})
		}
		if err != nil {
			break
		}
		if dir == FlagUndo {
			err = cb.PerformUndoStep()
		} else {
			err = cb.PerformRedoStep()
		}
		if err != nil {
			break
		}
		if act.Type == undo.Container || act.Type == undo.Start {
			continue
		}
		cb.modifiedAt(act.Position)
		newPos = act.Position
		kind := Deleted
		if inserting {
			kind = Inserted
			newPos += act.Len()
		}
		if dir == FlagUndo {
			if inserting {
				// Undoing a run of backspaces leaves the caret after the run.
				if coalescedLen > 0 && (act.Position == prevRemovePos || act.Position == prevRemovePos+prevRemoveLen) {
					coalescedLen += act.Len()
					newPos = coalescedPos + coalescedLen
				} else {
					coalescedPos, coalescedLen = act.Position, act.Len()
				}
				prevRemovePos, prevRemoveLen = act.Position, act.Len()
			} else {
				coalescedPos, coalescedLen = -1, 0
				prevRemovePos, prevRemoveLen = -1, 0
			}
		}
		flags := dir
		if steps > 1 {
			flags |= FlagMultiStep
		}
		linesAdded := cb.Lines() - prevLines
		if linesAdded != 0 {
			multiLine = true
		}
		if step == steps-1 {
			flags |= FlagLastStep
			if multiLine {
				flags |= FlagMultiLine
			}
		}
		cb.notify(Event{Kind: kind, Flags: flags, Position: act.Position, Length: act.Len(), Text: act.Data, LinesAdded: linesAdded})
	}
	if end := cb.IsSavePoint(); end != startSavePoint {
		cb.notify(Event{Kind: SavePointChanged, AtSavePoint: end})
	}
	return newPos, err
}
