// Package editor is the editing state machine on top of the cell buffer. It
// owns the document, the selection and the fold state, turns commands into
// buffer mutations and reports what changed to the host through
// notifications.
package editor

import (
	"bytes"
	"errors"
	"slices"

	"github.com/kobzarvs/sciedit/internal/cellbuffer"
	"github.com/kobzarvs/sciedit/internal/config"
	"github.com/kobzarvs/sciedit/internal/gapbuffer"
	"github.com/kobzarvs/sciedit/internal/logger"
	"github.com/kobzarvs/sciedit/internal/selection"
)

type State int

const (
	StateIdle State = iota
	StatePainting
	StateDragSelecting
	StateRectangleDragging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePainting:
		return "painting"
	case StateDragSelecting:
		return "drag-selecting"
	case StateRectangleDragging:
		return "rectangle-dragging"
	}
	return "unknown"
}

// Status is the outcome of the last failing operation. It stays set until
// cleared with SetStatus(StatusOK).
type Status int

const (
	StatusOK Status = iota
	StatusFailure
	StatusBadAlloc
)

type EOLMode int

const (
	EOLCRLF EOLMode = iota
	EOLCR
	EOLLF
)

func ParseEOLMode(s string) EOLMode {
	switch s {
	case "crlf":
		return EOLCRLF
	case "cr":
		return EOLCR
	}
	return EOLLF
}

func (m EOLMode) String() string {
	switch m {
	case EOLCRLF:
		return "crlf"
	case EOLCR:
		return "cr"
	}
	return "lf"
}

// EOL returns the line end inserted by NewLine in this mode.
func (m EOLMode) EOL() string {
	switch m {
	case EOLCRLF:
		return "\r\n"
	case EOLCR:
		return "\r"
	}
	return "\n"
}

type MultiPaste int

const (
	MultiPasteOnce MultiPaste = iota
	MultiPasteEach
)

type Editor struct {
	doc     *cellbuffer.CellBuffer
	sel     *selection.Selection
	cs      *Contraction
	measure Measurer
	clip    Clipboard
	sink    NotificationSink

	state          State
	paintPrev      State
	paintAbandoned bool
	status         Status

	tabWidth                  int
	indent                    int
	useTabs                   bool
	tabIndents                bool
	backspaceUnindents        bool
	userVirtualSpace          bool
	rectVirtualSpace          bool
	noWrapLineStart           bool
	additionalSelectionTyping bool
	multiPaste                MultiPaste
	eolMode                   EOLMode
	overtype                  bool
	caretSticky               bool

	topLine       int
	linesOnScreen int
	textWidth     int
	xOffset       int
	lastXChosen   int

	pendingUpdate UpdateFlags
	lastCopy      copied
	drag          dragState
}

func New(opts config.EditorOptions) *Editor {
	e := &Editor{
		doc:  cellbuffer.New(),
		sel:  selection.New(),
		cs:   NewContraction(),
		clip: &memoryClipboard{},
	}
	e.measure = ColumnMeasurer{TabWidth: 4}
	e.SetOptions(opts)
	e.doc.Watch(e.notifyModified)
	return e
}

// SetOptions applies the [editor] section of the configuration.
func (e *Editor) SetOptions(opts config.EditorOptions) {
	e.tabWidth = max(opts.TabWidth, 1)
	e.indent = max(opts.Indent, 0)
	e.useTabs = opts.UseTabs
	e.tabIndents = opts.TabIndents
	e.backspaceUnindents = opts.BackspaceUnindents
	e.userVirtualSpace = opts.HasVirtualSpace(config.VirtualSpaceUser)
	e.rectVirtualSpace = opts.HasVirtualSpace(config.VirtualSpaceRectangular)
	e.noWrapLineStart = opts.HasVirtualSpace(config.VirtualSpaceNoWrapLineStart)
	e.additionalSelectionTyping = opts.AdditionalSelectionTyping
	e.multiPaste = MultiPasteEach
	if opts.MultiPaste == "once" {
		e.multiPaste = MultiPasteOnce
	}
	e.eolMode = ParseEOLMode(opts.EOLMode)
	e.overtype = opts.Overtype
	e.caretSticky = opts.CaretSticky
	e.doc.SetReadOnly(opts.ReadOnly)
	e.doc.SetUndoCollection(opts.UndoCollection)
	if m, ok := e.measure.(ColumnMeasurer); ok {
		m.TabWidth = e.tabWidth
		e.measure = m
	}
}

func (e *Editor) SetNotificationSink(sink NotificationSink) {
	e.sink = sink
}

func (e *Editor) SetMeasurer(m Measurer) {
	e.measure = m
}

func (e *Editor) SetClipboard(c Clipboard) {
	e.clip = c
}

func (e *Editor) SetUserVirtualSpace(on bool) { e.userVirtualSpace = on }
func (e *Editor) SetRectangularVirtualSpace(on bool) { e.rectVirtualSpace = on }
func (e *Editor) SetAdditionalSelectionTyping(on bool) { e.additionalSelectionTyping = on }
func (e *Editor) SetMultiPaste(mode MultiPaste) { e.multiPaste = mode }
func (e *Editor) SetEOLMode(mode EOLMode) { e.eolMode = mode }
func (e *Editor) EOLMode() EOLMode { return e.eolMode }
func (e *Editor) Overtype() bool { return e.overtype }
func (e *Editor) SetOvertype(on bool) { e.overtype = on }
func (e *Editor) SetBackspaceUnindents(on bool) { e.backspaceUnindents = on }
func (e *Editor) SetUseTabs(on bool) { e.useTabs = on }
func (e *Editor) SetIndent(n int) { e.indent = max(n, 0) }
func (e *Editor) SetTabIndents(on bool) { e.tabIndents = on }
func (e *Editor) TabWidth() int { return e.tabWidth }

// Emit sends n to the host. The control layer uses it for its own
// notifications.
func (e *Editor) Emit(n Notification) {
	if e.sink != nil {
		e.sink(n)
	}
}

func (e *Editor) Status() Status {
	return e.status
}

func (e *Editor) SetStatus(s Status) {
	e.status = s
}

func (e *Editor) State() State {
	return e.state
}

// Document exposes the buffer for styling and read access. Text changes must
// go through the editor so the selection and folds follow them.
func (e *Editor) Document() *cellbuffer.CellBuffer {
	return e.doc
}

// Selection returns a copy of the ranges and the selection type.
func (e *Editor) Selection() ([]selection.Range, selection.Type) {
	return e.sel.Ranges(), e.sel.Type
}

func (e *Editor) MainSelection() int {
	return e.sel.Main()
}

func (e *Editor) Contraction() *Contraction {
	return e.cs
}

// LoadText replaces the document without recording undo and marks the result
// as saved.
func (e *Editor) LoadText(text string) {
	collecting := e.doc.IsCollectingUndo()
	readOnly := e.doc.IsReadOnly()
	e.doc.SetReadOnly(false)
	e.doc.SetUndoCollection(false)
	e.del(0, e.doc.Length())
	e.insert(0, text)
	e.doc.SetUndoCollection(collecting)
	e.doc.SetReadOnly(readOnly)
	e.doc.DeleteUndoHistory()
	e.doc.SetSavePoint()
	e.sel.Clear()
	e.cs.ShowAll()
	e.topLine = 0
	e.xOffset = 0
	e.lastXChosen = 0
	e.Emit(Notification{Kind: NotifyRedrawAll})
}

// notifyModified is the buffer watcher. It keeps the selection and the fold
// state in step with every change, including undo and redo.
func (e *Editor) notifyModified(ev cellbuffer.Event) {
	switch ev.Kind {
	case cellbuffer.BeforeInsert:
		e.abandonPaint()
		end := ev.Position
		line := e.doc.LineFromPosition(ev.Position)
		if bytes.ContainsAny(ev.Text, "\r\n") && ev.Position != e.doc.LineStart(line) {
			end = e.doc.LineStart(line + 1)
		}
		e.needShown(ev.Position, end-ev.Position)
	case cellbuffer.BeforeDelete:
		e.abandonPaint()
		e.needShown(ev.Position, ev.Length)
	case cellbuffer.Inserted, cellbuffer.Deleted:
		insertion := ev.Kind == cellbuffer.Inserted
		if ev.LinesAdded != 0 {
			line := e.doc.LineFromPosition(ev.Position)
			if ev.Position > e.doc.LineStart(line) {
				line++
			}
			if insertion {
				e.cs.InsertLines(line, ev.LinesAdded)
			} else {
				e.cs.DeleteLines(line, -ev.LinesAdded)
			}
		}
		e.sel.MovePositions(insertion, ev.Position, ev.Length)
		e.pendingUpdate |= UpdateContent
		kind := NotifyTextInserted
		if !insertion {
			kind = NotifyTextDeleted
		}
		e.Emit(Notification{
			Kind:       kind,
			Pos:        ev.Position,
			Len:        ev.Length,
			Text:       string(ev.Text),
			LinesAdded: ev.LinesAdded,
			Undo:       ev.Flags&cellbuffer.FlagUndo != 0,
			Redo:       ev.Flags&cellbuffer.FlagRedo != 0,
		})
		if ev.LinesAdded != 0 {
			e.Emit(Notification{Kind: NotifyRedrawAll})
		} else {
			line := e.doc.LineFromPosition(ev.Position)
			e.Emit(Notification{Kind: NotifyInvalidate, Pos: e.doc.LineStart(line), End: e.doc.LineStart(line + 1)})
		}
	case cellbuffer.StyleChanged:
		if e.state != StatePainting {
			e.Emit(Notification{Kind: NotifyInvalidate, Pos: ev.Position, End: ev.Position + ev.Length})
		}
	case cellbuffer.SavePointChanged:
		if ev.AtSavePoint {
			e.Emit(Notification{Kind: NotifySavePointReached})
		} else {
			e.Emit(Notification{Kind: NotifySavePointLeft})
		}
	case cellbuffer.ModifyAttempt:
		logger.Debug("edit rejected on read-only document")
		e.Emit(Notification{Kind: NotifyModifyAttempt})
	case cellbuffer.LevelChanged:
		e.foldChanged(ev.Line, ev.LevelNow, ev.LevelPrev)
		e.Emit(Notification{Kind: NotifyFoldChanged, Line: ev.Line})
	case cellbuffer.MarkerChanged:
		e.Emit(Notification{Kind: NotifyMarkerChanged, Line: ev.Line})
	case cellbuffer.AnnotationChanged:
		e.annotationChanged(ev.Line)
	case cellbuffer.ContainerAction:
		e.Emit(Notification{
			Kind:  NotifyContainerUndo,
			Token: ev.Token,
			Undo:  ev.Flags&cellbuffer.FlagUndo != 0,
			Redo:  ev.Flags&cellbuffer.FlagRedo != 0,
		})
	}
}

func (e *Editor) annotationChanged(line int) {
	if line < 0 {
		for l := 0; l < e.doc.Lines(); l++ {
			e.cs.SetHeight(l, 1+e.doc.AnnotationLines(l))
		}
	} else {
		e.cs.SetHeight(line, 1+e.doc.AnnotationLines(line))
	}
	e.Emit(Notification{Kind: NotifyRedrawAll})
}

// readOnlyRejects reports an edit attempt on a read-only document before any
// change is made. The host may clear the flag in response.
func (e *Editor) readOnlyRejects() bool {
	if !e.doc.IsReadOnly() {
		return false
	}
	logger.Debug("edit rejected on read-only document")
	e.Emit(Notification{Kind: NotifyModifyAttempt})
	return e.doc.IsReadOnly()
}

func (e *Editor) abandonPaint() {
	if e.state == StatePainting {
		e.paintAbandoned = true
	}
}

// insert and del run a buffer mutation and fold its error into Status.
func (e *Editor) insert(pos int, text string) int {
	n, err := e.doc.InsertString(pos, text)
	e.noteError(err, "insert", pos)
	return n
}

func (e *Editor) del(pos, length int) int {
	n, err := e.doc.DeleteChars(pos, length)
	e.noteError(err, "delete", pos)
	return n
}

func (e *Editor) noteError(err error, op string, pos int) {
	switch {
	case err == nil:
	case errors.Is(err, cellbuffer.ErrReadOnly):
		logger.Debug("read-only document", "op", op, "pos", pos)
	case errors.Is(err, gapbuffer.ErrOutOfMemory):
		e.status = StatusBadAlloc
		logger.Error("buffer allocation failed", "op", op, "pos", pos, "error", err)
	default:
		e.status = StatusFailure
		logger.Error("buffer edit failed", "op", op, "pos", pos, "error", err)
	}
}

// undoGroup opens an undo group when needed and returns the function that
// closes it.
func (e *Editor) undoGroup(needed bool) func() {
	if !needed {
		return func() {}
	}
	e.doc.BeginUndoAction()
	return e.doc.EndUndoAction
}

// BeginPaint marks the start of drawing and asks the host to style every line
// on screen.
func (e *Editor) BeginPaint() {
	if e.state != StatePainting {
		e.paintPrev = e.state
	}
	e.state = StatePainting
	e.paintAbandoned = false
	last := e.cs.DocFromDisplay(e.topLine + max(e.linesOnScreen, 1))
	e.EnsureStyledTo(e.doc.LineStart(last + 1))
}

// EndPaint reports whether the document changed while painting, in which case
// the paint must be redone.
func (e *Editor) EndPaint() bool {
	restart := e.paintAbandoned
	e.state = e.paintPrev
	e.paintAbandoned = false
	return restart
}

// EnsureStyledTo emits StyleNeeded when styling lags behind pos.
func (e *Editor) EnsureStyledTo(pos int) {
	pos = min(pos, e.doc.Length())
	if e.doc.EndStyled() < pos {
		e.Emit(Notification{Kind: NotifyStyleNeeded, Pos: pos})
	}
}

// SetViewSize tells the editor how many display lines and columns fit on
// screen.
func (e *Editor) SetViewSize(lines, width int) {
	e.linesOnScreen = max(lines, 0)
	e.textWidth = max(width, 0)
}

func (e *Editor) LinesOnScreen() int {
	return e.linesOnScreen
}

func (e *Editor) TopLine() int {
	return e.topLine
}

// SetTopLine scrolls so that display line top is first on screen.
func (e *Editor) SetTopLine(top int) {
	top = min(top, e.cs.LinesDisplayed()-1)
	top = max(top, 0)
	if top != e.topLine {
		e.topLine = top
		e.pendingUpdate |= UpdateVScroll
		e.Emit(Notification{Kind: NotifyRedrawAll})
	}
}

func (e *Editor) XOffset() int {
	return e.xOffset
}

func (e *Editor) SetXOffset(x int) {
	x = max(x, 0)
	if x != e.xOffset {
		e.xOffset = x
		e.pendingUpdate |= UpdateHScroll
		e.Emit(Notification{Kind: NotifyRedrawAll})
	}
}

// EnsureCaretVisible scrolls the main caret into view.
func (e *Editor) EnsureCaretVisible() {
	caret := e.sel.RangeMain().Caret
	line := e.doc.LineFromPosition(caret.Pos)
	if e.linesOnScreen > 0 {
		display := e.cs.DisplayFromDoc(line)
		top := e.topLine
		switch {
		case display < top:
			top = display
		case display >= top+e.linesOnScreen:
			top = display - e.linesOnScreen + 1
		}
		e.SetTopLine(top)
	}
	if e.textWidth > 0 {
		x := e.xFromPosition(caret)
		xo := e.xOffset
		switch {
		case x < xo:
			xo = x
		case x >= xo+e.textWidth:
			xo = x - e.textWidth + 1
		}
		e.SetXOffset(xo)
	}
}

// flush sends UpdateUI for whatever changed during a command.
func (e *Editor) flush(before []selection.Range, beforeType selection.Type) {
	if e.sel.Type != beforeType || !slices.Equal(before, e.sel.Ranges()) {
		e.pendingUpdate |= UpdateSelection
		e.Emit(Notification{Kind: NotifySelectionChanged})
	}
	if e.pendingUpdate != 0 {
		flags := e.pendingUpdate
		e.pendingUpdate = 0
		e.Emit(Notification{Kind: NotifyUpdateUI, Flags: flags})
	}
}

// Queries.

func (e *Editor) Text() string { return e.doc.Text() }
func (e *Editor) Length() int { return e.doc.Length() }
func (e *Editor) TextRange(start, end int) string { return e.doc.TextRange(start, end) }
func (e *Editor) LineCount() int { return e.doc.Lines() }
func (e *Editor) LineStart(line int) int { return e.doc.LineStart(line) }
func (e *Editor) LineEnd(line int) int { return e.doc.LineEnd(line) }
func (e *Editor) LineFromPosition(pos int) int { return e.doc.LineFromPosition(pos) }
func (e *Editor) CanUndo() bool { return e.doc.CanUndo() }
func (e *Editor) CanRedo() bool { return e.doc.CanRedo() }
func (e *Editor) ReadOnly() bool { return e.doc.IsReadOnly() }

// Modified reports unsaved changes.
func (e *Editor) Modified() bool {
	return !e.doc.IsSavePoint()
}

func (e *Editor) CurrentPos() int {
	return e.sel.MainCaret()
}

func (e *Editor) Anchor() int {
	return e.sel.MainAnchor()
}

func (e *Editor) SelectionCount() int {
	return e.sel.Count()
}

func (e *Editor) RangeCaret(i int) int {
	if i < 0 || i >= e.sel.Count() {
		return -1
	}
	return e.sel.Range(i).Caret.Pos
}

func (e *Editor) RangeAnchor(i int) int {
	if i < 0 || i >= e.sel.Count() {
		return -1
	}
	return e.sel.Range(i).Anchor.Pos
}

// SelectionText joins the text of every range in document order. Each range
// of a rectangular selection is followed by a line end, as Copy writes it.
func (e *Editor) SelectionText() string {
	var b bytes.Buffer
	for _, r := range e.sortedRanges() {
		b.WriteString(e.doc.TextRange(r.Start().Pos, r.End().Pos))
		if e.sel.Type == selection.Rectangle {
			b.WriteString(e.eolMode.EOL())
		}
	}
	return b.String()
}

func (e *Editor) sortedRanges() []selection.Range {
	idx := e.sel.Sorted()
	out := make([]selection.Range, len(idx))
	for i, r := range idx {
		out[i] = e.sel.Range(r)
	}
	return out
}
