package editor

import (
	"strings"

	"github.com/kobzarvs/sciedit/internal/logger"
	"github.com/kobzarvs/sciedit/internal/selection"
)

// Clipboard is where Cut and Copy put text and Paste takes it from.
type Clipboard interface {
	Get() (string, error)
	Set(text string) error
}

type memoryClipboard struct {
	text string
}

func (c *memoryClipboard) Get() (string, error) { return c.text, nil }

func (c *memoryClipboard) Set(text string) error {
	c.text = text
	return nil
}

// NewMemoryClipboard returns a process-local clipboard.
func NewMemoryClipboard() Clipboard {
	return &memoryClipboard{}
}

type pasteShape int

const (
	shapeStream pasteShape = iota
	shapeRectangular
	shapeLine
)

// copied remembers the shape of the last copy so that pasting the same text
// back reproduces it.
type copied struct {
	text  string
	shape pasteShape
}

func (e *Editor) toClipboard(text string, shape pasteShape) {
	e.lastCopy = copied{text: text, shape: shape}
	if err := e.clip.Set(text); err != nil {
		logger.Warn("clipboard write failed", "error", err)
		e.status = StatusFailure
	}
}

// Copy puts the selected text on the clipboard. Ranges of a rectangular
// selection are copied top to bottom, each followed by a line end.
func (e *Editor) Copy() {
	e.copySelection(false)
}

func (e *Editor) copyAllowLine() {
	e.copySelection(true)
}

func (e *Editor) copySelection(allowLine bool) {
	eol := e.eolMode.EOL()
	if e.sel.Empty() {
		if allowLine {
			line := e.lineOf(e.sel.MainCaret())
			e.toClipboard(e.doc.TextRange(e.doc.LineStart(line), e.doc.LineEnd(line))+eol, shapeLine)
		}
		return
	}
	ranges := e.sel.Ranges()
	if e.sel.Type == selection.Rectangle {
		ranges = e.sortedRanges()
	}
	var b strings.Builder
	for _, r := range ranges {
		b.WriteString(e.doc.TextRange(r.Start().Pos, r.End().Pos))
		if e.sel.Type == selection.Rectangle {
			b.WriteString(eol)
		}
	}
	shape := shapeStream
	switch {
	case e.sel.IsRectangular():
		shape = shapeRectangular
	case e.sel.Type == selection.Lines:
		shape = shapeLine
	}
	e.toClipboard(b.String(), shape)
}

// Cut copies and then deletes the selection.
func (e *Editor) Cut() {
	if e.readOnlyRejects() {
		return
	}
	e.Copy()
	e.clearSelection(false)
}

func (e *Editor) lineCut() {
	start, end := e.mainLines()
	e.SetSel(start, end)
	e.Cut()
	e.setLastXChosen()
}

func (e *Editor) lineCopy() {
	start, end := e.mainLines()
	e.toClipboard(e.doc.TextRange(start, end), shapeLine)
}

func (e *Editor) paste() {
	text, err := e.clip.Get()
	if err != nil {
		logger.Warn("clipboard read failed", "error", err)
		e.status = StatusFailure
		return
	}
	shape := shapeStream
	if text == e.lastCopy.text {
		shape = e.lastCopy.shape
	}
	if shape == shapeLine && !e.sel.Empty() {
		shape = shapeStream
	}
	defer e.undoGroup(true)()
	e.clearSelection(e.multiPaste == MultiPasteEach)
	e.insertPasteShape(convertLineEnds(text, e.eolMode), shape)
	e.EnsureCaretVisible()
}

// convertLineEnds rewrites every line end in text for mode.
func convertLineEnds(text string, mode EOLMode) string {
	eol := mode.EOL()
	return strings.NewReplacer("\r\n", eol, "\r", eol, "\n", eol).Replace(text)
}

func (e *Editor) insertPasteShape(text string, shape pasteShape) {
	switch shape {
	case shapeRectangular:
		start := e.sel.RangeMain().Start()
		if e.sel.IsRectangular() {
			start = e.sel.Rectangular().Start()
		}
		e.pasteRectangular(start, text)
	case shapeLine:
		caret := e.sel.MainCaret()
		at := e.doc.LineStart(e.lineOf(caret))
		n := e.insert(at, text)
		if text != "" && !strings.HasSuffix(text, "\n") && !strings.HasSuffix(text, "\r") {
			n += e.insert(at+n, e.eolMode.EOL())
		}
		if caret == at {
			e.setEmptySelection(at + n)
		}
	default:
		e.insertPaste(text)
	}
}

func (e *Editor) insertPaste(text string) {
	if e.multiPaste == MultiPasteOnce {
		start := e.sel.RangeMain().Start()
		if e.sel.IsRectangular() {
			start = e.sel.Rectangular().Start()
		}
		pos := e.realizeVirtualSpace(start.Pos, start.Virtual)
		if n := e.insert(pos, text); n > 0 {
			e.setEmptySelection(pos + n)
		}
		return
	}
	e.sel.Hold()
	for _, r := range reversed(e.sel.Sorted()) {
		rng := e.sel.RangeAt(r)
		pos := rng.Start().Pos
		if !rng.Empty() {
			if rng.Length() > 0 {
				e.del(pos, rng.Length())
				rng.ClearVirtualSpace()
			} else {
				rng.MinimizeVirtualSpace()
			}
		}
		pos = e.realizeVirtualSpace(pos, rng.Caret.Virtual)
		if n := e.insert(pos, text); n > 0 {
			*rng = selection.Caret(pos + n)
		}
		rng.ClearVirtualSpace()
	}
	e.sel.Release()
}

// pasteRectangular inserts each line of text at the same column on
// successive lines starting at p, padding short lines and adding lines at the
// end of the document as needed.
func (e *Editor) pasteRectangular(p selection.Position, text string) {
	if e.readOnlyRejects() {
		return
	}
	defer e.undoGroup(true)()
	start := e.realizeVirtualSpace(p.Pos, p.Virtual)
	x := e.xFromPosition(selection.At(start))
	line := e.lineOf(start)
	text = strings.TrimRight(text, "\r\n")
	pieces := strings.Split(convertLineEnds(text, EOLLF), "\n")
	caret := start
	for i, piece := range pieces {
		if i > 0 {
			line++
			if line >= e.doc.Lines() {
				e.insert(e.doc.Length(), e.eolMode.EOL())
			}
			caret = e.positionFromLineX(line, x, false).Pos
			if piece != "" {
				if gap := x - e.xFromPosition(selection.At(caret)); gap > 0 {
					caret += e.insert(caret, strings.Repeat(" ", gap))
				}
			}
		}
		caret += e.insert(caret, piece)
	}
	e.setEmptySelection(start)
}
