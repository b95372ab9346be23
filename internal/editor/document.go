package editor

import (
	"strings"
	"unicode/utf8"

	"github.com/kobzarvs/sciedit/internal/selection"
)

func (e *Editor) lineOf(pos int) int {
	return e.doc.LineFromPosition(pos)
}

// positionAfter steps over one character forward: a CRLF pair or a UTF-8
// sequence.
func (e *Editor) positionAfter(pos int) int {
	if pos >= e.doc.Length() {
		return e.doc.Length()
	}
	if e.doc.IsCrLf(pos) {
		return pos + 2
	}
	_, size := utf8.DecodeRuneInString(e.doc.TextRange(pos, pos+utf8.UTFMax))
	return pos + max(size, 1)
}

func (e *Editor) positionBefore(pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos >= 2 && e.doc.IsCrLf(pos-2) {
		return pos - 2
	}
	_, size := utf8.DecodeLastRuneInString(e.doc.TextRange(pos-utf8.UTFMax, pos))
	return pos - max(size, 1)
}

// inLineEnd reports whether pos is at or inside the line end of its line.
func (e *Editor) inLineEnd(pos int) bool {
	return pos >= e.doc.LineEnd(e.lineOf(pos))
}

func (e *Editor) xFromPosition(p selection.Position) int {
	line := e.lineOf(p.Pos)
	return e.measure.Width(e.doc.TextRange(e.doc.LineStart(line), p.Pos), 0) + p.Virtual
}

// positionFromLineX returns the position closest to column x on line. Columns
// past the line end become virtual space when allowVirtual is set.
func (e *Editor) positionFromLineX(line, x int, allowVirtual bool) selection.Position {
	start := e.doc.LineStart(line)
	text := e.doc.TextRange(start, e.doc.LineEnd(line))
	col := 0
	for _, c := range clusters(text) {
		w := e.measure.Width(c.text, col)
		if col+w > x {
			if 2*(x-col) < w {
				return selection.At(start + c.offset)
			}
			return selection.At(start + c.offset + len(c.text))
		}
		col += w
	}
	p := selection.At(start + len(text))
	if allowVirtual && x > col {
		p.Virtual = x - col
	}
	return p
}

// column counts characters from the line start, expanding tabs.
func (e *Editor) column(pos int) int {
	line := e.lineOf(pos)
	col := 0
	for _, r := range e.doc.TextRange(e.doc.LineStart(line), pos) {
		if r == '\t' {
			col += e.tabWidth - col%e.tabWidth
		} else {
			col++
		}
	}
	return col
}

func (e *Editor) indentSize() int {
	if e.indent > 0 {
		return e.indent
	}
	return e.tabWidth
}

func (e *Editor) lineIndentPosition(line int) int {
	pos := e.doc.LineStart(line)
	end := e.doc.Length()
	for pos < end {
		ch := e.doc.CharAt(pos)
		if ch != ' ' && ch != '\t' {
			break
		}
		pos++
	}
	return pos
}

func (e *Editor) lineIndentation(line int) int {
	return e.column(e.lineIndentPosition(line))
}

func (e *Editor) createIndentation(indent int) string {
	var b strings.Builder
	if e.useTabs {
		for indent >= e.tabWidth {
			b.WriteByte('\t')
			indent -= e.tabWidth
		}
	}
	b.WriteString(strings.Repeat(" ", max(indent, 0)))
	return b.String()
}

// setLineIndentation rewrites the leading whitespace of line and returns the
// position just after it.
func (e *Editor) setLineIndentation(line, indent int) int {
	indent = max(indent, 0)
	if indent == e.lineIndentation(line) {
		return e.lineIndentPosition(line)
	}
	text := e.createIndentation(indent)
	start := e.doc.LineStart(line)
	defer e.undoGroup(true)()
	e.del(start, e.lineIndentPosition(line)-start)
	return start + e.insert(start, text)
}

// shiftLines shifts every non-empty line in [top, bottom] by one indent step.
func (e *Editor) shiftLines(forwards bool, bottom, top int) {
	for line := bottom; line >= top; line-- {
		indent := e.lineIndentation(line)
		if forwards {
			if e.doc.LineStart(line) < e.doc.LineEnd(line) {
				e.setLineIndentation(line, indent+e.indentSize())
			}
		} else {
			e.setLineIndentation(line, indent-e.indentSize())
		}
	}
}

type charClass int

const (
	classSpace charClass = iota
	classNewLine
	classWord
	classPunctuation
)

func classOf(ch byte) charClass {
	switch {
	case ch == '\r' || ch == '\n':
		return classNewLine
	case ch == ' ' || ch == '\t':
		return classSpace
	case ch >= 0x80 || ch == '_' || ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z':
		return classWord
	}
	return classPunctuation
}

func (e *Editor) isWordChar(ch byte) bool {
	return classOf(ch) == classWord
}

// nextWordStart moves to the start of the next word (delta > 0) or the start
// of the previous one.
func (e *Editor) nextWordStart(pos, delta int) int {
	length := e.doc.Length()
	if delta < 0 {
		for pos > 0 && classOf(e.doc.CharAt(pos-1)) == classSpace {
			pos--
		}
		if pos > 0 {
			start := classOf(e.doc.CharAt(pos - 1))
			for pos > 0 && classOf(e.doc.CharAt(pos-1)) == start {
				pos--
			}
		}
		return pos
	}
	if pos < length {
		start := classOf(e.doc.CharAt(pos))
		for pos < length && classOf(e.doc.CharAt(pos)) == start {
			pos++
		}
	}
	for pos < length && classOf(e.doc.CharAt(pos)) == classSpace {
		pos++
	}
	return pos
}

// WordStart returns the start of the run of word characters ending at pos.
func (e *Editor) WordStart(pos int) int {
	for pos > 0 && e.isWordChar(e.doc.CharAt(pos-1)) {
		pos--
	}
	return pos
}

func (e *Editor) WordEnd(pos int) int {
	for pos < e.doc.Length() && e.isWordChar(e.doc.CharAt(pos)) {
		pos++
	}
	return pos
}

// realizeVirtualSpace fills virtual space with real spaces and returns the
// position after them.
func (e *Editor) realizeVirtualSpace(pos, virtual int) int {
	if virtual <= 0 {
		return pos
	}
	// Virtual space is only meaningful at a line end.
	if !e.inLineEnd(pos) {
		return pos
	}
	return pos + e.insert(pos, strings.Repeat(" ", virtual))
}
