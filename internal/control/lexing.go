package control

import (
	"github.com/kobzarvs/sciedit/internal/logger"
)

// Accessor is the document view a lexer works through. Styling goes
// through a cursor: StartStyling positions it and each SetStyling call
// styles the next run and advances it.
type Accessor interface {
	Length() int
	TextRange(start, end int) string
	LineCount() int
	LineStart(line int) int
	LineFromPosition(pos int) int
	Level(line int) int
	SetLevel(line, level int) int
	StartStyling(pos int)
	SetStyling(length int, style byte)
	SetStylingEx(styles []byte)
}

// Lexer styles [start, end) of a document and may report fold levels.
// start is always a line start.
type Lexer interface {
	Name() string
	Lex(doc Accessor, start, end int) error
}

// SetLexer installs lx and restyles the whole document with it. A nil lexer
// leaves styling to the host.
func (c *Control) SetLexer(lx Lexer) {
	c.lexer = lx
	c.Document().StartStyling(0)
	if lx != nil {
		c.Document().ClearStyles()
	}
}

func (c *Control) Lexer() Lexer {
	return c.lexer
}

func (c *Control) Level(line int) int {
	return c.Document().Level(line)
}

func (c *Control) SetLevel(line, level int) int {
	return c.Document().SetLevel(line, level)
}

func (c *Control) StartStyling(pos int) {
	c.Document().StartStyling(pos)
}

func (c *Control) SetStyling(length int, style byte) {
	c.Document().SetStyleFor(length, style)
}

func (c *Control) SetStylingEx(styles []byte) {
	c.Document().SetStyles(styles)
}

// Colourise runs the lexer over [start, end). A negative end means the end
// of the document. Whatever the lexer leaves unstyled gets style 0.
func (c *Control) Colourise(start, end int) {
	doc := c.Document()
	if end < 0 || end > doc.Length() {
		end = doc.Length()
	}
	start = min(max(start, 0), end)
	if c.lexer == nil {
		return
	}
	c.lex(start, end)
	if styled := doc.EndStyled(); styled < end {
		doc.SetStyleFor(end-styled, 0)
	}
}

// lex calls the lexer. A lexer that panics is switched off and the range is
// left as plain text.
func (c *Control) lex(start, end int) {
	lx := c.lexer
	doc := c.Document()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("lexer failed", "lexer", lx.Name(), "start", start, "end", end, "panic", r)
			c.lexer = nil
			doc.StartStyling(start)
			doc.SetStyleFor(end-start, 0)
		}
	}()
	doc.StartStyling(start)
	if err := lx.Lex(c, start, end); err != nil {
		logger.Warn("lexer error", "lexer", lx.Name(), "error", err)
		doc.StartStyling(start)
		doc.SetStyleFor(end-start, 0)
	}
}
