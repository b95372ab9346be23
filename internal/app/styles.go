package app

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/kobzarvs/sciedit/internal/config"
	"github.com/kobzarvs/sciedit/internal/lexer"
)

// palette holds the screen styles built from the [styles] table.
type palette struct {
	text         []tcell.Style // indexed by lexer style number
	lineNumber   tcell.Style
	selection    tcell.Style
	caretLine    tcell.Style
	foldMargin   tcell.Style
	status       tcell.Style
	callTip      tcell.Style
	callTipHigh  tcell.Style
	autoComplete tcell.Style
	autoSelected tcell.Style
}

func newPalette(styles map[string]config.Style) palette {
	base := toStyle(styles["default"], tcell.StyleDefault)
	p := palette{
		text:         make([]tcell.Style, lexer.StyleCount()),
		lineNumber:   toStyle(styles["line-number"], base),
		selection:    toStyle(styles["selection"], base),
		caretLine:    toStyle(styles["caret-line"], base),
		foldMargin:   toStyle(styles["fold-margin"], base),
		status:       toStyle(styles["statusline"], base),
		callTip:      toStyle(styles["calltip"], base),
		autoComplete: toStyle(styles["autocomplete"], base),
	}
	for i := range p.text {
		p.text[i] = toStyle(styles[lexer.StyleName(byte(i))], base)
	}
	p.callTipHigh = p.callTip.Bold(true).Underline(true)
	p.autoSelected = p.autoComplete.Reverse(true)
	return p
}

// textStyle returns the style for lexer style s, on the caret line if
// caretLine is set.
func (p palette) textStyle(s byte, caretLine bool) tcell.Style {
	st := p.text[0]
	if int(s) < len(p.text) {
		st = p.text[s]
	}
	if caretLine {
		_, bg, _ := p.caretLine.Decompose()
		st = st.Background(bg)
	}
	return st
}

func toStyle(s config.Style, base tcell.Style) tcell.Style {
	st := base
	if c, ok := parseColor(s.Fg); ok {
		st = st.Foreground(c)
	}
	if c, ok := parseColor(s.Bg); ok {
		st = st.Background(c)
	}
	if s.Bold {
		st = st.Bold(true)
	}
	if s.Italic {
		st = st.Italic(true)
	}
	return st
}

// parseColor accepts "#rrggbb", "#rgb" and tcell colour names.
func parseColor(name string) (tcell.Color, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return tcell.ColorDefault, false
	}
	if strings.HasPrefix(name, "#") {
		c, err := colorful.Hex(name)
		if err != nil {
			return tcell.ColorDefault, false
		}
		r, g, b := c.RGB255()
		return tcell.NewRGBColor(int32(r), int32(g), int32(b)), true
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault, true
	}
	c := tcell.GetColor(name)
	return c, c != tcell.ColorDefault
}
