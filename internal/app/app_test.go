package app

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/sciedit/internal/config"
	"github.com/kobzarvs/sciedit/internal/editor"
	"github.com/kobzarvs/sciedit/internal/lexer"
)

func TestKeyName(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want string
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), ""},
		{tcell.NewEventKey(tcell.KeyRune, 'f', tcell.ModAlt), "alt+f"},
		{tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl), "ctrl+z"},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModShift|tcell.ModAlt), "alt+shift+left"},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModCtrl|tcell.ModShift), "ctrl+shift+left"},
		{tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone), "shift+tab"},
		{tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), "backspace"},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), "enter"},
		{tcell.NewEventKey(tcell.KeyNUL, 0, tcell.ModNone), "ctrl+space"},
		{tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModShift), "shift+pgdn"},
	}
	for _, tt := range tests {
		if got := keyName(tt.ev); got != tt.want {
			t.Fatalf("keyName(%v) = %q, want %q", tt.ev.Name(), got, tt.want)
		}
	}
}

func TestDefaultKeymapResolves(t *testing.T) {
	km, err := buildKeymap(config.Default().Keymap)
	if err != nil {
		t.Fatalf("buildKeymap error: %v", err)
	}
	if b := km["ctrl+z"]; b.cmd != editor.CmdUndo {
		t.Fatalf("ctrl+z = %v, want undo", b.cmd)
	}
	if b := km["ctrl+k"]; b.cmd != editor.CmdToggleFold || b.p1 != -1 {
		t.Fatalf("ctrl+k = %+v, want toggle_fold on the caret line", b)
	}
	if b := km["ctrl+s"]; b.act != actionSave {
		t.Fatalf("ctrl+s = %+v, want save", b)
	}
}

func TestKeymapReportsEveryUnknownCommand(t *testing.T) {
	km, err := buildKeymap(map[string]string{
		"ctrl+a": "select_all",
		"ctrl+b": "bogus",
		"ctrl+c": "also_bogus",
	})
	if err == nil {
		t.Fatalf("buildKeymap succeeded, want error")
	}
	for _, name := range []string{"bogus", "also_bogus"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error %q does not mention %s", err, name)
		}
	}
	if _, ok := km["ctrl+a"]; !ok {
		t.Fatalf("valid binding dropped")
	}
}

func TestWordList(t *testing.T) {
	text := "foo foobar (fob) foo_x zap foo 9foo"
	if got, want := wordList(text, "fo", ' ', 0), "fob foo foo_x foobar"; got != want {
		t.Fatalf("wordList = %q, want %q", got, want)
	}
	if got, want := wordList(text, "foo", ',', 2), "foo_x,foobar"; got != want {
		t.Fatalf("wordList = %q, want %q", got, want)
	}
	if got := wordList(text, "q", ' ', 0); got != "" {
		t.Fatalf("wordList = %q, want empty", got)
	}
}

func TestWordBefore(t *testing.T) {
	tests := []struct {
		line string
		pos  int
		want string
	}{
		{"x := fooBar", 11, "fooBar"},
		{"x := fooBar", 8, "foo"},
		{"a.b", 2, ""},
		{"héllo", 6, "héllo"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := wordBefore(tt.line, tt.pos); got != tt.want {
			t.Fatalf("wordBefore(%q, %d) = %q, want %q", tt.line, tt.pos, got, tt.want)
		}
	}
}

func TestSignatureFor(t *testing.T) {
	src := "package p\n\nfunc (s *S) Add(a, b int) int {\n\treturn a\n}\n\nfunc Map[T any](xs []T) []T { return xs }\n"
	if got, want := signatureFor(src, "Add"), "func (s *S) Add(a, b int) int"; got != want {
		t.Fatalf("signatureFor(Add) = %q, want %q", got, want)
	}
	if got, want := signatureFor(src, "Map"), "func Map[T any](xs []T) []T { return xs }"; got != want {
		t.Fatalf("signatureFor(Map) = %q, want %q", got, want)
	}
	if got := signatureFor(src, "Ad"); got != "" {
		t.Fatalf("signatureFor(Ad) = %q, want empty", got)
	}
}

func TestParseColor(t *testing.T) {
	c, ok := parseColor("#FFA759")
	if !ok || c != tcell.NewRGBColor(0xFF, 0xA7, 0x59) {
		t.Fatalf("parseColor(#FFA759) = %v, %v", c, ok)
	}
	if _, ok := parseColor("#nothex"); ok {
		t.Fatalf("parseColor accepted #nothex")
	}
	if c, ok := parseColor("red"); !ok || c != tcell.ColorRed {
		t.Fatalf("parseColor(red) = %v, %v", c, ok)
	}
	if _, ok := parseColor(""); ok {
		t.Fatalf("parseColor accepted an empty colour")
	}
}

func TestPaletteCoversLexerStyles(t *testing.T) {
	p := newPalette(config.Default().Styles)
	if len(p.text) != lexer.StyleCount() {
		t.Fatalf("palette has %d text styles, want %d", len(p.text), lexer.StyleCount())
	}
	fg, _, attrs := p.textStyle(lexer.StyleComment, false).Decompose()
	if fg != tcell.NewRGBColor(0x5C, 0x67, 0x73) || attrs&tcell.AttrItalic == 0 {
		t.Fatalf("comment style = %v %v", fg, attrs)
	}
	_, bg, _ := p.textStyle(lexer.StyleKeyword, true).Decompose()
	if bg != tcell.NewRGBColor(0x0F, 0x14, 0x19) {
		t.Fatalf("caret line background = %v", bg)
	}
}
