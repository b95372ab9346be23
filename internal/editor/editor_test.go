package editor

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kobzarvs/sciedit/internal/cellbuffer"
	"github.com/kobzarvs/sciedit/internal/config"
	"github.com/kobzarvs/sciedit/internal/selection"
)

func newTestEditor(t *testing.T, text string) *Editor {
	t.Helper()
	e := New(config.Default().Editor)
	e.LoadText(text)
	return e
}

// setCarets replaces the selection with empty ranges at each position. The
// last one becomes main.
func setCarets(e *Editor, positions ...int) {
	e.Execute(CmdSetEmptySelection, positions[0], 0)
	for _, p := range positions[1:] {
		e.Execute(CmdAddSelection, p, p)
	}
}

func carets(e *Editor) []int {
	out := make([]int, e.SelectionCount())
	for i := range out {
		out[i] = e.RangeCaret(i)
	}
	return out
}

func recordKinds(e *Editor) *[]NotificationKind {
	var kinds []NotificationKind
	e.SetNotificationSink(func(n Notification) { kinds = append(kinds, n.Kind) })
	return &kinds
}

func hasKind(kinds []NotificationKind, k NotificationKind) bool {
	for _, got := range kinds {
		if got == k {
			return true
		}
	}
	return false
}

func TestInsertThenUndoRestoresLines(t *testing.T) {
	e := newTestEditor(t, "ab\ncd")
	e.InsertText(1, "X")
	if got := e.Text(); got != "aXb\ncd" {
		t.Fatalf("text = %q, want %q", got, "aXb\ncd")
	}
	if got := e.LineStart(1); got != 4 {
		t.Fatalf("LineStart(1) = %d, want 4", got)
	}
	if !e.Modified() {
		t.Fatalf("Modified = false after insert")
	}
	e.Undo()
	if got := e.Text(); got != "ab\ncd" {
		t.Fatalf("text after undo = %q, want %q", got, "ab\ncd")
	}
	if got := e.LineStart(1); got != 3 {
		t.Fatalf("LineStart(1) after undo = %d, want 3", got)
	}
	if e.Modified() {
		t.Fatalf("Modified = true after undoing back to the save point")
	}
	if got := e.CurrentPos(); got != 1 {
		t.Fatalf("caret after undo = %d, want 1", got)
	}
}

func TestTypingAtSeveralCarets(t *testing.T) {
	tests := []struct {
		name    string
		carets  []int
		want    string
		wantPos []int
	}{
		{"one and four", []int{1, 4}, "aZbcdZe", []int{2, 6}},
		{"one and three", []int{1, 3}, "aZbcZde", []int{2, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, "abcde")
			setCarets(e, tt.carets...)
			e.AddChar('Z')
			if got := e.Text(); got != tt.want {
				t.Fatalf("text = %q, want %q", got, tt.want)
			}
			if diff := cmp.Diff(tt.wantPos, carets(e)); diff != "" {
				t.Fatalf("carets (-want +got):\n%s", diff)
			}
			e.Undo()
			if got := e.Text(); got != "abcde" {
				t.Fatalf("text after one undo = %q, want %q", got, "abcde")
			}
		})
	}
}

func TestSingleCaretTypingWithoutAdditionalTyping(t *testing.T) {
	e := newTestEditor(t, "abcde")
	e.SetAdditionalSelectionTyping(false)
	setCarets(e, 1, 4)
	e.AddChar('Z')
	if got := e.Text(); got != "abcdZe" {
		t.Fatalf("text = %q, want %q", got, "abcdZe")
	}
	if e.SelectionCount() != 1 {
		t.Fatalf("SelectionCount = %d, want 1", e.SelectionCount())
	}
}

func TestTypingCoalescesUntilCaretMoves(t *testing.T) {
	e := newTestEditor(t, "")
	e.AddChar('a')
	e.AddChar('b')
	e.Undo()
	if got := e.Text(); got != "" {
		t.Fatalf("text after undo = %q, want empty", got)
	}
	e.Redo()
	if got := e.Text(); got != "ab" {
		t.Fatalf("text after redo = %q, want %q", got, "ab")
	}
	if got := e.CurrentPos(); got != 2 {
		t.Fatalf("caret after redo = %d, want 2", got)
	}

	e.Execute(CmdCharLeft, 0, 0)
	e.Execute(CmdCharRight, 0, 0)
	e.AddChar('c')
	e.Undo()
	if got := e.Text(); got != "ab" {
		t.Fatalf("text after undo = %q, want %q", got, "ab")
	}
}

func TestTypingReplacesSelection(t *testing.T) {
	e := newTestEditor(t, "hello world")
	e.SetSel(0, 5)
	e.AddChar('J')
	if got := e.Text(); got != "J world" {
		t.Fatalf("text = %q, want %q", got, "J world")
	}
	if got := e.CurrentPos(); got != 1 {
		t.Fatalf("caret = %d, want 1", got)
	}
	e.Undo()
	if got := e.Text(); got != "hello world" {
		t.Fatalf("text after undo = %q, want %q", got, "hello world")
	}
	if got, anchor := e.CurrentPos(), e.Anchor(); got != 5 || anchor != 5 {
		t.Fatalf("selection after undo = %d..%d, want empty at 5", anchor, got)
	}
}

func TestOvertypeReplacesCharacter(t *testing.T) {
	e := newTestEditor(t, "abc\n")
	e.SetOvertype(true)
	e.AddChar('X')
	if got := e.Text(); got != "Xbc\n" {
		t.Fatalf("text = %q, want %q", got, "Xbc\n")
	}
	e.GotoPos(3)
	e.AddChar('Y')
	if got := e.Text(); got != "XbcY\n" {
		t.Fatalf("text = %q, want %q", got, "XbcY\n")
	}
}

func TestRectangularSelectionAcrossVirtualSpaceOptions(t *testing.T) {
	tests := []struct {
		user, rect  bool
		wantVirtual int
	}{
		{false, false, 0},
		{true, false, 0},
		{false, true, 2},
		{true, true, 2},
	}
	for _, tt := range tests {
		e := newTestEditor(t, "abcdef\nab\nabcdef")
		e.SetUserVirtualSpace(tt.user)
		e.SetRectangularVirtualSpace(tt.rect)
		e.SetRectangularSelection(selection.At(1), selection.At(14))

		ranges, typ := e.Selection()
		if typ != selection.Rectangle {
			t.Fatalf("user=%v rect=%v: type = %v, want rectangle", tt.user, tt.rect, typ)
		}
		want := []selection.Range{
			selection.NewRange(4, 1),
			{Caret: selection.Position{Pos: 9, Virtual: tt.wantVirtual}, Anchor: selection.At(8)},
			selection.NewRange(14, 11),
		}
		if diff := cmp.Diff(want, ranges); diff != "" {
			t.Fatalf("user=%v rect=%v: ranges (-want +got):\n%s", tt.user, tt.rect, diff)
		}
		if e.MainSelection() != 2 {
			t.Fatalf("user=%v rect=%v: main = %d, want 2", tt.user, tt.rect, e.MainSelection())
		}

		e.AddChar('X')
		if got := e.Text(); got != "aXef\naX\naXef" {
			t.Fatalf("user=%v rect=%v: text = %q, want %q", tt.user, tt.rect, got, "aXef\naX\naXef")
		}
		if _, typ := e.Selection(); typ != selection.Thin {
			t.Fatalf("user=%v rect=%v: type after typing = %v, want thin", tt.user, tt.rect, typ)
		}
		if diff := cmp.Diff([]int{2, 7, 10}, carets(e)); diff != "" {
			t.Fatalf("user=%v rect=%v: carets (-want +got):\n%s", tt.user, tt.rect, diff)
		}
	}
}

func TestRectangularExtendByKeys(t *testing.T) {
	e := newTestEditor(t, "abc\nabc\nabc")
	e.GotoPos(1)
	e.Execute(CmdLineDownRectExtend, 0, 0)
	e.Execute(CmdCharRightRectExtend, 0, 0)
	ranges, typ := e.Selection()
	if typ != selection.Rectangle {
		t.Fatalf("type = %v, want rectangle", typ)
	}
	want := []selection.Range{selection.NewRange(2, 1), selection.NewRange(6, 5)}
	if diff := cmp.Diff(want, ranges); diff != "" {
		t.Fatalf("ranges (-want +got):\n%s", diff)
	}
	e.Execute(CmdCharLeft, 0, 0)
	if ranges, typ := e.Selection(); typ != selection.Stream || len(ranges) != 1 || ranges[0] != selection.Caret(1) {
		t.Fatalf("after plain move = %v %v, want one caret at 1", ranges, typ)
	}
}

func TestReadOnlyRejectsTyping(t *testing.T) {
	e := newTestEditor(t, "abc")
	kinds := recordKinds(e)
	e.SetReadOnly(true)
	e.AddChar('x')
	e.DeleteBack()
	if got := e.Text(); got != "abc" {
		t.Fatalf("text = %q, want unchanged", got)
	}
	if !hasKind(*kinds, NotifyModifyAttempt) {
		t.Fatalf("no ModifyAttempt in %v", *kinds)
	}
	if hasKind(*kinds, NotifyCharAdded) {
		t.Fatalf("CharAdded sent for a rejected keystroke: %v", *kinds)
	}
	if e.Status() != StatusOK {
		t.Fatalf("Status = %v, want OK", e.Status())
	}
}

func TestHostMayClearReadOnlyOnAttempt(t *testing.T) {
	e := newTestEditor(t, "abc")
	e.SetReadOnly(true)
	e.SetNotificationSink(func(n Notification) {
		if n.Kind == NotifyModifyAttempt {
			e.Document().SetReadOnly(false)
		}
	})
	e.AddChar('x')
	if got := e.Text(); got != "xabc" {
		t.Fatalf("text = %q, want %q", got, "xabc")
	}
}

func TestDeleteBack(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		caret int
		cmd   Command
		want  string
		pos   int
	}{
		{"joins lines", "ab\ncd", 3, CmdDeleteBack, "abcd", 2},
		{"crlf is one character", "ab\r\ncd", 4, CmdDeleteBack, "abcd", 2},
		{"stops at line start", "ab\ncd", 3, CmdDeleteBackNotLine, "ab\ncd", 3},
		{"utf8 character", "aé", 3, CmdDeleteBack, "a", 1},
		{"at start", "ab", 0, CmdDeleteBack, "ab", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, tt.text)
			e.GotoPos(tt.caret)
			e.Execute(tt.cmd, 0, 0)
			if got := e.Text(); got != tt.want {
				t.Fatalf("text = %q, want %q", got, tt.want)
			}
			if got := e.CurrentPos(); got != tt.pos {
				t.Fatalf("caret = %d, want %d", got, tt.pos)
			}
		})
	}
}

func TestBackspaceUnindents(t *testing.T) {
	e := newTestEditor(t, "        x")
	e.SetBackspaceUnindents(true)
	e.GotoPos(8)
	e.DeleteBack()
	if got := e.Text(); got != "    x" {
		t.Fatalf("text = %q, want %q", got, "    x")
	}
	if got := e.CurrentPos(); got != 4 {
		t.Fatalf("caret = %d, want 4", got)
	}
}

func TestBackspaceEatsVirtualSpaceFirst(t *testing.T) {
	e := newTestEditor(t, "ab")
	e.SetUserVirtualSpace(true)
	e.GotoPos(2)
	e.Execute(CmdCharRight, 0, 0)
	e.Execute(CmdCharRight, 0, 0)
	if ranges, _ := e.Selection(); ranges[0].Caret != (selection.Position{Pos: 2, Virtual: 2}) {
		t.Fatalf("caret = %v, want 2+2", ranges[0].Caret)
	}
	e.DeleteBack()
	if ranges, _ := e.Selection(); ranges[0].Caret != (selection.Position{Pos: 2, Virtual: 1}) {
		t.Fatalf("caret = %v, want 2+1", ranges[0].Caret)
	}
	e.AddChar('x')
	if got := e.Text(); got != "ab x" {
		t.Fatalf("text = %q, want %q", got, "ab x")
	}
}

func TestClearKeepsLineEndsWithSeveralCarets(t *testing.T) {
	e := newTestEditor(t, "ab\ncd")
	setCarets(e, 2, 4)
	e.Clear()
	if got := e.Text(); got != "ab\nc" {
		t.Fatalf("text = %q, want %q", got, "ab\nc")
	}

	e = newTestEditor(t, "ab\ncd")
	e.GotoPos(2)
	e.Clear()
	if got := e.Text(); got != "abcd" {
		t.Fatalf("single caret text = %q, want %q", got, "abcd")
	}
}

func TestNewLineUsesEOLMode(t *testing.T) {
	e := newTestEditor(t, "ab")
	kinds := recordKinds(e)
	e.GotoPos(1)
	e.NewLine()
	if got := e.Text(); got != "a\nb" {
		t.Fatalf("text = %q, want %q", got, "a\nb")
	}
	if !hasKind(*kinds, NotifyCharAdded) {
		t.Fatalf("no CharAdded in %v", *kinds)
	}
	e.SetEOLMode(EOLCRLF)
	e.NewLine()
	if got := e.Text(); got != "a\n\r\nb" {
		t.Fatalf("text = %q, want %q", got, "a\n\r\nb")
	}
	if got := e.CurrentPos(); got != 4 {
		t.Fatalf("caret = %d, want 4", got)
	}
}

func TestTabAndBackTab(t *testing.T) {
	e := newTestEditor(t, "x")
	e.Tab()
	if got := e.Text(); got != "    x" {
		t.Fatalf("text = %q, want %q", got, "    x")
	}
	if got := e.CurrentPos(); got != 4 {
		t.Fatalf("caret = %d, want 4", got)
	}
	e.BackTab()
	if got := e.Text(); got != "x" {
		t.Fatalf("text after back tab = %q, want %q", got, "x")
	}

	e = newTestEditor(t, "ab")
	e.GotoPos(1)
	e.Tab()
	if got := e.Text(); got != "a   b" {
		t.Fatalf("mid-line tab = %q, want %q", got, "a   b")
	}

	e = newTestEditor(t, "ab")
	e.SetUseTabs(true)
	e.GotoPos(1)
	e.Tab()
	if got := e.Text(); got != "a\tb" {
		t.Fatalf("tab with use-tabs = %q, want %q", got, "a\tb")
	}
}

func TestTabIndentsSelectedLines(t *testing.T) {
	e := newTestEditor(t, "a\nb\nc")
	e.SetSel(0, 4)
	e.Tab()
	if got := e.Text(); got != "    a\n    b\nc" {
		t.Fatalf("text = %q, want %q", got, "    a\n    b\nc")
	}
	if got, anchor := e.CurrentPos(), e.Anchor(); anchor != 0 || got != 12 {
		t.Fatalf("selection = %d..%d, want 0..12", anchor, got)
	}
	e.BackTab()
	if got := e.Text(); got != "a\nb\nc" {
		t.Fatalf("text after back tab = %q, want %q", got, "a\nb\nc")
	}
}

func TestChangeCaseKeepsSelection(t *testing.T) {
	e := newTestEditor(t, "Hello World")
	e.SetSel(0, 11)
	e.Execute(CmdUpperCase, 0, 0)
	if got := e.Text(); got != "HELLO WORLD" {
		t.Fatalf("text = %q, want %q", got, "HELLO WORLD")
	}
	if got, anchor := e.CurrentPos(), e.Anchor(); anchor != 0 || got != 11 {
		t.Fatalf("selection = %d..%d, want 0..11", anchor, got)
	}
	e.Execute(CmdLowerCase, 0, 0)
	if got := e.Text(); got != "hello world" {
		t.Fatalf("text = %q, want %q", got, "hello world")
	}
}

func TestLinesJoinAndSplit(t *testing.T) {
	e := newTestEditor(t, "a\nb\nc")
	e.SetSel(0, 5)
	e.Execute(CmdLinesJoin, 0, 0)
	if got := e.Text(); got != "a b c" {
		t.Fatalf("joined = %q, want %q", got, "a b c")
	}

	e = newTestEditor(t, "ab\ncd")
	e.Execute(CmdLinesJoin, 0, 0)
	if got := e.Text(); got != "ab cd" {
		t.Fatalf("joined with next = %q, want %q", got, "ab cd")
	}

	e = newTestEditor(t, "aaa bbb ccc")
	e.SetSel(0, 11)
	e.Execute(CmdLinesSplit, 7, 0)
	if got := e.Text(); got != "aaa bbb \nccc" {
		t.Fatalf("split = %q, want %q", got, "aaa bbb \nccc")
	}
}

func TestConvertEOLs(t *testing.T) {
	tests := []struct {
		mode EOLMode
		want string
	}{
		{EOLLF, "a\nb\nc\nd"},
		{EOLCRLF, "a\r\nb\r\nc\r\nd"},
		{EOLCR, "a\rb\rc\rd"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			e := newTestEditor(t, "a\r\nb\rc\nd")
			e.ConvertEOLs(tt.mode)
			if got := e.Text(); got != tt.want {
				t.Fatalf("text = %q, want %q", got, tt.want)
			}
			e.Undo()
			if got := e.Text(); got != "a\r\nb\rc\nd" {
				t.Fatalf("text after undo = %q", got)
			}
		})
	}
}

func TestLineCommands(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		sel   [2]int
		cmd   Command
		want  string
		caret int
	}{
		{"transpose", "one\ntwo", [2]int{5, 5}, CmdLineTranspose, "two\none", 4},
		{"duplicate line", "ab", [2]int{1, 1}, CmdLineDuplicate, "ab\nab", 1},
		{"duplicate selection", "ab", [2]int{0, 2}, CmdSelectionDuplicate, "abab", 2},
		{"delete line", "a\nb\nc", [2]int{2, 2}, CmdLineDelete, "a\nc", 2},
		{"delete word left", "foo bar", [2]int{7, 7}, CmdDelWordLeft, "foo ", 4},
		{"delete line right", "foo bar", [2]int{3, 3}, CmdDelLineRight, "foo", 3},
		{"delete line left", "foo bar", [2]int{4, 4}, CmdDelLineLeft, "bar", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, tt.text)
			e.SetSel(tt.sel[0], tt.sel[1])
			e.Execute(tt.cmd, 0, 0)
			if got := e.Text(); got != tt.want {
				t.Fatalf("text = %q, want %q", got, tt.want)
			}
			if got := e.CurrentPos(); got != tt.caret {
				t.Fatalf("caret = %d, want %d", got, tt.caret)
			}
		})
	}
}

func TestWordMoves(t *testing.T) {
	e := newTestEditor(t, "foo  bar_baz;qux")
	e.GotoPos(e.Length())
	for _, want := range []int{13, 12} {
		e.Execute(CmdWordLeft, 0, 0)
		if got := e.CurrentPos(); got != want {
			t.Fatalf("word left = %d, want %d", got, want)
		}
	}
	e.GotoPos(0)
	for _, want := range []int{5, 12} {
		e.Execute(CmdWordRight, 0, 0)
		if got := e.CurrentPos(); got != want {
			t.Fatalf("word right = %d, want %d", got, want)
		}
	}
}

func TestLineUpDownKeepsColumn(t *testing.T) {
	e := newTestEditor(t, "abcdef\nab\nabcdef")
	e.GotoPos(5)
	steps := []struct {
		cmd  Command
		want int
	}{
		{CmdLineDown, 9},
		{CmdLineDown, 15},
		{CmdLineUp, 9},
		{CmdLineUp, 5},
		{CmdLineUp, 5},
	}
	for i, s := range steps {
		e.Execute(s.cmd, 0, 0)
		if got := e.CurrentPos(); got != s.want {
			t.Fatalf("step %d %v: caret = %d, want %d", i, s.cmd, got, s.want)
		}
	}
}

func TestExtendAndCollapse(t *testing.T) {
	e := newTestEditor(t, "abcd")
	e.Execute(CmdCharRightExtend, 0, 0)
	e.Execute(CmdCharRightExtend, 0, 0)
	if got, anchor := e.CurrentPos(), e.Anchor(); anchor != 0 || got != 2 {
		t.Fatalf("selection = %d..%d, want 0..2", anchor, got)
	}
	e.Execute(CmdCharLeft, 0, 0)
	if got, anchor := e.CurrentPos(), e.Anchor(); anchor != 0 || got != 0 {
		t.Fatalf("after char left = %d..%d, want caret at 0", anchor, got)
	}
	e.Execute(CmdLineEndExtend, 0, 0)
	if got := e.SelectionText(); got != "abcd" {
		t.Fatalf("SelectionText = %q, want %q", got, "abcd")
	}
}

func TestVCHomeTogglesIndent(t *testing.T) {
	e := newTestEditor(t, "  ab")
	e.GotoPos(4)
	e.Execute(CmdVCHome, 0, 0)
	if got := e.CurrentPos(); got != 2 {
		t.Fatalf("first vc home = %d, want 2", got)
	}
	e.Execute(CmdVCHome, 0, 0)
	if got := e.CurrentPos(); got != 0 {
		t.Fatalf("second vc home = %d, want 0", got)
	}
}

func TestPasteShapes(t *testing.T) {
	t.Run("stream", func(t *testing.T) {
		e := newTestEditor(t, "hello")
		e.SetSel(0, 5)
		e.Execute(CmdCopy, 0, 0)
		e.GotoPos(5)
		e.Paste()
		if got := e.Text(); got != "hellohello" {
			t.Fatalf("text = %q, want %q", got, "hellohello")
		}
		if got := e.CurrentPos(); got != 10 {
			t.Fatalf("caret = %d, want 10", got)
		}
	})
	t.Run("line", func(t *testing.T) {
		e := newTestEditor(t, "one\ntwo")
		e.GotoPos(1)
		e.Execute(CmdCopyAllowLine, 0, 0)
		e.GotoPos(5)
		e.Paste()
		if got := e.Text(); got != "one\none\ntwo" {
			t.Fatalf("text = %q, want %q", got, "one\none\ntwo")
		}
		if got := e.CurrentPos(); got != 9 {
			t.Fatalf("caret = %d, want 9", got)
		}
	})
	t.Run("rectangular", func(t *testing.T) {
		e := newTestEditor(t, "ab\ncd\nef")
		e.SetRectangularSelection(selection.At(0), selection.At(4))
		if got := e.SelectionText(); got != "a\nc\n" {
			t.Fatalf("SelectionText = %q, want %q", got, "a\nc\n")
		}
		e.Execute(CmdCopy, 0, 0)
		e.GotoPos(7)
		e.Paste()
		if got := e.Text(); got != "ab\ncd\neaf\n c" {
			t.Fatalf("text = %q, want %q", got, "ab\ncd\neaf\n c")
		}
		if got := e.CurrentPos(); got != 7 {
			t.Fatalf("caret = %d, want 7", got)
		}
	})
	t.Run("each caret", func(t *testing.T) {
		e := newTestEditor(t, "ab")
		clip := NewMemoryClipboard()
		_ = clip.Set("X")
		e.SetClipboard(clip)
		setCarets(e, 1, 2)
		e.Paste()
		if got := e.Text(); got != "aXbX" {
			t.Fatalf("text = %q, want %q", got, "aXbX")
		}
	})
	t.Run("once", func(t *testing.T) {
		e := newTestEditor(t, "ab")
		clip := NewMemoryClipboard()
		_ = clip.Set("X")
		e.SetClipboard(clip)
		e.SetMultiPaste(MultiPasteOnce)
		setCarets(e, 1, 2)
		e.Paste()
		if got := e.Text(); got != "abX" {
			t.Fatalf("text = %q, want %q", got, "abX")
		}
		if e.SelectionCount() != 1 || e.CurrentPos() != 3 {
			t.Fatalf("selection = %v, want one caret at 3", carets(e))
		}
	})
	t.Run("line ends converted", func(t *testing.T) {
		e := newTestEditor(t, "")
		clip := NewMemoryClipboard()
		_ = clip.Set("a\r\nb")
		e.SetClipboard(clip)
		e.Paste()
		if got := e.Text(); got != "a\nb" {
			t.Fatalf("text = %q, want %q", got, "a\nb")
		}
	})
}

func TestLineCutUsesClipboard(t *testing.T) {
	e := newTestEditor(t, "a\nb\nc")
	e.GotoPos(2)
	e.Execute(CmdLineCut, 0, 0)
	if got := e.Text(); got != "a\nc" {
		t.Fatalf("text = %q, want %q", got, "a\nc")
	}
	got, err := e.clip.Get()
	if err != nil || got != "b\n" {
		t.Fatalf("clipboard = %q, %v, want %q", got, err, "b\n")
	}
}

// foldDoc has a header on line 0 whose body is lines 1 and 2.
func foldDoc(t *testing.T) *Editor {
	t.Helper()
	e := newTestEditor(t, "a\n b\n c\nd")
	doc := e.Document()
	doc.SetLevel(0, cellbuffer.LevelBase|cellbuffer.LevelHeaderFlag)
	doc.SetLevel(1, cellbuffer.LevelBase+1)
	doc.SetLevel(2, cellbuffer.LevelBase+1)
	doc.SetLevel(3, cellbuffer.LevelBase)
	return e
}

func TestToggleFoldHidesBody(t *testing.T) {
	e := foldDoc(t)
	e.ToggleFold(0)
	cs := e.Contraction()
	if cs.GetVisible(1) || cs.GetVisible(2) || !cs.GetVisible(3) {
		t.Fatalf("visibility after contract = %v %v %v", cs.GetVisible(1), cs.GetVisible(2), cs.GetVisible(3))
	}
	if got := cs.LinesDisplayed(); got != 2 {
		t.Fatalf("LinesDisplayed = %d, want 2", got)
	}
	if diff := cmp.Diff([]int{0}, e.ContractedFolds()); diff != "" {
		t.Fatalf("ContractedFolds (-want +got):\n%s", diff)
	}
	// Toggling from inside the body acts on the header.
	e.ToggleFold(2)
	if !cs.GetVisible(1) || cs.LinesDisplayed() != 4 {
		t.Fatalf("fold not expanded from a body line")
	}
}

func TestCaretSkipsFoldedLines(t *testing.T) {
	e := foldDoc(t)
	e.ToggleFold(0)
	e.GotoPos(0)
	e.Execute(CmdLineDown, 0, 0)
	if got := e.LineFromPosition(e.CurrentPos()); got != 3 {
		t.Fatalf("caret line = %d, want 3", got)
	}
}

func TestEditInFoldShowsIt(t *testing.T) {
	e := foldDoc(t)
	e.ToggleFold(0)
	e.InsertText(e.LineStart(2)+1, "x")
	if !e.Contraction().GetVisible(2) {
		t.Fatalf("edited line still hidden")
	}
	if folds := e.ContractedFolds(); len(folds) != 0 {
		t.Fatalf("ContractedFolds = %v, want none", folds)
	}
}

func TestRemovingHeaderExpandsFold(t *testing.T) {
	e := foldDoc(t)
	e.ToggleFold(0)
	e.Document().SetLevel(0, cellbuffer.LevelBase)
	cs := e.Contraction()
	if !cs.GetVisible(1) || !cs.GetVisible(2) {
		t.Fatalf("body hidden after header removed")
	}
	if !cs.GetExpanded(0) {
		t.Fatalf("line 0 still contracted")
	}
}

func TestFoldAll(t *testing.T) {
	e := foldDoc(t)
	e.GotoPos(e.LineStart(2))
	e.Execute(CmdFoldAll, int(FoldContract), 0)
	if e.Contraction().GetVisible(1) {
		t.Fatalf("line 1 visible after fold all")
	}
	if got := e.CurrentPos(); got != 0 {
		t.Fatalf("caret = %d, want moved to the header", got)
	}
	e.Execute(CmdFoldAll, int(FoldToggle), 0)
	if e.Contraction().LinesDisplayed() != 4 {
		t.Fatalf("LinesDisplayed = %d, want 4", e.Contraction().LinesDisplayed())
	}
}

func TestPaintIsAbandonedByTextChange(t *testing.T) {
	e := newTestEditor(t, "abc")
	e.BeginPaint()
	if e.State() != StatePainting {
		t.Fatalf("State = %v, want painting", e.State())
	}
	doc := e.Document()
	doc.StartStyling(0)
	doc.SetStyleFor(3, 2)
	if e.EndPaint() {
		t.Fatalf("styling during paint abandoned it")
	}
	e.BeginPaint()
	e.InsertText(0, "x")
	if !e.EndPaint() {
		t.Fatalf("text change during paint did not abandon it")
	}
	if e.State() != StateIdle {
		t.Fatalf("State after paint = %v, want idle", e.State())
	}
}

func TestExecuteNotifiesSelectionAndUpdate(t *testing.T) {
	e := newTestEditor(t, "abc")
	var got []Notification
	e.SetNotificationSink(func(n Notification) { got = append(got, n) })
	e.Execute(CmdCharRight, 0, 0)
	var sawSel bool
	var flags UpdateFlags
	for _, n := range got {
		switch n.Kind {
		case NotifySelectionChanged:
			sawSel = true
		case NotifyUpdateUI:
			flags |= n.Flags
		}
	}
	if !sawSel || flags&UpdateSelection == 0 {
		t.Fatalf("notifications = %v, want SelectionChanged and UpdateUI with selection", got)
	}
}

func TestExecuteRecoversFromPanic(t *testing.T) {
	e := newTestEditor(t, "")
	e.SetNotificationSink(func(n Notification) {
		if n.Kind == NotifyCharAdded {
			panic("host bug")
		}
	})
	e.AddChar('a')
	if e.Status() != StatusFailure {
		t.Fatalf("Status = %v, want failure", e.Status())
	}
	if got := e.Text(); got != "a" {
		t.Fatalf("text = %q, want %q", got, "a")
	}
}

func TestPanicMidEditLeavesEditorUsable(t *testing.T) {
	e := newTestEditor(t, "abcdef")
	setCarets(e, 2, 4)
	failed := false
	e.SetNotificationSink(func(n Notification) {
		if n.Kind == NotifyTextInserted && !failed {
			failed = true
			panic("host bug")
		}
	})
	e.AddChar('Z')
	if e.Status() != StatusFailure {
		t.Fatalf("Status = %v, want failure", e.Status())
	}
	if got := e.Text(); got != "abcdZef" {
		t.Fatalf("text = %q, want %q", got, "abcdZef")
	}
	if d := e.Document().UndoDepth(); d != 0 {
		t.Fatalf("undo group depth = %d, want 0", d)
	}
	setCarets(e, 2, 2)
	if n := e.SelectionCount(); n != 1 {
		t.Fatalf("SelectionCount = %d, want 1 merged caret", n)
	}
	e.Undo()
	if got := e.Text(); got != "abcdef" {
		t.Fatalf("text after undo = %q, want %q", got, "abcdef")
	}
}

func TestContainerUndoReportsDirection(t *testing.T) {
	e := newTestEditor(t, "")
	e.Execute(CmdBeginUndoAction, 0, 0)
	e.AddChar('a')
	e.Execute(CmdAddUndoAction, 7, 0)
	e.Execute(CmdEndUndoAction, 0, 0)
	var got []Notification
	e.SetNotificationSink(func(n Notification) {
		if n.Kind == NotifyContainerUndo {
			got = append(got, n)
		}
	})
	e.Undo()
	e.Redo()
	want := []Notification{
		{Kind: NotifyContainerUndo, Token: 7, Undo: true},
		{Kind: NotifyContainerUndo, Token: 7, Redo: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("container notifications (-want +got):\n%s", diff)
	}
}

func TestCommandNames(t *testing.T) {
	for c := CmdNull + 1; c < cmdCount; c++ {
		got, ok := CommandByName(c.String())
		if !ok || got != c {
			t.Fatalf("CommandByName(%q) = %v, %v, want %v", c.String(), got, ok, c)
		}
	}
	if _, ok := CommandByName("no_such_command"); ok {
		t.Fatalf("unknown name resolved")
	}
	host := map[string]bool{"save": true, "quit": true, "autocomplete": true, "format": true}
	for key, name := range config.Default().Keymap {
		if _, ok := CommandByName(name); !ok && !host[name] {
			t.Fatalf("keymap %s -> %q is not a command", key, name)
		}
	}
}

func TestMouseDrag(t *testing.T) {
	e := newTestEditor(t, "abc\ndef")
	e.ButtonDown(0, 1, 0)
	if e.State() != StateDragSelecting {
		t.Fatalf("State = %v, want drag-selecting", e.State())
	}
	e.ButtonMove(1, 2)
	e.ButtonUp(1, 2)
	if e.State() != StateIdle {
		t.Fatalf("State after release = %v, want idle", e.State())
	}
	if got, anchor := e.CurrentPos(), e.Anchor(); anchor != 1 || got != 6 {
		t.Fatalf("selection = %d..%d, want 1..6", anchor, got)
	}

	e.ButtonDown(0, 0, ModAlt)
	e.ButtonUp(1, 2)
	if ranges, typ := e.Selection(); typ != selection.Rectangle || len(ranges) != 2 {
		t.Fatalf("rectangle drag = %v %v", ranges, typ)
	}

	e.GotoPos(0)
	e.ButtonDown(1, 1, ModCtrl)
	e.ButtonUp(1, 1)
	if diff := cmp.Diff([]int{0, 5}, carets(e)); diff != "" {
		t.Fatalf("ctrl-click carets (-want +got):\n%s", diff)
	}
}

func TestSaveAndRestoreState(t *testing.T) {
	e := foldDoc(t)
	e.SetSel(7, 9)
	e.ToggleFold(0)
	state := e.SaveState()

	f := foldDoc(t)
	f.RestoreState(state)
	if diff := cmp.Diff(state.Folded, f.ContractedFolds()); diff != "" {
		t.Fatalf("folds (-want +got):\n%s", diff)
	}
	gotRanges, _ := f.Selection()
	if diff := cmp.Diff(state.Ranges, gotRanges); diff != "" {
		t.Fatalf("ranges (-want +got):\n%s", diff)
	}
}

func TestMultipleSelectAddNext(t *testing.T) {
	e := newTestEditor(t, "foo bar foo")
	e.GotoPos(1)
	e.Execute(CmdMultipleSelectAddNext, 0, 0)
	if got := e.SelectionText(); got != "foo" {
		t.Fatalf("SelectionText = %q, want %q", got, "foo")
	}
	if n := e.Execute(CmdMultipleSelectAddNext, 0, 0); n != 1 || e.SelectionCount() != 2 {
		t.Fatalf("second add = %d with %d ranges", n, e.SelectionCount())
	}
	e.AddChar('x')
	if got := e.Text(); got != "x bar x" {
		t.Fatalf("text = %q, want %q", got, "x bar x")
	}
}
