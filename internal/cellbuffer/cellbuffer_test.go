package cellbuffer

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kobzarvs/sciedit/internal/gapbuffer"
)

func newBuffer(t *testing.T, text string) *CellBuffer {
	t.Helper()
	cb := New()
	if text != "" {
		if _, err := cb.InsertString(0, text); err != nil {
			t.Fatalf("InsertString(%q) error: %v", text, err)
		}
	}
	return cb
}

func lineStarts(cb *CellBuffer) []int {
	var out []int
	for line := 0; line < cb.Lines(); line++ {
		out = append(out, cb.LineStart(line))
	}
	return out
}

func TestInsertAndDeleteAcrossLines(t *testing.T) {
	cb := newBuffer(t, "ab\ncd")
	if cb.Lines() != 2 {
		t.Fatalf("Lines = %d, want 2", cb.Lines())
	}
	if got := cb.LineStart(1); got != 3 {
		t.Fatalf("LineStart(1) = %d, want 3", got)
	}
	if got := cb.LineText(0); got != "ab" {
		t.Fatalf("LineText(0) = %q, want %q", got, "ab")
	}
	n, err := cb.DeleteChars(1, 3)
	if err != nil || n != 3 {
		t.Fatalf("DeleteChars = %d, %v, want 3, nil", n, err)
	}
	if got := cb.Text(); got != "ad" {
		t.Fatalf("Text = %q, want %q", got, "ad")
	}
	if cb.Lines() != 1 {
		t.Fatalf("Lines = %d, want 1", cb.Lines())
	}
}

func TestCRLFHandling(t *testing.T) {
	cb := newBuffer(t, "a\r\nb")
	if diff := cmp.Diff([]int{0, 3}, lineStarts(cb)); diff != "" {
		t.Fatalf("CRLF line starts (-want +got):\n%s", diff)
	}

	// Splitting the pair makes the CR and LF end separate lines.
	if _, err := cb.InsertString(2, "x"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 2, 4}, lineStarts(cb)); diff != "" {
		t.Fatalf("split line starts (-want +got):\n%s", diff)
	}

	// Removing the separator fuses them again.
	if _, err := cb.DeleteChars(2, 1); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 3}, lineStarts(cb)); diff != "" {
		t.Fatalf("fused line starts (-want +got):\n%s", diff)
	}
}

func TestInsertCRBeforeLF(t *testing.T) {
	cb := newBuffer(t, "a\nb")
	if _, err := cb.InsertString(1, "\r"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 3}, lineStarts(cb)); diff != "" {
		t.Fatalf("line starts (-want +got):\n%s", diff)
	}
}

func TestDeleteLFOfCRLF(t *testing.T) {
	cb := newBuffer(t, "a\r\nb")
	if _, err := cb.DeleteChars(2, 1); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 2}, lineStarts(cb)); diff != "" {
		t.Fatalf("line starts (-want +got):\n%s", diff)
	}
	if got := cb.LineEnd(0); got != 1 {
		t.Fatalf("LineEnd(0) = %d, want 1", got)
	}
}

func TestLineEndSkipsCRLF(t *testing.T) {
	cb := newBuffer(t, "ab\r\ncd\nef")
	want := []int{2, 6, 9}
	for line, w := range want {
		if got := cb.LineEnd(line); got != w {
			t.Fatalf("LineEnd(%d) = %d, want %d", line, got, w)
		}
	}
}

func TestPositionsClamp(t *testing.T) {
	cb := newBuffer(t, "abc")
	if _, err := cb.InsertString(99, "d"); err != nil {
		t.Fatal(err)
	}
	if _, err := cb.InsertString(-5, "z"); err != nil {
		t.Fatal(err)
	}
	if got := cb.Text(); got != "zabcd" {
		t.Fatalf("Text = %q, want %q", got, "zabcd")
	}
	n, err := cb.DeleteChars(3, 100)
	if err != nil || n != 2 {
		t.Fatalf("DeleteChars = %d, %v, want 2, nil", n, err)
	}
	if cb.LineStart(-1) != 0 || cb.LineStart(10) != cb.Length() {
		t.Fatalf("LineStart does not clamp")
	}
	if cb.CharAt(100) != 0 {
		t.Fatalf("CharAt out of range = %q, want 0", cb.CharAt(100))
	}
}

func TestReadOnlyRejectsEdits(t *testing.T) {
	cb := newBuffer(t, "abc")
	attempts := 0
	cb.Watch(func(ev Event) {
		if ev.Kind == ModifyAttempt {
			attempts++
		}
	})
	cb.SetReadOnly(true)
	if _, err := cb.InsertString(0, "x"); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("InsertString error = %v, want ErrReadOnly", err)
	}
	if _, err := cb.DeleteChars(0, 1); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("DeleteChars error = %v, want ErrReadOnly", err)
	}
	if attempts != 2 {
		t.Fatalf("ModifyAttempt count = %d, want 2", attempts)
	}
	if cb.Text() != "abc" {
		t.Fatalf("Text = %q, want unchanged", cb.Text())
	}
}

func TestModifyAttemptCanClearReadOnly(t *testing.T) {
	cb := newBuffer(t, "abc")
	cb.SetReadOnly(true)
	cb.Watch(func(ev Event) {
		if ev.Kind == ModifyAttempt {
			cb.SetReadOnly(false)
		}
	})
	if _, err := cb.InsertString(0, "x"); err != nil {
		t.Fatalf("InsertString error = %v, want nil", err)
	}
	if cb.Text() != "xabc" {
		t.Fatalf("Text = %q, want %q", cb.Text(), "xabc")
	}
}

func TestWatcherCannotReenter(t *testing.T) {
	cb := New()
	var nested error
	cb.Watch(func(ev Event) {
		if ev.Kind == Inserted {
			_, nested = cb.InsertString(0, "y")
		}
	})
	if _, err := cb.InsertString(0, "x"); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(nested, ErrReentrant) {
		t.Fatalf("nested insert error = %v, want ErrReentrant", nested)
	}
	if cb.Text() != "x" {
		t.Fatalf("Text = %q, want %q", cb.Text(), "x")
	}
}

func TestEventsForInsert(t *testing.T) {
	cb := New()
	var got []Event
	cb.Watch(func(ev Event) { got = append(got, ev) })
	if _, err := cb.InsertString(0, "a\nb"); err != nil {
		t.Fatal(err)
	}
	want := []Event{
		{Kind: BeforeInsert, Flags: FlagUser, Position: 0, Length: 3, Text: []byte("a\nb")},
		{Kind: SavePointChanged, AtSavePoint: false},
		{Kind: Inserted, Flags: FlagUser | FlagStartAction, Position: 0, Length: 3, Text: []byte("a\nb"), LinesAdded: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestUndoRedoRestoresText(t *testing.T) {
	cb := newBuffer(t, "ab\ncd")
	if pos, err := cb.Undo(); err != nil || pos != 0 {
		t.Fatalf("Undo = %d, %v, want 0", pos, err)
	}
	if cb.Length() != 0 || cb.Lines() != 1 {
		t.Fatalf("after undo Length = %d Lines = %d, want 0 and 1", cb.Length(), cb.Lines())
	}
	if pos, err := cb.Redo(); err != nil || pos != 5 {
		t.Fatalf("Redo = %d, %v, want 5", pos, err)
	}
	if cb.Text() != "ab\ncd" || cb.Lines() != 2 {
		t.Fatalf("after redo Text = %q Lines = %d", cb.Text(), cb.Lines())
	}
	if cb.CanRedo() {
		t.Fatalf("CanRedo = true, want false")
	}
}

func TestUndoTypingIsOneStep(t *testing.T) {
	cb := New()
	for i, ch := range "hello" {
		if _, err := cb.InsertString(i, string(ch)); err != nil {
			t.Fatal(err)
		}
	}
	var flags []Flag
	cb.Watch(func(ev Event) {
		if ev.Kind == Deleted {
			flags = append(flags, ev.Flags)
		}
	})
	if pos, err := cb.Undo(); err != nil || pos != 0 {
		t.Fatalf("Undo = %d, %v, want 0", pos, err)
	}
	if cb.Length() != 0 {
		t.Fatalf("Text = %q, want empty", cb.Text())
	}
	if len(flags) != 5 {
		t.Fatalf("got %d delete events, want 5", len(flags))
	}
	last := flags[len(flags)-1]
	if last&FlagLastStep == 0 || last&FlagMultiStep == 0 || last&FlagUndo == 0 {
		t.Fatalf("last flags = %v, want undo|multi-step|last-step", last)
	}
	if flags[0]&FlagLastStep != 0 {
		t.Fatalf("first flags = %v, want no last-step", flags[0])
	}
}

func TestUndoBackspaceRunLeavesCaretAfterRun(t *testing.T) {
	cb := newBuffer(t, "abcd")
	cb.DropUndoSequence()
	for pos := 3; pos >= 1; pos-- {
		if _, err := cb.DeleteChars(pos, 1); err != nil {
			t.Fatal(err)
		}
	}
	if pos, err := cb.Undo(); err != nil || pos != 4 {
		t.Fatalf("Undo = %d, %v, want 4", pos, err)
	}
	if cb.Text() != "abcd" {
		t.Fatalf("Text = %q, want %q", cb.Text(), "abcd")
	}
}

func TestSavePointEvents(t *testing.T) {
	cb := New()
	var states []bool
	cb.Watch(func(ev Event) {
		if ev.Kind == SavePointChanged {
			states = append(states, ev.AtSavePoint)
		}
	})
	cb.SetSavePoint()
	if _, err := cb.InsertString(0, "a"); err != nil {
		t.Fatal(err)
	}
	cb.Undo()
	cb.Redo()
	if diff := cmp.Diff([]bool{true, false, true, false}, states); diff != "" {
		t.Fatalf("save point states (-want +got):\n%s", diff)
	}
}

func TestSavePointAfterEditLeftByUndo(t *testing.T) {
	cb := newBuffer(t, "a")
	cb.SetSavePoint()
	var states []bool
	cb.Watch(func(ev Event) {
		if ev.Kind == SavePointChanged {
			states = append(states, ev.AtSavePoint)
		}
	})
	cb.Undo()
	if diff := cmp.Diff([]bool{false}, states); diff != "" {
		t.Fatalf("save point states (-want +got):\n%s", diff)
	}
}

func TestUndoCollectionOff(t *testing.T) {
	cb := New()
	cb.SetUndoCollection(false)
	if _, err := cb.InsertString(0, "abc"); err != nil {
		t.Fatal(err)
	}
	if cb.CanUndo() {
		t.Fatalf("CanUndo = true, want false")
	}
	if pos, err := cb.Undo(); err != nil || pos != -1 {
		t.Fatalf("Undo = %d, %v, want -1", pos, err)
	}
}

func TestTentativeUndo(t *testing.T) {
	cb := newBuffer(t, "a")
	cb.DropUndoSequence()
	cb.TentativeStart()
	if _, err := cb.InsertString(1, "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := cb.InsertString(2, "c"); err != nil {
		t.Fatal(err)
	}
	cb.TentativeUndo()
	if cb.Text() != "a" {
		t.Fatalf("Text = %q, want %q", cb.Text(), "a")
	}
	if cb.TentativeActive() || cb.CanRedo() {
		t.Fatalf("TentativeActive = %v CanRedo = %v, want both false", cb.TentativeActive(), cb.CanRedo())
	}
}

func TestContainerActionReplayed(t *testing.T) {
	cb := New()
	cb.BeginUndoAction()
	if _, err := cb.InsertString(0, "a"); err != nil {
		t.Fatal(err)
	}
	cb.AddUndoAction(42, false)
	cb.EndUndoAction()
	var tokens []int
	cb.Watch(func(ev Event) {
		if ev.Kind == ContainerAction {
			tokens = append(tokens, ev.Token)
		}
	})
	cb.Undo()
	if diff := cmp.Diff([]int{42}, tokens); diff != "" {
		t.Fatalf("tokens (-want +got):\n%s", diff)
	}
}

func TestMarkersFollowLines(t *testing.T) {
	cb := newBuffer(t, "a\nb\nc")
	h := cb.AddMarker(1, 3)
	if h < 0 {
		t.Fatalf("AddMarker = %d, want a handle", h)
	}
	if _, err := cb.InsertString(2, "x\n"); err != nil {
		t.Fatal(err)
	}
	if got := cb.LineFromMarkerHandle(h); got != 2 {
		t.Fatalf("marker line after insert = %d, want 2", got)
	}
	if cb.MarkerValue(2) != 1<<3 {
		t.Fatalf("MarkerValue(2) = %b, want %b", cb.MarkerValue(2), 1<<3)
	}
	// Joining the marked line into the one above carries the marker up.
	if _, err := cb.DeleteChars(3, 1); err != nil {
		t.Fatal(err)
	}
	if got := cb.LineFromMarkerHandle(h); got != 1 {
		t.Fatalf("marker line after join = %d, want 1", got)
	}
}

func TestLevelsTrackLines(t *testing.T) {
	cb := newBuffer(t, "a\nb\nc")
	cb.SetLevel(0, LevelBase|LevelHeaderFlag)
	cb.SetLevel(1, LevelBase+1)
	cb.SetLevel(2, LevelBase+1)
	if got := cb.LastChild(0, -1); got != 2 {
		t.Fatalf("LastChild(0) = %d, want 2", got)
	}
	if got := cb.FoldParent(2); got != 0 {
		t.Fatalf("FoldParent(2) = %d, want 0", got)
	}
	if _, err := cb.InsertString(cb.LineStart(2), "z\n"); err != nil {
		t.Fatal(err)
	}
	if cb.Lines() != 4 || cb.Level(3) != LevelBase+1 {
		t.Fatalf("Level(3) = %#x, want %#x", cb.Level(3), LevelBase+1)
	}
}

func TestSetLevelNotifies(t *testing.T) {
	cb := newBuffer(t, "a\nb")
	var got []Event
	cb.Watch(func(ev Event) { got = append(got, ev) })
	cb.SetLevel(1, LevelBase+2)
	cb.SetLevel(1, LevelBase+2)
	want := []Event{{Kind: LevelChanged, Line: 1, LevelNow: LevelBase + 2, LevelPrev: LevelBase}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestStyling(t *testing.T) {
	cb := newBuffer(t, "abcdef")
	var changed []Event
	cb.Watch(func(ev Event) {
		if ev.Kind == StyleChanged {
			changed = append(changed, ev)
		}
	})
	cb.StartStyling(1)
	cb.SetStyleFor(2, 5)
	cb.SetStyles([]byte{5, 7, 0})
	if diff := cmp.Diff([]byte{0, 5, 5, 5, 7, 0}, cb.StyleRange(0, 6)); diff != "" {
		t.Fatalf("styles (-want +got):\n%s", diff)
	}
	if cb.EndStyled() != 6 {
		t.Fatalf("EndStyled = %d, want 6", cb.EndStyled())
	}
	want := []Event{
		{Kind: StyleChanged, Position: 1, Length: 2},
		{Kind: StyleChanged, Position: 3, Length: 2},
	}
	if diff := cmp.Diff(want, changed); diff != "" {
		t.Fatalf("style events (-want +got):\n%s", diff)
	}
	if _, err := cb.InsertString(2, "x"); err != nil {
		t.Fatal(err)
	}
	if cb.EndStyled() != 2 {
		t.Fatalf("EndStyled after edit = %d, want 2", cb.EndStyled())
	}
}

func TestStylingReportsChange(t *testing.T) {
	cb := newBuffer(t, "abcd")
	events := 0
	cb.Watch(func(ev Event) {
		if ev.Kind == StyleChanged {
			events++
		}
	})
	cb.StartStyling(0)
	if !cb.SetStyleFor(4, 3) {
		t.Fatalf("first SetStyleFor reported no change")
	}
	cb.StartStyling(0)
	if cb.SetStyleFor(4, 3) {
		t.Fatalf("repeated SetStyleFor reported a change")
	}
	cb.StartStyling(0)
	if cb.SetStyles([]byte{3, 3, 3, 3}) {
		t.Fatalf("SetStyles with the same styles reported a change")
	}
	cb.StartStyling(0)
	if !cb.SetStyles([]byte{3, 4}) {
		t.Fatalf("SetStyles reported no change")
	}
	if !cb.SetStyleAt(3, 9) || cb.SetStyleAt(3, 9) {
		t.Fatalf("SetStyleAt should report only the first change")
	}
	if cb.SetStyleAt(4, 1) || cb.SetStyleAt(-1, 1) {
		t.Fatalf("SetStyleAt accepted a position outside the text")
	}
	if cb.EndStyled() != 2 {
		t.Fatalf("EndStyled = %d, want 2", cb.EndStyled())
	}
	if diff := cmp.Diff([]byte{3, 4, 3, 9}, cb.StyleRange(0, 4)); diff != "" {
		t.Fatalf("styles (-want +got):\n%s", diff)
	}
	if events != 3 {
		t.Fatalf("StyleChanged events = %d, want 3", events)
	}
}

func TestAnnotations(t *testing.T) {
	cb := newBuffer(t, "a\nb\nc")
	cb.SetAnnotationText(1, "note\nmore")
	if got := cb.AnnotationLines(1); got != 2 {
		t.Fatalf("AnnotationLines = %d, want 2", got)
	}
	if _, err := cb.InsertString(0, "z\n"); err != nil {
		t.Fatal(err)
	}
	if got := cb.AnnotationText(2); got != "note\nmore" {
		t.Fatalf("AnnotationText(2) = %q, want moved annotation", got)
	}
}

func TestUndoStopsWhenReinsertCannotGrow(t *testing.T) {
	cb := newBuffer(t, "abc")
	if _, err := cb.DeleteChars(1, 1); err != nil {
		t.Fatal(err)
	}
	cb.reserve = func([]byte) error { return gapbuffer.ErrOutOfMemory }
	var kinds []EventKind
	cb.Watch(func(ev Event) { kinds = append(kinds, ev.Kind) })
	pos, err := cb.Undo()
	if !errors.Is(err, gapbuffer.ErrOutOfMemory) {
		t.Fatalf("Undo error = %v, want ErrOutOfMemory", err)
	}
	if pos != -1 {
		t.Fatalf("Undo = %d, want -1", pos)
	}
	if cb.Text() != "ac" || !cb.CanUndo() {
		t.Fatalf("Text = %q CanUndo = %v, want %q and true", cb.Text(), cb.CanUndo(), "ac")
	}
	if len(kinds) != 0 {
		t.Fatalf("events = %v, want none", kinds)
	}
	cb.reserve = cb.reserveInsert
	if pos, err := cb.Undo(); err != nil || pos != 2 || cb.Text() != "abc" {
		t.Fatalf("Undo = %d, %v, Text = %q, want 2 and %q", pos, err, cb.Text(), "abc")
	}
}

func TestAllocateTooLargeLeavesBuffer(t *testing.T) {
	cb := newBuffer(t, "abc")
	if err := cb.Allocate(1 << 62); err == nil {
		t.Fatalf("Allocate succeeded, want error")
	}
	if cb.Text() != "abc" {
		t.Fatalf("Text = %q, want unchanged", cb.Text())
	}
}
