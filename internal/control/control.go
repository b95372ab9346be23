// Package control layers autocompletion, call tips and lexer invocation on
// top of the editor. It intercepts key commands while a list or tip is
// showing and forwards the rest.
package control

import (
	"strings"

	"github.com/kobzarvs/sciedit/internal/config"
	"github.com/kobzarvs/sciedit/internal/editor"
)

// Mode is the modal state layered over the editor.
type Mode int

const (
	ModeIdle Mode = iota
	ModeAutoCompleting
	ModeCallTipShowing
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeAutoCompleting:
		return "autocompleting"
	case ModeCallTipShowing:
		return "calltip"
	}
	return "unknown"
}

type Control struct {
	*editor.Editor

	ac    *AutoComplete
	ct    *CallTip
	lexer Lexer
	sink  editor.NotificationSink
}

func New(cfg config.Config) *Control {
	c := &Control{
		Editor: editor.New(cfg.Editor),
		ac:     NewAutoComplete(cfg.Autocomplete),
		ct:     &CallTip{},
	}
	c.Editor.SetNotificationSink(c.notify)
	return c
}

// SetNotificationSink installs the host sink. The control sees every
// notification first.
func (c *Control) SetNotificationSink(sink editor.NotificationSink) {
	c.sink = sink
}

func (c *Control) AutoComplete() *AutoComplete {
	return c.ac
}

func (c *Control) CallTip() *CallTip {
	return c.ct
}

func (c *Control) Mode() Mode {
	switch {
	case c.ac.Active():
		return ModeAutoCompleting
	case c.ct.Active():
		return ModeCallTipShowing
	}
	return ModeIdle
}

func (c *Control) notify(n editor.Notification) {
	switch n.Kind {
	case editor.NotifyStyleNeeded:
		if c.lexer != nil {
			doc := c.Document()
			c.Colourise(c.LineStart(c.LineFromPosition(doc.EndStyled())), n.Pos)
			return
		}
	case editor.NotifyTextInserted, editor.NotifyTextDeleted:
		if c.ct.Active() && n.Pos < c.ct.PosStart() {
			c.ct.Cancel()
		}
	}
	if c.sink != nil {
		c.sink(n)
	}
}

// passive commands are the programmatic ones that neither cancel a list nor
// a tip.
var passive = map[editor.Command]bool{
	editor.CmdNull:              true,
	editor.CmdSetSel:            true,
	editor.CmdAddSelection:      true,
	editor.CmdSetEmptySelection: true,
	editor.CmdGotoPos:           true,
	editor.CmdGotoLine:          true,
	editor.CmdCopy:              true,
	editor.CmdCopyAllowLine:     true,
	editor.CmdLineCopy:          true,
	editor.CmdEmptyUndoBuffer:   true,
	editor.CmdBeginUndoAction:   true,
	editor.CmdEndUndoAction:     true,
	editor.CmdSetSavePoint:      true,
	editor.CmdAddUndoAction:     true,
	editor.CmdFoldLine:          true,
	editor.CmdFoldAll:           true,
	editor.CmdEnsureVisible:     true,
	editor.CmdSetReadOnly:       true,
}

// keepsCallTip are the keys a call tip survives.
var keepsCallTip = map[editor.Command]bool{
	editor.CmdCharLeft:           true,
	editor.CmdCharLeftExtend:     true,
	editor.CmdCharRight:          true,
	editor.CmdCharRightExtend:    true,
	editor.CmdEditToggleOvertype: true,
	editor.CmdDeleteBack:         true,
	editor.CmdDeleteBackNotLine:  true,
}

// Execute runs cmd, steering list navigation and completion keys to the
// open list first.
func (c *Control) Execute(cmd editor.Command, p1, p2 int) int {
	if cmd == editor.CmdAddChar {
		c.addChar(rune(p1))
		return 0
	}
	if passive[cmd] {
		return c.Editor.Execute(cmd, p1, p2)
	}
	if c.ac.Active() {
		switch cmd {
		case editor.CmdLineDown:
			c.ac.Move(1)
			return 0
		case editor.CmdLineUp:
			c.ac.Move(-1)
			return 0
		case editor.CmdPageDown:
			c.ac.Move(c.ac.opts.MaxHeight)
			return 0
		case editor.CmdPageUp:
			c.ac.Move(-c.ac.opts.MaxHeight)
			return 0
		case editor.CmdVCHome:
			c.ac.Move(-5000)
			return 0
		case editor.CmdLineEnd:
			c.ac.Move(5000)
			return 0
		case editor.CmdDeleteBack, editor.CmdDeleteBackNotLine:
			c.Editor.Execute(cmd, p1, p2)
			c.characterDeleted()
			return 0
		case editor.CmdTab, editor.CmdNewLine:
			c.AutoCComplete()
			return 0
		default:
			c.AutoCCancel()
		}
	}
	if c.ct.Active() {
		if !keepsCallTip[cmd] {
			c.ct.Cancel()
		}
		if (cmd == editor.CmdDeleteBack || cmd == editor.CmdDeleteBackNotLine) && c.CurrentPos() <= c.ct.PosStart() {
			c.ct.Cancel()
		}
	}
	return c.Editor.Execute(cmd, p1, p2)
}

// addChar types ch and lets an open list react to it. A fill-up character
// completes before it is inserted so the host sees the completion first.
func (c *Control) addChar(ch rune) {
	fillUp := c.ac.Active() && c.ac.IsFillUpChar(ch)
	if !fillUp {
		c.Editor.Execute(editor.CmdAddChar, int(ch), 0)
	}
	if !c.ac.Active() {
		return
	}
	switch {
	case fillUp:
		c.complete(ch)
		c.Editor.Execute(editor.CmdAddChar, int(ch), 0)
	case c.ac.IsStopChar(ch):
		c.AutoCCancel()
	default:
		c.moveToCurrentWord()
	}
}

func (c *Control) AddChar(ch rune) { c.Execute(editor.CmdAddChar, int(ch), 0) }
func (c *Control) NewLine() { c.Execute(editor.CmdNewLine, 0, 0) }
func (c *Control) DeleteBack() { c.Execute(editor.CmdDeleteBack, 0, 0) }
func (c *Control) Clear() { c.Execute(editor.CmdClear, 0, 0) }
func (c *Control) Tab() { c.Execute(editor.CmdTab, 0, 0) }
func (c *Control) BackTab() { c.Execute(editor.CmdBackTab, 0, 0) }
func (c *Control) Undo() { c.Execute(editor.CmdUndo, 0, 0) }
func (c *Control) Redo() { c.Execute(editor.CmdRedo, 0, 0) }
func (c *Control) SelectAll() { c.Execute(editor.CmdSelectAll, 0, 0) }
func (c *Control) Paste() { c.Execute(editor.CmdPaste, 0, 0) }

// CancelModes closes the list and the tip.
func (c *Control) CancelModes() {
	c.AutoCCancel()
	c.ct.Cancel()
}

// ButtonDown closes any list or tip before the click selects.
func (c *Control) ButtonDown(displayLine, x int, mods editor.Modifiers) {
	c.CancelModes()
	c.Editor.ButtonDown(displayLine, x, mods)
}

// AutoCStart opens a list for the word of lenEntered bytes before the caret.
// With ChooseSingle and a one item list the item is inserted straight away.
func (c *Control) AutoCStart(lenEntered int, list string) {
	c.ct.Cancel()
	caret := c.CurrentPos()
	lenEntered = min(max(lenEntered, 0), caret)
	if c.ac.opts.ChooseSingle && list != "" && strings.IndexByte(list, c.ac.separator) < 0 {
		value := list
		if i := strings.IndexByte(value, c.ac.typeSep); i >= 0 {
			value = value[:i]
		}
		if c.ac.opts.IgnoreCase {
			c.Editor.SetSel(caret-lenEntered, caret)
			c.Editor.ReplaceSel(value)
		} else if lenEntered < len(value) {
			c.Editor.InsertText(caret, value[lenEntered:])
		}
		c.ac.Cancel()
		return
	}
	c.ac.Start(caret, lenEntered)
	c.ac.SetList(list)
	if lenEntered != 0 {
		c.moveToCurrentWord()
	}
}

// AutoCCancel closes the list and tells the host.
func (c *Control) AutoCCancel() {
	if c.ac.Active() {
		c.Emit(editor.Notification{Kind: editor.NotifyAutoCCancelled})
	}
	c.ac.Cancel()
}

// AutoCComplete inserts the selected item over the word being typed.
func (c *Control) AutoCComplete() {
	c.complete(0)
}

// AutoCSelect selects the first item starting with word.
func (c *Control) AutoCSelect(word string) {
	c.ac.Select(word)
}

// AutoCCurrentText returns the selected item, empty when nothing is
// selected.
func (c *Control) AutoCCurrentText() string {
	if !c.ac.Active() {
		return ""
	}
	return c.ac.Value(c.ac.Selection())
}

func (c *Control) moveToCurrentWord() {
	word := c.TextRange(c.ac.posStart-c.ac.startLen, c.CurrentPos())
	c.ac.Select(word)
}

func (c *Control) characterDeleted() {
	caret := c.CurrentPos()
	switch {
	case caret < c.ac.posStart-c.ac.startLen:
		c.AutoCCancel()
	case c.ac.opts.CancelAtStart && caret <= c.ac.posStart:
		c.AutoCCancel()
	default:
		c.moveToCurrentWord()
	}
	c.Emit(editor.Notification{Kind: editor.NotifyAutoCCharDeleted})
}

func (c *Control) complete(ch rune) {
	item := c.ac.Selection()
	if item < 0 {
		c.AutoCCancel()
		return
	}
	selected := c.ac.Value(item)
	first := c.ac.posStart - c.ac.startLen
	c.Emit(editor.Notification{Kind: editor.NotifyAutoCSelection, Pos: first, Text: selected, Ch: ch})
	// The host may have cancelled from the notification.
	if !c.ac.Active() {
		return
	}
	c.ac.Cancel()
	end := c.CurrentPos()
	if c.ac.opts.DropRestOfWord {
		end = c.WordEnd(end)
	}
	if end < first {
		return
	}
	c.Editor.SetSel(first, end)
	c.Editor.ReplaceSel(selected)
}

// CallTipShow shows text as a tip anchored at the main caret. pos is where
// the tip is drawn; it does not move the anchor.
func (c *Control) CallTipShow(pos int, text string) {
	c.ac.Cancel()
	c.ct.Show(c.CurrentPos(), text)
	c.ct.drawAt = pos
}

func (c *Control) CallTipCancel() {
	c.ct.Cancel()
}

// CallTipClick reports a click at byte offset into the tip text.
func (c *Control) CallTipClick(offset int) {
	if !c.ct.Active() {
		return
	}
	c.Emit(editor.Notification{Kind: editor.NotifyCallTipClick, Direction: c.ct.directionAt(offset)})
}
