package editor

import (
	"github.com/kobzarvs/sciedit/internal/logger"
	"github.com/kobzarvs/sciedit/internal/selection"
)

// Command identifies an editor operation. Parameters, when a command takes
// any, are passed to Execute as p1 and p2.
type Command int

const (
	CmdNull Command = iota

	// Text.
	CmdAddChar // p1: rune
	CmdNewLine
	CmdTab
	CmdBackTab
	CmdDeleteBack
	CmdDeleteBackNotLine
	CmdClear
	CmdDelWordLeft
	CmdDelWordRight
	CmdDelLineLeft
	CmdDelLineRight
	CmdEditToggleOvertype
	CmdLowerCase
	CmdUpperCase
	CmdCancel
	CmdClearAll

	// Lines.
	CmdLineCut
	CmdLineDelete
	CmdLineCopy
	CmdLineTranspose
	CmdLineDuplicate
	CmdSelectionDuplicate
	CmdLinesJoin
	CmdLinesSplit  // p1: width in columns, 0 for the view width
	CmdConvertEOLs // p1: EOLMode

	// Selection.
	CmdSelectAll
	CmdSetSel       // p1: anchor, p2: caret (-1 for the end)
	CmdAddSelection // p1: caret, p2: anchor
	CmdSetEmptySelection
	CmdGotoPos  // p1: position
	CmdGotoLine // p1: line
	CmdRotateSelection
	CmdSwapMainAnchorCaret
	CmdMultipleSelectAddNext

	// Navigation.
	CmdCharLeft
	CmdCharLeftExtend
	CmdCharLeftRectExtend
	CmdCharRight
	CmdCharRightExtend
	CmdCharRightRectExtend
	CmdLineUp
	CmdLineUpExtend
	CmdLineUpRectExtend
	CmdLineDown
	CmdLineDownExtend
	CmdLineDownRectExtend
	CmdWordLeft
	CmdWordLeftExtend
	CmdWordRight
	CmdWordRightExtend
	CmdHome
	CmdHomeExtend
	CmdHomeRectExtend
	CmdVCHome
	CmdVCHomeExtend
	CmdLineEnd
	CmdLineEndExtend
	CmdLineEndRectExtend
	CmdDocumentStart
	CmdDocumentStartExtend
	CmdDocumentEnd
	CmdDocumentEndExtend
	CmdPageUp
	CmdPageUpExtend
	CmdPageDown
	CmdPageDownExtend

	// Clipboard.
	CmdCut
	CmdCopy
	CmdCopyAllowLine
	CmdPaste

	// Undo.
	CmdUndo
	CmdRedo
	CmdEmptyUndoBuffer
	CmdBeginUndoAction
	CmdEndUndoAction
	CmdSetSavePoint
	CmdAddUndoAction // p1: token, p2: 1 to coalesce

	// Folding.
	CmdToggleFold // p1: line, -1 for the caret line
	CmdFoldLine   // p1: line, p2: FoldAction
	CmdFoldAll    // p1: FoldAction
	CmdEnsureVisible

	// Document.
	CmdSetReadOnly // p1: 0 or 1

	cmdCount
)

var commandNames = [...]string{
	CmdNull:                  "null",
	CmdAddChar:               "add_char",
	CmdNewLine:               "new_line",
	CmdTab:                   "tab",
	CmdBackTab:               "back_tab",
	CmdDeleteBack:            "delete_back",
	CmdDeleteBackNotLine:     "delete_back_not_line",
	CmdClear:                 "clear",
	CmdDelWordLeft:           "del_word_left",
	CmdDelWordRight:          "del_word_right",
	CmdDelLineLeft:           "del_line_left",
	CmdDelLineRight:          "del_line_right",
	CmdEditToggleOvertype:    "edit_toggle_overtype",
	CmdLowerCase:             "lower_case",
	CmdUpperCase:             "upper_case",
	CmdCancel:                "cancel",
	CmdClearAll:              "clear_all",
	CmdLineCut:               "line_cut",
	CmdLineDelete:            "line_delete",
	CmdLineCopy:              "line_copy",
	CmdLineTranspose:         "line_transpose",
	CmdLineDuplicate:         "line_duplicate",
	CmdSelectionDuplicate:    "selection_duplicate",
	CmdLinesJoin:             "lines_join",
	CmdLinesSplit:            "lines_split",
	CmdConvertEOLs:           "convert_eols",
	CmdSelectAll:             "select_all",
	CmdSetSel:                "set_sel",
	CmdAddSelection:          "add_selection",
	CmdSetEmptySelection:     "set_empty_selection",
	CmdGotoPos:               "goto_pos",
	CmdGotoLine:              "goto_line",
	CmdRotateSelection:       "rotate_selection",
	CmdSwapMainAnchorCaret:   "swap_main_anchor_caret",
	CmdMultipleSelectAddNext: "multiple_select_add_next",
	CmdCharLeft:              "char_left",
	CmdCharLeftExtend:        "char_left_extend",
	CmdCharLeftRectExtend:    "char_left_rect_extend",
	CmdCharRight:             "char_right",
	CmdCharRightExtend:       "char_right_extend",
	CmdCharRightRectExtend:   "char_right_rect_extend",
	CmdLineUp:                "line_up",
	CmdLineUpExtend:          "line_up_extend",
	CmdLineUpRectExtend:      "line_up_rect_extend",
	CmdLineDown:              "line_down",
	CmdLineDownExtend:        "line_down_extend",
	CmdLineDownRectExtend:    "line_down_rect_extend",
	CmdWordLeft:              "word_left",
	CmdWordLeftExtend:        "word_left_extend",
	CmdWordRight:             "word_right",
	CmdWordRightExtend:       "word_right_extend",
	CmdHome:                  "home",
	CmdHomeExtend:            "home_extend",
	CmdHomeRectExtend:        "home_rect_extend",
	CmdVCHome:                "vc_home",
	CmdVCHomeExtend:          "vc_home_extend",
	CmdLineEnd:               "line_end",
	CmdLineEndExtend:         "line_end_extend",
	CmdLineEndRectExtend:     "line_end_rect_extend",
	CmdDocumentStart:         "document_start",
	CmdDocumentStartExtend:   "document_start_extend",
	CmdDocumentEnd:           "document_end",
	CmdDocumentEndExtend:     "document_end_extend",
	CmdPageUp:                "page_up",
	CmdPageUpExtend:          "page_up_extend",
	CmdPageDown:              "page_down",
	CmdPageDownExtend:        "page_down_extend",
	CmdCut:                   "cut",
	CmdCopy:                  "copy",
	CmdCopyAllowLine:         "copy_allow_line",
	CmdPaste:                 "paste",
	CmdUndo:                  "undo",
	CmdRedo:                  "redo",
	CmdEmptyUndoBuffer:       "empty_undo_buffer",
	CmdBeginUndoAction:       "begin_undo_action",
	CmdEndUndoAction:         "end_undo_action",
	CmdSetSavePoint:          "set_save_point",
	CmdAddUndoAction:         "add_undo_action",
	CmdToggleFold:            "toggle_fold",
	CmdFoldLine:              "fold_line",
	CmdFoldAll:               "fold_all",
	CmdEnsureVisible:         "ensure_visible",
	CmdSetReadOnly:           "set_read_only",
}

func (c Command) String() string {
	if c >= 0 && int(c) < len(commandNames) && commandNames[c] != "" {
		return commandNames[c]
	}
	return "unknown"
}

var commandsByName = func() map[string]Command {
	m := make(map[string]Command, len(commandNames))
	for c, name := range commandNames {
		if name != "" {
			m[name] = Command(c)
		}
	}
	return m
}()

// CommandByName looks up a keymap command name such as "char_left_extend".
func CommandByName(name string) (Command, bool) {
	c, ok := commandsByName[name]
	return c, ok && c != CmdNull
}

// Execute runs cmd and returns its result: a position, a count or a flag
// depending on the command, 0 when there is nothing to report. Unknown
// commands do nothing. A panic inside a command is reported through Status
// and never reaches the host.
func (e *Editor) Execute(cmd Command, p1, p2 int) (result int) {
	before, beforeType := e.sel.Ranges(), e.sel.Type
	holds, groups := e.sel.Holds(), e.doc.UndoDepth()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("command failed", "command", cmd.String(), "panic", r)
			e.status = StatusFailure
			result = 0
			e.unwind(holds, groups)
		}
		e.flush(before, beforeType)
	}()
	return e.dispatch(cmd, p1, p2)
}

// unwind closes the selection holds and undo groups a failed command left
// open, so the ranges merge again and the partial edit undoes as one step.
func (e *Editor) unwind(holds, groups int) {
	e.sel.ReleaseTo(holds)
	for e.doc.UndoDepth() > groups {
		e.doc.EndUndoAction()
	}
	if groups == 0 {
		e.doc.DropUndoSequence()
	}
}

func (e *Editor) dispatch(cmd Command, p1, p2 int) int {
	switch cmd {
	case CmdAddChar:
		e.addChar(rune(p1))
	case CmdNewLine:
		e.newLine()
	case CmdTab:
		e.indentSelection(true)
	case CmdBackTab:
		e.indentSelection(false)
	case CmdDeleteBack:
		e.delCharBack(true)
	case CmdDeleteBackNotLine:
		e.delCharBack(false)
	case CmdClear:
		e.clear()
	case CmdDelWordLeft:
		e.deleteTo(true, func(caret int) int { return e.nextWordStart(caret, -1) })
	case CmdDelWordRight:
		e.deleteTo(false, func(caret int) int { return e.nextWordStart(caret, 1) })
	case CmdDelLineLeft:
		e.deleteTo(true, func(caret int) int { return e.doc.LineStart(e.lineOf(caret)) })
	case CmdDelLineRight:
		e.deleteTo(false, func(caret int) int { return e.doc.LineEnd(e.lineOf(caret)) })
	case CmdEditToggleOvertype:
		e.overtype = !e.overtype
	case CmdLowerCase:
		e.changeCase(false)
	case CmdUpperCase:
		e.changeCase(true)
	case CmdCancel:
		e.cancel()
	case CmdClearAll:
		e.clearAll()

	case CmdLineCut:
		e.lineCut()
	case CmdLineDelete:
		e.lineDelete()
	case CmdLineCopy:
		e.lineCopy()
	case CmdLineTranspose:
		e.lineTranspose()
	case CmdLineDuplicate:
		e.duplicate(true)
	case CmdSelectionDuplicate:
		e.duplicate(false)
	case CmdLinesJoin:
		e.linesJoin()
	case CmdLinesSplit:
		e.linesSplit(p1)
	case CmdConvertEOLs:
		e.convertEOLs(EOLMode(p1))

	case CmdSelectAll:
		e.SetSel(0, e.doc.Length())
	case CmdSetSel:
		e.SetSel(p1, p2)
	case CmdAddSelection:
		e.sel.AddSelection(selection.NewRange(e.clamp(p1), e.clamp(p2)))
	case CmdSetEmptySelection:
		e.setEmptySelection(p1)
	case CmdGotoPos:
		e.GotoPos(p1)
	case CmdGotoLine:
		e.GotoLine(p1)
	case CmdRotateSelection:
		e.sel.RotateMain()
		e.EnsureCaretVisible()
	case CmdSwapMainAnchorCaret:
		r := e.sel.RangeMain()
		r.Swap()
		e.sel.SetRangeMain(r)
		e.EnsureCaretVisible()
	case CmdMultipleSelectAddNext:
		return e.multipleSelectAddNext()

	case CmdCharLeft, CmdCharLeftExtend, CmdCharRight, CmdCharRightExtend,
		CmdWordLeft, CmdWordLeftExtend, CmdWordRight, CmdWordRightExtend,
		CmdHome, CmdHomeExtend, CmdVCHome, CmdVCHomeExtend, CmdLineEnd, CmdLineEndExtend:
		e.horizontalMove(cmd)
	case CmdCharLeftRectExtend, CmdCharRightRectExtend, CmdHomeRectExtend, CmdLineEndRectExtend:
		e.horizontalRectMove(cmd)
	case CmdLineUp:
		e.cursorUpOrDown(-1, moveCaret)
	case CmdLineUpExtend:
		e.cursorUpOrDown(-1, moveExtend)
	case CmdLineUpRectExtend:
		e.cursorUpOrDown(-1, moveRect)
	case CmdLineDown:
		e.cursorUpOrDown(1, moveCaret)
	case CmdLineDownExtend:
		e.cursorUpOrDown(1, moveExtend)
	case CmdLineDownRectExtend:
		e.cursorUpOrDown(1, moveRect)
	case CmdDocumentStart:
		e.movePositionTo(selection.At(0), moveCaret)
	case CmdDocumentStartExtend:
		e.movePositionTo(selection.At(0), moveExtend)
	case CmdDocumentEnd:
		e.movePositionTo(selection.At(e.doc.Length()), moveCaret)
	case CmdDocumentEndExtend:
		e.movePositionTo(selection.At(e.doc.Length()), moveExtend)
	case CmdPageUp:
		e.pageMove(-1, false)
	case CmdPageUpExtend:
		e.pageMove(-1, true)
	case CmdPageDown:
		e.pageMove(1, false)
	case CmdPageDownExtend:
		e.pageMove(1, true)

	case CmdCut:
		e.Cut()
	case CmdCopy:
		e.Copy()
	case CmdCopyAllowLine:
		e.copyAllowLine()
	case CmdPaste:
		e.paste()

	case CmdUndo:
		e.undo()
	case CmdRedo:
		e.redo()
	case CmdEmptyUndoBuffer:
		e.doc.DeleteUndoHistory()
	case CmdBeginUndoAction:
		e.doc.BeginUndoAction()
	case CmdEndUndoAction:
		e.doc.EndUndoAction()
	case CmdSetSavePoint:
		e.doc.SetSavePoint()
	case CmdAddUndoAction:
		e.doc.AddUndoAction(p1, p2 != 0)

	case CmdToggleFold:
		line := p1
		if line < 0 {
			line = e.lineOf(e.sel.MainCaret())
		}
		e.FoldLine(line, FoldToggle)
	case CmdFoldLine:
		e.FoldLine(p1, FoldAction(p2))
	case CmdFoldAll:
		e.FoldAll(FoldAction(p1))
	case CmdEnsureVisible:
		e.EnsureLineVisible(p1)

	case CmdSetReadOnly:
		e.doc.SetReadOnly(p1 != 0)
	}
	return 0
}

// Typed wrappers for the commands hosts use most.

func (e *Editor) AddChar(ch rune) { e.Execute(CmdAddChar, int(ch), 0) }
func (e *Editor) NewLine() { e.Execute(CmdNewLine, 0, 0) }
func (e *Editor) DeleteBack() { e.Execute(CmdDeleteBack, 0, 0) }
func (e *Editor) Clear() { e.Execute(CmdClear, 0, 0) }
func (e *Editor) Tab() { e.Execute(CmdTab, 0, 0) }
func (e *Editor) BackTab() { e.Execute(CmdBackTab, 0, 0) }
func (e *Editor) Undo() { e.Execute(CmdUndo, 0, 0) }
func (e *Editor) Redo() { e.Execute(CmdRedo, 0, 0) }
func (e *Editor) SelectAll() { e.Execute(CmdSelectAll, 0, 0) }
func (e *Editor) Paste() { e.Execute(CmdPaste, 0, 0) }
func (e *Editor) ToggleFold(line int) { e.Execute(CmdToggleFold, line, 0) }
func (e *Editor) SetReadOnly(ro bool) { e.Execute(CmdSetReadOnly, boolInt(ro), 0) }
func (e *Editor) SetSavePoint() { e.Execute(CmdSetSavePoint, 0, 0) }
func (e *Editor) EmptyUndoBuffer() { e.Execute(CmdEmptyUndoBuffer, 0, 0) }
func (e *Editor) ConvertEOLs(mode EOLMode) { e.Execute(CmdConvertEOLs, int(mode), 0) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
