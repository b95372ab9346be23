package undo

import "fmt"

type ActionType int

const (
	Insert ActionType = iota
	Remove
	Start
	Container
)

func (t ActionType) String() string {
	switch t {
	case Insert:
		return "insert"
	case Remove:
		return "remove"
	case Start:
		return "start"
	case Container:
		return "container"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// Action holds everything needed to undo or redo one primitive edit. Data is an
// owned copy of the inserted or removed bytes. For Container actions Position
// carries the host token.
type Action struct {
	Type        ActionType
	Position    int
	Data        []byte
	MayCoalesce bool
}

func (a Action) Len() int {
	return len(a.Data)
}

// History is the undo log. Steps are separated by Start actions; actions between
// two Start markers are undone and redone together.
type History struct {
	actions        []Action
	maxAction      int
	currentAction  int
	depth          int
	savePoint      int
	tentativePoint int
}

func New() *History {
	h := &History{}
	h.DeleteUndoHistory()
	return h
}

func (h *History) set(i int, a Action) {
	for len(h.actions) <= i {
		h.actions = append(h.actions, Action{})
	}
	h.actions[i] = a
}

func startAction() Action {
	return Action{Type: Start, MayCoalesce: true}
}

// AppendAction records an edit and reports whether it began a new undo step.
func (h *History) AppendAction(typ ActionType, position int, data []byte, mayCoalesce bool) bool {
	if h.currentAction < h.savePoint {
		h.savePoint = -1
	}
	old := h.currentAction
	if h.currentAction >= 1 {
		if h.depth == 0 {
			h.currentAction += h.coalesceBreak(typ, position, len(data), mayCoalesce)
		} else if !h.actions[h.currentAction].MayCoalesce {
			// Inside a group everything joins the step unless the group just opened.
			h.currentAction++
		}
	} else {
		h.currentAction++
	}
	owned := make([]byte, len(data))
	copy(owned, data)
	h.set(h.currentAction, Action{Type: typ, Position: position, Data: owned, MayCoalesce: mayCoalesce})
	h.currentAction++
	h.set(h.currentAction, startAction())
	h.maxAction = h.currentAction
	return old != h.currentAction-1
}

// coalesceBreak returns 1 when a top level action must start a new step.
func (h *History) coalesceBreak(typ ActionType, position, length int, mayCoalesce bool) int {
	target := h.currentAction - 1
	prev := h.actions[target]
	// Coalescable container actions forward the state of the action before them.
	for prev.Type == Container && prev.MayCoalesce && target > 0 {
		target--
		prev = h.actions[target]
	}
	switch {
	case h.currentAction == h.savePoint || h.currentAction == h.tentativePoint:
		return 1
	case !h.actions[h.currentAction].MayCoalesce:
		return 1
	case !mayCoalesce || !prev.MayCoalesce:
		return 1
	case typ == Container || h.actions[h.currentAction].Type == Container:
		return 0
	case typ != prev.Type && prev.Type != Start:
		return 1
	case typ == Insert && position != prev.Position+prev.Len():
		// Inserts only join when typed immediately after the previous one.
		return 1
	case typ == Remove:
		if length != 1 && length != 2 {
			return 1
		}
		if position+length == prev.Position || position == prev.Position {
			// Backspace or forward delete run.
			return 0
		}
		return 1
	}
	return 0
}

// BeginUndoAction opens a group. Only the outermost pair places a boundary.
func (h *History) BeginUndoAction() {
	if h.depth == 0 {
		h.closeStep()
	}
	h.depth++
}

func (h *History) EndUndoAction() {
	if h.depth == 0 {
		return
	}
	h.depth--
	if h.depth == 0 {
		h.closeStep()
	}
}

func (h *History) closeStep() {
	if h.actions[h.currentAction].Type != Start {
		h.currentAction++
		h.set(h.currentAction, startAction())
		h.maxAction = h.currentAction
	}
	h.actions[h.currentAction].MayCoalesce = false
}

// DropUndoSequence abandons any open groups and stops the next action from
// joining the current step.
func (h *History) DropUndoSequence() {
	h.depth = 0
	if h.actions[h.currentAction].Type == Start {
		h.actions[h.currentAction].MayCoalesce = false
	}
}

func (h *History) Depth() int {
	return h.depth
}

func (h *History) DeleteUndoHistory() {
	h.actions = h.actions[:0]
	h.set(0, startAction())
	h.currentAction = 0
	h.maxAction = 0
	h.depth = 0
	h.savePoint = 0
	h.tentativePoint = -1
}

func (h *History) SetSavePoint() {
	h.savePoint = h.currentAction
}

func (h *History) IsSavePoint() bool {
	return h.savePoint == h.currentAction
}

func (h *History) TentativeStart() {
	h.tentativePoint = h.currentAction
}

// TentativeCommit keeps the tentative actions and discards any redo tail.
func (h *History) TentativeCommit() {
	h.tentativePoint = -1
	h.maxAction = h.currentAction
}

func (h *History) TentativeActive() bool {
	return h.tentativePoint >= 0
}

// TentativeSteps returns the number of actions since TentativeStart, or -1.
func (h *History) TentativeSteps() int {
	if h.actions[h.currentAction].Type == Start && h.currentAction > 0 {
		h.currentAction--
	}
	if h.tentativePoint >= 0 {
		return h.currentAction - h.tentativePoint
	}
	return -1
}

func (h *History) CanUndo() bool {
	return h.currentAction > 0 && h.maxAction > 0
}

// StartUndo positions on the last action of the current step and returns how
// many actions the step holds.
func (h *History) StartUndo() int {
	if h.actions[h.currentAction].Type == Start && h.currentAction > 0 {
		h.currentAction--
	}
	act := h.currentAction
	for h.actions[act].Type != Start && act > 0 {
		act--
	}
	return h.currentAction - act
}

func (h *History) GetUndoStep() Action {
	if !h.CanUndo() {
		panic("undo: GetUndoStep called with nothing to undo")
	}
	return h.actions[h.currentAction]
}

func (h *History) CompletedUndoStep() {
	if h.currentAction <= 0 {
		panic("undo: CompletedUndoStep called with nothing to undo")
	}
	h.currentAction--
	if h.actions[h.currentAction].Type == Start {
		h.actions[h.currentAction].MayCoalesce = false
	}
}

func (h *History) CanRedo() bool {
	return h.maxAction > h.currentAction
}

// StartRedo positions on the first action of the next step and returns how
// many actions the step holds.
func (h *History) StartRedo() int {
	if h.currentAction < h.maxAction && h.actions[h.currentAction].Type == Start {
		h.currentAction++
	}
	act := h.currentAction
	for act < h.maxAction && h.actions[act].Type != Start {
		act++
	}
	return act - h.currentAction
}

func (h *History) GetRedoStep() Action {
	if !h.CanRedo() {
		panic("undo: GetRedoStep called with nothing to redo")
	}
	return h.actions[h.currentAction]
}

func (h *History) CompletedRedoStep() {
	if h.currentAction >= h.maxAction {
		panic("undo: CompletedRedoStep called with nothing to redo")
	}
	h.currentAction++
}
