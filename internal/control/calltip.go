package control

import "strings"

// Arrow characters in a call tip definition. Clicking them reports a
// direction so the host can cycle through overloads.
const (
	ArrowUp   = '\001'
	ArrowDown = '\002'
)

// CallTip is a one-shot hint shown next to the caret.
type CallTip struct {
	active   bool
	text     string
	posStart int
	drawAt   int
	hlStart  int
	hlEnd    int
}

func (ct *CallTip) Active() bool {
	return ct.active
}

// Show opens the tip with text anchored at pos.
func (ct *CallTip) Show(pos int, text string) {
	ct.active = true
	ct.text = text
	ct.posStart = pos
	ct.drawAt = pos
	ct.hlStart, ct.hlEnd = 0, 0
}

func (ct *CallTip) Cancel() {
	ct.active = false
}

func (ct *CallTip) Text() string {
	return ct.text
}

func (ct *CallTip) PosStart() int {
	return ct.posStart
}

// DrawAt is the document position the tip is drawn next to.
func (ct *CallTip) DrawAt() int {
	return ct.drawAt
}

func (ct *CallTip) SetPosStart(pos int) {
	ct.posStart = pos
}

// SetHighlight marks [start, end) of the text, usually the current
// argument. Out-of-range bounds are clipped.
func (ct *CallTip) SetHighlight(start, end int) {
	start = min(max(start, 0), len(ct.text))
	end = min(max(end, start), len(ct.text))
	ct.hlStart, ct.hlEnd = start, end
}

func (ct *CallTip) Highlight() (start, end int) {
	return ct.hlStart, ct.hlEnd
}

// Lines splits the text for display. Arrow characters are left in so the
// host can draw them.
func (ct *CallTip) Lines() []string {
	return strings.Split(ct.text, "\n")
}

// directionAt returns 1 for the up arrow at offset, 2 for the down arrow and
// 0 anywhere else.
func (ct *CallTip) directionAt(offset int) int {
	if offset < 0 || offset >= len(ct.text) {
		return 0
	}
	switch ct.text[offset] {
	case ArrowUp:
		return 1
	case ArrowDown:
		return 2
	}
	return 0
}
