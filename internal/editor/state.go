package editor

import "github.com/kobzarvs/sciedit/internal/selection"

// ViewState is the part of an editor worth restoring when a file is opened
// again.
type ViewState struct {
	Ranges  []selection.Range
	Main    int
	Type    selection.Type
	TopLine int
	XOffset int
	Folded  []int
}

func (e *Editor) SaveState() ViewState {
	return ViewState{
		Ranges:  e.sel.Ranges(),
		Main:    e.sel.Main(),
		Type:    e.sel.Type,
		TopLine: e.topLine,
		XOffset: e.xOffset,
		Folded:  e.ContractedFolds(),
	}
}

// RestoreState applies s to the current document. Positions and lines that
// no longer exist are clamped; fold lines that are no longer headers are
// skipped.
func (e *Editor) RestoreState(s ViewState) {
	before, beforeType := e.sel.Ranges(), e.sel.Type
	defer e.flush(before, beforeType)
	for _, line := range s.Folded {
		if line >= 0 && line < e.doc.Lines() && isHeader(e.doc.Level(line)) {
			e.FoldLine(line, FoldContract)
		}
	}
	e.SetSelections(s.Ranges, s.Main, s.Type)
	e.SetTopLine(s.TopLine)
	e.SetXOffset(s.XOffset)
	e.setLastXChosen()
}
