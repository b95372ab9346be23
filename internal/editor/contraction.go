package editor

import "github.com/kobzarvs/sciedit/internal/partition"

// Contraction tracks which document lines are shown, which fold headers are
// expanded and how many display lines each line takes. display maps document
// lines to their first display line and has one partition past the last line.
type Contraction struct {
	visible  []bool
	expanded []bool
	heights  []int
	display  *partition.Partitioning
}

func NewContraction() *Contraction {
	c := &Contraction{}
	c.Clear()
	return c
}

// Clear resets to a single visible line.
func (c *Contraction) Clear() {
	c.visible = c.visible[:0]
	c.expanded = c.expanded[:0]
	c.heights = c.heights[:0]
	c.display = partition.New(8)
	c.InsertLines(0, 1)
}

func (c *Contraction) LinesInDoc() int {
	return c.display.Partitions() - 1
}

func (c *Contraction) LinesDisplayed() int {
	return c.display.PositionFromPartition(c.LinesInDoc())
}

// DisplayFromDoc returns the first display line of lineDoc.
func (c *Contraction) DisplayFromDoc(lineDoc int) int {
	if lineDoc < 0 {
		return 0
	}
	if lineDoc > c.LinesInDoc() {
		return c.LinesDisplayed()
	}
	return c.display.PositionFromPartition(lineDoc)
}

func (c *Contraction) DisplayLastFromDoc(lineDoc int) int {
	return c.DisplayFromDoc(lineDoc) + c.Height(lineDoc) - 1
}

// DocFromDisplay returns the visible document line shown at lineDisplay.
func (c *Contraction) DocFromDisplay(lineDisplay int) int {
	if lineDisplay <= 0 {
		return 0
	}
	if lineDisplay > c.LinesDisplayed() {
		return c.display.PartitionFromPosition(c.LinesDisplayed())
	}
	return c.display.PartitionFromPosition(lineDisplay)
}

func (c *Contraction) valid(line int) bool {
	return line >= 0 && line < len(c.visible)
}

func (c *Contraction) InsertLines(lineDoc, count int) {
	if lineDoc < 0 || lineDoc > len(c.visible) {
		return
	}
	for l := 0; l < count; l++ {
		line := lineDoc + l
		c.visible = insertAt(c.visible, line, true)
		c.expanded = insertAt(c.expanded, line, true)
		c.heights = insertAt(c.heights, line, 1)
		_ = c.display.InsertPartition(line, c.DisplayFromDoc(line))
		c.display.InsertText(line, 1)
	}
}

func (c *Contraction) DeleteLines(lineDoc, count int) {
	for l := 0; l < count; l++ {
		if !c.valid(lineDoc) || len(c.visible) == 1 {
			return
		}
		if c.visible[lineDoc] {
			c.display.InsertText(lineDoc, -c.heights[lineDoc])
		}
		c.display.RemovePartition(lineDoc)
		c.visible = removeAt(c.visible, lineDoc)
		c.expanded = removeAt(c.expanded, lineDoc)
		c.heights = removeAt(c.heights, lineDoc)
	}
}

func (c *Contraction) GetVisible(lineDoc int) bool {
	if !c.valid(lineDoc) {
		return lineDoc >= 0
	}
	return c.visible[lineDoc]
}

// SetVisible shows or hides lines start..end inclusive and reports whether
// anything changed. Line 0 is always visible.
func (c *Contraction) SetVisible(start, end int, visible bool) bool {
	if start == 0 && end == 0 {
		return false
	}
	changed := false
	start = max(start, 0)
	end = min(end, len(c.visible)-1)
	for line := start; line <= end; line++ {
		if c.visible[line] == visible {
			continue
		}
		delta := c.heights[line]
		if !visible {
			delta = -delta
		}
		c.visible[line] = visible
		c.display.InsertText(line, delta)
		changed = true
	}
	return changed
}

func (c *Contraction) HiddenLines() bool {
	for _, v := range c.visible {
		if !v {
			return true
		}
	}
	return false
}

func (c *Contraction) GetExpanded(lineDoc int) bool {
	if !c.valid(lineDoc) {
		return true
	}
	return c.expanded[lineDoc]
}

func (c *Contraction) SetExpanded(lineDoc int, expanded bool) bool {
	if !c.valid(lineDoc) || c.expanded[lineDoc] == expanded {
		return false
	}
	c.expanded[lineDoc] = expanded
	return true
}

// ContractedNext returns the first contracted header at or after lineStart,
// or -1.
func (c *Contraction) ContractedNext(lineStart int) int {
	for line := max(lineStart, 0); line < len(c.expanded); line++ {
		if !c.expanded[line] {
			return line
		}
	}
	return -1
}

func (c *Contraction) Height(lineDoc int) int {
	if !c.valid(lineDoc) {
		return 1
	}
	return c.heights[lineDoc]
}

// SetHeight sets the number of display lines for lineDoc, for example to make
// room for an annotation.
func (c *Contraction) SetHeight(lineDoc, height int) bool {
	if !c.valid(lineDoc) || height < 1 || c.heights[lineDoc] == height {
		return false
	}
	if c.visible[lineDoc] {
		c.display.InsertText(lineDoc, height-c.heights[lineDoc])
	}
	c.heights[lineDoc] = height
	return true
}

func (c *Contraction) ShowAll() {
	lines := c.LinesInDoc()
	c.Clear()
	c.InsertLines(1, lines-1)
}

func insertAt[T any](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func removeAt[T any](s []T, i int) []T {
	return append(s[:i], s[i+1:]...)
}
