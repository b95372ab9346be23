package selection

import "sort"

// Type records how the current selection was made.
type Type int

const (
	Stream Type = iota
	Rectangle
	Lines
	Thin
)

func (t Type) String() string {
	switch t {
	case Stream:
		return "stream"
	case Rectangle:
		return "rectangle"
	case Lines:
		return "lines"
	case Thin:
		return "thin"
	}
	return "unknown"
}

// Selection is an ordered list of ranges with a distinguished main range.
// Ranges keep the order they were added in; overlapping ranges are merged
// whenever a mutation could create them, unless merging is on hold.
type Selection struct {
	ranges      []Range
	rangesSaved []Range
	rectangular Range
	main        int
	tentative   bool
	hold        int

	Type        Type
	MoveExtends bool
}

func New() *Selection {
	s := &Selection{}
	s.Clear()
	return s
}

func (s *Selection) IsRectangular() bool {
	return s.Type == Rectangle || s.Type == Thin
}

// MainCaret returns the caret position of the main range.
func (s *Selection) MainCaret() int {
	return s.ranges[s.main].Caret.Pos
}

func (s *Selection) MainAnchor() int {
	return s.ranges[s.main].Anchor.Pos
}

// Rectangular returns the logical anchor and caret of a rectangular selection.
func (s *Selection) Rectangular() Range {
	return s.rectangular
}

func (s *Selection) SetRectangular(r Range) {
	s.rectangular = r
}

// Limits returns the extent of every range.
func (s *Selection) Limits() Segment {
	if s.IsRectangular() {
		return s.rectangular.Segment()
	}
	seg := s.ranges[s.main].Segment()
	for _, r := range s.ranges {
		seg.Extend(r.Anchor)
		seg.Extend(r.Caret)
	}
	return seg
}

// LimitsForRectangularElseMain returns the rectangle for rectangular
// selections, otherwise just the main range.
func (s *Selection) LimitsForRectangularElseMain() Segment {
	if s.IsRectangular() {
		return s.Limits()
	}
	return s.ranges[s.main].Segment()
}

func (s *Selection) Count() int {
	return len(s.ranges)
}

func (s *Selection) Main() int {
	return s.main
}

func (s *Selection) SetMain(r int) {
	if r >= 0 && r < len(s.ranges) {
		s.main = r
	}
}

func (s *Selection) Range(r int) Range {
	return s.ranges[r]
}

// SetRange replaces range r in place.
func (s *Selection) SetRange(r int, rng Range) {
	if r >= 0 && r < len(s.ranges) {
		s.ranges[r] = rng
	}
}

// RangeAt returns a pointer to range r for in-place updates.
func (s *Selection) RangeAt(r int) *Range {
	return &s.ranges[r]
}

func (s *Selection) RangeMain() Range {
	return s.ranges[s.main]
}

func (s *Selection) SetRangeMain(rng Range) {
	s.ranges[s.main] = rng
}

func (s *Selection) Ranges() []Range {
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Empty reports whether every range is a bare caret.
func (s *Selection) Empty() bool {
	for _, r := range s.ranges {
		if !r.Empty() {
			return false
		}
	}
	return true
}

// Length returns the total number of selected bytes.
func (s *Selection) Length() int {
	n := 0
	for _, r := range s.ranges {
		n += r.Length()
	}
	return n
}

// VirtualSpaceFor returns the most virtual space any range has at pos.
func (s *Selection) VirtualSpaceFor(pos int) int {
	vs := 0
	for _, r := range s.ranges {
		if r.Caret.Pos == pos && vs < r.Caret.Virtual {
			vs = r.Caret.Virtual
		}
		if r.Anchor.Pos == pos && vs < r.Anchor.Virtual {
			vs = r.Anchor.Virtual
		}
	}
	return vs
}

// Hold suspends merging until the matching Release. Edits that walk the ranges
// by index hold the selection so indices stay stable.
func (s *Selection) Hold() {
	s.hold++
}

func (s *Selection) Release() {
	if s.hold > 0 {
		s.hold--
	}
	if s.hold == 0 {
		s.merge()
	}
}

// Holds reports how many Holds are waiting for their Release.
func (s *Selection) Holds() int {
	return s.hold
}

// ReleaseTo drops outstanding Holds until only depth remain, merging when none
// do. It recovers from an edit that never reached its Release.
func (s *Selection) ReleaseTo(depth int) {
	for s.hold > max(depth, 0) {
		s.Release()
	}
}

// MovePositions shifts every range for an edit at start.
func (s *Selection) MovePositions(insertion bool, start, length int) {
	for i := range s.ranges {
		s.ranges[i].MoveForInsertDelete(insertion, start, length)
	}
	if s.Type == Rectangle {
		s.rectangular.MoveForInsertDelete(insertion, start, length)
	}
	if s.hold == 0 {
		s.merge()
	}
}

// TrimSelection clips every range other than main against rng and drops the
// ones that become empty.
func (s *Selection) TrimSelection(rng Range) {
	for i := 0; i < len(s.ranges); {
		if i != s.main && s.ranges[i].Trim(rng) {
			s.remove(i)
		} else {
			i++
		}
	}
}

// TrimOtherSelections clips every range except r against rng.
func (s *Selection) TrimOtherSelections(r int, rng Range) {
	for i := range s.ranges {
		if i != r {
			s.ranges[i].Trim(rng)
		}
	}
}

func (s *Selection) remove(i int) {
	s.ranges = append(s.ranges[:i], s.ranges[i+1:]...)
	if s.main > i {
		s.main--
	}
	if s.main >= len(s.ranges) {
		s.main = len(s.ranges) - 1
	}
}

// SetSelection replaces all ranges with rng.
func (s *Selection) SetSelection(rng Range) {
	s.ranges = append(s.ranges[:0], rng)
	s.main = 0
}

// AddSelection adds rng as the new main range, trimming existing ranges
// against it and merging what still overlaps.
func (s *Selection) AddSelection(rng Range) {
	s.TrimSelection(rng)
	s.ranges = append(s.ranges, rng)
	s.main = len(s.ranges) - 1
	if s.hold == 0 {
		s.merge()
	}
}

func (s *Selection) AddSelectionWithoutTrim(rng Range) {
	s.ranges = append(s.ranges, rng)
	s.main = len(s.ranges) - 1
}

// DropSelection removes range r unless it is the only one.
func (s *Selection) DropSelection(r int) {
	if len(s.ranges) <= 1 || r < 0 || r >= len(s.ranges) {
		return
	}
	mainNew := s.main
	if mainNew >= r {
		if mainNew == 0 {
			mainNew = len(s.ranges) - 2
		} else {
			mainNew--
		}
	}
	s.ranges = append(s.ranges[:r], s.ranges[r+1:]...)
	s.main = mainNew
}

func (s *Selection) DropAdditionalRanges() {
	s.SetSelection(s.RangeMain())
}

// TentativeSelection shows rng as an added range during a drag. Each call
// starts again from the ranges that existed when the drag began.
func (s *Selection) TentativeSelection(rng Range) {
	if !s.tentative {
		s.rangesSaved = append(s.rangesSaved[:0], s.ranges...)
	}
	s.ranges = append(s.ranges[:0], s.rangesSaved...)
	s.AddSelection(rng)
	s.TrimSelection(s.ranges[s.main])
	s.tentative = true
}

func (s *Selection) CommitTentative() {
	s.rangesSaved = s.rangesSaved[:0]
	s.tentative = false
}

// CharacterInSelection returns 1 if the character at pos is in the main range,
// 2 if it is in another range, otherwise 0.
func (s *Selection) CharacterInSelection(pos int) int {
	for i, r := range s.ranges {
		if r.ContainsCharacter(pos) {
			if i == s.main {
				return 1
			}
			return 2
		}
	}
	return 0
}

// InSelectionForEOL is CharacterInSelection for the line end drawn at pos.
func (s *Selection) InSelectionForEOL(pos int) int {
	for i, r := range s.ranges {
		if !r.Empty() && pos > r.Start().Pos && pos <= r.End().Pos {
			if i == s.main {
				return 1
			}
			return 2
		}
	}
	return 0
}

// Clear resets to a single caret at 0 in stream mode.
func (s *Selection) Clear() {
	s.ranges = append(s.ranges[:0], Range{})
	s.main = 0
	s.Type = Stream
	s.MoveExtends = false
	s.rectangular.Reset()
	s.tentative = false
}

// RemoveDuplicates drops empty ranges that repeat another range.
func (s *Selection) RemoveDuplicates() {
	for i := 0; i < len(s.ranges)-1; i++ {
		if !s.ranges[i].Empty() {
			continue
		}
		for j := i + 1; j < len(s.ranges); {
			if s.ranges[i] == s.ranges[j] {
				s.remove(j)
			} else {
				j++
			}
		}
	}
}

func (s *Selection) RotateMain() {
	s.main = (s.main + 1) % len(s.ranges)
}

// Sorted returns range indices ordered by start position.
func (s *Selection) Sorted() []int {
	idx := make([]int, len(s.ranges))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.ranges[idx[a]].Start().Less(s.ranges[idx[b]].Start())
	})
	return idx
}

// merge folds overlapping ranges together. When the main range is involved
// it survives with its direction; otherwise the earlier range does.
func (s *Selection) merge() {
	if s.IsRectangular() {
		return
	}
	for i := 0; i < len(s.ranges); i++ {
		for j := i + 1; j < len(s.ranges); {
			if !overlaps(s.ranges[i], s.ranges[j]) {
				j++
				continue
			}
			keep, drop := i, j
			if j == s.main {
				keep, drop = j, i
			}
			s.ranges[keep] = union(s.ranges[keep], s.ranges[drop])
			s.remove(drop)
			if drop == i {
				// Range i is gone; rescan from the range that moved into it.
				i--
				break
			}
		}
	}
}
