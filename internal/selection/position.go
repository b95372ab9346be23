// Package selection models carets and selected ranges over document
// positions. A selection holds one or more ranges, one of which is the main
// range, and a mode that says how they were created.
package selection

import "fmt"

// Position is a document offset plus virtual space: columns past the end of
// the line that are not backed by characters yet.
type Position struct {
	Pos     int
	Virtual int
}

func At(pos int) Position {
	return Position{Pos: pos}
}

func (p Position) String() string {
	if p.Virtual > 0 {
		return fmt.Sprintf("%d+%d", p.Pos, p.Virtual)
	}
	return fmt.Sprintf("%d", p.Pos)
}

func (p Position) Less(o Position) bool {
	if p.Pos == o.Pos {
		return p.Virtual < o.Virtual
	}
	return p.Pos < o.Pos
}

func (p Position) LessEqual(o Position) bool {
	return !o.Less(p)
}

func (p Position) Greater(o Position) bool {
	return o.Less(p)
}

func (p Position) GreaterEqual(o Position) bool {
	return !p.Less(o)
}

func (p Position) Equal(o Position) bool {
	return p == o
}

// SetPosition moves to pos and drops any virtual space.
func (p *Position) SetPosition(pos int) {
	p.Pos = pos
	p.Virtual = 0
}

func (p *Position) SetVirtual(v int) {
	if p.Pos < 0 {
		return
	}
	p.Virtual = max(v, 0)
}

func (p *Position) Add(delta int) {
	p.Pos += delta
}

func (p Position) IsValid() bool {
	return p.Pos >= 0
}

// MoveForInsertDelete adjusts the position for an edit of length bytes at
// start. A position at an insertion point moves past the inserted text and
// gives up as much virtual space as was filled. A position inside a deleted
// span collapses to its start.
func (p *Position) MoveForInsertDelete(insertion bool, start, length int) {
	if insertion {
		switch {
		case p.Pos == start:
			p.Virtual -= min(length, p.Virtual)
			p.Pos += length
		case p.Pos > start:
			p.Pos += length
		}
		return
	}
	if p.Pos == start {
		p.Virtual = 0
	}
	if p.Pos > start {
		if p.Pos > start+length {
			p.Pos -= length
		} else {
			p.Pos = start
			p.Virtual = 0
		}
	}
}

func minPos(a, b Position) Position {
	if a.Less(b) {
		return a
	}
	return b
}

func maxPos(a, b Position) Position {
	if a.Less(b) {
		return b
	}
	return a
}

// Segment is an ordered pair of positions.
type Segment struct {
	Start, End Position
}

func NewSegment(a, b Position) Segment {
	return Segment{Start: minPos(a, b), End: maxPos(a, b)}
}

func (s Segment) Empty() bool {
	return s.Start == s.End
}

func (s Segment) Length() int {
	return s.End.Pos - s.Start.Pos
}

// Extend grows the segment to include p.
func (s *Segment) Extend(p Position) {
	s.Start = minPos(s.Start, p)
	s.End = maxPos(s.End, p)
}

// Range is a caret and an anchor. It is empty when they coincide.
type Range struct {
	Caret  Position
	Anchor Position
}

// Caret returns an empty range at pos.
func Caret(pos int) Range {
	return Range{Caret: At(pos), Anchor: At(pos)}
}

func NewRange(caret, anchor int) Range {
	return Range{Caret: At(caret), Anchor: At(anchor)}
}

func (r Range) String() string {
	return fmt.Sprintf("[%v<-%v]", r.Anchor, r.Caret)
}

func (r Range) Empty() bool {
	return r.Anchor == r.Caret
}

func (r Range) Start() Position {
	return minPos(r.Anchor, r.Caret)
}

func (r Range) End() Position {
	return maxPos(r.Anchor, r.Caret)
}

func (r Range) Length() int {
	if r.Anchor.Greater(r.Caret) {
		return r.Anchor.Pos - r.Caret.Pos
	}
	return r.Caret.Pos - r.Anchor.Pos
}

func (r Range) Segment() Segment {
	return Segment{Start: r.Start(), End: r.End()}
}

func (r *Range) Reset() {
	r.Anchor.SetPosition(0)
	r.Caret.SetPosition(0)
}

func (r *Range) ClearVirtualSpace() {
	r.Anchor.Virtual = 0
	r.Caret.Virtual = 0
}

// MinimizeVirtualSpace lowers both ends to the smaller virtual space when they
// share a position.
func (r *Range) MinimizeVirtualSpace() {
	if r.Caret.Pos == r.Anchor.Pos {
		vs := min(r.Anchor.Virtual, r.Caret.Virtual)
		r.Anchor.Virtual = vs
		r.Caret.Virtual = vs
	}
}

func (r *Range) Swap() {
	r.Caret, r.Anchor = r.Anchor, r.Caret
}

func (r *Range) MoveForInsertDelete(insertion bool, start, length int) {
	r.Caret.MoveForInsertDelete(insertion, start, length)
	r.Anchor.MoveForInsertDelete(insertion, start, length)
}

// Contains reports whether pos lies within the range, ends included.
func (r Range) Contains(pos int) bool {
	return pos >= r.Start().Pos && pos <= r.End().Pos
}

func (r Range) ContainsPosition(p Position) bool {
	return p.GreaterEqual(r.Start()) && p.LessEqual(r.End())
}

// ContainsCharacter reports whether the character at pos is selected.
func (r Range) ContainsCharacter(pos int) bool {
	return pos >= r.Start().Pos && pos < r.End().Pos
}

// Intersect clips the segment [start, end] to the range. The result is empty
// with Start invalid when they do not meet.
func (r Range) Intersect(s Segment) Segment {
	rs := r.Segment()
	if s.Start.LessEqual(rs.End) && s.End.GreaterEqual(rs.Start) {
		return Segment{Start: maxPos(s.Start, rs.Start), End: minPos(s.End, rs.End)}
	}
	return Segment{Start: Position{Pos: -1}, End: Position{Pos: -1}}
}

// Trim removes the part of r that other covers, keeping r's direction. It
// reports whether r became empty.
func (r *Range) Trim(other Range) bool {
	startRange, endRange := other.Start(), other.End()
	start, end := r.Start(), r.End()
	if !(startRange.LessEqual(end) && endRange.GreaterEqual(start)) {
		return false
	}
	switch {
	case start.Greater(startRange) && end.Less(endRange):
		end = start
	case start.Less(startRange) && end.Greater(endRange):
		end = start
	case start.LessEqual(startRange):
		end = startRange
	default:
		start = endRange
	}
	if r.Anchor.Greater(r.Caret) {
		r.Caret, r.Anchor = start, end
	} else {
		r.Anchor, r.Caret = start, end
	}
	return r.Empty()
}

// overlaps reports whether two ranges share any character or caret spot.
func overlaps(a, b Range) bool {
	as, ae, bs, be := a.Start(), a.End(), b.Start(), b.End()
	if a.Empty() && b.Empty() {
		return as == bs
	}
	if a.Empty() {
		return as.Greater(bs) && as.Less(be)
	}
	if b.Empty() {
		return bs.Greater(as) && bs.Less(ae)
	}
	return as.Less(be) && bs.Less(ae)
}

// union returns the smallest range covering both, in the direction of keep.
func union(keep, other Range) Range {
	start := minPos(keep.Start(), other.Start())
	end := maxPos(keep.End(), other.End())
	if keep.Anchor.Greater(keep.Caret) {
		return Range{Caret: start, Anchor: end}
	}
	return Range{Caret: end, Anchor: start}
}
