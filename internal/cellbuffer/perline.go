package cellbuffer

import (
	"sort"
	"strings"

	"github.com/kobzarvs/sciedit/internal/gapbuffer"
)

// Fold level layout.
const (
	LevelBase       = 0x400
	LevelWhiteFlag  = 0x1000
	LevelHeaderFlag = 0x2000
	LevelNumberMask = 0x0FFF
)

type markerHandle struct {
	handle int
	number int
}

// markerSet is the set of markers on one line.
type markerSet []markerHandle

func (s markerSet) value() uint32 {
	var m uint32
	for _, mh := range s {
		m |= 1 << uint(mh.number)
	}
	return m
}

func (s markerSet) contains(handle int) bool {
	for _, mh := range s {
		if mh.handle == handle {
			return true
		}
	}
	return false
}

// Markers maps lines to marker sets. Handles are stable across edits; a removed
// line's markers merge into the line before it.
type Markers struct {
	markers       *gapbuffer.Buffer[markerSet]
	handleCurrent int
}

func NewMarkers() *Markers {
	return &Markers{markers: gapbuffer.New[markerSet](64)}
}

func (m *Markers) Init() {
	m.markers.DeleteAll()
}

func (m *Markers) Reserve(n int) error {
	if m.markers.Length() == 0 {
		return nil
	}
	return m.markers.EnsureRoom(n)
}

func (m *Markers) InsertLine(line int) {
	if m.markers.Length() > 0 {
		_ = m.markers.Insert(line, nil)
	}
}

func (m *Markers) RemoveLine(line int) {
	if m.markers.Length() == 0 {
		return
	}
	if line > 0 {
		m.mergeMarkers(line - 1)
	}
	m.markers.DeleteRange(line, 1)
}

func (m *Markers) mergeMarkers(line int) {
	next := m.markers.ValueAt(line + 1)
	if next == nil {
		return
	}
	cur := m.markers.ValueAt(line)
	m.markers.SetValueAt(line, append(cur, next...))
	m.markers.SetValueAt(line+1, nil)
}

func (m *Markers) MarkValue(line int) uint32 {
	return m.markers.ValueAt(line).value()
}

// MarkerNext returns the first line at or after lineStart with a marker in mask.
func (m *Markers) MarkerNext(lineStart int, mask uint32) int {
	if lineStart < 0 {
		lineStart = 0
	}
	for line := lineStart; line < m.markers.Length(); line++ {
		if m.markers.ValueAt(line).value()&mask != 0 {
			return line
		}
	}
	return -1
}

// AddMark adds marker number to line and returns its handle, or -1.
func (m *Markers) AddMark(line, number, lines int) int {
	if number < 0 || number > 31 {
		return -1
	}
	m.handleCurrent++
	if m.markers.Length() == 0 {
		_ = m.markers.InsertValue(0, lines, nil)
	}
	if line < 0 || line >= m.markers.Length() {
		return -1
	}
	set := m.markers.ValueAt(line)
	set = append(markerSet{{handle: m.handleCurrent, number: number}}, set...)
	m.markers.SetValueAt(line, set)
	return m.handleCurrent
}

// DeleteMark removes marker number from line; number -1 removes every marker.
func (m *Markers) DeleteMark(line, number int, all bool) bool {
	set := m.markers.ValueAt(line)
	if set == nil {
		return false
	}
	if number == -1 {
		m.markers.SetValueAt(line, nil)
		return true
	}
	changed := false
	kept := set[:0:0]
	for _, mh := range set {
		if mh.number == number && (all || !changed) {
			changed = true
			continue
		}
		kept = append(kept, mh)
	}
	if len(kept) == 0 {
		kept = nil
	}
	m.markers.SetValueAt(line, kept)
	return changed
}

func (m *Markers) DeleteMarkFromHandle(handle int) int {
	line := m.LineFromHandle(handle)
	if line < 0 {
		return -1
	}
	set := m.markers.ValueAt(line)
	var kept markerSet
	for _, mh := range set {
		if mh.handle != handle {
			kept = append(kept, mh)
		}
	}
	m.markers.SetValueAt(line, kept)
	return line
}

func (m *Markers) LineFromHandle(handle int) int {
	for line := 0; line < m.markers.Length(); line++ {
		if m.markers.ValueAt(line).contains(handle) {
			return line
		}
	}
	return -1
}

// Levels stores a fold level per line.
type Levels struct {
	levels *gapbuffer.Buffer[int]
}

func NewLevels() *Levels {
	return &Levels{levels: gapbuffer.New[int](64)}
}

func (l *Levels) Init() {
	l.levels.DeleteAll()
}

func (l *Levels) Reserve(n int) error {
	if l.levels.Length() == 0 {
		return nil
	}
	return l.levels.EnsureRoom(n)
}

func (l *Levels) InsertLine(line int) {
	if l.levels.Length() == 0 {
		return
	}
	level := LevelBase
	if line < l.levels.Length() {
		level = l.levels.ValueAt(line)
	}
	_ = l.levels.InsertValue(line, 1, level)
}

// RemoveLine moves the header flag of the removed line to the line before so
// a fold does not briefly vanish while its header line is joined.
func (l *Levels) RemoveLine(line int) {
	if l.levels.Length() == 0 {
		return
	}
	firstHeader := l.levels.ValueAt(line) & LevelHeaderFlag
	l.levels.DeleteRange(line, 1)
	switch {
	case line == l.levels.Length()-1 && line > 0:
		l.levels.SetValueAt(line-1, l.levels.ValueAt(line-1)&^LevelHeaderFlag)
	case line > 0:
		l.levels.SetValueAt(line-1, l.levels.ValueAt(line-1)|firstHeader)
	}
}

func (l *Levels) ClearLevels() {
	l.levels.DeleteAll()
}

// SetLevel sets line's level and returns the previous one.
func (l *Levels) SetLevel(line, level, lines int) int {
	if line < 0 || line >= lines {
		return 0
	}
	if l.levels.Length() == 0 {
		_ = l.levels.InsertValue(0, lines+1, LevelBase)
	}
	prev := l.levels.ValueAt(line)
	l.levels.SetValueAt(line, level)
	return prev
}

func (l *Levels) Level(line int) int {
	if line < 0 || line >= l.levels.Length() {
		return LevelBase
	}
	return l.levels.ValueAt(line)
}

func isSubordinate(levelStart, levelTry int) bool {
	if levelTry&LevelWhiteFlag != 0 {
		return true
	}
	return levelStart&LevelNumberMask < levelTry&LevelNumberMask
}

// LastChild returns the last line folded under lineParent. level -1 uses the
// parent's own level.
func (l *Levels) LastChild(lineParent, level, lines int) int {
	if level == -1 {
		level = l.Level(lineParent) & LevelNumberMask
	}
	lineMaxSubord := lineParent
	for lineMaxSubord < lines-1 {
		if !isSubordinate(level, l.Level(lineMaxSubord+1)) {
			break
		}
		lineMaxSubord++
	}
	if lineMaxSubord > lineParent {
		if level > l.Level(lineMaxSubord+1)&LevelNumberMask {
			// Trailing white lines belong to the parent.
			if l.Level(lineMaxSubord)&LevelWhiteFlag != 0 {
				lineMaxSubord--
			}
		}
	}
	return lineMaxSubord
}

// FoldParent returns the header line that contains line, or -1.
func (l *Levels) FoldParent(line int) int {
	level := l.Level(line) & LevelNumberMask
	look := line - 1
	for look > 0 && (l.Level(look)&LevelHeaderFlag == 0 || l.Level(look)&LevelNumberMask >= level) {
		look--
	}
	if look >= 0 && l.Level(look)&LevelHeaderFlag != 0 && l.Level(look)&LevelNumberMask < level {
		return look
	}
	return -1
}

// LineStates stores an integer per line for incremental lexers.
type LineStates struct {
	states *gapbuffer.Buffer[int]
}

func NewLineStates() *LineStates {
	return &LineStates{states: gapbuffer.New[int](64)}
}

func (s *LineStates) Init() {
	s.states.DeleteAll()
}

func (s *LineStates) Reserve(n int) error {
	if s.states.Length() == 0 {
		return nil
	}
	return s.states.EnsureRoom(n)
}

func (s *LineStates) InsertLine(line int) {
	if s.states.Length() == 0 {
		return
	}
	_ = s.states.EnsureLength(line)
	val := 0
	if line < s.states.Length() {
		val = s.states.ValueAt(line)
	}
	_ = s.states.Insert(line, val)
}

func (s *LineStates) RemoveLine(line int) {
	if s.states.Length() > line {
		s.states.DeleteRange(line, 1)
	}
}

func (s *LineStates) SetLineState(line, state int) int {
	if line < 0 {
		return 0
	}
	_ = s.states.EnsureLength(line + 1)
	old := s.states.ValueAt(line)
	s.states.SetValueAt(line, state)
	return old
}

func (s *LineStates) LineState(line int) int {
	if line < 0 || line >= s.states.Length() {
		return 0
	}
	return s.states.ValueAt(line)
}

// MaxLineState returns the number of lines with stored state.
func (s *LineStates) MaxLineState() int {
	return s.states.Length()
}

// AnnotationStyles marks an annotation that carries a style per byte.
const AnnotationStyles = 0x100

type annotation struct {
	text   string
	style  int
	styles []byte
	lines  int
}

// Annotations stores a block of text shown below a line.
type Annotations struct {
	annotations *gapbuffer.Buffer[*annotation]
}

func NewAnnotations() *Annotations {
	return &Annotations{annotations: gapbuffer.New[*annotation](64)}
}

func (a *Annotations) Init() {
	a.annotations.DeleteAll()
}

func (a *Annotations) Reserve(n int) error {
	if a.annotations.Length() == 0 {
		return nil
	}
	return a.annotations.EnsureRoom(n)
}

func (a *Annotations) InsertLine(line int) {
	if a.annotations.Length() == 0 {
		return
	}
	_ = a.annotations.EnsureLength(line)
	_ = a.annotations.Insert(line, nil)
}

func (a *Annotations) RemoveLine(line int) {
	if a.annotations.Length() > 0 && line > 0 && line <= a.annotations.Length() {
		a.annotations.DeleteRange(line-1, 1)
	}
}

func (a *Annotations) get(line int) *annotation {
	if line < 0 {
		return nil
	}
	return a.annotations.ValueAt(line)
}

func (a *Annotations) SetText(line int, text string) {
	if line < 0 {
		return
	}
	if text == "" {
		if a.get(line) != nil {
			a.annotations.SetValueAt(line, nil)
		}
		return
	}
	_ = a.annotations.EnsureLength(line + 1)
	style := 0
	if old := a.get(line); old != nil && old.style != AnnotationStyles {
		style = old.style
	}
	a.annotations.SetValueAt(line, &annotation{
		text:  text,
		style: style,
		lines: strings.Count(text, "\n") + 1,
	})
}

func (a *Annotations) Text(line int) string {
	if an := a.get(line); an != nil {
		return an.text
	}
	return ""
}

func (a *Annotations) SetStyle(line, style int) {
	if line < 0 {
		return
	}
	_ = a.annotations.EnsureLength(line + 1)
	an := a.get(line)
	if an == nil {
		an = &annotation{}
		a.annotations.SetValueAt(line, an)
	}
	an.style = style
	an.styles = nil
}

// SetStyles gives each byte of the annotation its own style.
func (a *Annotations) SetStyles(line int, styles []byte) {
	if line < 0 {
		return
	}
	_ = a.annotations.EnsureLength(line + 1)
	an := a.get(line)
	if an == nil {
		an = &annotation{}
		a.annotations.SetValueAt(line, an)
	}
	an.style = AnnotationStyles
	an.styles = make([]byte, len(an.text))
	copy(an.styles, styles)
}

func (a *Annotations) Style(line int) int {
	if an := a.get(line); an != nil {
		return an.style
	}
	return 0
}

func (a *Annotations) Styles(line int) []byte {
	if an := a.get(line); an != nil && an.style == AnnotationStyles {
		return an.styles
	}
	return nil
}

func (a *Annotations) MultipleStyles(line int) bool {
	return a.Style(line) == AnnotationStyles
}

// Lines returns how many display lines the annotation of line takes.
func (a *Annotations) Lines(line int) int {
	if an := a.get(line); an != nil && an.text != "" {
		return an.lines
	}
	return 0
}

func (a *Annotations) ClearAll() {
	a.annotations.DeleteAll()
}

// TabStops stores custom tab stop columns per line.
type TabStops struct {
	stops *gapbuffer.Buffer[[]int]
}

func NewTabStops() *TabStops {
	return &TabStops{stops: gapbuffer.New[[]int](64)}
}

func (t *TabStops) Init() {
	t.stops.DeleteAll()
}

func (t *TabStops) Reserve(n int) error {
	if t.stops.Length() == 0 {
		return nil
	}
	return t.stops.EnsureRoom(n)
}

func (t *TabStops) InsertLine(line int) {
	if t.stops.Length() == 0 {
		return
	}
	_ = t.stops.EnsureLength(line)
	_ = t.stops.Insert(line, nil)
}

func (t *TabStops) RemoveLine(line int) {
	if t.stops.Length() > line {
		t.stops.DeleteRange(line, 1)
	}
}

func (t *TabStops) ClearTabStops(line int) bool {
	if line < 0 || line >= t.stops.Length() || t.stops.ValueAt(line) == nil {
		return false
	}
	t.stops.SetValueAt(line, nil)
	return true
}

// AddTabStop inserts x into line's sorted stops; duplicates are ignored.
func (t *TabStops) AddTabStop(line, x int) bool {
	if line < 0 {
		return false
	}
	_ = t.stops.EnsureLength(line + 1)
	stops := t.stops.ValueAt(line)
	i := sort.SearchInts(stops, x)
	if i < len(stops) && stops[i] == x {
		return false
	}
	next := make([]int, 0, len(stops)+1)
	next = append(next, stops[:i]...)
	next = append(next, x)
	next = append(next, stops[i:]...)
	t.stops.SetValueAt(line, next)
	return true
}

// NextTabStop returns the first stop on line after x, or 0.
func (t *TabStops) NextTabStop(line, x int) int {
	for _, s := range t.stops.ValueAt(line) {
		if s > x {
			return s
		}
	}
	return 0
}
