package cellbuffer

import "github.com/kobzarvs/sciedit/internal/partition"

// PerLine is data that must track each line insertion and removal.
type PerLine interface {
	Init()
	InsertLine(line int)
	RemoveLine(line int)
}

// reserver is implemented by per-line tables that can preallocate room.
type reserver interface {
	Reserve(n int) error
}

// LineVector holds the start position of each line and the side tables that
// are kept aligned with it.
type LineVector struct {
	starts  *partition.Partitioning
	perLine []PerLine
}

func NewLineVector() *LineVector {
	return &LineVector{starts: partition.New(256)}
}

func (lv *LineVector) Init() {
	lv.starts.DeleteAll()
	for _, pl := range lv.perLine {
		pl.Init()
	}
}

func (lv *LineVector) AddPerLine(pl PerLine) {
	lv.perLine = append(lv.perLine, pl)
}

// Reserve makes room for n more lines in every table.
func (lv *LineVector) Reserve(n int) error {
	if n <= 0 {
		return nil
	}
	if err := lv.starts.Reserve(n); err != nil {
		return err
	}
	for _, pl := range lv.perLine {
		if r, ok := pl.(reserver); ok {
			if err := r.Reserve(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (lv *LineVector) InsertText(line, delta int) {
	lv.starts.InsertText(line, delta)
}

// InsertLine adds a line starting at position. lineStart reports whether the
// edit began at the start of the line being split, in which case side data
// moves down with the old line.
func (lv *LineVector) InsertLine(line, position int, lineStart bool) {
	_ = lv.starts.InsertPartition(line, position)
	if line > 0 && lineStart {
		line--
	}
	for _, pl := range lv.perLine {
		pl.InsertLine(line)
	}
}

func (lv *LineVector) SetLineStart(line, position int) {
	lv.starts.SetPartitionStartPosition(line, position)
}

func (lv *LineVector) RemoveLine(line int) {
	lv.starts.RemovePartition(line)
	for _, pl := range lv.perLine {
		pl.RemoveLine(line)
	}
}

func (lv *LineVector) Lines() int {
	return lv.starts.Partitions()
}

func (lv *LineVector) LineFromPosition(pos int) int {
	return lv.starts.PartitionFromPosition(pos)
}

func (lv *LineVector) LineStart(line int) int {
	return lv.starts.PositionFromPartition(line)
}
