package partition

import "github.com/kobzarvs/sciedit/internal/gapbuffer"

// Partitioning maps partition indices (lines) to start positions. Offsets
// after stepPartition are stored without the pending stepLength, which is
// applied lazily so that a run of edits on one line touches few entries.
type Partitioning struct {
	stepPartition int
	stepLength    int
	body          *gapbuffer.Buffer[int]
}

func New(growSize int) *Partitioning {
	p := &Partitioning{}
	p.allocate(growSize)
	return p
}

func (p *Partitioning) allocate(growSize int) {
	p.body = gapbuffer.New[int](growSize)
	p.stepPartition = 0
	p.stepLength = 0
	// body[0] stays 0; body[1] is the end of the first partition.
	_ = p.body.Insert(0, 0)
	_ = p.body.Insert(1, 0)
}

func (p *Partitioning) rangeAddDelta(start, end, delta int) {
	for i := start; i < end; i++ {
		p.body.SetValueAt(i, p.body.ValueAt(i)+delta)
	}
}

// applyStep folds the pending delta into partitions up to partitionUpTo.
func (p *Partitioning) applyStep(partitionUpTo int) {
	if p.stepLength != 0 {
		p.rangeAddDelta(p.stepPartition+1, partitionUpTo+1, p.stepLength)
	}
	p.stepPartition = partitionUpTo
	if p.stepPartition >= p.body.Length()-1 {
		p.stepPartition = p.body.Length() - 1
		p.stepLength = 0
	}
}

// backStep moves the step start back to partitionDownTo.
func (p *Partitioning) backStep(partitionDownTo int) {
	if p.stepLength != 0 {
		p.rangeAddDelta(partitionDownTo+1, p.stepPartition+1, -p.stepLength)
	}
	p.stepPartition = partitionDownTo
}

func (p *Partitioning) Partitions() int {
	return p.body.Length() - 1
}

// Reserve makes room for n more partitions so that following inserts cannot fail.
func (p *Partitioning) Reserve(n int) error {
	return p.body.EnsureRoom(n)
}

func (p *Partitioning) InsertPartition(partition, pos int) error {
	if p.stepPartition < partition {
		p.applyStep(partition)
	}
	if err := p.body.Insert(partition, pos); err != nil {
		return err
	}
	p.stepPartition++
	return nil
}

func (p *Partitioning) SetPartitionStartPosition(partition, pos int) {
	p.applyStep(partition + 1)
	if partition < 0 || partition > p.body.Length() {
		return
	}
	p.body.SetValueAt(partition, pos)
}

// InsertText shifts every partition after partitionInsert by delta.
func (p *Partitioning) InsertText(partitionInsert, delta int) {
	if p.stepLength == 0 {
		p.stepPartition = partitionInsert
		p.stepLength = delta
		return
	}
	switch {
	case partitionInsert >= p.stepPartition:
		p.applyStep(partitionInsert)
		p.stepLength += delta
	case partitionInsert >= p.stepPartition-p.body.Length()/10:
		p.backStep(partitionInsert)
		p.stepLength += delta
	default:
		p.applyStep(p.body.Length() - 1)
		p.stepPartition = partitionInsert
		p.stepLength = delta
	}
}

func (p *Partitioning) RemovePartition(partition int) {
	if partition > p.stepPartition {
		p.applyStep(partition)
	}
	p.stepPartition--
	p.body.DeleteRange(partition, 1)
}

func (p *Partitioning) PositionFromPartition(partition int) int {
	if partition < 0 || partition >= p.body.Length() {
		return 0
	}
	pos := p.body.ValueAt(partition)
	if partition > p.stepPartition {
		pos += p.stepLength
	}
	return pos
}

// PartitionFromPosition returns a value in [0, Partitions()-1] for any pos.
func (p *Partitioning) PartitionFromPosition(pos int) int {
	if p.body.Length() <= 1 {
		return 0
	}
	if pos >= p.PositionFromPartition(p.body.Length()-1) {
		return p.body.Length() - 2
	}
	lower := 0
	upper := p.body.Length() - 1
	for lower < upper {
		middle := (upper + lower + 1) / 2
		posMiddle := p.body.ValueAt(middle)
		if middle > p.stepPartition {
			posMiddle += p.stepLength
		}
		if pos < posMiddle {
			upper = middle - 1
		} else {
			lower = middle
		}
	}
	return lower
}

func (p *Partitioning) DeleteAll() {
	p.allocate(p.body.GrowSize())
}
