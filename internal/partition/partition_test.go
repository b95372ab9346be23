package partition

import (
	"math/rand"
	"testing"
)

// starts builds lines starting at the given offsets for a document of length n.
func build(t *testing.T, n int, starts ...int) *Partitioning {
	t.Helper()
	p := New(4)
	p.InsertText(0, n)
	for i, s := range starts {
		if err := p.InsertPartition(i+1, s); err != nil {
			t.Fatalf("InsertPartition: %v", err)
		}
	}
	return p
}

func TestEmpty(t *testing.T) {
	p := New(8)
	if p.Partitions() != 1 {
		t.Fatalf("Partitions = %d, want 1", p.Partitions())
	}
	if got := p.PartitionFromPosition(0); got != 0 {
		t.Fatalf("PartitionFromPosition(0) = %d, want 0", got)
	}
	if got := p.PositionFromPartition(1); got != 0 {
		t.Fatalf("PositionFromPartition(1) = %d, want 0", got)
	}
}

func TestPartitionFromPositionBoundaries(t *testing.T) {
	// "ab\ncd\nef" -> lines start at 0, 3, 6.
	p := build(t, 8, 3, 6)
	cases := []struct {
		pos, want int
	}{
		{-5, 0}, {0, 0}, {2, 0}, {3, 1}, {5, 1}, {6, 2}, {8, 2}, {100, 2},
	}
	for _, tc := range cases {
		if got := p.PartitionFromPosition(tc.pos); got != tc.want {
			t.Fatalf("PartitionFromPosition(%d) = %d, want %d", tc.pos, got, tc.want)
		}
	}
}

func TestInsertTextShiftsLaterPartitions(t *testing.T) {
	p := build(t, 8, 3, 6)
	p.InsertText(0, 2)
	if got := p.PositionFromPartition(1); got != 5 {
		t.Fatalf("line 1 start = %d, want 5", got)
	}
	if got := p.PositionFromPartition(2); got != 8 {
		t.Fatalf("line 2 start = %d, want 8", got)
	}
	p.InsertText(2, -1)
	if got := p.PositionFromPartition(2); got != 8 {
		t.Fatalf("line 2 start = %d, want 8", got)
	}
	if got := p.PositionFromPartition(3); got != 9 {
		t.Fatalf("end = %d, want 9", got)
	}
}

func TestRemovePartition(t *testing.T) {
	p := build(t, 8, 3, 6)
	p.RemovePartition(1)
	if p.Partitions() != 2 {
		t.Fatalf("Partitions = %d, want 2", p.Partitions())
	}
	if got := p.PositionFromPartition(1); got != 6 {
		t.Fatalf("line 1 start = %d, want 6", got)
	}
}

func TestSetPartitionStartPosition(t *testing.T) {
	p := build(t, 8, 3, 6)
	p.SetPartitionStartPosition(1, 4)
	if got := p.PositionFromPartition(1); got != 4 {
		t.Fatalf("line 1 start = %d, want 4", got)
	}
}

// Model check against a plain slice of line starts.
func TestRandomEditsMatchModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := New(4)
	model := []int{0, 0}
	for i := 0; i < 2000; i++ {
		lines := len(model) - 1
		switch rng.Intn(3) {
		case 0:
			line := rng.Intn(lines)
			delta := rng.Intn(5) + 1
			p.InsertText(line, delta)
			for j := line + 1; j < len(model); j++ {
				model[j] += delta
			}
		case 1:
			line := rng.Intn(lines)
			lo, hi := model[line], model[line+1]
			if hi <= lo {
				continue
			}
			pos := lo + 1 + rng.Intn(hi-lo)
			if pos >= hi {
				continue
			}
			if err := p.InsertPartition(line+1, pos); err != nil {
				t.Fatalf("InsertPartition: %v", err)
			}
			model = append(model[:line+1], append([]int{pos}, model[line+1:]...)...)
		case 2:
			if lines < 2 {
				continue
			}
			line := 1 + rng.Intn(lines-1)
			p.RemovePartition(line)
			model = append(model[:line], model[line+1:]...)
		}
		if p.Partitions() != len(model)-1 {
			t.Fatalf("step %d: Partitions = %d, want %d", i, p.Partitions(), len(model)-1)
		}
		for j := range model {
			if got := p.PositionFromPartition(j); got != model[j] {
				t.Fatalf("step %d: PositionFromPartition(%d) = %d, want %d", i, j, got, model[j])
			}
		}
		for j := 0; j < len(model)-1; j++ {
			if model[j] == model[j+1] {
				continue
			}
			if got := p.PartitionFromPosition(model[j]); got != j {
				t.Fatalf("step %d: PartitionFromPosition(%d) = %d, want %d", i, model[j], got, j)
			}
		}
	}
}
