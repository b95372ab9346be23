package gapbuffer

import (
	"errors"
	"fmt"
)

// ErrOutOfMemory is returned when the buffer cannot grow to the requested size.
var ErrOutOfMemory = errors.New("gapbuffer: out of memory")

// MaxSize bounds the number of elements a buffer may hold.
const MaxSize = 1 << 40

const defaultGrowSize = 8

// Buffer is a sequence with a movable gap. Edits at the gap are cheap; moving
// the gap copies only the elements between the old and new location.
type Buffer[T any] struct {
	body      []T
	part1Len  int
	gapLen    int
	growSize  int
	lengthSum int
}

func New[T any](growSize int) *Buffer[T] {
	if growSize < 1 {
		growSize = defaultGrowSize
	}
	return &Buffer[T]{growSize: growSize}
}

func (b *Buffer[T]) Length() int {
	return b.lengthSum
}

func (b *Buffer[T]) Capacity() int {
	return len(b.body)
}

func (b *Buffer[T]) GrowSize() int {
	return b.growSize
}

func (b *Buffer[T]) SetGrowSize(n int) {
	if n > 0 {
		b.growSize = n
	}
}

// gapTo moves the gap so that it starts at position.
func (b *Buffer[T]) gapTo(position int) {
	if position == b.part1Len {
		return
	}
	if position < b.part1Len {
		// Move [position, part1Len) to the end of the gap.
		copy(b.body[position+b.gapLen:b.part1Len+b.gapLen], b.body[position:b.part1Len])
	} else {
		// Move [part1Len+gapLen, position+gapLen) to the start of the gap.
		copy(b.body[b.part1Len:position], b.body[b.part1Len+b.gapLen:position+b.gapLen])
	}
	b.part1Len = position
}

// roomFor makes sure the gap can take insertionLength more elements.
func (b *Buffer[T]) roomFor(insertionLength int) error {
	if b.gapLen > insertionLength {
		return nil
	}
	size := len(b.body)
	for b.growSize < size/6 {
		b.growSize *= 2
	}
	return b.ReAllocate(size + insertionLength + b.growSize)
}

// ReAllocate grows the backing store to newSize. The buffer never shrinks and is
// left untouched on error.
func (b *Buffer[T]) ReAllocate(newSize int) (err error) {
	if newSize < 0 || newSize > MaxSize {
		return fmt.Errorf("reallocate %d: %w", newSize, ErrOutOfMemory)
	}
	if newSize <= len(b.body) {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reallocate %d: %v: %w", newSize, r, ErrOutOfMemory)
		}
	}()
	// Move the gap to the end so the copy is contiguous.
	b.gapTo(b.lengthSum)
	body := make([]T, newSize)
	copy(body, b.body[:b.lengthSum])
	b.body = body
	b.gapLen = newSize - b.lengthSum
	return nil
}

// EnsureRoom makes sure n more elements can be inserted without reallocating.
func (b *Buffer[T]) EnsureRoom(n int) error {
	if n <= 0 {
		return nil
	}
	return b.roomFor(n)
}

func (b *Buffer[T]) ValueAt(position int) T {
	var zero T
	if position < b.part1Len {
		if position < 0 {
			return zero
		}
		return b.body[position]
	}
	if position >= b.lengthSum {
		return zero
	}
	return b.body[b.gapLen+position]
}

func (b *Buffer[T]) SetValueAt(position int, v T) {
	if position < b.part1Len {
		if position < 0 {
			return
		}
		b.body[position] = v
		return
	}
	if position >= b.lengthSum {
		return
	}
	b.body[b.gapLen+position] = v
}

// Insert adds a single value at position.
func (b *Buffer[T]) Insert(position int, v T) error {
	if position < 0 || position > b.lengthSum {
		return nil
	}
	if err := b.roomFor(1); err != nil {
		return err
	}
	b.gapTo(position)
	b.body[b.part1Len] = v
	b.lengthSum++
	b.part1Len++
	b.gapLen--
	return nil
}

// InsertValue adds count copies of v at position.
func (b *Buffer[T]) InsertValue(position, count int, v T) error {
	if count <= 0 || position < 0 || position > b.lengthSum {
		return nil
	}
	if err := b.roomFor(count); err != nil {
		return err
	}
	b.gapTo(position)
	for i := 0; i < count; i++ {
		b.body[b.part1Len+i] = v
	}
	b.lengthSum += count
	b.part1Len += count
	b.gapLen -= count
	return nil
}

// InsertFromArray inserts src[start:start+n] at position.
func (b *Buffer[T]) InsertFromArray(position int, src []T, start, n int) error {
	if n <= 0 || position < 0 || position > b.lengthSum {
		return nil
	}
	if start < 0 || start+n > len(src) {
		return nil
	}
	if err := b.roomFor(n); err != nil {
		return err
	}
	b.gapTo(position)
	copy(b.body[b.part1Len:], src[start:start+n])
	b.lengthSum += n
	b.part1Len += n
	b.gapLen -= n
	return nil
}

// DeleteRange removes n elements starting at position by widening the gap.
func (b *Buffer[T]) DeleteRange(position, n int) {
	if position < 0 || n <= 0 || position+n > b.lengthSum {
		return
	}
	if position == 0 && n == b.lengthSum {
		// Whole buffer: keep the allocation, reset the gap.
		b.part1Len = 0
		b.gapLen = len(b.body)
		b.lengthSum = 0
		return
	}
	b.gapTo(position)
	b.lengthSum -= n
	b.gapLen += n
}

func (b *Buffer[T]) DeleteAll() {
	b.DeleteRange(0, b.lengthSum)
}

// GetRange copies n elements starting at position into dst.
func (b *Buffer[T]) GetRange(dst []T, position, n int) int {
	if position < 0 || n <= 0 || position+n > b.lengthSum {
		return 0
	}
	if n > len(dst) {
		n = len(dst)
	}
	range1 := 0
	if position < b.part1Len {
		range1 = min(n, b.part1Len-position)
		copy(dst, b.body[position:position+range1])
	}
	if range1 < n {
		from := position + range1 + b.gapLen
		copy(dst[range1:n], b.body[from:from+n-range1])
	}
	return n
}

// Slice returns a copy of n elements starting at position.
func (b *Buffer[T]) Slice(position, n int) []T {
	if position < 0 || n <= 0 || position+n > b.lengthSum {
		return nil
	}
	out := make([]T, n)
	b.GetRange(out, position, n)
	return out
}

// EnsureLength appends zero values until the buffer holds at least n elements.
func (b *Buffer[T]) EnsureLength(n int) error {
	if n <= b.lengthSum {
		return nil
	}
	var zero T
	return b.InsertValue(b.lengthSum, n-b.lengthSum, zero)
}

// GapPosition reports where the gap currently starts.
func (b *Buffer[T]) GapPosition() int {
	return b.part1Len
}
