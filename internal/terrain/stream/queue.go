package stream

import "github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"

// Queue is an insertion-ordered set of chunk positions. Membership, Push
// and Pop are O(1); remove is O(n).
type Queue struct {
	items []chunk.Pos
	head  int
	index map[chunk.Pos]struct{}
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{index: make(map[chunk.Pos]struct{})}
}

// Push appends p unless it is already queued. It reports whether p was added.
func (q *Queue) Push(p chunk.Pos) bool {
	if _, ok := q.index[p]; ok {
		return false
	}
	q.index[p] = struct{}{}
	q.items = append(q.items, p)
	return true
}

// Pop removes and returns the oldest position.
func (q *Queue) Pop() (chunk.Pos, bool) {
	if q.head == len(q.items) {
		return chunk.Pos{}, false
	}
	p := q.items[q.head]
	q.head++
	delete(q.index, p)
	q.compact()
	return p, true
}

// Contains reports whether p is queued.
func (q *Queue) Contains(p chunk.Pos) bool {
	_, ok := q.index[p]
	return ok
}

// remove drops p from the queue, preserving the order of the rest.
func (q *Queue) remove(p chunk.Pos) bool {
	if _, ok := q.index[p]; !ok {
		return false
	}
	delete(q.index, p)
	for i := q.head; i < len(q.items); i++ {
		if q.items[i] == p {
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	q.compact()
	return true
}

// Len returns the number of queued positions.
func (q *Queue) Len() int {
	return len(q.items) - q.head
}

// Items returns the queued positions, oldest first.
func (q *Queue) Items() []chunk.Pos {
	out := make([]chunk.Pos, q.Len())
	copy(out, q.items[q.head:])
	return out
}

// compact reclaims the consumed prefix once it dominates the backing slice.
func (q *Queue) compact() {
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return
	}
	if q.head >= 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}
}
