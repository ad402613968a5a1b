// Package bytequeue provides an ordered byte queue that is appended at the
// tail and consumed from the head, and nothing else. It backs the
// assembler's accumulator: chunks go in as they arrive, exact lengths come
// out as they are requested.
package bytequeue

import (
	"github.com/gammazero/deque"
)

// Queue holds bytes that arrived but were not delivered yet. Chunks are kept
// as-is until consumption crosses their boundaries, so appending never
// copies more than the incoming chunk. Not safe for concurrent use.
type Queue struct {
	chunks deque.Deque
	size   int
}

func New() *Queue {
	return &Queue{}
}

// Len returns the number of buffered bytes.
func (q *Queue) Len() int {
	return q.size
}

// Append copies p onto the tail of the queue. Callers may reuse p after
// Append returns. Zero-length chunks are dropped.
func (q *Queue) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	b := make([]byte, len(p))
	copy(b, p)
	q.chunks.PushBack(b)
	q.size += len(b)
}

// Take removes the first n bytes and returns them as one contiguous slice.
// The returned slice is owned by the caller. Take panics when n exceeds
// Len; callers check Len first.
func (q *Queue) Take(n int) (p []byte) {
	if n <= 0 {
		return
	}
	if n > q.size {
		panic("bytequeue: take exceeds buffered length")
	}
	head := q.chunks.PopFront().([]byte)
	if len(head) == n {
		q.size -= n
		p = head
		return
	}
	if len(head) > n {
		// split the head chunk, the remainder stays in front; the full
		// slice expression keeps the caller's append off the remainder
		q.chunks.PushFront(head[n:])
		q.size -= n
		p = head[:n:n]
		return
	}
	p = make([]byte, n)
	copied := copy(p, head)
	for copied < n {
		head = q.chunks.PopFront().([]byte)
		if remain := n - copied; len(head) > remain {
			q.chunks.PushFront(head[remain:])
			copied += copy(p[copied:], head[:remain])
			break
		}
		copied += copy(p[copied:], head)
	}
	q.size -= n
	return
}
