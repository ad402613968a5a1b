package bytequeue_test

import (
	"testing"

	"github.com/brickingsoft/flume/pkg/bytequeue"
	"github.com/stretchr/testify/assert"
)

func TestQueue_AppendTake(t *testing.T) {
	q := bytequeue.New()
	assert.Equal(t, 0, q.Len())

	q.Append([]byte("hello"))
	q.Append(nil)
	q.Append([]byte(" world"))
	assert.Equal(t, 11, q.Len())

	assert.Equal(t, []byte("hello"), q.Take(5))
	assert.Equal(t, 6, q.Len())
	assert.Equal(t, []byte(" world"), q.Take(6))
	assert.Equal(t, 0, q.Len())
}

func TestQueue_TakeAcrossChunks(t *testing.T) {
	q := bytequeue.New()
	q.Append([]byte("ab"))
	q.Append([]byte("cde"))
	q.Append([]byte("fghij"))

	assert.Equal(t, []byte("abcd"), q.Take(4))
	assert.Equal(t, 6, q.Len())
	assert.Equal(t, []byte("efg"), q.Take(3))
	assert.Equal(t, []byte("hij"), q.Take(3))
	assert.Equal(t, 0, q.Len())
}

func TestQueue_TakeSplitsHead(t *testing.T) {
	q := bytequeue.New()
	q.Append([]byte("abcdef"))

	assert.Equal(t, []byte("a"), q.Take(1))
	assert.Equal(t, []byte("bc"), q.Take(2))
	assert.Equal(t, []byte("def"), q.Take(3))
}

func TestQueue_AppendCopies(t *testing.T) {
	q := bytequeue.New()
	p := []byte("abc")
	q.Append(p)
	p[0] = 'x'
	assert.Equal(t, []byte("abc"), q.Take(3))
}

func TestQueue_TakeTooMuch(t *testing.T) {
	q := bytequeue.New()
	q.Append([]byte("ab"))
	assert.Panics(t, func() {
		q.Take(3)
	})
	assert.Nil(t, q.Take(0))
	assert.Equal(t, 2, q.Len())
}
