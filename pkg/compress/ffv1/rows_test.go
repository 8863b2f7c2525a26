package ffv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowRing_FirstRow(t *testing.T) {
	r := newRowRing(4, 2)
	r.advance()
	for x := 0; x < 4; x++ {
		assert.Zero(t, r.top(x))
		assert.Zero(t, r.topLeft(x))
		assert.Zero(t, r.topRight(x))
	}
	assert.Zero(t, r.left(0))
	assert.Zero(t, r.prediction(0))
}

func TestRowRing_Borders(t *testing.T) {
	r := newRowRing(4, 3)
	r.advance()
	copy(r.current(), []int{1, 2, 3, 4})
	r.advance()
	copy(r.current(), []int{5, 6, 7, 8})

	assert.Equal(t, 1, r.left(0), "left border replicates the row above")
	assert.Zero(t, r.leftLeft(0))
	assert.Equal(t, 1, r.leftLeft(1))
	assert.Equal(t, 4, r.topRight(3), "right border replicates the last sample")
	assert.Equal(t, 2, r.topRight(0))
	assert.Equal(t, 1, r.topLeft(1))
	assert.Equal(t, 0, r.topLeft(0))

	r.advance()
	copy(r.current(), []int{9, 10, 11, 12})
	assert.Equal(t, 5, r.left(0))
	assert.Equal(t, 1, r.topLeft(0), "previous row keeps its left border")
	assert.Equal(t, 3, r.topTop(2))
	assert.Equal(t, 8, r.topRight(3))
}

func TestRowRing_Recycles(t *testing.T) {
	r := newRowRing(2, 2)
	r.advance()
	r.set(0, 7)
	r.set(1, 8)
	r.advance()
	assert.Equal(t, []int{7, 8}, []int{r.top(0), r.top(1)})
	r.set(0, 1)
	r.set(1, 2)
	r.advance()
	assert.Equal(t, []int{1, 2}, []int{r.top(0), r.top(1)})
	assert.Equal(t, 1, r.left(0))
	assert.Equal(t, 7, r.topLeft(0))
}
