package ffv1

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ringWithRows loads rows into a fresh ring, leaving the last one current.
func ringWithRows(depth int, rows ...[]int) *rowRing {
	r := newRowRing(len(rows[0]), depth)
	for _, row := range rows {
		r.advance()
		copy(r.current(), row)
	}
	return r
}

func negated(rows [][]int) [][]int {
	out := make([][]int, len(rows))
	for i, row := range rows {
		out[i] = make([]int, len(row))
		for j, v := range row {
			out[i][j] = -v
		}
	}
	return out
}

func TestContextAt_Flat(t *testing.T) {
	r := ringWithRows(2, []int{9, 9, 9}, []int{9, 9, 9})
	assert.Equal(t, ctxIndex{index: 0}, smallQuant.contextAt(r, 1))
}

func TestContextAt_Composition(t *testing.T) {
	// l=5 t=20 lt=10 rt=30: every gradient is in bucket -3
	r := ringWithRows(2, []int{10, 20, 30}, []int{5, 0, 0})
	c := smallQuant.contextAt(r, 1)
	assert.Equal(t, ctxIndex{index: 3 + 3*11 + 3*121, mirrored: true}, c)
}

func TestContextAt_Mirror(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))
	for _, q := range []*QuantSet{smallQuant, largeQuant} {
		for i := 0; i < 2000; i++ {
			rows := make([][]int, 3)
			for j := range rows {
				rows[j] = make([]int, 6)
				for k := range rows[j] {
					// gradients stay clear of the -128 clamp
					rows[j][k] = rng.IntN(128)
				}
			}
			x := rng.IntN(6)
			a := q.contextAt(ringWithRows(q.ringDepth(), rows...), x)
			b := q.contextAt(ringWithRows(q.ringDepth(), negated(rows)...), x)

			require.Less(t, a.index, q.ContextCount())
			require.Equal(t, a.index, b.index)
			if a.index != 0 {
				require.NotEqual(t, a.mirrored, b.mirrored)
			}
		}
	}
}

func TestRingDepth(t *testing.T) {
	assert.Equal(t, 2, smallQuant.ringDepth())
	assert.Equal(t, 3, largeQuant.ringDepth())
}
