package ffv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredict(t *testing.T) {
	tests := []struct {
		name      string
		l, t, tl  int
		predicted int
	}{
		{"Flat", 50, 50, 50, 50},
		{"Gradient", 10, 20, 15, 15}, // l+t-tl = 15
		{"EdgeAbove", 10, 20, 5, 20}, // tl below both picks max
		{"EdgeBelow", 10, 20, 30, 10},
		{"Zero", 0, 0, 0, 0},
		{"Wide", 0, 510, 255, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.predicted, predict(tt.l, tt.t, tt.tl))
		})
	}
}

func TestMedian3(t *testing.T) {
	perms := [][3]int{{1, 2, 3}, {1, 3, 2}, {2, 1, 3}, {2, 3, 1}, {3, 1, 2}, {3, 2, 1}}
	for _, p := range perms {
		assert.Equal(t, 2, median3(p[0], p[1], p[2]), "%v", p)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, -56, fold(200, 8))
	assert.Equal(t, 56, fold(-200, 8))
	assert.Equal(t, -128, fold(128, 8))
	assert.Equal(t, 255, fold(255, 9))
	assert.Equal(t, -256, fold(256, 9))
	assert.Equal(t, 255, fold(-257, 9))

	for _, bits := range []int{8, 9} {
		half := 1 << (bits - 1)
		for x := -4 * half; x <= 4*half; x++ {
			f := fold(x, bits)
			assert.Equal(t, f, fold(f, bits))
			assert.GreaterOrEqual(t, f, -half)
			assert.Less(t, f, half)
			assert.Zero(t, (x-f)%(2*half), "fold(%d, %d) = %d", x, bits, f)
		}
	}
}
