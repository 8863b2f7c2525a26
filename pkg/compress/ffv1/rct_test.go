package ffv1

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRCT_RoundTrip(t *testing.T) {
	for r := 0; r < 256; r += 3 {
		for g := 0; g < 256; g += 5 {
			for b := 0; b < 256; b += 7 {
				gc, bc, rc := forwardRCT(r, g, b)
				require.True(t, gc >= 0 && gc < 512 && bc >= 0 && bc < 512 && rc >= 0 && rc < 512,
					"coded %d %d %d out of 9 bits for %d %d %d", gc, bc, rc, r, g, b)
				r2, g2, b2 := inverseRCT(gc, bc, rc)
				require.Equal(t, [3]int{r, g, b}, [3]int{r2, g2, b2})
			}
		}
	}
}

func TestRCT_Extremes(t *testing.T) {
	tests := []struct {
		name       string
		r, g, b    int
		gc, bc, rc int
	}{
		{"Black", 0, 0, 0, 0, 256, 256},
		{"White", 255, 255, 255, 255, 256, 256},
		{"Green", 0, 255, 0, 127, 1, 1},
		{"Magenta", 255, 0, 255, 127, 511, 511},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gc, bc, rc := forwardRCT(tt.r, tt.g, tt.b)
			assert.Equal(t, [3]int{tt.gc, tt.bc, tt.rc}, [3]int{gc, bc, rc})
		})
	}
}

func TestSplitMergeRGB(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 9, 8))
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 40), B: uint8(x * y), A: uint8(x)})
		}
	}

	planes := splitRGB(src)
	out := mergeRGB(planes, b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			want := src.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			got := out.RGBAAt(x, y)
			require.Equal(t, [3]uint8{want.R, want.G, want.B}, [3]uint8{got.R, got.G, got.B})
			require.Equal(t, uint8(255), got.A)
		}
	}
}

func TestSplitRGB_Generic(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 1))
	src.Pix = []byte{0, 100, 255}
	planes := splitRGB(src)
	for i, v := range src.Pix {
		assert.Equal(t, int(v), planes[0].pix[i])
		assert.Equal(t, rctOffset, planes[1].pix[i])
		assert.Equal(t, rctOffset, planes[2].pix[i])
	}
}
