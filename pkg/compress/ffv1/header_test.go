package ffv1

import (
	"testing"

	"github.com/jpfielding/ffv1.go/pkg/compress/rangecoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeHeader(h *Header) []byte {
	e := rangecoder.NewEncoder()
	writeHeader(e, h)
	return e.Terminate()
}

func TestHeader_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		h    Header
	}{
		{"Golomb420Small", Header{Coder: CoderGolombRice, Colorspace: ColorspaceYUV, ChromaHShift: 1, ChromaVShift: 1, Quant: smallQuant}},
		{"AC444Large", Header{Coder: CoderBinaryAdaptive, Colorspace: ColorspaceYUV, Quant: largeQuant}},
		{"AC410", Header{Coder: CoderBinaryAdaptive, Colorspace: ColorspaceYUV, ChromaHShift: 2, ChromaVShift: 1, Quant: smallQuant}},
		{"GolombRGB", Header{Coder: CoderGolombRice, Colorspace: ColorspaceRGB, Quant: largeQuant}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := rangecoder.NewDecoder(encodeHeader(&tt.h))
			require.NoError(t, err)
			got, err := readHeader(d)
			require.NoError(t, err)
			assert.False(t, d.Overread())

			assert.Equal(t, tt.h.Version, got.Version)
			assert.Equal(t, tt.h.Coder, got.Coder)
			assert.Equal(t, tt.h.Colorspace, got.Colorspace)
			assert.Equal(t, tt.h.ChromaHShift, got.ChromaHShift)
			assert.Equal(t, tt.h.ChromaVShift, got.ChromaVShift)
			assert.True(t, tt.h.Quant.Equal(got.Quant))
			assert.Equal(t, tt.h.Quant.ContextCount(), got.Quant.ContextCount())
		})
	}
}

// rawHeader writes the scalar fields without any validation.
func rawHeader(version, coder, cs int, chroma bool, hs, vs int, alpha bool) *rangecoder.Encoder {
	e := rangecoder.NewEncoder()
	s := newSymbolState()
	putSymbol(e, s, version, false, headerMaxExp)
	putSymbol(e, s, coder, false, headerMaxExp)
	putSymbol(e, s, cs, false, headerMaxExp)
	putRawBit(e, chroma)
	putSymbol(e, s, hs, false, headerMaxExp)
	putSymbol(e, s, vs, false, headerMaxExp)
	putRawBit(e, alpha)
	return e
}

func TestReadHeader_Errors(t *testing.T) {
	tests := []struct {
		name string
		enc  *rangecoder.Encoder
		err  error
	}{
		{"Version", rawHeader(1, 0, 0, true, 1, 1, false), ErrCorruptHeader},
		{"CoderType", rawHeader(0, 2, 0, true, 1, 1, false), ErrCorruptHeader},
		{"Colorspace", rawHeader(0, 0, 3, true, 0, 0, false), ErrUnsupportedFormat},
		{"NoChroma", rawHeader(0, 0, 0, false, 1, 1, false), ErrUnsupportedFormat},
		{"Alpha", rawHeader(0, 0, 0, true, 1, 1, true), ErrUnsupportedFormat},
		{"Subsampling", rawHeader(0, 0, 0, true, 3, 0, false), ErrUnsupportedFormat},
		{"ShiftedRGB", rawHeader(0, 1, 1, true, 1, 1, false), ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// pad with quant tables so only the scalar field is at fault
			for i := 0; i < 5; i++ {
				writeQuantTable(tt.enc, &quant11)
			}
			d, err := rangecoder.NewDecoder(tt.enc.Terminate())
			require.NoError(t, err)
			_, err = readHeader(d)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestReadHeader_QuantOverflow(t *testing.T) {
	e := rawHeader(0, 0, 0, true, 1, 1, false)
	s := newSymbolState()
	putSymbol(e, s, 99, false, headerMaxExp)
	putSymbol(e, s, 99, false, headerMaxExp) // 100 + 100 > 128
	d, err := rangecoder.NewDecoder(e.Terminate())
	require.NoError(t, err)
	_, err = readHeader(d)
	assert.ErrorIs(t, err, ErrCorruptHeader)
}

func TestReadHeader_ContextSpace(t *testing.T) {
	runs := make([]int, 128)
	for i := range runs {
		runs[i] = 1
	}
	wide, err := QuantTableFromRuns(runs)
	require.NoError(t, err)

	e := rawHeader(0, 1, 0, true, 0, 0, false)
	for i := 0; i < 5; i++ {
		writeQuantTable(e, &wide)
	}
	d, err := rangecoder.NewDecoder(e.Terminate())
	require.NoError(t, err)
	_, err = readHeader(d)
	assert.ErrorIs(t, err, ErrCorruptHeader)
}

func TestReadHeader_Truncated(t *testing.T) {
	full := encodeHeader(&Header{Coder: CoderBinaryAdaptive, Colorspace: ColorspaceYUV, ChromaHShift: 1, ChromaVShift: 1, Quant: largeQuant})
	for n := 2; n < len(full); n++ {
		d, err := rangecoder.NewDecoder(full[:n])
		require.NoError(t, err)
		_, err = readHeader(d)
		assert.ErrorIs(t, err, ErrTruncated, "cut at %d of %d", n, len(full))
	}
}
