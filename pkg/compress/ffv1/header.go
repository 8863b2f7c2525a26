package ffv1

import (
	"fmt"

	"github.com/jpfielding/ffv1.go/pkg/compress/rangecoder"
)

// headerMaxExp bounds the unsigned header fields and quant run lengths.
const headerMaxExp = 7

// Header carries the stream parameters sent with every key frame.
type Header struct {
	Version      int
	Coder        CoderType
	Colorspace   Colorspace
	ChromaHShift int
	ChromaVShift int
	Quant        *QuantSet
}

// bits returns the residual width of the header's planes.
func (h *Header) bits() int {
	if h.Colorspace == ColorspaceRGB {
		return 9
	}
	return 8
}

// writeHeader codes the header fields against one scratch context and each
// quant table against a scratch context of its own.
func writeHeader(e *rangecoder.Encoder, h *Header) {
	s := newSymbolState()
	putSymbol(e, s, h.Version, false, headerMaxExp)
	putSymbol(e, s, int(h.Coder), false, headerMaxExp)
	putSymbol(e, s, int(h.Colorspace), false, headerMaxExp)
	putRawBit(e, true) // chroma planes present
	putSymbol(e, s, h.ChromaHShift, false, headerMaxExp)
	putSymbol(e, s, h.ChromaVShift, false, headerMaxExp)
	putRawBit(e, false) // no alpha plane

	for i := 0; i < 5; i++ {
		q := h.Quant.Table(i)
		writeQuantTable(e, &q)
	}
}

// readHeader parses and validates a key frame header.
func readHeader(d *rangecoder.Decoder) (*Header, error) {
	s := newSymbolState()
	h := &Header{}
	h.Version = getSymbol(d, s, false, headerMaxExp)
	h.Coder = CoderType(getSymbol(d, s, false, headerMaxExp))
	h.Colorspace = Colorspace(getSymbol(d, s, false, headerMaxExp))
	hasChroma := getRawBit(d)
	h.ChromaHShift = getSymbol(d, s, false, headerMaxExp)
	h.ChromaVShift = getSymbol(d, s, false, headerMaxExp)
	hasAlpha := getRawBit(d)
	if d.Overread() {
		return nil, fmt.Errorf("%w: header", ErrTruncated)
	}

	if h.Version != Version {
		return nil, fmt.Errorf("%w: version %d", ErrCorruptHeader, h.Version)
	}
	if h.Coder != CoderGolombRice && h.Coder != CoderBinaryAdaptive {
		return nil, fmt.Errorf("%w: coder type %d", ErrCorruptHeader, h.Coder)
	}
	if !hasChroma {
		return nil, fmt.Errorf("%w: streams without chroma planes", ErrUnsupportedFormat)
	}
	if hasAlpha {
		return nil, fmt.Errorf("%w: alpha plane", ErrUnsupportedFormat)
	}
	if err := checkLayout(h.Colorspace, h.ChromaHShift, h.ChromaVShift); err != nil {
		return nil, err
	}

	var tables [5]QuantTable
	for i := range tables {
		q, err := readQuantTable(d)
		if d.Overread() {
			return nil, fmt.Errorf("%w: quant table %d", ErrTruncated, i)
		}
		if err != nil {
			return nil, fmt.Errorf("quant table %d: %w", i, err)
		}
		tables[i] = q
	}

	qs, err := NewQuantSet(tables)
	if err != nil {
		return nil, err
	}
	h.Quant = qs
	return h, nil
}

// writeQuantTable sends the positive half as run lengths minus one.
func writeQuantTable(e *rangecoder.Encoder, q *QuantTable) {
	s := newSymbolState()
	for _, n := range q.Runs() {
		putSymbol(e, s, n-1, false, headerMaxExp)
	}
}

// readQuantTable reads runs until all 128 positive entries are covered.
func readQuantTable(d *rangecoder.Decoder) (QuantTable, error) {
	s := newSymbolState()
	var runs []int
	for i := 0; i < 128; {
		n := getSymbol(d, s, false, headerMaxExp) + 1
		if i+n > 128 {
			return QuantTable{}, fmt.Errorf("%w: quant runs overflow 128 entries", ErrCorruptHeader)
		}
		runs = append(runs, n)
		i += n
	}
	return QuantTableFromRuns(runs)
}
