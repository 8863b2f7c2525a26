package ffv1

import (
	"bufio"
	"io"
)

// BitReader reads MSB-first bits from an in-memory buffer.
type BitReader struct {
	buf   []byte
	pos   int
	bits  uint64
	nBits int
}

// NewBitReader creates a new BitReader.
func NewBitReader(buf []byte) *BitReader {
	return &BitReader{buf: buf}
}

// fill ensures there are at least n bits in the buffer.
func (br *BitReader) fill(n int) error {
	for br.nBits < n {
		if br.pos >= len(br.buf) {
			return ErrTruncated
		}
		br.bits = (br.bits << 8) | uint64(br.buf[br.pos])
		br.pos++
		br.nBits += 8
	}
	return nil
}

// ReadBits reads n bits (up to 32).
func (br *BitReader) ReadBits(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if err := br.fill(n); err != nil {
		return 0, err
	}
	shift := br.nBits - n
	val := (br.bits >> shift) & (uint64(1)<<n - 1)
	br.nBits -= n
	return uint32(val), nil
}

// ReadBit reads a single bit.
func (br *BitReader) ReadBit() (uint32, error) {
	return br.ReadBits(1)
}

// ReadGolomb reads a limited Golomb-Rice code with parameter k: up to limit
// zeros, a one and k remainder bits, or limit zeros followed by an escBits
// wide escape value.
func (br *BitReader) ReadGolomb(k, limit, escBits int) (uint32, error) {
	for prefix := 0; prefix < limit; prefix++ {
		b, err := br.ReadBit()
		if err != nil {
			return 0, err
		}
		if b == 1 {
			r, err := br.ReadBits(k)
			if err != nil {
				return 0, err
			}
			return uint32(prefix)<<k | r, nil
		}
	}
	v, err := br.ReadBits(escBits)
	if err != nil {
		return 0, err
	}
	return v + uint32(limit) - 1, nil
}

// BitWriter handles writing bits to an underlying io.Writer.
type BitWriter struct {
	w     *bufio.Writer
	bits  uint64
	nBits int
}

// NewBitWriter creates a new BitWriter.
func NewBitWriter(w io.Writer) *BitWriter {
	var bw *bufio.Writer
	if b, ok := w.(*bufio.Writer); ok {
		bw = b
	} else {
		bw = bufio.NewWriter(w)
	}
	return &BitWriter{w: bw}
}

// WriteBits writes the low n bits (up to 32) of val.
func (bw *BitWriter) WriteBits(val uint32, n int) error {
	bw.bits = (bw.bits << n) | (uint64(val) & (uint64(1)<<n - 1))
	bw.nBits += n

	for bw.nBits >= 8 {
		b := byte(bw.bits >> (bw.nBits - 8))
		if err := bw.w.WriteByte(b); err != nil {
			return err
		}
		bw.nBits -= 8
	}
	return nil
}

// WriteBit writes a single bit.
func (bw *BitWriter) WriteBit(bit uint32) error {
	return bw.WriteBits(bit, 1)
}

// WriteGolomb writes val as a limited Golomb-Rice code (see ReadGolomb).
// val must be below limit<<k + 2^escBits - 1.
func (bw *BitWriter) WriteGolomb(val uint32, k, limit, escBits int) error {
	q := int(val >> k)
	if q < limit {
		r := val & (uint32(1)<<k - 1)
		return bw.WriteBits(uint32(1)<<k|r, q+k+1)
	}
	return bw.WriteBits(val-uint32(limit)+1, limit+escBits)
}

// Flush writes remaining bits (padded with 0 if needed) and flushes the writer.
func (bw *BitWriter) Flush() error {
	if bw.nBits > 0 {
		b := byte(bw.bits << (8 - bw.nBits))
		if err := bw.w.WriteByte(b); err != nil {
			return err
		}
		bw.nBits = 0
	}
	return bw.w.Flush()
}
