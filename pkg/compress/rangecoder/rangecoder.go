package rangecoder

// Adaptive binary range coder with one byte of probability state per cell.
//
// Each cell holds the probability of a one bit scaled to 1/256. After every
// coded bit the cell moves through a fixed transition table pair built once
// from an exponential-decay estimator (factor 0.05, probabilities clamped
// to [8, 248]).

import "errors"

var (
	// ErrShortBuffer is returned when a stream is too small to seed a decoder.
	ErrShortBuffer = errors.New("rangecoder: buffer shorter than 2 bytes")
	// ErrCorrupt is returned when the leading bytes cannot start a valid interval.
	ErrCorrupt = errors.New("rangecoder: initial code value out of range")
)

// InitState is the neutral probability every cell starts from.
const InitState uint8 = 128

// Tables is the transition table pair applied after a zero or one bit.
type Tables struct {
	Zero [256]uint8
	One  [256]uint8
}

// defaultTables is built once and never written afterwards.
var defaultTables = BuildTables(214748364, 256-8) // factor = 0.05 * 2^32

// DefaultTables returns a copy of the standard transition tables.
func DefaultTables() Tables {
	return defaultTables
}

// BuildTables derives the transition pair for the given adaptation factor
// (scaled by 2^32) and maximum probability.
func BuildTables(factor int64, maxP int) Tables {
	var t Tables
	const one = int64(1) << 32

	lastP8 := 0
	p := one / 2
	for i := 0; i < 128; i++ {
		p8 := int((256*p + one/2) >> 32)
		if p8 <= lastP8 {
			p8 = lastP8 + 1
		}
		if lastP8 != 0 && lastP8 < 256 && p8 <= maxP {
			t.One[lastP8] = uint8(p8)
		}
		p += ((one-p)*factor + one/2) >> 32
		lastP8 = p8
	}

	for i := 256 - maxP; i <= maxP; i++ {
		if t.One[i] != 0 {
			continue
		}
		p = (int64(i)*one + 128) >> 8
		p += ((one-p)*factor + one/2) >> 32
		p8 := int((256*p + one/2) >> 32)
		if p8 <= i {
			p8 = i + 1
		}
		if p8 > maxP {
			p8 = maxP
		}
		t.One[i] = uint8(p8)
	}

	for i := 1; i < 255; i++ {
		t.Zero[i] = uint8(256 - int(t.One[256-i]))
	}
	return t
}

// Encoder produces a range coded byte stream in memory.
type Encoder struct {
	out         []byte
	low         int
	rng         int
	outstanding int // top byte awaiting carry resolution, -1 before the first shift
	pending     int // 0xFF bytes queued behind outstanding
	t           *Tables
}

// NewEncoder creates an encoder using the default transition tables.
func NewEncoder() *Encoder {
	return NewEncoderTables(&defaultTables)
}

// NewEncoderTables creates an encoder with custom transition tables.
func NewEncoderTables(t *Tables) *Encoder {
	return &Encoder{
		out:         make([]byte, 0, 4096),
		rng:         0xFF00,
		outstanding: -1,
		t:           t,
	}
}

// Put codes one bit against the cell and adapts it.
func (e *Encoder) Put(state *uint8, bit bool) {
	r1 := (e.rng * int(*state)) >> 8
	if !bit {
		e.rng -= r1
		*state = e.t.Zero[*state]
	} else {
		e.low += e.rng - r1
		e.rng = r1
		*state = e.t.One[*state]
	}
	for e.rng < 0x100 {
		e.shift()
		e.rng <<= 8
	}
}

func (e *Encoder) shift() {
	switch {
	case e.outstanding < 0:
		e.outstanding = e.low >> 8
	case e.low <= 0xFF00:
		e.out = append(e.out, byte(e.outstanding))
		for ; e.pending > 0; e.pending-- {
			e.out = append(e.out, 0xFF)
		}
		e.outstanding = e.low >> 8
	case e.low >= 0x10000:
		e.out = append(e.out, byte(e.outstanding+1))
		for ; e.pending > 0; e.pending-- {
			e.out = append(e.out, 0x00)
		}
		e.outstanding = (e.low >> 8) - 0x100
	default:
		e.pending++
	}
	e.low = (e.low & 0xFF) << 8
}

// Terminate pins the code value to the low end of the current interval and
// flushes it. A decoder fed the same bits consumes exactly len(result) bytes,
// so data appended after the result can be located with Decoder.Pos.
func (e *Encoder) Terminate() []byte {
	e.shift()
	e.shift()
	if e.outstanding >= 0 {
		e.out = append(e.out, byte(e.outstanding))
		for ; e.pending > 0; e.pending-- {
			e.out = append(e.out, 0xFF)
		}
		e.outstanding = -1
	}
	return e.out
}

// Len returns the number of bytes committed so far.
func (e *Encoder) Len() int {
	return len(e.out)
}

// Decoder reads bits back from a range coded buffer.
type Decoder struct {
	buf      []byte
	pos      int
	low      int
	rng      int
	overread int
	t        *Tables
}

// NewDecoder seeds a decoder from the first two bytes of buf.
func NewDecoder(buf []byte) (*Decoder, error) {
	return NewDecoderTables(buf, &defaultTables)
}

// NewDecoderTables seeds a decoder with custom transition tables.
func NewDecoderTables(buf []byte, t *Tables) (*Decoder, error) {
	if len(buf) < 2 {
		return nil, ErrShortBuffer
	}
	d := &Decoder{
		buf: buf,
		pos: 2,
		low: int(buf[0])<<8 | int(buf[1]),
		rng: 0xFF00,
		t:   t,
	}
	if d.low >= d.rng {
		return nil, ErrCorrupt
	}
	return d, nil
}

// Get decodes one bit against the cell and adapts it.
func (d *Decoder) Get(state *uint8) bool {
	r1 := (d.rng * int(*state)) >> 8
	d.rng -= r1
	bit := false
	if d.low < d.rng {
		*state = d.t.Zero[*state]
	} else {
		d.low -= d.rng
		d.rng = r1
		*state = d.t.One[*state]
		bit = true
	}
	for d.rng < 0x100 {
		d.rng <<= 8
		d.low <<= 8
		if d.pos < len(d.buf) {
			d.low |= int(d.buf[d.pos])
		} else {
			d.overread++
		}
		d.pos++
	}
	return bit
}

// Pos returns the number of bytes consumed, including bytes read past the end.
func (d *Decoder) Pos() int {
	return d.pos
}

// Overread reports whether the decoder ran past the end of its buffer.
func (d *Decoder) Overread() bool {
	return d.overread > 0
}
