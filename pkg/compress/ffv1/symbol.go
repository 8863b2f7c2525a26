package ffv1

import (
	"math/bits"

	"github.com/jpfielding/ffv1.go/pkg/compress/rangecoder"
)

// contextSize is the number of range coder cells per context:
// cell 0 zero flag, 1..8 exponent, 9..16 sign, 17..31 mantissa.
const contextSize = 32

// symbolState is the binary adaptive state of one context.
type symbolState [contextSize]uint8

func (s *symbolState) reset() {
	for i := range s {
		s[i] = rangecoder.InitState
	}
}

func newSymbolState() *symbolState {
	s := new(symbolState)
	s.reset()
	return s
}

// putSymbol codes v as a zero flag, a unary exponent, the mantissa bits
// below the leading one and an optional sign. Magnitudes of 2^maxExp or
// more saturate to the exponent train alone.
func putSymbol(e *rangecoder.Encoder, s *symbolState, v int, signed bool, maxExp int) {
	if v == 0 {
		e.Put(&s[0], false)
		return
	}
	e.Put(&s[0], true)

	a := abs(v)
	ex := min(bits.Len(uint(a))-1, maxExp)
	for i := 0; i < ex; i++ {
		e.Put(&s[1+i], true)
	}
	if ex == maxExp {
		return
	}
	e.Put(&s[1+ex], false)
	for i := ex - 1; i >= 0; i-- {
		e.Put(&s[16+ex+i], (a>>i)&1 == 1)
	}
	if signed {
		e.Put(&s[9+ex], v < 0)
	}
}

// getSymbol mirrors putSymbol.
func getSymbol(d *rangecoder.Decoder, s *symbolState, signed bool, maxExp int) int {
	if !d.Get(&s[0]) {
		return 0
	}
	for ex := 0; ex < maxExp; ex++ {
		if d.Get(&s[1+ex]) {
			continue
		}
		a := 1 << ex
		for i := ex - 1; i >= 0; i-- {
			if d.Get(&s[16+ex+i]) {
				a |= 1 << i
			}
		}
		if signed && d.Get(&s[9+ex]) {
			return -a
		}
		return a
	}
	if signed {
		return -(1 << maxExp)
	}
	return 1 << maxExp
}

// putRawBit codes a bit against a fresh neutral cell.
func putRawBit(e *rangecoder.Encoder, bit bool) {
	s := rangecoder.InitState
	e.Put(&s, bit)
}

func getRawBit(d *rangecoder.Decoder) bool {
	s := rangecoder.InitState
	return d.Get(&s)
}
