package ffv1

// golombLimit is the prefix length at which a Golomb-Rice code escapes to
// a raw sample-width value.
const golombLimit = 12

// vlcState tracks a context's residual statistics for Golomb-Rice coding.
type vlcState struct {
	drift    int // signed error accumulator, kept in (-count, 0]
	errorSum int // accumulated magnitude
	bias     int // correction subtracted before coding
	count    int // samples seen, 1..128
}

func (s *vlcState) reset() {
	*s = vlcState{errorSum: 4, count: 1}
}

// riceK returns the smallest k with count<<k >= errorSum, at most 8.
func (s *vlcState) riceK() int {
	k := 0
	for k < 8 && s.count<<k < s.errorSum {
		k++
	}
	return k
}

// parity is -1 when the context leans negative, flipping the residual so the
// shorter codes go to the likelier sign.
func (s *vlcState) parity() int {
	return int(int32(2*s.drift+s.count) >> 31)
}

// update folds the coded residual v into the statistics.
func (s *vlcState) update(v int) {
	drift := s.drift + v
	count := s.count
	s.errorSum += abs(v)

	if count == 128 {
		count >>= 1
		drift >>= 1
		s.errorSum >>= 1
	}
	count++

	if drift <= -count {
		if s.bias > -128 {
			s.bias--
		}
		drift += count
		if drift <= -count {
			drift = -count + 1
		}
	} else if drift > 0 {
		if s.bias < 127 {
			s.bias++
		}
		drift -= count
		if drift > 0 {
			drift = 0
		}
	}

	s.drift = drift
	s.count = count
}

// zigzag maps 0, -1, 1, -2, 2 ... to 0, 1, 2, 3, 4 ...
func zigzag(v int) uint32 {
	if v >= 0 {
		return uint32(2 * v)
	}
	return uint32(-2*v - 1)
}

func unzigzag(u uint32) int {
	return int(u>>1) ^ -int(u&1)
}

// putVLC codes one residual of a bits wide plane.
func putVLC(bw *BitWriter, s *vlcState, v, bits int) error {
	v = fold(v-s.bias, bits)
	k := s.riceK()
	code := zigzag(v ^ s.parity())
	if err := bw.WriteGolomb(code, k, golombLimit, bits); err != nil {
		return err
	}
	s.update(v)
	return nil
}

// getVLC mirrors putVLC.
func getVLC(br *BitReader, s *vlcState, bits int) (int, error) {
	k := s.riceK()
	code, err := br.ReadGolomb(k, golombLimit, bits)
	if err != nil {
		return 0, err
	}
	v := unzigzag(code) ^ s.parity()
	ret := fold(v+s.bias, bits)
	s.update(v)
	return ret, nil
}
