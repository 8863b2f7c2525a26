package ffv1

// ctxIndex selects the adaptive state for one sample. A mirrored context
// shares the state of its negation and the residual is negated to match.
type ctxIndex struct {
	index    int
	mirrored bool
}

// contextAt combines the quantized gradients around column x of the
// current row into a context index.
func (s *QuantSet) contextAt(r *rowRing, x int) ctxIndex {
	l, t := r.left(x), r.top(x)
	lt, rt := r.topLeft(x), r.topRight(x)

	q := &s.scaled
	v := q[0][(l-lt)&0xFF] + q[1][(lt-t)&0xFF] + q[2][(t-rt)&0xFF]
	if s.large {
		v += q[3][(r.leftLeft(x)-l)&0xFF] + q[4][(r.topTop(x)-t)&0xFF]
	}

	if v < 0 {
		return ctxIndex{index: -v, mirrored: true}
	}
	return ctxIndex{index: v}
}

// ringDepth returns how many rows the context model looks back.
func (s *QuantSet) ringDepth() int {
	if s.large {
		return 3
	}
	return 2
}
