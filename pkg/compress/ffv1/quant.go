package ffv1

import "fmt"

// maxContexts bounds the context table a header may request.
const maxContexts = 1 << 16

// QuantTable maps a gradient, taken modulo 256, to a signed bucket.
// Entries 0..127 are non-decreasing from 0 in steps of 0 or 1; the upper
// half mirrors them with the opposite sign.
type QuantTable [256]int

// NewQuantTable builds a table from its positive half.
func NewQuantTable(positive [128]int) (QuantTable, error) {
	var q QuantTable
	if positive[0] != 0 {
		return q, fmt.Errorf("%w: quant table starts at %d", ErrCorruptHeader, positive[0])
	}
	for i := 1; i < 128; i++ {
		step := positive[i] - positive[i-1]
		if step != 0 && step != 1 {
			return q, fmt.Errorf("%w: quant table step %d at %d", ErrCorruptHeader, step, i)
		}
	}
	copy(q[:128], positive[:])
	q.mirror()
	return q, nil
}

// QuantTableFromRuns builds a table whose n-th run of equal entries holds n.
func QuantTableFromRuns(runs []int) (QuantTable, error) {
	var q QuantTable
	i := 0
	for v, n := range runs {
		if n < 1 || i+n > 128 {
			return q, fmt.Errorf("%w: quant run %d of length %d at %d", ErrCorruptHeader, v, n, i)
		}
		for ; n > 0; n-- {
			q[i] = v
			i++
		}
	}
	if i != 128 {
		return q, fmt.Errorf("%w: quant runs cover %d of 128 entries", ErrCorruptHeader, i)
	}
	q.mirror()
	return q, nil
}

// quantFromBounds builds a table where bucket n starts at gradient bounds[n-1].
func quantFromBounds(bounds ...int) QuantTable {
	var q QuantTable
	v := 0
	for i := 0; i < 128; i++ {
		if v < len(bounds) && i == bounds[v] {
			v++
		}
		q[i] = v
	}
	q.mirror()
	return q
}

func (q *QuantTable) mirror() {
	for i := 1; i < 128; i++ {
		q[256-i] = -q[i]
	}
	q[128] = -q[127]
}

// Runs returns the lengths of the runs of equal entries in the positive half.
func (q *QuantTable) Runs() []int {
	var runs []int
	last := 0
	for i := 1; i < 128; i++ {
		if q[i] != q[i-1] {
			runs = append(runs, i-last)
			last = i
		}
	}
	return append(runs, 128-last)
}

// Buckets returns the number of distinct values in the table.
func (q *QuantTable) Buckets() int {
	return 2*q[127] + 1
}

// Quantize maps a signed gradient to its bucket.
func (q *QuantTable) Quantize(d int) int {
	return q[d&0xFF]
}

// QuantSet is the immutable set of five tables that defines the context
// space of a stream. Tables 3 and 4 are only consulted when table 3 is not
// all zero.
type QuantSet struct {
	tables   [5]QuantTable
	scaled   [5]QuantTable
	contexts int
	large    bool
}

// NewQuantSet scales each table by the product of the bucket counts of the
// tables before it, so the five buckets compose into one context index.
func NewQuantSet(tables [5]QuantTable) (*QuantSet, error) {
	s := &QuantSet{tables: tables}
	product := 1
	for i := range tables {
		for j := range tables[i] {
			s.scaled[i][j] = tables[i][j] * product
		}
		product *= tables[i].Buckets()
		if product > 2*maxContexts {
			return nil, fmt.Errorf("%w: context space exceeds %d", ErrCorruptHeader, maxContexts)
		}
	}
	s.contexts = (product + 1) / 2
	s.large = s.scaled[3][127] != 0
	return s, nil
}

// Table returns the unscaled table at position i.
func (s *QuantSet) Table(i int) QuantTable {
	return s.tables[i]
}

// ContextCount is the number of distinct context states per plane.
func (s *QuantSet) ContextCount() int {
	return s.contexts
}

// Large reports whether the 5 gradient model is active.
func (s *QuantSet) Large() bool {
	return s.large
}

// Equal reports whether both sets hold the same tables.
func (s *QuantSet) Equal(o *QuantSet) bool {
	return o != nil && s.tables == o.tables
}

var (
	quant11 = quantFromBounds(1, 2, 5, 12, 32)
	quant5  = quantFromBounds(1, 4)
	quant0  QuantTable

	smallQuant = mustQuantSet(quant11, quant11, quant11, quant0, quant0)
	largeQuant = mustQuantSet(quant11, quant11, quant11, quant5, quant5)
)

func mustQuantSet(tables ...QuantTable) *QuantSet {
	s, err := NewQuantSet([5]QuantTable(tables))
	if err != nil {
		panic(err)
	}
	return s
}

// QuantSet returns the preset tables for the model.
func (m ContextModel) QuantSet() *QuantSet {
	if m == LargeContext {
		return largeQuant
	}
	return smallQuant
}
