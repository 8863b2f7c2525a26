package ffv1

// rowPad is the number of border samples kept on each side of a row.
const rowPad = 3

// rowRing holds the causal rows of one plane pass: row 0 is being coded,
// row 1 is directly above and row 2, kept only for the 5 gradient model,
// above that. Rows above the plane read as zero.
//
// Borders: when a row becomes current its left border (column -1) is seeded
// from column 0 of the row above, and the row above gets column w set to its
// column w-1. Column -2 always reads zero.
type rowRing struct {
	width int
	rows  [][]int
}

func newRowRing(width, depth int) *rowRing {
	r := &rowRing{width: width, rows: make([][]int, depth)}
	for i := range r.rows {
		r.rows[i] = make([]int, width+2*rowPad)
	}
	return r
}

// advance makes the oldest row the current one and seeds the borders.
func (r *rowRing) advance() {
	n := len(r.rows)
	oldest := r.rows[n-1]
	copy(r.rows[1:], r.rows[:n-1])
	r.rows[0] = oldest

	cur, top := r.rows[0], r.rows[1]
	cur[rowPad-1] = top[rowPad]
	top[rowPad+r.width] = top[rowPad+r.width-1]
}

// current returns the coded samples of the current row.
func (r *rowRing) current() []int {
	return r.rows[0][rowPad : rowPad+r.width]
}

func (r *rowRing) set(x, v int) {
	r.rows[0][rowPad+x] = v
}

func (r *rowRing) at(x int) int {
	return r.rows[0][rowPad+x]
}

func (r *rowRing) left(x int) int {
	return r.rows[0][rowPad+x-1]
}

func (r *rowRing) leftLeft(x int) int {
	return r.rows[0][rowPad+x-2]
}

func (r *rowRing) top(x int) int {
	return r.rows[1][rowPad+x]
}

func (r *rowRing) topLeft(x int) int {
	return r.rows[1][rowPad+x-1]
}

func (r *rowRing) topRight(x int) int {
	return r.rows[1][rowPad+x+1]
}

func (r *rowRing) topTop(x int) int {
	return r.rows[2][rowPad+x]
}

// prediction returns the median prediction for column x.
func (r *rowRing) prediction(x int) int {
	return predict(r.left(x), r.top(x), r.topLeft(x))
}
