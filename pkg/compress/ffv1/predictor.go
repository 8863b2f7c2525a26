package ffv1

// predict implements the median predictor.
// l: Left
// t: Above
// tl: Above-Left
func predict(l, t, tl int) int {
	return median3(l, l+t-tl, t)
}

func median3(a, b, c int) int {
	lo, hi := min(a, c), max(a, c)
	return max(lo, min(hi, b))
}

// fold wraps diff into the signed range of a bits wide sample.
func fold(diff, bits int) int {
	if bits == 8 {
		return int(int8(diff))
	}
	half := 1 << (bits - 1)
	return (diff+half)&(1<<bits-1) - half
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
