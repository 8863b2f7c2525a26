package ffv1

// log2Run is the run length escalation table: a one bit at index i stands
// for 1<<log2Run[i] zero residuals.
var log2Run = [32]int{
	0, 0, 0, 0, 1, 1, 1, 1,
	2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7,
	8, 9, 10, 11, 12, 13, 14, 15,
}

// runState is the escalation index shared by every line of one plane pass.
type runState struct {
	index int
}

func (r *runState) bucket() int {
	return 1 << log2Run[r.index]
}

func (r *runState) grow() {
	if r.index < len(log2Run)-1 {
		r.index++
	}
}

func (r *runState) shrink() {
	if r.index > 0 {
		r.index--
	}
}

// golombRiceEncoder codes residuals with adaptive Golomb-Rice codes. Once a
// sample lands in context 0 the coder enters run mode: zero residuals, in
// any context, are counted until a non-zero residual or the end of the line.
type golombRiceEncoder struct {
	bw       *BitWriter
	plane    *planeContext
	run      runState
	runMode  bool
	runCount int
}

func (g *golombRiceEncoder) beginPlane(p *planeContext, _ int) {
	g.plane = p
	g.run = runState{}
}

func (g *golombRiceEncoder) beginLine() {
	g.runMode = false
	g.runCount = 0
}

func (g *golombRiceEncoder) encodeResidual(ctx, v int) error {
	if ctx == 0 {
		g.runMode = true
	}
	if g.runMode {
		if v == 0 {
			g.runCount++
			return nil
		}
		if err := g.flushBuckets(); err != nil {
			return err
		}
		// terminator: a zero bit then the remainder of the run
		if err := g.bw.WriteBits(uint32(g.runCount), 1+log2Run[g.run.index]); err != nil {
			return err
		}
		g.run.shrink()
		g.runCount = 0
		g.runMode = false
		if v > 0 {
			v--
		}
	}
	return putVLC(g.bw, &g.plane.vlc[ctx], v, g.plane.bits)
}

// flushBuckets emits a one bit for every whole bucket in the pending run.
func (g *golombRiceEncoder) flushBuckets() error {
	for g.runCount >= g.run.bucket() {
		g.runCount -= g.run.bucket()
		g.run.grow()
		if err := g.bw.WriteBit(1); err != nil {
			return err
		}
	}
	return nil
}

// endLine closes a run that reaches the end of the line. A partial bucket
// is sent as one more one bit; the decoder clips it at the line end.
func (g *golombRiceEncoder) endLine() error {
	if !g.runMode {
		return nil
	}
	if err := g.flushBuckets(); err != nil {
		return err
	}
	if g.runCount > 0 {
		return g.bw.WriteBit(1)
	}
	return nil
}

// run decoder modes
const (
	runOff        = iota
	runCounting   // reading bucket bits
	runTerminated // counting down to the interrupting sample
)

type golombRiceDecoder struct {
	br       *BitReader
	plane    *planeContext
	width    int
	x        int
	run      runState
	runMode  int
	runCount int
}

func (g *golombRiceDecoder) beginPlane(p *planeContext, width int) {
	g.plane = p
	g.width = width
	g.run = runState{}
}

func (g *golombRiceDecoder) beginLine() {
	g.x = 0
	g.runMode = runOff
	g.runCount = 0
}

func (g *golombRiceDecoder) decodeResidual(ctx int) (int, error) {
	defer func() { g.x++ }()

	if ctx == 0 && g.runMode == runOff {
		g.runMode = runCounting
	}
	if g.runMode == runOff {
		return getVLC(g.br, &g.plane.vlc[ctx], g.plane.bits)
	}

	if g.runCount == 0 && g.runMode == runCounting {
		bit, err := g.br.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit == 1 {
			g.runCount = g.run.bucket()
			if g.x+g.runCount <= g.width {
				g.run.grow()
			}
		} else {
			n, err := g.br.ReadBits(log2Run[g.run.index])
			if err != nil {
				return 0, err
			}
			g.runCount = int(n)
			g.run.shrink()
			g.runMode = runTerminated
		}
	}

	g.runCount--
	if g.runCount >= 0 {
		return 0, nil
	}
	g.runMode = runOff
	g.runCount = 0
	v, err := getVLC(g.br, &g.plane.vlc[ctx], g.plane.bits)
	if err != nil {
		return 0, err
	}
	if v >= 0 {
		v++
	}
	return v, nil
}
