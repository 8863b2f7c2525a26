package ffv1

import "github.com/jpfielding/ffv1.go/pkg/compress/rangecoder"

// residualEncoder is an entropy back end as the plane driver sees it.
// Residuals arrive already folded to the plane's sample width.
type residualEncoder interface {
	beginPlane(p *planeContext, width int)
	beginLine()
	encodeResidual(ctx, v int) error
	endLine() error
}

// residualDecoder mirrors residualEncoder.
type residualDecoder interface {
	beginPlane(p *planeContext, width int)
	beginLine()
	decodeResidual(ctx int) (int, error)
}

// planeContext is the adaptive state of one plane for the life of a GOP.
// Only the table of the stream's coder type is allocated.
type planeContext struct {
	bits int
	sym  []symbolState
	vlc  []vlcState
}

func newPlaneContext(coder CoderType, contexts, bits int) *planeContext {
	p := &planeContext{bits: bits}
	if coder == CoderBinaryAdaptive {
		p.sym = make([]symbolState, contexts)
	} else {
		p.vlc = make([]vlcState, contexts)
	}
	p.reset()
	return p
}

// reset returns every context to its initial distribution.
func (p *planeContext) reset() {
	for i := range p.sym {
		p.sym[i].reset()
	}
	for i := range p.vlc {
		p.vlc[i].reset()
	}
}

func (p *planeContext) contexts() int {
	return max(len(p.sym), len(p.vlc))
}

// matches reports whether the context table fits the given stream layout.
func (p *planeContext) matches(coder CoderType, contexts, bits int) bool {
	if p.bits != bits || p.contexts() != contexts {
		return false
	}
	return (coder == CoderBinaryAdaptive) == (p.sym != nil)
}

// binaryAdaptiveEncoder codes residuals as range coded symbols.
type binaryAdaptiveEncoder struct {
	rc    *rangecoder.Encoder
	plane *planeContext
}

func (b *binaryAdaptiveEncoder) beginPlane(p *planeContext, _ int) { b.plane = p }
func (b *binaryAdaptiveEncoder) beginLine()                        {}
func (b *binaryAdaptiveEncoder) endLine() error                    { return nil }

func (b *binaryAdaptiveEncoder) encodeResidual(ctx, v int) error {
	putSymbol(b.rc, &b.plane.sym[ctx], v, true, b.plane.bits-1)
	return nil
}

type binaryAdaptiveDecoder struct {
	rc    *rangecoder.Decoder
	plane *planeContext
}

func (b *binaryAdaptiveDecoder) beginPlane(p *planeContext, _ int) { b.plane = p }
func (b *binaryAdaptiveDecoder) beginLine()                        {}

// decodeResidual fails once the range decoder has read past the frame; a
// complete frame is consumed exactly at its last symbol.
func (b *binaryAdaptiveDecoder) decodeResidual(ctx int) (int, error) {
	if b.rc.Overread() {
		return 0, ErrTruncated
	}
	return getSymbol(b.rc, &b.plane.sym[ctx], true, b.plane.bits-1), nil
}
