package ffv1

import "fmt"

// samplePlane is a rectangular channel read or written one row at a time.
type samplePlane interface {
	loadRow(y int, dst []int)
	storeRow(y int, src []int)
}

// bytePlane views an 8-bit channel such as a YCbCr plane.
type bytePlane struct {
	pix    []byte
	stride int
}

func (p bytePlane) loadRow(y int, dst []int) {
	row := p.pix[y*p.stride:]
	for x := range dst {
		dst[x] = int(row[x])
	}
}

func (p bytePlane) storeRow(y int, src []int) {
	row := p.pix[y*p.stride:]
	for x, v := range src {
		row[x] = byte(v)
	}
}

// intPlane holds decorrelated samples that need more than 8 bits.
type intPlane struct {
	pix    []int
	stride int
}

func newIntPlane(width, height int) intPlane {
	return intPlane{pix: make([]int, width*height), stride: width}
}

func (p intPlane) loadRow(y int, dst []int) {
	copy(dst, p.pix[y*p.stride:])
}

func (p intPlane) storeRow(y int, src []int) {
	copy(p.pix[y*p.stride:], src)
}

// planeJob is one channel of a frame with its dimensions.
type planeJob struct {
	plane  samplePlane
	width  int
	height int
}

// encodePlane codes one channel in raster order.
func encodePlane(coder residualEncoder, p *planeContext, q *QuantSet, job planeJob) error {
	ring := newRowRing(job.width, q.ringDepth())
	contexts := p.contexts()
	coder.beginPlane(p, job.width)

	for y := 0; y < job.height; y++ {
		ring.advance()
		job.plane.loadRow(y, ring.current())
		coder.beginLine()
		for x := 0; x < job.width; x++ {
			c := q.contextAt(ring, x)
			if c.index >= contexts {
				return fmt.Errorf("%w: context %d of %d at %d,%d", ErrLogic, c.index, contexts, x, y)
			}
			diff := ring.at(x) - ring.prediction(x)
			if c.mirrored {
				diff = -diff
			}
			if err := coder.encodeResidual(c.index, fold(diff, p.bits)); err != nil {
				return err
			}
		}
		if err := coder.endLine(); err != nil {
			return err
		}
	}
	return nil
}

// decodePlane reconstructs one channel in raster order.
func decodePlane(coder residualDecoder, p *planeContext, q *QuantSet, job planeJob) error {
	ring := newRowRing(job.width, q.ringDepth())
	contexts := p.contexts()
	mask := 1<<p.bits - 1
	coder.beginPlane(p, job.width)

	for y := 0; y < job.height; y++ {
		ring.advance()
		coder.beginLine()
		for x := 0; x < job.width; x++ {
			c := q.contextAt(ring, x)
			if c.index >= contexts {
				return fmt.Errorf("%w: context %d of %d at %d,%d", ErrLogic, c.index, contexts, x, y)
			}
			diff, err := coder.decodeResidual(c.index)
			if err != nil {
				return fmt.Errorf("row %d: %w", y, err)
			}
			if c.mirrored {
				diff = -diff
			}
			ring.set(x, (ring.prediction(x)+diff)&mask)
		}
		job.plane.storeRow(y, ring.current())
	}
	return nil
}
