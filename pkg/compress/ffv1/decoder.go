package ffv1

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/jpfielding/ffv1.go/pkg/compress/rangecoder"
)

// FrameInfo describes a decoded frame.
type FrameInfo struct {
	KeyFrame bool
	Header   Header
}

// Decoder reconstructs the frames of one stream. Frame dimensions are not
// part of the bitstream and must match the encoder's.
type Decoder struct {
	width  int
	height int
	header *Header
	planes [3]*planeContext
}

// NewDecoder creates a decoder for width x height frames.
func NewDecoder(width, height int) (*Decoder, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("ffv1: invalid image dimensions")
	}
	return &Decoder{width: width, height: height}, nil
}

// Reset forgets the current header; the next frame must be a key frame.
func (d *Decoder) Reset() {
	d.header = nil
}

// PeekKeyFrame reports whether frame starts a GOP without decoding it.
func PeekKeyFrame(frame []byte) (bool, error) {
	rc, err := newFrameDecoder(frame)
	if err != nil {
		return false, err
	}
	return getRawBit(rc), nil
}

func newFrameDecoder(frame []byte) (*rangecoder.Decoder, error) {
	rc, err := rangecoder.NewDecoder(frame)
	switch {
	case errors.Is(err, rangecoder.ErrShortBuffer):
		return nil, fmt.Errorf("%w: %d byte frame", ErrTruncated, len(frame))
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}
	return rc, nil
}

// Decode reconstructs one frame. YUV streams yield *image.YCbCr, RGB streams
// yield *image.RGBA. On error the decoder state is undefined until the next
// key frame.
func (d *Decoder) Decode(frame []byte) (image.Image, *FrameInfo, error) {
	rc, err := newFrameDecoder(frame)
	if err != nil {
		return nil, nil, err
	}

	key := getRawBit(rc)
	if key {
		h, err := readHeader(rc)
		if err != nil {
			d.header = nil
			return nil, nil, err
		}
		d.configure(h)
	} else if d.header == nil {
		return nil, nil, fmt.Errorf("%w: delta frame without a preceding key frame", ErrCorruptHeader)
	}
	if rc.Overread() {
		return nil, nil, ErrTruncated
	}

	var coder residualDecoder
	if d.header.Coder == CoderBinaryAdaptive {
		coder = &binaryAdaptiveDecoder{rc: rc}
	} else {
		if rc.Pos() > len(frame) {
			return nil, nil, ErrTruncated
		}
		coder = &golombRiceDecoder{br: NewBitReader(frame[rc.Pos():])}
	}

	img, jobs := d.targetPlanes()
	for i, job := range jobs {
		if err := decodePlane(coder, d.planes[i], d.header.Quant, job); err != nil {
			return nil, nil, fmt.Errorf("ffv1: plane %d: %w", i, err)
		}
	}
	if rc.Overread() {
		return nil, nil, ErrTruncated
	}

	if d.header.Colorspace == ColorspaceRGB {
		var planes [3]intPlane
		for i, job := range jobs {
			planes[i] = job.plane.(intPlane)
		}
		img = mergeRGB(planes, d.width, d.height)
	}
	return img, &FrameInfo{KeyFrame: key, Header: *d.header}, nil
}

// configure installs a new header, keeping the context tables when their
// layout is unchanged. Every table restarts from its initial state.
func (d *Decoder) configure(h *Header) {
	contexts := h.Quant.ContextCount()
	for i, p := range d.planes {
		if p == nil || !p.matches(h.Coder, contexts, h.bits()) {
			d.planes[i] = newPlaneContext(h.Coder, contexts, h.bits())
			continue
		}
		p.reset()
	}
	if d.header == nil || d.header.Coder != h.Coder || !d.header.Quant.Equal(h.Quant) {
		slog.Debug("ffv1 stream parameters",
			slog.String("coder", h.Coder.String()),
			slog.String("colorspace", h.Colorspace.String()),
			slog.Int("contexts", contexts))
	}
	d.header = h
}

// targetPlanes allocates the output for the current header. The returned
// image is nil for RGB, whose planes are merged after decoding.
func (d *Decoder) targetPlanes() (image.Image, []planeJob) {
	if d.header.Colorspace == ColorspaceRGB {
		jobs := make([]planeJob, 3)
		for i := range jobs {
			jobs[i] = planeJob{plane: newIntPlane(d.width, d.height), width: d.width, height: d.height}
		}
		return nil, jobs
	}

	hs, vs := d.header.ChromaHShift, d.header.ChromaVShift
	ratio, _ := subsampleRatio(hs, vs)
	img := image.NewYCbCr(image.Rect(0, 0, d.width, d.height), ratio)
	cw, ch := chromaSize(d.width, d.height, hs, vs)
	return img, []planeJob{
		{plane: bytePlane{pix: img.Y, stride: img.YStride}, width: d.width, height: d.height},
		{plane: bytePlane{pix: img.Cb, stride: img.CStride}, width: cw, height: ch},
		{plane: bytePlane{pix: img.Cr, stride: img.CStride}, width: cw, height: ch},
	}
}
