package ffv1

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/jpfielding/ffv1.go/pkg/compress/rangecoder"
)

// Encoder compresses a sequence of equally sized frames. Adaptive state
// carries from one frame to the next until a key frame resets it, so an
// Encoder must be fed frames in presentation order from one goroutine.
type Encoder struct {
	opts   Options
	width  int
	height int
	header *Header
	planes [3]*planeContext
	frame  int
}

// NewEncoder creates an encoder for width x height frames.
func NewEncoder(width, height int, opts *Options) (*Encoder, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New("ffv1: invalid image dimensions")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	e := &Encoder{
		opts:   *opts,
		width:  width,
		height: height,
		header: &Header{
			Version:      Version,
			Coder:        opts.Coder(),
			Colorspace:   opts.Colorspace,
			ChromaHShift: opts.ChromaHShift,
			ChromaVShift: opts.ChromaVShift,
			Quant:        opts.Context.QuantSet(),
		},
	}
	for i := range e.planes {
		e.planes[i] = newPlaneContext(e.header.Coder, e.header.Quant.ContextCount(), e.header.bits())
	}
	return e, nil
}

// Header returns the parameters written with each key frame.
func (e *Encoder) Header() Header {
	return *e.header
}

// Reset makes the next frame a key frame and restarts the GOP count.
func (e *Encoder) Reset() {
	e.frame = 0
}

// keyFrame reports whether the next frame starts a GOP.
func (e *Encoder) keyFrame() bool {
	return e.opts.GOPSize <= 1 || e.frame%e.opts.GOPSize == 0
}

// Encode compresses one frame. YUV streams take *image.YCbCr with the
// configured subsampling; RGB streams take any image, alpha is dropped.
func (e *Encoder) Encode(img image.Image) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() != e.width || b.Dy() != e.height {
		return nil, fmt.Errorf("%w: frame is %dx%d, stream is %dx%d",
			ErrUnsupportedFormat, b.Dx(), b.Dy(), e.width, e.height)
	}
	jobs, err := e.sourcePlanes(img)
	if err != nil {
		return nil, err
	}

	key := e.keyFrame()
	rc := rangecoder.NewEncoder()
	putRawBit(rc, key)
	if key {
		writeHeader(rc, e.header)
		for _, p := range e.planes {
			p.reset()
		}
		slog.Debug("ffv1 key frame",
			slog.Int("frame", e.frame),
			slog.String("coder", e.header.Coder.String()),
			slog.String("colorspace", e.header.Colorspace.String()),
			slog.Int("contexts", e.header.Quant.ContextCount()))
	}

	var coder residualEncoder
	var buf bytes.Buffer
	var bw *BitWriter
	if e.header.Coder == CoderBinaryAdaptive {
		coder = &binaryAdaptiveEncoder{rc: rc}
	} else {
		buf.Write(rc.Terminate())
		bw = NewBitWriter(&buf)
		coder = &golombRiceEncoder{bw: bw}
	}

	for i, job := range jobs {
		if err := encodePlane(coder, e.planes[i], e.header.Quant, job); err != nil {
			return nil, fmt.Errorf("ffv1: plane %d: %w", i, err)
		}
	}
	e.frame++

	if bw == nil {
		return rc.Terminate(), nil
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sourcePlanes exposes the frame's channels in coding order.
func (e *Encoder) sourcePlanes(img image.Image) ([]planeJob, error) {
	if e.header.Colorspace == ColorspaceRGB {
		planes := splitRGB(img)
		jobs := make([]planeJob, len(planes))
		for i, p := range planes {
			jobs[i] = planeJob{plane: p, width: e.width, height: e.height}
		}
		return jobs, nil
	}

	src, ok := img.(*image.YCbCr)
	if !ok {
		return nil, fmt.Errorf("%w: yuv stream needs *image.YCbCr, got %T", ErrUnsupportedFormat, img)
	}
	hs, vs, err := ChromaShift(src.SubsampleRatio)
	if err != nil {
		return nil, err
	}
	if hs != e.header.ChromaHShift || vs != e.header.ChromaVShift {
		return nil, fmt.Errorf("%w: frame subsampling %v does not match stream", ErrUnsupportedFormat, src.SubsampleRatio)
	}

	b := src.Bounds()
	if b.Min.X&(1<<hs-1) != 0 || b.Min.Y&(1<<vs-1) != 0 {
		return nil, fmt.Errorf("%w: frame origin %v splits a chroma sample", ErrUnsupportedFormat, b.Min)
	}
	yOff := src.YOffset(b.Min.X, b.Min.Y)
	cOff := src.COffset(b.Min.X, b.Min.Y)
	cw, ch := chromaSize(e.width, e.height, hs, vs)
	return []planeJob{
		{plane: bytePlane{pix: src.Y[yOff:], stride: src.YStride}, width: e.width, height: e.height},
		{plane: bytePlane{pix: src.Cb[cOff:], stride: src.CStride}, width: cw, height: ch},
		{plane: bytePlane{pix: src.Cr[cOff:], stride: src.CStride}, width: cw, height: ch},
	}, nil
}
