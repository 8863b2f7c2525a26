// Package ffv1 implements a lossless intra/GOP video codec for planar 8-bit
// YCbCr and packed RGB frames. Samples are predicted from their causal
// neighbours, classified by quantized local gradients, and the residuals are
// coded with either an adaptive binary range coder or adaptive Golomb-Rice
// codes with a run mode for flat areas. Adaptive state carries from frame to
// frame until the next key frame.
package ffv1

import (
	"errors"
	"fmt"
	"image"
)

// Common errors
var (
	ErrUnsupportedFormat = errors.New("ffv1: unsupported format")
	ErrCorruptHeader     = errors.New("ffv1: corrupt header")
	ErrTruncated         = errors.New("ffv1: truncated bitstream")
	ErrLogic             = errors.New("ffv1: internal logic error")
)

// Version is the only bitstream version this package reads and writes.
const Version = 0

// CoderType selects the entropy back end.
type CoderType int

const (
	CoderGolombRice     CoderType = 0
	CoderBinaryAdaptive CoderType = 1
)

func (c CoderType) String() string {
	switch c {
	case CoderGolombRice:
		return "golomb-rice"
	case CoderBinaryAdaptive:
		return "binary-adaptive"
	}
	return fmt.Sprintf("CoderType(%d)", int(c))
}

// Colorspace of the coded planes.
type Colorspace int

const (
	ColorspaceYUV Colorspace = 0 // Y, Cb, Cr planes
	ColorspaceRGB Colorspace = 1 // packed RGB, decorrelated before coding
)

func (c Colorspace) String() string {
	switch c {
	case ColorspaceYUV:
		return "yuv"
	case ColorspaceRGB:
		return "rgb"
	}
	return fmt.Sprintf("Colorspace(%d)", int(c))
}

// ContextModel picks the quantization table preset.
type ContextModel int

const (
	SmallContext ContextModel = iota // 3 gradients
	LargeContext                     // 5 gradients
)

func (m ContextModel) String() string {
	switch m {
	case SmallContext:
		return "small"
	case LargeContext:
		return "large"
	}
	return fmt.Sprintf("ContextModel(%d)", int(m))
}

// Options configures encoding
type Options struct {
	AC           bool         // binary adaptive coder instead of Golomb-Rice
	Context      ContextModel // quant table preset
	Colorspace   Colorspace
	ChromaHShift int // log2 horizontal chroma subsampling (YUV only)
	ChromaVShift int // log2 vertical chroma subsampling (YUV only)
	GOPSize      int // frames per key frame interval, 0 or 1 makes every frame a key frame
}

// DefaultOptions returns 4:2:0 YUV with the Golomb-Rice coder.
func DefaultOptions() *Options {
	return &Options{
		Context:      SmallContext,
		Colorspace:   ColorspaceYUV,
		ChromaHShift: 1,
		ChromaVShift: 1,
		GOPSize:      1,
	}
}

// Coder returns the coder type the options select.
func (o *Options) Coder() CoderType {
	if o.AC {
		return CoderBinaryAdaptive
	}
	return CoderGolombRice
}

// Validate checks the options describe a format this package can code.
func (o *Options) Validate() error {
	switch o.Context {
	case SmallContext, LargeContext:
	default:
		return fmt.Errorf("%w: context model %d", ErrUnsupportedFormat, o.Context)
	}
	if o.GOPSize < 0 {
		return fmt.Errorf("ffv1: negative gop size %d", o.GOPSize)
	}
	return checkLayout(o.Colorspace, o.ChromaHShift, o.ChromaVShift)
}

// checkLayout accepts the colorspace/subsampling pairs image.YCbCr can hold.
func checkLayout(cs Colorspace, hShift, vShift int) error {
	switch cs {
	case ColorspaceYUV:
		if _, ok := subsampleRatio(hShift, vShift); !ok {
			return fmt.Errorf("%w: chroma shift %d/%d", ErrUnsupportedFormat, hShift, vShift)
		}
	case ColorspaceRGB:
		if hShift != 0 || vShift != 0 {
			return fmt.Errorf("%w: rgb with chroma shift %d/%d", ErrUnsupportedFormat, hShift, vShift)
		}
	default:
		return fmt.Errorf("%w: colorspace %d", ErrUnsupportedFormat, cs)
	}
	return nil
}

func subsampleRatio(hShift, vShift int) (image.YCbCrSubsampleRatio, bool) {
	switch {
	case hShift == 0 && vShift == 0:
		return image.YCbCrSubsampleRatio444, true
	case hShift == 1 && vShift == 0:
		return image.YCbCrSubsampleRatio422, true
	case hShift == 1 && vShift == 1:
		return image.YCbCrSubsampleRatio420, true
	case hShift == 0 && vShift == 1:
		return image.YCbCrSubsampleRatio440, true
	case hShift == 2 && vShift == 0:
		return image.YCbCrSubsampleRatio411, true
	case hShift == 2 && vShift == 1:
		return image.YCbCrSubsampleRatio410, true
	}
	return 0, false
}

// ChromaShift returns the log2 subsampling factors for a YCbCr ratio.
func ChromaShift(r image.YCbCrSubsampleRatio) (hShift, vShift int, err error) {
	switch r {
	case image.YCbCrSubsampleRatio444:
		return 0, 0, nil
	case image.YCbCrSubsampleRatio422:
		return 1, 0, nil
	case image.YCbCrSubsampleRatio420:
		return 1, 1, nil
	case image.YCbCrSubsampleRatio440:
		return 0, 1, nil
	case image.YCbCrSubsampleRatio411:
		return 2, 0, nil
	case image.YCbCrSubsampleRatio410:
		return 2, 1, nil
	}
	return 0, 0, fmt.Errorf("%w: subsample ratio %v", ErrUnsupportedFormat, r)
}

// chromaSize rounds up so odd luma sizes keep their last chroma sample.
func chromaSize(width, height, hShift, vShift int) (int, int) {
	return -((-width) >> hShift), -((-height) >> vShift)
}
