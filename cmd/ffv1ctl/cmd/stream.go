package cmd

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/jpfielding/ffv1.go/pkg/compress/ffv1"
	"github.com/spf13/pflag"
)

// ManifestName is the stream index written next to the frames.
const ManifestName = "manifest.json"

// Manifest describes an encoded frame sequence on disk.
type Manifest struct {
	StreamID  string       `json:"stream_id"`
	OptionsID string       `json:"options_id"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Options   ffv1.Options `json:"options"`
	Frames    []FrameEntry `json:"frames"`
}

// FrameEntry is one coded frame. ContentID is a uuid over the frame's
// pixels as coded, so a decoder can check what it got back.
type FrameEntry struct {
	File      string `json:"file"`
	Source    string `json:"source,omitempty"`
	ContentID string `json:"content_id"`
	KeyFrame  bool   `json:"key_frame"`
	Bytes     int    `json:"bytes"`
}

func readManifest(dir string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := json.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return m, nil
}

func writeManifest(dir string, m *Manifest) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ManifestName), raw, 0o644)
}

// addCodecFlags registers the encoder options on a command.
func addCodecFlags(pf *pflag.FlagSet) {
	pf.Bool("ac", false, "use the binary adaptive range coder instead of golomb-rice")
	pf.String("context", "small", "context model (small|large)")
	pf.String("colorspace", "yuv", "coded colorspace (yuv|rgb)")
	pf.String("subsample", "420", "chroma subsampling for yuv (444|422|420|440|411|410)")
	pf.Int("gop", 1, "frames per key frame interval")
}

var subsampleNames = map[string]image.YCbCrSubsampleRatio{
	"444": image.YCbCrSubsampleRatio444,
	"422": image.YCbCrSubsampleRatio422,
	"420": image.YCbCrSubsampleRatio420,
	"440": image.YCbCrSubsampleRatio440,
	"411": image.YCbCrSubsampleRatio411,
	"410": image.YCbCrSubsampleRatio410,
}

// codecOptions reads the flags registered by addCodecFlags.
func codecOptions(fs *pflag.FlagSet) (*ffv1.Options, error) {
	opts := ffv1.DefaultOptions()
	opts.AC, _ = fs.GetBool("ac")
	opts.GOPSize, _ = fs.GetInt("gop")

	switch model, _ := fs.GetString("context"); strings.ToLower(model) {
	case "small":
		opts.Context = ffv1.SmallContext
	case "large":
		opts.Context = ffv1.LargeContext
	default:
		return nil, fmt.Errorf("unknown context model %q", model)
	}

	switch cs, _ := fs.GetString("colorspace"); strings.ToLower(cs) {
	case "yuv":
		sub, _ := fs.GetString("subsample")
		ratio, ok := subsampleNames[sub]
		if !ok {
			return nil, fmt.Errorf("unknown subsampling %q", sub)
		}
		h, v, err := ffv1.ChromaShift(ratio)
		if err != nil {
			return nil, err
		}
		opts.Colorspace, opts.ChromaHShift, opts.ChromaVShift = ffv1.ColorspaceYUV, h, v
	case "rgb":
		opts.Colorspace, opts.ChromaHShift, opts.ChromaVShift = ffv1.ColorspaceRGB, 0, 0
	default:
		return nil, fmt.Errorf("unknown colorspace %q", cs)
	}
	return opts, opts.Validate()
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// frameFor converts a source image into what the stream codes. YUV streams
// take YCbCr with the stream's subsampling, converting anything else.
func frameFor(img image.Image, opts *ffv1.Options) image.Image {
	if opts.Colorspace == ffv1.ColorspaceRGB {
		return img
	}
	hs, vs := opts.ChromaHShift, opts.ChromaVShift
	if src, ok := img.(*image.YCbCr); ok {
		if h, v, err := ffv1.ChromaShift(src.SubsampleRatio); err == nil && h == hs && v == vs {
			return src
		}
	}

	var ratio image.YCbCrSubsampleRatio
	for _, r := range subsampleNames {
		if h, v, _ := ffv1.ChromaShift(r); h == hs && v == vs {
			ratio = r
		}
	}
	b := img.Bounds()
	dst := image.NewYCbCr(image.Rect(0, 0, b.Dx(), b.Dy()), ratio)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.YCbCrModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.YCbCr)
			dst.Y[dst.YOffset(x, y)] = c.Y
			// chroma is taken from the first pixel of each block
			if x&(1<<hs-1) == 0 && y&(1<<vs-1) == 0 {
				i := dst.COffset(x, y)
				dst.Cb[i], dst.Cr[i] = c.Cb, c.Cr
			}
		}
	}
	return dst
}

// framePixels serializes the samples a stream codes, in a fixed layout, so
// both ends of a round trip can hash them.
func framePixels(img image.Image) []byte {
	b := img.Bounds()
	if src, ok := img.(*image.YCbCr); ok {
		var out []byte
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := src.YOffset(b.Min.X, y)
			out = append(out, src.Y[i:i+b.Dx()]...)
		}
		cb, cr := chromaRows(src)
		return append(append(out, cb...), cr...)
	}
	// rgb streams code the stored channels and drop alpha
	var pix []byte
	var stride int
	switch src := img.(type) {
	case *image.RGBA:
		pix, stride = src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride
	case *image.NRGBA:
		pix, stride = src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride
	default:
		rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
		pix, stride = rgba.Pix, rgba.Stride
	}
	out := make([]byte, 0, 3*b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := pix[y*stride:]
		for x := 0; x < b.Dx(); x++ {
			out = append(out, row[4*x], row[4*x+1], row[4*x+2])
		}
	}
	return out
}

func chromaRows(src *image.YCbCr) (cb, cr []byte) {
	b := src.Bounds()
	seen := map[int]bool{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := src.COffset(x, y)
			if seen[i] {
				continue
			}
			seen[i] = true
			cb = append(cb, src.Cb[i])
			cr = append(cr, src.Cr[i])
		}
	}
	return cb, cr
}
