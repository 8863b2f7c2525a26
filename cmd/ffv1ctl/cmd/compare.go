package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/jpfielding/ffv1.go/pkg/compress/ffv1"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
)

// NewCompareCmd measures ffv1 against zstd over the same samples
func NewCompareCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [flags] image...",
		Short: "compare ffv1 and zstd sizes for the same frames",
		Long:  "Codes the images as one ffv1 stream and, as a baseline, zstd over the raw planes the stream codes.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := codecOptions(cmd.Flags())
			if err != nil {
				return err
			}
			return runCompare(ctx, cmd.OutOrStdout(), args, opts)
		},
	}
	addCodecFlags(cmd.Flags())
	return cmd
}

// CompareResult is the size of one frame under each scheme.
type CompareResult struct {
	Raw  int
	Zstd int
	FFV1 int
}

func newZstd() (*zstd.Encoder, *zstd.Decoder, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		return nil, nil, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		enc.Close()
		return nil, nil, err
	}
	return enc, dec, nil
}

// compareFrames codes every frame both ways, checking each baseline
// round trip.
func compareFrames(ctx context.Context, paths []string, opts *ffv1.Options) ([]CompareResult, error) {
	zenc, zdec, err := newZstd()
	if err != nil {
		return nil, err
	}
	defer zenc.Close()
	defer zdec.Close()

	var enc *ffv1.Encoder
	var results []CompareResult
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := loadImage(path)
		if err != nil {
			return nil, err
		}
		frame := frameFor(src, opts)
		if enc == nil {
			b := frame.Bounds()
			if enc, err = ffv1.NewEncoder(b.Dx(), b.Dy(), opts); err != nil {
				return nil, err
			}
		}
		data, err := enc.Encode(frame)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		raw := framePixels(frame)
		packed := zenc.EncodeAll(raw, nil)
		back, err := zdec.DecodeAll(packed, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: zstd: %w", path, err)
		}
		if !bytes.Equal(raw, back) {
			return nil, fmt.Errorf("%s: zstd round trip differs", path)
		}
		results = append(results, CompareResult{Raw: len(raw), Zstd: len(packed), FFV1: len(data)})
	}
	return results, nil
}

func runCompare(ctx context.Context, w io.Writer, paths []string, opts *ffv1.Options) error {
	results, err := compareFrames(ctx, paths, opts)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "frame\traw\tzstd\tffv1\tzstd ratio\tffv1 ratio")
	var sum CompareResult
	for i, r := range results {
		sum.Raw += r.Raw
		sum.Zstd += r.Zstd
		sum.FFV1 += r.FFV1
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.2f\t%.2f\n", i, r.Raw, r.Zstd, r.FFV1,
			float64(r.Raw)/float64(r.Zstd), float64(r.Raw)/float64(r.FFV1))
	}
	fmt.Fprintf(tw, "all\t%d\t%d\t%d\t%.2f\t%.2f\n", sum.Raw, sum.Zstd, sum.FFV1,
		float64(sum.Raw)/float64(sum.Zstd), float64(sum.Raw)/float64(sum.FFV1))
	slog.DebugContext(ctx, "compared frames", slog.Int("frames", len(results)))
	return tw.Flush()
}
