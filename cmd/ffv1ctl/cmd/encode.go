package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jpfielding/ffv1.go/pkg/compress/ffv1"
	"github.com/jpfielding/ffv1.go/pkg/logging"
	"github.com/jpfielding/ffv1.go/pkg/util"
	"github.com/spf13/cobra"
)

// NewEncodeCmd codes a sequence of images into a frame directory
func NewEncodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [flags] image...",
		Short: "encode png/jpeg images into ffv1 frames",
		Long:  "Encodes the images, in argument order, as one ffv1 stream. Frames and a manifest.json are written to --out.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			opts, err := codecOptions(cmd.Flags())
			if err != nil {
				return err
			}
			m, err := encodeStream(ctx, args, out, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d frames -> %s\n", m.StreamID, len(m.Frames), out)
			return nil
		},
	}
	pf := cmd.Flags()
	pf.StringP("out", "o", ".", "output directory for frames and manifest")
	addCodecFlags(pf)
	return cmd
}

func encodeStream(ctx context.Context, paths []string, dir string, opts *ffv1.Options) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	m := &Manifest{
		StreamID:  uuid.NewString(),
		OptionsID: util.HashUUID(opts),
		Options:   *opts,
	}
	ctx = logging.AppendCtx(ctx, slog.String("stream", m.StreamID))

	var enc *ffv1.Encoder
	var total int
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := loadImage(path)
		if err != nil {
			return nil, err
		}
		frame := frameFor(src, opts)
		if enc == nil {
			m.Width, m.Height = frame.Bounds().Dx(), frame.Bounds().Dy()
			if enc, err = ffv1.NewEncoder(m.Width, m.Height, opts); err != nil {
				return nil, err
			}
			h := enc.Header()
			slog.DebugContext(ctx, "stream header",
				slog.Int("width", m.Width),
				slog.Int("height", m.Height),
				slog.Int("contexts", h.Quant.ContextCount()),
				slog.Bool("large", h.Quant.Large()))
		}
		data, err := enc.Encode(frame)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		key, err := ffv1.PeekKeyFrame(data)
		if err != nil {
			return nil, err
		}

		entry := FrameEntry{
			File:      fmt.Sprintf("frame_%06d.ffv1", i),
			Source:    filepath.Base(path),
			ContentID: util.ContentUUID(framePixels(frame)),
			KeyFrame:  key,
			Bytes:     len(data),
		}
		if err := os.WriteFile(filepath.Join(dir, entry.File), data, 0o644); err != nil {
			return nil, err
		}
		m.Frames = append(m.Frames, entry)
		total += len(data)
		slog.DebugContext(ctx, "encoded frame",
			slog.Int("frame", i),
			slog.Bool("key", key),
			slog.Int("bytes", len(data)),
			slog.String("content", entry.ContentID))
	}

	if err := writeManifest(dir, m); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "encoded stream",
		slog.Int("frames", len(m.Frames)),
		slog.Int("bytes", total),
		slog.String("coder", opts.Coder().String()))
	return m, nil
}
