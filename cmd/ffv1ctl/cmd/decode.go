package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jpfielding/ffv1.go/pkg/compress/ffv1"
	"github.com/jpfielding/ffv1.go/pkg/logging"
	"github.com/jpfielding/ffv1.go/pkg/util"
	"github.com/spf13/cobra"
)

// ErrContentMismatch is returned when a decoded frame does not hash to the
// id recorded at encode time.
var ErrContentMismatch = errors.New("decoded frame does not match manifest content id")

// NewDecodeCmd decodes a frame directory back into png images
func NewDecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [flags] dir",
		Short: "decode an ffv1 frame directory to png",
		Long:  "Decodes every frame listed in dir/manifest.json, checks it against its content id and writes frame_NNNNNN.png to --out.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			verifyOnly, _ := cmd.Flags().GetBool("verify-only")
			if verifyOnly {
				out = ""
			}
			n, err := decodeStream(ctx, args[0], out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d frames verified\n", n)
			return nil
		},
	}
	pf := cmd.Flags()
	pf.StringP("out", "o", ".", "output directory for png frames")
	pf.Bool("verify-only", false, "check content ids without writing images")
	return cmd
}

// decodeStream decodes and verifies every frame; images are written to out
// unless it is empty.
func decodeStream(ctx context.Context, dir, out string) (int, error) {
	m, err := readManifest(dir)
	if err != nil {
		return 0, err
	}
	ctx = logging.AppendCtx(ctx, slog.String("stream", m.StreamID))
	if out != "" {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return 0, err
		}
	}

	dec, err := ffv1.NewDecoder(m.Width, m.Height)
	if err != nil {
		return 0, err
	}
	for i, entry := range m.Frames {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.File))
		if err != nil {
			return i, err
		}
		img, info, err := dec.Decode(data)
		if err != nil {
			return i, fmt.Errorf("%s: %w", entry.File, err)
		}
		if got := util.ContentUUID(framePixels(img)); got != entry.ContentID {
			return i, fmt.Errorf("%s: %w: %s != %s", entry.File, ErrContentMismatch, got, entry.ContentID)
		}
		slog.DebugContext(ctx, "decoded frame", slog.Int("frame", i), slog.Bool("key", info.KeyFrame))

		if out == "" {
			continue
		}
		if err := writePNG(filepath.Join(out, fmt.Sprintf("frame_%06d.png", i)), img); err != nil {
			return i, err
		}
	}
	slog.InfoContext(ctx, "decoded stream", slog.Int("frames", len(m.Frames)))
	return len(m.Frames), nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
