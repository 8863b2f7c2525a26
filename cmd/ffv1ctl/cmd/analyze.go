package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/jpfielding/ffv1.go/pkg/compress/ffv1"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze cobra command
func NewAnalyzeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [flags] dir",
		Short: "Analyze an ffv1 frame directory",
		Long:  "Prints the stream parameters from the manifest and each frame's key flag, size and compression ratio.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" && len(args) > 0 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("frame directory is required. Use --dir flag or provide as argument")
			}
			return runAnalyze(ctx, cmd.OutOrStdout(), dir)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("dir", "d", "", "frame directory holding manifest.json")

	return cmd
}

// runAnalyze decodes the stream so key frame headers can be reported.
func runAnalyze(ctx context.Context, w io.Writer, dir string) error {
	m, err := readManifest(dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Stream: %s\n", m.StreamID)
	fmt.Fprintf(w, "Options: %s\n", m.OptionsID)
	fmt.Fprintf(w, "Size: %dx%d\n", m.Width, m.Height)
	fmt.Fprintf(w, "Frames: %d\n\n", len(m.Frames))

	dec, err := ffv1.NewDecoder(m.Width, m.Height)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "frame\tkey\tbytes\tratio\tcoder\tcolorspace\tcontexts")
	var total, raw int
	for i, entry := range m.Frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.File))
		if err != nil {
			return err
		}
		img, info, err := dec.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", entry.File, err)
		}
		n := len(framePixels(img))
		total += len(data)
		raw += n

		h := info.Header
		fmt.Fprintf(tw, "%d\t%v\t%d\t%.2f\t%s\t%s\t%d\n",
			i, info.KeyFrame, len(data), float64(n)/float64(len(data)),
			h.Coder, h.Colorspace, h.Quant.ContextCount())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if total > 0 {
		fmt.Fprintf(w, "\nTotal: %d bytes, ratio %.2f\n", total, float64(raw)/float64(total))
	}
	return nil
}
