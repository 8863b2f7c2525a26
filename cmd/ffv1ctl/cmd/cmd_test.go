package cmd

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/jpfielding/ffv1.go/pkg/compress/ffv1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFrames writes n small png frames and returns their paths.
func writeFrames(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for i := 0; i < n; i++ {
		img := image.NewNRGBA(image.Rect(0, 0, 21, 14))
		for y := 0; y < 14; y++ {
			for x := 0; x < 21; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 12), G: uint8(y*9 + i), B: uint8(x ^ y), A: 255})
			}
		}
		p := filepath.Join(dir, "in", filepath.Base(t.Name())+string(rune('a'+i))+".png")
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		f, err := os.Create(p)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
		paths = append(paths, p)
	}
	return paths
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := NewRoot(context.Background(), "test-sha")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func TestCodecOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want ffv1.Options
		err  bool
	}{
		{"Defaults", nil, *ffv1.DefaultOptions(), false},
		{"RGB", []string{"--colorspace", "rgb", "--ac", "--gop", "5"},
			ffv1.Options{AC: true, Colorspace: ffv1.ColorspaceRGB, GOPSize: 5}, false},
		{"Large444", []string{"--context", "large", "--subsample", "444"},
			ffv1.Options{Context: ffv1.LargeContext, GOPSize: 1}, false},
		{"Subsample410", []string{"--subsample", "410"},
			ffv1.Options{ChromaHShift: 2, ChromaVShift: 1, GOPSize: 1}, false},
		{"BadContext", []string{"--context", "huge"}, ffv1.Options{}, true},
		{"BadSubsample", []string{"--subsample", "421"}, ffv1.Options{}, true},
		{"BadColorspace", []string{"--colorspace", "cmyk"}, ffv1.Options{}, true},
		{"NegativeGOP", []string{"--gop=-2"}, ffv1.Options{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewEncodeCmd(context.Background())
			require.NoError(t, cmd.Flags().Parse(tt.args))
			opts, err := codecOptions(cmd.Flags())
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *opts)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Golomb420", []string{"--gop", "2"}},
		{"AC444Large", []string{"--ac", "--subsample", "444", "--context", "large"}},
		{"RGB", []string{"--colorspace", "rgb", "--gop", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames := writeFrames(t, 3)
			dir := filepath.Join(t.TempDir(), "stream")

			args := append([]string{"encode", "--out", dir}, tt.args...)
			out := run(t, append(args, frames...)...)
			assert.Contains(t, out, "3 frames")

			m, err := readManifest(dir)
			require.NoError(t, err)
			assert.Equal(t, 21, m.Width)
			assert.Equal(t, 14, m.Height)
			require.Len(t, m.Frames, 3)
			assert.True(t, m.Frames[0].KeyFrame)
			assert.NotEmpty(t, m.StreamID)
			assert.NotEqual(t, m.Frames[0].ContentID, m.Frames[1].ContentID)

			pngs := filepath.Join(t.TempDir(), "png")
			out = run(t, "decode", "--out", pngs, dir)
			assert.Contains(t, out, "3 frames verified")
			for i := 0; i < 3; i++ {
				_, err := loadImage(filepath.Join(pngs, "frame_00000"+string(rune('0'+i))+".png"))
				assert.NoError(t, err)
			}

			out = run(t, "analyze", dir)
			assert.Contains(t, out, m.StreamID)
			assert.Contains(t, out, "Total:")
		})
	}
}

func TestDecode_ContentMismatch(t *testing.T) {
	frames := writeFrames(t, 1)
	dir := filepath.Join(t.TempDir(), "stream")
	run(t, "encode", "--out", dir, frames[0])

	m, err := readManifest(dir)
	require.NoError(t, err)
	m.Frames[0].ContentID = "00000000-0000-0000-0000-000000000000"
	require.NoError(t, writeManifest(dir, m))

	_, err = decodeStream(context.Background(), dir, "")
	assert.ErrorIs(t, err, ErrContentMismatch)
}

func TestCompare(t *testing.T) {
	frames := writeFrames(t, 2)
	opts := ffv1.DefaultOptions()
	results, err := compareFrames(context.Background(), frames, opts)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		// 21x14 luma plus two 11x7 chroma planes
		assert.Equal(t, 21*14+2*11*7, r.Raw)
		assert.Positive(t, r.Zstd)
		assert.Positive(t, r.FFV1)
	}

	out := run(t, append([]string{"compare", "--colorspace", "rgb"}, frames...)...)
	assert.Contains(t, out, "ffv1 ratio")
}

func TestVersion(t *testing.T) {
	assert.Contains(t, run(t, "version"), "test-sha")
}
