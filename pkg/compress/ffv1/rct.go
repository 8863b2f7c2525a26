package ffv1

import (
	"image"
	"image/color"
	"image/draw"
)

// rctOffset keeps the chroma differences non-negative in 9 bits.
const rctOffset = 0x100

// forwardRCT decorrelates one RGB pixel into the coded channels.
// g' = g + floor((b-g + r-g) / 4), b' = b-g + 256, r' = r-g + 256
func forwardRCT(r, g, b int) (gc, bc, rc int) {
	b -= g
	r -= g
	g += (b + r) >> 2
	return g, b + rctOffset, r + rctOffset
}

// inverseRCT restores the RGB pixel.
func inverseRCT(gc, bc, rc int) (r, g, b int) {
	b = bc - rctOffset
	r = rc - rctOffset
	g = gc - ((b + r) >> 2)
	return r + g, g, b + g
}

// splitRGB decorrelates an image into g', b', r' planes. Alpha is ignored.
func splitRGB(img image.Image) [3]intPlane {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var pix []byte
	var stride int
	switch src := img.(type) {
	case *image.RGBA:
		pix, stride = src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y):], src.Stride
	case *image.NRGBA:
		pix, stride = src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y):], src.Stride
	default:
		rgba := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
		pix, stride = rgba.Pix, rgba.Stride
	}

	planes := [3]intPlane{newIntPlane(w, h), newIntPlane(w, h), newIntPlane(w, h)}
	for y := 0; y < h; y++ {
		row := pix[y*stride:]
		for x := 0; x < w; x++ {
			i := 4 * x
			gc, bc, rc := forwardRCT(int(row[i]), int(row[i+1]), int(row[i+2]))
			planes[0].pix[y*w+x] = gc
			planes[1].pix[y*w+x] = bc
			planes[2].pix[y*w+x] = rc
		}
	}
	return planes
}

// mergeRGB inverts splitRGB into an opaque RGBA image.
func mergeRGB(planes [3]intPlane, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			r, g, b := inverseRCT(planes[0].pix[i], planes[1].pix[i], planes[2].pix[i])
			img.SetRGBA(x, y, color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255})
		}
	}
	return img
}
