package preview

import (
	"image"
	"math"
)

// FrameBuffer holds the render target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel, larger is nearer, initialized to -inf
}

// NewFrameBuffer allocates a transparent color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		ZBuf:   zbuf,
	}
}

// Plot writes c at (x, y) when z passes the depth test.
func (fb *FrameBuffer) Plot(x, y int, z float64, c [4]uint8) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return
	}
	i := y*fb.Width + x
	if z < fb.ZBuf[i] {
		return
	}
	fb.ZBuf[i] = z
	copy(fb.Color[i*4:i*4+4], c[:])
}

// Line draws a depth-interpolated segment of the given pixel width.
func (fb *FrameBuffer) Line(x0, y0, z0, x1, y1, z1 float64, width int, c [4]uint8) {
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps == 0 {
		steps = 1
	}
	r := width / 2
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		x := int(math.Round(x0 + (x1-x0)*t))
		y := int(math.Round(y0 + (y1-y0)*t))
		z := z0 + (z1-z0)*t
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				fb.Plot(x+dx, y+dy, z, c)
			}
		}
	}
}

// Disc fills a circle of radius r, slightly in front of z so it covers the
// bones meeting at it.
func (fb *FrameBuffer) Disc(cx, cy, z float64, r int, c [4]uint8) {
	x0, y0 := int(math.Round(cx)), int(math.Round(cy))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				fb.Plot(x0+dx, y0+dy, z+1e-3, c)
			}
		}
	}
}

// Image copies the color buffer into a new NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}
