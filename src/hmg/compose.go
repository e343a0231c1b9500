package hmg

import "math"

// Rect is an integer rectangle given by origin and size.
type Rect struct {
	X, Y, W, H int
}

// Union returns the smallest rectangle covering all rects. The union of no
// rectangles is the zero Rect.
func Union(rects ...Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}

	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := math.MinInt, math.MinInt
	for _, r := range rects {
		minX = min(minX, r.X)
		minY = min(minY, r.Y)
		maxX = max(maxX, r.X+r.W)
		maxY = max(maxY, r.Y+r.H)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Crop copies the rect region of src into a new image of size rect.W x rect.H.
// Parts of rect outside src are left transparent.
func Crop(src *Image, rect Rect) *Image {
	dst := New(rect.W, rect.H)

	x0 := max(rect.X, 0)
	x1 := min(rect.X+rect.W, src.Width)
	if x1 <= x0 {
		return dst
	}
	for y := 0; y < dst.Height; y++ {
		sy := rect.Y + y
		if sy < 0 || sy >= src.Height {
			continue
		}
		so := sy*src.Stride() + x0*4
		do := y*dst.Stride() + (x0-rect.X)*4
		copy(dst.Data[do:do+(x1-x0)*4], src.Data[so:so+(x1-x0)*4])
	}
	return dst
}

// Merge draws src onto dst with its top-left corner at (x, y) using
// source-over blending on straight alpha. Pixels falling outside dst are
// dropped.
func Merge(dst, src *Image, x, y int) {
	for sy := 0; sy < src.Height; sy++ {
		dy := y + sy
		if dy < 0 || dy >= dst.Height {
			continue
		}
		for sx := 0; sx < src.Width; sx++ {
			dx := x + sx
			if dx < 0 || dx >= dst.Width {
				continue
			}
			so := sy*src.Stride() + sx*4
			do := dy*dst.Stride() + dx*4
			blend(dst.Data[do:do+4], src.Data[so:so+4])
		}
	}
}

func blend(d, s []byte) {
	switch s[3] {
	case 255:
		copy(d, s)
		return
	case 0:
		return
	}

	sa := float64(s[3]) / 255
	da := float64(d[3]) / 255
	oa := sa + da*(1-sa)
	for i := 0; i < 3; i++ {
		var c float64
		if oa > 0 {
			c = (sa*float64(s[i])/255 + da*float64(d[i])/255*(1-sa)) / oa
		}
		d[i] = toByte(c)
	}
	d[3] = toByte(oa)
}

func toByte(v float64) byte {
	return byte(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
