package vision

import (
	"image"
	"image/color"
	"math"
)

// grayGrid is a single-channel intensity raster used by the detection
// pipeline. Values are in the 0–255 range.
type grayGrid struct {
	w, h int
	pix  []float64
}

func newGrayGrid(w, h int) *grayGrid {
	return &grayGrid{w: w, h: h, pix: make([]float64, w*h)}
}

func (g *grayGrid) at(x, y int) float64 {
	return g.pix[y*g.w+x]
}

func (g *grayGrid) set(x, y int, v float64) {
	g.pix[y*g.w+x] = v
}

// toImage converts the grid back to an 8-bit grayscale image, clamping to
// the displayable range.
func (g *grayGrid) toImage() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, g.w, g.h))
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			v := g.at(x, y)
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			out.SetGray(x, y, color.Gray{Y: uint8(v + 0.5)})
		}
	}
	return out
}

// grayscale converts a color image to single-channel intensity using the
// BT.601 luma coefficients.
func grayscale(img image.Image) *grayGrid {
	b := img.Bounds()
	g := newGrayGrid(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, gr, bl, _ := img.At(x, y).RGBA()
			luma := 0.299*float64(r>>8) + 0.587*float64(gr>>8) + 0.114*float64(bl>>8)
			g.set(x-b.Min.X, y-b.Min.Y, luma)
		}
	}
	return g
}

// bilateralFilter applies an edge-preserving smoothing filter: each output
// pixel is a weighted mean of its neighbourhood where the weights fall off
// with both spatial distance and intensity difference, so uniform areas are
// smoothed while sharp boundaries survive.
func bilateralFilter(g *grayGrid, diameter int, sigmaColor, sigmaSpace float64) *grayGrid {
	radius := diameter / 2
	out := newGrayGrid(g.w, g.h)

	// spatial weights depend only on the offset, precompute once
	spatial := make([]float64, diameter*diameter)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[(dy+radius)*diameter+(dx+radius)] = math.Exp(-d2 / (2 * sigmaSpace * sigmaSpace))
		}
	}

	twoSigmaColor2 := 2 * sigmaColor * sigmaColor
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			center := g.at(x, y)
			var sum, norm float64
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= g.h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= g.w {
						continue
					}
					v := g.at(nx, ny)
					diff := v - center
					w := spatial[(dy+radius)*diameter+(dx+radius)] *
						math.Exp(-(diff*diff)/twoSigmaColor2)
					sum += v * w
					norm += w
				}
			}
			out.set(x, y, sum/norm)
		}
	}
	return out
}

// cannyEdges runs Canny edge detection over the intensity grid and returns a
// binary edge mask of the same dimensions: Sobel gradients, non-maximum
// suppression, then double-threshold hysteresis.
func cannyEdges(g *grayGrid, low, high float64) []bool {
	w, h := g.w, g.h
	mag := make([]float64, w*h)
	dir := make([]uint8, w*h) // quantized gradient direction: 0°, 45°, 90°, 135°

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -g.at(x-1, y-1) + g.at(x+1, y-1) +
				-2*g.at(x-1, y) + 2*g.at(x+1, y) +
				-g.at(x-1, y+1) + g.at(x+1, y+1)
			gy := -g.at(x-1, y-1) - 2*g.at(x, y-1) - g.at(x+1, y-1) +
				g.at(x-1, y+1) + 2*g.at(x, y+1) + g.at(x+1, y+1)

			i := y*w + x
			mag[i] = math.Hypot(gx, gy)

			angle := math.Atan2(gy, gx) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			switch {
			case angle < 22.5 || angle >= 157.5:
				dir[i] = 0
			case angle < 67.5:
				dir[i] = 1
			case angle < 112.5:
				dir[i] = 2
			default:
				dir[i] = 3
			}
		}
	}

	// non-maximum suppression: keep only local maxima along the gradient
	thin := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			var a, b float64
			switch dir[i] {
			case 0: // horizontal gradient, compare east/west
				a, b = mag[i-1], mag[i+1]
			case 1: // diagonal
				a, b = mag[(y-1)*w+x+1], mag[(y+1)*w+x-1]
			case 2: // vertical gradient, compare north/south
				a, b = mag[(y-1)*w+x], mag[(y+1)*w+x]
			default:
				a, b = mag[(y-1)*w+x-1], mag[(y+1)*w+x+1]
			}
			if mag[i] >= a && mag[i] >= b {
				thin[i] = mag[i]
			}
		}
	}

	// hysteresis: strong edges seed, weak edges survive only when connected
	edges := make([]bool, w*h)
	var stack []int
	for i, v := range thin {
		if v >= high {
			edges[i] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := ny*w + nx
				if !edges[ni] && thin[ni] >= low {
					edges[ni] = true
					stack = append(stack, ni)
				}
			}
		}
	}
	return edges
}
