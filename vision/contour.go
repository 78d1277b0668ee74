package vision

import (
	"image"
	"math"
)

// mooreOffsets enumerates the 8-neighbourhood clockwise starting at west.
var mooreOffsets = [8]image.Point{
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
}

// findContours extracts the ordered boundary of every 8-connected component
// in the edge mask. Components are discovered in scan order, so each trace
// starts from the component's topmost-leftmost pixel.
func findContours(edges []bool, w, h int) [][]image.Point {
	visited := make([]bool, w*h)
	var contours [][]image.Point

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !edges[i] || visited[i] {
				continue
			}
			contours = append(contours, traceBoundary(edges, w, h, image.Pt(x, y)))
			markComponent(edges, visited, w, h, i)
		}
	}
	return contours
}

// traceBoundary walks the boundary of the component containing start using
// Moore-neighbour tracing with a clockwise sweep. start must be the
// component's topmost-leftmost pixel so the initial backtrack direction
// (west) is guaranteed to point at background.
func traceBoundary(edges []bool, w, h int, start image.Point) []image.Point {
	on := func(p image.Point) bool {
		return p.X >= 0 && p.X < w && p.Y >= 0 && p.Y < h && edges[p.Y*w+p.X]
	}

	contour := []image.Point{start}
	cur := start
	scanFrom := 0 // begin the sweep at the west neighbour

	// the trace revisits each boundary pixel at most a few times; bound the
	// loop so a degenerate mask can never spin forever
	for iter := 0; iter < 4*(w*h+1); iter++ {
		next := image.Point{}
		found := false
		entered := 0
		for s := 0; s < 8; s++ {
			d := (scanFrom + s) % 8
			n := cur.Add(mooreOffsets[d])
			if on(n) {
				next = n
				entered = d
				found = true
				break
			}
		}
		if !found {
			break // isolated pixel
		}
		if next == start {
			break
		}
		contour = append(contour, next)
		cur = next
		// resume the sweep from the neighbour just behind the entry direction
		scanFrom = (entered + 6) % 8
	}
	return contour
}

// markComponent flood-fills visited over the 8-connected component at seed.
func markComponent(edges, visited []bool, w, h, seed int) {
	stack := []int{seed}
	visited[seed] = true
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
				if edges[ni] && !visited[ni] {
					visited[ni] = true
					stack = append(stack, ni)
				}
			}
		}
	}
}

// contourArea computes the enclosed area of a closed contour with the
// shoelace formula.
func contourArea(pts []image.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += float64(p.X*q.Y - q.X*p.Y)
	}
	return math.Abs(sum) / 2
}

// approxPolygon simplifies a closed contour with the Douglas-Peucker
// algorithm: the curve is split at the point farthest from its start, both
// halves are simplified independently, and near-collinear vertices left at
// the seam are dropped.
func approxPolygon(pts []image.Point, epsilon float64) []image.Point {
	if len(pts) < 3 {
		return pts
	}

	far, maxDist := 0, 0.0
	for i, p := range pts {
		d := pointDist(p, pts[0])
		if d > maxDist {
			maxDist = d
			far = i
		}
	}
	if far == 0 {
		return pts[:1]
	}

	first := simplifyChain(pts[:far+1], epsilon)
	closing := append(append([]image.Point{}, pts[far:]...), pts[0])
	second := simplifyChain(closing, epsilon)

	merged := append(first, second[1:len(second)-1]...)
	return dropCollinear(merged, epsilon)
}

// simplifyChain is the classic recursive Douglas-Peucker pass over an open
// chain; the endpoints are always kept.
func simplifyChain(pts []image.Point, epsilon float64) []image.Point {
	if len(pts) < 3 {
		return append([]image.Point{}, pts...)
	}

	idx, maxDist := 0, 0.0
	a, b := pts[0], pts[len(pts)-1]
	for i := 1; i < len(pts)-1; i++ {
		d := perpDist(pts[i], a, b)
		if d > maxDist {
			maxDist = d
			idx = i
		}
	}

	if maxDist <= epsilon {
		return []image.Point{a, b}
	}

	left := simplifyChain(pts[:idx+1], epsilon)
	right := simplifyChain(pts[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

// dropCollinear removes vertices that sit within epsilon of the segment
// joining their neighbours in the closed polygon.
func dropCollinear(pts []image.Point, epsilon float64) []image.Point {
	if len(pts) < 4 {
		return pts
	}
	out := make([]image.Point, 0, len(pts))
	n := len(pts)
	for i := 0; i < n; i++ {
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		if perpDist(pts[i], prev, next) > epsilon {
			out = append(out, pts[i])
		}
	}
	if len(out) < 3 {
		return pts
	}
	return out
}

// perpDist is the perpendicular distance from p to the line through a and b.
func perpDist(p, a, b image.Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return pointDist(p, a)
	}
	return math.Abs(dx*float64(a.Y-p.Y)-float64(a.X-p.X)*dy) / length
}

func pointDist(p, q image.Point) float64 {
	return math.Hypot(float64(p.X-q.X), float64(p.Y-q.Y))
}

// boundingRect returns the axis-aligned bounding box of a point set.
func boundingRect(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
