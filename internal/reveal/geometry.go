// Package reveal promotes rendered blocks from a hidden to a revealed
// presentation the first time they scroll into view.
package reveal

// Rect is an axis-aligned rectangle in the caller's units. The TUI uses
// terminal columns and lines.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) right() int  { return r.X + r.Width }
func (r Rect) bottom() int { return r.Y + r.Height }

// Grow expands r by margin on every side. Negative margins shrink it.
func (r Rect) Grow(margin int) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// Area is zero for degenerate rectangles.
func (r Rect) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

func (r Rect) intersect(other Rect) (Rect, bool) {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.right(), other.right())
	y1 := min(r.bottom(), other.bottom())
	if x1 < x0 || y1 < y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

// Ratio is the fraction of target inside root grown by margin. A zero-area
// target counts as fully visible when it touches the grown root.
func Ratio(root, target Rect, margin int) float64 {
	overlap, ok := root.Grow(margin).intersect(target)
	if !ok {
		return 0
	}
	area := target.Area()
	if area == 0 {
		return 1
	}
	return float64(overlap.Area()) / float64(area)
}

// Visible reports whether target meets the reveal rule for opts.
func Visible(opts Options, root, target Rect) bool {
	ratio := Ratio(root, target, opts.Margin)
	if ratio <= 0 {
		return false
	}
	return ratio >= opts.Threshold
}
