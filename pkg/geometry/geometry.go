// Package geometry provides the small set of value types shared by the scroll
// synchronizer and widgets: points, sizes, rectangles, edge insets and colors.
package geometry

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used by Point.ApproxEqual when none is given.
const Epsilon = 0.0001

// Point is a 2D position in points, typically a content offset.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns p minus other.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Distance returns the larger of the per-axis distances between p and other.
func (p Point) Distance(other Point) float64 {
	return math.Max(math.Abs(p.X-other.X), math.Abs(p.Y-other.Y))
}

// ApproxEqual reports whether p and other differ by at most eps on both axes.
func (p Point) ApproxEqual(other Point, eps float64) bool {
	if eps <= 0 {
		eps = Epsilon
	}
	return p.Distance(other) <= eps
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// Size represents width and height dimensions in points.
type Size struct {
	Width  float64
	Height float64
}

// Rect represents a rectangle using left, top, right, bottom coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// RectFromLTWH constructs a Rect from left, top, width, height values.
func RectFromLTWH(left, top, width, height float64) Rect {
	return Rect{Left: left, Top: top, Right: left + width, Bottom: top + height}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.Left, Y: r.Top}
}

// Intersects reports whether r and other overlap with non-zero area.
func (r Rect) Intersects(other Rect) bool {
	return r.Left < other.Right && other.Left < r.Right && r.Top < other.Bottom && other.Top < r.Bottom
}

// EdgeInsets describes four-sided content insets.
type EdgeInsets struct {
	Top, Left, Bottom, Right float64
}

// EdgeInsetsAll returns insets with the same value on every side.
func EdgeInsetsAll(v float64) EdgeInsets {
	return EdgeInsets{Top: v, Left: v, Bottom: v, Right: v}
}

// EdgeInsetsSymmetric returns insets with vertical values on top/bottom and
// horizontal values on left/right.
func EdgeInsetsSymmetric(vertical, horizontal float64) EdgeInsets {
	return EdgeInsets{Top: vertical, Left: horizontal, Bottom: vertical, Right: horizontal}
}

// Vertical returns the sum of the top and bottom insets.
func (e EdgeInsets) Vertical() float64 {
	return e.Top + e.Bottom
}

// Horizontal returns the sum of the left and right insets.
func (e EdgeInsets) Horizontal() float64 {
	return e.Left + e.Right
}
