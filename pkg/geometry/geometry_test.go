package geometry

import "testing"

func TestPointApproxEqual(t *testing.T) {
	a := Point{X: 0, Y: 100}
	if !a.ApproxEqual(Point{X: 0, Y: 100.3}, 0.5) {
		t.Error("points 0.3 apart should be equal within 0.5")
	}
	if a.ApproxEqual(Point{X: 0, Y: 101}, 0.5) {
		t.Error("points 1 apart should not be equal within 0.5")
	}
}

func TestRectIntersects(t *testing.T) {
	viewport := RectFromLTWH(0, 100, 320, 200)
	tests := []struct {
		name string
		row  Rect
		want bool
	}{
		{"above", RectFromLTWH(0, 56, 320, 44), false},
		{"touching top edge", RectFromLTWH(0, 60, 320, 40), false},
		{"straddling top", RectFromLTWH(0, 80, 320, 44), true},
		{"inside", RectFromLTWH(0, 150, 320, 44), true},
		{"below", RectFromLTWH(0, 300, 320, 44), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := viewport.Intersects(tt.row); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#FF8000")
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	if c != RGB(0xFF, 0x80, 0x00) {
		t.Errorf("got %v, want %v", c, RGB(0xFF, 0x80, 0x00))
	}
	c, err = ParseHex("80102030")
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	if r, g, b, a := c.Components(); r != 0x10 || g != 0x20 || b != 0x30 || a != 0x80 {
		t.Errorf("components = %x %x %x %x", r, g, b, a)
	}
	if _, err := ParseHex("#12"); err == nil {
		t.Error("expected error for short color")
	}
}
