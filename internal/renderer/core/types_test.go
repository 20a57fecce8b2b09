package core

import (
	"testing"
)

func TestColorDefault(t *testing.T) {
	if !ColorDefault.IsDefault() {
		t.Error("ColorDefault should be default")
	}
	if ColorFromRGB(1, 2, 3).IsDefault() {
		t.Error("RGB color should not be default")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#ff8040", ColorFromRGB(255, 128, 64), false},
		{"#000", ColorBlack, false},
		{"default", ColorDefault, false},
		{"", ColorDefault, false},
		{"ff8040", Color{}, true},
		{"#zzzzzz", Color{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func near(a, b Color) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= 1 && d(a.G, b.G) <= 1 && d(a.B, b.B) <= 1
}

func TestColorBlend(t *testing.T) {
	a := ColorFromRGB(200, 40, 40)
	b := ColorFromRGB(40, 40, 200)

	if got := a.Blend(b, 0); !near(got, a) {
		t.Errorf("Blend(0) = %v, want %v", got, a)
	}
	if got := a.Blend(b, 1); !near(got, b) {
		t.Errorf("Blend(1) = %v, want %v", got, b)
	}
	mid := a.Blend(b, 0.5)
	if near(mid, a) || near(mid, b) {
		t.Errorf("Blend(0.5) = %v, want a color between the endpoints", mid)
	}

	if got := ColorDefault.Blend(b, 0.2); !got.IsDefault() {
		t.Errorf("Blend from default at 0.2 = %v, want default", got)
	}
	if got := ColorDefault.Blend(b, 0.8); got != b {
		t.Errorf("Blend from default at 0.8 = %v, want %v", got, b)
	}
}

func TestColorString(t *testing.T) {
	if s := ColorFromRGB(255, 0, 16).String(); s != "#FF0010" {
		t.Errorf("String() = %q", s)
	}
	if s := ColorDefault.String(); s != "default" {
		t.Errorf("String() = %q", s)
	}
}

func TestStyleBuilders(t *testing.T) {
	s := NewStyle(ColorRed).WithBackground(ColorBlack).Bold().Dim().Reverse()
	if s.Foreground != ColorRed || s.Background != ColorBlack {
		t.Errorf("colors = %v/%v", s.Foreground, s.Background)
	}
	for _, a := range []Attribute{AttrBold, AttrDim, AttrReverse} {
		if !s.Attributes.Has(a) {
			t.Errorf("missing attribute %d", a)
		}
	}
	if s.Attributes.Has(AttrItalic) {
		t.Error("unexpected italic")
	}
	if DefaultStyle() != (Style{Foreground: ColorDefault, Background: ColorDefault}) {
		t.Error("DefaultStyle() is not default")
	}
}

func TestRect(t *testing.T) {
	r := RectXYWH(2, 3, 4, 5)
	if r.Width() != 4 || r.Height() != 5 {
		t.Errorf("size = %dx%d", r.Width(), r.Height())
	}
	tests := []struct {
		x, y int
		want bool
	}{
		{2, 3, true},
		{5, 7, true},
		{6, 7, false},
		{5, 8, false},
		{1, 3, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if !RectXYWH(0, 0, 0, 3).Empty() || r.Empty() {
		t.Error("Empty() mismatch")
	}
}
