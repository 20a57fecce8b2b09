package document

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDimension(t *testing.T) {
	tests := []struct {
		in      string
		want    Dimension
		wantErr bool
	}{
		{"inherit", Inherit, false},
		{"INHERIT", Inherit, false},
		{"", Inherit, false},
		{"200", Pixels(200), false},
		{"200px", Pixels(200), false},
		{" 0 ", Pixels(0), false},
		{"-5", Inherit, true},
		{"wide", Inherit, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDimension(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDimension) {
					t.Fatalf("expected ErrInvalidDimension, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseDimension(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDimensionAccessors(t *testing.T) {
	if !Inherit.IsInherit() {
		t.Error("Inherit should report IsInherit")
	}
	if Inherit.String() != "inherit" {
		t.Errorf("Inherit.String() = %q", Inherit.String())
	}
	if Inherit.Or(50) != 50 {
		t.Errorf("Inherit.Or(50) = %d", Inherit.Or(50))
	}

	d := Pixels(300)
	if d.IsInherit() || d.Px() != 300 || d.Or(50) != 300 {
		t.Errorf("unexpected pixel dimension %#v", d)
	}
	if Pixels(-1).Px() != 0 {
		t.Error("negative pixels should clamp to zero")
	}
	if v, ok := d.Value().(int64); !ok || v != 300 {
		t.Errorf("Value() = %#v", d.Value())
	}
}

func TestDimensionFromValue(t *testing.T) {
	if d, err := DimensionFromValue(int64(150)); err != nil || d != Pixels(150) {
		t.Errorf("int64: got %v, %v", d, err)
	}
	if d, err := DimensionFromValue(150); err != nil || d != Pixels(150) {
		t.Errorf("int: got %v, %v", d, err)
	}
	if d, err := DimensionFromValue(nil); err != nil || !d.IsInherit() {
		t.Errorf("nil: got %v, %v", d, err)
	}
	if _, err := DimensionFromValue(1.5); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("fractional: expected error, got %v", err)
	}
	if _, err := DimensionFromValue(true); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("bool: expected error, got %v", err)
	}
}

func TestTreeInsertAndLookup(t *testing.T) {
	tree := NewTree()
	img := NewImageNode(ImageAttrs{Src: "a.png"})
	para := NewParagraphNode("hello")

	if err := tree.Insert(img); err != nil {
		t.Fatalf("Insert image: %v", err)
	}
	if err := tree.Insert(para); err != nil {
		t.Fatalf("Insert paragraph: %v", err)
	}
	if err := tree.Insert(img); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	if tree.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tree.Len())
	}
	if !IsImageNode(tree.GetNodeByKey(img.Key())) {
		t.Error("image key should resolve to an image node")
	}
	if IsImageNode(tree.GetNodeByKey(para.Key())) {
		t.Error("paragraph should not be an image node")
	}
	if tree.GetNodeByKey("missing") != nil {
		t.Error("missing key should resolve to nil")
	}
	if IsImageNode(nil) {
		t.Error("nil is not an image node")
	}

	keys := tree.Keys()
	if keys[0] != img.Key() || keys[1] != para.Key() {
		t.Errorf("unexpected key order %v", keys)
	}
}

func TestImageNodeRemove(t *testing.T) {
	tree := NewTree()
	img := NewImageNode(ImageAttrs{Src: "a.png"})
	_ = tree.Insert(img)
	v := tree.Version()

	img.Remove()
	if img.IsAttached() {
		t.Error("node should be detached after Remove")
	}
	if tree.GetNodeByKey(img.Key()) != nil {
		t.Error("removed node should not resolve")
	}
	if tree.Version() == v {
		t.Error("version should advance on removal")
	}

	// Second removal is a no-op.
	img.Remove()
	if tree.Len() != 0 {
		t.Errorf("Len() = %d after double remove", tree.Len())
	}
}

func TestImageNodeSetWidthAndHeight(t *testing.T) {
	tree := NewTree()
	img := NewImageNode(ImageAttrs{Src: "a.png", Width: Inherit, Height: Inherit})
	_ = tree.Insert(img)

	if err := img.SetWidthAndHeight(Pixels(300), Pixels(150)); err != nil {
		t.Fatalf("SetWidthAndHeight: %v", err)
	}
	if img.Width() != Pixels(300) || img.Height() != Pixels(150) {
		t.Errorf("got %v x %v", img.Width(), img.Height())
	}

	img.Remove()
	if err := img.SetWidthAndHeight(Pixels(1), Pixels(1)); !errors.Is(err, ErrNodeDetached) {
		t.Errorf("expected ErrNodeDetached, got %v", err)
	}
}

const sampleYAML = `nodes:
  - type: paragraph
    text: intro
  - type: image
    key: hero
    src: a.png
    alt: A picture
    width: 200
    height: inherit
    maxWidth: 500
    resizable: true
`

func TestReadYAML(t *testing.T) {
	tree, err := Read(strings.NewReader(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	img := AsImageNode(tree.GetNodeByKey("hero"))
	if img == nil {
		t.Fatal("hero image not found")
	}
	a := img.Attrs()
	if a.Width != Pixels(200) || !a.Height.IsInherit() || a.MaxWidth != 500 || !a.Resizable {
		t.Errorf("unexpected attrs %+v", a)
	}
	if a.AltText != "A picture" {
		t.Errorf("AltText = %q", a.AltText)
	}
}

func TestReadRejectsBadNodes(t *testing.T) {
	src := `nodes:
  - type: image
    width: 10
  - type: image
    src: b.png
    width: -3
  - type: video
`
	_, err := Read(strings.NewReader(src), FormatYAML)
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %T", err)
	}
	if !errors.Is(err, ErrEmptySource) {
		t.Error("expected ErrEmptySource among errors")
	}
	if !errors.Is(err, ErrInvalidDimension) {
		t.Error("expected ErrInvalidDimension among errors")
	}
}

func TestWriteReadRoundTripTOML(t *testing.T) {
	tree, err := Read(strings.NewReader(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	img := AsImageNode(tree.GetNodeByKey("hero"))
	if err := img.SetWidthAndHeight(Pixels(300), Pixels(150)); err != nil {
		t.Fatalf("SetWidthAndHeight: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, FormatTOML, tree); err != nil {
		t.Fatalf("Write: %v", err)
	}

	back, err := Read(&buf, FormatTOML)
	if err != nil {
		t.Fatalf("Read TOML: %v\n%s", err, buf.String())
	}
	got := AsImageNode(back.GetNodeByKey("hero"))
	if got == nil {
		t.Fatal("hero missing after round trip")
	}
	if got.Width() != Pixels(300) || got.Height() != Pixels(150) {
		t.Errorf("size after round trip = %v x %v", got.Width(), got.Height())
	}
	if back.Len() != 2 {
		t.Errorf("Len() = %d, want 2", back.Len())
	}
}

func TestLoadSaveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	tree, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	AsImageNode(tree.GetNodeByKey("hero")).Remove()
	if err := Save(path, tree); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if again.Len() != 1 || len(again.Images()) != 0 {
		t.Errorf("expected only the paragraph to remain, got %d nodes", again.Len())
	}

	if _, err := Load(filepath.Join(dir, "doc.txt")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
