package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Format is a document file encoding.
type Format int

const (
	// FormatYAML encodes documents as YAML.
	FormatYAML Format = iota
	// FormatTOML encodes documents as TOML.
	FormatTOML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatFromPath selects a format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return FormatYAML, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// fileDocument is the on-disk shape of a document.
type fileDocument struct {
	Nodes []fileNode `yaml:"nodes" toml:"nodes"`
}

// fileNode is the on-disk shape of a single node. Width and height are
// decoded loosely so both "inherit" and integers are accepted; a nil
// interface is omitted, an interface holding 0 is not.
type fileNode struct {
	Type        string `yaml:"type" toml:"type"`
	Key         string `yaml:"key,omitempty" toml:"key,omitempty"`
	Src         string `yaml:"src,omitempty" toml:"src,omitempty"`
	Alt         string `yaml:"alt,omitempty" toml:"alt,omitempty"`
	Width       any    `yaml:"width,omitempty" toml:"width,omitempty"`
	Height      any    `yaml:"height,omitempty" toml:"height,omitempty"`
	MaxWidth    int    `yaml:"maxWidth,omitempty" toml:"maxWidth,omitempty"`
	Resizable   bool   `yaml:"resizable,omitempty" toml:"resizable,omitempty"`
	Caption     string `yaml:"caption,omitempty" toml:"caption,omitempty"`
	ShowCaption bool   `yaml:"showCaption,omitempty" toml:"showCaption,omitempty"`
	Text        string `yaml:"text,omitempty" toml:"text,omitempty"`
}

// Load reads a document file. The format is chosen by extension.
func Load(path string) (*Tree, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}
	return decode(path, format, data)
}

// Read decodes a document from r in the given format.
func Read(r io.Reader, format Format) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return decode("<reader>", format, data)
}

func decode(source string, format Format, data []byte) (*Tree, error) {
	var doc fileDocument
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, &ParseError{Path: source, Index: -1, Err: err}
	}

	tree := NewTree()
	var errs error
	for i, fn := range doc.Nodes {
		node, err := fn.toNode()
		if err == nil {
			err = tree.Insert(node)
		}
		if err != nil {
			errs = multierr.Append(errs, &ParseError{Path: source, Index: i, Err: err})
		}
	}
	if errs != nil {
		return nil, errs
	}
	return tree, nil
}

func (fn fileNode) toNode() (Node, error) {
	key := NodeKey(fn.Key)
	if key == "" {
		key = NewKey()
	}

	switch strings.ToLower(fn.Type) {
	case TypeImage:
		if fn.Src == "" {
			return nil, ErrEmptySource
		}
		width, err := DimensionFromValue(fn.Width)
		if err != nil {
			return nil, fmt.Errorf("width: %w", err)
		}
		height, err := DimensionFromValue(fn.Height)
		if err != nil {
			return nil, fmt.Errorf("height: %w", err)
		}
		if fn.MaxWidth < 0 {
			return nil, fmt.Errorf("maxWidth: %w: negative value %d", ErrInvalidDimension, fn.MaxWidth)
		}
		return NewImageNodeWithKey(key, ImageAttrs{
			Src:         fn.Src,
			AltText:     fn.Alt,
			Width:       width,
			Height:      height,
			MaxWidth:    fn.MaxWidth,
			Resizable:   fn.Resizable,
			Caption:     fn.Caption,
			ShowCaption: fn.ShowCaption,
		}), nil
	case TypeParagraph, "":
		return NewParagraphNodeWithKey(key, fn.Text), nil
	default:
		return nil, fmt.Errorf("unknown node type %q", fn.Type)
	}
}

// Save writes the tree to path. The format is chosen by extension.
func Save(path string, tree *Tree) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, format, tree); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing document %s: %w", path, err)
	}
	return nil
}

// Write encodes the tree to w in the given format.
func Write(w io.Writer, format Format, tree *Tree) error {
	doc := fileDocument{Nodes: make([]fileNode, 0, tree.Len())}
	for _, node := range tree.Nodes() {
		switch n := node.(type) {
		case *ImageNode:
			a := n.Attrs()
			doc.Nodes = append(doc.Nodes, fileNode{
				Type:        TypeImage,
				Key:         string(n.Key()),
				Src:         a.Src,
				Alt:         a.AltText,
				Width:       a.Width.Value(),
				Height:      a.Height.Value(),
				MaxWidth:    a.MaxWidth,
				Resizable:   a.Resizable,
				Caption:     a.Caption,
				ShowCaption: a.ShowCaption,
			})
		case *ParagraphNode:
			doc.Nodes = append(doc.Nodes, fileNode{
				Type: TypeParagraph,
				Key:  string(n.Key()),
				Text: n.Text(),
			})
		}
	}

	switch format {
	case FormatTOML:
		enc := toml.NewEncoder(w)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding toml document: %w", err)
		}
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml document: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding yaml document: %w", err)
		}
	}
	return nil
}
