package loadgate

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Default fetch limits.
const (
	DefaultMaxBytes  = 32 << 20 // 32MiB encoded
	DefaultMaxPixels = 8192     // per side
)

// Fetcher loads and decodes the image for a source string.
type Fetcher interface {
	Fetch(ctx context.Context, src string) (*Image, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, src string) (*Image, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, src string) (*Image, error) {
	return f(ctx, src)
}

// DefaultFetcher reads http(s) URLs, file:// URLs, data: URIs and plain
// paths. Relative paths resolve against BaseDir.
type DefaultFetcher struct {
	// Client is used for http and https sources. Nil uses http.DefaultClient.
	Client *http.Client

	// BaseDir resolves relative paths. Empty means the working directory.
	BaseDir string

	// MaxBytes caps the encoded size. Zero uses DefaultMaxBytes.
	MaxBytes int64

	// MaxPixels caps each decoded side. Zero uses DefaultMaxPixels.
	MaxPixels int
}

// Fetch implements Fetcher.
func (f *DefaultFetcher) Fetch(ctx context.Context, src string) (*Image, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmptySource
	}

	data, err := f.read(ctx, src)
	if err != nil {
		return nil, err
	}
	return f.Decode(src, data)
}

// Decode sniffs and decodes encoded image bytes.
func (f *DefaultFetcher) Decode(src string, data []byte) (*Image, error) {
	if !filetype.IsImage(data) {
		return nil, &FetchError{Src: src, Op: "sniff", Err: ErrNotImage}
	}
	kind, _ := filetype.Match(data)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &FetchError{Src: src, Op: "decode", Err: err}
	}
	limit := f.maxPixels()
	if cfg.Width > limit || cfg.Height > limit {
		return nil, &FetchError{
			Src: src,
			Op:  "decode",
			Err: fmt.Errorf("%w: %dx%d (max %dx%d)", ErrTooLarge, cfg.Width, cfg.Height, limit, limit),
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &FetchError{Src: src, Op: "decode", Err: err}
	}
	return NewImage(src, kind.Extension, img, int64(len(data))), nil
}

func (f *DefaultFetcher) read(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		return f.readDataURI(src)
	}

	u, err := url.Parse(src)
	if err != nil || len(u.Scheme) <= 1 {
		// Not a URL, or a Windows drive letter.
		return f.readFile(src)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.readHTTP(ctx, u.String())
	case "file":
		return f.readFile(u.Path)
	default:
		return nil, &FetchError{Src: src, Op: "open", Err: fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)}
	}
}

func (f *DefaultFetcher) readHTTP(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, &FetchError{Src: src, Op: "get", Err: err}
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Src: src, Op: "get", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Src: src, Op: "get", Err: fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)}
	}
	return f.readLimited(src, resp.Body)
}

func (f *DefaultFetcher) readFile(path string) ([]byte, error) {
	full := path
	if !filepath.IsAbs(full) && f.BaseDir != "" {
		full = filepath.Join(f.BaseDir, full)
	}
	file, err := os.Open(full)
	if err != nil {
		return nil, &FetchError{Src: path, Op: "open", Err: err}
	}
	defer file.Close()
	return f.readLimited(path, file)
}

// readDataURI decodes data:[<mediatype>][;base64],<data>.
func (f *DefaultFetcher) readDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, &FetchError{Src: "data:", Op: "parse", Err: errors.New("missing comma in data URI")}
	}
	var data []byte
	var err error
	if strings.HasSuffix(meta, ";base64") {
		data, err = base64.StdEncoding.DecodeString(payload)
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		data = []byte(s)
	}
	if err != nil {
		return nil, &FetchError{Src: "data:", Op: "parse", Err: err}
	}
	if int64(len(data)) > f.maxBytes() {
		return nil, &FetchError{Src: "data:", Op: "read", Err: ErrTooLarge}
	}
	return data, nil
}

func (f *DefaultFetcher) readLimited(src string, r io.Reader) ([]byte, error) {
	limit := f.maxBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, &FetchError{Src: src, Op: "read", Err: err}
	}
	if int64(len(data)) > limit {
		return nil, &FetchError{Src: src, Op: "read", Err: fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)}
	}
	return data, nil
}

func (f *DefaultFetcher) maxBytes() int64 {
	if f.MaxBytes > 0 {
		return f.MaxBytes
	}
	return DefaultMaxBytes
}

func (f *DefaultFetcher) maxPixels() int {
	if f.MaxPixels > 0 {
		return f.MaxPixels
	}
	return DefaultMaxPixels
}
