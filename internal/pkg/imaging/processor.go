package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	ErrTooLarge    = errors.New("image exceeds the upload limit")
	ErrUnsupported = errors.New("unsupported image type")
)

// MaxFileSize in bytes (10MB)
const MaxFileSize int64 = 10 * 1024 * 1024

// Processed is an upload ready to forward to the classifier.
type Processed struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	Resized     bool
}

// Config for upload normalisation
type Config struct {
	MaxSide int // longest edge after resizing (default 1024)
	Quality int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxSide: 1024,
		Quality: 85,
	}
}

// Processor normalises photos before analysis
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	def := DefaultConfig()
	if config.MaxSide <= 0 {
		config.MaxSide = def.MaxSide
	}
	if config.Quality <= 0 || config.Quality > 100 {
		config.Quality = def.Quality
	}
	return &Processor{config: config}
}

// Normalize decodes an upload, applies EXIF orientation, fits it inside
// MaxSide x MaxSide and re-encodes it as JPEG.
func (p *Processor) Normalize(reader io.Reader) (*Processed, error) {
	data, err := io.ReadAll(io.LimitReader(reader, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, ErrTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	result := &Processed{
		ContentType: "image/jpeg",
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
	}

	// Resize if too large
	if result.Width > p.config.MaxSide || result.Height > p.config.MaxSide {
		img = imaging.Fit(img, p.config.MaxSide, p.config.MaxSide, imaging.Lanczos)
		result.Width = img.Bounds().Dx()
		result.Height = img.Bounds().Dy()
		result.Resized = true
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.config.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	result.Data = buf.Bytes()

	return result, nil
}

// ValidateType checks if file is an image type the decoder understands
func ValidateType(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff":
		return true
	default:
		return false
	}
}

// JPEGName swaps the extension for .jpg after re-encoding.
func JPEGName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." || base == "/" {
		base = "upload"
	}
	return base + ".jpg"
}
