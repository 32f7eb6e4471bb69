package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"

	"github.com/lymphly/vps-ai-bridge/internal/metrics"
)

const (
	// MaxImageDimension bounds both sides of the image sent to the model.
	MaxImageDimension = 1600
	// JPEGQuality is the fixed re-encode quality.
	JPEGQuality = 82
	// PreparedMIMEType is the single canonical format sent to the model.
	PreparedMIMEType = "image/jpeg"
	// maxSourcePixels rejects decompression bombs before a full decode.
	maxSourcePixels = 40_000_000

	preparedExt = ".jpg"
)

// PreparedImage is the normalized image ready for the model.
type PreparedImage struct {
	Data     []byte
	MIMEType string
	Path     string // temp store path, owned by the preprocessor/reclaimer pair
	Width    int
	Height   int
	SHA256   string // hex digest of Data
}

// ImagePreprocessor decodes, orients, bounds and re-encodes client images and
// persists the result in the temp store.
type ImagePreprocessor struct {
	tempDir  string
	maxBytes int64
	now      func() time.Time
}

// NewImagePreprocessor creates a preprocessor writing into tempDir, creating
// the directory if needed.
func NewImagePreprocessor(tempDir string, maxBytes int64) (*ImagePreprocessor, error) {
	if err := os.MkdirAll(tempDir, 0o700); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &ImagePreprocessor{
		tempDir:  tempDir,
		maxBytes: maxBytes,
		now:      time.Now,
	}, nil
}

// TempDir returns the temp store directory.
func (p *ImagePreprocessor) TempDir() string {
	return p.tempDir
}

// Prepare turns a base64 (optionally data-URI) payload into a bounded JPEG
// stored under a unique name. On any error no file is left behind.
func (p *ImagePreprocessor) Prepare(rawBase64 string) (*PreparedImage, error) {
	raw, err := DecodeBase64Image(rawBase64)
	if err != nil {
		return nil, err
	}
	if p.maxBytes > 0 && int64(len(raw)) > p.maxBytes {
		return nil, InputError(fmt.Sprintf("image exceeds %d bytes", p.maxBytes), nil)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, InputError("unsupported image format", err)
		}
		return nil, InputError("image could not be decoded", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxSourcePixels {
		return nil, InputError("image dimensions out of range", nil)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, InputError("image could not be decoded", err)
	}

	// Fit never upscales images already inside the box.
	img = imaging.Fit(img, MaxImageDimension, MaxImageDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, ProcessingError("image processing failed", err)
	}
	data := buf.Bytes()

	path, err := p.persist(data)
	if err != nil {
		return nil, ProcessingError("image processing failed", err)
	}

	sum := sha256.Sum256(data)
	bounds := img.Bounds()
	return &PreparedImage{
		Data:     data,
		MIMEType: PreparedMIMEType,
		Path:     path,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		SHA256:   hex.EncodeToString(sum[:]),
	}, nil
}

// persist writes data under a collision-resistant name (timestamp + random id).
func (p *ImagePreprocessor) persist(data []byte) (string, error) {
	name := fmt.Sprintf("%d-%s%s", p.now().UnixMilli(), uuid.NewString(), preparedExt)
	path := filepath.Join(p.tempDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp image: %w", err)
	}

	metrics.TempFilesWrittenTotal.Inc()
	return path, nil
}

// Discard removes a prepared image from the temp store. Missing files are ignored.
func (p *ImagePreprocessor) Discard(img *PreparedImage) {
	if img == nil || img.Path == "" {
		return
	}
	if err := os.Remove(img.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("file", filepath.Base(img.Path)).Msg("preprocessor: failed to discard temp image")
	}
}

// DecodeBase64Image strips an optional data-URI prefix and decodes standard,
// unpadded or URL-safe base64.
func DecodeBase64Image(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if idx := strings.IndexByte(s, ','); idx != -1 {
			s = s[idx+1:]
		}
	}
	// Clients sometimes wrap base64 at 76 columns.
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)

	if s == "" {
		return nil, InputError("image_base64 is empty", ErrEmptyImage)
	}

	var (
		data []byte
		err  error
	)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err = enc.DecodeString(s); err == nil {
			break
		}
	}
	if err != nil {
		return nil, InputError("image_base64 is not valid base64", err)
	}
	if len(data) == 0 {
		return nil, InputError("image_base64 is empty", ErrEmptyImage)
	}
	return data, nil
}
