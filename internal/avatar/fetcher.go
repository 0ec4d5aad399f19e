package avatar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

var (
	ErrInvalidURL = errors.New("invalid image URL")
	ErrBadFormat  = errors.New("unsupported image format, supported formats: JPEG, PNG, WebP, GIF")
	ErrTooLarge   = errors.New("image is too large")
	ErrNetwork    = errors.New("failed to download image")
	ErrTimeout    = errors.New("timed out downloading image")
)

const userAgent = "Mozilla/5.0 (compatible; AvatarBot/1.0)"

// MaxSourcePixels bounds the declared dimensions of a source image before it is decoded
const MaxSourcePixels = 4096 * 4096

var supportedFormats = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// IsClientError reports whether err was caused by the caller's input rather than the remote side
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrBadFormat) || errors.Is(err, ErrTooLarge)
}

// Image is a normalized avatar ready to be stored
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Fetcher downloads remote images and turns them into square PNG avatars
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	size     int
}

// NewFetcher creates a Fetcher producing size×size avatars from sources of at most maxBytes
func NewFetcher(timeout time.Duration, maxBytes int64, size int) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		size:     size,
	}
}

// FetchAndNormalizeImage downloads rawURL and returns it center-cropped and scaled to the avatar size
func (f *Fetcher) FetchAndNormalizeImage(ctx context.Context, rawURL string) (*Image, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: only HTTP and HTTPS URLs are supported", ErrInvalidURL)
	}

	data, err := f.download(ctx, u.String())
	if err != nil {
		return nil, err
	}

	if detected := mimetype.Detect(data).String(); !supportedFormats[detected] {
		return nil, fmt.Errorf("%w: content looks like %s", ErrBadFormat, detected)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrBadFormat)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d pixels exceeds limit of %d", ErrTooLarge, cfg.Width, cfg.Height, MaxSourcePixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropSquare(src, f.size)); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return &Image{Data: buf.Bytes(), ContentType: "image/png", Ext: ".png"}, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: remote returned %s", ErrNetwork, resp.Status)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, resp.ContentLength, f.maxBytes)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !supportedFormats[mediaType] {
		return nil, ErrBadFormat
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds limit of %d bytes", ErrTooLarge, f.maxBytes)
	}
	return data, nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// cropSquare scales src to cover a size×size square, keeping the center
func cropSquare(src image.Image, size int) image.Image {
	b := src.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}
