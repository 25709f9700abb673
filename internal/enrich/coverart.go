package enrich

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/image/draw"

	"github.com/MrSnakeDoc/disco/internal/utils"
)

const (
	DefaultCoverArtURL  = "https://coverartarchive.org"
	DefaultProbeTimeout = 5 * time.Second

	// ThumbnailSize bounds both sides of an embedded cover.
	ThumbnailSize = 200
	// ThumbnailQuality is the JPEG quality of embedded covers.
	ThumbnailQuality = 80
	// MaxImageBytes caps a downloaded image.
	MaxImageBytes = 10 << 20
	// MaxImageSide caps either dimension of an image accepted for thumbnailing.
	MaxImageSide = 8000
)

// ErrNotImage is returned when a download does not look like an image.
var ErrNotImage = errors.New("not an image")

// ErrImageTooLarge is returned when an image declares dimensions past MaxImageSide.
var ErrImageTooLarge = errors.New("image too large")

var dataURL = regexp.MustCompile(`^data:([^;,]+);base64,(.+)$`)

// CoversConfig configures cover art probing and downloads.
type CoversConfig struct {
	BaseURL      string
	UserAgent    string
	ProbeTimeout time.Duration
	Timeout      time.Duration
}

// Covers checks for, downloads and shrinks cover art.
type Covers struct {
	baseURL   string
	userAgent string
	probe     *http.Client
	client    *http.Client
}

// NewCovers creates a cover art helper. Zero config fields take their defaults.
func NewCovers(cfg CoversConfig) *Covers {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCoverArtURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Covers{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		probe: &http.Client{
			Timeout: cfg.ProbeTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// A redirect to the image host already proves the cover exists
				return http.ErrUseLastResponse
			},
		},
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// FrontURL is the deterministic front-cover URL of a release.
func (c *Covers) FrontURL(releaseID string) string {
	return c.baseURL + "/release/" + url.PathEscape(releaseID) + "/front"
}

// Exists reports whether the front cover of a release can be fetched.
// Any transport failure counts as "no cover".
func (c *Covers) Exists(ctx context.Context, releaseID string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.FrontURL(releaseID), http.NoBody)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.probe.Do(req)
	if err != nil {
		return false
	}
	defer utils.DrainClose(resp.Body)
	return resp.StatusCode < 400
}

// Download fetches an image and returns it as a data URL.
func (c *Covers) Download(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid image url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer utils.DrainClose(resp.Body)

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("download image: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(body) > MaxImageBytes {
		return "", fmt.Errorf("image larger than %d bytes", MaxImageBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mt
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(body)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, contentType)
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}

// DownloadThumbnail downloads an image and shrinks it for embedding.
func (c *Covers) DownloadThumbnail(ctx context.Context, rawURL string) (string, error) {
	data, err := c.Download(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return Thumbnail(data), nil
}

// Thumbnail scales a data URL image to fit inside ThumbnailSize x ThumbnailSize,
// never enlarging, and re-encodes it as JPEG. Input that cannot be decoded is
// returned unchanged.
func Thumbnail(data string) string {
	out, err := thumbnail(data, ThumbnailSize, ThumbnailSize)
	if err != nil {
		return data
	}
	return out
}

func thumbnail(data string, maxW, maxH int) (string, error) {
	m := dataURL.FindStringSubmatch(data)
	if m == nil {
		return "", errors.New("not a base64 data url")
	}
	raw, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxImageSide || cfg.Height > MaxImageSide {
		return "", fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height, MaxImageSide, MaxImageSide)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	w, h := fitInside(src.Bounds().Dx(), src.Bounds().Dy(), maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: ThumbnailQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// fitInside returns the largest size with the same aspect ratio as w x h that
// fits in maxW x maxH, without enlarging.
func fitInside(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	if w*maxH > h*maxW {
		return maxW, max(1, h*maxW/w)
	}
	return max(1, w*maxH/h), maxH
}
