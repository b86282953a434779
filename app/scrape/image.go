package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/disintegration/imaging"
)

// Thumbnails larger than this edge get scaled down before upload.
const maxThumbnailEdge = 1000

// ImageAsset is a downloaded thumbnail candidate. Never persisted.
type ImageAsset struct {
	Data        []byte
	ContentType string
}

type Thumbnailer struct {
	httpClient *http.Client
	userAgent  string
}

func NewThumbnailer(httpClient *http.Client, userAgent string) *Thumbnailer {
	return &Thumbnailer{httpClient: httpClient, userAgent: userAgent}
}

// FetchImage downloads the image and bounds it to the thumbnail box. Download
// failure is returned to the caller; resize failure falls back to the
// original bytes.
func (t *Thumbnailer) FetchImage(ctx context.Context, imageURL string) (*ImageAsset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}

	asset := &ImageAsset{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}

	return boundImage(asset), nil
}

// boundImage scales the image to fit within the thumbnail box, long edge
// capped at maxThumbnailEdge with aspect ratio preserved, and re-encodes it
// as JPEG. The original asset is returned unchanged when the bytes cannot be
// decoded or re-encoded.
func boundImage(asset *ImageAsset) *ImageAsset {
	img, err := imaging.Decode(bytes.NewReader(asset.Data))
	if err != nil {
		slog.Debug("Thumbnail decode failed, keeping original bytes", "content_type", asset.ContentType, "error", err)
		return asset
	}

	bounded := imaging.Fit(img, maxThumbnailEdge, maxThumbnailEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, bounded, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		slog.Debug("Thumbnail encode failed, keeping original bytes", "error", err)
		return asset
	}

	return &ImageAsset{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
	}
}
