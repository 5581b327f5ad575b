package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raushankrgupta/marketchoice-admin/store"
)

// MaxImageBytes caps downloaded and uploaded images.
const MaxImageBytes = 10 << 20

// NewBlobID returns a fresh id for an image blob.
func NewBlobID() string {
	return uuid.New().String()
}

// MirrorImage downloads imageURL and stores it as a new blob, returning the blob id.
func MirrorImage(ctx context.Context, client *http.Client, blobs store.Blobs, imageURL string) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (macOS) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("image larger than %d bytes", MaxImageBytes)
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("not an image (%s)", ct)
	}

	id := NewBlobID()
	if err := blobs.PutBlob(ctx, id, data); err != nil {
		return "", err
	}
	return id, nil
}
