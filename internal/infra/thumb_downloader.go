package infra

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

const thumbAssetBase = "https://warframe.market/static/assets/"

// ThumbDownloader handles downloading and caching item thumbnails
type ThumbDownloader struct {
	basePath string
	client   *http.Client
}

// NewThumbDownloader creates a new ThumbDownloader
func NewThumbDownloader() (*ThumbDownloader, error) {
	path, err := getAssetsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assets path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}

	// Optimize HTTP Transport to prevent connection leaks
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &ThumbDownloader{
		basePath: path,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

// DownloadThumb downloads the thumbnail for an item if it doesn't exist.
// thumb is the asset path from the catalog payload. Returns the local file
// path on success. Images are resized to 48x48 for a uniform cache.
func (d *ThumbDownloader) DownloadThumb(itemID, thumb string) (string, error) {
	// Security: Sanitize the identifier to prevent path traversal
	safeID := sanitizeItemID(itemID)
	if safeID == "" {
		return "", fmt.Errorf("invalid item id: %s", itemID)
	}
	if thumb == "" {
		return "", fmt.Errorf("no thumbnail asset for %s", itemID)
	}

	fileName := safeID + ".png"
	filePath := filepath.Join(d.basePath, fileName)

	// Check if exists
	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil // Already exists (Cache Hit)
	}

	resp, err := d.client.Get(thumbAssetBase + strings.TrimPrefix(thumb, "/"))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	// Decode the image
	srcImg, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Resize with high-quality Lanczos filter
	resizedImg := imaging.Resize(srcImg, 48, 48, imaging.Lanczos)

	// Save the resized image
	if err := imaging.Save(resizedImg, filePath); err != nil {
		return "", fmt.Errorf("failed to save resized image: %w", err)
	}

	return filePath, nil
}

// GetThumbPath returns the local path for an item's thumbnail
func (d *ThumbDownloader) GetThumbPath(itemID string) string {
	return filepath.Join(d.basePath, sanitizeItemID(itemID)+".png")
}

func getAssetsPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "Platwatch", "assets", "thumbs"), nil
}

func sanitizeItemID(id string) string {
	res := make([]rune, 0, len(id))
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			res = append(res, r)
		}
	}
	return string(res)
}
