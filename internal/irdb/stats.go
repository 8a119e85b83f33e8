package irdb

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Stats summarizes one snapshot of the remote IR database.
type Stats struct {
	Total        int            `json:"total"`
	ByDeviceType map[string]int `json:"by_device_type"`
	ByBrand      map[string]int `json:"by_brand"`
}

// FetchArchive downloads the repository zip.
func FetchArchive(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// CollectStats walks the archive entries and counts .ir files in total, by
// device type (first directory under the repository root) and by brand
// (brand directory when present, otherwise the brand half of the
// "Brand_Model.ir" filename convention).
func CollectStats(archive []byte) (Stats, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{ByDeviceType: map[string]int{}, ByBrand: map[string]int{}}
	for _, file := range reader.File {
		if file.FileInfo().IsDir() || !strings.EqualFold(path.Ext(file.Name), ".ir") {
			continue
		}
		parts := strings.Split(path.Clean(file.Name), "/")
		// Root dir / device type / (brand dir /) file.
		if len(parts) < 3 {
			continue
		}

		stats.Total++
		stats.ByDeviceType[parts[1]]++

		brand, _ := SplitBrandAndModel(parts[len(parts)-1])
		if len(parts) >= 4 {
			brand = parts[2]
		}
		stats.ByBrand[brand]++
	}
	return stats, nil
}

// SplitBrandAndModel splits a "Brand_Model.ir" filename; files without an
// underscore yield the whole stem as the brand.
func SplitBrandAndModel(filename string) (string, string) {
	stem := strings.TrimSuffix(filename, path.Ext(filename))
	if brand, model, ok := strings.Cut(stem, "_"); ok {
		return brand, model
	}
	return stem, ""
}

// WriteStats persists stats as indented JSON.
func WriteStats(outputPath string, stats Stats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}
