package service

import (
	"fmt"
	"math"

	"bitwise74/drive-api/model"
)

// CategoryUsage is the per-category slice of a usage report. Thumbnail
// bytes are folded into their file's category, a thumbnail never shows
// up as an image in someone's document stats.
type CategoryUsage struct {
	Bytes int64 `json:"bytes"`
	Count int64 `json:"count"`
}

// UsageReport is computed on demand from the metadata tables. There is
// no mutable usage ledger that can drift, what this reports is by
// construction what the tables say.
//
// Soft-deleted files still occupy physical storage, so they count.
// Hidden files are excluded throughout.
type UsageReport struct {
	TotalBytes          int64 `json:"total_bytes"`
	FilesOnlyBytes      int64 `json:"files_only_bytes"`
	ThumbnailsOnlyBytes int64 `json:"thumbnails_only_bytes"`
	TotalCount          int64 `json:"total_count"`

	LimitBytes     int64   `json:"limit_bytes"`
	RemainingBytes int64   `json:"remaining_bytes"`
	PercentUsed    float64 `json:"percent_used"`

	Categories map[string]CategoryUsage `json:"categories"`
}

func (f *Files) filesOnlyBytes(ownerID string) (int64, error) {
	var total int64

	err := f.DB.
		Model(model.File{}).
		Where("owner_id = ? AND is_hidden = ?", ownerID, false).
		Select("COALESCE(SUM(size_bytes), 0)").
		Scan(&total).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum file sizes, %w", err)
	}

	return total, nil
}

func (f *Files) thumbnailsOnlyBytes(ownerID string) (int64, error) {
	var total int64

	err := f.DB.
		Model(model.Thumbnail{}).
		Joins("INNER JOIN files ON files.id = thumbnails.file_id").
		Where("thumbnails.owner_id = ? AND files.is_hidden = ?", ownerID, false).
		Select("COALESCE(SUM(thumbnails.size_bytes), 0)").
		Scan(&total).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum thumbnail sizes, %w", err)
	}

	return total, nil
}

// totalBytes is the headline usage figure: primaries plus thumbnails,
// soft-deleted included, hidden excluded.
func (f *Files) totalBytes(ownerID string) (int64, error) {
	files, err := f.filesOnlyBytes(ownerID)
	if err != nil {
		return 0, err
	}

	thumbs, err := f.thumbnailsOnlyBytes(ownerID)
	if err != nil {
		return 0, err
	}

	return files + thumbs, nil
}

// Usage computes the full per-owner storage report.
func (f *Files) Usage(ownerID string) (*UsageReport, error) {
	if _, err := f.user(ownerID); err != nil {
		return nil, err
	}

	report := &UsageReport{
		LimitBytes: f.LimitBytes,
		Categories: map[string]CategoryUsage{
			model.TypeImage:    {},
			model.TypeVideo:    {},
			model.TypeDocument: {},
			model.TypeOther:    {},
		},
	}

	var err error

	report.FilesOnlyBytes, err = f.filesOnlyBytes(ownerID)
	if err != nil {
		return nil, err
	}

	report.ThumbnailsOnlyBytes, err = f.thumbnailsOnlyBytes(ownerID)
	if err != nil {
		return nil, err
	}

	report.TotalBytes = report.FilesOnlyBytes + report.ThumbnailsOnlyBytes

	var rows []struct {
		FileType string
		Bytes    int64
		Count    int64
	}

	err = f.DB.
		Model(model.File{}).
		Select("files.file_type AS file_type, COALESCE(SUM(files.size_bytes + COALESCE(thumbnails.size_bytes, 0)), 0) AS bytes, COUNT(files.id) AS count").
		Joins("LEFT JOIN thumbnails ON thumbnails.file_id = files.id").
		Where("files.owner_id = ? AND files.is_hidden = ?", ownerID, false).
		Group("files.file_type").
		Scan(&rows).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate category usage, %w", err)
	}

	for _, r := range rows {
		report.Categories[r.FileType] = CategoryUsage{
			Bytes: r.Bytes,
			Count: r.Count,
		}
		report.TotalCount += r.Count
	}

	if report.LimitBytes > 0 {
		remaining := report.LimitBytes - report.TotalBytes
		if remaining < 0 {
			remaining = 0
		}

		report.RemainingBytes = remaining
		report.PercentUsed = math.Round(float64(report.TotalBytes)/float64(report.LimitBytes)*100*100) / 100
	}

	return report, nil
}
