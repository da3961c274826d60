package admin

import "github.com/tendant/simple-share/pkg/simpleshare"

// Pagination bounds applied to all listings.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// Stats is an aggregate snapshot over the whole metadata namespace. It is
// assembled from a full scan, so concurrent writes may or may not be
// reflected.
type Stats struct {
	TotalURLs      int64 `json:"total_urls"`
	TotalClicks    int64 `json:"total_clicks"`
	TotalFiles     int64 `json:"total_files"`
	TotalDownloads int64 `json:"total_downloads"`
	StorageUsed    int64 `json:"storage_used"`
}

// LinkPage is one page of link records plus the paging envelope.
type LinkPage struct {
	Links      []simpleshare.LinkRecord `json:"links"`
	Total      int                      `json:"total"`
	TotalPages int                      `json:"total_pages"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
}

// FilePage is one page of file records plus the paging envelope.
type FilePage struct {
	Files      []simpleshare.FileRecord `json:"files"`
	Total      int                      `json:"total"`
	TotalPages int                      `json:"total_pages"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
}

// TextPage is one page of text records plus the paging envelope.
type TextPage struct {
	Texts      []simpleshare.TextRecord `json:"texts"`
	Total      int                      `json:"total"`
	TotalPages int                      `json:"total_pages"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
}

// CleanupResult reports what an active expiry sweep removed.
type CleanupResult struct {
	RemovedLinks int `json:"removed_links"`
	RemovedFiles int `json:"removed_files"`
	RemovedTexts int `json:"removed_texts"`
	Removed      int `json:"removed"`
}
