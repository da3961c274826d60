package simpleshare

import "time"

// LinkRecord is the persisted metadata for a shortened link. The payload is
// the target address itself, stored inline.
type LinkRecord struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Address   string     `json:"address"`
	Clicks    int64      `json:"clicks"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// FileRecord is the persisted metadata for a shared file. The payload is
// stored in the blob store under StoredFilename.
type FileRecord struct {
	ID             string     `json:"id"`
	StoredFilename string     `json:"stored_filename"`
	OriginalName   string     `json:"original_name"`
	ContentType    string     `json:"content_type"`
	Size           int64      `json:"size"`
	Downloads      int64      `json:"downloads"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	HasPassword    bool       `json:"has_password"`
}

// TextRecord is the persisted metadata for a text paste. The payload is
// stored in the blob store keyed by the record id.
type TextRecord struct {
	ID          string     `json:"id"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	Views       int64      `json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	HasPassword bool       `json:"has_password"`
}

// Expired reports whether the record's expiry, if set, is at or before now.
func (r *LinkRecord) Expired(now time.Time) bool { return expired(r.ExpiresAt, now) }

// Expired reports whether the record's expiry, if set, is at or before now.
func (r *FileRecord) Expired(now time.Time) bool { return expired(r.ExpiresAt, now) }

// Expired reports whether the record's expiry, if set, is at or before now.
func (r *TextRecord) Expired(now time.Time) bool { return expired(r.ExpiresAt, now) }

func expired(expiresAt *time.Time, now time.Time) bool {
	return expiresAt != nil && !now.Before(*expiresAt)
}
