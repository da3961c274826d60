// Package admin aggregates over the flat metadata namespace: usage stats,
// paginated listings, forced deletions and the active expiry sweep. All
// reads are prefix scans of the metadata store; deletions are routed
// through the owning content service so payloads and password hashes are
// removed together.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tendant/simple-share/pkg/simpleshare"
)

// Service exposes the administrative operations. All of them operate on
// live data without locking, so results are best-effort snapshots.
type Service interface {
	// Stats scans the full namespace and aggregates counts and sizes.
	Stats(ctx context.Context) (*Stats, error)

	// ListLinks returns one page of link records.
	ListLinks(ctx context.Context, page, limit int) (*LinkPage, error)
	// ListFiles returns one page of file records.
	ListFiles(ctx context.Context, page, limit int) (*FilePage, error)
	// ListTexts returns one page of text records.
	ListTexts(ctx context.Context, page, limit int) (*TextPage, error)

	// DeleteLink removes a link through the content service.
	DeleteLink(ctx context.Context, code string) error
	// DeleteFile removes a file through the content service.
	DeleteFile(ctx context.Context, id string) error
	// DeleteText removes a text through the content service.
	DeleteText(ctx context.Context, id string) error

	// Cleanup sweeps every record and removes the expired ones.
	Cleanup(ctx context.Context) (*CleanupResult, error)
}

type service struct {
	meta    simpleshare.KVStore
	content simpleshare.Service
	now     func() time.Time
}

// Option represents a functional option for configuring the admin service
type Option func(*service)

// WithMetadataStore sets the metadata store scanned by listings and stats
func WithMetadataStore(kv simpleshare.KVStore) Option {
	return func(s *service) {
		s.meta = kv
	}
}

// WithContentService sets the content service used for deletions
func WithContentService(content simpleshare.Service) Option {
	return func(s *service) {
		s.content = content
	}
}

// WithClock sets the time source used for expiry checks. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new admin service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		now: func() time.Time { return time.Now().UTC() },
	}

	for _, option := range options {
		option(s)
	}

	if s.meta == nil {
		return nil, fmt.Errorf("metadata store is required")
	}
	if s.content == nil {
		return nil, fmt.Errorf("content service is required")
	}

	return s, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	linkKeys, err := s.recordKeys(ctx, simpleshare.LinkKeyPrefix)
	if err != nil {
		return nil, err
	}
	for _, key := range linkKeys {
		var record simpleshare.LinkRecord
		if err := s.getRecord(ctx, key, &record); err != nil {
			continue // deleted between scan and read
		}
		stats.TotalURLs++
		stats.TotalClicks += record.Clicks
	}

	fileKeys, err := s.recordKeys(ctx, simpleshare.FileKeyPrefix)
	if err != nil {
		return nil, err
	}
	for _, key := range fileKeys {
		var record simpleshare.FileRecord
		if err := s.getRecord(ctx, key, &record); err != nil {
			continue
		}
		stats.TotalFiles++
		stats.TotalDownloads += record.Downloads
		stats.StorageUsed += record.Size
	}

	textKeys, err := s.recordKeys(ctx, simpleshare.TextKeyPrefix)
	if err != nil {
		return nil, err
	}
	for _, key := range textKeys {
		var record simpleshare.TextRecord
		if err := s.getRecord(ctx, key, &record); err != nil {
			continue
		}
		stats.StorageUsed += record.Size
	}

	return stats, nil
}

func (s *service) ListLinks(ctx context.Context, page, limit int) (*LinkPage, error) {
	// Page over the primary url: records, not the list: index copies. The
	// index entries are frozen at creation time; the primary records carry
	// the live click counters.
	keys, err := s.recordKeys(ctx, simpleshare.LinkKeyPrefix)
	if err != nil {
		return nil, err
	}
	page, limit, totalPages, window := paginate(keys, page, limit)

	links := make([]simpleshare.LinkRecord, 0, len(window))
	for _, key := range window {
		var record simpleshare.LinkRecord
		if err := s.getRecord(ctx, key, &record); err != nil {
			continue
		}
		links = append(links, record)
	}

	return &LinkPage{Links: links, Total: len(keys), TotalPages: totalPages, Page: page, Limit: limit}, nil
}

func (s *service) ListFiles(ctx context.Context, page, limit int) (*FilePage, error) {
	keys, err := s.recordKeys(ctx, simpleshare.FileKeyPrefix)
	if err != nil {
		return nil, err
	}
	page, limit, totalPages, window := paginate(keys, page, limit)

	files := make([]simpleshare.FileRecord, 0, len(window))
	for _, key := range window {
		var record simpleshare.FileRecord
		if err := s.getRecord(ctx, key, &record); err != nil {
			continue
		}
		files = append(files, record)
	}

	return &FilePage{Files: files, Total: len(keys), TotalPages: totalPages, Page: page, Limit: limit}, nil
}

func (s *service) ListTexts(ctx context.Context, page, limit int) (*TextPage, error) {
	keys, err := s.recordKeys(ctx, simpleshare.TextKeyPrefix)
	if err != nil {
		return nil, err
	}
	page, limit, totalPages, window := paginate(keys, page, limit)

	texts := make([]simpleshare.TextRecord, 0, len(window))
	for _, key := range window {
		var record simpleshare.TextRecord
		if err := s.getRecord(ctx, key, &record); err != nil {
			continue
		}
		texts = append(texts, record)
	}

	return &TextPage{Texts: texts, Total: len(keys), TotalPages: totalPages, Page: page, Limit: limit}, nil
}

func (s *service) DeleteLink(ctx context.Context, code string) error {
	return s.content.DeleteLink(ctx, code)
}

func (s *service) DeleteFile(ctx context.Context, id string) error {
	return s.content.DeleteFile(ctx, id)
}

func (s *service) DeleteText(ctx context.Context, id string) error {
	return s.content.DeleteText(ctx, id)
}

func (s *service) Cleanup(ctx context.Context) (*CleanupResult, error) {
	result := &CleanupResult{}
	now := s.now()

	linkKeys, err := s.recordKeys(ctx, simpleshare.LinkKeyPrefix)
	if err != nil {
		return nil, err
	}
	for _, key := range linkKeys {
		var record simpleshare.LinkRecord
		if err := s.getRecord(ctx, key, &record); err != nil {
			continue
		}
		if !record.Expired(now) {
			continue
		}
		if err := s.content.DeleteLink(ctx, record.Code); err != nil {
			return nil, err
		}
		result.RemovedLinks++
	}

	fileKeys, err := s.recordKeys(ctx, simpleshare.FileKeyPrefix)
	if err != nil {
		return nil, err
	}
	for _, key := range fileKeys {
		var record simpleshare.FileRecord
		if err := s.getRecord(ctx, key, &record); err != nil {
			continue
		}
		if !record.Expired(now) {
			continue
		}
		if err := s.content.DeleteFile(ctx, record.ID); err != nil {
			return nil, err
		}
		result.RemovedFiles++
	}

	textKeys, err := s.recordKeys(ctx, simpleshare.TextKeyPrefix)
	if err != nil {
		return nil, err
	}
	for _, key := range textKeys {
		var record simpleshare.TextRecord
		if err := s.getRecord(ctx, key, &record); err != nil {
			continue
		}
		if !record.Expired(now) {
			continue
		}
		if err := s.content.DeleteText(ctx, record.ID); err != nil {
			return nil, err
		}
		result.RemovedTexts++
	}

	result.Removed = result.RemovedLinks + result.RemovedFiles + result.RemovedTexts
	return result, nil
}

// recordKeys lists the prefix and drops password-hash companions, which
// share the primary prefix but are not records.
func (s *service) recordKeys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.meta.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	records := keys[:0]
	for _, key := range keys {
		if strings.HasSuffix(key, simpleshare.PasswordSuffix) {
			continue
		}
		records = append(records, key)
	}
	return records, nil
}

func (s *service) getRecord(ctx context.Context, key string, v any) error {
	data, err := s.meta.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// paginate clamps page and limit and slices one window out of the key
// snapshot. Total, totalPages and window all come from the same snapshot,
// so concatenating consecutive pages taken against an unchanged store
// yields every record exactly once.
func paginate(keys []string, page, limit int) (int, int, int, []string) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	totalPages := (len(keys) + limit - 1) / limit

	start := (page - 1) * limit
	if start >= len(keys) {
		return page, limit, totalPages, nil
	}
	end := start + limit
	if end > len(keys) {
		end = len(keys)
	}
	return page, limit, totalPages, keys[start:end]
}
