package simpleshare

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Defaults applied by New when the corresponding option is not supplied.
const (
	DefaultMaxFileSize = 10 << 20 // 10 MiB
	DefaultMaxTextSize = 1 << 20  // 1 MiB

	// analyticsRetention bounds the daily per-code click counters.
	analyticsRetention = 30 * 24 * time.Hour
)

// service implements the Service interface
type service struct {
	meta       KVStore
	analytics  KVStore
	blobs      BlobStore
	now        func() time.Time
	maxFile    int64
	maxText    int64
	codeLength int
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithMetadataStore sets the metadata store for the service
func WithMetadataStore(kv KVStore) Option {
	return func(s *service) {
		s.meta = kv
	}
}

// WithAnalyticsStore sets a separate store for daily click counters. When
// unset, counters share the metadata store.
func WithAnalyticsStore(kv KVStore) Option {
	return func(s *service) {
		s.analytics = kv
	}
}

// WithBlobStore sets the payload storage backend
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobs = store
	}
}

// WithClock sets the time source used for creation timestamps and expiry
// checks. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithMaxFileSize sets the upload size limit in bytes
func WithMaxFileSize(limit int64) Option {
	return func(s *service) {
		s.maxFile = limit
	}
}

// WithMaxTextSize sets the paste size limit in bytes
func WithMaxTextSize(limit int64) Option {
	return func(s *service) {
		s.maxText = limit
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		now:        func() time.Time { return time.Now().UTC() },
		maxFile:    DefaultMaxFileSize,
		maxText:    DefaultMaxTextSize,
		codeLength: DefaultCodeLength,
	}

	for _, option := range options {
		option(s)
	}

	if s.meta == nil {
		return nil, fmt.Errorf("metadata store is required")
	}
	if s.blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.analytics == nil {
		s.analytics = s.meta
	}

	return s, nil
}

// Shared helpers

// expiryFromDays computes the fixed expiry instant for a requested duration
// in days. Non-positive days means no expiry. The instant is computed once
// at creation and never recomputed.
func (s *service) expiryFromDays(days int) *time.Time {
	if days <= 0 {
		return nil
	}
	t := s.now().AddDate(0, 0, days)
	return &t
}

// hashPassword returns the hex-encoded SHA-256 digest of the password. Only
// the digest is ever persisted.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// verifyPassword applies the password portion of the access gate: a
// protected record read without a password is ErrPasswordRequired, a
// mismatch against the stored hash is ErrPasswordIncorrect.
func (s *service) verifyPassword(ctx context.Context, hashKey, password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	stored, err := s.meta.Get(ctx, hashKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			// hasPassword without a companion hash; treat as mismatch
			// rather than letting the read through.
			return ErrPasswordIncorrect
		}
		return &StoreError{Key: hashKey, Op: "get", Err: err}
	}
	supplied := hashPassword(password)
	if subtle.ConstantTimeCompare([]byte(supplied), stored) != 1 {
		return ErrPasswordIncorrect
	}
	return nil
}

func (s *service) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &StoreError{Key: key, Op: "marshal", Err: err}
	}
	if err := s.meta.Put(ctx, key, data); err != nil {
		return &StoreError{Key: key, Op: "put", Err: err}
	}
	return nil
}

func (s *service) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.meta.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return err
		}
		return &StoreError{Key: key, Op: "get", Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &StoreError{Key: key, Op: "unmarshal", Err: err}
	}
	return nil
}

func (s *service) deleteKey(ctx context.Context, key string) error {
	if err := s.meta.Delete(ctx, key); err != nil {
		return &StoreError{Key: key, Op: "delete", Err: err}
	}
	return nil
}
