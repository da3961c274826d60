package simpleshare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Link operations

func (s *service) CreateLink(ctx context.Context, req CreateLinkRequest) (*LinkRecord, error) {
	if !validAddress(req.Address) {
		return nil, ErrInvalidAddress
	}

	code := strings.TrimSpace(req.CustomCode)
	if code != "" {
		// Check-then-write: two concurrent claims of the same custom code
		// can both pass this check. Accepted as a documented limitation;
		// the store offers no create-if-absent primitive.
		_, err := s.meta.Get(ctx, linkKey(code))
		switch {
		case err == nil:
			return nil, ErrCodeTaken
		case !errors.Is(err, ErrKeyNotFound):
			return nil, &StoreError{Key: linkKey(code), Op: "get", Err: err}
		}
	} else {
		var err error
		code, err = s.uniqueCode(ctx)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	record := &LinkRecord{
		ID:        fmt.Sprintf("%d-%s", now.UnixMilli(), code),
		Code:      code,
		Address:   req.Address,
		Clicks:    0,
		CreatedAt: now,
		ExpiresAt: s.expiryFromDays(req.ExpirationDays),
	}

	if err := s.putJSON(ctx, linkKey(code), record); err != nil {
		return nil, err
	}

	// Secondary index entry for admin listing; its TTL mirrors the record's
	// expiry so the store drops it on its own.
	if err := s.putListEntry(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *service) GetLink(ctx context.Context, code string) (*LinkRecord, error) {
	record, err := s.getLinkRecord(ctx, code)
	if err != nil {
		return nil, err
	}
	if record.Expired(s.now()) {
		if err := s.removeLink(ctx, record); err != nil {
			return nil, err
		}
		return nil, ErrLinkExpired
	}
	return record, nil
}

func (s *service) ResolveLink(ctx context.Context, code string) (string, error) {
	record, err := s.getLinkRecord(ctx, code)
	if err != nil {
		return "", err
	}
	if record.Expired(s.now()) {
		if err := s.removeLink(ctx, record); err != nil {
			return "", err
		}
		return "", ErrLinkExpired
	}

	// Read-modify-write; concurrent resolves may lose an increment.
	record.Clicks++
	if err := s.putJSON(ctx, linkKey(code), record); err != nil {
		return "", err
	}

	s.trackClick(ctx, code)

	return record.Address, nil
}

func (s *service) DeleteLink(ctx context.Context, code string) error {
	record, err := s.getLinkRecord(ctx, code)
	if err != nil {
		return err
	}
	return s.removeLink(ctx, record)
}

// Helpers

func validAddress(address string) bool {
	u, err := url.Parse(address)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// uniqueCode draws random codes until one is free.
func (s *service) uniqueCode(ctx context.Context) (string, error) {
	for {
		code, err := generateCode(s.codeLength)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		_, err = s.meta.Get(ctx, linkKey(code))
		if errors.Is(err, ErrKeyNotFound) {
			return code, nil
		}
		if err != nil {
			return "", &StoreError{Key: linkKey(code), Op: "get", Err: err}
		}
	}
}

func (s *service) getLinkRecord(ctx context.Context, code string) (*LinkRecord, error) {
	var record LinkRecord
	if err := s.getJSON(ctx, linkKey(code), &record); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *service) putListEntry(ctx context.Context, record *LinkRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return &StoreError{Key: linkListKey(record.ID), Op: "marshal", Err: err}
	}
	key := linkListKey(record.ID)
	if record.ExpiresAt != nil {
		ttl := record.ExpiresAt.Sub(s.now())
		if err := s.meta.PutWithTTL(ctx, key, data, ttl); err != nil {
			return &StoreError{Key: key, Op: "put", Err: err}
		}
		return nil
	}
	if err := s.meta.Put(ctx, key, data); err != nil {
		return &StoreError{Key: key, Op: "put", Err: err}
	}
	return nil
}

// removeLink deletes the primary record and its listing index entry.
func (s *service) removeLink(ctx context.Context, record *LinkRecord) error {
	if err := s.deleteKey(ctx, linkKey(record.Code)); err != nil {
		return err
	}
	return s.deleteKey(ctx, linkListKey(record.ID))
}

// trackClick bumps the coarse daily counter for the code. Best-effort: a
// failed analytics write never fails the redirect.
func (s *service) trackClick(ctx context.Context, code string) {
	key := clicksKey(s.now(), code)
	count := int64(0)
	if data, err := s.analytics.Get(ctx, key); err == nil {
		count, _ = strconv.ParseInt(string(data), 10, 64)
	}
	value := []byte(strconv.FormatInt(count+1, 10))
	_ = s.analytics.PutWithTTL(ctx, key, value, analyticsRetention)
}
