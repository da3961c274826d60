package simpleshare

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Text operations

func (s *service) CreateText(ctx context.Context, req CreateTextRequest) (*TextRecord, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}
	if int64(len(req.Content)) > s.maxText {
		return nil, ErrTooLarge
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "text/plain"
	}

	id := uuid.NewString()
	now := s.now()
	record := &TextRecord{
		ID:          id,
		ContentType: contentType,
		Size:        int64(len(req.Content)),
		Views:       0,
		CreatedAt:   now,
		ExpiresAt:   s.expiryFromDays(req.ExpirationDays),
		HasPassword: req.Password != "",
	}

	objectKey := textObjectKey(id)
	err := s.blobs.UploadWithParams(ctx, strings.NewReader(req.Content), UploadParams{
		ObjectKey: objectKey,
		MimeType:  contentType,
	})
	if err != nil {
		return nil, &StorageError{Key: objectKey, Op: "upload", Err: err}
	}

	if req.Password != "" {
		hash := []byte(hashPassword(req.Password))
		if err := s.meta.Put(ctx, textPassKey(id), hash); err != nil {
			return nil, &StoreError{Key: textPassKey(id), Op: "put", Err: err}
		}
	}

	if err := s.putJSON(ctx, textKey(id), record); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *service) FetchText(ctx context.Context, id, password string) (*TextContent, error) {
	record, err := s.getTextRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Expired(s.now()) {
		if err := s.removeText(ctx, record); err != nil {
			return nil, err
		}
		return nil, ErrTextExpired
	}
	if record.HasPassword {
		if err := s.verifyPassword(ctx, textPassKey(id), password); err != nil {
			return nil, err
		}
	}

	objectKey := textObjectKey(id)
	body, err := s.blobs.Download(ctx, objectKey)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, ErrTextNotFound
		}
		return nil, &StorageError{Key: objectKey, Op: "download", Err: err}
	}
	defer body.Close()

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, &StorageError{Key: objectKey, Op: "read", Err: err}
	}

	record.Views++
	if err := s.putJSON(ctx, textKey(id), record); err != nil {
		return nil, err
	}

	return &TextContent{Record: record, Content: string(content)}, nil
}

func (s *service) GetTextInfo(ctx context.Context, id string) (*TextRecord, error) {
	record, err := s.getTextRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Expired(s.now()) {
		if err := s.removeText(ctx, record); err != nil {
			return nil, err
		}
		return nil, ErrTextExpired
	}
	return record, nil
}

func (s *service) DeleteText(ctx context.Context, id string) error {
	record, err := s.getTextRecord(ctx, id)
	if err != nil {
		return err
	}
	return s.removeText(ctx, record)
}

// Helpers

func (s *service) getTextRecord(ctx context.Context, id string) (*TextRecord, error) {
	var record TextRecord
	if err := s.getJSON(ctx, textKey(id), &record); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrTextNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *service) removeText(ctx context.Context, record *TextRecord) error {
	objectKey := textObjectKey(record.ID)
	if err := s.blobs.Delete(ctx, objectKey); err != nil && !errors.Is(err, ErrObjectNotFound) {
		return &StorageError{Key: objectKey, Op: "delete", Err: err}
	}
	if err := s.deleteKey(ctx, textKey(record.ID)); err != nil {
		return err
	}
	if record.HasPassword {
		return s.deleteKey(ctx, textPassKey(record.ID))
	}
	return nil
}
