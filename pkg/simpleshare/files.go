package simpleshare

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// File operations

func (s *service) UploadFile(ctx context.Context, req UploadFileRequest) (*FileRecord, error) {
	if req.Data == nil || req.FileName == "" {
		return nil, ErrEmptyContent
	}
	if req.Size > s.maxFile {
		return nil, ErrTooLarge
	}

	// The declared size is advisory; read one byte past the limit to catch
	// oversized bodies regardless.
	data, err := io.ReadAll(io.LimitReader(req.Data, s.maxFile+1))
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}
	if int64(len(data)) > s.maxFile {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyContent
	}

	id := uuid.NewString()
	stored := id + "-" + sanitizeFilename(req.FileName)
	contentType := req.ContentType
	if contentType == "" {
		contentType = detectContentType(req.FileName)
	}

	now := s.now()
	record := &FileRecord{
		ID:             id,
		StoredFilename: stored,
		OriginalName:   req.FileName,
		ContentType:    contentType,
		Size:           int64(len(data)),
		Downloads:      0,
		CreatedAt:      now,
		ExpiresAt:      s.expiryFromDays(req.ExpirationDays),
		HasPassword:    req.Password != "",
	}

	objectKey := fileObjectKey(stored)
	err = s.blobs.UploadWithParams(ctx, bytes.NewReader(data), UploadParams{
		ObjectKey: objectKey,
		MimeType:  contentType,
	})
	if err != nil {
		return nil, &StorageError{Key: objectKey, Op: "upload", Err: err}
	}

	// The hash is written before the record so has_password never points at
	// a missing companion entry.
	if req.Password != "" {
		hash := []byte(hashPassword(req.Password))
		if err := s.meta.Put(ctx, filePassKey(id), hash); err != nil {
			return nil, &StoreError{Key: filePassKey(id), Op: "put", Err: err}
		}
	}

	if err := s.putJSON(ctx, fileKey(id), record); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *service) DownloadFile(ctx context.Context, id, password string) (*FileDownload, error) {
	record, err := s.getFileRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Expired(s.now()) {
		if err := s.removeFile(ctx, record); err != nil {
			return nil, err
		}
		return nil, ErrFileExpired
	}
	if record.HasPassword {
		if err := s.verifyPassword(ctx, filePassKey(id), password); err != nil {
			return nil, err
		}
	}

	body, err := s.blobs.Download(ctx, fileObjectKey(record.StoredFilename))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, &StorageError{Key: fileObjectKey(record.StoredFilename), Op: "download", Err: err}
	}

	record.Downloads++
	if err := s.putJSON(ctx, fileKey(id), record); err != nil {
		body.Close()
		return nil, err
	}

	return &FileDownload{Record: record, Body: body}, nil
}

func (s *service) GetFileInfo(ctx context.Context, id string) (*FileRecord, error) {
	record, err := s.getFileRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Expired(s.now()) {
		if err := s.removeFile(ctx, record); err != nil {
			return nil, err
		}
		return nil, ErrFileExpired
	}
	return record, nil
}

func (s *service) DeleteFile(ctx context.Context, id string) error {
	record, err := s.getFileRecord(ctx, id)
	if err != nil {
		return err
	}
	return s.removeFile(ctx, record)
}

// Helpers

func (s *service) getFileRecord(ctx context.Context, id string) (*FileRecord, error) {
	var record FileRecord
	if err := s.getJSON(ctx, fileKey(id), &record); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return &record, nil
}

// removeFile deletes payload, metadata and the password hash together.
// Payload goes first so a partial failure leaves a record that reads as
// not-found rather than an orphan blob.
func (s *service) removeFile(ctx context.Context, record *FileRecord) error {
	objectKey := fileObjectKey(record.StoredFilename)
	if err := s.blobs.Delete(ctx, objectKey); err != nil && !errors.Is(err, ErrObjectNotFound) {
		return &StorageError{Key: objectKey, Op: "delete", Err: err}
	}
	if err := s.deleteKey(ctx, fileKey(record.ID)); err != nil {
		return err
	}
	if record.HasPassword {
		return s.deleteKey(ctx, filePassKey(record.ID))
	}
	return nil
}

// sanitizeFilename strips path components and replaces characters outside a
// conservative set, keeping blob keys flat and predictable.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

func detectContentType(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
