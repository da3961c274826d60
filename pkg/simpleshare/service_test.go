package simpleshare_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-share/pkg/simpleshare"
	kvmemory "github.com/tendant/simple-share/pkg/simpleshare/kv/memory"
	memorystorage "github.com/tendant/simple-share/pkg/simpleshare/storage/memory"
)

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []simpleshare.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []simpleshare.Option{},
			expectError: true,
		},
		{
			name: "metadata store alone should fail",
			options: []simpleshare.Option{
				simpleshare.WithMetadataStore(kvmemory.New()),
			},
			expectError: true,
		},
		{
			name: "metadata and blob stores should succeed",
			options: []simpleshare.Option{
				simpleshare.WithMetadataStore(kvmemory.New()),
				simpleshare.WithBlobStore(memorystorage.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := simpleshare.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

// testEnv bundles a service with its backing stores and a controllable
// clock so tests can simulate the passage of time.
type testEnv struct {
	svc   simpleshare.Service
	blobs simpleshare.BlobStore
	now   time.Time
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func setupTestEnv(t *testing.T, extra ...simpleshare.Option) *testEnv {
	env := &testEnv{
		blobs: memorystorage.New(),
		now:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }

	options := append([]simpleshare.Option{
		simpleshare.WithMetadataStore(kvmemory.NewWithClock(clock)),
		simpleshare.WithBlobStore(env.blobs),
		simpleshare.WithClock(clock),
	}, extra...)

	svc, err := simpleshare.New(options...)
	require.NoError(t, err)
	require.NotNil(t, svc)

	env.svc = svc
	return env
}

func TestLinkOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateLink with generated code", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.CreateLink(ctx, simpleshare.CreateLinkRequest{
			Address: "https://example.com/some/page",
		})
		require.NoError(t, err)
		assert.Len(t, record.Code, 6)
		assert.Equal(t, "https://example.com/some/page", record.Address)
		assert.Equal(t, int64(0), record.Clicks)
		assert.Nil(t, record.ExpiresAt)
		assert.True(t, strings.HasSuffix(record.ID, "-"+record.Code))
	})

	t.Run("CreateLink with custom code", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.CreateLink(ctx, simpleshare.CreateLinkRequest{
			Address:    "https://example.com",
			CustomCode: "my-code",
		})
		require.NoError(t, err)
		assert.Equal(t, "my-code", record.Code)

		_, err = env.svc.CreateLink(ctx, simpleshare.CreateLinkRequest{
			Address:    "https://other.example.com",
			CustomCode: "my-code",
		})
		assert.ErrorIs(t, err, simpleshare.ErrCodeTaken)
	})

	t.Run("CreateLink rejects invalid addresses", func(t *testing.T) {
		env := setupTestEnv(t)

		for _, address := range []string{"", "not a url", "ftp://example.com", "example.com"} {
			_, err := env.svc.CreateLink(ctx, simpleshare.CreateLinkRequest{Address: address})
			assert.ErrorIs(t, err, simpleshare.ErrInvalidAddress, "address %q", address)
		}
	})

	t.Run("ResolveLink counts clicks, GetLink does not", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.CreateLink(ctx, simpleshare.CreateLinkRequest{
			Address: "https://example.com",
		})
		require.NoError(t, err)

		const resolves = 5
		for i := 0; i < resolves; i++ {
			address, err := env.svc.ResolveLink(ctx, record.Code)
			require.NoError(t, err)
			assert.Equal(t, "https://example.com", address)
		}

		// Counters are read-modify-write with no atomic increment: two
		// concurrent resolves can read the same count and one update is
		// lost. That undercount is an accepted trade-off, so exactness is
		// only guaranteed (and only asserted) for sequential access.
		got, err := env.svc.GetLink(ctx, record.Code)
		require.NoError(t, err)
		assert.Equal(t, int64(resolves), got.Clicks)

		got, err = env.svc.GetLink(ctx, record.Code)
		require.NoError(t, err)
		assert.Equal(t, int64(resolves), got.Clicks, "info read must not count a click")
	})

	t.Run("DeleteLink is not idempotent", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.CreateLink(ctx, simpleshare.CreateLinkRequest{
			Address: "https://example.com",
		})
		require.NoError(t, err)

		require.NoError(t, env.svc.DeleteLink(ctx, record.Code))

		_, err = env.svc.GetLink(ctx, record.Code)
		assert.ErrorIs(t, err, simpleshare.ErrLinkNotFound)

		err = env.svc.DeleteLink(ctx, record.Code)
		assert.ErrorIs(t, err, simpleshare.ErrLinkNotFound)
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		env := setupTestEnv(t)

		_, err := env.svc.ResolveLink(ctx, "nope42")
		assert.ErrorIs(t, err, simpleshare.ErrLinkNotFound)
	})
}

func TestLinkExpiry(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	record, err := env.svc.CreateLink(ctx, simpleshare.CreateLinkRequest{
		Address:        "https://example.com",
		ExpirationDays: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, record.ExpiresAt)
	assert.Equal(t, env.now.AddDate(0, 0, 1), *record.ExpiresAt)

	// Still live just before the deadline.
	env.advance(24*time.Hour - time.Second)
	_, err = env.svc.ResolveLink(ctx, record.Code)
	require.NoError(t, err)

	// At the deadline the first read reports expiry and cleans up.
	env.advance(time.Second)
	_, err = env.svc.ResolveLink(ctx, record.Code)
	assert.ErrorIs(t, err, simpleshare.ErrLinkExpired)

	// Subsequent reads see an absent record.
	_, err = env.svc.GetLink(ctx, record.Code)
	assert.ErrorIs(t, err, simpleshare.ErrLinkNotFound)
}

func TestFileOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("upload and download round trip", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.UploadFile(ctx, simpleshare.UploadFileRequest{
			FileName: "report.pdf",
			Data:     strings.NewReader("%PDF-1.4 fake"),
			Size:     13,
		})
		require.NoError(t, err)
		assert.Equal(t, "report.pdf", record.OriginalName)
		assert.Equal(t, "application/pdf", record.ContentType)
		assert.Equal(t, int64(13), record.Size)
		assert.False(t, record.HasPassword)
		assert.Contains(t, record.StoredFilename, record.ID)

		download, err := env.svc.DownloadFile(ctx, record.ID, "")
		require.NoError(t, err)
		defer download.Body.Close()

		data, err := io.ReadAll(download.Body)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 fake", string(data))
		assert.Equal(t, int64(1), download.Record.Downloads)
	})

	t.Run("download counter increments per fetch", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.UploadFile(ctx, simpleshare.UploadFileRequest{
			FileName: "notes.txt",
			Data:     strings.NewReader("hello"),
			Size:     5,
		})
		require.NoError(t, err)

		for i := 1; i <= 3; i++ {
			download, err := env.svc.DownloadFile(ctx, record.ID, "")
			require.NoError(t, err)
			download.Body.Close()
			assert.Equal(t, int64(i), download.Record.Downloads)
		}

		info, err := env.svc.GetFileInfo(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), info.Downloads, "info read must not count a download")
	})

	t.Run("size limit", func(t *testing.T) {
		env := setupTestEnv(t, simpleshare.WithMaxFileSize(8))

		_, err := env.svc.UploadFile(ctx, simpleshare.UploadFileRequest{
			FileName: "big.bin",
			Data:     strings.NewReader("123456789"),
			Size:     9,
		})
		assert.ErrorIs(t, err, simpleshare.ErrTooLarge)

		// An understated declared size does not bypass the limit.
		_, err = env.svc.UploadFile(ctx, simpleshare.UploadFileRequest{
			FileName: "big.bin",
			Data:     strings.NewReader("123456789"),
			Size:     1,
		})
		assert.ErrorIs(t, err, simpleshare.ErrTooLarge)

		_, err = env.svc.UploadFile(ctx, simpleshare.UploadFileRequest{
			FileName: "ok.bin",
			Data:     strings.NewReader("12345678"),
			Size:     8,
		})
		assert.NoError(t, err)
	})

	t.Run("empty upload rejected", func(t *testing.T) {
		env := setupTestEnv(t)

		_, err := env.svc.UploadFile(ctx, simpleshare.UploadFileRequest{
			FileName: "empty.txt",
			Data:     strings.NewReader(""),
			Size:     0,
		})
		assert.ErrorIs(t, err, simpleshare.ErrEmptyContent)

		_, err = env.svc.UploadFile(ctx, simpleshare.UploadFileRequest{
			Data: strings.NewReader("data"),
			Size: 4,
		})
		assert.ErrorIs(t, err, simpleshare.ErrEmptyContent)
	})

	t.Run("password protects the payload, not the metadata", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.UploadFile(ctx, simpleshare.UploadFileRequest{
			FileName: "secret.txt",
			Data:     strings.NewReader("classified"),
			Size:     10,
			Password: "hunter2",
		})
		require.NoError(t, err)
		assert.True(t, record.HasPassword)

		_, err = env.svc.DownloadFile(ctx, record.ID, "")
		assert.ErrorIs(t, err, simpleshare.ErrPasswordRequired)

		_, err = env.svc.DownloadFile(ctx, record.ID, "wrong")
		assert.ErrorIs(t, err, simpleshare.ErrPasswordIncorrect)

		download, err := env.svc.DownloadFile(ctx, record.ID, "hunter2")
		require.NoError(t, err)
		download.Body.Close()

		// Metadata is readable without the password.
		info, err := env.svc.GetFileInfo(ctx, record.ID)
		require.NoError(t, err)
		assert.True(t, info.HasPassword)
	})

	t.Run("missing payload reads as not found", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.UploadFile(ctx, simpleshare.UploadFileRequest{
			FileName: "gone.txt",
			Data:     strings.NewReader("soon gone"),
			Size:     9,
		})
		require.NoError(t, err)

		// Simulate a blob lost out-of-band.
		require.NoError(t, env.blobs.Delete(ctx, "files/"+record.StoredFilename))

		_, err = env.svc.DownloadFile(ctx, record.ID, "")
		assert.ErrorIs(t, err, simpleshare.ErrFileNotFound)
	})

	t.Run("delete removes record and payload", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.UploadFile(ctx, simpleshare.UploadFileRequest{
			FileName: "doomed.txt",
			Data:     strings.NewReader("bye"),
			Size:     3,
		})
		require.NoError(t, err)

		require.NoError(t, env.svc.DeleteFile(ctx, record.ID))

		_, err = env.svc.GetFileInfo(ctx, record.ID)
		assert.ErrorIs(t, err, simpleshare.ErrFileNotFound)

		err = env.svc.DeleteFile(ctx, record.ID)
		assert.ErrorIs(t, err, simpleshare.ErrFileNotFound)

		_, err = env.blobs.Download(ctx, "files/"+record.StoredFilename)
		assert.ErrorIs(t, err, simpleshare.ErrObjectNotFound)
	})
}

func TestFileExpiry(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	record, err := env.svc.UploadFile(ctx, simpleshare.UploadFileRequest{
		FileName:       "temp.txt",
		Data:           strings.NewReader("ephemeral"),
		Size:           9,
		ExpirationDays: 2,
		Password:       "hunter2",
	})
	require.NoError(t, err)

	env.advance(48 * time.Hour)

	// Expiry is checked before the password: no password needed to learn
	// the record is gone.
	_, err = env.svc.DownloadFile(ctx, record.ID, "")
	assert.ErrorIs(t, err, simpleshare.ErrFileExpired)

	// Lazy cleanup removed record and payload.
	_, err = env.svc.GetFileInfo(ctx, record.ID)
	assert.ErrorIs(t, err, simpleshare.ErrFileNotFound)

	_, err = env.blobs.Download(ctx, "files/"+record.StoredFilename)
	assert.ErrorIs(t, err, simpleshare.ErrObjectNotFound)
}

func TestTextOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("create and fetch round trip", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.CreateText(ctx, simpleshare.CreateTextRequest{
			Content: "hello, world\n",
		})
		require.NoError(t, err)
		assert.Equal(t, "text/plain", record.ContentType)
		assert.Equal(t, int64(13), record.Size)
		assert.False(t, record.HasPassword)

		text, err := env.svc.FetchText(ctx, record.ID, "")
		require.NoError(t, err)
		assert.Equal(t, "hello, world\n", text.Content)
		assert.Equal(t, int64(1), text.Record.Views)
	})

	t.Run("custom content type preserved", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.CreateText(ctx, simpleshare.CreateTextRequest{
			Content:     `{"a":1}`,
			ContentType: "application/json",
		})
		require.NoError(t, err)
		assert.Equal(t, "application/json", record.ContentType)
	})

	t.Run("empty content rejected", func(t *testing.T) {
		env := setupTestEnv(t)

		for _, content := range []string{"", "   ", "\n\t"} {
			_, err := env.svc.CreateText(ctx, simpleshare.CreateTextRequest{Content: content})
			assert.ErrorIs(t, err, simpleshare.ErrEmptyContent, "content %q", content)
		}
	})

	t.Run("size limit", func(t *testing.T) {
		env := setupTestEnv(t, simpleshare.WithMaxTextSize(4))

		_, err := env.svc.CreateText(ctx, simpleshare.CreateTextRequest{Content: "12345"})
		assert.ErrorIs(t, err, simpleshare.ErrTooLarge)

		_, err = env.svc.CreateText(ctx, simpleshare.CreateTextRequest{Content: "1234"})
		assert.NoError(t, err)
	})

	t.Run("view counter increments per fetch", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.CreateText(ctx, simpleshare.CreateTextRequest{Content: "counted"})
		require.NoError(t, err)

		for i := 1; i <= 4; i++ {
			text, err := env.svc.FetchText(ctx, record.ID, "")
			require.NoError(t, err)
			assert.Equal(t, int64(i), text.Record.Views)
		}

		info, err := env.svc.GetTextInfo(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4), info.Views, "info read must not count a view")
	})

	t.Run("password flow", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.CreateText(ctx, simpleshare.CreateTextRequest{
			Content:  "secret paste",
			Password: "sesame",
		})
		require.NoError(t, err)

		_, err = env.svc.FetchText(ctx, record.ID, "")
		assert.ErrorIs(t, err, simpleshare.ErrPasswordRequired)

		_, err = env.svc.FetchText(ctx, record.ID, "open")
		assert.ErrorIs(t, err, simpleshare.ErrPasswordIncorrect)

		text, err := env.svc.FetchText(ctx, record.ID, "sesame")
		require.NoError(t, err)
		assert.Equal(t, "secret paste", text.Content)

		// Metadata stays open.
		_, err = env.svc.GetTextInfo(ctx, record.ID)
		assert.NoError(t, err)
	})

	t.Run("delete is not idempotent", func(t *testing.T) {
		env := setupTestEnv(t)

		record, err := env.svc.CreateText(ctx, simpleshare.CreateTextRequest{Content: "bye"})
		require.NoError(t, err)

		require.NoError(t, env.svc.DeleteText(ctx, record.ID))

		err = env.svc.DeleteText(ctx, record.ID)
		assert.ErrorIs(t, err, simpleshare.ErrTextNotFound)
	})
}

func TestTextExpiry(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	record, err := env.svc.CreateText(ctx, simpleshare.CreateTextRequest{
		Content:        "short lived",
		ExpirationDays: 7,
	})
	require.NoError(t, err)

	env.advance(6 * 24 * time.Hour)
	_, err = env.svc.FetchText(ctx, record.ID, "")
	require.NoError(t, err)

	env.advance(24 * time.Hour)
	_, err = env.svc.FetchText(ctx, record.ID, "")
	assert.ErrorIs(t, err, simpleshare.ErrTextExpired)

	_, err = env.svc.GetTextInfo(ctx, record.ID)
	assert.ErrorIs(t, err, simpleshare.ErrTextNotFound)
}
