package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/admin"
	"github.com/tendant/simple-share/pkg/simpleshare/api"
	kvmemory "github.com/tendant/simple-share/pkg/simpleshare/kv/memory"
	memorystorage "github.com/tendant/simple-share/pkg/simpleshare/storage/memory"
)

const testAdminSecret = "test-admin-secret"

type testServer struct {
	*httptest.Server
	now time.Time
}

func setupTestServer(t *testing.T) *testServer {
	ts := &testServer{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return ts.now }
	meta := kvmemory.NewWithClock(clock)

	content, err := simpleshare.New(
		simpleshare.WithMetadataStore(meta),
		simpleshare.WithBlobStore(memorystorage.New()),
		simpleshare.WithClock(clock),
	)
	require.NoError(t, err)

	adminService, err := admin.New(
		admin.WithMetadataStore(meta),
		admin.WithContentService(content),
		admin.WithClock(clock),
	)
	require.NoError(t, err)

	ts.Server = httptest.NewServer(api.NewRouter(content, adminService, testAdminSecret))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) postJSON(t *testing.T, path string, body any) *http.Response {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestURLEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("create and redirect", func(t *testing.T) {
		resp := ts.postJSON(t, "/api/urls", map[string]any{
			"url": "https://example.com/target",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var created struct {
			Code     string `json:"code"`
			ShortURL string `json:"short_url"`
		}
		decodeJSON(t, resp, &created)
		assert.NotEmpty(t, created.Code)
		assert.Contains(t, created.ShortURL, "/s/"+created.Code)

		client := &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
		redirect, err := client.Get(ts.URL + "/s/" + created.Code)
		require.NoError(t, err)
		defer redirect.Body.Close()
		assert.Equal(t, http.StatusFound, redirect.StatusCode)
		assert.Equal(t, "https://example.com/target", redirect.Header.Get("Location"))
	})

	t.Run("invalid address", func(t *testing.T) {
		resp := ts.postJSON(t, "/api/urls", map[string]any{"url": "not a url"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("custom code conflict", func(t *testing.T) {
		resp := ts.postJSON(t, "/api/urls", map[string]any{
			"url":         "https://example.com",
			"custom_code": "claimed",
		})
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = ts.postJSON(t, "/api/urls", map[string]any{
			"url":         "https://example.com",
			"custom_code": "claimed",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown code", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/s/missing")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("expired link is gone", func(t *testing.T) {
		resp := ts.postJSON(t, "/api/urls", map[string]any{
			"url":             "https://example.com",
			"expiration_days": 1,
		})
		var created struct {
			Code string `json:"code"`
		}
		decodeJSON(t, resp, &created)

		ts.now = ts.now.Add(48 * time.Hour)

		gone, err := http.Get(ts.URL + "/api/urls/" + created.Code)
		require.NoError(t, err)
		defer gone.Body.Close()
		assert.Equal(t, http.StatusGone, gone.StatusCode)
	})
}

func uploadFile(t *testing.T, ts *testServer, filename, content string, fields map[string]string) *http.Response {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	resp, err := http.Post(ts.URL+"/api/files/upload", writer.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func TestFileEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("upload and download", func(t *testing.T) {
		resp := uploadFile(t, ts, "hello.txt", "hello over http", nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var created struct {
			ID          string `json:"id"`
			FileName    string `json:"file_name"`
			DownloadURL string `json:"download_url"`
		}
		decodeJSON(t, resp, &created)
		assert.Equal(t, "hello.txt", created.FileName)
		assert.Contains(t, created.DownloadURL, "/api/files/"+created.ID)

		download, err := http.Get(ts.URL + "/api/files/" + created.ID)
		require.NoError(t, err)
		defer download.Body.Close()
		require.Equal(t, http.StatusOK, download.StatusCode)
		assert.Contains(t, download.Header.Get("Content-Disposition"), "hello.txt")

		data, err := io.ReadAll(download.Body)
		require.NoError(t, err)
		assert.Equal(t, "hello over http", string(data))
	})

	t.Run("password gate", func(t *testing.T) {
		resp := uploadFile(t, ts, "secret.txt", "classified", map[string]string{
			"password": "hunter2",
		})
		var created struct {
			ID string `json:"id"`
		}
		decodeJSON(t, resp, &created)

		noPassword, err := http.Get(ts.URL + "/api/files/" + created.ID)
		require.NoError(t, err)
		noPassword.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, noPassword.StatusCode)

		wrong, err := http.Get(ts.URL + "/api/files/" + created.ID + "?password=nope")
		require.NoError(t, err)
		wrong.Body.Close()
		assert.Equal(t, http.StatusForbidden, wrong.StatusCode)

		right, err := http.Get(ts.URL + "/api/files/" + created.ID + "?password=hunter2")
		require.NoError(t, err)
		right.Body.Close()
		assert.Equal(t, http.StatusOK, right.StatusCode)

		// Info stays open without a password.
		info, err := http.Get(ts.URL + "/api/files/" + created.ID + "/info")
		require.NoError(t, err)
		info.Body.Close()
		assert.Equal(t, http.StatusOK, info.StatusCode)
	})

	t.Run("missing file field", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/files/upload", "application/json", strings.NewReader("{}"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown file", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/files/does-not-exist")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestTextEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("create and fetch", func(t *testing.T) {
		resp := ts.postJSON(t, "/api/text", map[string]any{"content": "a paste"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var created struct {
			ID     string `json:"id"`
			RawURL string `json:"raw_url"`
		}
		decodeJSON(t, resp, &created)

		fetched, err := http.Get(ts.URL + "/api/text/" + created.ID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, fetched.StatusCode)
		var body struct {
			Content string `json:"content"`
			Views   int64  `json:"views"`
		}
		decodeJSON(t, fetched, &body)
		assert.Equal(t, "a paste", body.Content)
		assert.Equal(t, int64(1), body.Views)

		raw, err := http.Get(ts.URL + "/api/text/" + created.ID + "?raw=true")
		require.NoError(t, err)
		defer raw.Body.Close()
		assert.Contains(t, raw.Header.Get("Content-Type"), "text/plain")
		data, err := io.ReadAll(raw.Body)
		require.NoError(t, err)
		assert.Equal(t, "a paste", string(data))
	})

	t.Run("empty content", func(t *testing.T) {
		resp := ts.postJSON(t, "/api/text", map[string]any{"content": "   "})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAdminEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	adminGet := func(t *testing.T, path, token string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("requires bearer secret", func(t *testing.T) {
		resp := adminGet(t, "/api/admin/stats", "")
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp = adminGet(t, "/api/admin/stats", "wrong-secret")
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("stats and listings", func(t *testing.T) {
		resp := ts.postJSON(t, "/api/urls", map[string]any{"url": "https://example.com"})
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		stats := adminGet(t, "/api/admin/stats", testAdminSecret)
		require.Equal(t, http.StatusOK, stats.StatusCode)
		var body struct {
			TotalURLs int64 `json:"total_urls"`
		}
		decodeJSON(t, stats, &body)
		assert.Equal(t, int64(1), body.TotalURLs)

		urls := adminGet(t, "/api/admin/urls?page=1&limit=10", testAdminSecret)
		require.Equal(t, http.StatusOK, urls.StatusCode)
		var page struct {
			Total int `json:"total"`
		}
		decodeJSON(t, urls, &page)
		assert.Equal(t, 1, page.Total)
	})

	t.Run("cleanup", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/admin/cleanup", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+testAdminSecret)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
