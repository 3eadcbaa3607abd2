package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Urmanga/file-scanner-gui/internal/config"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix   string
		path     string
		expected string
	}{
		{"", "/tmp/files_scan_1.json", "files_scan_1.json"},
		{"reports", "/tmp/a.csv", "reports/a.csv"},
		{"/reports/daily/", "a.txt", "reports/daily/a.txt"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ObjectKey(tt.prefix, tt.path))
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", ContentType("x.JSON"))
	assert.Equal(t, "text/csv; charset=utf-8", ContentType("x.csv"))
	assert.Equal(t, "text/plain; charset=utf-8", ContentType("x.txt"))
	assert.Equal(t, "application/octet-stream", ContentType("x"))
}

func TestNew_NotConfigured(t *testing.T) {
	_, err := New(config.S3Config{Bucket: "b"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(config.S3Config{Endpoint: "localhost:9000"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestUploader_Upload(t *testing.T) {
	var (
		mu      sync.Mutex
		method  string
		objPath string
		ctype   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, objPath, ctype = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		mu.Unlock()

		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	endpoint, err := url.Parse(srv.URL)
	require.NoError(t, err)

	u, err := New(config.S3Config{
		Endpoint:  endpoint.Host,
		Region:    "us-east-1",
		Bucket:    "inventory",
		Prefix:    "reports",
		AccessKey: "access",
		SecretKey: "secret",
		UseSSL:    false,
	})
	require.NoError(t, err)

	local := filepath.Join(t.TempDir(), "files_scan_20240101_000000.json")
	require.NoError(t, os.WriteFile(local, []byte(`{"files":[]}`), 0644))

	res, err := u.Upload(context.Background(), local)
	require.NoError(t, err)
	assert.Equal(t, "inventory", res.Bucket)
	assert.Equal(t, "reports/files_scan_20240101_000000.json", res.Key)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/inventory/reports/files_scan_20240101_000000.json", objPath)
	assert.Equal(t, "application/json", ctype)
}

func TestUploader_MissingFile(t *testing.T) {
	u, err := New(config.S3Config{Endpoint: "localhost:9000", Region: "us-east-1", Bucket: "b"})
	require.NoError(t, err)

	_, err = u.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
