package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadsApp(t *testing.T) *fiber.App {
	t.Helper()

	t.Chdir(t.TempDir())
	require.NoError(t, os.MkdirAll("uploads", os.ModePerm))

	app := fiber.New()
	SetupUploadRoutes(app)
	return app
}

func writeUpload(t *testing.T, name string, content []byte) {
	t.Helper()
	path := filepath.Join("uploads", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), os.ModePerm))
	require.NoError(t, os.WriteFile(path, content, 0644))
}

func getUpload(t *testing.T, app *fiber.App, path string, headers map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestServeUpload(t *testing.T) {
	app := newUploadsApp(t)
	writeUpload(t, "cover.png", []byte("fake png bytes"))

	t.Run("serves the file with cache headers", func(t *testing.T) {
		resp := getUpload(t, app, "/uploads/cover.png", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		assert.NotEmpty(t, resp.Header.Get("ETag"))
		assert.NotEmpty(t, resp.Header.Get("Last-Modified"))
		assert.Contains(t, resp.Header.Get("Cache-Control"), "max-age=604800")
	})

	t.Run("304 on matching ETag", func(t *testing.T) {
		first := getUpload(t, app, "/uploads/cover.png", nil)
		etag := first.Header.Get("ETag")
		require.NotEmpty(t, etag)

		resp := getUpload(t, app, "/uploads/cover.png", map[string]string{"If-None-Match": etag})
		assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	})

	t.Run("304 on fresh If-Modified-Since", func(t *testing.T) {
		first := getUpload(t, app, "/uploads/cover.png", nil)
		lastModified := first.Header.Get("Last-Modified")
		require.NotEmpty(t, lastModified)

		resp := getUpload(t, app, "/uploads/cover.png", map[string]string{"If-Modified-Since": lastModified})
		assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	})

	t.Run("path traversal is rejected", func(t *testing.T) {
		resp := getUpload(t, app, "/uploads/..%2Fsecret.txt", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("nested traversal is rejected", func(t *testing.T) {
		resp := getUpload(t, app, "/uploads/images/..%2F..%2Fmain.go", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing file is 404", func(t *testing.T) {
		resp := getUpload(t, app, "/uploads/nope.png", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("nested paths are served", func(t *testing.T) {
		writeUpload(t, filepath.Join("images", "photo.jpg"), []byte("jpeg"))
		resp := getUpload(t, app, "/uploads/images/photo.jpg", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	})

	t.Run("unknown extension falls back to octet-stream", func(t *testing.T) {
		writeUpload(t, "data.bin", []byte{0x00, 0x01})
		resp := getUpload(t, app, "/uploads/data.bin", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
	})
}
