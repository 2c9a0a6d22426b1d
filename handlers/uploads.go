// handlers/uploads.go
package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"write-on-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// Cache duration for uploaded assets: 7 days (in seconds)
const uploadCacheDuration = 60 * 60 * 24 * 7

var uploadContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
}

func SetupUploadRoutes(app *fiber.App) {
	app.Get("/uploads/*", ServeUpload)
}

// ServeUpload serves files from the local uploads dir with ETag/Last-Modified
// caching. Anything containing ".." is rejected outright.
func ServeUpload(c *fiber.Ctx) error {
	relPath := c.Params("*")
	if relPath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "File path is required",
		})
	}

	decoded, err := url.PathUnescape(relPath)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid file path",
		})
	}

	// Path traversal rejection — checked on the decoded path
	if strings.Contains(decoded, "..") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid file path",
		})
	}

	filePath := utils.GetUploadPath(decoded)
	stat, err := os.Stat(filePath)
	if err != nil || stat.IsDir() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "File not found",
		})
	}

	etag := fmt.Sprintf(`"%d-%d"`, stat.Size(), stat.ModTime().UnixMilli())
	lastModified := stat.ModTime().UTC().Format(http.TimeFormat)

	c.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", uploadCacheDuration))
	c.Set("ETag", etag)
	c.Set("Last-Modified", lastModified)

	// 304 when the client's cached copy is still good
	if match := c.Get("If-None-Match"); match != "" && match == etag {
		return c.SendStatus(fiber.StatusNotModified)
	}
	if since := c.Get("If-Modified-Since"); since != "" {
		if t, err := http.ParseTime(since); err == nil && !stat.ModTime().Truncate(time.Second).After(t) {
			return c.SendStatus(fiber.StatusNotModified)
		}
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to read file",
		})
	}

	contentType := uploadContentTypes[strings.ToLower(filepath.Ext(filePath))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set("Content-Type", contentType)

	return c.Send(data)
}
