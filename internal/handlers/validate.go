// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode/utf8"

	"docshelf/internal/workflow"
)

// Validation limits for asset text fields.
const (
	maxTitleLen    = 300
	maxDescLen     = 1_000
	maxLongDescLen = 100_000
	maxCategoryLen = 100

	// maxUploadSize is the maximum allowed file upload size (50 MB).
	maxUploadSize = 50 << 20
)

// allowedPrimaryTypes defines MIME types accepted for primary asset files.
var allowedPrimaryTypes = map[string]bool{
	"application/pdf":          true,
	"application/zip":          true,
	"application/octet-stream": true,
	"text/plain":               true,
	"image/jpeg":               true,
	"image/png":                true,
	"image/gif":                true,
	"image/webp":               true,
	"image/svg+xml":            true,
}

// allowedSecondaryTypes defines MIME types accepted for thumbnails and
// service images.
var allowedSecondaryTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// validateAssetFields checks asset text inputs and returns the first error
// found, or "" when everything passes.
func validateAssetFields(title, description, longDescription, category string) string {
	if strings.TrimSpace(title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if strings.TrimSpace(description) == "" {
		return "Description is required."
	}
	if utf8.RuneCountInString(description) > maxDescLen {
		return "Description is too long (max 1,000 characters)."
	}
	if utf8.RuneCountInString(longDescription) > maxLongDescLen {
		return "Long description is too long (max 100,000 characters)."
	}
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return "Category is too long (max 100 characters)."
	}
	return ""
}

// formUpload reads one optional multipart file field into a FileUpload.
// The content type is sniffed from the first 512 bytes rather than trusted
// from the request. Returns (nil, "") when the field was not supplied; a
// non-empty string is a caller-facing validation message.
func formUpload(r *http.Request, field string, allowed map[string]bool) (*workflow.FileUpload, string) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, ""
	}
	if err != nil {
		return nil, "Failed to read uploaded file."
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		return nil, "File too large. Maximum size is 50 MB."
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "Failed to read uploaded file."
	}

	contentType := sniffContentType(header, data)
	if !allowed[contentType] {
		return nil, "File type " + contentType + " is not allowed."
	}

	return &workflow.FileUpload{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	}, ""
}

// sniffContentType detects the content type from file bytes.
// DetectContentType reports SVGs as XML or plain text, so the extension
// disambiguates those.
func sniffContentType(header *multipart.FileHeader, data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.IndexByte(contentType, ';'); idx != -1 {
		contentType = contentType[:idx]
	}
	if strings.HasSuffix(strings.ToLower(header.Filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		contentType = "image/svg+xml"
	}
	return contentType
}
