// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL- and filesystem-safe name generation from
// arbitrary strings.
package slug

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Filename sanitizes an uploaded file's original name to a safe character
// set, preserving the extension. Directory components are stripped first so
// a crafted name like "../../etc/passwd" can never escape the storage root.
// Example: "Q3 Report (final).PDF" → "q3-report-final.pdf"
func Filename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	base = Generate(base)
	if base == "" {
		base = "file"
	}

	// The extension gets the same treatment minus the dot.
	ext = Generate(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return base
	}
	return base + "." + ext
}
