// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage abstracts binary file persistence behind a small
// put/delete contract. Two interchangeable backends exist: a local
// filesystem backend and an S3-compatible object storage backend.
package storage

import (
	"context"
	"io"

	"github.com/google/uuid"

	"docshelf/internal/slug"
)

// Categories namespace stored files. They double as directory (or key)
// prefixes, so every reference is of the form "<category>/<name>".
const (
	CategoryDocuments  = "documents"
	CategoryServices   = "services"
	CategoryThumbnails = "thumbnails"
)

// FileRef points at one stored file. Key is the backend-scoped identifier
// used for deletion; URL is where the content can be fetched from. For the
// local backend the key is a relative path under the upload root.
type FileRef struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Zero reports whether the reference points at nothing.
func (r FileRef) Zero() bool {
	return r.Key == "" && r.URL == ""
}

// Backend is the storage contract the asset workflows run against.
//
// Put must only return a reference once the content is durably written;
// a failed or interrupted write must never produce a usable reference.
// Delete must be idempotent: removing a reference that does not exist is
// a success. Callers treat Delete failures as best-effort and never fail
// a request on them once the database commit has happened.
type Backend interface {
	Put(ctx context.Context, category, filename, contentType string, r io.Reader, size int64) (FileRef, error)
	Delete(ctx context.Context, ref FileRef) error
}

// objectKey builds the collision-resistant storage key for an upload:
// "<category>/<uuid>-<sanitized original name>".
func objectKey(category, filename string) string {
	return category + "/" + uuid.New().String() + "-" + slug.Filename(filename)
}
