// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local stores files on the local filesystem under a root directory,
// one subdirectory per category. References are relative paths, served
// by the application under a configurable URL prefix.
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates a local filesystem backend rooted at dir. The root and
// category subdirectories are created on demand. baseURL is the public URL
// prefix prepended to keys (e.g. "/files").
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage root %s: %w", dir, err)
	}
	return &Local{
		root:    dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Root returns the backend's root directory, used to mount the file server.
func (l *Local) Root() string {
	return l.root
}

// Put writes the content to disk and returns its reference. The write goes
// through a temp file plus rename, so an interrupted upload never leaves a
// resolvable reference behind.
func (l *Local) Put(ctx context.Context, category, filename, contentType string, r io.Reader, size int64) (FileRef, error) {
	if err := ctx.Err(); err != nil {
		return FileRef{}, fmt.Errorf("local put: %w", err)
	}

	key := objectKey(category, filename)
	path := filepath.Join(l.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return FileRef{}, fmt.Errorf("local put %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return FileRef{}, fmt.Errorf("local put %s: %w", key, err)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return FileRef{}, fmt.Errorf("local put %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return FileRef{}, fmt.Errorf("local put %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return FileRef{}, fmt.Errorf("local put %s: %w", key, err)
	}

	return FileRef{Key: key, URL: l.baseURL + "/" + key}, nil
}

// Delete removes the file for the given reference. A reference that no
// longer exists on disk is a success, so retried and duplicate cleanups
// are harmless.
func (l *Local) Delete(ctx context.Context, ref FileRef) error {
	if ref.Zero() {
		return nil
	}

	path := filepath.Join(l.root, filepath.FromSlash(ref.Key))

	// Refuse keys that resolve outside the root.
	if rel, err := filepath.Rel(l.root, path); err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("local delete: key %q escapes storage root", ref.Key)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local delete %s: %w", ref.Key, err)
	}
	return nil
}
