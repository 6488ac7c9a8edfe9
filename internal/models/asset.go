// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssetKind distinguishes documents from services in the unified assets table.
type AssetKind string

const (
	AssetKindDocument AssetKind = "document"
	AssetKindService  AssetKind = "service"
)

// Valid reports whether the kind is one of the known asset kinds.
func (k AssetKind) Valid() bool {
	return k == AssetKindDocument || k == AssetKindService
}

// Asset represents a catalog entry pairing a primary payload file with an
// optional thumbnail/image. The payload itself lives in object storage or
// on the local filesystem; only the references are stored in PostgreSQL.
// Documents and services share the same table, differentiated by Kind.
type Asset struct {
	ID              uuid.UUID `json:"id"`
	Kind            AssetKind `json:"kind"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	LongDescription *string   `json:"long_description,omitempty"`
	Category        string    `json:"category"`
	FileKey         string    `json:"file_key"`
	FileURL         string    `json:"file_url"`
	FileSize        int64     `json:"file_size"`
	ThumbKey        *string   `json:"thumb_key,omitempty"`
	ThumbURL        *string   `json:"thumb_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasThumb returns true if the asset carries a secondary image reference.
func (a *Asset) HasThumb() bool {
	return a.ThumbKey != nil && *a.ThumbKey != ""
}

// HumanSize returns a human-readable size string for the primary file.
func (a *Asset) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case a.FileSize >= mb:
		return fmt.Sprintf("%.1f MB", float64(a.FileSize)/float64(mb))
	case a.FileSize >= kb:
		return fmt.Sprintf("%.0f KB", float64(a.FileSize)/float64(kb))
	default:
		return fmt.Sprintf("%d B", a.FileSize)
	}
}
