// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"docshelf/internal/models"
)

// AssetStore handles all asset-related database operations. Documents and
// services live in the same table, differentiated by kind.
type AssetStore struct {
	db *sql.DB
}

// NewAssetStore creates a new AssetStore with the given database connection.
func NewAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{db: db}
}

// assetColumns lists the columns selected in asset queries.
const assetColumns = `id, kind, title, description, long_description, category,
	file_key, file_url, file_size, thumb_key, thumb_url, created_at, updated_at`

// scanAsset scans an asset row from the result set.
func scanAsset(scanner interface{ Scan(...any) error }) (*models.Asset, error) {
	var a models.Asset
	err := scanner.Scan(
		&a.ID, &a.Kind, &a.Title, &a.Description, &a.LongDescription, &a.Category,
		&a.FileKey, &a.FileURL, &a.FileSize, &a.ThumbKey, &a.ThumbURL,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new asset record and returns it with the generated ID.
func (s *AssetStore) Create(a *models.Asset) (*models.Asset, error) {
	row := s.db.QueryRow(`
		INSERT INTO assets (kind, title, description, long_description, category,
			file_key, file_url, file_size, thumb_key, thumb_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+assetColumns,
		a.Kind, a.Title, a.Description, a.LongDescription, a.Category,
		a.FileKey, a.FileURL, a.FileSize, a.ThumbKey, a.ThumbURL,
	)
	created, err := scanAsset(row)
	if err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return created, nil
}

// Update writes the full asset row in a single statement and returns the
// committed state, or nil if the asset no longer exists. The caller is
// responsible for passing retained file references unchanged; the row-level
// atomicity of this one UPDATE is the only concurrency control.
func (s *AssetStore) Update(a *models.Asset) (*models.Asset, error) {
	row := s.db.QueryRow(`
		UPDATE assets
		SET title = $1, description = $2, long_description = $3, category = $4,
			file_key = $5, file_url = $6, file_size = $7,
			thumb_key = $8, thumb_url = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING `+assetColumns,
		a.Title, a.Description, a.LongDescription, a.Category,
		a.FileKey, a.FileURL, a.FileSize, a.ThumbKey, a.ThumbURL,
		a.ID,
	)
	updated, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update asset: %w", err)
	}
	return updated, nil
}

// FindByID retrieves a single asset of the given kind by its UUID.
// Returns nil if not found.
func (s *AssetStore) FindByID(kind models.AssetKind, id uuid.UUID) (*models.Asset, error) {
	row := s.db.QueryRow(`SELECT `+assetColumns+` FROM assets WHERE id = $1 AND kind = $2`, id, kind)
	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find asset by id: %w", err)
	}
	return a, nil
}

// List returns assets of a kind ordered by creation date, newest first,
// optionally narrowed by category and a case-insensitive text search over
// title and description.
func (s *AssetStore) List(kind models.AssetKind, category, search string, limit, offset int) ([]models.Asset, error) {
	rows, err := s.db.Query(`
		SELECT `+assetColumns+`
		FROM assets
		WHERE kind = $1
			AND ($2 = '' OR category = $2)
			AND ($3 = '' OR title ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, kind, category, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var items []models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// Delete removes an asset of the given kind and returns the deleted row so
// the caller can clean up the stored files, or nil if no such asset existed.
func (s *AssetStore) Delete(kind models.AssetKind, id uuid.UUID) (*models.Asset, error) {
	row := s.db.QueryRow(`
		DELETE FROM assets WHERE id = $1 AND kind = $2
		RETURNING `+assetColumns, id, kind)
	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete asset: %w", err)
	}
	return a, nil
}

// Count returns the number of assets of a kind matching the same category
// and search filters as List, so paginated totals stay consistent.
func (s *AssetStore) Count(kind models.AssetKind, category, search string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM assets
		WHERE kind = $1
			AND ($2 = '' OR category = $2)
			AND ($3 = '' OR title ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
	`, kind, category, search).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return count, nil
}
