// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package workflow

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"docshelf/internal/models"
	"docshelf/internal/storage"
)

// assetStore is the slice of the catalog store the asset workflow needs.
type assetStore interface {
	Create(a *models.Asset) (*models.Asset, error)
	Update(a *models.Asset) (*models.Asset, error)
	FindByID(kind models.AssetKind, id uuid.UUID) (*models.Asset, error)
	Delete(kind models.AssetKind, id uuid.UUID) (*models.Asset, error)
}

// FileUpload carries one file from a multipart request into the workflow.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// AssetInput holds the fields of a create or update request. Primary and
// Thumb are nil when the corresponding file field was not supplied.
type AssetInput struct {
	Kind            models.AssetKind
	Title           string
	Description     string
	LongDescription *string
	Category        string
	Primary         *FileUpload
	Thumb           *FileUpload
}

// Assets runs the create/replace/delete choreography for catalog assets.
type Assets struct {
	store   assetStore
	storage storage.Backend
}

// NewAssets creates the asset workflow over the given store and backend.
func NewAssets(store assetStore, backend storage.Backend) *Assets {
	return &Assets{store: store, storage: backend}
}

// primaryCategory maps an asset kind to its storage namespace.
func primaryCategory(kind models.AssetKind) string {
	if kind == models.AssetKindService {
		return storage.CategoryServices
	}
	return storage.CategoryDocuments
}

// validate checks the shared text fields. requirePrimary is set on the
// create path, where an asset without a payload is meaningless.
func validate(in *AssetInput, requirePrimary bool) error {
	if !in.Kind.Valid() {
		return Validation("unknown asset kind")
	}
	if in.Title == "" {
		return Validation("title is required")
	}
	if in.Description == "" {
		return Validation("description is required")
	}
	if requirePrimary && in.Primary == nil {
		return Validation("a primary file is required")
	}
	return nil
}

// Create stores a new asset: upload the primary file (mandatory), then
// the thumbnail (best-effort), then commit the row. Nothing is persisted
// if the primary upload fails; a commit failure leaves the uploads
// orphaned in storage, which is the accepted trade-off for never holding
// a row that points at a missing file.
func (w *Assets) Create(ctx context.Context, in *AssetInput) (*models.Asset, error) {
	if err := validate(in, true); err != nil {
		return nil, err
	}

	primaryRef, err := w.storage.Put(ctx, primaryCategory(in.Kind), in.Primary.Name, in.Primary.ContentType,
		bytes.NewReader(in.Primary.Data), int64(len(in.Primary.Data)))
	if err != nil {
		return nil, fmt.Errorf("upload primary file: %w", err)
	}

	thumbRef := w.putThumb(ctx, in.Thumb)

	asset := &models.Asset{
		Kind:            in.Kind,
		Title:           in.Title,
		Description:     in.Description,
		LongDescription: in.LongDescription,
		Category:        in.Category,
		FileKey:         primaryRef.Key,
		FileURL:         primaryRef.URL,
		FileSize:        int64(len(in.Primary.Data)),
	}
	if !thumbRef.Zero() {
		asset.ThumbKey = &thumbRef.Key
		asset.ThumbURL = &thumbRef.URL
	}

	created, err := w.store.Create(asset)
	if err != nil {
		slog.Error("asset commit failed, uploads orphaned",
			"error", err,
			"file_key", primaryRef.Key,
			"thumb_key", thumbRef.Key,
		)
		return nil, fmt.Errorf("commit asset: %w", err)
	}
	return created, nil
}

// Update replaces an asset's fields and any supplied files. New files are
// uploaded first, the row is committed in one statement, and only then
// are the superseded files deleted, best-effort. Old references are never
// touched before the commit, so a failure at any point leaves the row
// pointing at files that exist.
func (w *Assets) Update(ctx context.Context, id uuid.UUID, in *AssetInput) (*models.Asset, error) {
	if err := validate(in, false); err != nil {
		return nil, err
	}

	existing, err := w.store.FindByID(in.Kind, id)
	if err != nil {
		return nil, fmt.Errorf("load asset: %w", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	next := *existing
	next.Title = in.Title
	next.Description = in.Description
	next.LongDescription = in.LongDescription
	next.Category = in.Category

	// Each replaced reference is remembered so cleanup only touches the
	// files this writer personally superseded.
	var supersededPrimary, supersededThumb storage.FileRef

	if in.Primary != nil {
		ref, err := w.storage.Put(ctx, primaryCategory(in.Kind), in.Primary.Name, in.Primary.ContentType,
			bytes.NewReader(in.Primary.Data), int64(len(in.Primary.Data)))
		if err != nil {
			return nil, fmt.Errorf("upload primary file: %w", err)
		}
		supersededPrimary = storage.FileRef{Key: existing.FileKey, URL: existing.FileURL}
		next.FileKey = ref.Key
		next.FileURL = ref.URL
		next.FileSize = int64(len(in.Primary.Data))
	}

	if in.Thumb != nil {
		// A thumbnail failure never sinks the update; the previous
		// reference simply stays in place.
		if ref := w.putThumb(ctx, in.Thumb); !ref.Zero() {
			if existing.HasThumb() {
				supersededThumb = storage.FileRef{Key: *existing.ThumbKey, URL: *existing.ThumbURL}
			}
			next.ThumbKey = &ref.Key
			next.ThumbURL = &ref.URL
		}
	}

	updated, err := w.store.Update(&next)
	if err != nil {
		slog.Error("asset commit failed, new uploads orphaned",
			"error", err,
			"asset_id", id,
		)
		return nil, fmt.Errorf("commit asset: %w", err)
	}
	if updated == nil {
		// Deleted underneath us after the lookup. The fresh uploads are
		// orphaned; the old files belong to whoever deleted the row.
		return nil, ErrNotFound
	}

	w.cleanup(ctx, supersededPrimary, supersededThumb)

	return updated, nil
}

// Delete removes an asset. The database row goes first; only after that
// succeeds are the files deleted, best-effort. A failed row delete leaves
// the asset fully intact.
func (w *Assets) Delete(ctx context.Context, kind models.AssetKind, id uuid.UUID) error {
	deleted, err := w.store.Delete(kind, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if deleted == nil {
		return ErrNotFound
	}

	refs := []storage.FileRef{{Key: deleted.FileKey, URL: deleted.FileURL}}
	if deleted.HasThumb() {
		refs = append(refs, storage.FileRef{Key: *deleted.ThumbKey, URL: *deleted.ThumbURL})
	}
	w.cleanup(ctx, refs...)

	return nil
}

// putThumb processes and uploads a thumbnail. Any failure is logged and
// swallowed: the secondary file is cosmetic and must never fail the
// operation that carries it.
func (w *Assets) putThumb(ctx context.Context, thumb *FileUpload) storage.FileRef {
	if thumb == nil {
		return storage.FileRef{}
	}

	data, contentType := processThumbnail(thumb)

	ref, err := w.storage.Put(ctx, storage.CategoryThumbnails, thumb.Name, contentType,
		bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Warn("thumbnail upload failed", "error", err, "name", thumb.Name)
		return storage.FileRef{}
	}
	return ref
}

// cleanup deletes superseded file references after a successful commit.
// Failures are logged and swallowed; the backend's delete is idempotent,
// so a file already gone is not a failure at all.
func (w *Assets) cleanup(ctx context.Context, refs ...storage.FileRef) {
	for _, ref := range refs {
		if ref.Zero() {
			continue
		}
		if err := w.storage.Delete(ctx, ref); err != nil {
			slog.Warn("superseded file delete failed", "error", err, "key", ref.Key)
		}
	}
}
