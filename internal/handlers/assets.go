// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"docshelf/internal/cache"
	"docshelf/internal/markdown"
	"docshelf/internal/models"
	"docshelf/internal/store"
	"docshelf/internal/workflow"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Assets serves one asset kind. The documents and services surfaces are the
// same handler constructed twice; they differ only in kind and in the name
// of the secondary file field.
type Assets struct {
	kind           models.AssetKind
	secondaryField string
	workflow       *workflow.Assets
	store          *store.AssetStore
	listings       *cache.ListingCache
}

// NewDocuments creates the handler for the /assets/documents surface.
// Documents take their secondary image from the "thumbnail" form field.
func NewDocuments(wf *workflow.Assets, s *store.AssetStore, listings *cache.ListingCache) *Assets {
	return &Assets{kind: models.AssetKindDocument, secondaryField: "thumbnail", workflow: wf, store: s, listings: listings}
}

// NewServices creates the handler for the /assets/services surface.
// Services take their secondary image from the "image" form field.
func NewServices(wf *workflow.Assets, s *store.AssetStore, listings *cache.ListingCache) *Assets {
	return &Assets{kind: models.AssetKindService, secondaryField: "image", workflow: wf, store: s, listings: listings}
}

// assetResponse is the JSON shape of one asset.
type assetResponse struct {
	ID              uuid.UUID `json:"id"`
	Kind            string    `json:"kind"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	LongDescription *string   `json:"long_description,omitempty"`
	LongDescHTML    string    `json:"long_description_html,omitempty"`
	Category        string    `json:"category"`
	FileURL         string    `json:"file_url"`
	FileSize        int64     `json:"file_size"`
	FileSizeHuman   string    `json:"file_size_human"`
	ThumbURL        *string   `json:"thumb_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// assetView builds the response shape. renderLong enables Markdown
// rendering of the long description, used on detail responses only.
func assetView(a *models.Asset, renderLong bool) assetResponse {
	resp := assetResponse{
		ID:              a.ID,
		Kind:            string(a.Kind),
		Title:           a.Title,
		Description:     a.Description,
		LongDescription: a.LongDescription,
		Category:        a.Category,
		FileURL:         a.FileURL,
		FileSize:        a.FileSize,
		FileSizeHuman:   a.HumanSize(),
		ThumbURL:        a.ThumbURL,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if renderLong && a.LongDescription != nil {
		html, err := markdown.ToHTML(*a.LongDescription)
		if err != nil {
			slog.Warn("long description render failed", "error", err, "asset_id", a.ID)
		} else {
			resp.LongDescHTML = html
		}
	}
	return resp
}

// List serves the public listing with category filter, text search, and
// pagination. Responses are cached in Valkey until the next mutation of
// this kind.
func (h *Assets) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	search := q.Get("q")
	limit := intParam(q.Get("limit"), defaultListLimit, maxListLimit)
	offset := intParam(q.Get("offset"), 0, 1_000_000)

	key := cache.Key(string(h.kind), category, search, limit, offset)
	if body, ok := h.listings.Get(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}

	assets, err := h.store.List(h.kind, category, search, limit, offset)
	if err != nil {
		slog.Error("asset listing failed", "error", err, "kind", h.kind)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}
	total, err := h.store.Count(h.kind, category, search)
	if err != nil {
		slog.Error("asset count failed", "error", err, "kind", h.kind)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}

	views := make([]assetResponse, 0, len(assets))
	for i := range assets {
		views = append(views, assetView(&assets[i], false))
	}

	body, err := json.Marshal(map[string]any{"assets": views, "total": total})
	if err != nil {
		slog.Error("listing encode failed", "error", err)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}
	h.listings.Set(r.Context(), key, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Get serves one asset with its rendered long description.
func (h *Assets) Get(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.find(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, assetView(asset, true))
}

// Download redirects to the resolved file location.
func (h *Assets) Download(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.find(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, asset.FileURL, http.StatusFound)
}

// Create handles the multipart create request. Staff and above only,
// enforced by the router chain.
func (h *Assets) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.parseMultipart(w, r)
	if !ok {
		return
	}

	created, err := h.workflow.Create(r.Context(), in)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	h.listings.InvalidateKind(r.Context(), string(h.kind))
	respondJSON(w, http.StatusCreated, assetView(created, true))
}

// Update handles the multipart update request. Any file field may be
// omitted to keep the current one.
func (h *Assets) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	in, ok := h.parseMultipart(w, r)
	if !ok {
		return
	}

	updated, err := h.workflow.Update(r.Context(), id, in)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	h.listings.InvalidateKind(r.Context(), string(h.kind))
	respondJSON(w, http.StatusOK, assetView(updated, true))
}

// Delete removes an asset and its stored files.
func (h *Assets) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.workflow.Delete(r.Context(), h.kind, id); err != nil {
		respondWorkflowError(w, err)
		return
	}

	h.listings.InvalidateKind(r.Context(), string(h.kind))
	w.WriteHeader(http.StatusNoContent)
}

// parseMultipart reads the multipart form into an AssetInput. Returns
// false after writing the error response.
func (h *Assets) parseMultipart(w http.ResponseWriter, r *http.Request) (*workflow.AssetInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "Request too large. Maximum upload size is 50 MB.")
		return nil, false
	}

	title := r.FormValue("title")
	description := r.FormValue("description")
	longDescription := r.FormValue("long_description")
	category := r.FormValue("category")

	if msg := validateAssetFields(title, description, longDescription, category); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return nil, false
	}

	primary, msg := formUpload(r, "file", allowedPrimaryTypes)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return nil, false
	}
	secondary, msg := formUpload(r, h.secondaryField, allowedSecondaryTypes)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return nil, false
	}

	in := &workflow.AssetInput{
		Kind:        h.kind,
		Title:       title,
		Description: description,
		Category:    category,
		Primary:     primary,
		Thumb:       secondary,
	}
	if longDescription != "" {
		in.LongDescription = &longDescription
	}
	return in, true
}

// find loads the asset addressed by the id URL param. Returns false after
// writing the error response.
func (h *Assets) find(w http.ResponseWriter, r *http.Request) (*models.Asset, bool) {
	id, ok := idParam(w, r)
	if !ok {
		return nil, false
	}
	asset, err := h.store.FindByID(h.kind, id)
	if err != nil {
		slog.Error("asset lookup failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "server error")
		return nil, false
	}
	if asset == nil {
		respondError(w, http.StatusNotFound, "not found")
		return nil, false
	}
	return asset, true
}

// idParam parses the {id} URL parameter. Returns false after writing a 404;
// a malformed UUID cannot address any asset.
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "not found")
		return uuid.Nil, false
	}
	return id, true
}

// intParam parses a numeric query parameter with a fallback and a cap.
func intParam(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}
