// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL is unavailable; Valkey is not
// needed, the listing cache degrades to pass-through without it.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"docshelf/internal/auth"
	"docshelf/internal/cache"
	"docshelf/internal/database"
	"docshelf/internal/middleware"
	"docshelf/internal/models"
	"docshelf/internal/storage"
	"docshelf/internal/store"
	"docshelf/internal/workflow"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "docshelf")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "docshelf")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// captureMailer records reset mails for assertions.
type captureMailer struct {
	to  string
	url string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, toEmail, resetURL string) error {
	m.to = toEmail
	m.url = resetURL
	return nil
}

// testAPI bundles the full handler stack over a real database and a
// temp-dir local storage backend.
type testAPI struct {
	router  chi.Router
	db      *sql.DB
	users   *store.UserStore
	assets  *store.AssetStore
	backend *storage.Local
	mail    *captureMailer
	auth    *auth.Authorizer
}

// newTestAPI wires the handlers the way main does, with test doubles only
// at the edges (temp-dir storage, capture mailer, no Valkey).
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db := testDB(t)

	backend, err := storage.NewLocal(t.TempDir(), "/files")
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}

	userStore := store.NewUserStore(db)
	assetStore := store.NewAssetStore(db)
	tokenStore := store.NewResetTokenStore(db)
	authorizer := auth.New(userStore, "test-secret", time.Hour)
	mail := &captureMailer{}
	listings := cache.NewListingCache(nil, time.Minute)

	assetWorkflow := workflow.NewAssets(assetStore, backend)
	resetWorkflow := workflow.NewPasswordReset(userStore, tokenStore, mail, "http://localhost/reset", time.Hour)

	authHandlers := NewAuth(userStore, authorizer, resetWorkflow)
	documents := NewDocuments(assetWorkflow, assetStore, listings)
	users := NewUsers(userStore)

	r := chi.NewRouter()
	r.Route("/assets/documents", func(r chi.Router) {
		r.Get("/", documents.List)
		r.Get("/{id}", documents.Get)
		r.Get("/{id}/download", documents.Download)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(authorizer))
			r.Use(middleware.RequireRole(models.RoleStaff))
			r.Post("/", documents.Create)
			r.Put("/{id}", documents.Update)
			r.Delete("/{id}", documents.Delete)
		})
	})
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.Register)
		r.Post("/login", authHandlers.Login)
		r.Post("/password/request", authHandlers.PasswordRequest)
		r.Post("/password/reset", authHandlers.PasswordReset)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(authorizer))
			r.Get("/profile", authHandlers.Profile)
			r.Put("/profile", authHandlers.UpdateProfile)
		})
	})
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth(authorizer))
		r.Use(middleware.RequireRole(models.RoleAdmin))
		r.Get("/", users.List)
		r.Post("/", users.Create)
		r.Put("/{id}", users.Update)
		r.Delete("/{id}", users.Delete)
	})

	api := &testAPI{
		router:  r,
		db:      db,
		users:   userStore,
		assets:  assetStore,
		backend: backend,
		mail:    mail,
		auth:    authorizer,
	}
	api.clean(t)
	t.Cleanup(func() { api.clean(t) })
	return api
}

// clean removes test rows. Reset tokens cascade with their users.
func (api *testAPI) clean(t *testing.T) {
	t.Helper()
	if _, err := api.db.Exec(`DELETE FROM assets`); err != nil {
		t.Fatalf("clean assets: %v", err)
	}
	if _, err := api.db.Exec(`DELETE FROM users`); err != nil {
		t.Fatalf("clean users: %v", err)
	}
}

// userToken creates an account with the given role and returns a bearer
// token for it.
func (api *testAPI) userToken(t *testing.T, email string, role models.Role) (string, *models.User) {
	t.Helper()
	user, err := api.users.Create(email, "test-password", nil, role)
	if err != nil {
		t.Fatalf("create %s user: %v", role, err)
	}
	token, err := api.auth.IssueToken(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token, user
}

// do runs one request through the router.
func (api *testAPI) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)
	return rr
}

// httptestGet builds an unauthenticated GET request.
func httptestGet(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

// authReq builds a bodyless authenticated request.
func authReq(t *testing.T, method, path, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// jsonReq builds a JSON request, optionally authenticated.
func jsonReq(t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// multipartReq builds a multipart asset request from text fields and files.
func multipartReq(t *testing.T, method, path, token string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".bin")
		if err != nil {
			t.Fatalf("create file field %s: %v", field, err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write file field %s: %v", field, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// decodeBody parses a JSON response body.
func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response (%d %s): %v", rr.Code, rr.Body.String(), err)
	}
	return v
}

// pdfBytes is a minimal payload that sniffs as application/pdf.
func pdfBytes() []byte {
	return append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("docshelf test content "), 20)...)
}

// readStored fetches the bytes behind a local file URL ("/files/<key>").
func (api *testAPI) readStored(t *testing.T, fileURL string) []byte {
	t.Helper()
	key := fileURL[len("/files/"):]
	data, err := os.ReadFile(api.backend.Root() + "/" + key)
	if err != nil {
		t.Fatalf("read stored file %s: %v", key, err)
	}
	return data
}
