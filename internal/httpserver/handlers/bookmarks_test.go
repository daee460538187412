package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/bookmarks"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/flash"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/views"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
)

var errDown = errors.New("connection refused")

// failingCollection fails every backend call.
type failingCollection struct{}

func (failingCollection) InsertOne(context.Context, *domain.Bookmark) (string, error) {
	return "", errDown
}
func (failingCollection) FindOneByID(context.Context, string) (*domain.Bookmark, error) {
	return nil, errDown
}
func (failingCollection) FindOneByURL(context.Context, string) (*domain.Bookmark, error) {
	return nil, errDown
}
func (failingCollection) FindMany(context.Context, domain.Filter, domain.FindOptions) ([]*domain.Bookmark, error) {
	return nil, errDown
}
func (failingCollection) Count(context.Context, domain.Filter) (int64, error) { return 0, errDown }
func (failingCollection) UpdateOne(context.Context, string, domain.Patch) (bool, error) {
	return false, errDown
}
func (failingCollection) DeleteOne(context.Context, string) (int64, error)      { return 0, errDown }
func (failingCollection) DistinctCategories(context.Context) ([]string, error) { return nil, errDown }
func (failingCollection) Ping(context.Context) error                          { return errDown }

func newDeps(t *testing.T, coll bookmarks.Collection) deps.Deps {
	t.Helper()

	renderer, err := views.New()
	require.NoError(t, err)

	m := metrics.New("test")
	return deps.Deps{
		Logger:    logger.NewNop(),
		StartTime: time.Now(),
		Version:   "test",
		TimeNow:   time.Now,
		Backend:   "memory",
		Bookmarks: bookmarks.New(coll, logger.NewNop(), m),
		Metrics:   m,
		Views:     renderer,
		Flash:     flash.New("test-secret"),
	}
}

func router(d deps.Deps) http.Handler {
	r := chi.NewRouter()
	r.Get("/", Index(d))
	r.Post("/add", Add(d))
	r.Get("/edit/{id}", EditForm(d))
	r.Post("/edit/{id}", Edit(d))
	r.Get("/delete/{id}", Delete(d))
	r.Get("/categories", Categories(d))
	r.Get("/readyz", Readyz(d))
	r.Get("/infra", Infra(d))
	r.Get("/healthz", Healthz(d))
	return r
}

func post(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

// flashed decodes the flash cookie set on rec.
func flashed(t *testing.T, d deps.Deps, rec *httptest.ResponseRecorder) []flash.Message {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return d.Flash.Pop(httptest.NewRecorder(), req)
}

func assertRedirectWith(t *testing.T, d deps.Deps, rec *httptest.ResponseRecorder, want flash.Message) {
	t.Helper()
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, []flash.Message{want}, flashed(t, d, rec))
}

func form(name, rawURL, category string) url.Values {
	return url.Values{"name": {name}, "url": {rawURL}, "category": {category}, "description": {""}}
}

func TestAddSuccess(t *testing.T) {
	coll := memory.New()
	d := newDeps(t, coll)
	h := router(d)

	rec := post(h, "/add", form("  Docs ", "https://docs.example.com", ""))

	assertRedirectWith(t, d, rec, flash.Success(`Bookmark "Docs" added successfully`))
	assert.Equal(t, 1, coll.Len())
}

func TestAddRejections(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want flash.Message
	}{
		{"missing name", form("", "https://a.example.com", ""), flash.Error("Name and URL are required")},
		{"missing url", form("A", "   ", ""), flash.Error("Name and URL are required")},
		{"invalid url", form("A", "not a url", ""), flash.Error("Please enter a valid URL")},
		{"duplicate url", form("Again", "https://dup.example.com", ""), flash.Warning("This URL is already bookmarked")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll := memory.New()
			d := newDeps(t, coll)
			h := router(d)
			_, err := d.Bookmarks.Create(context.Background(), domain.Input{Name: "Dup", URL: "https://dup.example.com"})
			require.NoError(t, err)

			rec := post(h, "/add", tt.form)

			assertRedirectWith(t, d, rec, tt.want)
			assert.Equal(t, 1, coll.Len(), "nothing new may be stored")
		})
	}
}

func TestAddStorageFailure(t *testing.T) {
	d := newDeps(t, failingCollection{})

	rec := post(router(d), "/add", form("Docs", "https://docs.example.com", ""))

	assertRedirectWith(t, d, rec, flash.Error("Error adding bookmark"))
}

func TestIndexPaginates(t *testing.T) {
	d := newDeps(t, memory.New())
	h := router(d)
	for i := 0; i < 12; i++ {
		_, err := d.Bookmarks.Create(context.Background(), domain.Input{
			Name: "Site", URL: "https://site" + string(rune('a'+i)) + ".example.com",
		})
		require.NoError(t, err)
	}

	rec := get(h, "/?page=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "page 2 of 2")
	assert.Equal(t, 2, strings.Count(rec.Body.String(), "/edit/"))

	rec = get(h, "/?page=abc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "page 1 of 2")
}

func TestIndexSearchUsesRawTerm(t *testing.T) {
	d := newDeps(t, memory.New())
	for _, in := range []domain.Input{
		{Name: "Go Docs", URL: "https://go.example.com"},
		{Name: "Docs", URL: "https://docs.example.com"},
	} {
		_, err := d.Bookmarks.Create(context.Background(), in)
		require.NoError(t, err)
	}

	rec := get(router(d), "/?search="+url.QueryEscape(" Docs"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "https://go.example.com")
	assert.NotContains(t, body, "https://docs.example.com", "the leading space is part of the term")
}

func TestIndexShowsPendingFlash(t *testing.T) {
	d := newDeps(t, memory.New())
	h := router(d)

	added := post(h, "/add", form("Docs", "https://docs.example.com", "Work"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range added.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), "added successfully")
	assert.Contains(t, rec.Body.String(), "https://docs.example.com")
}

func TestIndexStorageFailure(t *testing.T) {
	d := newDeps(t, failingCollection{})

	rec := get(router(d), "/?search=x")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error loading bookmarks")
	assert.Contains(t, rec.Body.String(), "No bookmarks yet.")
}

func TestEditForm(t *testing.T) {
	d := newDeps(t, memory.New())
	h := router(d)
	id, err := d.Bookmarks.Create(context.Background(), domain.Input{Name: "Docs", URL: "https://docs.example.com"})
	require.NoError(t, err)

	rec := get(h, "/edit/"+id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="https://docs.example.com"`)

	rec = get(h, "/edit/unknown")
	assertRedirectWith(t, d, rec, flash.Error("Bookmark not found"))
}

func TestEditFormStorageFailure(t *testing.T) {
	d := newDeps(t, failingCollection{})

	rec := get(router(d), "/edit/abc")

	assertRedirectWith(t, d, rec, flash.Error("Error editing bookmark"))
}

func TestEditSuccess(t *testing.T) {
	d := newDeps(t, memory.New())
	h := router(d)
	id, err := d.Bookmarks.Create(context.Background(), domain.Input{Name: "Docs", URL: "https://docs.example.com"})
	require.NoError(t, err)

	rec := post(h, "/edit/"+id, form("Docs v2", "https://docs.example.com/v2", "Work"))

	assertRedirectWith(t, d, rec, flash.Success(`Bookmark "Docs v2" updated successfully`))
	b, err := d.Bookmarks.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Docs v2", b.Name)
	assert.Equal(t, "Work", b.Category)
}

func TestEditRejectionsReRenderForm(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{"invalid url", form("Docs", "not a url", ""), "Please enter a valid URL"},
		{"missing name", form("", "https://docs.example.com", ""), "Name and URL are required"},
		{"url of another bookmark", form("Docs", "https://other.example.com", ""), "This URL is already bookmarked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps(t, memory.New())
			h := router(d)
			id, err := d.Bookmarks.Create(context.Background(), domain.Input{Name: "Docs", URL: "https://docs.example.com"})
			require.NoError(t, err)
			_, err = d.Bookmarks.Create(context.Background(), domain.Input{Name: "Other", URL: "https://other.example.com"})
			require.NoError(t, err)

			rec := post(h, "/edit/"+id, tt.form)

			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, tt.message)
			assert.Contains(t, body, `value="`+tt.form.Get("url")+`"`, "submitted values are kept")

			b, err := d.Bookmarks.Get(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, "https://docs.example.com", b.URL, "stored record is unchanged")
		})
	}
}

func TestEditUnknownID(t *testing.T) {
	d := newDeps(t, memory.New())

	rec := post(router(d), "/edit/unknown", form("Docs", "https://docs.example.com", ""))

	assertRedirectWith(t, d, rec, flash.Error("Bookmark not found"))
}

func TestDelete(t *testing.T) {
	d := newDeps(t, memory.New())
	h := router(d)
	id, err := d.Bookmarks.Create(context.Background(), domain.Input{Name: "Docs", URL: "https://docs.example.com"})
	require.NoError(t, err)

	assertRedirectWith(t, d, get(h, "/delete/"+id), flash.Success("Bookmark deleted successfully"))
	assertRedirectWith(t, d, get(h, "/delete/"+id), flash.Error("Bookmark not found"))
}

func TestDeleteStorageFailure(t *testing.T) {
	d := newDeps(t, failingCollection{})

	assertRedirectWith(t, d, get(router(d), "/delete/abc"), flash.Error("Error deleting bookmark"))
}

func TestCategories(t *testing.T) {
	d := newDeps(t, memory.New())
	for _, in := range []domain.Input{
		{Name: "A", URL: "https://a.example.com", Category: "Work"},
		{Name: "B", URL: "https://b.example.com"},
		{Name: "C", URL: "https://c.example.com", Category: "Work"},
	} {
		_, err := d.Bookmarks.Create(context.Background(), in)
		require.NoError(t, err)
	}

	rec := get(router(d), "/categories")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var cats []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	assert.Equal(t, []string{"General", "Work"}, cats)
}

func TestCategoriesStorageFailure(t *testing.T) {
	d := newDeps(t, failingCollection{})

	rec := get(router(d), "/categories")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestParsePage(t *testing.T) {
	tests := map[string]int{"": 1, "abc": 1, "3": 3, " 2 ": 2, "0": 0, "-4": -4}
	for raw, want := range tests {
		assert.Equal(t, want, parsePage(raw), "parsePage(%q)", raw)
	}
}
