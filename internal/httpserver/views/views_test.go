package views

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/flash"
)

func TestRenderIndex(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	data := IndexData{
		Flashes: []flash.Message{flash.Success(`Bookmark "Docs" added successfully`)},
		Page: domain.Page{
			Items: []*domain.Bookmark{{
				ID: "abc", Name: "<Docs>", URL: "https://docs.example.com",
				Category: "Work", CreatedAt: created,
			}},
			Search:     "docs",
			Page:       1,
			PageSize:   domain.PageSize,
			TotalCount: 11,
			TotalPages: 2,
		},
	}

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, Index, data))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "flash-success")
	assert.Contains(t, body, "&lt;Docs&gt;", "names must be escaped")
	assert.Contains(t, body, "/edit/abc")
	assert.Contains(t, body, "page 1 of 2")
	assert.Contains(t, body, "2024-05-01 10:00")
}

func TestRenderEditKeepsSubmittedValues(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = r.Render(rec, http.StatusOK, Edit, EditData{
		Flashes:  []flash.Message{flash.Error("Please enter a valid URL")},
		Bookmark: &domain.Bookmark{ID: "abc", Name: "Docs", URL: "not a url"},
	})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, `value="not a url"`)
	assert.Contains(t, body, "Please enter a valid URL")
	assert.Contains(t, body, `action="/edit/abc"`)
}

func TestRenderStaticPages(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for page, status := range map[string]int{NotFound: http.StatusNotFound, ServerError: http.StatusInternalServerError} {
		rec := httptest.NewRecorder()
		require.NoError(t, r.Render(rec, status, page, StaticData{}))
		assert.Equal(t, status, rec.Code)
		assert.Contains(t, rec.Body.String(), "Back to bookmarks")
	}
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, r.Render(rec, http.StatusOK, "missing", nil))
	assert.Zero(t, rec.Body.Len())
}
