package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/flash"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/views"
)

const (
	msgMissingFields = "Name and URL are required"
	msgInvalidURL    = "Please enter a valid URL"
	msgDuplicateURL  = "This URL is already bookmarked"
	msgNotFound      = "Bookmark not found"
	msgDeleted       = "Bookmark deleted successfully"
	msgLoadFailed    = "Error loading bookmarks"
	msgAddFailed     = "Error adding bookmark"
	msgEditFailed    = "Error editing bookmark"
	msgDeleteFailed  = "Error deleting bookmark"
)

// Index lists one page of bookmarks, optionally filtered by ?search=.
// The search term is matched exactly as typed, surrounding spaces included.
func Index(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		search := q.Get("search")

		page, err := d.Bookmarks.List(r.Context(), search, parsePage(q.Get("page")))
		flashes := d.Flash.Pop(w, r)
		if err != nil {
			flashes = append(flashes, flash.Error(msgLoadFailed))
		}

		render(d, w, http.StatusOK, views.Index, views.IndexData{Flashes: flashes, Page: page})
	}
}

// Add creates a bookmark from the submitted form and redirects to the list.
func Add(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := formInput(r)

		if _, err := d.Bookmarks.Create(r.Context(), in); err != nil {
			redirectHome(d, w, r, writeFailure(err, msgAddFailed))
			return
		}
		redirectHome(d, w, r, flash.Success(fmt.Sprintf(`Bookmark "%s" added successfully`, strings.TrimSpace(in.Name))))
	}
}

// EditForm shows the edit form for an existing bookmark.
func EditForm(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Bookmarks.Get(r.Context(), chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, domain.ErrNotFound):
			redirectHome(d, w, r, flash.Error(msgNotFound))
			return
		case err != nil:
			redirectHome(d, w, r, flash.Error(msgEditFailed))
			return
		}

		render(d, w, http.StatusOK, views.Edit, views.EditData{Flashes: d.Flash.Pop(w, r), Bookmark: b})
	}
}

// Edit applies the submitted form to a bookmark. Validation and duplicate
// failures re-render the form with what the user typed.
func Edit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		in := formInput(r)

		err := d.Bookmarks.Update(r.Context(), id, in)
		switch {
		case err == nil:
			redirectHome(d, w, r, flash.Success(fmt.Sprintf(`Bookmark "%s" updated successfully`, strings.TrimSpace(in.Name))))
		case errors.Is(err, domain.ErrNotFound):
			redirectHome(d, w, r, flash.Error(msgNotFound))
		case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrDuplicateURL):
			submitted := &domain.Bookmark{
				ID:          id,
				Name:        in.Name,
				URL:         in.URL,
				Category:    in.Category,
				Description: in.Description,
			}
			render(d, w, http.StatusOK, views.Edit, views.EditData{
				Flashes:  []flash.Message{writeFailure(err, msgEditFailed)},
				Bookmark: submitted,
			})
		default:
			redirectHome(d, w, r, flash.Error(msgEditFailed))
		}
	}
}

// Delete removes a bookmark. Deleting an unknown id is reported, not failed.
func Delete(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := d.Bookmarks.Delete(r.Context(), chi.URLParam(r, "id"))
		switch {
		case err != nil:
			redirectHome(d, w, r, flash.Error(msgDeleteFailed))
		case !deleted:
			redirectHome(d, w, r, flash.Error(msgNotFound))
		default:
			redirectHome(d, w, r, flash.Success(msgDeleted))
		}
	}
}

// Categories returns the distinct categories as a JSON array, [] on failure.
func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, _ := d.Bookmarks.Categories(r.Context())
		if cats == nil {
			cats = []string{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(cats)
	}
}

// writeFailure maps a rejected write to the message shown to the user.
func writeFailure(err error, fallback string) flash.Message {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return flash.Error(msgMissingFields)
	case errors.Is(err, domain.ErrInvalidURL):
		return flash.Error(msgInvalidURL)
	case errors.Is(err, domain.ErrDuplicateURL):
		return flash.Warning(msgDuplicateURL)
	case errors.Is(err, domain.ErrNotFound):
		return flash.Error(msgNotFound)
	default:
		return flash.Error(fallback)
	}
}

func formInput(r *http.Request) domain.Input {
	return domain.Input{
		Name:        r.PostFormValue("name"),
		URL:         r.PostFormValue("url"),
		Category:    r.PostFormValue("category"),
		Description: r.PostFormValue("description"),
	}
}

// parsePage reads ?page=, treating anything unparsable as the first page.
func parsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return n
}
