// Package storetest holds the behaviour every bookmarks.Collection must
// share. Backend packages run it from their own tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/bookmarks"
	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// Factory returns an empty collection for one subtest.
type Factory func(t *testing.T) bookmarks.Collection

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// Bookmark builds a ready-to-insert document.
func Bookmark(name, url, category string, created time.Time) *domain.Bookmark {
	return &domain.Bookmark{
		Name:      name,
		URL:       url,
		Category:  category,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// Run executes the collection contract against collections built by newColl.
func Run(t *testing.T, newColl Factory) {
	t.Run("InsertAndFind", func(t *testing.T) { testInsertAndFind(t, newColl(t)) })
	t.Run("InsertDuplicateURL", func(t *testing.T) { testInsertDuplicateURL(t, newColl(t)) })
	t.Run("ConcurrentInsertSameURL", func(t *testing.T) { testConcurrentInsertSameURL(t, newColl(t)) })
	t.Run("FindManyOrderAndWindow", func(t *testing.T) { testFindManyOrderAndWindow(t, newColl(t)) })
	t.Run("FindManyFilter", func(t *testing.T) { testFindManyFilter(t, newColl(t)) })
	t.Run("UpdateOne", func(t *testing.T) { testUpdateOne(t, newColl(t)) })
	t.Run("UpdateOneURLIndex", func(t *testing.T) { testUpdateOneURLIndex(t, newColl(t)) })
	t.Run("DeleteOne", func(t *testing.T) { testDeleteOne(t, newColl(t)) })
	t.Run("DistinctCategories", func(t *testing.T) { testDistinctCategories(t, newColl(t)) })
}

func testInsertAndFind(t *testing.T, c bookmarks.Collection) {
	ctx := context.Background()
	b := Bookmark("Docs", "https://example.com/docs", "General", epoch)
	b.Description = "reference"

	id, err := c.InsertOne(ctx, b)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, b.ID)
	assert.Positive(t, b.Seq)

	got, err := c.FindOneByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Docs", got.Name)
	assert.Equal(t, "https://example.com/docs", got.URL)
	assert.Equal(t, "General", got.Category)
	assert.Equal(t, "reference", got.Description)
	assert.True(t, got.CreatedAt.Equal(epoch))
	assert.True(t, got.UpdatedAt.Equal(epoch))

	byURL, err := c.FindOneByURL(ctx, "https://example.com/docs")
	require.NoError(t, err)
	assert.Equal(t, id, byURL.ID)

	_, err = c.FindOneByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// url lookups are exact and case-sensitive
	_, err = c.FindOneByURL(ctx, "https://EXAMPLE.com/docs")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testInsertDuplicateURL(t *testing.T, c bookmarks.Collection) {
	ctx := context.Background()

	_, err := c.InsertOne(ctx, Bookmark("A", "https://dup.example.com", "General", epoch))
	require.NoError(t, err)

	_, err = c.InsertOne(ctx, Bookmark("B", "https://dup.example.com", "Other", epoch))
	assert.ErrorIs(t, err, domain.ErrDuplicateURL)

	n, err := c.Count(ctx, domain.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func testConcurrentInsertSameURL(t *testing.T, c bookmarks.Collection) {
	ctx := context.Background()
	const workers = 8

	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.InsertOne(ctx, Bookmark(fmt.Sprintf("w%d", i), "https://race.example.com", "General", epoch))
			switch {
			case err == nil:
				ok.Add(1)
			case assert.ErrorIs(t, err, domain.ErrDuplicateURL):
				dup.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(workers-1), dup.Load())
}

func testFindManyOrderAndWindow(t *testing.T, c bookmarks.Collection) {
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := c.InsertOne(ctx, Bookmark(
			fmt.Sprintf("item-%02d", i),
			fmt.Sprintf("https://example.com/%02d", i),
			"General",
			epoch.Add(time.Duration(i)*time.Minute),
		))
		require.NoError(t, err)
	}

	first, err := c.FindMany(ctx, domain.Filter{}, domain.FindOptions{Skip: 0, Limit: 10})
	require.NoError(t, err)
	require.Len(t, first, 10)
	assert.Equal(t, "item-24", first[0].Name)
	assert.Equal(t, "item-15", first[9].Name)
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i-1].CreatedAt.After(first[i].CreatedAt))
	}

	last, err := c.FindMany(ctx, domain.Filter{}, domain.FindOptions{Skip: 20, Limit: 10})
	require.NoError(t, err)
	require.Len(t, last, 5)
	assert.Equal(t, "item-04", last[0].Name)
	assert.Equal(t, "item-00", last[4].Name)

	beyond, err := c.FindMany(ctx, domain.Filter{}, domain.FindOptions{Skip: 30, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)

	// equal timestamps fall back to insertion order, newest insert first
	_, err = c.InsertOne(ctx, Bookmark("tie-a", "https://tie.example.com/a", "General", epoch.Add(time.Hour)))
	require.NoError(t, err)
	_, err = c.InsertOne(ctx, Bookmark("tie-b", "https://tie.example.com/b", "General", epoch.Add(time.Hour)))
	require.NoError(t, err)

	top, err := c.FindMany(ctx, domain.Filter{}, domain.FindOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "tie-b", top[0].Name)
	assert.Equal(t, "tie-a", top[1].Name)
}

func testFindManyFilter(t *testing.T, c bookmarks.Collection) {
	ctx := context.Background()

	for _, b := range []*domain.Bookmark{
		Bookmark("Foobar", "https://one.example.com", "General", epoch),
		Bookmark("Something", "http://example.com/foo", "General", epoch.Add(time.Minute)),
		Bookmark("Bar", "https://bar.example.com", "General", epoch.Add(2*time.Minute)),
	} {
		_, err := c.InsertOne(ctx, b)
		require.NoError(t, err)
	}

	got, err := c.FindMany(ctx, domain.Filter{Search: "foo"}, domain.FindOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Something", got[0].Name)
	assert.Equal(t, "Foobar", got[1].Name)

	n, err := c.Count(ctx, domain.Filter{Search: "FOO"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = c.Count(ctx, domain.Filter{Search: "nothing-matches"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testUpdateOne(t *testing.T, c bookmarks.Collection) {
	ctx := context.Background()

	id, err := c.InsertOne(ctx, Bookmark("Old", "https://old.example.com", "General", epoch))
	require.NoError(t, err)

	later := epoch.Add(time.Hour)
	matched, err := c.UpdateOne(ctx, id, domain.Patch{
		Name:        "New",
		URL:         "https://new.example.com",
		Category:    "Work",
		Description: "moved",
		UpdatedAt:   later,
	})
	require.NoError(t, err)
	assert.True(t, matched)

	got, err := c.FindOneByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, "https://new.example.com", got.URL)
	assert.Equal(t, "Work", got.Category)
	assert.Equal(t, "moved", got.Description)
	assert.True(t, got.CreatedAt.Equal(epoch), "created_at must not change")
	assert.True(t, got.UpdatedAt.Equal(later))

	matched, err = c.UpdateOne(ctx, "missing", domain.Patch{Name: "x", URL: "https://x.example.com", UpdatedAt: later})
	require.NoError(t, err)
	assert.False(t, matched)
}

func testUpdateOneURLIndex(t *testing.T, c bookmarks.Collection) {
	ctx := context.Background()

	a, err := c.InsertOne(ctx, Bookmark("A", "https://a.example.com", "General", epoch))
	require.NoError(t, err)
	b, err := c.InsertOne(ctx, Bookmark("B", "https://b.example.com", "General", epoch))
	require.NoError(t, err)

	_, err = c.UpdateOne(ctx, b, domain.Patch{Name: "B", URL: "https://a.example.com", Category: "General", UpdatedAt: epoch})
	assert.ErrorIs(t, err, domain.ErrDuplicateURL)

	got, err := c.FindOneByID(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "https://b.example.com", got.URL, "rejected update must not write")

	// moving a's url frees the old one
	_, err = c.UpdateOne(ctx, a, domain.Patch{Name: "A", URL: "https://a2.example.com", Category: "General", UpdatedAt: epoch})
	require.NoError(t, err)

	_, err = c.FindOneByURL(ctx, "https://a.example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.InsertOne(ctx, Bookmark("A again", "https://a.example.com", "General", epoch))
	assert.NoError(t, err)
}

func testDeleteOne(t *testing.T, c bookmarks.Collection) {
	ctx := context.Background()

	id, err := c.InsertOne(ctx, Bookmark("Gone", "https://gone.example.com", "General", epoch))
	require.NoError(t, err)

	n, err := c.DeleteOne(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.DeleteOne(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = c.FindOneByID(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// the url is free again and the new record gets a new id
	newID, err := c.InsertOne(ctx, Bookmark("Back", "https://gone.example.com", "General", epoch))
	require.NoError(t, err)
	assert.NotEqual(t, id, newID)
}

func testDistinctCategories(t *testing.T, c bookmarks.Collection) {
	ctx := context.Background()

	cats, err := c.DistinctCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)

	for i, cat := range []string{"Work", "General", "Work", "Reading"} {
		_, err := c.InsertOne(ctx, Bookmark(cat, fmt.Sprintf("https://cat.example.com/%d", i), cat, epoch))
		require.NoError(t, err)
	}

	cats, err = c.DistinctCategories(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Work", "General", "Reading"}, cats)
}
