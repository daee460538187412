package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// Collection is an in-process bookmark collection.
// It backs SHELF_BACKEND=memory (development) and the test suites.
// Contents are lost when the process exits.
type Collection struct {
	mu        sync.RWMutex
	bookmarks map[string]*domain.Bookmark // ID -> Bookmark
	urls      map[string]string           // URL -> ID (unique index)
	seq       int64
}

// New creates an empty collection.
func New() *Collection {
	return &Collection{
		bookmarks: make(map[string]*domain.Bookmark),
		urls:      make(map[string]string),
	}
}

// InsertOne stores a copy of b under a fresh ID.
func (c *Collection) InsertOne(_ context.Context, b *domain.Bookmark) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, taken := c.urls[b.URL]; taken {
		return "", domain.ErrDuplicateURL
	}

	c.seq++
	doc := b.Clone()
	doc.ID = uuid.NewString()
	doc.Seq = c.seq

	c.bookmarks[doc.ID] = doc
	c.urls[doc.URL] = doc.ID

	b.ID, b.Seq = doc.ID, doc.Seq
	return doc.ID, nil
}

// FindOneByID returns a copy of the bookmark with the given ID
func (c *Collection) FindOneByID(_ context.Context, id string) (*domain.Bookmark, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.bookmarks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b.Clone(), nil
}

// FindOneByURL returns a copy of the bookmark owning url
func (c *Collection) FindOneByURL(_ context.Context, url string) (*domain.Bookmark, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.urls[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c.bookmarks[id].Clone(), nil
}

// FindMany returns copies of the matching bookmarks, newest first
func (c *Collection) FindMany(_ context.Context, f domain.Filter, opts domain.FindOptions) ([]*domain.Bookmark, error) {
	matches := c.matching(f)
	domain.SortNewestFirst(matches)

	from, to := opts.Window(len(matches))
	return matches[from:to], nil
}

// Count returns the number of matching bookmarks
func (c *Collection) Count(_ context.Context, f domain.Filter) (int64, error) {
	return int64(len(c.matching(f))), nil
}

// UpdateOne applies p to the bookmark with the given ID
func (c *Collection) UpdateOne(_ context.Context, id string, p domain.Patch) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.bookmarks[id]
	if !ok {
		return false, nil
	}

	if p.URL != b.URL {
		if owner, taken := c.urls[p.URL]; taken && owner != id {
			return true, domain.ErrDuplicateURL
		}
		delete(c.urls, b.URL)
		c.urls[p.URL] = id
	}

	p.Apply(b)
	return true, nil
}

// DeleteOne removes the bookmark with the given ID
func (c *Collection) DeleteOne(_ context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.bookmarks[id]
	if !ok {
		return 0, nil
	}
	delete(c.bookmarks, id)
	if c.urls[b.URL] == id {
		delete(c.urls, b.URL)
	}
	return 1, nil
}

// DistinctCategories returns each category present at least once
func (c *Collection) DistinctCategories(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{}, len(c.bookmarks))
	categories := make([]string, 0, len(c.bookmarks))
	for _, b := range c.bookmarks {
		if _, ok := seen[b.Category]; ok {
			continue
		}
		seen[b.Category] = struct{}{}
		categories = append(categories, b.Category)
	}
	return categories, nil
}

// Ping always succeeds.
func (c *Collection) Ping(context.Context) error { return nil }

// Len returns the number of stored bookmarks
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.bookmarks)
}

func (c *Collection) matching(f domain.Filter) []*domain.Bookmark {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Bookmark, 0, len(c.bookmarks))
	for _, b := range c.bookmarks {
		if f.Matches(b) {
			out = append(out, b.Clone())
		}
	}
	return out
}
