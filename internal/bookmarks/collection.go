package bookmarks

import (
	"context"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// Collection is the persistence backend the Store runs against.
//
// Implementations must return domain.ErrNotFound for missing documents and
// domain.ErrDuplicateURL when their unique URL index rejects a write. Any
// other error is treated as a storage failure.
type Collection interface {
	// InsertOne assigns ID and Seq to b, persists it and returns the new ID.
	InsertOne(ctx context.Context, b *domain.Bookmark) (string, error)

	FindOneByID(ctx context.Context, id string) (*domain.Bookmark, error)
	FindOneByURL(ctx context.Context, url string) (*domain.Bookmark, error)

	// FindMany returns the matching documents sorted newest first
	// (see domain.SortNewestFirst), windowed by opts.
	FindMany(ctx context.Context, f domain.Filter, opts domain.FindOptions) ([]*domain.Bookmark, error)
	Count(ctx context.Context, f domain.Filter) (int64, error)

	// UpdateOne applies p to the document with the given id.
	// matched is false when no such document exists.
	UpdateOne(ctx context.Context, id string, p domain.Patch) (matched bool, err error)

	DeleteOne(ctx context.Context, id string) (deleted int64, err error)
	DistinctCategories(ctx context.Context) ([]string, error)

	Ping(ctx context.Context) error
}
