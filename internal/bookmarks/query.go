package bookmarks

import (
	"context"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
)

// plan turns a raw list request into a filter and a window.
// Pages below 1 are clamped to 1.
func plan(search string, page int) (domain.Filter, domain.FindOptions, int) {
	if page < 1 {
		page = 1
	}
	return domain.Filter{Search: search},
		domain.FindOptions{Skip: (page - 1) * domain.PageSize, Limit: domain.PageSize},
		page
}

// List returns one page of bookmarks matching search, newest first.
//
// When the backend fails the returned Page is still renderable (no items,
// zero total, Degraded set) and the StorageError is returned with it.
func (s *Store) List(ctx context.Context, search string, page int) (domain.Page, error) {
	filter, opts, page := plan(search, page)

	result := domain.Page{
		Items:    []*domain.Bookmark{},
		Search:   search,
		Page:     page,
		PageSize: domain.PageSize,
	}

	total, err := s.coll.Count(ctx, filter)
	if err != nil {
		return degraded(result), s.storageFailure(opList, err,
			logger.String("search", search), logger.Int("page", page))
	}

	items, err := s.coll.FindMany(ctx, filter, opts)
	if err != nil {
		return degraded(result), s.storageFailure(opList, err,
			logger.String("search", search), logger.Int("page", page))
	}

	if items != nil {
		result.Items = items
	}
	result.TotalCount = total
	result.TotalPages = domain.TotalPagesFor(total, domain.PageSize)

	s.metrics.Operation(opList, metrics.OutcomeOK)
	return result, nil
}

func degraded(p domain.Page) domain.Page {
	p.Items = []*domain.Bookmark{}
	p.TotalCount = 0
	p.TotalPages = 0
	p.Degraded = true
	return p
}
