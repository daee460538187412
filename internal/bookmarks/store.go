package bookmarks

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
)

const (
	opCreate     = "create"
	opGet        = "get"
	opUpdate     = "update"
	opDelete     = "delete"
	opList       = "list"
	opCategories = "categories"
)

// Store owns the bookmark lifecycle: validation, duplicate policy,
// and every read and write against the Collection.
//
// Store holds no mutable state of its own and is safe for concurrent use.
type Store struct {
	coll    Collection
	logger  logger.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

// New creates a Store. m may be nil.
func New(coll Collection, log logger.Logger, m *metrics.Collector) *Store {
	return &Store{
		coll:    coll,
		logger:  log,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create validates in, rejects duplicate URLs and inserts a new bookmark.
func (s *Store) Create(ctx context.Context, in domain.Input) (string, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		s.rejected(opCreate, metrics.OutcomeInvalid, err, logger.String("url", in.URL))
		return "", err
	}

	existing, err := s.coll.FindOneByURL(ctx, in.URL)
	switch {
	case err == nil && existing != nil:
		s.rejected(opCreate, metrics.OutcomeDuplicate, domain.ErrDuplicateURL,
			logger.String("url", in.URL), logger.String("existing_id", existing.ID))
		return "", domain.ErrDuplicateURL
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return "", s.storageFailure(opCreate, err, logger.String("url", in.URL))
	}

	now := s.now()
	b := &domain.Bookmark{
		Name:        in.Name,
		URL:         in.URL,
		Category:    in.Category,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.coll.InsertOne(ctx, b)
	if errors.Is(err, domain.ErrDuplicateURL) {
		// lost the race against a concurrent insert of the same url
		s.rejected(opCreate, metrics.OutcomeDuplicate, err, logger.String("url", in.URL))
		return "", domain.ErrDuplicateURL
	}
	if err != nil {
		return "", s.storageFailure(opCreate, err, logger.String("url", in.URL))
	}

	s.metrics.Operation(opCreate, metrics.OutcomeOK)
	s.logger.Info("added bookmark",
		logger.String("id", id),
		logger.String("name", in.Name),
		logger.String("url", in.URL))
	return id, nil
}

// Get returns the bookmark with the given id or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*domain.Bookmark, error) {
	b, err := s.coll.FindOneByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.rejected(opGet, metrics.OutcomeNotFound, err, logger.String("id", id))
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, s.storageFailure(opGet, err, logger.String("id", id))
	}
	s.metrics.Operation(opGet, metrics.OutcomeOK)
	return b, nil
}

// Update overwrites the editable fields of an existing bookmark.
// The URL must stay unique: moving a bookmark onto a URL owned by
// another bookmark fails with domain.ErrDuplicateURL.
func (s *Store) Update(ctx context.Context, id string, in domain.Input) error {
	current, err := s.coll.FindOneByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.rejected(opUpdate, metrics.OutcomeNotFound, err, logger.String("id", id))
		return domain.ErrNotFound
	}
	if err != nil {
		return s.storageFailure(opUpdate, err, logger.String("id", id))
	}

	in = in.Normalize()
	if err := in.Validate(); err != nil {
		s.rejected(opUpdate, metrics.OutcomeInvalid, err, logger.String("id", id))
		return err
	}

	if in.URL != current.URL {
		other, err := s.coll.FindOneByURL(ctx, in.URL)
		switch {
		case err == nil && other != nil && other.ID != id:
			s.rejected(opUpdate, metrics.OutcomeDuplicate, domain.ErrDuplicateURL,
				logger.String("id", id), logger.String("url", in.URL))
			return domain.ErrDuplicateURL
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return s.storageFailure(opUpdate, err, logger.String("id", id), logger.String("url", in.URL))
		}
	}

	matched, err := s.coll.UpdateOne(ctx, id, domain.Patch{
		Name:        in.Name,
		URL:         in.URL,
		Category:    in.Category,
		Description: in.Description,
		UpdatedAt:   s.now(),
	})
	if errors.Is(err, domain.ErrDuplicateURL) {
		s.rejected(opUpdate, metrics.OutcomeDuplicate, err, logger.String("id", id), logger.String("url", in.URL))
		return domain.ErrDuplicateURL
	}
	if err != nil {
		return s.storageFailure(opUpdate, err, logger.String("id", id))
	}
	if !matched {
		// deleted between lookup and write
		s.rejected(opUpdate, metrics.OutcomeNotFound, domain.ErrNotFound, logger.String("id", id))
		return domain.ErrNotFound
	}

	s.metrics.Operation(opUpdate, metrics.OutcomeOK)
	s.logger.Info("updated bookmark",
		logger.String("id", id),
		logger.String("name", in.Name),
		logger.String("url", in.URL))
	return nil
}

// Delete removes the bookmark with the given id. Deleting an unknown id
// is not an error; deleted reports whether anything was removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	n, err := s.coll.DeleteOne(ctx, id)
	if err != nil {
		return false, s.storageFailure(opDelete, err, logger.String("id", id))
	}
	if n == 0 {
		s.rejected(opDelete, metrics.OutcomeNotFound, domain.ErrNotFound, logger.String("id", id))
		return false, nil
	}

	s.metrics.Operation(opDelete, metrics.OutcomeOK)
	s.logger.Info("deleted bookmark", logger.String("id", id))
	return true, nil
}

// Categories returns every distinct category, sorted. On failure the
// slice is empty (never nil) and the StorageError is returned alongside.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.coll.DistinctCategories(ctx)
	if err != nil {
		return []string{}, s.storageFailure(opCategories, err)
	}
	if cats == nil {
		cats = []string{}
	}
	sort.Strings(cats)
	s.metrics.Operation(opCategories, metrics.OutcomeOK)
	return cats, nil
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Ping(ctx)
}

// rejected records an expected, user-facing outcome. These are not failures.
func (s *Store) rejected(op, outcome string, err error, fields ...logger.Field) {
	s.metrics.Operation(op, outcome)
	s.logger.Debug("bookmark operation rejected",
		append([]logger.Field{logger.String("op", op), logger.Error(err)}, fields...)...)
}

func (s *Store) storageFailure(op string, err error, fields ...logger.Field) error {
	s.metrics.Operation(op, metrics.OutcomeError)
	s.logger.Error("bookmark storage failure",
		append([]logger.Field{logger.String("op", op), logger.Error(err)}, fields...)...)
	return &domain.StorageError{Op: op, Err: err}
}
