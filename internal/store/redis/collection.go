package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

const timeLayout = time.RFC3339Nano

// Collection stores bookmarks as Redis hashes.
// The client (and its connection pool) is owned by the caller.
type Collection struct {
	client redis.UniversalClient
	keys   Keyspace
}

// NewCollection creates a Redis-backed bookmark collection
func NewCollection(client redis.UniversalClient, prefix string) *Collection {
	return &Collection{
		client: client,
		keys:   NewKeyspace(prefix),
	}
}

// InsertOne assigns a new ID and sequence to b and stores it
func (c *Collection) InsertOne(ctx context.Context, b *domain.Bookmark) (string, error) {
	id := uuid.NewString()

	seq, err := insertScript.Run(ctx, c.client,
		[]string{c.keys.Bookmark(id), c.keys.URLs(), c.keys.All(), c.keys.Seq()},
		id, b.Name, b.URL, b.Category, b.Description,
		b.CreatedAt.UTC().Format(timeLayout), b.UpdatedAt.UTC().Format(timeLayout),
	).Int64()
	if err != nil {
		return "", fmt.Errorf("failed to insert bookmark: %w", err)
	}
	if seq < 0 {
		return "", domain.ErrDuplicateURL
	}

	b.ID, b.Seq = id, seq
	return id, nil
}

// FindOneByID retrieves a bookmark by ID
func (c *Collection) FindOneByID(ctx context.Context, id string) (*domain.Bookmark, error) {
	fields, err := c.client.HGetAll(ctx, c.keys.Bookmark(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrNotFound
	}
	return decode(fields)
}

// FindOneByURL retrieves the bookmark owning url through the url index
func (c *Collection) FindOneByURL(ctx context.Context, url string) (*domain.Bookmark, error) {
	id, err := c.client.HGet(ctx, c.keys.URLs(), url).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up url: %w", err)
	}
	return c.FindOneByID(ctx, id)
}

// FindMany returns the matching bookmarks, newest first, windowed by opts
func (c *Collection) FindMany(ctx context.Context, f domain.Filter, opts domain.FindOptions) ([]*domain.Bookmark, error) {
	all, err := c.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]*domain.Bookmark, 0, len(all))
	for _, b := range all {
		if f.Matches(b) {
			matches = append(matches, b)
		}
	}
	domain.SortNewestFirst(matches)

	from, to := opts.Window(len(matches))
	return matches[from:to], nil
}

// Count returns the number of matching bookmarks
func (c *Collection) Count(ctx context.Context, f domain.Filter) (int64, error) {
	if f.Search == "" {
		n, err := c.client.ZCard(ctx, c.keys.All()).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to count bookmarks: %w", err)
		}
		return n, nil
	}

	all, err := c.loadAll(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, b := range all {
		if f.Matches(b) {
			n++
		}
	}
	return n, nil
}

// UpdateOne applies p to the bookmark with the given ID
func (c *Collection) UpdateOne(ctx context.Context, id string, p domain.Patch) (bool, error) {
	res, err := updateScript.Run(ctx, c.client,
		[]string{c.keys.Bookmark(id), c.keys.URLs()},
		id, p.Name, p.URL, p.Category, p.Description, p.UpdatedAt.UTC().Format(timeLayout),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to update bookmark: %w", err)
	}

	switch res {
	case 0:
		return false, nil
	case -1:
		return true, domain.ErrDuplicateURL
	default:
		return true, nil
	}
}

// DeleteOne removes a bookmark and its index entries
func (c *Collection) DeleteOne(ctx context.Context, id string) (int64, error) {
	n, err := deleteScript.Run(ctx, c.client,
		[]string{c.keys.Bookmark(id), c.keys.URLs(), c.keys.All()},
		id,
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return n, nil
}

// DistinctCategories returns each category present at least once
func (c *Collection) DistinctCategories(ctx context.Context) ([]string, error) {
	ids, err := c.client.ZRange(ctx, c.keys.All(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark IDs: %w", err)
	}
	if len(ids) == 0 {
		return []string{}, nil
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGet(ctx, c.keys.Bookmark(id), "category")
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	seen := make(map[string]struct{}, len(ids))
	categories := make([]string, 0, len(ids))
	for _, cmd := range cmds {
		cat, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			// deleted after ZRANGE
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		categories = append(categories, cat)
	}
	return categories, nil
}

// Ping checks the connection
func (c *Collection) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// loadAll fetches every document in one pipeline.
func (c *Collection) loadAll(ctx context.Context) ([]*domain.Bookmark, error) {
	ids, err := c.client.ZRevRange(ctx, c.keys.All(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark IDs: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Bookmark{}, nil
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, c.keys.Bookmark(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}

	bookmarks := make([]*domain.Bookmark, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		b, err := decode(fields)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

func decode(fields map[string]string) (*domain.Bookmark, error) {
	seq, err := strconv.ParseInt(fields["seq"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bookmark %s seq: %w", fields["id"], err)
	}
	created, err := time.Parse(timeLayout, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to decode bookmark %s created_at: %w", fields["id"], err)
	}
	updated, err := time.Parse(timeLayout, fields["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to decode bookmark %s updated_at: %w", fields["id"], err)
	}

	return &domain.Bookmark{
		ID:          fields["id"],
		Seq:         seq,
		Name:        fields["name"],
		URL:         fields["url"],
		Category:    fields["category"],
		Description: fields["description"],
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}
