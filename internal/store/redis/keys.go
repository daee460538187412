package redis

// DefaultKeyPrefix namespaces every key written by the collection.
const DefaultKeyPrefix = "shelf"

// Keyspace builds the Redis keys of one bookmark collection.
//
//	<prefix>:bookmark:<id>     hash   one document
//	<prefix>:bookmarks:all     zset   id scored by insertion sequence
//	<prefix>:bookmarks:urls    hash   url -> id, the unique url index
//	<prefix>:bookmarks:seq     string insertion sequence counter
type Keyspace struct {
	prefix string
}

// NewKeyspace returns a keyspace rooted at prefix (DefaultKeyPrefix when empty).
func NewKeyspace(prefix string) Keyspace {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return Keyspace{prefix: prefix}
}

// Bookmark returns the key of the document with the given id
func (k Keyspace) Bookmark(id string) string {
	return k.prefix + ":bookmark:" + id
}

// All returns the key of the sorted set of all ids
func (k Keyspace) All() string {
	return k.prefix + ":bookmarks:all"
}

// URLs returns the key of the unique url index
func (k Keyspace) URLs() string {
	return k.prefix + ":bookmarks:urls"
}

// Seq returns the key of the insertion counter
func (k Keyspace) Seq() string {
	return k.prefix + ":bookmarks:seq"
}
