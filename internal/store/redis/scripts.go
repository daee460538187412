package redis

import "github.com/redis/go-redis/v9"

// Writes run as Lua scripts so the document, the id set and the url index
// change together or not at all.

// KEYS: doc, urls, all, seq
// ARGV: id, name, url, category, description, created_at, updated_at
// Returns the new sequence, or -1 when the url is already indexed.
var insertScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[2], ARGV[3]) == 1 then
  return -1
end
local seq = tostring(redis.call('INCR', KEYS[4]))
redis.call('HSET', KEYS[1],
  'id', ARGV[1],
  'name', ARGV[2],
  'url', ARGV[3],
  'category', ARGV[4],
  'description', ARGV[5],
  'seq', seq,
  'created_at', ARGV[6],
  'updated_at', ARGV[7])
redis.call('HSET', KEYS[2], ARGV[3], ARGV[1])
redis.call('ZADD', KEYS[3], seq, ARGV[1])
return tonumber(seq)
`)

// KEYS: doc, urls
// ARGV: id, name, url, category, description, updated_at
// Returns 1 when updated, 0 when the document is missing, -1 when the new
// url belongs to another document.
var updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
local old = redis.call('HGET', KEYS[1], 'url')
if old ~= ARGV[3] then
  local owner = redis.call('HGET', KEYS[2], ARGV[3])
  if owner and owner ~= ARGV[1] then
    return -1
  end
  if old and redis.call('HGET', KEYS[2], old) == ARGV[1] then
    redis.call('HDEL', KEYS[2], old)
  end
  redis.call('HSET', KEYS[2], ARGV[3], ARGV[1])
end
redis.call('HSET', KEYS[1],
  'name', ARGV[2],
  'url', ARGV[3],
  'category', ARGV[4],
  'description', ARGV[5],
  'updated_at', ARGV[6])
return 1
`)

// KEYS: doc, urls, all
// ARGV: id
// Returns the number of deleted documents.
var deleteScript = redis.NewScript(`
local url = redis.call('HGET', KEYS[1], 'url')
if not url then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('ZREM', KEYS[3], ARGV[1])
if redis.call('HGET', KEYS[2], url) == ARGV[1] then
  redis.call('HDEL', KEYS[2], url)
end
return 1
`)
