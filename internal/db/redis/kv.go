package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/shoplens/searchd/internal/db"
)

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Get().Key(key).Build()
	data, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// Set stores a value at the given key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.b().Set().Key(key).Value(string(value)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.b().Set().Key(key).Value(string(value)).Ex(ttl).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// casScript compares the stored document's revision against the expected one
// and overwrites atomically. A missing key counts as revision 0. The value is
// expected to be a JSON object with a numeric "revision" field.
const casScript = `
local cur = redis.call('GET', KEYS[1])
local expected = tonumber(ARGV[2])
if cur then
  local rev = cjson.decode(cur)['revision']
  if rev ~= expected then
    return redis.error_reply('revision mismatch')
  end
elseif expected ~= 0 then
  return redis.error_reply('revision mismatch')
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[1])
end
return 'OK'
`

// CompareAndSwap implements the optimistic overwrite used by the session store.
func (s *Store) CompareAndSwap(
	ctx context.Context, key string, value []byte, expectedRevision int64, ttl time.Duration,
) error {
	ttlSec := int64(0)
	if ttl > 0 {
		ttlSec = int64(ttl.Seconds())
	}
	cmd := s.b().Eval().Script(casScript).Numkeys(1).Key(key).
		Arg(string(value), strconv.FormatInt(expectedRevision, 10), strconv.FormatInt(ttlSec, 10)).
		Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "revision mismatch") {
			return db.ErrRevisionMismatch
		}
		return &db.Error{Op: db.OpEval, Err: err}
	}
	return nil
}
