package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/recipeq/internal/db"
)

// get retrieves a value by key.
func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
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

// setNX stores a value only if the key is absent. Reports whether it was stored.
func (s *Store) setNX(ctx context.Context, key string, value []byte) (bool, error) {
	cmd := s.b().Set().Key(key).Value(string(value)).Nx().Build()
	err := s.do(ctx, cmd).Error()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return false, nil
		}
		return false, &db.Error{Op: db.OpSet, Err: err}
	}
	return true, nil
}

// compareAndSetScript replaces KEYS[1] with ARGV[2] only while it still holds ARGV[1].
var compareAndSetScript = rueidis.NewLuaScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then return -1 end
if cur ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[1], ARGV[2])
return 1
`)

// Outcomes of compareAndSet.
const (
	casMissing  int64 = -1
	casConflict int64 = 0
	casStored   int64 = 1
)

// compareAndSet atomically swaps old for value under key.
func (s *Store) compareAndSet(ctx context.Context, key string, old, value []byte) (int64, error) {
	n, err := compareAndSetScript.Exec(ctx, s.client, []string{key}, []string{string(old), string(value)}).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpSet, Err: err}
	}
	return n, nil
}

// del removes a key. Reports whether it existed.
func (s *Store) del(ctx context.Context, key string) (bool, error) {
	cmd := s.b().Del().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpDel, Err: err}
	}
	return n > 0, nil
}

// mget fetches several keys at once. Missing keys come back as nil entries.
func (s *Store) mget(ctx context.Context, keys []string) ([][]byte, error) {
	cmd := s.b().Mget().Key(keys...).Build()
	msgs, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpMGet, Err: err}
	}
	out := make([][]byte, len(msgs))
	for i, m := range msgs {
		if m.IsNil() {
			continue
		}
		str, err := m.ToString()
		if err != nil {
			return nil, &db.Error{Op: db.OpMGet, Err: err}
		}
		out[i] = []byte(str)
	}
	return out, nil
}

// scanPage returns one SCAN page for pattern.
func (s *Store) scanPage(ctx context.Context, cursor uint64, pattern string) (rueidis.ScanEntry, error) {
	cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(s.scanCount).Build()
	entry, err := s.do(ctx, cmd).AsScanEntry()
	if err != nil {
		return rueidis.ScanEntry{}, &db.Error{Op: db.OpScan, Err: err}
	}
	return entry, nil
}
