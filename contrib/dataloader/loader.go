package dataloader

import (
	"context"
	"errors"
	"sync"

	"github.com/syssam/sqlmodel/fragment"
	"github.com/syssam/sqlmodel/service"
)

// ByPrimaryKey returns a batch function loading the records of s with the
// given single-column primary keys in one query. key must return the
// primary key of a record.
func ByPrimaryKey[K comparable, T any](s *service.Service[T], key KeyFunc[K, *T]) BatchFunc[K, *T] {
	return func(ctx context.Context, keys []K) ([]*T, []error) {
		ms, err := s.FindByOnlyPrimaryKeys(ctx, distinct(keys))
		if err != nil {
			return make([]*T, len(keys)), repeat(len(keys), err)
		}
		return OrderByKeys(keys, ms, key)
	}
}

// ByField returns a batch function loading, for every key, the records of
// s whose field equals the key. key must return the field of a record.
//
//	postsByAuthor := dataloader.ByField(posts, "authorID", func(p *Post) int64 { return p.AuthorID })
func ByField[K comparable, T any](s *service.Service[T], field string, key KeyFunc[K, *T]) BatchFunc[K, []*T] {
	return func(ctx context.Context, keys []K) ([][]*T, []error) {
		if len(keys) == 0 {
			return [][]*T{}, []error{}
		}
		ms, err := s.FindByCondition(ctx, fragment.In(field, distinct(keys)...))
		if err != nil {
			return make([][]*T, len(keys)), repeat(len(keys), err)
		}
		return OrderGroupsByKeys(keys, GroupByKey(ms, key)), make([]error, len(keys))
	}
}

// Loader memoizes a batch function. A Loader is safe for concurrent use
// and is meant to live for one request, since it never expires entries.
type Loader[K comparable, V any] struct {
	batch BatchFunc[K, V]
	mu    sync.Mutex
	cache map[K]BatchResult[V]
}

// New returns a Loader over batch.
func New[K comparable, V any](batch BatchFunc[K, V]) *Loader[K, V] {
	return &Loader[K, V]{batch: batch, cache: make(map[K]BatchResult[V])}
}

// Load returns the value of key.
func (l *Loader[K, V]) Load(ctx context.Context, key K) (V, error) {
	r := l.LoadMany(ctx, []K{key})[0]
	return r.Value, r.Error
}

// LoadMany returns the results of keys in their order. Keys not seen
// before are loaded with a single call of the batch function. Failed loads
// other than ErrNotFound are not memoized.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) []BatchResult[V] {
	var missing []K
	l.mu.Lock()
	seen := make(map[K]bool)
	for _, k := range keys {
		if _, ok := l.cache[k]; !ok && !seen[k] {
			seen[k] = true
			missing = append(missing, k)
		}
	}
	l.mu.Unlock()

	fresh := make(map[K]BatchResult[V], len(missing))
	if len(missing) > 0 {
		values, errs := l.batch(ctx, missing)
		for i, r := range Results(values, errs) {
			fresh[missing[i]] = r
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for k, r := range fresh {
		if r.Error == nil || errors.Is(r.Error, ErrNotFound) {
			l.cache[k] = r
		}
	}
	results := make([]BatchResult[V], len(keys))
	for i, k := range keys {
		if r, ok := fresh[k]; ok {
			results[i] = r
		} else {
			results[i] = l.cache[k]
		}
	}
	return results
}

// Prime stores value under key unless key is already loaded.
func (l *Loader[K, V]) Prime(key K, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.cache[key]; !ok {
		l.cache[key] = BatchResult[V]{Value: value}
	}
}

// Clear drops key, so the next load of it queries again.
func (l *Loader[K, V]) Clear(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, key)
}

var (
	_ CachePrimer[int, any] = (*Loader[int, any])(nil)
	_ CacheClearer[int]     = (*Loader[int, any])(nil)
)

func distinct[K comparable](keys []K) []any {
	seen := make(map[K]struct{}, len(keys))
	vs := make([]any, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			vs = append(vs, k)
		}
	}
	return vs
}

func repeat(n int, err error) []error {
	errs := make([]error, n)
	for i := range errs {
		errs[i] = err
	}
	return errs
}
