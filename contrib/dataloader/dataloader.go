// Package dataloader batches record lookups of a service.Service, so that
// resolving N records by key costs one query instead of N.
//
// # Batch Functions
//
// ByPrimaryKey and ByField build batch functions over a service:
//
//	users, err := service.New[User](drv)
//	if err != nil {
//	    return err
//	}
//	byID := dataloader.ByPrimaryKey(users, func(u *User) int64 { return u.ID })
//	ordered, errs := byID(ctx, []int64{3, 1, 2})
//
// The result of a batch function has one entry per requested key, in the
// order of the keys, which is the contract of DataLoader libraries such as
// github.com/graph-gophers/dataloader/v7.
//
// # Request-Scoped Loaders
//
// A Loader memoizes a batch function for the lifetime of a request:
//
//	loaders := &Loaders{Users: dataloader.New(byID)}
//	ctx = dataloader.WithLoaders(ctx, loaders)
//	...
//	u, err := dataloader.For[*Loaders](ctx).Users.Load(ctx, 1)
package dataloader

import (
	"context"
	"errors"
)

// ErrNotFound is returned for a key with no record in a batch result.
var ErrNotFound = errors.New("dataloader: record not found")

// KeyFunc extracts a key from a record.
type KeyFunc[K comparable, V any] func(V) K

// BatchFunc loads a batch of records by their keys. Both returned slices
// have the length of keys.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, []error)

// OrderByKeys reorders values to match the order of keys. A key with no
// value gets the zero value and ErrNotFound.
//
//	users, _ := svc.FindByOnlyPrimaryKeys(ctx, ids)
//	ordered, errs := dataloader.OrderByKeys(keys, users, func(u *User) int64 { return u.ID })
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// OrderByKeysNoError is like OrderByKeys, but leaves missing keys at the
// zero value without an error. Use it for optional references.
func OrderByKeysNoError[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) []V {
	result, _ := OrderByKeys(keys, values, keyFn)
	return result
}

// GroupByKey groups values by keyFn, keeping their relative order.
//
//	posts, _ := posts.FindByCondition(ctx, fragment.In("authorID", ids...))
//	grouped := dataloader.GroupByKey(posts, func(p *Post) int64 { return p.AuthorID })
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys returns the group of every key, in the order of keys.
// A key without a group gets nil.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}

// CachePrimer is a loader cache accepting known values.
type CachePrimer[K comparable, V any] interface {
	Prime(key K, value V)
}

// PrimeMany primes every value under its key.
func PrimeMany[K comparable, V any](cache CachePrimer[K, V], values []V, keyFn KeyFunc[K, V]) {
	for _, v := range values {
		cache.Prime(keyFn(v), v)
	}
}

// CacheClearer is a loader cache dropping keys, typically after a modify
// or remove of the records behind them.
type CacheClearer[K comparable] interface {
	Clear(key K)
}

// ClearMany clears multiple keys from a cache.
func ClearMany[K comparable](cache CacheClearer[K], keys []K) {
	for _, key := range keys {
		cache.Clear(key)
	}
}

type ctxKey struct{}

// WithLoaders returns a copy of ctx carrying loaders. It is usually called
// once per request by an HTTP middleware:
//
//	func Middleware(users *service.Service[User]) func(http.Handler) http.Handler {
//		return func(next http.Handler) http.Handler {
//			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//				loaders := &Loaders{Users: dataloader.New(dataloader.ByPrimaryKey(users, userID))}
//				next.ServeHTTP(w, r.WithContext(dataloader.WithLoaders(r.Context(), loaders)))
//			})
//		}
//	}
func WithLoaders[T any](ctx context.Context, loaders T) context.Context {
	return context.WithValue(ctx, ctxKey{}, loaders)
}

// For returns the loaders stored in ctx by WithLoaders, or the zero T.
func For[T any](ctx context.Context) T {
	v, _ := ctx.Value(ctxKey{}).(T)
	return v
}

// BatchResult is the outcome of loading one key.
type BatchResult[V any] struct {
	Value V
	Error error
}

// NewBatchResult creates a new BatchResult.
func NewBatchResult[V any](value V, err error) BatchResult[V] {
	return BatchResult[V]{Value: value, Error: err}
}

// Results zips values and errs. Missing errors are nil.
func Results[V any](values []V, errs []error) []BatchResult[V] {
	results := make([]BatchResult[V], len(values))
	for i := range values {
		var err error
		if i < len(errs) {
			err = errs[i]
		}
		results[i] = BatchResult[V]{Value: values[i], Error: err}
	}
	return results
}
