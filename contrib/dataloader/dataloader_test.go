package dataloader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   int
	Name string
}

func TestOrderByKeys(t *testing.T) {
	t.Parallel()

	keyFn := func(r *record) int { return r.ID }

	t.Run("all_keys_found", func(t *testing.T) {
		t.Parallel()
		keys := []int{1, 2, 3}
		values := []*record{
			{ID: 3, Name: "third"},
			{ID: 1, Name: "first"},
			{ID: 2, Name: "second"},
		}

		result, errs := OrderByKeys(keys, values, keyFn)

		require.Len(t, result, 3)
		require.Len(t, errs, 3)
		assert.Equal(t, "first", result[0].Name)
		assert.Equal(t, "second", result[1].Name)
		assert.Equal(t, "third", result[2].Name)
		for _, err := range errs {
			assert.NoError(t, err)
		}
	})

	t.Run("some_keys_missing", func(t *testing.T) {
		t.Parallel()
		keys := []int{1, 2, 3, 4}
		values := []*record{
			{ID: 1, Name: "first"},
			{ID: 3, Name: "third"},
		}

		result, errs := OrderByKeys(keys, values, keyFn)

		require.Len(t, result, 4)
		require.Len(t, errs, 4)
		assert.Equal(t, "first", result[0].Name)
		assert.Nil(t, result[1])
		assert.Equal(t, "third", result[2].Name)
		assert.Nil(t, result[3])
		assert.NoError(t, errs[0])
		assert.ErrorIs(t, errs[1], ErrNotFound)
		assert.NoError(t, errs[2])
		assert.ErrorIs(t, errs[3], ErrNotFound)
	})

	t.Run("empty_keys", func(t *testing.T) {
		t.Parallel()
		keys := []int{}
		values := []*record{}

		result, errs := OrderByKeys(keys, values, keyFn)

		assert.Empty(t, result)
		assert.Empty(t, errs)
	})

	t.Run("empty_values", func(t *testing.T) {
		t.Parallel()
		keys := []int{1, 2, 3}
		values := []*record{}

		result, errs := OrderByKeys(keys, values, keyFn)

		require.Len(t, result, 3)
		for i, err := range errs {
			assert.ErrorIs(t, err, ErrNotFound, "expected ErrNotFound at index %d", i)
		}
	})

	t.Run("duplicate_keys", func(t *testing.T) {
		t.Parallel()
		keys := []int{1, 1, 2}
		values := []*record{
			{ID: 1, Name: "first"},
			{ID: 2, Name: "second"},
		}

		result, errs := OrderByKeys(keys, values, keyFn)

		require.Len(t, result, 3)
		assert.Equal(t, "first", result[0].Name)
		assert.Equal(t, "first", result[1].Name)
		assert.Equal(t, "second", result[2].Name)
		for _, err := range errs {
			assert.NoError(t, err)
		}
	})
}

func TestOrderByKeysNoError(t *testing.T) {
	t.Parallel()

	keyFn := func(r *record) int { return r.ID }

	t.Run("missing_without_errors", func(t *testing.T) {
		keys := []int{1, 2, 3}
		values := []*record{
			{ID: 1, Name: "first"},
			{ID: 3, Name: "third"},
		}

		result := OrderByKeysNoError(keys, values, keyFn)

		require.Len(t, result, 3)
		assert.Equal(t, "first", result[0].Name)
		assert.Nil(t, result[1])
		assert.Equal(t, "third", result[2].Name)
	})
}

func TestGroupByKey(t *testing.T) {
	t.Parallel()

	type post struct {
		ID     int
		UserID int
		Title  string
	}

	keyFn := func(p *post) int { return p.UserID }

	t.Run("groups_by_key", func(t *testing.T) {
		t.Parallel()
		posts := []*post{
			{ID: 1, UserID: 10, Title: "Post 1"},
			{ID: 2, UserID: 10, Title: "Post 2"},
			{ID: 3, UserID: 20, Title: "Post 3"},
			{ID: 4, UserID: 10, Title: "Post 4"},
		}

		grouped := GroupByKey(posts, keyFn)

		require.Len(t, grouped[10], 3)
		require.Len(t, grouped[20], 1)
		assert.Equal(t, "Post 1", grouped[10][0].Title)
		assert.Equal(t, "Post 2", grouped[10][1].Title)
		assert.Equal(t, "Post 4", grouped[10][2].Title)
		assert.Equal(t, "Post 3", grouped[20][0].Title)
	})

	t.Run("empty_input", func(t *testing.T) {
		t.Parallel()
		grouped := GroupByKey([]*post{}, keyFn)
		assert.Empty(t, grouped)
	})
}

func TestOrderGroupsByKeys(t *testing.T) {
	t.Parallel()

	t.Run("orders_groups", func(t *testing.T) {
		keys := []int{10, 20, 30}
		groups := map[int][]string{
			10: {"a", "b"},
			20: {"c"},
		}

		result := OrderGroupsByKeys(keys, groups)

		require.Len(t, result, 3)
		assert.Equal(t, []string{"a", "b"}, result[0])
		assert.Equal(t, []string{"c"}, result[1])
		assert.Nil(t, result[2])
	})

	t.Run("empty_keys", func(t *testing.T) {
		result := OrderGroupsByKeys([]int{}, map[int][]string{})
		assert.Empty(t, result)
	})
}

type mockCache[K comparable, V any] struct {
	data    map[K]V
	cleared []K
}

func newMockCache[K comparable, V any]() *mockCache[K, V] {
	return &mockCache[K, V]{data: make(map[K]V)}
}

func (c *mockCache[K, V]) Prime(key K, value V) {
	c.data[key] = value
}

func (c *mockCache[K, V]) Clear(key K) {
	c.cleared = append(c.cleared, key)
	delete(c.data, key)
}

func TestPrimeMany(t *testing.T) {
	t.Parallel()

	cache := newMockCache[int, *record]()
	entities := []*record{
		{ID: 1, Name: "first"},
		{ID: 2, Name: "second"},
	}

	PrimeMany(cache, entities, func(r *record) int { return r.ID })

	assert.Equal(t, "first", cache.data[1].Name)
	assert.Equal(t, "second", cache.data[2].Name)
}

func TestClearMany(t *testing.T) {
	t.Parallel()

	cache := newMockCache[int, *record]()
	cache.data[1] = &record{ID: 1}
	cache.data[2] = &record{ID: 2}
	cache.data[3] = &record{ID: 3}

	ClearMany[int](cache, []int{1, 3})

	assert.Contains(t, cache.cleared, 1)
	assert.Contains(t, cache.cleared, 3)
	assert.NotContains(t, cache.cleared, 2)
}

type testLoaders struct {
	Users string
}

func TestWithLoaders(t *testing.T) {
	t.Parallel()

	loaders := &testLoaders{Users: "test"}
	ctx := WithLoaders(context.Background(), loaders)

	retrieved := For[*testLoaders](ctx)
	require.NotNil(t, retrieved)
	assert.Equal(t, "test", retrieved.Users)
}

func TestForMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	retrieved := For[*testLoaders](ctx)
	assert.Nil(t, retrieved)
}

func TestNewBatchResult(t *testing.T) {
	t.Parallel()

	t.Run("with_value", func(t *testing.T) {
		result := NewBatchResult(&record{ID: 1}, nil)
		assert.Equal(t, 1, result.Value.ID)
		assert.NoError(t, result.Error)
	})

	t.Run("with_error", func(t *testing.T) {
		result := NewBatchResult[*record](nil, ErrNotFound)
		assert.Nil(t, result.Value)
		assert.ErrorIs(t, result.Error, ErrNotFound)
	})
}

func TestResults(t *testing.T) {
	t.Parallel()

	t.Run("zips_values_and_errors", func(t *testing.T) {
		values := []*record{{ID: 1}, nil, {ID: 3}}
		errs := []error{nil, ErrNotFound, nil}

		results := Results(values, errs)

		require.Len(t, results, 3)
		assert.Equal(t, 1, results[0].Value.ID)
		assert.NoError(t, results[0].Error)
		assert.Nil(t, results[1].Value)
		assert.ErrorIs(t, results[1].Error, ErrNotFound)
		assert.Equal(t, 3, results[2].Value.ID)
		assert.NoError(t, results[2].Error)
	})

	t.Run("fewer_errors_than_values", func(t *testing.T) {
		values := []*record{{ID: 1}, {ID: 2}, {ID: 3}}
		errs := []error{nil}

		results := Results(values, errs)

		require.Len(t, results, 3)
		assert.NoError(t, results[0].Error)
		assert.NoError(t, results[1].Error)
		assert.NoError(t, results[2].Error)
	})

	t.Run("empty_input", func(t *testing.T) {
		results := Results([]*record{}, []error{})
		assert.Empty(t, results)
	})
}

func BenchmarkOrderByKeys(b *testing.B) {
	keyFn := func(r *record) int { return r.ID }

	keys := make([]int, 100)
	values := make([]*record, 100)
	for i := 0; i < 100; i++ {
		keys[i] = i
		values[i] = &record{ID: i, Name: "entity"}
	}

	for b.Loop() {
		OrderByKeys(keys, values, keyFn)
	}
}

func BenchmarkGroupByKey(b *testing.B) {
	type post struct {
		ID     int
		UserID int
	}
	keyFn := func(p *post) int { return p.UserID }

	posts := make([]*post, 100)
	for i := 0; i < 100; i++ {
		posts[i] = &post{ID: i, UserID: i % 10}
	}

	for b.Loop() {
		GroupByKey(posts, keyFn)
	}
}
