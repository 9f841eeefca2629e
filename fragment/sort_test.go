package fragment_test

import (
	"testing"

	"github.com/syssam/sqlmodel"
	"github.com/syssam/sqlmodel/dialect/sql"
	"github.com/syssam/sqlmodel/fragment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSort(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var s fragment.Sort
		assert.True(t, s.IsEmpty())
		terms, err := s.Terms(resolve)
		require.NoError(t, err)
		assert.Nil(t, terms)
	})

	t.Run("terms", func(t *testing.T) {
		s := fragment.Desc("age").Then(fragment.Asc("nickName", "id"))
		terms, err := s.Terms(resolve)
		require.NoError(t, err)
		assert.Equal(t, []sql.OrderTerm{
			{Column: "age", Desc: true},
			{Column: "nick_name"},
			{Column: "id"},
		}, terms)
		assert.Equal(t, "age DESC, nickName ASC, id ASC", s.String())
	})

	t.Run("immutable", func(t *testing.T) {
		base := fragment.Asc("id")
		_ = base.Then(fragment.Desc("age"))
		assert.Len(t, base.Orders(), 1)
		orders := base.Orders()
		orders[0].Field = "age"
		assert.Equal(t, "id", base.Orders()[0].Field)
	})

	t.Run("sort_of", func(t *testing.T) {
		s := fragment.SortOf(fragment.Order{Field: "age", Direction: fragment.Descending})
		assert.Equal(t, "age DESC", s.String())
	})

	t.Run("unknown_field", func(t *testing.T) {
		_, err := fragment.Asc("email").Terms(resolve)
		assert.True(t, sqlmodel.IsMappingError(err))
	})
}

func TestSQLModel(t *testing.T) {
	m := fragment.Model(fragment.EQ("id", 1), fragment.Desc("age"))
	assert.False(t, m.Where.IsEmpty())
	assert.False(t, m.OrderBy.IsEmpty())
	assert.True(t, fragment.SQLModel{}.Where.IsEmpty())
}
