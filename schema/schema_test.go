package schema_test

import (
	"reflect"
	"sync"
	"testing"

	"github.com/syssam/sqlmodel"
	"github.com/syssam/sqlmodel/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID       int64
	Name     *string
	Age      schema.Opt[int]
	NickName string
}

func userFields() []schema.FieldSet[user] {
	return []schema.FieldSet[user]{
		schema.Field("id", func(u *user) *int64 { return &u.ID }).PrimaryKey(),
		schema.Ptr("name", func(u *user) **string { return &u.Name }),
		schema.Field("age", func(u *user) *schema.Opt[int] { return &u.Age }),
		schema.Field("NickName", func(u *user) *string { return &u.NickName }),
	}
}

func registerUsers(t *testing.T) (*schema.Registry, *schema.Table[user]) {
	t.Helper()
	reg := schema.NewRegistry()
	tbl, err := schema.RegisterIn[user](reg, "users", userFields()...)
	require.NoError(t, err)
	return reg, tbl
}

func TestRegister(t *testing.T) {
	t.Run("columns", func(t *testing.T) {
		_, tbl := registerUsers(t)
		assert.Equal(t, "users", tbl.Name())
		assert.Equal(t, []string{"id", "name", "age", "nick_name"}, tbl.Columns())
		assert.Equal(t, reflect.TypeOf(user{}), tbl.Type())
	})

	t.Run("column_override", func(t *testing.T) {
		reg := schema.NewRegistry()
		tbl, err := schema.RegisterIn[user](reg, "users",
			schema.Field("id", func(u *user) *int64 { return &u.ID }).Column("user_id").PrimaryKey(),
		)
		require.NoError(t, err)
		col, err := tbl.Column("id")
		require.NoError(t, err)
		assert.Equal(t, "user_id", col)
		col, err = tbl.Column("user_id")
		require.NoError(t, err)
		assert.Equal(t, "user_id", col)
	})

	t.Run("duplicate_field", func(t *testing.T) {
		reg := schema.NewRegistry()
		_, err := schema.RegisterIn[user](reg, "users",
			schema.Field("id", func(u *user) *int64 { return &u.ID }),
			schema.Field("id", func(u *user) *string { return &u.NickName }).Column("other"),
		)
		require.Error(t, err)
		assert.True(t, sqlmodel.IsMappingError(err))
	})

	t.Run("duplicate_column", func(t *testing.T) {
		reg := schema.NewRegistry()
		_, err := schema.RegisterIn[user](reg, "users",
			schema.Field("id", func(u *user) *int64 { return &u.ID }),
			schema.Field("nick", func(u *user) *string { return &u.NickName }).Column("id"),
		)
		require.Error(t, err)
		assert.True(t, sqlmodel.IsMappingError(err))
	})

	t.Run("empty_table_and_missing_accessor", func(t *testing.T) {
		reg := schema.NewRegistry()
		_, err := schema.RegisterIn[user](reg, "",
			schema.Field[user, int64]("id", nil),
		)
		require.Error(t, err)
		var agg *sqlmodel.AggregateError
		require.ErrorAs(t, err, &agg)
		assert.Len(t, agg.Errors, 2)
		assert.True(t, sqlmodel.IsMappingError(err))
	})

	t.Run("no_fields", func(t *testing.T) {
		reg := schema.NewRegistry()
		_, err := schema.RegisterIn[user](reg, "users")
		assert.True(t, sqlmodel.IsMappingError(err))
	})

	t.Run("must_register_panics", func(t *testing.T) {
		assert.Panics(t, func() { schema.MustRegister[user]("") })
	})
}

func TestLookup(t *testing.T) {
	reg, tbl := registerUsers(t)

	got, err := schema.LookupIn[user](reg)
	require.NoError(t, err)
	assert.Same(t, tbl, got)

	type other struct{ ID int }
	_, err = schema.LookupIn[other](reg)
	assert.True(t, sqlmodel.IsMappingError(err))

	name, fields, err := reg.LookupType(reflect.TypeOf(user{}))
	require.NoError(t, err)
	assert.Equal(t, "users", name)
	assert.Len(t, fields, 4)
	assert.Equal(t, []string{"users"}, reg.Tables())
}

func TestTableValues(t *testing.T) {
	_, tbl := registerUsers(t)
	name := "a8m"
	u := &user{ID: 1, Name: &name, Age: schema.NullOpt[int]()}

	v, err := tbl.Value(u, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Any())

	v, err = tbl.Value(u, "name")
	require.NoError(t, err)
	assert.Equal(t, "a8m", v.Any())

	v, err = tbl.Value(u, "age")
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	_, err = tbl.Value(u, "email")
	assert.True(t, sqlmodel.IsMappingError(err))

	u.Name = nil
	u.Age = schema.Opt[int]{}
	example := tbl.Example(u)
	require.Len(t, example, 2)
	assert.Equal(t, "id", example[0].Column)
	assert.Equal(t, "nick_name", example[1].Column)

	values := tbl.Values(u)
	require.Len(t, values, 4)
	assert.True(t, values[1].Value.IsAbsent())
	assert.True(t, values[2].Value.IsAbsent())
}

func TestTableSetAndScanDest(t *testing.T) {
	_, tbl := registerUsers(t)
	u := tbl.New()

	require.NoError(t, tbl.Set(u, "id", int64(7)))
	require.NoError(t, tbl.Set(u, "name", "bar"))
	require.NoError(t, tbl.Set(u, "age", schema.Some(30)))
	assert.Equal(t, int64(7), u.ID)
	require.NotNil(t, u.Name)
	assert.Equal(t, "bar", *u.Name)
	assert.Equal(t, 30, u.Age.OrElse(0))

	err := tbl.Set(u, "id", "seven")
	assert.True(t, sqlmodel.IsMappingError(err))

	require.NoError(t, tbl.Set(u, "name", nil))
	assert.Nil(t, u.Name)

	dest, err := tbl.ScanDest(u, []string{"id", "nick_name"})
	require.NoError(t, err)
	require.Len(t, dest, 2)
	assert.Same(t, &u.ID, dest[0])
	assert.Same(t, &u.NickName, dest[1])

	_, err = tbl.ScanDest(u, []string{"missing"})
	assert.True(t, sqlmodel.IsMappingError(err))
}

func TestKeyResolver(t *testing.T) {
	reg, tbl := registerUsers(t)

	keys, err := tbl.PrimaryKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, keys.Columns())
	assert.True(t, keys.Contains("id"))
	assert.False(t, keys.Contains("name"))
	assert.Equal(t, "(id)", keys.String())

	pk, err := tbl.PrimaryKey()
	require.NoError(t, err)
	assert.Equal(t, "id", pk.Column)

	t.Run("composite", func(t *testing.T) {
		type membership struct {
			UserID  int64
			GroupID int64
		}
		mt, err := schema.RegisterIn[membership](reg, "memberships",
			schema.Field("userID", func(m *membership) *int64 { return &m.UserID }).Column("user_id").PrimaryKey(),
			schema.Field("groupID", func(m *membership) *int64 { return &m.GroupID }).Column("group_id").PrimaryKey(),
		)
		require.NoError(t, err)
		keys, err := mt.PrimaryKeys()
		require.NoError(t, err)
		assert.Equal(t, 2, keys.Len())

		_, err = mt.PrimaryKey()
		require.Error(t, err)
		assert.True(t, sqlmodel.IsPrimaryKeyError(err))
		var pkErr *sqlmodel.PrimaryKeyError
		require.ErrorAs(t, err, &pkErr)
		assert.Equal(t, 2, pkErr.Count)
	})

	t.Run("keyless", func(t *testing.T) {
		type event struct{ Name string }
		et, err := schema.RegisterIn[event](reg, "events",
			schema.Field("name", func(e *event) *string { return &e.Name }),
		)
		require.NoError(t, err)
		_, err = et.PrimaryKey()
		assert.ErrorIs(t, err, sqlmodel.ErrPrimaryKey)
	})

	t.Run("unregistered", func(t *testing.T) {
		type ghost struct{}
		_, err := reg.Keys().Resolve(reflect.TypeOf(ghost{}))
		assert.True(t, sqlmodel.IsMappingError(err))
	})

	t.Run("reregister_invalidates", func(t *testing.T) {
		_, err := tbl.PrimaryKey()
		require.NoError(t, err)
		nt, err := schema.RegisterIn[user](reg, "users",
			schema.Field("id", func(u *user) *int64 { return &u.ID }),
		)
		require.NoError(t, err)
		_, err = nt.PrimaryKey()
		assert.True(t, sqlmodel.IsPrimaryKeyError(err))
	})
}

func TestKeyResolverConcurrent(t *testing.T) {
	_, tbl := registerUsers(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pk, err := tbl.PrimaryKey()
			assert.NoError(t, err)
			assert.Equal(t, "id", pk.Name)
		}()
	}
	wg.Wait()
}

type audit struct {
	CreatedBy string
}

type post struct {
	ID int64
	audit
}

func TestEmbed(t *testing.T) {
	reg := schema.NewRegistry()
	tbl, err := schema.RegisterIn[post](reg, "posts",
		schema.Field("id", func(p *post) *int64 { return &p.ID }).PrimaryKey(),
		schema.Embed(func(p *post) *audit { return &p.audit },
			schema.Field("createdBy", func(a *audit) *string { return &a.CreatedBy }),
		),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "created_by"}, tbl.Columns())

	p := &post{ID: 1, audit: audit{CreatedBy: "root"}}
	v, err := tbl.Value(p, "createdBy")
	require.NoError(t, err)
	assert.Equal(t, "root", v.Any())
	require.NoError(t, tbl.Set(p, "created_by", "admin"))
	assert.Equal(t, "admin", p.CreatedBy)
}
