package load_test

import (
	"context"
	"go/types"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlmodel/compiler/load"
)

func TestLoad(t *testing.T) {
	cfg := &load.Config{Dir: filepath.Join("testdata", "models")}
	pkgs, err := cfg.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	pkg := pkgs[0]
	assert.Equal(t, "models", pkg.Name)
	assert.Equal(t, "github.com/syssam/sqlmodel/compiler/load/testdata/models", pkg.Path)
	assert.Equal(t, "models", filepath.Base(pkg.Dir))
	require.Len(t, pkg.Models, 2, "untagged and generic structs are skipped")

	user := pkg.Models[0]
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, "users", user.Table)
	assert.Contains(t, user.Pos, "models.go")
	require.Len(t, user.Fields, 4)

	id := user.Fields[0]
	assert.Equal(t, "ID", id.GoName)
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, "id", id.Column)
	assert.True(t, id.PrimaryKey)
	assert.Equal(t, types.Typ[types.Int64], id.Type)

	name := user.Fields[1]
	assert.Equal(t, "name", name.Name)
	assert.Empty(t, name.Column)
	assert.True(t, name.Pointer)
	assert.Equal(t, types.Typ[types.String], name.Type)

	age := user.Fields[2]
	assert.Equal(t, "age", age.Name)
	assert.False(t, age.Pointer)
	assert.Equal(t, "github.com/syssam/sqlmodel/schema.Opt[int]", age.Type.String())

	created := user.Fields[3]
	assert.Equal(t, "createdAt", created.Name)
	assert.Equal(t, "created", created.Column)
	assert.Equal(t, "time.Time", created.Type.String())

	post := pkg.Models[1]
	assert.Equal(t, "Post", post.Name)
	assert.Equal(t, "blog_posts", post.Table)
	var names []string
	for _, f := range post.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "authorID", "tags", "rank"}, names)
	assert.True(t, post.Fields[0].PrimaryKey)
	assert.Empty(t, post.Fields[0].Column)
	assert.Equal(t, "rank", post.Fields[3].Column, "tagged unexported fields are mapped")
}

func TestLoadInvalid(t *testing.T) {
	cfg := &load.Config{Dir: filepath.Join("testdata", "invalid")}
	_, err := cfg.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, load.ErrInvalidModel)
	assert.Contains(t, err.Error(), `Account.Email: unknown tag option "unique"`)

	var me *load.ModelError
	require.ErrorAs(t, err, &me)
	assert.Contains(t, me.Pos, "invalid.go")
}

func TestLoadMissing(t *testing.T) {
	cfg := &load.Config{Dir: "testdata"}
	_, err := cfg.Load(context.Background(), "./missing")
	assert.Error(t, err)
}

func TestFieldName(t *testing.T) {
	tests := map[string]string{
		"ID":        "id",
		"Name":      "name",
		"CreatedAt": "createdAt",
		"URLPath":   "urlPath",
		"AuthorID":  "authorID",
		"rank":      "rank",
	}
	for in, want := range tests {
		assert.Equal(t, want, load.FieldName(in), in)
	}
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "users", load.TableName("User"))
	assert.Equal(t, "blog_posts", load.TableName("BlogPost"))
	assert.Equal(t, "categories", load.TableName("Category"))
}

func TestLoadStaleOutput(t *testing.T) {
	cfg := &load.Config{Dir: filepath.Join("testdata", "stale")}
	pkgs, err := cfg.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	require.Len(t, pkgs[0].Models, 1)
	assert.Len(t, pkgs[0].Models[0].Fields, 2)
}
