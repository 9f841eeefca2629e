// Package load finds model structs in Go packages.
//
// A model is a package-level, non-generic struct type with at least one
// field tagged `sql`. The tag holds the column and options of the field:
//
//	// User is a registered user.
//	//
//	//sqlmodel:table accounts
//	type User struct {
//		ID      int64          `sql:"id,pk"`
//		Name    *string        `sql:"user_name"`
//		Age     schema.Opt[int]
//		Scratch string `sql:"-"`
//	}
//
// Exported fields without a tag are mapped with the default column, and
// unexported fields are mapped only when tagged. The table defaults to the
// plural snake_case of the type name, and is overridden by a
// //sqlmodel:table directive in the type documentation.
package load

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/go/packages"
)

// Directive overrides the table of a model in its documentation.
const Directive = "//sqlmodel:table"

// ErrInvalidModel marks a malformed model declaration.
var ErrInvalidModel = errors.New("load: invalid model")

// Package is a loaded Go package and its models.
type Package struct {
	Name   string
	Path   string
	Dir    string
	Files  []string
	Models []*Model
}

// Model is a struct type mapped to a table.
type Model struct {
	Name   string
	Table  string
	Pos    string
	Fields []*Field
}

// Field is a mapped struct field.
type Field struct {
	// GoName is the name of the struct field.
	GoName string
	// Name is the descriptor name, the lowerCamel form of GoName.
	Name string
	// Column is the column given in the tag, or empty for the default.
	Column string
	// PrimaryKey marks key fields.
	PrimaryKey bool
	// Pointer marks fields declared as *V; Type is then V.
	Pointer bool
	Type    types.Type
}

// ModelError reports a malformed model.
type ModelError struct {
	Pos     string
	Model   string
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	var b strings.Builder
	b.WriteString("load: ")
	if e.Pos != "" {
		b.WriteString(e.Pos)
		b.WriteString(": ")
	}
	b.WriteString(e.Model)
	if e.Field != "" {
		b.WriteString(".")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Is reports whether target is ErrInvalidModel.
func (e *ModelError) Is(target error) bool {
	return target == ErrInvalidModel
}

// Config configures the package loader.
type Config struct {
	// Dir is the directory the patterns are relative to.
	Dir string
	// BuildFlags are passed to the go command, e.g. -tags.
	BuildFlags []string
}

const mode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo

// Load loads the packages matching patterns and returns those declaring
// models, sorted by import path.
func (c *Config) Load(ctx context.Context, patterns ...string) ([]*Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	pkgs, err := packages.Load(&packages.Config{
		Context:    ctx,
		Mode:       mode,
		Dir:        c.Dir,
		BuildFlags: c.BuildFlags,
	}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	var (
		out  []*Package
		errs []error
	)
	for _, p := range pkgs {
		// Type errors are tolerated: a stale generated file must not
		// prevent regenerating it.
		fatal := false
		for _, e := range p.Errors {
			if e.Kind != packages.TypeError {
				errs = append(errs, fmt.Errorf("load: %s", e))
				fatal = true
			}
		}
		if fatal || p.TypesInfo == nil {
			continue
		}
		models, err := Models(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(models) == 0 {
			continue
		}
		out = append(out, &Package{
			Name:   p.Name,
			Path:   p.PkgPath,
			Dir:    dirOf(p),
			Files:  p.GoFiles,
			Models: models,
		})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b *Package) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

// Models returns the models declared in a type-checked package, in
// declaration order.
func Models(p *packages.Package) ([]*Model, error) {
	var (
		models []*Model
		errs   []error
	)
	for _, file := range p.Syntax {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				if ts.TypeParams != nil {
					continue
				}
				obj, ok := p.TypesInfo.Defs[ts.Name].(*types.TypeName)
				if !ok {
					continue
				}
				st, ok := obj.Type().Underlying().(*types.Struct)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				m, err := model(obj.Name(), st, doc)
				if err != nil {
					if me, ok := err.(*ModelError); ok {
						me.Pos = p.Fset.Position(ts.Pos()).String()
					}
					errs = append(errs, err)
					continue
				}
				if m != nil {
					m.Pos = p.Fset.Position(ts.Pos()).String()
					models = append(models, m)
				}
			}
		}
	}
	return models, errors.Join(errs...)
}

func model(name string, st *types.Struct, doc *ast.CommentGroup) (*Model, error) {
	tagged := false
	for i := range st.NumFields() {
		if _, ok := reflect.StructTag(st.Tag(i)).Lookup("sql"); ok {
			tagged = true
			break
		}
	}
	if !tagged {
		return nil, nil
	}
	m := &Model{Name: name, Table: TableName(name)}
	if table, ok := directive(doc); ok {
		if table == "" {
			return nil, &ModelError{Model: name, Message: "empty " + Directive + " directive"}
		}
		m.Table = table
	}
	for i := range st.NumFields() {
		v := st.Field(i)
		tag, ok := reflect.StructTag(st.Tag(i)).Lookup("sql")
		if tag == "-" || v.Embedded() && !ok || !v.Exported() && !ok {
			continue
		}
		if v.Embedded() {
			return nil, &ModelError{Model: name, Field: v.Name(), Message: "embedded fields cannot be mapped; register their fields with schema.Embed"}
		}
		f := &Field{GoName: v.Name(), Name: FieldName(v.Name()), Type: v.Type()}
		if p, ok := v.Type().(*types.Pointer); ok {
			f.Pointer, f.Type = true, p.Elem()
		}
		column, opts, _ := strings.Cut(tag, ",")
		f.Column = column
		for _, opt := range strings.Split(opts, ",") {
			switch opt {
			case "":
			case "pk":
				f.PrimaryKey = true
			default:
				return nil, &ModelError{Model: name, Field: v.Name(), Message: fmt.Sprintf("unknown tag option %q", opt)}
			}
		}
		m.Fields = append(m.Fields, f)
	}
	return m, nil
}

func directive(doc *ast.CommentGroup) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, c := range doc.List {
		if rest, ok := strings.CutPrefix(c.Text, Directive); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// TableName returns the default table of a model type: the plural
// snake_case of its name.
func TableName(typeName string) string {
	return inflect.Pluralize(inflect.Underscore(typeName))
}

var lower = cases.Lower(language.Und)

// FieldName returns the descriptor name of a struct field: its name with
// the leading initialism lowered, as in ID to id, URLPath to urlPath and
// CreatedAt to createdAt.
func FieldName(goName string) string {
	runes := []rune(goName)
	n := 0
	for n < len(runes) && isUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return goName
	case n == len(runes):
		return lower.String(goName)
	case n > 1:
		n--
	}
	return lower.String(string(runes[:n])) + string(runes[n:])
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func dirOf(p *packages.Package) string {
	if len(p.GoFiles) == 0 {
		return ""
	}
	return filepath.Dir(p.GoFiles[0])
}
