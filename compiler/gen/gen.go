// Package gen generates the schema registrations and typed fragment fields
// of the models found by compiler/load.
//
// For a model
//
//	type User struct {
//		ID   int64 `sql:"id,pk"`
//		Name *string
//	}
//
// the generated file declares
//
//	var UserTable = schema.MustRegister[User]("users",
//		schema.Field("id", func(m *User) *int64 { return &m.ID }).PrimaryKey(),
//		schema.Ptr("name", func(m *User) **string { return &m.Name }),
//	)
//
//	var UserFields = struct {
//		ID   fragment.Field[int64]
//		Name fragment.StringField
//	}{
//		ID:   "id",
//		Name: "name",
//	}
package gen

import (
	"bytes"
	"context"
	"fmt"
	"go/types"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/syssam/sqlmodel/compiler/load"
)

// Marker is the first line of every generated file.
const Marker = "Code generated by sqlmodel. DO NOT EDIT."

const (
	schemaPkg   = "github.com/syssam/sqlmodel/schema"
	fragmentPkg = "github.com/syssam/sqlmodel/fragment"
)

// Generate writes the generated file of every package and returns the
// written paths, in the order of pkgs.
func Generate(ctx context.Context, pkgs []*load.Package, opts ...Option) ([]string, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(pkgs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)
	for i, pkg := range pkgs {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			path, err := writeFile(pkg, cfg)
			paths[i] = path
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// Render returns the formatted source generated for pkg.
func Render(pkg *load.Package, cfg *Config) ([]byte, error) {
	f, err := newFile(pkg, cfg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, &GenerateError{Package: pkg.Path, Message: "render", Cause: err}
	}
	return imports.Process(filepath.Join(pkg.Dir, cfg.Output), buf.Bytes(), nil)
}

func writeFile(pkg *load.Package, cfg *Config) (string, error) {
	f, err := newFile(pkg, cfg)
	if err != nil {
		return "", err
	}
	path := filepath.Join(pkg.Dir, cfg.Output)
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", &GenerateError{Package: pkg.Path, Message: "render", Cause: err}
	}
	formatted, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		debugPath := path + ".error"
		_ = os.WriteFile(debugPath, buf.Bytes(), 0o644)
		return "", fmt.Errorf("format %s: %w (unformatted written to %s)", path, err, debugPath)
	}
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func newFile(pkg *load.Package, cfg *Config) (*jen.File, error) {
	f := jen.NewFilePathName(pkg.Path, pkg.Name)
	f.HeaderComment(Marker)
	if cfg.Header != "" {
		for _, line := range strings.Split(strings.TrimSpace(cfg.Header), "\n") {
			f.HeaderComment(line)
		}
	}
	f.ImportName(schemaPkg, "schema")
	f.ImportName(fragmentPkg, "fragment")
	for _, m := range pkg.Models {
		if err := genModel(f, m); err != nil {
			err.Package = pkg.Path
			return nil, err
		}
	}
	return f, nil
}

func genModel(f *jen.File, m *load.Model) *GenerateError {
	if len(m.Fields) == 0 {
		return &GenerateError{Model: m.Name, Message: "no mapped fields"}
	}
	var (
		defs   = []jen.Code{jen.Lit(m.Table)}
		typed  = make([]jen.Code, 0, len(m.Fields))
		values = make([]jen.Code, 0, len(m.Fields))
	)
	for _, fd := range m.Fields {
		typ, err := typeCode(fd.Type)
		if err != nil {
			return &GenerateError{Model: m.Name, Field: fd.GoName, Cause: err}
		}
		ftyp, err := fieldType(fd.Type)
		if err != nil {
			return &GenerateError{Model: m.Name, Field: fd.GoName, Cause: err}
		}
		ctor, ret := "Field", jen.Op("*").Add(typ)
		if fd.Pointer {
			ctor, ret = "Ptr", jen.Op("**").Add(typ)
		}
		def := jen.Qual(schemaPkg, ctor).Call(
			jen.Lit(fd.Name),
			jen.Func().Params(jen.Id("m").Op("*").Id(m.Name)).Add(ret).Custom(
				jen.Options{Open: "{ ", Close: " }"},
				jen.Return(jen.Op("&").Id("m").Dot(fd.GoName)),
			),
		)
		if fd.Column != "" {
			def.Dot("Column").Call(jen.Lit(fd.Column))
		}
		if fd.PrimaryKey {
			def.Dot("PrimaryKey").Call()
		}
		defs = append(defs, def)
		typed = append(typed, jen.Id(fd.GoName).Add(ftyp))
		values = append(values, jen.Id(fd.GoName).Op(":").Lit(fd.Name))
	}

	f.Commentf("%sTable is the registered table of %s.", m.Name, m.Name)
	f.Var().Id(m.Name+"Table").Op("=").
		Qual(schemaPkg, "MustRegister").Types(jen.Id(m.Name)).
		Custom(jen.Options{Open: "(", Close: ")", Separator: ",", Multi: true}, defs...)
	f.Line()
	f.Commentf("%sFields are the typed fields of %s for building conditions and sorts.", m.Name, m.Name)
	f.Var().Id(m.Name+"Fields").Op("=").
		Struct(typed...).
		Custom(jen.Options{Open: "{", Close: "}", Separator: ",", Multi: true}, values...)
	f.Line()
	return nil
}

// fieldType returns the fragment field type of a column of type t.
func fieldType(t types.Type) (*jen.Statement, error) {
	t = types.Unalias(t)
	if n, ok := t.(*types.Named); ok && isOpt(n) {
		t = types.Unalias(n.TypeArgs().At(0))
	}
	if b, ok := t.(*types.Basic); ok && b.Kind() == types.String {
		return jen.Qual(fragmentPkg, "StringField"), nil
	}
	typ, err := typeCode(t)
	if err != nil {
		return nil, err
	}
	return jen.Qual(fragmentPkg, "Field").Types(typ), nil
}

func isOpt(n *types.Named) bool {
	obj := n.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == schemaPkg && obj.Name() == "Opt" && n.TypeArgs().Len() == 1
}

// typeCode returns the Go source of t.
func typeCode(t types.Type) (*jen.Statement, error) {
	switch t := types.Unalias(t).(type) {
	case *types.Basic:
		if t.Kind() == types.Invalid || t.Kind() == types.UnsafePointer || t.Info()&types.IsUntyped != 0 {
			return nil, fmt.Errorf("unsupported type %s", t)
		}
		return jen.Id(t.Name()), nil
	case *types.Named:
		obj := t.Obj()
		s := jen.Id(obj.Name())
		if obj.Pkg() != nil {
			s = jen.Qual(obj.Pkg().Path(), obj.Name())
		}
		if args := t.TypeArgs(); args.Len() > 0 {
			codes := make([]jen.Code, 0, args.Len())
			for i := range args.Len() {
				c, err := typeCode(args.At(i))
				if err != nil {
					return nil, err
				}
				codes = append(codes, c)
			}
			s.Types(codes...)
		}
		return s, nil
	case *types.Pointer:
		elem, err := typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(elem), nil
	case *types.Slice:
		elem, err := typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Index().Add(elem), nil
	case *types.Array:
		elem, err := typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Index(jen.Lit(int(t.Len()))).Add(elem), nil
	case *types.Map:
		key, err := typeCode(t.Key())
		if err != nil {
			return nil, err
		}
		elem, err := typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Map(key).Add(elem), nil
	case *types.Interface:
		if t.Empty() {
			return jen.Id("any"), nil
		}
	}
	return nil, fmt.Errorf("unsupported type %s", t)
}
