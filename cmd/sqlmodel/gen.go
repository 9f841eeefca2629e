package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/sqlmodel/compiler/gen"
	"github.com/syssam/sqlmodel/compiler/load"
)

// debounce is the quiet period awaited after a change before regenerating.
const debounce = 250 * time.Millisecond

type genOptions struct {
	output string
	header string
	watch  bool
}

func newGenCmd(r *root) *cobra.Command {
	o := &genOptions{}
	cmd := &cobra.Command{
		Use:   "gen [packages]",
		Short: "Generate the schema registrations and typed fields of models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := r.loadConfig(cmd)
			if err != nil {
				return err
			}
			output := cmp.Or(o.output, cfg.Gen.Output, gen.DefaultOutput)
			opts := []gen.Option{
				gen.WithOutput(output),
				gen.WithHeader(cmp.Or(o.header, cfg.Gen.Header)),
			}
			if _, err := gen.NewConfig(opts...); err != nil {
				return err
			}
			ctx, w := cmd.Context(), cmd.OutOrStdout()
			loader, pats := r.loader(cfg), patterns(args, cfg)
			pkgs, err := generate(ctx, w, loader, pats, opts)
			if !o.watch {
				return err
			}
			if err != nil {
				slog.Error("generate", "err", err)
			}
			return watch(ctx, w, loader, pats, opts, output, pkgs)
		},
	}
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "name of the generated file (default "+gen.DefaultOutput+")")
	cmd.Flags().StringVar(&o.header, "header", "", "comment written at the top of generated files")
	cmd.Flags().BoolVarP(&o.watch, "watch", "w", false, "regenerate when package files change")
	return cmd
}

func generate(ctx context.Context, w io.Writer, loader *load.Config, patterns []string, opts []gen.Option) ([]*load.Package, error) {
	pkgs, err := loader.Load(ctx, patterns...)
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		fmt.Fprintln(w, "no models found")
		return nil, nil
	}
	paths, err := gen.Generate(ctx, pkgs, opts...)
	if err != nil {
		return pkgs, err
	}
	for i, path := range paths {
		fmt.Fprintf(w, "wrote %s (%d models)\n", path, len(pkgs[i].Models))
	}
	return pkgs, nil
}

// watch regenerates the packages when one of their Go files changes, until
// ctx is done.
func watch(ctx context.Context, w io.Writer, loader *load.Config, patterns []string, opts []gen.Option, output string, pkgs []*load.Package) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	var dirs []string
	add := func(pkgs []*load.Package) {
		for _, p := range pkgs {
			if p.Dir == "" || slices.Contains(dirs, p.Dir) {
				continue
			}
			if err := watcher.Add(p.Dir); err != nil {
				slog.Warn("watch directory", "dir", p.Dir, "err", err)
				continue
			}
			dirs = append(dirs, p.Dir)
		}
	}
	add(pkgs)
	if len(dirs) == 0 {
		dir := cmp.Or(loader.Dir, ".")
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		dirs = append(dirs, dir)
	}
	slog.Info("watching for changes", "dirs", dirs)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, output) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch", "err", err)
		case <-fire:
			fire = nil
			pkgs, err := generate(ctx, w, loader, patterns, opts)
			if err != nil {
				slog.Error("generate", "err", err)
				continue
			}
			add(pkgs)
		}
	}
}

// relevant reports whether ev changes the source of a model package.
func relevant(ev fsnotify.Event, output string) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(ev.Name)
	return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go") && name != output
}
