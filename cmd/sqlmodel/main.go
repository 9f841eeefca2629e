// Command sqlmodel generates and inspects the schema registrations of
// sqlmodel models.
//
//	sqlmodel gen ./models/...
//	sqlmodel gen --watch
//	sqlmodel explain ./models
//	sqlmodel verify --config sqlmodel.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syssam/sqlmodel/compiler/load"
	"github.com/syssam/sqlmodel/config"
)

// root holds the flags shared by every command.
type root struct {
	config string
	dir    string
}

func newRootCmd() *cobra.Command {
	r := &root{}
	cmd := &cobra.Command{
		Use:           "sqlmodel",
		Short:         "Generate and inspect sqlmodel models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&r.config, "config", "sqlmodel.yaml", "configuration file")
	cmd.PersistentFlags().StringVarP(&r.dir, "dir", "C", "", "directory the package patterns are relative to")
	cmd.AddCommand(
		newGenCmd(r),
		newExplainCmd(r),
		newVerifyCmd(r),
	)
	return cmd
}

// loadConfig reads the configuration file. A missing default file yields
// an empty configuration.
func (r *root) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(r.config)
	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config"):
		return &config.Config{}, nil
	default:
		return nil, err
	}
}

func (r *root) loader(cfg *config.Config) *load.Config {
	return &load.Config{Dir: r.dir, BuildFlags: cfg.Gen.BuildFlags}
}

// patterns returns the package patterns of a command: its arguments, or
// the configured packages.
func patterns(args []string, cfg *config.Config) []string {
	switch {
	case len(args) > 0:
		return args
	case len(cfg.Gen.Packages) > 0:
		return cfg.Gen.Packages
	default:
		return []string{"."}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
