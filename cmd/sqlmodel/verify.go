package main

import (
	"fmt"

	"github.com/spf13/cobra"

	sqlschema "github.com/syssam/sqlmodel/dialect/sql/schema"
	"github.com/syssam/sqlmodel/schema"
)

func newVerifyCmd(r *root) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "verify [packages]",
		Short: "Check that the configured database has the tables and columns of models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := r.loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pkgs, err := r.loader(cfg).Load(ctx, patterns(args, cfg)...)
			if err != nil {
				return err
			}
			drv, err := cfg.Open()
			if err != nil {
				return err
			}
			defer drv.Close()

			var opts []sqlschema.ValidateOption
			if !strict {
				opts = append(opts, sqlschema.IgnoreUnmapped())
			}
			w := cmd.OutOrStdout()
			total, failed := 0, 0
			for _, p := range pkgs {
				for _, m := range p.Models {
					total++
					t := sqlschema.Table{Name: m.Table}
					for _, f := range m.Fields {
						if f.Column != "" {
							t.Columns = append(t.Columns, f.Column)
						} else {
							t.Columns = append(t.Columns, schema.DefaultColumn(f.Name))
						}
					}
					result, err := sqlschema.Validate(ctx, drv, []sqlschema.Table{t}, opts...)
					if err != nil {
						return err
					}
					status := "ok  "
					if result.HasErrors() || strict && result.HasWarnings() {
						status = "FAIL"
						failed++
					}
					fmt.Fprintf(w, "%s %s (%s)\n", status, m.Name, m.Table)
					for _, e := range result.Errors {
						fmt.Fprintf(w, "     error: %v\n", e)
					}
					for _, e := range result.Warnings {
						fmt.Fprintf(w, "     warning: %v\n", e)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("verify: %d of %d models failed", failed, total)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on database columns no field is mapped to")
	return cmd
}
