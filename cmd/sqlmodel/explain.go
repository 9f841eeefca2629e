package main

import (
	"fmt"
	"go/types"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syssam/sqlmodel/schema"
)

func newExplainCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [packages]",
		Short: "Print the tables and columns of models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := r.loadConfig(cmd)
			if err != nil {
				return err
			}
			pkgs, err := r.loader(cfg).Load(cmd.Context(), patterns(args, cfg)...)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tTABLE\tFIELD\tCOLUMN\tTYPE\tKEY")
			for _, p := range pkgs {
				qualifier := func(p *types.Package) string { return p.Name() }
				for _, m := range p.Models {
					for _, f := range m.Fields {
						column := f.Column
						if column == "" {
							column = schema.DefaultColumn(f.Name)
						}
						typ := types.TypeString(f.Type, qualifier)
						if f.Pointer {
							typ = "*" + typ
						}
						key := ""
						if f.PrimaryKey {
							key = "pk"
						}
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", m.Name, m.Table, f.Name, column, typ, key)
					}
				}
			}
			return tw.Flush()
		},
	}
}
