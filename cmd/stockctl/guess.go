package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGuessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "guess <file>",
		Short: "Show which column holds stock quantities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := a.loadTable(args[0])
			if err != nil {
				return err
			}
			if qty, ok := tbl.QuantityColumn(); ok {
				fmt.Fprintln(cmd.OutOrStdout(), qty)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "no stock column found")
			return nil
		},
	}
}
