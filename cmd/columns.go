package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srslogics/datasentinel/internal/blob"
	"github.com/srslogics/datasentinel/internal/profile"
)

var columnsCmd = &cobra.Command{
	Use:   "columns <s3://bucket/key>",
	Short: "List the column names of a stored dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := blob.ParseRef(args[0])
		if err != nil {
			return err
		}
		store, err := newStore()
		if err != nil {
			return err
		}
		psi, alpha := driftThresholds()
		eng := profile.NewEngine(store, psi, alpha)
		ds, err := eng.Load(cmd.Context(), ref)
		if err != nil {
			return err
		}
		for _, name := range ds.Names() {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}
