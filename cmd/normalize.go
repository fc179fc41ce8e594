package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srslogics/datasentinel/internal/normalize"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <s3://bucket/key>",
	Short: "Normalize a dataset and write the result as parquet",
	Long: `Normalize loads the referenced dataset (csv, xlsx or parquet), repairs
missing values, resolves outliers with an adaptively chosen method, encodes
categoricals and min-max scales numeric columns, then writes the result next
to the source with the raw/ prefix replaced by normalized/.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		n := normalize.NewNormalizer(store, pipelineConfig())
		dest, err := n.Normalize(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Normalized %s -> %s\n", args[0], dest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}
