package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srslogics/datasentinel/internal/profile"
)

var driftCmd = &cobra.Command{
	Use:   "drift <baseline-ref> <current-ref>",
	Short: "Compare two datasets for distribution drift",
	Long: `Drift compares the numeric columns shared by the baseline and current
datasets using PSI and a two-sample KS test, uploads the report under the
profiling/ prefix keyed by the current dataset, and prints the per-column
verdicts.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		psi, alpha := driftThresholds()
		eng := profile.NewEngine(store, psi, alpha)
		report, url, err := eng.Drift(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		for _, e := range report.Entries {
			verdict := "stable"
			if e.Result.DriftByPSI || e.Result.DriftByKS {
				verdict = "DRIFT"
			}
			fmt.Printf("  %-24s psi=%.4f ks_p=%.4f %s\n", e.Column, e.Result.PSIScore, e.Result.KSPValue, verdict)
		}
		fmt.Printf("✓ Drift report written to %s\n", url)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(driftCmd)
}
