package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srslogics/datasentinel/internal/profile"
)

var profBaseline string

var profileCmd = &cobra.Command{
	Use:   "profile <s3://bucket/key>",
	Short: "Profile a dataset and upload the JSON report",
	Long: `Profile computes per-column statistics (null percentage, distinct counts,
numeric summaries, top text values) plus dataset totals and uploads the report
under the profiling/ prefix. With --baseline it also compares shared numeric
columns against the baseline dataset and uploads a drift report.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		psi, alpha := driftThresholds()
		eng := profile.NewEngine(store, psi, alpha)
		_, url, err := eng.Profile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Profile written to %s\n", url)
		if profBaseline != "" {
			_, driftURL, err := eng.Drift(cmd.Context(), profBaseline, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("✓ Drift report written to %s\n", driftURL)
		}
		return nil
	},
}

func driftThresholds() (psi, alpha float64) {
	psi, alpha = profile.DefaultPSIThreshold, profile.DefaultKSAlpha
	if cfg != nil {
		if cfg.PSIThreshold > 0 {
			psi = cfg.PSIThreshold
		}
		if cfg.KSAlpha > 0 {
			alpha = cfg.KSAlpha
		}
	}
	return psi, alpha
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVar(&profBaseline, "baseline", "", "baseline dataset reference for drift comparison")
}
