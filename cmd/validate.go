package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/srslogics/datasentinel/internal/blob"
	"github.com/srslogics/datasentinel/internal/profile"
	"github.com/srslogics/datasentinel/internal/validate"
)

var validateRulesPath string

var validateCmd = &cobra.Command{
	Use:   "validate <s3://bucket/key>",
	Short: "Validate a dataset against a JSON rules document",
	Long: `Validate loads the referenced dataset and checks it against the rules
file: required columns, expected column kinds, value ranges, null-fraction
ceilings and allowed values. The result is uploaded next to the dataset under
the validation-results/ prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateRulesPath == "" {
			return fmt.Errorf("--rules is required")
		}
		rulesRaw, err := os.ReadFile(validateRulesPath)
		if err != nil {
			return fmt.Errorf("read rules file: %w", err)
		}
		rules, err := validate.ParseRules(rulesRaw)
		if err != nil {
			return err
		}
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
		result, err := validate.Run(ds, rules)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		destKey := fmt.Sprintf("validation-results/%s.results.json", ref.Key)
		if err := store.Put(cmd.Context(), ref.Bucket, destKey, out); err != nil {
			return err
		}
		for _, issue := range result.Issues {
			fmt.Printf("  %s [%s]: %s\n", issue.Column, issue.Rule, issue.Message)
		}
		if result.Passed {
			fmt.Printf("✓ Validation passed, results at s3://%s/%s\n", ref.Bucket, destKey)
			return nil
		}
		fmt.Printf("✗ Validation found %d issue(s), results at s3://%s/%s\n", len(result.Issues), ref.Bucket, destKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateRulesPath, "rules", "", "path to a JSON rules document")
}
