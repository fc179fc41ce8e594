package cmd

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srslogics/datasentinel/internal/blob"
	"github.com/srslogics/datasentinel/internal/codec"
)

var convertTo string

var convertCmd = &cobra.Command{
	Use:   "convert <s3://bucket/key>",
	Short: "Convert a dataset between csv, xlsx, parquet and json",
	Long: `Convert decodes the referenced dataset, re-encodes it in the target
format and writes it under the converted/ prefix with a _converted suffix.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if convertTo == "" {
			return fmt.Errorf("--to is required (csv|xlsx|parquet|json)")
		}
		target, err := codec.ParseFormat(convertTo)
		if err != nil {
			return err
		}
		ref, err := blob.ParseRef(args[0])
		if err != nil {
			return err
		}
		source, err := codec.Detect(ref.Key)
		if err != nil {
			return err
		}
		store, err := newStore()
		if err != nil {
			return err
		}
		raw, err := store.Get(cmd.Context(), ref.Bucket, ref.Key)
		if err != nil {
			return err
		}
		ds, err := codec.Decode(raw, source)
		if err != nil {
			return err
		}
		out, err := codec.Encode(ds, target)
		if err != nil {
			return err
		}
		base := strings.TrimSuffix(path.Base(ref.Key), path.Ext(ref.Key))
		dest := blob.Ref{
			Bucket: ref.Bucket,
			Key:    fmt.Sprintf("converted/%s_converted.%s", base, target.Ext()),
		}
		if err := store.Put(cmd.Context(), dest.Bucket, dest.Key, out); err != nil {
			return err
		}
		fmt.Printf("✓ Converted %s -> %s\n", args[0], dest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertTo, "to", "", "target format: csv|xlsx|parquet|json")
}
