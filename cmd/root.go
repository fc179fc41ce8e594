package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/srslogics/datasentinel/internal/blob"
	cfgpkg "github.com/srslogics/datasentinel/internal/config"
	"github.com/srslogics/datasentinel/internal/normalize"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "datasentinel",
	Short: "DataSentinel: normalize, profile and validate tabular datasets",
	Long: `DataSentinel runs dataset pipelines against an object store: adaptive
normalization (missing-value repair, outlier handling, encoding, scaling),
statistical profiling with drift detection, format conversion and rule-based
validation.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datasentinel/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// newStore builds the blob store named by the configuration.
func newStore() (blob.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}
	switch cfg.StoreBackend {
	case "fs":
		return blob.NewFSStore(cfg.FSRoot), nil
	case "s3", "":
		if cfg.S3Endpoint == "" {
			return nil, fmt.Errorf("s3_endpoint is not configured (set it via 'datasentinel config set s3_endpoint <host>' or DATASENTINEL_S3_ENDPOINT)")
		}
		return blob.NewS3Store(blob.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Secure:    cfg.S3Secure,
		})
	}
	return nil, fmt.Errorf("unknown store_backend: %s (use s3 or fs)", cfg.StoreBackend)
}

// pipelineConfig maps the loaded configuration onto pipeline knobs.
func pipelineConfig() normalize.Config {
	pc := normalize.DefaultConfig()
	if cfg == nil {
		return pc
	}
	pc.Outliers.Threshold = cfg.OutlierThreshold
	pc.Outliers.SampleFrac = cfg.OutlierSampleFrac
	pc.Outliers.Seed = cfg.OutlierSeed
	pc.Outliers.ResolveCutoff = cfg.ResolveCutoff
	pc.Outliers.WinsorLimit = cfg.WinsorLimit
	pc.DateCoerceRate = cfg.DateCoerceRate
	pc.OneHotMax = cfg.OneHotMax
	return pc
}
