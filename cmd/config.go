package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/srslogics/datasentinel/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DataSentinel configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("store_backend: %s\n", cfg.StoreBackend)
		fmt.Printf("s3_endpoint: %s\n", cfg.S3Endpoint)
		fmt.Printf("s3_region: %s\n", cfg.S3Region)
		fmt.Printf("s3_access_key: %s\n", mask(cfg.S3AccessKey))
		fmt.Printf("s3_secret_key: %s\n", mask(cfg.S3SecretKey))
		fmt.Printf("s3_secure: %t\n", cfg.S3Secure)
		fmt.Printf("fs_root: %s\n", cfg.FSRoot)
		fmt.Printf("outlier_threshold: %.3f\n", cfg.OutlierThreshold)
		fmt.Printf("outlier_sample_frac: %.3f\n", cfg.OutlierSampleFrac)
		fmt.Printf("outlier_seed: %d\n", cfg.OutlierSeed)
		fmt.Printf("resolve_cutoff: %.3f\n", cfg.ResolveCutoff)
		fmt.Printf("winsor_limit: %.3f\n", cfg.WinsorLimit)
		fmt.Printf("date_coerce_rate: %.3f\n", cfg.DateCoerceRate)
		fmt.Printf("one_hot_max: %d\n", cfg.OneHotMax)
		fmt.Printf("psi_threshold: %.3f\n", cfg.PSIThreshold)
		fmt.Printf("ks_alpha: %.3f\n", cfg.KSAlpha)
		fmt.Printf("listen_addr: %s\n", cfg.ListenAddr)
		if len(cfg.CORSOrigins) > 0 {
			fmt.Printf("cors_origins: %s\n", strings.Join(cfg.CORSOrigins, ","))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "store_backend":
			switch val {
			case "s3", "fs":
				cfg.StoreBackend = val
			default:
				return fmt.Errorf("invalid store_backend: %s (use s3 or fs)", val)
			}
		case "s3_endpoint":
			cfg.S3Endpoint = val
		case "s3_region":
			cfg.S3Region = val
		case "s3_access_key":
			cfg.S3AccessKey = val
		case "s3_secret_key":
			cfg.S3SecretKey = val
		case "s3_secure":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for s3_secure: %v", val)
			}
			cfg.S3Secure = b
		case "fs_root":
			cfg.FSRoot = val
		case "outlier_threshold":
			return setFloat(&cfg.OutlierThreshold, key, val)
		case "outlier_sample_frac":
			return setFraction(&cfg.OutlierSampleFrac, key, val)
		case "outlier_seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for outlier_seed: %v", val)
			}
			cfg.OutlierSeed = i
		case "resolve_cutoff":
			return setFraction(&cfg.ResolveCutoff, key, val)
		case "winsor_limit":
			return setFraction(&cfg.WinsorLimit, key, val)
		case "date_coerce_rate":
			return setFraction(&cfg.DateCoerceRate, key, val)
		case "one_hot_max":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for one_hot_max: %v", val)
			}
			cfg.OneHotMax = i
		case "psi_threshold":
			return setFloat(&cfg.PSIThreshold, key, val)
		case "ks_alpha":
			return setFraction(&cfg.KSAlpha, key, val)
		case "listen_addr":
			cfg.ListenAddr = val
		case "cors_origins":
			cfg.CORSOrigins = strings.Split(val, ",")
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		return saveConfig()
	},
}

// setFloat and setFraction validate, assign and save in one step.
func setFloat(dst *float64, key, val string) error {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("invalid positive float for %s: %v", key, val)
	}
	*dst = f
	return saveConfig()
}

func setFraction(dst *float64, key, val string) error {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f <= 0 || f >= 1 {
		return fmt.Errorf("invalid fraction for %s: %v (want 0 < v < 1)", key, val)
	}
	*dst = f
	return saveConfig()
}

func saveConfig() error {
	if err := cfgpkg.Save(cfg, cfgFile); err != nil {
		return err
	}
	fmt.Println("Saved config")
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
