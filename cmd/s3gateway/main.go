package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/s3gateway/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "s3gateway",
	Short:   "Multi-tenant access gateway for S3 buckets",
	Long: `s3gateway derives tenant-scoped object keys from business identifiers
and brokers presigned URLs, uploads, listings and deletes against a
single S3-compatible bucket.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, merged left to right (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("endpoint", "", "S3 endpoint host[:port] or URL (env: S3GATEWAY_STORAGE_ENDPOINT, S3_URL)")
	rootCmd.PersistentFlags().String("bucket", "", "bucket name (env: S3GATEWAY_STORAGE_BUCKET, BUCKET_NAME)")
	rootCmd.PersistentFlags().String("region", "", "bucket region (default: us-east-1)")
	rootCmd.PersistentFlags().Bool("use-ssl", false, "use https for endpoints without a scheme (env: MANAGE_HTTPS=Y)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("env", "", "deployment environment; prod or production switches to JSON logs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
