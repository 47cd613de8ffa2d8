package main

import (
	"os"

	"github.com/sagarc03/s3gateway/clientcli"
	"github.com/spf13/cobra"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <file-name> [local-path]",
	Short: "Download an object",
	Long: `Download an object. The gateway signs a GET URL and the content is read
from storage directly.

Examples:
  s3gateway-cli download --client-id acme --user-id 100 invoice.pdf
  s3gateway-cli download --container-type form --container-id inv-01 invoice.pdf ./inv.pdf
  s3gateway-cli download --stdout config.json | jq .`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := client.Download(cmd.Context(), clientcli.DownloadOptions{
		Identifiers: identifiers(args[0]),
		LocalPath:   localPath,
	})
	if err != nil {
		return err
	}

	if reader != nil {
		if err := copyTo(os.Stdout, reader); err != nil {
			return err
		}
		// Metadata goes to stderr so stdout stays the object.
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
