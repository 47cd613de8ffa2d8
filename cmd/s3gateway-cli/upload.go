package main

import (
	"os"

	"github.com/sagarc03/s3gateway/clientcli"
	"github.com/spf13/cobra"
)

var (
	uploadRecursive   bool
	uploadContentType string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> [file-name]",
	Short: "Upload files through the gateway",
	Long: `Upload files through the gateway proxy.

The file name defaults to the base name of the local path. With -r every
file below a directory is uploaded, named by its path relative to it.

Examples:
  s3gateway-cli upload --client-id acme --user-id 100 ./invoice.pdf
  s3gateway-cli upload --container-type form --container-id inv-01 ./scan.pdf invoice.pdf
  s3gateway-cli upload -r --table-name c_order --record-id 1000001 ./attachments/`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively")
	uploadCmd.Flags().StringVarP(&uploadContentType, "content-type", "t", "", "override content-type")
}

func runUpload(cmd *cobra.Command, args []string) error {
	fileName := ""
	if len(args) > 1 {
		fileName = args[1]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Upload(cmd.Context(), clientcli.UploadOptions{
		Identifiers: identifiers(fileName),
		LocalPath:   args[0],
		ContentType: uploadContentType,
		Recursive:   uploadRecursive,
	})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
