package main

import (
	"os"

	"github.com/sagarc03/s3gateway/clientcli"
	"github.com/spf13/cobra"
)

var (
	listDelimiter string
	listVersions  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List objects in a scope",
	Long: `List the objects below the prefix the identifier flags resolve to.
A file name is never part of a listing scope.

Examples:
  s3gateway-cli list --client-id acme
  s3gateway-cli list --container-type form --container-id inv-01
  s3gateway-cli list --user-id 100 --delimiter /
  s3gateway-cli list --versions --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listDelimiter, "delimiter", "", "group keys by delimiter, e.g. /")
	listCmd.Flags().BoolVar(&listVersions, "versions", false, "list object versions and delete markers")
}

func runList(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.List(cmd.Context(), clientcli.ListOptions{
		Identifiers: identifiers(""),
		Delimiter:   listDelimiter,
		Versions:    listVersions,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatList(os.Stdout, result)
}
