package main

import (
	"os"

	"github.com/sagarc03/s3gateway/clientcli"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <file-name> [file-name...]",
	Short: "Delete objects",
	Long: `Delete one or more objects. Each file name is combined with the
identifier flags to address one object. Failures do not stop the rest.

Examples:
  s3gateway-cli delete --client-id acme --user-id 100 invoice.pdf
  s3gateway-cli delete --container-type form --container-id inv-01 a.pdf b.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{
		Identifiers: identifiers(""),
		FileNames:   args,
	})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
