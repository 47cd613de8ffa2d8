package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/s3gateway"
	"github.com/sagarc03/s3gateway/config"
)

var keyCmd = &cobra.Command{
	Use:   "key [flags]",
	Short: "Derive an object key without contacting storage",
	Long: `Derive the object key (or, with --prefix, the listing prefix) that the
gateway would use for the given identifiers. The configured key policy
applies, so the result matches what a running server derives.

Examples:
  # Full object key
  s3gateway key --client-id "Acme Co" --container-type form \
    --container-id INV-01 --file-name "invoice 1.pdf"

  # Listing prefix of a user's attachments
  s3gateway key --prefix --client-id acme --container-type attachment \
    --table-name C_Order --record-id 1000001 --user-id 100`,
	Args: cobra.NoArgs,
	RunE: runKey,
}

var (
	keyIDs    s3gateway.IdentifierSet
	keyPrefix bool
	keyShared bool
)

func init() {
	f := keyCmd.Flags()
	f.StringVar(&keyIDs.ClientID, "client-id", "", "tenant identifier")
	f.StringVar(&keyIDs.ContainerType, "container-type", "", "window, process, report, browser, form, application, resource or attachment")
	f.StringVar(&keyIDs.ContainerID, "container-id", "", "container identifier")
	f.StringVar(&keyIDs.TableName, "table-name", "", "record table")
	f.StringVar(&keyIDs.RecordID, "record-id", "", "record identifier")
	f.StringVar(&keyIDs.ColumnName, "column-name", "", "record column")
	f.StringVar(&keyIDs.UserID, "user-id", "", "user scope")
	f.StringVar(&keyIDs.RoleID, "role-id", "", "role scope, used when no user is given")
	f.StringVar(&keyIDs.FileName, "file-name", "", "object file name")
	f.BoolVar(&keyPrefix, "prefix", false, "print the listing prefix instead of the object key")
	f.BoolVar(&keyShared, "shared", false, "with --prefix, ignore user and role scope")

	rootCmd.AddCommand(keyCmd)
}

func runKey(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	var out string
	if keyPrefix {
		out, err = cfg.Keys.ScopePrefix(keyIDs, !keyShared)
	} else {
		out, err = cfg.Keys.ObjectKey(keyIDs)
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
