package main

import (
	"os"
	"time"

	"github.com/sagarc03/s3gateway/clientcli"
	"github.com/spf13/cobra"
)

var (
	presignMethod string
	presignTTL    time.Duration
)

var presignCmd = &cobra.Command{
	Use:   "presign <file-name>",
	Short: "Print a presigned URL for an object",
	Long: `Ask the gateway to sign a URL for the object the identifiers address.

With --quiet only the URL is printed, which suits scripts.

Examples:
  s3gateway-cli presign --client-id acme --container-type form --container-id inv-01 invoice.pdf
  s3gateway-cli presign -m PUT --ttl 15m --user-id 100 avatar.png
  curl -T avatar.png "$(s3gateway-cli presign -q -m PUT avatar.png)"`,
	Args: cobra.ExactArgs(1),
	RunE: runPresign,
}

func init() {
	presignCmd.Flags().StringVarP(&presignMethod, "method", "m", "GET", "HTTP method the URL is valid for (GET or PUT)")
	presignCmd.Flags().DurationVar(&presignTTL, "ttl", 0, "URL lifetime, whole seconds up to 168h (default: gateway default)")
}

func runPresign(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.Presign(cmd.Context(), clientcli.PresignOptions{
		Identifiers: identifiers(args[0]),
		Method:      presignMethod,
		TTL:         presignTTL,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatPresign(os.Stdout, result)
}
