package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sagarc03/s3gateway/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	jsonOutput bool
	quiet      bool

	ids clientcli.Identifiers
)

var rootCmd = &cobra.Command{
	Use:           "s3gateway-cli",
	Version:       version,
	Short:         "Client for the S3 gateway",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `s3gateway-cli talks to an S3 gateway.

Every command sends an identifier set. The gateway derives the object key
or listing prefix from it, so the same flags always address the same
object:

  --client-id       tenant (required, may come from the profile)
  --container-type  window, process, report, browser, form,
                    application, resource or attachment
  --container-id    id of the container
  --table-name, --record-id, --column-name
                    record scope, used when no container is given
  --user-id, --role-id
                    principal scope, used when nothing else is given`,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.s3gateway/config.yaml, env: S3GATEWAY_CLI_CONFIG)")
	pf.StringVarP(&profile, "profile", "p", "", "profile name (env: S3GATEWAY_PROFILE)")
	pf.StringVarP(&endpoint, "endpoint", "e", "", "gateway URL (default: http://localhost:7878, env: S3GATEWAY_ENDPOINT)")
	pf.BoolVar(&jsonOutput, "json", false, "output as JSON")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	pf.StringVar(&ids.ClientID, "client-id", "", "client identifier (env: S3GATEWAY_CLIENT_ID)")
	pf.StringVar(&ids.ContainerType, "container-type", "", "container type")
	pf.StringVar(&ids.ContainerID, "container-id", "", "container identifier")
	pf.StringVar(&ids.TableName, "table-name", "", "table name")
	pf.StringVar(&ids.RecordID, "record-id", "", "record identifier")
	pf.StringVar(&ids.ColumnName, "column-name", "", "column name")
	pf.StringVar(&ids.UserID, "user-id", "", "user identifier (env: S3GATEWAY_USER_ID)")
	pf.StringVar(&ids.RoleID, "role-id", "", "role identifier (env: S3GATEWAY_ROLE_ID)")

	rootCmd.AddCommand(presignCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		code := 1
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			code = exitErr.code
		} else {
			_ = getFormatter().FormatError(os.Stderr, err)
		}
		stop()
		os.Exit(code)
	}
}

// getConfigPath resolves the config file: flag, then env, then the default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges the selected profile, env vars and flags (flags take
// precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	name := profile
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	explicit := cfgFile != "" || clientcli.ConfigPathFromEnv() != "" || name != ""
	file, err := clientcli.LoadConfigFile(getConfigPath())
	switch {
	case err == nil:
		p, profileErr := file.Lookup(name)
		switch {
		case profileErr == nil:
			configs = append(configs, p.Config())
		case name != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles):
			return nil, profileErr
		}
	case explicit:
		// Only an explicitly requested config or profile must exist.
		return nil, err
	}

	configs = append(configs,
		clientcli.ConfigFromEnv(),
		&clientcli.Config{
			Endpoint: endpoint,
			ClientID: ids.ClientID,
			UserID:   ids.UserID,
			RoleID:   ids.RoleID,
		},
	)

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}

// identifiers returns the identifier flags with fileName set.
func identifiers(fileName string) clientcli.Identifiers {
	out := ids
	out.FileName = fileName
	return out
}

// exitError is returned when we want to exit with a specific code
// but don't want an error message printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}

// copyTo streams r to w and closes r.
func copyTo(w io.Writer, r io.ReadCloser) error {
	defer func() { _ = r.Close() }()
	_, err := io.Copy(w, r)
	return err
}
