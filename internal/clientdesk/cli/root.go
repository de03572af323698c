// Package cli wires the clientdesk cobra commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/app"
	"github.com/aussiebroadwan/clientdesk/pkg/clientsdk"
)

// APIURLEnv overrides the default --api-url.
const APIURLEnv = "CLIENTDESK_API_URL"

type rootOptions struct {
	apiURL string
}

func (o *rootOptions) sdk() *clientsdk.SDKClient {
	return clientsdk.NewSDKClient(o.apiURL)
}

// NewRootCommand builds the clientdesk command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	serve := newServeCmd()

	rootCmd := &cobra.Command{
		Use:   "clientdesk",
		Short: "Client record management API and terminal client",
		Long: `clientdesk stores client contact records and serves them over a JSON REST API.

Running clientdesk without arguments starts the API server. The clients and
tui subcommands talk to a running server at --api-url.`,
		Version:       app.BuildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	defaultURL := clientsdk.DefaultBaseURL
	if v := os.Getenv(APIURLEnv); v != "" {
		defaultURL = v
	}
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", defaultURL,
		"clientdesk API base URL (env "+APIURLEnv+")")

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newClientsCmd(opts))
	rootCmd.AddCommand(newTUICmd(opts))
	rootCmd.AddCommand(newSecretCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}
