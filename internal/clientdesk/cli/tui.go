package cli

import (
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the terminal UI",
		Long:  `Launch the interactive terminal user interface against the API at --api-url.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(opts.sdk())
		},
	}
}
