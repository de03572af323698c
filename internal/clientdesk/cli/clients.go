package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/clientdesk/pkg/clientsdk"
)

func newClientsCmd(opts *rootOptions) *cobra.Command {
	clientsCmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage clients",
		Long:  `List, add, update and remove clients through the API.`,
	}

	clientsCmd.AddCommand(
		newClientsListCmd(opts),
		newClientsGetCmd(opts),
		newClientsAddCmd(opts),
		newClientsUpdateCmd(opts),
		newClientsRmCmd(opts),
	)
	return clientsCmd
}

func newClientsListCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the 100 most recently added clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")

			clients, err := opts.sdk().ListClients(cmd.Context(), search)
			if err != nil {
				return fmt.Errorf("failed to list clients: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(clients) == 0 {
				fmt.Fprintln(out, "No clients found")
				return nil
			}

			fmt.Fprintf(out, "%-6s %-30s %-32s %-16s %s\n", "ID", "Name", "Email", "Phone", "Added")
			fmt.Fprintln(out, "------------------------------------------------------------------------------------------------------")
			for _, c := range clients {
				fmt.Fprintf(out, "%-6d %-30s %-32s %-16s %s\n",
					c.ID,
					truncate(c.Name, 30),
					truncate(c.Email, 32),
					truncate(phoneOrDash(c.Phone), 16),
					c.CreatedAt.Local().Format("2006-01-02 15:04"),
				)
			}

			fmt.Fprintf(out, "\nTotal: %d client(s)\n", len(clients))
			return nil
		},
	}
	cmd.Flags().String("search", "", "Only show clients whose name contains this text")
	return cmd
}

func newClientsGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			c, err := opts.sdk().GetClient(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get client: %w", err)
			}

			printClient(cmd.OutOrStdout(), c)
			return nil
		},
	}
}

func newClientsAddCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")

			req := clientsdk.CreateClientRequest{Name: name, Email: email}
			if cmd.Flags().Changed("phone") {
				phone, _ := cmd.Flags().GetString("phone")
				req.Phone = &phone
			}

			c, err := opts.sdk().CreateClient(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Client created: %s (ID: %d)\n", c.Name, c.ID)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Client name (required)")
	cmd.Flags().String("email", "", "Client email (required)")
	cmd.Flags().String("phone", "", "Client phone")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newClientsUpdateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update fields of an existing client",
		Long:  `Only the flags given are changed. Pass --phone "" to clear the phone.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var req clientsdk.UpdateClientRequest
			for flag, dst := range map[string]**string{
				"name":  &req.Name,
				"email": &req.Email,
				"phone": &req.Phone,
			} {
				if cmd.Flags().Changed(flag) {
					v, _ := cmd.Flags().GetString(flag)
					*dst = &v
				}
			}

			c, err := opts.sdk().UpdateClient(cmd.Context(), id, req)
			if err != nil {
				return fmt.Errorf("failed to update client: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Client updated: %s\n", c.Name)
			return nil
		},
	}
	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("email", "", "New email")
	cmd.Flags().String("phone", "", "New phone, empty to clear")
	return cmd
}

func newClientsRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a client",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := opts.sdk().DeleteClient(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete client: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Client deleted (ID: %d)\n", id)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid client ID: %q", s)
	}
	return id, nil
}

func printClient(out io.Writer, c *clientsdk.Client) {
	fmt.Fprintf(out, "ID:     %d\n", c.ID)
	fmt.Fprintf(out, "Name:   %s\n", c.Name)
	fmt.Fprintf(out, "Email:  %s\n", c.Email)
	fmt.Fprintf(out, "Phone:  %s\n", phoneOrDash(c.Phone))
	fmt.Fprintf(out, "Added:  %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"))
}

func phoneOrDash(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
