package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/app"
)

func newSecretCmd() *cobra.Command {
	secretCmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage the database URL stored in the OS keyring",
	}

	secretCmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Store the database URL in the OS keyring",
		Long: `Prompts for the database URL without echoing it and stores it in the OS
keyring. When stdin is not a terminal the first line of stdin is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := readSecret(cmd)
			if err != nil {
				return err
			}
			if err := app.StoreDatabaseURL(dsn); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Database URL stored in keyring")
			return nil
		},
	})

	secretCmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the database URL from the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.DeleteDatabaseURL(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Database URL removed from keyring")
			return nil
		},
	})

	return secretCmd
}

func readSecret(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	out := cmd.ErrOrStderr()

	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read database url: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Fprint(out, "Database URL: ")
	dsn, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read database url: %w", err)
	}
	if len(dsn) == 0 {
		return "", errors.New("database url cannot be empty")
	}

	fmt.Fprint(out, "Confirm database URL: ")
	confirm, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	if string(dsn) != string(confirm) {
		return "", errors.New("database urls do not match")
	}

	return strings.TrimSpace(string(dsn)), nil
}
