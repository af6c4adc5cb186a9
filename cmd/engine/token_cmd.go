package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"seace-engine/internal/secrets"
)

func newTokenCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the API token guarding POST /scrape in the OS keychain",
	}

	account := func() (string, error) {
		cfg, _, err := f.loadConfig()
		if err != nil {
			return "", err
		}
		acct := strings.TrimSpace(cfg.Auth.KeyringAccount)
		if acct == "" {
			return "", errors.New("auth.keyring_account is not set in config.yml")
		}
		return acct, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set TOKEN",
		Short: "Store the API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := account()
			if err != nil {
				return err
			}
			if err := secrets.SetAPIToken(secrets.OS, acct, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token stored for %s/%s\n", secrets.KeyringService, acct)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := account()
			if err != nil {
				return err
			}
			return secrets.DeleteAPIToken(secrets.OS, acct)
		},
	})
	return cmd
}
