package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"seace-engine/internal/config"
)

func newConfigCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the engine configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create config.yml in the data dir if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.EnsureUserConfig(f.dataDir, f.defaultsCfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load config.yml with environment overrides and report problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := f.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "default",
		Short: "Print the built-in defaults as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := config.Marshal(config.Default())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	})
	return cmd
}
