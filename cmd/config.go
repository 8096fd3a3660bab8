package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/deploymenttheory/go-backbit/internal/config"
	"github.com/deploymenttheory/go-backbit/internal/fsutil"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or save the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if config.ConfigLoaded {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", config.ConfigFile)
			}
			settings := config.Current().Settings()
			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", k, settings[k])
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a file",
		Long:  "Write the effective configuration to path, or to backbit.yaml in the user config directory.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				dir, err := fsutil.GetConfigDir(config.AppName)
				if err != nil {
					return err
				}
				path = filepath.Join(dir, config.AppName+".yaml")
			}
			if err := config.SaveConfig(config.Current(), path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cmd
}
