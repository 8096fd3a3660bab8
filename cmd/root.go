package cmd

import (
	"fmt"

	"github.com/deploymenttheory/go-backbit/internal/bbt"
	"github.com/deploymenttheory/go-backbit/internal/config"
	"github.com/deploymenttheory/go-backbit/internal/logger"
	"github.com/spf13/cobra"
)

// NewRootCmd returns the base CLI command with every subcommand attached
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "backbit",
		Short: "Build, inspect and unpack BackBit (.bbt) containers",
		Long: `backbit packs Commodore 8-bit software into a single BackBit container:
an autostart program, a cartridge image, up to 8 disk images, extended data,
intro music, intro images and text metadata.

Input files are placed by extension: PRG, CRT, VIC-20 banks (.20 .40 .60 .70
.a0 .b0), D64, D71, D81, D8B, SID, KLA/KOA. Any other extension becomes the
extended data. Inputs may be gzip, xz or bzip2 compressed.`,
		Version:       bbt.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// If config file was explicitly specified via flag, reload it
			if cmd.Flags().Changed("config") && cfgFile != "" {
				if err := config.Reload(cfgFile); err != nil {
					return err
				}
			}

			// CLI flags override config settings
			flags := cmd.Flags()
			config.Update(func(c *config.AppConfig) {
				if flags.Changed("debug") {
					c.Debug, _ = flags.GetBool("debug")
				}
				if flags.Changed("log-format") {
					c.LogFormat, _ = flags.GetString("log-format")
				}
				if flags.Changed("log-file") {
					c.LogFile, _ = flags.GetString("log-file")
				}
			})

			return InitLogging()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is backbit.yaml in the standard locations)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "human", "Log format: json or human")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file")

	rootCmd.AddCommand(
		newBuildCmd(),
		newInfoCmd(),
		newExtractCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		logger.LogError("Command execution failed", err, nil)
		return err
	}
	return nil
}

// InitLogging initializes the logger based on configuration settings
func InitLogging() error {
	cfg := config.Current()
	return logger.InitLogger(logger.LoggerConfig{
		Debug:     cfg.Debug,
		LogFormat: cfg.LogFormat,
		LogFile:   cfg.LogFile,
	})
}

// newVersionCmd shows the application version
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "backbit v%s\n", bbt.Version)
		},
	}
}
