package cmd

import (
	"fmt"

	"github.com/deploymenttheory/go-backbit/internal/bbt"
	"github.com/deploymenttheory/go-backbit/internal/config"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "extract [flags] <container.bbt>",
		Short: "Write the contents of a container back out as standalone files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output-dir") {
				outputDir = config.Current().Extract.OutputDir
			}

			files, err := bbt.Extract(args[0], bbt.WithOutputDir(outputDir))
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for extracted files (default next to the container)")
	return cmd
}
