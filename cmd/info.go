package cmd

import (
	"github.com/deploymenttheory/go-backbit/internal/config"
	"github.com/deploymenttheory/go-backbit/internal/cryptoutil"
	"github.com/deploymenttheory/go-backbit/internal/description"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	var format, digest string

	cmd := &cobra.Command{
		Use:   "info [flags] <container.bbt>",
		Short: "List the chunks of a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Current()
			if !cmd.Flags().Changed("format") && cfg.Info.Format != "" {
				format = cfg.Info.Format
			}
			if !cmd.Flags().Changed("digest") {
				digest = cfg.Info.Digest
			}

			var hasher cryptoutil.Hasher
			if digest != "" {
				h, err := cryptoutil.NewHasher(cryptoutil.HashAlgorithm(digest))
				if err != nil {
					return err
				}
				hasher = h
			}

			report, err := description.Inspect(args[0], hasher)
			if err != nil {
				return err
			}

			if format == "" || format == "text" {
				return report.WriteText(cmd.OutOrStdout())
			}
			f, err := description.ParseFormat(format)
			if err != nil {
				return err
			}
			data, err := description.Marshal(f, report)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, yaml, json or plist")
	cmd.Flags().StringVar(&digest, "digest", "", "Digest every chunk with sha256, sha512, blake2b or blake3")
	return cmd
}
