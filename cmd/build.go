package cmd

import (
	"path/filepath"

	"github.com/deploymenttheory/go-backbit/internal/bbt"
	"github.com/deploymenttheory/go-backbit/internal/config"
	"github.com/deploymenttheory/go-backbit/internal/description"
	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
	"github.com/deploymenttheory/go-backbit/internal/logger"
	"github.com/spf13/cobra"
)

type buildOptions struct {
	platform           string
	from               string
	describe           string
	exclusiveCartridge bool
	text               map[string]*string
}

// textFlagName maps text field names to flags; --version is taken by cobra
func textFlagName(field string) string {
	if field == "version" {
		return "version-text"
	}
	return field
}

func newBuildCmd() *cobra.Command {
	opts := &buildOptions{text: make(map[string]*string)}

	cmd := &cobra.Command{
		Use:   "build [flags] <output.bbt> [input files...]",
		Short: "Pack input files into a container",
		Example: `  backbit build game.bbt game.prg side1.d64 side2.d64 intro.sid title.kla
  backbit build -p v20 gorf.bbt gorf.a0 --title Gorf
  backbit build --from game.yaml game.bbt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts, args[0], args[1:])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.platform, "platform", "p", "", "Target platform: c64, c128, v20 or pls4 (default from config, else c64)")
	flags.StringVar(&opts.from, "from", "", "Read the container layout from a YAML, JSON or plist description")
	flags.StringVar(&opts.describe, "describe", "", "Write the container layout to a YAML, JSON or plist description")
	flags.BoolVar(&opts.exclusiveCartridge, "exclusive-cartridge", false, "Reject a cartridge combined with a program, disks or extended data")
	for _, field := range bbt.TextFieldNames() {
		opts.text[field] = flags.String(textFlagName(field), "", "Text metadata: "+field)
	}
	return cmd
}

func runBuild(cmd *cobra.Command, opts *buildOptions, output string, inputs []string) error {
	cfg := config.Current()
	flags := cmd.Flags()

	d := &description.Description{}
	baseDir := ""
	if opts.from != "" {
		loaded, err := description.Load(opts.from)
		if err != nil {
			return err
		}
		d = loaded
		baseDir = filepath.Dir(opts.from)
	}

	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return bbterrors.New(bbterrors.ErrInvalidArgument, "add input", in, err.Error())
		}
		if err := d.AddInput(abs); err != nil {
			return err
		}
	}

	switch {
	case flags.Changed("platform"):
		d.Platform = opts.platform
	case d.Platform == "":
		d.Platform = cfg.Platform
	}

	for field, value := range opts.text {
		if flags.Changed(textFlagName(field)) {
			if err := d.SetText(field, *value); err != nil {
				return err
			}
		}
	}

	m, err := d.Manifest(baseDir, description.OpenInput)
	if err != nil {
		return err
	}
	if m.IsEmpty() {
		return bbterrors.New(bbterrors.ErrInvalidArgument, "build", output, "no input files")
	}
	if !m.IsBootable() {
		logger.LogWarn("Container has no program, cartridge or disk image to start", map[string]interface{}{
			"path": output,
		})
	}

	policy := bbt.Policy{ExclusiveCartridge: cfg.Build.ExclusiveCartridge}
	if flags.Changed("exclusive-cartridge") {
		policy.ExclusiveCartridge = opts.exclusiveCartridge
	}

	if err := bbt.Build(output, m, bbt.WithPolicy(policy)); err != nil {
		return err
	}

	if opts.describe != "" {
		return description.Save(opts.describe, d)
	}
	return nil
}
