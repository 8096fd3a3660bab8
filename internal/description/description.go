// Package description maps between container manifests and the files that describe them:
// structural descriptions naming the input file for each slot, and reports listing the
// chunks of an existing container.
package description

import (
	"path/filepath"
	"sort"

	"github.com/deploymenttheory/go-backbit/internal/bbt"
	"github.com/deploymenttheory/go-backbit/internal/dataref"
	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
)

// Description names the input file for every slot of a container. Relative paths are
// resolved against the directory of the description file.
type Description struct {
	Platform     string            `yaml:"platform,omitempty" json:"platform,omitempty" plist:"platform,omitempty"`
	Program      string            `yaml:"program,omitempty" json:"program,omitempty" plist:"program,omitempty"`
	Cartridge    string            `yaml:"cartridge,omitempty" json:"cartridge,omitempty" plist:"cartridge,omitempty"`
	VICCartridge *VICCartridge     `yaml:"vic_cartridge,omitempty" json:"vic_cartridge,omitempty" plist:"vic_cartridge,omitempty"`
	Mounts       []string          `yaml:"mounts,omitempty" json:"mounts,omitempty" plist:"mounts,omitempty"`
	Data         string            `yaml:"data,omitempty" json:"data,omitempty" plist:"data,omitempty"`
	Music        string            `yaml:"music,omitempty" json:"music,omitempty" plist:"music,omitempty"`
	Images       []string          `yaml:"images,omitempty" json:"images,omitempty" plist:"images,omitempty"`
	Text         map[string]string `yaml:"text,omitempty" json:"text,omitempty" plist:"text,omitempty"`
}

// VICCartridge is a VIC-20 cartridge bank. A zero LoadAddress is taken from the file
// extension (.20, .40, .60, .70, .a0, .b0).
type VICCartridge struct {
	Path        string `yaml:"path" json:"path" plist:"path"`
	LoadAddress uint16 `yaml:"load_address,omitempty" json:"load_address,omitempty" plist:"load_address,omitempty"`
}

// Load reads a description file in YAML, JSON or plist format
func Load(path string) (*Description, error) {
	var d Description
	if err := ReadFile(path, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Save writes d to path in the format given by the extension
func Save(path string, d *Description) error {
	return WriteFile(path, d)
}

// Manifest builds a manifest from the description. Relative paths are joined to
// baseDir and every file is opened with open.
func (d *Description) Manifest(baseDir string, open Opener) (*bbt.Manifest, error) {
	if open == nil {
		open = OpenInput
	}
	resolve := func(p string) (dataref.Reference, error) {
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		return open(p)
	}

	platform, err := bbt.ParsePlatform(d.Platform)
	if err != nil {
		return nil, err
	}
	m := bbt.NewManifest(bbt.WithPlatform(platform))

	set := func(p string, assign func(dataref.Reference) error) error {
		if p == "" {
			return nil
		}
		ref, err := resolve(p)
		if err != nil {
			return err
		}
		return assign(ref)
	}

	if err := set(d.Program, m.SetProgram); err != nil {
		return nil, err
	}
	if err := set(d.Cartridge, m.SetCartridge); err != nil {
		return nil, err
	}
	if v := d.VICCartridge; v != nil {
		addr := v.LoadAddress
		if addr == 0 {
			a, ok := vicLoadAddress(v.Path)
			if !ok {
				return nil, bbterrors.New(bbterrors.ErrInvalidCartridge, "load description", v.Path, "no load address and no VIC-20 extension")
			}
			addr = a
		}
		err := set(v.Path, func(ref dataref.Reference) error {
			return m.SetVICCartridge(ref, addr)
		})
		if err != nil {
			return nil, err
		}
	}
	for _, p := range d.Mounts {
		if err := set(p, m.AddMount); err != nil {
			return nil, err
		}
	}
	if err := set(d.Data, m.SetData); err != nil {
		return nil, err
	}
	if err := set(d.Music, m.SetMusic); err != nil {
		return nil, err
	}
	for _, p := range d.Images {
		if err := set(p, m.AddImage); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(d.Text))
	for name := range d.Text {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f, err := bbt.ParseTextField(name)
		if err != nil {
			return nil, err
		}
		m.Text.SetString(f, d.Text[name])
	}
	return m, nil
}
