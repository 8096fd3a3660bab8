package description

import (
	"github.com/deploymenttheory/go-backbit/internal/bbt"
	"github.com/deploymenttheory/go-backbit/internal/compression"
	"github.com/deploymenttheory/go-backbit/internal/dataref"
	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
	"github.com/deploymenttheory/go-backbit/internal/fsutil"
	"github.com/deploymenttheory/go-backbit/internal/logger"
)

// Opener turns an input path into a reference
type Opener func(path string) (dataref.Reference, error)

// OpenInput references the file at path. Compressed files (.gz, .xz, .bz2) are
// decompressed into memory; anything else is referenced on disk and read at build time.
func OpenInput(path string) (dataref.Reference, error) {
	if !fsutil.FileExists(path) {
		return nil, bbterrors.New(bbterrors.ErrRead, "open input", path, "no such file")
	}
	if !compression.IsCompressed(path) {
		return dataref.FromPath(path), nil
	}

	data, err := compression.ReadFile(path)
	if err != nil {
		return nil, bbterrors.New(bbterrors.ErrRead, "open input", path, err.Error())
	}
	logger.LogDebug("Decompressed input", map[string]interface{}{
		"path":   path,
		"format": string(compression.DetectFormat(path)),
		"bytes":  len(data),
	})
	return dataref.FromBytes(data), nil
}

// Slot is where an input file goes in a container
type Slot string

const (
	SlotProgram      Slot = "program"
	SlotCartridge    Slot = "cartridge"
	SlotVICCartridge Slot = "vic_cartridge"
	SlotMount        Slot = "mount"
	SlotMusic        Slot = "music"
	SlotImage        Slot = "image"
	SlotData         Slot = "data"
)

// Classify picks the slot for an input file from its extension, ignoring a compression
// extension. Unknown extensions are extended data.
func Classify(path string) Slot {
	switch fsutil.GetExtension(compression.InnerName(path)) {
	case "prg":
		return SlotProgram
	case "crt":
		return SlotCartridge
	case "20", "40", "60", "70", "a0", "b0":
		return SlotVICCartridge
	case "d64", "d71", "d81", "d8b":
		return SlotMount
	case "sid":
		return SlotMusic
	case "kla", "koa":
		return SlotImage
	}
	return SlotData
}

func vicLoadAddress(path string) (uint16, bool) {
	return bbt.VICLoadAddress(fsutil.GetExtension(compression.InnerName(path)))
}

// AddInput assigns path to the slot its extension selects
func (d *Description) AddInput(path string) error {
	capacity := func(detail string) error {
		return bbterrors.New(bbterrors.ErrCapacity, "add input", path, detail)
	}

	switch Classify(path) {
	case SlotProgram:
		if d.Program != "" {
			return capacity("too many program files (only 1 is allowed)")
		}
		d.Program = path
	case SlotCartridge:
		if d.Cartridge != "" || d.VICCartridge != nil {
			return capacity("too many cartridge images (only 1 is allowed)")
		}
		d.Cartridge = path
	case SlotVICCartridge:
		if d.Cartridge != "" || d.VICCartridge != nil {
			return capacity("too many cartridge images (only 1 is allowed)")
		}
		addr, _ := vicLoadAddress(path)
		d.VICCartridge = &VICCartridge{Path: path, LoadAddress: addr}
	case SlotMount:
		if len(d.Mounts) >= bbt.MaxMounts {
			return capacity("too many disk images (only 8 are allowed)")
		}
		d.Mounts = append(d.Mounts, path)
	case SlotMusic:
		if d.Music != "" {
			return capacity("too many SID files (only 1 is allowed)")
		}
		d.Music = path
	case SlotImage:
		if len(d.Images) >= bbt.MaxImages {
			return capacity("too many images (only 10 are allowed)")
		}
		d.Images = append(d.Images, path)
	default:
		if d.Data != "" {
			return capacity("too many unknown extensions (first is used for extended data)")
		}
		d.Data = path
	}
	return nil
}

// SetText sets a text field by name; an empty value removes it
func (d *Description) SetText(name, value string) error {
	f, err := bbt.ParseTextField(name)
	if err != nil {
		return err
	}
	if value == "" {
		delete(d.Text, f.String())
		return nil
	}
	if d.Text == nil {
		d.Text = make(map[string]string)
	}
	d.Text[f.String()] = value
	return nil
}
