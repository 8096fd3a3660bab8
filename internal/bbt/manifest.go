package bbt

import (
	"fmt"

	"github.com/deploymenttheory/go-backbit/internal/dataref"
	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
)

const (
	// MaxMounts is the number of disk images a container can hold.
	MaxMounts = 8

	// MaxImages is the number of intro images a container can hold.
	MaxImages = 10

	// FirstDevice is the drive number of the first mounted disk image.
	FirstDevice = 8
)

// VICCartridge is a VIC-20 cartridge bank and the address it loads at.
type VICCartridge struct {
	Ref         dataref.Reference
	LoadAddress uint16
}

// Manifest describes the contents of a container.
type Manifest struct {
	Platform Platform

	// Version is the tool version recorded in a parsed container's header.
	Version string

	Program      dataref.Reference
	Cartridge    dataref.Reference
	VICCartridge *VICCartridge
	Mounts       []dataref.Reference
	Data         dataref.Reference
	Music        dataref.Reference
	Images       []dataref.Reference
	Text         TextFields

	// Truncated is set by Parse when the container ended without a footer chunk.
	Truncated bool
}

// ManifestOption configures a new Manifest.
type ManifestOption func(*Manifest)

// WithPlatform sets the target platform.
func WithPlatform(p Platform) ManifestOption {
	return func(m *Manifest) {
		m.Platform = p
	}
}

// NewManifest returns an empty manifest targeting DefaultPlatform unless overridden.
func NewManifest(opts ...ManifestOption) *Manifest {
	m := &Manifest{Platform: DefaultPlatform}
	for _, o := range opts {
		o(m)
	}
	return m
}

// SetProgram assigns the autostart program. Only one program is allowed.
func (m *Manifest) SetProgram(ref dataref.Reference) error {
	if m.Program != nil {
		return bbterrors.New(bbterrors.ErrCapacity, "add program", refName(ref), "only 1 program is allowed")
	}
	m.Program = ref
	return nil
}

// SetCartridge assigns a plain cartridge image. Only one cartridge of either kind is allowed.
func (m *Manifest) SetCartridge(ref dataref.Reference) error {
	if m.Cartridge != nil || m.VICCartridge != nil {
		return bbterrors.New(bbterrors.ErrCapacity, "add cartridge", refName(ref), "only 1 cartridge is allowed")
	}
	m.Cartridge = ref
	return nil
}

// SetVICCartridge assigns a VIC-20 cartridge bank loading at addr.
func (m *Manifest) SetVICCartridge(ref dataref.Reference, addr uint16) error {
	if m.Cartridge != nil || m.VICCartridge != nil {
		return bbterrors.New(bbterrors.ErrCapacity, "add cartridge", refName(ref), "only 1 cartridge is allowed")
	}
	m.VICCartridge = &VICCartridge{Ref: ref, LoadAddress: addr}
	return nil
}

// AddMount appends a disk image. Its device number is FirstDevice plus its position.
func (m *Manifest) AddMount(ref dataref.Reference) error {
	if len(m.Mounts) >= MaxMounts {
		return bbterrors.Newf(bbterrors.ErrCapacity, "add mount", refName(ref), "only %d disk images are allowed", MaxMounts)
	}
	m.Mounts = append(m.Mounts, ref)
	return nil
}

// RemoveMount removes the disk image at index i; later images move down one device.
func (m *Manifest) RemoveMount(i int) error {
	if i < 0 || i >= len(m.Mounts) {
		return bbterrors.Newf(bbterrors.ErrInvalidArgument, "remove mount", "", "index %d out of range", i)
	}
	m.Mounts = append(m.Mounts[:i], m.Mounts[i+1:]...)
	return nil
}

// SetData assigns the extended data blob.
func (m *Manifest) SetData(ref dataref.Reference) error {
	if m.Data != nil {
		return bbterrors.New(bbterrors.ErrCapacity, "add data", refName(ref), "only 1 extended data file is allowed")
	}
	m.Data = ref
	return nil
}

// SetMusic assigns the intro music.
func (m *Manifest) SetMusic(ref dataref.Reference) error {
	if m.Music != nil {
		return bbterrors.New(bbterrors.ErrCapacity, "add music", refName(ref), "only 1 SID file is allowed")
	}
	m.Music = ref
	return nil
}

// AddImage appends an intro image.
func (m *Manifest) AddImage(ref dataref.Reference) error {
	if len(m.Images) >= MaxImages {
		return bbterrors.Newf(bbterrors.ErrCapacity, "add image", refName(ref), "only %d images are allowed", MaxImages)
	}
	m.Images = append(m.Images, ref)
	return nil
}

// RemoveImage removes the intro image at index i.
func (m *Manifest) RemoveImage(i int) error {
	if i < 0 || i >= len(m.Images) {
		return bbterrors.Newf(bbterrors.ErrInvalidArgument, "remove image", "", "index %d out of range", i)
	}
	m.Images = append(m.Images[:i], m.Images[i+1:]...)
	return nil
}

// HasCartridge reports whether either kind of cartridge is set.
func (m *Manifest) HasCartridge() bool {
	return m.Cartridge != nil || m.VICCartridge != nil
}

// IsEmpty reports whether no payload slot is populated. Text fields do not count.
func (m *Manifest) IsEmpty() bool {
	return m.Program == nil && !m.HasCartridge() && len(m.Mounts) == 0 &&
		m.Data == nil && m.Music == nil && len(m.Images) == 0
}

// IsBootable reports whether the container has something to start: a program, a
// cartridge or a disk image.
func (m *Manifest) IsBootable() bool {
	return m.Program != nil || m.HasCartridge() || len(m.Mounts) > 0
}

// Validate checks the structural rules that do not require reading any payload:
// slot capacities, the cartridge exclusivity and the cartridge policy.
func (m *Manifest) Validate(policy Policy) error {
	if _, err := m.Platform.Param(); err != nil {
		return err
	}
	if m.Cartridge != nil && m.VICCartridge != nil {
		return bbterrors.New(bbterrors.ErrCapacity, "build", "cartridge", "a cartridge and a VIC-20 cartridge cannot both be set")
	}
	if m.VICCartridge != nil && m.VICCartridge.Ref == nil {
		return bbterrors.New(bbterrors.ErrInvalidArgument, "build", "vic cartridge", "missing reference")
	}
	if len(m.Mounts) > MaxMounts {
		return bbterrors.Newf(bbterrors.ErrCapacity, "build", "mounts", "%d disk images, only %d are allowed", len(m.Mounts), MaxMounts)
	}
	if len(m.Images) > MaxImages {
		return bbterrors.Newf(bbterrors.ErrCapacity, "build", "images", "%d images, only %d are allowed", len(m.Images), MaxImages)
	}
	for i, ref := range m.Mounts {
		if ref == nil {
			return bbterrors.New(bbterrors.ErrInvalidArgument, "build", fmt.Sprintf("mount %d", i+1), "missing reference")
		}
	}
	for i, ref := range m.Images {
		if ref == nil {
			return bbterrors.New(bbterrors.ErrInvalidArgument, "build", fmt.Sprintf("image %d", i+1), "missing reference")
		}
	}
	return policy.check(m)
}

func refName(ref dataref.Reference) string {
	if ref == nil {
		return ""
	}
	return ref.String()
}
