package bbt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-backbit/internal/bbt/chunk"
	"github.com/deploymenttheory/go-backbit/internal/dataref"
	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
	"github.com/deploymenttheory/go-backbit/internal/fsutil"
	"github.com/deploymenttheory/go-backbit/internal/logger"
)

type extractOptionData struct {
	outputDir string
}

// ExtractOption configures Extract.
type ExtractOption func(*extractOptionData)

// WithOutputDir writes extracted files to dir instead of next to the container.
func WithOutputDir(dir string) ExtractOption {
	return func(o *extractOptionData) {
		o.outputDir = dir
	}
}

// Extract writes the known chunks of the container at path back out as standalone
// files named after the container:
//
//	<base>.prg            autostart program, load address restored
//	<base>.crt            cartridge
//	<base>.<a0|20|...>    VIC-20 cartridge, extension from the load address
//	<base><device>.<d64>  disk images, device number as a hex digit
//	<base>.bin            extended data
//	<base>.sid            intro music
//	<base>.kla            intro images, later ones as <base>-2.kla, <base>-3.kla, ...
//
// It returns the paths written, in container order.
func Extract(path string, options ...ExtractOption) ([]string, error) {
	var opts extractOptionData
	for _, o := range options {
		o(&opts)
	}

	m, err := Parse(path)
	if err != nil {
		return nil, err
	}

	dir := opts.outputDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	base := filepath.Join(dir, fsutil.GetFileNameWithoutExt(path))

	x := &extractor{}

	if m.Program != nil {
		x.bytes(base+".prg", func() ([]byte, error) { return ProgramOf(m.Program) })
	}
	if m.Cartridge != nil {
		x.bytes(base+".crt", func() ([]byte, error) { return ContentOf(m.Cartridge) })
	}
	if v := m.VICCartridge; v != nil && x.err == nil {
		h, err := HeaderOf(v.Ref)
		if err != nil {
			return x.written, err
		}
		x.bytes(base+"."+VICExtension(h.Param), func() ([]byte, error) { return ContentOf(v.Ref) })
	}
	for _, ref := range m.Mounts {
		if x.err != nil {
			break
		}
		h, err := HeaderOf(ref)
		if err != nil {
			return x.written, err
		}
		name := fmt.Sprintf("%s%x.%s", base, h.Param, strings.ToLower(chunk.DiskType(h.Tag)))
		x.bytes(name, func() ([]byte, error) { return ContentOf(ref) })
	}
	if m.Data != nil {
		x.stream(base+".bin", m.Data)
	}
	if m.Music != nil {
		x.bytes(base+".sid", func() ([]byte, error) { return ContentOf(m.Music) })
	}
	for i, ref := range m.Images {
		name := base + ".kla"
		if i > 0 {
			name = fmt.Sprintf("%s-%d.kla", base, i+1)
		}
		x.bytes(name, func() ([]byte, error) { return ContentOf(ref) })
	}

	if x.err != nil {
		return x.written, x.err
	}
	logger.LogInfo("Container extracted", map[string]interface{}{
		"path":  path,
		"files": len(x.written),
	})
	return x.written, nil
}

// extractor writes files until the first failure and remembers what it wrote.
type extractor struct {
	written []string
	err     error
}

func (x *extractor) bytes(dest string, content func() ([]byte, error)) {
	if x.err != nil {
		return
	}
	data, err := content()
	if err != nil {
		x.err = err
		return
	}
	x.write(dest, func(f *os.File) error {
		if _, err := f.Write(data); err != nil {
			return bbterrors.New(bbterrors.ErrWrite, "extract", dest, err.Error())
		}
		return nil
	})
}

// stream copies the content of a pre-rendered chunk without loading it into memory.
func (x *extractor) stream(dest string, ref dataref.Reference) {
	if x.err != nil {
		return
	}
	h, err := HeaderOf(ref)
	if err != nil {
		x.err = err
		return
	}
	x.write(dest, func(f *os.File) error {
		rc, err := ref.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		if _, err := io.CopyN(io.Discard, rc, chunk.HeaderLen); err != nil {
			return bbterrors.New(bbterrors.ErrRead, "extract", ref.String(), err.Error())
		}
		return chunk.CopyExactly(f, rc, int64(h.Length), nil)
	})
}

func (x *extractor) write(dest string, fn func(f *os.File) error) {
	if err := fsutil.WriteFileAtomic(dest, 0644, fn); err != nil {
		x.err = err
		return
	}
	logger.LogDebug("Extracted file", map[string]interface{}{"path": dest})
	x.written = append(x.written, dest)
}
