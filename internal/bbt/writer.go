package bbt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/deploymenttheory/go-backbit/internal/bbt/chunk"
	"github.com/deploymenttheory/go-backbit/internal/dataref"
	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
	"github.com/deploymenttheory/go-backbit/internal/fsutil"
	"github.com/deploymenttheory/go-backbit/internal/logger"
)

type buildOptionData struct {
	policy      Policy
	toolVersion string
}

// BuildOption configures Build and WriteTo.
type BuildOption func(*buildOptionData)

// WithPolicy sets the validation policy.
func WithPolicy(p Policy) BuildOption {
	return func(o *buildOptionData) {
		o.policy = p
	}
}

// WithToolVersion overrides the version recorded in the header chunk.
func WithToolVersion(v string) BuildOption {
	return func(o *buildOptionData) {
		o.toolVersion = v
	}
}

func newBuildOptions(options []BuildOption) buildOptionData {
	opts := buildOptionData{
		policy:      DefaultPolicy,
		toolVersion: Version,
	}
	for _, o := range options {
		o(&opts)
	}
	return opts
}

// Build validates m and writes it as a container to dest. The container is written to a
// temporary file in the destination directory and renamed over dest only after the
// footer chunk is written, so dest is never left truncated.
func Build(dest string, m *Manifest, options ...BuildOption) error {
	opts := newBuildOptions(options)
	if err := validate(m, opts.policy); err != nil {
		return err
	}

	var written int64
	err := fsutil.WriteFileAtomic(dest, 0644, func(f *os.File) error {
		n, err := emit(f, m, opts)
		written = n
		return err
	})
	if err != nil {
		var bbtErr *bbterrors.BBTError
		if errors.As(err, &bbtErr) {
			return err
		}
		return bbterrors.New(bbterrors.ErrWrite, "build", dest, err.Error())
	}

	logger.LogInfo("Container built", map[string]interface{}{
		"path":     dest,
		"bytes":    written,
		"platform": m.Platform.String(),
	})
	return nil
}

// WriteTo validates m and streams the container to w. Nothing is written when
// validation fails.
func WriteTo(w io.Writer, m *Manifest, options ...BuildOption) (int64, error) {
	opts := newBuildOptions(options)
	if err := validate(m, opts.policy); err != nil {
		return 0, err
	}
	return emit(w, m, opts)
}

// BuildBytes returns the container for m as a byte slice.
func BuildBytes(m *Manifest, options ...BuildOption) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := WriteTo(&buf, m, options...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// validate checks every structural and payload shape rule using only reference
// lengths, so a bad manifest is rejected before any output exists.
func validate(m *Manifest, policy Policy) error {
	if m == nil {
		return bbterrors.New(bbterrors.ErrInvalidArgument, "build", "", "nil manifest")
	}
	if err := m.Validate(policy); err != nil {
		return err
	}

	if m.Program != nil {
		if err := checkProgram(m.Program); err != nil {
			return err
		}
	}

	if m.Cartridge != nil {
		if err := checkCartridge(m.Cartridge); err != nil {
			return err
		}
	}

	if v := m.VICCartridge; v != nil {
		if !v.Ref.PreRendered() {
			if err := checkVICLoadAddress(v.LoadAddress); err != nil {
				return err
			}
		}
		if err := checkContentLen(v.Ref, "vic cartridge"); err != nil {
			return err
		}
	}

	for i, ref := range m.Mounts {
		if err := checkMount(ref, i); err != nil {
			return err
		}
	}

	if m.Data != nil {
		if err := checkContentLen(m.Data, "data"); err != nil {
			return err
		}
	}
	if m.Music != nil {
		if err := checkContentLen(m.Music, "music"); err != nil {
			return err
		}
	}
	for i, ref := range m.Images {
		if err := checkContentLen(ref, fmt.Sprintf("image %d", i+1)); err != nil {
			return err
		}
	}
	for f := TextField(0); f < textFieldCount; f++ {
		if ref := m.Text.Get(f); ref != nil {
			if err := checkContentLen(ref, f.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkProgram(ref dataref.Reference) error {
	if ref.PreRendered() {
		return checkContentLen(ref, "program")
	}
	n, err := ref.Len()
	if err != nil {
		return err
	}
	if n <= 2 {
		return bbterrors.Newf(bbterrors.ErrInvalidProgram, "build", ref.String(), "%d bytes, need a load address and at least one byte", n)
	}
	if n-2 > chunk.MaxContentLen {
		return bbterrors.Newf(bbterrors.ErrInvalidProgram, "build", ref.String(), "%d bytes is too large", n)
	}
	return nil
}

func checkCartridge(ref dataref.Reference) error {
	if ref.PreRendered() {
		return checkContentLen(ref, "cartridge")
	}
	n, err := ref.Len()
	if err != nil {
		return err
	}
	_, err = CartridgeParam(n)
	return err
}

func checkMount(ref dataref.Reference, i int) error {
	if ref.PreRendered() {
		return checkContentLen(ref, fmt.Sprintf("mount %d", i+1))
	}
	n, err := ref.Len()
	if err != nil {
		return err
	}
	if _, err := ClassifyDisk(n); err != nil {
		return bbterrors.Newf(bbterrors.ErrInvalidDiskImage, "build", ref.String(), "mount %d: %d bytes is not a D64, D71, D81 or D8B image", i+1, n)
	}
	return nil
}

// checkContentLen verifies that a raw reference fits in a chunk, and that a pre-rendered
// one keeps the output aligned.
func checkContentLen(ref dataref.Reference, slot string) error {
	n, err := ref.Len()
	if err != nil {
		return err
	}
	if ref.PreRendered() {
		if n < chunk.HeaderLen || n%chunk.Alignment != 0 {
			return bbterrors.Newf(bbterrors.ErrCorruptContainer, "build", ref.String(), "%s: pre-rendered chunk of %d bytes is not aligned", slot, n)
		}
		return nil
	}
	if n > chunk.MaxContentLen {
		return bbterrors.Newf(bbterrors.ErrInvalidArgument, "build", ref.String(), "%s: %d bytes exceeds the chunk size limit", slot, n)
	}
	return nil
}

// writer emits chunks in container order and counts the bytes written.
type writer struct {
	w       io.Writer
	buf     []byte
	written int64
}

func (cw *writer) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.written += int64(n)
	return n, err
}

func emit(w io.Writer, m *Manifest, opts buildOptionData) (int64, error) {
	cw := &writer{w: w, buf: make([]byte, chunk.CopyBufferSize)}

	platform, err := m.Platform.Param()
	if err != nil {
		return cw.written, err
	}
	if err := cw.chunk(chunk.TagHeader, platform, []byte(VersionPrefix+opts.toolVersion)); err != nil {
		return cw.written, err
	}

	if m.Program != nil {
		if err := cw.program(m.Program); err != nil {
			return cw.written, err
		}
	}
	if m.Cartridge != nil {
		if err := cw.cartridge(m.Cartridge); err != nil {
			return cw.written, err
		}
	}
	if m.VICCartridge != nil {
		if err := cw.vicCartridge(m.VICCartridge); err != nil {
			return cw.written, err
		}
	}
	for i, ref := range m.Mounts {
		if err := cw.mount(ref, FirstDevice+i); err != nil {
			return cw.written, err
		}
	}
	if m.Data != nil {
		if err := cw.data(m.Data); err != nil {
			return cw.written, err
		}
	}
	if m.Music != nil {
		if err := cw.simple(m.Music, chunk.TagMusic, 0); err != nil {
			return cw.written, err
		}
	}
	for _, ref := range m.Images {
		if err := cw.simple(ref, chunk.TagImage, 0); err != nil {
			return cw.written, err
		}
	}
	for f := TextField(0); f < textFieldCount; f++ {
		if err := cw.text(f, m.Text.Get(f)); err != nil {
			return cw.written, err
		}
	}

	if err := cw.chunk(chunk.TagFooter, chunk.ParamFromString(chunk.FooterParam), nil); err != nil {
		return cw.written, err
	}
	return cw.written, nil
}

func (cw *writer) chunk(tag string, param uint32, content []byte) error {
	logger.LogDebug("Writing chunk", map[string]interface{}{
		"tag":    tag,
		"param":  fmt.Sprintf("%08X", param),
		"bytes":  len(content),
		"offset": cw.written,
	})
	return chunk.Write(cw, tag, param, content)
}

// verbatim copies a pre-rendered chunk as is.
func (cw *writer) verbatim(ref dataref.Reference) error {
	n, err := ref.Len()
	if err != nil {
		return err
	}
	rc, err := ref.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	logger.LogDebug("Copying pre-rendered chunk", map[string]interface{}{
		"source": ref.String(),
		"offset": cw.written,
	})
	return chunk.CopyExactly(cw, rc, n, cw.buf)
}

func (cw *writer) program(ref dataref.Reference) error {
	if ref.PreRendered() {
		return cw.verbatim(ref)
	}
	data, err := ref.Resolve()
	if err != nil {
		return err
	}
	load, payload, err := splitProgram(data)
	if err != nil {
		return err
	}
	return cw.chunk(chunk.TagProgram, ProgramParam(load, int64(len(payload))), payload)
}

func (cw *writer) cartridge(ref dataref.Reference) error {
	if ref.PreRendered() {
		return cw.verbatim(ref)
	}
	data, err := ref.Resolve()
	if err != nil {
		return err
	}
	param, err := CartridgeParam(int64(len(data)))
	if err != nil {
		return err
	}
	return cw.chunk(chunk.TagCartridge, param, data)
}

func (cw *writer) vicCartridge(v *VICCartridge) error {
	if v.Ref.PreRendered() {
		return cw.verbatim(v.Ref)
	}
	data, err := v.Ref.Resolve()
	if err != nil {
		return err
	}
	return cw.chunk(chunk.TagVICCartridge, uint32(v.LoadAddress), data)
}

func (cw *writer) mount(ref dataref.Reference, device int) error {
	if ref.PreRendered() {
		return cw.verbatim(ref)
	}
	data, err := ref.Resolve()
	if err != nil {
		return err
	}
	diskType, err := ClassifyDisk(int64(len(data)))
	if err != nil {
		return err
	}
	return cw.chunk(chunk.MountTag(diskType), uint32(device), data)
}

// data streams the extended data blob; it is the one payload that may be too large
// to hold in memory.
func (cw *writer) data(ref dataref.Reference) error {
	if ref.PreRendered() {
		return cw.verbatim(ref)
	}
	n, err := ref.Len()
	if err != nil {
		return err
	}
	rc, err := ref.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	tag, param := chunk.SplitID(chunk.TagExtendedData + chunk.ExtendedDataParam)
	logger.LogDebug("Streaming extended data", map[string]interface{}{
		"source": ref.String(),
		"bytes":  n,
		"offset": cw.written,
	})
	return chunk.WriteStream(cw, tag, param, rc, n, cw.buf)
}

func (cw *writer) simple(ref dataref.Reference, tag string, param uint32) error {
	if ref.PreRendered() {
		return cw.verbatim(ref)
	}
	data, err := ref.Resolve()
	if err != nil {
		return err
	}
	return cw.chunk(tag, param, data)
}

func (cw *writer) text(f TextField, ref dataref.Reference) error {
	if ref == nil {
		return nil
	}
	if ref.PreRendered() {
		h, err := HeaderOf(ref)
		if err != nil {
			return err
		}
		if h.Length == 0 {
			return nil
		}
		return cw.verbatim(ref)
	}
	data, err := ref.Resolve()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	tag, param := chunk.SplitID(f.ID())
	return cw.chunk(tag, param, data)
}
