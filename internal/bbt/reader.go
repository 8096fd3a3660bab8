package bbt

import (
	"io"
	"os"
	"strings"

	"github.com/deploymenttheory/go-backbit/internal/bbt/chunk"
	"github.com/deploymenttheory/go-backbit/internal/dataref"
	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
	"github.com/deploymenttheory/go-backbit/internal/logger"
)

// ChunkInfo describes one chunk found while walking a container.
type ChunkInfo struct {
	Offset int64
	Header chunk.Header
	Kind   chunk.Kind

	// Ref spans the whole rendered chunk: header, content and padding.
	Ref dataref.FileSpan
}

// Walk visits every chunk of the container at path, starting with the header chunk and
// ending with the footer chunk. It reports whether the footer was reached.
//
// A file that ends cleanly on a chunk boundary without a footer stops the walk without
// an error and footerSeen is false. The first chunk must be a "BACKBIT " header and may
// not appear again. An all-zero tag or a chunk running past the end of the file means
// the file is corrupt, and any other unrecognized tag is an error.
func Walk(path string, fn func(ChunkInfo) error) (footerSeen bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return false, bbterrors.New(bbterrors.ErrRead, "parse", path, err.Error())
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return false, bbterrors.New(bbterrors.ErrRead, "parse", path, err.Error())
	}
	size := st.Size()

	h, err := chunk.ReadHeaderAt(f, 0)
	if err == io.EOF {
		return false, bbterrors.New(bbterrors.ErrInvalidHeader, "parse", path, "empty file")
	}
	if err != nil {
		if bbterrors.IsIOError(err) {
			return false, bbterrors.New(bbterrors.ErrRead, "parse", path, err.Error())
		}
		return false, bbterrors.New(bbterrors.ErrInvalidHeader, "parse", path, err.Error())
	}
	if h.Tag != chunk.TagHeader {
		return false, bbterrors.Newf(bbterrors.ErrInvalidHeader, "parse", path, "magic %q", h.Tag)
	}

	var offset int64
	for {
		info := ChunkInfo{
			Offset: offset,
			Header: h,
			Kind:   h.Kind(),
			Ref:    dataref.FromSpan(path, offset, h.ChunkLen()),
		}
		if h.IsEmpty() {
			return false, bbterrors.Newf(bbterrors.ErrCorruptContainer, "parse", path, "empty chunk tag at offset %d", offset)
		}
		if info.Kind == chunk.KindUnknown || (info.Kind == chunk.KindHeader && offset > 0) {
			return false, bbterrors.Newf(bbterrors.ErrUnknownChunkType, "parse", path, "%q at offset %d", h.Tag, offset)
		}
		if offset+h.ChunkLen() > size {
			return false, bbterrors.Newf(bbterrors.ErrCorruptContainer, "parse", path, "%q at offset %d claims %d bytes, file has %d", h.Tag, offset, h.ChunkLen(), size-offset)
		}
		if err := fn(info); err != nil {
			return false, err
		}
		if info.Kind == chunk.KindFooter {
			return true, nil
		}

		next := offset + h.ChunkLen()
		if next <= offset {
			return false, nil
		}
		offset = next

		h, err = chunk.ReadHeaderAt(f, offset)
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, bbterrors.New(errorKind(err), "parse", path, err.Error())
		}
	}
}

// errorKind keeps the sentinel of a codec error when wrapping it with the path.
func errorKind(err error) error {
	if bbterrors.IsIOError(err) {
		return bbterrors.ErrRead
	}
	return bbterrors.ErrCorruptContainer
}

// Parse reads the container at path into a Manifest. Every populated slot is a
// pre-rendered reference to its chunk inside the container.
//
// A container that stops without a footer chunk is accepted and returned with
// Truncated set.
func Parse(path string) (*Manifest, error) {
	m := NewManifest()

	footer, err := Walk(path, func(c ChunkInfo) error {
		return m.assign(c)
	})
	if err != nil {
		return nil, err
	}

	if !footer {
		m.Truncated = true
		logger.LogWarn("Container has no footer chunk, treating it as complete", map[string]interface{}{
			"path": path,
		})
	}
	return m, nil
}

func (m *Manifest) assign(c ChunkInfo) error {
	ref := c.Ref
	switch c.Kind {
	case chunk.KindHeader:
		p, v, err := HeaderInfo(c)
		if err != nil {
			return err
		}
		m.Platform = p
		m.Version = v
	case chunk.KindProgram:
		m.Program = ref
	case chunk.KindCartridge:
		m.Cartridge = ref
	case chunk.KindVICCartridge:
		m.VICCartridge = &VICCartridge{Ref: ref, LoadAddress: uint16(c.Header.Param)}
	case chunk.KindMount:
		m.Mounts = append(m.Mounts, ref)
	case chunk.KindSave:
		// Save slots are written by the hardware, not by this tool.
	case chunk.KindExtendedData:
		m.Data = ref
	case chunk.KindMusic:
		m.Music = ref
	case chunk.KindImage:
		m.Images = append(m.Images, ref)
	case chunk.KindText:
		if f, ok := textFieldForTag(c.Header.Tag); ok {
			m.Text.Set(f, ref)
		}
	case chunk.KindFooter:
	}

	logger.LogDebug("Parsed chunk", map[string]interface{}{
		"tag":    c.Header.Tag,
		"kind":   c.Kind.String(),
		"offset": c.Offset,
		"bytes":  c.Header.Length,
	})
	return nil
}

// HeaderInfo decodes the platform and tool version recorded in a header chunk.
func HeaderInfo(c ChunkInfo) (Platform, string, error) {
	p, err := PlatformFromParam(c.Header.Param)
	if err != nil {
		return "", "", bbterrors.Newf(bbterrors.ErrInvalidPlatform, "parse", c.Ref.Path, "platform parameter %q", c.Header.ParamString())
	}
	// the header chunk sits at offset 0, where a span reads as raw input
	rendered, err := c.Ref.Resolve()
	if err != nil {
		return "", "", err
	}
	content, err := chunk.StripContent(rendered)
	if err != nil {
		return "", "", err
	}
	return p, strings.TrimPrefix(string(content), VersionPrefix), nil
}

// ContentOf returns the payload bytes of ref. Pre-rendered references have their chunk
// header and padding removed; raw references are returned as is.
func ContentOf(ref dataref.Reference) ([]byte, error) {
	data, err := ref.Resolve()
	if err != nil {
		return nil, err
	}
	if !ref.PreRendered() {
		return data, nil
	}
	return chunk.StripContent(data)
}

// HeaderOf returns the chunk header of a pre-rendered reference.
func HeaderOf(ref dataref.Reference) (chunk.Header, error) {
	if !ref.PreRendered() {
		return chunk.Header{}, bbterrors.New(bbterrors.ErrInvalidArgument, "read header", ref.String(), "reference is not pre-rendered")
	}
	rc, err := ref.Open()
	if err != nil {
		return chunk.Header{}, err
	}
	defer rc.Close()

	b := make([]byte, chunk.HeaderLen)
	if _, err := io.ReadFull(rc, b); err != nil {
		return chunk.Header{}, bbterrors.New(bbterrors.ErrRead, "read header", ref.String(), err.Error())
	}
	return chunk.Decode(b)
}

// ProgramOf returns a standalone PRG for ref. For a STARTPRG chunk the load address is
// taken from the chunk parameter and put back in front of the content.
func ProgramOf(ref dataref.Reference) ([]byte, error) {
	if !ref.PreRendered() {
		return ref.Resolve()
	}
	rendered, err := ref.Resolve()
	if err != nil {
		return nil, err
	}
	h, err := chunk.Decode(rendered)
	if err != nil {
		return nil, err
	}
	content, err := chunk.StripContent(rendered)
	if err != nil {
		return nil, err
	}
	load, _ := ProgramAddresses(h.Param)
	return joinProgram(load, content), nil
}
