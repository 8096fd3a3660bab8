package dataref

import (
	"bytes"
	"fmt"
	"io"
	"os"

	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
)

// RestOfFile is the FileSpan length meaning "from Offset to the end of the file".
const RestOfFile int64 = -1

// Reference is a lazy pointer to a span of bytes. The set of implementations is closed:
// FileSpan and Memory.
type Reference interface {
	// Len returns the number of bytes the reference spans.
	Len() (int64, error)

	// Resolve reads the whole span into memory.
	Resolve() ([]byte, error)

	// Open returns a reader positioned at the start of the span, for streaming.
	Open() (io.ReadCloser, error)

	// PreRendered reports whether the span already contains a chunk header and padding.
	PreRendered() bool

	// String describes the reference for logs and listings.
	String() string

	isReference()
}

// FileSpan references Length bytes of the file at Path starting at Offset.
type FileSpan struct {
	Path   string
	Offset int64
	Length int64
}

// Memory references an owned byte slice.
type Memory struct {
	Data []byte
}

// FromPath returns a reference to the whole file at path.
func FromPath(path string) FileSpan {
	return FileSpan{Path: path, Offset: 0, Length: RestOfFile}
}

// FromSpan returns a reference to length bytes of path starting at offset.
func FromSpan(path string, offset, length int64) FileSpan {
	return FileSpan{Path: path, Offset: offset, Length: length}
}

// FromBytes returns a memory-backed reference.
func FromBytes(data []byte) Memory {
	return Memory{Data: data}
}

// FromString returns a memory-backed reference holding the UTF-8 bytes of s.
func FromString(s string) Memory {
	return Memory{Data: []byte(s)}
}

func (FileSpan) isReference() {}
func (Memory) isReference()   {}

// Len returns Length, or the file size minus Offset for RestOfFile spans.
func (r FileSpan) Len() (int64, error) {
	if r.Offset < 0 {
		return 0, bbterrors.Newf(bbterrors.ErrInvalidArgument, "resolve", r.Path, "negative offset %d", r.Offset)
	}
	if r.Length != RestOfFile {
		if r.Length < 0 {
			return 0, bbterrors.Newf(bbterrors.ErrInvalidArgument, "resolve", r.Path, "negative length %d", r.Length)
		}
		return r.Length, nil
	}
	info, err := os.Stat(r.Path)
	if err != nil {
		return 0, bbterrors.New(bbterrors.ErrRead, "resolve", r.Path, err.Error())
	}
	n := info.Size() - r.Offset
	if n < 0 {
		return 0, bbterrors.Newf(bbterrors.ErrRead, "resolve", r.Path, "offset %d beyond end of file (%d bytes)", r.Offset, info.Size())
	}
	return n, nil
}

// Resolve reads exactly Len bytes from Offset. A short read fails with ErrRead.
func (r FileSpan) Resolve() ([]byte, error) {
	n, err := r.Len()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(r.Path)
	if err != nil {
		return nil, bbterrors.New(bbterrors.ErrRead, "resolve", r.Path, err.Error())
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := f.ReadAt(buf, r.Offset)
	if int64(read) != n {
		detail := fmt.Sprintf("read %d of %d bytes at offset %d", read, n, r.Offset)
		if err != nil && err != io.EOF {
			detail += ": " + err.Error()
		}
		return nil, bbterrors.New(bbterrors.ErrRead, "resolve", r.Path, detail)
	}
	return buf, nil
}

// Open returns a reader over the span. Reading past the end of the file yields a short
// stream; callers that need exactly Len bytes must check what they copied.
func (r FileSpan) Open() (io.ReadCloser, error) {
	n, err := r.Len()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, bbterrors.New(bbterrors.ErrRead, "open", r.Path, err.Error())
	}
	return &sectionCloser{SectionReader: io.NewSectionReader(f, r.Offset, n), f: f}, nil
}

// PreRendered is true for spans that start inside a container rather than at offset 0.
func (r FileSpan) PreRendered() bool {
	return r.Offset > 0
}

func (r FileSpan) String() string {
	if r.Length == RestOfFile {
		return fmt.Sprintf("%s@%d", r.Path, r.Offset)
	}
	return fmt.Sprintf("%s@%d+%d", r.Path, r.Offset, r.Length)
}

// Len returns the length of the owned bytes.
func (r Memory) Len() (int64, error) {
	return int64(len(r.Data)), nil
}

// Resolve returns the owned bytes without copying.
func (r Memory) Resolve() ([]byte, error) {
	return r.Data, nil
}

// Open returns a reader over the owned bytes.
func (r Memory) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(r.Data)), nil
}

// PreRendered is always false; memory content always needs a header.
func (r Memory) PreRendered() bool {
	return false
}

func (r Memory) String() string {
	return fmt.Sprintf("memory(%d bytes)", len(r.Data))
}

type sectionCloser struct {
	*io.SectionReader
	f *os.File
}

func (s *sectionCloser) Close() error {
	return s.f.Close()
}
