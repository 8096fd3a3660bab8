package chunk

import (
	"io"

	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
)

// CopyBufferSize is the size of the buffer used to stream large payloads.
const CopyBufferSize = 64 * 1024

var zeroPadding [Alignment]byte

// WriteHeader writes the encoded header to w.
func WriteHeader(w io.Writer, h Header) error {
	b := h.Encode()
	if _, err := w.Write(b[:]); err != nil {
		return bbterrors.New(bbterrors.ErrWrite, "write header", h.Tag, err.Error())
	}
	return nil
}

// WritePadding writes the zero bytes that follow contentLen bytes of content.
func WritePadding(w io.Writer, contentLen int64) error {
	n := PaddingLen(contentLen)
	if n == 0 {
		return nil
	}
	if _, err := w.Write(zeroPadding[:n]); err != nil {
		return bbterrors.New(bbterrors.ErrWrite, "write padding", "", err.Error())
	}
	return nil
}

// Write emits a complete chunk: header, content and padding.
func Write(w io.Writer, tag string, param uint32, content []byte) error {
	if int64(len(content)) > MaxContentLen {
		return bbterrors.Newf(bbterrors.ErrInvalidArgument, "write chunk", tag, "content of %d bytes exceeds header limit", len(content))
	}
	h := NewHeader(tag, param, uint32(len(content)))
	if err := WriteHeader(w, h); err != nil {
		return err
	}
	if len(content) > 0 {
		if _, err := w.Write(content); err != nil {
			return bbterrors.New(bbterrors.ErrWrite, "write content", h.Tag, err.Error())
		}
	}
	return WritePadding(w, int64(len(content)))
}

// WriteStream emits a chunk whose content is streamed from r in CopyBufferSize pieces.
// Exactly length bytes must be available from r. buf may be nil; when provided it is
// reused as the copy buffer.
func WriteStream(w io.Writer, tag string, param uint32, r io.Reader, length int64, buf []byte) error {
	if length < 0 || length > MaxContentLen {
		return bbterrors.Newf(bbterrors.ErrInvalidArgument, "write chunk", tag, "content length %d out of range", length)
	}
	h := NewHeader(tag, param, uint32(length))
	if err := WriteHeader(w, h); err != nil {
		return err
	}
	if err := CopyExactly(w, r, length, buf); err != nil {
		return err
	}
	return WritePadding(w, length)
}

// CopyExactly copies length bytes from r to w through buf. A short source fails with
// ErrRead, a failed write with ErrWrite.
func CopyExactly(w io.Writer, r io.Reader, length int64, buf []byte) error {
	if len(buf) == 0 {
		buf = make([]byte, CopyBufferSize)
	}
	remaining := length
	for remaining > 0 {
		want := int64(len(buf))
		if remaining < want {
			want = remaining
		}
		n, err := io.ReadFull(r, buf[:want])
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return bbterrors.New(bbterrors.ErrWrite, "copy content", "", werr.Error())
			}
			remaining -= int64(n)
		}
		if err != nil {
			if remaining == 0 {
				break
			}
			return bbterrors.Newf(bbterrors.ErrRead, "copy content", "", "%d of %d bytes missing: %v", remaining, length, err)
		}
	}
	return nil
}
