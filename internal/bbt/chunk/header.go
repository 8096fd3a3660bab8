package chunk

import (
	"encoding/binary"
	"io"
	"math"
	"strings"

	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
)

const (
	// HeaderLen is the size of a chunk header in bytes.
	HeaderLen = 16

	// Alignment is the boundary every chunk header starts on.
	Alignment = 16

	// TagLen is the size of the type tag field.
	TagLen = 8

	// ParamLen is the size of the parameter field.
	ParamLen = 4

	// MaxContentLen is the largest content length the header can express.
	MaxContentLen = math.MaxUint32
)

// Header is a decoded chunk header.
type Header struct {
	Tag    string // always TagLen characters once encoded or decoded
	Param  uint32
	Length uint32 // content bytes, excluding header and padding
}

// NewHeader builds a header, padding or truncating tag to TagLen characters.
func NewHeader(tag string, param uint32, length uint32) Header {
	return Header{Tag: FormatTag(tag), Param: param, Length: length}
}

// FormatTag pads tag with spaces or truncates it to TagLen characters.
func FormatTag(tag string) string {
	if len(tag) >= TagLen {
		return tag[:TagLen]
	}
	return tag + strings.Repeat(" ", TagLen-len(tag))
}

// ParamFromString packs up to four characters big-endian into a parameter, padding
// short strings with spaces.
func ParamFromString(s string) uint32 {
	var b [ParamLen]byte
	for i := range b {
		b[i] = ' '
	}
	copy(b[:], s)
	return binary.BigEndian.Uint32(b[:])
}

// ParamString unpacks a parameter into its four characters.
func ParamString(param uint32) string {
	var b [ParamLen]byte
	binary.BigEndian.PutUint32(b[:], param)
	return string(b[:])
}

// PaddingLen returns the number of zero bytes that follow n content bytes.
func PaddingLen(n int64) int64 {
	return (Alignment - n%Alignment) % Alignment
}

// PaddedLen rounds n up to the next multiple of Alignment.
func PaddedLen(n int64) int64 {
	return n + PaddingLen(n)
}

// ParamString returns the parameter interpreted as four characters.
func (h Header) ParamString() string {
	return ParamString(h.Param)
}

// PaddedLen returns the content length including padding.
func (h Header) PaddedLen() int64 {
	return PaddedLen(int64(h.Length))
}

// ChunkLen returns the full size of the chunk on disk: header, content and padding.
func (h Header) ChunkLen() int64 {
	return HeaderLen + h.PaddedLen()
}

// Kind classifies the header by its tag.
func (h Header) Kind() Kind {
	return Classify(h.Tag)
}

// IsEmpty reports whether the tag holds nothing but zero bytes or blanks, which only
// happens in truncated or zero-filled files.
func (h Header) IsEmpty() bool {
	return strings.Trim(h.Tag, "\x00 ") == ""
}

// Encode returns the 16 byte wire form of the header.
func (h Header) Encode() [HeaderLen]byte {
	var b [HeaderLen]byte
	copy(b[:TagLen], FormatTag(h.Tag))
	binary.BigEndian.PutUint32(b[TagLen:TagLen+ParamLen], h.Param)
	binary.BigEndian.PutUint32(b[TagLen+ParamLen:], h.Length)
	return b
}

// Decode parses a header from the first HeaderLen bytes of b. The tag is not validated.
func Decode(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, bbterrors.Newf(bbterrors.ErrCorruptContainer, "decode header", "", "%d bytes, want %d", len(b), HeaderLen)
	}
	return Header{
		Tag:    string(b[:TagLen]),
		Param:  binary.BigEndian.Uint32(b[TagLen : TagLen+ParamLen]),
		Length: binary.BigEndian.Uint32(b[TagLen+ParamLen : HeaderLen]),
	}, nil
}

// ReadHeaderAt reads the header at off. It returns io.EOF when off is exactly at the end
// of the data and ErrCorruptContainer when only part of a header is present.
func ReadHeaderAt(r io.ReaderAt, off int64) (Header, error) {
	var b [HeaderLen]byte
	n, err := r.ReadAt(b[:], off)
	if n == HeaderLen {
		return Decode(b[:])
	}
	if n == 0 && err == io.EOF {
		return Header{}, io.EOF
	}
	if err != nil && err != io.EOF {
		return Header{}, bbterrors.Newf(bbterrors.ErrRead, "read header", "", "offset %d: %v", off, err)
	}
	return Header{}, bbterrors.Newf(bbterrors.ErrCorruptContainer, "read header", "", "truncated header at offset %d (%d bytes)", off, n)
}

// StripContent returns the content bytes of a rendered chunk (header, content, padding).
func StripContent(rendered []byte) ([]byte, error) {
	h, err := Decode(rendered)
	if err != nil {
		return nil, err
	}
	end := int64(HeaderLen) + int64(h.Length)
	if end > int64(len(rendered)) {
		return nil, bbterrors.Newf(bbterrors.ErrCorruptContainer, "strip content", h.Tag, "content length %d exceeds chunk of %d bytes", h.Length, len(rendered))
	}
	return rendered[HeaderLen:end], nil
}
