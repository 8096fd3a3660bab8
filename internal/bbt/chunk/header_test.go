package chunk

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaddingLen(t *testing.T) {
	tests := []struct {
		content int64
		padding int64
	}{
		{0, 0},
		{1, 15},
		{13, 3},
		{15, 1},
		{16, 0},
		{17, 15},
		{174848, 0},
		{175531, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.padding, PaddingLen(tt.content), "content %d", tt.content)
		assert.Zero(t, (HeaderLen+tt.content+PaddingLen(tt.content))%Alignment, "content %d", tt.content)
	}
}

func TestParamString(t *testing.T) {
	assert.Equal(t, uint32(0x43363420), ParamFromString("C64 "))
	assert.Equal(t, uint32(0x43363420), ParamFromString("C64"))
	assert.Equal(t, uint32(0x20202020), ParamFromString(""))
	assert.Equal(t, "BACK", ParamString(ParamFromString("BACK")))
	assert.Equal(t, "C128", ParamString(0x43313238))
}

func TestEncodeDecode(t *testing.T) {
	h := NewHeader("STARTPRG", 0x08010862, 98)
	b := h.Encode()

	assert.Equal(t, []byte("STARTPRG"), b[:8])
	assert.Equal(t, []byte{0x08, 0x01, 0x08, 0x62}, b[8:12])
	assert.Equal(t, []byte{0, 0, 0, 98}, b[12:16])

	got, err := Decode(b[:])
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, int64(112), got.PaddedLen())
	assert.Equal(t, int64(128), got.ChunkLen())
	assert.Equal(t, KindProgram, got.Kind())
}

func TestNewHeaderFormatsTag(t *testing.T) {
	assert.Equal(t, "BACKBIT ", NewHeader("BACKBIT", 0, 0).Tag)
	assert.Equal(t, "EXTENDED", NewHeader("EXTENDEDDATA", 0, 0).Tag)
}

func TestDecodeShort(t *testing.T) {
	_, err := Decode(make([]byte, 15))
	assert.True(t, errors.Is(err, bbterrors.ErrCorruptContainer))
}

func TestWritePadsWithZeros(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "TXTTITLE", ParamFromString(""), []byte("Giana")))

	out := buf.Bytes()
	require.Len(t, out, 32)
	assert.Equal(t, "Giana", string(out[16:21]))
	assert.Equal(t, make([]byte, 11), out[21:])

	content, err := StripContent(out)
	require.NoError(t, err)
	assert.Equal(t, "Giana", string(content))
}

func TestWriteEmptyContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, TagFooter, ParamFromString(FooterParam), nil))
	assert.Equal(t, "BACKBITSBACK\x00\x00\x00\x00", buf.String())
}

func TestWriteStream(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, CopyBufferSize+7)

	var buf bytes.Buffer
	tag, param := SplitID("EXTENDEDDATA")
	require.NoError(t, WriteStream(&buf, tag, param, bytes.NewReader(payload), int64(len(payload)), make([]byte, 1024)))

	out := buf.Bytes()
	assert.Zero(t, len(out)%Alignment)
	h, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, KindExtendedData, h.Kind())
	assert.Equal(t, "DATA", h.ParamString())
	assert.Equal(t, uint32(len(payload)), h.Length)
	assert.Equal(t, payload, out[HeaderLen:HeaderLen+len(payload)])
}

func TestWriteStreamShortSource(t *testing.T) {
	var buf bytes.Buffer
	err := WriteStream(&buf, TagExtendedData, 0, strings.NewReader("abc"), 10, nil)
	assert.True(t, errors.Is(err, bbterrors.ErrRead))
}

func TestReadHeaderAt(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, TagMusic, 0, []byte("sid")))
	data := buf.Bytes()
	r := bytes.NewReader(data)

	h, err := ReadHeaderAt(r, 0)
	require.NoError(t, err)
	assert.Equal(t, TagMusic, h.Tag)

	_, err = ReadHeaderAt(r, int64(len(data)))
	assert.Equal(t, io.EOF, err)

	_, err = ReadHeaderAt(bytes.NewReader(data[:8]), 0)
	assert.True(t, errors.Is(err, bbterrors.ErrCorruptContainer))
}

func TestIsEmpty(t *testing.T) {
	h, err := Decode(make([]byte, HeaderLen))
	require.NoError(t, err)
	assert.True(t, h.IsEmpty())
	assert.False(t, NewHeader(TagImage, 0, 0).IsEmpty())
}
