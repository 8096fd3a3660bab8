package bbt

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/deploymenttheory/go-backbit/internal/bbt/chunk"
	"github.com/deploymenttheory/go-backbit/internal/dataref"
	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunksOf walks a container in memory and checks the alignment and padding invariants
// on the way.
func chunksOf(t *testing.T, data []byte) []chunk.Header {
	t.Helper()
	require.Zero(t, len(data)%chunk.Alignment, "container length must be a multiple of 16")

	var headers []chunk.Header
	var offset int64
	for offset < int64(len(data)) {
		require.Zero(t, offset%chunk.Alignment, "chunk header offset %d", offset)
		h, err := chunk.Decode(data[offset:])
		require.NoError(t, err)

		contentEnd := offset + chunk.HeaderLen + int64(h.Length)
		chunkEnd := offset + h.ChunkLen()
		require.LessOrEqual(t, chunkEnd, int64(len(data)))
		for i := contentEnd; i < chunkEnd; i++ {
			require.Zero(t, data[i], "padding byte at %d of chunk %q", i, h.Tag)
		}

		headers = append(headers, h)
		offset = chunkEnd
	}
	return headers
}

func tags(headers []chunk.Header) []string {
	var out []string
	for _, h := range headers {
		out = append(out, h.Tag)
	}
	return out
}

func fullManifest(t *testing.T, dir string) *Manifest {
	t.Helper()
	m := NewManifest(WithPlatform(PlatformC128))
	require.NoError(t, m.SetProgram(dataref.FromPath(writeFile(t, dir, "game.prg", samplePRG(98)))))
	require.NoError(t, m.AddMount(dataref.FromPath(writeFile(t, dir, "disk1.d64", sampleDisk(174848)))))
	require.NoError(t, m.AddMount(dataref.FromBytes(sampleDisk(819200))))
	require.NoError(t, m.SetData(dataref.FromPath(writeFile(t, dir, "extra.dat", sampleDisk(chunk.CopyBufferSize*2+5)))))
	require.NoError(t, m.SetMusic(dataref.FromBytes([]byte("PSID music"))))
	require.NoError(t, m.AddImage(dataref.FromBytes(sampleDisk(10003))))
	require.NoError(t, m.AddImage(dataref.FromBytes(sampleDisk(10001))))
	m.Text.SetString(TextTitle, "Great Giana Sisters")
	m.Text.SetString(TextVersion, "1.1")
	m.Text.SetString(TextNotes, "cracked & trained")
	return m
}

func TestWriteToChunkOrderAndInvariants(t *testing.T) {
	m := fullManifest(t, t.TempDir())

	data, err := BuildBytes(m)
	require.NoError(t, err)

	headers := chunksOf(t, data)
	assert.Equal(t, []string{
		"BACKBIT ", "STARTPRG", "MOUNTD64", "MOUNTD81", "EXTENDED", "INTROSID",
		"INTROKLA", "INTROKLA", "TXTTITLE", "TXTVERSI", "TXTNOTES", "BACKBITS",
	}, tags(headers))

	assert.Equal(t, "C128", headers[0].ParamString())
	content, err := chunk.StripContent(data)
	require.NoError(t, err)
	assert.Equal(t, "VERSION "+Version, string(content))

	assert.Equal(t, uint32(0x08010862), headers[1].Param)
	assert.Equal(t, uint32(98), headers[1].Length)
	assert.Equal(t, uint32(8), headers[2].Param)
	assert.Equal(t, uint32(9), headers[3].Param)
	assert.Equal(t, "DATA", headers[4].ParamString())
	assert.Equal(t, uint32(chunk.CopyBufferSize*2+5), headers[4].Length)
	assert.Equal(t, "ON  ", headers[9].ParamString())
	assert.Equal(t, "BACK", headers[11].ParamString())
	assert.Zero(t, headers[11].Length)
}

func TestWriteToSkipsEmptyText(t *testing.T) {
	m := NewManifest()
	require.NoError(t, m.SetProgram(dataref.FromBytes(samplePRG(1))))
	m.Text.Set(TextTitle, dataref.FromBytes(nil))
	m.Text.SetString(TextManual, "Press fire")

	data, err := BuildBytes(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"BACKBIT ", "STARTPRG", "TXTMANUA", "BACKBITS"}, tags(chunksOf(t, data)))
}

func TestWriteToCartridges(t *testing.T) {
	m := NewManifest()
	require.NoError(t, m.SetCartridge(dataref.FromBytes(make([]byte, 16384+64))))
	data, err := BuildBytes(m)
	require.NoError(t, err)
	headers := chunksOf(t, data)
	assert.Equal(t, chunk.TagCartridge, headers[1].Tag)
	assert.Equal(t, uint32(16384), headers[1].Param)
	assert.Equal(t, uint32(16384+64), headers[1].Length)

	v := NewManifest(WithPlatform(PlatformVIC20))
	require.NoError(t, v.SetVICCartridge(dataref.FromBytes(make([]byte, 8192)), 0xA000))
	data, err = BuildBytes(v)
	require.NoError(t, err)
	headers = chunksOf(t, data)
	assert.Equal(t, "V20 ", headers[0].ParamString())
	assert.Equal(t, chunk.TagVICCartridge, headers[1].Tag)
	assert.Equal(t, uint32(0xA000), headers[1].Param)
}

func TestWriteToExplicitDataLength(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "blob.bin", sampleDisk(1000))

	m := NewManifest()
	require.NoError(t, m.SetData(dataref.FromSpan(path, 0, 600)))
	data, err := BuildBytes(m)
	require.NoError(t, err)

	headers := chunksOf(t, data)
	assert.Equal(t, uint32(600), headers[1].Length)
	assert.Equal(t, sampleDisk(1000)[:600], data[48:648])
}

func TestBuildValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *Manifest)
		want  error
	}{
		{"short program", func(m *Manifest) { m.Program = dataref.FromBytes([]byte{0x01, 0x08}) }, bbterrors.ErrInvalidProgram},
		{"empty program", func(m *Manifest) { m.Program = dataref.FromBytes(nil) }, bbterrors.ErrInvalidProgram},
		{"small cartridge", func(m *Manifest) { m.Cartridge = dataref.FromBytes(make([]byte, 8191)) }, bbterrors.ErrInvalidCartridge},
		{"bad disk", func(m *Manifest) { m.Mounts = append(m.Mounts, dataref.FromBytes(make([]byte, 1000))) }, bbterrors.ErrInvalidDiskImage},
		{"bad vic address", func(m *Manifest) {
			m.VICCartridge = &VICCartridge{Ref: dataref.FromBytes(make([]byte, 8192)), LoadAddress: 0x1234}
		}, bbterrors.ErrInvalidCartridge},
		{"two cartridges", func(m *Manifest) {
			m.Cartridge = dataref.FromBytes(make([]byte, 8192))
			m.VICCartridge = &VICCartridge{Ref: dataref.FromBytes(make([]byte, 8192)), LoadAddress: 0xA000}
		}, bbterrors.ErrCapacity},
		{"missing file", func(m *Manifest) { m.Music = dataref.FromPath("/nonexistent/intro.sid") }, bbterrors.ErrRead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			dest := filepath.Join(dir, "out.bbt")
			m := NewManifest()
			tt.setup(m)

			err := Build(dest, m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "nothing may be written when validation fails")
		})
	}
}

func TestBuildFailureMidWriteKeepsDestination(t *testing.T) {
	dir := t.TempDir()
	dest := writeFile(t, dir, "out.bbt", []byte("previous container"))

	// the span claims more bytes than the file holds, so validation passes and the read fails
	music := writeFile(t, dir, "intro.sid", []byte("short"))
	m := NewManifest()
	require.NoError(t, m.SetProgram(dataref.FromBytes(samplePRG(10))))
	require.NoError(t, m.SetMusic(dataref.FromSpan(music, 0, 4096)))

	err := Build(dest, m)
	require.Error(t, err)
	assert.True(t, bbterrors.IsIOError(err))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "previous container", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary file must be cleaned up")
}

func TestBuildWritesFile(t *testing.T) {
	dir := t.TempDir()
	m := fullManifest(t, dir)
	dest := filepath.Join(dir, "out", "game.bbt")

	require.NoError(t, Build(dest, m, WithToolVersion("1.2.3")))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	chunksOf(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("BACKBIT C128")))
	assert.Contains(t, string(data[:32]), "VERSION 1.2.3")
}

func TestBuildRejectsMisalignedPreRenderedChunk(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "x.bbt", make([]byte, 64))

	tests := []struct {
		name string
		set  func(m *Manifest)
	}{
		{"program", func(m *Manifest) { m.Program = dataref.FromSpan(path, 16, 20) }},
		{"cartridge", func(m *Manifest) { m.Cartridge = dataref.FromSpan(path, 16, 20) }},
		{"vic cartridge", func(m *Manifest) {
			m.VICCartridge = &VICCartridge{Ref: dataref.FromSpan(path, 16, 20), LoadAddress: 0xA000}
		}},
		{"mount", func(m *Manifest) { m.Mounts = []dataref.Reference{dataref.FromSpan(path, 16, 5)} }},
		{"data", func(m *Manifest) { m.Data = dataref.FromSpan(path, 16, 20) }},
		{"music", func(m *Manifest) { m.Music = dataref.FromSpan(path, 16, 20) }},
		{"image", func(m *Manifest) { m.Images = []dataref.Reference{dataref.FromSpan(path, 16, 8)} }},
		{"text", func(m *Manifest) { m.Text.Set(TextTitle, dataref.FromSpan(path, 16, 20)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManifest()
			tt.set(m)
			var buf bytes.Buffer
			_, err := WriteTo(&buf, m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, bbterrors.ErrCorruptContainer), "got %v", err)
			assert.Zero(t, buf.Len())
		})
	}
}

func TestWriteToCopiesAlignedPreRenderedChunks(t *testing.T) {
	dir := t.TempDir()
	src := newRawContainer(t, "C64 ").
		add(chunk.TagProgram, ProgramParam(0x0801, 3), []byte{1, 2, 3}).
		add(chunk.TagCartridge, 8192, make([]byte, 8192)).
		add(chunk.MountTag("D64"), 8, sampleDisk(174848)).
		footer().
		save(dir)

	m := NewManifest()
	m.Program = dataref.FromSpan(src, 32, 32)
	m.Cartridge = dataref.FromSpan(src, 64, 16+8192)
	m.Mounts = []dataref.Reference{dataref.FromSpan(src, 64+16+8192, 16+174848)}

	data, err := BuildBytes(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"BACKBIT ", "STARTPRG", "MOUNTCRT", "MOUNTD64", "BACKBITS"}, tags(chunksOf(t, data)))
}

func TestWriteToSkipsEmptyPreRenderedText(t *testing.T) {
	titleTag, titleParam := chunk.SplitID(chunk.TextTitle)
	categoryTag, categoryParam := chunk.SplitID(chunk.TextCategory)

	dir := t.TempDir()
	src := newRawContainer(t, "C64 ").
		add(titleTag, titleParam, nil).
		add(categoryTag, categoryParam, []byte("Game")).
		footer().
		save(dir)

	parsed, err := Parse(src)
	require.NoError(t, err)
	require.NotNil(t, parsed.Text.Get(TextTitle))

	data, err := BuildBytes(parsed)
	require.NoError(t, err)
	assert.Equal(t, []string{"BACKBIT ", "TXTCATEG", "BACKBITS"}, tags(chunksOf(t, data)))
}
