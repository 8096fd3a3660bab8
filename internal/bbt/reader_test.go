package bbt

import (
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

func TestParseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	prg := samplePRG(98)
	disk := sampleDisk(174848)

	m := NewManifest(WithPlatform(PlatformC128))
	require.NoError(t, m.SetProgram(dataref.FromBytes(prg)))
	require.NoError(t, m.AddMount(dataref.FromBytes(disk)))
	m.Text.SetString(TextTitle, "Maniac Mansion")
	m.Text.SetString(TextNotes, "side A")

	path := filepath.Join(dir, "game.bbt")
	require.NoError(t, Build(path, m))

	parsed, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, PlatformC128, parsed.Platform)
	assert.Equal(t, Version, parsed.Version)
	assert.False(t, parsed.Truncated)

	require.NotNil(t, parsed.Program)
	assert.True(t, parsed.Program.PreRendered())
	got, err := ProgramOf(parsed.Program)
	require.NoError(t, err)
	assert.Equal(t, prg, got)

	require.Len(t, parsed.Mounts, 1)
	got, err = ContentOf(parsed.Mounts[0])
	require.NoError(t, err)
	assert.Equal(t, disk, got)

	got, err = ContentOf(parsed.Text.Get(TextTitle))
	require.NoError(t, err)
	assert.Equal(t, "Maniac Mansion", string(got))
	assert.Nil(t, parsed.Text.Get(TextManual))

	original, err := os.ReadFile(path)
	require.NoError(t, err)
	rebuilt, err := BuildBytes(parsed)
	require.NoError(t, err)
	assert.Equal(t, original, rebuilt, "a parsed container must rebuild byte for byte")
}

func TestParseReordersAndAppends(t *testing.T) {
	dir := t.TempDir()
	src := newRawContainer(t, "C64 ").
		add(chunk.TagMusic, 0, []byte("PSID")).
		add(chunk.TagProgram, ProgramParam(0x0801, 3), []byte{1, 2, 3}).
		footer().
		save(dir)

	m, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, "9.9.9", m.Version)
	m.Text.SetString(TextCategory, "Demo")

	data, err := BuildBytes(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"BACKBIT ", "STARTPRG", "INTROSID", "TXTCATEG", "BACKBITS"}, tags(chunksOf(t, data)))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T, dir string) string
		want  error
	}{
		{
			name: "empty file",
			build: func(t *testing.T, dir string) string {
				return writeFile(t, dir, "empty.bbt", nil)
			},
			want: bbterrors.ErrInvalidHeader,
		},
		{
			name: "wrong magic",
			build: func(t *testing.T, dir string) string {
				return writeFile(t, dir, "game.prg", append([]byte("NOTBBT  C64 "), make([]byte, 20)...))
			},
			want: bbterrors.ErrInvalidHeader,
		},
		{
			name: "short header",
			build: func(t *testing.T, dir string) string {
				return writeFile(t, dir, "short.bbt", []byte("BACKBIT C6"))
			},
			want: bbterrors.ErrInvalidHeader,
		},
		{
			name: "invalid platform",
			build: func(t *testing.T, dir string) string {
				return newRawContainer(t, "ZX81").footer().save(dir)
			},
			want: bbterrors.ErrInvalidPlatform,
		},
		{
			name: "unknown chunk",
			build: func(t *testing.T, dir string) string {
				return newRawContainer(t, "C64 ").add("MYSTERY!", 0, []byte{1}).footer().save(dir)
			},
			want: bbterrors.ErrUnknownChunkType,
		},
		{
			name: "zero tag",
			build: func(t *testing.T, dir string) string {
				r := newRawContainer(t, "C64 ")
				r.buf.Write(make([]byte, 32))
				return r.save(dir)
			},
			want: bbterrors.ErrCorruptContainer,
		},
		{
			name: "partial chunk header",
			build: func(t *testing.T, dir string) string {
				r := newRawContainer(t, "C64 ")
				r.buf.WriteString("STARTPRG")
				return r.save(dir)
			},
			want: bbterrors.ErrCorruptContainer,
		},
		{
			name: "second header chunk",
			build: func(t *testing.T, dir string) string {
				return newRawContainer(t, "C64 ").
					add(chunk.TagHeader, chunk.ParamFromString("V20 "), []byte("VERSION 0")).
					footer().
					save(dir)
			},
			want: bbterrors.ErrUnknownChunkType,
		},
		{
			name: "chunk longer than file",
			build: func(t *testing.T, dir string) string {
				r := newRawContainer(t, "C64 ")
				h := chunk.NewHeader(chunk.TagMusic, 0, 4096).Encode()
				r.buf.Write(h[:])
				return r.save(dir)
			},
			want: bbterrors.ErrCorruptContainer,
		},
		{
			name: "content cut short",
			build: func(t *testing.T, dir string) string {
				r := newRawContainer(t, "C64 ").add(chunk.TagMusic, 0, make([]byte, 100))
				r.buf.Truncate(r.buf.Len() - 32)
				return r.save(dir)
			},
			want: bbterrors.ErrCorruptContainer,
		},
		{
			name: "missing file",
			build: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "nothing.bbt")
			},
			want: bbterrors.ErrRead,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.build(t, t.TempDir()))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseSkipsSaveSlots(t *testing.T) {
	dir := t.TempDir()
	path := newRawContainer(t, "PLS4").
		add(chunk.SavePrefix+"D64", 8, sampleDisk(64)).
		add(chunk.MountTag("D64"), 8, sampleDisk(174848)).
		footer().
		save(dir)

	m, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, PlatformPlus4, m.Platform)
	assert.Len(t, m.Mounts, 1)
}

func TestParseTruncated(t *testing.T) {
	dir := t.TempDir()
	path := newRawContainer(t, "V20 ").
		add(chunk.TagVICCartridge, 0xA000, make([]byte, 8192)).
		save(dir)

	m, err := Parse(path)
	require.NoError(t, err)
	assert.True(t, m.Truncated)
	require.NotNil(t, m.VICCartridge)
	assert.Equal(t, uint16(0xA000), m.VICCartridge.LoadAddress)
}

func TestWalkListsChunks(t *testing.T) {
	dir := t.TempDir()
	path := newRawContainer(t, "C64 ").
		add(chunk.TagImage, 0, make([]byte, 10001)).
		footer().
		save(dir)

	var seen []ChunkInfo
	footer, err := Walk(path, func(c ChunkInfo) error {
		seen = append(seen, c)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, footer)
	require.Len(t, seen, 3)

	assert.Equal(t, chunk.KindImage, seen[1].Kind)
	assert.Equal(t, int64(32), seen[1].Offset)
	assert.Equal(t, int64(16+10016), seen[1].Ref.Length)
	assert.Equal(t, int64(32+16+10016), seen[2].Offset)
}

func TestWalkStopsOnCallbackError(t *testing.T) {
	dir := t.TempDir()
	path := newRawContainer(t, "C64 ").footer().save(dir)

	stop := errors.New("stop")
	_, err := Walk(path, func(c ChunkInfo) error { return stop })
	assert.Equal(t, stop, err)
}

func TestContentOfRawReference(t *testing.T) {
	got, err := ContentOf(dataref.FromString("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", string(got))

	_, err = HeaderOf(dataref.FromString("plain"))
	assert.True(t, errors.Is(err, bbterrors.ErrInvalidArgument))
}

func TestHeaderInfo(t *testing.T) {
	dir := t.TempDir()
	path := newRawContainer(t, "PLS4").footer().save(dir)

	var header ChunkInfo
	_, err := Walk(path, func(c ChunkInfo) error {
		if c.Kind == chunk.KindHeader {
			header = c
		}
		return nil
	})
	require.NoError(t, err)

	p, v, err := HeaderInfo(header)
	require.NoError(t, err)
	assert.Equal(t, PlatformPlus4, p)
	assert.Equal(t, "9.9.9", v)

	header.Header.Param = chunk.ParamFromString("ZX81")
	_, _, err = HeaderInfo(header)
	assert.True(t, errors.Is(err, bbterrors.ErrInvalidPlatform))
}
