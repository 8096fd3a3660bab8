package bbt

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/deploymenttheory/go-backbit/internal/bbt/chunk"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// samplePRG returns a standalone program loading at $0801 with n bytes after the address.
func samplePRG(n int) []byte {
	prg := []byte{0x01, 0x08}
	for i := 0; i < n; i++ {
		prg = append(prg, byte(i))
	}
	return prg
}

func sampleDisk(n int) []byte {
	disk := make([]byte, n)
	for i := range disk {
		disk[i] = byte(i * 7)
	}
	return disk
}

// rawContainer assembles a container chunk by chunk, bypassing the writer.
type rawContainer struct {
	t   *testing.T
	buf bytes.Buffer
}

func newRawContainer(t *testing.T, platform string) *rawContainer {
	r := &rawContainer{t: t}
	r.add(chunk.TagHeader, chunk.ParamFromString(platform), []byte("VERSION 9.9.9"))
	return r
}

func (r *rawContainer) add(tag string, param uint32, content []byte) *rawContainer {
	require.NoError(r.t, chunk.Write(&r.buf, tag, param, content))
	return r
}

func (r *rawContainer) footer() *rawContainer {
	return r.add(chunk.TagFooter, chunk.ParamFromString(chunk.FooterParam), nil)
}

func (r *rawContainer) save(dir string) string {
	return writeFile(r.t, dir, "raw.bbt", r.buf.Bytes())
}
