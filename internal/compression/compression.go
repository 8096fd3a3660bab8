// Package compression decompresses gzip, xz and bzip2 wrapped input files so they can be
// packed like their uncompressed originals.
package compression

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/deploymenttheory/go-backbit/internal/fsutil"
	"github.com/dsnet/compress/bzip2"
	"github.com/ulikunitz/xz"
)

// Format identifies a compression wrapper
type Format string

const (
	None  Format = ""
	GZIP  Format = "gz"
	XZ    Format = "xz"
	BZIP2 Format = "bz2"
)

var formatsByExtension = map[string]Format{
	"gz":   GZIP,
	"gzip": GZIP,
	"xz":   XZ,
	"bz2":  BZIP2,
}

// DetectFormat returns the compression format implied by the file extension
func DetectFormat(path string) Format {
	return formatsByExtension[fsutil.GetExtension(path)]
}

// IsCompressed reports whether path names a compressed file
func IsCompressed(path string) bool {
	return DetectFormat(path) != None
}

// InnerName returns path without its compression extension, so "game.d64.gz" becomes
// "game.d64". Uncompressed paths are returned unchanged.
func InnerName(path string) string {
	if !IsCompressed(path) {
		return path
	}
	return fsutil.TrimExtension(path)
}

// NewReader wraps r with a decompressor for format
func NewReader(format Format, r io.Reader) (io.ReadCloser, error) {
	switch format {
	case GZIP:
		return gzip.NewReader(r)
	case XZ:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xzReader), nil
	case BZIP2:
		return bzip2.NewReader(r, nil)
	case None:
		return io.NopCloser(r), nil
	default:
		return nil, fmt.Errorf("unsupported compression format %q", format)
	}
}

// NewWriter wraps w with a compressor for format
func NewWriter(format Format, w io.Writer) (io.WriteCloser, error) {
	switch format {
	case GZIP:
		return gzip.NewWriter(w), nil
	case XZ:
		return xz.NewWriter(w)
	case BZIP2:
		return bzip2.NewWriter(w, nil)
	default:
		return nil, fmt.Errorf("unsupported compression format %q", format)
	}
}

// ReadFile returns the decompressed content of path. The format is taken from the
// extension; an uncompressed file is read as is.
func ReadFile(path string) ([]byte, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer inputFile.Close()

	reader, err := NewReader(DetectFormat(path), inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	return data, nil
}

// CompressFile compresses src into dst; the format is taken from the extension of dst
func CompressFile(src, dst string) error {
	format := DetectFormat(dst)
	if format == None {
		return fmt.Errorf("no compression format for %s", dst)
	}

	inputFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer inputFile.Close()

	return fsutil.WriteFileAtomic(dst, 0644, func(f *os.File) error {
		writer, err := NewWriter(format, f)
		if err != nil {
			return err
		}
		if _, err := io.Copy(writer, inputFile); err != nil {
			writer.Close()
			return fmt.Errorf("failed to compress file: %w", err)
		}
		return writer.Close()
	})
}

