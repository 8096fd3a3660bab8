package description

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
	"github.com/deploymenttheory/go-backbit/internal/fsutil"
	"gopkg.in/yaml.v3"
	"howett.net/plist"
)

// Format is a serialization format for descriptions and reports
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatPlist Format = "plist"
)

// Formats lists the supported formats
var Formats = []Format{FormatYAML, FormatJSON, FormatPlist}

// ParseFormat parses a format name; "yml" is accepted for YAML
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "plist", "xml":
		return FormatPlist, nil
	}
	return "", bbterrors.New(bbterrors.ErrInvalidArgument, "parse format", name, "expected yaml, json or plist")
}

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(fsutil.GetExtension(path))
}

// Marshal encodes v in the given format
func Marshal(format Format, v interface{}) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatPlist:
		return plist.MarshalIndent(v, plist.XMLFormat, "\t")
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Unmarshal decodes data in the given format into v
func Unmarshal(format Format, data []byte, v interface{}) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatPlist:
		_, err := plist.Unmarshal(data, v)
		return err
	}
	return fmt.Errorf("unsupported format %q", format)
}

// ReadFile decodes the file at path into v, choosing the format from the extension
func ReadFile(path string, v interface{}) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return bbterrors.New(bbterrors.ErrRead, "read description", path, err.Error())
	}
	if err := Unmarshal(format, data, v); err != nil {
		return bbterrors.New(bbterrors.ErrInvalidArgument, "read description", path, err.Error())
	}
	return nil
}

// WriteFile encodes v to path, choosing the format from the extension
func WriteFile(path string, v interface{}) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(format, v)
	if err != nil {
		return bbterrors.New(bbterrors.ErrInvalidArgument, "write description", path, err.Error())
	}
	return fsutil.WriteFileAtomic(path, 0644, func(f *os.File) error {
		if _, err := f.Write(data); err != nil {
			return bbterrors.New(bbterrors.ErrWrite, "write description", path, err.Error())
		}
		return nil
	})
}
