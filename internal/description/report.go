package description

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/deploymenttheory/go-backbit/internal/bbt"
	"github.com/deploymenttheory/go-backbit/internal/bbt/chunk"
	"github.com/deploymenttheory/go-backbit/internal/cryptoutil"
	"github.com/deploymenttheory/go-backbit/internal/dataref"
	"github.com/dustin/go-humanize"
)

// Report lists the chunks of a container
type Report struct {
	Path      string        `yaml:"path" json:"path" plist:"path"`
	Platform  string        `yaml:"platform" json:"platform" plist:"platform"`
	Version   string        `yaml:"version,omitempty" json:"version,omitempty" plist:"version,omitempty"`
	Size      int64         `yaml:"size" json:"size" plist:"size"`
	Truncated bool          `yaml:"truncated,omitempty" json:"truncated,omitempty" plist:"truncated,omitempty"`
	Chunks    []ChunkReport `yaml:"chunks" json:"chunks" plist:"chunks"`
}

// ChunkReport describes one chunk
type ChunkReport struct {
	Offset int64  `yaml:"offset" json:"offset" plist:"offset"`
	Tag    string `yaml:"tag" json:"tag" plist:"tag"`
	Kind   string `yaml:"kind" json:"kind" plist:"kind"`
	Param  string `yaml:"param" json:"param" plist:"param"`
	Length uint32 `yaml:"length" json:"length" plist:"length"`
	Detail string `yaml:"detail,omitempty" json:"detail,omitempty" plist:"detail,omitempty"`
	Digest string `yaml:"digest,omitempty" json:"digest,omitempty" plist:"digest,omitempty"`
}

// Inspect walks the container at path and reports every chunk. When hasher is set, each
// chunk's content is digested.
func Inspect(path string, hasher cryptoutil.Hasher) (*Report, error) {
	r := &Report{Path: path}

	footer, err := bbt.Walk(path, func(c bbt.ChunkInfo) error {
		cr := ChunkReport{
			Offset: c.Offset,
			Tag:    c.Header.Tag,
			Kind:   c.Kind.String(),
			Param:  fmt.Sprintf("%08X", c.Header.Param),
			Length: c.Header.Length,
		}

		detail, err := describeChunk(c, r)
		if err != nil {
			return err
		}
		cr.Detail = detail

		if hasher != nil && c.Kind != chunk.KindFooter {
			content := dataref.FromSpan(path, c.Offset+chunk.HeaderLen, int64(c.Header.Length))
			rc, err := content.Open()
			if err != nil {
				return err
			}
			digest, err := hasher.HashReader(rc)
			rc.Close()
			if err != nil {
				return err
			}
			cr.Digest = cryptoutil.Format(hasher.Algorithm(), digest)
		}

		r.Chunks = append(r.Chunks, cr)
		r.Size = c.Offset + c.Header.ChunkLen()
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Truncated = !footer
	return r, nil
}

func describeChunk(c bbt.ChunkInfo, r *Report) (string, error) {
	h := c.Header
	switch c.Kind {
	case chunk.KindHeader:
		p, v, err := bbt.HeaderInfo(c)
		if err != nil {
			return "", err
		}
		r.Platform = p.String()
		r.Version = v
		return "platform " + h.ParamString(), nil
	case chunk.KindProgram:
		load, end := bbt.ProgramAddresses(h.Param)
		if end == 0 {
			return fmt.Sprintf("load $%04X", load), nil
		}
		return fmt.Sprintf("load $%04X-$%04X", load, end), nil
	case chunk.KindCartridge:
		return fmt.Sprintf("%d banks", h.Param/bbt.CartridgeBank), nil
	case chunk.KindVICCartridge:
		return fmt.Sprintf("load $%04X", h.Param), nil
	case chunk.KindMount, chunk.KindSave:
		return fmt.Sprintf("device %d, %s", h.Param, chunk.DiskType(h.Tag)), nil
	case chunk.KindText:
		content, err := bbt.ContentOf(c.Ref)
		if err != nil {
			return "", err
		}
		return string(content), nil
	}
	return "", nil
}

// WriteText prints the report as an aligned table
func (r *Report) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "%s: %s container, %s", r.Path, r.Platform, humanize.Bytes(uint64(r.Size)))
	if r.Version != "" {
		fmt.Fprintf(w, ", written by version %s", r.Version)
	}
	fmt.Fprintln(w)
	if r.Truncated {
		fmt.Fprintln(w, "warning: no footer chunk, the container may be truncated")
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "OFFSET\tTAG\tPARAM\tSIZE\tDETAIL")
	for _, c := range r.Chunks {
		detail := c.Detail
		if c.Kind == chunk.KindText.String() {
			detail = quoteText(detail)
		}
		if c.Digest != "" {
			detail = strings.TrimSpace(detail + " " + c.Digest)
		}
		fmt.Fprintf(tw, "%08X\t%s\t%s\t%s\t%s\n", c.Offset, c.Tag, c.Param, humanize.Bytes(uint64(c.Length)), detail)
	}
	return tw.Flush()
}

// quoteText shortens text fields to one line
func quoteText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) > 48 {
		s = string([]rune(s)[:47]) + "…"
	}
	return fmt.Sprintf("%q", s)
}
