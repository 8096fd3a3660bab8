package bbt

import (
	"strings"

	"github.com/deploymenttheory/go-backbit/internal/bbt/chunk"
	"github.com/deploymenttheory/go-backbit/internal/dataref"
	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
)

// TextField names one of the UTF-8 metadata fields.
type TextField int

const (
	TextTitle TextField = iota
	TextVersion
	TextCopyright
	TextCategory
	TextController
	TextNotes
	TextManual
	textFieldCount
)

var textFieldNames = [textFieldCount]string{"title", "version", "copyright", "category", "controller", "notes", "manual"}

// textFieldIDs is index-aligned with TextField.
var textFieldIDs = [textFieldCount]string{
	chunk.TextTitle, chunk.TextVersion, chunk.TextCopyright, chunk.TextCategory,
	chunk.TextControl, chunk.TextNotes, chunk.TextManual,
}

// TextFieldNames lists the field names in emission order.
func TextFieldNames() []string {
	return textFieldNames[:]
}

// ParseTextField looks up a field by name ("title", "notes", ...).
func ParseTextField(name string) (TextField, error) {
	name = strings.ToLower(name)
	if name == "release" {
		return TextNotes, nil
	}
	for i, n := range textFieldNames {
		if n == name {
			return TextField(i), nil
		}
	}
	return 0, bbterrors.New(bbterrors.ErrInvalidArgument, "parse text field", name, "")
}

func (f TextField) String() string {
	if f < 0 || f >= textFieldCount {
		return "unknown"
	}
	return textFieldNames[f]
}

// ID returns the 12 character wire identifier of the field.
func (f TextField) ID() string {
	return textFieldIDs[f]
}

// textFieldForTag maps a wire tag back to its field.
func textFieldForTag(tag string) (TextField, bool) {
	for i, id := range textFieldIDs {
		t, _ := chunk.SplitID(id)
		if t == tag {
			return TextField(i), true
		}
	}
	return 0, false
}

// TextFields holds the optional UTF-8 metadata of a container.
type TextFields struct {
	Title      dataref.Reference
	Version    dataref.Reference
	Copyright  dataref.Reference
	Category   dataref.Reference
	Controller dataref.Reference
	Notes      dataref.Reference
	Manual     dataref.Reference
}

func (t *TextFields) slot(f TextField) *dataref.Reference {
	switch f {
	case TextTitle:
		return &t.Title
	case TextVersion:
		return &t.Version
	case TextCopyright:
		return &t.Copyright
	case TextCategory:
		return &t.Category
	case TextController:
		return &t.Controller
	case TextNotes:
		return &t.Notes
	case TextManual:
		return &t.Manual
	}
	return nil
}

// Get returns the reference stored for f, or nil.
func (t *TextFields) Get(f TextField) dataref.Reference {
	if s := t.slot(f); s != nil {
		return *s
	}
	return nil
}

// Set stores ref for f. A nil ref clears the field.
func (t *TextFields) Set(f TextField, ref dataref.Reference) {
	if s := t.slot(f); s != nil {
		*s = ref
	}
}

// SetString stores s as a memory-backed reference; an empty s clears the field.
func (t *TextFields) SetString(f TextField, s string) {
	if s == "" {
		t.Set(f, nil)
		return
	}
	t.Set(f, dataref.FromString(s))
}
