package chunk

import "strings"

// Kind is the closed set of chunk types a reader understands.
type Kind int

const (
	KindUnknown Kind = iota
	KindHeader
	KindProgram
	KindCartridge
	KindVICCartridge
	KindMount
	KindSave
	KindExtendedData
	KindMusic
	KindImage
	KindText
	KindFooter
)

// Wire tags.
const (
	TagHeader       = "BACKBIT "
	TagFooter       = "BACKBITS"
	TagProgram      = "STARTPRG"
	TagCartridge    = "MOUNTCRT"
	TagVICCartridge = "MOUNTV20"
	TagExtendedData = "EXTENDED"
	TagMusic        = "INTROSID"
	TagImage        = "INTROKLA"

	MountPrefix = "MOUNT"
	SavePrefix  = "SAVES"
)

// Fixed parameters.
const (
	FooterParam       = "BACK"
	ExtendedDataParam = "DATA"
)

// DiskTypes lists the disk image suffixes used by MOUNT and SAVES chunks.
var DiskTypes = []string{"D64", "D71", "D81", "D8B"}

// Text identifiers. The first TagLen characters are the wire tag, the rest (if any)
// become the parameter.
const (
	TextTitle     = "TXTTITLE"
	TextVersion   = "TXTVERSION"
	TextCopyright = "TXTCOPYRIGHT"
	TextCategory  = "TXTCATEGORY"
	TextControl   = "TXTCONTROL"
	TextNotes     = "TXTNOTES"
	TextManual    = "TXTMANUAL"
)

// TextIDs lists the text identifiers in emission order.
var TextIDs = []string{TextTitle, TextVersion, TextCopyright, TextCategory, TextControl, TextNotes, TextManual}

var kindsByTag = map[string]Kind{
	TagHeader:       KindHeader,
	TagFooter:       KindFooter,
	TagProgram:      KindProgram,
	TagCartridge:    KindCartridge,
	TagVICCartridge: KindVICCartridge,
	TagExtendedData: KindExtendedData,
	TagMusic:        KindMusic,
	TagImage:        KindImage,
}

func init() {
	for _, d := range DiskTypes {
		kindsByTag[MountPrefix+d] = KindMount
		kindsByTag[SavePrefix+d] = KindSave
	}
	for _, id := range TextIDs {
		tag, _ := SplitID(id)
		kindsByTag[tag] = KindText
	}
}

// Classify maps a wire tag to its Kind. Unrecognized tags map to KindUnknown.
func Classify(tag string) Kind {
	if k, ok := kindsByTag[FormatTag(tag)]; ok {
		return k
	}
	return KindUnknown
}

// SplitID splits an identifier of up to 12 characters into its wire tag and parameter.
func SplitID(id string) (tag string, param uint32) {
	if len(id) <= TagLen {
		return FormatTag(id), ParamFromString("")
	}
	return id[:TagLen], ParamFromString(id[TagLen:])
}

// MountTag returns the MOUNT tag for a disk type such as "D64".
func MountTag(diskType string) string {
	return MountPrefix + strings.ToUpper(diskType)
}

// DiskType returns the disk suffix of a MOUNT or SAVES tag.
func DiskType(tag string) string {
	tag = FormatTag(tag)
	switch {
	case strings.HasPrefix(tag, MountPrefix):
		return tag[len(MountPrefix):]
	case strings.HasPrefix(tag, SavePrefix):
		return tag[len(SavePrefix):]
	}
	return ""
}

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindProgram:
		return "program"
	case KindCartridge:
		return "cartridge"
	case KindVICCartridge:
		return "vic-cartridge"
	case KindMount:
		return "mount"
	case KindSave:
		return "save"
	case KindExtendedData:
		return "extended-data"
	case KindMusic:
		return "music"
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindFooter:
		return "footer"
	default:
		return "unknown"
	}
}
