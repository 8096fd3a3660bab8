package bbt

import (
	"strings"

	"github.com/deploymenttheory/go-backbit/internal/bbt/chunk"
	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
)

// Platform is the machine a container targets.
type Platform string

const (
	PlatformC64   Platform = "c64"
	PlatformC128  Platform = "c128"
	PlatformVIC20 Platform = "v20"
	PlatformPlus4 Platform = "pls4"

	// DefaultPlatform is used when a manifest does not name one.
	DefaultPlatform = PlatformC64
)

var platformParams = map[Platform]string{
	PlatformC64:   "C64 ",
	PlatformC128:  "C128",
	PlatformVIC20: "V20 ",
	PlatformPlus4: "PLS4",
}

// ParsePlatform parses a platform name such as "c64" or "C128".
func ParsePlatform(name string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(name)))
	if p == "" {
		return DefaultPlatform, nil
	}
	if _, ok := platformParams[p]; !ok {
		return "", bbterrors.New(bbterrors.ErrInvalidPlatform, "parse platform", name, "expected one of c64, c128, v20, pls4")
	}
	return p, nil
}

// PlatformFromParam decodes the parameter of a header chunk.
func PlatformFromParam(param uint32) (Platform, error) {
	s := chunk.ParamString(param)
	for p, tag := range platformParams {
		if tag == s {
			return p, nil
		}
	}
	return "", bbterrors.Newf(bbterrors.ErrInvalidPlatform, "parse", "", "platform parameter %q", s)
}

// Param returns the header chunk parameter for the platform.
func (p Platform) Param() (uint32, error) {
	tag, ok := platformParams[p]
	if !ok {
		return 0, bbterrors.New(bbterrors.ErrInvalidPlatform, "build", string(p), "")
	}
	return chunk.ParamFromString(tag), nil
}

func (p Platform) String() string {
	return string(p)
}
