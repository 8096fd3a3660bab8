package bbt

import (
	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
)

// Policy holds the optional validation rules applied by Build.
type Policy struct {
	// ExclusiveCartridge rejects a cartridge of either kind combined with a program,
	// disk images or extended data. Earlier tool releases enforced this; current
	// releases do not, so it is off by default.
	ExclusiveCartridge bool
}

// DefaultPolicy is the permissive policy.
var DefaultPolicy = Policy{}

func (p Policy) check(m *Manifest) error {
	if !p.ExclusiveCartridge || !m.HasCartridge() {
		return nil
	}
	if m.Program != nil || len(m.Mounts) > 0 || m.Data != nil {
		return bbterrors.New(bbterrors.ErrCartridgeConflict, "build", "cartridge", "")
	}
	return nil
}
