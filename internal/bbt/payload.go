package bbt

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-backbit/internal/bbt/chunk"
	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
)

// CartridgeBank is the granularity of cartridge sizes.
const CartridgeBank = 8192

// diskSizes maps every accepted disk image length to its type. The second size of each
// pair is the image with an error info block appended.
var diskSizes = map[int64]string{
	174848:  "D64",
	175531:  "D64",
	349696:  "D71",
	351062:  "D71",
	819200:  "D81",
	822400:  "D81",
	1376256: "D8B",
	1381632: "D8B",
}

// ClassifyDisk returns the disk type ("D64", "D71", "D81" or "D8B") for an image of n bytes.
func ClassifyDisk(n int64) (string, error) {
	if t, ok := diskSizes[n]; ok {
		return t, nil
	}
	return "", bbterrors.Newf(bbterrors.ErrInvalidDiskImage, "classify disk", "", "%d bytes is not a D64, D71, D81 or D8B image", n)
}

// ProgramParam packs a load address and the payload length (without the two address
// bytes) into a STARTPRG parameter. The end address is inclusive and is left out when
// the program runs past the top of memory.
func ProgramParam(loadAddr uint16, payloadLen int64) uint32 {
	param := uint32(loadAddr) << 16
	end := int64(loadAddr) + payloadLen - 1
	if end < 65536 {
		param |= uint32(end)
	}
	return param
}

// ProgramAddresses unpacks a STARTPRG parameter. end is zero when it was omitted.
func ProgramAddresses(param uint32) (load, end uint16) {
	return uint16(param >> 16), uint16(param)
}

// splitProgram separates the little-endian load address from a standalone PRG.
func splitProgram(prg []byte) (uint16, []byte, error) {
	if len(prg) <= 2 {
		return 0, nil, bbterrors.Newf(bbterrors.ErrInvalidProgram, "build", "program", "%d bytes, need a load address and at least one byte", len(prg))
	}
	return binary.LittleEndian.Uint16(prg[:2]), prg[2:], nil
}

// joinProgram rebuilds a standalone PRG from a load address and payload.
func joinProgram(load uint16, payload []byte) []byte {
	prg := make([]byte, 2+len(payload))
	binary.LittleEndian.PutUint16(prg, load)
	copy(prg[2:], payload)
	return prg
}

// CartridgeParam returns the MOUNTCRT parameter: the image size rounded down to a
// whole number of 8K banks.
func CartridgeParam(n int64) (uint32, error) {
	if n < CartridgeBank {
		return 0, bbterrors.Newf(bbterrors.ErrInvalidCartridge, "build", "cartridge", "%d bytes, need at least %d", n, CartridgeBank)
	}
	if n > chunk.MaxContentLen {
		return 0, bbterrors.Newf(bbterrors.ErrInvalidCartridge, "build", "cartridge", "%d bytes is too large", n)
	}
	return uint32(n / CartridgeBank * CartridgeBank), nil
}

// vicExtensions maps VIC-20 cartridge file extensions to load addresses.
var vicExtensions = map[string]uint16{
	"20": 0x2000,
	"40": 0x4000,
	"60": 0x6000,
	"70": 0x7000,
	"a0": 0xA000,
	"b0": 0xB000,
}

// VICLoadAddress returns the load address implied by a VIC-20 cartridge file extension.
func VICLoadAddress(ext string) (uint16, bool) {
	addr, ok := vicExtensions[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return addr, ok
}

// VICExtension returns the file extension for a MOUNTV20 parameter: the hex digits of
// the parameter's third byte.
func VICExtension(param uint32) string {
	return fmt.Sprintf("%02x", byte(param>>8))
}

func checkVICLoadAddress(addr uint16) error {
	if addr == 0 || addr&0xFF != 0 {
		return bbterrors.Newf(bbterrors.ErrInvalidCartridge, "build", "vic cartridge", "load address $%04X", addr)
	}
	return nil
}
