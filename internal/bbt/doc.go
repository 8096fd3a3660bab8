// Package bbt builds, parses and extracts BackBit (BBT) containers.
//
// A container is a sequence of 16 byte aligned chunks (see package chunk). It always
// starts with a "BACKBIT " header chunk naming the target platform and the tool version,
// and ends with a "BACKBITS" footer chunk. In between, in this order, come an optional
// autostart program, an optional cartridge (plain or VIC-20), up to eight disk images,
// an optional extended data blob, optional intro music, up to ten intro images and any
// non-empty text fields.
//
// A Manifest describes the contents. Build validates a manifest and writes it to disk
// through a temporary file that is renamed into place once every chunk is written. Parse
// walks a container and returns a Manifest whose slots reference chunks inside the
// container; those references are pre-rendered and are copied verbatim when the
// manifest is built again. Extract writes the known chunks back out as standalone files.
package bbt
