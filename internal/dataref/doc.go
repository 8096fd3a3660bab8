// Package dataref implements lazy references to byte spans used when composing and
// reading BBT containers.
//
// A Reference is either a FileSpan, a window into a file on disk, or Memory, an owned
// byte slice. A FileSpan whose offset is greater than zero points at a chunk inside an
// existing container and therefore already carries its 16 byte chunk header and
// padding. Everything else is raw content and needs a header when it is written.
//
// References never cache. Resolve reads the span every time it is called, so memory use
// stays bounded by whatever the caller holds on to.
package dataref
