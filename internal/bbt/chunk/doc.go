// Package chunk implements the BBT chunk codec.
//
// Every chunk starts with a 16 byte header:
//
//	[8 byte type tag] [4 byte parameter] [4 byte content length]
//
// The tag is ASCII padded with spaces. The parameter and the content length are
// big-endian so the layout reads naturally in a hex editor. Content follows the header
// and is zero-padded to the next multiple of 16, so every header starts at an offset
// divisible by 16. The content length never includes the header or the padding.
//
// Chunk types without a parameter may extend their identifier into the parameter field;
// "EXTENDEDDATA" is the tag "EXTENDED" with the parameter "DATA".
package chunk
