package bbt

// Version is the tool version written into the header chunk of every container.
const Version = "0.1.0"

// VersionPrefix precedes the version in the header chunk content.
const VersionPrefix = "VERSION "
