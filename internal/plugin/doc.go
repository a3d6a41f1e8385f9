// Package plugin decodes and encodes the chunked TES4 plugin format used by
// the Creation Engine family of games.
//
// A plugin starts with a TES4 header record whose subrecords carry the format
// version, author, description, master list and override form ids. Top-level
// groups follow, each framing records that share a label. Only record types
// with a registered RecordCodec are materialized; every other group is
// skipped as an opaque byte span.
//
// Decode is a single sequential pass that reports malformed input as a
// *FormatError. Encode is its structural inverse: every length field is
// recomputed from the content it frames, never copied from a decoded file.
//
// Files are handled through ReadFile and WriteFile, which scope the file
// handle to one call and, for writes, hold an advisory lock while the output
// is replaced atomically.
package plugin
