// Package wal is the entry journal: every accepted command (place, cancel,
// modify, clear) is appended before it is applied, so the book can be rebuilt
// by replaying the journal in sequence order.
//
// Records are framed with a CRC32 trailer and written to size-rotated segment
// files. Record bodies are protobuf wire format, encoded directly with
// protowire.
package wal
