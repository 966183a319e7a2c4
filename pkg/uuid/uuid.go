// Package uuid implements the 128-bit object identifier used throughout
// the store, serialized as four little-endian 32-bit words (§3 Identifier).
package uuid

import (
	"encoding/binary"
	"fmt"

	googleuuid "github.com/google/uuid"
)

// UUID is a 128-bit identifier, comparable and usable as a map key.
type UUID [4]uint32

// Nil is the zero-value UUID; no legitimate object ever has this value.
var Nil = UUID{}

// New generates a fresh random (v4) identifier.
func New() UUID {
	g := googleuuid.New()
	return FromBytes(g[:])
}

// FromBytes interprets 16 bytes as a UUID using the wire layout: four
// little-endian uint32 words.
func FromBytes(b []byte) UUID {
	var u UUID
	for i := range u {
		u[i] = binary.LittleEndian.Uint32(b[i*4 : i*4+4])
	}
	return u
}

// Bytes returns the 16-byte little-endian-word wire encoding of u.
func (u UUID) Bytes() []byte {
	b := make([]byte, 16)
	for i, w := range u {
		binary.LittleEndian.PutUint32(b[i*4:i*4+4], w)
	}
	return b
}

// IsNil reports whether u is the zero UUID.
func (u UUID) IsNil() bool {
	return u == Nil
}

// String renders u in canonical 8-4-4-4-12 hex form for logging.
func (u UUID) String() string {
	b := u.Bytes()
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(b[0:4]),
		binary.BigEndian.Uint16(b[4:6]),
		binary.BigEndian.Uint16(b[6:8]),
		binary.BigEndian.Uint16(b[8:10]),
		b[10:16])
}

// Compare returns -1, 0, or 1 for ordering UUIDs word-by-word; used by
// index structures and for the deterministic output ordering the spec's
// testable properties rely on.
func Compare(a, b UUID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Parse parses a canonical hyphenated hex UUID string (as produced by
// String) back into a UUID.
func Parse(s string) (UUID, error) {
	g, err := googleuuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("%s: %w", s, err)
	}
	return FromBytes(g[:]), nil
}
