// Package archive implements the bit-exact, length-prefixed binary framing
// described in §4.1.1: a single Archive abstraction that, depending on its
// Mode, either serializes an object graph to bytes, deserializes bytes
// back into a graph, scans the graph for referenced UUIDs, or walks it
// resolving Links to strong handles. Every composite type in the object
// model implements a single Hibernate(*Archive) method that is correct
// for all four modes, matching the save/load/scandeps/resolvelinks
// symmetry the spec requires.
package archive

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/vfrnav/adr/pkg/uuid"
)

// Mode selects the Archive's behavior.
type Mode int

const (
	ModeSave Mode = iota
	ModeLoad
	ModeScanDeps
	ModeResolveLinks
)

func (m Mode) String() string {
	switch m {
	case ModeSave:
		return "save"
	case ModeLoad:
		return "load"
	case ModeScanDeps:
		return "scandeps"
	case ModeResolveLinks:
		return "resolvelinks"
	default:
		return "invalid"
	}
}

// Archive is the single abstraction parametrised by Mode. Save and Load
// read/write through buf; ScanDeps and ResolveLinks never touch buf and
// instead walk the live object graph, recording dependency UUIDs or
// resolving Links through Resolve.
type Archive struct {
	Mode Mode

	// Save/Load byte stream state.
	buf []byte // Save: accumulates output. Load: input being consumed.
	pos int    // Load: read cursor.

	// ScanDeps state.
	Deps map[uuid.UUID]struct{}

	// ResolveLinks state.
	Resolve  func(id uuid.UUID) (any, error)
	Depth    int // remaining recursion depth
	Unresolved []uuid.UUID
}

// NewSaveArchive returns an Archive that serializes into an internal
// buffer, retrievable with Bytes() once the top-level Hibernate call
// returns.
func NewSaveArchive() *Archive {
	return &Archive{Mode: ModeSave}
}

// NewLoadArchive returns an Archive that deserializes from blob.
func NewLoadArchive(blob []byte) *Archive {
	return &Archive{Mode: ModeLoad, buf: blob}
}

// NewScanDepsArchive returns an Archive that records every UUID reachable
// through a Link field of the object graph it visits.
func NewScanDepsArchive() *Archive {
	return &Archive{Mode: ModeScanDeps, Deps: map[uuid.UUID]struct{}{}}
}

// NewResolveLinksArchive returns an Archive that resolves Link fields via
// resolve, recursing up to maxDepth levels (0 means resolve only the
// immediate Links, not their own nested Links).
func NewResolveLinksArchive(resolve func(uuid.UUID) (any, error), maxDepth int) *Archive {
	return &Archive{Mode: ModeResolveLinks, Resolve: resolve, Depth: maxDepth}
}

// Bytes returns the accumulated output of a Save-mode Archive.
func (a *Archive) Bytes() []byte {
	return a.buf
}

// Offset reports the current read/write cursor, used in DecodeError.
func (a *Archive) Offset() int {
	if a.Mode == ModeLoad {
		return a.pos
	}
	return len(a.buf)
}

func (a *Archive) fail(reason string) error {
	return &DecodeError{Offset: a.pos, Reason: reason}
}

func (a *Archive) need(n int) error {
	if a.pos+n > len(a.buf) {
		return a.fail(fmt.Sprintf("need %d bytes, have %d", n, len(a.buf)-a.pos))
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// Fixed-width primitives: little-endian, two's complement.

func (a *Archive) Uint8(v *uint8) error {
	switch a.Mode {
	case ModeSave:
		a.buf = append(a.buf, *v)
	case ModeLoad:
		if err := a.need(1); err != nil {
			return err
		}
		*v = a.buf[a.pos]
		a.pos++
	}
	return nil
}

func (a *Archive) Bool(v *bool) error {
	var b uint8
	if a.Mode == ModeSave {
		if *v {
			b = 1
		}
	}
	if err := a.Uint8(&b); err != nil {
		return err
	}
	if a.Mode == ModeLoad {
		*v = b != 0
	}
	return nil
}

func (a *Archive) Uint16(v *uint16) error {
	switch a.Mode {
	case ModeSave:
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], *v)
		a.buf = append(a.buf, b[:]...)
	case ModeLoad:
		if err := a.need(2); err != nil {
			return err
		}
		*v = binary.LittleEndian.Uint16(a.buf[a.pos:])
		a.pos += 2
	}
	return nil
}

func (a *Archive) Uint32(v *uint32) error {
	switch a.Mode {
	case ModeSave:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], *v)
		a.buf = append(a.buf, b[:]...)
	case ModeLoad:
		if err := a.need(4); err != nil {
			return err
		}
		*v = binary.LittleEndian.Uint32(a.buf[a.pos:])
		a.pos += 4
	}
	return nil
}

func (a *Archive) Uint64(v *uint64) error {
	switch a.Mode {
	case ModeSave:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], *v)
		a.buf = append(a.buf, b[:]...)
	case ModeLoad:
		if err := a.need(8); err != nil {
			return err
		}
		*v = binary.LittleEndian.Uint64(a.buf[a.pos:])
		a.pos += 8
	}
	return nil
}

func (a *Archive) Int32(v *int32) error {
	u := uint32(*v)
	if err := a.Uint32(&u); err != nil {
		return err
	}
	if a.Mode == ModeLoad {
		*v = int32(u)
	}
	return nil
}

func (a *Archive) Int64(v *int64) error {
	u := uint64(*v)
	if err := a.Uint64(&u); err != nil {
		return err
	}
	if a.Mode == ModeLoad {
		*v = int64(u)
	}
	return nil
}

// Float32 reinterprets the IEEE 754 bits as a uint32, then encodes those
// little-endian, per the encoding contract.
func (a *Archive) Float32(v *float32) error {
	u := math.Float32bits(*v)
	if err := a.Uint32(&u); err != nil {
		return err
	}
	if a.Mode == ModeLoad {
		*v = math.Float32frombits(u)
	}
	return nil
}

func (a *Archive) Float64(v *float64) error {
	u := math.Float64bits(*v)
	if err := a.Uint64(&u); err != nil {
		return err
	}
	if a.Mode == ModeLoad {
		*v = math.Float64frombits(u)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// Strings: ULEB128 length, then raw bytes (no NUL).

func (a *Archive) String(v *string) error {
	switch a.Mode {
	case ModeSave:
		n := uint64(len(*v))
		if err := a.ULEB(&n); err != nil {
			return err
		}
		a.buf = append(a.buf, *v...)
	case ModeLoad:
		var n uint64
		if err := a.ULEB(&n); err != nil {
			return err
		}
		if err := a.need(int(n)); err != nil {
			return err
		}
		*v = string(a.buf[a.pos : a.pos+int(n)])
		a.pos += int(n)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// UUID: four little-endian uint32 words (delegates to pkg/uuid's wire
// layout).

func (a *Archive) UUID(v *uuid.UUID) error {
	for i := range v {
		if err := a.Uint32(&v[i]); err != nil {
			return err
		}
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// Coordinates: wire-format fixed-point lat/lon, little-endian int32 each
// (see pkg/geo.ToFixed/FromFixed).

func (a *Archive) Coord(lat, lon *int32) error {
	if err := a.Int32(lat); err != nil {
		return err
	}
	return a.Int32(lon)
}
