package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/vfrnav/adr/pkg/uuid"
)

// snapshotMagic is the 64-byte header signature (§4.1.3).
var snapshotMagic = append([]byte("vfrnav ADR objects V1\n\x00"), make([]byte, 64-23)...)

const (
	snapshotHeaderSize = 64
	snapshotEntrySize  = 64
)

type snapshotEntry struct {
	id               uuid.UUID
	swLat, swLon     int32
	neLat, neLon     int32
	mintime, maxtime uint64
	modified         uint64
	dataoffs         uint32 // §9 Open Question: 32-bit offset vs the 64-bit directory offset (see DESIGN.md)
	datasize         uint32 // stored as a uint24 on disk per §4.1.3; kept uint32 in memory
	kind             uint8
}

// WriteSnapshot exports the current obj table as a sorted, mmap-friendly
// snapshot file (§4.1.3). Directory entries are sorted by UUID to support
// binary-search lookup.
func (s *Store) WriteSnapshot(ctx context.Context, path string) error {
	rows, err := s.db.QueryContext(ctx, `SELECT uuid0,uuid1,uuid2,uuid3,type,swlat,swlon,nelat,nelon,mintime,maxtime,modified,data FROM obj`)
	if err != nil {
		return fmt.Errorf("store: snapshot query: %w", err)
	}
	defer rows.Close()

	type row struct {
		entry snapshotEntry
		data  []byte
	}
	var all []row
	for rows.Next() {
		var u0, u1, u2, u3 uint32
		var typ uint8
		var swlat, swlon, nelat, nelon int32
		var mintime, maxtime, modified uint64
		var data []byte
		if err := rows.Scan(&u0, &u1, &u2, &u3, &typ, &swlat, &swlon, &nelat, &nelon, &mintime, &maxtime, &modified, &data); err != nil {
			return fmt.Errorf("store: snapshot scan: %w", err)
		}
		if len(data) > 1<<24-1 {
			return fmt.Errorf("store: object blob %d bytes exceeds snapshot uint24 datasize field", len(data))
		}
		all = append(all, row{
			entry: snapshotEntry{
				id: uuid.UUID{u0, u1, u2, u3}, swLat: swlat, swLon: swlon, neLat: nelat, neLon: nelon,
				mintime: mintime, maxtime: maxtime, modified: modified,
				datasize: uint32(len(data)), kind: typ,
			},
			data: data,
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}
	sort.Slice(all, func(i, j int) bool { return uuid.Compare(all[i].entry.id, all[j].entry.id) < 0 })

	var bodies bytes.Buffer
	dirOffset := uint64(snapshotHeaderSize)
	// bodies are placed after the directory; compute offsets in a first pass.
	bodyStart := dirOffset + uint64(len(all))*snapshotEntrySize
	cursor := bodyStart
	for i := range all {
		if cursor > uint64(^uint32(0)) {
			return fmt.Errorf("store: snapshot body offset %d overflows the 32-bit dataoffs field (§9 known limitation)", cursor)
		}
		all[i].entry.dataoffs = uint32(cursor)
		bodies.Write(all[i].data)
		cursor += uint64(len(all[i].data))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: create snapshot %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, snapshotHeaderSize)
	copy(header, snapshotMagic)
	binary.LittleEndian.PutUint64(header[32:40], dirOffset)
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(all)))
	if _, err := f.Write(header); err != nil {
		return err
	}

	for _, r := range all {
		e := r.entry
		buf := make([]byte, snapshotEntrySize)
		binary.LittleEndian.PutUint32(buf[0:4], e.id[0])
		binary.LittleEndian.PutUint32(buf[4:8], e.id[1])
		binary.LittleEndian.PutUint32(buf[8:12], e.id[2])
		binary.LittleEndian.PutUint32(buf[12:16], e.id[3])
		binary.LittleEndian.PutUint32(buf[16:20], uint32(e.swLat))
		binary.LittleEndian.PutUint32(buf[20:24], uint32(e.swLon))
		binary.LittleEndian.PutUint32(buf[24:28], uint32(e.neLat))
		binary.LittleEndian.PutUint32(buf[28:32], uint32(e.neLon))
		binary.LittleEndian.PutUint64(buf[32:40], e.mintime)
		binary.LittleEndian.PutUint64(buf[40:48], e.maxtime)
		binary.LittleEndian.PutUint64(buf[48:56], e.modified)
		binary.LittleEndian.PutUint32(buf[56:60], e.dataoffs)
		buf[60] = byte(e.datasize)
		buf[61] = byte(e.datasize >> 8)
		buf[62] = byte(e.datasize >> 16)
		buf[63] = e.kind
		if _, err := f.Write(buf); err != nil {
			return err
		}
	}

	if _, err := bodies.WriteTo(f); err != nil {
		return err
	}
	s.logf("store: wrote snapshot %s (%d objects)", path, len(all))
	return nil
}

// Snapshot is a read-only, binary-searchable view over a snapshot file
// (§4.1.3). It is preferred over the SQL store by callers that decide the
// snapshot is at least as new as the database, per §4.1.2's ordering note.
type Snapshot struct {
	f       *os.File
	entries []snapshotEntry
}

// OpenSnapshot loads the directory of the snapshot at path into memory (the
// object bodies are read lazily via ReadAt, keeping the file itself
// mmap-friendly for callers that choose to map it instead).
func OpenSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open snapshot %s: %w", path, err)
	}
	header := make([]byte, snapshotHeaderSize)
	if _, err := f.ReadAt(header, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("store: read snapshot header %s: %w", path, err)
	}
	if !bytes.HasPrefix(header, []byte("vfrnav ADR objects V1\n\x00")) {
		f.Close()
		return nil, fmt.Errorf("store: %s: bad snapshot signature", path)
	}
	dirOffset := binary.LittleEndian.Uint64(header[32:40])
	count := binary.LittleEndian.Uint32(header[40:44])

	dir := make([]byte, int(count)*snapshotEntrySize)
	if _, err := f.ReadAt(dir, int64(dirOffset)); err != nil {
		f.Close()
		return nil, fmt.Errorf("store: read snapshot directory %s: %w", path, err)
	}
	entries := make([]snapshotEntry, count)
	for i := range entries {
		b := dir[i*snapshotEntrySize : (i+1)*snapshotEntrySize]
		entries[i] = snapshotEntry{
			id: uuid.UUID{
				binary.LittleEndian.Uint32(b[0:4]),
				binary.LittleEndian.Uint32(b[4:8]),
				binary.LittleEndian.Uint32(b[8:12]),
				binary.LittleEndian.Uint32(b[12:16]),
			},
			swLat: int32(binary.LittleEndian.Uint32(b[16:20])), swLon: int32(binary.LittleEndian.Uint32(b[20:24])),
			neLat: int32(binary.LittleEndian.Uint32(b[24:28])), neLon: int32(binary.LittleEndian.Uint32(b[28:32])),
			mintime: binary.LittleEndian.Uint64(b[32:40]), maxtime: binary.LittleEndian.Uint64(b[40:48]),
			modified: binary.LittleEndian.Uint64(b[48:56]),
			dataoffs: binary.LittleEndian.Uint32(b[56:60]),
			datasize: uint32(b[60]) | uint32(b[61])<<8 | uint32(b[62])<<16,
			kind:     b[63],
		}
	}
	return &Snapshot{f: f, entries: entries}, nil
}

func (sn *Snapshot) Close() error { return sn.f.Close() }

// Lookup binary-searches the directory for id and returns its compressed
// blob, or (nil, false) if absent.
func (sn *Snapshot) Lookup(id uuid.UUID) ([]byte, bool) {
	i := sort.Search(len(sn.entries), func(i int) bool {
		return uuid.Compare(sn.entries[i].id, id) >= 0
	})
	if i >= len(sn.entries) || sn.entries[i].id != id {
		return nil, false
	}
	e := sn.entries[i]
	buf := make([]byte, e.datasize)
	if _, err := sn.f.ReadAt(buf, int64(e.dataoffs)); err != nil {
		return nil, false
	}
	return buf, true
}

// Len returns the number of directory entries.
func (sn *Snapshot) Len() int { return len(sn.entries) }
