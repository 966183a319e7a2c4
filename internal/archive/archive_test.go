package archive

import (
	"math"
	"testing"

	"github.com/vfrnav/adr/pkg/uuid"
)

func TestFixedWidthRoundTrip(t *testing.T) {
	s := NewSaveArchive()
	var u8 uint8 = 0xAB
	var u16 uint16 = 0xBEEF
	var u32 uint32 = 0xDEADBEEF
	var u64 uint64 = 0x0123456789ABCDEF
	var i32 int32 = -12345
	var i64 int64 = -9223372036854775000
	var f32 float32 = 3.14159
	var f64 float64 = 2.718281828459045
	var str string = "LSGG/DITON"
	var b bool = true

	for _, err := range []error{
		s.Uint8(&u8), s.Uint16(&u16), s.Uint32(&u32), s.Uint64(&u64),
		s.Int32(&i32), s.Int64(&i64), s.Float32(&f32), s.Float64(&f64),
		s.String(&str), s.Bool(&b),
	} {
		if err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	l := NewLoadArchive(s.Bytes())
	var lu8 uint8
	var lu16 uint16
	var lu32 uint32
	var lu64 uint64
	var li32 int32
	var li64 int64
	var lf32 float32
	var lf64 float64
	var lstr string
	var lb bool

	for _, err := range []error{
		l.Uint8(&lu8), l.Uint16(&lu16), l.Uint32(&lu32), l.Uint64(&lu64),
		l.Int32(&li32), l.Int64(&li64), l.Float32(&lf32), l.Float64(&lf64),
		l.String(&lstr), l.Bool(&lb),
	} {
		if err != nil {
			t.Fatalf("load: %v", err)
		}
	}

	if lu8 != u8 || lu16 != u16 || lu32 != u32 || lu64 != u64 ||
		li32 != i32 || li64 != i64 || lstr != str || lb != b {
		t.Fatalf("round trip mismatch")
	}
	if math.Float32bits(lf32) != math.Float32bits(f32) {
		t.Fatalf("float32 round trip mismatch: %v != %v", lf32, f32)
	}
	if math.Float64bits(lf64) != math.Float64bits(f64) {
		t.Fatalf("float64 round trip mismatch: %v != %v", lf64, f64)
	}
}

func TestULEBRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, math.MaxUint32, math.MaxUint64}
	for _, v := range values {
		s := NewSaveArchive()
		vv := v
		if err := s.ULEB(&vv); err != nil {
			t.Fatalf("ULEB save(%d): %v", v, err)
		}
		l := NewLoadArchive(s.Bytes())
		var got uint64
		if err := l.ULEB(&got); err != nil {
			t.Fatalf("ULEB load(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("ULEB round trip: got %d, want %d", got, v)
		}
	}
}

func TestSLEBRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, -64, 64, -65, 1000000, -1000000, math.MinInt64, math.MaxInt64}
	for _, v := range values {
		s := NewSaveArchive()
		vv := v
		if err := s.SLEB(&vv); err != nil {
			t.Fatalf("SLEB save(%d): %v", v, err)
		}
		l := NewLoadArchive(s.Bytes())
		var got int64
		if err := l.SLEB(&got); err != nil {
			t.Fatalf("SLEB load(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("SLEB round trip: got %d, want %d", got, v)
		}
	}
}

func TestTruncationRaisesDecodeError(t *testing.T) {
	s := NewSaveArchive()
	var v uint64 = math.MaxUint64
	if err := s.ULEB(&v); err != nil {
		t.Fatalf("save: %v", err)
	}
	blob := s.Bytes()
	for n := 0; n < len(blob); n++ {
		l := NewLoadArchive(blob[:n])
		var got uint64
		err := l.ULEB(&got)
		if err == nil {
			t.Errorf("truncated to %d/%d bytes: expected DecodeError, got none", n, len(blob))
			continue
		}
		var de *DecodeError
		if !isDecodeError(err, &de) {
			t.Errorf("truncated to %d bytes: expected *DecodeError, got %T", n, err)
		}
	}
}

func isDecodeError(err error, out **DecodeError) bool {
	de, ok := err.(*DecodeError)
	if ok {
		*out = de
	}
	return ok
}

func TestLinkSaveLoadScanDepsResolveLinks(t *testing.T) {
	id := uuid.New()

	s := NewSaveArchive()
	link := Link[*int]{ID: id}
	if err := HibernateLink(s, &link); err != nil {
		t.Fatalf("save: %v", err)
	}

	l := NewLoadArchive(s.Bytes())
	var loaded Link[*int]
	if err := HibernateLink(l, &loaded); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != id {
		t.Fatalf("ID mismatch after load: %v != %v", loaded.ID, id)
	}

	sd := NewScanDepsArchive()
	if err := HibernateLink(sd, &loaded); err != nil {
		t.Fatalf("scandeps: %v", err)
	}
	if _, ok := sd.Deps[id]; !ok {
		t.Fatalf("expected scandeps to record %v", id)
	}

	resolved := 42
	rl := NewResolveLinksArchive(func(u uuid.UUID) (any, error) {
		if u == id {
			return &resolved, nil
		}
		return nil, errNotFound
	}, 1)
	if err := HibernateLink(rl, &loaded); err != nil {
		t.Fatalf("resolvelinks: %v", err)
	}
	if loaded.Object == nil || *loaded.Object != 42 {
		t.Fatalf("expected link to resolve to 42, got %v", loaded.Object)
	}
}

var errNotFound = &DecodeError{Reason: "not found"}
