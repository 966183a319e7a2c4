package archive

// ULEB writes/reads v as unsigned LEB128: 7 data bits per byte, low-order
// byte first, continuation signaled by the top bit of each byte. This is
// bit-for-bit the same scheme as Go's encoding/binary Uvarint, reimplemented
// here so it runs against the Archive's mode-switched cursor instead of a
// bare []byte.
func (a *Archive) ULEB(v *uint64) error {
	switch a.Mode {
	case ModeSave:
		x := *v
		for {
			b := byte(x & 0x7f)
			x >>= 7
			if x != 0 {
				a.buf = append(a.buf, b|0x80)
			} else {
				a.buf = append(a.buf, b)
				break
			}
		}
	case ModeLoad:
		var result uint64
		var shift uint
		for {
			if err := a.need(1); err != nil {
				return err
			}
			b := a.buf[a.pos]
			a.pos++
			if shift >= 64 {
				return a.fail("ULEB128 value overflows 64 bits")
			}
			result |= uint64(b&0x7f) << shift
			if b&0x80 == 0 {
				break
			}
			shift += 7
		}
		*v = result
	}
	return nil
}

// SLEB writes/reads v as signed LEB128: the last byte emitted (the one
// without the continuation bit) sign-extends the result whenever its bit
// 6 is set, per the spec's encoding contract.
func (a *Archive) SLEB(v *int64) error {
	switch a.Mode {
	case ModeSave:
		x := *v
		more := true
		for more {
			b := byte(x & 0x7f)
			x >>= 7
			// Sign bit of x is replicated into empty high bits by the
			// arithmetic shift above (Go's >> on a signed int64 is
			// arithmetic), so we can test whether what remains is just
			// the sign-extension of bit 6 of b.
			if (x == 0 && b&0x40 == 0) || (x == -1 && b&0x40 != 0) {
				more = false
			} else {
				b |= 0x80
			}
			a.buf = append(a.buf, b)
		}
	case ModeLoad:
		var result int64
		var shift uint
		var b byte
		for {
			if err := a.need(1); err != nil {
				return err
			}
			b = a.buf[a.pos]
			a.pos++
			if shift >= 64 {
				return a.fail("SLEB128 value overflows 64 bits")
			}
			result |= int64(b&0x7f) << shift
			shift += 7
			if b&0x80 == 0 {
				break
			}
		}
		if shift < 64 && b&0x40 != 0 {
			// Sign extend: set all bits above shift to 1.
			result |= -1 << shift
		}
		*v = result
	}
	return nil
}
