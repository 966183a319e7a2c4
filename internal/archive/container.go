package archive

// Slice hibernates a length-prefixed container: in Save/Load modes the
// length is a ULEB128 prefix followed by each element's encoding; in
// ScanDeps/ResolveLinks modes there is no byte stream, so the existing
// in-memory elements are simply visited in order (the length is whatever
// the slice already holds).
func Slice[T any](a *Archive, s *[]T, elem func(*Archive, *T) error) error {
	switch a.Mode {
	case ModeSave:
		n := uint64(len(*s))
		if err := a.ULEB(&n); err != nil {
			return err
		}
		for i := range *s {
			if err := elem(a, &(*s)[i]); err != nil {
				return err
			}
		}
	case ModeLoad:
		var n uint64
		if err := a.ULEB(&n); err != nil {
			return err
		}
		*s = make([]T, n)
		for i := range *s {
			if err := elem(a, &(*s)[i]); err != nil {
				return err
			}
		}
	default: // ModeScanDeps, ModeResolveLinks
		for i := range *s {
			if err := elem(a, &(*s)[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Discriminant hibernates the one-byte discriminant that precedes every
// polymorphic (Condition, RestrictionElement) body. The value `invalid`
// (0xFF by convention) means "absent"; callers pass that sentinel in so
// that an absent optional polymorphic value round-trips correctly.
const InvalidDiscriminant = 0xFF

func (a *Archive) Discriminant(v *uint8) error {
	return a.Uint8(v)
}
