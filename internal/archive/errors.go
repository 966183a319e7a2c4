package archive

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

// DecodeError is raised by Load-mode primitives on any underrun, overrun,
// malformed ULEB128, or unknown polymorphic discriminant. It carries the
// byte offset at which decoding failed; callers that read the blob from a
// wrapping context (the store, the snapshot reader) attach a hex dump of
// the failing blob before surfacing it further (§4.1.1, §7).
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("archive: decode error at offset %d: %s", e.Offset, e.Reason)
}

// WithBlobDump wraps a DecodeError (or any error) with a hex dump of blob,
// as required by §7 for the caller that knows which blob was being
// decoded (the archive package itself never sees the originating blob
// once a nested Hibernate call has advanced the cursor).
func WithBlobDump(err error, blob []byte) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w\n%s", err, spew.Sdump(blob))
}
