package model

import "github.com/brunoga/deep"

// deepCopyObject is grounded on the teacher's use of github.com/brunoga/deep
// for snapshot-preserving clones of mutable game state; here it backs the
// object lifecycle's clone-before-mutate contract (§3).
func deepCopyObject(o *Object) *Object {
	c, err := deep.Copy(o)
	if err != nil {
		// deep.Copy only fails on unsupported types (channels, funcs);
		// the object model contains neither, so this would indicate a
		// programming error introduced by a future payload type rather
		// than a runtime condition callers should need to handle.
		panic("model: Clone failed: " + err.Error())
	}
	return c
}
