package util

import "github.com/google/uuid"

// NewBuildID returns a fresh v4 build identifier, used as the ledger row's
// primary key (§11.5), the banner comment of an emitted IR dump, and the
// suffix of the temporary object file handed to the external C toolchain
// during --run, so concurrent --run invocations in the same working
// directory never collide on disk.
func NewBuildID() string {
	return uuid.NewString()
}
