package ledger

import "time"

// Clock supplies the ledger's notion of "now" in Unix seconds.
// Abstracted so tests can drive maturity deterministically.
type Clock interface {
	Now() uint64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current Unix time in seconds.
func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}
