package inter

import (
	"fmt"
	"strings"
)

// RouterID names one independent relay path, e.g. "axelar/evm:1".
// Router IDs compare and order as plain strings.
type RouterID string

// SessionID is the epoch of the admitted router configuration. Votes cast in
// an older session never combine with votes cast in the current one.
type SessionID uint64

// Validate rejects empty identifiers and identifiers with whitespace.
func (r RouterID) Validate() error {
	if r == "" || strings.ContainsAny(string(r), " \t\r\n") {
		return fmt.Errorf("invalid router id %q", string(r))
	}
	return nil
}

// Bytes returns the key form of r.
func (r RouterID) Bytes() []byte {
	return []byte(r)
}

// String implements fmt.Stringer.
func (r RouterID) String() string {
	return string(r)
}

// ContainsRouter reports whether id is in list.
func ContainsRouter(list []RouterID, id RouterID) bool {
	for _, r := range list {
		if r == id {
			return true
		}
	}
	return false
}
