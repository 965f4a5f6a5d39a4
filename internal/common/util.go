package common

import "strings"

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used for credentials read from the terminal once they have been handed off.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

// EmailLocalPart returns the part of an address before '@'.
// An address without '@' is returned unchanged.
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
