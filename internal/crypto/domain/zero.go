package domain

// Zero overwrites a byte slice with zeros to clear key material or plaintext from memory.
func Zero(b []byte) {
	clear(b)
}

// ZeroAll zeroes every given slice; nil slices are skipped.
func ZeroAll(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
	}
}
