package idgenerator

import "io"

// WithReader sets the reader that will provide random bytes.
func WithReader(r io.Reader) Option {
	return func(u *UUIDGenerator) {
		u.reader = r
	}
}

// Option configures behavior through the functional options pattern.
type Option func(*UUIDGenerator)
