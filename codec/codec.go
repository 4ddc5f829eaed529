package codec

import "bytes"

// Codec converts between decoded values and their on-disk byte form.
type Codec[V any] interface {
	// Encode appends the serialized form of value to buffer. The buffer is
	// owned by the caller and reused across calls; implementations must not
	// retain it.
	Encode(buffer *bytes.Buffer, value V) error

	// Decode parses a value from data. data is only valid for the duration
	// of the call, so the returned value must not alias it.
	Decode(data []byte) (V, error)

	// Equal reports whether two decoded values are equivalent. A rewrite
	// whose decoded value equals the previously observed one is reported to
	// nobody.
	Equal(a, b V) bool
}
