package codec

import "bytes"

// Bytes returns a Codec that stores values verbatim. Decode copies, since
// the input aliases a reused read buffer.
func Bytes() Codec[[]byte] {
	return bytesCodec{}
}

type bytesCodec struct{}

func (bytesCodec) Encode(buffer *bytes.Buffer, value []byte) error {
	_, err := buffer.Write(value)
	return err
}

func (bytesCodec) Decode(data []byte) ([]byte, error) {
	return bytes.Clone(data), nil
}

func (bytesCodec) Equal(a, b []byte) bool {
	return bytes.Equal(a, b)
}
