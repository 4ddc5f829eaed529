package codec

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Shared zstd coders, configured once. EncodeAll/DecodeAll on these are safe
// for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("codec: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("codec: zstd decoder initialization failed: " + err.Error())
	}
}

// Compressed wraps inner so its encoded form is zstd-compressed on disk.
func Compressed[V any](inner Codec[V]) Codec[V] {
	return compressedCodec[V]{inner: inner}
}

type compressedCodec[V any] struct {
	inner Codec[V]
}

func (wrapper compressedCodec[V]) Encode(buffer *bytes.Buffer, value V) error {
	var scratch bytes.Buffer
	if err := wrapper.inner.Encode(&scratch, value); err != nil {
		return err
	}
	_, err := buffer.Write(zstdEncoder.EncodeAll(scratch.Bytes(), nil))
	return err
}

func (wrapper compressedCodec[V]) Decode(data []byte) (V, error) {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		var zero V
		return zero, fmt.Errorf("zstd decompress: %w", err)
	}
	return wrapper.inner.Decode(raw)
}

func (wrapper compressedCodec[V]) Equal(a, b V) bool {
	return wrapper.inner.Equal(a, b)
}
