package codec

import (
	"bytes"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. The same logical value always produces identical
// bytes, which lets unchanged rewrites be recognized without decoding.
var encMode cbor.EncMode

// decMode accepts standard CBOR. Any-typed targets decode maps as
// map[string]any rather than the CBOR default map[any]any.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR returns a Codec that stores values as deterministically encoded CBOR.
func CBOR[V any]() Codec[V] {
	return cborCodec[V]{}
}

type cborCodec[V any] struct{}

func (cborCodec[V]) Encode(buffer *bytes.Buffer, value V) error {
	return encMode.NewEncoder(buffer).Encode(value)
}

func (cborCodec[V]) Decode(data []byte) (V, error) {
	var value V
	if err := decMode.Unmarshal(data, &value); err != nil {
		var zero V
		return zero, err
	}
	return value, nil
}

func (cborCodec[V]) Equal(a, b V) bool {
	return reflect.DeepEqual(a, b)
}
