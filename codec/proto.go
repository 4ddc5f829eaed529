package codec

import (
	"bytes"

	"google.golang.org/protobuf/proto"
)

// protoMarshal is deterministic so re-encoding an unchanged message yields
// identical bytes even when it contains map fields.
var protoMarshal = proto.MarshalOptions{Deterministic: true}

// Proto returns a Codec that stores protobuf messages in binary wire format.
// Equality is proto.Equal.
func Proto[V proto.Message]() Codec[V] {
	return protoCodec[V]{}
}

type protoCodec[V proto.Message] struct{}

func (protoCodec[V]) Encode(buffer *bytes.Buffer, value V) error {
	payload, err := protoMarshal.Marshal(value)
	if err != nil {
		return err
	}
	_, err = buffer.Write(payload)
	return err
}

func (protoCodec[V]) Decode(data []byte) (V, error) {
	var zero V
	message := zero.ProtoReflect().New().Interface()
	if err := proto.Unmarshal(data, message); err != nil {
		return zero, err
	}
	return message.(V), nil
}

func (protoCodec[V]) Equal(a, b V) bool {
	return proto.Equal(a, b)
}
