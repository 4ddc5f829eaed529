package codec

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// JSON returns a Codec that stores values as JSON documents.
func JSON[V any]() Codec[V] {
	return jsonCodec[V]{}
}

type jsonCodec[V any] struct{}

func (jsonCodec[V]) Encode(buffer *bytes.Buffer, value V) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = buffer.Write(payload)
	return err
}

func (jsonCodec[V]) Decode(data []byte) (V, error) {
	var value V
	if err := json.Unmarshal(data, &value); err != nil {
		var zero V
		return zero, err
	}
	return value, nil
}

func (jsonCodec[V]) Equal(a, b V) bool {
	return reflect.DeepEqual(a, b)
}
