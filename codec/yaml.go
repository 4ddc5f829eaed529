package codec

import (
	"bytes"
	"reflect"

	"gopkg.in/yaml.v3"
)

// YAML returns a Codec that stores values as YAML documents.
func YAML[V any]() Codec[V] {
	return yamlCodec[V]{}
}

type yamlCodec[V any] struct{}

func (yamlCodec[V]) Encode(buffer *bytes.Buffer, value V) error {
	payload, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	_, err = buffer.Write(payload)
	return err
}

func (yamlCodec[V]) Decode(data []byte) (V, error) {
	var value V
	if err := yaml.Unmarshal(data, &value); err != nil {
		var zero V
		return zero, err
	}
	return value, nil
}

func (yamlCodec[V]) Equal(a, b V) bool {
	return reflect.DeepEqual(a, b)
}
