package codec

import (
	"bytes"
	"testing"
)

type document struct {
	Title string   `json:"title" yaml:"title" cbor:"title"`
	Count int      `json:"count" yaml:"count" cbor:"count"`
	Tags  []string `json:"tags,omitempty" yaml:"tags,omitempty" cbor:"tags,omitempty"`
}

func TestDocumentRoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		subject Codec[document]
	}{
		{"yaml", YAML[document]()},
		{"json", JSON[document]()},
		{"cbor", CBOR[document]()},
		{"compressed yaml", Compressed(YAML[document]())},
		{"compressed cbor", Compressed(CBOR[document]())},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			original := document{
				Title: "release notes",
				Count: 3,
				Tags:  []string{"draft", "internal"},
			}
			var buffer bytes.Buffer
			if err := tc.subject.Encode(&buffer, original); err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded, err := tc.subject.Decode(buffer.Bytes())
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !tc.subject.Equal(original, decoded) {
				t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, original)
			}
		})
	}
}

func TestEqualDetectsDifferences(t *testing.T) {
	subject := YAML[document]()
	a := document{Title: "one", Count: 1}
	b := document{Title: "one", Count: 2}
	if subject.Equal(a, b) {
		t.Fatal("expected differing documents to compare unequal")
	}
	if !subject.Equal(a, a) {
		t.Fatal("expected identical documents to compare equal")
	}
}

func TestCBOREncodingIsDeterministic(t *testing.T) {
	subject := CBOR[map[string]int]()
	value := map[string]int{"zulu": 26, "alpha": 1, "mike": 13}

	var first bytes.Buffer
	if err := subject.Encode(&first, value); err != nil {
		t.Fatalf("first encode: %v", err)
	}
	var second bytes.Buffer
	if err := subject.Encode(&second, value); err != nil {
		t.Fatalf("second encode: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatal("expected identical bytes for repeated encodes of the same map")
	}
}

func TestBytesDecodeCopies(t *testing.T) {
	subject := Bytes()
	source := []byte("original")

	decoded, err := subject.Decode(source)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	source[0] = 'X'
	if string(decoded) != "original" {
		t.Fatalf("decoded value aliases the input buffer: %q", decoded)
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	testCases := []struct {
		name    string
		subject Codec[document]
		data    []byte
	}{
		{"json", JSON[document](), []byte("{not json")},
		{"yaml", YAML[document](), []byte("\t: not yaml")},
		{"cbor", CBOR[document](), []byte{0xff}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.subject.Decode(tc.data); err == nil {
				t.Fatal("expected a decode error")
			}
		})
	}
}
