// Package codec translates values to and from the byte form stored in
// backing files.
//
// A Codec is the only serialization knowledge the map has: it must round-trip
// values and supply the equality used to suppress notifications for rewrites
// that do not change content. Adapters are provided for YAML, JSON,
// deterministic CBOR, protobuf messages, raw bytes, and a zstd-compressing
// wrapper around any of them.
package codec
