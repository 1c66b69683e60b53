// Package codec centralizes the encoding of values.
//
// The binary codec is the interchange format between the boundary and its
// in-process collaborators: uploads are stored as encoded snapshots and
// stream messages are kept encoded in the publisher log. Changing the frame
// layout is a breaking change; frames carry a magic number and a version.
//
// The JSON codecs render values as plain Go data (numbers, strings, lists,
// objects, table records) for diagnostics and for checkpoint metadata.
package codec

import (
	"fmt"

	"github.com/hupe1980/ddbgo/value"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	case "binary":
		return Binary{}, true
	case "binary-lz4":
		return Binary{Compression: CompressionLZ4}, true
	case "binary-zstd":
		return Binary{Compression: CompressionZSTD}, true
	default:
		return nil, false
	}
}

// Binary is the frame codec for values. Marshal accepts *value.Value or any
// of its narrowed forms; Unmarshal expects a **value.Value.
type Binary struct {
	Compression Compression
}

// Marshal encodes a value.
func (b Binary) Marshal(v any) ([]byte, error) {
	val, ok := asValue(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
	return Encode(val, b.Compression)
}

// Unmarshal decodes data into *dst.
func (Binary) Unmarshal(data []byte, dst any) error {
	out, ok := dst.(**value.Value)
	if !ok {
		return fmt.Errorf("%w: decode target %T", ErrUnsupported, dst)
	}
	v, err := Decode(data)
	if err != nil {
		return err
	}
	*out = v
	return nil
}

// Name returns the stable codec name.
func (b Binary) Name() string {
	if b.Compression == CompressionNone {
		return "binary"
	}
	return "binary-" + b.Compression.String()
}

func asValue(v any) (*value.Value, bool) {
	switch t := v.(type) {
	case *value.Value:
		return t, t != nil
	case *value.Vector:
		return t.Value, t != nil
	case *value.Matrix:
		return t.Value, t != nil
	case *value.Set:
		return t.Value, t != nil
	case *value.Dictionary:
		return t.Value, t != nil
	case *value.Table:
		return t.Value, t != nil
	}
	return nil, false
}

// Default is the codec used for uploads and stream messages.
var Default Codec = Binary{Compression: CompressionLZ4}

// MustMarshal is a helper for tests and examples.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
