package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Values (and their narrowed forms) are converted with Native first; other
// inputs are encoded as is. Unmarshal decodes into plain Go data only.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(nativeOf(v)) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }
