package protocol

import (
	"encoding/json"
	"fmt"
)

// PlayProcedure is the bidirectional streaming procedure a player calls
const PlayProcedure = "/dominoes.v1.GameService/Play"

// Codec carries Envelopes as JSON over Connect. The stock Connect JSON
// codec only accepts protobuf messages.
type Codec struct{}

// Name implements connect.Codec
func (Codec) Name() string {
	return "json"
}

// Marshal implements connect.Codec
func (Codec) Marshal(v any) ([]byte, error) {
	if _, ok := v.(*Envelope); !ok {
		return nil, fmt.Errorf("%w: cannot marshal %T", ErrUnknownMessageType, v)
	}
	return json.Marshal(v)
}

// Unmarshal implements connect.Codec
func (Codec) Unmarshal(data []byte, v any) error {
	if _, ok := v.(*Envelope); !ok {
		return fmt.Errorf("%w: cannot unmarshal into %T", ErrUnknownMessageType, v)
	}
	return json.Unmarshal(data, v)
}

// JoinEnvelope builds the first envelope of a streaming session
func JoinEnvelope(name string) (*Envelope, error) {
	return NewEnvelope(TypeJoin, JoinData{Name: name})
}
