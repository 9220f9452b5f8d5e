package hub

import "encoding/json"

// Frame op codes exchanged with the game hub.
const (
	OpPush     = int32(0)
	OpPing     = int32(1)
	OpPong     = int32(2)
	OpRequest  = int32(3)
	OpResponse = int32(4)
)

// Payload is the JSON frame exchanged with the game hub. Requests carry
// Seq+Method+Args; responses echo Seq and carry Code/Error/Data; pushes
// carry Method (the event name) and Args.
type Payload struct {
	Op     int32             `json:"op"`
	Seq    int32             `json:"seq,omitempty"`
	Method string            `json:"method,omitempty"`
	Args   []json.RawMessage `json:"args,omitempty"`
	Code   int32             `json:"code,omitempty"`
	Error  string            `json:"error,omitempty"`
	Data   json.RawMessage   `json:"data,omitempty"`
}

func marshalArgs(args []any) ([]json.RawMessage, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]json.RawMessage, 0, len(args))
	for _, a := range args {
		data, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}
