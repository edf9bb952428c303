package realtime

import "github.com/invopop/jsonschema"

// ProtocolSchema describes both directions of the socket protocol.
type ProtocolSchema struct {
	Command *jsonschema.Schema `json:"command"`
	Event   *jsonschema.Schema `json:"event"`
}

// Schema reflects the command and event envelopes into JSON Schema.
func Schema() ProtocolSchema {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
	}
	return ProtocolSchema{
		Command: reflector.Reflect(&Command{}),
		Event:   reflector.Reflect(&Event{}),
	}
}
