package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/pulsesim/internal/ir"
)

// structureDoc mirrors the canonical form produced by ir.Network.Structure.
type structureDoc struct {
	Broadcast []string        `json:"broadcast"`
	Modules   []ir.Definition `json:"modules"`
}

// marshalNetwork serializes a network's structure to canonical JSON.
// Module state is not included.
func marshalNetwork(n *ir.Network) (string, error) {
	data, err := ir.MarshalCanonical(n.Structure())
	if err != nil {
		return "", fmt.Errorf("marshal network: %w", err)
	}
	return string(data), nil
}

// unmarshalNetwork rebuilds a freshly initialized network from the JSON
// written by marshalNetwork.
func unmarshalNetwork(data string) (*ir.Network, error) {
	var doc structureDoc
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal network: %w", err)
	}
	n, err := ir.NewNetwork(doc.Broadcast, doc.Modules)
	if err != nil {
		return nil, fmt.Errorf("unmarshal network: %w", err)
	}
	return n, nil
}
