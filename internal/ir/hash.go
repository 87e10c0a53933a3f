package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSnapshot = "pulsesim/snapshot/v1"
	DomainNetwork  = "pulsesim/network/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Snapshot returns the network's full mutable state as a canonical value:
// every Toggle bit and every AllHigh memory, keyed by module name.
func (n *Network) Snapshot() Object {
	obj := make(Object, len(n.modules))
	for name, m := range n.modules {
		obj[name] = m.state()
	}
	return obj
}

// SnapshotHash returns the content hash of Snapshot. Two networks built from
// the same definitions have equal hashes iff their mutable state is equal.
func (n *Network) SnapshotHash() (string, error) {
	canonical, err := MarshalCanonical(n.Snapshot())
	if err != nil {
		return "", fmt.Errorf("snapshot hash: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// Structure returns the network's topology as a canonical value: the relay
// outputs and every module definition in declaration order.
func (n *Network) Structure() Object {
	mods := make(Array, 0, len(n.order))
	for _, d := range n.Definitions() {
		mods = append(mods, Object{
			"name":    String(d.Name),
			"kind":    String(string(d.Kind)),
			"outputs": stringArray(d.Outputs),
		})
	}
	return Object{"broadcast": stringArray(n.broadcast), "modules": mods}
}

// StructureHash identifies the network's topology, independent of state.
// Used to label recorded runs in the trace store.
func (n *Network) StructureHash() (string, error) {
	canonical, err := MarshalCanonical(n.Structure())
	if err != nil {
		return "", fmt.Errorf("structure hash: %w", err)
	}
	return hashWithDomain(DomainNetwork, canonical), nil
}

func stringArray(in []string) Array {
	out := make(Array, len(in))
	for i, s := range in {
		out[i] = String(s)
	}
	return out
}
