// Package ir provides the in-memory representation of a pulse network.
//
// This package contains the data model only: pulses, the two module kinds,
// the network arena and its canonical snapshot form. All other internal
// packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Modules reference each other by name, never by pointer
//   - Exactly two module kinds exist (Toggle and AllHigh); every switch over
//     Kind is exhaustive
//   - Output order is fixed at construction and never reordered
//   - Snapshots use canonical JSON so equal states hash equally
package ir
