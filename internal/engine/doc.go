// Package engine implements the pulse dispatch engine.
//
// The engine executes one button press at a time. A press drains a FIFO
// queue of (pulse, from, to) triples until it is empty, mutating module
// state in place and counting every delivered pulse by kind.
//
// ARCHITECTURE:
//
// Single-Threaded Work List:
// A press is a plain iterative loop with no suspension points. The
// network is owned by the engine for the duration of Press and by the
// caller between presses. This ensures:
//   - Every pulse generated at depth k is delivered before any pulse
//     generated at depth k+1 (breadth-first order)
//   - AllHigh outputs see inputs updated in a reproducible order
//   - Re-running from the same state yields the same pulse sequence
//
// Press Flow:
//  1. The button's Low pulse is enqueued for the broadcast relay
//  2. Press dequeues triples one at a time and counts each by kind
//  3. The relay fans the pulse out unchanged; modules call Handle
//  4. Emitted pulses are enqueued in output order
//  5. Observers see each delivered pulse with its logical seq number
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Pulses are stamped with a monotonic seq from Clock, and presses are
// numbered from 1. Wall-clock time is never used.
//
// Termination:
// A per-press pulse quota (WithMaxPulses) bounds networks that never
// drain, such as a loop made only of AllHigh modules. Bounding the
// number of presses is the analyzer's job.
package engine
